package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chargehub-api/internal/export"
	"chargehub-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MalfunctionHandler handles malfunction report requests
type MalfunctionHandler struct {
	service MalfunctionManager
}

// MalfunctionManager interface for dependency injection
type MalfunctionManager interface {
	ReportMalfunction(ctx context.Context, stationID, reason string) error
	ResolveMalfunction(ctx context.Context, stationID string) error
	GetReport(ctx context.Context, stationID string) (models.MalfunctionReport, bool, error)
	ListOpenReports(ctx context.Context) ([]models.MalfunctionReport, error)
}

// ReportRequest is the body of POST /api/malfunctions.
type ReportRequest struct {
	StationID string `json:"station_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// NewMalfunctionHandler creates a new malfunction handler
func NewMalfunctionHandler(svc MalfunctionManager) *MalfunctionHandler {
	return &MalfunctionHandler{service: svc}
}

// List handles GET /api/malfunctions requests
//
//	@Summary	List open malfunction reports
//	@Tags		malfunctions
//	@Produce	json
//	@Success	200	{array}		models.MalfunctionReport
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/malfunctions [get]
func (h *MalfunctionHandler) List(c *gin.Context) {
	reports, err := h.service.ListOpenReports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("listing malfunction reports failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// Get handles GET /api/malfunctions/:stationId requests
//
//	@Summary	Open malfunction report of one station
//	@Tags		malfunctions
//	@Produce	json
//	@Param		stationId	path		string	true	"Station id"
//	@Success	200			{object}	models.MalfunctionReport
//	@Failure	404			{object}	ErrorResponse
//	@Failure	500			{object}	ErrorResponse
//	@Router		/api/malfunctions/{stationId} [get]
func (h *MalfunctionHandler) Get(c *gin.Context) {
	stationID := c.Param("stationId")

	report, ok, err := h.service.GetReport(c.Request.Context(), stationID)
	if err != nil {
		log.Error().Err(err).Str("station_id", stationID).Msg("reading malfunction report failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no open malfunction report for this station"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Report handles POST /api/malfunctions requests
//
//	@Summary	Report a malfunction
//	@Tags		malfunctions
//	@Accept		json
//	@Produce	json
//	@Param		report	body		ReportRequest	true	"Report"
//	@Success	201		{object}	map[string]string
//	@Failure	400		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/api/malfunctions [post]
func (h *MalfunctionHandler) Report(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must contain 'station_id' and 'reason'"})
		return
	}

	err := h.service.ReportMalfunction(c.Request.Context(), req.StationID, req.Reason)
	if err != nil {
		if errors.Is(err, models.ErrInvalidReport) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "station id and reason must not be blank"})
			return
		}
		log.Error().Err(err).Str("station_id", req.StationID).Msg("saving malfunction report failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "report could not be saved"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "reported", "station_id": req.StationID})
}

// Resolve handles DELETE /api/malfunctions/:stationId requests
//
//	@Summary	Resolve the open report of a station
//	@Tags		malfunctions
//	@Param		stationId	path	string	true	"Station id"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/malfunctions/{stationId} [delete]
func (h *MalfunctionHandler) Resolve(c *gin.Context) {
	stationID := c.Param("stationId")

	if err := h.service.ResolveMalfunction(c.Request.Context(), stationID); err != nil {
		if errors.Is(err, models.ErrInvalidReport) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "station id must not be blank"})
			return
		}
		log.Error().Err(err).Str("station_id", stationID).Msg("resolving malfunction report failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "report could not be resolved"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /api/exports/malfunctions.xlsx requests
//
//	@Summary	Download open reports as XLSX
//	@Tags		exports
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success	200	{file}		file
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/exports/malfunctions.xlsx [get]
func (h *MalfunctionHandler) Export(c *gin.Context) {
	reports, err := h.service.ListOpenReports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("listing malfunction reports failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	data, err := export.BuildReportsXLSX(reports, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("building malfunction export failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="malfunctions.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// IssueTypes handles GET /api/issue-types requests
//
//	@Summary	Predefined malfunction reasons
//	@Tags		malfunctions
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/api/issue-types [get]
func IssueTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.IssueTypes())
}
