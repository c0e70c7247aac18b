package handler

import (
	"context"
	"errors"
	"net/http"

	"chargehub-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// StationHandler handles station search requests
type StationHandler struct {
	service StationSearcher
}

// StationSearcher interface for dependency injection
type StationSearcher interface {
	Search(context.Context, string) (models.SearchResult, error)
}

// NewStationHandler creates a new station handler
func NewStationHandler(svc StationSearcher) *StationHandler {
	return &StationHandler{service: svc}
}

// Search handles GET /api/stations requests
//
//	@Summary		Find charging stations by postal code
//	@Description	Exact postal code match in data source order, joined with open malfunction reports.
//	@Tags			stations
//	@Produce		json
//	@Param			postal_code	query		string	true	"5 digit postal code"
//	@Success		200			{object}	models.SearchResult
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/stations [get]
func (h *StationHandler) Search(c *gin.Context) {
	code := c.Query("postal_code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing required query parameter 'postal_code'"})
		return
	}

	result, err := h.service.Search(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPostalCode) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "postal code must be exactly 5 digits"})
			return
		}
		log.Error().Err(err).Str("postal_code", code).Msg("station search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
