package handler

import (
	"net/http"

	"chargehub-api/internal/logging"
	"chargehub-api/internal/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter wires all HTTP routes
func NewRouter(stations *StationHandler, malfunctions *MalfunctionHandler) *gin.Engine {
	r := gin.New()
	r.Use(logging.RequestLogger(), gin.Recovery())

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/stations", stations.Search)
	api.GET("/issue-types", IssueTypes)

	api.GET("/malfunctions", malfunctions.List)
	api.POST("/malfunctions", malfunctions.Report)
	api.GET("/malfunctions/:stationId", malfunctions.Get)
	api.DELETE("/malfunctions/:stationId", malfunctions.Resolve)
	api.GET("/exports/malfunctions.xlsx", malfunctions.Export)

	return r
}

// health handles GET /health requests
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
