package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/metrics"
)

// NewRouter builds the gin engine with the ops endpoints.
func NewRouter(handler *Handler, m *metrics.Metrics, log logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/runs", handler.TriggerRun)
	v1.GET("/runs/latest", handler.LatestRun)
	v1.GET("/stats", handler.Stats)

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", c.Writer.Status()),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
