package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/models"
)

// Health returns a handler for GET /health. Always 200; a busy session
// slot is reported, not treated as unhealthy.
func Health(r Runner, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Busy:    r.Busy(),
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: "0.1.0",
		})
	}
}
