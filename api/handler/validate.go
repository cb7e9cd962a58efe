package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
)

// Validate returns a handler for POST /api/v1/validate.
//
// Runs the ad-presence check over the submitted keywords. Per-keyword
// failures surface as HasAds "Error" inside a 200, not as a request
// failure; only session-level problems fail the request.
func Validate(r Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		var results []models.AdPresence
		err := r.WithSession(c.Request.Context(), func(ctx context.Context, m *miner.Miner) error {
			results = m.ValidateKeywords(ctx, req.Keywords)
			return nil
		})
		if err != nil {
			c.JSON(statusFor(err), models.ValidateResponse{Error: detail(err)})
			return
		}

		c.JSON(http.StatusOK, models.ValidateResponse{
			Success: true,
			Results: results,
		})
	}
}
