package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/filterx"
	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
)

// MineRequest asks for a mining run over seed words. Filter bounds are
// optional; an empty filter keeps everything.
type MineRequest struct {
	Seeds     []string       `json:"seeds" binding:"required,min=1,dive,min=1"`
	ProjectID string         `json:"project_id"`
	Filter    filterx.Config `json:"filter"`
}

// Mine returns a handler for POST /api/v1/mine.
//
// A partially persisted run (chunk failure after some inserts) returns
// the error together with the stats collected so far, so the caller
// knows both what failed and what already landed.
func Mine(r Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		var stats *models.MineStats
		err := r.WithSession(c.Request.Context(), func(ctx context.Context, m *miner.Miner) error {
			var runErr error
			stats, runErr = m.MineSeeds(ctx, req.Seeds, req.Filter, req.ProjectID)
			return runErr
		})
		if err != nil {
			c.JSON(statusFor(err), models.MineResponse{
				Stats: stats,
				Error: detail(err),
			})
			return
		}

		c.JSON(http.StatusOK, models.MineResponse{
			Success: true,
			Stats:   stats,
		})
	}
}
