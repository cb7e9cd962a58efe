package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
)

// LoginStatus returns a handler for GET /api/v1/login/status.
//
// It spins up a browser session, restores the persisted cookies, and
// checks them against the live site — slow for a GET, but the only
// check that proves anything about cookie freshness.
func LoginStatus(r Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loggedIn bool
		var signal string

		err := r.WithSession(c.Request.Context(), func(ctx context.Context, m *miner.Miner) error {
			if _, err := m.RestoreSession(); err != nil {
				return err
			}
			ok, sig, err := m.CheckLogin(ctx)
			if err != nil {
				return err
			}
			loggedIn, signal = ok, sig
			miner.EmitLoginStatus(ok)
			return nil
		})
		if err != nil {
			c.JSON(statusFor(err), models.LoginStatusResponse{Error: detail(err)})
			return
		}

		c.JSON(http.StatusOK, models.LoginStatusResponse{
			Success:  true,
			LoggedIn: loggedIn,
			Signal:   signal,
		})
	}
}
