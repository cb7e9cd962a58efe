// Package handler holds the gin handlers for the control API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
)

// Runner is the slice of the session runner the handlers need.
type Runner interface {
	Busy() bool
	WithSession(ctx context.Context, fn func(ctx context.Context, m *miner.Miner) error) error
}

// statusFor picks the HTTP status for a run error.
func statusFor(err error) int {
	if errors.Is(err, models.ErrBusy) {
		return http.StatusConflict
	}
	var me *models.MineError
	if errors.As(err, &me) {
		switch me.Class {
		case models.ClassAuthentication:
			return http.StatusUnauthorized
		case models.ClassPolicy:
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// detail converts any error into the API error shape.
func detail(err error) *models.ErrorDetail {
	var me *models.MineError
	if errors.As(err, &me) {
		return me.ToDetail()
	}
	return &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}
