package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sumukeio/niche-miner/api/handler"
	"github.com/sumukeio/niche-miner/api/middleware"
	"github.com/sumukeio/niche-miner/config"
)

// NewRouter creates a configured gin engine with all routes and
// middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     RateLimit
//
// Health sits outside the rate limit so monitoring probes always work.
// ctx bounds the rate limiter's eviction goroutine; cancel it when the
// server shuts down.
func NewRouter(ctx context.Context, r *Runner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(gin.Logger())

	e.GET("/health", handler.Health(r, startTime))

	v1 := e.Group("/api/v1")
	v1.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	v1.GET("/login/status", handler.LoginStatus(r))
	v1.POST("/validate", handler.Validate(r))
	v1.POST("/mine", handler.Mine(r))

	return e
}
