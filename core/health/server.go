// Package health serves liveness and readiness probes over HTTP.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m3rciful/gameclub/core/buildinfo"
	"github.com/m3rciful/gameclub/core/logger"
)

const readyTimeout = 2 * time.Second

// Checker reports whether a dependency is ready to serve traffic.
type Checker interface {
	PingContext(ctx context.Context) error
}

// Server exposes /healthz and /readyz.
type Server struct {
	srv    *http.Server
	engine *gin.Engine
}

// New builds the probe server. Every check must pass for /readyz to report ok.
func New(listen string, checks map[string]Checker) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		failed := gin.H{}
		for name, check := range checks {
			if err := check.PingContext(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			logger.Warn(ctx, logger.CompHealth, "health.not_ready", slog.Int("count", len(failed)))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "fail", "checks": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		engine: r,
		srv: &http.Server{
			Addr:              listen,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves in the background until Shutdown is called.
func (s *Server) Start() {
	go func() {
		logger.Info(context.Background(), logger.CompHealth, "health.listen", slog.String("listen", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompHealth, "health.failed", slog.String("err", err.Error()))
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
