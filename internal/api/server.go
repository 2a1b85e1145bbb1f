// Package api exposes the dialogue engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dialogue-orchestrator/internal/common/config"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/dialogue"
	"dialogue-orchestrator/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Responder runs one chat turn.
type Responder interface {
	Respond(ctx context.Context, userID string, conversation models.Conversation) (*dialogue.Turn, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Dialogue Responder
	// Ready lists the dependencies /ready checks, by name.
	Ready map[string]Pinger
}

type Server struct {
	echo           *echo.Echo
	deps           Dependencies
	limiter        *RateLimiter
	requestTimeout time.Duration
	address        string
	logger         logger.Logger
}

func NewServer(cfg config.ServerConfig, deps Dependencies, log logger.Logger) *Server {
	s := &Server{
		echo:           echo.New(),
		deps:           deps,
		limiter:        NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		requestTimeout: config.GetDuration(cfg.RequestTimeout),
		address:        cfg.Address,
		logger:         log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger)

	s.echo.GET("/health", s.health)
	s.echo.GET("/ready", s.ready)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/chat", s.chat)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.address})
	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.Debug("http request", map[string]interface{}{
			"method":   c.Request().Method,
			"path":     c.Path(),
			"status":   c.Response().Status,
			"duration": time.Since(start).String(),
		})
		return nil
	}
}
