// Package server is the thin HTTP shell around the query pipeline:
// routing, request validation and observability endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zach-wendland/stonkzap/internal/config"
	"github.com/zach-wendland/stonkzap/internal/domain"
	apperrors "github.com/zach-wendland/stonkzap/internal/errors"
)

// QueryService is the application-layer contract the handlers call.
type QueryService interface {
	Query(ctx context.Context, symbolOrName, window string) (*domain.AggregateResult, error)
}

// HealthChecker is anything readiness should probe (post store, redis).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       QueryService
	checks    map[string]HealthChecker
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, app QueryService, checks map[string]HealthChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		checks:    checks,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
