package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/zach-wendland/stonkzap/internal/errors"
	"github.com/zach-wendland/stonkzap/internal/platform/correlation"
)

const defaultWindow = "24h"

// handleQuery runs the sentiment pipeline for ?symbol=...&window=....
// Client-input errors surface as 400 via the errors middleware; a query
// with no data still succeeds with an empty aggregate.
func (s *Server) handleQuery(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return apperrors.ValidationError("symbol is required")
	}

	window := c.QueryParam("window")
	if window == "" {
		window = defaultWindow
	}

	ctx := correlation.WithID(c.Request().Context(), correlation.NewID())

	result, err := s.app.Query(ctx, symbol, window)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "stonkzap",
		"endpoints": map[string]string{
			"health":  "/healthz",
			"query":   "/query?symbol=AAPL&window=24h",
			"metrics": "/metrics",
			"version": "/version",
		},
	})
}
