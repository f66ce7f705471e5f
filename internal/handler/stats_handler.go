package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/service"
)

// StatsHandler serves the admin dashboard aggregates.
type StatsHandler struct {
	svc service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// AdminStats godoc
// @Summary Dashboard summary
// @Description Estimated users, menu items and orders plus total revenue.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AdminStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /admin-stats [get]
func (h *StatsHandler) AdminStats(c echo.Context) error {
	stats, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// OrderStats godoc
// @Summary Quantity and revenue per menu category
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.CategoryStat
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /order-stats [get]
func (h *StatsHandler) OrderStats(c echo.Context) error {
	stats, err := h.svc.CategoryBreakdown(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
