package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/service"
)

// ReviewHandler serves customer reviews.
type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// ListReviews godoc
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Success 200 {array} model.Review
// @Router /review [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	reviews, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}
