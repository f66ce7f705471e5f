package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/model"
	"bistro/internal/service"
)

// CartHandler handles cart endpoints.
type CartHandler struct {
	svc service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(svc service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// CartLineRequest adds one menu item to a cart.
type CartLineRequest struct {
	Email  string      `json:"email" validate:"required,email"`
	MenuID string      `json:"menuId" validate:"required"`
	Name   string      `json:"name"`
	Image  string      `json:"image"`
	Price  model.Money `json:"price" swaggertype:"number"`
}

// AddToCart godoc
// @Summary Add a cart line
// @Tags carts
// @Accept json
// @Produce json
// @Param request body CartLineRequest true "Cart line"
// @Success 200 {object} InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /carts [post]
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req CartLineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	menuID, err := model.ParseID(req.MenuID)
	if err != nil {
		return fail(c, err)
	}

	id, err := h.svc.Add(c.Request().Context(), &model.CartLine{
		Email:  req.Email,
		MenuID: menuID,
		Name:   req.Name,
		Image:  req.Image,
		Price:  req.Price,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, InsertResult{Acknowledged: true, InsertedID: id.Hex()})
}

// ListCart godoc
// @Summary List cart lines by owner
// @Tags carts
// @Produce json
// @Param email query string true "Owner email"
// @Success 200 {array} model.CartLine
// @Failure 502 {object} errors.ErrorResponse
// @Router /carts [get]
func (h *CartHandler) ListCart(c echo.Context) error {
	lines, err := h.svc.ListByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, lines)
}

// RemoveFromCart godoc
// @Summary Remove a cart line
// @Tags carts
// @Produce json
// @Param id path string true "Cart line ID"
// @Success 200 {object} DeleteResult
// @Failure 400 {object} errors.ErrorResponse
// @Router /carts/{id} [delete]
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	n, err := h.svc.Remove(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResult{Acknowledged: true, DeletedCount: n})
}
