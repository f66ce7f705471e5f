package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/model"
	"bistro/internal/service"
)

// MenuHandler handles catalog endpoints.
type MenuHandler struct {
	svc service.MenuService
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(svc service.MenuService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// MenuItemRequest creates a menu item.
type MenuItemRequest struct {
	Name     string      `json:"name" validate:"required"`
	Recipe   string      `json:"recipe"`
	Image    string      `json:"image"`
	Category string      `json:"category" validate:"required"`
	Price    model.Money `json:"price" swaggertype:"number"`
}

// UpdateMenuItemRequest replaces the editable fields of a menu item.
// Description is accepted as an alias of recipe; an empty category keeps
// the current one.
type UpdateMenuItemRequest struct {
	Name        string      `json:"name" validate:"required"`
	Recipe      string      `json:"recipe"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	Price       model.Money `json:"price" swaggertype:"number"`
}

// CreateMenuItem godoc
// @Summary Add a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MenuItemRequest true "Menu item"
// @Success 200 {object} InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /menu [post]
func (h *MenuHandler) CreateMenuItem(c echo.Context) error {
	var req MenuItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.svc.Create(c.Request().Context(), &model.MenuItem{
		Name:     req.Name,
		Recipe:   req.Recipe,
		Image:    req.Image,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, InsertResult{Acknowledged: true, InsertedID: id.Hex()})
}

// ListMenu godoc
// @Summary List the menu
// @Tags menu
// @Produce json
// @Success 200 {array} model.MenuItem
// @Failure 502 {object} errors.ErrorResponse
// @Router /menu [get]
func (h *MenuHandler) ListMenu(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetMenuItem godoc
// @Summary Get a menu item
// @Description Responds with null when no item has the id.
// @Tags menu
// @Produce json
// @Param id path string true "Menu item ID"
// @Success 200 {object} model.MenuItem
// @Failure 400 {object} errors.ErrorResponse
// @Router /menu/{id} [get]
func (h *MenuHandler) GetMenuItem(c echo.Context) error {
	item, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateMenuItem godoc
// @Summary Update a menu item
// @Tags menu
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Param request body UpdateMenuItemRequest true "Menu item"
// @Success 200 {object} UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /menu/{id} [patch]
func (h *MenuHandler) UpdateMenuItem(c echo.Context) error {
	var req UpdateMenuItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe := req.Recipe
	if recipe == "" {
		recipe = req.Description
	}

	n, err := h.svc.Update(c.Request().Context(), c.Param("id"), &model.MenuItem{
		Name:     req.Name,
		Recipe:   recipe,
		Image:    req.Image,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, UpdateResult{Acknowledged: true, ModifiedCount: n})
}

// DeleteMenuItem godoc
// @Summary Delete a menu item
// @Tags menu
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu item ID"
// @Success 200 {object} DeleteResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /menu/{id} [delete]
func (h *MenuHandler) DeleteMenuItem(c echo.Context) error {
	n, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResult{Acknowledged: true, DeletedCount: n})
}
