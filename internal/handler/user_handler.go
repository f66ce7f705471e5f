package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/auth"
	"bistro/internal/model"
	"bistro/internal/service"
)

// UserHandler bundles identity endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the sign-in profile. Roles cannot be set here.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photoURL"`
}

// AdminStatusResponse answers whether the caller is an admin.
type AdminStatusResponse struct {
	Admin bool `json:"admin"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create user on first sign-in
// @Description Inserts the user if the email is new, otherwise returns the stored record unchanged.
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User payload"
// @Success 200 {object} InsertResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /user [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, created, err := h.svc.Upsert(c.Request().Context(), &model.User{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return fail(c, err)
	}
	if !created {
		return c.JSON(http.StatusOK, user)
	}
	return c.JSON(http.StatusOK, InsertResult{Acknowledged: true, InsertedID: user.ID.Hex()})
}

// AdminStatus godoc
// @Summary Check own admin flag
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "Caller email"
// @Success 200 {object} AdminStatusResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/admin/{email} [get]
func (h *UserHandler) AdminStatus(c echo.Context) error {
	admin, err := h.svc.IsAdmin(c.Request().Context(), auth.PathParam(c, "email"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, AdminStatusResponse{Admin: admin})
}

// PromoteToAdmin godoc
// @Summary Grant the admin role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UpdateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/admin/{id} [patch]
func (h *UserHandler) PromoteToAdmin(c echo.Context) error {
	n, err := h.svc.PromoteToAdmin(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, UpdateResult{Acknowledged: true, ModifiedCount: n})
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} DeleteResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	n, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResult{Acknowledged: true, DeletedCount: n})
}
