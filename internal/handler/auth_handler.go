package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bistro/internal/auth"
)

// AuthHandler issues session tokens.
type AuthHandler struct {
	tokens *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokens *auth.JWTService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// TokenRequest is the identity payload signed into the token.
type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// TokenResponse carries a signed session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken godoc
// @Summary Issue a session token
// @Description Signs the identity payload into a token valid for two hours.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Identity payload"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /jwt [post]
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.tokens.Issue(auth.ClaimPayload{Email: req.Email, Name: req.Name})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}
