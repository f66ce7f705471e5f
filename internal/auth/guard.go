package auth

import (
	"context"
	"errors"
	"net/url"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "bistro/internal/errors"
	"bistro/internal/logger"
	"bistro/internal/metrics"
	"bistro/internal/model"
)

// claimsContextKey is where Authenticated stores the verified claims.
const claimsContextKey = "claims"

// IdentityStore is the slice of the user repository the guard needs.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Guard gates protected routes: Authenticated first, then Admin or Self.
type Guard struct {
	tokens *JWTService
	users  IdentityStore
}

// NewGuard creates a guard verifying tokens with tokens and roles with users.
func NewGuard(tokens *JWTService, users IdentityStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// ClaimsFrom returns the claims attached by Authenticated.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// Authenticated rejects requests without a valid bearer token with 401.
func (g *Guard) Authenticated() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return g.tokens.Verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return deny(c, "unauthenticated", apperrors.ErrUnauthorized, err)
		},
	})
}

// Admin re-reads the caller's role from the identity store on every request.
// The role is never taken from the token.
func (g *Guard) Admin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return deny(c, "unauthenticated", apperrors.ErrUnauthorized, nil)
			}

			user, err := g.users.FindByEmail(c.Request().Context(), claims.Email)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				httpErr := apperrors.MapErrorToHTTP(err)
				logger.WithCtx(c.Request().Context()).Error("admin lookup failed", "email", claims.Email, "error", err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			if !user.IsAdmin() {
				return deny(c, "not_admin", apperrors.ErrForbidden, nil)
			}
			return next(c)
		}
	}
}

// Self allows the request only when the token identity equals the path
// parameter named param.
func (g *Guard) Self(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return deny(c, "unauthenticated", apperrors.ErrUnauthorized, nil)
			}
			if claims.Email != PathParam(c, param) {
				return deny(c, "not_owner", apperrors.ErrForbidden, nil)
			}
			return next(c)
		}
	}
}

// PathParam returns the named path parameter percent-decoded. echo keeps
// parameters escaped when the client encoded them, e.g. an @ sent as %40.
func PathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}

func deny(c echo.Context, reason string, sentinel, cause error) error {
	metrics.GuardDenials.WithLabelValues(reason).Inc()

	attrs := []any{"reason", reason, "method", c.Request().Method, "path", c.Path()}
	if cause != nil {
		attrs = append(attrs, "cause", cause.Error())
	}
	logger.WithCtx(c.Request().Context()).Warn("access denied", attrs...)

	httpErr := apperrors.MapErrorToHTTP(sentinel)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
