package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bistro/internal/auth"
	"bistro/internal/config"
	apperrors "bistro/internal/errors"
	"bistro/internal/handler"
	"bistro/internal/model"
	"bistro/internal/service"
)

type staticUsers map[string]*model.User

func (s staticUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTService) {
	return newTestServerWith(t, nil, nil)
}

func newTestServerWith(t *testing.T, userSvc service.UserService, paymentSvc service.PaymentService) (*echo.Echo, *auth.JWTService) {
	t.Helper()
	tokens := auth.NewJWTService("router-secret")
	users := staticUsers{"user@x.io": {Email: "user@x.io", Role: model.RoleUser}}

	e := echo.New()
	Register(e, &config.Config{CORSOrigins: []string{"*"}}, auth.NewGuard(tokens, users), Handlers{
		Auth:    handler.NewAuthHandler(tokens),
		User:    handler.NewUserHandler(userSvc),
		Cart:    handler.NewCartHandler(nil),
		Menu:    handler.NewMenuHandler(nil),
		Review:  handler.NewReviewHandler(nil),
		Payment: handler.NewPaymentHandler(paymentSvc),
		Stats:   handler.NewStatsHandler(nil),
	})
	return e, tokens
}

// adminFlags answers IsAdmin and records the email it was asked about.
type adminFlags struct {
	service.UserService
	asked []string
}

func (a *adminFlags) IsAdmin(_ context.Context, email string) (bool, error) {
	a.asked = append(a.asked, email)
	return false, nil
}

type paymentHistory struct {
	service.PaymentService
	asked []string
}

func (p *paymentHistory) History(_ context.Context, email string) ([]model.Payment, error) {
	p.asked = append(p.asked, email)
	return []model.Payment{{Email: email}}, nil
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var adminRoutes = []struct{ method, path string }{
	{http.MethodGet, "/users"},
	{http.MethodPatch, "/user/admin/65f000000000000000000001"},
	{http.MethodDelete, "/user/65f000000000000000000001"},
	{http.MethodPost, "/menu"},
	{http.MethodPatch, "/menu/65f000000000000000000001"},
	{http.MethodDelete, "/menu/65f000000000000000000001"},
	{http.MethodGet, "/admin-stats"},
	{http.MethodGet, "/order-stats"},
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e, _ := newTestServer(t)

	routes := append([]struct{ method, path string }{
		{http.MethodGet, "/user/admin/user@x.io"},
		{http.MethodGet, "/payment/user@x.io"},
	}, adminRoutes...)

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := serve(e, r.method, r.path, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminRoutesRejectPlainUsers(t *testing.T) {
	e, tokens := newTestServer(t)
	token, err := tokens.Issue(auth.ClaimPayload{Email: "user@x.io"})
	require.NoError(t, err)

	for _, r := range adminRoutes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := serve(e, r.method, r.path, token)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestSelfRoutesRejectOtherIdentities(t *testing.T) {
	e, tokens := newTestServer(t)
	token, err := tokens.Issue(auth.ClaimPayload{Email: "user@x.io"})
	require.NoError(t, err)

	for _, path := range []string{"/user/admin/boss@x.io", "/payment/boss@x.io"} {
		rec := serve(e, http.MethodGet, path, token)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestPublicEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the server!", rec.Body.String())

	rec = serve(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bistro_http_requests_total")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestSelfRoutesDecodeEscapedEmail(t *testing.T) {
	users, payments := &adminFlags{}, &paymentHistory{}
	e, tokens := newTestServerWith(t, users, payments)
	token, err := tokens.Issue(auth.ClaimPayload{Email: "user@x.io"})
	require.NoError(t, err)

	rec := serve(e, http.MethodGet, "/user/admin/user%40x.io", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"admin":false}`, rec.Body.String())
	assert.Equal(t, []string{"user@x.io"}, users.asked)

	rec = serve(e, http.MethodGet, "/payment/user%40x.io", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"user@x.io"}, payments.asked)

	rec = serve(e, http.MethodGet, "/payment/boss%40x.io", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
