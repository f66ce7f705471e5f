package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "bistro/internal/errors"
	"bistro/internal/model"
	"bistro/internal/service"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Finalize(ctx context.Context, in service.FinalizeInput) (*service.FinalizeResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FinalizeResult), args.Error(1)
}

func (m *MockPaymentService) History(ctx context.Context, email string) ([]model.Payment, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, price model.Money) (string, error) {
	args := m.Called(ctx, price)
	return args.String(0), args.Error(1)
}

// MockMenuService is a mock implementation of service.MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockMenuService) Import(ctx context.Context, items []model.MenuItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockMenuService) List(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuService) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuService) Update(ctx context.Context, id string, item *model.MenuItem) (int64, error) {
	args := m.Called(ctx, id, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuService) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Upsert(ctx context.Context, user *model.User) (*model.User, bool, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.Bool(1), args.Error(2)
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) PromoteToAdmin(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFinalizePayment(t *testing.T) {
	svc := new(MockPaymentService)
	e := newEcho()
	e.POST("/payment", NewPaymentHandler(svc).FinalizePayment)

	paymentID := primitive.NewObjectID()
	cart := primitive.NewObjectID().Hex()
	svc.On("Finalize", mock.Anything, mock.MatchedBy(func(in service.FinalizeInput) bool {
		return in.Email == "ann@example.com" &&
			in.Amount.String() == "42.5" &&
			in.TransactionID == "pi_1" &&
			len(in.CartIDs) == 1 && in.CartIDs[0] == cart
	})).Return(&service.FinalizeResult{PaymentID: paymentID, DeletedCount: 1}, nil)

	rec := do(e, http.MethodPost, "/payment",
		`{"email":"ann@example.com","price":42.5,"transactionId":"pi_1","cartIds":["`+cart+`"],"menuItemIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body FinalizePaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, paymentID.Hex(), body.PaymentResult.InsertedID)
	assert.Equal(t, int64(1), body.DeleteResult.DeletedCount)
	assert.False(t, body.Replayed)
	svc.AssertExpectations(t)
}

func TestFinalizePayment_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"missing cart ids", `{"email":"a@x.io","amount":1}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad email", `{"email":"nope","cartIds":[]}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"broken json", `{"email":`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed id", `{"email":"a@x.io","cartIds":["zz"]}`, apperrors.ErrMalformedIdentifier, http.StatusBadRequest, "MALFORMED_IDENTIFIER"},
		{"in progress", `{"email":"a@x.io","cartIds":[]}`, apperrors.ErrSettlementInProgress, http.StatusConflict, "SETTLEMENT_IN_PROGRESS"},
		{"store down", `{"email":"a@x.io","cartIds":[]}`, apperrors.Upstream("insert payment", errors.New("timeout")), http.StatusBadGateway, "UPSTREAM_FAILURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPaymentService)
			if tt.svcErr != nil {
				svc.On("Finalize", mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}
			e := newEcho()
			e.POST("/payment", NewPaymentHandler(svc).FinalizePayment)

			rec := do(e, http.MethodPost, "/payment", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			if tt.svcErr == nil {
				svc.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("CreateIntent", mock.Anything, mock.MatchedBy(func(p model.Money) bool {
		return p.String() == "19.99"
	})).Return("pi_secret_1", nil)

	e := newEcho()
	e.POST("/create_payment_intent", NewPaymentHandler(svc).CreatePaymentIntent)

	rec := do(e, http.MethodPost, "/create_payment_intent", `{"price":19.99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_secret_1"}`, rec.Body.String())
}

func TestGetMenuItem_AbsentIsNull(t *testing.T) {
	svc := new(MockMenuService)
	id := primitive.NewObjectID().Hex()
	svc.On("Get", mock.Anything, id).Return(nil, nil)

	e := newEcho()
	e.GET("/menu/:id", NewMenuHandler(svc).GetMenuItem)

	rec := do(e, http.MethodGet, "/menu/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestUpdateMenuItem_DescriptionAlias(t *testing.T) {
	svc := new(MockMenuService)
	id := primitive.NewObjectID().Hex()
	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(item *model.MenuItem) bool {
		return item.Recipe == "slow cooked" && item.Price.String() == "12"
	})).Return(int64(1), nil)

	e := newEcho()
	e.PATCH("/menu/:id", NewMenuHandler(svc).UpdateMenuItem)

	rec := do(e, http.MethodPatch, "/menu/"+id, `{"name":"Stew","price":12,"description":"slow cooked"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"modifiedCount":1}`, rec.Body.String())
}

func TestCreateUser(t *testing.T) {
	t.Run("new user", func(t *testing.T) {
		svc := new(MockUserService)
		id := primitive.NewObjectID()
		svc.On("Upsert", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@x.io" && u.Role == ""
		})).Return(&model.User{ID: id, Email: "new@x.io", Role: model.RoleUser}, true, nil)

		e := newEcho()
		e.POST("/user", NewUserHandler(svc).CreateUser)

		// role in the payload is not bound
		rec := do(e, http.MethodPost, "/user", `{"name":"N","email":"new@x.io","role":"admin"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"acknowledged":true,"insertedId":"`+id.Hex()+`"}`, rec.Body.String())
	})

	t.Run("existing user", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Upsert", mock.Anything, mock.Anything).
			Return(&model.User{Email: "old@x.io", Role: model.RoleAdmin}, false, nil)

		e := newEcho()
		e.POST("/user", NewUserHandler(svc).CreateUser)

		rec := do(e, http.MethodPost, "/user", `{"email":"old@x.io"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var user model.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, model.RoleAdmin, user.Role)
	})
}

func TestAdminStatus(t *testing.T) {
	svc := new(MockUserService)
	svc.On("IsAdmin", mock.Anything, "boss@x.io").Return(true, nil)

	e := newEcho()
	e.GET("/user/admin/:email", NewUserHandler(svc).AdminStatus)

	rec := do(e, http.MethodGet, "/user/admin/boss@x.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":true}`, rec.Body.String())
}

func TestPromoteToAdmin_MalformedID(t *testing.T) {
	svc := new(MockUserService)
	svc.On("PromoteToAdmin", mock.Anything, "123").Return(int64(0), apperrors.ErrMalformedIdentifier)

	e := newEcho()
	e.PATCH("/user/admin/:id", NewUserHandler(svc).PromoteToAdmin)

	rec := do(e, http.MethodPatch, "/user/admin/123", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_IDENTIFIER", decodeError(t, rec).Code)
}

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Summary(ctx context.Context) (*model.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminStats), args.Error(1)
}

func (m *MockStatsService) CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryStat), args.Error(1)
}

func TestAdminStats(t *testing.T) {
	revenue, err := model.MoneyFromString("42.5")
	require.NoError(t, err)

	svc := new(MockStatsService)
	svc.On("Summary", mock.Anything).Return(&model.AdminStats{Users: 3, MenuItems: 12, Orders: 7, Revenue: revenue}, nil)

	e := newEcho()
	e.GET("/admin-stats", NewStatsHandler(svc).AdminStats)

	rec := do(e, http.MethodGet, "/admin-stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":3,"products":12,"orders":7,"revenue":42.5}`, rec.Body.String())
	svc.AssertExpectations(t)
}
