package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bistro/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *model.User) (*model.User, bool, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Create(ctx context.Context, line *model.CartLine) (primitive.ObjectID, error) {
	args := m.Called(ctx, line)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockCartRepository) ListByEmail(ctx context.Context, email string) ([]model.CartLine, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID, owner string) (int64, error) {
	args := m.Called(ctx, ids, owner)
	return args.Get(0).(int64), args.Error(1)
}

// MockMenuRepository is a mock implementation of MenuRepository.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockMenuRepository) InsertMany(ctx context.Context, items []model.MenuItem) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockMenuRepository) List(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) Update(ctx context.Context, id primitive.ObjectID, item *model.MenuItem) (int64, error) {
	args := m.Called(ctx, id, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuRepository) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) (primitive.ObjectID, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockPaymentRepository) ListByEmail(ctx context.Context, email string) ([]model.Payment, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) TotalRevenue(ctx context.Context) (model.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Money), args.Error(1)
}

func (m *MockPaymentRepository) CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryStat), args.Error(1)
}

// MockSettlementLogRepository is a mock implementation of SettlementLogRepository.
type MockSettlementLogRepository struct {
	mock.Mock
}

func (m *MockSettlementLogRepository) Create(ctx context.Context, log *model.SettlementLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSettlementLogRepository) CreateBatch(ctx context.Context, logs []model.SettlementLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, paymentID string) error {
	args := m.Called(ctx, key, paymentID)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockGateway is a mock implementation of gateway.PaymentGateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	args := m.Called(ctx, amountMinor, currency)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

// MockTransactor runs the callback inline, as a single-node store would.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
