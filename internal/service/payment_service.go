package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bistro/internal/config"
	apperrors "bistro/internal/errors"
	"bistro/internal/events"
	"bistro/internal/gateway"
	"bistro/internal/logger"
	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/repository"
)

// FinalizeInput is one checkout as submitted by the client.
type FinalizeInput struct {
	Email         string
	Amount        model.Money
	Currency      string
	TransactionID string
	Status        string
	CartIDs       []string
	MenuItemIDs   []string
}

// FinalizeResult reports the recorded payment and how many cart lines were
// retired. Replayed is set when an earlier identical request already
// recorded the payment.
type FinalizeResult struct {
	PaymentID    primitive.ObjectID
	DeletedCount int64
	Replayed     bool
}

// Transactor runs fn in a multi-document transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes a JSON event under a routing key.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// PaymentService records payments and retires the purchased cart lines.
type PaymentService interface {
	Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error)
	History(ctx context.Context, email string) ([]model.Payment, error)
	// CreateIntent asks the gateway for a card intent of price and
	// returns its client secret.
	CreateIntent(ctx context.Context, price model.Money) (string, error)
}

// PaymentDeps are the collaborators of the payment service. Tx, Idempotency,
// Audit and Events are optional.
type PaymentDeps struct {
	Payments    repository.PaymentRepository
	Carts       repository.CartRepository
	Gateway     gateway.PaymentGateway
	Tx          Transactor
	Idempotency IdempotencyStore
	Audit       *SettlementLogger
	Events      EventPublisher
}

type paymentService struct {
	payments repository.PaymentRepository
	carts    repository.CartRepository
	gateway  gateway.PaymentGateway
	tx       Transactor
	idem     IdempotencyStore
	audit    *SettlementLogger
	events   EventPublisher
	cfg      config.PaymentConfig
	currency string
	now      func() time.Time
}

// NewPaymentService creates a new payment service. currency is used for
// payments that do not name one and for every payment intent.
func NewPaymentService(deps PaymentDeps, cfg config.PaymentConfig, currency string) PaymentService {
	return &paymentService{
		payments: deps.Payments,
		carts:    deps.Carts,
		gateway:  deps.Gateway,
		tx:       deps.Tx,
		idem:     deps.Idempotency,
		audit:    deps.Audit,
		events:   deps.Events,
		cfg:      cfg,
		currency: currency,
		now:      time.Now,
	}
}

func (s *paymentService) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	if in.Amount.IsNegative() {
		s.recordFailure(ctx, in, "", apperrors.ErrInvalidAmount)
		return nil, apperrors.ErrInvalidAmount
	}
	cartIDs, err := model.ParseIDs(in.CartIDs)
	if err != nil {
		s.recordFailure(ctx, in, "", err)
		return nil, err
	}
	menuIDs, err := model.ParseIDs(in.MenuItemIDs)
	if err != nil {
		s.recordFailure(ctx, in, "", err)
		return nil, err
	}

	// an empty cart set carries no identity to collapse retries on
	var key string
	if s.cfg.Idempotency && s.idem != nil && len(cartIDs) > 0 {
		key = IdempotencyKey(in.Email, cartIDs)
		res, err := s.claim(ctx, key, in, cartIDs)
		if err != nil || res != nil {
			return res, err
		}
	}

	payment := &model.Payment{
		Email:         in.Email,
		Amount:        in.Amount,
		Currency:      in.Currency,
		TransactionID: in.TransactionID,
		Status:        in.Status,
		CartIDs:       cartIDs,
		MenuItemIDs:   menuIDs,
		Date:          s.now().UTC(),
	}
	if payment.Currency == "" {
		payment.Currency = s.currency
	}
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}

	deleted, inserted, err := s.settle(ctx, payment)
	if err != nil {
		if key != "" {
			if inserted {
				// the payment exists; a retry replays it and re-runs the delete
				_ = s.idem.Complete(ctx, key, payment.ID.Hex())
			} else {
				_ = s.idem.Release(ctx, key)
			}
		}
		logger.WithCtx(ctx).Error("payment finalize failed",
			"email", in.Email, "payment_inserted", inserted, "error", err)
		s.recordFailure(ctx, in, idHex(payment.ID, inserted), err)
		return nil, err
	}
	if key != "" {
		_ = s.idem.Complete(ctx, key, payment.ID.Hex())
	}

	s.recordSettled(ctx, payment, len(cartIDs), deleted, model.SettlementStatusSettled)
	s.publish(ctx, payment, deleted)
	logger.WithCtx(ctx).Info("payment finalized",
		"payment_id", payment.ID.Hex(), "email", payment.Email, "cart_lines_removed", deleted)

	return &FinalizeResult{PaymentID: payment.ID, DeletedCount: deleted}, nil
}

// settle inserts the payment and then retires its cart lines. inserted
// reports whether the payment is durable even though err is set.
func (s *paymentService) settle(ctx context.Context, payment *model.Payment) (deleted int64, inserted bool, err error) {
	owner := ""
	if s.cfg.VerifyCartOwner {
		owner = payment.Email
	}

	steps := func(ctx context.Context) error {
		if _, err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		inserted = true
		n, err := s.carts.DeleteMany(ctx, payment.CartIDs, owner)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	}

	if s.cfg.Transactional && s.tx != nil {
		err = s.tx.WithTransaction(ctx, steps)
		if err != nil {
			// rolled back
			return 0, false, err
		}
		return deleted, true, nil
	}
	err = steps(ctx)
	return deleted, inserted, err
}

// claim returns a non-nil result when the request is a replay.
func (s *paymentService) claim(ctx context.Context, key string, in FinalizeInput, cartIDs []primitive.ObjectID) (*FinalizeResult, error) {
	existing, claimed, err := s.idem.Claim(ctx, key)
	if err != nil {
		return nil, apperrors.Upstream("claim idempotency key", err)
	}
	if claimed {
		return nil, nil
	}
	if existing == "" {
		metrics.PaymentsFinalized.WithLabelValues("in_progress").Inc()
		return nil, apperrors.ErrSettlementInProgress
	}

	paymentID, err := primitive.ObjectIDFromHex(existing)
	if err == nil {
		_, err = s.payments.FindByID(ctx, paymentID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUpstream) {
			return nil, err
		}
		// stale or unreadable key: settle from scratch
		_ = s.idem.Release(ctx, key)
		if _, claimed, err := s.idem.Claim(ctx, key); err != nil || !claimed {
			return nil, apperrors.ErrSettlementInProgress
		}
		return nil, nil
	}

	owner := ""
	if s.cfg.VerifyCartOwner {
		owner = in.Email
	}
	// lines left behind by an earlier partial failure are retired now
	deleted, err := s.carts.DeleteMany(ctx, cartIDs, owner)
	if err != nil {
		return nil, err
	}

	s.recordSettled(ctx, &model.Payment{ID: paymentID, Email: in.Email}, len(cartIDs), deleted, model.SettlementStatusReplayed)
	logger.WithCtx(ctx).Info("payment finalize replayed", "payment_id", existing, "email", in.Email)
	return &FinalizeResult{PaymentID: paymentID, DeletedCount: deleted, Replayed: true}, nil
}

func (s *paymentService) History(ctx context.Context, email string) ([]model.Payment, error) {
	return s.payments.ListByEmail(ctx, email)
}

func (s *paymentService) CreateIntent(ctx context.Context, price model.Money) (string, error) {
	if price.IsNegative() {
		return "", apperrors.ErrInvalidAmount
	}
	// minor units, truncated toward zero
	amount := price.Mul(decimal.NewFromInt(100)).IntPart()

	secret, err := s.gateway.CreatePaymentIntent(ctx, amount, s.currency)
	if err != nil {
		logger.WithCtx(ctx).Error("payment intent failed", "amount", amount, "error", err)
		return "", apperrors.Upstream("create payment intent", err)
	}
	return secret, nil
}

func (s *paymentService) recordSettled(ctx context.Context, p *model.Payment, requested int, removed int64, status model.SettlementStatus) {
	metrics.PaymentsFinalized.WithLabelValues(string(status)).Inc()
	metrics.CartLinesRetired.Add(float64(removed))
	s.audit.Record(ctx, model.SettlementLog{
		PaymentID:          p.ID.Hex(),
		Email:              p.Email,
		CartLinesRequested: requested,
		CartLinesRemoved:   removed,
		Status:             status,
	})
}

func (s *paymentService) recordFailure(ctx context.Context, in FinalizeInput, paymentID string, cause error) {
	metrics.PaymentsFinalized.WithLabelValues(string(model.SettlementStatusFailed)).Inc()
	s.audit.Record(ctx, model.SettlementLog{
		PaymentID:          paymentID,
		Email:              in.Email,
		CartLinesRequested: len(in.CartIDs),
		Status:             model.SettlementStatusFailed,
		ErrorMessage:       cause.Error(),
	})
}

func (s *paymentService) publish(ctx context.Context, p *model.Payment, deleted int64) {
	if s.events == nil {
		return
	}
	evt := events.PaymentFinalized{
		PaymentID:    p.ID.Hex(),
		Email:        p.Email,
		Amount:       p.Amount.String(),
		Currency:     p.Currency,
		CartIDs:      hexIDs(p.CartIDs),
		MenuItemIDs:  hexIDs(p.MenuItemIDs),
		DeletedCount: deleted,
	}
	if err := s.events.PublishJSON(ctx, events.PaymentFinalizedKey, evt); err != nil {
		logger.WithCtx(ctx).Warn("publish payment event failed", "payment_id", evt.PaymentID, "error", err)
	}
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func idHex(id primitive.ObjectID, ok bool) string {
	if !ok {
		return ""
	}
	return id.Hex()
}
