package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
	"crm/internal/order/repository"
)

type OrderService interface {
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (*domain.Order, error)
	ReplaceProducts(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Order, error)
}

// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms).
// Later attempts reuse the last interval.
var backoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

type OrderUseCase struct {
	service          OrderService
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
	sleep            func(ctx context.Context, d time.Duration) error
}

func NewOrderUseCase(service OrderService, logger *zap.Logger, maxRetryAttempts int) *OrderUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &OrderUseCase{
		service:          service,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              func() time.Time { return time.Now().UTC() },
		sleep:            sleepContext,
	}
}

// CreateOrder places an order for customerID. Repeated product ids collapse
// to one and a nil orderDate means now.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
	uc.logger.Info("create order started", zap.Int64("customerId", customerID), zap.Int("productCount", len(productIDs)))

	ids, err := normalizeProductIDs(productIDs)
	if err != nil {
		return nil, err
	}

	date := uc.now()
	if orderDate != nil {
		date = orderDate.UTC()
	}

	return withRetry(ctx, uc, "create order", func() (*domain.Order, error) {
		return uc.service.CreateOrder(ctx, customerID, ids, date)
	})
}

// UpdateOrderProducts replaces the product set of orderID and recomputes the total.
func (uc *OrderUseCase) UpdateOrderProducts(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error) {
	uc.logger.Info("update order products started", zap.Int64("orderId", orderID), zap.Int("productCount", len(productIDs)))

	ids, err := normalizeProductIDs(productIDs)
	if err != nil {
		return nil, err
	}

	return withRetry(ctx, uc, "update order products", func() (*domain.Order, error) {
		return uc.service.ReplaceProducts(ctx, orderID, ids)
	})
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, f repository.Filter) ([]domain.Order, error) {
	return uc.service.List(ctx, f)
}

func normalizeProductIDs(productIDs []int64) ([]int64, error) {
	if len(productIDs) == 0 {
		return nil, apperrors.NewEmptyInputError("productIds", "at least one product is required")
	}

	return domain.UniqueIDs(productIDs), nil
}

// withRetry reruns fn while it fails with a deadlock, lock timeout or busy
// database, up to the configured attempts.
func withRetry(ctx context.Context, uc *OrderUseCase, op string, fn func() (*domain.Order, error)) (*domain.Order, error) {
	var lastErr error

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		order, err := fn()
		if err == nil {
			return order, nil
		}

		if !database.IsRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == uc.maxRetryAttempts {
			break
		}

		base := backoffs[min(attempt, len(backoffs)-1)]
		// Jitter: ±20% of the base interval.
		wait := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
		uc.logger.Warn("transaction conflict, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		if err := uc.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	uc.logger.Error("max retries exceeded", zap.String("op", op), zap.Error(lastErr))
	return nil, apperrors.NewTransientIOError(op+": max retries exceeded", lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
