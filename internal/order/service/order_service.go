package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
	"crm/internal/money"
	"crm/internal/order/repository"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (int64, error)
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdateTotal(ctx context.Context, tx *sql.Tx, id int64, total decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, f repository.Filter) ([]domain.Order, error)
}

type OrderProductRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, orderID int64, productIDs []int64) error
	DeleteByOrder(ctx context.Context, tx *sql.Tx, orderID int64) error
}

// OrderService assembles orders. Every method runs in a single transaction
// and persists nothing when it returns an error.
type OrderService struct {
	db               TransactionManager
	txCfg            database.TxConfig
	customerRepo     CustomerRepository
	productRepo      ProductRepository
	orderRepo        OrderRepository
	orderProductRepo OrderProductRepository
	logger           *zap.Logger
	now              func() time.Time
}

func NewOrderService(
	db TransactionManager,
	txCfg database.TxConfig,
	customerRepo CustomerRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	orderProductRepo OrderProductRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:               db,
		txCfg:            txCfg,
		customerRepo:     customerRepo,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		orderProductRepo: orderProductRepo,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder expects productIDs to be non-empty and free of duplicates.
func (s *OrderService) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate time.Time) (*domain.Order, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, apperrors.NewInternalError("begin order transaction", err)
	}
	defer tx.Rollback()

	customer, err := s.customerRepo.FindByID(txCtx, tx, customerID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewMissingIDsError("customer", []int64{customerID})
		}
		return nil, err
	}

	products, err := s.resolveProducts(txCtx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := domain.Order{
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		ProductIDs:    productIDs,
		OrderDate:     orderDate.UTC(),
		TotalAmount:   totalOf(products),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order.ID, err = s.orderRepo.Insert(txCtx, tx, order)
	if err != nil {
		s.logger.Error("failed to insert order", zap.Int64("customerId", customerID), zap.Error(err))
		return nil, err
	}

	if err := s.orderProductRepo.Insert(txCtx, tx, order.ID, productIDs); err != nil {
		s.logger.Error("failed to insert order products", zap.Int64("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("orderId", order.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("commit order", err)
	}

	s.logger.Info("order created",
		zap.Int64("orderId", order.ID),
		zap.Int64("customerId", customerID),
		zap.Int("productCount", len(productIDs)),
		zap.String("totalAmount", money.Format(order.TotalAmount)),
	)

	return &order, nil
}

// ReplaceProducts swaps the product set of an order and recomputes its total.
func (s *OrderService) ReplaceProducts(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, apperrors.NewInternalError("begin order transaction", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByID(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}

	products, err := s.resolveProducts(txCtx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	if err := s.orderProductRepo.DeleteByOrder(txCtx, tx, orderID); err != nil {
		return nil, err
	}
	if err := s.orderProductRepo.Insert(txCtx, tx, orderID, productIDs); err != nil {
		return nil, err
	}

	order.ProductIDs = productIDs
	order.TotalAmount = totalOf(products)
	order.UpdatedAt = s.now()

	if err := s.orderRepo.UpdateTotal(txCtx, tx, orderID, order.TotalAmount, order.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("orderId", orderID), zap.Error(err))
		return nil, apperrors.NewInternalError("commit order products", err)
	}

	s.logger.Info("order products replaced",
		zap.Int64("orderId", orderID),
		zap.Int("productCount", len(productIDs)),
		zap.String("totalAmount", money.Format(order.TotalAmount)),
	)

	return order, nil
}

func (s *OrderService) List(ctx context.Context, f repository.Filter) ([]domain.Order, error) {
	return s.orderRepo.List(ctx, f)
}

// resolveProducts loads every id or fails listing all the missing ones.
func (s *OrderService) resolveProducts(ctx context.Context, tx *sql.Tx, productIDs []int64) ([]domain.Product, error) {
	products, err := s.productRepo.FindByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("loading order products: %w", err)
	}

	if missing := domain.MissingIDs(productIDs, products); len(missing) > 0 {
		s.logger.Warn("order references unknown products", zap.Int64s("missingIds", missing))
		return nil, apperrors.NewMissingIDsError("product", missing)
	}

	return products, nil
}

func totalOf(products []domain.Product) decimal.Decimal {
	prices := make([]decimal.Decimal, len(products))
	for i, p := range products {
		prices[i] = p.Price
	}
	return money.SumTotal(prices)
}
