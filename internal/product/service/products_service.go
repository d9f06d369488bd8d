package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crm/internal/bulk"
	"crm/internal/domain"
	"crm/internal/infrastructure/database"
	"crm/internal/product/repository"
	"crm/internal/validation"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, p domain.Product) (int64, error)
	FindBelowStock(ctx context.Context, tx *sql.Tx, threshold int) ([]domain.Product, error)
	RaiseStock(ctx context.Context, tx *sql.Tx, id int64, threshold, target int, updatedAt time.Time) (bool, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Product, error)
}

type ProductService struct {
	db          TransactionManager
	txCfg       database.TxConfig
	repo        ProductRepository
	validator   *validation.Validator
	coordinator *bulk.Coordinator
	logger      *zap.Logger
	threshold   int
	target      int
	now         func() time.Time
}

func NewProductService(
	db TransactionManager,
	txCfg database.TxConfig,
	repo ProductRepository,
	validator *validation.Validator,
	coordinator *bulk.Coordinator,
	logger *zap.Logger,
	restockThreshold int,
	restockTarget int,
) *ProductService {
	return &ProductService{
		db:          db,
		txCfg:       txCfg,
		repo:        repo,
		validator:   validator,
		coordinator: coordinator,
		logger:      logger,
		threshold:   restockThreshold,
		target:      restockTarget,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) Create(ctx context.Context, in validation.ProductInput) (*domain.Product, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.createInTx(txCtx, tx, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("name", p.Name), zap.Error(err))
		return nil, fmt.Errorf("committing product: %w", err)
	}

	s.logger.Info("product created", zap.Int64("productId", p.ID), zap.String("price", p.Price.StringFixed(2)))
	return &p, nil
}

func (s *ProductService) BulkCreate(ctx context.Context, in []validation.ProductInput) (*bulk.Result[domain.Product], error) {
	return bulk.Run(ctx, s.coordinator, "products", in, s.createInTx)
}

func (s *ProductService) createInTx(ctx context.Context, tx *sql.Tx, in validation.ProductInput) (domain.Product, error) {
	values, err := s.validator.Product(in)
	if err != nil {
		return domain.Product{}, err
	}

	now := s.now()
	p := domain.Product{
		Name:      values.Name,
		Price:     values.Price,
		Stock:     values.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, tx, p)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id

	return p, nil
}

// Restock raises every product below the restock threshold to the target
// stock in one transaction and returns the products it changed.
func (s *ProductService) Restock(ctx context.Context) ([]domain.Product, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	low, err := s.repo.FindBelowStock(txCtx, tx, s.threshold)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated := []domain.Product{}
	for _, p := range low {
		changed, err := s.repo.RaiseStock(txCtx, tx, p.ID, s.threshold, s.target, now)
		if err != nil {
			s.logger.Error("failed to restock product", zap.Int64("productId", p.ID), zap.Error(err))
			return nil, err
		}
		if !changed {
			continue
		}
		p.Stock = s.target
		p.UpdatedAt = now
		updated = append(updated, p)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit restock", zap.Error(err))
		return nil, fmt.Errorf("committing restock: %w", err)
	}

	s.logger.Info("low stock products restocked", zap.Int("count", len(updated)), zap.Int("threshold", s.threshold), zap.Int("target", s.target))
	return updated, nil
}

func (s *ProductService) List(ctx context.Context, f repository.Filter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}
