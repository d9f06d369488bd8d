package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"crm/internal/bulk"
	"crm/internal/customer/repository"
	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
	"crm/internal/validation"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type CustomerRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error)
	FindByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error)
	FindByEmail(ctx context.Context, tx *sql.Tx, email string) (*domain.Customer, error)
	Update(ctx context.Context, tx *sql.Tx, c domain.Customer) error
	List(ctx context.Context, f repository.Filter) ([]domain.Customer, error)
}

// Patch is a partial customer update. Nil fields keep their current value
// and an empty Phone clears the phone.
type Patch struct {
	Name  *string
	Email *string
	Phone *string
}

type CustomerService struct {
	db          TransactionManager
	txCfg       database.TxConfig
	repo        CustomerRepository
	validator   *validation.Validator
	coordinator *bulk.Coordinator
	logger      *zap.Logger
	now         func() time.Time
}

func NewCustomerService(
	db TransactionManager,
	txCfg database.TxConfig,
	repo CustomerRepository,
	validator *validation.Validator,
	coordinator *bulk.Coordinator,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		db:          db,
		txCfg:       txCfg,
		repo:        repo,
		validator:   validator,
		coordinator: coordinator,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores one customer in its own transaction.
func (s *CustomerService) Create(ctx context.Context, in validation.CustomerInput) (*domain.Customer, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	c, err := s.createInTx(txCtx, tx, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("email", c.Email), zap.Error(err))
		return nil, fmt.Errorf("committing customer: %w", err)
	}

	s.logger.Info("customer created", zap.Int64("customerId", c.ID), zap.String("email", c.Email))
	return &c, nil
}

// BulkCreate stores every valid customer of the batch and reports the rest.
func (s *CustomerService) BulkCreate(ctx context.Context, in []validation.CustomerInput) (*bulk.Result[domain.Customer], error) {
	return bulk.Run(ctx, s.coordinator, "customers", in, s.createInTx)
}

func (s *CustomerService) createInTx(ctx context.Context, tx *sql.Tx, in validation.CustomerInput) (domain.Customer, error) {
	in = normalize(in)

	if err := s.validator.Customer(ctx, in, s.emailLookup(tx), 0); err != nil {
		return domain.Customer{}, err
	}

	now := s.now()
	c := domain.Customer{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, tx, c)
	if err != nil {
		return domain.Customer{}, err
	}
	c.ID = id

	return c, nil
}

// Update applies p to customer id, re-validating the merged record and
// re-checking email uniqueness against every other customer.
func (s *CustomerService) Update(ctx context.Context, id int64, p Patch) (*domain.Customer, error) {
	txCtx, cancel := s.txCfg.Context(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, s.txCfg.Options)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	current, err := s.repo.FindByID(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	in := validation.CustomerInput{Name: current.Name, Email: current.Email, Phone: current.Phone}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Email != nil {
		in.Email = *p.Email
	}
	if p.Phone != nil {
		in.Phone = p.Phone
	}
	in = normalize(in)

	if err := s.validator.Customer(txCtx, in, s.emailLookup(tx), id); err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = in.Name
	updated.Email = in.Email
	updated.Phone = in.Phone
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(txCtx, tx, updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("customerId", id), zap.Error(err))
		return nil, fmt.Errorf("committing customer update: %w", err)
	}

	s.logger.Info("customer updated", zap.Int64("customerId", id))
	return &updated, nil
}

func (s *CustomerService) List(ctx context.Context, f repository.Filter) ([]domain.Customer, error) {
	return s.repo.List(ctx, f)
}

// emailLookup reads through tx so the check sees the batch's own writes.
func (s *CustomerService) emailLookup(tx *sql.Tx) validation.EmailLookup {
	return validation.EmailLookupFunc(func(ctx context.Context, email string) (*domain.Customer, error) {
		c, err := s.repo.FindByEmail(ctx, tx, email)
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, nil
		}
		return c, err
	})
}

func normalize(in validation.CustomerInput) validation.CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			in.Phone = nil
		} else {
			in.Phone = &phone
		}
	}
	return in
}
