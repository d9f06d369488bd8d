package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
)

// Filter narrows List. Empty strings and zero values are ignored.
type Filter struct {
	Name   string
	Email  string
	Limit  int
	Offset int
}

type SQLCustomerRepository struct {
	db *sql.DB
}

func NewSQLCustomerRepository(db *sql.DB) *SQLCustomerRepository {
	return &SQLCustomerRepository{db: db}
}

// querier runs reads on tx when one is open, on the pool otherwise.
func (r *SQLCustomerRepository) querier(tx *sql.Tx) database.Querier {
	if tx != nil {
		return tx
	}
	return r.db
}

// Insert writes c and returns its id. A unique email violation is returned
// as a DuplicateError.
func (r *SQLCustomerRepository) Insert(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
	query := `
		INSERT INTO customers (name, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperrors.NewDuplicateError("email", c.Email, err)
		}
		return 0, fmt.Errorf("inserting customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (r *SQLCustomerRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, phone, created_at, updated_at
		FROM customers
		WHERE id = ?`

	c, err := scanCustomer(r.querier(tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer %d not found", id))
		}
		return nil, fmt.Errorf("querying customer: %w", err)
	}

	return c, nil
}

func (r *SQLCustomerRepository) FindByEmail(ctx context.Context, tx *sql.Tx, email string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, phone, created_at, updated_at
		FROM customers
		WHERE email = ?`

	c, err := scanCustomer(r.querier(tx).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with email %s not found", email))
		}
		return nil, fmt.Errorf("querying customer by email: %w", err)
	}

	return c, nil
}

// Update overwrites name, email, phone and updated_at of the customer c.ID.
func (r *SQLCustomerRepository) Update(ctx context.Context, tx *sql.Tx, c domain.Customer) error {
	query := `
		UPDATE customers
		SET name = ?, email = ?, phone = ?, updated_at = ?
		WHERE id = ?`

	_, err := tx.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.UpdatedAt, c.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.NewDuplicateError("email", c.Email, err)
		}
		return fmt.Errorf("updating customer: %w", err)
	}

	return nil
}

func (r *SQLCustomerRepository) List(ctx context.Context, f Filter) ([]domain.Customer, error) {
	var (
		where []string
		args  []any
	)

	if f.Name != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Email != "" {
		where = append(where, "email LIKE ?")
		args = append(args, "%"+f.Email+"%")
	}

	query := `SELECT id, name, email, phone, created_at, updated_at FROM customers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	query, args = database.Paginate(query, args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer row: %w", err)
		}
		customers = append(customers, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var (
		c     domain.Customer
		phone sql.NullString
	)

	if err := s.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	if phone.Valid {
		c.Phone = &phone.String
	}

	return &c, nil
}
