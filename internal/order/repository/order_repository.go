package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
)

// Filter narrows List. Nil pointers are ignored.
type Filter struct {
	CustomerID    *int64
	OrderDateFrom *time.Time
	Limit         int
	Offset        int
}

type SQLOrderRepository struct {
	db       *sql.DB
	products *SQLOrderProductRepository
}

func NewSQLOrderRepository(db *sql.DB) *SQLOrderRepository {
	return &SQLOrderRepository{db: db, products: NewSQLOrderProductRepository(db)}
}

func (r *SQLOrderRepository) querier(tx *sql.Tx) database.Querier {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (int64, error) {
	query := `
		INSERT INTO orders (customer_id, order_date, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, o.CustomerID, o.OrderDate, o.TotalAmount, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

// FindByID loads the order with its customer email and product ids.
func (r *SQLOrderRepository) FindByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	q := r.querier(tx)
	query := `
		SELECT o.id, o.customer_id, c.email, o.order_date, o.total_amount, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = ?`

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	ids, err := r.products.FindProductIDs(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.ProductIDs = productIDsOf(ids, id)

	return order, nil
}

func (r *SQLOrderRepository) UpdateTotal(ctx context.Context, tx *sql.Tx, id int64, total decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE orders SET total_amount = ?, updated_at = ? WHERE id = ?`

	if _, err := tx.ExecContext(ctx, query, total, updatedAt, id); err != nil {
		return fmt.Errorf("updating order total: %w", err)
	}

	return nil
}

func (r *SQLOrderRepository) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)

	if f.CustomerID != nil {
		where = append(where, "o.customer_id = ?")
		args = append(args, *f.CustomerID)
	}
	if f.OrderDateFrom != nil {
		where = append(where, "o.order_date >= ?")
		args = append(args, f.OrderDateFrom.UTC())
	}

	query := `
		SELECT o.id, o.customer_id, c.email, o.order_date, o.total_amount, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.id"
	query, args = database.Paginate(query, args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	byOrder, err := r.products.FindProductIDs(ctx, r.db, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].ProductIDs = productIDsOf(byOrder, orders[i].ID)
	}

	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var o domain.Order
	err := s.Scan(&o.ID, &o.CustomerID, &o.CustomerEmail, &o.OrderDate, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func productIDsOf(byOrder map[int64][]int64, orderID int64) []int64 {
	if ids, ok := byOrder[orderID]; ok {
		return ids
	}
	return []int64{}
}
