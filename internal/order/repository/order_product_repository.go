package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm/internal/infrastructure/database"
)

// SQLOrderProductRepository manages the order_products association rows.
type SQLOrderProductRepository struct {
	db *sql.DB
}

func NewSQLOrderProductRepository(db *sql.DB) *SQLOrderProductRepository {
	return &SQLOrderProductRepository{db: db}
}

// Insert associates every product id with orderID in a single statement.
func (r *SQLOrderProductRepository) Insert(ctx context.Context, tx *sql.Tx, orderID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}

	values := make([]string, len(productIDs))
	args := make([]any, 0, len(productIDs)*2)
	for i, productID := range productIDs {
		values[i] = "(?, ?)"
		args = append(args, orderID, productID)
	}

	query := fmt.Sprintf(`INSERT INTO order_products (order_id, product_id) VALUES %s`, strings.Join(values, ", "))

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order products: %w", err)
	}

	return nil
}

func (r *SQLOrderProductRepository) DeleteByOrder(ctx context.Context, tx *sql.Tx, orderID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("deleting order products: %w", err)
	}
	return nil
}

// FindProductIDs returns the product ids of each order, ordered by product id.
func (r *SQLOrderProductRepository) FindProductIDs(ctx context.Context, q database.Querier, orderIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT order_id, product_id
		FROM order_products
		WHERE order_id IN (%s)
		ORDER BY order_id, product_id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID, productID int64
		if err := rows.Scan(&orderID, &productID); err != nil {
			return nil, fmt.Errorf("scanning order product row: %w", err)
		}
		result[orderID] = append(result[orderID], productID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order product rows: %w", err)
	}

	return result, nil
}
