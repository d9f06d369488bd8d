package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"crm/internal/domain"
	"crm/internal/infrastructure/database"
)

// Filter narrows List. StockBelow is ignored when nil.
type Filter struct {
	Name       string
	StockBelow *int
	Limit      int
	Offset     int
}

type SQLProductRepository struct {
	db *sql.DB
}

func NewSQLProductRepository(db *sql.DB) *SQLProductRepository {
	return &SQLProductRepository{db: db}
}

func (r *SQLProductRepository) querier(tx *sql.Tx) database.Querier {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SQLProductRepository) Insert(ctx context.Context, tx *sql.Tx, p domain.Product) (int64, error) {
	query := `
		INSERT INTO products (name, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, p.Name, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

// FindByIDs returns the products whose id is in ids, ordered by id. Missing
// ids are simply absent from the result.
func (r *SQLProductRepository) FindByIDs(ctx context.Context, tx *sql.Tx, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE id IN (%s)
		ORDER BY id`,
		strings.Join(placeholders, ", "),
	)

	return r.query(ctx, r.querier(tx), query, args...)
}

// FindBelowStock returns products whose stock is strictly below threshold.
func (r *SQLProductRepository) FindBelowStock(ctx context.Context, tx *sql.Tx, threshold int) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE stock < ?
		ORDER BY id`

	return r.query(ctx, r.querier(tx), query, threshold)
}

// RaiseStock sets the stock of product id to target if it is still below
// threshold. It reports whether the row was changed.
func (r *SQLProductRepository) RaiseStock(ctx context.Context, tx *sql.Tx, id int64, threshold, target int, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE products
		SET stock = ?, updated_at = ?
		WHERE id = ? AND stock < ?`

	result, err := tx.ExecContext(ctx, query, target, updatedAt, id, threshold)
	if err != nil {
		return false, fmt.Errorf("raising product stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rows == 1, nil
}

func (r *SQLProductRepository) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)

	if f.Name != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.StockBelow != nil {
		where = append(where, "stock < ?")
		args = append(args, *f.StockBelow)
	}

	query := `SELECT id, name, price, stock, created_at, updated_at FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	query, args = database.Paginate(query, args, f.Limit, f.Offset)

	return r.query(ctx, r.db, query, args...)
}

func (r *SQLProductRepository) query(ctx context.Context, q database.Querier, query string, args ...any) ([]domain.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}
