package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"crm/internal/config"
	"crm/internal/infrastructure/database"
)

// SetupTestDB opens a file-backed SQLite database in a temp dir with the
// full schema applied. The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "crm_test.db"),
	}

	db, err := database.NewConnection(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// SetupMySQLTestDB connects to the MySQL database named by CRM_TEST_MYSQL_DSN
// and skips the test when it is unset or unreachable.
func SetupMySQLTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("CRM_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("CRM_TEST_MYSQL_DSN not set")
	}

	db, err := sql.Open(database.DriverMySQL, dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	if err := database.Migrate(context.Background(), db, database.DriverMySQL); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, db) })
	return db
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"order_products", "orders", "products", "customers"}
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// InsertCustomer writes a customer row directly and returns its id.
func InsertCustomer(t *testing.T, db *sql.DB, name, email string) int64 {
	t.Helper()

	now := time.Now().UTC()
	res, err := db.Exec(
		`INSERT INTO customers (name, email, phone, created_at, updated_at) VALUES (?, ?, NULL, ?, ?)`,
		name, email, now, now,
	)
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read customer id: %v", err)
	}
	return id
}

// InsertProduct writes a product row directly and returns its id.
func InsertProduct(t *testing.T, db *sql.DB, name, price string, stock int) int64 {
	t.Helper()

	now := time.Now().UTC()
	res, err := db.Exec(
		`INSERT INTO products (name, price, stock, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, decimal.RequireFromString(price), stock, now, now,
	)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read product id: %v", err)
	}
	return id
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
