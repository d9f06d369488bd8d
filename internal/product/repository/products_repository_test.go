package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/domain"
	"crm/internal/testutil"
)

func TestNewSQLProductRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewSQLProductRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestProductRepository_InsertKeepsExactPrice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLProductRepository(db)
	now := time.Now().UTC()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	id, err := repo.Insert(context.Background(), tx, domain.Product{
		Name:      "Widget",
		Price:     decimal.RequireFromString("9.99"),
		Stock:     3,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	products, err := repo.FindByIDs(context.Background(), nil, []int64{id})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "9.99", products[0].Price.StringFixed(2))
	assert.Equal(t, 3, products[0].Stock)
}

func TestProductRepository_FindByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLProductRepository(db)
	id1 := testutil.InsertProduct(t, db, "Product 1", "10.00", 100)
	id2 := testutil.InsertProduct(t, db, "Product 2", "20.00", 50)
	testutil.InsertProduct(t, db, "Product 3", "30.00", 25)

	products, err := repo.FindByIDs(context.Background(), nil, []int64{id2, 9999, id1})
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, id1, products[0].ID)
	assert.Equal(t, id2, products[1].ID)
}

func TestProductRepository_FindByIDs_EmptyList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLProductRepository(db)

	products, err := repo.FindByIDs(context.Background(), nil, []int64{})
	require.NoError(t, err)
	assert.Nil(t, products)
}

func TestProductRepository_RaiseStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLProductRepository(db)
	lowID := testutil.InsertProduct(t, db, "Low", "1.00", 2)
	highID := testutil.InsertProduct(t, db, "High", "1.00", 15)
	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	low, err := repo.FindBelowStock(ctx, tx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, lowID, low[0].ID)

	changed, err := repo.RaiseStock(ctx, tx, lowID, 10, 20, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.RaiseStock(ctx, tx, highID, 10, 20, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, tx.Commit())

	products, err := repo.FindByIDs(ctx, nil, []int64{lowID, highID})
	require.NoError(t, err)
	assert.Equal(t, 20, products[0].Stock)
	assert.Equal(t, 15, products[1].Stock)
}

func TestProductRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLProductRepository(db)
	testutil.InsertProduct(t, db, "Phone", "499.99", 5)
	testutil.InsertProduct(t, db, "Phone Case", "9.99", 40)
	testutil.InsertProduct(t, db, "Tablet", "299.99", 8)
	ctx := context.Background()
	ten := 10

	phones, err := repo.List(ctx, Filter{Name: "Phone"})
	require.NoError(t, err)
	assert.Len(t, phones, 2)

	low, err := repo.List(ctx, Filter{StockBelow: &ten})
	require.NoError(t, err)
	assert.Len(t, low, 2)

	page, err := repo.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
