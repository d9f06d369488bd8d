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
	apperrors "crm/internal/errors"
	"crm/internal/testutil"
)

func TestNewSQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewSQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.NotNil(t, repo.products)
}

func insertOrder(t *testing.T, db *sql.DB, customerID int64, date time.Time, total string, productIDs ...int64) int64 {
	t.Helper()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	now := time.Now().UTC()
	id, err := NewSQLOrderRepository(db).Insert(ctx, tx, domain.Order{
		CustomerID:  customerID,
		OrderDate:   date,
		TotalAmount: decimal.RequireFromString(total),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, NewSQLOrderProductRepository(db).Insert(ctx, tx, id, productIDs))
	require.NoError(t, tx.Commit())

	return id
}

func TestOrderRepository_FindByID_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	customerID := testutil.InsertCustomer(t, db, "John Doe", "john@example.com")
	p1 := testutil.InsertProduct(t, db, "Phone", "499.99", 5)
	p2 := testutil.InsertProduct(t, db, "Tablet", "299.99", 8)
	date := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)

	id := insertOrder(t, db, customerID, date, "799.98", p2, p1)

	order, err := NewSQLOrderRepository(db).FindByID(context.Background(), nil, id)
	require.NoError(t, err)

	assert.Equal(t, id, order.ID)
	assert.Equal(t, customerID, order.CustomerID)
	assert.Equal(t, "john@example.com", order.CustomerEmail)
	assert.True(t, date.Equal(order.OrderDate))
	assert.Equal(t, "799.98", order.TotalAmount.StringFixed(2))
	assert.Equal(t, []int64{p1, p2}, order.ProductIDs)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)

	order, err := NewSQLOrderRepository(db).FindByID(context.Background(), nil, 999)

	assert.Nil(t, order)
	nf, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "order with id 999 not found", nf.Error())
}

func TestOrderRepository_UpdateTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	customerID := testutil.InsertCustomer(t, db, "John Doe", "john@example.com")
	id := insertOrder(t, db, customerID, time.Now().UTC(), "1.00")
	repo := NewSQLOrderRepository(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateTotal(ctx, tx, id, decimal.RequireFromString("12.34"), time.Now().UTC()))
	require.NoError(t, tx.Commit())

	order, err := repo.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, "12.34", order.TotalAmount.StringFixed(2))
	assert.Empty(t, order.ProductIDs)
	assert.NotNil(t, order.ProductIDs)
}

func TestOrderRepository_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	john := testutil.InsertCustomer(t, db, "John Doe", "john@example.com")
	jane := testutil.InsertCustomer(t, db, "Jane Roe", "jane@example.com")
	p1 := testutil.InsertProduct(t, db, "Phone", "499.99", 5)

	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	o1 := insertOrder(t, db, john, jan, "499.99", p1)
	o2 := insertOrder(t, db, jane, feb, "499.99", p1)
	o3 := insertOrder(t, db, john, mar, "499.99", p1)

	repo := NewSQLOrderRepository(db)
	ctx := context.Background()

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{o1, o2, o3}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, []int64{p1}, all[1].ProductIDs)
	assert.Equal(t, "jane@example.com", all[1].CustomerEmail)

	byCustomer, err := repo.List(ctx, Filter{CustomerID: &john})
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, o1, byCustomer[0].ID)
	assert.Equal(t, o3, byCustomer[1].ID)

	fromFeb, err := repo.List(ctx, Filter{OrderDateFrom: &feb})
	require.NoError(t, err)
	require.Len(t, fromFeb, 2)
	assert.Equal(t, o2, fromFeb[0].ID)

	page, err := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, o2, page[0].ID)
}

func TestOrderRepository_List_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	orders, err := NewSQLOrderRepository(db).List(context.Background(), Filter{})

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
