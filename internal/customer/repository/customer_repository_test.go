package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/domain"
	apperrors "crm/internal/errors"
	"crm/internal/testutil"
)

func TestNewSQLCustomerRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewSQLCustomerRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func insertInTx(t *testing.T, db *sql.DB, repo *SQLCustomerRepository, c domain.Customer) (int64, error) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	id, err := repo.Insert(context.Background(), tx, c)
	if err != nil {
		return 0, err
	}
	require.NoError(t, tx.Commit())
	return id, nil
}

func TestCustomerRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCustomerRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	phone := "+1234567890"

	id, err := insertInTx(t, db, repo, domain.Customer{Name: "John Doe", Email: "john@example.com", Phone: &phone, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", byID.Name)
	require.NotNil(t, byID.Phone)
	assert.Equal(t, phone, *byID.Phone)
	assert.True(t, now.Equal(byID.CreatedAt))

	byEmail, err := repo.FindByEmail(ctx, nil, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
}

func TestCustomerRepository_FindNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCustomerRepository(db)

	c, err := repo.FindByID(context.Background(), nil, 9999)
	assert.Nil(t, c)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	c, err = repo.FindByEmail(context.Background(), nil, "nobody@example.com")
	assert.Nil(t, c)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCustomerRepository_InsertDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCustomerRepository(db)
	testutil.InsertCustomer(t, db, "Existing", "dup@example.com")
	now := time.Now().UTC()

	_, err := insertInTx(t, db, repo, domain.Customer{Name: "Dup", Email: "dup@example.com", CreatedAt: now, UpdatedAt: now})

	de, ok := apperrors.IsDuplicateError(err)
	require.True(t, ok, "expected DuplicateError, got %v", err)
	assert.Equal(t, "dup@example.com", de.Value)
}

func TestCustomerRepository_EmailIgnoresCase(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		email    string
	}{
		{"upper then lower", "A@x.com", "a@x.com"},
		{"lower then upper", "alice@example.com", "ALICE@Example.COM"},
		{"mixed", "Bob@Example.com", "bOB@eXAMPLE.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			repo := NewSQLCustomerRepository(db)
			id := testutil.InsertCustomer(t, db, "Existing", tt.existing)
			now := time.Now().UTC()

			_, err := insertInTx(t, db, repo, domain.Customer{Name: "Dup", Email: tt.email, CreatedAt: now, UpdatedAt: now})
			_, ok := apperrors.IsDuplicateError(err)
			require.True(t, ok, "expected DuplicateError, got %v", err)

			found, err := repo.FindByEmail(context.Background(), nil, tt.email)
			require.NoError(t, err)
			assert.Equal(t, id, found.ID)
			assert.Equal(t, tt.existing, found.Email)
			assert.Equal(t, 1, testutil.CountRows(t, db, "customers"))
		})
	}
}

func TestCustomerRepository_UpdateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCustomerRepository(db)
	aliceID := testutil.InsertCustomer(t, db, "Alice", "alice@example.com")
	testutil.InsertCustomer(t, db, "Bob", "bob@example.com")

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.Update(context.Background(), tx, domain.Customer{ID: aliceID, Name: "Alice", Email: "bob@example.com", UpdatedAt: time.Now().UTC()})

	_, ok := apperrors.IsDuplicateError(err)
	assert.True(t, ok)
}

func TestCustomerRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSQLCustomerRepository(db)
	testutil.InsertCustomer(t, db, "Alice Smith", "alice@example.com")
	testutil.InsertCustomer(t, db, "Bob Smith", "bob@corp.example")
	testutil.InsertCustomer(t, db, "Carol Jones", "carol@example.com")
	ctx := context.Background()

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	smiths, err := repo.List(ctx, Filter{Name: "Smith"})
	require.NoError(t, err)
	assert.Len(t, smiths, 2)

	corp, err := repo.List(ctx, Filter{Email: "corp"})
	require.NoError(t, err)
	require.Len(t, corp, 1)
	assert.Equal(t, "Bob Smith", corp[0].Name)

	page, err := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Bob Smith", page[0].Name)

	none, err := repo.List(ctx, Filter{Name: "Nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
