package ledger

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAccount(t *testing.T, db *sql.DB, name string, calculated decimal.Decimal, actual *decimal.Decimal) repository.Account {
	t.Helper()
	a := repository.Account{
		ID:                uuid.NewString(),
		Name:              name,
		Type:              repository.AccountBank,
		CalculatedBalance: calculated,
		ActualBalance:     actual,
		Currency:          "COP",
		IsActive:          true,
	}
	require.NoError(t, repository.NewAccountRepo(db).Insert(context.Background(), a))
	return a
}

func seedCategory(t *testing.T, db *sql.DB, name, categoryType string) repository.Category {
	t.Helper()
	c := repository.Category{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     categoryType,
		Color:    "#3b82f6",
		IsActive: true,
	}
	require.NoError(t, repository.NewCategoryRepo(db).Insert(context.Background(), c))
	return c
}

func getAccount(t *testing.T, db *sql.DB, id string) repository.Account {
	t.Helper()
	a, err := repository.NewAccountRepo(db).Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, a)
	return *a
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// requireDecimalEqual compares by numeric value, ignoring exponent.
func requireDecimalEqual(t *testing.T, want, got decimal.Decimal) {
	t.Helper()
	require.True(t, want.Equal(got), "want %s, got %s", want, got)
}
