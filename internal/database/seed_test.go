package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/drestrepo/monedero/internal/database/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedDefaults(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, db, 0.7))

	cats, err := repository.NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	byName := map[string]repository.Category{}
	parents := 0
	for _, c := range cats {
		byName[c.Name+"|"+c.Type] = c
		if c.ParentID == nil {
			parents++
		}
	}
	require.Equal(t, len(defaultTaxonomy), parents)

	sueldo, ok := byName["Sueldo|income"]
	require.True(t, ok)
	require.Nil(t, sueldo.ParentID)

	nomina, ok := byName["Nómina|income"]
	require.True(t, ok)
	require.NotNil(t, nomina.ParentID)
	require.Equal(t, sueldo.ID, *nomina.ParentID)
	require.Equal(t, sueldo.Color, nomina.Color)

	accts, err := repository.NewAccountRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 2)

	tags, err := repository.NewTagRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, len(defaultTags))

	cfg, err := repository.NewAppConfigRepo(db).Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, "COP", cfg.DefaultCurrency)
	require.InDelta(t, 0.7, cfg.MinConfidenceThreshold, 1e-9)
	require.True(t, cfg.EnableAISuggestions)
}

func TestSeedHonorsConfiguredThreshold(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, db, 0.85))

	cfg, err := repository.NewAppConfigRepo(db).Get(ctx)
	require.NoError(t, err)
	require.InDelta(t, 0.85, cfg.MinConfidenceThreshold, 1e-9)

	// An existing singleton is never overwritten by a later seed run.
	require.NoError(t, SeedDefaults(ctx, db, 0.6))
	cfg, err = repository.NewAppConfigRepo(db).Get(ctx)
	require.NoError(t, err)
	require.InDelta(t, 0.85, cfg.MinConfidenceThreshold, 1e-9)

	// Out-of-range values fall back to the stock threshold.
	other := setupDB(t)
	require.NoError(t, SeedDefaults(ctx, other, 0))
	cfg, err = repository.NewAppConfigRepo(other).Get(ctx)
	require.NoError(t, err)
	require.InDelta(t, 0.7, cfg.MinConfidenceThreshold, 1e-9)
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, db, 0.7))
	n1, err := repository.NewCategoryRepo(db).Count(ctx)
	require.NoError(t, err)

	require.NoError(t, SeedDefaults(ctx, db, 0.7))
	require.NoError(t, SeedDefaults(ctx, db, 0.7))

	n2, err := repository.NewCategoryRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, n1, n2)

	accts, err := repository.NewAccountRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, accts)
}

func TestSeedCleansUpDuplicates(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, SeedDefaults(ctx, db, 0.7))

	// Inject duplicates the way older racy seed runs left them behind.
	catRepo := repository.NewCategoryRepo(db)
	require.NoError(t, catRepo.Insert(ctx, repository.Category{
		ID: uuid.NewString(), Name: "Sueldo", Type: repository.TxIncome, Color: "#10b981", IsActive: true,
	}))
	acctRepo := repository.NewAccountRepo(db)
	require.NoError(t, acctRepo.Insert(ctx, repository.Account{
		ID: uuid.NewString(), Name: "  efectivo ", Type: repository.AccountCash, Currency: "COP", IsActive: true,
	}))

	require.NoError(t, SeedDefaults(ctx, db, 0.7))

	cats, err := catRepo.List(ctx)
	require.NoError(t, err)
	sueldos := 0
	for _, c := range cats {
		if c.Name == "Sueldo" && c.ParentID == nil {
			sueldos++
		}
	}
	require.Equal(t, 1, sueldos)

	accts, err := acctRepo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, accts)
}

func TestMigrateTwice(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}
