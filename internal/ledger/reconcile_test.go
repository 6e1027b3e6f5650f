package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drestrepo/monedero/internal/database/repository"
)

func TestDraftReconciliation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(80000), nil)

	draft, err := l.DraftReconciliation(ctx, acct.ID, dec(90000))
	require.NoError(t, err)
	requireDecimalEqual(t, dec(10000), draft.Difference)
	require.False(t, draft.Matched)

	draft, err = l.DraftReconciliation(ctx, acct.ID, dec(80000))
	require.NoError(t, err)
	require.True(t, draft.Matched)

	// Nothing persisted by drafting.
	recs, err := repository.NewReconciliationRepo(db).ListByAccount(ctx, acct.ID)
	require.NoError(t, err)
	require.Empty(t, recs)
	require.Nil(t, getAccount(t, db, acct.ID).ActualBalance)
}

// Seed 100000, spend 20000, then declare the bank says 90000: the
// commit must close the 10000 gap with a visible income adjustment.
func TestCommitReconciliationCreatesAdjustment(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(100000), nil)
	cat := seedCategory(t, db, "Gastos diarios", repository.TxExpense)

	_, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(20000),
		Description: "Mercado semanal",
		CategoryID:  cat.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	rec, err := l.CommitReconciliation(ctx, acct.ID, dec(90000), nil, true)
	require.NoError(t, err)
	requireDecimalEqual(t, dec(80000), rec.CalculatedBalance)
	requireDecimalEqual(t, dec(90000), rec.DeclaredBalance)
	requireDecimalEqual(t, dec(10000), rec.Difference)
	require.NotNil(t, rec.AdjustmentTransactionID)

	adj, err := repository.NewTransactionRepo(db).Get(ctx, *rec.AdjustmentTransactionID)
	require.NoError(t, err)
	require.NotNil(t, adj)
	require.Equal(t, repository.TxIncome, adj.Type)
	requireDecimalEqual(t, dec(10000), adj.Amount)
	require.True(t, adj.IsAdjustment)
	require.NotNil(t, adj.ReconciliationID)
	require.Equal(t, rec.ID, *adj.ReconciliationID)

	got := getAccount(t, db, acct.ID)
	requireDecimalEqual(t, dec(90000), got.CalculatedBalance)
	require.NotNil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(90000), *got.ActualBalance)
	require.NotNil(t, got.LastReconciliationDate)

	adjCat, err := repository.NewCategoryRepo(db).FindByNameAndType(ctx, AdjustmentCategoryName, repository.TxExpense)
	require.NoError(t, err)
	require.NotNil(t, adjCat)
}

func TestCommitReconciliationNegativeDifference(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(100000), nil)

	rec, err := l.CommitReconciliation(ctx, acct.ID, dec(93500), nil, true)
	require.NoError(t, err)
	require.NotNil(t, rec.AdjustmentTransactionID)

	adj, err := repository.NewTransactionRepo(db).Get(ctx, *rec.AdjustmentTransactionID)
	require.NoError(t, err)
	require.Equal(t, repository.TxExpense, adj.Type)
	requireDecimalEqual(t, dec(6500), adj.Amount)
	requireDecimalEqual(t, dec(93500), getAccount(t, db, acct.ID).CalculatedBalance)
}

// Committing the same declared value again must find the books already
// matched and produce no second adjustment.
func TestCommitReconciliationIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(80000), nil)

	first, err := l.CommitReconciliation(ctx, acct.ID, dec(90000), nil, true)
	require.NoError(t, err)
	require.NotNil(t, first.AdjustmentTransactionID)

	second, err := l.CommitReconciliation(ctx, acct.ID, dec(90000), nil, true)
	require.NoError(t, err)
	require.Nil(t, second.AdjustmentTransactionID)
	requireDecimalEqual(t, dec(0), second.Difference)
	requireDecimalEqual(t, dec(90000), getAccount(t, db, acct.ID).CalculatedBalance)
}

func TestCommitReconciliationWithoutAdjustment(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Efectivo", dec(50000), nil)
	notes := "conteo de caja"

	rec, err := l.CommitReconciliation(ctx, acct.ID, dec(47000), &notes, false)
	require.NoError(t, err)
	require.Nil(t, rec.AdjustmentTransactionID)
	require.NotNil(t, rec.Notes)

	// Calculated stays where the history put it; the declared value
	// still becomes the actual balance.
	got := getAccount(t, db, acct.ID)
	requireDecimalEqual(t, dec(50000), got.CalculatedBalance)
	require.NotNil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(47000), *got.ActualBalance)
}

func TestCommitReconciliationUnknownAccount(t *testing.T) {
	db := setupDB(t)
	l := New(db)

	_, err := l.CommitReconciliation(context.Background(), "ghost", dec(100), nil, true)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	require.Equal(t, "account", nferr.Kind)
}
