package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
)

// AdjustmentCategoryName is the sentinel category attached to
// reconciliation adjustment transactions, created lazily on first use.
const AdjustmentCategoryName = "Ajuste de Reconciliación"

// reconcileTolerance is the difference below which declared and
// calculated balances are considered matched.
var reconcileTolerance = decimal.NewFromFloat(0.01)

// ReconciliationDraft is the pre-commit view of a reconciliation:
// nothing is persisted until Commit.
type ReconciliationDraft struct {
	AccountID         string
	CalculatedBalance decimal.Decimal
	DeclaredBalance   decimal.Decimal
	Difference        decimal.Decimal
	Matched           bool
}

// DraftReconciliation computes the discrepancy between the declared
// bank balance and the account's calculated balance.
func (l *Ledger) DraftReconciliation(ctx context.Context, accountID string, declared decimal.Decimal) (*ReconciliationDraft, error) {
	acct, err := repository.NewAccountRepo(l.db).Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &NotFoundError{Kind: "account", ID: accountID}
	}
	diff := declared.Sub(acct.CalculatedBalance)
	return &ReconciliationDraft{
		AccountID:         accountID,
		CalculatedBalance: acct.CalculatedBalance,
		DeclaredBalance:   declared,
		Difference:        diff,
		Matched:           diff.Abs().LessThanOrEqual(reconcileTolerance),
	}, nil
}

// CommitReconciliation commits a reconciliation event in one unit of
// work. When the difference exceeds the tolerance and the caller opted
// in, a visible adjustment transaction is created through the normal
// balance path so the calculated balance lands exactly on the declared
// value — the ledger never corrects balances silently. The snapshot
// keeps the pre-adjustment calculated balance, and the account's actual
// balance and reconciliation date are stamped unconditionally.
// Re-committing the same declared value right away finds a difference
// within tolerance and produces no further adjustment.
func (l *Ledger) CommitReconciliation(ctx context.Context, accountID string, declared decimal.Decimal, notes *string, createAdjustment bool) (*repository.Reconciliation, error) {
	var rec repository.Reconciliation
	err := l.withUnit("reconcile", func(tx *sql.Tx) error {
		acctRepo := repository.NewAccountRepo(tx)
		txRepo := repository.NewTransactionRepo(tx)
		catRepo := repository.NewCategoryRepo(tx)
		reconRepo := repository.NewReconciliationRepo(tx)

		acct, err := acctRepo.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if acct == nil {
			return &NotFoundError{Kind: "account", ID: accountID}
		}

		now := database.Now()
		diff := declared.Sub(acct.CalculatedBalance)
		reconciliationID := uuid.NewString()

		var adjustmentID *string
		if createAdjustment && diff.Abs().GreaterThan(reconcileTolerance) {
			adjCat, err := l.ensureAdjustmentCategory(ctx, catRepo)
			if err != nil {
				return err
			}

			adjType := repository.TxExpense
			if diff.IsPositive() {
				adjType = repository.TxIncome
			}
			adj := repository.Transaction{
				ID:               uuid.NewString(),
				Type:             adjType,
				Amount:           diff.Abs(),
				Description:      fmt.Sprintf("Ajuste de reconciliación - %s", acct.Name),
				Date:             now,
				CategoryID:       adjCat.ID,
				AccountID:        acct.ID,
				IsAdjustment:     true,
				ReconciliationID: &reconciliationID,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := txRepo.Insert(ctx, adj); err != nil {
				return err
			}
			if err := applyDelta(ctx, acctRepo, acct.ID, signedDelta(adj)); err != nil {
				return err
			}
			if err := catRepo.BumpUsage(ctx, adjCat.ID); err != nil {
				return err
			}
			adjustmentID = &adj.ID
		}

		rec = repository.Reconciliation{
			ID:                      reconciliationID,
			AccountID:               acct.ID,
			Date:                    now,
			CalculatedBalance:       acct.CalculatedBalance,
			DeclaredBalance:         declared,
			Difference:              diff,
			Notes:                   notes,
			AdjustmentTransactionID: adjustmentID,
		}
		if err := reconRepo.Insert(ctx, rec); err != nil {
			return err
		}

		// The declared value becomes the account's truth even when no
		// adjustment was requested.
		return acctRepo.MarkReconciled(ctx, acct.ID, declared, now)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("reconciliation committed", "accountId", accountID, "difference", rec.Difference)
	return &rec, nil
}

// ensureAdjustmentCategory resolves the fixed adjustment category,
// creating it on first use.
func (l *Ledger) ensureAdjustmentCategory(ctx context.Context, catRepo *repository.CategoryRepo) (*repository.Category, error) {
	cat, err := catRepo.FindByNameAndType(ctx, AdjustmentCategoryName, repository.TxExpense)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		return cat, nil
	}
	created := repository.Category{
		ID:       uuid.NewString(),
		Name:     AdjustmentCategoryName,
		Type:     repository.TxExpense,
		Color:    "#64748b",
		IsActive: true,
	}
	if err := catRepo.Insert(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}
