// Package ledger is the consistency engine of the personal ledger: it
// keeps every account's derived balances in sync with the full history
// of transactions, transfers, reconciliation adjustments and reserves.
// Every mutation runs as one all-or-nothing unit of work.
package ledger

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
	"github.com/drestrepo/monedero/internal/logging"
)

// Suggestion is the advisory payload produced by a suggestion engine.
// It prefills transaction metadata and never gates a mutation.
type Suggestion struct {
	CategoryID string
	TagIDs     []string
	Confidence float64
	Reason     string
}

// Suggester supplies category/tag hints for a transaction description.
// A nil result with nil error means "no suggestion"; errors are treated
// the same way by the ledger.
type Suggester interface {
	Suggest(ctx context.Context, description, txType string) (*Suggestion, error)
}

// Ledger executes the ledger's transaction scripts against one sqlite
// database. Concurrency follows the store: last writer wins.
type Ledger struct {
	db               *sql.DB
	suggester        Suggester
	reviewConfidence float64
	log              *log.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSuggester attaches an advisory suggestion engine.
func WithSuggester(s Suggester) Option {
	return func(l *Ledger) { l.suggester = s }
}

// WithReviewConfidence sets the confidence floor below which new
// transactions are flagged needs_review. Default 0.5.
func WithReviewConfidence(f float64) Option {
	return func(l *Ledger) { l.reviewConfidence = f }
}

// New builds a Ledger on an open database.
func New(db *sql.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:               db,
		reviewConfidence: 0.5,
		log:              logging.Logger(logging.SourceLedger),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// withUnit runs fn inside one atomic unit of work. Domain errors pass
// through untouched; raw storage errors are wrapped as ConsistencyError
// so callers can tell a rejected operation from an interrupted one.
func (l *Ledger) withUnit(op string, fn func(tx *sql.Tx) error) error {
	err := database.WithTx(l.db, fn)
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ValidationError, *NotFoundError, *ConsistencyError:
		return err
	}
	return &ConsistencyError{Op: op, Err: err}
}

// signedDelta returns the effect of a transaction on its account's
// calculated balance: income adds, expense subtracts, transfer legs
// are signed by the direction carried in their sentinel category.
func signedDelta(t repository.Transaction) decimal.Decimal {
	switch t.Type {
	case repository.TxIncome:
		return t.Amount
	case repository.TxExpense:
		return t.Amount.Neg()
	case repository.TxTransfer:
		if t.CategoryID == repository.CategoryTransferIn {
			return t.Amount
		}
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// applyDelta shifts an account's two balance tracks by delta. The
// actual balance mirrors the move only while it is defined: undefined
// stays undefined until the first reconciliation, so the difference
// between the tracks never drifts except through an explicit
// reconciliation event.
func applyDelta(ctx context.Context, accounts *repository.AccountRepo, accountID string, delta decimal.Decimal) error {
	acct, err := accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return &NotFoundError{Kind: "account", ID: accountID}
	}
	newCalc := acct.CalculatedBalance.Add(delta)
	var newActual *decimal.Decimal
	if acct.ActualBalance != nil {
		v := acct.ActualBalance.Add(delta)
		newActual = &v
	}
	return accounts.UpdateBalances(ctx, accountID, newCalc, newActual)
}

// AvailableBalance derives what the user may safely spend: the truth
// balance (actual when declared, calculated otherwise) minus the sum of
// active reserves. Nothing is stored; reserves never touch balances.
func (l *Ledger) AvailableBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	accounts := repository.NewAccountRepo(l.db)
	reserves := repository.NewReserveRepo(l.db)

	acct, err := accounts.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if acct == nil {
		return decimal.Zero, &NotFoundError{Kind: "account", ID: accountID}
	}
	truth := acct.CalculatedBalance
	if acct.ActualBalance != nil {
		truth = *acct.ActualBalance
	}
	reserved, err := reserves.SumActiveByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return truth.Sub(reserved), nil
}
