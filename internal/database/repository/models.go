package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Account types.
const (
	AccountBank   = "bank"
	AccountCash   = "cash"
	AccountCredit = "credit"
)

// Transaction types.
const (
	TxIncome   = "income"
	TxExpense  = "expense"
	TxTransfer = "transfer"
)

// Sentinel category ids carried by transfer legs. The direction of a
// leg is read from these, not from the sign of the stored amount.
const (
	CategoryTransferOut = "transfer-out"
	CategoryTransferIn  = "transfer-in"
)

// Account represents an account row. ActualBalance is nil until the
// first reconciliation (or a manual edit) declares a bank truth.
type Account struct {
	ID                     string
	Name                   string
	Type                   string
	CalculatedBalance      decimal.Decimal
	ActualBalance          *decimal.Decimal
	LastReconciliationDate *time.Time
	Currency               string
	IsActive               bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Transaction represents a transaction row plus its tag set.
type Transaction struct {
	ID                  string
	Type                string
	Amount              decimal.Decimal
	Description         string
	Date                time.Time
	CategoryID          string
	AccountID           string
	TransferID          *string
	IsAdjustment        bool
	ReconciliationID    *string
	FulfilledReserveID  *string
	SuggestedCategoryID *string
	SuggestionAccepted  *bool
	AIConfidence        *float64
	IsAmbiguous         bool
	NeedsReview         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	TagIDs              []string
}

// Reconciliation is an immutable snapshot committed by the reconcile flow.
type Reconciliation struct {
	ID                      string
	AccountID               string
	Date                    time.Time
	CalculatedBalance       decimal.Decimal
	DeclaredBalance         decimal.Decimal
	Difference              decimal.Decimal
	Notes                   *string
	AdjustmentTransactionID *string
}

// Reserve earmarks funds without touching stored balances.
type Reserve struct {
	ID                     string
	AccountID              string
	Amount                 decimal.Decimal
	Description            string
	CategoryID             *string
	IsActive               bool
	FulfilledAt            *time.Time
	FulfilledTransactionID *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Category represents a category row.
type Category struct {
	ID         string
	Name       string
	Type       string
	Color      string
	Icon       *string
	ParentID   *string
	UsageCount int
	IsActive   bool
}

// Tag represents a tag row.
type Tag struct {
	ID         string
	Name       string
	Color      string
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AppConfig is the singleton configuration record.
type AppConfig struct {
	ID                     string
	DefaultCurrency        string
	MinConfidenceThreshold float64
	EnableAISuggestions    bool
}
