package backup

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database/repository"
)

// Record types are the native serialized form of each collection.
// Timestamps travel as unix milliseconds.

type TransactionRecord struct {
	ID                  string               `json:"id"`
	Type                string               `json:"type"`
	Amount              decimal.Decimal      `json:"amount"`
	Description         string               `json:"description"`
	Date                int64                `json:"date"`
	CategoryID          string               `json:"categoryId"`
	TagIDs              []string             `json:"tagIds"`
	AccountID           string               `json:"accountId"`
	TransferID          *string              `json:"transferId,omitempty"`
	IsAdjustment        bool                 `json:"isAdjustment,omitempty"`
	ReconciliationID    *string              `json:"reconciliationId,omitempty"`
	FulfilledReserveID  *string              `json:"fulfilledReserveId,omitempty"`
	SuggestedCategoryID *string              `json:"suggestedCategoryId,omitempty"`
	SuggestionAccepted  *bool                `json:"wasCategorySuggestionAccepted,omitempty"`
	AIConfidence        *float64             `json:"aiConfidence,omitempty"`
	IsAmbiguous         bool                 `json:"isAmbiguous,omitempty"`
	NeedsReview         bool                 `json:"needsReview,omitempty"`
	CreatedAt           int64                `json:"createdAt"`
	UpdatedAt           int64                `json:"updatedAt"`
}

type AccountRecord struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Type                   string           `json:"type"`
	CalculatedBalance      decimal.Decimal  `json:"calculatedBalance"`
	ActualBalance          *decimal.Decimal `json:"actualBalance,omitempty"`
	LastReconciliationDate *int64           `json:"lastReconciliationDate,omitempty"`
	Currency               string           `json:"currency"`
	IsActive               bool             `json:"isActive"`
}

type ReconciliationRecord struct {
	ID                      string          `json:"id"`
	AccountID               string          `json:"accountId"`
	Date                    int64           `json:"date"`
	CalculatedBalance       decimal.Decimal `json:"calculatedBalance"`
	DeclaredBalance         decimal.Decimal `json:"declaredBalance"`
	Difference              decimal.Decimal `json:"difference"`
	Notes                   *string         `json:"notes,omitempty"`
	AdjustmentTransactionID *string         `json:"adjustmentTransactionId,omitempty"`
}

type CategoryRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Color      string  `json:"color"`
	Icon       *string `json:"icon,omitempty"`
	ParentID   *string `json:"parentId,omitempty"`
	UsageCount int     `json:"usageCount"`
	IsActive   bool    `json:"isActive"`
}

type TagRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	UsageCount int    `json:"usageCount"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

type ReserveRecord struct {
	ID                     string          `json:"id"`
	AccountID              string          `json:"accountId"`
	Amount                 decimal.Decimal `json:"amount"`
	Description            string          `json:"description"`
	CategoryID             *string         `json:"categoryId,omitempty"`
	IsActive               bool            `json:"isActive"`
	FulfilledAt            *int64          `json:"fulfilledAt,omitempty"`
	FulfilledTransactionID *string         `json:"fulfilledTransactionId,omitempty"`
	CreatedAt              int64           `json:"createdAt"`
	UpdatedAt              int64           `json:"updatedAt"`
}

type AppConfigRecord struct {
	ID                     string  `json:"id"`
	DefaultCurrency        string  `json:"defaultCurrency"`
	MinConfidenceThreshold float64 `json:"minConfidenceThreshold"`
	EnableAISuggestions    bool    `json:"enableAISuggestions"`
}

func toTransactionRecord(t repository.Transaction) TransactionRecord {
	return TransactionRecord{
		ID:                  t.ID,
		Type:                t.Type,
		Amount:              t.Amount,
		Description:         t.Description,
		Date:                t.Date.UnixMilli(),
		CategoryID:          t.CategoryID,
		TagIDs:              t.TagIDs,
		AccountID:           t.AccountID,
		TransferID:          t.TransferID,
		IsAdjustment:        t.IsAdjustment,
		ReconciliationID:    t.ReconciliationID,
		FulfilledReserveID:  t.FulfilledReserveID,
		SuggestedCategoryID: t.SuggestedCategoryID,
		SuggestionAccepted:  t.SuggestionAccepted,
		AIConfidence:        t.AIConfidence,
		IsAmbiguous:         t.IsAmbiguous,
		NeedsReview:         t.NeedsReview,
		CreatedAt:           t.CreatedAt.UnixMilli(),
		UpdatedAt:           t.UpdatedAt.UnixMilli(),
	}
}

func (r TransactionRecord) toModel() repository.Transaction {
	return repository.Transaction{
		ID:                  r.ID,
		Type:                r.Type,
		Amount:              r.Amount,
		Description:         r.Description,
		Date:                fromMillis(r.Date),
		CategoryID:          r.CategoryID,
		TagIDs:              r.TagIDs,
		AccountID:           r.AccountID,
		TransferID:          r.TransferID,
		IsAdjustment:        r.IsAdjustment,
		ReconciliationID:    r.ReconciliationID,
		FulfilledReserveID:  r.FulfilledReserveID,
		SuggestedCategoryID: r.SuggestedCategoryID,
		SuggestionAccepted:  r.SuggestionAccepted,
		AIConfidence:        r.AIConfidence,
		IsAmbiguous:         r.IsAmbiguous,
		NeedsReview:         r.NeedsReview,
		CreatedAt:           fromMillis(r.CreatedAt),
		UpdatedAt:           fromMillis(r.UpdatedAt),
	}
}

func toAccountRecord(a repository.Account) AccountRecord {
	rec := AccountRecord{
		ID:                a.ID,
		Name:              a.Name,
		Type:              a.Type,
		CalculatedBalance: a.CalculatedBalance,
		ActualBalance:     a.ActualBalance,
		Currency:          a.Currency,
		IsActive:          a.IsActive,
	}
	if a.LastReconciliationDate != nil {
		ms := a.LastReconciliationDate.UnixMilli()
		rec.LastReconciliationDate = &ms
	}
	return rec
}

func (r AccountRecord) toModel() repository.Account {
	a := repository.Account{
		ID:                r.ID,
		Name:              r.Name,
		Type:              r.Type,
		CalculatedBalance: r.CalculatedBalance,
		ActualBalance:     r.ActualBalance,
		Currency:          r.Currency,
		IsActive:          r.IsActive,
	}
	if r.LastReconciliationDate != nil {
		t := fromMillis(*r.LastReconciliationDate)
		a.LastReconciliationDate = &t
	}
	return a
}

func toReconciliationRecord(rec repository.Reconciliation) ReconciliationRecord {
	return ReconciliationRecord{
		ID:                      rec.ID,
		AccountID:               rec.AccountID,
		Date:                    rec.Date.UnixMilli(),
		CalculatedBalance:       rec.CalculatedBalance,
		DeclaredBalance:         rec.DeclaredBalance,
		Difference:              rec.Difference,
		Notes:                   rec.Notes,
		AdjustmentTransactionID: rec.AdjustmentTransactionID,
	}
}

func (r ReconciliationRecord) toModel() repository.Reconciliation {
	return repository.Reconciliation{
		ID:                      r.ID,
		AccountID:               r.AccountID,
		Date:                    fromMillis(r.Date),
		CalculatedBalance:       r.CalculatedBalance,
		DeclaredBalance:         r.DeclaredBalance,
		Difference:              r.Difference,
		Notes:                   r.Notes,
		AdjustmentTransactionID: r.AdjustmentTransactionID,
	}
}

func toCategoryRecord(c repository.Category) CategoryRecord {
	return CategoryRecord{
		ID:         c.ID,
		Name:       c.Name,
		Type:       c.Type,
		Color:      c.Color,
		Icon:       c.Icon,
		ParentID:   c.ParentID,
		UsageCount: c.UsageCount,
		IsActive:   c.IsActive,
	}
}

func (r CategoryRecord) toModel() repository.Category {
	return repository.Category{
		ID:         r.ID,
		Name:       r.Name,
		Type:       r.Type,
		Color:      r.Color,
		Icon:       r.Icon,
		ParentID:   r.ParentID,
		UsageCount: r.UsageCount,
		IsActive:   r.IsActive,
	}
}

func toTagRecord(t repository.Tag) TagRecord {
	return TagRecord{
		ID:         t.ID,
		Name:       t.Name,
		Color:      t.Color,
		UsageCount: t.UsageCount,
		CreatedAt:  t.CreatedAt.UnixMilli(),
		UpdatedAt:  t.UpdatedAt.UnixMilli(),
	}
}

func (r TagRecord) toModel() repository.Tag {
	return repository.Tag{
		ID:         r.ID,
		Name:       r.Name,
		Color:      r.Color,
		UsageCount: r.UsageCount,
		CreatedAt:  fromMillis(r.CreatedAt),
		UpdatedAt:  fromMillis(r.UpdatedAt),
	}
}

func toReserveRecord(res repository.Reserve) ReserveRecord {
	rec := ReserveRecord{
		ID:                     res.ID,
		AccountID:              res.AccountID,
		Amount:                 res.Amount,
		Description:            res.Description,
		CategoryID:             res.CategoryID,
		IsActive:               res.IsActive,
		FulfilledTransactionID: res.FulfilledTransactionID,
		CreatedAt:              res.CreatedAt.UnixMilli(),
		UpdatedAt:              res.UpdatedAt.UnixMilli(),
	}
	if res.FulfilledAt != nil {
		ms := res.FulfilledAt.UnixMilli()
		rec.FulfilledAt = &ms
	}
	return rec
}

func (r ReserveRecord) toModel() repository.Reserve {
	res := repository.Reserve{
		ID:                     r.ID,
		AccountID:              r.AccountID,
		Amount:                 r.Amount,
		Description:            r.Description,
		CategoryID:             r.CategoryID,
		IsActive:               r.IsActive,
		FulfilledTransactionID: r.FulfilledTransactionID,
		CreatedAt:              fromMillis(r.CreatedAt),
		UpdatedAt:              fromMillis(r.UpdatedAt),
	}
	if r.FulfilledAt != nil {
		t := fromMillis(*r.FulfilledAt)
		res.FulfilledAt = &t
	}
	return res
}

func toAppConfigRecord(c repository.AppConfig) AppConfigRecord {
	return AppConfigRecord{
		ID:                     c.ID,
		DefaultCurrency:        c.DefaultCurrency,
		MinConfidenceThreshold: c.MinConfidenceThreshold,
		EnableAISuggestions:    c.EnableAISuggestions,
	}
}

func (r AppConfigRecord) toModel() repository.AppConfig {
	return repository.AppConfig{
		ID:                     r.ID,
		DefaultCurrency:        r.DefaultCurrency,
		MinConfidenceThreshold: r.MinConfidenceThreshold,
		EnableAISuggestions:    r.EnableAISuggestions,
	}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
