package ledger

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
)

// TransactionInput is the caller-supplied part of a transaction.
type TransactionInput struct {
	Type               string
	Amount             decimal.Decimal
	Description        string
	Date               time.Time
	CategoryID         string
	AccountID          string
	TagIDs             []string
	FulfilledReserveID *string
}

func (in TransactionInput) validate() error {
	if in.Type != repository.TxIncome && in.Type != repository.TxExpense {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if len(strings.TrimSpace(in.Description)) < 3 {
		return &ValidationError{Field: "description", Reason: "required"}
	}
	if in.CategoryID == "" {
		return &ValidationError{Field: "categoryId", Reason: "required"}
	}
	if in.AccountID == "" {
		return &ValidationError{Field: "accountId", Reason: "required"}
	}
	if in.FulfilledReserveID != nil && in.Type != repository.TxExpense {
		return &ValidationError{Field: "fulfilledReserveId", Reason: "only an expense can fulfill a reserve"}
	}
	return nil
}

// CreateTransaction records an income or expense, applies its monetary
// effect to the account's balance tracks and, when requested, fulfills
// a reserve — all inside one unit of work. Advisory suggestion metadata
// is stamped before the unit; a failed or absent suggestion never
// blocks the create.
func (l *Ledger) CreateTransaction(ctx context.Context, in TransactionInput) (*repository.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := database.Now()
	if in.Date.IsZero() {
		in.Date = now
	}

	t := repository.Transaction{
		ID:                 uuid.NewString(),
		Type:               in.Type,
		Amount:             in.Amount,
		Description:        in.Description,
		Date:               in.Date,
		CategoryID:         in.CategoryID,
		AccountID:          in.AccountID,
		TagIDs:             in.TagIDs,
		FulfilledReserveID: in.FulfilledReserveID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	l.stampSuggestion(ctx, &t)

	err := l.withUnit("create transaction", func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)
		catRepo := repository.NewCategoryRepo(tx)
		tagRepo := repository.NewTagRepo(tx)
		resRepo := repository.NewReserveRepo(tx)

		cat, err := catRepo.Get(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return &NotFoundError{Kind: "category", ID: in.CategoryID}
		}

		if err := txRepo.Insert(ctx, t); err != nil {
			return err
		}
		if err := applyDelta(ctx, acctRepo, in.AccountID, signedDelta(t)); err != nil {
			return err
		}

		if in.FulfilledReserveID != nil {
			res, err := resRepo.Get(ctx, *in.FulfilledReserveID)
			if err != nil {
				return err
			}
			if res == nil {
				return &NotFoundError{Kind: "reserve", ID: *in.FulfilledReserveID}
			}
			if !res.IsActive {
				return &ValidationError{Field: "fulfilledReserveId", Reason: "reserve is no longer active"}
			}
			if err := resRepo.Fulfill(ctx, res.ID, t.ID, now); err != nil {
				return err
			}
		}

		if err := catRepo.BumpUsage(ctx, in.CategoryID); err != nil {
			return err
		}
		for _, tagID := range in.TagIDs {
			if err := tagRepo.BumpUsage(ctx, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug("transaction created", "id", t.ID, "type", t.Type, "amount", t.Amount)
	return &t, nil
}

// EditTransaction replaces a transaction's caller-editable fields. The
// result is identical to deleting the old transaction and creating the
// new one: the old effect is reversed and the new effect applied, as a
// single netted update when the account is unchanged, or as two
// independent updates when it moved — both inside one unit of work.
func (l *Ledger) EditTransaction(ctx context.Context, id string, in TransactionInput) (*repository.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	// Fulfillment happens when the expense is created; an existing
	// fulfillment link is preserved, a new one is rejected rather than
	// silently dropped.
	if in.FulfilledReserveID != nil {
		return nil, &ValidationError{Field: "fulfilledReserveId", Reason: "a reserve can only be fulfilled when the expense is created"}
	}

	var updated repository.Transaction
	err := l.withUnit("edit transaction", func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)
		catRepo := repository.NewCategoryRepo(tx)

		old, err := txRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return &NotFoundError{Kind: "transaction", ID: id}
		}
		if old.Type == repository.TxTransfer {
			return &ValidationError{Field: "type", Reason: "transfer legs cannot be edited; delete the transfer and create a new one"}
		}

		cat, err := catRepo.Get(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return &NotFoundError{Kind: "category", ID: in.CategoryID}
		}

		updated = *old
		updated.Type = in.Type
		updated.Amount = in.Amount
		updated.Description = in.Description
		if !in.Date.IsZero() {
			updated.Date = in.Date
		}
		updated.CategoryID = in.CategoryID
		updated.AccountID = in.AccountID
		updated.TagIDs = in.TagIDs
		updated.UpdatedAt = database.Now()
		if old.SuggestedCategoryID != nil {
			accepted := in.CategoryID == *old.SuggestedCategoryID
			updated.SuggestionAccepted = &accepted
		}

		reversal := signedDelta(*old).Neg()
		forward := signedDelta(updated)

		if old.AccountID == in.AccountID {
			if err := applyDelta(ctx, acctRepo, in.AccountID, reversal.Add(forward)); err != nil {
				return err
			}
		} else {
			if err := applyDelta(ctx, acctRepo, old.AccountID, reversal); err != nil {
				return err
			}
			if err := applyDelta(ctx, acctRepo, in.AccountID, forward); err != nil {
				return err
			}
		}
		return txRepo.Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug("transaction edited", "id", id)
	return &updated, nil
}

// DeleteTransaction reverses a transaction's effect and removes it.
// Deleting a transfer leg removes the whole pair so no one-sided
// transfer is ever left behind.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	err := l.withUnit("delete transaction", func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)

		t, err := txRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return &NotFoundError{Kind: "transaction", ID: id}
		}

		legs := []repository.Transaction{*t}
		if t.TransferID != nil {
			legs, err = txRepo.ListByTransfer(ctx, *t.TransferID)
			if err != nil {
				return err
			}
		}
		for _, leg := range legs {
			if err := applyDelta(ctx, acctRepo, leg.AccountID, signedDelta(leg).Neg()); err != nil {
				return err
			}
			if err := txRepo.Delete(ctx, leg.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Debug("transaction deleted", "id", id)
	return nil
}

// stampSuggestion asks the suggestion engine for advisory metadata and
// derives the ambiguity/review flags from the configured thresholds.
func (l *Ledger) stampSuggestion(ctx context.Context, t *repository.Transaction) {
	if l.suggester == nil {
		return
	}
	cfg, err := repository.NewAppConfigRepo(l.db).Get(ctx)
	if err != nil || cfg == nil || !cfg.EnableAISuggestions {
		return
	}
	sugg, err := l.suggester.Suggest(ctx, t.Description, t.Type)
	if err != nil {
		l.log.Debug("suggestion failed", "err", err)
		return
	}
	if sugg == nil {
		return
	}
	t.SuggestedCategoryID = &sugg.CategoryID
	t.AIConfidence = &sugg.Confidence
	t.IsAmbiguous = sugg.Confidence < cfg.MinConfidenceThreshold
	t.NeedsReview = sugg.Confidence < l.reviewConfidence
	accepted := t.CategoryID == sugg.CategoryID
	t.SuggestionAccepted = &accepted
}
