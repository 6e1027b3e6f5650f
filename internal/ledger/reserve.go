package ledger

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
)

// ReserveInput describes a new earmark against an account.
type ReserveInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	CategoryID  *string
}

// CreateReserve attaches a new active reserve to an account. Stored
// balances are not touched; only the derived available balance moves.
func (l *Ledger) CreateReserve(ctx context.Context, in ReserveInput) (*repository.Reserve, error) {
	if !in.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Field: "description", Reason: "required"}
	}
	if in.AccountID == "" {
		return nil, &ValidationError{Field: "accountId", Reason: "required"}
	}

	now := database.Now()
	res := repository.Reserve{
		ID:          uuid.NewString(),
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := l.withUnit("create reserve", func(tx *sql.Tx) error {
		acctRepo := repository.NewAccountRepo(tx)
		resRepo := repository.NewReserveRepo(tx)

		acct, err := acctRepo.Get(ctx, in.AccountID)
		if err != nil {
			return err
		}
		if acct == nil {
			return &NotFoundError{Kind: "account", ID: in.AccountID}
		}
		return resRepo.Insert(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	l.log.Debug("reserve created", "id", res.ID, "amount", res.Amount)
	return &res, nil
}

// DeactivateReserve cancels a reserve manually. The earmarked funds
// return to the available balance immediately; nothing is stored to
// release. A fulfilled or already-cancelled reserve is never
// resurrected, and cancelling it again is rejected.
func (l *Ledger) DeactivateReserve(ctx context.Context, id string) error {
	err := l.withUnit("deactivate reserve", func(tx *sql.Tx) error {
		resRepo := repository.NewReserveRepo(tx)
		res, err := resRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return &NotFoundError{Kind: "reserve", ID: id}
		}
		if !res.IsActive {
			return &ValidationError{Field: "reserve", Reason: "already inactive"}
		}
		return resRepo.Deactivate(ctx, id, database.Now())
	})
	if err != nil {
		return err
	}
	l.log.Debug("reserve deactivated", "id", id)
	return nil
}

// sum of active reserves, exposed for presentation alongside accounts.
func (l *Ledger) ReservedAmount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return repository.NewReserveRepo(l.db).SumActiveByAccount(ctx, accountID)
}
