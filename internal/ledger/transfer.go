package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drestrepo/monedero/internal/database"
	"github.com/drestrepo/monedero/internal/database/repository"
)

// TransferInput describes one movement of funds between two accounts.
type TransferInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Date                 time.Time
}

// Transfer creates a linked pair of transactions sharing one transfer
// id — outgoing on the source, incoming on the destination — and moves
// the amount across both balance tracks of both accounts. Because the
// actual balance mirrors the move whenever it is defined, a transfer
// never manufactures a reconciliation difference. Failure aborts the
// whole pair; no single-sided transfer is ever persisted.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (string, error) {
	if !in.Amount.IsPositive() {
		return "", &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.SourceAccountID == "" || in.DestinationAccountID == "" {
		return "", &ValidationError{Field: "accountId", Reason: "source and destination are required"}
	}
	if in.SourceAccountID == in.DestinationAccountID {
		return "", &ValidationError{Field: "accountId", Reason: "source and destination must differ"}
	}

	now := database.Now()
	if in.Date.IsZero() {
		in.Date = now
	}
	transferID := uuid.NewString()

	err := l.withUnit("transfer", func(tx *sql.Tx) error {
		txRepo := repository.NewTransactionRepo(tx)
		acctRepo := repository.NewAccountRepo(tx)

		source, err := acctRepo.Get(ctx, in.SourceAccountID)
		if err != nil {
			return err
		}
		if source == nil {
			return &NotFoundError{Kind: "account", ID: in.SourceAccountID}
		}
		dest, err := acctRepo.Get(ctx, in.DestinationAccountID)
		if err != nil {
			return err
		}
		if dest == nil {
			return &NotFoundError{Kind: "account", ID: in.DestinationAccountID}
		}

		description := fmt.Sprintf("Transferencia: %s ➔ %s", source.Name, dest.Name)

		legs := []repository.Transaction{
			{
				ID:          uuid.NewString(),
				Type:        repository.TxTransfer,
				Amount:      in.Amount,
				Description: description,
				Date:        in.Date,
				CategoryID:  repository.CategoryTransferOut,
				AccountID:   source.ID,
				TransferID:  &transferID,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          uuid.NewString(),
				Type:        repository.TxTransfer,
				Amount:      in.Amount,
				Description: description,
				Date:        in.Date,
				CategoryID:  repository.CategoryTransferIn,
				AccountID:   dest.ID,
				TransferID:  &transferID,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		}
		for _, leg := range legs {
			if err := txRepo.Insert(ctx, leg); err != nil {
				return err
			}
			if err := applyDelta(ctx, acctRepo, leg.AccountID, signedDelta(leg)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	l.log.Debug("transfer created", "transferId", transferID, "amount", in.Amount)
	return transferID, nil
}
