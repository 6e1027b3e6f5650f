package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drestrepo/monedero/internal/database/repository"
)

func TestTransferMovesBothAccounts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	src := seedAccount(t, db, "Bancolombia", dec(100000), decPtr(100000))
	dst := seedAccount(t, db, "Efectivo", dec(20000), nil)

	transferID, err := l.Transfer(ctx, TransferInput{
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               dec(15000),
	})
	require.NoError(t, err)
	require.NotEmpty(t, transferID)

	gotSrc := getAccount(t, db, src.ID)
	requireDecimalEqual(t, dec(85000), gotSrc.CalculatedBalance)
	require.NotNil(t, gotSrc.ActualBalance)
	requireDecimalEqual(t, dec(85000), *gotSrc.ActualBalance)

	gotDst := getAccount(t, db, dst.ID)
	requireDecimalEqual(t, dec(35000), gotDst.CalculatedBalance)
	require.Nil(t, gotDst.ActualBalance)
}

func TestTransferLegsShareIDAndDescription(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	src := seedAccount(t, db, "Bancolombia", dec(100000), nil)
	dst := seedAccount(t, db, "Efectivo", dec(0), nil)

	transferID, err := l.Transfer(ctx, TransferInput{
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               dec(15000),
	})
	require.NoError(t, err)

	legs, err := repository.NewTransactionRepo(db).ListByTransfer(ctx, transferID)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	byCat := map[string]repository.Transaction{}
	for _, leg := range legs {
		require.Equal(t, repository.TxTransfer, leg.Type)
		require.Equal(t, "Transferencia: Bancolombia ➔ Efectivo", leg.Description)
		requireDecimalEqual(t, dec(15000), leg.Amount)
		byCat[leg.CategoryID] = leg
	}
	require.Equal(t, src.ID, byCat[repository.CategoryTransferOut].AccountID)
	require.Equal(t, dst.ID, byCat[repository.CategoryTransferIn].AccountID)
}

func TestTransferValidation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	src := seedAccount(t, db, "Bancolombia", dec(100000), nil)

	_, err := l.Transfer(ctx, TransferInput{SourceAccountID: src.ID, DestinationAccountID: "other", Amount: dec(0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount", verr.Field)

	_, err = l.Transfer(ctx, TransferInput{SourceAccountID: src.ID, DestinationAccountID: src.ID, Amount: dec(100)})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "accountId", verr.Field)

	_, err = l.Transfer(ctx, TransferInput{SourceAccountID: src.ID, DestinationAccountID: "missing", Amount: dec(100)})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)

	// Nothing persisted on failure: no half transfer, no balance change.
	requireDecimalEqual(t, dec(100000), getAccount(t, db, src.ID).CalculatedBalance)
	txs, err := repository.NewTransactionRepo(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestDeleteTransferLegRemovesPair(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	src := seedAccount(t, db, "Bancolombia", dec(100000), nil)
	dst := seedAccount(t, db, "Efectivo", dec(0), nil)

	transferID, err := l.Transfer(ctx, TransferInput{
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               dec(40000),
	})
	require.NoError(t, err)

	legs, err := repository.NewTransactionRepo(db).ListByTransfer(ctx, transferID)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	require.NoError(t, l.DeleteTransaction(ctx, legs[0].ID))

	remaining, err := repository.NewTransactionRepo(db).ListByTransfer(ctx, transferID)
	require.NoError(t, err)
	require.Empty(t, remaining)
	requireDecimalEqual(t, dec(100000), getAccount(t, db, src.ID).CalculatedBalance)
	requireDecimalEqual(t, dec(0), getAccount(t, db, dst.ID).CalculatedBalance)
}

func TestEditTransferLegRejected(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	src := seedAccount(t, db, "Bancolombia", dec(100000), nil)
	dst := seedAccount(t, db, "Efectivo", dec(0), nil)
	cat := seedCategory(t, db, "Otros", repository.TxIncome)

	transferID, err := l.Transfer(ctx, TransferInput{
		SourceAccountID:      src.ID,
		DestinationAccountID: dst.ID,
		Amount:               dec(40000),
	})
	require.NoError(t, err)

	legs, err := repository.NewTransactionRepo(db).ListByTransfer(ctx, transferID)
	require.NoError(t, err)

	_, err = l.EditTransaction(ctx, legs[0].ID, TransactionInput{
		Type:        repository.TxIncome,
		Amount:      dec(40000),
		Description: "No permitido",
		CategoryID:  cat.ID,
		AccountID:   src.ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
