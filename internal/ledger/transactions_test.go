package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drestrepo/monedero/internal/database/repository"
)

func TestCreateTransactionAppliesDelta(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(100000), nil)
	income := seedCategory(t, db, "Sueldo", repository.TxIncome)
	expense := seedCategory(t, db, "Transporte", repository.TxExpense)

	_, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxIncome,
		Amount:      dec(50000),
		Description: "Pago quincena",
		CategoryID:  income.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)
	requireDecimalEqual(t, dec(150000), getAccount(t, db, acct.ID).CalculatedBalance)

	_, err = l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(20000),
		Description: "Taxi al aeropuerto",
		CategoryID:  expense.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)
	requireDecimalEqual(t, dec(130000), getAccount(t, db, acct.ID).CalculatedBalance)
}

func TestCreateTransactionMirrorsActualBalance(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	reconciled := seedAccount(t, db, "Reconciliada", dec(100000), decPtr(100000))
	fresh := seedAccount(t, db, "Nueva", dec(100000), nil)
	cat := seedCategory(t, db, "Ocio", repository.TxExpense)

	for _, acct := range []repository.Account{reconciled, fresh} {
		_, err := l.CreateTransaction(ctx, TransactionInput{
			Type:        repository.TxExpense,
			Amount:      dec(30000),
			Description: "Cine con amigos",
			CategoryID:  cat.ID,
			AccountID:   acct.ID,
		})
		require.NoError(t, err)
	}

	got := getAccount(t, db, reconciled.ID)
	require.NotNil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(70000), *got.ActualBalance)
	requireDecimalEqual(t, dec(70000), got.CalculatedBalance)

	// Undefined stays undefined until the first reconciliation.
	got = getAccount(t, db, fresh.ID)
	require.Nil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(70000), got.CalculatedBalance)
}

func TestCreateTransactionValidation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Efectivo", dec(0), nil)
	cat := seedCategory(t, db, "Otros", repository.TxIncome)

	cases := []struct {
		name  string
		in    TransactionInput
		field string
	}{
		{"bad type", TransactionInput{Type: "loan", Amount: dec(10), Description: "abc", CategoryID: cat.ID, AccountID: acct.ID}, "type"},
		{"zero amount", TransactionInput{Type: repository.TxIncome, Amount: dec(0), Description: "abc", CategoryID: cat.ID, AccountID: acct.ID}, "amount"},
		{"negative amount", TransactionInput{Type: repository.TxIncome, Amount: dec(-5), Description: "abc", CategoryID: cat.ID, AccountID: acct.ID}, "amount"},
		{"short description", TransactionInput{Type: repository.TxIncome, Amount: dec(10), Description: "  a ", CategoryID: cat.ID, AccountID: acct.ID}, "description"},
		{"missing category", TransactionInput{Type: repository.TxIncome, Amount: dec(10), Description: "abc", AccountID: acct.ID}, "categoryId"},
		{"missing account", TransactionInput{Type: repository.TxIncome, Amount: dec(10), Description: "abc", CategoryID: cat.ID}, "accountId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.CreateTransaction(ctx, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}

	// A rejected create leaves the account untouched.
	requireDecimalEqual(t, dec(0), getAccount(t, db, acct.ID).CalculatedBalance)
}

func TestCreateTransactionUnknownCategoryRollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Efectivo", dec(5000), nil)

	_, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxIncome,
		Amount:      dec(1000),
		Description: "Venta garaje",
		CategoryID:  "no-such-category",
		AccountID:   acct.ID,
	})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	require.Equal(t, "category", nferr.Kind)

	requireDecimalEqual(t, dec(5000), getAccount(t, db, acct.ID).CalculatedBalance)
	txs, err := repository.NewTransactionRepo(db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestEditTransactionSameAccount(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Bancolombia", dec(100000), decPtr(100000))
	cat := seedCategory(t, db, "Gastos diarios", repository.TxExpense)

	created, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(20000),
		Description: "Mercado semanal",
		CategoryID:  cat.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	_, err = l.EditTransaction(ctx, created.ID, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(35000),
		Description: "Mercado semanal corregido",
		CategoryID:  cat.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	got := getAccount(t, db, acct.ID)
	requireDecimalEqual(t, dec(65000), got.CalculatedBalance)
	require.NotNil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(65000), *got.ActualBalance)
}

func TestEditTransactionMovesAccounts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	a := seedAccount(t, db, "Efectivo", dec(50000), nil)
	b := seedAccount(t, db, "Bancolombia", dec(80000), nil)
	cat := seedCategory(t, db, "Transporte", repository.TxExpense)

	created, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(10000),
		Description: "Gasolina moto",
		CategoryID:  cat.ID,
		AccountID:   a.ID,
	})
	require.NoError(t, err)

	_, err = l.EditTransaction(ctx, created.ID, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(10000),
		Description: "Gasolina moto",
		CategoryID:  cat.ID,
		AccountID:   b.ID,
	})
	require.NoError(t, err)

	requireDecimalEqual(t, dec(50000), getAccount(t, db, a.ID).CalculatedBalance)
	requireDecimalEqual(t, dec(70000), getAccount(t, db, b.ID).CalculatedBalance)
}

func TestEditEquivalentToDeleteAndCreate(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Efectivo", dec(100000), nil)
	cat := seedCategory(t, db, "Salud", repository.TxExpense)
	income := seedCategory(t, db, "Otros", repository.TxIncome)

	created, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(12000),
		Description: "Droguería",
		CategoryID:  cat.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	// Flip the type entirely; the edit must net out cleanly.
	_, err = l.EditTransaction(ctx, created.ID, TransactionInput{
		Type:        repository.TxIncome,
		Amount:      dec(4000),
		Description: "Reembolso droguería",
		CategoryID:  income.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	// 100000 - 12000 + 12000 + 4000
	requireDecimalEqual(t, dec(104000), getAccount(t, db, acct.ID).CalculatedBalance)
}

func TestDeleteTransactionReversesEffect(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	acct := seedAccount(t, db, "Efectivo", dec(100000), decPtr(100000))
	cat := seedCategory(t, db, "Ocio", repository.TxExpense)

	created, err := l.CreateTransaction(ctx, TransactionInput{
		Type:        repository.TxExpense,
		Amount:      dec(25000),
		Description: "Concierto entrada",
		CategoryID:  cat.ID,
		AccountID:   acct.ID,
	})
	require.NoError(t, err)

	require.NoError(t, l.DeleteTransaction(ctx, created.ID))

	got := getAccount(t, db, acct.ID)
	requireDecimalEqual(t, dec(100000), got.CalculatedBalance)
	require.NotNil(t, got.ActualBalance)
	requireDecimalEqual(t, dec(100000), *got.ActualBalance)

	missing, err := repository.NewTransactionRepo(db).Get(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	db := setupDB(t)
	l := New(db)

	err := l.DeleteTransaction(context.Background(), "nope")
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	require.Equal(t, "transaction", nferr.Kind)
}

// Replaying the full history from the starting balances must land on
// the stored calculated balances exactly.
func TestReplayInvariant(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	l := New(db)

	a := seedAccount(t, db, "Efectivo", dec(100000), nil)
	b := seedAccount(t, db, "Bancolombia", dec(200000), nil)
	income := seedCategory(t, db, "Sueldo", repository.TxIncome)
	expense := seedCategory(t, db, "Vivienda", repository.TxExpense)

	_, err := l.CreateTransaction(ctx, TransactionInput{Type: repository.TxIncome, Amount: dec(300000), Description: "Quincena", CategoryID: income.ID, AccountID: b.ID})
	require.NoError(t, err)
	_, err = l.CreateTransaction(ctx, TransactionInput{Type: repository.TxExpense, Amount: dec(45000), Description: "Servicios del mes", CategoryID: expense.ID, AccountID: a.ID})
	require.NoError(t, err)
	_, err = l.Transfer(ctx, TransferInput{SourceAccountID: b.ID, DestinationAccountID: a.ID, Amount: dec(80000)})
	require.NoError(t, err)
	_, err = l.CommitReconciliation(ctx, a.ID, dec(140000), nil, true)
	require.NoError(t, err)

	replay := map[string]decimal.Decimal{
		a.ID: dec(100000),
		b.ID: dec(200000),
	}
	txs, err := repository.NewTransactionRepo(db).List(ctx)
	require.NoError(t, err)
	for _, tx := range txs {
		replay[tx.AccountID] = replay[tx.AccountID].Add(signedDelta(tx))
	}
	requireDecimalEqual(t, replay[a.ID], getAccount(t, db, a.ID).CalculatedBalance)
	requireDecimalEqual(t, replay[b.ID], getAccount(t, db, b.ID).CalculatedBalance)
}
