package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo { return &AccountRepo{db: db} }

func (r *AccountRepo) Insert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, account_type, calculated_balance, actual_balance,
	 last_reconciliation_date, currency, is_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, a.ID, a.Name, a.Type, a.CalculatedBalance, nullDecimal(a.ActualBalance),
		a.LastReconciliationDate, a.Currency, a.IsActive)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountCols+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateBalances writes both balance tracks in one statement so they
// can never be observed half-updated.
func (r *AccountRepo) UpdateBalances(ctx context.Context, id string, calculated decimal.Decimal, actual *decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET calculated_balance = ?, actual_balance = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, calculated, nullDecimal(actual), id)
	return err
}

// MarkReconciled stamps the declared truth after a reconciliation commit.
func (r *AccountRepo) MarkReconciled(ctx context.Context, id string, actual decimal.Decimal, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET actual_balance = ?, last_reconciliation_date = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, actual, when, id)
	return err
}

func (r *AccountRepo) Update(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET name = ?, account_type = ?, actual_balance = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, a.Name, a.Type, nullDecimal(a.ActualBalance), a.IsActive, a.ID)
	return err
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

func (r *AccountRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts`)
	return err
}

const accountCols = `id, name, account_type, calculated_balance, actual_balance,
 last_reconciliation_date, currency, is_active, created_at, updated_at`

func scanAccount(row scanner) (Account, error) {
	var a Account
	var actual decimal.NullDecimal
	var lastRecon sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.CalculatedBalance, &actual,
		&lastRecon, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	if actual.Valid {
		a.ActualBalance = &actual.Decimal
	}
	if lastRecon.Valid {
		a.LastReconciliationDate = &lastRecon.Time
	}
	return a, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
