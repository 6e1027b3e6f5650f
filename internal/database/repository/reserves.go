package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ReserveRepo handles reserves.
type ReserveRepo struct {
	db DBTX
}

func NewReserveRepo(db DBTX) *ReserveRepo { return &ReserveRepo{db: db} }

func (r *ReserveRepo) Insert(ctx context.Context, res Reserve) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO reserves(id, account_id, amount, description, category_id, is_active,
	 fulfilled_at, fulfilled_transaction_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, res.ID, res.AccountID, res.Amount, res.Description, res.CategoryID, res.IsActive,
		res.FulfilledAt, res.FulfilledTransactionID, res.CreatedAt, res.UpdatedAt)
	return err
}

func (r *ReserveRepo) Get(ctx context.Context, id string) (*Reserve, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reserveCols+` FROM reserves WHERE id = ?`, id)
	res, err := scanReserve(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *ReserveRepo) ListByAccount(ctx context.Context, accountID string) ([]Reserve, error) {
	return r.query(ctx, `SELECT `+reserveCols+` FROM reserves WHERE account_id = ? ORDER BY created_at DESC`, accountID)
}

func (r *ReserveRepo) ListActiveByAccount(ctx context.Context, accountID string) ([]Reserve, error) {
	return r.query(ctx, `SELECT `+reserveCols+` FROM reserves WHERE account_id = ? AND is_active = 1 ORDER BY created_at DESC`, accountID)
}

func (r *ReserveRepo) List(ctx context.Context) ([]Reserve, error) {
	return r.query(ctx, `SELECT `+reserveCols+` FROM reserves ORDER BY created_at DESC`)
}

// SumActiveByAccount returns the total earmarked against an account.
func (r *ReserveRepo) SumActiveByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	rows, err := r.ListActiveByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, res := range rows {
		total = total.Add(res.Amount)
	}
	return total, nil
}

// Fulfill closes a reserve against the expense transaction that spent it.
func (r *ReserveRepo) Fulfill(ctx context.Context, id, transactionID string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE reserves SET is_active = 0, fulfilled_at = ?, fulfilled_transaction_id = ?, updated_at = ?
	WHERE id = ?`, when, transactionID, when, id)
	return err
}

// Deactivate cancels a reserve manually. No fulfillment stamp is written.
func (r *ReserveRepo) Deactivate(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE reserves SET is_active = 0, updated_at = ? WHERE id = ?`, when, id)
	return err
}

func (r *ReserveRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reserves`)
	return err
}

func (r *ReserveRepo) query(ctx context.Context, q string, args ...any) ([]Reserve, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reserve
	for rows.Next() {
		res, err := scanReserve(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

const reserveCols = `id, account_id, amount, description, category_id, is_active,
 fulfilled_at, fulfilled_transaction_id, created_at, updated_at`

func scanReserve(row scanner) (Reserve, error) {
	var res Reserve
	var category, fulfilledTx sql.NullString
	var fulfilledAt sql.NullTime
	if err := row.Scan(&res.ID, &res.AccountID, &res.Amount, &res.Description, &category,
		&res.IsActive, &fulfilledAt, &fulfilledTx, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return Reserve{}, err
	}
	if category.Valid {
		res.CategoryID = &category.String
	}
	if fulfilledAt.Valid {
		res.FulfilledAt = &fulfilledAt.Time
	}
	if fulfilledTx.Valid {
		res.FulfilledTransactionID = &fulfilledTx.String
	}
	return res, nil
}
