package repository

import (
	"context"
	"database/sql"
)

// ReconciliationRepo handles reconciliation snapshots. Records are
// append-only: there is no update method on purpose.
type ReconciliationRepo struct {
	db DBTX
}

func NewReconciliationRepo(db DBTX) *ReconciliationRepo { return &ReconciliationRepo{db: db} }

func (r *ReconciliationRepo) Insert(ctx context.Context, rec Reconciliation) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO reconciliations(id, account_id, recon_date, calculated_balance,
	 declared_balance, difference, notes, adjustment_transaction_id)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, rec.ID, rec.AccountID, rec.Date, rec.CalculatedBalance,
		rec.DeclaredBalance, rec.Difference, rec.Notes, rec.AdjustmentTransactionID)
	return err
}

func (r *ReconciliationRepo) Get(ctx context.Context, id string) (*Reconciliation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reconCols+` FROM reconciliations WHERE id = ?`, id)
	rec, err := scanReconciliation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *ReconciliationRepo) ListByAccount(ctx context.Context, accountID string) ([]Reconciliation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reconCols+` FROM reconciliations WHERE account_id = ? ORDER BY recon_date DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *ReconciliationRepo) List(ctx context.Context) ([]Reconciliation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reconCols+` FROM reconciliations ORDER BY recon_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *ReconciliationRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reconciliations`)
	return err
}

const reconCols = `id, account_id, recon_date, calculated_balance, declared_balance, difference, notes, adjustment_transaction_id`

func scanReconciliation(row scanner) (Reconciliation, error) {
	var rec Reconciliation
	var notes, adjTx sql.NullString
	if err := row.Scan(&rec.ID, &rec.AccountID, &rec.Date, &rec.CalculatedBalance,
		&rec.DeclaredBalance, &rec.Difference, &notes, &adjTx); err != nil {
		return Reconciliation{}, err
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if adjTx.Valid {
		rec.AdjustmentTransactionID = &adjTx.String
	}
	return rec, nil
}
