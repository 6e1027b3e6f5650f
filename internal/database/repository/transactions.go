package repository

import (
	"context"
	"database/sql"
)

// TransactionRepo handles transactions and their tag links.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, tx_type, amount, description, tx_date, category_id, account_id, transfer_id,
	 is_adjustment, reconciliation_id, fulfilled_reserve_id, suggested_category_id,
	 suggestion_accepted, ai_confidence, is_ambiguous, needs_review, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, t.ID, t.Type, t.Amount, t.Description, t.Date, t.CategoryID, t.AccountID, t.TransferID,
		t.IsAdjustment, t.ReconciliationID, t.FulfilledReserveID, t.SuggestedCategoryID,
		nullBool(t.SuggestionAccepted), t.AIConfidence, t.IsAmbiguous, t.NeedsReview,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}
	for _, tagID := range t.TagIDs {
		if err := r.AttachTag(ctx, t.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites the mutable fields of a transaction and replaces its
// tag set. CreatedAt is immutable and never written here.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 tx_type = ?, amount = ?, description = ?, tx_date = ?, category_id = ?, account_id = ?,
	 fulfilled_reserve_id = ?, suggested_category_id = ?, suggestion_accepted = ?,
	 ai_confidence = ?, is_ambiguous = ?, needs_review = ?, updated_at = ?
	WHERE id = ?`,
		t.Type, t.Amount, t.Description, t.Date, t.CategoryID, t.AccountID,
		t.FulfilledReserveID, t.SuggestedCategoryID, nullBool(t.SuggestionAccepted),
		t.AIConfidence, t.IsAmbiguous, t.NeedsReview, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ?`, t.ID); err != nil {
		return err
	}
	for _, tagID := range t.TagIDs {
		if err := r.AttachTag(ctx, t.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (r *TransactionRepo) AttachTag(ctx context.Context, transactionID, tagID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO transaction_tags(transaction_id, tag_id) VALUES(?, ?)`, transactionID, tagID)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	tags, err := r.fetchTagIDs(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.TagIDs = tags
	return &t, nil
}

func (r *TransactionRepo) List(ctx context.Context) ([]Transaction, error) {
	return r.query(ctx, `SELECT `+txCols+` FROM transactions ORDER BY tx_date DESC, created_at DESC`)
}

func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string) ([]Transaction, error) {
	return r.query(ctx, `SELECT `+txCols+` FROM transactions WHERE account_id = ? ORDER BY tx_date ASC, created_at ASC`, accountID)
}

// ListByTransfer returns both legs of a transfer pair.
func (r *TransactionRepo) ListByTransfer(ctx context.Context, transferID string) ([]Transaction, error) {
	return r.query(ctx, `SELECT `+txCols+` FROM transactions WHERE transfer_id = ? ORDER BY created_at ASC`, transferID)
}

func (r *TransactionRepo) ListByType(ctx context.Context, txType string) ([]Transaction, error) {
	return r.query(ctx, `SELECT `+txCols+` FROM transactions WHERE tx_type = ? ORDER BY tx_date DESC`, txType)
}

func (r *TransactionRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transaction_tags`); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	return err
}

func (r *TransactionRepo) query(ctx context.Context, q string, args ...any) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		tags, err := r.fetchTagIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].TagIDs = tags
	}
	return out, nil
}

func (r *TransactionRepo) fetchTagIDs(ctx context.Context, transactionID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tag_id FROM transaction_tags WHERE transaction_id = ? ORDER BY tag_id`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const txCols = `id, tx_type, amount, description, tx_date, category_id, account_id, transfer_id,
 is_adjustment, reconciliation_id, fulfilled_reserve_id, suggested_category_id,
 suggestion_accepted, ai_confidence, is_ambiguous, needs_review, created_at, updated_at`

// scanner handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var transfer, recon, reserve, suggested sql.NullString
	var accepted sql.NullBool
	var confidence sql.NullFloat64
	if err := row.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.Date, &t.CategoryID,
		&t.AccountID, &transfer, &t.IsAdjustment, &recon, &reserve, &suggested,
		&accepted, &confidence, &t.IsAmbiguous, &t.NeedsReview, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if transfer.Valid {
		t.TransferID = &transfer.String
	}
	if recon.Valid {
		t.ReconciliationID = &recon.String
	}
	if reserve.Valid {
		t.FulfilledReserveID = &reserve.String
	}
	if suggested.Valid {
		t.SuggestedCategoryID = &suggested.String
	}
	if accepted.Valid {
		t.SuggestionAccepted = &accepted.Bool
	}
	if confidence.Valid {
		t.AIConfidence = &confidence.Float64
	}
	return t, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
