package repository

import (
	"context"
	"database/sql"
)

// ConfigID is the fixed primary key of the singleton config row.
const ConfigID = "singleton"

// AppConfigRepo handles the singleton config record.
type AppConfigRepo struct {
	db DBTX
}

func NewAppConfigRepo(db DBTX) *AppConfigRepo { return &AppConfigRepo{db: db} }

func (r *AppConfigRepo) Get(ctx context.Context) (*AppConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, default_currency, min_confidence_threshold, enable_ai_suggestions FROM app_config WHERE id = ?`, ConfigID)
	var c AppConfig
	if err := row.Scan(&c.ID, &c.DefaultCurrency, &c.MinConfidenceThreshold, &c.EnableAISuggestions); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *AppConfigRepo) Put(ctx context.Context, c AppConfig) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO app_config(id, default_currency, min_confidence_threshold, enable_ai_suggestions)
	VALUES(?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 default_currency=excluded.default_currency,
	 min_confidence_threshold=excluded.min_confidence_threshold,
	 enable_ai_suggestions=excluded.enable_ai_suggestions;
	`, ConfigID, c.DefaultCurrency, c.MinConfidenceThreshold, c.EnableAISuggestions)
	return err
}

func (r *AppConfigRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_config`).Scan(&n)
	return n, err
}

func (r *AppConfigRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM app_config`)
	return err
}
