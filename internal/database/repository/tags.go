package repository

import (
	"context"
	"database/sql"
)

// TagRepo handles tags.
type TagRepo struct {
	db DBTX
}

func NewTagRepo(db DBTX) *TagRepo { return &TagRepo{db: db} }

func (r *TagRepo) Insert(ctx context.Context, t Tag) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tags(id, name, color, usage_count, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?);
	`, t.ID, t.Name, t.Color, t.UsageCount, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TagRepo) Get(ctx context.Context, id string) (*Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color, usage_count, created_at, updated_at FROM tags WHERE id = ?`, id)
	var t Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Color, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, usage_count, created_at, updated_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TagRepo) BumpUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tags SET usage_count = usage_count + 1 WHERE id = ?`, id)
	return err
}

func (r *TagRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	return n, err
}

func (r *TagRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tags`)
	return err
}
