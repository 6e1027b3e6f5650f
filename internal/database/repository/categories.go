package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Insert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, name, category_type, color, icon, parent_id, usage_count, is_active)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, c.ID, c.Name, c.Type, c.Color, c.Icon, c.ParentID, c.UsageCount, c.IsActive)
	return err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindByNameAndType locates a category by exact name within a type,
// used to resolve the reconciliation adjustment sentinel.
func (r *CategoryRepo) FindByNameAndType(ctx context.Context, name, categoryType string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryCols+` FROM categories WHERE name = ? AND category_type = ? LIMIT 1`, name, categoryType)
	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) BumpUsage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE categories SET usage_count = usage_count + 1 WHERE id = ?`, id)
	return err
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

func (r *CategoryRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories`)
	return err
}

const categoryCols = `id, name, category_type, color, icon, parent_id, usage_count, is_active`

func scanCategory(row scanner) (Category, error) {
	var c Category
	var icon, parent sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &icon, &parent, &c.UsageCount, &c.IsActive); err != nil {
		return Category{}, err
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	return c, nil
}
