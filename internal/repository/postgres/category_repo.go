package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/setorin/setorin-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int32) (*domain.CashCategory, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT id, name, category_type, is_active, created_at, updated_at
		FROM cash_categories
		WHERE id = $1`,
		id,
	)
	return scanCategory(row)
}

// List retrieves all categories, optionally filtered to active ones
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.CashCategory, error) {
	rows, err := r.db.conn(ctx).Query(ctx, `
		SELECT id, name, category_type, is_active, created_at, updated_at
		FROM cash_categories
		WHERE NOT $1 OR is_active
		ORDER BY category_type, name`,
		activeOnly,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.CashCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func scanCategory(row pgx.Row) (*domain.CashCategory, error) {
	var c domain.CashCategory
	var categoryType string
	err := row.Scan(&c.ID, &c.Name, &categoryType, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Type = domain.TransactionType(categoryType)
	return &c, nil
}
