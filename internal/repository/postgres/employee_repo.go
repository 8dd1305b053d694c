package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/setorin/setorin-backend/internal/domain"
)

// EmployeeRepository implements domain.EmployeeRepository using PostgreSQL
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID retrieves an employee by its ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT id, auth0_id, store_id, email, name, created_at, updated_at
		FROM employees
		WHERE id = $1`,
		id,
	)
	return scanEmployee(row)
}

// GetByAuth0ID retrieves an employee by the Auth0 subject claim
func (r *EmployeeRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Employee, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT id, auth0_id, store_id, email, name, created_at, updated_at
		FROM employees
		WHERE auth0_id = $1`,
		auth0ID,
	)
	return scanEmployee(row)
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.Auth0ID, &e.StoreID, &e.Email, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}
