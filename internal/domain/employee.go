package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Employee is a portal user. The ledger only cares about the store an
// employee belongs to; profile management lives elsewhere.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	Auth0ID   string    `json:"-"`
	StoreID   int32     `json:"storeId"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*Employee, error)
}
