package domain

import (
	"context"
	"time"
)

// CashCategory is an admin-managed transaction category. The ledger treats the
// catalog as read-only: categories are created and edited by an external admin
// flow and only referenced here.
type CashCategory struct {
	ID        int32           `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CategoryRepository is the read-only catalog lookup used by the ledger.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int32) (*CashCategory, error)
	List(ctx context.Context, activeOnly bool) ([]*CashCategory, error)
}
