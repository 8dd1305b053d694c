package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CashBalance is one materialized ledger day for a store. Rows exist only for
// dates a recalculation has touched; a missing row means the balance of that
// date has never been computed. Invariant:
//
//	ClosingBalance = OpeningBalance + TotalIncome - TotalExpense
type CashBalance struct {
	ID             int32           `json:"id"`
	StoreID        int32           `json:"storeId"`
	BalanceDate    time.Time       `json:"balanceDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Consistent reports whether the row satisfies the closing-balance invariant.
func (b *CashBalance) Consistent() bool {
	return b.ClosingBalance.Equal(b.OpeningBalance.Add(b.TotalIncome).Sub(b.TotalExpense))
}

// BalanceRepository stores materialized per-day balances. Rows are written
// exclusively by the recalculator; everything else reads.
type BalanceRepository interface {
	GetByDate(ctx context.Context, storeID int32, date time.Time) (*CashBalance, error)
	// GetLatestBefore returns the most recent row strictly before date, or
	// ErrBalanceNotFound when no earlier row is materialized.
	GetLatestBefore(ctx context.Context, storeID int32, date time.Time) (*CashBalance, error)
	// GetNextAfter returns the closest row strictly after date, or
	// ErrBalanceNotFound when no later row is materialized.
	GetNextAfter(ctx context.Context, storeID int32, date time.Time) (*CashBalance, error)
	GetLatest(ctx context.Context, storeID int32) (*CashBalance, error)
	ListByMonth(ctx context.Context, storeID int32, month, year int) ([]*CashBalance, error)
	Upsert(ctx context.Context, balance *CashBalance) (*CashBalance, error)
	// LockForward takes row locks on every materialized row with
	// balance_date >= date, in ascending date order. Cascades on the same
	// store therefore always acquire locks in the same order.
	LockForward(ctx context.Context, storeID int32, date time.Time) error
}

// TxRunner executes fn inside a single database transaction. Repository calls
// made with the ctx passed to fn join that transaction, so a ledger mutation
// and its full balance cascade commit or roll back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
