package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// CashTransaction is a single cash movement recorded against a store's ledger.
// Only approved transactions participate in balance computation.
type CashTransaction struct {
	ID              int32             `json:"id"`
	StoreID         int32             `json:"storeId"`
	EmployeeID      uuid.UUID         `json:"employeeId"`
	CategoryID      int32             `json:"categoryId"`
	Type            TransactionType   `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionDate time.Time         `json:"transactionDate"`
	Description     string            `json:"description"`
	Notes           *string           `json:"notes,omitempty"`
	ReceiptRef      *string           `json:"receiptRef,omitempty"`
	ReferenceNumber string            `json:"referenceNumber"`
	Status          TransactionStatus `json:"status"`
	ApproverID      *uuid.UUID        `json:"approverId,omitempty"`
	ApprovedAt      *time.Time        `json:"approvedAt,omitempty"`
	ApprovalNotes   *string           `json:"approvalNotes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// UpdateTransactionData holds the mutable fields of a transaction. Store and
// employee ownership never change after creation; status changes go through
// the approval flow, not here.
type UpdateTransactionData struct {
	CategoryID      int32
	Type            TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	Notes           *string
}

// TransactionFilters narrows listings to a month/year window with an optional
// status filter, plus pagination.
type TransactionFilters struct {
	Month    int
	Year     int
	Status   *TransactionStatus
	Page     int32
	PageSize int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*CashTransaction `json:"data"`
	Page       int32              `json:"page"`
	PageSize   int32              `json:"pageSize"`
	TotalItems int64              `json:"totalItems"`
	TotalPages int32              `json:"totalPages"`
}

// DayTotals are the approved income/expense sums of a single calendar date.
type DayTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategorySummary aggregates approved transactions of one category over a
// month window.
type CategorySummary struct {
	CategoryID   int32           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// MonthlyTotals are approved income/expense sums grouped by month.
type MonthlyTotals struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}

// TransactionRepository is the durable record of cash movements. Every method
// is scoped by store id; an id belonging to another store behaves exactly like
// a missing id.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *CashTransaction) (*CashTransaction, error)
	GetByID(ctx context.Context, storeID int32, id int32) (*CashTransaction, error)
	Update(ctx context.Context, storeID int32, id int32, data *UpdateTransactionData) (*CashTransaction, error)
	UpdateStatus(ctx context.Context, storeID int32, id int32, status TransactionStatus, approverID uuid.UUID, approvedAt time.Time, notes *string) (*CashTransaction, error)
	UpdateReceiptRef(ctx context.Context, storeID int32, id int32, receiptRef *string) (*CashTransaction, error)
	Delete(ctx context.Context, storeID int32, id int32) error
	ListByMonth(ctx context.Context, storeID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	SumApprovedByDate(ctx context.Context, storeID int32, date time.Time) (DayTotals, error)
	SummarizeByCategory(ctx context.Context, storeID int32, month, year int, transactionType TransactionType) ([]*CategorySummary, error)
	MonthlyTotals(ctx context.Context, storeID int32, year int) ([]*MonthlyTotals, error)
}
