package service

import (
	"context"
	"time"

	"github.com/setorin/setorin-backend/internal/domain"
)

// ReportService serves the read-only queries the reporting and dashboard
// screens need. It never mutates anything.
type ReportService struct {
	transactionRepo domain.TransactionRepository
	balanceRepo     domain.BalanceRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository, balanceRepo domain.BalanceRepository) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		balanceRepo:     balanceRepo,
	}
}

// ListTransactions retrieves transactions for a month window with optional
// status filter and pagination.
func (s *ReportService) ListTransactions(ctx context.Context, storeID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters != nil && filters.Status != nil {
		switch *filters.Status {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
		default:
			return nil, domain.ErrInvalidStatus
		}
	}
	return s.transactionRepo.ListByMonth(ctx, storeID, filters)
}

// GetBalance returns the materialized balance row of a date, or
// ErrBalanceNotFound when that date was never computed.
func (s *ReportService) GetBalance(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	return s.balanceRepo.GetByDate(ctx, storeID, normalizeDate(date))
}

// GetLatestBalance returns the most recent materialized balance row.
func (s *ReportService) GetLatestBalance(ctx context.Context, storeID int32) (*domain.CashBalance, error) {
	return s.balanceRepo.GetLatest(ctx, storeID)
}

// ListBalances returns the materialized balance rows of a month in date
// order — the running-balance report.
func (s *ReportService) ListBalances(ctx context.Context, storeID int32, month, year int) ([]*domain.CashBalance, error) {
	return s.balanceRepo.ListByMonth(ctx, storeID, month, year)
}

// SummarizeByCategory aggregates approved transactions of a month per
// category for one transaction type.
func (s *ReportService) SummarizeByCategory(ctx context.Context, storeID int32, month, year int, transactionType domain.TransactionType) ([]*domain.CategorySummary, error) {
	if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}
	return s.transactionRepo.SummarizeByCategory(ctx, storeID, month, year, transactionType)
}

// MonthlyTotals returns approved income/expense totals per month of a year.
func (s *ReportService) MonthlyTotals(ctx context.Context, storeID int32, year int) ([]*domain.MonthlyTotals, error) {
	return s.transactionRepo.MonthlyTotals(ctx, storeID, year)
}
