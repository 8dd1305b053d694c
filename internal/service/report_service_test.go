package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func setupReportService() (*ReportService, *testutil.MockTransactionRepository, *testutil.MockBalanceRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	balanceRepo := testutil.NewMockBalanceRepository()
	return NewReportService(transactionRepo, balanceRepo), transactionRepo, balanceRepo
}

func TestListTransactions_InvalidStatus(t *testing.T) {
	service, _, _ := setupReportService()

	bad := domain.TransactionStatus("archived")
	_, err := service.ListTransactions(context.Background(), 1, &domain.TransactionFilters{
		Month: 3, Year: 2026, Status: &bad, Page: 1, PageSize: 20,
	})
	if err != domain.ErrInvalidStatus {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestListTransactions_StatusFilter(t *testing.T) {
	service, transactionRepo, _ := setupReportService()

	for i, status := range []domain.TransactionStatus{domain.StatusApproved, domain.StatusPending, domain.StatusApproved} {
		transactionRepo.AddTransaction(&domain.CashTransaction{
			ID:              int32(i + 1),
			StoreID:         1,
			EmployeeID:      uuid.New(),
			CategoryID:      1,
			Type:            domain.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(100),
			TransactionDate: day(i + 1),
			Description:     "x",
			Status:          status,
		})
	}

	pending := domain.StatusPending
	result, err := service.ListTransactions(context.Background(), 1, &domain.TransactionFilters{
		Month: 3, Year: 2026, Status: &pending, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.TotalItems != 1 {
		t.Errorf("Expected 1 pending transaction, got %d", result.TotalItems)
	}
}

func TestListTransactions_Pagination(t *testing.T) {
	service, transactionRepo, _ := setupReportService()

	for i := 1; i <= 25; i++ {
		transactionRepo.AddTransaction(&domain.CashTransaction{
			StoreID:         1,
			EmployeeID:      uuid.New(),
			CategoryID:      1,
			Type:            domain.TransactionTypeIncome,
			Amount:          decimal.NewFromInt(int64(i)),
			TransactionDate: day(1 + i%28),
			Description:     "x",
			Status:          domain.StatusApproved,
		})
	}

	result, err := service.ListTransactions(context.Background(), 1, &domain.TransactionFilters{
		Month: 3, Year: 2026, Page: 2, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.TotalItems != 25 {
		t.Errorf("Expected 25 items, got %d", result.TotalItems)
	}
	if result.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", result.TotalPages)
	}
	if len(result.Data) != 10 {
		t.Errorf("Expected 10 rows on page 2, got %d", len(result.Data))
	}
}

func TestGetBalance_NormalizesDate(t *testing.T) {
	service, _, balanceRepo := setupReportService()

	balanceRepo.AddBalance(&domain.CashBalance{
		StoreID:        1,
		BalanceDate:    day(5),
		OpeningBalance: decimal.Zero,
		TotalIncome:    decimal.NewFromInt(100),
		TotalExpense:   decimal.Zero,
		ClosingBalance: decimal.NewFromInt(100),
	})

	// A timestamp in the middle of the day still finds the row.
	noon := time.Date(2026, time.March, 5, 12, 30, 0, 0, time.UTC)
	balance, err := service.GetBalance(context.Background(), 1, noon)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !balance.ClosingBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected closing 100, got %s", balance.ClosingBalance)
	}
}

func TestGetLatestBalance_Empty(t *testing.T) {
	service, _, _ := setupReportService()

	_, err := service.GetLatestBalance(context.Background(), 1)
	if err != domain.ErrBalanceNotFound {
		t.Errorf("Expected ErrBalanceNotFound, got %v", err)
	}
}

func TestListBalances_OrderedByDate(t *testing.T) {
	service, _, balanceRepo := setupReportService()

	for _, d := range []int{9, 3, 6} {
		balanceRepo.AddBalance(&domain.CashBalance{
			StoreID:        1,
			BalanceDate:    day(d),
			OpeningBalance: decimal.Zero,
			ClosingBalance: decimal.Zero,
		})
	}

	balances, err := service.ListBalances(context.Background(), 1, 3, 2026)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("Expected 3 balances, got %d", len(balances))
	}
	for i := 1; i < len(balances); i++ {
		if !balances[i].BalanceDate.After(balances[i-1].BalanceDate) {
			t.Errorf("Expected ascending date order at index %d", i)
		}
	}
}

func TestSummarizeByCategory_InvalidType(t *testing.T) {
	service, _, _ := setupReportService()

	_, err := service.SummarizeByCategory(context.Background(), 1, 3, 2026, domain.TransactionType("transfer"))
	if err != domain.ErrInvalidTransactionType {
		t.Errorf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestSummarizeByCategory_OnlyApproved(t *testing.T) {
	service, transactionRepo, _ := setupReportService()
	transactionRepo.CategoryNames[1] = "Daily Sales"

	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 1,
		Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(300),
		TransactionDate: day(1), Description: "x", Status: domain.StatusApproved,
	})
	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 1,
		Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(999),
		TransactionDate: day(2), Description: "x", Status: domain.StatusPending,
	})

	summaries, err := service.SummarizeByCategory(context.Background(), 1, 3, 2026, domain.TransactionTypeIncome)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(summaries))
	}
	if !summaries[0].Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected total 300, got %s", summaries[0].Total)
	}
	if summaries[0].CategoryName != "Daily Sales" {
		t.Errorf("Expected category name 'Daily Sales', got %s", summaries[0].CategoryName)
	}
}

func TestMonthlyTotals(t *testing.T) {
	service, transactionRepo, _ := setupReportService()

	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 1,
		Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(1000),
		TransactionDate: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		Description:     "x", Status: domain.StatusApproved,
	})
	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 2,
		Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(400),
		TransactionDate: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		Description:     "x", Status: domain.StatusApproved,
	})

	totals, err := service.MonthlyTotals(context.Background(), 1, 2026)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("Expected 2 months, got %d", len(totals))
	}
	if totals[0].Month != 1 || !totals[0].TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Unexpected January totals: %+v", totals[0])
	}
	if totals[1].Month != 3 || !totals[1].TotalExpense.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Unexpected March totals: %+v", totals[1])
	}
}
