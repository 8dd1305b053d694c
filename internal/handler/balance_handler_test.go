package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/service"
	"github.com/setorin/setorin-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func setupBalanceHandler() (*BalanceHandler, *testutil.MockTransactionRepository, *testutil.MockBalanceRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	balanceRepo := testutil.NewMockBalanceRepository()
	reportService := service.NewReportService(transactionRepo, balanceRepo)
	return NewBalanceHandler(reportService), transactionRepo, balanceRepo
}

func TestGetBalancesHandler_MonthOrdered(t *testing.T) {
	e := echo.New()
	h, _, balanceRepo := setupBalanceHandler()

	balanceRepo.AddBalance(&domain.CashBalance{
		StoreID: 1, BalanceDate: mustDate("2026-03-15"),
		OpeningBalance: decimal.NewFromInt(100), TotalIncome: decimal.NewFromInt(50),
		TotalExpense: decimal.Zero, ClosingBalance: decimal.NewFromInt(150),
	})
	balanceRepo.AddBalance(&domain.CashBalance{
		StoreID: 1, BalanceDate: mustDate("2026-03-02"),
		OpeningBalance: decimal.Zero, TotalIncome: decimal.NewFromInt(100),
		TotalExpense: decimal.Zero, ClosingBalance: decimal.NewFromInt(100),
	})
	balanceRepo.AddBalance(&domain.CashBalance{
		StoreID: 1, BalanceDate: mustDate("2026-04-01"),
		OpeningBalance: decimal.NewFromInt(150), TotalIncome: decimal.Zero,
		TotalExpense: decimal.Zero, ClosingBalance: decimal.NewFromInt(150),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balances?month=3&year=2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetBalances(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 balances in March, got %d", len(response))
	}
	if response[0].BalanceDate != "2026-03-02" || response[1].BalanceDate != "2026-03-15" {
		t.Errorf("Expected balances oldest first, got %s then %s", response[0].BalanceDate, response[1].BalanceDate)
	}
}

func TestGetLatestBalanceHandler_Empty(t *testing.T) {
	e := echo.New()
	h, _, _ := setupBalanceHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balances/latest", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetLatestBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetBalanceByDateHandler_Success(t *testing.T) {
	e := echo.New()
	h, _, balanceRepo := setupBalanceHandler()

	balanceRepo.AddBalance(&domain.CashBalance{
		StoreID: 1, BalanceDate: mustDate("2026-03-02"),
		OpeningBalance: decimal.Zero, TotalIncome: decimal.NewFromInt(100),
		TotalExpense: decimal.NewFromInt(30), ClosingBalance: decimal.NewFromInt(70),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balances/2026-03-02", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("date")
	c.SetParamValues("2026-03-02")
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetBalanceByDate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response BalanceResponse
	json.Unmarshal(rec.Body.Bytes(), &response)
	if response.ClosingBalance != "70" {
		t.Errorf("Expected closing '70', got %s", response.ClosingBalance)
	}
}

func TestGetBalanceByDateHandler_BadDate(t *testing.T) {
	e := echo.New()
	h, _, _ := setupBalanceHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/balances/yesterday", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("date")
	c.SetParamValues("yesterday")
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetBalanceByDate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetCategorySummaryHandler_InvalidType(t *testing.T) {
	e := echo.New()
	h, _, _ := setupBalanceHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/summary?month=3&year=2026&type=transfer", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetCategorySummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetMonthlySummaryHandler_NetIsComputed(t *testing.T) {
	e := echo.New()
	h, transactionRepo, _ := setupBalanceHandler()

	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 1,
		Type: domain.TransactionTypeIncome, Amount: decimal.NewFromInt(500),
		TransactionDate: mustDate("2026-03-10"), Description: "sales",
		Status: domain.StatusApproved,
	})
	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID: 1, EmployeeID: uuid.New(), CategoryID: 2,
		Type: domain.TransactionTypeExpense, Amount: decimal.NewFromInt(200),
		TransactionDate: mustDate("2026-03-12"), Description: "supplies",
		Status: domain.StatusApproved,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash/summary/monthly?year=2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupEmployeeContext(c, uuid.New(), 1)

	if err := h.GetMonthlySummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []MonthlyTotalsResponse
	json.Unmarshal(rec.Body.Bytes(), &response)
	if len(response) != 1 {
		t.Fatalf("Expected 1 month, got %d", len(response))
	}
	if response[0].Month != 3 || response[0].Net != "300" {
		t.Errorf("Expected March net '300', got month %d net %s", response[0].Month, response[0].Net)
	}
}
