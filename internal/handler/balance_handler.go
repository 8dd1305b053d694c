package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/middleware"
	"github.com/setorin/setorin-backend/internal/service"
)

// BalanceHandler handles balance and summary HTTP requests
type BalanceHandler struct {
	reportService *service.ReportService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(reportService *service.ReportService) *BalanceHandler {
	return &BalanceHandler{reportService: reportService}
}

// BalanceResponse represents a daily balance in API responses
type BalanceResponse struct {
	ID             int32  `json:"id"`
	StoreID        int32  `json:"storeId"`
	BalanceDate    string `json:"balanceDate"`
	OpeningBalance string `json:"openingBalance"`
	TotalIncome    string `json:"totalIncome"`
	TotalExpense   string `json:"totalExpense"`
	ClosingBalance string `json:"closingBalance"`
	UpdatedAt      string `json:"updatedAt"`
}

// CategorySummaryResponse represents a category aggregate in API responses
type CategorySummaryResponse struct {
	CategoryID   int32  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
}

// MonthlyTotalsResponse represents a monthly aggregate in API responses
type MonthlyTotalsResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Net          string `json:"net"`
}

// GetBalances godoc
// @Summary List daily balances
// @Description Get the materialized daily balances of a month, oldest first
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {array} BalanceResponse
// @Failure 400 {object} ProblemDetails
// @Router /cash/balances [get]
func (h *BalanceHandler) GetBalances(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	month, year, err := parseMonthYear(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	balances, err := h.reportService.ListBalances(c.Request().Context(), storeID, month, year)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to list balances")
		return NewInternalError(c, "Failed to list balances")
	}

	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = toBalanceResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetLatestBalance godoc
// @Summary Get the latest balance
// @Description Get the newest materialized daily balance of the store
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} ProblemDetails
// @Router /cash/balances/latest [get]
func (h *BalanceHandler) GetLatestBalance(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	balance, err := h.reportService.GetLatestBalance(c.Request().Context(), storeID)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceNotFound) {
			return NewNotFoundError(c, "No balance recorded yet")
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to get latest balance")
		return NewInternalError(c, "Failed to get latest balance")
	}

	return c.JSON(http.StatusOK, toBalanceResponse(balance))
}

// GetBalanceByDate godoc
// @Summary Get the balance of a date
// @Tags balances
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} ProblemDetails
// @Router /cash/balances/{date} [get]
func (h *BalanceHandler) GetBalanceByDate(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	balance, err := h.reportService.GetBalance(c.Request().Context(), storeID, date)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceNotFound) {
			return NewNotFoundError(c, "No balance recorded for this date")
		}
		log.Error().Err(err).Int32("store_id", storeID).Str("date", c.Param("date")).Msg("Failed to get balance")
		return NewInternalError(c, "Failed to get balance")
	}

	return c.JSON(http.StatusOK, toBalanceResponse(balance))
}

// GetCategorySummary godoc
// @Summary Summarize a month by category
// @Description Aggregate approved transactions of a month per category
// @Tags summaries
// @Produce json
// @Security BearerAuth
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Param type query string true "Transaction type (income or expense)"
// @Success 200 {array} CategorySummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /cash/summary [get]
func (h *BalanceHandler) GetCategorySummary(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	month, year, err := parseMonthYear(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	transactionType := domain.TransactionType(c.QueryParam("type"))

	summaries, err := h.reportService.SummarizeByCategory(c.Request().Context(), storeID, month, year, transactionType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: income, expense"},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to summarize by category")
		return NewInternalError(c, "Failed to summarize by category")
	}

	resp := make([]CategorySummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = CategorySummaryResponse{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			Total:        s.Total.String(),
			Count:        s.Count,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetMonthlySummary godoc
// @Summary Summarize a year by month
// @Description Aggregate approved income and expense per month of a year
// @Tags summaries
// @Produce json
// @Security BearerAuth
// @Param year query int true "Year"
// @Success 200 {array} MonthlyTotalsResponse
// @Failure 400 {object} ProblemDetails
// @Router /cash/summary/monthly [get]
func (h *BalanceHandler) GetMonthlySummary(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 2000 || year > 2100 {
		return NewValidationError(c, "year must be a four-digit year", nil)
	}

	totals, err := h.reportService.MonthlyTotals(c.Request().Context(), storeID, year)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Int("year", year).Msg("Failed to summarize by month")
		return NewInternalError(c, "Failed to summarize by month")
	}

	resp := make([]MonthlyTotalsResponse, len(totals))
	for i, t := range totals {
		resp[i] = MonthlyTotalsResponse{
			Year:         t.Year,
			Month:        t.Month,
			TotalIncome:  t.TotalIncome.String(),
			TotalExpense: t.TotalExpense.String(),
			Net:          t.TotalIncome.Sub(t.TotalExpense).String(),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func toBalanceResponse(b *domain.CashBalance) BalanceResponse {
	return BalanceResponse{
		ID:             b.ID,
		StoreID:        b.StoreID,
		BalanceDate:    b.BalanceDate.Format("2006-01-02"),
		OpeningBalance: b.OpeningBalance.String(),
		TotalIncome:    b.TotalIncome.String(),
		TotalExpense:   b.TotalExpense.String(),
		ClosingBalance: b.ClosingBalance.String(),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}
