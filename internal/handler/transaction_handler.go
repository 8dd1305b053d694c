package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/middleware"
	"github.com/setorin/setorin-backend/internal/service"
)

// TransactionHandler handles cash transaction HTTP requests
type TransactionHandler struct {
	ledgerService *service.LedgerService
	reportService *service.ReportService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService *service.LedgerService, reportService *service.ReportService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		reportService: reportService,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	CategoryID  int32   `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Notes       *string `json:"notes,omitempty"`
}

// DecisionRequest represents an approve/reject request body
type DecisionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// TransactionResponse represents a cash transaction in API responses
type TransactionResponse struct {
	ID              int32   `json:"id"`
	StoreID         int32   `json:"storeId"`
	EmployeeID      string  `json:"employeeId"`
	CategoryID      int32   `json:"categoryId"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	TransactionDate string  `json:"transactionDate"`
	Description     string  `json:"description"`
	Notes           *string `json:"notes,omitempty"`
	ReceiptRef      *string `json:"receiptRef,omitempty"`
	ReferenceNumber string  `json:"referenceNumber"`
	Status          string  `json:"status"`
	ApproverID      *string `json:"approverId,omitempty"`
	ApprovedAt      *string `json:"approvedAt,omitempty"`
	ApprovalNotes   *string `json:"approvalNotes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents paginated transactions in API responses
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransaction godoc
// @Summary Create a cash transaction
// @Description Record a new income or expense. Amounts above the approval threshold start as pending.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /cash/transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}
	employeeID := middleware.GetEmployeeID(c)

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	input := service.CreateTransactionInput{
		CategoryID:      req.CategoryID,
		Type:            domain.TransactionType(req.Type),
		Amount:          amount,
		TransactionDate: date,
		Description:     req.Description,
		Notes:           req.Notes,
	}

	transaction, err := h.ledgerService.CreateTransaction(c.Request().Context(), storeID, employeeID, input)
	if err != nil {
		if mapped := mapTransactionValidationError(c, err); mapped != nil {
			return mapped
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().
		Int32("store_id", storeID).
		Int32("transaction_id", transaction.ID).
		Str("reference_number", transaction.ReferenceNumber).
		Str("status", string(transaction.Status)).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List cash transactions
// @Description Get one month of transactions with optional status filter
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Param status query string false "Status filter (pending, approved, rejected)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Router /cash/transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	month, year, err := parseMonthYear(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	filters := &domain.TransactionFilters{
		Month:    month,
		Year:     year,
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if s := c.QueryParam("status"); s != "" {
		status := domain.TransactionStatus(s)
		filters.Status = &status
	}
	if p := c.QueryParam("page"); p != "" {
		page, err := strconv.ParseInt(p, 10, 32)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if ps := c.QueryParam("pageSize"); ps != "" {
		pageSize, err := strconv.ParseInt(ps, 10, 32)
		if err != nil || pageSize < 1 || pageSize > domain.MaxPageSize {
			return NewValidationError(c, "Invalid pageSize", nil)
		}
		filters.PageSize = int32(pageSize)
	}

	result, err := h.reportService.ListTransactions(c.Request().Context(), storeID, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Must be one of: pending, approved, rejected"},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	resp := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, t := range result.Data {
		resp.Data[i] = toTransactionResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetTransaction godoc
// @Summary Get a cash transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.ledgerService.GetTransaction(c.Request().Context(), storeID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a cash transaction
// @Description Rewrite the mutable fields. Editing an approved transaction recalculates affected balances.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body CreateTransactionRequest true "Transaction update request"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	input := service.CreateTransactionInput{
		CategoryID:      req.CategoryID,
		Type:            domain.TransactionType(req.Type),
		Amount:          amount,
		TransactionDate: date,
		Description:     req.Description,
		Notes:           req.Notes,
	}

	transaction, err := h.ledgerService.UpdateTransaction(c.Request().Context(), storeID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if mapped := mapTransactionValidationError(c, err); mapped != nil {
			return mapped
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Int32("store_id", storeID).Int32("transaction_id", id).Msg("Transaction updated")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a cash transaction
// @Description Delete a transaction. Deleting an approved transaction recalculates affected balances.
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.ledgerService.DeleteTransaction(c.Request().Context(), storeID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int32("store_id", storeID).Int32("transaction_id", id).Msg("Transaction deleted")

	return c.NoContent(http.StatusNoContent)
}

// ApproveTransaction godoc
// @Summary Approve a pending transaction
// @Description Approve a pending transaction, recalculating balances from its date forward
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body DecisionRequest false "Approval notes"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /cash/transactions/{id}/approve [post]
func (h *TransactionHandler) ApproveTransaction(c echo.Context) error {
	return h.decide(c, service.DecisionApprove)
}

// RejectTransaction godoc
// @Summary Reject a pending transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body DecisionRequest false "Rejection notes"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /cash/transactions/{id}/reject [post]
func (h *TransactionHandler) RejectTransaction(c echo.Context) error {
	return h.decide(c, service.DecisionReject)
}

func (h *TransactionHandler) decide(c echo.Context, decision service.Decision) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}
	approverID := middleware.GetEmployeeID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var transaction *domain.CashTransaction
	if decision == service.DecisionApprove {
		transaction, err = h.ledgerService.Approve(c.Request().Context(), storeID, id, approverID, req.Notes)
	} else {
		transaction, err = h.ledgerService.Reject(c.Request().Context(), storeID, id, approverID, req.Notes)
	}
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			return NewConflictError(c, "Transaction is not pending")
		}
		if errors.Is(err, domain.ErrNotesTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "notes", Message: "Notes must be 1000 characters or less"},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Str("decision", string(decision)).Msg("Failed to apply approval decision")
		return NewInternalError(c, "Failed to apply approval decision")
	}

	log.Info().
		Int32("store_id", storeID).
		Int32("transaction_id", id).
		Str("status", string(transaction.Status)).
		Str("approver_id", approverID.String()).
		Msg("Approval decision applied")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// mapTransactionValidationError translates domain validation errors to 400
// responses. Returns nil when err is not a validation error.
func mapTransactionValidationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be non-negative"},
		})
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense"},
		})
	case errors.Is(err, domain.ErrDescriptionRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes must be 1000 characters or less"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		})
	case errors.Is(err, domain.ErrCategoryInactive):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category is inactive"},
		})
	case errors.Is(err, domain.ErrCategoryTypeMismatch):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category type does not match transaction type"},
		})
	}
	return nil
}

func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

func parseMonthYear(c echo.Context) (int, int, error) {
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, errors.New("year must be a four-digit year")
	}
	return month, year, nil
}

func toTransactionResponse(t *domain.CashTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		StoreID:         t.StoreID,
		EmployeeID:      t.EmployeeID.String(),
		CategoryID:      t.CategoryID,
		Type:            string(t.Type),
		Amount:          t.Amount.String(),
		TransactionDate: t.TransactionDate.Format("2006-01-02"),
		Description:     t.Description,
		Notes:           t.Notes,
		ReceiptRef:      t.ReceiptRef,
		ReferenceNumber: t.ReferenceNumber,
		Status:          string(t.Status),
		ApprovalNotes:   t.ApprovalNotes,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
	if t.ApproverID != nil {
		s := t.ApproverID.String()
		resp.ApproverID = &s
	}
	if t.ApprovedAt != nil {
		s := t.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	return resp
}
