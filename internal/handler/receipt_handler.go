package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/middleware"
	"github.com/setorin/setorin-backend/internal/service"
)

// ReceiptHandler handles receipt photo HTTP requests
type ReceiptHandler struct {
	ledgerService  *service.LedgerService
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(ledgerService *service.LedgerService, receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		ledgerService:  ledgerService,
		receiptService: receiptService,
	}
}

// ReceiptURLResponse represents a presigned receipt URL
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

// UploadReceipt godoc
// @Summary Attach a receipt photo
// @Description Upload a receipt photo for a transaction, replacing any existing one
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param file formData file true "Receipt photo (JPEG or PNG, max 5MB)"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id}/receipt [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	existing, err := h.ledgerService.GetTransaction(c.Request().Context(), storeID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	// Snapshot the current reference now; after attach the row carries the
	// new object path
	var previousRef string
	if existing.ReceiptRef != nil {
		previousRef = *existing.ReceiptRef
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	objectPath, err := h.receiptService.Upload(c.Request().Context(), storeID, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrReceiptInvalidFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG"},
			})
		case errors.Is(err, service.ErrReceiptInvalidData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to upload receipt")
		return NewInternalError(c, "Failed to upload receipt")
	}

	transaction, err := h.ledgerService.AttachReceipt(c.Request().Context(), storeID, id, objectPath)
	if err != nil {
		// Don't leave the freshly uploaded object orphaned
		if delErr := h.receiptService.Delete(c.Request().Context(), objectPath); delErr != nil {
			log.Warn().Err(delErr).Str("object_path", objectPath).Msg("Failed to clean up orphaned receipt")
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	// Replace semantics: the previous photo is no longer referenced
	if previousRef != "" {
		if delErr := h.receiptService.Delete(c.Request().Context(), previousRef); delErr != nil {
			log.Warn().Err(delErr).Str("object_path", previousRef).Msg("Failed to delete replaced receipt")
		}
	}

	log.Info().Int32("store_id", storeID).Int32("transaction_id", id).Msg("Receipt attached")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// GetReceiptURL godoc
// @Summary Get a receipt download URL
// @Description Get a short-lived presigned URL for the transaction's receipt photo
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} ReceiptURLResponse
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id}/receipt [get]
func (h *ReceiptHandler) GetReceiptURL(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt downloads are disabled (storage not configured)")
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

	if transaction.ReceiptRef == nil {
		return NewNotFoundError(c, "Transaction has no receipt")
	}

	url, err := h.receiptService.PresignURL(c.Request().Context(), *transaction.ReceiptRef)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to presign receipt URL")
		return NewInternalError(c, "Failed to generate receipt URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}

// DeleteReceipt godoc
// @Summary Remove a receipt photo
// @Description Detach and delete the transaction's receipt photo
// @Tags receipts
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /cash/transactions/{id}/receipt [delete]
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt deletion is disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	objectPath, err := h.ledgerService.DetachReceipt(c.Request().Context(), storeID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("store_id", storeID).Int32("transaction_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	if objectPath != "" {
		if delErr := h.receiptService.Delete(c.Request().Context(), objectPath); delErr != nil {
			log.Warn().Err(delErr).Str("object_path", objectPath).Msg("Failed to delete receipt object")
		}
	}

	log.Info().Int32("store_id", storeID).Int32("transaction_id", id).Msg("Receipt removed")

	return c.NoContent(http.StatusNoContent)
}
