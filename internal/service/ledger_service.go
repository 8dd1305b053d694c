package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService orchestrates the cash ledger: every mutation goes through
// here, and every mutation that changes the set of approved transactions on a
// date triggers a balance recalculation for that date inside the same
// database transaction.
type LedgerService struct {
	txRunner        domain.TxRunner
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	gate            *ApprovalGate
	recalculator    *BalanceRecalculator
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txRunner domain.TxRunner, transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, gate *ApprovalGate, recalculator *BalanceRecalculator) *LedgerService {
	return &LedgerService{
		txRunner:        txRunner,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		gate:            gate,
		recalculator:    recalculator,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	CategoryID      int32
	Type            domain.TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	Notes           *string
}

// CreateTransaction validates the input, decides the initial status through
// the approval gate, persists the transaction, and recalculates the date's
// balance when the transaction lands approved. Pending transactions leave the
// balances untouched until approval.
func (s *LedgerService) CreateTransaction(ctx context.Context, storeID int32, employeeID uuid.UUID, input CreateTransactionInput) (*domain.CashTransaction, error) {
	description, notes, err := s.validateInput(ctx, input.CategoryID, input.Type, input.Amount, input.Description, input.Notes)
	if err != nil {
		return nil, err
	}

	date := normalizeDate(input.TransactionDate)
	status := s.gate.DecideInitialStatus(input.Amount)

	var created *domain.CashTransaction
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		created, txErr = s.transactionRepo.Create(ctx, &domain.CashTransaction{
			StoreID:         storeID,
			EmployeeID:      employeeID,
			CategoryID:      input.CategoryID,
			Type:            input.Type,
			Amount:          input.Amount,
			TransactionDate: date,
			Description:     description,
			Notes:           notes,
			ReferenceNumber: newReferenceNumber(date),
			Status:          status,
		})
		if txErr != nil {
			return txErr
		}
		if status == domain.StatusApproved {
			return s.recalculator.Recalculate(ctx, storeID, date)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTransaction edits the mutable fields of a transaction. Editing does
// not reset the approval status. When the transaction is approved, the
// affected dates are recalculated — the old date first when the edit moved
// the transaction to a different date.
func (s *LedgerService) UpdateTransaction(ctx context.Context, storeID int32, id int32, input CreateTransactionInput) (*domain.CashTransaction, error) {
	description, notes, err := s.validateInput(ctx, input.CategoryID, input.Type, input.Amount, input.Description, input.Notes)
	if err != nil {
		return nil, err
	}

	newDate := normalizeDate(input.TransactionDate)

	var updated *domain.CashTransaction
	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		existing, txErr := s.transactionRepo.GetByID(ctx, storeID, id)
		if txErr != nil {
			return txErr
		}
		oldDate := normalizeDate(existing.TransactionDate)

		updated, txErr = s.transactionRepo.Update(ctx, storeID, id, &domain.UpdateTransactionData{
			CategoryID:      input.CategoryID,
			Type:            input.Type,
			Amount:          input.Amount,
			TransactionDate: newDate,
			Description:     description,
			Notes:           notes,
		})
		if txErr != nil {
			return txErr
		}

		if existing.Status != domain.StatusApproved {
			return nil
		}
		if !oldDate.Equal(newDate) {
			if txErr = s.recalculator.Recalculate(ctx, storeID, oldDate); txErr != nil {
				return txErr
			}
		}
		return s.recalculator.Recalculate(ctx, storeID, newDate)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction hard-deletes a transaction and, when it was approved,
// recalculates its date.
func (s *LedgerService) DeleteTransaction(ctx context.Context, storeID int32, id int32) error {
	return s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.transactionRepo.GetByID(ctx, storeID, id)
		if err != nil {
			return err
		}
		date := normalizeDate(existing.TransactionDate)
		wasApproved := existing.Status == domain.StatusApproved

		if err := s.transactionRepo.Delete(ctx, storeID, id); err != nil {
			return err
		}
		if wasApproved {
			return s.recalculator.Recalculate(ctx, storeID, date)
		}
		return nil
	})
}

// Approve transitions a pending transaction to approved and recalculates its
// date.
func (s *LedgerService) Approve(ctx context.Context, storeID int32, id int32, approverID uuid.UUID, notes *string) (*domain.CashTransaction, error) {
	return s.decide(ctx, storeID, id, DecisionApprove, approverID, notes)
}

// Reject transitions a pending transaction to rejected. Rejected transactions
// never appear in any balance computation.
func (s *LedgerService) Reject(ctx context.Context, storeID int32, id int32, approverID uuid.UUID, notes *string) (*domain.CashTransaction, error) {
	return s.decide(ctx, storeID, id, DecisionReject, approverID, notes)
}

func (s *LedgerService) decide(ctx context.Context, storeID int32, id int32, decision Decision, approverID uuid.UUID, notes *string) (*domain.CashTransaction, error) {
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		if trimmed == "" {
			notes = nil
		} else {
			if len(trimmed) > domain.MaxNotesLength {
				return nil, domain.ErrNotesTooLong
			}
			notes = &trimmed
		}
	}

	var updated *domain.CashTransaction
	err := s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		existing, txErr := s.transactionRepo.GetByID(ctx, storeID, id)
		if txErr != nil {
			return txErr
		}
		wasApproved := existing.Status == domain.StatusApproved

		status, txErr := s.gate.ApplyDecision(existing, decision, approverID, notes)
		if txErr != nil {
			return txErr
		}

		updated, txErr = s.transactionRepo.UpdateStatus(ctx, storeID, id, status, approverID, *existing.ApprovedAt, notes)
		if txErr != nil {
			return txErr
		}

		// Recalculate when the date's approved set changed: the transaction
		// either entered it or (status moved away from approved) left it.
		if status == domain.StatusApproved || wasApproved {
			return s.recalculator.Recalculate(ctx, storeID, normalizeDate(existing.TransactionDate))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetTransaction retrieves a transaction by ID within a store
func (s *LedgerService) GetTransaction(ctx context.Context, storeID int32, id int32) (*domain.CashTransaction, error) {
	return s.transactionRepo.GetByID(ctx, storeID, id)
}

// AttachReceipt stores an opaque receipt reference on the transaction. The
// underlying file lives with the storage collaborator; attaching never
// affects balances.
func (s *LedgerService) AttachReceipt(ctx context.Context, storeID int32, id int32, receiptRef string) (*domain.CashTransaction, error) {
	return s.transactionRepo.UpdateReceiptRef(ctx, storeID, id, &receiptRef)
}

// DetachReceipt clears the receipt reference and returns the previous one so
// the caller can delete the underlying file.
func (s *LedgerService) DetachReceipt(ctx context.Context, storeID int32, id int32) (string, error) {
	existing, err := s.transactionRepo.GetByID(ctx, storeID, id)
	if err != nil {
		return "", err
	}
	if existing.ReceiptRef == nil {
		return "", nil
	}
	previous := *existing.ReceiptRef
	if _, err := s.transactionRepo.UpdateReceiptRef(ctx, storeID, id, nil); err != nil {
		return "", err
	}
	return previous, nil
}

// validateInput checks the shared create/update rules and returns the trimmed
// description and notes.
func (s *LedgerService) validateInput(ctx context.Context, categoryID int32, transactionType domain.TransactionType, amount decimal.Decimal, description string, notes *string) (string, *string, error) {
	if amount.IsNegative() {
		return "", nil, domain.ErrInvalidAmount
	}
	if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
		return "", nil, domain.ErrInvalidTransactionType
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil, domain.ErrDescriptionRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return "", nil, domain.ErrDescriptionTooLong
	}

	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		if trimmed == "" {
			notes = nil
		} else {
			if len(trimmed) > domain.MaxNotesLength {
				return "", nil, domain.ErrNotesTooLong
			}
			notes = &trimmed
		}
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return "", nil, err
	}
	if !category.IsActive {
		return "", nil, domain.ErrCategoryInactive
	}
	if category.Type != transactionType {
		return "", nil, domain.ErrCategoryTypeMismatch
	}

	return description, notes, nil
}

// newReferenceNumber builds a store-local reference like CSH-20260115-9F2C41B8.
// Uniqueness is enforced by the per-store unique index; the uuid-derived
// suffix makes collisions practically impossible.
func newReferenceNumber(date time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("CSH-%s-%s", date.Format("20060102"), suffix)
}
