package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestDecideInitialStatus_BelowThreshold(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	status := gate.DecideInitialStatus(decimal.NewFromInt(500000))
	if status != domain.StatusApproved {
		t.Errorf("Expected status approved, got %s", status)
	}
}

func TestDecideInitialStatus_AtThreshold(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	// The boundary amount itself auto-approves; only amounts strictly above
	// the threshold go to review.
	status := gate.DecideInitialStatus(decimal.NewFromInt(1000000))
	if status != domain.StatusApproved {
		t.Errorf("Expected status approved, got %s", status)
	}
}

func TestDecideInitialStatus_AboveThreshold(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	status := gate.DecideInitialStatus(decimal.NewFromInt(1500000))
	if status != domain.StatusPending {
		t.Errorf("Expected status pending, got %s", status)
	}
}

func TestDecideInitialStatus_Zero(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	status := gate.DecideInitialStatus(decimal.Zero)
	if status != domain.StatusApproved {
		t.Errorf("Expected status approved, got %s", status)
	}
}

func TestApplyDecision_ApprovePending(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))
	approverID := uuid.New()
	notes := "Looks fine"

	transaction := &domain.CashTransaction{
		ID:     1,
		Status: domain.StatusPending,
	}

	status, err := gate.ApplyDecision(transaction, DecisionApprove, approverID, &notes)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != domain.StatusApproved {
		t.Errorf("Expected status approved, got %s", status)
	}
	if transaction.ApproverID == nil || *transaction.ApproverID != approverID {
		t.Error("Expected approver ID to be stamped")
	}
	if transaction.ApprovedAt == nil {
		t.Error("Expected approval time to be stamped")
	}
	if transaction.ApprovalNotes == nil || *transaction.ApprovalNotes != notes {
		t.Error("Expected approval notes to be stamped")
	}
}

func TestApplyDecision_RejectPending(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	transaction := &domain.CashTransaction{
		ID:     1,
		Status: domain.StatusPending,
	}

	status, err := gate.ApplyDecision(transaction, DecisionReject, uuid.New(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != domain.StatusRejected {
		t.Errorf("Expected status rejected, got %s", status)
	}
}

func TestApplyDecision_ApprovedIsTerminal(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	transaction := &domain.CashTransaction{
		ID:     1,
		Status: domain.StatusApproved,
	}

	_, err := gate.ApplyDecision(transaction, DecisionReject, uuid.New(), nil)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
	if transaction.Status != domain.StatusApproved {
		t.Errorf("Expected status to stay approved, got %s", transaction.Status)
	}
}

func TestApplyDecision_RejectedIsTerminal(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	transaction := &domain.CashTransaction{
		ID:     1,
		Status: domain.StatusRejected,
	}

	_, err := gate.ApplyDecision(transaction, DecisionApprove, uuid.New(), nil)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyDecision_UnknownDecision(t *testing.T) {
	gate := NewApprovalGate(decimal.NewFromInt(1000000))

	transaction := &domain.CashTransaction{
		ID:     1,
		Status: domain.StatusPending,
	}

	_, err := gate.ApplyDecision(transaction, Decision("escalate"), uuid.New(), nil)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}
