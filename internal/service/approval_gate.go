package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Decision is an approver's verdict on a pending transaction.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ApprovalGate decides the initial status of new transactions and guards the
// status state machine: pending -> approved and pending -> rejected, both
// terminal.
type ApprovalGate struct {
	threshold decimal.Decimal
}

// NewApprovalGate creates an ApprovalGate with the configured auto-approval
// threshold.
func NewApprovalGate(threshold decimal.Decimal) *ApprovalGate {
	return &ApprovalGate{threshold: threshold}
}

// DecideInitialStatus returns pending when amount exceeds the threshold,
// approved otherwise. Evaluated once at creation time, never on edit.
func (g *ApprovalGate) DecideInitialStatus(amount decimal.Decimal) domain.TransactionStatus {
	if amount.GreaterThan(g.threshold) {
		return domain.StatusPending
	}
	return domain.StatusApproved
}

// ApplyDecision validates the transition and stamps the approval fields on the
// transaction. Transactions that are no longer pending cannot be decided
// again.
func (g *ApprovalGate) ApplyDecision(transaction *domain.CashTransaction, decision Decision, approverID uuid.UUID, notes *string) (domain.TransactionStatus, error) {
	if transaction.Status != domain.StatusPending {
		return transaction.Status, domain.ErrInvalidTransition
	}

	var status domain.TransactionStatus
	switch decision {
	case DecisionApprove:
		status = domain.StatusApproved
	case DecisionReject:
		status = domain.StatusRejected
	default:
		return transaction.Status, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	transaction.Status = status
	transaction.ApproverID = &approverID
	transaction.ApprovedAt = &now
	transaction.ApprovalNotes = notes

	return status, nil
}
