package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BalanceRecalculator keeps CashBalance rows consistent with the set of
// approved transactions. Balances are materialized lazily: a row exists only
// for dates a recalculation has touched, so a back-dated change only needs to
// walk forward through rows that already exist.
//
// Only LedgerService calls Recalculate, always inside the same database
// transaction as the mutation that triggered it.
type BalanceRecalculator struct {
	transactionRepo domain.TransactionRepository
	balanceRepo     domain.BalanceRepository
}

// NewBalanceRecalculator creates a new BalanceRecalculator
func NewBalanceRecalculator(transactionRepo domain.TransactionRepository, balanceRepo domain.BalanceRepository) *BalanceRecalculator {
	return &BalanceRecalculator{
		transactionRepo: transactionRepo,
		balanceRepo:     balanceRepo,
	}
}

// Recalculate recomputes the balance row for (storeID, date) and cascades
// forward through every later materialized row until the chain reaches a fixed
// point: a row whose stored opening balance already equals the closing balance
// just computed for the previous day. Rows before date are never touched.
func (r *BalanceRecalculator) Recalculate(ctx context.Context, storeID int32, date time.Time) error {
	date = normalizeDate(date)

	// Row locks over the affected range, ascending date order. Two cascades
	// on the same store can never acquire them in opposite orders.
	if err := r.balanceRepo.LockForward(ctx, storeID, date); err != nil {
		return fmt.Errorf("lock balances from %s: %w", date.Format("2006-01-02"), err)
	}

	for {
		closing, err := r.recomputeDay(ctx, storeID, date)
		if err != nil {
			return err
		}

		next, err := r.balanceRepo.GetNextAfter(ctx, storeID, date)
		if err != nil {
			if errors.Is(err, domain.ErrBalanceNotFound) {
				return nil
			}
			return err
		}

		// Fixed point: the next row already chains off the closing balance
		// we just wrote, so nothing after it can be stale either.
		if next.OpeningBalance.Equal(closing) {
			return nil
		}

		date = normalizeDate(next.BalanceDate)
	}
}

// recomputeDay recomputes and upserts a single balance row, returning its
// closing balance.
func (r *BalanceRecalculator) recomputeDay(ctx context.Context, storeID int32, date time.Time) (decimal.Decimal, error) {
	opening := decimal.Zero
	prev, err := r.balanceRepo.GetLatestBefore(ctx, storeID, date)
	if err == nil {
		opening = prev.ClosingBalance
	} else if !errors.Is(err, domain.ErrBalanceNotFound) {
		return decimal.Zero, err
	}

	totals, err := r.transactionRepo.SumApprovedByDate(ctx, storeID, date)
	if err != nil {
		return decimal.Zero, err
	}

	closing := opening.Add(totals.Income).Sub(totals.Expense)

	stored, err := r.balanceRepo.Upsert(ctx, &domain.CashBalance{
		StoreID:        storeID,
		BalanceDate:    date,
		OpeningBalance: opening,
		TotalIncome:    totals.Income,
		TotalExpense:   totals.Expense,
		ClosingBalance: closing,
	})
	if err != nil {
		return decimal.Zero, err
	}

	if !stored.Consistent() {
		log.Error().
			Int32("store_id", storeID).
			Str("balance_date", date.Format("2006-01-02")).
			Str("opening", stored.OpeningBalance.String()).
			Str("income", stored.TotalIncome.String()).
			Str("expense", stored.TotalExpense.String()).
			Str("closing", stored.ClosingBalance.String()).
			Msg("Balance row violates closing-balance invariant")
		return decimal.Zero, fmt.Errorf("store %d, date %s: %w", storeID, date.Format("2006-01-02"), domain.ErrConsistency)
	}

	return closing, nil
}

// normalizeDate strips the time component; balances are keyed by calendar
// date in UTC.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
