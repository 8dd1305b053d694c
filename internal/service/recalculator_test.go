package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/setorin/setorin-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecalculator() (*BalanceRecalculator, *testutil.MockTransactionRepository, *testutil.MockBalanceRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	balanceRepo := testutil.NewMockBalanceRepository()
	return NewBalanceRecalculator(transactionRepo, balanceRepo), transactionRepo, balanceRepo
}

func day(dayOfMonth int) time.Time {
	return time.Date(2026, time.March, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func addApproved(repo *testutil.MockTransactionRepository, storeID int32, date time.Time, txType domain.TransactionType, amount int64) {
	repo.AddTransaction(&domain.CashTransaction{
		StoreID:         storeID,
		EmployeeID:      uuid.New(),
		CategoryID:      1,
		Type:            txType,
		Amount:          decimal.NewFromInt(amount),
		TransactionDate: date,
		Description:     "test",
		Status:          domain.StatusApproved,
	})
}

func TestRecalculate_FirstRowOpensAtZero(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)

	addApproved(transactionRepo, storeID, day(1), domain.TransactionTypeIncome, 2000000)

	err := recalc.Recalculate(context.Background(), storeID, day(1))
	require.NoError(t, err)

	balance, err := balanceRepo.GetByDate(context.Background(), storeID, day(1))
	require.NoError(t, err)
	assert.True(t, balance.OpeningBalance.IsZero(), "opening = %s", balance.OpeningBalance)
	assert.True(t, balance.TotalIncome.Equal(decimal.NewFromInt(2000000)))
	assert.True(t, balance.TotalExpense.IsZero())
	assert.True(t, balance.ClosingBalance.Equal(decimal.NewFromInt(2000000)))
}

func TestRecalculate_OpeningChainsFromPreviousDay(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)

	addApproved(transactionRepo, storeID, day(1), domain.TransactionTypeIncome, 2000000)
	require.NoError(t, recalc.Recalculate(context.Background(), storeID, day(1)))

	addApproved(transactionRepo, storeID, day(2), domain.TransactionTypeExpense, 500000)
	require.NoError(t, recalc.Recalculate(context.Background(), storeID, day(2)))

	balance, err := balanceRepo.GetByDate(context.Background(), storeID, day(2))
	require.NoError(t, err)
	assert.True(t, balance.OpeningBalance.Equal(decimal.NewFromInt(2000000)))
	assert.True(t, balance.ClosingBalance.Equal(decimal.NewFromInt(1500000)))
}

func TestRecalculate_GapDaysAreSkipped(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)

	// No activity between day 1 and day 10; only two rows materialize and
	// day 10 opens at day 1's closing.
	addApproved(transactionRepo, storeID, day(1), domain.TransactionTypeIncome, 1000)
	require.NoError(t, recalc.Recalculate(context.Background(), storeID, day(1)))

	addApproved(transactionRepo, storeID, day(10), domain.TransactionTypeExpense, 400)
	require.NoError(t, recalc.Recalculate(context.Background(), storeID, day(10)))

	_, err := balanceRepo.GetByDate(context.Background(), storeID, day(5))
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	balance, err := balanceRepo.GetByDate(context.Background(), storeID, day(10))
	require.NoError(t, err)
	assert.True(t, balance.OpeningBalance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, balance.ClosingBalance.Equal(decimal.NewFromInt(600)))
}

func TestRecalculate_BackdatedInsertCascadesForward(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)
	ctx := context.Background()

	// Materialize days 1..10 (every other day) with 100 income each.
	for d := 1; d <= 10; d++ {
		addApproved(transactionRepo, storeID, day(d), domain.TransactionTypeIncome, 100)
		require.NoError(t, recalc.Recalculate(ctx, storeID, day(d)))
	}

	// Back-date 50 income onto day 3.
	addApproved(transactionRepo, storeID, day(3), domain.TransactionTypeIncome, 50)
	require.NoError(t, recalc.Recalculate(ctx, storeID, day(3)))

	// Days 1 and 2 are untouched.
	for d := 1; d <= 2; d++ {
		balance, err := balanceRepo.GetByDate(ctx, storeID, day(d))
		require.NoError(t, err)
		assert.True(t, balance.ClosingBalance.Equal(decimal.NewFromInt(int64(d)*100)), "day %d closing = %s", d, balance.ClosingBalance)
	}

	// Every row from day 3 onward shifts by +50.
	for d := 3; d <= 10; d++ {
		balance, err := balanceRepo.GetByDate(ctx, storeID, day(d))
		require.NoError(t, err)
		want := decimal.NewFromInt(int64(d)*100 + 50)
		assert.True(t, balance.ClosingBalance.Equal(want), "day %d closing = %s, want %s", d, balance.ClosingBalance, want)
		assert.True(t, balance.Consistent(), "day %d violates invariant", d)
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)
	ctx := context.Background()

	addApproved(transactionRepo, storeID, day(1), domain.TransactionTypeIncome, 750)
	require.NoError(t, recalc.Recalculate(ctx, storeID, day(1)))

	first, err := balanceRepo.GetByDate(ctx, storeID, day(1))
	require.NoError(t, err)

	require.NoError(t, recalc.Recalculate(ctx, storeID, day(1)))

	second, err := balanceRepo.GetByDate(ctx, storeID, day(1))
	require.NoError(t, err)
	assert.True(t, second.OpeningBalance.Equal(first.OpeningBalance))
	assert.True(t, second.TotalIncome.Equal(first.TotalIncome))
	assert.True(t, second.TotalExpense.Equal(first.TotalExpense))
	assert.True(t, second.ClosingBalance.Equal(first.ClosingBalance))
}

func TestRecalculate_NoApprovedTransactionsWritesZeroRow(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)
	ctx := context.Background()

	// A pending transaction contributes nothing.
	transactionRepo.AddTransaction(&domain.CashTransaction{
		StoreID:         storeID,
		EmployeeID:      uuid.New(),
		CategoryID:      1,
		Type:            domain.TransactionTypeIncome,
		Amount:          decimal.NewFromInt(5000),
		TransactionDate: day(1),
		Description:     "big one",
		Status:          domain.StatusPending,
	})

	require.NoError(t, recalc.Recalculate(ctx, storeID, day(1)))

	balance, err := balanceRepo.GetByDate(ctx, storeID, day(1))
	require.NoError(t, err)
	assert.True(t, balance.TotalIncome.IsZero())
	assert.True(t, balance.ClosingBalance.IsZero())
}

func TestRecalculate_LocksForwardFromStartDate(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	storeID := int32(1)

	addApproved(transactionRepo, storeID, day(4), domain.TransactionTypeIncome, 10)
	require.NoError(t, recalc.Recalculate(context.Background(), storeID, day(4)))

	require.Len(t, balanceRepo.LockedFrom, 1)
	assert.True(t, balanceRepo.LockedFrom[0].Equal(day(4)))
}

func TestRecalculate_StoresAreIsolated(t *testing.T) {
	recalc, transactionRepo, balanceRepo := setupRecalculator()
	ctx := context.Background()

	addApproved(transactionRepo, 1, day(1), domain.TransactionTypeIncome, 100)
	addApproved(transactionRepo, 2, day(1), domain.TransactionTypeIncome, 900)

	require.NoError(t, recalc.Recalculate(ctx, 1, day(1)))

	balance, err := balanceRepo.GetByDate(ctx, 1, day(1))
	require.NoError(t, err)
	assert.True(t, balance.ClosingBalance.Equal(decimal.NewFromInt(100)))

	_, err = balanceRepo.GetByDate(ctx, 2, day(1))
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}
