package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/setorin/setorin-backend/internal/domain"
)

// BalanceRepository implements domain.BalanceRepository using PostgreSQL
type BalanceRepository struct {
	db *DB
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository(db *DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

const balanceColumns = `id, store_id, balance_date, opening_balance, total_income,
	total_expense, closing_balance, created_at, updated_at`

// GetByDate retrieves the materialized balance row of a single date
func (r *BalanceRepository) GetByDate(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM cash_balances
		WHERE store_id = $1 AND balance_date = $2`,
		storeID, date,
	)
	return scanBalance(row)
}

// GetLatestBefore retrieves the most recent row strictly before date
func (r *BalanceRepository) GetLatestBefore(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM cash_balances
		WHERE store_id = $1 AND balance_date < $2
		ORDER BY balance_date DESC
		LIMIT 1`,
		storeID, date,
	)
	return scanBalance(row)
}

// GetNextAfter retrieves the closest row strictly after date
func (r *BalanceRepository) GetNextAfter(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM cash_balances
		WHERE store_id = $1 AND balance_date > $2
		ORDER BY balance_date ASC
		LIMIT 1`,
		storeID, date,
	)
	return scanBalance(row)
}

// GetLatest retrieves the newest materialized row of a store
func (r *BalanceRepository) GetLatest(ctx context.Context, storeID int32) (*domain.CashBalance, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM cash_balances
		WHERE store_id = $1
		ORDER BY balance_date DESC
		LIMIT 1`,
		storeID,
	)
	return scanBalance(row)
}

// ListByMonth retrieves all materialized rows of a month, oldest first
func (r *BalanceRepository) ListByMonth(ctx context.Context, storeID int32, month, year int) ([]*domain.CashBalance, error) {
	rows, err := r.db.conn(ctx).Query(ctx, `
		SELECT `+balanceColumns+`
		FROM cash_balances
		WHERE store_id = $1
		  AND EXTRACT(MONTH FROM balance_date) = $2
		  AND EXTRACT(YEAR FROM balance_date) = $3
		ORDER BY balance_date ASC`,
		storeID, month, year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []*domain.CashBalance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return balances, nil
}

// Upsert inserts or overwrites the row of (store_id, balance_date)
func (r *BalanceRepository) Upsert(ctx context.Context, balance *domain.CashBalance) (*domain.CashBalance, error) {
	opening, err := decimalToPgNumeric(balance.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid opening balance: %w", err)
	}
	income, err := decimalToPgNumeric(balance.TotalIncome)
	if err != nil {
		return nil, fmt.Errorf("invalid total income: %w", err)
	}
	expense, err := decimalToPgNumeric(balance.TotalExpense)
	if err != nil {
		return nil, fmt.Errorf("invalid total expense: %w", err)
	}
	closing, err := decimalToPgNumeric(balance.ClosingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid closing balance: %w", err)
	}

	row := r.db.conn(ctx).QueryRow(ctx, `
		INSERT INTO cash_balances (
			store_id, balance_date, opening_balance, total_income,
			total_expense, closing_balance
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (store_id, balance_date) DO UPDATE
		SET opening_balance = EXCLUDED.opening_balance,
		    total_income = EXCLUDED.total_income,
		    total_expense = EXCLUDED.total_expense,
		    closing_balance = EXCLUDED.closing_balance,
		    updated_at = now()
		RETURNING `+balanceColumns,
		balance.StoreID,
		balance.BalanceDate,
		opening,
		income,
		expense,
		closing,
	)
	return scanBalance(row)
}

// LockForward locks every materialized row from date onward in ascending
// date order, so concurrent cascades on the same store serialize instead
// of deadlocking.
func (r *BalanceRepository) LockForward(ctx context.Context, storeID int32, date time.Time) error {
	rows, err := r.db.conn(ctx).Query(ctx, `
		SELECT id
		FROM cash_balances
		WHERE store_id = $1 AND balance_date >= $2
		ORDER BY balance_date ASC
		FOR UPDATE`,
		storeID, date,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanBalance(row pgx.Row) (*domain.CashBalance, error) {
	var b domain.CashBalance
	var opening, income, expense, closing pgtype.Numeric
	err := row.Scan(
		&b.ID,
		&b.StoreID,
		&b.BalanceDate,
		&opening,
		&income,
		&expense,
		&closing,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err
	}
	b.OpeningBalance = pgNumericToDecimal(opening)
	b.TotalIncome = pgNumericToDecimal(income)
	b.TotalExpense = pgNumericToDecimal(expense)
	b.ClosingBalance = pgNumericToDecimal(closing)
	return &b, nil
}
