package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/setorin/setorin-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, store_id, employee_id, category_id, transaction_type, amount,
	transaction_date, description, notes, receipt_ref, reference_number, status,
	approver_id, approved_at, approval_notes, created_at, updated_at`

// Create inserts a new cash transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.CashTransaction) (*domain.CashTransaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.db.conn(ctx).QueryRow(ctx, `
		INSERT INTO cash_transactions (
			store_id, employee_id, category_id, transaction_type, amount,
			transaction_date, description, notes, reference_number, status,
			approver_id, approved_at, approval_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+transactionColumns,
		transaction.StoreID,
		transaction.EmployeeID,
		transaction.CategoryID,
		string(transaction.Type),
		amount,
		transaction.TransactionDate,
		transaction.Description,
		transaction.Notes,
		transaction.ReferenceNumber,
		string(transaction.Status),
		transaction.ApproverID,
		transaction.ApprovedAt,
		transaction.ApprovalNotes,
	)
	return scanTransaction(row)
}

// GetByID retrieves a transaction by id within a store
func (r *TransactionRepository) GetByID(ctx context.Context, storeID int32, id int32) (*domain.CashTransaction, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM cash_transactions
		WHERE store_id = $1 AND id = $2`,
		storeID, id,
	)
	return scanTransaction(row)
}

// Update rewrites the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, storeID int32, id int32, data *domain.UpdateTransactionData) (*domain.CashTransaction, error) {
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.db.conn(ctx).QueryRow(ctx, `
		UPDATE cash_transactions
		SET category_id = $3,
		    transaction_type = $4,
		    amount = $5,
		    transaction_date = $6,
		    description = $7,
		    notes = $8,
		    updated_at = now()
		WHERE store_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		storeID, id,
		data.CategoryID,
		string(data.Type),
		amount,
		data.TransactionDate,
		data.Description,
		data.Notes,
	)
	return scanTransaction(row)
}

// UpdateStatus records an approval decision on a transaction
func (r *TransactionRepository) UpdateStatus(ctx context.Context, storeID int32, id int32, status domain.TransactionStatus, approverID uuid.UUID, approvedAt time.Time, notes *string) (*domain.CashTransaction, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		UPDATE cash_transactions
		SET status = $3,
		    approver_id = $4,
		    approved_at = $5,
		    approval_notes = $6,
		    updated_at = now()
		WHERE store_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		storeID, id,
		string(status),
		approverID,
		approvedAt,
		notes,
	)
	return scanTransaction(row)
}

// UpdateReceiptRef attaches or detaches the stored receipt object path
func (r *TransactionRepository) UpdateReceiptRef(ctx context.Context, storeID int32, id int32, receiptRef *string) (*domain.CashTransaction, error) {
	row := r.db.conn(ctx).QueryRow(ctx, `
		UPDATE cash_transactions
		SET receipt_ref = $3,
		    updated_at = now()
		WHERE store_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		storeID, id, receiptRef,
	)
	return scanTransaction(row)
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, storeID int32, id int32) error {
	tag, err := r.db.conn(ctx).Exec(ctx, `
		DELETE FROM cash_transactions
		WHERE store_id = $1 AND id = $2`,
		storeID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListByMonth retrieves a paginated month of transactions, newest first
func (r *TransactionRepository) ListByMonth(ctx context.Context, storeID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	conn := r.db.conn(ctx)

	var status *string
	if filters.Status != nil {
		s := string(*filters.Status)
		status = &s
	}

	var total int64
	err := conn.QueryRow(ctx, `
		SELECT count(*)
		FROM cash_transactions
		WHERE store_id = $1
		  AND EXTRACT(MONTH FROM transaction_date) = $2
		  AND EXTRACT(YEAR FROM transaction_date) = $3
		  AND ($4::text IS NULL OR status = $4)`,
		storeID, filters.Month, filters.Year, status,
	).Scan(&total)
	if err != nil {
		return nil, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	rows, err := conn.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM cash_transactions
		WHERE store_id = $1
		  AND EXTRACT(MONTH FROM transaction_date) = $2
		  AND EXTRACT(YEAR FROM transaction_date) = $3
		  AND ($4::text IS NULL OR status = $4)
		ORDER BY transaction_date DESC, id DESC
		LIMIT $5 OFFSET $6`,
		storeID, filters.Month, filters.Year, status, filters.PageSize, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.CashTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// SumApprovedByDate sums approved income and expense for a single date
func (r *TransactionRepository) SumApprovedByDate(ctx context.Context, storeID int32, date time.Time) (domain.DayTotals, error) {
	var income, expense pgtype.Numeric
	err := r.db.conn(ctx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)
		FROM cash_transactions
		WHERE store_id = $1 AND transaction_date = $2 AND status = 'approved'`,
		storeID, date,
	).Scan(&income, &expense)
	if err != nil {
		return domain.DayTotals{}, err
	}
	return domain.DayTotals{
		Income:  pgNumericToDecimal(income),
		Expense: pgNumericToDecimal(expense),
	}, nil
}

// SummarizeByCategory aggregates approved transactions per category for a month
func (r *TransactionRepository) SummarizeByCategory(ctx context.Context, storeID int32, month, year int, transactionType domain.TransactionType) ([]*domain.CategorySummary, error) {
	rows, err := r.db.conn(ctx).Query(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(t.amount), 0), count(t.id)
		FROM cash_transactions t
		JOIN cash_categories c ON c.id = t.category_id
		WHERE t.store_id = $1
		  AND EXTRACT(MONTH FROM t.transaction_date) = $2
		  AND EXTRACT(YEAR FROM t.transaction_date) = $3
		  AND t.transaction_type = $4
		  AND t.status = 'approved'
		GROUP BY c.id, c.name
		ORDER BY SUM(t.amount) DESC`,
		storeID, month, year, string(transactionType),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*domain.CategorySummary{}
	for rows.Next() {
		var s domain.CategorySummary
		var total pgtype.Numeric
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &total, &s.Count); err != nil {
			return nil, err
		}
		s.Total = pgNumericToDecimal(total)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// MonthlyTotals aggregates approved income/expense per month of a year
func (r *TransactionRepository) MonthlyTotals(ctx context.Context, storeID int32, year int) ([]*domain.MonthlyTotals, error) {
	rows, err := r.db.conn(ctx).Query(ctx, `
		SELECT
			EXTRACT(MONTH FROM transaction_date)::int,
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'expense'), 0)
		FROM cash_transactions
		WHERE store_id = $1
		  AND EXTRACT(YEAR FROM transaction_date) = $2
		  AND status = 'approved'
		GROUP BY 1
		ORDER BY 1`,
		storeID, year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []*domain.MonthlyTotals{}
	for rows.Next() {
		m := &domain.MonthlyTotals{Year: year}
		var income, expense pgtype.Numeric
		if err := rows.Scan(&m.Month, &income, &expense); err != nil {
			return nil, err
		}
		m.TotalIncome = pgNumericToDecimal(income)
		m.TotalExpense = pgNumericToDecimal(expense)
		totals = append(totals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

func scanTransaction(row pgx.Row) (*domain.CashTransaction, error) {
	var t domain.CashTransaction
	var txType, status string
	var amount pgtype.Numeric
	err := row.Scan(
		&t.ID,
		&t.StoreID,
		&t.EmployeeID,
		&t.CategoryID,
		&txType,
		&amount,
		&t.TransactionDate,
		&t.Description,
		&t.Notes,
		&t.ReceiptRef,
		&t.ReferenceNumber,
		&status,
		&t.ApproverID,
		&t.ApprovedAt,
		&t.ApprovalNotes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.Type = domain.TransactionType(txType)
	t.Status = domain.TransactionStatus(status)
	t.Amount = pgNumericToDecimal(amount)
	return &t, nil
}
