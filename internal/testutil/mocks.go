package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/setorin/setorin-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockTxRunner is a mock implementation of domain.TxRunner. It runs fn
// directly; the in-memory repositories have no transactions to join.
type MockTxRunner struct {
	Calls   int
	FailErr error
}

// RunInTx executes fn, or fails immediately when FailErr is set
func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.FailErr != nil {
		return m.FailErr
	}
	return fn(ctx)
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.CashTransaction
	// CategoryNames backs SummarizeByCategory (helper for tests)
	CategoryNames map[int32]string
	NextID        int32
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions:  make(map[int32]*domain.CashTransaction),
		CategoryNames: make(map[int32]string),
		NextID:        1,
	}
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(t *domain.CashTransaction) *domain.CashTransaction {
	if t.ID == 0 {
		t.ID = m.NextID
	}
	if t.ID >= m.NextID {
		m.NextID = t.ID + 1
	}
	m.Transactions[t.ID] = t
	return t
}

// Create inserts a new transaction
func (m *MockTransactionRepository) Create(ctx context.Context, t *domain.CashTransaction) (*domain.CashTransaction, error) {
	stored := *t
	stored.ID = m.NextID
	m.NextID++
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.Transactions[stored.ID] = &stored
	return &stored, nil
}

// get returns the stored row for in-place mutation
func (m *MockTransactionRepository) get(storeID int32, id int32) (*domain.CashTransaction, error) {
	t, ok := m.Transactions[id]
	if !ok || t.StoreID != storeID {
		return nil, domain.ErrTransactionNotFound
	}
	return t, nil
}

// GetByID retrieves a transaction by id within a store. Returns a copy, like a
// row scan; callers never alias the stored row.
func (m *MockTransactionRepository) GetByID(ctx context.Context, storeID int32, id int32) (*domain.CashTransaction, error) {
	t, err := m.get(storeID, id)
	if err != nil {
		return nil, err
	}
	snapshot := *t
	return &snapshot, nil
}

// Update rewrites the mutable fields of a transaction
func (m *MockTransactionRepository) Update(ctx context.Context, storeID int32, id int32, data *domain.UpdateTransactionData) (*domain.CashTransaction, error) {
	t, err := m.get(storeID, id)
	if err != nil {
		return nil, err
	}
	t.CategoryID = data.CategoryID
	t.Type = data.Type
	t.Amount = data.Amount
	t.TransactionDate = data.TransactionDate
	t.Description = data.Description
	t.Notes = data.Notes
	t.UpdatedAt = time.Now().UTC()
	updated := *t
	return &updated, nil
}

// UpdateStatus records an approval decision
func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, storeID int32, id int32, status domain.TransactionStatus, approverID uuid.UUID, approvedAt time.Time, notes *string) (*domain.CashTransaction, error) {
	t, err := m.get(storeID, id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.ApproverID = &approverID
	t.ApprovedAt = &approvedAt
	t.ApprovalNotes = notes
	t.UpdatedAt = time.Now().UTC()
	updated := *t
	return &updated, nil
}

// UpdateReceiptRef attaches or detaches the receipt object path
func (m *MockTransactionRepository) UpdateReceiptRef(ctx context.Context, storeID int32, id int32, receiptRef *string) (*domain.CashTransaction, error) {
	t, err := m.get(storeID, id)
	if err != nil {
		return nil, err
	}
	t.ReceiptRef = receiptRef
	t.UpdatedAt = time.Now().UTC()
	updated := *t
	return &updated, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, storeID int32, id int32) error {
	if _, err := m.get(storeID, id); err != nil {
		return err
	}
	delete(m.Transactions, id)
	return nil
}

// ListByMonth retrieves a paginated month of transactions, newest first
func (m *MockTransactionRepository) ListByMonth(ctx context.Context, storeID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	matched := []*domain.CashTransaction{}
	for _, t := range m.Transactions {
		if t.StoreID != storeID {
			continue
		}
		if int(t.TransactionDate.Month()) != filters.Month || t.TransactionDate.Year() != filters.Year {
			continue
		}
		if filters.Status != nil && t.Status != *filters.Status {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
			return matched[i].TransactionDate.After(matched[j].TransactionDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := int((filters.Page - 1) * filters.PageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(filters.PageSize)
	if end > len(matched) {
		end = len(matched)
	}

	totalPages := int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// SumApprovedByDate sums approved income and expense of a single date
func (m *MockTransactionRepository) SumApprovedByDate(ctx context.Context, storeID int32, date time.Time) (domain.DayTotals, error) {
	totals := domain.DayTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range m.Transactions {
		if t.StoreID != storeID || t.Status != domain.StatusApproved {
			continue
		}
		if !sameDay(t.TransactionDate, date) {
			continue
		}
		if t.Type == domain.TransactionTypeIncome {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals, nil
}

// SummarizeByCategory aggregates approved transactions per category
func (m *MockTransactionRepository) SummarizeByCategory(ctx context.Context, storeID int32, month, year int, transactionType domain.TransactionType) ([]*domain.CategorySummary, error) {
	byCategory := map[int32]*domain.CategorySummary{}
	for _, t := range m.Transactions {
		if t.StoreID != storeID || t.Status != domain.StatusApproved || t.Type != transactionType {
			continue
		}
		if int(t.TransactionDate.Month()) != month || t.TransactionDate.Year() != year {
			continue
		}
		s, ok := byCategory[t.CategoryID]
		if !ok {
			s = &domain.CategorySummary{
				CategoryID:   t.CategoryID,
				CategoryName: m.CategoryNames[t.CategoryID],
				Total:        decimal.Zero,
			}
			byCategory[t.CategoryID] = s
		}
		s.Total = s.Total.Add(t.Amount)
		s.Count++
	}

	summaries := make([]*domain.CategorySummary, 0, len(byCategory))
	for _, s := range byCategory {
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Total.GreaterThan(summaries[j].Total)
	})
	return summaries, nil
}

// MonthlyTotals aggregates approved income/expense per month of a year
func (m *MockTransactionRepository) MonthlyTotals(ctx context.Context, storeID int32, year int) ([]*domain.MonthlyTotals, error) {
	byMonth := map[int]*domain.MonthlyTotals{}
	for _, t := range m.Transactions {
		if t.StoreID != storeID || t.Status != domain.StatusApproved || t.TransactionDate.Year() != year {
			continue
		}
		month := int(t.TransactionDate.Month())
		mt, ok := byMonth[month]
		if !ok {
			mt = &domain.MonthlyTotals{
				Year:         year,
				Month:        month,
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
			}
			byMonth[month] = mt
		}
		if t.Type == domain.TransactionTypeIncome {
			mt.TotalIncome = mt.TotalIncome.Add(t.Amount)
		} else {
			mt.TotalExpense = mt.TotalExpense.Add(t.Amount)
		}
	}

	totals := make([]*domain.MonthlyTotals, 0, len(byMonth))
	for _, mt := range byMonth {
		totals = append(totals, mt)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals, nil
}

// MockBalanceRepository is a mock implementation of domain.BalanceRepository
type MockBalanceRepository struct {
	// Balances is keyed by store id, then YYYY-MM-DD
	Balances map[int32]map[string]*domain.CashBalance
	NextID   int32
	// LockedFrom records LockForward calls (helper for assertions)
	LockedFrom []time.Time
}

// NewMockBalanceRepository creates a new MockBalanceRepository
func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		Balances: make(map[int32]map[string]*domain.CashBalance),
		NextID:   1,
	}
}

// AddBalance adds a balance row to the mock repository (helper for tests)
func (m *MockBalanceRepository) AddBalance(b *domain.CashBalance) *domain.CashBalance {
	if b.ID == 0 {
		b.ID = m.NextID
		m.NextID++
	}
	if m.Balances[b.StoreID] == nil {
		m.Balances[b.StoreID] = make(map[string]*domain.CashBalance)
	}
	m.Balances[b.StoreID][dayKey(b.BalanceDate)] = b
	return b
}

// GetByDate retrieves the balance row of a single date
func (m *MockBalanceRepository) GetByDate(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	if b, ok := m.Balances[storeID][dayKey(date)]; ok {
		return b, nil
	}
	return nil, domain.ErrBalanceNotFound
}

// GetLatestBefore retrieves the most recent row strictly before date
func (m *MockBalanceRepository) GetLatestBefore(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	var latest *domain.CashBalance
	for _, b := range m.Balances[storeID] {
		if !b.BalanceDate.Before(date) {
			continue
		}
		if latest == nil || b.BalanceDate.After(latest.BalanceDate) {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrBalanceNotFound
	}
	return latest, nil
}

// GetNextAfter retrieves the closest row strictly after date
func (m *MockBalanceRepository) GetNextAfter(ctx context.Context, storeID int32, date time.Time) (*domain.CashBalance, error) {
	var next *domain.CashBalance
	for _, b := range m.Balances[storeID] {
		if !b.BalanceDate.After(date) {
			continue
		}
		if next == nil || b.BalanceDate.Before(next.BalanceDate) {
			next = b
		}
	}
	if next == nil {
		return nil, domain.ErrBalanceNotFound
	}
	return next, nil
}

// GetLatest retrieves the newest row of a store
func (m *MockBalanceRepository) GetLatest(ctx context.Context, storeID int32) (*domain.CashBalance, error) {
	var latest *domain.CashBalance
	for _, b := range m.Balances[storeID] {
		if latest == nil || b.BalanceDate.After(latest.BalanceDate) {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrBalanceNotFound
	}
	return latest, nil
}

// ListByMonth retrieves all rows of a month, oldest first
func (m *MockBalanceRepository) ListByMonth(ctx context.Context, storeID int32, month, year int) ([]*domain.CashBalance, error) {
	balances := []*domain.CashBalance{}
	for _, b := range m.Balances[storeID] {
		if int(b.BalanceDate.Month()) == month && b.BalanceDate.Year() == year {
			balances = append(balances, b)
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].BalanceDate.Before(balances[j].BalanceDate)
	})
	return balances, nil
}

// Upsert inserts or overwrites the row of (store, date)
func (m *MockBalanceRepository) Upsert(ctx context.Context, balance *domain.CashBalance) (*domain.CashBalance, error) {
	if m.Balances[balance.StoreID] == nil {
		m.Balances[balance.StoreID] = make(map[string]*domain.CashBalance)
	}
	key := dayKey(balance.BalanceDate)
	stored := *balance
	if existing, ok := m.Balances[balance.StoreID][key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = m.NextID
		m.NextID++
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = time.Now().UTC()
	m.Balances[balance.StoreID][key] = &stored
	return &stored, nil
}

// LockForward records the lock request; in-memory rows need no locking
func (m *MockBalanceRepository) LockForward(ctx context.Context, storeID int32, date time.Time) error {
	m.LockedFrom = append(m.LockedFrom, date)
	return nil
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.CashCategory
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int32]*domain.CashCategory)}
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(c *domain.CashCategory) *domain.CashCategory {
	m.Categories[c.ID] = c
	return c
}

// GetByID retrieves a category by its ID
func (m *MockCategoryRepository) GetByID(ctx context.Context, id int32) (*domain.CashCategory, error) {
	if c, ok := m.Categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// List retrieves all categories, optionally filtered to active ones
func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.CashCategory, error) {
	categories := []*domain.CashCategory{}
	for _, c := range m.Categories {
		if activeOnly && !c.IsActive {
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// MockEmployeeRepository is a mock implementation of domain.EmployeeRepository
type MockEmployeeRepository struct {
	Employees map[uuid.UUID]*domain.Employee
	ByAuth0ID map[string]*domain.Employee
}

// NewMockEmployeeRepository creates a new MockEmployeeRepository
func NewMockEmployeeRepository() *MockEmployeeRepository {
	return &MockEmployeeRepository{
		Employees: make(map[uuid.UUID]*domain.Employee),
		ByAuth0ID: make(map[string]*domain.Employee),
	}
}

// AddEmployee adds an employee to the mock repository (helper for tests)
func (m *MockEmployeeRepository) AddEmployee(e *domain.Employee) *domain.Employee {
	m.Employees[e.ID] = e
	m.ByAuth0ID[e.Auth0ID] = e
	return e
}

// GetByID retrieves an employee by its ID
func (m *MockEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	if e, ok := m.Employees[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

// GetByAuth0ID retrieves an employee by the Auth0 subject claim
func (m *MockEmployeeRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Employee, error) {
	if e, ok := m.ByAuth0ID[auth0ID]; ok {
		return e, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}
