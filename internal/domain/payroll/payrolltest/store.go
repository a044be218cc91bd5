// Package payrolltest provides an in-memory payroll.StoreAPI for tests.
package payrolltest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"clinic/internal/domain/expense"
	"clinic/internal/domain/payroll"
	"clinic/internal/domain/staff"
)

type payrollRow struct {
	tenantID string
	seq      int
	p        payroll.Payroll
}

type staffRow struct {
	tenantID string
	member   staff.Staff
}

type state struct {
	staff    map[string]staffRow
	users    map[string]string
	payrolls map[string]payrollRow
	expenses []expense.Expense
	seq      int
}

func (st *state) clone() *state {
	return &state{
		staff:    maps.Clone(st.staff),
		users:    maps.Clone(st.users),
		payrolls: maps.Clone(st.payrolls),
		expenses: slices.Clone(st.expenses),
		seq:      st.seq,
	}
}

// Store serialises every call; WithinTx holds the lock for the whole callback
// and discards its writes when the callback fails.
type Store struct {
	mu sync.Mutex
	st *state

	// FailCreateExpense makes the ledger insert fail, for rollback tests.
	FailCreateExpense error
}

func New() *Store {
	return &Store{st: &state{
		staff:    map[string]staffRow{},
		users:    map[string]string{},
		payrolls: map[string]payrollRow{},
	}}
}

func (s *Store) AddStaff(tenantID string, member staff.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.staff[member.ID] = staffRow{tenantID: tenantID, member: member}
}

func (s *Store) AddUser(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[userID] = name
}

// Expenses returns a copy of every recorded ledger row.
func (s *Store) Expenses() []expense.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.expenses)
}

func (s *Store) WithinTx(ctx context.Context, fn func(payroll.StoreAPI) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.st.clone()
	if err := fn(&txStore{st: working, parent: s}); err != nil {
		return err
	}
	s.st = working
	return nil
}

func (s *Store) locked() (*txStore, func()) {
	s.mu.Lock()
	return &txStore{st: s.st, parent: s}, s.mu.Unlock
}

func (s *Store) Staff(ctx context.Context, tenantID, staffID string) (staff.Staff, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Staff(ctx, tenantID, staffID)
}

func (s *Store) Exists(ctx context.Context, tenantID, staffID string, month, year int) (bool, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Exists(ctx, tenantID, staffID, month, year)
}

func (s *Store) LockNumbering(ctx context.Context, tenantID string) error {
	return nil
}

func (s *Store) LastNumber(ctx context.Context, tenantID string) (string, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.LastNumber(ctx, tenantID)
}

func (s *Store) Create(ctx context.Context, tenantID string, p payroll.Payroll) (string, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Create(ctx, tenantID, p)
}

func (s *Store) Get(ctx context.Context, tenantID, payrollID string) (payroll.Payroll, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Get(ctx, tenantID, payrollID)
}

func (s *Store) Lock(ctx context.Context, tenantID, payrollID string) (payroll.Payroll, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Lock(ctx, tenantID, payrollID)
}

func (s *Store) List(ctx context.Context, tenantID string, filter payroll.ListFilter) ([]payroll.Payroll, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.List(ctx, tenantID, filter)
}

func (s *Store) Stats(ctx context.Context, tenantID string) (payroll.Stats, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.Stats(ctx, tenantID)
}

func (s *Store) MarkPaid(ctx context.Context, tenantID, payrollID string, paidAt time.Time, method, reference, paidBy string) error {
	tx, unlock := s.locked()
	defer unlock()
	return tx.MarkPaid(ctx, tenantID, payrollID, paidAt, method, reference, paidBy)
}

func (s *Store) CreateExpense(ctx context.Context, tenantID string, e expense.Expense) (string, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.CreateExpense(ctx, tenantID, e)
}

type txStore struct {
	st     *state
	parent *Store
}

func (t *txStore) WithinTx(ctx context.Context, fn func(payroll.StoreAPI) error) error {
	return fn(t)
}

func (t *txStore) Staff(ctx context.Context, tenantID, staffID string) (staff.Staff, error) {
	row, ok := t.st.staff[staffID]
	if !ok || row.tenantID != tenantID {
		return staff.Staff{}, payroll.ErrStaffNotFound
	}
	return row.member, nil
}

func (t *txStore) Exists(ctx context.Context, tenantID, staffID string, month, year int) (bool, error) {
	for _, row := range t.st.payrolls {
		if row.tenantID == tenantID && row.p.StaffID == staffID && row.p.Month == month && row.p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (t *txStore) LockNumbering(ctx context.Context, tenantID string) error {
	return nil
}

func (t *txStore) LastNumber(ctx context.Context, tenantID string) (string, error) {
	last, lastSeq := "", -1
	for _, row := range t.st.payrolls {
		if row.tenantID == tenantID && row.seq > lastSeq {
			last, lastSeq = row.p.PayrollNumber, row.seq
		}
	}
	return last, nil
}

func (t *txStore) Create(ctx context.Context, tenantID string, p payroll.Payroll) (string, error) {
	if exists, _ := t.Exists(ctx, tenantID, p.StaffID, p.Month, p.Year); exists {
		return "", payroll.ErrDuplicate
	}
	t.st.seq++
	p.ID = fmt.Sprintf("payroll-%d", t.st.seq)
	p.CreatedAt = time.Now()
	t.st.payrolls[p.ID] = payrollRow{tenantID: tenantID, seq: t.st.seq, p: p}
	return p.ID, nil
}

func (t *txStore) hydrate(p payroll.Payroll) payroll.Payroll {
	if row, ok := t.st.staff[p.StaffID]; ok {
		summary := row.member.Summary()
		p.Staff = &summary
	}
	p.GeneratedByName = t.st.users[p.GeneratedBy]
	p.PaidByName = t.st.users[p.PaidBy]
	return p
}

func (t *txStore) Get(ctx context.Context, tenantID, payrollID string) (payroll.Payroll, error) {
	row, ok := t.st.payrolls[payrollID]
	if !ok || row.tenantID != tenantID {
		return payroll.Payroll{}, payroll.ErrNotFound
	}
	return t.hydrate(row.p), nil
}

func (t *txStore) Lock(ctx context.Context, tenantID, payrollID string) (payroll.Payroll, error) {
	return t.Get(ctx, tenantID, payrollID)
}

func (t *txStore) List(ctx context.Context, tenantID string, filter payroll.ListFilter) ([]payroll.Payroll, error) {
	out := []payroll.Payroll{}
	for _, row := range t.st.payrolls {
		p := row.p
		if row.tenantID != tenantID {
			continue
		}
		if filter.StaffID != "" && p.StaffID != filter.StaffID {
			continue
		}
		if filter.Month > 0 && p.Month != filter.Month {
			continue
		}
		if filter.Year > 0 && p.Year != filter.Year {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, t.hydrate(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (t *txStore) Stats(ctx context.Context, tenantID string) (payroll.Stats, error) {
	st := payroll.Stats{TotalGross: decimal.Zero, TotalNet: decimal.Zero, TotalDeductions: decimal.Zero, PendingAmount: decimal.Zero}
	for _, row := range t.st.payrolls {
		if row.tenantID != tenantID {
			continue
		}
		p := row.p
		st.TotalPayrolls++
		st.TotalGross = st.TotalGross.Add(p.GrossSalary)
		st.TotalNet = st.TotalNet.Add(p.NetSalary)
		st.TotalDeductions = st.TotalDeductions.Add(p.TotalDeductions)
		if p.Status == payroll.StatusPending {
			st.PendingCount++
			st.PendingAmount = st.PendingAmount.Add(p.NetSalary)
		}
	}
	return st, nil
}

func (t *txStore) MarkPaid(ctx context.Context, tenantID, payrollID string, paidAt time.Time, method, reference, paidBy string) error {
	row, ok := t.st.payrolls[payrollID]
	if !ok || row.tenantID != tenantID {
		return payroll.ErrNotFound
	}
	row.p.Status = payroll.StatusPaid
	at := paidAt
	row.p.PaymentDate = &at
	row.p.PaymentMethod = method
	row.p.PaymentReference = reference
	row.p.PaidBy = paidBy
	t.st.payrolls[payrollID] = row
	return nil
}

func (t *txStore) CreateExpense(ctx context.Context, tenantID string, e expense.Expense) (string, error) {
	if t.parent.FailCreateExpense != nil {
		return "", t.parent.FailCreateExpense
	}
	for _, existing := range t.st.expenses {
		if existing.ExpenseNumber == e.ExpenseNumber {
			return "", fmt.Errorf("duplicate expense number %s", e.ExpenseNumber)
		}
	}
	t.st.seq++
	e.ID = fmt.Sprintf("expense-%d", t.st.seq)
	t.st.expenses = append(t.st.expenses, e)
	return e.ID, nil
}

var (
	_ payroll.StoreAPI = (*Store)(nil)
	_ payroll.StoreAPI = (*txStore)(nil)
)
