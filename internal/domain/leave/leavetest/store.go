// Package leavetest provides an in-memory leave.StoreAPI for tests.
package leavetest

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/leave"
	"clinic/internal/domain/staff"
)

type staffRow struct {
	tenantID string
	userID   string
	active   bool
	summary  staff.Summary
}

type requestRow struct {
	tenantID string
	req      leave.Request
}

type state struct {
	staff      map[string]staffRow
	users      map[string]string
	balances   map[string]leave.Balance
	requests   map[string]requestRow
	attendance map[string]attendance.Record
	seq        int
}

func (st *state) clone() *state {
	return &state{
		staff:      maps.Clone(st.staff),
		users:      maps.Clone(st.users),
		balances:   maps.Clone(st.balances),
		requests:   maps.Clone(st.requests),
		attendance: maps.Clone(st.attendance),
		seq:        st.seq,
	}
}

// Store serialises every call; WithinTx holds the lock for the whole callback
// and discards its writes when the callback fails.
type Store struct {
	mu sync.Mutex
	st *state

	// FailMarkLeaveDays makes attendance writes fail, for rollback tests.
	FailMarkLeaveDays error
}

func New() *Store {
	return &Store{st: &state{
		staff:      map[string]staffRow{},
		users:      map[string]string{},
		balances:   map[string]leave.Balance{},
		requests:   map[string]requestRow{},
		attendance: map[string]attendance.Record{},
	}}
}

func (s *Store) AddStaff(tenantID string, summary staff.Summary, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.staff[summary.ID] = staffRow{tenantID: tenantID, userID: userID, active: true, summary: summary}
}

func (s *Store) AddUser(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[userID] = name
}

func (s *Store) PutBalance(b leave.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.balances[balanceKey(b.StaffID, b.Year)] = b
}

// Balance returns the stored row and whether it exists.
func (s *Store) Balance(staffID string, year int) (leave.Balance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.balances[balanceKey(staffID, year)]
	return b, ok
}

// Attendance returns the rows of one staff member ordered by date.
func (s *Store) Attendance(staffID string) []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.Record
	for _, rec := range s.st.attendance {
		if rec.StaffID == staffID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// PutAttendance seeds an attendance row, e.g. one with a clock-in time.
func (s *Store) PutAttendance(rec attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.attendance[attendanceKey(rec.StaffID, rec.Date)] = rec
}

func (s *Store) WithinTx(ctx context.Context, fn func(leave.StoreAPI) error) error {
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

func (s *Store) StaffSummary(ctx context.Context, tenantID, staffID string) (staff.Summary, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.StaffSummary(ctx, tenantID, staffID)
}

func (s *Store) StaffIDForUser(ctx context.Context, tenantID, userID string) (string, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.StaffIDForUser(ctx, tenantID, userID)
}

func (s *Store) LockStaff(ctx context.Context, tenantID, staffID string) error {
	return nil
}

func (s *Store) GetBalance(ctx context.Context, tenantID, staffID string, year int) (leave.Balance, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.GetBalance(ctx, tenantID, staffID, year)
}

func (s *Store) UpsertBalance(ctx context.Context, tenantID string, in leave.BalanceInput) (leave.Balance, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.UpsertBalance(ctx, tenantID, in)
}

func (s *Store) DeductBalance(ctx context.Context, tenantID, staffID string, year int, leaveType string, days int) (bool, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.DeductBalance(ctx, tenantID, staffID, year, leaveType, days)
}

func (s *Store) SeedMissingBalances(ctx context.Context, tenantID string, year int, defaults leave.Entitlements) (int, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.SeedMissingBalances(ctx, tenantID, year, defaults)
}

func (s *Store) HasOverlap(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.HasOverlap(ctx, tenantID, staffID, start, end)
}

func (s *Store) CreateRequest(ctx context.Context, tenantID string, in leave.Request) (string, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.CreateRequest(ctx, tenantID, in)
}

func (s *Store) GetRequest(ctx context.Context, tenantID, leaveID string) (leave.Request, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.GetRequest(ctx, tenantID, leaveID)
}

func (s *Store) LockRequest(ctx context.Context, tenantID, leaveID string) (leave.Request, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.LockRequest(ctx, tenantID, leaveID)
}

func (s *Store) ListRequests(ctx context.Context, tenantID string, filter leave.ListFilter) ([]leave.Request, error) {
	tx, unlock := s.locked()
	defer unlock()
	return tx.ListRequests(ctx, tenantID, filter)
}

func (s *Store) UpdateReview(ctx context.Context, tenantID, leaveID, status, reviewerID, notes string, reviewedAt time.Time) error {
	tx, unlock := s.locked()
	defer unlock()
	return tx.UpdateReview(ctx, tenantID, leaveID, status, reviewerID, notes, reviewedAt)
}

func (s *Store) MarkLeaveDays(ctx context.Context, tenantID, staffID string, days []time.Time, note, markedBy string) error {
	tx, unlock := s.locked()
	defer unlock()
	return tx.MarkLeaveDays(ctx, tenantID, staffID, days, note, markedBy)
}

type txStore struct {
	st     *state
	parent *Store
}

func (t *txStore) WithinTx(ctx context.Context, fn func(leave.StoreAPI) error) error {
	return fn(t)
}

func (t *txStore) StaffSummary(ctx context.Context, tenantID, staffID string) (staff.Summary, error) {
	row, ok := t.st.staff[staffID]
	if !ok || row.tenantID != tenantID {
		return staff.Summary{}, leave.ErrStaffNotFound
	}
	return row.summary, nil
}

func (t *txStore) StaffIDForUser(ctx context.Context, tenantID, userID string) (string, error) {
	for id, row := range t.st.staff {
		if row.tenantID == tenantID && row.userID != "" && row.userID == userID {
			return id, nil
		}
	}
	return "", leave.ErrStaffNotFound
}

func (t *txStore) LockStaff(ctx context.Context, tenantID, staffID string) error {
	return nil
}

func (t *txStore) ownsStaff(tenantID, staffID string) bool {
	row, ok := t.st.staff[staffID]
	return ok && row.tenantID == tenantID
}

func (t *txStore) GetBalance(ctx context.Context, tenantID, staffID string, year int) (leave.Balance, error) {
	b, ok := t.st.balances[balanceKey(staffID, year)]
	if !ok || !t.ownsStaff(tenantID, staffID) {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (t *txStore) UpsertBalance(ctx context.Context, tenantID string, in leave.BalanceInput) (leave.Balance, error) {
	key := balanceKey(in.StaffID, in.Year)
	b, ok := t.st.balances[key]
	if !ok {
		t.st.seq++
		b = leave.Balance{ID: fmt.Sprintf("balance-%d", t.st.seq), StaffID: in.StaffID, Year: in.Year}
	}
	b.SickLeaveBalance = in.SickLeaveBalance
	b.CasualLeaveBalance = in.CasualLeaveBalance
	b.EarnedLeaveBalance = in.EarnedLeaveBalance
	b.UpdatedAt = time.Now()
	t.st.balances[key] = b
	return b, nil
}

func (t *txStore) DeductBalance(ctx context.Context, tenantID, staffID string, year int, leaveType string, days int) (bool, error) {
	key := balanceKey(staffID, year)
	b, ok := t.st.balances[key]
	if !ok || !t.ownsStaff(tenantID, staffID) {
		return false, nil
	}
	b.Deduct(leaveType, days)
	t.st.balances[key] = b
	return true, nil
}

func (t *txStore) SeedMissingBalances(ctx context.Context, tenantID string, year int, defaults leave.Entitlements) (int, error) {
	created := 0
	for id, row := range t.st.staff {
		if row.tenantID != tenantID || !row.active {
			continue
		}
		key := balanceKey(id, year)
		if _, ok := t.st.balances[key]; ok {
			continue
		}
		t.st.seq++
		t.st.balances[key] = leave.Balance{
			ID:                 fmt.Sprintf("balance-%d", t.st.seq),
			StaffID:            id,
			Year:               year,
			SickLeaveBalance:   defaults.Sick,
			CasualLeaveBalance: defaults.Casual,
			EarnedLeaveBalance: defaults.Earned,
		}
		created++
	}
	return created, nil
}

func (t *txStore) HasOverlap(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	for _, row := range t.st.requests {
		r := row.req
		if row.tenantID != tenantID || r.StaffID != staffID {
			continue
		}
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if leave.Overlaps(r.StartDate, r.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (t *txStore) CreateRequest(ctx context.Context, tenantID string, in leave.Request) (string, error) {
	t.st.seq++
	in.ID = fmt.Sprintf("leave-%d", t.st.seq)
	in.AppliedAt = time.Now().Add(time.Duration(t.st.seq) * time.Millisecond)
	t.st.requests[in.ID] = requestRow{tenantID: tenantID, req: in}
	return in.ID, nil
}

func (t *txStore) hydrate(r leave.Request) leave.Request {
	if row, ok := t.st.staff[r.StaffID]; ok {
		summary := row.summary
		r.Staff = &summary
	}
	r.ReviewerName = t.st.users[r.ReviewedBy]
	return r
}

func (t *txStore) GetRequest(ctx context.Context, tenantID, leaveID string) (leave.Request, error) {
	row, ok := t.st.requests[leaveID]
	if !ok || row.tenantID != tenantID {
		return leave.Request{}, leave.ErrNotFound
	}
	return t.hydrate(row.req), nil
}

func (t *txStore) LockRequest(ctx context.Context, tenantID, leaveID string) (leave.Request, error) {
	row, ok := t.st.requests[leaveID]
	if !ok || row.tenantID != tenantID {
		return leave.Request{}, leave.ErrNotFound
	}
	return row.req, nil
}

func (t *txStore) ListRequests(ctx context.Context, tenantID string, filter leave.ListFilter) ([]leave.Request, error) {
	out := []leave.Request{}
	for _, row := range t.st.requests {
		r := row.req
		if row.tenantID != tenantID {
			continue
		}
		if filter.StaffID != "" && r.StaffID != filter.StaffID {
			continue
		}
		if filter.Status != "" && filter.Status != leave.StatusAll && r.Status != filter.Status {
			continue
		}
		if filter.LeaveType != "" && r.LeaveType != filter.LeaveType {
			continue
		}
		out = append(out, t.hydrate(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (t *txStore) UpdateReview(ctx context.Context, tenantID, leaveID, status, reviewerID, notes string, reviewedAt time.Time) error {
	row, ok := t.st.requests[leaveID]
	if !ok || row.tenantID != tenantID {
		return leave.ErrNotFound
	}
	row.req.Status = status
	row.req.ReviewedBy = reviewerID
	row.req.ReviewNotes = notes
	at := reviewedAt
	row.req.ReviewedAt = &at
	t.st.requests[leaveID] = row
	return nil
}

func (t *txStore) MarkLeaveDays(ctx context.Context, tenantID, staffID string, days []time.Time, note, markedBy string) error {
	if t.parent.FailMarkLeaveDays != nil {
		return t.parent.FailMarkLeaveDays
	}
	for _, d := range days {
		key := attendanceKey(staffID, d)
		rec, ok := t.st.attendance[key]
		if !ok {
			rec = attendance.Record{ID: key, StaffID: staffID, Date: d}
		}
		rec.Status = attendance.StatusLeave
		rec.Notes = note
		rec.MarkedBy = markedBy
		t.st.attendance[key] = rec
	}
	return nil
}

func balanceKey(staffID string, year int) string {
	return fmt.Sprintf("%s|%d", staffID, year)
}

func attendanceKey(staffID string, d time.Time) string {
	return staffID + "|" + d.Format(time.DateOnly)
}

var (
	_ leave.StoreAPI = (*Store)(nil)
	_ leave.StoreAPI = (*txStore)(nil)
)
