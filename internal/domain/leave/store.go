package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/staff"
	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(StoreAPI) error) error {
	beginner, ok := s.DB.(querier.Beginner)
	if !ok {
		return errors.New("leave store: connection cannot begin transactions")
	}
	return querier.InTx(ctx, beginner, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

func (s *Store) StaffSummary(ctx context.Context, tenantID, staffID string) (staff.Summary, error) {
	if !querier.ValidID(staffID) {
		return staff.Summary{}, ErrStaffNotFound
	}
	var out staff.Summary
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, role
    FROM staff
    WHERE clinic_id = $1 AND id = $2
  `, tenantID, staffID).Scan(&out.ID, &out.FirstName, &out.LastName, &out.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return staff.Summary{}, ErrStaffNotFound
	}
	return out, err
}

func (s *Store) StaffIDForUser(ctx context.Context, tenantID, userID string) (string, error) {
	if !querier.ValidID(userID) {
		return "", ErrStaffNotFound
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM staff WHERE clinic_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStaffNotFound
	}
	return id, err
}

// LockStaff serialises leave submissions of one staff member until the
// surrounding transaction ends.
func (s *Store) LockStaff(ctx context.Context, tenantID, staffID string) error {
	_, err := s.DB.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "leave:"+tenantID+":"+staffID)
	return err
}

const balanceColumnsSQL = `id, staff_id, year, sick_leave_used, sick_leave_balance, casual_leave_used,
    casual_leave_balance, earned_leave_used, earned_leave_balance, updated_at`

func scanBalance(row pgx.Row) (Balance, error) {
	var b Balance
	err := row.Scan(&b.ID, &b.StaffID, &b.Year, &b.SickLeaveUsed, &b.SickLeaveBalance, &b.CasualLeaveUsed,
		&b.CasualLeaveBalance, &b.EarnedLeaveUsed, &b.EarnedLeaveBalance, &b.UpdatedAt)
	return b, err
}

func (s *Store) GetBalance(ctx context.Context, tenantID, staffID string, year int) (Balance, error) {
	if !querier.ValidID(staffID) {
		return Balance{}, ErrBalanceNotFound
	}
	b, err := scanBalance(s.DB.QueryRow(ctx, `
    SELECT `+balanceColumnsSQL+`
    FROM leave_balances
    WHERE clinic_id = $1 AND staff_id = $2 AND year = $3
  `, tenantID, staffID, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	}
	return b, err
}

func (s *Store) UpsertBalance(ctx context.Context, tenantID string, in BalanceInput) (Balance, error) {
	if !querier.ValidID(in.StaffID) {
		return Balance{}, ErrStaffNotFound
	}
	b, err := scanBalance(s.DB.QueryRow(ctx, `
    INSERT INTO leave_balances (clinic_id, staff_id, year, sick_leave_balance, casual_leave_balance, earned_leave_balance)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (staff_id, year) DO UPDATE
    SET sick_leave_balance = EXCLUDED.sick_leave_balance,
        casual_leave_balance = EXCLUDED.casual_leave_balance,
        earned_leave_balance = EXCLUDED.earned_leave_balance,
        updated_at = now()
    RETURNING `+balanceColumnsSQL,
		tenantID, in.StaffID, in.Year, in.SickLeaveBalance, in.CasualLeaveBalance, in.EarnedLeaveBalance))
	if querier.IsForeignKeyViolation(err) {
		return Balance{}, ErrStaffNotFound
	}
	return b, err
}

// DeductBalance reports false when the staff member has no balance row for year.
func (s *Store) DeductBalance(ctx context.Context, tenantID, staffID string, year int, leaveType string, days int) (bool, error) {
	cols, ok := balanceColumns[leaveType]
	if !ok {
		return false, fmt.Errorf("%w: %s does not track a balance", ErrInvalidInput, leaveType)
	}
	if !querier.ValidID(staffID) {
		return false, nil
	}
	tag, err := s.DB.Exec(ctx, fmt.Sprintf(`
    UPDATE leave_balances
    SET %[1]s = %[1]s + $4, %[2]s = %[2]s - $4, updated_at = now()
    WHERE clinic_id = $1 AND staff_id = $2 AND year = $3
  `, cols[0], cols[1]), tenantID, staffID, year, days)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SeedMissingBalances(ctx context.Context, tenantID string, year int, defaults Entitlements) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (clinic_id, staff_id, year, sick_leave_balance, casual_leave_balance, earned_leave_balance)
    SELECT s.clinic_id, s.id, $2, $3, $4, $5
    FROM staff s
    WHERE s.clinic_id = $1 AND s.status = $6
    ON CONFLICT (staff_id, year) DO NOTHING
  `, tenantID, year, defaults.Sick, defaults.Casual, defaults.Earned, staff.StatusActive)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) HasOverlap(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	if !querier.ValidID(staffID) {
		return false, nil
	}
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM leave_requests
      WHERE clinic_id = $1 AND staff_id = $2
        AND status IN ($3, $4)
        AND start_date <= $6 AND end_date >= $5
    )
  `, tenantID, staffID, StatusPending, StatusApproved, start, end).Scan(&exists)
	return exists, err
}

func (s *Store) CreateRequest(ctx context.Context, tenantID string, in Request) (string, error) {
	if !querier.ValidID(in.StaffID) {
		return "", ErrStaffNotFound
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (clinic_id, staff_id, leave_type, start_date, end_date, total_days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, tenantID, in.StaffID, in.LeaveType, in.StartDate, in.EndDate, in.TotalDays, in.Reason, in.Status).Scan(&id)
	if querier.IsForeignKeyViolation(err) {
		return "", ErrStaffNotFound
	}
	return id, err
}

const requestSelectSQL = `
    SELECT lr.id, lr.staff_id, lr.leave_type, lr.start_date, lr.end_date, lr.total_days, lr.reason, lr.status,
      COALESCE(lr.reviewed_by::text, ''), COALESCE(u.name, ''), lr.review_notes, lr.reviewed_at, lr.applied_at,
      s.first_name, s.last_name, s.role
    FROM leave_requests lr
    JOIN staff s ON s.id = lr.staff_id
    LEFT JOIN users u ON u.id = lr.reviewed_by`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	var summary staff.Summary
	err := row.Scan(&r.ID, &r.StaffID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.TotalDays, &r.Reason, &r.Status,
		&r.ReviewedBy, &r.ReviewerName, &r.ReviewNotes, &r.ReviewedAt, &r.AppliedAt,
		&summary.FirstName, &summary.LastName, &summary.Role)
	if err != nil {
		return Request{}, err
	}
	summary.ID = r.StaffID
	r.Staff = &summary
	return r, nil
}

func (s *Store) GetRequest(ctx context.Context, tenantID, leaveID string) (Request, error) {
	if !querier.ValidID(leaveID) {
		return Request{}, ErrNotFound
	}
	r, err := scanRequest(s.DB.QueryRow(ctx, requestSelectSQL+`
    WHERE lr.clinic_id = $1 AND lr.id = $2
  `, tenantID, leaveID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

// LockRequest reads the request row with FOR UPDATE; callers must be inside WithinTx.
func (s *Store) LockRequest(ctx context.Context, tenantID, leaveID string) (Request, error) {
	if !querier.ValidID(leaveID) {
		return Request{}, ErrNotFound
	}
	var r Request
	err := s.DB.QueryRow(ctx, `
    SELECT id, staff_id, leave_type, start_date, end_date, total_days, reason, status
    FROM leave_requests
    WHERE clinic_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, leaveID).Scan(&r.ID, &r.StaffID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.TotalDays, &r.Reason, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, tenantID string, filter ListFilter) ([]Request, error) {
	if filter.StaffID != "" && !querier.ValidID(filter.StaffID) {
		return []Request{}, nil
	}
	query := requestSelectSQL + " WHERE lr.clinic_id = $1"
	args := []any{tenantID}
	if filter.StaffID != "" {
		query += fmt.Sprintf(" AND lr.staff_id = $%d", len(args)+1)
		args = append(args, filter.StaffID)
	}
	if filter.Status != "" && filter.Status != StatusAll {
		query += fmt.Sprintf(" AND lr.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.LeaveType != "" {
		query += fmt.Sprintf(" AND lr.leave_type = $%d", len(args)+1)
		args = append(args, filter.LeaveType)
	}
	query += " ORDER BY lr.applied_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateReview(ctx context.Context, tenantID, leaveID, status, reviewerID, notes string, reviewedAt time.Time) error {
	if !querier.ValidID(leaveID) {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $3, reviewed_by = $4, review_notes = $5, reviewed_at = $6
    WHERE clinic_id = $1 AND id = $2
  `, tenantID, leaveID, status, querier.NullIfEmpty(reviewerID), notes, reviewedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkLeaveDays(ctx context.Context, tenantID, staffID string, days []time.Time, note, markedBy string) error {
	return attendance.UpsertLeaveDays(ctx, s.DB, tenantID, staffID, days, note, markedBy)
}
