package reports

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/leave"
	"clinic/internal/domain/payroll"
	"clinic/internal/domain/staff"
	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) StaffIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var staffID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM staff WHERE clinic_id = $1 AND user_id = $2", tenantID, userID).Scan(&staffID)
	if err != nil {
		return "", err
	}
	return staffID, nil
}

func (s *Store) LeaveTotals(ctx context.Context, tenantID, staffID string, year int) (LeaveTotals, error) {
	var out LeaveTotals
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(sick_leave_balance + casual_leave_balance + earned_leave_balance), 0),
           COALESCE(SUM(sick_leave_used + casual_leave_used + earned_leave_used), 0)
    FROM leave_balances
    WHERE clinic_id = $1 AND staff_id = $2 AND year = $3
  `, tenantID, staffID, year).Scan(&out.Remaining, &out.Used)
	return out, err
}

func (s *Store) PendingLeaves(ctx context.Context, tenantID, staffID string) (int, error) {
	query := "SELECT COUNT(1) FROM leave_requests WHERE clinic_id = $1 AND status = $2"
	args := []any{tenantID, leave.StatusPending}
	if staffID != "" {
		query += " AND staff_id = $3"
		args = append(args, staffID)
	}
	var count int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) PayrollCount(ctx context.Context, tenantID, staffID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payrolls WHERE clinic_id = $1 AND staff_id = $2", tenantID, staffID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ActiveStaff(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM staff WHERE clinic_id = $1 AND status = $2", tenantID, staff.StatusActive).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) OnLeave(ctx context.Context, tenantID string, day time.Time) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records WHERE clinic_id = $1 AND date = $2 AND status = $3", tenantID, day, attendance.StatusLeave).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) PendingPayrolls(ctx context.Context, tenantID string) (int, decimal.Decimal, error) {
	var count int
	var amount decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COALESCE(SUM(net_salary), 0)
    FROM payrolls
    WHERE clinic_id = $1 AND status = $2
  `, tenantID, payroll.StatusPending).Scan(&count, &amount)
	return count, amount, err
}

func (s *Store) ExpensesBetween(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount), 0)
    FROM expenses
    WHERE clinic_id = $1 AND expense_date >= $2 AND expense_date < $3
  `, tenantID, from, to).Scan(&total)
	return total, err
}

func (s *Store) ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) ([]JobRun, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []JobRun{}
	for rows.Next() {
		var run JobRun
		var details []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.Details = json.RawMessage(details)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildJobRunsBaseQuery(tenantID string, filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE clinic_id = $1
  `
	args := []any{tenantID}

	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	return query, args
}
