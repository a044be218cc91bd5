package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrNoStaffRecord = errors.New("no staff record for user")

type StoreAPI interface {
	StaffIDByUserID(ctx context.Context, tenantID, userID string) (string, error)
	LeaveTotals(ctx context.Context, tenantID, staffID string, year int) (LeaveTotals, error)
	PendingLeaves(ctx context.Context, tenantID, staffID string) (int, error)
	PayrollCount(ctx context.Context, tenantID, staffID string) (int, error)
	ActiveStaff(ctx context.Context, tenantID string) (int, error)
	OnLeave(ctx context.Context, tenantID string, day time.Time) (int, error)
	PendingPayrolls(ctx context.Context, tenantID string) (int, decimal.Decimal, error)
	ExpensesBetween(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error)
	ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) ([]JobRun, error)
	CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error)
}

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// StaffDashboard summarises the caller's own leave and payroll history for
// the current year.
func (s *Service) StaffDashboard(ctx context.Context, tenantID, userID string) (StaffDashboard, error) {
	staffID, err := s.Store.StaffIDByUserID(ctx, tenantID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return StaffDashboard{}, ErrNoStaffRecord
	}
	if err != nil {
		return StaffDashboard{}, err
	}

	year := s.now().Year()
	out := StaffDashboard{StaffID: staffID, Year: year}
	totals, err := s.Store.LeaveTotals(ctx, tenantID, staffID, year)
	if err != nil {
		return StaffDashboard{}, err
	}
	out.LeaveRemaining, out.LeaveUsed = totals.Remaining, totals.Used
	if out.PendingLeaves, err = s.Store.PendingLeaves(ctx, tenantID, staffID); err != nil {
		return StaffDashboard{}, err
	}
	if out.PayrollCount, err = s.Store.PayrollCount(ctx, tenantID, staffID); err != nil {
		return StaffDashboard{}, err
	}
	return out, nil
}

// ClinicDashboard counts open approvals and unpaid payroll, and sums the
// expenses booked in the current calendar month.
func (s *Service) ClinicDashboard(ctx context.Context, tenantID string) (ClinicDashboard, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := ClinicDashboard{Month: int(now.Month()), Year: now.Year()}
	var err error
	if out.ActiveStaff, err = s.Store.ActiveStaff(ctx, tenantID); err != nil {
		return ClinicDashboard{}, err
	}
	if out.PendingLeaves, err = s.Store.PendingLeaves(ctx, tenantID, ""); err != nil {
		return ClinicDashboard{}, err
	}
	if out.OnLeaveToday, err = s.Store.OnLeave(ctx, tenantID, today); err != nil {
		return ClinicDashboard{}, err
	}
	if out.PendingPayrolls, out.PendingPayroll, err = s.Store.PendingPayrolls(ctx, tenantID); err != nil {
		return ClinicDashboard{}, err
	}
	if out.MonthExpenses, err = s.Store.ExpensesBetween(ctx, tenantID, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return ClinicDashboard{}, err
	}
	return out, nil
}

func (s *Service) JobRuns(ctx context.Context, tenantID string, filter JobRunFilter) ([]JobRun, int, error) {
	total, err := s.Store.CountJobRuns(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	runs, err := s.Store.ListJobRuns(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
