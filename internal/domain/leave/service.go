package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

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

// Apply validates and stores a PENDING leave request. Balance and overlap
// checks run under a per-staff lock so two submissions cannot both pass.
func (s *Service) Apply(ctx context.Context, tenantID string, in ApplyInput) (Request, error) {
	in.LeaveType = strings.ToUpper(strings.TrimSpace(in.LeaveType))
	if in.StaffID == "" || in.LeaveType == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Request{}, fmt.Errorf("%w: staffId, leaveType, startDate and endDate are required", ErrInvalidInput)
	}
	if !ValidType(in.LeaveType) {
		return Request{}, fmt.Errorf("%w: unknown leave type %q", ErrInvalidInput, in.LeaveType)
	}
	days, err := CalculateDays(in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, err
	}
	in.StartDate, in.EndDate = DateOf(in.StartDate), DateOf(in.EndDate)
	year := s.now().Year()

	var id string
	err = s.Store.WithinTx(ctx, func(tx StoreAPI) error {
		balance, err := tx.GetBalance(ctx, tenantID, in.StaffID, year)
		if err != nil {
			return err
		}
		if available, tracked := balance.Available(in.LeaveType); tracked && days > available {
			return &InsufficientBalanceError{LeaveType: in.LeaveType, Requested: days, Available: available}
		}

		if err := tx.LockStaff(ctx, tenantID, in.StaffID); err != nil {
			return err
		}
		overlap, err := tx.HasOverlap(ctx, tenantID, in.StaffID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		id, err = tx.CreateRequest(ctx, tenantID, Request{
			StaffID:   in.StaffID,
			LeaveType: in.LeaveType,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			TotalDays: days,
			Reason:    strings.TrimSpace(in.Reason),
			Status:    StatusPending,
		})
		return err
	})
	if err != nil {
		return Request{}, err
	}
	return s.Store.GetRequest(ctx, tenantID, id)
}

// List returns requests newest first; a staff filter also yields that
// member's current-year balance when one exists.
func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	filter.LeaveType = strings.ToUpper(strings.TrimSpace(filter.LeaveType))
	if filter.LeaveType != "" && !ValidType(filter.LeaveType) {
		return ListResult{}, fmt.Errorf("%w: unknown leave type %q", ErrInvalidInput, filter.LeaveType)
	}

	leaves, err := s.Store.ListRequests(ctx, tenantID, filter)
	if err != nil {
		return ListResult{}, err
	}
	if leaves == nil {
		leaves = []Request{}
	}
	out := ListResult{Leaves: leaves}
	if filter.StaffID == "" {
		return out, nil
	}

	balance, err := s.Store.GetBalance(ctx, tenantID, filter.StaffID, s.now().Year())
	switch {
	case errors.Is(err, ErrBalanceNotFound):
	case err != nil:
		return ListResult{}, err
	default:
		out.LeaveBalance = &balance
	}
	return out, nil
}

// Review approves or rejects a PENDING request. On approval the balance
// deduction and the attendance rows for every day of the range are written in
// the same transaction as the status change.
func (s *Service) Review(ctx context.Context, tenantID, actorID string, in ReviewInput) (ReviewResult, error) {
	in.Action = strings.ToUpper(strings.TrimSpace(in.Action))
	if in.LeaveID == "" || in.Action == "" {
		return ReviewResult{}, fmt.Errorf("%w: leaveId and action are required", ErrInvalidInput)
	}
	if !ValidAction(in.Action) {
		return ReviewResult{}, fmt.Errorf("%w: action must be APPROVED or REJECTED", ErrInvalidInput)
	}
	reviewer := in.ReviewedBy
	if reviewer == "" {
		reviewer = actorID
	}
	markedBy := in.MarkedBy
	if markedBy == "" {
		markedBy = actorID
	}

	now := s.now()
	var updated Request
	err := s.Store.WithinTx(ctx, func(tx StoreAPI) error {
		req, err := tx.LockRequest(ctx, tenantID, in.LeaveID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}
		if err := tx.UpdateReview(ctx, tenantID, req.ID, in.Action, reviewer, strings.TrimSpace(in.ReviewNotes), now); err != nil {
			return err
		}

		if in.Action == StatusApproved {
			if TracksBalance(req.LeaveType) {
				if _, err := tx.DeductBalance(ctx, tenantID, req.StaffID, now.Year(), req.LeaveType, req.TotalDays); err != nil {
					return fmt.Errorf("deduct balance: %w", err)
				}
			}
			days, err := EachDay(req.StartDate, req.EndDate)
			if err != nil {
				return err
			}
			if err := tx.MarkLeaveDays(ctx, tenantID, req.StaffID, days, AttendanceNote(req.LeaveType), markedBy); err != nil {
				return err
			}
		}

		updated, err = tx.GetRequest(ctx, tenantID, req.ID)
		return err
	})
	if err != nil {
		return ReviewResult{}, err
	}
	return ReviewResult{Leave: updated, Message: ReviewMessage(in.Action)}, nil
}

func (s *Service) GetBalance(ctx context.Context, tenantID, staffID string, year int) (Balance, error) {
	if staffID == "" {
		return Balance{}, fmt.Errorf("%w: staffId is required", ErrInvalidInput)
	}
	if year == 0 {
		year = s.now().Year()
	}
	return s.Store.GetBalance(ctx, tenantID, staffID, year)
}

func (s *Service) SetBalance(ctx context.Context, tenantID string, in BalanceInput) (Balance, error) {
	if in.StaffID == "" {
		return Balance{}, fmt.Errorf("%w: staffId is required", ErrInvalidInput)
	}
	if in.SickLeaveBalance < 0 || in.CasualLeaveBalance < 0 || in.EarnedLeaveBalance < 0 {
		return Balance{}, fmt.Errorf("%w: balances must not be negative", ErrInvalidInput)
	}
	if in.Year == 0 {
		in.Year = s.now().Year()
	}
	if _, err := s.Store.StaffSummary(ctx, tenantID, in.StaffID); err != nil {
		return Balance{}, err
	}
	return s.Store.UpsertBalance(ctx, tenantID, in)
}

// EnsureYearBalances seeds a current-year balance row for every active staff
// member of the clinic that does not have one yet.
func (s *Service) EnsureYearBalances(ctx context.Context, tenantID string, defaults Entitlements) (BalanceRunSummary, error) {
	year := s.now().Year()
	created, err := s.Store.SeedMissingBalances(ctx, tenantID, year, defaults)
	if err != nil {
		return BalanceRunSummary{}, err
	}
	return BalanceRunSummary{Year: year, BalancesCreated: created}, nil
}

// StaffIDForUser resolves the staff record a login may act for.
func (s *Service) StaffIDForUser(ctx context.Context, tenantID, userID string) (string, error) {
	return s.Store.StaffIDForUser(ctx, tenantID, userID)
}
