package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// StoreAPI is the persistence surface the staff service needs.
type StoreAPI interface {
	Get(ctx context.Context, tenantID, staffID string) (Staff, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Staff, error)
	Create(ctx context.Context, tenantID string, in Staff) (Staff, error)
	IDByUserID(ctx context.Context, tenantID, userID string) (string, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, tenantID, staffID string) (Staff, error) {
	return s.Store.Get(ctx, tenantID, staffID)
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]Staff, error) {
	return s.Store.List(ctx, tenantID, filter)
}

func (s *Service) IDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.Store.IDByUserID(ctx, tenantID, userID)
}

func (s *Service) Create(ctx context.Context, tenantID string, in Staff) (Staff, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.TrimSpace(in.Role)
	if in.FirstName == "" || in.Role == "" {
		return Staff{}, fmt.Errorf("%w: first name and role are required", ErrInvalidInput)
	}
	for _, amount := range []decimal.Decimal{in.BasicSalary, in.Allowances, in.HRA, in.OtherAllowances} {
		if amount.IsNegative() {
			return Staff{}, fmt.Errorf("%w: salary components must not be negative", ErrInvalidInput)
		}
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if in.Status != StatusActive && in.Status != StatusInactive {
		return Staff{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	return s.Store.Create(ctx, tenantID, in)
}
