package expense

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidRange = errors.New("from date after to date")

type Lister interface {
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Expense, error)
}

type Service struct {
	Store Lister
}

func NewService(store Lister) *Service {
	return &Service{Store: store}
}

// List returns the ledger rows matching filter and their summed amount.
func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return ListResult{}, ErrInvalidRange
	}
	filter.Category = strings.ToUpper(strings.TrimSpace(filter.Category))
	rows, err := s.Store.List(ctx, tenantID, filter)
	if err != nil {
		return ListResult{}, err
	}
	out := ListResult{Expenses: []Expense{}, Total: decimal.Zero}
	for _, e := range rows {
		out.Expenses = append(out.Expenses, e)
		out.Total = out.Total.Add(e.Amount)
	}
	return out, nil
}
