package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubLister struct {
	rows   []Expense
	filter ListFilter
}

func (s *stubLister) List(ctx context.Context, tenantID string, filter ListFilter) ([]Expense, error) {
	s.filter = filter
	return s.rows, nil
}

func TestListSumsAmounts(t *testing.T) {
	store := &stubLister{rows: []Expense{
		{ExpenseNumber: "SAL-PAY2403-0001", Amount: decimal.RequireFromString("20200.00")},
		{ExpenseNumber: "SAL-PAY2403-0002", Amount: decimal.RequireFromString("15000.50")},
	}}
	svc := NewService(store)

	out, err := svc.List(context.Background(), "clinic-1", ListFilter{Category: " salary "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Total.Equal(decimal.RequireFromString("35200.50")) {
		t.Fatalf("unexpected total %s", out.Total)
	}
	if store.filter.Category != CategorySalary {
		t.Fatalf("expected normalised category, got %q", store.filter.Category)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	out, err := NewService(&stubLister{}).List(context.Background(), "clinic-1", ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Expenses == nil || !out.Total.IsZero() {
		t.Fatalf("unexpected empty result %+v", out)
	}
}

func TestListRejectsInvertedRange(t *testing.T) {
	_, err := NewService(&stubLister{}).List(context.Background(), "clinic-1", ListFilter{
		From: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
