package expensehandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"clinic/internal/domain/auth"
	"clinic/internal/domain/expense"
	"clinic/internal/transport/http/handlers/handlertest"
)

type fakeLedger []expense.Expense

func (f fakeLedger) List(_ context.Context, _ string, filter expense.ListFilter) ([]expense.Expense, error) {
	var out []expense.Expense
	for _, e := range f {
		if filter.Category == "" || e.Category == filter.Category {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestListExpensesSumsAmounts(t *testing.T) {
	ledger := fakeLedger{
		{ID: "e1", ExpenseNumber: "SAL-PAY2403-0001", Category: expense.CategorySalary, Amount: decimal.RequireFromString("20200"), ExpenseDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{ID: "e2", ExpenseNumber: "EXP-1", Category: "UTILITIES", Amount: decimal.RequireFromString("1500.50")},
	}
	h := NewHandler(expense.NewService(ledger), handlertest.RolePerms{})
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	accountant := handlertest.User("acct-1", auth.RoleAccountant)

	rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/expenses?category=salary", &accountant, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out expense.ListResult
	handlertest.Decode(t, rec, &out)
	if len(out.Expenses) != 1 || !out.Total.Equal(decimal.RequireFromString("20200")) {
		t.Fatalf("unexpected result %+v", out)
	}

	staffUser := handlertest.User("user-1", auth.RoleStaff)
	if rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/expenses", &staffUser, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/expenses?from=2024-05-01&to=2024-04-01", &accountant, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
