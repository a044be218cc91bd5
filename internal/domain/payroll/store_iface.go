package payroll

import (
	"context"
	"time"

	"clinic/internal/domain/expense"
	"clinic/internal/domain/staff"
)

type StoreAPI interface {
	// WithinTx runs fn against a store bound to a single transaction.
	WithinTx(ctx context.Context, fn func(StoreAPI) error) error

	Staff(ctx context.Context, tenantID, staffID string) (staff.Staff, error)
	Exists(ctx context.Context, tenantID, staffID string, month, year int) (bool, error)
	LockNumbering(ctx context.Context, tenantID string) error
	LastNumber(ctx context.Context, tenantID string) (string, error)
	Create(ctx context.Context, tenantID string, p Payroll) (string, error)
	Get(ctx context.Context, tenantID, payrollID string) (Payroll, error)
	Lock(ctx context.Context, tenantID, payrollID string) (Payroll, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Payroll, error)
	Stats(ctx context.Context, tenantID string) (Stats, error)
	MarkPaid(ctx context.Context, tenantID, payrollID string, paidAt time.Time, method, reference, paidBy string) error
	CreateExpense(ctx context.Context, tenantID string, e expense.Expense) (string, error)
}
