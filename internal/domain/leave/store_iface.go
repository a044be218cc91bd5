package leave

import (
	"context"
	"time"

	"clinic/internal/domain/staff"
)

type StoreAPI interface {
	// WithinTx runs fn against a store bound to a single transaction.
	WithinTx(ctx context.Context, fn func(StoreAPI) error) error

	StaffSummary(ctx context.Context, tenantID, staffID string) (staff.Summary, error)
	StaffIDForUser(ctx context.Context, tenantID, userID string) (string, error)
	LockStaff(ctx context.Context, tenantID, staffID string) error

	GetBalance(ctx context.Context, tenantID, staffID string, year int) (Balance, error)
	UpsertBalance(ctx context.Context, tenantID string, in BalanceInput) (Balance, error)
	DeductBalance(ctx context.Context, tenantID, staffID string, year int, leaveType string, days int) (bool, error)
	SeedMissingBalances(ctx context.Context, tenantID string, year int, defaults Entitlements) (int, error)

	HasOverlap(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error)
	CreateRequest(ctx context.Context, tenantID string, in Request) (string, error)
	GetRequest(ctx context.Context, tenantID, leaveID string) (Request, error)
	LockRequest(ctx context.Context, tenantID, leaveID string) (Request, error)
	ListRequests(ctx context.Context, tenantID string, filter ListFilter) ([]Request, error)
	UpdateReview(ctx context.Context, tenantID, leaveID, status, reviewerID, notes string, reviewedAt time.Time) error

	MarkLeaveDays(ctx context.Context, tenantID, staffID string, days []time.Time, note, markedBy string) error
}
