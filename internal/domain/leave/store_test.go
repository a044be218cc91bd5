package leave

import (
	"context"
	"errors"
	"testing"
	"time"
)

// A nil DB panics on use, so these only pass when the id is rejected first.
func TestStoreTreatsMalformedIDsAsMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	if _, err := store.LockRequest(ctx, "clinic-1", "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LockRequest: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetRequest(ctx, "clinic-1", "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRequest: expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateReview(ctx, "clinic-1", "abc", StatusApproved, "", "", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateReview: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetBalance(ctx, "clinic-1", "staff-1", 2024); !errors.Is(err, ErrBalanceNotFound) {
		t.Fatalf("GetBalance: expected ErrBalanceNotFound, got %v", err)
	}
	if _, err := store.StaffSummary(ctx, "clinic-1", "staff-1"); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("StaffSummary: expected ErrStaffNotFound, got %v", err)
	}
	if _, err := store.UpsertBalance(ctx, "clinic-1", BalanceInput{StaffID: "x"}); !errors.Is(err, ErrStaffNotFound) {
		t.Fatalf("UpsertBalance: expected ErrStaffNotFound, got %v", err)
	}
	if overlap, err := store.HasOverlap(ctx, "clinic-1", "x", time.Now(), time.Now()); err != nil || overlap {
		t.Fatalf("HasOverlap: expected no overlap, got %v %v", overlap, err)
	}
	if rows, err := store.ListRequests(ctx, "clinic-1", ListFilter{StaffID: "x"}); err != nil || len(rows) != 0 {
		t.Fatalf("ListRequests: expected empty result, got %v %v", rows, err)
	}
}
