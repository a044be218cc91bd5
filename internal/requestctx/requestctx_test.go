package requestctx

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestCallerSlotIsVisibleUpstream(t *testing.T) {
	outer := WithCallerSlot(context.Background())
	inner := context.WithValue(outer, ctxKey("other"), 1)
	SetCaller(inner, "user-1", "clinic-1")

	if got := GetCaller(outer); got.UserID != "user-1" || got.ClinicID != "clinic-1" {
		t.Fatalf("unexpected caller %+v", got)
	}

	SetCaller(context.Background(), "user-2", "clinic-2")
	if got := GetCaller(context.Background()); got != (Caller{}) {
		t.Fatalf("expected empty caller without slot, got %+v", got)
	}
}
