package audit

import (
	"strings"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	query, args := buildQuery("SELECT COUNT(1)", "clinic-1", Filter{Action: ActionPayrollPay, ActorID: "user-1"})
	if !strings.Contains(query, "clinic_id = $1") {
		t.Fatalf("expected tenant scope, got %q", query)
	}
	if !strings.Contains(query, "action = $2") || !strings.Contains(query, "actor_user_id::text = $3") {
		t.Fatalf("unexpected placeholders in %q", query)
	}
	if strings.Contains(query, "entity_type") {
		t.Fatalf("empty filters should be skipped: %q", query)
	}
	if len(args) != 3 || args[0] != "clinic-1" || args[1] != ActionPayrollPay || args[2] != "user-1" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalOptional(t *testing.T) {
	if out, err := marshalOptional(nil); err != nil || out != nil {
		t.Fatalf("expected nil payload, got %s (%v)", out, err)
	}
	out, err := marshalOptional(map[string]string{"status": "PAID"})
	if err != nil || string(out) != `{"status":"PAID"}` {
		t.Fatalf("unexpected payload %s (%v)", out, err)
	}
}
