package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic/internal/domain/auth"
)

type leavePayload struct {
	StaffID   string `json:"staffId" validate:"required"`
	LeaveType string `json:"leaveType" validate:"required,oneof=SICK CASUAL EARNED UNPAID"`
	Month     int    `json:"month" validate:"omitempty,min=1,max=12"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	v.Struct(leavePayload{LeaveType: "HOLIDAY", Month: 13})

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", issues)
	}
	want := map[string]string{
		"leaveType": "must be one of: SICK, CASUAL, EARNED, UNPAID",
		"month":     "must be at most 12",
		"staffId":   "is required",
	}
	for _, issue := range issues {
		if want[issue.Field] != issue.Reason {
			t.Fatalf("unexpected issue %+v", issue)
		}
	}
}

func TestRejectWritesFieldDetails(t *testing.T) {
	v := NewValidator()
	v.Required("staffId", " ", "is required")
	v.Date("startDate", "03/01/2024")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error   string `json:"error"`
		Details struct {
			Fields []ValidationIssue `json:"fields"`
		} `json:"details"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Details.Fields) != 2 || !strings.Contains(body.Error, "staffId is required") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestResolveTenant(t *testing.T) {
	user := auth.UserContext{UserID: "u1", TenantID: "clinic-1"}

	rec := httptest.NewRecorder()
	if tenant, ok := ResolveTenant(rec, user, "", ""); !ok || tenant != "clinic-1" {
		t.Fatalf("expected caller clinic, got %q %v", tenant, ok)
	}
	if _, ok := ResolveTenant(rec, user, "clinic-2", ""); ok {
		t.Fatal("expected mismatch to be rejected")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote host, got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}
}

func TestParsePaginationClamps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-1", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 0 {
		t.Fatalf("unexpected pagination %+v", p)
	}
}

func TestParsePaginationPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&page=3", nil)
	if p := ParsePagination(req, 50, 200); p.Limit != 20 || p.Offset != 40 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=20&page=3&offset=5", nil)
	if p := ParsePagination(req, 50, 200); p.Offset != 5 {
		t.Fatalf("explicit offset should win, got %+v", p)
	}
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-03-01")
	if err != nil || !day.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s (%v)", day, err)
	}
	ts, err := ParseDate("2024-03-01T10:00:00+05:30")
	if err != nil || ts.Location() != time.UTC || ts.Hour() != 4 {
		t.Fatalf("expected UTC timestamp, got %s (%v)", ts, err)
	}
	if _, err := ParseDate("01/03/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
	if zero, err := ParseDate(" "); err != nil || !zero.IsZero() {
		t.Fatalf("expected zero time for blank input, got %s (%v)", zero, err)
	}
}
