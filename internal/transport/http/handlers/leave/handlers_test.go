package leavehandler

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/leave"
	"clinic/internal/domain/leave/leavetest"
	"clinic/internal/domain/staff"
	"clinic/internal/platform/metrics"
	"clinic/internal/transport/http/handlers/handlertest"
)

var (
	staffUser   = handlertest.User("user-1", auth.RoleStaff)
	managerUser = handlertest.User("manager-1", auth.RoleManager)
	adminUser   = handlertest.User("admin-1", auth.RoleAdmin)

	deputyID   = "3f2b7c1e-5a4d-4e8f-9b6a-0c1d2e3f4a5b"
	outsiderID = "8a9b0c1d-2e3f-4a5b-8c7d-6e5f4a3b2c1d"
	directory  = handlertest.Users{deputyID: handlertest.Clinic, outsiderID: "clinic-2"}
)

func newRouter(t *testing.T) (http.Handler, *leavetest.Store, *handlertest.Audit) {
	t.Helper()
	store := leavetest.New()
	store.AddStaff(handlertest.Clinic, staff.Summary{ID: "staff-1", FirstName: "Asha", LastName: "Rao", Role: "Therapist"}, "user-1")
	store.AddStaff(handlertest.Clinic, staff.Summary{ID: "staff-2", FirstName: "Ravi", LastName: "Nair", Role: "Receptionist"}, "user-2")
	store.AddUser("manager-1", "Dr. Mehta")
	store.PutBalance(leave.Balance{StaffID: "staff-1", Year: 2024, SickLeaveBalance: 5, CasualLeaveBalance: 2, EarnedLeaveBalance: 10})

	svc := leave.NewService(store)
	svc.Now = func() time.Time { return time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC) }
	auditLog := &handlertest.Audit{}
	h := NewHandler(svc, handlertest.RolePerms{}, directory, auditLog, nil, metrics.New(), leave.Entitlements{Sick: 12, Casual: 12, Earned: 15})

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r, store, auditLog
}

func applyBody(staffID, leaveType, start, end string) map[string]string {
	return map[string]string{"staffId": staffID, "leaveType": leaveType, "startDate": start, "endDate": end, "reason": "fever"}
}

func applyLeave(t *testing.T, router http.Handler, body map[string]string) leave.Request {
	t.Helper()
	rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves", &staffUser, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Leave leave.Request `json:"leave"`
	}
	handlertest.Decode(t, rec, &out)
	return out.Leave
}

func TestApplyCreatesPendingLeave(t *testing.T) {
	router, _, auditLog := newRouter(t)

	req := applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-03"))
	if req.Status != leave.StatusPending || req.TotalDays != 3 {
		t.Fatalf("unexpected leave %+v", req)
	}
	if req.Staff == nil || req.Staff.Role != "Therapist" {
		t.Fatalf("expected staff summary, got %+v", req.Staff)
	}
	if !slices.Equal(auditLog.Actions(), []string{audit.ActionLeaveCreate}) {
		t.Fatalf("unexpected audit trail %v", auditLog.Actions())
	}
}

func TestApplyRejections(t *testing.T) {
	router, _, _ := newRouter(t)
	applyLeave(t, router, applyBody("staff-1", "EARNED", "2024-04-10", "2024-04-12"))

	cases := []struct {
		name    string
		user    auth.UserContext
		body    any
		status  int
		message string
	}{
		{name: "missing fields", user: staffUser, body: map[string]string{"staffId": "staff-1"}, status: http.StatusBadRequest},
		{name: "unknown type", user: staffUser, body: applyBody("staff-1", "HOLIDAY", "2024-03-01", "2024-03-02"), status: http.StatusBadRequest},
		{name: "end before start", user: staffUser, body: applyBody("staff-1", "SICK", "2024-03-05", "2024-03-01"), status: http.StatusBadRequest, message: "End date must be on or after start date"},
		{name: "end time before start time", user: staffUser, body: applyBody("staff-1", "SICK", "2024-03-02T10:00:00Z", "2024-03-02T09:00:00Z"), status: http.StatusBadRequest, message: "End date must be on or after start date"},
		{name: "insufficient balance", user: staffUser, body: applyBody("staff-1", "CASUAL", "2024-03-01", "2024-03-03"), status: http.StatusBadRequest, message: "Insufficient casual leave balance"},
		{name: "overlap", user: staffUser, body: applyBody("staff-1", "SICK", "2024-04-12", "2024-04-13"), status: http.StatusBadRequest, message: "Leave request overlaps with an existing request"},
		{name: "no balance", user: adminUser, body: applyBody("staff-2", "UNPAID", "2024-03-01", "2024-03-01"), status: http.StatusNotFound, message: "Leave balance not found for current year"},
		{name: "other staff", user: staffUser, body: applyBody("staff-2", "SICK", "2024-03-01", "2024-03-01"), status: http.StatusForbidden},
		{name: "clinic mismatch", user: staffUser, body: map[string]string{"staffId": "staff-1", "leaveType": "SICK", "startDate": "2024-03-01", "endDate": "2024-03-01", "clinicId": "clinic-2"}, status: http.StatusForbidden},
		{name: "malformed json", user: staffUser, body: `{"staffId":`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves", &tc.user, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.message != "" {
				if got := handlertest.ErrorMessage(t, rec); got != tc.message {
					t.Fatalf("expected %q, got %q", tc.message, got)
				}
			}
		})
	}
}

func TestApplyRequiresAuthentication(t *testing.T) {
	router, _, _ := newRouter(t)
	rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves", nil, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-01"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestApproveCascadesOnce(t *testing.T) {
	router, store, auditLog := newRouter(t)
	req := applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-03"))

	rec := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &managerUser, map[string]string{
		"leaveId": req.ID, "action": "APPROVED", "reviewNotes": "get well",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out leave.ReviewResult
	handlertest.Decode(t, rec, &out)
	if out.Message != leave.MessageApproved || out.Leave.Status != leave.StatusApproved {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Leave.ReviewedBy != "manager-1" || out.Leave.ReviewerName != "Dr. Mehta" {
		t.Fatalf("expected reviewer from caller, got %+v", out.Leave)
	}

	days := store.Attendance("staff-1")
	if len(days) != 3 {
		t.Fatalf("expected 3 attendance rows, got %d", len(days))
	}
	for _, d := range days {
		if d.Status != attendance.StatusLeave || d.Notes != "SICK leave" {
			t.Fatalf("unexpected attendance %+v", d)
		}
	}
	balance, _ := store.Balance("staff-1", 2024)
	if balance.SickLeaveUsed != 3 || balance.SickLeaveBalance != 2 {
		t.Fatalf("unexpected balance %+v", balance)
	}

	again := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &managerUser, map[string]string{"leaveId": req.ID, "action": "APPROVED"})
	if again.Code != http.StatusBadRequest || handlertest.ErrorMessage(t, again) != "Leave already processed" {
		t.Fatalf("expected already processed, got %d: %s", again.Code, again.Body.String())
	}
	if balance, _ := store.Balance("staff-1", 2024); balance.SickLeaveUsed != 3 {
		t.Fatalf("balance deducted twice: %+v", balance)
	}
	if !slices.Equal(auditLog.Actions(), []string{audit.ActionLeaveCreate, audit.ActionLeaveReview}) {
		t.Fatalf("unexpected audit trail %v", auditLog.Actions())
	}
}

func TestReviewRejections(t *testing.T) {
	router, _, _ := newRouter(t)
	req := applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-01"))

	cases := []struct {
		name   string
		user   auth.UserContext
		body   map[string]string
		status int
	}{
		{name: "staff cannot review", user: staffUser, body: map[string]string{"leaveId": req.ID, "action": "APPROVED"}, status: http.StatusForbidden},
		{name: "missing action", user: managerUser, body: map[string]string{"leaveId": req.ID}, status: http.StatusBadRequest},
		{name: "bad action", user: managerUser, body: map[string]string{"leaveId": req.ID, "action": "CANCELLED"}, status: http.StatusBadRequest},
		{name: "unknown leave", user: managerUser, body: map[string]string{"leaveId": "missing", "action": "REJECTED"}, status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &tc.user, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestApplyCountsTimestampsAsCalendarDays(t *testing.T) {
	router, _, _ := newRouter(t)
	req := applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-05T01:00:00Z", "2024-03-05T23:00:00Z"))
	if req.TotalDays != 1 {
		t.Fatalf("expected one day, got %d", req.TotalDays)
	}
	if !req.StartDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) || !req.EndDate.Equal(req.StartDate) {
		t.Fatalf("expected dates truncated to the day, got %s..%s", req.StartDate, req.EndDate)
	}
}

func TestReviewChecksNamedReviewer(t *testing.T) {
	router, store, _ := newRouter(t)
	req := applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-01"))

	cases := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{name: "malformed reviewer", body: map[string]string{"leaveId": req.ID, "action": "APPROVED", "reviewedBy": "abc"}, status: http.StatusBadRequest},
		{name: "reviewer of another clinic", body: map[string]string{"leaveId": req.ID, "action": "APPROVED", "reviewedBy": outsiderID}, status: http.StatusBadRequest},
		{name: "unknown marker", body: map[string]string{"leaveId": req.ID, "action": "APPROVED", "markedBy": "11111111-2222-4333-8444-555555555555"}, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &managerUser, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
	if days := store.Attendance("staff-1"); len(days) != 0 {
		t.Fatalf("rejected reviews must not write attendance, got %v", days)
	}

	rec := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &managerUser, map[string]string{
		"leaveId": req.ID, "action": "APPROVED", "reviewedBy": deputyID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out leave.ReviewResult
	handlertest.Decode(t, rec, &out)
	if out.Leave.ReviewedBy != deputyID {
		t.Fatalf("expected named reviewer, got %q", out.Leave.ReviewedBy)
	}
	if days := store.Attendance("staff-1"); len(days) != 1 || days[0].MarkedBy != "manager-1" {
		t.Fatalf("expected attendance marked by the caller, got %+v", days)
	}
}

func TestRejectLeavesBalanceAndAttendance(t *testing.T) {
	router, store, _ := newRouter(t)
	req := applyLeave(t, router, applyBody("staff-1", "EARNED", "2024-03-01", "2024-03-02"))

	rec := handlertest.Do(t, router, http.MethodPatch, "/api/v1/leaves", &managerUser, map[string]string{"leaveId": req.ID, "action": "rejected"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out leave.ReviewResult
	handlertest.Decode(t, rec, &out)
	if out.Message != leave.MessageRejected {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if len(store.Attendance("staff-1")) != 0 {
		t.Fatal("rejection must not write attendance")
	}
	if balance, _ := store.Balance("staff-1", 2024); balance.EarnedLeaveUsed != 0 {
		t.Fatalf("rejection must not deduct, got %+v", balance)
	}
}

func TestListScopesStaffCallers(t *testing.T) {
	router, _, _ := newRouter(t)
	applyLeave(t, router, applyBody("staff-1", "SICK", "2024-03-01", "2024-03-01"))

	rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves?status=ALL", &staffUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out leave.ListResult
	handlertest.Decode(t, rec, &out)
	if len(out.Leaves) != 1 || out.LeaveBalance == nil || out.LeaveBalance.SickLeaveBalance != 5 {
		t.Fatalf("expected own leave with balance, got %+v", out)
	}

	other := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves?staffId=staff-2", &staffUser, nil)
	if other.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another staff member, got %d", other.Code)
	}

	all := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves", &managerUser, nil)
	var managerView leave.ListResult
	handlertest.Decode(t, all, &managerView)
	if len(managerView.Leaves) != 1 || managerView.LeaveBalance != nil {
		t.Fatalf("unexpected manager view %+v", managerView)
	}

	bad := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves?status=DONE", &managerUser, nil)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", bad.Code)
	}
}

func TestBalanceEndpoints(t *testing.T) {
	router, store, auditLog := newRouter(t)

	rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves/balances", &adminUser, map[string]any{
		"staffId": "staff-2", "sickLeaveBalance": 6, "casualLeaveBalance": 4, "earnedLeaveBalance": 8,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if b, ok := store.Balance("staff-2", 2024); !ok || b.CasualLeaveBalance != 4 {
		t.Fatalf("unexpected stored balance %+v", b)
	}

	negative := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves/balances", &adminUser, map[string]any{"staffId": "staff-2", "sickLeaveBalance": -1})
	if negative.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative balance, got %d", negative.Code)
	}

	get := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves/balances?staffId=staff-2&year=2024", &managerUser, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", get.Code, get.Body.String())
	}
	missing := handlertest.Do(t, router, http.MethodGet, "/api/v1/leaves/balances?staffId=staff-2&year=2023", &managerUser, nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
	if !slices.Contains(auditLog.Actions(), audit.ActionLeaveBalanceSet) {
		t.Fatalf("expected balance audit, got %v", auditLog.Actions())
	}
}

func TestRunBalancesSeedsMissingRows(t *testing.T) {
	router, store, _ := newRouter(t)

	rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves/balances/run", &adminUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary leave.BalanceRunSummary
	handlertest.Decode(t, rec, &summary)
	if summary.Year != 2024 || summary.BalancesCreated != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if b, ok := store.Balance("staff-2", 2024); !ok || b.EarnedLeaveBalance != 15 {
		t.Fatalf("expected seeded balance, got %+v", b)
	}

	denied := handlertest.Do(t, router, http.MethodPost, "/api/v1/leaves/balances/run", &managerUser, nil)
	if denied.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager, got %d", denied.Code)
	}
}
