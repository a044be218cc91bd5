package staffhandler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/auth"
	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/handlers/handlertest"
)

type memoryStaff struct {
	mu   sync.Mutex
	rows map[string]staff.Staff
}

func (m *memoryStaff) Get(_ context.Context, _ string, staffID string) (staff.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[staffID]
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, nil
}

func (m *memoryStaff) List(_ context.Context, _ string, filter staff.ListFilter) ([]staff.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []staff.Staff{}
	for _, s := range m.rows {
		if filter.Status == "" || s.Status == filter.Status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStaff) Create(_ context.Context, _ string, in staff.Staff) (staff.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = fmt.Sprintf("staff-%d", len(m.rows)+1)
	m.rows[in.ID] = in
	return in, nil
}

func (m *memoryStaff) IDByUserID(context.Context, string, string) (string, error) {
	return "", staff.ErrNotFound
}

func newRouter(t *testing.T) (http.Handler, *handlertest.Audit) {
	t.Helper()
	auditLog := &handlertest.Audit{}
	users := handlertest.Users{
		"7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a": handlertest.Clinic,
		"2a3b4c5d-6e7f-4a8b-9c0d-1e2f3a4b5c6d": "clinic-2",
	}
	h := NewHandler(staff.NewService(&memoryStaff{rows: map[string]staff.Staff{}}), handlertest.RolePerms{}, users, auditLog)
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r, auditLog
}

func TestCreateAndFetchStaff(t *testing.T) {
	router, auditLog := newRouter(t)
	admin := handlertest.User("admin-1", auth.RoleAdmin)

	rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/staff", &admin, map[string]any{
		"firstName": "Asha", "lastName": "Rao", "role": "Therapist", "basicSalary": 20000, "joinedOn": "2023-06-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Staff staff.Staff `json:"staff"`
	}
	handlertest.Decode(t, rec, &out)
	if out.Staff.Status != staff.StatusActive || out.Staff.JoinedOn == nil {
		t.Fatalf("unexpected staff %+v", out.Staff)
	}
	if len(auditLog.Actions()) != 1 {
		t.Fatalf("expected audit entry, got %v", auditLog.Actions())
	}

	get := handlertest.Do(t, router, http.MethodGet, "/api/v1/staff/"+out.Staff.ID, &admin, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.Code)
	}
	if missing := handlertest.Do(t, router, http.MethodGet, "/api/v1/staff/none", &admin, nil); missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
	list := handlertest.Do(t, router, http.MethodGet, "/api/v1/staff?status=active", &admin, nil)
	var listed struct {
		Staff []staff.Staff `json:"staff"`
	}
	handlertest.Decode(t, list, &listed)
	if len(listed.Staff) != 1 {
		t.Fatalf("expected one member, got %d", len(listed.Staff))
	}
}

func TestCreateStaffValidation(t *testing.T) {
	router, _ := newRouter(t)
	admin := handlertest.User("admin-1", auth.RoleAdmin)
	manager := handlertest.User("manager-1", auth.RoleManager)

	cases := []struct {
		name   string
		user   auth.UserContext
		body   map[string]any
		status int
	}{
		{name: "missing role", user: admin, body: map[string]any{"firstName": "Asha"}, status: http.StatusBadRequest},
		{name: "bad email", user: admin, body: map[string]any{"firstName": "Asha", "role": "Cook", "email": "nope"}, status: http.StatusBadRequest},
		{name: "negative salary", user: admin, body: map[string]any{"firstName": "Asha", "role": "Cook", "basicSalary": -1}, status: http.StatusBadRequest},
		{name: "manager cannot create", user: manager, body: map[string]any{"firstName": "Asha", "role": "Cook"}, status: http.StatusForbidden},
		{name: "malformed user id", user: admin, body: map[string]any{"firstName": "Asha", "role": "Cook", "userId": "user-9"}, status: http.StatusBadRequest},
		{name: "user of another clinic", user: admin, body: map[string]any{"firstName": "Asha", "role": "Cook", "userId": "2a3b4c5d-6e7f-4a8b-9c0d-1e2f3a4b5c6d"}, status: http.StatusBadRequest},
		{name: "linked clinic user", user: admin, body: map[string]any{"firstName": "Asha", "role": "Cook", "userId": "7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a"}, status: http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handlertest.Do(t, router, http.MethodPost, "/api/v1/staff", &tc.user, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}
