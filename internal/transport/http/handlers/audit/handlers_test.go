package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/transport/http/handlers/handlertest"
)

type memoryEvents struct {
	events []audit.Event
	last   audit.Filter
}

func (m *memoryEvents) match(filter audit.Filter) []audit.Event {
	out := []audit.Event{}
	for _, e := range m.events {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (m *memoryEvents) List(_ context.Context, _ string, filter audit.Filter) ([]audit.Event, error) {
	m.last = filter
	out := m.match(filter)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryEvents) Count(_ context.Context, _ string, filter audit.Filter) (int, error) {
	return len(m.match(filter)), nil
}

func newRouter(store *memoryEvents) http.Handler {
	h := NewHandler(store, handlertest.RolePerms{})
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func seedEvents() *memoryEvents {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &memoryEvents{events: []audit.Event{
		{ID: "e1", ActorID: "manager-1", Action: audit.ActionLeaveReview, EntityType: "leave_request", EntityID: "leave-1", CreatedAt: at},
		{ID: "e2", ActorID: "acct-1", Action: audit.ActionPayrollGenerate, EntityType: "payroll", EntityID: "payroll-1", CreatedAt: at},
		{ID: "e3", ActorID: "acct-1", Action: audit.ActionPayrollPay, EntityType: "payroll", EntityID: "payroll-1", CreatedAt: at},
	}}
}

func TestListEventsFiltersAndCounts(t *testing.T) {
	store := seedEvents()
	router := newRouter(store)
	admin := handlertest.User("admin-1", auth.RoleAdmin)

	rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/audit?entityId=payroll-1&limit=1", &admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Events []audit.Event `json:"events"`
		Total  int           `json:"total"`
	}
	handlertest.Decode(t, rec, &out)
	if out.Total != 2 || len(out.Events) != 1 {
		t.Fatalf("expected 1 of 2 events, got %d of %d", len(out.Events), out.Total)
	}
	if rec.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("unexpected total header %q", rec.Header().Get("X-Total-Count"))
	}
	if store.last.Limit != 1 {
		t.Fatalf("expected limit to reach the store, got %+v", store.last)
	}

	manager := handlertest.User("manager-1", auth.RoleManager)
	if rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/audit", &manager, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestExportEventsWritesCSV(t *testing.T) {
	router := newRouter(seedEvents())
	admin := handlertest.User("admin-1", auth.RoleAdmin)

	rec := handlertest.Do(t, router, http.MethodGet, "/api/v1/audit/export?action=payroll.pay", &admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "e3" || rows[1][7] != "2024-03-01T09:00:00Z" {
		t.Fatalf("unexpected csv rows %v", rows)
	}
}
