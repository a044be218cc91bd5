// Package handlertest holds helpers shared by the HTTP handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/transport/http/middleware"
)

const Clinic = "clinic-1"

// RolePerms answers permission checks from the built-in role table; tests
// put the role name in UserContext.RoleID.
type RolePerms struct{}

func (RolePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	return auth.RoleHasPermission(roleID, permission), nil
}

func User(userID, role string) auth.UserContext {
	return auth.UserContext{UserID: userID, TenantID: Clinic, RoleID: role, RoleName: role}
}

// Users is an in-memory ActorDirectory mapping user id to clinic id.
type Users map[string]string

func (u Users) UserInClinic(_ context.Context, tenantID, userID string) (bool, error) {
	clinic, ok := u[userID]
	return ok && clinic == tenantID, nil
}

type Audit struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (a *Audit) Record(_ context.Context, _ string, e audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, e)
	return nil
}

// Actions lists the recorded actions in order.
func (a *Audit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}

// Do sends one request as user through handler. A nil user sends it anonymously.
func Do(t *testing.T, handler http.Handler, method, path string, user *auth.UserContext, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("encode body: %v", err)
			}
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the recorded body into dst.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of a failure body.
func ErrorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	Decode(t, rec, &body)
	return body.Error
}
