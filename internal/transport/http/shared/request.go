package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"clinic/internal/domain/auth"
	"clinic/internal/transport/http/api"
)

// DecodeJSON reads the request body into dst and answers 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}

// ResolveTenant returns the caller's clinic. A clinic id supplied by the
// client must match it.
func ResolveTenant(w http.ResponseWriter, user auth.UserContext, clinicID, requestID string) (string, bool) {
	clinicID = strings.TrimSpace(clinicID)
	if clinicID != "" && clinicID != user.TenantID {
		api.Fail(w, http.StatusForbidden, "forbidden", "clinic mismatch", requestID)
		return "", false
	}
	return user.TenantID, true
}

func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if value := strings.TrimSpace(first); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// ActorDirectory answers whether a user id belongs to a clinic.
type ActorDirectory interface {
	UserInClinic(ctx context.Context, tenantID, userID string) (bool, error)
}

// ResolveActor returns the user recorded for an action: id when the client
// named one, the caller otherwise. A named user outside the clinic is a 400.
func ResolveActor(w http.ResponseWriter, r *http.Request, users ActorDirectory, user auth.UserContext, field, id, requestID string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" || id == user.UserID {
		return user.UserID, true
	}
	if users == nil {
		return id, true
	}
	ok, err := users.UserInClinic(r.Context(), user.TenantID, id)
	if err != nil {
		api.Internal(w, requestID, "actor lookup", err)
		return "", false
	}
	if !ok {
		v := NewValidator()
		v.Add(field, "must reference a user of this clinic")
		v.Reject(w, requestID)
		return "", false
	}
	return id, true
}

// QueryInt parses an optional integer query parameter.
func QueryInt(v *Validator, r *http.Request, name string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(name, "must be a whole number")
		return 0
	}
	return n
}
