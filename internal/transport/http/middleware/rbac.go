package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"clinic/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission lets the request through only when the caller's role
// carries permission.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)
			user, ok := GetUser(ctx)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(ctx, user.RoleID, permission)
			if err != nil {
				slog.Error("permission lookup failed", "permission", permission, "roleId", user.RoleID, "requestId", requestID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
				return
			}
			if !allowed {
				slog.Info("permission denied", "permission", permission, "userId", user.UserID, "clinicId", user.TenantID, "requestId", requestID)
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
