package shared

import (
	"context"
	"log/slog"
	"net/http"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/requestctx"
)

type Auditor interface {
	Record(ctx context.Context, tenantID string, e audit.Entry) error
}

// RecordAudit stores e for the caller. Failures are logged and never fail the request.
func RecordAudit(r *http.Request, a Auditor, user auth.UserContext, e audit.Entry) {
	if a == nil {
		return
	}
	e.ActorID = user.UserID
	e.RequestID = requestctx.GetRequestID(r.Context())
	e.IP = ClientIP(r)
	if err := a.Record(r.Context(), user.TenantID, e); err != nil {
		slog.Warn("audit "+e.Action+" failed", "err", err)
	}
}
