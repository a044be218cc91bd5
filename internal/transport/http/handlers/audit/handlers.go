package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Lister interface {
	List(ctx context.Context, tenantID string, filter audit.Filter) ([]audit.Event, error)
	Count(ctx context.Context, tenantID string, filter audit.Filter) (int, error)
}

type Handler struct {
	Service Lister
	Perms   middleware.PermissionStore
}

func NewHandler(service Lister, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditRead, h.Perms))
		r.Get("/", h.handleListEvents)
		r.Get("/export", h.handleExportEvents)
	})
}

func filterFromQuery(r *http.Request) audit.Filter {
	query := r.URL.Query()
	return audit.Filter{
		Action:     strings.TrimSpace(query.Get("action")),
		EntityType: strings.TrimSpace(query.Get("entityType")),
		EntityID:   strings.TrimSpace(query.Get("entityId")),
		ActorID:    strings.TrimSpace(query.Get("actorId")),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	filter := filterFromQuery(r)
	total, err := h.Service.Count(ctx, user.TenantID, filter)
	if err != nil {
		slog.Warn("audit count failed", "err", err)
	}
	page := shared.ParsePagination(r, 100, 500)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	events, err := h.Service.List(ctx, user.TenantID, filter)
	if err != nil {
		api.Internal(w, requestID, "audit list", err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.OK(w, map[string]any{"events": events, "total": total})
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	events, err := h.Service.List(ctx, user.TenantID, filterFromQuery(r))
	if err != nil {
		api.Internal(w, requestID, "audit export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
