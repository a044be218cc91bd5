package reportshandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/auth"
	"clinic/internal/domain/reports"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Reporter interface {
	StaffDashboard(ctx context.Context, tenantID, userID string) (reports.StaffDashboard, error)
	ClinicDashboard(ctx context.Context, tenantID string) (reports.ClinicDashboard, error)
	JobRuns(ctx context.Context, tenantID string, filter reports.JobRunFilter) ([]reports.JobRun, int, error)
}

type Handler struct {
	Service Reporter
	Perms   middleware.PermissionStore
}

func NewHandler(service Reporter, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/jobs", h.handleJobRuns)
	})
}

// handleDashboard answers STAFF callers with their own summary and every
// other role with the clinic summary.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	if user.RoleName == auth.RoleStaff {
		out, err := h.Service.StaffDashboard(ctx, user.TenantID, user.UserID)
		if errors.Is(err, reports.ErrNoStaffRecord) {
			api.Fail(w, http.StatusNotFound, "not_found", "Staff not found", requestID)
			return
		}
		if err != nil {
			api.Internal(w, requestID, "staff dashboard", err)
			return
		}
		api.OK(w, out)
		return
	}

	out, err := h.Service.ClinicDashboard(ctx, user.TenantID)
	if err != nil {
		api.Internal(w, requestID, "clinic dashboard", err)
		return
	}
	api.OK(w, out)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := reports.JobRunFilter{
		JobType: strings.TrimSpace(r.URL.Query().Get("jobType")),
		Status:  strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	runs, total, err := h.Service.JobRuns(ctx, user.TenantID, filter)
	if err != nil {
		api.Internal(w, requestID, "list job runs", err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.OK(w, map[string]any{"runs": runs, "total": total})
}
