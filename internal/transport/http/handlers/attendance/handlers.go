package attendancehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

// StaffResolver maps a login to its staff record.
type StaffResolver interface {
	IDByUserID(ctx context.Context, tenantID, userID string) (string, error)
}

type Handler struct {
	Service *attendance.Service
	Staff   StaffResolver
	Perms   middleware.PermissionStore
}

func NewHandler(service *attendance.Service, resolver StaffResolver, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Staff: resolver, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/attendance", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	query := r.URL.Query()
	v := shared.NewValidator()
	filter := attendance.ListFilter{
		StaffID: strings.TrimSpace(query.Get("staffId")),
		From:    v.OptionalDate("from", query.Get("from")),
		To:      v.OptionalDate("to", query.Get("to")),
	}
	if v.Reject(w, requestID) {
		return
	}
	page := shared.ParsePagination(r, 200, 1000)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	if user.RoleName == auth.RoleStaff {
		own, err := h.Staff.IDByUserID(ctx, user.TenantID, user.UserID)
		if err != nil && !errors.Is(err, staff.ErrNotFound) {
			api.Internal(w, requestID, "attendance staff lookup", err)
			return
		}
		if own == "" || (filter.StaffID != "" && filter.StaffID != own) {
			api.Fail(w, http.StatusForbidden, "forbidden", "staff may only view their own attendance", requestID)
			return
		}
		filter.StaffID = own
	}

	records, err := h.Service.List(ctx, user.TenantID, filter)
	if errors.Is(err, attendance.ErrInvalidRange) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "from must be on or before to", requestID)
		return
	}
	if err != nil {
		api.Internal(w, requestID, "attendance list", err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	api.OK(w, map[string]any{"attendance": records})
}
