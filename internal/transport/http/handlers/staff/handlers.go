package staffhandler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/staff"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Service *staff.Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Users   shared.ActorDirectory
}

func NewHandler(service *staff.Service, perms middleware.PermissionStore, users shared.ActorDirectory, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Users: users, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermStaffRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermStaffWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermStaffRead, h.Perms)).Get("/{staffID}", h.handleGet)
	})
}

type createRequest struct {
	FirstName       string          `json:"firstName" validate:"required,max=100"`
	LastName        string          `json:"lastName" validate:"max=100"`
	Role            string          `json:"role" validate:"required,max=100"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Phone           string          `json:"phone" validate:"max=30"`
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	Allowances      decimal.Decimal `json:"allowances"`
	HRA             decimal.Decimal `json:"hra"`
	OtherAllowances decimal.Decimal `json:"otherAllowances"`
	JoinedOn        string          `json:"joinedOn"`
	Status          string          `json:"status"`
	UserID          string          `json:"userId" validate:"omitempty,uuid"`
	ClinicID        string          `json:"clinicId"`
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
	status := strings.ToUpper(strings.TrimSpace(query.Get("status")))
	v.Enum("status", status, []string{staff.StatusActive, staff.StatusInactive}, "must be ACTIVE or INACTIVE")
	if v.Reject(w, requestID) {
		return
	}
	page := shared.ParsePagination(r, 100, 500)

	members, err := h.Service.List(ctx, user.TenantID, staff.ListFilter{
		Status: status,
		Role:   strings.TrimSpace(query.Get("role")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		api.Internal(w, requestID, "staff list", err)
		return
	}
	api.OK(w, map[string]any{"staff": members})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	member, err := h.Service.Get(ctx, user.TenantID, chi.URLParam(r, "staffID"))
	if errors.Is(err, staff.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "Staff not found", requestID)
		return
	}
	if err != nil {
		api.Internal(w, requestID, "staff get", err)
		return
	}
	api.OK(w, map[string]any{"staff": member})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	tenantID, ok := shared.ResolveTenant(w, user, payload.ClinicID, requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	joined := v.OptionalDate("joinedOn", payload.JoinedOn)
	v.Enum("status", payload.Status, []string{staff.StatusActive, staff.StatusInactive}, "must be ACTIVE or INACTIVE")
	if v.Reject(w, requestID) {
		return
	}
	if payload.UserID != "" && h.Users != nil {
		linked, err := h.Users.UserInClinic(ctx, tenantID, payload.UserID)
		if err != nil {
			api.Internal(w, requestID, "staff user lookup", err)
			return
		}
		if !linked {
			v.Add("userId", "must reference a user of this clinic")
			v.Reject(w, requestID)
			return
		}
	}

	in := staff.Staff{
		UserID:          payload.UserID,
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Role:            payload.Role,
		Email:           strings.TrimSpace(payload.Email),
		Phone:           strings.TrimSpace(payload.Phone),
		BasicSalary:     payload.BasicSalary,
		Allowances:      payload.Allowances,
		HRA:             payload.HRA,
		OtherAllowances: payload.OtherAllowances,
		Status:          strings.ToUpper(strings.TrimSpace(payload.Status)),
	}
	if !joined.IsZero() {
		in.JoinedOn = ptr(joined)
	}
	member, err := h.Service.Create(ctx, tenantID, in)
	if errors.Is(err, staff.ErrInvalidInput) {
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
		return
	}
	if err != nil {
		api.Internal(w, requestID, "staff create", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionStaffCreate,
		EntityType: "staff",
		EntityID:   member.ID,
		After:      member,
	})
	api.Created(w, map[string]any{"staff": member})
}

func ptr(t time.Time) *time.Time {
	return &t
}
