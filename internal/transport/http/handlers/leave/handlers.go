package leavehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/leave"
	"clinic/internal/platform/jobs"
	"clinic/internal/platform/metrics"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Service      *leave.Service
	Perms        middleware.PermissionStore
	Audit        shared.Auditor
	Jobs         *jobs.Service
	Metrics      *metrics.Collector
	Entitlements leave.Entitlements
	Users        shared.ActorDirectory
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore, users shared.ActorDirectory, auditor shared.Auditor, jobsSvc *jobs.Service, collector *metrics.Collector, defaults leave.Entitlements) *Handler {
	return &Handler{Service: service, Perms: perms, Users: users, Audit: auditor, Jobs: jobsSvc, Metrics: collector, Entitlements: defaults}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/", h.handleApply)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Patch("/", h.handleReview)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleGetBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveBalances, h.Perms)).Post("/balances", h.handleSetBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveBalances, h.Perms)).Post("/balances/run", h.handleRunBalances)
	})
}

type applyRequest struct {
	StaffID   string `json:"staffId" validate:"required"`
	LeaveType string `json:"leaveType" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason" validate:"max=2000"`
	ClinicID  string `json:"clinicId"`
}

type reviewRequest struct {
	LeaveID     string `json:"leaveId" validate:"required"`
	Action      string `json:"action" validate:"required"`
	ReviewNotes string `json:"reviewNotes" validate:"max=2000"`
	ReviewedBy  string `json:"reviewedBy" validate:"omitempty,uuid"`
	MarkedBy    string `json:"markedBy" validate:"omitempty,uuid"`
	ClinicID    string `json:"clinicId"`
}

type balanceRequest struct {
	StaffID            string `json:"staffId" validate:"required"`
	Year               int    `json:"year" validate:"omitempty,gte=2000,lte=2100"`
	SickLeaveBalance   int    `json:"sickLeaveBalance" validate:"gte=0"`
	CasualLeaveBalance int    `json:"casualLeaveBalance" validate:"gte=0"`
	EarnedLeaveBalance int    `json:"earnedLeaveBalance" validate:"gte=0"`
	ClinicID           string `json:"clinicId"`
}

// ownStaffID returns the staff record a STAFF-role caller is bound to. Other
// roles act for any staff member of their clinic and get "".
func (h *Handler) ownStaffID(ctx context.Context, user auth.UserContext) (string, error) {
	if user.RoleName != auth.RoleStaff {
		return "", nil
	}
	return h.Service.StaffIDForUser(ctx, user.TenantID, user.UserID)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload applyRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	tenantID, ok := shared.ResolveTenant(w, user, payload.ClinicID, requestID)
	if !ok {
		return
	}

	v := shared.NewValidator()
	v.Struct(payload)
	v.Enum("leaveType", payload.LeaveType, leave.Types, "must be one of: "+strings.Join(leave.Types, ", "))
	start := v.OptionalDate("startDate", payload.StartDate)
	end := v.OptionalDate("endDate", payload.EndDate)
	if v.Reject(w, requestID) {
		return
	}

	own, err := h.ownStaffID(ctx, user)
	if err != nil && !errors.Is(err, leave.ErrStaffNotFound) {
		api.Internal(w, requestID, "leave staff lookup", err)
		return
	}
	if user.RoleName == auth.RoleStaff && own != payload.StaffID {
		api.Fail(w, http.StatusForbidden, "forbidden", "staff may only apply for their own leave", requestID)
		return
	}

	req, err := h.Service.Apply(ctx, tenantID, leave.ApplyInput{
		StaffID:   payload.StaffID,
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		writeError(w, requestID, "leave apply", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionLeaveCreate,
		EntityType: "leave_request",
		EntityID:   req.ID,
		After:      req,
	})
	h.Metrics.Inc(audit.ActionLeaveCreate)
	api.Created(w, map[string]any{"leave": req})
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
	tenantID, ok := shared.ResolveTenant(w, user, query.Get("clinicId"), requestID)
	if !ok {
		return
	}

	filter := leave.ListFilter{
		StaffID:   strings.TrimSpace(query.Get("staffId")),
		Status:    strings.TrimSpace(query.Get("status")),
		LeaveType: strings.TrimSpace(query.Get("leaveType")),
	}
	v := shared.NewValidator()
	v.Enum("status", filter.Status, []string{leave.StatusAll, leave.StatusPending, leave.StatusApproved, leave.StatusRejected}, "must be ALL, PENDING, APPROVED or REJECTED")
	v.Enum("leaveType", filter.LeaveType, leave.Types, "must be one of: "+strings.Join(leave.Types, ", "))
	if v.Reject(w, requestID) {
		return
	}

	if user.RoleName == auth.RoleStaff {
		own, err := h.ownStaffID(ctx, user)
		if err != nil && !errors.Is(err, leave.ErrStaffNotFound) {
			api.Internal(w, requestID, "leave staff lookup", err)
			return
		}
		if own == "" || (filter.StaffID != "" && filter.StaffID != own) {
			api.Fail(w, http.StatusForbidden, "forbidden", "staff may only view their own leave", requestID)
			return
		}
		filter.StaffID = own
	}

	result, err := h.Service.List(ctx, tenantID, filter)
	if err != nil {
		writeError(w, requestID, "leave list", err)
		return
	}
	api.OK(w, result)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload reviewRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	tenantID, ok := shared.ResolveTenant(w, user, payload.ClinicID, requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	v.Enum("action", payload.Action, leave.ReviewActions, "must be APPROVED or REJECTED")
	if v.Reject(w, requestID) {
		return
	}
	reviewer, ok := shared.ResolveActor(w, r, h.Users, user, "reviewedBy", payload.ReviewedBy, requestID)
	if !ok {
		return
	}
	markedBy, ok := shared.ResolveActor(w, r, h.Users, user, "markedBy", payload.MarkedBy, requestID)
	if !ok {
		return
	}

	result, err := h.Service.Review(ctx, tenantID, user.UserID, leave.ReviewInput{
		LeaveID:     payload.LeaveID,
		Action:      payload.Action,
		ReviewNotes: payload.ReviewNotes,
		ReviewedBy:  reviewer,
		MarkedBy:    markedBy,
	})
	if err != nil {
		writeError(w, requestID, "leave review", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionLeaveReview,
		EntityType: "leave_request",
		EntityID:   result.Leave.ID,
		After:      result.Leave,
	})
	h.Metrics.Inc(audit.ActionLeaveReview + "." + strings.ToLower(result.Leave.Status))
	api.OK(w, result)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	query := r.URL.Query()
	tenantID, ok := shared.ResolveTenant(w, user, query.Get("clinicId"), requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	staffID := strings.TrimSpace(query.Get("staffId"))
	v.Required("staffId", staffID, "is required")
	year := shared.QueryInt(v, r, "year")
	if v.Reject(w, requestID) {
		return
	}

	if user.RoleName == auth.RoleStaff {
		own, err := h.ownStaffID(ctx, user)
		if err != nil && !errors.Is(err, leave.ErrStaffNotFound) {
			api.Internal(w, requestID, "leave staff lookup", err)
			return
		}
		if own != staffID {
			api.Fail(w, http.StatusForbidden, "forbidden", "staff may only view their own balance", requestID)
			return
		}
	}

	balance, err := h.Service.GetBalance(ctx, tenantID, staffID, year)
	if err != nil {
		writeError(w, requestID, "leave balance get", err)
		return
	}
	api.OK(w, map[string]any{"leaveBalance": balance})
}

func (h *Handler) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload balanceRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	tenantID, ok := shared.ResolveTenant(w, user, payload.ClinicID, requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	balance, err := h.Service.SetBalance(ctx, tenantID, leave.BalanceInput{
		StaffID:            payload.StaffID,
		Year:               payload.Year,
		SickLeaveBalance:   payload.SickLeaveBalance,
		CasualLeaveBalance: payload.CasualLeaveBalance,
		EarnedLeaveBalance: payload.EarnedLeaveBalance,
	})
	if err != nil {
		writeError(w, requestID, "leave balance set", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionLeaveBalanceSet,
		EntityType: "leave_balance",
		EntityID:   balance.ID,
		After:      balance,
	})
	api.Created(w, map[string]any{"leaveBalance": balance})
}

func (h *Handler) handleRunBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	run := h.BalanceJob()
	var (
		details any
		err     error
	)
	if h.Jobs != nil {
		details, err = h.Jobs.RunNow(ctx, jobs.JobLeaveBalances, user.TenantID, run)
	} else {
		details, err = run(ctx, user.TenantID)
	}
	if err != nil {
		api.Internal(w, requestID, "leave balance run", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionLeaveBalanceRun,
		EntityType: "job_run",
		EntityID:   jobs.JobLeaveBalances,
		After:      details,
	})
	api.OK(w, details)
}

// BalanceJob seeds missing current-year balances for one clinic. The server
// schedules the same function on LEAVE_BALANCE_INTERVAL.
func (h *Handler) BalanceJob() jobs.RunFunc {
	return func(ctx context.Context, tenantID string) (any, error) {
		return h.Service.EnsureYearBalances(ctx, tenantID, h.Entitlements)
	}
}

func writeError(w http.ResponseWriter, requestID, op string, err error) {
	var short *leave.InsufficientBalanceError
	switch {
	case errors.As(err, &short):
		api.Fail(w, http.StatusBadRequest, "insufficient_balance", short.Message(), requestID)
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "End date must be on or after start date", requestID)
	case errors.Is(err, leave.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	case errors.Is(err, leave.ErrOverlap):
		api.Fail(w, http.StatusBadRequest, "leave_overlap", "Leave request overlaps with an existing request", requestID)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusBadRequest, "leave_processed", "Leave already processed", requestID)
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "leave_not_found", "Leave request not found", requestID)
	case errors.Is(err, leave.ErrStaffNotFound):
		api.Fail(w, http.StatusNotFound, "staff_not_found", "Staff not found", requestID)
	case errors.Is(err, leave.ErrBalanceNotFound):
		api.Fail(w, http.StatusNotFound, "balance_not_found", "Leave balance not found for current year", requestID)
	default:
		api.Internal(w, requestID, op, err)
	}
}
