package payrollhandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/payroll"
	"clinic/internal/platform/metrics"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

const (
	endpointMarkPaid = "PATCH /payroll"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	Service     *payroll.Service
	Perms       middleware.PermissionStore
	Audit       shared.Auditor
	Idempotency middleware.IdempotencyKeys
	Metrics     *metrics.Collector
	Users       shared.ActorDirectory
}

func NewHandler(service *payroll.Service, perms middleware.PermissionStore, users shared.ActorDirectory, auditor shared.Auditor, keys middleware.IdempotencyKeys, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Perms: perms, Users: users, Audit: auditor, Idempotency: keys, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Post("/", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollPay, h.Perms)).Patch("/", h.handleMarkPaid)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/export", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/{payrollID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/{payrollID}/payslip", h.handlePayslip)
	})
}

type generateRequest struct {
	StaffID          string          `json:"staffId" validate:"required"`
	Month            int             `json:"month" validate:"required,min=1,max=12"`
	Year             int             `json:"year" validate:"required,gte=2000,lte=2100"`
	BasicSalary      decimal.Decimal `json:"basicSalary"`
	Allowances       decimal.Decimal `json:"allowances"`
	HRA              decimal.Decimal `json:"hra"`
	OtherAllowances  decimal.Decimal `json:"otherAllowances"`
	TotalWorkingDays int             `json:"totalWorkingDays" validate:"gte=0,lte=31"`
	DaysPresent      int             `json:"daysPresent" validate:"gte=0,lte=31"`
	DaysAbsent       int             `json:"daysAbsent" validate:"gte=0,lte=31"`
	OtherDeductions  decimal.Decimal `json:"otherDeductions"`
	Notes            string          `json:"notes" validate:"max=2000"`
	GeneratedBy      string          `json:"generatedBy" validate:"omitempty,uuid"`
	ClinicID         string          `json:"clinicId"`
}

type payRequest struct {
	PayrollID        string `json:"payrollId" validate:"required"`
	PaymentDate      string `json:"paymentDate"`
	PaymentMethod    string `json:"paymentMethod"`
	PaymentReference string `json:"paymentReference" validate:"max=200"`
	PaidBy           string `json:"paidBy" validate:"omitempty,uuid"`
	AddedBy          string `json:"addedBy" validate:"omitempty,uuid"`
	ClinicID         string `json:"clinicId"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload generateRequest
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

	generatedBy, ok := shared.ResolveActor(w, r, h.Users, user, "generatedBy", payload.GeneratedBy, requestID)
	if !ok {
		return
	}
	p, err := h.Service.Generate(ctx, tenantID, payroll.GenerateInput{
		StaffID: payload.StaffID,
		Month:   payload.Month,
		Year:    payload.Year,
		Overrides: payroll.Components{
			Basic:      payload.BasicSalary,
			Allowances: payload.Allowances,
			HRA:        payload.HRA,
			Other:      payload.OtherAllowances,
		},
		TotalWorkingDays: payload.TotalWorkingDays,
		DaysPresent:      payload.DaysPresent,
		DaysAbsent:       payload.DaysAbsent,
		OtherDeductions:  payload.OtherDeductions,
		Notes:            payload.Notes,
		GeneratedBy:      generatedBy,
	})
	if err != nil {
		writeError(w, requestID, "payroll generate", err)
		return
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionPayrollGenerate,
		EntityType: "payroll",
		EntityID:   p.ID,
		After:      p,
	})
	h.Metrics.Inc(audit.ActionPayrollGenerate)
	api.Created(w, map[string]any{"payroll": p})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	filter, tenantID, ok := h.parseFilter(w, r, user, requestID)
	if !ok {
		return
	}

	result, err := h.Service.List(ctx, tenantID, filter)
	if err != nil {
		writeError(w, requestID, "payroll list", err)
		return
	}
	api.OK(w, result)
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request, user auth.UserContext, requestID string) (payroll.ListFilter, string, bool) {
	query := r.URL.Query()
	tenantID, ok := shared.ResolveTenant(w, user, query.Get("clinicId"), requestID)
	if !ok {
		return payroll.ListFilter{}, "", false
	}
	v := shared.NewValidator()
	filter := payroll.ListFilter{
		StaffID: strings.TrimSpace(query.Get("staffId")),
		Month:   shared.QueryInt(v, r, "month"),
		Year:    shared.QueryInt(v, r, "year"),
		Status:  strings.TrimSpace(query.Get("status")),
	}
	if filter.Month < 0 || filter.Month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	v.Enum("status", filter.Status, []string{"ALL", payroll.StatusPending, payroll.StatusPaid}, "must be ALL, PENDING or PAID")
	if v.Reject(w, requestID) {
		return payroll.ListFilter{}, "", false
	}
	return filter, tenantID, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	p, err := h.Service.Get(ctx, user.TenantID, chi.URLParam(r, "payrollID"))
	if err != nil {
		writeError(w, requestID, "payroll get", err)
		return
	}
	api.OK(w, map[string]any{"payroll": p})
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	body, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	var payload payRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	tenantID, ok := shared.ResolveTenant(w, user, payload.ClinicID, requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	paymentDate := v.OptionalDate("paymentDate", payload.PaymentDate)
	if v.Reject(w, requestID) {
		return
	}
	paidBy, ok := shared.ResolveActor(w, r, h.Users, user, "paidBy", payload.PaidBy, requestID)
	if !ok {
		return
	}
	addedBy, ok := shared.ResolveActor(w, r, h.Users, user, "addedBy", payload.AddedBy, requestID)
	if !ok {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(ctx, tenantID, user.UserID, endpointMarkPaid, idempotencyKey, requestHash)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "Idempotency-Key was used with a different request", requestID)
			return
		case err != nil:
			slog.Warn("idempotency check failed", "err", err)
		case found:
			w.Header().Set("Idempotent-Replay", "true")
			api.OK(w, stored)
			return
		}
	}

	in := payroll.PayInput{
		PayrollID:        payload.PayrollID,
		PaymentMethod:    payload.PaymentMethod,
		PaymentReference: payload.PaymentReference,
		PaidBy:           paidBy,
		AddedBy:          addedBy,
	}
	if !paymentDate.IsZero() {
		in.PaymentDate = &paymentDate
	}
	result, err := h.Service.MarkPaid(ctx, tenantID, in)
	if err != nil {
		writeError(w, requestID, "payroll mark paid", err)
		return
	}

	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(result)
		if err != nil {
			slog.Warn("idempotency encode failed", "err", err)
		} else if err := h.Idempotency.Save(ctx, tenantID, user.UserID, endpointMarkPaid, idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}

	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionPayrollPay,
		EntityType: "payroll",
		EntityID:   result.Payroll.ID,
		After:      result.Payroll,
	})
	h.Metrics.Inc(audit.ActionPayrollPay)
	api.OK(w, result)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	payrollID := chi.URLParam(r, "payrollID")

	var buf bytes.Buffer
	if err := h.Service.Payslip(ctx, user.TenantID, payrollID, &buf); err != nil {
		writeError(w, requestID, "payroll payslip", err)
		return
	}
	writeFile(w, "application/pdf", fmt.Sprintf("payslip-%s.pdf", payrollID), buf.Bytes())
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	user, ok := middleware.GetUser(ctx)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	filter, tenantID, ok := h.parseFilter(w, r, user, requestID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.Service.Export(ctx, tenantID, filter, &buf); err != nil {
		writeError(w, requestID, "payroll export", err)
		return
	}
	name := "payroll-register.xlsx"
	if filter.Month > 0 && filter.Year > 0 {
		name = fmt.Sprintf("payroll-register-%d-%02d.xlsx", filter.Year, filter.Month)
	}
	writeFile(w, contentTypeXLSX, name, buf.Bytes())
}

func writeFile(w http.ResponseWriter, contentType, name string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		slog.Warn("write file failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, requestID, op string, err error) {
	switch {
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	case errors.Is(err, payroll.ErrDuplicate):
		api.Fail(w, http.StatusBadRequest, "payroll_exists", "Payroll already exists for this month", requestID)
	case errors.Is(err, payroll.ErrAlreadyPaid):
		api.Fail(w, http.StatusBadRequest, "payroll_paid", "Payroll already paid", requestID)
	case errors.Is(err, payroll.ErrStaffNotFound):
		api.Fail(w, http.StatusNotFound, "staff_not_found", "Staff not found", requestID)
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "payroll_not_found", "Payroll not found", requestID)
	default:
		api.Internal(w, requestID, op, err)
	}
}
