package expensehandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/auth"
	"clinic/internal/domain/expense"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Service *expense.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *expense.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermExpensesRead, h.Perms)).Get("/expenses", h.handleList)
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
	filter := expense.ListFilter{
		Category: strings.TrimSpace(query.Get("category")),
		From:     v.OptionalDate("from", query.Get("from")),
		To:       v.OptionalDate("to", query.Get("to")),
	}
	if v.Reject(w, requestID) {
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	result, err := h.Service.List(ctx, user.TenantID, filter)
	if errors.Is(err, expense.ErrInvalidRange) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", "from must be on or before to", requestID)
		return
	}
	if err != nil {
		api.Internal(w, requestID, "expense list", err)
		return
	}
	api.OK(w, result)
}
