package diethandler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/auth"
	"clinic/internal/domain/diet"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type Handler struct {
	Perms middleware.PermissionStore
	Now   func() time.Time
}

func NewHandler(perms middleware.PermissionStore) *Handler {
	return &Handler{Perms: perms, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/diet-templates", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermDietRead, h.Perms))
		r.Get("/", h.handleGet)
		r.Get("/season", h.handleSeason)
	})
}

// handleGet serves the template for a constitution and season. A missing
// season resolves to the current one; an unknown pair yields the
// TRIDOSHA/SPRING fallback flagged with matched=false.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	constitution := strings.TrimSpace(query.Get("constitution"))
	season := strings.TrimSpace(query.Get("season"))

	v := shared.NewValidator()
	v.Required("constitution", constitution, "is required")
	if v.Reject(w, requestID) {
		return
	}
	if season == "" {
		season = diet.CurrentSeason(h.Now())
	}
	template, matched := diet.Lookup(constitution, season)
	api.OK(w, map[string]any{"template": template, "matched": matched})
}

func (h *Handler) handleSeason(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month := int(h.Now().Month())
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			v := shared.NewValidator()
			v.Add("month", "must be between 1 and 12")
			v.Reject(w, requestID)
			return
		}
		month = parsed
	}
	api.OK(w, map[string]any{"month": month, "season": diet.SeasonForMonth(time.Month(month))})
}
