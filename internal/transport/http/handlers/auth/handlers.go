package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/transport/http/api"
	"clinic/internal/transport/http/middleware"
	"clinic/internal/transport/http/shared"
)

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Handler struct {
	Users    UserStore
	Secret   string
	TokenTTL time.Duration
	Audit    shared.Auditor
}

func NewHandler(users UserStore, secret string, ttl time.Duration, auditor shared.Auditor) *Handler {
	return &Handler{Users: users, Secret: secret, TokenTTL: ttl, Audit: auditor}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	found, err := h.Users.FindActiveUserByEmail(ctx, payload.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		api.Internal(w, requestID, "login lookup", err)
		return
	}
	if err := auth.CheckPassword(found.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   found.ID,
		TenantID: found.TenantID,
		RoleID:   found.RoleID,
		RoleName: found.RoleName,
	}, h.TokenTTL)
	if err != nil {
		api.Internal(w, requestID, "issue token", err)
		return
	}

	if err := h.Users.UpdateLastLogin(ctx, found.ID); err != nil {
		slog.Warn("update last_login failed", "userId", found.ID, "err", err)
	}
	user := auth.UserContext{UserID: found.ID, TenantID: found.TenantID, RoleID: found.RoleID, RoleName: found.RoleName}
	shared.RecordAudit(r, h.Audit, user, audit.Entry{
		Action:     audit.ActionAuthLogin,
		EntityType: "user",
		EntityID:   found.ID,
	})

	api.OK(w, map[string]any{
		"token":     token,
		"expiresAt": time.Now().Add(h.TokenTTL).UTC(),
		"user": map[string]string{
			"id":       found.ID,
			"clinicId": found.TenantID,
			"roleId":   found.RoleID,
			"role":     found.RoleName,
		},
	})
}
