package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const MessageInternal = "Internal server error"

// ErrorBody is the failure shape of every endpoint. Success responses carry
// the payload itself.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func OK(w http.ResponseWriter, payload any) {
	WriteJSON(w, http.StatusOK, payload)
}

func Created(w http.ResponseWriter, payload any) {
	WriteJSON(w, http.StatusCreated, payload)
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID, Details: details})
}

// Internal logs err and answers with the generic 500 body.
func Internal(w http.ResponseWriter, requestID, op string, err error) {
	slog.Error(op+" failed", "err", err, "requestId", requestID)
	Fail(w, http.StatusInternalServerError, "internal_error", MessageInternal, requestID)
}
