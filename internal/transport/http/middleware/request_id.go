package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"clinic/internal/requestctx"
)

const maxRequestIDLen = 128

// RequestID echoes a client X-Request-ID when it is short printable ASCII and
// mints a UUID otherwise. It also installs the caller slot filled by Auth.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithCallerSlot(requestctx.WithRequestID(r.Context(), reqID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
