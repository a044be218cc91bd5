// Package requestctx carries per-request identifiers across middleware
// layers. The caller slot is a shared pointer so that outer middleware such
// as the request logger can read what inner authentication filled in.
package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	callerKey    ctxKey = "caller"
)

// Caller identifies who a request acts for once authentication has run.
type Caller struct {
	UserID   string
	ClinicID string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithCallerSlot installs an empty caller slot for SetCaller to fill.
func WithCallerSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, callerKey, &Caller{})
}

// SetCaller records the caller in the slot installed upstream. It is a no-op
// when no slot exists.
func SetCaller(ctx context.Context, userID, clinicID string) {
	if slot, ok := ctx.Value(callerKey).(*Caller); ok {
		slot.UserID = userID
		slot.ClinicID = clinicID
	}
}

func GetCaller(ctx context.Context) Caller {
	if slot, ok := ctx.Value(callerKey).(*Caller); ok {
		return *slot
	}
	return Caller{}
}
