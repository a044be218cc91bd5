package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic/internal/platform/querier"
)

// DefaultIdempotencyRetention bounds how long a stored response is replayed.
const DefaultIdempotencyRetention = 24 * time.Hour

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyKeys remembers the first response sent for a client key.
type IdempotencyKeys interface {
	Check(ctx context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

// IdempotencyStore keeps keys in Postgres. Rows older than Retention are
// treated as absent and are overwritten by the next Save.
type IdempotencyStore struct {
	db        querier.Querier
	Retention time.Duration
}

func NewIdempotencyStore(db querier.Querier) *IdempotencyStore {
	return &IdempotencyStore{db: db, Retention: DefaultIdempotencyRetention}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) retentionSeconds() float64 {
	if s.Retention <= 0 {
		return DefaultIdempotencyRetention.Seconds()
	}
	return s.Retention.Seconds()
}

func (s *IdempotencyStore) Check(ctx context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE clinic_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4
      AND created_at > now() - make_interval(secs => $5)
  `, tenantID, userID, key, endpoint, s.retentionSeconds()).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

// Save records the response. A live row with another hash is a conflict; an
// expired row is replaced outright.
func (s *IdempotencyStore) Save(ctx context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (clinic_id, user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (clinic_id, user_id, key, endpoint)
    DO UPDATE SET request_hash = EXCLUDED.request_hash,
                  response_json = EXCLUDED.response_json,
                  created_at = now()
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
       OR idempotency_keys.created_at <= now() - make_interval(secs => $7)
  `, tenantID, userID, key, endpoint, requestHash, response, s.retentionSeconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}
