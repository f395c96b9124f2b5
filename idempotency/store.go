// Package idempotency lets clients retry POST requests safely. A request
// carrying an Idempotency-Key is executed once; later requests with the same
// key on the same path receive the stored response.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	statePending   = "pending"
	stateCompleted = "completed"
	keyPrefix      = "idempotency:"
)

var ErrInFlight = errors.New("request with this idempotency key is still in progress")

// Record is what is kept in Redis for one key.
type Record struct {
	State  string          `json:"state"`
	Status int             `json:"status,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Fingerprint scopes a client key to the resource it was sent to.
func Fingerprint(scope, key string) string {
	return keyPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(scope+"|"+key)).String()
}

// Begin claims fingerprint for the caller. It returns (nil, nil) when the
// claim succeeded, the stored record when the request already completed, and
// ErrInFlight when another request holds the claim.
func (s *Store) Begin(ctx context.Context, fingerprint string) (*Record, error) {
	pending, err := json.Marshal(Record{State: statePending})
	if err != nil {
		return nil, err
	}

	claimed, err := s.client.SetNX(ctx, fingerprint, pending, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, fingerprint).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between SETNX and GET; try once more.
			return s.Begin(ctx, fingerprint)
		}
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var record Record
	if err = json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	if record.State != stateCompleted {
		return nil, ErrInFlight
	}
	return &record, nil
}

// Complete stores the response for later replays.
func (s *Store) Complete(ctx context.Context, fingerprint string, status int, body []byte) error {
	record := Record{State: stateCompleted, Status: status}
	if json.Valid(body) {
		record.Body = body
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err = s.client.Set(ctx, fingerprint, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Release drops a claim so the client may retry after a server failure.
func (s *Store) Release(ctx context.Context, fingerprint string) error {
	if err := s.client.Del(ctx, fingerprint).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
