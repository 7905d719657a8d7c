package siteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	configKey    = "bio:site-config"
	storeTimeout = 3 * time.Second
)

// ErrNotConfigured is returned by mutating operations when no remote store
// is available. Writes fail closed rather than pretending success.
var ErrNotConfigured = errors.New("siteconfig: no key-value store configured")

// DocumentStore persists the configuration document in the remote
// key-value store. The document is kept verbatim as the JSON the client
// submitted, minus filtering.
type DocumentStore struct {
	client *redis.Client
}

// NewDocumentStore wraps the given Redis client. A nil client yields a
// store in the unconfigured state.
func NewDocumentStore(client *redis.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

// Enabled reports whether a remote store is available.
func (s *DocumentStore) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *DocumentStore) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), storeTimeout)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= storeTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, storeTimeout)
}

// Load returns the stored document, or nil when nothing has been written
// yet or no store is configured. Reads are never destructive, so absence
// and unavailability look the same to the caller.
func (s *DocumentStore) Load(ctx context.Context) (json.RawMessage, error) {
	if !s.Enabled() {
		return nil, nil
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, configKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Save writes the document. Requires a configured store.
func (s *DocumentStore) Save(ctx context.Context, doc json.RawMessage) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.client.Set(ctx, configKey, []byte(doc), 0).Err()
}

// Delete removes the stored document. Deleting from an unconfigured store
// is an idempotent no-op since there is nothing to remove.
func (s *DocumentStore) Delete(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.client.Del(ctx, configKey).Err()
}
