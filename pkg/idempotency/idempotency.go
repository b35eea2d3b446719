// Package idempotency guards message consumers against redelivery.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/squadlog/squadlog-backend/pkg/redis"
)

// Manager tracks processed message IDs per consumer using Redis SETNX with a
// TTL. Keys look like sq:idempotency:msg:processed:<consumer>:<id>.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a guard that remembers processed messages for ttl.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed returns true when id was already processed by
// consumer and otherwise claims it.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, id uuid.UUID) (bool, error) {
	key, err := m.processedKey(consumer, id)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release forgets a claim so a redelivery can be processed again.
func (m *Manager) Release(ctx context.Context, consumer string, id uuid.UUID) error {
	key, err := m.processedKey(consumer, id)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, id uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if id == uuid.Nil {
		return "", errors.New("message id is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("msg:processed:%s", consumer), id.String()), nil
}
