package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
)

const snapshotKeyPrefix = "loyalty:snapshot:"

func snapshotKey(clinicID uuid.UUID) string {
	return snapshotKeyPrefix + clinicID.String()
}

// SnapshotCache keeps the latest DatabaseState of each clinic as JSON.
type SnapshotCache struct {
	kv  KV
	ttl time.Duration
}

func NewSnapshotCache(kv KV, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{kv: kv, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *SnapshotCache) Get(ctx context.Context, clinicID uuid.UUID) (*models.DatabaseState, error) {
	raw, err := c.kv.Get(ctx, snapshotKey(clinicID))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state models.DatabaseState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, nil
}

func (c *SnapshotCache) Put(ctx context.Context, clinicID uuid.UUID, state *models.DatabaseState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.kv.Set(ctx, snapshotKey(clinicID), string(b), c.ttl)
}

func (c *SnapshotCache) Invalidate(ctx context.Context, clinicID uuid.UUID) error {
	return c.kv.Del(ctx, snapshotKey(clinicID))
}
