package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/go-redis/redis/v8"
)

const LedgerStream = "loyalty:ledger"

// StreamAdder is the part of *redis.Client the publisher uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// LedgerPublisher appends committed ledger entries to a capped Redis stream.
type LedgerPublisher struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewLedgerPublisher(client StreamAdder, maxLen int64) *LedgerPublisher {
	return &LedgerPublisher{client: client, stream: LedgerStream, maxLen: maxLen}
}

func (p *LedgerPublisher) PublishLedgerEntry(ctx context.Context, entry models.Transaction) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"clinic_id":      entry.ClinicID.String(),
			"transaction_id": entry.ID.String(),
			"type":           string(entry.Type),
			"points":         entry.PointsEarned,
			"data":           string(data),
			"timestamp":      entry.CreatedAt.Unix(),
		},
	}).Err()
}
