package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	c := NewSnapshotCache(kv, time.Minute)
	clinicID := uuid.New()

	got, err := c.Get(ctx, clinicID)
	require.NoError(t, err)
	assert.Nil(t, got)

	state := &models.DatabaseState{
		Clinics: []models.Clinic{{ID: clinicID, Name: "Smile Dental", Slug: "smile-dental"}},
		Wallets: []models.Wallet{{ID: uuid.New(), ClinicID: clinicID, Balance: 720}},
	}
	require.NoError(t, c.Put(ctx, clinicID, state))
	assert.Equal(t, time.Minute, kv.ttls["loyalty:snapshot:"+clinicID.String()])

	got, err = c.Get(ctx, clinicID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "smile-dental", got.Clinics[0].Slug)
	assert.Equal(t, int64(720), got.Wallets[0].Balance)

	other, err := c.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, c.Invalidate(ctx, clinicID))
	got, err = c.Get(ctx, clinicID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotCacheErrors(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	c := NewSnapshotCache(kv, time.Minute)
	clinicID := uuid.New()

	kv.data[snapshotKey(clinicID)] = "{not json"
	_, err := c.Get(ctx, clinicID)
	assert.Error(t, err)

	kv.err = errors.New("connection refused")
	_, err = c.Get(ctx, clinicID)
	assert.EqualError(t, err, "connection refused")
}

type fakeStream struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func TestLedgerPublisher(t *testing.T) {
	stream := &fakeStream{}
	p := NewLedgerPublisher(stream, 10000)

	entry := models.Transaction{
		ID:           uuid.New(),
		ClinicID:     uuid.New(),
		PointsEarned: 720,
		Type:         models.TransactionEarn,
		Category:     models.CategoryCosmetic,
		CreatedAt:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishLedgerEntry(context.Background(), entry))

	require.Len(t, stream.args, 1)
	a := stream.args[0]
	assert.Equal(t, LedgerStream, a.Stream)
	assert.Equal(t, int64(10000), a.MaxLen)
	assert.True(t, a.Approx)

	values := a.Values.(map[string]interface{})
	assert.Equal(t, entry.ClinicID.String(), values["clinic_id"])
	assert.Equal(t, "EARN", values["type"])
	assert.Equal(t, int64(720), values["points"])
	assert.Contains(t, values["data"], `"pointsEarned":720`)

	stream.err = errors.New("stream down")
	assert.Error(t, p.PublishLedgerEntry(context.Background(), entry))
}
