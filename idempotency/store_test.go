package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, time.Hour, zap.NewNop()), mr
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("POST /api/rewards/1/redeem", "k1")
	assert.Equal(t, a, Fingerprint("POST /api/rewards/1/redeem", "k1"))
	assert.NotEqual(t, a, Fingerprint("POST /api/rewards/2/redeem", "k1"))
	assert.NotEqual(t, a, Fingerprint("POST /api/rewards/1/redeem", "k2"))
}

func TestStore_BeginCompleteReplay(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint("scope", "key")

	record, err := store.Begin(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = store.Begin(ctx, fp)
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, store.Complete(ctx, fp, 201, []byte(`{"id":1}`)))

	record, err = store.Begin(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 201, record.Status)
	assert.JSONEq(t, `{"id":1}`, string(record.Body))
}

func TestStore_ReleaseAllowsRetry(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint("scope", "key")

	_, err := store.Begin(ctx, fp)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, fp))

	record, err := store.Begin(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestStore_KeysExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	fp := Fingerprint("scope", "key")

	_, err := store.Begin(ctx, fp)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(fp))

	mr.FastForward(2 * time.Hour)

	record, err := store.Begin(ctx, fp)
	require.NoError(t, err)
	assert.Nil(t, record)
}
