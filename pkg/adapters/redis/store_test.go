package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lessonflow/pkg/adapters/redis"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunFlowStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Now()
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	flow := domain.FlowFile{FlowInfo: domain.FlowInfo{ID: "flow-ttl"}}
	require.NoError(t, store.Save(ctx, flow))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "flow-ttl")

	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "flow-ttl")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)

	// The index is pruned lazily against the store clock.
	now = now.Add(2 * time.Second)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))

	require.NoError(t, store.Save(context.Background(), domain.FlowFile{FlowInfo: domain.FlowInfo{ID: "f1"}}))
	assert.True(t, mr.Exists("custom:f1"))
	assert.True(t, mr.Exists("custom:index"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"f1"))
}
