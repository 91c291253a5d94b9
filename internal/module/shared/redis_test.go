package shared_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/daubit/tracy-web/internal/module/shared"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*shared.RedisClient, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	cfg := shared.SetupCfg(map[string]interface{}{
		"redis.url":               "redis://" + server.Addr(),
		"redis.keeplive-interval": time.Duration(0),
	})
	client := shared.NewRedisClient(cfg, zerolog.Nop())
	client.Connect()
	t.Cleanup(func() { client.Close() })
	return client, server
}

func TestQueryRoundTrip(t *testing.T) {
	client, server := setupRedis(t)
	ctx := context.Background()

	_, ok, err := client.GetQuery(ctx, `["pools"]`)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.SetQuery(ctx, `["pools"]`, []byte(`[]`), time.Minute))
	value, ok, err := client.GetQuery(ctx, `["pools"]`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(value))
	assert.Equal(t, time.Minute, server.TTL(`query:["pools"]`))
}

func TestDeleteQueriesTreatsPrefixLiterally(t *testing.T) {
	client, server := setupRedis(t)
	ctx := context.Background()

	for _, key := range []string{
		`["quote"]`,
		`["quote","a","b","1"]`,
		`["quote","a","b","10"]`,
		`["pool","juno1a"]`,
	} {
		require.NoError(t, client.SetQuery(ctx, key, []byte(`{}`), time.Minute))
	}

	require.NoError(t, client.DeleteQueries(ctx, `["quote"]`, `["quote",`))
	assert.Equal(t, []string{`query:["pool","juno1a"]`}, server.Keys())

	require.NoError(t, client.DeleteQueries(ctx, `null`, `[`))
	assert.Empty(t, server.Keys())
}

func TestDeleteKeysByPrefixEscapesGlob(t *testing.T) {
	client, server := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, server.Set("a*b:1", "x"))
	require.NoError(t, server.Set("aXb:1", "x"))
	require.NoError(t, server.Set("a?[c]:1", "x"))

	require.NoError(t, client.DeleteKeysByPrefix(ctx, "a*b"))
	assert.False(t, server.Exists("a*b:1"))
	assert.True(t, server.Exists("aXb:1"))

	require.NoError(t, client.DeleteKeysByPrefix(ctx, "a?[c]"))
	assert.False(t, server.Exists("a?[c]:1"))
	assert.True(t, server.Exists("aXb:1"))
}

func TestPublishReachesSubscriber(t *testing.T) {
	client, _ := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	go client.SubscribeInvalidations(ctx, func(payload string) {
		select {
		case received <- payload:
		default:
		}
	})

	// the subscription is registered asynchronously, so publish until it lands
	var payload string
	require.Eventually(t, func() bool {
		_ = client.PublishInvalidation(ctx, `{"key":["pools"]}`)
		select {
		case payload = <-received:
			return true
		case <-time.After(10 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, `{"key":["pools"]}`, payload)
}

func TestAcquireLock(t *testing.T) {
	client, _ := setupRedis(t)

	assert.True(t, client.AcquireLock("lock:test", time.Minute))
	assert.False(t, client.AcquireLock("lock:test", time.Minute))
	client.ReleaseLock("lock:test")
	assert.True(t, client.AcquireLock("lock:test", time.Minute))
}
