//go:build integration

package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBridge_FansOutAcrossHubs(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")

	// Two hubs stand in for two server instances.
	hubA, hubB := NewHub(nil, nil), NewHub(nil, nil)
	bridgeA, bridgeB := NewRedisBridge(rdb, hubA), NewRedisBridge(rdb, hubB)
	go func() { _ = bridgeA.Run(ctx) }()
	go func() { _ = bridgeB.Run(ctx) }()

	ts := httptest.NewServer(http.HandlerFunc(hubB.ServeWS))
	defer ts.Close()
	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hubB.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Subscriptions are asynchronous.
	require.Eventually(t, func() bool {
		return rdb.PubSubNumSub(ctx, Channel).Val()[Channel] >= 2
	}, 2*time.Second, 20*time.Millisecond)
	require.NoError(t, bridgeA.Publish(ctx, Score{Username: "deniz", GameMode: 7, TimeMs: 9000, Won: true}))

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"score","payload":{"username":"deniz","gameMode":7,"timeMs":9000,"won":true}}`, string(msg))
}
