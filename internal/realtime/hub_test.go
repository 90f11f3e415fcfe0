package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGauge struct {
	mu  sync.Mutex
	val float64
}

func (g *fakeGauge) Set(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.val = v
}

func (g *fakeGauge) get() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.val
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_BroadcastsScores(t *testing.T) {
	gauge := &fakeGauge{}
	hub := NewHub(nil, gauge)
	ts := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer ts.Close()

	a := dial(t, ts)
	b := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(2), gauge.get())

	require.NoError(t, hub.Publish(context.Background(), Score{Username: "ayse", GameMode: 6, TimeMs: 43210, Won: true}))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, "score", env.Type)

		var s Score
		require.NoError(t, json.Unmarshal(env.Payload, &s))
		assert.Equal(t, Score{Username: "ayse", GameMode: 6, TimeMs: 43210, Won: true}, s)
	}

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(1), gauge.get())
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub(nil, nil)
	slow := &client{send: make(chan []byte)}
	hub.add(slow)

	hub.Broadcast([]byte("x"))

	assert.Zero(t, hub.Clients())
	_, open := <-slow.send
	assert.False(t, open, "send channel is closed on eviction")
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub([]string{"https://kelime.example"}, nil)
	ts := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://kelime.example"}})
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = conn.Close()
}

func TestEncodeScore(t *testing.T) {
	msg, err := EncodeScore(Score{Username: "can", GameMode: 5, TimeMs: 1, Won: false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"score","payload":{"username":"can","gameMode":5,"timeMs":1,"won":false}}`, string(msg))
}
