package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts/events"
)

// fakeConn records written frames and blocks reads until closed
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) RemoteAddr() string                { return "127.0.0.1:9999" }

// receive reads the next queued message for c
func receive(t *testing.T, c *Client) events.WebSocketMessage {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return events.WebSocketMessage{}
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, nil)
	h.Start()
	t.Cleanup(h.Stop)
	return h
}

func TestHubRegisterSendsConnectMessage(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, newFakeConn(), "trace-1", Options{}, nil)

	require.True(t, h.Register(c))

	msg := receive(t, c)
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	assert.Equal(t, c.ID(), msg.Data.(map[string]any)["client_id"])
	assert.Equal(t, 1, h.ClientCount())
}

func TestHubPublishReachesEveryClient(t *testing.T) {
	h := startHub(t)
	a := NewClient(h, newFakeConn(), "", Options{}, nil)
	b := NewClient(h, newFakeConn(), "", Options{}, nil)
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))
	receive(t, a)
	receive(t, b)

	ctx := infrastructure.WithTraceID(context.Background(), "reload-7")
	h.Publish(ctx, events.MessageTypeDatasetReloaded, events.DatasetEvent{Ticker: "ZN", Rows: 5, TradingDays: 2})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, events.MessageTypeDatasetReloaded, msg.Type)
		assert.Equal(t, "reload-7", msg.TraceID)
		data := msg.Data.(map[string]any)
		assert.Equal(t, "ZN", data["ticker"])
		assert.EqualValues(t, 5, data["rows"])
	}
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, newFakeConn(), "", Options{}, nil)
	require.True(t, h.Register(c))
	receive(t, c)

	h.Unregister(c)
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-c.send
	assert.False(t, ok, "send channel is closed on unregister")
}

func TestHubDropsSlowClients(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, newFakeConn(), "", Options{}, nil)
	require.True(t, h.Register(c))

	// nobody drains c.send, so it overflows
	for i := 0; i < sendBuffer+5; i++ {
		h.Publish(context.Background(), events.MessageTypeDatasetLoaded, events.DatasetEvent{Ticker: "ZN"})
	}
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStop(t *testing.T) {
	h := NewHub(nil, nil)
	h.Start()
	h.Start()

	c := NewClient(h, newFakeConn(), "", Options{}, nil)
	require.True(t, h.Register(c))

	h.Stop()
	h.Stop()

	assert.False(t, h.Register(NewClient(h, newFakeConn(), "", Options{}, nil)))
	assert.Zero(t, h.ClientCount())
	h.Publish(context.Background(), events.MessageTypeDatasetLoaded, nil)
}

func TestClientPumps(t *testing.T) {
	h := startHub(t)
	conn := newFakeConn()
	c := NewClient(h, conn, "", Options{PingPeriod: time.Hour, PongWait: 2 * time.Hour}, nil)
	require.True(t, h.Register(c))

	go c.WritePump()
	go c.ReadPump()

	h.Publish(context.Background(), events.MessageTypeDatasetFailed, events.DatasetEvent{Ticker: "ZB", Error: "boom"})

	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 2
	}, time.Second, 5*time.Millisecond)

	// closing the connection ends ReadPump, which unregisters the client
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{PingPeriod: time.Minute, PongWait: 30 * time.Second}.withDefaults()
	assert.Equal(t, 1024, o.ReadBufferSize)
	assert.Less(t, o.PingPeriod, o.PongWait)

	assert.True(t, Options{}.originAllowed("http://anything"))
	restricted := Options{AllowedOrigins: []string{"http://localhost:3000"}}
	assert.True(t, restricted.originAllowed(""))
	assert.True(t, restricted.originAllowed("http://LOCALHOST:3000"))
	assert.False(t, restricted.originAllowed("http://evil.example"))
}
