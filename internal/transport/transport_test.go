package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/mainloop"
	"github.com/zlc_ai/channelio-bridge/internal/platform/android"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
	"github.com/zlc_ai/channelio-bridge/internal/sandbox"
	"github.com/zlc_ai/channelio-bridge/internal/transport"
)

type fixture struct {
	server  *httptest.Server
	channel *bridge.MethodChannel
	ws      *transport.WebSocketServer
	poll    *transport.PollingServer
	sdk     *sandbox.Android
}

func newFixture(t *testing.T, attachBridge bool, logSize int) *fixture {
	t.Helper()
	loop := mainloop.New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	<-loop.Started()

	f := &fixture{sdk: sandbox.NewAndroid(sandbox.Options{Unread: 2}, nil)}
	f.channel = bridge.NewMethodChannel("", loop, nil)
	if attachBridge {
		m := android.NewManager(f.sdk, loop, f.channel, nil)
		f.channel.SetMethodCallHandler(m)
		t.Cleanup(m.Dispose)
	}

	f.ws = transport.NewWebSocketServer(f.channel, nil)
	f.poll = transport.NewPollingServer(f.channel, logSize, time.Second, nil)
	detach := transport.Attach(f.channel, f.ws, f.poll)
	require.NoError(t, f.ws.Start(ctx))

	f.server = httptest.NewServer(transport.NewMux(transport.DefaultRoutes(), f.ws, f.poll, nil))
	t.Cleanup(func() {
		f.server.Close()
		detach()
		_ = f.ws.Stop(context.Background())
		cancel()
		<-loop.Done()
	})
	return f
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, typ protocol.FrameType) protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f protocol.Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == typ {
			return f
		}
	}
}

func TestWebSocket_CallAndEvents(t *testing.T) {
	f := newFixture(t, true, 10)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(protocol.Frame{
		Type: protocol.FrameTypeCall,
		ID:   "call-1",
		Call: &protocol.Envelope{Method: protocol.MethodBoot, Arguments: map[string]any{"pluginKey": "plugin", "language": "en"}},
	}))

	resp := readFrame(t, conn, protocol.FrameTypeResponse)
	assert.Equal(t, "call-1", resp.ID)
	assert.Equal(t, protocol.DefaultChannelName, resp.Channel)
	require.NotNil(t, resp.Response)
	data := resp.Response.Data.(map[string]any)
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, "en", data["user"].(map[string]any)["language"])

	ev := readFrame(t, conn, protocol.FrameTypeEvent)
	require.NotNil(t, ev.Event)
	assert.Equal(t, protocol.EventBadgeChanged, ev.Event.Name)
	assert.Equal(t, map[string]any{"unread": float64(2), "alert": float64(0)}, ev.Event.Payload)
}

func TestWebSocket_FrameHandling(t *testing.T) {
	f := newFixture(t, true, 10)
	conn := f.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"call"}`)))
	require.NoError(t, conn.WriteJSON(protocol.Frame{
		Type: protocol.FrameTypeCall,
		Call: &protocol.Envelope{Method: "teleport"},
	}))

	resp := readFrame(t, conn, protocol.FrameTypeResponse)
	assert.NotEmpty(t, resp.ID, "missing ids are assigned")
	assert.True(t, resp.Response.NotImplemented)

	require.NoError(t, conn.WriteJSON(protocol.Frame{
		Type: protocol.FrameTypeCall,
		ID:   "call-2",
		Call: &protocol.Envelope{Method: protocol.MethodTrack},
	}))
	resp = readFrame(t, conn, protocol.FrameTypeResponse)
	assert.Equal(t, "call-2", resp.ID)
	assert.Equal(t, protocol.ErrCodeMissingParameter, resp.Response.ErrorCode)
}

func TestWebSocket_NoBridge(t *testing.T) {
	f := newFixture(t, false, 10)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(protocol.Frame{
		Type: protocol.FrameTypeCall,
		ID:   "call-1",
		Call: &protocol.Envelope{Method: protocol.MethodIsBooted},
	}))
	resp := readFrame(t, conn, protocol.FrameTypeResponse)
	assert.Equal(t, transport.ErrCodeUnavailable, resp.Response.ErrorCode)
	assert.Equal(t, bridge.ErrNoHandler.Error(), resp.Response.ErrorMessage)
}

func postCall(t *testing.T, f *fixture, body string) (*http.Response, protocol.Frame) {
	t.Helper()
	resp, err := http.Post(f.server.URL+"/api/v1/invoke", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var frame protocol.Frame
	if resp.StatusCode != http.StatusBadRequest {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&frame))
	}
	return resp, frame
}

type eventsBody struct {
	Events []protocol.Frame `json:"events"`
	Seq    int64            `json:"seq"`
}

func getEvents(t *testing.T, f *fixture, since string) eventsBody {
	t.Helper()
	resp, err := http.Get(f.server.URL + "/api/v1/events?since=" + since)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body eventsBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestPolling_InvokeAndEvents(t *testing.T) {
	f := newFixture(t, true, 10)

	resp, frame := postCall(t, f, `{"id":"p-1","call":{"method":"boot","arguments":{"pluginKey":"plugin"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, protocol.FrameTypeResponse, frame.Type)
	assert.Equal(t, "p-1", frame.ID)
	assert.Equal(t, "SUCCESS", frame.Response.Data.(map[string]any)["status"])

	var body eventsBody
	require.Eventually(t, func() bool {
		body = getEvents(t, f, "0")
		return len(body.Events) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, protocol.EventBadgeChanged, body.Events[0].Event.Name)
	assert.Equal(t, int64(1), body.Events[0].Seq)

	assert.Empty(t, getEvents(t, f, "1").Events)

	_, frame = postCall(t, f, `{"call":{"method":"isBooted"}}`)
	assert.NotEmpty(t, frame.ID)
	assert.Equal(t, true, frame.Response.Data)
}

func TestPolling_BadRequests(t *testing.T) {
	f := newFixture(t, true, 10)

	resp, _ := postCall(t, f, `{"call":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postCall(t, f, `nope`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r, err := http.Get(f.server.URL + "/api/v1/events?since=abc")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	r, err = http.Get(f.server.URL + "/api/v1/invoke")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)
}

func TestPolling_NoBridge(t *testing.T) {
	f := newFixture(t, false, 10)
	resp, frame := postCall(t, f, `{"call":{"method":"isBooted"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, transport.ErrCodeUnavailable, frame.Response.ErrorCode)
}

func TestPolling_LogIsBounded(t *testing.T) {
	f := newFixture(t, false, 2)
	for _, name := range []string{"a", "b", "c"} {
		f.poll.Publish(protocol.Event{Name: name})
	}

	frames, seq := f.poll.Since(0)
	assert.Equal(t, int64(3), seq)
	require.Len(t, frames, 2)
	assert.Equal(t, "b", frames[0].Event.Name)
	assert.Equal(t, int64(3), frames[1].Seq)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false, 10)
	f.dial(t)

	require.Eventually(t, func() bool { return f.ws.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["connections"])
}
