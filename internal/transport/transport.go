// Package transport exposes a method channel to application clients.
//
// The WebSocket transport multiplexes calls, responses and events as frames
// on one connection. The polling transport serves the same calls over plain
// HTTP and keeps a sequenced event log clients read with ?since=.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zlc_ai/channelio-bridge/internal/bridge"
	"github.com/zlc_ai/channelio-bridge/internal/protocol"
)

// ErrCodeUnavailable is reported when a call cannot reach the bridge.
const ErrCodeUnavailable = "BRIDGE_UNAVAILABLE"

const (
	outQueueSize  = 100
	clientBufSize = 64
	writeWait     = 10 * time.Second
)

// Transport defines the interface for transport implementations.
type Transport interface {
	// Start starts the transport.
	Start(ctx context.Context) error
	// Stop stops the transport.
	Stop(ctx context.Context) error
	// Publish hands an event to the transport. It must not block; it runs on
	// the UI loop.
	Publish(ev protocol.Event)
}

// Attach subscribes every transport to the channel's events. The returned
// function detaches them.
func Attach(channel *bridge.MethodChannel, transports ...Transport) func() {
	return channel.Subscribe(func(ev protocol.Event) {
		for _, t := range transports {
			t.Publish(ev)
		}
	})
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// WebSocketServer serves the method channel over WebSocket.
type WebSocketServer struct {
	logger   *zap.Logger
	channel  *bridge.MethodChannel
	upgrader websocket.Upgrader

	// Active connections
	connMu sync.RWMutex
	conns  map[*websocket.Conn]*wsClient

	// Event frames waiting to be broadcast
	outQueue chan protocol.Frame

	// Shutdown
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWebSocketServer creates a new WebSocket server for channel.
func NewWebSocketServer(channel *bridge.MethodChannel, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketServer{
		logger:  logger.With(zap.String("transport", "websocket")),
		channel: channel,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns:    make(map[*websocket.Conn]*wsClient),
		outQueue: make(chan protocol.Frame, outQueueSize),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the broadcast loop.
func (ws *WebSocketServer) Start(ctx context.Context) error {
	ws.wg.Add(1)
	go ws.broadcastLoop()
	ws.logger.Info("WebSocket server started")
	return nil
}

// Stop closes every connection and waits for the connection goroutines.
func (ws *WebSocketServer) Stop(ctx context.Context) error {
	ws.stopOnce.Do(func() { close(ws.stopCh) })

	ws.connMu.Lock()
	for conn := range ws.conns {
		conn.Close()
	}
	ws.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		ws.logger.Info("WebSocket server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish queues an event for every connected client. Events are dropped
// when the queue is full.
func (ws *WebSocketServer) Publish(ev protocol.Event) {
	frame := protocol.Frame{Type: protocol.FrameTypeEvent, Channel: ws.channel.Name(), Event: &ev}
	select {
	case ws.outQueue <- frame:
	default:
		ws.logger.Warn("Event queue full, dropping event", zap.String("event", ev.Name))
	}
}

// HTTPHandler returns an http.Handler for WebSocket upgrade.
func (ws *WebSocketServer) HTTPHandler() http.Handler {
	return http.HandlerFunc(ws.handleConnection)
}

// ConnectionCount returns the number of active connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connMu.RLock()
	defer ws.connMu.RUnlock()
	return len(ws.conns)
}

func (ws *WebSocketServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientBufSize),
		done: make(chan struct{}),
	}

	ws.connMu.Lock()
	ws.conns[conn] = client
	ws.connMu.Unlock()

	ws.logger.Info("WebSocket client connected",
		zap.String("connId", client.id),
		zap.String("remoteAddr", r.RemoteAddr))

	ws.wg.Add(2)
	go ws.readLoop(client)
	go ws.writeLoop(client)
}

func (ws *WebSocketServer) readLoop(c *wsClient) {
	defer ws.wg.Done()
	defer func() {
		ws.connMu.Lock()
		delete(ws.conns, c.conn)
		ws.connMu.Unlock()
		close(c.done)
		c.conn.Close()
		ws.logger.Info("WebSocket client disconnected", zap.String("connId", c.id))
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.logger.Error("WebSocket read error", zap.String("connId", c.id), zap.Error(err))
			}
			return
		}

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			ws.logger.Warn("Failed to parse WebSocket frame", zap.String("connId", c.id), zap.Error(err))
			continue
		}
		if frame.Type != protocol.FrameTypeCall {
			ws.logger.Debug("Ignoring non-call frame", zap.String("type", string(frame.Type)))
			continue
		}
		ws.dispatch(c, frame)
	}
}

func (ws *WebSocketServer) dispatch(c *wsClient, frame *protocol.Frame) {
	id := frame.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := ws.logger.With(zap.String("connId", c.id), zap.String("callId", id))

	reply := func(resp protocol.Response) {
		ws.enqueue(c, protocol.Frame{
			Type:     protocol.FrameTypeResponse,
			ID:       id,
			Channel:  ws.channel.Name(),
			Response: &resp,
		})
	}

	logger.Debug("Call received", zap.String("method", frame.Call.Method))
	if err := ws.channel.InvokeAsync(*frame.Call, reply); err != nil {
		logger.Warn("Call rejected", zap.Error(err))
		reply(protocol.Failure(ErrCodeUnavailable, err.Error(), nil))
	}
}

// enqueue hands a frame to the client's writer without blocking.
func (ws *WebSocketServer) enqueue(c *wsClient, frame protocol.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		ws.logger.Error("Failed to marshal frame", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		ws.logger.Warn("Client buffer full, dropping frame",
			zap.String("connId", c.id),
			zap.String("type", string(frame.Type)))
	}
}

func (ws *WebSocketServer) writeLoop(c *wsClient) {
	defer ws.wg.Done()

	for {
		select {
		case <-ws.stopCh:
			return
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				ws.logger.Warn("Failed to send frame", zap.String("connId", c.id), zap.Error(err))
				c.conn.Close()
				return
			}
		}
	}
}

func (ws *WebSocketServer) broadcastLoop() {
	defer ws.wg.Done()

	for {
		select {
		case <-ws.stopCh:
			return
		case frame := <-ws.outQueue:
			ws.broadcast(frame)
		}
	}
}

func (ws *WebSocketServer) broadcast(frame protocol.Frame) {
	ws.connMu.RLock()
	defer ws.connMu.RUnlock()

	for _, c := range ws.conns {
		ws.enqueue(c, frame)
	}
}
