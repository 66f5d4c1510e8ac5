// Package ws carries live events over WebSocket for clients that prefer it
// to SSE.
package ws

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write to a slow client
	writeWait = 10 * time.Second
	// maxInboundMessage caps client frames; clients only send control frames
	maxInboundMessage = 4 << 10
)

// ErrConnClosed is returned by writes after the connection is gone
var ErrConnClosed = errors.New("websocket connection closed")

// frame is the JSON envelope of one event
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewUpgrader builds an upgrader accepting the given origins ("*" allows any)
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
}

// Conn adapts a WebSocket connection to the broadcast transport
type Conn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed chan struct{}
	once   sync.Once
}

// Upgrade switches the request to WebSocket and starts the read loop
func Upgrade(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &Conn{conn: conn, closed: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

// Send writes one event as a JSON text frame
func (c *Conn) Send(event string, data []byte) error {
	payload, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed() {
		return ErrConnClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// WriteKeepAlive sends a ping frame
func (c *Conn) WriteKeepAlive() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isClosed() {
		return ErrConnClosed
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Closed is closed once the peer disconnects or Close is called
func (c *Conn) Closed() <-chan struct{} {
	return c.closed
}

// Close sends a close frame and releases the connection
func (c *Conn) Close() error {
	c.markClosed()

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// readLoop drains client frames so control frames are processed and a
// disconnect is noticed.
func (c *Conn) readLoop() {
	defer c.markClosed()

	c.conn.SetReadLimit(maxInboundMessage)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Conn) markClosed() {
	c.once.Do(func() { close(c.closed) })
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
