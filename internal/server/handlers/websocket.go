// internal/server/handlers/websocket.go

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Origins allowed to open a socket. "*" allows any.
	AllowedOrigins []string
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: maxRequestBody,
		AllowedOrigins: []string{"*"},
	}
}

// Reply frames sent back to the socket client
type rowsFrame struct {
	Type string               `json:"type"`
	Rows []trend.ScoredResult `json:"rows"`
}

type errorFrame struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// trendSocket is one connected query client. Frames are ranked one at a
// time in the order they arrive.
type trendSocket struct {
	conn    *websocket.Conn
	send    chan []byte
	queries chan trendRequest
	ranker  trend.Ranker
	log     logger.Logger
	config  WebSocketConfig

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// TrendSocketHandler accepts WebSocket clients that send ranking requests as
// text frames and receive one reply frame per request
func TrendSocketHandler(ranker trend.Ranker, log logger.Logger, config WebSocketConfig) http.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(config.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade to websocket", logger.Error(err))
			return
		}

		// The request context ends when this handler returns
		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))

		client := &trendSocket{
			conn:    conn,
			send:    make(chan []byte, 16),
			queries: make(chan trendRequest, 8),
			ranker:  ranker,
			log:     log.With(logger.String("remote_addr", r.RemoteAddr)),
			config:  config,
			ctx:     ctx,
			cancel:  cancel,
		}

		client.log.Debug("websocket connected")

		go client.writePump()
		go client.rankLoop()
		go client.readPump()
	}
}

// readPump reads request frames from the connection and queues them
func (c *trendSocket) readPump() {
	defer func() {
		close(c.queries)
		c.closeConnection()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read error", logger.Error(err))
			}
			return
		}

		req, err := decodeTrendRequest(bytes.NewReader(message))
		if err != nil {
			c.log.Debug("unreadable trend frame, using defaults", logger.Error(err))
		}

		select {
		case c.queries <- req:
		case <-c.ctx.Done():
			return
		}
	}
}

// rankLoop runs queued requests and queues their replies
func (c *trendSocket) rankLoop() {
	defer close(c.send)

	for req := range c.queries {
		reply := c.rank(req)
		select {
		case c.send <- reply:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *trendSocket) rank(req trendRequest) []byte {
	var payload interface{}

	rows, err := c.ranker.Rank(c.ctx, req.criteria())
	if err != nil {
		code, message := rankErrorResponse(err)
		if code >= http.StatusInternalServerError {
			c.log.Error("trend ranking failed", logger.Int("status", code), logger.Error(err))
		}
		payload = errorFrame{Type: "error", Status: code, Error: message}
	} else {
		if rows == nil {
			rows = []trend.ScoredResult{}
		}
		payload = rowsFrame{Type: "rows", Rows: rows}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(errorFrame{Type: "error", Status: http.StatusInternalServerError, Error: err.Error()})
	}
	return data
}

// writePump writes reply frames and keepalive pings to the connection
func (c *trendSocket) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				// rankLoop is done
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// closeConnection cancels in-flight rankings and closes the connection
func (c *trendSocket) closeConnection() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.conn.Close()
		c.log.Debug("websocket closed")
	})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
