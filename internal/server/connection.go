package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Commands per second allowed on one socket
	commandRate  = 20
	commandBurst = 20
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket with a buffered FIFO send queue, a per-socket
// command rate limit and the read/write pumps.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	userID    string
	logger    *log.Logger
	router    *SessionRouter
	limiter   *rate.Limiter
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	onClose   func(*Connection)
}

// NewConnection creates a connection wrapper for an upgraded socket
func NewConnection(conn *websocket.Conn, userID string, router *SessionRouter, logger *log.Logger, onClose func(*Connection)) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan *protocol.Message, 256),
		userID:  userID,
		logger:  logger.WithPrefix("conn").With("userId", userID),
		router:  router,
		limiter: rate.NewLimiter(rate.Limit(commandRate), commandBurst),
		ctx:     ctx,
		cancel:  cancel,
		onClose: onClose,
	}
}

// UserID returns the authenticated user this socket belongs to
func (c *Connection) UserID() string {
	return c.userID
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return err
}

// SendMessage queues a message for the client. A full send buffer closes the
// connection rather than blocking a game actor.
func (c *Connection) SendMessage(msg *protocol.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SendError reports a validation failure back to this socket only
func (c *Connection) SendError(code, message string) {
	_ = c.SendMessage(protocol.MustMessage(protocol.TypeError, protocol.ErrorData{
		Error: code, Message: message,
	}))
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			c.SendError("rate_limited", "Too many commands")
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.SendError("bad_message", "Could not parse message")
			continue
		}
		c.router.Dispatch(c, &msg)
	}
}

// writePump drains the send queue onto the socket and keeps the peer alive
// with pings
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
