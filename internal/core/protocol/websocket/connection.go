// Package websocket is the live transport: a gorilla websocket client that
// reads server records and writes plain-text commands.
package websocket

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/observability/log"
)

// Config holds the dial and I/O settings of a connection.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration

	// SocketTimeout bounds the wait for the Init record.
	SocketTimeout  time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 5 * time.Second,
		SocketTimeout:    10 * time.Second,
		WriteTimeout:     5 * time.Second,
		MaxMessageSize:   4 << 20,
	}
}

// Stats are the connection's traffic counters.
type Stats struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
}

// Connection is one client socket to the game server. Writes are
// serialised; reads must come from a single goroutine.
type Connection struct {
	id          string
	conn        *websocket.Conn
	config      Config
	logger      log.Log
	connectedAt time.Time
	closed      int32

	messagesSent     uint64
	messagesReceived uint64
	bytesSent        uint64
	bytesReceived    uint64

	writeMu sync.Mutex
}

// Dial connects to cfg.URL.
func Dial(ctx context.Context, cfg Config, logger log.Log) (*Connection, error) {
	if cfg.URL == "" {
		return nil, &ConnectionError{Op: "dial", Err: ErrEmptyURL}
	}
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: cfg.URL, Err: err}
	}
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	c := &Connection{
		id:          uuid.New().String(),
		conn:        conn,
		config:      cfg,
		connectedAt: time.Now(),
	}
	c.logger = logger.With(log.String("component", "websocket"), log.String("connection_id", c.id))
	c.logger.Info("Connected to server", log.String("url", cfg.URL))
	return c, nil
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// SendText writes one text frame.
func (c *Connection) SendText(text string) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return &ConnectionError{Op: "write", URL: c.config.URL, Err: errors.Wrap(err, "failed to write message")}
	}

	atomic.AddUint64(&c.messagesSent, 1)
	atomic.AddUint64(&c.bytesSent, uint64(len(text)))
	return nil
}

// Receive blocks for the next data frame.
func (c *Connection) Receive() ([]byte, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message")
	}
	if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
		return nil, errors.New("unsupported message type")
	}

	atomic.AddUint64(&c.messagesReceived, 1)
	atomic.AddUint64(&c.bytesReceived, uint64(len(data)))
	return data, nil
}

// Handshake consumes the Init record, then announces name. An empty name
// joins as an observer.
func (c *Connection) Handshake(name string) (events.Init, error) {
	if c.config.SocketTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.SocketTimeout))
	}
	data, err := c.Receive()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			err = ErrHandshakeTimeout
		}
		return events.Init{}, &ConnectionError{Op: "handshake", URL: c.config.URL, Err: err}
	}
	_ = c.conn.SetReadDeadline(time.Time{})

	rec, err := events.DecodeInit(data)
	if err != nil {
		return events.Init{}, &ConnectionError{Op: "handshake", URL: c.config.URL, Err: err}
	}
	if err := c.SendText(name); err != nil {
		return events.Init{}, err
	}
	c.logger.Info("Handshake complete",
		log.String("pricing_rule", rec.PricingRule),
		log.Bool("observer", name == ""))
	return rec, nil
}

// Run reads frames until the socket fails or ctx is done, handing each one
// to handle. A cancelled ctx returns ctx.Err(); anything else is a
// ConnectionError.
func (c *Connection) Run(ctx context.Context, handle func([]byte)) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
	defer stop()

	for {
		data, err := c.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(errors.Cause(err), websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("WebSocket error", log.Error(err))
			}
			return &ConnectionError{Op: "read", URL: c.config.URL, Err: err}
		}
		handle(data)
	}
}

// Close closes the connection with a normal closure frame.
func (c *Connection) Close() error {
	return c.CloseWithReason("client closed")
}

func (c *Connection) CloseWithReason(reason string) error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.logger.Info("Connection closed",
		log.String("reason", reason),
		log.Duration("uptime", time.Since(c.connectedAt)))
	return err
}

func (c *Connection) Stats() Stats {
	return Stats{
		MessagesSent:     atomic.LoadUint64(&c.messagesSent),
		MessagesReceived: atomic.LoadUint64(&c.messagesReceived),
		BytesSent:        atomic.LoadUint64(&c.bytesSent),
		BytesReceived:    atomic.LoadUint64(&c.bytesReceived),
	}
}
