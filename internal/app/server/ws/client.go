package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"murmur/internal/config"
	"murmur/internal/core/contracts"
	"murmur/pkg/logging"
)

var (
	ErrChannelFull   = errors.New("ws: send buffer full")
	ErrChannelClosed = errors.New("ws: channel closed")
)

var _ contracts.Channel = (*Client)(nil)

type frame struct {
	data   []byte
	close  bool
	code   int
	reason string
}

// Client owns one socket. Only its writer goroutine writes, so frames leave in
// the order Send accepted them.
type Client struct {
	id           string
	conn         *websocket.Conn
	out          chan frame
	closing      chan struct{}
	done         chan struct{}
	closingOnce  sync.Once
	closeOnce    sync.Once
	termOnce     sync.Once
	writeTimeout time.Duration
	readLimit    int64
	log          *slog.Logger
}

func NewClient(conn *websocket.Conn, cfg config.SocketConfig, log *slog.Logger) *Client {
	c := newClient(conn, cfg, log)
	go c.writeLoop()
	return c
}

func newClient(conn *websocket.Conn, cfg config.SocketConfig, log *slog.Logger) *Client {
	size := cfg.SendBuffer
	if size <= 0 {
		size = 256
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	id := uuid.NewString()
	return &Client{
		id:           id,
		conn:         conn,
		out:          make(chan frame, size),
		closing:      make(chan struct{}),
		done:         make(chan struct{}),
		writeTimeout: timeout,
		readLimit:    cfg.ReadLimit,
		log:          log.With(logging.Conn(id)),
	}
}

func (c *Client) ID() string { return c.id }

// Send never blocks: a full buffer means the peer is too slow and the frame is refused.
func (c *Client) Send(_ context.Context, data []byte) error {
	select {
	case <-c.closing:
		return ErrChannelClosed
	default:
	}
	select {
	case c.out <- frame{data: data}:
		return nil
	default:
		return ErrChannelFull
	}
}

// Close queues a close frame behind pending frames. If the queue is full the
// socket is dropped at once.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.markClosing()
		select {
		case c.out <- frame{close: true, code: code, reason: reason}:
		default:
			c.terminate()
		}
	})
}

// Done is closed once the underlying socket has been closed.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) markClosing() {
	c.closingOnce.Do(func() { close(c.closing) })
}

func (c *Client) terminate() {
	c.termOnce.Do(func() {
		c.markClosing()
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) writeLoop() {
	defer c.terminate()
	for {
		select {
		case <-c.done:
			return
		case f := <-c.out:
			if f.close {
				msg := websocket.FormatCloseMessage(f.code, f.reason)
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
				c.log.Debug("ws - write - failed", logging.Err(err))
				return
			}
		}
	}
}

// ReadLoop hands every non-empty message to onMsg until the socket fails or closes.
// It always closes the socket before returning.
func (c *Client) ReadLoop(onMsg func([]byte)) error {
	defer c.terminate()
	if c.readLimit > 0 {
		c.conn.SetReadLimit(c.readLimit)
	}
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !IsExpectedClose(err) {
				c.log.Warn("ws - read - unexpected close", logging.Err(err))
			}
			return err
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}
