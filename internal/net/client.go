package net

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Client is one board's link to a relay. Frames from peers go to the handler
// on the client's read goroutine; Publish never blocks.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	handler func(frame []byte)
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// BoardURL builds the relay websocket address for a board. base may be a host,
// host:port, or an http(s)/ws(s) URL.
func BoardURL(base, boardID, instanceID string) (string, error) {
	if !strings.Contains(base, "://") {
		base = "ws://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid relay address %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid relay address %q: unsupported scheme", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid relay address %q: missing host", base)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + url.PathEscape(boardID)
	u.RawQuery = url.Values{"instance": {instanceID}}.Encode()
	return u.String(), nil
}

// Dial connects to a relay board URL. handler may be nil.
func Dial(ctx context.Context, rawURL string, handler func(frame []byte), logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handler == nil {
		handler = func([]byte) {}
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to relay (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}

	c := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		handler: handler,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger.Named("client"),
	}
	go c.writePump()
	go c.readPump()

	c.logger.Info("Connected to relay", zap.String("url", rawURL))
	return c, nil
}

// Publish queues frame for the relay. It returns ErrBufferFull rather than
// wait for a slow connection.
func (c *Client) Publish(frame []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}

// Done is closed when the connection ends, by Close or by the relay.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close flushes queued frames, closes the connection and waits for the writer
// to finish. Further Publish calls return ErrClosed.
func (c *Client) Close() error {
	c.shutdown()
	select {
	case <-c.stopped:
	case <-time.After(writeWait):
	}
	return nil
}

func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("Relay connection lost", zap.Error(err))
				}
			}
			return
		}
		if messageType == websocket.TextMessage {
			c.handler(frame)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.stopped)
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("Failed to write frame", zap.Error(err))
				c.shutdown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}

		case <-c.done:
			c.flush()
			return
		}
	}
}

// flush writes what is still queued, then says goodbye.
func (c *Client) flush() {
	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
