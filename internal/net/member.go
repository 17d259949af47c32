package net

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from a peer. Any board the relay stores
	// must fit in a shape-update, which carries one shape plus the whole list.
	maxMessageSize = 2*maxBoardSize + 64<<10

	sendBufferSize = 256
)

// member is one relay connection, joined to the room of a single board.
type member struct {
	board    string
	instance string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	logger   *zap.Logger
}

func newMember(board, instance string, hub *Hub, conn *websocket.Conn, logger *zap.Logger) *member {
	return &member{
		board:    board,
		instance: instance,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger: logger.With(
			zap.String("board", board),
			zap.String("instance", instance),
		),
	}
}

func (m *member) start() {
	if !m.hub.join(m) {
		m.conn.Close()
		return
	}
	go m.writePump()
	go m.readPump()
}

// readPump hands every text frame to the hub until the connection fails.
func (m *member) readPump() {
	defer func() {
		m.hub.leave(m)
		m.conn.Close()
	}()

	m.conn.SetReadLimit(maxMessageSize)
	m.conn.SetReadDeadline(time.Now().Add(pongWait))
	m.conn.SetPongHandler(func(string) error {
		m.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, frame, err := m.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			m.logger.Debug("Ignoring binary frame")
			continue
		}
		// Any frame proves the peer is alive.
		m.conn.SetReadDeadline(time.Now().Add(pongWait))
		if !m.hub.publish(m, frame) {
			return
		}
	}
}

func (m *member) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		m.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-m.send:
			m.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				m.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := m.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				m.logger.Warn("Failed to write frame", zap.Error(err))
				return
			}

			n := len(m.send)
			for i := 0; i < n; i++ {
				frame, ok := <-m.send
				if !ok {
					m.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := m.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					m.logger.Warn("Failed to write queued frame", zap.Error(err))
					return
				}
			}

		case <-ticker.C:
			m.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := m.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				m.logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
