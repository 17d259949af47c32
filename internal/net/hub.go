package net

import (
	"context"
	"sync"
	"time"

	"LiveBoard/internal/broadcast"

	"go.uber.org/zap"
)

type inbound struct {
	from  *member
	frame []byte
}

// membershipChange is a join or leave. Both travel on one channel so a leave
// is never handled before the join it follows.
type membershipChange struct {
	m    *member
	join bool
}

// Hub keeps one room per board and relays every frame a member sends to the
// other members of its room. Frames are forwarded as received.
type Hub struct {
	rooms map[string]map[*member]bool
	mu    sync.RWMutex

	membership chan membershipChange
	relay      chan inbound
	done       chan struct{}

	metrics *Metrics
	logger  *zap.Logger
}

func NewHub(metrics *Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics("liveboard")
	}
	return &Hub{
		rooms:      make(map[string]map[*member]bool),
		membership: make(chan membershipChange, 200),
		relay:      make(chan inbound, 1000),
		done:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing
// every connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAll()
			return

		case c := <-h.membership:
			if c.join {
				h.add(c.m)
			} else {
				h.remove(c.m)
			}

		case in := <-h.relay:
			h.forward(in.from, in.frame)

		case <-ticker.C:
			h.logger.Debug("Relay status",
				zap.Int("rooms", h.RoomCount()),
				zap.Int("connections", h.ConnectionCount()),
			)
		}
	}
}

func (h *Hub) add(m *member) {
	h.mu.Lock()
	room := h.rooms[m.board]
	if room == nil {
		room = make(map[*member]bool)
		h.rooms[m.board] = room
		h.metrics.rooms.Inc()
	}
	room[m] = true
	size := len(room)
	h.mu.Unlock()

	h.metrics.connections.Inc()
	h.logger.Info("Member joined",
		zap.String("board", m.board),
		zap.String("instance", m.instance),
		zap.Int("roomSize", size),
	)
}

// remove drops m from its room and tells the rest of the room it left.
func (h *Hub) remove(m *member) {
	h.mu.Lock()
	room, ok := h.rooms[m.board]
	if !ok || !room[m] {
		h.mu.Unlock()
		return
	}
	delete(room, m)
	close(m.send)
	if len(room) == 0 {
		delete(h.rooms, m.board)
		h.metrics.rooms.Dec()
	}
	size := len(room)
	h.mu.Unlock()

	h.metrics.connections.Dec()
	h.logger.Info("Member left",
		zap.String("board", m.board),
		zap.String("instance", m.instance),
		zap.Int("roomSize", size),
	)

	if size == 0 {
		return
	}
	frame, err := broadcast.Encode(broadcast.Event{
		Type:         broadcast.Leave,
		WhiteboardID: m.board,
		InstanceID:   m.instance,
	})
	if err != nil {
		h.logger.Error("Failed to encode leave event", zap.Error(err))
		return
	}
	h.forward(m, frame)
}

// forward delivers frame to every member of from's room except from. A member
// whose send buffer is full misses the frame.
func (h *Hub) forward(from *member, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for m := range h.rooms[from.board] {
		if m == from {
			continue
		}
		select {
		case m.send <- frame:
			h.metrics.relayed.Inc()
		default:
			h.metrics.dropped.Inc()
			h.logger.Warn("Dropping frame for slow member",
				zap.String("board", m.board),
				zap.String("instance", m.instance),
			)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for board, room := range h.rooms {
		for m := range room {
			close(m.send)
			m.conn.Close()
			h.metrics.connections.Dec()
		}
		delete(h.rooms, board)
		h.metrics.rooms.Dec()
	}
	h.logger.Info("All connections closed")
}

// join hands m to the event loop. It reports false once the hub has stopped.
func (h *Hub) join(m *member) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.membership <- membershipChange{m: m, join: true}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(m *member) {
	select {
	case h.membership <- membershipChange{m: m}:
	case <-h.done:
	}
}

func (h *Hub) publish(m *member, frame []byte) bool {
	select {
	case h.relay <- inbound{from: m, frame: frame}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// RoomSize returns the number of connections open on board.
func (h *Hub) RoomSize(board string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[board])
}
