package net

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"LiveBoard/internal/broadcast"
	"LiveBoard/internal/persist"
	"LiveBoard/internal/state"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type relay struct {
	srv *Server
	ts  *httptest.Server
}

func startRelay(t *testing.T, store persist.Gateway) *relay {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(store, zaptest.NewLogger(t))
	go srv.Hub().Run(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &relay{srv: srv, ts: ts}
}

// join dials the relay and returns the client and its inbound frames.
func (r *relay) join(t *testing.T, board, instance string) (*Client, <-chan []byte) {
	t.Helper()
	frames := make(chan []byte, 32)
	u, err := BoardURL(r.ts.URL, board, instance)
	require.NoError(t, err)

	before := r.srv.Hub().RoomSize(board)
	c, err := Dial(context.Background(), u, func(f []byte) { frames <- f }, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.Eventually(t, func() bool { return r.srv.Hub().RoomSize(board) == before+1 },
		2*time.Second, 10*time.Millisecond)
	return c, frames
}

func receive(t *testing.T, frames <-chan []byte) []byte {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func assertQuiet(t *testing.T, frames <-chan []byte) {
	t.Helper()
	select {
	case f := <-frames:
		t.Fatalf("unexpected frame %s", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayForwardsToOtherMembersOfTheBoard(t *testing.T) {
	r := startRelay(t, nil)
	a, fromA := r.join(t, "b1", "A")
	_, fromB := r.join(t, "b1", "B")
	_, fromC := r.join(t, "b2", "C")

	frame := []byte(`{"type":"cursor-move","whiteboardId":"b1","instanceId":"A","x":1,"y":2}`)
	require.NoError(t, a.Publish(frame))

	assert.Equal(t, frame, receive(t, fromB))
	assertQuiet(t, fromA)
	assertQuiet(t, fromC)
}

func TestRelayForwardsFramesVerbatim(t *testing.T) {
	r := startRelay(t, nil)
	a, _ := r.join(t, "b1", "A")
	_, fromB := r.join(t, "b1", "B")

	// The relay does not parse payloads, so even unknown events pass through.
	frame := []byte(`{"type":"something-new","extra":[1,2,3]}`)
	require.NoError(t, a.Publish(frame))
	assert.Equal(t, frame, receive(t, fromB))
}

func TestRelaySendsLeaveWhenMemberDisconnects(t *testing.T) {
	r := startRelay(t, nil)
	a, _ := r.join(t, "b1", "A")
	_, fromB := r.join(t, "b1", "B")

	require.NoError(t, a.Close())

	ev, err := broadcast.Decode(receive(t, fromB))
	require.NoError(t, err)
	assert.Equal(t, broadcast.Leave, ev.Type)
	assert.Equal(t, "b1", ev.WhiteboardID)
	assert.Equal(t, "A", ev.InstanceID)

	require.Eventually(t, func() bool { return r.srv.Hub().RoomSize("b1") == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubLeaveQueuedBehindJoinEmptiesRoom(t *testing.T) {
	for i := 0; i < 100; i++ {
		hub := NewHub(nil, zap.NewNop())
		m := &member{board: "b1", instance: "A", hub: hub, send: make(chan []byte, 1), logger: zap.NewNop()}
		require.True(t, hub.join(m))
		hub.leave(m)

		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)
		// once both changes are taken, an empty room means the leave was applied
		require.Eventually(t, func() bool { return len(hub.membership) == 0 },
			time.Second, time.Millisecond)
		require.Eventually(t, func() bool { return hub.ConnectionCount() == 0 },
			time.Second, time.Millisecond)
		assert.Equal(t, 0, hub.RoomCount())
		_, open := <-m.send
		assert.False(t, open, "a member that left has its send channel closed")
		cancel()
		<-hub.done
	}
}

func TestRelayCarriesBoardsLargerThanFourMiB(t *testing.T) {
	store := persist.NewMemoryGateway()
	r := startRelay(t, store)
	a, _ := r.join(t, "b1", "A")
	_, fromB := r.join(t, "b1", "B")

	points := make([]state.Point, 300000)
	for i := range points {
		points[i] = state.Point{X: float64(i) + 0.5, Y: float64(i%1000) + 0.5}
	}
	list := state.ShapeList{{ID: "s1", Tool: state.ToolFreehand, Points: points, Color: "#000000", StrokeWidth: 2}}
	board, err := list.Serialize()
	require.NoError(t, err)
	require.Greater(t, len(board), 4<<20)
	require.Less(t, len(board), maxBoardSize)

	req, err := http.NewRequest(http.MethodPut, r.ts.URL+"/api/boards/b1", strings.NewReader(board))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	frame, err := broadcast.Encode(broadcast.Event{
		Type:         broadcast.ShapeUpdate,
		WhiteboardID: "b1",
		InstanceID:   "A",
		Shape:        &list[0],
		Shapes:       list,
	})
	require.NoError(t, err)
	require.NoError(t, a.Publish(frame))

	select {
	case got := <-fromB:
		assert.Equal(t, len(frame), len(got))
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the large frame")
	}
	assert.Equal(t, 2, r.srv.Hub().RoomSize("b1"), "the sender stays connected")
}

func TestClientFlushesQueuedFramesOnClose(t *testing.T) {
	r := startRelay(t, nil)
	a, _ := r.join(t, "b1", "A")
	_, fromB := r.join(t, "b1", "B")

	require.NoError(t, a.Publish([]byte(`{"type":"leave","whiteboardId":"b1","instanceId":"A"}`)))
	require.NoError(t, a.Close())

	first := receive(t, fromB)
	assert.Contains(t, string(first), `"instanceId":"A"`)
}

func TestClientPublishAfterClose(t *testing.T) {
	r := startRelay(t, nil)
	a, _ := r.join(t, "b1", "A")
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.Publish([]byte(`{}`)), ErrClosed)
	select {
	case <-a.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestWebSocketRequiresInstance(t *testing.T) {
	r := startRelay(t, nil)
	resp, err := http.Get(r.ts.URL + "/ws/b1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws/b1?instance=x", nil, nil)
	assert.Error(t, err)
}

func TestBoardAPI(t *testing.T) {
	store := persist.NewMemoryGateway()
	r := startRelay(t, store)

	resp, err := http.Get(r.ts.URL + "/api/boards/b1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	put := func(body string) int {
		req, err := http.NewRequest(http.MethodPut, r.ts.URL+"/api/boards/b1", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusBadRequest, put(`{"not":"a list"}`))
	assert.Equal(t, 0, store.Writes())

	board := `[{"id":"s1","tool":"rectangle","points":[{"x":0,"y":0},{"x":5,"y":5}],"color":"#fff","width":2}]`
	assert.Equal(t, http.StatusNoContent, put(board))

	resp, err = http.Get(r.ts.URL + "/api/boards/b1")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, board, string(body))
}

func TestBoardAPIWithHTTPGateway(t *testing.T) {
	r := startRelay(t, persist.NewMemoryGateway())
	gw := persist.NewHTTPGateway(r.ts.URL, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := gw.Read(ctx, "b1")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, gw.Write(ctx, "b1", "[]"))
	text, err := gw.Read(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
}

func TestBoardAPIWithoutStore(t *testing.T) {
	r := startRelay(t, nil)

	req, err := http.NewRequest(http.MethodPut, r.ts.URL+"/api/boards/b1", strings.NewReader("[]"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	r := startRelay(t, nil)
	r.join(t, "b1", "A")

	resp, err := http.Get(r.ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(r.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "liveboard_relay_connections 1")
	assert.Contains(t, string(body), "liveboard_relay_rooms 1")
}

func TestBoardURL(t *testing.T) {
	tests := []struct {
		base string
		want string
		err  bool
	}{
		{base: "192.168.1.5:8888", want: "ws://192.168.1.5:8888/ws/b1?instance=i1"},
		{base: "http://host:8888", want: "ws://host:8888/ws/b1?instance=i1"},
		{base: "https://relay.example/", want: "wss://relay.example/ws/b1?instance=i1"},
		{base: "wss://relay.example/live", want: "wss://relay.example/live/ws/b1?instance=i1"},
		{base: "ftp://host", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := BoardURL(tt.base, "b1", "i1")
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShareLink(t *testing.T) {
	link := ShareLink("192.168.1.5", 8888, "team-board")
	assert.Equal(t, "liveboard://192.168.1.5:8888/team-board", link)

	addr, board, err := ParseShareLink(link)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5:8888", addr)
	assert.Equal(t, "team-board", board)

	addr, board, err = ParseShareLink("10.0.0.2:9000")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:9000", addr)
	assert.Empty(t, board)

	_, _, err = ParseShareLink("not a link")
	assert.Error(t, err)
}

func TestHostFromEntry(t *testing.T) {
	e := &mdns.ServiceEntry{
		Name:       "laptop." + ServiceType + ".local.",
		AddrV4:     []byte{192, 168, 1, 9},
		Port:       8888,
		InfoFields: []string{"LiveBoard", "board=default"},
	}
	h, ok := hostFromEntry(e)
	require.True(t, ok)
	assert.Equal(t, Host{Name: "laptop", Addr: "192.168.1.9:8888", Board: "default"}, h)

	_, ok = hostFromEntry(&mdns.ServiceEntry{Port: 8888})
	assert.False(t, ok)
}

func TestServeStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(nil, zaptest.NewLogger(t))
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
