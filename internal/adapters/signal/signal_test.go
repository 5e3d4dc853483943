package signal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkeye/roomsignal/internal/app"
	"github.com/dkeye/roomsignal/internal/app/orch"
	"github.com/dkeye/roomsignal/internal/core"
)

type readResult struct {
	mt   int
	data []byte
	err  error
}

type fakeWS struct {
	reads chan readResult

	mu     sync.Mutex
	writes []readResult
	closed bool
	done   chan struct{}
}

func newFakeWS() *fakeWS {
	return &fakeWS{reads: make(chan readResult, 16), done: make(chan struct{})}
}

func (f *fakeWS) ReadMessage() (int, []byte, error) {
	select {
	case r := <-f.reads:
		return r.mt, r.data, r.err
	case <-f.done:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeWS) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("use of closed connection")
	}
	f.writes = append(f.writes, readResult{mt: mt, data: data})
	return nil
}

func (f *fakeWS) SetReadLimit(int64)                {}
func (f *fakeWS) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeWS) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeWS) SetPongHandler(func(string) error) {}

func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

func (f *fakeWS) written() []readResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]readResult(nil), f.writes...)
}

var testLimits = Limits{
	ReadLimit:  1024,
	SendBuffer: 2,
	WriteWait:  time.Second,
	PongWait:   time.Minute,
	PingPeriod: time.Hour,
}

func newTestController() *SignalWSController {
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewDirectory(),
		Policy:   app.DropPolicy{},
	}
	return NewSignalWSController(o, testLimits, nil)
}

func TestWsSignalConnTrySend(t *testing.T) {
	c := NewWsSignalConn(newFakeWS(), 2)
	if err := c.TrySend(core.Frame("1")); err != nil {
		t.Fatalf("send 1: %v", err)
	}
	if err := c.TrySend(core.Frame("2")); err != nil {
		t.Fatalf("send 2: %v", err)
	}
	if err := c.TrySend(core.Frame("3")); !errors.Is(err, ErrBackpressure) {
		t.Fatalf("send 3: err=%v, want %v", err, ErrBackpressure)
	}
	c.Close()
	c.Close()
	if err := c.TrySend(core.Frame("4")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after close: err=%v, want %v", err, ErrClosed)
	}
}

func TestWritePumpDrainsThenCloses(t *testing.T) {
	ctl := newTestController()
	ws := newFakeWS()
	c := NewWsSignalConn(ws, 4)
	_ = c.TrySend(core.Frame(`{"type":"pong"}`))
	c.Close()

	ctl.writePump(context.Background(), c)

	w := ws.written()
	if len(w) != 2 {
		t.Fatalf("writes=%d, want text + close", len(w))
	}
	if w[0].mt != websocket.TextMessage || string(w[0].data) != `{"type":"pong"}` {
		t.Fatalf("first write=%d %s", w[0].mt, w[0].data)
	}
	if w[1].mt != websocket.CloseMessage {
		t.Fatalf("second write type=%d, want close", w[1].mt)
	}
	if !ws.closed {
		t.Fatalf("socket left open")
	}
}

func TestWritePumpStopsOnContext(t *testing.T) {
	ctl := newTestController()
	ws := newFakeWS()
	c := NewWsSignalConn(ws, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctl.writePump(ctx, c)
	if !ws.closed {
		t.Fatalf("socket left open")
	}
}

func TestReadPumpDispatchesAndCleansUp(t *testing.T) {
	ctl := newTestController()

	peerWS := newFakeWS()
	peer := NewWsSignalConn(peerWS, 8)
	peerID := ctl.Orch.Connect(peer)
	ctl.Orch.Dispatch(peerID, []byte(`{"type":"join-room","email":"a@x.com","room":"abc"}`))

	ws := newFakeWS()
	c := NewWsSignalConn(ws, 8)
	sid := ctl.Orch.Connect(c)

	ws.reads <- readResult{mt: websocket.BinaryMessage, data: []byte(`{"type":"ping"}`)}
	ws.reads <- readResult{mt: websocket.TextMessage, data: []byte(`{"type":"join-room","email":"b@x.com","room":"abc"}`)}
	ws.reads <- readResult{err: &websocket.CloseError{Code: websocket.CloseGoingAway}}

	cancelled := false
	ctl.readPump(func() { cancelled = true }, sid, c)

	if !cancelled {
		t.Fatalf("readPump did not cancel the connection context")
	}
	if _, ok := ctl.Orch.Registry.Get(sid); ok {
		t.Fatalf("connection still registered")
	}
	if err := c.TrySend(core.Frame("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after readPump: err=%v", err)
	}

	// The peer saw its own roster, then b arriving and leaving.
	var frames []string
	for len(peer.send) > 0 {
		frames = append(frames, string(<-peer.send))
	}
	if len(frames) != 3 {
		t.Fatalf("peer frames=%v", frames)
	}
	if peers, _ := ctl.Orch.RoomPeers("abc"); len(peers) != 1 || peers[0].ID != peerID {
		t.Fatalf("room peers=%v", peers)
	}
}

func TestOriginChecker(t *testing.T) {
	open := originChecker(nil)
	strict := originChecker([]string{"https://app.example.com"})

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	if !open(req("https://evil.example.com")) {
		t.Fatalf("open checker refused")
	}
	if !strict(req("https://app.example.com")) {
		t.Fatalf("allowed origin refused")
	}
	if strict(req("https://evil.example.com")) {
		t.Fatalf("foreign origin accepted")
	}
	if !strict(req("")) {
		t.Fatalf("non-browser client refused")
	}
}
