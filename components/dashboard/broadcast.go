package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// EventFrame is the wire form of a widget event. Seq increases by one per
// broadcast across all widgets; a gap tells a client it missed frames and
// should reload the affected widget views instead of trusting its state.
type EventFrame struct {
	Seq uint64 `json:"seq"`
	WidgetEvent
}

// BroadcastHook fans widget events out to connected clients. It satisfies
// RefreshHook, so the refresher pushes data updates through it, and it can
// additionally bridge StateStore events so clients see config changes too.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]chan EventFrame
	next    int
	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewBroadcastHook creates a broadcast hook with no subscribers.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]chan EventFrame)}
}

// WidgetUpdated stamps the event with the next sequence number and
// broadcasts it. Slow subscribers never block the refresher; frames they
// cannot keep up with are dropped and counted.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	frame := EventFrame{Seq: h.seq.Add(1), WidgetEvent: event}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- frame:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// BindStore forwards every StateStore event through the hook. The returned
// func unbinds.
func (h *BroadcastHook) BindStore(store *StateStore) func() {
	return store.Subscribe(func(event WidgetEvent) {
		_ = h.WidgetUpdated(context.Background(), event)
	})
}

// Subscribe returns a buffered channel of event frames and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan EventFrame, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan EventFrame, 16)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Dropped reports how many frames were discarded for slow subscribers.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

const (
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams event frames as JSON.
// The connection is pinged at wsPingInterval to keep intermediaries from
// closing idle dashboards, and a read pump notices clients that go away
// without a close handshake.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	frames, cancel := h.Subscribe()
	defer cancel()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-clientGone:
			return
		case <-ping.C:
			deadline := time.Now().Add(wsWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case frame, ok := <-frames:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams event frames as Server-Sent Events. The frame sequence
// doubles as the SSE event id and the event reason names the event type,
// so EventSource clients can filter on reason and resume detection works
// off Last-Event-ID.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	frames, cancel := h.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: ", frame.Seq, frame.Reason)
			if err := encoder.Encode(frame); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
