package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastFanOut(t *testing.T) {
	hook := NewBroadcastHook()
	a, cancelA := hook.Subscribe()
	b, cancelB := hook.Subscribe()
	defer cancelA()
	defer cancelB()

	hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1", Reason: EventData})

	for _, ch := range []<-chan EventFrame{a, b} {
		select {
		case frame := <-ch:
			if frame.WidgetID != "w1" {
				t.Fatalf("unexpected frame %+v", frame)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive frame")
		}
	}
}

func TestBroadcastSequencesFrames(t *testing.T) {
	hook := NewBroadcastHook()
	frames, cancel := hook.Subscribe()
	defer cancel()

	hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1", Reason: EventData})
	hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w2", Reason: EventData})

	first := <-frames
	second := <-frames
	if first.Seq == 0 {
		t.Fatalf("sequence must start above zero, got %d", first.Seq)
	}
	if second.Seq != first.Seq+1 {
		t.Fatalf("expected consecutive sequence numbers, got %d then %d", first.Seq, second.Seq)
	}
}

func TestBroadcastDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()

	// channel buffer is 16; the rest must be dropped without blocking
	for i := 0; i < 20; i++ {
		hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1"})
	}
	if hook.Dropped() != 4 {
		t.Fatalf("expected 4 dropped frames, got %d", hook.Dropped())
	}
}

func TestBroadcastCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	frames, cancel := hook.Subscribe()
	cancel()
	cancel() // idempotent

	if _, ok := <-frames; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestBindStoreForwardsStoreEvents(t *testing.T) {
	hook := NewBroadcastHook()
	store := NewStateStore(nil, nil)
	unbind := hook.BindStore(store)
	defer unbind()

	frames, cancel := hook.Subscribe()
	defer cancel()

	store.Add(Widget{ID: "w1", Name: "Trending"})

	select {
	case frame := <-frames:
		if frame.Reason != EventAdded || frame.WidgetID != "w1" {
			t.Fatalf("unexpected frame %+v", frame)
		}
	case <-time.After(time.Second):
		t.Fatalf("store event not forwarded")
	}
}

func TestServeWebSocketStreamsFrames(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// wait for the server side to subscribe
	waitFor(t, func() bool {
		hook.mu.RLock()
		defer hook.mu.RUnlock()
		return len(hook.subs) == 1
	})

	hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1", Reason: EventData})

	var frame EventFrame
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.WidgetID != "w1" || frame.Seq == 0 {
		t.Fatalf("unexpected frame %+v", frame)
	}
}

type sseRecorder struct {
	*httptest.ResponseRecorder
	flushed chan struct{}
}

func (r *sseRecorder) Flush() {
	select {
	case r.flushed <- struct{}{}:
	default:
	}
}

func TestServeSSEWritesProtocolFields(t *testing.T) {
	hook := NewBroadcastHook()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/events", nil).WithContext(ctx)
	rec := &sseRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		flushed:          make(chan struct{}, 1),
	}

	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()

	waitFor(t, func() bool {
		hook.mu.RLock()
		defer hook.mu.RUnlock()
		return len(hook.subs) == 1
	})
	hook.WidgetUpdated(context.Background(), WidgetEvent{WidgetID: "w1", Reason: EventData})

	select {
	case <-rec.flushed:
	case <-time.After(2 * time.Second):
		t.Fatalf("frame not flushed to the stream")
	}
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "id: 1\n") {
		t.Fatalf("expected sequence id line, got %q", body)
	}
	if !strings.Contains(body, "event: data\n") {
		t.Fatalf("expected event name line, got %q", body)
	}
	if !strings.Contains(body, `"widget_id":"w1"`) {
		t.Fatalf("expected frame payload, got %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
}
