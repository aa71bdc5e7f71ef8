package dashboard

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// StateStore is the single container for widget configuration and fetched
// data. Mutations notify subscribers; configuration mutations additionally
// persist a snapshot. All methods are safe for concurrent use.
type StateStore struct {
	mu       sync.RWMutex
	widgets  []Widget
	data     map[string]WidgetData
	subs     map[int]func(WidgetEvent)
	nextSub  int
	snapshot SnapshotStore
	logger   *zap.Logger
}

// NewStateStore builds a store. A nil snapshot disables persistence; a nil
// logger defaults to a no-op logger.
func NewStateStore(snapshot SnapshotStore, logger *zap.Logger) *StateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateStore{
		data:     map[string]WidgetData{},
		subs:     map[int]func(WidgetEvent){},
		snapshot: snapshot,
		logger:   logger,
	}
}

// Load replaces the widget set from the snapshot store. Fetched data is
// never part of a snapshot, so every widget starts without data.
func (s *StateStore) Load() error {
	if s.snapshot == nil {
		return nil
	}
	widgets, err := s.snapshot.Load()
	if err != nil {
		return fmt.Errorf("dashboard: load snapshot: %w", err)
	}
	sort.SliceStable(widgets, func(i, j int) bool { return widgets[i].Order < widgets[j].Order })

	s.mu.Lock()
	s.widgets = widgets
	s.data = map[string]WidgetData{}
	s.mu.Unlock()
	return nil
}

// Add registers a widget. IDs must be unique.
func (s *StateStore) Add(w Widget) error {
	s.mu.Lock()
	for _, existing := range s.widgets {
		if existing.ID == w.ID {
			s.mu.Unlock()
			return ErrWidgetExists
		}
	}
	s.widgets = append(s.widgets, w)
	s.mu.Unlock()

	s.persist()
	s.notify(WidgetEvent{WidgetID: w.ID, Reason: EventAdded, Timestamp: time.Now()})
	return nil
}

// Update replaces the stored widget with the same ID.
func (s *StateStore) Update(w Widget) error {
	s.mu.Lock()
	found := false
	for i, existing := range s.widgets {
		if existing.ID == w.ID {
			s.widgets[i] = w
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrWidgetNotFound
	}

	s.persist()
	s.notify(WidgetEvent{WidgetID: w.ID, Reason: EventUpdated, Timestamp: time.Now()})
	return nil
}

// Remove drops a widget along with its fetched data.
func (s *StateStore) Remove(id string) error {
	s.mu.Lock()
	found := false
	for i, existing := range s.widgets {
		if existing.ID == id {
			s.widgets = append(s.widgets[:i], s.widgets[i+1:]...)
			found = true
			break
		}
	}
	delete(s.data, id)
	s.mu.Unlock()
	if !found {
		return ErrWidgetNotFound
	}

	s.persist()
	s.notify(WidgetEvent{WidgetID: id, Reason: EventRemoved, Timestamp: time.Now()})
	return nil
}

// Reorder rearranges widgets to match ids; widgets not listed keep their
// relative order after the listed ones. Order fields are renumbered.
func (s *StateStore) Reorder(ids []string) error {
	s.mu.Lock()
	index := make(map[string]Widget, len(s.widgets))
	for _, w := range s.widgets {
		index[w.ID] = w
	}
	result := make([]Widget, 0, len(s.widgets))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if w, ok := index[id]; ok {
			result = append(result, w)
			seen[id] = struct{}{}
		}
	}
	for _, w := range s.widgets {
		if _, ok := seen[w.ID]; !ok {
			result = append(result, w)
		}
	}
	for i := range result {
		result[i].Order = i
	}
	s.widgets = result
	s.mu.Unlock()

	s.persist()
	s.notify(WidgetEvent{Reason: EventReordered, Timestamp: time.Now()})
	return nil
}

// NextOrder returns an order value that places a new widget last.
func (s *StateStore) NextOrder() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, w := range s.widgets {
		if w.Order >= next {
			next = w.Order + 1
		}
	}
	return next
}

// Widgets returns a copy of the widget set sorted by Order.
func (s *StateStore) Widgets() []Widget {
	s.mu.RLock()
	out := make([]Widget, len(s.widgets))
	copy(out, s.widgets)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Widget looks up a single widget by ID.
func (s *StateStore) Widget(id string) (Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// SetData records a successful fetch, clearing any previous error.
func (s *StateStore) SetData(id string, payload jsonkit.Value, at time.Time) error {
	s.mu.Lock()
	if !s.hasWidgetLocked(id) {
		s.mu.Unlock()
		return ErrWidgetNotFound
	}
	s.data[id] = WidgetData{WidgetID: id, Payload: payload, HasPayload: true, Timestamp: at}
	s.mu.Unlock()

	s.notify(WidgetEvent{WidgetID: id, Reason: EventData, Timestamp: at})
	return nil
}

// SetError records a failed fetch while keeping the last good payload.
func (s *StateStore) SetError(id, msg string, at time.Time) error {
	s.mu.Lock()
	if !s.hasWidgetLocked(id) {
		s.mu.Unlock()
		return ErrWidgetNotFound
	}
	d := s.data[id]
	d.WidgetID = id
	d.Err = msg
	d.Timestamp = at
	s.data[id] = d
	s.mu.Unlock()

	s.notify(WidgetEvent{WidgetID: id, Reason: EventError, Timestamp: at})
	return nil
}

// ClearData drops the fetched data for a widget, keeping its config.
func (s *StateStore) ClearData(id string) {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
}

// Data returns the latest fetch outcome for a widget.
func (s *StateStore) Data(id string) (WidgetData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[id]
	return d, ok
}

// Subscribe registers an observer for widget events. The returned cancel
// func removes it. Callbacks run synchronously after each mutation and
// must not call back into the store.
func (s *StateStore) Subscribe(fn func(WidgetEvent)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *StateStore) hasWidgetLocked(id string) bool {
	for _, w := range s.widgets {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (s *StateStore) notify(event WidgetEvent) {
	s.mu.RLock()
	fns := make([]func(WidgetEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (s *StateStore) persist() {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Save(s.Widgets()); err != nil {
		s.logger.Warn("snapshot save failed", zap.Error(err))
	}
}
