package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RefresherOptions configures a Refresher. Store and Fetcher are required;
// the rest default to no-ops.
type RefresherOptions struct {
	Store     *StateStore
	Fetcher   Fetcher
	Hook      RefreshHook
	Telemetry Telemetry
	Logger    *zap.Logger
}

// Refresher runs one goroutine per widget: an immediate fetch followed by
// a ticker at the widget's refresh interval. Every fetch is issued under a
// monotonically increasing per-widget token; a response whose token has
// been superseded by a newer request is discarded, so overlapping manual
// and periodic refreshes can never regress the stored data.
type Refresher struct {
	store     *StateStore
	fetcher   Fetcher
	hook      RefreshHook
	telemetry Telemetry
	logger    *zap.Logger

	mu   sync.Mutex
	jobs map[string]*refreshJob
}

type refreshJob struct {
	widget Widget
	cancel context.CancelFunc
	token  atomic.Uint64
}

// NewRefresher builds a refresher with no jobs scheduled.
func NewRefresher(opts RefresherOptions) *Refresher {
	hook := opts.Hook
	if hook == nil {
		hook = noopRefreshHook{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		hook:      hook,
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    logger,
		jobs:      map[string]*refreshJob{},
	}
}

// Start schedules refreshes for w, replacing any existing schedule for the
// same widget. The first fetch happens immediately; a RefreshInterval of
// zero means fetch once and stop.
func (r *Refresher) Start(w Widget) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &refreshJob{widget: w, cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.jobs[w.ID]; ok {
		prev.cancel()
	}
	r.jobs[w.ID] = job
	r.mu.Unlock()

	go r.run(ctx, job)
}

func (r *Refresher) run(ctx context.Context, job *refreshJob) {
	r.runFetch(ctx, job)
	interval := job.widget.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runFetch(ctx, job)
		}
	}
}

// runFetch performs one fetch under a fresh token. Stopping a job cancels
// its timer loop only; a fetch already in flight runs to completion and is
// then discarded by the token check.
func (r *Refresher) runFetch(ctx context.Context, job *refreshJob) {
	w := job.widget
	token := job.token.Add(1)

	payload, err := r.fetcher.Fetch(context.WithoutCancel(ctx), w.Endpoint, w.Parameters)
	now := time.Now()

	if job.token.Load() != token {
		r.telemetry.Record(ctx, "dashboard.refresh.superseded", map[string]any{"widget": w.ID})
		return
	}
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		r.logger.Warn("widget refresh failed", zap.String("widget", w.ID), zap.Error(err))
		if serr := r.store.SetError(w.ID, err.Error(), now); serr != nil {
			return
		}
		r.telemetry.Record(ctx, "dashboard.refresh.error", map[string]any{"widget": w.ID, "error": err.Error()})
	} else {
		if serr := r.store.SetData(w.ID, payload, now); serr != nil {
			return
		}
		r.telemetry.Record(ctx, "dashboard.refresh.ok", map[string]any{"widget": w.ID})
	}
	if herr := r.hook.WidgetUpdated(ctx, WidgetEvent{WidgetID: w.ID, Reason: EventData, Timestamp: now}); herr != nil {
		r.logger.Debug("refresh hook error", zap.String("widget", w.ID), zap.Error(herr))
	}
}

// Refresh triggers an immediate out-of-band fetch for id. It runs
// concurrently with the periodic schedule; the token it takes supersedes
// any fetch already in flight for the widget.
func (r *Refresher) Refresh(ctx context.Context, id string) error {
	r.mu.Lock()
	job, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		w, found := r.store.Widget(id)
		if !found {
			return ErrWidgetNotFound
		}
		r.Start(w)
		return nil
	}
	go r.runFetch(context.WithoutCancel(ctx), job)
	return nil
}

// Stop cancels the schedule for a single widget.
func (r *Refresher) Stop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.cancel()
		delete(r.jobs, id)
	}
}

// Close cancels every schedule.
func (r *Refresher) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, job := range r.jobs {
		job.cancel()
		delete(r.jobs, id)
	}
}
