package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-finboard/components/dashboard/views"
	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// Options configures the Service. Store and Fetcher are required; missing
// collaborators are defaulted by NewService.
type Options struct {
	Store       *StateStore
	Fetcher     Fetcher
	Catalog     *Catalog
	Validator   ParamsValidator
	Refresher   *Refresher
	RefreshHook RefreshHook
	RenderCache views.RenderCache
	Telemetry   Telemetry
	Logger      *zap.Logger
}

// Service orchestrates the dashboard: widget lifecycle, refresh
// scheduling, endpoint previews, and view-model resolution.
type Service struct {
	store       *StateStore
	fetcher     Fetcher
	catalog     *Catalog
	validator   ParamsValidator
	refresher   *Refresher
	hook        RefreshHook
	renderCache views.RenderCache
	telemetry   Telemetry
	logger      *zap.Logger
}

// NewService builds a service, defaulting the catalog, validator,
// refresher, render cache, telemetry, and logger when absent.
func NewService(opts Options) *Service {
	catalog := opts.Catalog
	if catalog == nil {
		catalog, _ = NewCatalog()
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewSchemaValidator()
	}
	hook := opts.RefreshHook
	if hook == nil {
		hook = noopRefreshHook{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	refresher := opts.Refresher
	if refresher == nil {
		refresher = NewRefresher(RefresherOptions{
			Store:     opts.Store,
			Fetcher:   opts.Fetcher,
			Hook:      hook,
			Telemetry: telemetry,
			Logger:    logger,
		})
	}
	renderCache := opts.RenderCache
	if renderCache == nil {
		renderCache = views.NewChartCache(views.DefaultChartCacheTTL, views.DefaultChartCacheEntries)
	}
	return &Service{
		store:       opts.Store,
		fetcher:     opts.Fetcher,
		catalog:     catalog,
		validator:   validator,
		refresher:   refresher,
		hook:        hook,
		renderCache: renderCache,
		telemetry:   telemetry,
		logger:      logger,
	}
}

// Start loads the persisted widget configuration and schedules refreshes
// for every widget. Call once at boot.
func (s *Service) Start(ctx context.Context) error {
	if err := s.store.Load(); err != nil {
		return err
	}
	widgets := s.store.Widgets()
	for _, w := range widgets {
		s.refresher.Start(w)
	}
	s.telemetry.Record(ctx, "dashboard.started", map[string]any{"widgets": len(widgets)})
	return nil
}

// Close stops every refresh schedule.
func (s *Service) Close() {
	s.refresher.Close()
}

// AddWidgetRequest carries user input for widget creation.
type AddWidgetRequest struct {
	Name            string            `json:"name"`
	EndpointID      string            `json:"endpoint_id"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	DisplayMode     DisplayMode       `json:"display_mode"`
	ChartType       ChartType         `json:"chart_type,omitempty"`
	SelectedFields  []string          `json:"selected_fields,omitempty"`
	RefreshInterval int               `json:"refresh_interval"`
}

// AddWidget validates the request against the catalog, registers the
// widget, and schedules its first fetch immediately.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (Widget, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Widget{}, errNameRequired
	}
	desc, ok := s.catalog.Endpoint(req.EndpointID)
	if !ok {
		return Widget{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, req.EndpointID)
	}
	if !req.DisplayMode.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.DisplayMode)
	}
	if err := s.validator.Validate(desc, req.Parameters); err != nil {
		return Widget{}, err
	}
	chartType := req.ChartType
	if req.DisplayMode == ModeChart && chartType == "" {
		chartType = ChartLine
	}
	w := Widget{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Endpoint:        desc.Path,
		Parameters:      req.Parameters,
		DisplayMode:     req.DisplayMode,
		ChartType:       chartType,
		SelectedFields:  req.SelectedFields,
		RefreshInterval: req.RefreshInterval,
		Order:           s.store.NextOrder(),
	}
	if err := s.store.Add(w); err != nil {
		return Widget{}, err
	}
	s.refresher.Start(w)
	s.notifyHook(ctx, WidgetEvent{WidgetID: w.ID, Reason: EventAdded})
	s.telemetry.Record(ctx, "dashboard.widget.added", map[string]any{"widget": w.ID, "endpoint": desc.ID})
	return w, nil
}

// UpdateWidget replaces a widget's configuration and restarts its refresh
// schedule so the change takes effect immediately.
func (s *Service) UpdateWidget(ctx context.Context, w Widget) error {
	if w.ID == "" {
		return ErrWidgetNotFound
	}
	if strings.TrimSpace(w.Name) == "" {
		return errNameRequired
	}
	if w.Endpoint == "" {
		return errEndpointRequired
	}
	if !w.DisplayMode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, w.DisplayMode)
	}
	if desc, ok := s.catalog.EndpointByPath(w.Endpoint); ok {
		if err := s.validator.Validate(desc, w.Parameters); err != nil {
			return err
		}
	}
	prev, _ := s.store.Widget(w.ID)
	if err := s.store.Update(w); err != nil {
		return err
	}
	// a different endpoint or parameter set makes the old payload stale
	if prev.Endpoint != w.Endpoint || CacheKey(prev.Endpoint, prev.Parameters) != CacheKey(w.Endpoint, w.Parameters) {
		s.store.ClearData(w.ID)
	}
	s.refresher.Start(w)
	s.notifyHook(ctx, WidgetEvent{WidgetID: w.ID, Reason: EventUpdated})
	s.telemetry.Record(ctx, "dashboard.widget.updated", map[string]any{"widget": w.ID})
	return nil
}

// RemoveWidget drops a widget, its data, and its refresh schedule.
func (s *Service) RemoveWidget(ctx context.Context, id string) error {
	s.refresher.Stop(id)
	if err := s.store.Remove(id); err != nil {
		return err
	}
	s.notifyHook(ctx, WidgetEvent{WidgetID: id, Reason: EventRemoved})
	s.telemetry.Record(ctx, "dashboard.widget.removed", map[string]any{"widget": id})
	return nil
}

// ReorderWidgets rearranges the dashboard to match ids.
func (s *Service) ReorderWidgets(ctx context.Context, ids []string) error {
	if err := s.store.Reorder(ids); err != nil {
		return err
	}
	s.notifyHook(ctx, WidgetEvent{Reason: EventReordered})
	s.telemetry.Record(ctx, "dashboard.widgets.reordered", map[string]any{"count": len(ids)})
	return nil
}

// RefreshWidget triggers an immediate fetch outside the periodic schedule.
func (s *Service) RefreshWidget(ctx context.Context, id string) error {
	if _, ok := s.store.Widget(id); !ok {
		return ErrWidgetNotFound
	}
	return s.refresher.Refresh(ctx, id)
}

// PreviewEndpoint validates params and fetches the endpoint once, so users
// can inspect a payload before creating a widget.
func (s *Service) PreviewEndpoint(ctx context.Context, endpointID string, params map[string]string) (jsonkit.Value, error) {
	desc, ok := s.catalog.Endpoint(endpointID)
	if !ok {
		return jsonkit.Value{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpointID)
	}
	if err := s.validator.Validate(desc, params); err != nil {
		return jsonkit.Value{}, err
	}
	return s.fetcher.Fetch(ctx, desc.Path, params)
}

// Widgets returns the configured widgets in display order.
func (s *Service) Widgets() []Widget {
	return s.store.Widgets()
}

// WidgetData returns the latest fetch outcome for a widget.
func (s *Service) WidgetData(id string) (WidgetData, bool) {
	return s.store.Data(id)
}

// Catalog exposes the endpoint catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Store exposes the state container, mainly for subscriptions.
func (s *Service) Store() *StateStore {
	return s.store
}

// ViewOptions tunes view-model resolution for table widgets.
type ViewOptions struct {
	Page   int
	Search string
}

// WidgetView is the resolved presentation of one widget.
type WidgetView struct {
	Widget       Widget            `json:"widget"`
	Data         WidgetData        `json:"data"`
	Table        *views.TableModel `json:"table,omitempty"`
	Card         *views.CardModel  `json:"card,omitempty"`
	Chart        *views.ChartModel `json:"chart,omitempty"`
	FieldOptions []string          `json:"field_options,omitempty"`
}

// WidgetView derives the view model for a widget from its latest payload.
// Each call re-derives the view from the raw payload; nothing derived is
// shared between modes.
func (s *Service) WidgetView(ctx context.Context, id string, opts ViewOptions) (WidgetView, error) {
	w, ok := s.store.Widget(id)
	if !ok {
		return WidgetView{}, ErrWidgetNotFound
	}
	data, _ := s.store.Data(id)
	view := WidgetView{Widget: w, Data: data}
	if !data.HasPayload {
		return view, nil
	}
	view.FieldOptions = jsonkit.Fields(data.Payload)

	switch w.DisplayMode {
	case ModeTable:
		table := views.BuildTable(data.Payload, views.TableOptions{
			Page:   opts.Page,
			Search: opts.Search,
			Fields: w.SelectedFields,
		})
		view.Table = &table
	case ModeChart:
		chart, err := views.BuildChart(data.Payload, views.ChartOptions{
			Type:     string(w.ChartType),
			Title:    w.Name,
			Cache:    s.renderCache,
			CacheKey: w.ID,
		})
		if err != nil {
			return view, fmt.Errorf("dashboard: render chart for %s: %w", id, err)
		}
		view.Chart = &chart
	default:
		card := views.BuildCard(data.Payload)
		view.Card = &card
	}
	return view, nil
}

// Seed creates the given widgets when the dashboard is empty. Used on
// first boot to avoid a blank page.
func (s *Service) Seed(ctx context.Context, reqs []AddWidgetRequest) error {
	if len(s.store.Widgets()) > 0 {
		return nil
	}
	for _, req := range reqs {
		if _, err := s.AddWidget(ctx, req); err != nil {
			return fmt.Errorf("dashboard: seed widget %q: %w", req.Name, err)
		}
	}
	return nil
}

func (s *Service) notifyHook(ctx context.Context, event WidgetEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.hook.WidgetUpdated(ctx, event); err != nil {
		s.logger.Debug("refresh hook error", zap.Error(err))
	}
}
