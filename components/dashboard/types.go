package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// DisplayMode selects the view strategy a widget renders with.
type DisplayMode string

const (
	ModeCard  DisplayMode = "card"
	ModeTable DisplayMode = "table"
	ModeChart DisplayMode = "chart"
)

// Valid reports whether the mode is one of the supported strategies.
func (m DisplayMode) Valid() bool {
	switch m {
	case ModeCard, ModeTable, ModeChart:
		return true
	}
	return false
}

// ChartType selects the chart family for ModeChart widgets.
type ChartType string

const (
	ChartLine        ChartType = "line"
	ChartCandlestick ChartType = "candlestick"
)

// Widget is a user-configured binding of an upstream endpoint to a view.
type Widget struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Endpoint        string            `json:"endpoint" yaml:"endpoint"`
	Parameters      map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	DisplayMode     DisplayMode       `json:"display_mode" yaml:"display_mode"`
	ChartType       ChartType         `json:"chart_type,omitempty" yaml:"chart_type,omitempty"`
	SelectedFields  []string          `json:"selected_fields,omitempty" yaml:"selected_fields,omitempty"`
	RefreshInterval int               `json:"refresh_interval" yaml:"refresh_interval"`
	Order           int               `json:"order" yaml:"order"`
}

// WidgetData carries the latest fetch outcome for one widget. A failed
// refresh records Err while keeping the previous payload, so views keep
// showing the last known-good data alongside the error.
type WidgetData struct {
	WidgetID   string        `json:"widget_id"`
	Payload    jsonkit.Value `json:"payload,omitempty"`
	HasPayload bool          `json:"has_payload"`
	Timestamp  time.Time     `json:"timestamp"`
	Err        string        `json:"error,omitempty"`
}

// WidgetEvent notifies subscribers about state changes.
type WidgetEvent struct {
	WidgetID  string    `json:"widget_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Event reasons emitted by the state store and refresher.
const (
	EventAdded     = "added"
	EventUpdated   = "updated"
	EventRemoved   = "removed"
	EventReordered = "reordered"
	EventData      = "data"
	EventError     = "error"
)

// Fetcher retrieves and decodes an upstream payload.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params map[string]string) (jsonkit.Value, error)
}

// SnapshotStore persists widget configuration. Implementations never see
// fetched data.
type SnapshotStore interface {
	Load() ([]Widget, error)
	Save(widgets []Widget) error
}

// RefreshHook is notified after widget data changes; transports use it to
// push updates to connected clients.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// ParamsValidator checks user-supplied parameters against an endpoint
// descriptor before any network call is made.
type ParamsValidator interface {
	Validate(desc EndpointDescriptor, params map[string]string) error
}

var (
	ErrWidgetNotFound   = errors.New("dashboard: widget not found")
	ErrWidgetExists     = errors.New("dashboard: widget id already registered")
	ErrUnknownEndpoint  = errors.New("dashboard: unknown endpoint")
	ErrInvalidMode      = errors.New("dashboard: invalid display mode")
	errNameRequired     = errors.New("dashboard: widget name is required")
	errEndpointRequired = errors.New("dashboard: endpoint is required")
)

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error { return nil }
