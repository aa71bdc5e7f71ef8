package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshWidgetInput identifies the widget to refresh immediately.
type RefreshWidgetInput struct {
	WidgetID string `json:"widget_id"`
}

type widgetRefresher interface {
	RefreshWidget(ctx context.Context, id string) error
}

// RefreshWidgetCommand triggers an out-of-band fetch for a widget.
type RefreshWidgetCommand struct {
	service   widgetRefresher
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service widgetRefresher, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute schedules the immediate fetch.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("refresh command requires widget_id")
	}
	if err := c.service.RefreshWidget(ctx, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
