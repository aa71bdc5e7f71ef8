// Package commands exposes the dashboard mutations as go-command
// commanders so transports and tooling share one execution path.
package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-finboard/components/dashboard"
)

type widgetAdder interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.Widget, error)
}

// AddWidgetCommand creates a widget from user input.
type AddWidgetCommand struct {
	service   widgetAdder
	telemetry Telemetry
}

// NewAddWidgetCommand creates the command.
func NewAddWidgetCommand(service widgetAdder, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AddWidgetCommand)(nil)

// Execute validates and creates the widget.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	w, err := c.service.AddWidget(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.add", map[string]any{
		"widget_id": w.ID,
		"endpoint":  msg.EndpointID,
	})
	return nil
}
