package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-finboard/components/dashboard"
)

// UpdateWidgetInput carries the full replacement configuration.
type UpdateWidgetInput struct {
	Widget dashboard.Widget `json:"widget"`
}

type widgetUpdater interface {
	UpdateWidget(ctx context.Context, w dashboard.Widget) error
}

// UpdateWidgetCommand replaces a widget's configuration.
type UpdateWidgetCommand struct {
	service   widgetUpdater
	telemetry Telemetry
}

// NewUpdateWidgetCommand creates the command.
func NewUpdateWidgetCommand(service widgetUpdater, telemetry Telemetry) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute applies the replacement configuration.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if err := c.service.UpdateWidget(ctx, msg.Widget); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.update", map[string]any{"widget_id": msg.Widget.ID})
	return nil
}
