package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReorderWidgetsInput lists widget IDs in their new display order.
type ReorderWidgetsInput struct {
	WidgetIDs []string `json:"widget_ids"`
}

type widgetReorderer interface {
	ReorderWidgets(ctx context.Context, ids []string) error
}

// ReorderWidgetsCommand rearranges the dashboard.
type ReorderWidgetsCommand struct {
	service   widgetReorderer
	telemetry Telemetry
}

// NewReorderWidgetsCommand creates the command.
func NewReorderWidgetsCommand(service widgetReorderer, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new order.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if len(msg.WidgetIDs) == 0 {
		return errors.New("reorder command requires widget_ids")
	}
	if err := c.service.ReorderWidgets(ctx, msg.WidgetIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{"count": len(msg.WidgetIDs)})
	return nil
}
