package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-finboard/components/dashboard"
)

// SeedWidgetsInput lists the widgets to create when the dashboard is empty.
// An empty list seeds the built-in starter set.
type SeedWidgetsInput struct {
	Widgets []dashboard.AddWidgetRequest `json:"widgets,omitempty"`
}

type widgetSeeder interface {
	Seed(ctx context.Context, reqs []dashboard.AddWidgetRequest) error
}

// SeedWidgetsCommand populates an empty dashboard with starter widgets.
type SeedWidgetsCommand struct {
	service   widgetSeeder
	telemetry Telemetry
}

// NewSeedWidgetsCommand creates the command.
func NewSeedWidgetsCommand(service widgetSeeder, telemetry Telemetry) *SeedWidgetsCommand {
	return &SeedWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedWidgetsInput] = (*SeedWidgetsCommand)(nil)

// Execute seeds the dashboard; it is a no-op when widgets already exist.
func (c *SeedWidgetsCommand) Execute(ctx context.Context, msg SeedWidgetsInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	reqs := msg.Widgets
	if len(reqs) == 0 {
		reqs = dashboard.DefaultSeedWidgets()
	}
	if err := c.service.Seed(ctx, reqs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.seed", map[string]any{"count": len(reqs)})
	return nil
}
