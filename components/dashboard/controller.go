package dashboard

import (
	"context"
	"errors"
	"io"
)

// ControllerOptions wires the collaborators a Controller needs.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
}

// Controller resolves page and layout payloads for the HTTP transports.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{service: opts.Service, renderer: opts.Renderer}
}

// PageView is the template context for the dashboard page.
type PageView struct {
	Title   string       `json:"title"`
	Widgets []WidgetView `json:"widgets"`
}

// RenderPage resolves every widget's view model and renders the dashboard
// template into out.
func (c *Controller) RenderPage(ctx context.Context, out io.Writer) error {
	if c.service == nil || c.renderer == nil {
		return errors.New("dashboard: controller requires a service and a renderer")
	}
	page, err := c.pageView(ctx)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("dashboard", map[string]any{"page": page}, out)
	return err
}

// LayoutPayload returns the widget list with data presence flags, the JSON
// counterpart of the HTML page.
func (c *Controller) LayoutPayload(ctx context.Context) (map[string]any, error) {
	if c.service == nil {
		return nil, errors.New("dashboard: controller requires a service")
	}
	widgets := c.service.Widgets()
	entries := make([]map[string]any, 0, len(widgets))
	for _, w := range widgets {
		entry := map[string]any{"widget": w}
		if data, ok := c.service.WidgetData(w.ID); ok {
			entry["has_data"] = data.HasPayload
			entry["fetched_at"] = data.Timestamp
			if data.Err != "" {
				entry["error"] = data.Err
			}
		} else {
			entry["has_data"] = false
		}
		entries = append(entries, entry)
	}
	return map[string]any{"widgets": entries}, nil
}

func (c *Controller) pageView(ctx context.Context) (PageView, error) {
	page := PageView{Title: "Finance Dashboard"}
	for _, w := range c.service.Widgets() {
		view, err := c.service.WidgetView(ctx, w.ID, ViewOptions{})
		if err != nil {
			return PageView{}, err
		}
		page.Widgets = append(page.Widgets, view)
	}
	return page, nil
}
