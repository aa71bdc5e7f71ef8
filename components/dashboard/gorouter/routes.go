// Package gorouter mounts the dashboard on a go-router router: HTML page,
// JSON API, upstream proxy, and the WebSocket event stream.
package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-finboard/components/dashboard"
	"github.com/goliatone/go-finboard/components/dashboard/commands"
	"github.com/goliatone/go-finboard/components/dashboard/httpapi"
)

// Config wires go-router with the dashboard controllers, APIs, and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	Service    *dashboard.Service
	API        httpapi.Executor
	// Client serves the forwarding proxy route; nil disables the route.
	Client    *dashboard.Client
	Broadcast *dashboard.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML       string
	Layout     string
	Widgets    string
	WidgetID   string
	WidgetView string
	Reorder    string
	Refresh    string
	Catalog    string
	Preview    string
	Proxy      string
	WebSocket  string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	group := cfg.Router.Group(cfg.BasePath)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderPage(ctx.Context(), &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context())
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.Service != nil {
		registerQueries(group, cfg.Service, routes)
	}
	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}
	if cfg.Client != nil {
		registerProxy(group, cfg.Client, routes.Proxy)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerQueries[T any](r router.Router[T], service *dashboard.Service, routes RouteConfig) {
	r.Get(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"widgets": service.Widgets()})
	}))

	r.Get(routes.WidgetView, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		page, _ := strconv.Atoi(ctx.Query("page"))
		view, err := service.WidgetView(ctx.Context(), id, dashboard.ViewOptions{
			Page:   page,
			Search: ctx.Query("search"),
		})
		if errors.Is(err, dashboard.ErrWidgetNotFound) {
			return respondError(ctx, http.StatusNotFound, err)
		}
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Catalog, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"categories": service.Catalog().ByCategory()})
	}))

	r.Post(routes.Preview, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			EndpointID string            `json:"endpoint_id"`
			Parameters map[string]string `json:"parameters"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		result, err := service.PreviewEndpoint(ctx.Context(), payload.EndpointID, payload.Parameters)
		if err != nil {
			return respondError(ctx, http.StatusBadGateway, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"payload": result})
	}))
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload dashboard.AddWidgetRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Add(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
	}))

	r.Post(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		var payload commands.UpdateWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Widget.ID = id
		if err := api.Update(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		if err := api.Remove(ctx.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	r.Post(routes.Reorder, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderWidgetsInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Reorder(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

// registerProxy forwards browser requests to the upstream API. Every query
// parameter except "endpoint" passes through verbatim, and the upstream
// status and body are relayed unchanged.
func registerProxy[T any](r router.Router[T], client *dashboard.Client, path string) {
	r.Get(path, router.WrapHandler(func(ctx router.Context) error {
		endpoint := ctx.Query("endpoint")
		if endpoint == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("endpoint query parameter is required"))
		}
		params := map[string]string{}
		for key, value := range ctx.Queries() {
			if key == "endpoint" || value == "" {
				continue
			}
			params[key] = value
		}
		result, err := client.Forward(ctx.Context(), endpoint, params)
		if err != nil {
			return respondError(ctx, http.StatusBadGateway, err)
		}
		if result.JSON {
			ctx.SetHeader("Content-Type", "application/json")
		} else {
			ctx.SetHeader("Content-Type", "text/plain; charset=utf-8")
		}
		return ctx.Status(result.Status).Send(result.Body)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/dashboard/widgets/:id"
	}
	if routes.WidgetView == "" {
		routes.WidgetView = "/dashboard/widgets/:id/view"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/dashboard/widgets/reorder"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/refresh"
	}
	if routes.Catalog == "" {
		routes.Catalog = "/dashboard/catalog"
	}
	if routes.Preview == "" {
		routes.Preview = "/dashboard/preview"
	}
	if routes.Proxy == "" {
		routes.Proxy = "/api/proxy"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
