package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

type staticFetcher struct {
	payload string
	err     error
}

func (f staticFetcher) Fetch(context.Context, string, map[string]string) (jsonkit.Value, error) {
	if f.err != nil {
		return jsonkit.Value{}, f.err
	}
	return jsonkit.Parse([]byte(f.payload))
}

func newServiceForTest(t *testing.T, snapshot SnapshotStore, fetcher Fetcher) *Service {
	t.Helper()
	if snapshot == nil {
		snapshot = NewMemorySnapshotStore()
	}
	if fetcher == nil {
		fetcher = staticFetcher{payload: `{"price": 100}`}
	}
	service := NewService(Options{
		Store:   NewStateStore(snapshot, nil),
		Fetcher: fetcher,
	})
	t.Cleanup(service.Close)
	return service
}

func TestAddWidgetValidatesInput(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	ctx := context.Background()

	_, err := service.AddWidget(ctx, AddWidgetRequest{EndpointID: "trending", DisplayMode: ModeCard})
	require.Error(t, err, "name required")

	_, err = service.AddWidget(ctx, AddWidgetRequest{Name: "X", EndpointID: "nope", DisplayMode: ModeCard})
	assert.ErrorIs(t, err, ErrUnknownEndpoint)

	_, err = service.AddWidget(ctx, AddWidgetRequest{Name: "X", EndpointID: "trending", DisplayMode: "sparkline"})
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestAddWidgetResolvesEndpointPath(t *testing.T) {
	service := newServiceForTest(t, nil, nil)

	w, err := service.AddWidget(context.Background(), AddWidgetRequest{
		Name:        "Most Active",
		EndpointID:  "bse_most_active",
		DisplayMode: ModeTable,
	})
	require.NoError(t, err)
	assert.Equal(t, "/BSE_most_active", w.Endpoint)
	assert.NotEmpty(t, w.ID)
}

func TestAddWidgetRejectsMissingRequiredParam(t *testing.T) {
	service := newServiceForTest(t, nil, nil)

	_, err := service.AddWidget(context.Background(), AddWidgetRequest{
		Name:        "TCS",
		EndpointID:  "stock",
		DisplayMode: ModeCard,
	})
	require.Error(t, err)
	var perr *ParamError
	assert.True(t, errors.As(err, &perr))
}

func TestAddWidgetDefaultsChartType(t *testing.T) {
	service := newServiceForTest(t, nil, nil)

	w, err := service.AddWidget(context.Background(), AddWidgetRequest{
		Name:        "NSE",
		EndpointID:  "nse_most_active",
		DisplayMode: ModeChart,
	})
	require.NoError(t, err)
	assert.Equal(t, ChartLine, w.ChartType)
}

func TestWidgetsSurviveRestart(t *testing.T) {
	snapshot := NewMemorySnapshotStore()

	first := newServiceForTest(t, snapshot, nil)
	require.NoError(t, first.Start(context.Background()))
	_, err := first.AddWidget(context.Background(), AddWidgetRequest{
		Name:        "Trending",
		EndpointID:  "trending",
		DisplayMode: ModeTable,
	})
	require.NoError(t, err)
	first.Close()

	second := newServiceForTest(t, snapshot, nil)
	require.NoError(t, second.Start(context.Background()))
	widgets := second.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, "Trending", widgets[0].Name)
}

func TestRemoveWidget(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	w, err := service.AddWidget(context.Background(), AddWidgetRequest{
		Name: "News", EndpointID: "news", DisplayMode: ModeCard,
	})
	require.NoError(t, err)

	require.NoError(t, service.RemoveWidget(context.Background(), w.ID))
	assert.Empty(t, service.Widgets())

	err = service.RemoveWidget(context.Background(), w.ID)
	assert.ErrorIs(t, err, ErrWidgetNotFound)
}

func TestReorderWidgets(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	ctx := context.Background()
	a, _ := service.AddWidget(ctx, AddWidgetRequest{Name: "A", EndpointID: "news", DisplayMode: ModeCard})
	b, _ := service.AddWidget(ctx, AddWidgetRequest{Name: "B", EndpointID: "trending", DisplayMode: ModeTable})

	require.NoError(t, service.ReorderWidgets(ctx, []string{b.ID, a.ID}))
	widgets := service.Widgets()
	assert.Equal(t, "B", widgets[0].Name)
	assert.Equal(t, "A", widgets[1].Name)
}

func TestPreviewEndpoint(t *testing.T) {
	service := newServiceForTest(t, nil, staticFetcher{payload: `{"companyName": "Infosys"}`})

	v, err := service.PreviewEndpoint(context.Background(), "stock", map[string]string{"name": "INFY"})
	require.NoError(t, err)
	name, _ := v.Get("companyName")
	assert.Equal(t, "Infosys", name.Str())

	_, err = service.PreviewEndpoint(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestWidgetViewPerMode(t *testing.T) {
	payload := `{"topGainers": [{"company": "TCS", "price": 100, "changePercent": 1.5}]}`
	service := newServiceForTest(t, nil, staticFetcher{payload: payload})
	ctx := context.Background()

	table, err := service.AddWidget(ctx, AddWidgetRequest{Name: "T", EndpointID: "trending", DisplayMode: ModeTable})
	require.NoError(t, err)
	card, err := service.AddWidget(ctx, AddWidgetRequest{Name: "C", EndpointID: "news", DisplayMode: ModeCard})
	require.NoError(t, err)
	chart, err := service.AddWidget(ctx, AddWidgetRequest{Name: "G", EndpointID: "nse_most_active", DisplayMode: ModeChart})
	require.NoError(t, err)

	for _, w := range []Widget{table, card, chart} {
		waitFor(t, func() bool {
			data, ok := service.WidgetData(w.ID)
			return ok && data.HasPayload
		})
	}

	view, err := service.WidgetView(ctx, table.ID, ViewOptions{})
	require.NoError(t, err)
	require.NotNil(t, view.Table)
	assert.Nil(t, view.Card)
	assert.NotEmpty(t, view.FieldOptions)

	view, err = service.WidgetView(ctx, card.ID, ViewOptions{})
	require.NoError(t, err)
	require.NotNil(t, view.Card)
	assert.Nil(t, view.Table)

	view, err = service.WidgetView(ctx, chart.ID, ViewOptions{})
	require.NoError(t, err)
	require.NotNil(t, view.Chart)
}

func TestWidgetViewWithoutData(t *testing.T) {
	service := newServiceForTest(t, nil, staticFetcher{err: errors.New("down")})
	w, err := service.AddWidget(context.Background(), AddWidgetRequest{
		Name: "T", EndpointID: "trending", DisplayMode: ModeTable,
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		data, ok := service.WidgetData(w.ID)
		return ok && data.Err != ""
	})

	view, err := service.WidgetView(context.Background(), w.ID, ViewOptions{})
	require.NoError(t, err)
	assert.Nil(t, view.Table)
	assert.False(t, view.Data.HasPayload)
	assert.NotEmpty(t, view.Data.Err)
}

func TestWidgetViewUnknownWidget(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	_, err := service.WidgetView(context.Background(), "missing", ViewOptions{})
	assert.ErrorIs(t, err, ErrWidgetNotFound)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, service.Seed(ctx, DefaultSeedWidgets()))
	seeded := len(service.Widgets())
	require.Greater(t, seeded, 0)

	require.NoError(t, service.Seed(ctx, DefaultSeedWidgets()))
	assert.Len(t, service.Widgets(), seeded)
}

func TestUpdateWidgetRestartsSchedule(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	ctx := context.Background()
	w, err := service.AddWidget(ctx, AddWidgetRequest{Name: "T", EndpointID: "trending", DisplayMode: ModeTable})
	require.NoError(t, err)

	w.Name = "Renamed"
	w.DisplayMode = ModeCard
	require.NoError(t, service.UpdateWidget(ctx, w))

	got, ok := service.Store().Widget(w.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, ModeCard, got.DisplayMode)
}

func TestUpdateWidgetClearsStaleData(t *testing.T) {
	service := newServiceForTest(t, nil, nil)
	ctx := context.Background()
	w, err := service.AddWidget(ctx, AddWidgetRequest{Name: "T", EndpointID: "trending", DisplayMode: ModeTable})
	require.NoError(t, err)

	waitFor(t, func() bool {
		data, ok := service.WidgetData(w.ID)
		return ok && data.HasPayload
	})

	// rename only: data survives
	w.Name = "Renamed"
	require.NoError(t, service.UpdateWidget(ctx, w))
	data, ok := service.WidgetData(w.ID)
	require.True(t, ok)
	assert.True(t, data.HasPayload)

	// endpoint change: old payload is stale
	w.Endpoint = "/news"
	require.NoError(t, service.UpdateWidget(ctx, w))
	waitFor(t, func() bool {
		data, ok := service.WidgetData(w.ID)
		return ok && data.HasPayload
	})
}
