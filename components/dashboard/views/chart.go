package views

import (
	"bytes"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// Chart kinds produced by BuildChart.
const (
	ChartKindLine  = "line"
	ChartKindKLine = "kline"
)

// ChartOptions tunes chart derivation.
type ChartOptions struct {
	// Type is the requested chart family, "line" or "candlestick".
	// Candlestick falls back to line unless OHLC fields are present.
	Type  string
	Title string
	Theme string
	// Cache memoizes rendered markup; nil renders every call.
	Cache RenderCache
	// CacheKey scopes cache entries, typically the widget ID. The payload
	// hash is mixed in so stale markup never survives a data change.
	CacheKey string
}

// ChartModel is the chart rendering of a payload.
type ChartModel struct {
	HTML    string   `json:"html,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Records int      `json:"records"`
	Fields  []string `json:"fields,omitempty"`
	Empty   bool     `json:"empty,omitempty"`
}

// BuildChart extracts the chartable projection of payload and renders it
// with go-echarts. Payloads without numeric data yield an explicit empty
// model rather than an error.
func BuildChart(payload jsonkit.Value, options ChartOptions) (ChartModel, error) {
	table := jsonkit.ExtractChartTable(payload)
	if table.Empty() {
		return ChartModel{Empty: true}, nil
	}

	kind := ChartKindLine
	if options.Type == "candlestick" && hasOHLC(table.Fields) {
		kind = ChartKindKLine
	}

	render := func() (string, error) {
		if kind == ChartKindKLine {
			return renderKLine(table, options)
		}
		return renderLine(table, options)
	}

	var html string
	var err error
	if options.Cache != nil {
		key := options.CacheKey + ":" + kind + ":" + PayloadHash(payload)
		html, err = options.Cache.GetOrRender(key, render)
	} else {
		html, err = render()
	}
	if err != nil {
		return ChartModel{}, err
	}
	return ChartModel{
		HTML:    html,
		Kind:    kind,
		Records: len(table.Records),
		Fields:  table.Fields,
	}, nil
}

func renderLine(table jsonkit.ChartTable, options ChartOptions) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: options.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Theme: options.Theme}),
	)

	names := make([]string, len(table.Records))
	for i, rec := range table.Records {
		names[i] = rec.Name
	}
	line.SetXAxis(names)

	for _, field := range table.Fields {
		series := make([]opts.LineData, len(table.Records))
		for i, rec := range table.Records {
			if v, ok := rec.Values[field]; ok {
				series[i] = opts.LineData{Value: v}
			} else {
				// echarts treats "-" as a gap
				series[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(field, series)
	}
	return renderChart(line)
}

func renderKLine(table jsonkit.ChartTable, options ChartOptions) (string, error) {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: options.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: options.Theme}),
	)

	open := pickField(table.Fields, "open")
	closeField := pickField(table.Fields, "close")
	low := pickField(table.Fields, "low")
	high := pickField(table.Fields, "high")

	names := make([]string, len(table.Records))
	series := make([]opts.KlineData, len(table.Records))
	for i, rec := range table.Records {
		names[i] = rec.Name
		series[i] = opts.KlineData{Value: [4]float64{
			rec.Values[open],
			rec.Values[closeField],
			rec.Values[low],
			rec.Values[high],
		}}
	}
	kline.SetXAxis(names).AddSeries(options.Title, series)
	return renderChart(kline)
}

func renderChart(renderable interface{ Render(w io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasOHLC(fields []string) bool {
	return pickField(fields, "open") != "" &&
		pickField(fields, "close") != "" &&
		pickField(fields, "low") != "" &&
		pickField(fields, "high") != ""
}

func pickField(fields []string, name string) string {
	for _, f := range fields {
		if strings.EqualFold(f, name) {
			return f
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), name) {
			return f
		}
	}
	return ""
}
