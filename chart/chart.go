// Package chart renders candle series and trade markers as standalone
// HTML pages.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/indicators"
	"github.com/rustyeddy/synthbt/market"
	"github.com/rustyeddy/synthbt/strategies"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorLong          = "#22c55e"
	colorShort         = "#ef4444"
	colorWin           = "#3b82f6"
	colorLoss          = "#fbbf24"
	colorChannel       = "#a78bfa"

	widthPx  = 1400
	heightPx = 640
)

var ErrNoCandles = errors.New("chart: no candles")

// overlay is one scatter series drawn over the candles.
type overlay struct {
	name   string
	symbol string
	color  string
	match  func(backtest.Marker) bool
}

var overlays = []overlay{
	{"Long entry", "triangle", colorLong, func(m backtest.Marker) bool {
		return m.Kind == backtest.EntryMarker && m.Side == strategies.Long
	}},
	{"Short entry", "diamond", colorShort, func(m backtest.Marker) bool {
		return m.Kind == backtest.EntryMarker && m.Side == strategies.Short
	}},
	{"Win exit", "circle", colorWin, func(m backtest.Marker) bool {
		return m.Kind == backtest.ExitMarker && m.Result == strategies.Win
	}},
	{"Loss exit", "rect", colorLoss, func(m backtest.Marker) bool {
		return m.Kind == backtest.ExitMarker && m.Result == strategies.Loss
	}},
}

type options struct {
	channel int
}

// Option tweaks what Build draws.
type Option func(*options)

// WithChannel draws the Donchian channel of the period candles before
// each index.
func WithChannel(period int) Option {
	return func(o *options) { o.channel = period }
}

// Build returns the candlestick chart with one scatter overlay per marker
// kind.
func Build(title string, candles []market.Candle, markers []backtest.Marker, opt ...Option) (*charts.Kline, error) {
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	var o options
	for _, fn := range opt {
		fn(&o)
	}
	lo, hi, _ := market.Range(candles)
	pad := (hi - lo) * 0.05
	if pad <= 0 {
		pad = 1
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", widthPx),
			Height:          fmt.Sprintf("%dpx", heightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      fmt.Sprintf("%d candles, %d markers", len(candles), len(markers)),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			Min:       round2(lo - pad),
			Max:       round2(hi + pad),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)

	xAxis := buildXAxis(len(candles))
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", buildKlineSeries(candles))

	scatter := charts.NewScatter()
	scatter.SetXAxis(xAxis)
	for _, o := range overlays {
		scatter.AddSeries(o.name, buildOverlay(len(candles), markers, o),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: o.color}),
		)
	}
	kline.Overlap(scatter)

	if o.channel > 0 {
		kline.Overlap(buildChannel(xAxis, candles, o.channel))
	}
	return kline, nil
}

// RenderHTML writes the chart for candles and markers to w.
func RenderHTML(w io.Writer, title string, candles []market.Candle, markers []backtest.Marker, opt ...Option) error {
	kline, err := Build(title, candles, markers, opt...)
	if err != nil {
		return err
	}
	return kline.Render(w)
}

func buildXAxis(n int) []string {
	x := make([]string, n)
	for i := range x {
		x[i] = strconv.Itoa(i)
	}
	return x
}

func buildKlineSeries(candles []market.Candle) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(candles))
	for _, c := range candles {
		data = append(data, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	return data
}

// buildOverlay aligns the matching markers to the candle axis. Indexes
// without a marker carry a nil value and are not drawn.
func buildOverlay(n int, markers []backtest.Marker, o overlay) []opts.ScatterData {
	data := make([]opts.ScatterData, n)
	for i := range data {
		data[i] = opts.ScatterData{Value: nil}
	}
	for _, m := range markers {
		if m.Index < 0 || m.Index >= n || !o.match(m) {
			continue
		}
		data[m.Index] = opts.ScatterData{
			Value:      m.Price,
			Symbol:     o.symbol,
			SymbolSize: 14,
		}
	}
	return data
}

func buildChannel(xAxis []string, candles []market.Candle, period int) *charts.Line {
	bands := indicators.PriorBands(candles, period)
	upper := make([]opts.LineData, len(bands))
	lower := make([]opts.LineData, len(bands))
	for i, b := range bands {
		if !b.Ready {
			upper[i] = opts.LineData{Value: nil}
			lower[i] = opts.LineData{Value: nil}
			continue
		}
		upper[i] = opts.LineData{Value: b.Upper}
		lower[i] = opts.LineData{Value: b.Lower}
	}

	name := indicators.NewDonchian(period).Name()
	style := charts.WithLineStyleOpts(opts.LineStyle{Color: colorChannel, Width: 1})
	line := charts.NewLine()
	line.SetXAxis(xAxis)
	line.AddSeries(name+" upper", upper, style)
	line.AddSeries(name+" lower", lower, style)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
