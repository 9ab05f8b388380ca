// Package chart is the charting capability: it turns datasets into a
// go-chart line chart with a fixed dark theme and renders it as PNG or SVG.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/metrics"
)

const (
	defaultWidth      = 1024
	defaultHeight     = 512
	defaultDateFormat = "2006-01-02"

	// Flat series get this much head room above and below.
	flatRatingPad = 10.0
	// A series whose points share one timestamp spans this much time.
	flatTimePad = 24 * time.Hour
)

// Axis names.
const (
	XAxisName = "Date"
	YAxisName = "Elo Rating"
)

// Dark theme colors.
var (
	colorBackground = drawing.ColorFromHex("121212")
	colorCanvas     = drawing.ColorFromHex("1e1e1e")
	colorText       = drawing.ColorFromHex("e0e0e0")
	colorGrid       = drawing.ColorFromHex("444444")
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps "png" or "svg" to a Format; "" means PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Factory creates chart instances.
type Factory struct {
	width      int
	height     int
	dateFormat string
}

// NewFactory creates a Factory.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		width:      defaultWidth,
		height:     defaultHeight,
		dateFormat: defaultDateFormat,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a chart from series and title. The chart is rendered once
// to io.Discard so that a configuration go-chart cannot draw fails here
// rather than on first display.
func (f *Factory) Create(series []model.SeriesDescriptor, title string) (*Instance, error) {
	ch, err := f.build(series, title)
	if err != nil {
		metrics.RecordChartError()
		return nil, err
	}
	if err := ch.Render(gochart.PNG, io.Discard); err != nil {
		metrics.RecordChartError()
		return nil, fmt.Errorf("build chart: %w", err)
	}

	return &Instance{
		id:      uuid.NewString(),
		title:   title,
		series:  cloneSeries(series),
		created: time.Now(),
		chart:   ch,
	}, nil
}

func (f *Factory) build(series []model.SeriesDescriptor, title string) (*gochart.Chart, error) {
	var (
		out        []gochart.Series
		minY, maxY = math.Inf(1), math.Inf(-1)
		minX, maxX time.Time
	)

	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = p.X, p.Y
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			if minX.IsZero() || p.X.Before(minX) {
				minX = p.X
			}
			if maxX.IsZero() || p.X.After(maxX) {
				maxX = p.X
			}
		}
		// go-chart needs two x values per series.
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
		}
		out = append(out, gochart.TimeSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(s.Color),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoSeries
	}

	ch := &gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: colorText, FontSize: 14},
		Width:      f.width,
		Height:     f.height,
		Background: gochart.Style{
			FillColor: colorBackground,
			Padding:   gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: gochart.Style{FillColor: colorCanvas},
		XAxis: gochart.XAxis{
			Name:           XAxisName,
			NameStyle:      textStyle(),
			Style:          axisStyle(),
			ValueFormatter: gochart.TimeValueFormatterWithFormat(f.dateFormat),
			GridMajorStyle: gridStyle(),
		},
		YAxis: gochart.YAxis{
			Name:           YAxisName,
			NameStyle:      textStyle(),
			Style:          axisStyle(),
			GridMajorStyle: gridStyle(),
		},
		Series: out,
	}
	if maxY-minY < 1 {
		ch.YAxis.Range = &gochart.ContinuousRange{Min: minY - flatRatingPad, Max: maxY + flatRatingPad}
	}
	if !maxX.After(minX.Add(time.Second)) {
		ch.XAxis.Range = &gochart.ContinuousRange{
			Min: gochart.ToFloat64(minX.Add(-flatTimePad)),
			Max: gochart.ToFloat64(maxX.Add(flatTimePad)),
		}
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch, gochart.Style{
		FillColor:   colorCanvas,
		FontColor:   colorText,
		StrokeColor: colorGrid,
	})}
	return ch, nil
}

func seriesStyle(hex string) gochart.Style {
	col := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

func textStyle() gochart.Style {
	return gochart.Style{FontColor: colorText}
}

func axisStyle() gochart.Style {
	return gochart.Style{FontColor: colorText, StrokeColor: colorGrid}
}

func gridStyle() gochart.Style {
	return gochart.Style{StrokeColor: colorGrid, StrokeWidth: 1}
}

// Instance is one created chart. It stays renderable until Destroy.
type Instance struct {
	mu        sync.Mutex
	id        string
	title     string
	series    []model.SeriesDescriptor
	created   time.Time
	chart     *gochart.Chart
	destroyed bool
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// Title returns the chart title.
func (i *Instance) Title() string { return i.title }

// CreatedAt returns the creation time.
func (i *Instance) CreatedAt() time.Time { return i.created }

// Series returns a copy of the datasets the chart was built from.
func (i *Instance) Series() []model.SeriesDescriptor { return cloneSeries(i.series) }

// Render writes the chart image to w.
func (i *Instance) Render(w io.Writer, format Format) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ErrDestroyed
	}

	start := time.Now()
	if err := i.chart.Render(format.provider(), w); err != nil {
		metrics.RecordChartError()
		return fmt.Errorf("render %s: %w", format, err)
	}
	metrics.RecordRenderLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Destroy releases the chart. Further Render calls fail with ErrDestroyed.
// It reports whether this call released it.
func (i *Instance) Destroy() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return false
	}
	i.destroyed = true
	i.chart = nil
	return true
}

// Destroyed reports whether Destroy has been called.
func (i *Instance) Destroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

func cloneSeries(in []model.SeriesDescriptor) []model.SeriesDescriptor {
	out := make([]model.SeriesDescriptor, len(in))
	for i, s := range in {
		s.Points = append([]model.Point(nil), s.Points...)
		out[i] = s
	}
	return out
}
