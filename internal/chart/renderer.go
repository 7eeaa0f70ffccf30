package chart

import (
	"bytes"
	"fmt"
	"math"

	"spikereview/domain/plot"
	"spikereview/internal/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultWidth  = 320
	DefaultHeight = 180
)

// SVGRenderer draws chart specs with go-chart into SVG documents
type SVGRenderer struct {
	Width  int
	Height int
}

// NewSVGRenderer creates a renderer for the given card chart size
func NewSVGRenderer(width, height int) *SVGRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &SVGRenderer{Width: width, Height: height}
}

// ContentType returns the MIME type of rendered output
func (r *SVGRenderer) ContentType() string {
	return gochart.ContentTypeSVG
}

// Render draws the spec and returns the SVG bytes
func (r *SVGRenderer) Render(spec plot.ChartSpec) ([]byte, error) {
	ch, err := r.Build(spec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ch.Render(gochart.SVG, &buf); err != nil {
		return nil, errors.Wrapf(err, "render %s chart", spec.Kind)
	}
	return buf.Bytes(), nil
}

// Build converts a spec into a go-chart chart without drawing it
func (r *SVGRenderer) Build(spec plot.ChartSpec) (gochart.Chart, error) {
	if len(spec.Series) == 0 {
		return gochart.Chart{}, errors.InvalidInput(fmt.Sprintf("%s chart has no series", spec.Kind))
	}

	var xs, ys []float64
	series := make([]gochart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		if s.Len() == 0 || len(s.X) != len(s.Y) {
			return gochart.Chart{}, errors.InvalidInput(fmt.Sprintf("%s series %q has %d x and %d y values",
				spec.Kind, s.Name, len(s.X), len(s.Y)))
		}
		x := s.X
		if spec.XAxis.Logarithmic {
			x = log10All(s.X)
		}
		xs = append(xs, s.X...)
		ys = append(ys, s.Y...)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: x,
			YValues: s.Y,
			Style: gochart.Style{
				StrokeColor: toDrawing(s.Color),
				StrokeWidth: 1.5,
			},
		})
	}

	xAxis, err := buildXAxis(spec.XAxis, xs)
	if err != nil {
		return gochart.Chart{}, err
	}

	return gochart.Chart{
		Width:          r.Width,
		Height:         r.Height,
		Background:     gochart.Style{Padding: gochart.Box{Top: 8, Left: 8, Right: 8, Bottom: 8}},
		XAxis:          xAxis,
		YAxis:          buildYAxis(spec.YAxis, ys),
		YAxisSecondary: gochart.YAxis{Style: gochart.Hidden()},
		Series:         series,
	}, nil
}

func buildXAxis(axis plot.Axis, xs []float64) (gochart.XAxis, error) {
	if axis.Logarithmic {
		lo, hi := LogRange(xs)
		if lo <= 0 {
			return gochart.XAxis{}, errors.InvalidInput("logarithmic axis needs positive values")
		}
		// log-space ticks also fix the range to the data bounds
		return gochart.XAxis{
			Name:  axis.Label,
			Style: axisStyle(axis),
			Ticks: LogTicks(lo, hi, axis.TickDecimals),
		}, nil
	}

	lo, hi := DataRange(xs)
	x := gochart.XAxis{
		Name:  axis.Label,
		Style: axisStyle(axis),
		Range: &gochart.ContinuousRange{Min: lo, Max: hi},
	}
	if axis.MaxTicks > 0 && !axis.Hidden {
		x.Ticks = LinearTicks(lo, hi, axis.MaxTicks, axis.TickDecimals)
	}
	return x, nil
}

func buildYAxis(axis plot.Axis, ys []float64) gochart.YAxis {
	lo, hi := DataRange(ys)
	y := gochart.YAxis{
		Name:  axis.Label,
		Style: axisStyle(axis),
		Range: &gochart.ContinuousRange{Min: lo, Max: hi},
	}
	if axis.MaxTicks > 0 && !axis.Hidden {
		y.Ticks = LinearTicks(lo, hi, axis.MaxTicks, axis.TickDecimals)
	}
	return y
}

func axisStyle(axis plot.Axis) gochart.Style {
	if axis.Hidden {
		return gochart.Hidden()
	}
	return gochart.Shown()
}

func toDrawing(c plot.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

func log10All(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log10(v)
	}
	return out
}
