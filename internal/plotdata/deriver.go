package plotdata

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"spikereview/domain/neuron"
	"spikereview/domain/plot"
	"spikereview/internal/errors"

	"gonum.org/v1/gonum/floats"
)

// WaveformMode selects how the quantile traces are drawn
type WaveformMode string

const (
	// ModeCollapsedAverage draws one element-wise mean trace
	ModeCollapsedAverage WaveformMode = "average"
	// ModeQuantileFan draws every trace, shaded by distance from the median
	ModeQuantileFan WaveformMode = "fan"
)

// ParseWaveformMode accepts "average" or "fan"
func ParseWaveformMode(s string) (WaveformMode, error) {
	switch WaveformMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCollapsedAverage:
		return ModeCollapsedAverage, nil
	case ModeQuantileFan:
		return ModeQuantileFan, nil
	default:
		return "", errors.ConfigInvalid(fmt.Sprintf("unknown waveform mode %q (want average or fan)", s))
	}
}

const (
	ISIXLabel      = "ISI (ms)"
	ISIYLabel      = "Proportion"
	ISIMaxTicks    = 3
	ISITickDecimal = 2

	WaveformYLabel   = "Potential (mV)"
	WaveformMaxTicks = 5

	shadeBase  = 50
	shadeRange = 150
)

var (
	isiColor     = plot.Color{R: 0x36, G: 0xa2, B: 0xeb}
	averageColor = plot.Color{R: 0x4c, G: 0xaf, B: 0x50}
)

// Options configures a Deriver
type Options struct {
	WaveformMode WaveformMode
	// AxisDetail exposes the potential axis in quantile-fan mode
	AxisDetail bool
	Shape      neuron.Shape
}

// DefaultOptions returns quantile-fan mode with axis detail
func DefaultOptions() Options {
	return Options{
		WaveformMode: ModeQuantileFan,
		AxisDetail:   true,
		Shape:        neuron.DefaultShape(),
	}
}

// Deriver turns statistics records into renderer-independent chart specs
type Deriver struct {
	opts Options
}

// NewDeriver creates a deriver, filling unset shape fields with defaults
func NewDeriver(opts Options) *Deriver {
	if opts.Shape.SampleCount <= 0 {
		opts.Shape.SampleCount = neuron.DefaultSampleCount
	}
	if opts.WaveformMode == "" {
		opts.WaveformMode = ModeQuantileFan
	}
	return &Deriver{opts: opts}
}

// Mode returns the configured waveform mode
func (d *Deriver) Mode() WaveformMode {
	return d.opts.WaveformMode
}

// ISI builds the inter-spike-interval chart: a direct pass-through of bins
// and proportions on a logarithmic x axis
func (d *Deriver) ISI(r neuron.StatisticsRecord) (plot.ChartSpec, error) {
	if err := neuron.ValidateISI(r); err != nil {
		return plot.ChartSpec{}, err
	}

	series := plot.Series{
		Name:  "isi",
		X:     append([]float64(nil), r.ISIBins...),
		Y:     append([]float64(nil), r.ISIFreqs...),
		Color: isiColor,
	}

	return plot.ChartSpec{
		Kind:   plot.ChartISI,
		XAxis:  plot.Axis{Label: ISIXLabel, Logarithmic: true},
		YAxis:  plot.Axis{Label: ISIYLabel, MaxTicks: ISIMaxTicks, TickDecimals: ISITickDecimal},
		Series: []plot.Series{series},
	}, nil
}

// Waveform builds the waveform chart in the configured mode
func (d *Deriver) Waveform(r neuron.StatisticsRecord) (plot.ChartSpec, error) {
	if err := neuron.ValidateWaveforms(r, d.opts.Shape); err != nil {
		return plot.ChartSpec{}, err
	}

	xs := SampleIndex(d.opts.Shape.SampleCount)
	spec := plot.ChartSpec{
		Kind:  plot.ChartWaveform,
		XAxis: plot.Axis{Hidden: true},
		YAxis: plot.Axis{Hidden: true},
	}

	switch d.opts.WaveformMode {
	case ModeCollapsedAverage:
		spec.Series = []plot.Series{{
			Name:  "average",
			X:     xs,
			Y:     AverageTrace(r.WaveformQuantiles),
			Color: averageColor,
		}}
	default:
		spec.Series = FanSeries(r.WaveformQuantiles, xs)
		if d.opts.AxisDetail {
			spec.YAxis = plot.Axis{Label: WaveformYLabel, MaxTicks: WaveformMaxTicks, TickDecimals: 1}
		}
	}
	return spec, nil
}

// AverageTrace returns the element-wise mean across all traces.
// Traces must share one length.
func AverageTrace(traces [][]float64) []float64 {
	if len(traces) == 0 {
		return nil
	}
	sum := make([]float64, len(traces[0]))
	for _, trace := range traces {
		floats.Add(sum, trace)
	}
	floats.Scale(1/float64(len(traces)), sum)
	return sum
}

// MedianIndex is the 0-based median position floor(q/2)
func MedianIndex(q int) int {
	return q / 2
}

// Shade returns the gray level for trace i of q. The median trace is black;
// the rest grow linearly from 50 to 200 with distance from the median.
func Shade(i, q int) uint8 {
	median := MedianIndex(q)
	distance := i - median
	if distance < 0 {
		distance = -distance
	}
	if distance == 0 || median == 0 {
		return 0
	}
	level := math.Round(shadeBase + float64(distance)/float64(median)*shadeRange)
	return uint8(math.Max(0, math.Min(255, level)))
}

// FanSeries returns one series per quantile trace, ordered lightest first
// so the median is drawn last
func FanSeries(traces [][]float64, xs []float64) []plot.Series {
	q := len(traces)
	series := make([]plot.Series, q)
	for i, trace := range traces {
		series[i] = plot.Series{
			Name:  "q" + strconv.Itoa(i),
			X:     xs,
			Y:     append([]float64(nil), trace...),
			Color: plot.Gray(Shade(i, q)),
		}
	}
	median := MedianIndex(q)
	sort.SliceStable(series, func(a, b int) bool {
		return distanceFrom(series[a].Name, median) > distanceFrom(series[b].Name, median)
	})
	return series
}

func distanceFrom(name string, median int) int {
	i, _ := strconv.Atoi(strings.TrimPrefix(name, "q"))
	if i > median {
		return i - median
	}
	return median - i
}

// SampleIndex returns 0..n-1 as x values
func SampleIndex(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// Total sums a proportion series
func Total(freqs []float64) float64 {
	return floats.Sum(freqs)
}
