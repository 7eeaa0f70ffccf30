package chart

import (
	"math"
	"strings"
	"testing"

	"spikereview/domain/neuron"
	"spikereview/domain/plot"
	"spikereview/internal/plotdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
)

func isiSpec(t *testing.T) plot.ChartSpec {
	t.Helper()
	d := plotdata.NewDeriver(plotdata.DefaultOptions())
	spec, err := d.ISI(neuron.StatisticsRecord{
		Filename: "rec1.dat",
		ISIBins:  []float64{1, 2, 5, 10, 20},
		ISIFreqs: []float64{0.1, 0.2, 0.4, 0.2, 0.1},
	})
	require.NoError(t, err)
	return spec
}

func TestBuildISIChart(t *testing.T) {
	r := NewSVGRenderer(0, 0)
	ch, err := r.Build(isiSpec(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultWidth, ch.Width)
	assert.Equal(t, "ISI (ms)", ch.XAxis.Name)
	assert.Equal(t, "Proportion", ch.YAxis.Name)

	require.Len(t, ch.Series, 1)
	cs, ok := ch.Series[0].(gochart.ContinuousSeries)
	require.True(t, ok)
	assert.Len(t, cs.XValues, 5)
	assert.InDelta(t, 0, cs.XValues[0], 1e-12)
	assert.InDelta(t, math.Log10(20), cs.XValues[4], 1e-12)

	// x ticks: 1, 10 and the max bin, in log space
	labels := make([]string, 0, len(ch.XAxis.Ticks))
	for _, tick := range ch.XAxis.Ticks {
		labels = append(labels, tick.Label)
	}
	assert.Equal(t, []string{"1", "10", "20"}, labels)

	assert.LessOrEqual(t, len(ch.YAxis.Ticks), 3)
	for _, tick := range ch.YAxis.Ticks {
		assert.Regexp(t, `^-?\d+\.\d{2}$`, tick.Label)
	}
}

func TestRenderISIToSVG(t *testing.T) {
	r := NewSVGRenderer(320, 180)
	out, err := r.Render(isiSpec(t))
	require.NoError(t, err)

	svg := string(out)
	assert.True(t, strings.HasPrefix(svg, "<svg"), "got %q", svg[:min(len(svg), 40)])
	assert.Contains(t, svg, "ISI (ms)")
	assert.Equal(t, "image/svg+xml", r.ContentType())
}

func TestRenderWaveformFan(t *testing.T) {
	traces := make([][]float64, 10)
	for i := range traces {
		traces[i] = make([]float64, neuron.DefaultSampleCount)
		for k := range traces[i] {
			traces[i][k] = math.Sin(float64(k)/8) * float64(i+1)
		}
	}
	d := plotdata.NewDeriver(plotdata.DefaultOptions())
	spec, err := d.Waveform(neuron.StatisticsRecord{WaveformQuantiles: traces})
	require.NoError(t, err)

	r := NewSVGRenderer(320, 180)
	ch, err := r.Build(spec)
	require.NoError(t, err)
	assert.True(t, ch.XAxis.Style.Hidden)
	assert.Equal(t, "Potential (mV)", ch.YAxis.Name)
	assert.LessOrEqual(t, len(ch.YAxis.Ticks), 5)
	assert.Len(t, ch.Series, 10)

	_, err = r.Render(spec)
	assert.NoError(t, err)
}

func TestRenderRejectsEmptySpec(t *testing.T) {
	r := NewSVGRenderer(320, 180)
	_, err := r.Render(plot.ChartSpec{Kind: plot.ChartISI})
	assert.Error(t, err)

	_, err = r.Render(plot.ChartSpec{
		Kind:   plot.ChartISI,
		Series: []plot.Series{{Name: "bad", X: []float64{1, 2}, Y: []float64{1}}},
	})
	assert.Error(t, err)
}

func TestRenderFlatSeries(t *testing.T) {
	r := NewSVGRenderer(320, 180)
	_, err := r.Render(plot.ChartSpec{
		Kind:   plot.ChartWaveform,
		XAxis:  plot.Axis{Hidden: true},
		YAxis:  plot.Axis{Hidden: true},
		Series: []plot.Series{{Name: "flat", X: []float64{0, 1, 2}, Y: []float64{0, 0, 0}}},
	})
	assert.NoError(t, err)
}

func TestRenderISISingleSmallBin(t *testing.T) {
	d := plotdata.NewDeriver(plotdata.DefaultOptions())
	spec, err := d.ISI(neuron.StatisticsRecord{
		Filename: "rec1.dat",
		ISIBins:  []float64{0.004},
		ISIFreqs: []float64{1},
	})
	require.NoError(t, err)

	out, err := NewSVGRenderer(0, 0).Render(spec)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
}

func TestRenderHidesSecondaryAxis(t *testing.T) {
	r := NewSVGRenderer(0, 0)
	ch, err := r.Build(isiSpec(t))
	require.NoError(t, err)
	assert.True(t, ch.YAxisSecondary.Style.Hidden)

	out, err := r.Render(isiSpec(t))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "-9223372036854775")
}
