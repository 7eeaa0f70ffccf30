package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// LinearTicks places at most maxTicks evenly spaced ticks covering [min, max],
// each rounded to the given number of decimals. The first and last ticks
// bound the axis range, so they are widened outwards to the rounding step.
func LinearTicks(min, max float64, maxTicks, decimals int) []gochart.Tick {
	if maxTicks < 2 {
		maxTicks = 2
	}
	step := math.Pow10(-decimals)
	lo := round(math.Floor(snap(min/step))*step, decimals)
	hi := round(math.Ceil(snap(max/step))*step, decimals)
	if hi-lo < step {
		hi = round(lo+step, decimals)
	}

	ticks := make([]gochart.Tick, 0, maxTicks)
	for i := 0; i < maxTicks; i++ {
		v := lo + (hi-lo)*float64(i)/float64(maxTicks-1)
		if i == maxTicks-1 {
			v = hi
		}
		v = round(v, decimals)
		if len(ticks) > 0 && ticks[len(ticks)-1].Value == v {
			continue
		}
		ticks = append(ticks, gochart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', decimals, 64)})
	}
	return ticks
}

// LogTicks returns ticks in log10 space for a logarithmic axis over [min, max]
// (both > 0): the endpoints plus every power of ten in between, labelled with
// the untransformed value.
func LogTicks(min, max float64, decimals int) []gochart.Tick {
	values := []float64{min}
	for exp := math.Ceil(math.Log10(min)); exp <= math.Floor(math.Log10(max)); exp++ {
		values = append(values, math.Pow(10, exp))
	}
	values = append(values, max)

	ticks := make([]gochart.Tick, 0, len(values))
	for _, v := range values {
		pos := math.Log10(v)
		if len(ticks) > 0 && pos <= ticks[len(ticks)-1].Value {
			continue
		}
		ticks = append(ticks, gochart.Tick{Value: pos, Label: LogTickLabel(v, decimals)})
	}
	return ticks
}

// LogTickLabel formats v with at least decimals places, adding places below
// 10 so sub-millisecond bins keep distinct labels. Trailing zeros past
// decimals are dropped.
func LogTickLabel(v float64, decimals int) string {
	places := 0
	switch {
	case v >= 10:
	case v >= 1:
		places = 1
	case v > 0:
		places = int(math.Ceil(-math.Log10(v))) + 1
	}
	if decimals >= places {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}

	label := strconv.FormatFloat(v, 'f', places, 64)
	keep := strings.IndexByte(label, '.') + 1 + decimals
	label = strings.TrimRight(label, "0")
	if len(label) < keep {
		label += strings.Repeat("0", keep-len(label))
	}
	return strings.TrimSuffix(label, ".")
}

// DataRange returns the min and max across the given values, padded when flat
func DataRange(values []float64) (float64, float64) {
	lo, err := stats.Min(values)
	if err != nil {
		return 0, 1
	}
	hi, _ := stats.Max(values)
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.05, 0.01)
		return lo - pad, hi + pad
	}
	return lo, hi
}

// LogRange is DataRange for a logarithmic axis: a flat range is widened by a
// factor so the bounds stay positive
func LogRange(values []float64) (float64, float64) {
	lo, err := stats.Min(values)
	if err != nil {
		return 1, 10
	}
	hi, _ := stats.Max(values)
	if hi == lo {
		return lo / 1.1, hi * 1.1
	}
	return lo, hi
}

// snap removes float noise such as 40.00000000000001 before floor/ceil
func snap(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

func round(v float64, decimals int) float64 {
	r, err := stats.Round(v, decimals)
	if err != nil {
		return v
	}
	return r
}
