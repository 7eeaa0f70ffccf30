package neuron

import (
	"math"

	"spikereview/internal/errors"
)

// DefaultSampleCount is the waveform length produced by the spike sorter
const DefaultSampleCount = 64

// Shape holds the payload dimensions the client expects.
// QuantileCount of zero accepts whatever non-zero count the server sends.
type Shape struct {
	SampleCount   int
	QuantileCount int
}

// DefaultShape returns the dimensions observed from the upstream sorter
func DefaultShape() Shape {
	return Shape{SampleCount: DefaultSampleCount}
}

// ValidateISI checks the ISI arrays can be drawn on a logarithmic axis
func ValidateISI(r StatisticsRecord) error {
	if len(r.ISIBins) == 0 {
		return errors.ValidationErrorf("%s: ISI_bins is empty", r.Key())
	}
	if len(r.ISIBins) != len(r.ISIFreqs) {
		return errors.ValidationErrorf("%s: ISI_bins has %d entries but ISI_freqs has %d",
			r.Key(), len(r.ISIBins), len(r.ISIFreqs))
	}
	for i, b := range r.ISIBins {
		if !(b > 0) || math.IsInf(b, 0) {
			return errors.ValidationErrorf("%s: ISI bin %d is %v, must be positive", r.Key(), i, b)
		}
	}
	for i, f := range r.ISIFreqs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.ValidationErrorf("%s: ISI frequency %d is not finite", r.Key(), i)
		}
	}
	return nil
}

// ValidateWaveforms checks every quantile trace has the configured length
func ValidateWaveforms(r StatisticsRecord, shape Shape) error {
	q := len(r.WaveformQuantiles)
	if q == 0 {
		return errors.ValidationErrorf("%s: waveform_quintiles is empty", r.Key())
	}
	if shape.QuantileCount > 0 && q != shape.QuantileCount {
		return errors.ValidationErrorf("%s: expected %d waveform quantiles, got %d",
			r.Key(), shape.QuantileCount, q)
	}
	for i, trace := range r.WaveformQuantiles {
		if len(trace) != shape.SampleCount {
			return errors.ValidationErrorf("%s: waveform quantile %d has %d samples, expected %d",
				r.Key(), i, len(trace), shape.SampleCount)
		}
	}
	return nil
}

// CheckUniqueKeys fails when two records share a UnitKey
func CheckUniqueKeys(records []StatisticsRecord) error {
	seen := make(map[UnitKey]int, len(records))
	for i, r := range records {
		if prev, ok := seen[r.Key()]; ok {
			return errors.ValidationErrorf("duplicate unit %s at positions %d and %d", r.Key(), prev, i)
		}
		seen[r.Key()] = i
	}
	return nil
}
