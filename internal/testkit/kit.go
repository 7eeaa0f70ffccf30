package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"net/http/httptest"

	"spikereview/adapters/fixture"
	"spikereview/domain/neuron"
)

// SyntheticConfig controls generated neuron records
type SyntheticConfig struct {
	Files           int
	ClustersPerFile int
	Bins            int
	Quantiles       int
	Samples         int
	Seed            int64
}

// DefaultSyntheticConfig mirrors the sorter output: 50 log bins from 1 ms to
// 10 s, 64-sample waveforms
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Files:           2,
		ClustersPerFile: 3,
		Bins:            50,
		Quantiles:       10,
		Samples:         neuron.DefaultSampleCount,
		Seed:            42,
	}
}

// SyntheticRecords generates deterministic, well-formed records named
// times_ch<N>.mat with clusters numbered from 1
func SyntheticRecords(cfg SyntheticConfig) []neuron.StatisticsRecord {
	rng := rand.New(rand.NewSource(cfg.Seed))
	bins := logBins(cfg.Bins)

	records := make([]neuron.StatisticsRecord, 0, cfg.Files*cfg.ClustersPerFile)
	for f := 1; f <= cfg.Files; f++ {
		for c := 1; c <= cfg.ClustersPerFile; c++ {
			rate := 1 + rng.Float64()*20
			records = append(records, neuron.StatisticsRecord{
				Filename:          fmt.Sprintf("times_ch%d.mat", f),
				ClusterID:         c,
				FiringRateHz:      &rate,
				ISIBins:           bins,
				ISIFreqs:          isiProportions(rng, len(bins)),
				WaveformQuantiles: waveformQuantiles(rng, cfg.Quantiles, cfg.Samples),
			})
		}
	}
	return records
}

// StartFixture serves records from an in-memory upstream on a test server
func StartFixture(records []neuron.StatisticsRecord) (*fixture.Server, *httptest.Server) {
	fx := fixture.NewServer(records, nil)
	return fx, httptest.NewServer(fx.Handler())
}

func logBins(n int) []float64 {
	bins := make([]float64, n)
	for i := range bins {
		bins[i] = math.Pow(10, 4*float64(i)/float64(n))
	}
	return bins
}

func isiProportions(rng *rand.Rand, n int) []float64 {
	peak := float64(n) * (0.3 + 0.4*rng.Float64())
	freqs := make([]float64, n)
	var total float64
	for i := range freqs {
		d := (float64(i) - peak) / (float64(n) / 8)
		freqs[i] = math.Exp(-d * d / 2)
		total += freqs[i]
	}
	for i := range freqs {
		freqs[i] /= total
	}
	return freqs
}

func waveformQuantiles(rng *rand.Rand, q, samples int) [][]float64 {
	amplitude := 40 + rng.Float64()*60
	traces := make([][]float64, q)
	for i := range traces {
		scale := 0.6 + 0.8*float64(i)/float64(max(q-1, 1))
		trace := make([]float64, samples)
		for k := range trace {
			t := float64(k-samples/4) / 3
			trace[k] = -amplitude * scale * math.Exp(-t*t/2)
		}
		traces[i] = trace
	}
	return traces
}
