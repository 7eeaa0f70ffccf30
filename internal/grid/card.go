package grid

import (
	"fmt"

	"spikereview/domain/neuron"
	"spikereview/domain/plot"
)

// Chart is one rendered diagnostic on a card. When rendering failed, Image is
// empty and Unavailable carries the reason.
type Chart struct {
	Kind        plot.ChartKind
	Image       []byte
	ContentType string
	Unavailable string
}

// OK reports whether the chart rendered
func (c Chart) OK() bool {
	return c.Unavailable == "" && len(c.Image) > 0
}

// Card is the on-screen representation of one unit. Key is fixed at
// construction; only Excluded changes afterwards.
type Card struct {
	Key        neuron.UnitKey
	Title      string
	Tooltip    string
	FiringRate *float64
	ISI        Chart
	Waveform   Chart
	Excluded   bool
}

// ID is the DOM identifier, "<filename>_<clusterId>"
func (c Card) ID() string {
	return c.Key.String()
}

// Class returns the card's CSS classes
func (c Card) Class() string {
	if c.Excluded {
		return "card excluded"
	}
	return "card"
}

// CardTitle renders "filename - cluster N", with the firing rate appended
// when requested and present
func CardTitle(r neuron.StatisticsRecord, showFiringRate bool) string {
	title := fmt.Sprintf("%s - cluster %d", r.Filename, r.ClusterID)
	if showFiringRate && r.HasFiringRate() {
		title += fmt.Sprintf(" (%.2f Hz)", *r.FiringRateHz)
	}
	return title
}

// CardTooltip renders "filename | cluster N"
func CardTooltip(key neuron.UnitKey) string {
	return fmt.Sprintf("%s | cluster %d", key.Filename, key.ClusterID)
}

func unavailable(kind plot.ChartKind, err error) Chart {
	return Chart{Kind: kind, Unavailable: err.Error()}
}
