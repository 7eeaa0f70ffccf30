package ui

import (
	"html/template"

	"spikereview/domain/plot"
	"spikereview/internal/grid"
)

// gridView is the data behind the grid fragment
type gridView struct {
	Phase         string
	Error         string
	ExcludedCount int
	Cards         []cardView
	Guide         template.HTML
}

type cardView struct {
	ID        string
	Class     string
	Title     string
	Tooltip   string
	Filename  string
	ClusterID int
	Charts    []chartView
}

type chartView struct {
	Kind   plot.ChartKind
	OK     bool
	SVG    template.HTML
	Reason string
}

func newGridView(snap grid.Snapshot, guide template.HTML) gridView {
	view := gridView{
		Phase:         string(snap.Phase),
		ExcludedCount: snap.Excluded.Len(),
		Cards:         make([]cardView, len(snap.Cards)),
		Guide:         guide,
	}
	if snap.Err != nil {
		view.Error = snap.Err.Error()
	}
	for i, c := range snap.Cards {
		view.Cards[i] = cardView{
			ID:        c.ID(),
			Class:     c.Class(),
			Title:     c.Title,
			Tooltip:   c.Tooltip,
			Filename:  c.Key.Filename,
			ClusterID: c.Key.ClusterID,
			Charts:    []chartView{newChartView(c.ISI), newChartView(c.Waveform)},
		}
	}
	return view
}

// chart images are produced by our own renderer, so they are trusted markup
func newChartView(c grid.Chart) chartView {
	return chartView{
		Kind:   c.Kind,
		OK:     c.OK(),
		SVG:    template.HTML(c.Image),
		Reason: c.Unavailable,
	}
}
