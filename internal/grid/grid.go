package grid

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"spikereview/domain/neuron"
	"spikereview/domain/plot"
	"spikereview/internal"
	"spikereview/internal/errors"
	"spikereview/internal/plotdata"
	"spikereview/internal/profiling"
	"spikereview/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Phase is the grid's position in the load cycle
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhasePopulating Phase = "populating"
	PhaseReady      Phase = "ready"
)

// Strategy decides what happens after a successful toggle
type Strategy string

const (
	// StrategyReconcile updates every card's flag from the returned set
	StrategyReconcile Strategy = "reconcile"
	// StrategyReload re-runs the whole load cycle
	StrategyReload Strategy = "reload"
)

// ParseStrategy accepts "reconcile" or "reload"
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyReconcile:
		return StrategyReconcile, nil
	case StrategyReload:
		return StrategyReload, nil
	default:
		return "", errors.ConfigInvalid(fmt.Sprintf("unknown toggle strategy %q (want reconcile or reload)", s))
	}
}

const DefaultWorkers = 4

// Options configures a ReviewGrid
type Options struct {
	Strategy       Strategy
	Workers        int
	ShowFiringRate bool
}

// DefaultOptions returns the reconcile strategy with firing rates shown
func DefaultOptions() Options {
	return Options{
		Strategy:       StrategyReconcile,
		Workers:        DefaultWorkers,
		ShowFiringRate: true,
	}
}

// Snapshot is a consistent copy of the grid state
type Snapshot struct {
	Phase    Phase
	Cards    []Card
	Excluded neuron.ExclusionSet
	Err      error
	LoadedAt time.Time
	Render   profiling.RenderSummary
}

// ToggleResult is what a successful toggle produced
type ToggleResult struct {
	RequestID string
	Key       neuron.UnitKey
	Excluded  neuron.ExclusionSet
	Cards     []CardState
}

// ReviewGrid owns the cards shown to the reviewer and keeps their excluded
// flags consistent with the server's exclusion set
type ReviewGrid struct {
	backend  ports.ReviewBackend
	deriver  *plotdata.Deriver
	renderer ports.ChartRenderer
	opts     Options
	logger   *internal.Logger

	mu          sync.RWMutex
	phase       Phase
	cards       []Card
	index       map[neuron.UnitKey]int
	excluded    neuron.ExclusionSet
	lastErr     error
	loadedAt    time.Time
	renderStats profiling.RenderSummary
}

// New creates a grid in the Loading phase with no cards
func New(backend ports.ReviewBackend, deriver *plotdata.Deriver, renderer ports.ChartRenderer, opts Options, logger *internal.Logger) *ReviewGrid {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyReconcile
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ReviewGrid{
		backend:  backend,
		deriver:  deriver,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
		phase:    PhaseLoading,
		index:    map[neuron.UnitKey]int{},
		excluded: neuron.NewExclusionSet(),
	}
}

// Strategy returns the configured toggle strategy
func (g *ReviewGrid) Strategy() Strategy {
	return g.opts.Strategy
}

// Load runs one load cycle. On failure the grid stays in Loading, keeps
// whatever cards it had and records the error.
func (g *ReviewGrid) Load(ctx context.Context) error {
	startTime := time.Now()
	g.setPhase(PhaseLoading)

	records, err := g.backend.ListNeurons(ctx)
	if err != nil {
		return g.failLoad(errors.Wrap(err, "load neurons"))
	}
	if err := neuron.CheckUniqueKeys(records); err != nil {
		return g.failLoad(err)
	}

	g.setPhase(PhasePopulating)
	timer := profiling.NewRenderTimer(len(records))
	cards, err := g.buildCards(ctx, records, timer)
	if err != nil {
		return g.failLoad(err)
	}
	render, err := timer.Summary()
	if err != nil {
		g.logger.Warn("[ReviewGrid] Render timing unavailable: %v", err)
	}

	set := neuron.ExclusionSetFromRecords(records)
	cards = applySet(cards, set)
	index := make(map[neuron.UnitKey]int, len(cards))
	for i, c := range cards {
		index[c.Key] = i
	}

	g.mu.Lock()
	g.cards = cards
	g.index = index
	g.excluded = set
	g.lastErr = nil
	g.loadedAt = time.Now()
	g.renderStats = render
	g.phase = PhaseReady
	g.mu.Unlock()

	g.logger.Info("[ReviewGrid] Loaded %d cards (%d excluded) in %v", len(cards), set.Len(), time.Since(startTime))
	g.logger.Debug("[ReviewGrid] Card render ms: mean=%.2f p50=%.2f p95=%.2f max=%.2f", render.MeanMs, render.P50Ms, render.P95Ms, render.MaxMs)
	return nil
}

// buildCards renders every card concurrently into its server-order slot
func (g *ReviewGrid) buildCards(ctx context.Context, records []neuron.StatisticsRecord, timer *profiling.RenderTimer) ([]Card, error) {
	cards := make([]Card, len(records))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)

	for i := range records {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			timer.Time(func() { cards[i] = g.buildCard(records[i]) })
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "populate cards")
	}
	return cards, nil
}

func (g *ReviewGrid) buildCard(r neuron.StatisticsRecord) Card {
	card := Card{
		Key:        r.Key(),
		Title:      CardTitle(r, g.opts.ShowFiringRate),
		Tooltip:    CardTooltip(r.Key()),
		FiringRate: r.FiringRateHz,
		Excluded:   r.Excluded,
	}

	if spec, err := g.deriver.ISI(r); err != nil {
		g.logger.Warn("[ReviewGrid] ISI chart unavailable for %s: %v", r.Key(), err)
		card.ISI = unavailable(plot.ChartISI, err)
	} else {
		card.ISI = g.render(spec)
	}

	if spec, err := g.deriver.Waveform(r); err != nil {
		g.logger.Warn("[ReviewGrid] Waveform chart unavailable for %s: %v", r.Key(), err)
		card.Waveform = unavailable(plot.ChartWaveform, err)
	} else {
		card.Waveform = g.render(spec)
	}
	return card
}

func (g *ReviewGrid) render(spec plot.ChartSpec) Chart {
	img, err := g.renderer.Render(spec)
	if err != nil {
		g.logger.Warn("[ReviewGrid] Rendering %s chart failed: %v", spec.Kind, err)
		return unavailable(spec.Kind, err)
	}
	return Chart{Kind: spec.Kind, Image: img, ContentType: g.renderer.ContentType()}
}

// Toggle flips the unit upstream. With the reconcile strategy every card is
// brought in line with the returned set; with reload the grid is rebuilt.
// A failed request leaves the grid untouched.
func (g *ReviewGrid) Toggle(ctx context.Context, key neuron.UnitKey) (ToggleResult, error) {
	g.mu.RLock()
	_, known := g.index[key]
	g.mu.RUnlock()
	if !known {
		return ToggleResult{}, errors.NotFound(fmt.Sprintf("unit %s", key))
	}

	requestID := uuid.NewString()
	set, err := g.backend.Toggle(ctx, key)
	if err != nil {
		g.logger.Warn("[ReviewGrid] Toggle %s failed (request %s): %v", key, requestID, err)
		return ToggleResult{}, err
	}

	if g.opts.Strategy == StrategyReload {
		if err := g.Load(ctx); err != nil {
			return ToggleResult{}, err
		}
		snap := g.Snapshot()
		return ToggleResult{
			RequestID: requestID,
			Key:       key,
			Excluded:  snap.Excluded,
			Cards:     Reconcile(snap.Cards, snap.Excluded),
		}, nil
	}

	states := g.Apply(set)
	g.logger.Debug("[ReviewGrid] Toggled %s (request %s): %d excluded", key, requestID, set.Len())
	return ToggleResult{RequestID: requestID, Key: key, Excluded: set, Cards: states}, nil
}

// Apply replaces the grid's exclusion set and reconciles every card against
// it. The most recently applied set wins.
func (g *ReviewGrid) Apply(set neuron.ExclusionSet) []CardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cards = applySet(g.cards, set)
	g.excluded = set
	return Reconcile(g.cards, set)
}

// Snapshot returns a copy of the current state
func (g *ReviewGrid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cards := make([]Card, len(g.cards))
	copy(cards, g.cards)
	return Snapshot{
		Phase:    g.phase,
		Cards:    cards,
		Excluded: g.excluded,
		Err:      g.lastErr,
		LoadedAt: g.loadedAt,
		Render:   g.renderStats,
	}
}

// Phase returns the current load phase
func (g *ReviewGrid) Phase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// LastError returns the error of the most recent failed load, if any
func (g *ReviewGrid) LastError() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

func (g *ReviewGrid) setPhase(p Phase) {
	g.mu.Lock()
	g.phase = p
	g.mu.Unlock()
}

func (g *ReviewGrid) failLoad(err error) error {
	g.mu.Lock()
	g.phase = PhaseLoading
	g.lastErr = err
	g.mu.Unlock()
	g.logger.Error("[ReviewGrid] Load failed: %v", err)
	return err
}
