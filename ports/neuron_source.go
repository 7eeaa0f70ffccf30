package ports

import (
	"context"

	"spikereview/domain/neuron"
)

// NeuronSource fetches the full snapshot of per-unit statistics, in render order
type NeuronSource interface {
	ListNeurons(ctx context.Context) ([]neuron.StatisticsRecord, error)
}

// ExclusionToggler flips one unit's exclusion bit upstream and returns the
// complete exclusion set as the server sees it afterwards
type ExclusionToggler interface {
	Toggle(ctx context.Context, key neuron.UnitKey) (neuron.ExclusionSet, error)
}

// ReviewBackend is the upstream spike-sorting server as seen by the review grid
type ReviewBackend interface {
	NeuronSource
	ExclusionToggler
}
