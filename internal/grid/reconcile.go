package grid

import "spikereview/domain/neuron"

// CardState is the excluded flag of one card after reconciliation
type CardState struct {
	ID       string `json:"id"`
	Excluded bool   `json:"excluded"`
}

// Reconcile computes every card's excluded flag from the canonical set.
// It depends only on its inputs, so applying the same set twice yields the
// same states.
func Reconcile(cards []Card, set neuron.ExclusionSet) []CardState {
	states := make([]CardState, len(cards))
	for i, c := range cards {
		states[i] = CardState{ID: c.ID(), Excluded: set.Contains(c.Key)}
	}
	return states
}

// applySet returns a copy of cards with flags taken from set
func applySet(cards []Card, set neuron.ExclusionSet) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.Excluded = set.Contains(c.Key)
		out[i] = c
	}
	return out
}
