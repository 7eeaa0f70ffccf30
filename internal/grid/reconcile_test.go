package grid

import (
	"testing"

	"spikereview/domain/neuron"

	"github.com/stretchr/testify/assert"
)

func TestReconcileIsIdempotent(t *testing.T) {
	cards := []Card{
		{Key: neuron.NewUnitKey("a.dat", 1), Excluded: true},
		{Key: neuron.NewUnitKey("a.dat", 2)},
		{Key: neuron.NewUnitKey("b.dat", 1)},
	}
	set := neuron.NewExclusionSet(neuron.NewUnitKey("a.dat", 2))

	once := applySet(cards, set)
	twice := applySet(once, set)
	assert.Equal(t, once, twice)
	assert.Equal(t, Reconcile(cards, set), Reconcile(once, set))

	// input cards are not modified
	assert.True(t, cards[0].Excluded)
	assert.False(t, once[0].Excluded)
}

func TestReconcileIgnoresPriorState(t *testing.T) {
	tests := []struct {
		name  string
		prior []bool
	}{
		{"all clear", []bool{false, false, false}},
		{"all excluded", []bool{true, true, true}},
		{"mixed", []bool{true, false, true}},
	}
	keys := []neuron.UnitKey{
		neuron.NewUnitKey("rec1.dat", 3),
		neuron.NewUnitKey("rec1.dat", 4),
		neuron.NewUnitKey("rec2.dat", 7),
	}
	set := neuron.NewExclusionSet(keys[0], keys[2])

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cards := make([]Card, len(keys))
			for i, k := range keys {
				cards[i] = Card{Key: k, Excluded: test.prior[i]}
			}
			assert.Equal(t, []CardState{
				{ID: "rec1.dat_3", Excluded: true},
				{ID: "rec1.dat_4", Excluded: false},
				{ID: "rec2.dat_7", Excluded: true},
			}, Reconcile(cards, set))
		})
	}
}

func TestReconcileSetMembersWithoutCards(t *testing.T) {
	cards := []Card{{Key: neuron.NewUnitKey("a.dat", 1)}}
	set := neuron.NewExclusionSet(neuron.NewUnitKey("gone.dat", 9))
	assert.Equal(t, []CardState{{ID: "a.dat_1", Excluded: false}}, Reconcile(cards, set))
	assert.Empty(t, Reconcile(nil, set))
}

func TestCardTitleAndTooltip(t *testing.T) {
	rate := 4.216
	r := neuron.StatisticsRecord{Filename: "times_ch3.mat", ClusterID: 2, FiringRateHz: &rate}

	assert.Equal(t, "times_ch3.mat - cluster 2 (4.22 Hz)", CardTitle(r, true))
	assert.Equal(t, "times_ch3.mat - cluster 2", CardTitle(r, false))

	r.FiringRateHz = nil
	assert.Equal(t, "times_ch3.mat - cluster 2", CardTitle(r, true))
	assert.Equal(t, "times_ch3.mat | cluster 2", CardTooltip(r.Key()))
}
