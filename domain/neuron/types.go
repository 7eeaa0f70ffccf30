package neuron

import (
	"fmt"
	"sort"
)

// ============================================================================
// UNIT IDENTITY
// ============================================================================

// UnitKey uniquely identifies a sorted unit across every recording.
// It is comparable and used directly as a map key.
type UnitKey struct {
	Filename  string `json:"filename"`
	ClusterID int    `json:"cluster_id"`
}

// NewUnitKey builds a key from its two parts
func NewUnitKey(filename string, clusterID int) UnitKey {
	return UnitKey{Filename: filename, ClusterID: clusterID}
}

// String composes the flat "<filename>_<clusterId>" form
func (k UnitKey) String() string {
	return fmt.Sprintf("%s_%d", k.Filename, k.ClusterID)
}

// Less orders keys by filename, then cluster id
func (k UnitKey) Less(other UnitKey) bool {
	if k.Filename != other.Filename {
		return k.Filename < other.Filename
	}
	return k.ClusterID < other.ClusterID
}

// ============================================================================
// STATISTICS RECORD
// ============================================================================

// StatisticsRecord is the per-unit payload served by /api/neurons.
// Everything in it is precomputed upstream; it is never mutated here.
type StatisticsRecord struct {
	Filename          string      `json:"filename"`
	ClusterID         int         `json:"cluster_id"`
	Excluded          bool        `json:"excluded"`
	FiringRateHz      *float64    `json:"firing_rate,omitempty"`
	ISIBins           []float64   `json:"ISI_bins"`
	ISIFreqs          []float64   `json:"ISI_freqs"`
	WaveformQuantiles [][]float64 `json:"waveform_quintiles"`
}

// Key returns the record's unit identity
func (r StatisticsRecord) Key() UnitKey {
	return UnitKey{Filename: r.Filename, ClusterID: r.ClusterID}
}

// HasFiringRate reports whether the upstream sent a firing rate
func (r StatisticsRecord) HasFiringRate() bool {
	return r.FiringRateHz != nil
}

// ============================================================================
// EXCLUSION SET
// ============================================================================

// ExclusionSet is an immutable set of excluded units. It is only ever
// replaced wholesale, never edited in place.
type ExclusionSet struct {
	members map[UnitKey]struct{}
}

// NewExclusionSet builds a set from the given keys; duplicates collapse
func NewExclusionSet(keys ...UnitKey) ExclusionSet {
	members := make(map[UnitKey]struct{}, len(keys))
	for _, k := range keys {
		members[k] = struct{}{}
	}
	return ExclusionSet{members: members}
}

// ExclusionSetFromRecords derives the load-time set from each record's flag
func ExclusionSetFromRecords(records []StatisticsRecord) ExclusionSet {
	var keys []UnitKey
	for _, r := range records {
		if r.Excluded {
			keys = append(keys, r.Key())
		}
	}
	return NewExclusionSet(keys...)
}

// Contains reports membership
func (s ExclusionSet) Contains(key UnitKey) bool {
	_, ok := s.members[key]
	return ok
}

// Len returns the number of excluded units
func (s ExclusionSet) Len() int {
	return len(s.members)
}

// Keys returns the members in stable sorted order
func (s ExclusionSet) Keys() []UnitKey {
	keys := make([]UnitKey, 0, len(s.members))
	for k := range s.members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Equal reports whether both sets hold the same members
func (s ExclusionSet) Equal(other ExclusionSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k := range s.members {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// Tuples renders the set in the wire form [[filename, clusterId], ...]
func (s ExclusionSet) Tuples() [][2]interface{} {
	keys := s.Keys()
	tuples := make([][2]interface{}, len(keys))
	for i, k := range keys {
		tuples[i] = [2]interface{}{k.Filename, k.ClusterID}
	}
	return tuples
}
