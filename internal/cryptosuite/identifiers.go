package cryptosuite

import (
	"sort"

	"github.com/threshold-frost/frostd/internal/wire"
)

// NodeCoordinates assigns each party member a stable, non-zero x-coordinate
// on the Shamir polynomial by sorting the party's NodeIDs and using
// 1-based position. Every node computes the same assignment independently
// from the same party_ids list (spec.md §3 DKGRound1Request), so no
// identifier needs to travel on the wire beyond the NodeID itself — this
// replaces the teacher's uint64 signerIndex, which the FROST draft treats
// as an opaque NonZeroScalar identifier with no further structure.
func NodeCoordinates(partyIDs []wire.NodeID) map[wire.NodeID]int64 {
	sorted := make([]wire.NodeID, len(partyIDs))
	copy(sorted, partyIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	coords := make(map[wire.NodeID]int64, len(sorted))
	for i, id := range sorted {
		coords[id] = int64(i + 1)
	}
	return coords
}
