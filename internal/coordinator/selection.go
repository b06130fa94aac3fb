// Package coordinator implements the coordinator role's DKG orchestration
// (C7), signing aggregation (C8), and weighted peer selection (spec.md
// §4.6–§4.8), grounded on zexfrost/client/dkg.py's DKG class and
// zexfrost/client/sa.py's SA class.
package coordinator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/transport"
	"github.com/threshold-frost/frostd/internal/wire"
)

// SelectSigners picks minSigners nodes from the party using weighted
// random sampling without replacement — the A-Res (Efraimidis-Spirakis)
// technique spec.md §4.7 names explicitly: each node's key is
// `U_i^(1/w_i)` with `U_i` uniform on (0,1), and the top minSigners keys
// win. If the party is exactly minSigners large, every node is used; if
// smaller, selection is impossible.
func SelectSigners(party *config.PartyBook, minSigners int, rng *rand.Rand) ([]wire.Node, error) {
	all := party.All()
	if len(all) < minSigners {
		return nil, fmt.Errorf("coordinator: party has %d members, need at least %d", len(all), minSigners)
	}
	if len(all) == minSigners {
		sortNodesByID(all)
		return all, nil
	}

	type scored struct {
		node wire.Node
		key  float64
	}
	keys := make([]scored, len(all))
	for i, n := range all {
		w := n.SelectionWeight
		if w <= 0 {
			w = wire.MinWeight
		}
		u := rng.Float64()
		keys[i] = scored{node: n, key: math.Pow(u, 1/w)}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].key > keys[j].key })

	selected := make([]wire.Node, minSigners)
	for i := 0; i < minSigners; i++ {
		selected[i] = keys[i].node
	}
	sortNodesByID(selected)
	return selected, nil
}

// sortNodesByID orders nodes by NodeID, so the selected quorum's order is
// deterministic for callers that need stable commitment ordering. Uses
// golang.org/x/exp/slices.Sort (ascending, constraints.Ordered) over the
// NodeID keys rather than a custom comparator on the Node struct.
func sortNodesByID(nodes []wire.Node) {
	ids := make([]wire.NodeID, len(nodes))
	byID := make(map[wire.NodeID]wire.Node, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
		byID[n.ID] = n
	}
	slices.Sort(ids)
	for i, id := range ids {
		nodes[i] = byID[id]
	}
}

// emaAlpha is the success-path EMA smoothing factor spec.md §4.8 fixes at
// 0.7.
const emaAlpha = 0.7

// UpdateWeight applies spec.md §4.8's per-node selection_weight update
// rule after one HTTP round trip completes, mutating the shared party
// book in place.
func UpdateWeight(party *config.PartyBook, id wire.NodeID, result transport.Result) {
	current := party.Weight(id)

	var next float64
	switch result.Outcome {
	case transport.OutcomeServerError, transport.OutcomeTransportError:
		next = current * 0.1
	case transport.OutcomeClientError:
		next = current
	case transport.OutcomeSuccess:
		perf := 1 / (result.Latency.Seconds() + 0.01)
		next = (1-emaAlpha)*current + emaAlpha*perf
	default:
		next = current
	}

	party.UpdateSelectionWeight(id, next)
}
