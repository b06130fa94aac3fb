package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/threshold-frost/frostd/internal/wire"
)

// PartyBook holds the coordinator's full view of party members, replacing
// zexfrost/node/party.py's process-global `_party` with an explicit struct
// constructed once at startup and passed to the coordinator and signing
// aggregator constructors (spec.md §9).
type PartyBook struct {
	nodes map[wire.NodeID]wire.Node
}

// NewPartyBook builds a PartyBook from a slice of nodes.
func NewPartyBook(nodes []wire.Node) *PartyBook {
	pb := &PartyBook{nodes: make(map[wire.NodeID]wire.Node, len(nodes))}
	for _, n := range nodes {
		if n.SelectionWeight == 0 {
			n.SelectionWeight = 1.0
		}
		pb.nodes[n.ID] = n
	}
	return pb
}

// LoadPartyBook reads a JSON array of wire.Node from path, the coordinator
// binary's party-file input (SPEC_FULL.md §1.2).
func LoadPartyBook(path string) (*PartyBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading party file: %w", err)
	}
	var nodes []wire.Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("config: parsing party file: %w", err)
	}
	return NewPartyBook(nodes), nil
}

// Get returns the subset of the party matching the given IDs, mirroring
// zexfrost/node/party.py's get_party filter-by-membership semantics.
func (pb *PartyBook) Get(ids []wire.NodeID) []wire.Node {
	out := make([]wire.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := pb.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// All returns every node in the party book.
func (pb *PartyBook) All() []wire.Node {
	out := make([]wire.Node, 0, len(pb.nodes))
	for _, n := range pb.nodes {
		out = append(out, n)
	}
	return out
}

// UpdateSelectionWeight sets a node's selection_weight, used by the
// coordinator's EMA weight-update rule after each request (spec.md §4.8).
func (pb *PartyBook) UpdateSelectionWeight(id wire.NodeID, weight float64) {
	n, ok := pb.nodes[id]
	if !ok {
		return
	}
	if weight < wire.MinWeight {
		weight = wire.MinWeight
	}
	n.SelectionWeight = weight
	pb.nodes[id] = n
}

// Weight returns a node's current selection_weight.
func (pb *PartyBook) Weight(id wire.NodeID) float64 {
	if n, ok := pb.nodes[id]; ok {
		return n.SelectionWeight
	}
	return wire.MinWeight
}
