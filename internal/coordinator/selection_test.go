package coordinator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/transport"
	"github.com/threshold-frost/frostd/internal/wire"
)

func TestSelectSignersFullPartyWhenExactlyMinSigners(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{
		{ID: "b", SelectionWeight: 5},
		{ID: "a", SelectionWeight: 1},
	})
	selected, err := SelectSigners(party, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, wire.NodeID("a"), selected[0].ID)
	assert.Equal(t, wire.NodeID("b"), selected[1].ID)
}

func TestSelectSignersErrorsWhenPartyTooSmall(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "a"}})
	_, err := SelectSigners(party, 2, rand.New(rand.NewSource(1)))
	require.Error(t, err)
}

// TestSelectSignersWeightedBias is spec.md §8 scenario D: with weights
// [10.0, 10.0, 0.1] selecting 2 of 3 nodes over many trials, the low-weight
// node should be selected far less often than the two high-weight nodes.
func TestSelectSignersWeightedBias(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{
		{ID: "heavy1", SelectionWeight: 10.0},
		{ID: "heavy2", SelectionWeight: 10.0},
		{ID: "light", SelectionWeight: 0.1},
	})
	rng := rand.New(rand.NewSource(42))

	const trials = 10000
	lightSelected := 0
	for i := 0; i < trials; i++ {
		selected, err := SelectSigners(party, 2, rng)
		require.NoError(t, err)
		for _, n := range selected {
			if n.ID == "light" {
				lightSelected++
			}
		}
	}

	rate := float64(lightSelected) / float64(trials)
	assert.Less(t, rate, 0.15, "low-weight node selected too often: %f", rate)
}

func TestUpdateWeightServerErrorDecaysByTenth(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "n1", SelectionWeight: 1.0}})
	UpdateWeight(party, "n1", transport.Result{Outcome: transport.OutcomeServerError})
	assert.InDelta(t, 0.1, party.Weight("n1"), 1e-9)
}

func TestUpdateWeightTransportErrorDecaysByTenth(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "n1", SelectionWeight: 1.0}})
	UpdateWeight(party, "n1", transport.Result{Outcome: transport.OutcomeTransportError})
	assert.InDelta(t, 0.1, party.Weight("n1"), 1e-9)
}

func TestUpdateWeightClientErrorLeavesWeightUnchanged(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "n1", SelectionWeight: 0.5}})
	UpdateWeight(party, "n1", transport.Result{Outcome: transport.OutcomeClientError})
	assert.InDelta(t, 0.5, party.Weight("n1"), 1e-9)
}

func TestUpdateWeightSuccessAppliesEMA(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "n1", SelectionWeight: 1.0}})
	UpdateWeight(party, "n1", transport.Result{Outcome: transport.OutcomeSuccess, Latency: 990 * time.Millisecond})

	perf := 1 / (0.99 + 0.01)
	want := 0.3*1.0 + 0.7*perf
	assert.InDelta(t, want, party.Weight("n1"), 1e-9)
}

func TestUpdateWeightNeverDropsBelowFloor(t *testing.T) {
	party := config.NewPartyBook([]wire.Node{{ID: "n1", SelectionWeight: wire.MinWeight}})
	UpdateWeight(party, "n1", transport.Result{Outcome: transport.OutcomeServerError})
	assert.GreaterOrEqual(t, party.Weight("n1"), wire.MinWeight)
}
