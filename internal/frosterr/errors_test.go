package frosterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threshold-frost/frostd/internal/wire"
)

func TestNotFoundErrors(t *testing.T) {
	err := NewDKGNotFound(wire.DKGID("abc"))
	require.ErrorContains(t, err, "dkg not found: abc")

	err = NewKeyNotFound("node-1||deadbeef")
	require.ErrorContains(t, err, "key not found")

	err = NewNonceNotFound("binding-hiding")
	require.ErrorContains(t, err, "nonce not found")
}

func TestPhaseOrderErrors(t *testing.T) {
	require.ErrorContains(t, NewRound1NotCompleted(), "round1 not completed")
	require.ErrorContains(t, NewRound2NotCompleted(), "round2 not completed")
	require.ErrorContains(t, NewPartnersRound1PackagesMissing(), "round1 packages missing")
	require.ErrorContains(t, NewPartnersTempPublicKeyMissing(), "temporary public keys missing")
}

func TestCommitmentGroupErrorAggregatesAndUnwraps(t *testing.T) {
	failures := map[wire.NodeID]error{
		wire.NodeID("n1"): errors.New("timeout"),
		wire.NodeID("n2"): errors.New("bad signature"),
	}
	err := NewCommitmentGroupError(wire.SignatureID("sig-1"), failures)

	require.ErrorContains(t, err, "sig-1")
	unwrapped := err.Unwrap()
	require.Len(t, unwrapped, 2)
}

func TestSignatureGroupErrorChildCount(t *testing.T) {
	failures := map[wire.NodeID]map[wire.SignatureID]error{
		wire.NodeID("n1"): {
			wire.SignatureID("sig-1"): errors.New("boom"),
		},
	}
	err := NewSignatureGroupError(failures)
	require.Equal(t, 1, err.ChildCount())
}

func TestNodeTimeoutErrorUnwraps(t *testing.T) {
	inner := errors.New("dial tcp: i/o timeout")
	err := &NodeTimeoutError{Node: wire.NodeID("n1"), Err: inner}
	require.ErrorIs(t, err, inner)
}
