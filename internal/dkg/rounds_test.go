package dkg

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/wire"
)

type testIdentity struct {
	id       wire.NodeID
	settings *config.NodeSettings
	session  *Session
}

// threeNodeParty builds three real identities (a signing keypair each) plus
// a fresh Session per node against a shared DKGID, the same identity
// plumbing internal/node/httpapi's server_test.go uses.
func threeNodeParty(t *testing.T, dkgID wire.DKGID, minSigners int) ([]wire.NodeID, map[wire.NodeID]*testIdentity, []wire.Node) {
	t.Helper()
	cs, err := cryptosuite.ForCurve(wire.CurveSecp256k1)
	require.NoError(t, err)

	ids := []wire.NodeID{"node-a", "node-b", "node-c"}
	nodes := make([]wire.Node, 0, len(ids))
	identities := make(map[wire.NodeID]*testIdentity, len(ids))
	for _, id := range ids {
		b := make([]byte, 32)
		_, err := rand.Read(b)
		require.NoError(t, err)
		sk := new(big.Int).Mod(new(big.Int).SetBytes(b), cs.Curve().Order())
		pub := cs.Curve().EcBaseMul(sk)

		node := wire.Node{
			ID:        id,
			PublicKey: wire.HexStr(hex.EncodeToString(pub.X.Bytes())),
			CurveName: wire.CurveSecp256k1,
		}
		nodes = append(nodes, node)
		identities[id] = &testIdentity{
			id: id,
			settings: &config.NodeSettings{
				ID:         id,
				CurveName:  wire.CurveSecp256k1,
				PrivateKey: wire.HexStr(hex.EncodeToString(sk.Bytes())),
			},
		}
	}

	for _, id := range ids {
		s, err := NewSession(dkgID, wire.CurveSecp256k1, len(ids), minSigners, id, nodes)
		require.NoError(t, err)
		identities[id].session = s
	}

	return ids, identities, nodes
}

// TestRound2RejectsTamperedBroadcastSignature exercises property 3: tampering
// any field of a node's round-1 broadcast response must cause a partner's
// Round2 call to raise a SignatureValidationError naming that node, since
// the response's signature covers the whole package plus temp_public_key.
func TestRound2RejectsTamperedBroadcastSignature(t *testing.T) {
	dkgID := wire.DKGID("round2-tamper-test")
	ids, identities, _ := threeNodeParty(t, dkgID, 2)

	broadcast := make(map[wire.NodeID]wire.DKGRound1NodeResponse, len(ids))
	for _, id := range ids {
		resp, err := identities[id].session.Round1(identities[id].settings)
		require.NoError(t, err)
		broadcast[id] = *resp
	}

	victim := ids[0]
	tampered := ids[1]
	tamperedResp := broadcast[tampered]
	// Flip the last hex nibble of the temp public key so the package's
	// signed payload no longer matches what was signed.
	raw := []byte(tamperedResp.TempPublicKey)
	raw[len(raw)-1] ^= 1
	tamperedResp.TempPublicKey = wire.HexStr(raw)
	broadcast[tampered] = tamperedResp

	_, err := identities[victim].session.Round2(broadcast)
	require.Error(t, err)

	var sigErr *frosterr.SignatureValidationError
	require.ErrorAs(t, err, &sigErr)
	require.Contains(t, sigErr.OffendingNodes, tampered)
	require.NotContains(t, sigErr.OffendingNodes, ids[2])
}

// TestRound2AcceptsUntamperedBroadcast is the control case for the test
// above: with nothing tampered, Round2 must succeed for every node.
func TestRound2AcceptsUntamperedBroadcast(t *testing.T) {
	dkgID := wire.DKGID("round2-control-test")
	ids, identities, _ := threeNodeParty(t, dkgID, 2)

	broadcast := make(map[wire.NodeID]wire.DKGRound1NodeResponse, len(ids))
	for _, id := range ids {
		resp, err := identities[id].session.Round1(identities[id].settings)
		require.NoError(t, err)
		broadcast[id] = *resp
	}

	for _, id := range ids {
		_, err := identities[id].session.Round2(broadcast)
		require.NoError(t, err, "round2 for %s", id)
	}
}
