package signing

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/dkg"
	"github.com/threshold-frost/frostd/internal/wire"
)

// buildKeyPackages runs a full three-round DKG entirely through
// cryptosuite's exported API (no HTTP, no jointkey encryption) to produce
// real PrivateKeyPackage/PublicKeyPackage values for this package's tests.
func buildKeyPackages(t *testing.T, party []wire.NodeID, minSigners int) (
	*cryptosuite.Ciphersuite, map[wire.NodeID]wire.PrivateKeyPackage, wire.PublicKeyPackage,
) {
	t.Helper()
	cs, err := cryptosuite.ForCurve(wire.CurveSecp256k1)
	require.NoError(t, err)

	coords := cryptosuite.NodeCoordinates(party)

	states := make(map[wire.NodeID]*cryptosuite.DKGPart1State, len(party))
	commitmentsByDealer := make(map[wire.NodeID][]*cryptosuite.Point, len(party))
	for _, id := range party {
		state, _, err := cryptosuite.DKGPart1(cs, id, wire.DKGID("sign-test-dkg"), minSigners)
		require.NoError(t, err)
		states[id] = state

		points := make([]*cryptosuite.Point, minSigners)
		for i, c := range state.Coeffs {
			points[i] = cs.Curve().EcBaseMul(c)
		}
		commitmentsByDealer[id] = points
	}

	sharesFor := make(map[wire.NodeID]map[wire.NodeID]*big.Int, len(party))
	for _, dealer := range party {
		perReceiver := cryptosuite.DKGPart2(cs.Curve(), states[dealer], coords)
		for receiver, share := range perReceiver {
			if sharesFor[receiver] == nil {
				sharesFor[receiver] = make(map[wire.NodeID]*big.Int)
			}
			sharesFor[receiver][dealer] = share
		}
	}

	keyPackages := make(map[wire.NodeID]wire.PrivateKeyPackage, len(party))
	var pubkeyPackage wire.PublicKeyPackage
	for _, self := range party {
		r, err := cryptosuite.DKGPart3(
			cs, self, sharesFor[self][self], sharesFor[self], commitmentsByDealer, coords, minSigners, wire.CurveSecp256k1,
		)
		require.NoError(t, err)
		keyPackages[self] = r.PrivateKeyPackage
		pubkeyPackage = r.PublicKeyPackage
	}

	return cs, keyPackages, pubkeyPackage
}

func TestCommitmentAndSignRoundTrip(t *testing.T) {
	party := []wire.NodeID{"node-a", "node-b", "node-c"}
	const minSigners = 2
	cs, keyPackages, pubkeyPackage := buildKeyPackages(t, party, minSigners)

	keyRepo := dkg.NewKeyRepository()
	for _, kp := range keyPackages {
		dkg.StoreKeyPackage(keyRepo, kp)
	}
	nonceRepo := NewNonceRepository()

	signers := party[:minSigners]
	commitments := make(map[wire.NodeID]wire.Commitment, len(signers))
	for _, id := range signers {
		c, err := Commitment(id, wire.CurveSecp256k1, pubkeyPackage, keyRepo, nonceRepo, nil)
		require.NoError(t, err)
		commitments[id] = c
	}

	message := []byte("message")
	entry := wire.SigningEntry{
		Data:        wire.SigningData{Message: wire.HexStr(hex.EncodeToString(message))},
		Commitments: commitments,
	}

	shares := make(map[wire.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		sharePkg, err := Sign(id, wire.CurveSecp256k1, pubkeyPackage, entry, keyRepo, nonceRepo)
		require.NoError(t, err)
		require.Equal(t, id, sharePkg.Identifier)
		shareBytes, err := hex.DecodeString(string(sharePkg.Share))
		require.NoError(t, err)
		shares[id] = new(big.Int).SetBytes(shareBytes)
	}

	groupKeyBytes, err := hex.DecodeString(string(pubkeyPackage.VerifyingKey))
	require.NoError(t, err)
	groupKey, err := cs.Curve().DeserializePoint(groupKeyBytes)
	require.NoError(t, err)

	coords := cryptosuite.NodeCoordinates(party)
	sig, err := cryptosuite.Aggregate(cs, groupKey, message, commitments, coords, shares)
	require.NoError(t, err)
	require.True(t, cryptosuite.VerifyGroupSignature(cs, groupKey, message, sig))
}

func TestSignFailsOnMissingNonce(t *testing.T) {
	party := []wire.NodeID{"node-a", "node-b", "node-c"}
	const minSigners = 2
	_, keyPackages, pubkeyPackage := buildKeyPackages(t, party, minSigners)

	keyRepo := dkg.NewKeyRepository()
	for _, kp := range keyPackages {
		dkg.StoreKeyPackage(keyRepo, kp)
	}
	nonceRepo := NewNonceRepository()

	entry := wire.SigningEntry{
		Data: wire.SigningData{Message: wire.HexStr(hex.EncodeToString([]byte("message")))},
		Commitments: map[wire.NodeID]wire.Commitment{
			party[0]: {Hiding: "aa", Binding: "bb"},
		},
	}

	_, err := Sign(party[0], wire.CurveSecp256k1, pubkeyPackage, entry, keyRepo, nonceRepo)
	require.Error(t, err)
}

func TestNonceIsOneShotAcrossCommitmentAndSign(t *testing.T) {
	party := []wire.NodeID{"node-a", "node-b", "node-c"}
	const minSigners = 2
	_, keyPackages, pubkeyPackage := buildKeyPackages(t, party, minSigners)

	keyRepo := dkg.NewKeyRepository()
	for _, kp := range keyPackages {
		dkg.StoreKeyPackage(keyRepo, kp)
	}
	nonceRepo := NewNonceRepository()

	signers := party[:minSigners]
	commitments := make(map[wire.NodeID]wire.Commitment, len(signers))
	for _, id := range signers {
		c, err := Commitment(id, wire.CurveSecp256k1, pubkeyPackage, keyRepo, nonceRepo, nil)
		require.NoError(t, err)
		commitments[id] = c
	}

	entry := wire.SigningEntry{
		Data:        wire.SigningData{Message: wire.HexStr(hex.EncodeToString([]byte("message")))},
		Commitments: commitments,
	}

	self := signers[0]
	_, err := Sign(self, wire.CurveSecp256k1, pubkeyPackage, entry, keyRepo, nonceRepo)
	require.NoError(t, err)

	_, err = Sign(self, wire.CurveSecp256k1, pubkeyPackage, entry, keyRepo, nonceRepo)
	require.Error(t, err)
}
