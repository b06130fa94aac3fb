package cryptosuite

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/threshold-frost/frostd/internal/wire"
)

// TestTweakedSigningRoundTrip exercises the straight-line case: every
// signer applies the tweak the same way the coordinator aggregates it, and
// the result verifies against the tweaked key.
func TestTweakedSigningRoundTrip(t *testing.T) {
	cs, err := ForCurve(wire.CurveSecp256k1Tr)
	require.NoError(t, err)

	party := []wire.NodeID{"node-a", "node-b", "node-c"}
	const minSigners = 2
	results, coords := runFullDKG(t, cs, party, minSigners)

	groupKeyBytes, err := hex.DecodeString(string(results[party[0]].PrivateKeyPackage.VerifyingKey))
	require.NoError(t, err)
	groupKey, err := cs.Curve().DeserializePoint(groupKeyBytes)
	require.NoError(t, err)

	tweakBy := wire.TweakBy(hex.EncodeToString([]byte("taproot output")))
	tweak, err := ResolveGroupTweak(cs, groupKey, &tweakBy)
	require.NoError(t, err)
	require.NotNil(t, tweak, "secp256k1_tr always tweaks")

	signers := party[:minSigners]
	message := []byte("sign this message")

	nonces := make(map[wire.NodeID]*SigningNonce, len(signers))
	commitments := make(map[wire.NodeID]wire.Commitment, len(signers))
	for _, id := range signers {
		share := decodeHexBigInt(t, results[id].PrivateKeyPackage.SigningShare)
		nonce, commitment, err := Round1Commit(cs, share)
		require.NoError(t, err)
		nonces[id] = nonce
		commitments[id] = *commitment
	}

	shares := make(map[wire.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		share := decodeHexBigInt(t, results[id].PrivateKeyPackage.SigningShare)
		z, err := Round2SignWithTweak(cs, id, share, tweak, message, nonces[id], commitments, coords)
		require.NoError(t, err)
		shares[id] = z
	}

	sig, err := AggregateWithTweak(cs, tweak, message, commitments, coords, shares)
	require.NoError(t, err)
	require.True(t, VerifyGroupSignature(cs, tweak.TweakedKey, message, sig))
}

// TestTweakToggleMismatchFailsVerification is spec.md §8 scenario C: if the
// signers apply the tweak while aggregation does not (or vice versa), the
// resulting signature must fail verification — internal/signing's
// commitment/sign path and internal/coordinator's aggregation step both
// resolve the tweak decision through the same ResolveGroupTweak so in
// correct operation they never diverge, but if they ever did, the
// mismatch must surface as a verification failure rather than a
// signature that silently verifies against the wrong key.
func TestTweakToggleMismatchFailsVerification(t *testing.T) {
	cs, err := ForCurve(wire.CurveSecp256k1Tr)
	require.NoError(t, err)

	party := []wire.NodeID{"node-a", "node-b", "node-c"}
	const minSigners = 2
	results, coords := runFullDKG(t, cs, party, minSigners)

	groupKeyBytes, err := hex.DecodeString(string(results[party[0]].PrivateKeyPackage.VerifyingKey))
	require.NoError(t, err)
	groupKey, err := cs.Curve().DeserializePoint(groupKeyBytes)
	require.NoError(t, err)

	tweakBy := wire.TweakBy(hex.EncodeToString([]byte("taproot output")))
	tweak, err := ResolveGroupTweak(cs, groupKey, &tweakBy)
	require.NoError(t, err)
	require.NotNil(t, tweak)

	signers := party[:minSigners]
	message := []byte("sign this message")

	nonces := make(map[wire.NodeID]*SigningNonce, len(signers))
	commitments := make(map[wire.NodeID]wire.Commitment, len(signers))
	for _, id := range signers {
		share := decodeHexBigInt(t, results[id].PrivateKeyPackage.SigningShare)
		nonce, commitment, err := Round1Commit(cs, share)
		require.NoError(t, err)
		nonces[id] = nonce
		commitments[id] = *commitment
	}

	// Signers apply the tweak (as internal/signing would for a
	// secp256k1_tr session), but aggregation treats the batch as
	// untweaked (as if internal/coordinator had resolved TweakBy to nil
	// for the same signature) — the toggle this test name refers to.
	shares := make(map[wire.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		share := decodeHexBigInt(t, results[id].PrivateKeyPackage.SigningShare)
		z, err := Round2SignWithTweak(cs, id, share, tweak, message, nonces[id], commitments, coords)
		require.NoError(t, err)
		shares[id] = z
	}

	mismatched, err := Aggregate(cs, groupKey, message, commitments, coords, shares)
	require.NoError(t, err)

	require.False(t, VerifyGroupSignature(cs, groupKey, message, mismatched),
		"a signature signed-with-tweak but aggregated-without-tweak must not verify against the bare group key")
	require.False(t, VerifyGroupSignature(cs, tweak.TweakedKey, message, mismatched),
		"nor against the tweaked key, since aggregation never added the tweak's c*t correction")

	// The inverse toggle: signers sign untweaked, aggregation applies the
	// tweak correction anyway.
	plainShares := make(map[wire.NodeID]*big.Int, len(signers))
	for _, id := range signers {
		share := decodeHexBigInt(t, results[id].PrivateKeyPackage.SigningShare)
		z, err := Round2Sign(cs, id, share, groupKey, message, nonces[id], commitments, coords)
		require.NoError(t, err)
		plainShares[id] = z
	}
	mismatched2, err := AggregateWithTweak(cs, tweak, message, commitments, coords, plainShares)
	require.NoError(t, err)
	require.False(t, VerifyGroupSignature(cs, tweak.TweakedKey, message, mismatched2))
	require.False(t, VerifyGroupSignature(cs, groupKey, message, mismatched2))
}
