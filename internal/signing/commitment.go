// Package signing implements the node-side commitment and share
// operations of the threshold signing protocol (C6 in SPEC_FULL.md §4),
// grounded on zexfrost/node/sign.py's `commitment` and `sign` functions
// (original_source). Unlike the original, nonce retrieval in the share
// operation uses the store's atomic Pop rather than a get-then-delete
// pair, closing the nonce-reuse race spec.md §9 calls out explicitly.
package signing

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/dkg"
	"github.com/threshold-frost/frostd/internal/store"
	"github.com/threshold-frost/frostd/internal/wire"
)

// NonceRepository holds one-shot nonce pairs, keyed by
// "binding-hiding" (wire.Commitment.Key), popped exactly once by the
// share operation.
type NonceRepository = store.Repository[*cryptosuite.SigningNonce]

// NewNonceRepository constructs an empty in-memory nonce repository.
func NewNonceRepository() NonceRepository {
	return store.NewMemRepository[*cryptosuite.SigningNonce]()
}

// resolvedKey is a key package together with any tweak applied to it for
// this session, and the ciphersuite it was resolved against.
type resolvedKey struct {
	cs           *cryptosuite.Ciphersuite
	signingShare *big.Int
	groupKey     *cryptosuite.Point
	tweak        *cryptosuite.TweakResult // nil when untweaked
}

// resolveKeyPackage loads a node's key package for a group verifying key
// and applies the session's tweak rule (spec.md §4.5): a Tweakable curve
// always tweaks (an empty tweak_by still yields a non-zero tweak, since
// TweakPoint hashes the x-only group key together with the empty input);
// a plain curve only tweaks when the caller actually supplied a tweak_by.
// The signing share is returned uncorrected: Round2SignWithTweak applies
// the tweak's parity correction itself.
func resolveKeyPackage(
	self wire.NodeID,
	curveName wire.CurveName,
	pubkeyPackage wire.PublicKeyPackage,
	keyRepo dkg.KeyRepository,
	tweakBy *wire.TweakBy,
) (*resolvedKey, error) {
	cs, err := cryptosuite.ForCurve(curveName)
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}

	keyPackage, err := dkg.LoadKeyPackage(keyRepo, self, pubkeyPackage.VerifyingKey)
	if err != nil {
		return nil, err
	}

	shareBytes, err := hex.DecodeString(string(keyPackage.SigningShare))
	if err != nil {
		return nil, fmt.Errorf("signing: bad signing share: %w", err)
	}
	signingShare := new(big.Int).SetBytes(shareBytes)

	groupKeyBytes, err := hex.DecodeString(string(pubkeyPackage.VerifyingKey))
	if err != nil {
		return nil, fmt.Errorf("signing: bad verifying key: %w", err)
	}
	groupKey, err := cs.Curve().DeserializePoint(groupKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("signing: deserializing group key: %w", err)
	}

	rk := &resolvedKey{cs: cs, signingShare: signingShare, groupKey: groupKey}

	tweak, err := cryptosuite.ResolveGroupTweak(cs, groupKey, tweakBy)
	if err != nil {
		return nil, fmt.Errorf("signing: computing tweak: %w", err)
	}
	if tweak != nil {
		rk.tweak = tweak
		rk.groupKey = tweak.TweakedKey
	}

	return rk, nil
}

// Commitment runs round1_commit for a pending signature and stores the
// resulting nonce pair keyed by its own public commitment, grounded on
// zexfrost/node/sign.py's commitment function.
func Commitment(
	self wire.NodeID,
	curveName wire.CurveName,
	pubkeyPackage wire.PublicKeyPackage,
	keyRepo dkg.KeyRepository,
	nonceRepo NonceRepository,
	tweakBy *wire.TweakBy,
) (wire.Commitment, error) {
	rk, err := resolveKeyPackage(self, curveName, pubkeyPackage, keyRepo, tweakBy)
	if err != nil {
		return wire.Commitment{}, err
	}

	nonce, commitment, err := cryptosuite.Round1Commit(rk.cs, rk.signingShare)
	if err != nil {
		return wire.Commitment{}, fmt.Errorf("signing: round1 commit: %w", err)
	}

	nonceRepo.Set(commitment.Key(), nonce)
	return *commitment, nil
}
