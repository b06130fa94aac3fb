// Taproot-style key tweaking (spec.md §4.3/§9): Q = P + t*G. ComputeTweak
// serves the secp256k1_tr ciphersuite via the Tweakable capability
// interface; ComputeTweakPlain serves plain curves given a non-empty tweak_by.
// Grounded on threshold-network-roast-go/bip340.go's LiftX/even-Y handling,
// extended to the threshold setting: since the group secret is never
// reconstructed, the even-Y parity correction BIP-340 normally applies to a
// single secret key is instead applied identically by every signer to its
// own Shamir share, which is valid because negation is linear over Shamir
// sharing (-sum(shares_i) == sum(-share_i)).
package cryptosuite

import (
	"encoding/hex"
	"math/big"

	"github.com/threshold-frost/frostd/internal/wire"
)

// TweakResult carries everything a tweaked signing session needs: the
// tweaked group public key to sign against, the raw tweak scalar, and
// whether the original (untweaked) group key had odd Y and therefore
// requires every signer to negate its share before using it this session.
type TweakResult struct {
	TweakedKey  *Point
	TweakScalar *big.Int
	NegateShare bool
}

// ComputeTweak derives the tweaked group key for a given tweak_by value.
// Callers resolve curve.(Tweakable) first (spec.md §9 capability dispatch)
// and only call this for curves that support it.
func ComputeTweak(curve Tweakable, groupPublicKey *Point, tweakBy wire.TweakBy) (*TweakResult, error) {
	negate := groupPublicKey.Y.Bit(0) != 0
	base := groupPublicKey
	if negate {
		base = &Point{X: groupPublicKey.X, Y: new(big.Int).Sub(fieldOrderOf(curve), groupPublicKey.Y)}
	}

	tweakBytes, err := decodeHexOrRaw(string(tweakBy))
	if err != nil {
		return nil, err
	}

	tweaked, t, err := curve.TweakPoint(base, tweakBytes)
	if err != nil {
		return nil, err
	}

	return &TweakResult{TweakedKey: tweaked, TweakScalar: t, NegateShare: negate}, nil
}

// ComputeTweakPlain applies a raw additive tweak, Q = P + t*G, to a curve
// that does not implement Tweakable. Unlike ComputeTweak it performs no
// even-Y parity correction — BIP-341's parity rule is specific to
// x-only/Taproot encodings, and secp256k1_evm's plain (x,y) encoding has no
// such convention — so signers never need to negate their share for this
// path. Grounded on spec.md §4.5's commitment-operation rule that a plain
// curve with a non-empty tweak_by still applies a tweak.
func ComputeTweakPlain(curve Curve, groupPublicKey *Point, tweakBy wire.TweakBy) (*TweakResult, error) {
	tweakBytes, err := decodeHexOrRaw(string(tweakBy))
	if err != nil {
		return nil, err
	}
	t := new(big.Int).Mod(new(big.Int).SetBytes(tweakBytes), curve.Order())
	tweaked := curve.EcAdd(groupPublicKey, curve.EcBaseMul(t))
	return &TweakResult{TweakedKey: tweaked, TweakScalar: t, NegateShare: false}, nil
}

// ResolveGroupTweak applies spec.md §4.5's tweak rule to a bare group
// public key, shared by the node-side commitment/sign operations and the
// coordinator's aggregation step so both sides make the identical
// tweak-or-not decision: a Tweakable curve always tweaks (an empty tweakBy
// still goes through ComputeTweak); a plain curve only tweaks when tweakBy
// is non-empty. Returns (nil, nil) when no tweak applies.
func ResolveGroupTweak(cs *Ciphersuite, groupKey *Point, tweakBy *wire.TweakBy) (*TweakResult, error) {
	if tw, ok := cs.Curve().(Tweakable); ok {
		by := wire.TweakBy("")
		if tweakBy != nil {
			by = *tweakBy
		}
		return ComputeTweak(tw, groupKey, by)
	}
	if tweakBy != nil && *tweakBy != "" {
		return ComputeTweakPlain(cs.Curve(), groupKey, *tweakBy)
	}
	return nil, nil
}

func fieldOrderOf(curve Tweakable) *big.Int {
	if c, ok := curve.(*secp256k1TrCurve); ok {
		return c.curve.P
	}
	return curve.Order()
}

func decodeHexOrRaw(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return []byte(s), nil
	}
	return b, nil
}

// TweakSigningShare applies this session's parity correction to a signer's
// Shamir share before it is used in round2_sign_with_tweak.
func TweakSigningShare(curve Curve, share *big.Int, tweak *TweakResult) *big.Int {
	if !tweak.NegateShare {
		return new(big.Int).Set(share)
	}
	return new(big.Int).Mod(new(big.Int).Sub(curve.Order(), share), curve.Order())
}

// Round2SignWithTweak is round2_sign against a tweaked group key: the
// signer's share is parity-corrected and the challenge is computed against
// the tweaked key rather than the raw DKG output.
func Round2SignWithTweak(
	cs *Ciphersuite,
	self wire.NodeID,
	signingShare *big.Int,
	tweak *TweakResult,
	message []byte,
	nonce *SigningNonce,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
) (*big.Int, error) {
	corrected := TweakSigningShare(cs.Curve(), signingShare, tweak)
	return Round2Sign(cs, self, corrected, tweak.TweakedKey, message, nonce, commitments, coords)
}

// AggregateWithTweak finishes a tweaked signature: every signer already
// used the tweaked group key as the challenge's public key component, so
// the coordinator only needs to add the tweak's contribution, c*t, once to
// the summed shares.
func AggregateWithTweak(
	cs *Ciphersuite,
	tweak *TweakResult,
	message []byte,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
	shares map[wire.NodeID]*big.Int,
) (*GroupSignature, error) {
	sig, err := Aggregate(cs, tweak.TweakedKey, message, commitments, coords, shares)
	if err != nil {
		return nil, err
	}
	challenge := computeChallenge(cs, tweak.TweakedKey, sig.R, message)
	curve := cs.Curve()
	correction := new(big.Int).Mod(new(big.Int).Mul(challenge, tweak.TweakScalar), curve.Order())
	sig.Z = new(big.Int).Mod(new(big.Int).Add(sig.Z, correction), curve.Order())
	return sig, nil
}
