// The two-round FROST threshold-signing protocol: round1_commit (nonce
// generation), round2_sign (signature share generation), aggregate
// (signature share aggregation) and verify_group_signature. Generalized
// from threshold-network-roast-go/frost/{participant.go,signer.go,
// coordinator.go}, replacing uint64 signerIndex with wire.NodeID identifiers
// resolved to Shamir x-coordinates via NodeCoordinates.
package cryptosuite

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"

	"github.com/threshold-frost/frostd/internal/wire"
)

// SigningNonce is the secret nonce pair produced by Round1Commit; it must
// never be reused and must be discarded as soon as Round2Sign (or an abort)
// consumes it (spec.md §9 atomic-pop design note; enforced by
// internal/signing's nonce repository, not by this package).
type SigningNonce struct {
	Hiding  *big.Int
	Binding *big.Int
}

// Round1Commit implements FROST's commit() function: generate a hiding and
// a binding nonce and their public commitments.
func Round1Commit(cs *Ciphersuite, signingShare *big.Int) (*SigningNonce, *wire.Commitment, error) {
	curve := cs.Curve()

	hn, err := generateNonce(cs, signingShare)
	if err != nil {
		return nil, nil, fmt.Errorf("round1_commit: hiding nonce: %w", err)
	}
	bn, err := generateNonce(cs, signingShare)
	if err != nil {
		return nil, nil, fmt.Errorf("round1_commit: binding nonce: %w", err)
	}

	hnc := curve.EcBaseMul(hn)
	bnc := curve.EcBaseMul(bn)

	return &SigningNonce{Hiding: hn, Binding: bn}, &wire.Commitment{
			Hiding:  wire.HexStr(hex.EncodeToString(curve.SerializePoint(hnc))),
			Binding: wire.HexStr(hex.EncodeToString(curve.SerializePoint(bnc))),
		}, nil
}

func generateNonce(cs *Ciphersuite, secret *big.Int) (*big.Int, error) {
	b := make([]byte, 32)
	if _, err := cryptoRandRead(b); err != nil {
		return nil, err
	}
	secretBytes := secret.Bytes()
	return cs.H3(b, secretBytes), nil
}

// commitmentEntry pairs a NodeID's x-coordinate with its decoded commitment
// points, the internal, sorted-by-x representation FROST's binding-factor
// and group-commitment computations require.
type commitmentEntry struct {
	x       int64
	hiding  *Point
	binding *Point
}

func decodeCommitments(
	cs *Ciphersuite,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
) ([]commitmentEntry, error) {
	curve := cs.Curve()
	entries := make([]commitmentEntry, 0, len(commitments))
	for id, c := range commitments {
		hb, err := hex.DecodeString(string(c.Hiding))
		if err != nil {
			return nil, fmt.Errorf("commitment from %s: bad hiding hex: %w", id, err)
		}
		bb, err := hex.DecodeString(string(c.Binding))
		if err != nil {
			return nil, fmt.Errorf("commitment from %s: bad binding hex: %w", id, err)
		}
		hp, err := curve.DeserializePoint(hb)
		if err != nil {
			return nil, fmt.Errorf("commitment from %s: bad hiding point: %w", id, err)
		}
		bp, err := curve.DeserializePoint(bb)
		if err != nil {
			return nil, fmt.Errorf("commitment from %s: bad binding point: %w", id, err)
		}
		if !curve.IsPointOnCurve(hp) || !curve.IsPointOnCurve(bp) {
			return nil, fmt.Errorf("commitment from %s: point not on curve", id)
		}
		entries = append(entries, commitmentEntry{x: coords[id], hiding: hp, binding: bp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].x < entries[j].x })
	return entries, nil
}

func computeBindingFactors(
	cs *Ciphersuite,
	groupPublicKey *Point,
	message []byte,
	entries []commitmentEntry,
) map[int64]*big.Int {
	curve := cs.Curve()
	groupKeyEnc := curve.SerializePoint(groupPublicKey)
	msgHash := cs.H4(message)
	encodedCommitment := encodeGroupCommitment(curve, entries)
	commitmentHash := cs.H5(encodedCommitment)
	prefix := concat(groupKeyEnc, msgHash, commitmentHash)

	out := make(map[int64]*big.Int, len(entries))
	for _, e := range entries {
		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, uint64(e.x))
		out[e.x] = cs.H1(concat(prefix, idBytes))
	}
	return out
}

func encodeGroupCommitment(curve Curve, entries []commitmentEntry) []byte {
	pointLen := curve.SerializedPointLength()
	b := make([]byte, 0, (8+2*pointLen)*len(entries))
	for _, e := range entries {
		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, uint64(e.x))
		b = append(b, idBytes...)
		b = append(b, curve.SerializePoint(e.hiding)...)
		b = append(b, curve.SerializePoint(e.binding)...)
	}
	return b
}

func computeGroupCommitment(curve Curve, entries []commitmentEntry, bindingFactors map[int64]*big.Int) *Point {
	groupCommitment := curve.Identity()
	for _, e := range entries {
		bf := bindingFactors[e.x]
		bindingTerm := curve.EcMul(e.binding, bf)
		groupCommitment = curve.EcAdd(groupCommitment, curve.EcAdd(e.hiding, bindingTerm))
	}
	return groupCommitment
}

func computeChallenge(cs *Ciphersuite, groupPublicKey, groupCommitment *Point, message []byte) *big.Int {
	curve := cs.Curve()
	return cs.H2(curve.SerializePoint(groupCommitment), curve.SerializePoint(groupPublicKey), message)
}

// Round2Sign implements FROST's sign() function, producing this signer's
// signature share z_i.
func Round2Sign(
	cs *Ciphersuite,
	self wire.NodeID,
	signingShare *big.Int,
	groupPublicKey *Point,
	message []byte,
	nonce *SigningNonce,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
) (*big.Int, error) {
	entries, err := decodeCommitments(cs, commitments, coords)
	if err != nil {
		return nil, fmt.Errorf("round2_sign: %w", err)
	}

	selfX, ok := coords[self]
	if !ok {
		return nil, fmt.Errorf("round2_sign: self %s not among commitment participants", self)
	}
	found := false
	xs := make([]int64, len(entries))
	for i, e := range entries {
		xs[i] = e.x
		if e.x == selfX {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("round2_sign: own commitment missing from set")
	}

	bindingFactors := computeBindingFactors(cs, groupPublicKey, message, entries)
	bindingFactor := bindingFactors[selfX]
	groupCommitment := computeGroupCommitment(cs.Curve(), entries, bindingFactors)
	lambda := deriveInterpolatingValue(cs.Curve(), selfX, xs)
	challenge := computeChallenge(cs, groupPublicKey, groupCommitment, message)

	order := cs.Curve().Order()
	bnbf := new(big.Int).Mod(new(big.Int).Mul(nonce.Binding, bindingFactor), order)
	lski := new(big.Int).Mod(new(big.Int).Mul(lambda, signingShare), order)
	lskic := new(big.Int).Mod(new(big.Int).Mul(lski, challenge), order)

	share := new(big.Int).Add(nonce.Hiding, bnbf)
	share.Add(share, lskic)
	share.Mod(share, order)

	return share, nil
}

// GroupSignature is a threshold Schnorr signature (R, z): a curve point and a
// scalar, distinct from the single-key Signature type in bip340.go.
type GroupSignature struct {
	R *Point
	Z *big.Int
}

// Aggregate implements FROST's Signature Share Aggregation, combining every
// signer's share into the final group signature. It does not check the
// individual shares: a single bad share yields a signature that fails
// VerifyGroupSignature. VerifyShare checks one share on its own.
func Aggregate(
	cs *Ciphersuite,
	groupPublicKey *Point,
	message []byte,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
	shares map[wire.NodeID]*big.Int,
) (*GroupSignature, error) {
	entries, err := decodeCommitments(cs, commitments, coords)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	bindingFactors := computeBindingFactors(cs, groupPublicKey, message, entries)
	groupCommitment := computeGroupCommitment(cs.Curve(), entries, bindingFactors)

	order := cs.Curve().Order()
	z := big.NewInt(0)
	for _, share := range shares {
		z.Add(z, share)
		z.Mod(z, order)
	}

	return &GroupSignature{R: groupCommitment, Z: z}, nil
}

// VerifyShare checks a single signer's signature share against its public
// verifying share, letting the coordinator isolate a malicious signer
// before aggregation rather than discover an invalid group signature after
// the fact.
func VerifyShare(
	cs *Ciphersuite,
	signerID wire.NodeID,
	verifyingShare *Point,
	groupPublicKey *Point,
	message []byte,
	commitments map[wire.NodeID]wire.Commitment,
	coords map[wire.NodeID]int64,
	share *big.Int,
) (bool, error) {
	entries, err := decodeCommitments(cs, commitments, coords)
	if err != nil {
		return false, fmt.Errorf("verify_share: %w", err)
	}
	selfX, ok := coords[signerID]
	if !ok {
		return false, fmt.Errorf("verify_share: unknown signer %s", signerID)
	}

	var myCommitment *commitmentEntry
	xs := make([]int64, len(entries))
	for i := range entries {
		xs[i] = entries[i].x
		if entries[i].x == selfX {
			myCommitment = &entries[i]
		}
	}
	if myCommitment == nil {
		return false, fmt.Errorf("verify_share: signer's own commitment missing")
	}

	curve := cs.Curve()
	bindingFactors := computeBindingFactors(cs, groupPublicKey, message, entries)
	bindingFactor := bindingFactors[selfX]
	groupCommitment := computeGroupCommitment(curve, entries, bindingFactors)
	lambda := deriveInterpolatingValue(curve, selfX, xs)
	challenge := computeChallenge(cs, groupPublicKey, groupCommitment, message)

	lhs := curve.EcBaseMul(share)

	bindingTerm := curve.EcMul(myCommitment.binding, bindingFactor)
	commShare := curve.EcAdd(myCommitment.hiding, bindingTerm)
	lambdaChallenge := new(big.Int).Mod(new(big.Int).Mul(lambda, challenge), curve.Order())
	pubTerm := curve.EcMul(verifyingShare, lambdaChallenge)
	rhs := curve.EcAdd(commShare, pubTerm)

	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0, nil
}

// VerifyGroupSignature checks a finished threshold signature against the
// group's public verifying key.
func VerifyGroupSignature(cs *Ciphersuite, groupPublicKey *Point, message []byte, sig *GroupSignature) bool {
	curve := cs.Curve()
	challenge := computeChallenge(cs, groupPublicKey, sig.R, message)

	lhs := curve.EcBaseMul(sig.Z)
	rhs := curve.EcAdd(sig.R, curve.EcMul(groupPublicKey, challenge))

	return lhs.X.Cmp(rhs.X) == 0 && lhs.Y.Cmp(rhs.Y) == 0
}
