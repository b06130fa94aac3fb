package cryptosuite

import (
	"fmt"
	"math/big"

	"filippo.io/edwards25519"
)

// ed25519Order is the prime order l of the edwards25519 group, named rather
// than grounded in the pack (SPEC_FULL.md §2): none of the retrieval pack's
// curve code touches an Edwards curve, so group arithmetic here comes from
// filippo.io/edwards25519 directly instead of being adapted from teacher
// code the way the secp256k1 variants are.
var ed25519Order, _ = new(big.Int).SetString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

// ed25519Curve implements Curve over filippo.io/edwards25519, representing
// points and scalars internally in that library's types and converting to
// the shared big.Int-based Point at the interface boundary so the rest of
// cryptosuite (Shamir sharing, FROST round math) stays curve-agnostic.
type ed25519Curve struct{}

func newEd25519Curve() *ed25519Curve { return &ed25519Curve{} }

func (c *ed25519Curve) Name() string    { return "ed25519" }
func (c *ed25519Curve) Order() *big.Int { return new(big.Int).Set(ed25519Order) }

func (c *ed25519Curve) Identity() *Point {
	return pointFromEdwards(edwards25519.NewIdentityPoint())
}

func scalarFromBigInt(s *big.Int) (*edwards25519.Scalar, error) {
	reduced := new(big.Int).Mod(s, ed25519Order)
	buf := make([]byte, 32)
	b := reduced.Bytes()
	for i := 0; i < len(b); i++ {
		buf[len(buf)-1-i] = b[len(b)-1-i]
	}
	sc := edwards25519.NewScalar()
	if _, err := sc.SetCanonicalBytes(buf); err != nil {
		return nil, fmt.Errorf("ed25519 scalar reduction: %w", err)
	}
	return sc, nil
}

func pointFromEdwards(p *edwards25519.Point) *Point {
	enc := p.Bytes()
	x := new(big.Int).SetBytes(reverse(enc))
	return &Point{X: x, Y: big.NewInt(1)} // Y unused; enc carries full state via X
}

func edwardsFromPoint(p *Point) (*edwards25519.Point, error) {
	if p.IsInfinity() {
		return edwards25519.NewIdentityPoint(), nil
	}
	buf := make([]byte, 32)
	b := p.X.Bytes()
	copy(buf[32-len(b):], b)
	ep := edwards25519.NewIdentityPoint()
	if _, err := ep.SetBytes(reverse(buf)); err != nil {
		return nil, fmt.Errorf("ed25519 point decode: %w", err)
	}
	return ep, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func (c *ed25519Curve) EcBaseMul(scalar *big.Int) *Point {
	sc, err := scalarFromBigInt(scalar)
	if err != nil {
		return c.Identity()
	}
	p := edwards25519.NewIdentityPoint().ScalarBaseMult(sc, nil)
	return pointFromEdwards(p)
}

func (c *ed25519Curve) EcMul(p *Point, scalar *big.Int) *Point {
	ep, err := edwardsFromPoint(p)
	if err != nil {
		return c.Identity()
	}
	sc, err := scalarFromBigInt(scalar)
	if err != nil {
		return c.Identity()
	}
	res := edwards25519.NewIdentityPoint().ScalarMult(sc, ep)
	return pointFromEdwards(res)
}

func (c *ed25519Curve) EcAdd(a, b *Point) *Point {
	ea, err := edwardsFromPoint(a)
	if err != nil {
		return c.Identity()
	}
	eb, err := edwardsFromPoint(b)
	if err != nil {
		return c.Identity()
	}
	res := edwards25519.NewIdentityPoint().Add(ea, eb)
	return pointFromEdwards(res)
}

func (c *ed25519Curve) EcSub(a, b *Point) *Point {
	ea, err := edwardsFromPoint(a)
	if err != nil {
		return c.Identity()
	}
	eb, err := edwardsFromPoint(b)
	if err != nil {
		return c.Identity()
	}
	res := edwards25519.NewIdentityPoint().Subtract(ea, eb)
	return pointFromEdwards(res)
}

func (c *ed25519Curve) IsPointOnCurve(p *Point) bool {
	_, err := edwardsFromPoint(p)
	return err == nil && !p.IsInfinity()
}

func (c *ed25519Curve) SerializePoint(p *Point) []byte {
	ep, err := edwardsFromPoint(p)
	if err != nil {
		return make([]byte, 32)
	}
	return ep.Bytes()
}

func (c *ed25519Curve) DeserializePoint(b []byte) (*Point, error) {
	ep := edwards25519.NewIdentityPoint()
	if _, err := ep.SetBytes(b); err != nil {
		return nil, err
	}
	return pointFromEdwards(ep), nil
}

func (c *ed25519Curve) SerializedPointLength() int { return 32 }
