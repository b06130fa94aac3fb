package cryptosuite

import (
	"fmt"
	"math/big"

	"github.com/threshold-frost/frostd/internal/wire"
)

// Ciphersuite binds a Curve and a Hashing implementation, generalizing
// threshold-network-roast-go/frost/ciphersuite.go's Ciphersuite interface
// (which embedded Hashing directly) into a concrete struct so the four
// closed-set curve names can share Hashing implementations freely.
type Ciphersuite struct {
	curve   Curve
	hashing Hashing
}

func (c *Ciphersuite) Curve() Curve { return c.curve }

func (c *Ciphersuite) H1(m []byte) *big.Int              { return c.hashing.H1(m) }
func (c *Ciphersuite) H2(ms ...[]byte) *big.Int           { return c.hashing.H2(ms...) }
func (c *Ciphersuite) H3(m []byte, secret []byte) *big.Int { return c.hashing.H3(m, secret) }
func (c *Ciphersuite) H4(m []byte) []byte                 { return c.hashing.H4(m) }
func (c *Ciphersuite) H5(m []byte) []byte                 { return c.hashing.H5(m) }

// TweakCurve returns the curve as a Tweakable and true if this ciphersuite's
// curve supports key tweaking (spec.md §9 capability dispatch note).
func (c *Ciphersuite) TweakCurve() (Tweakable, bool) {
	t, ok := c.curve.(Tweakable)
	return t, ok
}

// ForCurve resolves a wire.CurveName to its Ciphersuite, the single
// registry every package in frostd goes through rather than constructing
// curve/hashing pairs ad hoc.
func ForCurve(name wire.CurveName) (*Ciphersuite, error) {
	switch name {
	case wire.CurveSecp256k1:
		curve := newSecp256k1Curve("secp256k1")
		return &Ciphersuite{
			curve:   curve,
			hashing: newBIP340Hashing("FROST-secp256k1-SHA256-v11", curve.Order()),
		}, nil
	case wire.CurveSecp256k1Tr:
		curve := newSecp256k1TrCurve()
		return &Ciphersuite{
			curve:   curve,
			hashing: newBIP340Hashing("FROST-secp256k1-SHA256-TR-v11", curve.Order()),
		}, nil
	case wire.CurveSecp256k1Evm:
		curve := newSecp256k1EvmCurve()
		base := newBIP340Hashing("FROST-secp256k1-KECCAK256-EVM-v11", curve.Order())
		return &Ciphersuite{
			curve:   curve,
			hashing: &evmHashing{bip340Hashing: base},
		}, nil
	case wire.CurveEd25519:
		curve := newEd25519Curve()
		return &Ciphersuite{
			curve:   curve,
			hashing: newBIP340Hashing("FROST-ED25519-SHA512-v11", curve.Order()),
		}, nil
	default:
		return nil, fmt.Errorf("cryptosuite: unsupported curve name %q", name)
	}
}
