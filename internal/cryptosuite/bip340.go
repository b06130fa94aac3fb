// Single-key BIP-340 Schnorr sign/verify, used for nodes' long-term
// identity keys (signing DKG broadcasts, spec.md §4.4) as distinct from the
// threshold FROST signatures the rest of the package produces. Grounded on
// threshold-network-roast-go/bip340.go's BIP340Sign/BIP340Verify/LiftX.
package cryptosuite

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Signature is a BIP-340 Schnorr signature (R, s), both 32-byte big-endian
// encodings.
type Signature struct {
	R [32]byte
	S [32]byte
}

func cryptoRandRead(b []byte) (int, error) {
	return rand.Read(b)
}

// liftXBytes returns p's 32-byte big-endian x-only encoding, the input
// TweakPoint hashes. It does not look at Y; BIP-340 verification recovers
// the even-Y point with liftX below, grounded on
// threshold-network-roast-go/bip340.go's LiftX.
func liftXBytes(curve *secp256k1Curve, p *Point) ([]byte, error) {
	if p.IsInfinity() {
		return nil, fmt.Errorf("liftx: point at infinity")
	}
	xb := make([]byte, 32)
	p.X.FillBytes(xb)
	return xb, nil
}

func liftX(curve *secp256k1Curve, x *big.Int) (*Point, error) {
	p := curve.curve.P
	if x.Cmp(p) >= 0 {
		return nil, fmt.Errorf("liftx: x exceeds field size")
	}
	c := new(big.Int).Exp(x, big.NewInt(3), p)
	c.Add(c, big.NewInt(7))
	c.Mod(c, p)

	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Div(exp, big.NewInt(4))
	y := new(big.Int).Exp(c, exp, p)

	y2 := new(big.Int).Exp(y, big.NewInt(2), p)
	if c.Cmp(y2) != 0 {
		return nil, fmt.Errorf("liftx: no curve point for given x")
	}
	if y.Bit(0) != 0 {
		y = new(big.Int).Sub(p, y)
	}
	return &Point{X: x, Y: y}, nil
}

func hasEvenY(p *Point) bool { return p.Y.Bit(0) == 0 }

// SingleSign produces a BIP-340 signature over msg with secret key sk, used
// for a node's long-term identity signatures over DKG round broadcasts.
// Only defined for curves with a BIP-340 x-only representation: secp256k1
// and secp256k1_tr; secp256k1_evm and ed25519 identity signatures are out
// of scope (spec.md only requires signing the DKG broadcast, which always
// flows over one of the two secp256k1 curve variants in practice).
func SingleSign(cs *Ciphersuite, sk *big.Int, msg []byte) (*Signature, error) {
	var curve *secp256k1Curve
	ok := false
	switch c := cs.Curve().(type) {
	case *secp256k1Curve:
		curve = c
		ok = true
	case *secp256k1TrCurve:
		curve = c.secp256k1Curve
		ok = true
	}
	if !ok {
		return nil, fmt.Errorf("single_sign: unsupported curve %s", cs.Curve().Name())
	}

	d0 := new(big.Int).Mod(sk, curve.Order())
	if d0.Sign() == 0 {
		return nil, fmt.Errorf("single_sign: secret key is zero")
	}

	P := curve.EcBaseMul(d0)
	d := new(big.Int)
	if hasEvenY(P) {
		d.Set(d0)
	} else {
		d.Sub(curve.Order(), d0)
	}

	aux := make([]byte, 32)
	if _, err := rand.Read(aux); err != nil {
		return nil, err
	}
	auxHash := taggedHash("BIP0340/aux", aux)
	db := make([]byte, 32)
	d.FillBytes(db)
	t := xorBytes(db, auxHash)

	pb := make([]byte, 32)
	P.X.FillBytes(pb)

	nonceInput := concat(t, pb, msg)
	randBytes := taggedHash("BIP0340/nonce", nonceInput)
	k0 := new(big.Int).Mod(new(big.Int).SetBytes(randBytes), curve.Order())
	if k0.Sign() == 0 {
		return nil, fmt.Errorf("single_sign: nonce is zero")
	}

	R := curve.EcBaseMul(k0)
	k := new(big.Int)
	if hasEvenY(R) {
		k.Set(k0)
	} else {
		k.Sub(curve.Order(), k0)
	}

	rb := make([]byte, 32)
	R.X.FillBytes(rb)
	eHash := taggedHash("BIP0340/challenge", concat(rb, pb, msg))
	e := new(big.Int).Mod(new(big.Int).SetBytes(eHash), curve.Order())

	s := new(big.Int).Add(k, new(big.Int).Mul(e, d))
	s.Mod(s, curve.Order())

	var sig Signature
	copy(sig.R[:], rb)
	s.FillBytes(sig.S[:])
	return &sig, nil
}

// SingleVerify checks a BIP-340 signature against an x-only public key.
func SingleVerify(cs *Ciphersuite, pubKeyX *big.Int, msg []byte, sig *Signature) bool {
	var curve *secp256k1Curve
	switch c := cs.Curve().(type) {
	case *secp256k1Curve:
		curve = c
	case *secp256k1TrCurve:
		curve = c.secp256k1Curve
	default:
		return false
	}

	P, err := liftX(curve, pubKeyX)
	if err != nil {
		return false
	}

	r := new(big.Int).SetBytes(sig.R[:])
	if r.Cmp(curve.curve.P) >= 0 {
		return false
	}
	s := new(big.Int).SetBytes(sig.S[:])
	if s.Cmp(curve.Order()) >= 0 {
		return false
	}

	pb := make([]byte, 32)
	P.X.FillBytes(pb)
	eHash := taggedHash("BIP0340/challenge", concat(sig.R[:], pb, msg))
	e := new(big.Int).Mod(new(big.Int).SetBytes(eHash), curve.Order())

	sG := curve.EcBaseMul(s)
	eP := curve.EcMul(P, e)
	R := curve.EcSub(sG, eP)

	if R.IsInfinity() {
		return false
	}
	if !hasEvenY(R) {
		return false
	}
	return R.X.Cmp(r) == 0
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
