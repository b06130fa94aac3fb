package cryptosuite

import (
	"crypto/rand"
	"math/big"
)

// genPoly creates a polynomial of degree t-1 over the curve's scalar field
// with a fixed constant term (the secret), grounded on
// threshold-network-roast-go/poly.go's GenPoly.
func genPoly(curve Curve, secret *big.Int, t int) []*big.Int {
	coeffs := make([]*big.Int, t)
	coeffs[0] = new(big.Int).Mod(secret, curve.Order())
	for i := 1; i < t; i++ {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			panic(err)
		}
		coeffs[i] = new(big.Int).Mod(new(big.Int).SetBytes(b), curve.Order())
	}
	return coeffs
}

// calculatePoly evaluates a polynomial at x modulo the curve order,
// grounded on threshold-network-roast-go/poly.go's CalculatePoly.
func calculatePoly(curve Curve, coeffs []*big.Int, x int64) *big.Int {
	res := new(big.Int)
	bigX := big.NewInt(x)
	for i, coeff := range coeffs {
		term := new(big.Int).Exp(bigX, big.NewInt(int64(i)), curve.Order())
		term.Mul(term, coeff)
		res.Add(res, term)
	}
	return res.Mod(res, curve.Order())
}

// deriveInterpolatingValue implements FROST's Lagrange-coefficient helper,
// generalized off threshold-network-roast-go/frost/participant.go's
// deriveInterpolatingValue from uint64 signer indices onto arbitrary int64
// coordinates (frostd derives each node's x-coordinate from its NodeID by
// lexicographically sorting the full party and taking each node's 1-based
// position, see identifiers.go's NodeCoordinates).
func deriveInterpolatingValue(curve Curve, xi int64, xs []int64) *big.Int {
	order := curve.Order()
	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, xj := range xs {
		if xj == xi {
			continue
		}
		num.Mul(num, big.NewInt(xj))
		num.Mod(num, order)
		den.Mul(den, big.NewInt(xj-xi))
		den.Mod(den, order)
	}
	denInv := new(big.Int).ModInverse(den, order)
	if denInv == nil {
		denInv = big.NewInt(0)
	}
	res := new(big.Int).Mul(num, denInv)
	return res.Mod(res, order)
}
