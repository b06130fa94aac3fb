// Package config loads node identity and party-book configuration,
// grounded on zexfrost/node/settings.py's NodeSettings (original_source) —
// env-prefixed settings (NODE__ID, NODE__CURVE_NAME, NODE__PRIVATE_KEY) —
// translated from pydantic-settings into explicit struct construction, per
// spec.md §9's "no hidden singletons" design note: settings are loaded
// once into a struct and threaded through constructors, never read from a
// global at point of use.
package config

import (
	"fmt"
	"os"

	"github.com/threshold-frost/frostd/internal/wire"
)

// NodeSettings is this process's identity, loaded from NODE__-prefixed
// environment variables (spec.md §6).
type NodeSettings struct {
	ID         wire.NodeID
	CurveName  wire.CurveName
	PrivateKey wire.HexStr
}

// LoadNodeSettings reads NODE__ID, NODE__CURVE_NAME and NODE__PRIVATE_KEY
// from the environment. There is no struct-tag env loader anywhere in the
// retrieval pack that fits an env-var-only contract (SPEC_FULL.md §1.2), so
// this parses by hand the same direct way zexfrost.node.settings does.
func LoadNodeSettings() (*NodeSettings, error) {
	id := os.Getenv("NODE__ID")
	if id == "" {
		return nil, fmt.Errorf("config: NODE__ID is required")
	}

	curveName := wire.CurveName(os.Getenv("NODE__CURVE_NAME"))
	switch curveName {
	case wire.CurveSecp256k1, wire.CurveSecp256k1Tr, wire.CurveSecp256k1Evm, wire.CurveEd25519:
	default:
		return nil, fmt.Errorf("config: NODE__CURVE_NAME %q is not a supported curve", curveName)
	}

	privateKey := os.Getenv("NODE__PRIVATE_KEY")
	if privateKey == "" {
		return nil, fmt.Errorf("config: NODE__PRIVATE_KEY is required")
	}

	return &NodeSettings{
		ID:         wire.NodeID(id),
		CurveName:  curveName,
		PrivateKey: wire.HexStr(privateKey),
	}, nil
}
