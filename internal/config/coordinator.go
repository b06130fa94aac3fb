package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/threshold-frost/frostd/internal/wire"
)

// CoordinatorSettings is the coordinator process's (n, t, curve) parameters,
// loaded from COORD__-prefixed environment variables alongside the party
// file (SPEC_FULL.md §1.2), mirroring LoadNodeSettings' hand-rolled parsing
// style for the same env-var-only contract reason: nothing in the pack
// fits an env-only struct-tag loader.
type CoordinatorSettings struct {
	CurveName  wire.CurveName
	MaxSigners int
	MinSigners int
	PartyFile  string
}

// LoadCoordinatorSettings reads COORD__CURVE_NAME, COORD__MAX_SIGNERS,
// COORD__MIN_SIGNERS and COORD__PARTY_FILE from the environment.
func LoadCoordinatorSettings() (*CoordinatorSettings, error) {
	curveName := wire.CurveName(os.Getenv("COORD__CURVE_NAME"))
	switch curveName {
	case wire.CurveSecp256k1, wire.CurveSecp256k1Tr, wire.CurveSecp256k1Evm, wire.CurveEd25519:
	default:
		return nil, fmt.Errorf("config: COORD__CURVE_NAME %q is not a supported curve", curveName)
	}

	maxSigners, err := parsePositiveInt("COORD__MAX_SIGNERS")
	if err != nil {
		return nil, err
	}
	minSigners, err := parsePositiveInt("COORD__MIN_SIGNERS")
	if err != nil {
		return nil, err
	}

	partyFile := os.Getenv("COORD__PARTY_FILE")
	if partyFile == "" {
		return nil, fmt.Errorf("config: COORD__PARTY_FILE is required")
	}

	return &CoordinatorSettings{
		CurveName:  curveName,
		MaxSigners: maxSigners,
		MinSigners: minSigners,
		PartyFile:  partyFile,
	}, nil
}

func parsePositiveInt(env string) (int, error) {
	raw := os.Getenv(env)
	if raw == "" {
		return 0, fmt.Errorf("config: %s is required", env)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", env, raw)
	}
	return n, nil
}
