// Command frostcoord drives one DKG session or one signing batch against a
// fixed party (spec.md §9: the coordinator is a caller-driven client, not a
// long-running service — it loads its party and (n, t, curve) parameters,
// runs one coordination pass, and exits), grounded on zexfrost/client/dkg.py
// and zexfrost/client/sa.py, neither of which is wrapped in a server of its
// own in the original either.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/coordinator"
	"github.com/threshold-frost/frostd/internal/node/httpapi"
	"github.com/threshold-frost/frostd/internal/transport"
	"github.com/threshold-frost/frostd/internal/wire"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("frostcoord: usage: frostcoord <dkg|sign>")
	}

	settings, err := config.LoadCoordinatorSettings()
	if err != nil {
		log.Fatalf("frostcoord: %v", err)
	}
	party, err := config.LoadPartyBook(settings.PartyFile)
	if err != nil {
		log.Fatalf("frostcoord: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "dkg":
		if err := runDKG(ctx, settings, party); err != nil {
			log.Fatalf("frostcoord: dkg: %v", err)
		}
	case "sign":
		if err := runSign(ctx, settings, party); err != nil {
			log.Fatalf("frostcoord: sign: %v", err)
		}
	default:
		log.Fatalf("frostcoord: unknown subcommand %q (want dkg or sign)", os.Args[1])
	}
}

// runDKG runs one DKG session across the whole party file and writes the
// resulting wire.PublicKeyPackage as JSON to stdout (spec.md §4.6, C7).
func runDKG(ctx context.Context, settings *config.CoordinatorSettings, party *config.PartyBook) error {
	client := transport.NewClient(transport.DefaultDKGTimeout)
	d := coordinator.NewDKG(settings.CurveName, party.All(), settings.MaxSigners, settings.MinSigners, client, party)

	pubkeyPackage, err := d.Run(ctx)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(pubkeyPackage)
}

// signBatchInput is the stdin shape for the sign subcommand: the group's
// public key package (produced by a prior `frostcoord dkg` run) plus the
// batch of pending signatures (spec.md §4.7, C8). Route defaults to
// httpapi.SignRoute, matching spec.md §9 Open Question (b)'s "caller
// supplies the route" rule while still giving frostnode's own default a
// home when the caller has no reason to override it.
type signBatchInput struct {
	PubkeyPackage wire.PublicKeyPackage                 `json:"pubkey_package"`
	Route         string                                 `json:"route,omitempty"`
	Signings      map[wire.SignatureID]signInputWire    `json:"signings"`
}

type signInputWire struct {
	Data    wire.SigningData `json:"data"`
	TweakBy *wire.TweakBy    `json:"tweak_by,omitempty"`
}

// runSign reads a signBatchInput JSON document from stdin and writes the
// resulting map of SignatureID to hex-encoded aggregated signature to
// stdout.
func runSign(ctx context.Context, settings *config.CoordinatorSettings, party *config.PartyBook) error {
	var in signBatchInput
	if err := json.NewDecoder(os.Stdin).Decode(&in); err != nil {
		return fmt.Errorf("decoding signing batch: %w", err)
	}
	if len(in.Signings) == 0 {
		return fmt.Errorf("signing batch has no entries")
	}

	route := in.Route
	if route == "" {
		route = httpapi.SignRoute
	}

	signings := make(map[wire.SignatureID]coordinator.SignInput, len(in.Signings))
	for id, entry := range in.Signings {
		signings[id] = coordinator.SignInput{Data: entry.Data, TweakBy: entry.TweakBy}
	}

	client := transport.NewClient(transport.DefaultSignTimeout)
	aggregator := coordinator.NewSigningAggregator(
		settings.CurveName, party, in.PubkeyPackage, settings.MinSigners, route, client,
		rand.New(rand.NewSource(randSeed())),
	)

	result, err := aggregator.Sign(ctx, signings)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(result)
}

// randSeed draws a seed from the OS CSPRNG-backed math/rand global source
// rather than a Date.now()-style wall-clock seed, so two processes started
// in the same instant don't draw identical weighted-selection sequences.
func randSeed() int64 {
	return rand.Int63()
}
