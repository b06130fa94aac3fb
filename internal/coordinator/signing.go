package coordinator

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/transport"
	"github.com/threshold-frost/frostd/internal/wire"
)

// SignInput is one pending signature's request data, the coordinator-side
// counterpart of wire.SigningEntry before the commitment phase has run
// (spec.md §4.7: `signings: map<SignatureID, {data, message, tweak_by?}>`).
type SignInput struct {
	Data    wire.SigningData
	TweakBy *wire.TweakBy
}

// SigningAggregator drives one signing batch across a weighted-random
// subset of the party (C8 in SPEC_FULL.md §4), grounded on
// zexfrost/client/sa.py's SA class. Unlike the original, party selection
// is part of the aggregator itself (spec.md §4.7 step 1), not performed by
// the caller.
type SigningAggregator struct {
	Curve         wire.CurveName
	PartyBook     *config.PartyBook
	PubkeyPackage wire.PublicKeyPackage
	MinSigners    int
	SigningRoute  string // spec.md §9 Open Question (b): caller-supplied, not fixed.

	client *transport.Client
	rng    *rand.Rand
}

// NewSigningAggregator constructs a SigningAggregator. rng is exposed so
// tests can inject a seeded source and get a reproducible signer selection.
func NewSigningAggregator(
	curve wire.CurveName,
	partyBook *config.PartyBook,
	pubkeyPackage wire.PublicKeyPackage,
	minSigners int,
	route string,
	client *transport.Client,
	rng *rand.Rand,
) *SigningAggregator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &SigningAggregator{
		Curve: curve, PartyBook: partyBook, PubkeyPackage: pubkeyPackage,
		MinSigners: minSigners, SigningRoute: route, client: client, rng: rng,
	}
}

// Sign runs the full commitment -> sign -> aggregate -> verify pipeline
// for a batch of signatures against the same group key, grounded on
// zexfrost/client/sa.py's `sign` (generalized from one signature to a
// batch, matching spec.md §4.7's `sign(route, signings)` API).
func (sa *SigningAggregator) Sign(ctx context.Context, signings map[wire.SignatureID]SignInput) (map[wire.SignatureID]wire.HexStr, error) {
	signers, err := SelectSigners(sa.PartyBook, sa.MinSigners, sa.rng)
	if err != nil {
		return nil, fmt.Errorf("coordinator: sign: %w", err)
	}

	commitments, err := sa.commitmentPhase(ctx, signers, signings)
	if err != nil {
		return nil, err
	}

	shares, err := sa.signPhase(ctx, signers, signings, commitments)
	if err != nil {
		return nil, err
	}

	return sa.aggregateAndVerify(signings, commitments, shares)
}

// commitmentPhase fans out POST /sign/commitment for every SignatureID to
// every selected signer. A per-node failure is captured per SignatureID;
// the phase only fails for a SignatureID if fewer than MinSigners nodes
// responded (spec.md §4.7 step 2).
func (sa *SigningAggregator) commitmentPhase(
	ctx context.Context, signers []wire.Node, signings map[wire.SignatureID]SignInput,
) (map[wire.SignatureID]map[wire.NodeID]wire.Commitment, error) {
	type perNode struct {
		id     wire.NodeID
		commit wire.Commitment
		err    error
	}

	out := make(map[wire.SignatureID]map[wire.NodeID]wire.Commitment, len(signings))
	for sigID, input := range signings {
		ch := make(chan perNode, len(signers))
		for _, n := range signers {
			go func(n wire.Node) {
				req := wire.CommitmentRequest{PubkeyPackage: sa.PubkeyPackage, Curve: sa.Curve, TweakBy: input.TweakBy}
				var resp wire.Commitment
				res, err := sa.client.PostJSON(ctx, n, n.URL()+"/sign/commitment", req, &resp)
				UpdateWeight(sa.PartyBook, n.ID, res)
				ch <- perNode{id: n.ID, commit: resp, err: err}
			}(n)
		}

		collected := make(map[wire.NodeID]wire.Commitment, len(signers))
		failures := make(map[wire.NodeID]error)
		for range signers {
			r := <-ch
			if r.err != nil {
				failures[r.id] = r.err
				continue
			}
			collected[r.id] = r.commit
		}

		if len(collected) < sa.MinSigners {
			return nil, frosterr.NewCommitmentGroupError(sigID, failures)
		}
		out[sigID] = collected
	}
	return out, nil
}

// signPhase builds one SignRequest per signer containing every
// SignatureID's data/commitments/tweak, fans it out, and aggregates
// per-node, per-signature failures into a SignatureGroupError. Every
// requested SignatureID MUST succeed on every signer or the whole call
// fails (spec.md §4.7 step 3, §7).
func (sa *SigningAggregator) signPhase(
	ctx context.Context,
	signers []wire.Node,
	signings map[wire.SignatureID]SignInput,
	commitments map[wire.SignatureID]map[wire.NodeID]wire.Commitment,
) (map[wire.SignatureID]map[wire.NodeID]wire.SharePackage, error) {
	signingsData := make(map[wire.SignatureID]wire.SigningEntry, len(signings))
	for sigID, input := range signings {
		signingsData[sigID] = wire.SigningEntry{
			Data:        input.Data,
			Commitments: commitments[sigID],
			TweakBy:     input.TweakBy,
		}
	}
	req := wire.SignRequest{PubkeyPackage: sa.PubkeyPackage, Curve: sa.Curve, SigningsData: signingsData}

	type perNode struct {
		id    wire.NodeID
		resp  wire.SignResponse
		err   error
	}
	ch := make(chan perNode, len(signers))
	for _, n := range signers {
		go func(n wire.Node) {
			var resp wire.SignResponse
			res, err := sa.client.PostJSON(ctx, n, n.URL()+sa.SigningRoute, req, &resp)
			UpdateWeight(sa.PartyBook, n.ID, res)
			ch <- perNode{id: n.ID, resp: resp, err: err}
		}(n)
	}

	shares := make(map[wire.SignatureID]map[wire.NodeID]wire.SharePackage, len(signings))
	for sigID := range signings {
		shares[sigID] = make(map[wire.NodeID]wire.SharePackage, len(signers))
	}

	failures := make(map[wire.NodeID]map[wire.SignatureID]error)
	for range signers {
		r := <-ch
		if r.err != nil {
			perSig := make(map[wire.SignatureID]error, len(signings))
			for sigID := range signings {
				perSig[sigID] = r.err
			}
			failures[r.id] = perSig
			continue
		}
		for sigID := range signings {
			sharePkg, ok := r.resp[sigID]
			if !ok {
				if failures[r.id] == nil {
					failures[r.id] = make(map[wire.SignatureID]error)
				}
				failures[r.id][sigID] = fmt.Errorf("coordinator: node %s: no share for signature %s", r.id, sigID)
				continue
			}
			shares[sigID][r.id] = sharePkg
		}
	}

	if len(failures) > 0 {
		return nil, frosterr.NewSignatureGroupError(failures)
	}
	return shares, nil
}

func (sa *SigningAggregator) aggregateAndVerify(
	signings map[wire.SignatureID]SignInput,
	commitments map[wire.SignatureID]map[wire.NodeID]wire.Commitment,
	shares map[wire.SignatureID]map[wire.NodeID]wire.SharePackage,
) (map[wire.SignatureID]wire.HexStr, error) {
	cs, err := cryptosuite.ForCurve(sa.Curve)
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	groupKeyBytes, err := hex.DecodeString(string(sa.PubkeyPackage.VerifyingKey))
	if err != nil {
		return nil, fmt.Errorf("coordinator: bad verifying key: %w", err)
	}
	groupKey, err := cs.Curve().DeserializePoint(groupKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("coordinator: deserializing group key: %w", err)
	}

	coords := cryptosuite.NodeCoordinates(nodeIDsOf(sa.PubkeyPackage))

	out := make(map[wire.SignatureID]wire.HexStr, len(signings))
	for sigID, input := range signings {
		message, err := hex.DecodeString(string(input.Data.Message))
		if err != nil {
			return nil, fmt.Errorf("coordinator: signature %s: bad message: %w", sigID, err)
		}

		shareValues := make(map[wire.NodeID]*big.Int, len(shares[sigID]))
		for id, sharePkg := range shares[sigID] {
			b, err := hex.DecodeString(string(sharePkg.Share))
			if err != nil {
				return nil, fmt.Errorf("coordinator: signature %s: bad share from %s: %w", sigID, id, err)
			}
			shareValues[id] = new(big.Int).SetBytes(b)
		}

		tweak, err := cryptosuite.ResolveGroupTweak(cs, groupKey, input.TweakBy)
		if err != nil {
			return nil, fmt.Errorf("coordinator: signature %s: computing tweak: %w", sigID, err)
		}

		var sig *cryptosuite.GroupSignature
		var verifyKey *cryptosuite.Point
		if tweak != nil {
			sig, err = cryptosuite.AggregateWithTweak(cs, tweak, message, commitments[sigID], coords, shareValues)
			verifyKey = tweak.TweakedKey
		} else {
			sig, err = cryptosuite.Aggregate(cs, groupKey, message, commitments[sigID], coords, shareValues)
			verifyKey = groupKey
		}
		if err != nil {
			return nil, fmt.Errorf("coordinator: signature %s: aggregate: %w", sigID, err)
		}

		if !cryptosuite.VerifyGroupSignature(cs, verifyKey, message, sig) {
			return nil, fmt.Errorf("coordinator: signature %s: aggregated signature failed verification", sigID)
		}

		out[sigID] = wire.HexStr(hex.EncodeToString(append(sig.R.X.Bytes(), sig.Z.Bytes()...)))
	}
	return out, nil
}

func nodeIDsOf(pkg wire.PublicKeyPackage) []wire.NodeID {
	ids := make([]wire.NodeID, 0, len(pkg.VerifyingShares))
	for id := range pkg.VerifyingShares {
		ids = append(ids, id)
	}
	return ids
}
