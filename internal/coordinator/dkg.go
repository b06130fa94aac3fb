package coordinator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/transport"
	"github.com/threshold-frost/frostd/internal/wire"
)

// AnnulmentData is reserved for a future session-annulment protocol. The
// original (zexfrost/custom_types.py: `class AnnulmentData(BaseModel): ...`)
// defines it with no fields either; DKG.Annul exists only so the
// coordinator's surface area matches the original's, not because the
// feature is implemented (spec.md §9 Open Question, SPEC_FULL.md §3).
type AnnulmentData struct{}

// ErrNotImplemented is returned by DKG's Annul and Dispute stubs.
var ErrNotImplemented = fmt.Errorf("coordinator: not implemented")

// DKG drives one DKG session across a fixed party (C7 in SPEC_FULL.md §4),
// grounded on zexfrost/client/dkg.py's DKG class: generate a session id,
// fan out round 1/2/3 concurrently to every party member, and reconcile
// their results.
type DKG struct {
	ID         wire.DKGID
	Curve      wire.CurveName
	MaxSigners int
	MinSigners int
	Party      []wire.Node

	client    *transport.Client
	partyBook *config.PartyBook
}

// NewDKG constructs a DKG coordinator for a fresh session id, mirroring
// the original's `_generate_id` (uuid4) via google/uuid — already a
// teacher dependency (SPEC_FULL.md §2).
func NewDKG(curve wire.CurveName, party []wire.Node, maxSigners, minSigners int, client *transport.Client, partyBook *config.PartyBook) *DKG {
	return &DKG{
		ID:         wire.DKGID(uuid.NewString()),
		Curve:      curve,
		MaxSigners: maxSigners,
		MinSigners: minSigners,
		Party:      party,
		client:     client,
		partyBook:  partyBook,
	}
}

type fanoutResult[T any] struct {
	id    wire.NodeID
	value T
	err   error
}

// fanout runs fn concurrently for every node in party and collects results
// keyed by NodeID, mirroring the original's per-node asyncio.create_task
// fan-out. The first error encountered is returned; spec.md §4.6 treats
// any round failure as terminal for the session, so fanout does not try to
// collect partial DKG results the way the signing aggregator does.
func fanout[T any](ctx context.Context, party []wire.Node, fn func(context.Context, wire.Node) (T, error)) (map[wire.NodeID]T, error) {
	results := make(chan fanoutResult[T], len(party))
	var wg sync.WaitGroup
	for _, node := range party {
		wg.Add(1)
		go func(n wire.Node) {
			defer wg.Done()
			v, err := fn(ctx, n)
			results <- fanoutResult[T]{id: n.ID, value: v, err: err}
		}(node)
	}
	wg.Wait()
	close(results)

	out := make(map[wire.NodeID]T, len(party))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("node %s: %w", r.id, r.err)
			}
			continue
		}
		out[r.id] = r.value
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Round1 fans out POST /dkg/round1 to every party member and verifies each
// node's broadcast signature, grounded on zexfrost/client/dkg.py's round1.
func (d *DKG) Round1(ctx context.Context) (map[wire.NodeID]wire.DKGRound1NodeResponse, error) {
	req := wire.DKGRound1Request{
		ID:         d.ID,
		MaxSigners: d.MaxSigners,
		MinSigners: d.MinSigners,
		PartyIDs:   nodeIDs(d.Party),
		Curve:      d.Curve,
	}

	result, err := fanout(ctx, d.Party, func(ctx context.Context, n wire.Node) (wire.DKGRound1NodeResponse, error) {
		var resp wire.DKGRound1NodeResponse
		res, err := d.client.PostJSON(ctx, n, n.URL()+"/dkg/round1", req, &resp)
		d.recordWeight(n.ID, res)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	if err := d.validateSignatures(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Round2 transposes each node's view of round 1 (every *other* peer's
// response) and fans out POST /dkg/round2, grounded on
// zexfrost/client/dkg.py's _round2_data_parsing/round2.
func (d *DKG) Round2(ctx context.Context, round1Result map[wire.NodeID]wire.DKGRound1NodeResponse) (map[wire.NodeID]wire.DKGRound2EncryptedPackage, error) {
	return fanout(ctx, d.Party, func(ctx context.Context, n wire.Node) (wire.DKGRound2EncryptedPackage, error) {
		broadcastData := make(map[wire.NodeID]wire.DKGRound1NodeResponse, len(round1Result)-1)
		for id, resp := range round1Result {
			if id == n.ID {
				continue
			}
			broadcastData[id] = resp
		}
		req := wire.DKGRound2Request{ID: d.ID, BroadcastData: broadcastData}

		var resp wire.DKGRound2EncryptedPackage
		res, err := d.client.PostJSON(ctx, n, n.URL()+"/dkg/round2", req, &resp)
		d.recordWeight(n.ID, res)
		return resp, err
	})
}

// Round3 transposes each node's view of round 2 (the ciphertext every
// other peer encrypted *for it*) and fans out POST /dkg/round3, then
// verifies every node reports the same verifying_key, grounded on
// zexfrost/client/dkg.py's _round3_data_parsing/round3/_check_round3_result.
func (d *DKG) Round3(ctx context.Context, round2Result map[wire.NodeID]wire.DKGRound2EncryptedPackage) (wire.PublicKeyPackage, error) {
	result, err := fanout(ctx, d.Party, func(ctx context.Context, n wire.Node) (wire.DKGRound3NodeResponse, error) {
		encrypted := make(map[wire.NodeID]string, len(round2Result)-1)
		for senderID, resp := range round2Result {
			if senderID == n.ID {
				continue
			}
			encrypted[senderID] = resp.EncryptedPackage[n.ID]
		}
		req := wire.DKGRound3Request{ID: d.ID, EncryptedPackage: wire.DKGRound2EncryptedPackage{EncryptedPackage: encrypted}}

		var resp wire.DKGRound3NodeResponse
		res, err := d.client.PostJSON(ctx, n, n.URL()+"/dkg/round3", req, &resp)
		d.recordWeight(n.ID, res)
		return resp, err
	})
	if err != nil {
		return wire.PublicKeyPackage{}, err
	}

	if err := d.validateSignatures(result); err != nil {
		return wire.PublicKeyPackage{}, err
	}

	verifyingKeys := make(map[wire.NodeID]wire.HexStr, len(result))
	var common wire.HexStr
	for id, resp := range result {
		verifyingKeys[id] = resp.PubkeyPackage.VerifyingKey
		common = resp.PubkeyPackage.VerifyingKey
	}
	for _, k := range verifyingKeys {
		if k != common {
			return wire.PublicKeyPackage{}, &frosterr.DKGResultIncompatibilityError{VerifyingKeys: verifyingKeys}
		}
	}

	for _, resp := range result {
		return resp.PubkeyPackage, nil
	}
	return wire.PublicKeyPackage{}, fmt.Errorf("coordinator: round3: empty party")
}

// Run drives all three rounds in sequence and returns the common
// pubkey_package, mirroring zexfrost/client/dkg.py's run.
func (d *DKG) Run(ctx context.Context) (wire.PublicKeyPackage, error) {
	round1Result, err := d.Round1(ctx)
	if err != nil {
		return wire.PublicKeyPackage{}, fmt.Errorf("coordinator: dkg round1: %w", err)
	}
	round2Result, err := d.Round2(ctx, round1Result)
	if err != nil {
		return wire.PublicKeyPackage{}, fmt.Errorf("coordinator: dkg round2: %w", err)
	}
	pubkeyPackage, err := d.Round3(ctx, round2Result)
	if err != nil {
		return wire.PublicKeyPackage{}, fmt.Errorf("coordinator: dkg round3: %w", err)
	}
	return pubkeyPackage, nil
}

// Annul is a stub, matching zexfrost/client/dkg.py's unimplemented
// `annulment` method (spec.md §9 Open Question).
func (d *DKG) Annul() (AnnulmentData, error) {
	return AnnulmentData{}, ErrNotImplemented
}

// Dispute is a stub, matching zexfrost/client/dkg.py's unimplemented
// `dispute` method.
func (d *DKG) Dispute() ([]wire.Node, error) {
	return nil, ErrNotImplemented
}

func (d *DKG) recordWeight(id wire.NodeID, res transport.Result) {
	if d.partyBook == nil {
		return
	}
	UpdateWeight(d.partyBook, id, res)
}

// validateSignatures verifies every node's signed response against its
// Node record's identity key, generically over round1 and round3's
// response shapes, grounded on zexfrost/client/dkg.py's validate_signature.
func (d *DKG) validateSignatures(result any) error {
	var offending []wire.NodeID

	switch r := result.(type) {
	case map[wire.NodeID]wire.DKGRound1NodeResponse:
		for _, n := range d.Party {
			resp, ok := r[n.ID]
			if !ok || !verifyRound1Signature(n, resp) {
				offending = append(offending, n.ID)
			}
		}
	case map[wire.NodeID]wire.DKGRound3NodeResponse:
		for _, n := range d.Party {
			resp, ok := r[n.ID]
			if !ok || !verifyRound3Signature(n, resp) {
				offending = append(offending, n.ID)
			}
		}
	default:
		return fmt.Errorf("coordinator: validateSignatures: unsupported result type %T", result)
	}

	if len(offending) > 0 {
		return &frosterr.SignatureValidationError{OffendingNodes: offending}
	}
	return nil
}

func verifyRound1Signature(node wire.Node, resp wire.DKGRound1NodeResponse) bool {
	signable := struct {
		Package       wire.DKGPart1Package `json:"package"`
		TempPublicKey wire.HexStr          `json:"temp_public_key"`
	}{Package: resp.Package, TempPublicKey: resp.TempPublicKey}
	payload, err := json.Marshal(signable)
	if err != nil {
		return false
	}
	return verifyIdentitySignature(node, payload, resp.Signature)
}

func verifyRound3Signature(node wire.Node, resp wire.DKGRound3NodeResponse) bool {
	signable := struct {
		PubkeyPackage wire.PublicKeyPackage `json:"pubkey_package"`
	}{PubkeyPackage: resp.PubkeyPackage}
	payload, err := json.Marshal(signable)
	if err != nil {
		return false
	}
	return verifyIdentitySignature(node, payload, resp.Signature)
}

// verifyIdentitySignature checks a node's long-term identity signature
// over payload. secp256k1_tr identities sign with plain secp256k1, exactly
// as internal/dkg.resolveIdentityCurve does node-side, since identity keys
// are never themselves tweaked.
func verifyIdentitySignature(node wire.Node, payload []byte, signature wire.HexStr) bool {
	curveName := node.CurveName
	if curveName == wire.CurveSecp256k1Tr {
		curveName = wire.CurveSecp256k1
	}
	cs, err := cryptosuite.ForCurve(curveName)
	if err != nil {
		return false
	}

	sigBytes, err := hex.DecodeString(string(signature))
	if err != nil || len(sigBytes) != 64 {
		return false
	}
	var sig cryptosuite.Signature
	copy(sig.R[:], sigBytes[:32])
	copy(sig.S[:], sigBytes[32:])

	pubKeyBytes, err := hex.DecodeString(string(node.PublicKey))
	if err != nil {
		return false
	}
	pubKeyX := new(big.Int).SetBytes(pubKeyBytes)

	return cryptosuite.SingleVerify(cs, pubKeyX, payload, &sig)
}

func nodeIDs(nodes []wire.Node) []wire.NodeID {
	ids := make([]wire.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
