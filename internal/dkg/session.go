// Package dkg implements the node-side DKG state machine (C5 in
// SPEC_FULL.md §4), grounded on zexfrost/node/dkg.py's DKG class
// (original_source): a per-session object carrying a temporary keypair and
// the partial results of each round, persisted between HTTP requests in a
// repository keyed by DKGID, loaded back out by the next round's handler.
package dkg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/threshold-frost/frostd/internal/config"
	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/jointkey"
	"github.com/threshold-frost/frostd/internal/store"
	"github.com/threshold-frost/frostd/internal/wire"
)

// Session is one node's view of a single DKG run. It is stored in, and
// loaded back out of, a Repository[*Session] keyed by the session's
// DKGID — the Go equivalent of zexfrost/node/dkg.py's store_dkg_object /
// load_dkg_object pair, minus JSON (re)serialization, since frostd's
// repository keeps live Go values rather than persisting to disk
// (spec.md §5: persistence beyond process lifetime is out of scope).
type Session struct {
	ID         wire.DKGID
	Curve      wire.CurveName
	MaxSigners int
	MinSigners int
	Partners   []wire.Node // every party member except self
	selfID     wire.NodeID

	TempKey *jointkey.EphemeralKeyPair

	round1State *cryptosuite.DKGPart1State

	PartnersTempPublicKey  map[wire.NodeID]wire.HexStr
	PartnersRound1Packages map[wire.NodeID]wire.DKGPart1Package
}

// part1Payload mirrors cryptosuite's internal part1Payload shape so this
// package can decode the commitments and proof of knowledge a peer's
// broadcast package carries, without cryptosuite exporting its private
// wire type.
type part1Payload struct {
	Commitments []wire.HexStr `json:"commitments"`
	ProofR      wire.HexStr   `json:"proof_r"`
	ProofS      wire.HexStr   `json:"proof_s"`
}

// NewSession starts a fresh DKG session for this node: a new temporary
// keypair, and the list of partners (every party member but self), exactly
// as zexfrost/node/dkg.py's constructor does with `tuple(filter(lambda
// node: node.id != settings.ID, party))`.
func NewSession(
	id wire.DKGID,
	curve wire.CurveName,
	maxSigners, minSigners int,
	self wire.NodeID,
	party []wire.Node,
) (*Session, error) {
	tempKey, err := jointkey.GenerateEphemeralKeyPair()
	if err != nil {
		return nil, fmt.Errorf("dkg: new session: %w", err)
	}

	partners := make([]wire.Node, 0, len(party))
	for _, n := range party {
		if n.ID != self {
			partners = append(partners, n)
		}
	}

	return &Session{
		ID:         id,
		Curve:      curve,
		MaxSigners: maxSigners,
		MinSigners: minSigners,
		Partners:   partners,
		selfID:     self,
		TempKey:    tempKey,
	}, nil
}

// Repository is the keyed store of in-flight DKG sessions a node's HTTP
// handlers share.
type Repository = store.Repository[*Session]

// NewRepository constructs an empty in-memory DKG session repository.
func NewRepository() Repository {
	return store.NewMemRepository[*Session]()
}

// Load fetches a session by id or returns a frosterr.NotFoundError,
// mirroring zexfrost/node/dkg.py's load_dkg_object's DKGNotFoundError.
func Load(repo Repository, id wire.DKGID) (*Session, error) {
	s, ok := repo.Get(string(id))
	if !ok {
		return nil, frosterr.NewDKGNotFound(id)
	}
	return s, nil
}

// Store persists the session back into the repository (store_dkg_object).
func (s *Session) Store(repo Repository) {
	repo.Set(string(s.ID), s)
}

// Destroy removes the session from the repository and wipes the temporary
// private key and round-1 state from the live process. handleDKGRound3
// calls it after a successful round 3; a round that fails leaves the
// session, with its temporary key, in the repository.
func (s *Session) Destroy(repo Repository) {
	repo.Delete(string(s.ID))
	s.TempKey = nil
	s.round1State = nil
}

// Round1 runs dkg_part1, stores the resulting secret state in the session,
// and returns this node's signed broadcast package, grounded on
// zexfrost/node/dkg.py's round1.
func (s *Session) Round1(settings *config.NodeSettings) (*wire.DKGRound1NodeResponse, error) {
	cs, err := cryptosuite.ForCurve(s.Curve)
	if err != nil {
		return nil, fmt.Errorf("dkg: round1: %w", err)
	}

	state, pkg, err := cryptosuite.DKGPart1(cs, settings.ID, s.ID, s.MinSigners)
	if err != nil {
		return nil, fmt.Errorf("dkg: round1: %w", err)
	}
	s.round1State = state

	tempPublicKey := wire.HexStr(hex.EncodeToString(jointkey.SerializePublicKey(s.TempKey.Public)))

	skBytes, err := hex.DecodeString(string(settings.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("dkg: round1: bad node private key: %w", err)
	}
	signingKey := new(big.Int).SetBytes(skBytes)

	signable := struct {
		Package       wire.DKGPart1Package `json:"package"`
		TempPublicKey wire.HexStr          `json:"temp_public_key"`
	}{Package: pkg, TempPublicKey: tempPublicKey}
	signableBytes, err := json.Marshal(signable)
	if err != nil {
		return nil, fmt.Errorf("dkg: round1: %w", err)
	}

	sig, err := cryptosuite.SingleSign(cs, signingKey, signableBytes)
	if err != nil {
		return nil, fmt.Errorf("dkg: round1: signing broadcast: %w", err)
	}

	return &wire.DKGRound1NodeResponse{
		Package:       pkg,
		TempPublicKey: tempPublicKey,
		Signature:     wire.HexStr(hex.EncodeToString(append(append([]byte{}, sig.R[:]...), sig.S[:]...))),
	}, nil
}
