package httpapi

import (
	"net/http"

	"github.com/threshold-frost/frostd/internal/dkg"
	"github.com/threshold-frost/frostd/internal/wire"
)

// handleDKGRound1 implements POST /dkg/round1 (spec.md §6): starts a new
// DKG session, generates this node's dkg_part1 output, and returns the
// signed broadcast package.
func (s *Server) handleDKGRound1(w http.ResponseWriter, r *http.Request) {
	var req wire.DKGRound1Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.Log, err)
		return
	}

	party := s.Party.Get(req.PartyIDs)
	session, err := dkg.NewSession(req.ID, req.Curve, req.MaxSigners, req.MinSigners, s.Settings.ID, party)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}

	resp, err := session.Round1(s.Settings)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}
	session.Store(s.DKGRepo)

	s.Log.Infow("dkg round1 complete", "dkg_id", req.ID)
	writeJSON(w, http.StatusOK, resp)
}

// handleDKGRound2 implements POST /dkg/round2: validates every partner's
// broadcast signature and returns this node's Fernet-encrypted per-peer
// round-2 packages.
func (s *Server) handleDKGRound2(w http.ResponseWriter, r *http.Request) {
	var req wire.DKGRound2Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.Log, err)
		return
	}

	session, err := dkg.Load(s.DKGRepo, req.ID)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}

	resp, err := session.Round2(req.BroadcastData)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}
	session.Store(s.DKGRepo)

	s.Log.Infow("dkg round2 complete", "dkg_id", req.ID)
	writeJSON(w, http.StatusOK, resp)
}

// handleDKGRound3 implements POST /dkg/round3: decrypts every partner's
// round-2 package, finalizes this node's key package, persists it, signs
// the resulting public key package, and destroys the session.
func (s *Server) handleDKGRound3(w http.ResponseWriter, r *http.Request) {
	var req wire.DKGRound3Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.Log, err)
		return
	}

	session, err := dkg.Load(s.DKGRepo, req.ID)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}

	resp, result, err := session.Round3(s.Settings.ID, s.Settings.PrivateKey, req.EncryptedPackage)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}

	dkg.StoreKeyPackage(s.KeyRepo, result.PrivateKeyPackage)
	session.Destroy(s.DKGRepo)

	s.Log.Infow("dkg round3 complete", "dkg_id", req.ID, "verifying_key", result.PrivateKeyPackage.VerifyingKey)
	writeJSON(w, http.StatusOK, resp)
}
