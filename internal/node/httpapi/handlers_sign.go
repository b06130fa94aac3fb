package httpapi

import (
	"fmt"
	"net/http"

	"github.com/threshold-frost/frostd/internal/signing"
	"github.com/threshold-frost/frostd/internal/wire"
)

// handleCommitment implements POST /sign/commitment (spec.md §6): loads
// this node's key package, applies the curve's tweak rule, runs
// round1_commit, and returns the public commitment.
func (s *Server) handleCommitment(w http.ResponseWriter, r *http.Request) {
	var req wire.CommitmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.Log, err)
		return
	}

	commitment, err := signing.Commitment(s.Settings.ID, req.Curve, req.PubkeyPackage, s.KeyRepo, s.NonceRepo, req.TweakBy)
	if err != nil {
		writeError(w, s.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, commitment)
}

// handleSign implements the coordinator's caller-supplied signing route
// (spec.md §6, §9 Open Question (b)): produces this node's share for every
// SignatureID in the batch. A failure on any entry fails the whole
// response, since the wire format carries no per-entry error channel — the
// coordinator attributes the failure to every SignatureID it asked this
// node for (frosterr.SignatureGroupError).
func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req wire.SignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.Log, err)
		return
	}

	result, failures := signing.SignBatch(s.Settings.ID, req.Curve, req.PubkeyPackage, req.SigningsData, s.KeyRepo, s.NonceRepo)
	if len(failures) > 0 {
		writeError(w, s.Log, summarizeFailures(failures, len(req.SigningsData)))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func summarizeFailures(failures map[wire.SignatureID]error, total int) error {
	var sigIDs []wire.SignatureID
	for id := range failures {
		sigIDs = append(sigIDs, id)
	}
	return fmt.Errorf("sign: %d of %d entries failed: %v", len(failures), total, sigIDs)
}
