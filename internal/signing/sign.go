package signing

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/dkg"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/wire"
)

// Sign produces this node's share for one SignatureID, grounded on
// zexfrost/node/sign.py's `sign` function. The nonce lookup key is derived
// from this node's own entry in the commitment set (commitments[self]),
// exactly as the original does, then popped atomically — spec.md §9's
// "pop-on-use" fix for the original's get-then-delete race.
func Sign(
	self wire.NodeID,
	curveName wire.CurveName,
	pubkeyPackage wire.PublicKeyPackage,
	entry wire.SigningEntry,
	keyRepo dkg.KeyRepository,
	nonceRepo NonceRepository,
) (wire.SharePackage, error) {
	ownCommitment, ok := entry.Commitments[self]
	if !ok {
		return wire.SharePackage{}, fmt.Errorf("signing: no commitment recorded for %s", self)
	}

	nonce, ok := nonceRepo.Pop(ownCommitment.Key())
	if !ok {
		return wire.SharePackage{}, frosterr.NewNonceNotFound(ownCommitment.Key())
	}

	rk, err := resolveKeyPackage(self, curveName, pubkeyPackage, keyRepo, entry.TweakBy)
	if err != nil {
		return wire.SharePackage{}, err
	}

	message, err := hex.DecodeString(string(entry.Data.Message))
	if err != nil {
		return wire.SharePackage{}, fmt.Errorf("signing: bad message: %w", err)
	}

	// Coordinates must be derived from the full party's verifying_shares
	// set, not from the subset of nodes selected for this signing session:
	// each signer's Shamir x-coordinate was fixed at DKG time against the
	// full n-member party, and re-deriving it from whichever quorum is
	// active this round would assign different x values whenever the
	// selected subset differs from the full party (the common t<n case).
	coords := cryptosuite.NodeCoordinates(nodeIDs(pubkeyPackage.VerifyingShares))

	var share *big.Int
	if rk.tweak != nil {
		share, err = cryptosuite.Round2SignWithTweak(
			rk.cs, self, rk.signingShare, rk.tweak, message, nonce, entry.Commitments, coords,
		)
	} else {
		share, err = cryptosuite.Round2Sign(
			rk.cs, self, rk.signingShare, rk.groupKey, message, nonce, entry.Commitments, coords,
		)
	}
	if err != nil {
		return wire.SharePackage{}, fmt.Errorf("signing: round2 sign: %w", err)
	}

	return wire.SharePackage{
		Identifier: self,
		Share:      wire.HexStr(hex.EncodeToString(share.Bytes())),
	}, nil
}

// SignBatch runs Sign for every SignatureID in a signing request, grounded
// on zexfrost/node/router/sign.py's batch-shaped signing endpoint. A
// per-SignatureID failure does not abort the batch; it is returned
// alongside the partial results so the httpapi layer can report exactly
// which entries failed.
func SignBatch(
	self wire.NodeID,
	curveName wire.CurveName,
	pubkeyPackage wire.PublicKeyPackage,
	signingsData map[wire.SignatureID]wire.SigningEntry,
	keyRepo dkg.KeyRepository,
	nonceRepo NonceRepository,
) (wire.SignResponse, map[wire.SignatureID]error) {
	result := make(wire.SignResponse, len(signingsData))
	failures := make(map[wire.SignatureID]error)

	for sigID, entry := range signingsData {
		sharePkg, err := Sign(self, curveName, pubkeyPackage, entry, keyRepo, nonceRepo)
		if err != nil {
			failures[sigID] = err
			continue
		}
		result[sigID] = sharePkg
	}

	if len(failures) == 0 {
		failures = nil
	}
	return result, failures
}

func nodeIDs[V any](m map[wire.NodeID]V) []wire.NodeID {
	ids := make([]wire.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
