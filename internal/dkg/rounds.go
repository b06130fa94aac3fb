package dkg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/threshold-frost/frostd/internal/cryptosuite"
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/jointkey"
	"github.com/threshold-frost/frostd/internal/wire"
)

// ValidateBroadcastData verifies every partner's round-1 signature over
// their own broadcast package, grounded on
// zexfrost/node/dkg.py's validate_broadcast_data. It names every offending
// partner rather than failing on the first bad signature, so the returned
// SignatureValidationError, and the HTTP 400 response built from it, lists
// the full set.
func (s *Session) ValidateBroadcastData(broadcastData map[wire.NodeID]wire.DKGRound1NodeResponse) error {
	var offending []wire.NodeID
	for _, partner := range s.Partners {
		resp, ok := broadcastData[partner.ID]
		if !ok {
			offending = append(offending, partner.ID)
			continue
		}
		if !s.verifyBroadcast(partner, resp) {
			offending = append(offending, partner.ID)
		}
	}
	if len(offending) > 0 {
		return &frosterr.SignatureValidationError{OffendingNodes: offending}
	}
	return nil
}

func (s *Session) verifyBroadcast(partner wire.Node, resp wire.DKGRound1NodeResponse) bool {
	cs, err := cryptosuite.ForCurve(partner.CurveName)
	if err != nil {
		return false
	}

	signable := struct {
		Package       wire.DKGPart1Package `json:"package"`
		TempPublicKey wire.HexStr          `json:"temp_public_key"`
	}{Package: resp.Package, TempPublicKey: resp.TempPublicKey}
	signableBytes, err := json.Marshal(signable)
	if err != nil {
		return false
	}

	sigBytes, err := hex.DecodeString(string(resp.Signature))
	if err != nil || len(sigBytes) != 64 {
		return false
	}
	var sig cryptosuite.Signature
	copy(sig.R[:], sigBytes[:32])
	copy(sig.S[:], sigBytes[32:])

	pubKeyBytes, err := hex.DecodeString(string(partner.PublicKey))
	if err != nil {
		return false
	}
	pubKeyX := new(big.Int).SetBytes(pubKeyBytes)

	return cryptosuite.SingleVerify(cs, pubKeyX, signableBytes, &sig)
}

// Round2 verifies broadcast signatures, records each partner's commitments
// and temporary public key, and produces this node's Fernet-encrypted
// per-peer round-2 packages — grounded on zexfrost/node/dkg.py's round2.
func (s *Session) Round2(broadcastData map[wire.NodeID]wire.DKGRound1NodeResponse) (*wire.DKGRound2EncryptedPackage, error) {
	if s.round1State == nil {
		return nil, frosterr.NewRound1NotCompleted()
	}
	if err := s.ValidateBroadcastData(broadcastData); err != nil {
		return nil, err
	}

	s.PartnersTempPublicKey = make(map[wire.NodeID]wire.HexStr, len(broadcastData))
	s.PartnersRound1Packages = make(map[wire.NodeID]wire.DKGPart1Package, len(broadcastData))
	for id, resp := range broadcastData {
		s.PartnersTempPublicKey[id] = resp.TempPublicKey
		s.PartnersRound1Packages[id] = resp.Package
	}

	cs, err := cryptosuite.ForCurve(s.Curve)
	if err != nil {
		return nil, fmt.Errorf("dkg: round2: %w", err)
	}

	party := make([]wire.NodeID, 0, len(s.Partners)+1)
	party = append(party, s.partySelf())
	for _, p := range s.Partners {
		party = append(party, p.ID)
	}
	coords := cryptosuite.NodeCoordinates(party)

	shares := cryptosuite.DKGPart2(cs.Curve(), s.round1State, coords)

	encrypted := make(map[wire.NodeID]string, len(s.Partners))
	for _, partner := range s.Partners {
		share, ok := shares[partner.ID]
		if !ok {
			return nil, fmt.Errorf("dkg: round2: no share computed for partner %s", partner.ID)
		}
		plaintext, err := json.Marshal(struct {
			Share wire.HexStr `json:"share"`
		}{Share: wire.HexStr(hex.EncodeToString(share.Bytes()))})
		if err != nil {
			return nil, fmt.Errorf("dkg: round2: %w", err)
		}

		peerPubBytes, err := hex.DecodeString(string(s.PartnersTempPublicKey[partner.ID]))
		if err != nil {
			return nil, fmt.Errorf("dkg: round2: bad temp public key for %s: %w", partner.ID, err)
		}
		peerPub, err := jointkey.ParsePublicKey(peerPubBytes)
		if err != nil {
			return nil, fmt.Errorf("dkg: round2: %w", err)
		}

		token, err := jointkey.EncryptForPeer(s.TempKey, peerPub, plaintext)
		if err != nil {
			return nil, fmt.Errorf("dkg: round2: encrypting for %s: %w", partner.ID, err)
		}
		encrypted[partner.ID] = token
	}

	return &wire.DKGRound2EncryptedPackage{EncryptedPackage: encrypted}, nil
}

// Round3 decrypts every partner's round-2 package, combines shares into
// this node's final key material, and signs the resulting public key
// package with its long-term identity key — grounded on
// zexfrost/node/dkg.py's round3. The session is destroyed on completion
// per spec.md §4.4.
func (s *Session) Round3(
	self wire.NodeID,
	selfPrivateKey wire.HexStr,
	encryptedPackage wire.DKGRound2EncryptedPackage,
) (*wire.DKGRound3NodeResponse, *cryptosuite.DKGPart3Result, error) {
	if s.PartnersRound1Packages == nil || s.PartnersTempPublicKey == nil {
		return nil, nil, frosterr.NewRound2NotCompleted()
	}

	cs, err := cryptosuite.ForCurve(s.Curve)
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: %w", err)
	}

	party := make([]wire.NodeID, 0, len(s.Partners)+1)
	party = append(party, self)
	for _, p := range s.Partners {
		party = append(party, p.ID)
	}
	coords := cryptosuite.NodeCoordinates(party)

	receivedShares := make(map[wire.NodeID]*big.Int, len(s.Partners)+1)
	receivedCommitments := make(map[wire.NodeID][]*cryptosuite.Point, len(s.Partners)+1)

	for _, partner := range s.Partners {
		token, ok := encryptedPackage.EncryptedPackage[partner.ID]
		if !ok {
			return nil, nil, fmt.Errorf("dkg: round3: missing round2 package from %s", partner.ID)
		}
		peerPubBytes, err := hex.DecodeString(string(s.PartnersTempPublicKey[partner.ID]))
		if err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: %w", err)
		}
		peerPub, err := jointkey.ParsePublicKey(peerPubBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: %w", err)
		}
		plaintext, err := jointkey.DecryptFromPeer(s.TempKey, peerPub, token)
		if err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: decrypting package from %s: %w", partner.ID, err)
		}

		var decoded struct {
			Share wire.HexStr `json:"share"`
		}
		if err := json.Unmarshal(plaintext, &decoded); err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: %w", err)
		}
		shareBytes, err := hex.DecodeString(string(decoded.Share))
		if err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: %w", err)
		}
		receivedShares[partner.ID] = new(big.Int).SetBytes(shareBytes)

		commitments, err := decodeCommitments(cs, s.PartnersRound1Packages[partner.ID])
		if err != nil {
			return nil, nil, fmt.Errorf("dkg: round3: %w", err)
		}
		receivedCommitments[partner.ID] = commitments
	}

	selfShares := cryptosuite.DKGPart2(cs.Curve(), s.round1State, coords)
	receivedShares[self] = selfShares[self]

	selfCommitments := make([]*cryptosuite.Point, s.MinSigners)
	for i, c := range s.round1State.Coeffs {
		selfCommitments[i] = cs.Curve().EcBaseMul(c)
	}
	receivedCommitments[self] = selfCommitments

	result, err := cryptosuite.DKGPart3(
		cs, self, receivedShares[self], receivedShares, receivedCommitments, coords, s.MinSigners, s.Curve,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: %w", err)
	}

	identityCurve, err := resolveIdentityCurve(s.Curve)
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: %w", err)
	}
	skBytes, err := hex.DecodeString(string(selfPrivateKey))
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: bad node private key: %w", err)
	}
	signingKey := new(big.Int).SetBytes(skBytes)

	signable, err := json.Marshal(struct {
		PubkeyPackage wire.PublicKeyPackage `json:"pubkey_package"`
	}{PubkeyPackage: result.PublicKeyPackage})
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: %w", err)
	}

	sig, err := cryptosuite.SingleSign(identityCurve, signingKey, signable)
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: round3: signing result: %w", err)
	}

	return &wire.DKGRound3NodeResponse{
		PubkeyPackage: result.PublicKeyPackage,
		Signature:     wire.HexStr(hex.EncodeToString(append(append([]byte{}, sig.R[:]...), sig.S[:]...))),
	}, result, nil
}

// resolveIdentityCurve picks the ciphersuite used for a node's long-term
// identity signatures: secp256k1_tr falls back to plain secp256k1's
// BIP-340 signing since SingleSign only understands x-only secp256k1
// keys, and a node's identity key is never itself tweaked.
func resolveIdentityCurve(curveName wire.CurveName) (*cryptosuite.Ciphersuite, error) {
	if curveName == wire.CurveSecp256k1Tr {
		return cryptosuite.ForCurve(wire.CurveSecp256k1)
	}
	return cryptosuite.ForCurve(curveName)
}

func decodeCommitments(cs *cryptosuite.Ciphersuite, pkg wire.DKGPart1Package) ([]*cryptosuite.Point, error) {
	var payload part1Payload
	if err := json.Unmarshal(pkg, &payload); err != nil {
		return nil, fmt.Errorf("decoding round1 package: %w", err)
	}
	points := make([]*cryptosuite.Point, len(payload.Commitments))
	for i, c := range payload.Commitments {
		b, err := hex.DecodeString(string(c))
		if err != nil {
			return nil, fmt.Errorf("decoding commitment %d: %w", i, err)
		}
		p, err := cs.Curve().DeserializePoint(b)
		if err != nil {
			return nil, fmt.Errorf("decoding commitment %d: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// partySelf returns the NodeID this session was created for (NewSession's
// self argument), which Round2 places first in its coordinate set.
func (s *Session) partySelf() wire.NodeID {
	return s.selfID
}
