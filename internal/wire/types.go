// Package wire defines the data transferred between coordinator and node:
// identifiers, party records, and the request/response bodies of the HTTP
// surface described in spec.md §6.
package wire

import (
	"encoding/json"
	"fmt"
)

// NodeID uniquely names a party member. It is carried as a hex string on the
// wire (spec.md §3).
type NodeID string

// DKGID names one DKG session.
type DKGID string

// SignatureID names one pending signature inside a signing batch.
type SignatureID string

// TweakBy is the hex-encoded tweak value applied to a key package/pubkey
// package before signing.
type TweakBy string

// HexStr is a hex-encoded byte string used throughout the wire formats for
// keys, signatures, packages and commitments.
type HexStr string

// CurveName is one of the closed set of supported ciphersuites.
type CurveName string

const (
	CurveSecp256k1    CurveName = "secp256k1"
	CurveSecp256k1Tr  CurveName = "secp256k1_tr"
	CurveSecp256k1Evm CurveName = "secp256k1_evm"
	CurveEd25519      CurveName = "ed25519"
)

// Node is a long-term party member record.
type Node struct {
	ID              NodeID    `json:"id"`
	Host            string    `json:"host"`
	Port            int       `json:"port"`
	PublicKey       HexStr    `json:"public_key"`
	CurveName       CurveName `json:"curve_name"`
	SelectionWeight float64   `json:"-"`
}

// URL returns the node's base URL, as the original's computed `url` field
// does (zexfrost/custom_types.py: Node.url).
func (n Node) URL() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// MinWeight is the floor applied to a node's selection_weight (spec.md §4.8).
const MinWeight = 0.1

// Commitment is the per-signer public nonce commitment pair.
type Commitment struct {
	Binding HexStr `json:"binding"`
	Hiding  HexStr `json:"hiding"`
}

// Key returns the nonce-store key for this commitment (spec.md §3:
// "binding || '-' || hiding").
func (c Commitment) Key() string {
	return string(c.Binding) + "-" + string(c.Hiding)
}

// DKGPart1Package is the public output of dkg_part1, opaque to the
// coordination layer beyond being JSON-serializable with stable key order.
type DKGPart1Package json.RawMessage

// DKGPart2Package is the (plaintext, pre-encryption) output of dkg_part2
// destined for one specific peer.
type DKGPart2Package json.RawMessage

// PublicKeyPackage is the group public information produced by dkg_part3.
type PublicKeyPackage struct {
	VerifyingKey   HexStr                    `json:"verifying_key"`
	VerifyingShares map[NodeID]HexStr        `json:"verifying_shares"`
	Raw            json.RawMessage           `json:"raw,omitempty"`
}

// PrivateKeyPackage (a.k.a. "key package") is a signer's private material
// after DKG, persisted by the key repository (spec.md §3).
type PrivateKeyPackage struct {
	Identifier     NodeID    `json:"identifier"`
	SigningShare   HexStr    `json:"signing_share"`
	VerifyingShare HexStr    `json:"verifying_share"`
	VerifyingKey   HexStr    `json:"verifying_key"`
	MinSigners     int       `json:"min_signers"`
	CurveName      CurveName `json:"curve_name"`
}

// Nonce is the one-shot secret nonce pair produced in the commitment phase.
type Nonce struct {
	Hiding  HexStr `json:"hiding"`
	Binding HexStr `json:"binding"`
}

// SharePackage is a signer's round-2 signature share.
type SharePackage struct {
	Share     HexStr `json:"share"`
	Identifier NodeID `json:"identifier"`
}

// --- DKG round bodies ---

// DKGRound1Request is the body of POST /dkg/round1.
type DKGRound1Request struct {
	ID          DKGID       `json:"id"`
	MaxSigners  int         `json:"max_signers"`
	MinSigners  int         `json:"min_signers"`
	PartyIDs    []NodeID    `json:"party_ids"`
	Curve       CurveName   `json:"curve"`
}

// DKGRound1NodeResponse is a node's round-1 broadcast (spec.md §3).
type DKGRound1NodeResponse struct {
	Package       DKGPart1Package `json:"package"`
	TempPublicKey HexStr          `json:"temp_public_key"`
	Signature     HexStr          `json:"signature"`
}

// DKGRound2Request is the body of POST /dkg/round2.
type DKGRound2Request struct {
	ID            DKGID                              `json:"id"`
	BroadcastData map[NodeID]DKGRound1NodeResponse   `json:"broadcast_data"`
}

// DKGRound2EncryptedPackage carries one ciphertext per peer (spec.md §3).
type DKGRound2EncryptedPackage struct {
	EncryptedPackage map[NodeID]string `json:"encrypted_package"`
}

// DKGRound3Request is the body of POST /dkg/round3.
type DKGRound3Request struct {
	ID               DKGID                     `json:"id"`
	EncryptedPackage DKGRound2EncryptedPackage `json:"encrypted_package"`
}

// DKGRound3NodeResponse is a node's round-3 response (spec.md §3).
type DKGRound3NodeResponse struct {
	PubkeyPackage PublicKeyPackage `json:"pubkey_package"`
	Signature     HexStr           `json:"signature"`
}

// --- Signing bodies ---

// CommitmentRequest is the body of POST /sign/commitment.
type CommitmentRequest struct {
	PubkeyPackage PublicKeyPackage `json:"pubkey_package"`
	Curve         CurveName        `json:"curve"`
	TweakBy       *TweakBy         `json:"tweak_by,omitempty"`
}

// SigningData is one entry of a signing batch: the application data plus
// message bytes (hex-encoded on the wire) for one SignatureID.
type SigningData struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message HexStr          `json:"message"`
}

// SignRequest is the body of the signing endpoint referenced by the
// coordinator's caller-supplied route (spec.md §4.7, §9 Open Question b).
type SignRequest struct {
	PubkeyPackage PublicKeyPackage                     `json:"pubkey_package"`
	Curve         CurveName                             `json:"curve"`
	SigningsData  map[SignatureID]SigningEntry          `json:"signings_data"`
	Metadata      map[string]string                     `json:"metadata,omitempty"`
}

// SigningEntry bundles one SignatureID's data, the full commitment set
// collected during the commitment phase, and its own optional tweak.
type SigningEntry struct {
	Data        SigningData              `json:"data"`
	Commitments map[NodeID]Commitment    `json:"commitments"`
	TweakBy     *TweakBy                 `json:"tweak_by,omitempty"`
}

// SignResponse maps each SignatureID to the node's share for it.
type SignResponse map[SignatureID]SharePackage
