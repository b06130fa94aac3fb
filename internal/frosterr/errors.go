// Package frosterr defines the error taxonomy of spec.md §7. It mirrors the
// exception hierarchy of zexfrost/exceptions.py (original_source) as typed
// Go errors, and adds the two aggregate error groups the coordinator raises
// on partial fan-out failure, built on hashicorp/go-multierror the way
// drand-drand aggregates per-node dkg/resharing errors.
package frosterr

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/threshold-frost/frostd/internal/wire"
)

// NotFoundError covers DKGNotFound, KeyNotFound and NonceNotFound.
type NotFoundError struct {
	Kind string // "dkg", "key", "nonce"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func NewDKGNotFound(id wire.DKGID) error {
	return &NotFoundError{Kind: "dkg", Key: string(id)}
}

func NewKeyNotFound(key string) error {
	return &NotFoundError{Kind: "key", Key: key}
}

func NewNonceNotFound(key string) error {
	return &NotFoundError{Kind: "nonce", Key: key}
}

// PhaseOrderError covers Round1NotCompleted, Round2NotCompleted,
// PartnersRound1PackagesMissing and PartnersTempPublicKeyMissing.
type PhaseOrderError struct {
	Phase string
}

func (e *PhaseOrderError) Error() string {
	return fmt.Sprintf("DKG phase order violation: %s", e.Phase)
}

func NewRound1NotCompleted() error { return &PhaseOrderError{Phase: "round1 not completed"} }
func NewRound2NotCompleted() error { return &PhaseOrderError{Phase: "round2 not completed"} }
func NewPartnersRound1PackagesMissing() error {
	return &PhaseOrderError{Phase: "partners' round1 packages missing"}
}
func NewPartnersTempPublicKeyMissing() error {
	return &PhaseOrderError{Phase: "partners' temporary public keys missing"}
}

// SignatureValidationError is raised when a broadcast signature fails to
// verify; it names every offending node (spec.md §7).
type SignatureValidationError struct {
	OffendingNodes []wire.NodeID
}

func (e *SignatureValidationError) Error() string {
	return fmt.Sprintf("signature validation failed for nodes: %v", e.OffendingNodes)
}

// DKGResultIncompatibilityError is raised when nodes disagree on the
// resulting verifying_key: a potential security issue (spec.md §7).
type DKGResultIncompatibilityError struct {
	VerifyingKeys map[wire.NodeID]wire.HexStr
}

func (e *DKGResultIncompatibilityError) Error() string {
	return fmt.Sprintf(
		"DKG round 3 failed: verifying keys diverge across nodes: %v",
		e.VerifyingKeys,
	)
}

// NodeTimeoutError wraps a transport-level timeout; it is treated as a 5xx
// for selection-weight purposes (spec.md §4.8).
type NodeTimeoutError struct {
	Node wire.NodeID
	Err  error
}

func (e *NodeTimeoutError) Error() string {
	return fmt.Sprintf("node %s timed out: %v", e.Node, e.Err)
}

func (e *NodeTimeoutError) Unwrap() error { return e.Err }

// CommitmentGroupError aggregates per-node failures of the commitment
// fan-out. The coordinator only raises it when quorum could not be reached;
// otherwise it proceeds with the partial successful set (spec.md §4.7, §7).
type CommitmentGroupError struct {
	SignatureID wire.SignatureID
	Failures    map[wire.NodeID]error
	multi       *multierror.Error
}

func NewCommitmentGroupError(sigID wire.SignatureID, failures map[wire.NodeID]error) *CommitmentGroupError {
	me := &multierror.Error{}
	for node, err := range failures {
		me = multierror.Append(me, fmt.Errorf("node %s: %w", node, err))
	}
	return &CommitmentGroupError{SignatureID: sigID, Failures: failures, multi: me}
}

func (e *CommitmentGroupError) Error() string {
	return fmt.Sprintf("commitment phase failed for signature %s: %s", e.SignatureID, e.multi.Error())
}

func (e *CommitmentGroupError) Unwrap() []error { return e.multi.WrappedErrors() }

// SignatureGroupError aggregates per-node, per-signature-id failures of the
// sign fan-out. Unlike CommitmentGroupError, the coordinator MUST succeed
// for every requested SignatureID or raise this (spec.md §7).
type SignatureGroupError struct {
	Failures map[wire.NodeID]map[wire.SignatureID]error
	multi    *multierror.Error
}

func NewSignatureGroupError(failures map[wire.NodeID]map[wire.SignatureID]error) *SignatureGroupError {
	me := &multierror.Error{}
	for node, bySig := range failures {
		for sigID, err := range bySig {
			me = multierror.Append(me, fmt.Errorf("node %s, signature %s: %w", node, sigID, err))
		}
	}
	return &SignatureGroupError{Failures: failures, multi: me}
}

func (e *SignatureGroupError) Error() string {
	return fmt.Sprintf("sign phase failed: %s", e.multi.Error())
}

func (e *SignatureGroupError) Unwrap() []error { return e.multi.WrappedErrors() }

// ChildCount returns how many individual (node, signature) failures the
// aggregate carries, used by property test E (§8) to assert "exactly one
// child".
func (e *SignatureGroupError) ChildCount() int {
	n := 0
	for _, bySig := range e.Failures {
		n += len(bySig)
	}
	return n
}
