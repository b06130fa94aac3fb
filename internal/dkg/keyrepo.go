package dkg

import (
	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/store"
	"github.com/threshold-frost/frostd/internal/wire"
)

// KeyRepository holds each completed DKG's PrivateKeyPackage, keyed by
// `NodeID || VerifyingKey` (spec.md §3), for internal/signing's commitment
// and signing handlers to load back out — grounded on
// zexfrost/node/sign.py's `key_repo.get(pubkey_package.verifying_key)`. A
// single node process only ever owns one key package per group verifying
// key, so the NodeID half of the compound key matters only in that it
// keeps one process's repository safely shareable if it ever serves more
// than one local identity.
type KeyRepository = store.Repository[wire.PrivateKeyPackage]

// NewKeyRepository constructs an empty in-memory key repository.
func NewKeyRepository() KeyRepository {
	return store.NewMemRepository[wire.PrivateKeyPackage]()
}

func keyRepoKey(nodeID wire.NodeID, verifyingKey wire.HexStr) string {
	return string(nodeID) + string(verifyingKey)
}

// LoadKeyPackage fetches a completed DKG's key package by (node, verifying
// key), or returns a frosterr.NotFoundError.
func LoadKeyPackage(repo KeyRepository, nodeID wire.NodeID, verifyingKey wire.HexStr) (wire.PrivateKeyPackage, error) {
	kp, ok := repo.Get(keyRepoKey(nodeID, verifyingKey))
	if !ok {
		return wire.PrivateKeyPackage{}, frosterr.NewKeyNotFound(keyRepoKey(nodeID, verifyingKey))
	}
	return kp, nil
}

// StoreKeyPackage persists a completed DKG's key package, keyed by its
// owner's identifier and the group verifying key.
func StoreKeyPackage(repo KeyRepository, kp wire.PrivateKeyPackage) {
	repo.Set(keyRepoKey(kp.Identifier, kp.VerifyingKey), kp)
}
