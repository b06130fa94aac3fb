package jointkey

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec"
)

// EncryptForPeer derives this session's shared key with peerPublic and
// Fernet-encrypts plaintext under it, the operation internal/dkg's round 2
// calls once per partner in the party (spec.md §4.3).
func EncryptForPeer(ours *EphemeralKeyPair, peerPublic *btcec.PublicKey, plaintext []byte) (string, error) {
	shared := ours.SharedSecret(peerPublic)
	key, err := DeriveFernetKey(shared)
	if err != nil {
		return "", fmt.Errorf("jointkey: encrypt_for_peer: %w", err)
	}
	return EncryptPackage(plaintext, key)
}

// DecryptFromPeer reverses EncryptForPeer using the receiving node's own
// ephemeral private key and the sender's advertised temporary public key.
func DecryptFromPeer(ours *EphemeralKeyPair, peerPublic *btcec.PublicKey, token string) ([]byte, error) {
	shared := ours.SharedSecret(peerPublic)
	key, err := DeriveFernetKey(shared)
	if err != nil {
		return nil, fmt.Errorf("jointkey: decrypt_from_peer: %w", err)
	}
	return DecryptPackage(token, key)
}
