package jointkey

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// MaxTokenAge bounds how old a round-2 encrypted package may be before a
// node refuses to decrypt it, preventing a stale replayed package from
// being accepted into a live session.
const MaxTokenAge = 10 * time.Minute

// EncryptPackage wraps plaintext as a Fernet token under the key derived
// from this session's ECDH shared secret (DeriveFernetKey), giving
// byte-compatible output with the original's cryptography.fernet.Fernet
// tokens (spec.md §4.3).
func EncryptPackage(plaintext []byte, keyBytes []byte) (string, error) {
	var key fernet.Key
	if len(keyBytes) != len(key) {
		return "", fmt.Errorf("jointkey: fernet key must be %d bytes, got %d", len(key), len(keyBytes))
	}
	copy(key[:], keyBytes)

	tok, err := fernet.EncryptAndSign(plaintext, &key)
	if err != nil {
		return "", fmt.Errorf("jointkey: encrypt: %w", err)
	}
	return string(tok), nil
}

// DecryptPackage reverses EncryptPackage, rejecting tokens older than
// MaxTokenAge or signed under a different key.
func DecryptPackage(token string, keyBytes []byte) ([]byte, error) {
	var key fernet.Key
	if len(keyBytes) != len(key) {
		return nil, fmt.Errorf("jointkey: fernet key must be %d bytes, got %d", len(key), len(keyBytes))
	}
	copy(key[:], keyBytes)

	plaintext := fernet.VerifyAndDecrypt([]byte(token), MaxTokenAge, []*fernet.Key{&key})
	if plaintext == nil {
		return nil, fmt.Errorf("jointkey: token verification failed")
	}
	return plaintext, nil
}
