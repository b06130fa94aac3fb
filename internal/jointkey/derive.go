package jointkey

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveFernetKey expands a SEC1-compressed ECDH shared point into the 32
// raw bytes a Fernet key needs (16 bytes signing key || 16 bytes encryption
// key, per the Fernet spec), using HKDF-SHA256 with an empty salt and info
// exactly as spec.md §4.3 requires for interop with already-deployed keys.
func DeriveFernetKey(sharedSecret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, nil)
	out := make([]byte, 32)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("jointkey: hkdf expand: %w", err)
	}
	return out, nil
}
