// Package keys derives the storage keys used by the rest of this
// module. A derived key is unique to a (context, logical key) pair so
// that stores owned by different contexts never collide on keys even
// when they share a backend.
package keys

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Canonical serializes v into its canonical byte representation.
// The encoding is deterministic: serializing the same value twice
// always produces identical bytes, and object keys are ordered.
// Values with no deterministic encoding (functions, channels, NaN)
// produce an error rather than falling back to a representation that
// would break derivation determinism.
func Canonical(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)

	if err != nil {
		return nil, fmt.Errorf("could not canonicalize value: %s", err.Error())
	}

	return b, nil
}

// Digest returns the fixed-length hex digest of b used for key
// derivation. Collision resistance is needed for namespacing only,
// not for security.
func Digest(b []byte) string {
	sum := md5.Sum(b)

	return hex.EncodeToString(sum[:])
}

// Deriver derives storage keys for a single context. The context is
// canonicalized and digested once at construction and the digest is
// reused for every derivation.
type Deriver struct {
	contextDigest string
}

// NewDeriver creates a Deriver for the given context. A context that
// cannot be canonicalized fails construction.
func NewDeriver(context interface{}) (*Deriver, error) {
	contextBytes, err := Canonical(context)

	if err != nil {
		return nil, fmt.Errorf("could not canonicalize context: %s", err.Error())
	}

	return &Deriver{contextDigest: Digest(contextBytes)}, nil
}

// Derive returns the derived key for the logical key: the digest of
// the canonical key bytes concatenated with the digest of the
// canonical context bytes. The result has a fixed length and is
// unique to the (context, key) pair with overwhelming probability.
func (deriver *Deriver) Derive(key interface{}) (string, error) {
	keyBytes, err := Canonical(key)

	if err != nil {
		return "", fmt.Errorf("could not canonicalize key: %s", err.Error())
	}

	return Digest(keyBytes) + deriver.contextDigest, nil
}
