package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	SHA256     = "sha256"
	SHA3_256   = "sha3-256"
	BLAKE2b256 = "blake2b-256"
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Hasher turns an arbitrary byte sequence into a lowercase hex digest.
type Hasher struct {
	name string
	size int
	new  func() hash.Hash
}

// NewHasher returns the hasher registered under name. An empty name selects SHA-256.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SHA256:
		return Default(), nil
	case SHA3_256:
		return Hasher{name: SHA3_256, size: 32, new: sha3.New256}, nil
	case BLAKE2b256:
		return Hasher{name: BLAKE2b256, size: blake2b.Size256, new: newBlake2b256}, nil
	}
	return Hasher{}, fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
}

// Default is the SHA-256 hasher used for every stored merkle root.
func Default() Hasher {
	return Hasher{name: SHA256, size: sha256.Size, new: sha256.New}
}

// Algorithms lists the names accepted by NewHasher.
func Algorithms() []string {
	return []string{SHA256, SHA3_256, BLAKE2b256}
}

// Digest hashes data and returns the hex encoding of the sum.
func (h Hasher) Digest(data []byte) string {
	if h.new == nil {
		h = Default()
	}
	if h.name == SHA256 {
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
	w := h.new()
	w.Write(data)
	return hex.EncodeToString(w.Sum(nil))
}

// DigestPair hashes the concatenation of two hex digests as text, left first.
func (h Hasher) DigestPair(left, right string) string {
	return h.Digest([]byte(left + right))
}

func (h Hasher) Name() string {
	if h.name == "" {
		return SHA256
	}
	return h.name
}

// Size is the raw digest length in bytes; the hex form is twice as long.
func (h Hasher) Size() int {
	if h.size == 0 {
		return sha256.Size
	}
	return h.size
}

func newBlake2b256() hash.Hash {
	// only fails for keys longer than 64 bytes
	h, _ := blake2b.New256(nil)
	return h
}
