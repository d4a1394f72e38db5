package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Digest is a fixed 256-bit hash, compatible with source.File.Hash.
type Digest [32]byte

// Hex renders the digest for cache keys and artifact names.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Combine builds an aggregate hash: H( content || dep1 || dep2 ... ).
// Caller must pass deps in a deterministic order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashFile digests a file's contents.
func HashFile(path string) (Digest, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from a manifest
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(content), nil
}

// ContentDigest hashes the manifest file and every graph it lists, in
// listed order. Dependency hashes are combined on top by the driver so a
// change anywhere below invalidates dependents too.
func (m *Manifest) ContentDigest() (Digest, error) {
	own, err := HashFile(m.Path)
	if err != nil {
		return Digest{}, fmt.Errorf("hash manifest: %w", err)
	}
	h := sha256.New()
	_, _ = h.Write(own[:])
	for _, g := range m.Graphs {
		gd, err := HashFile(g)
		if err != nil {
			return Digest{}, fmt.Errorf("hash graph: %w", err)
		}
		_, _ = h.Write(gd[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}
