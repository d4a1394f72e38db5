// Package ordinals derives the wire ordinals of protocol methods.
//
// An ordinal is a stable 63-bit hash of the method's fully qualified
// selector, so renaming a method without fixing its selector attribute
// changes the wire contract and a collision is always a compile error
// rather than a silent re-route.
package ordinals

import (
	"crypto/sha256"
	"encoding/binary"
)

// SHA256Hasher is the production hasher: SHA-256 over
// "library/Protocol.selector", low eight bytes little-endian, masked to
// 63 bits. Zero is reserved and never returned.
type SHA256Hasher struct{}

func (SHA256Hasher) MethodOrdinal(library, protocol, selector string) uint64 {
	name := library + "/" + protocol + "." + selector
	sum := sha256.Sum256([]byte(name))
	ord := binary.LittleEndian.Uint64(sum[:8]) & (1<<63 - 1)
	if ord == 0 {
		return 1
	}
	return ord
}
