// Package hashport implements ports.HashPort, the gate audit log's content
// hash (spec.md §6: "the core never stores raw rejected text, only this
// hash").
package hashport

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"

	"github.com/hynous/memory-core/internal/ports"
)

var _ ports.HashPort = XXHash{}

// XXHash hashes audit content with xxhash64, hex-encoded. xxhash is already
// a direct dependency of the teacher's module graph with no prior home in
// this tree; the gate's content hash is exactly the kind of narrow,
// allocation-free digest it's built for.
type XXHash struct{}

// New returns a ready-to-use XXHash hasher.
func New() XXHash { return XXHash{} }

// Hash returns the hex-encoded xxhash64 digest of data.
func (XXHash) Hash(data []byte) string {
	sum := xxhash.Sum64(data)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(buf[:])
}
