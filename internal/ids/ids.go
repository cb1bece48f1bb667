// Package ids allocates collision-free names for scratch files.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

type Allocator interface {
	Next(prefix string) string
}

// Sequence combines a process-local monotonic counter with a random suffix so
// names stay unique even when many are allocated within the same instant.
type Sequence struct {
	n atomic.Uint64
}

func NewSequence() *Sequence { return &Sequence{} }

func (s *Sequence) Next(prefix string) string {
	n := s.n.Add(1)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if prefix == "" {
		return fmt.Sprintf("%06d-%s", n, suffix)
	}
	return fmt.Sprintf("%s-%06d-%s", prefix, n, suffix)
}

// Digest returns a short stable name for the given parts. Equal parts always
// give equal digests, so it suits cache keys.
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])[:12]
}
