// Package display renders decoded snapshots to the collector's shared
// output. A Sink is created once at startup and handed to every handler;
// its lock is the only state handlers share.
package display

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/Guliveer/syslens/internal/models"
)

const banner = "====================================\n" +
	"     SYSLENS SYSTEM MONITOR v1.0    \n" +
	"====================================\n"

// Render returns the complete display block for s.
func Render(s models.Snapshot) []byte {
	var b bytes.Buffer
	b.Grow(len(banner) + 96)
	b.WriteString(banner)
	b.WriteString(s.String())
	b.WriteByte('\n')
	return b.Bytes()
}

// Sink serializes display blocks onto a single writer so that blocks from
// concurrent handlers never interleave.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink creates a sink writing to w. The sink assumes exclusive use of w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Display writes the block for s. Rendering happens before the lock is
// taken; the critical section is one Write.
func (s *Sink) Display(snap models.Snapshot) error {
	block := Render(snap)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(block); err != nil {
		return fmt.Errorf("display snapshot: %w", err)
	}
	return nil
}
