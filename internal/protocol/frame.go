// Package protocol implements the fixed 10-byte frame that carries one
// Snapshot per TCP connection.
//
// Layout, network byte order, no padding, no header:
//
//	offset 0  u16  round(cpu_load * 10), wraps modulo 65536
//	offset 2  u32  mem_available (MB)
//	offset 6  u32  processes_active
//
// The connection boundary delimits the message.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Guliveer/syslens/internal/models"
)

// FrameSize is the exact length of an encoded snapshot.
const FrameSize = 10

const (
	cpuOffset  = 0
	memOffset  = 2
	procOffset = 6
)

// ErrShortRead is returned by Decode when the stream ends before a full
// frame has been read.
var ErrShortRead = errors.New("short frame")

// Frame is the on-wire form of a Snapshot.
type Frame [FrameSize]byte

// Marshal encodes s. It never fails and performs no range checks: the CPU
// load is rounded to one decimal and wrapped into 16 bits, integer fields
// keep their low 32 bits.
func Marshal(s models.Snapshot) Frame {
	var f Frame
	binary.BigEndian.PutUint16(f[cpuOffset:], cpuFixed(s.CPULoad))
	binary.BigEndian.PutUint32(f[memOffset:], uint32(s.MemAvailable))
	binary.BigEndian.PutUint32(f[procOffset:], uint32(s.ProcessesActive))
	return f
}

// Unmarshal decodes a complete frame.
func Unmarshal(f Frame) models.Snapshot {
	return models.Snapshot{
		CPULoad:         float64(binary.BigEndian.Uint16(f[cpuOffset:])) / 10.0,
		MemAvailable:    int64(binary.BigEndian.Uint32(f[memOffset:])),
		ProcessesActive: int64(binary.BigEndian.Uint32(f[procOffset:])),
	}
}

// Encode writes the frame for s to w in a single write.
func Encode(w io.Writer, s models.Snapshot) error {
	f := Marshal(s)
	if _, err := w.Write(f[:]); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Decode reads exactly one frame from r, blocking until all FrameSize bytes
// arrive. If r ends early the returned error wraps ErrShortRead and no
// snapshot is produced.
func Decode(r io.Reader) (models.Snapshot, error) {
	var f Frame
	n, err := io.ReadFull(r, f[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return models.Snapshot{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, FrameSize)
		}
		return models.Snapshot{}, fmt.Errorf("read frame after %d bytes: %w", n, err)
	}
	return Unmarshal(f), nil
}

// cpuFixed converts a load percentage to its 16-bit fixed-point form.
// Out-of-range values wrap rather than saturate so existing collectors
// decode exactly what older agents send.
func cpuFixed(load float64) uint16 {
	if math.IsNaN(load) {
		return 0
	}
	return uint16(int64(math.Round(load * 10)))
}
