// Package slugarray implements SlugIdArray: a packed, contiguous array of
// raw 16-byte identifiers with amortized growth, in-place removal, and an
// exact slug <-> raw-bytes codec via the sibling slugid package.
//
// Grounded on the teacher's byte-discipline style in
// internal/core/auth/hmac.go (fixed-width field parsing over a flat byte
// string) rather than any one file in the pack that implements a packed
// array directly; the growth/shrink policy is new code implementing
// spec §3/§4.3 exactly, written in that same "comment the invariant, not
// the justification" register.
package slugarray

import (
	"bytes"
	"fmt"

	"github.com/solatis/typecodec/internal/codec/slugid"
)

const (
	slotSize         = slugid.Size // 16
	initialSlots     = 32
	minCapacitySlots = 32
)

// Array is a mutable, caller-owned packed array of 16-byte identifiers.
// It is not internally synchronized; callers must not mutate it while a
// view returned by Bytes is still being read.
type Array struct {
	buf    []byte // len(buf) == (length+avail) * slotSize
	length int
}

// New returns an empty array with the floor 32-slot capacity.
func New() *Array {
	return &Array{buf: make([]byte, initialSlots*slotSize)}
}

// FromBuffer adopts raw as the backing store with length = len(raw)/16
// and avail = 0. raw's length must be a multiple of 16.
func FromBuffer(raw []byte) (*Array, error) {
	if len(raw)%slotSize != 0 {
		return nil, fmt.Errorf("slugarray: buffer length %d not a multiple of %d", len(raw), slotSize)
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &Array{buf: buf, length: len(raw) / slotSize}, nil
}

// Len returns the number of live slugs.
func (a *Array) Len() int { return a.length }

func (a *Array) avail() int {
	return len(a.buf)/slotSize - a.length
}

// Cap returns the current slot capacity (length + avail).
func (a *Array) Cap() int {
	return len(a.buf) / slotSize
}

// Bytes returns a view over the live region of the backing buffer. The
// view's validity ends at the next mutating call on a; callers must
// consume it synchronously (mirrors the spec's getBufferView contract).
func (a *Array) Bytes() []byte {
	return a.buf[:a.length*slotSize]
}

func (a *Array) grow() {
	newCap := a.Cap() * 2
	if newCap == 0 {
		newCap = initialSlots
	}
	buf := make([]byte, newCap*slotSize)
	copy(buf, a.buf[:a.length*slotSize])
	a.buf = buf
}

// maybeShrink repacks the backing buffer to a fresh buffer sized exactly
// length*16 bytes when avail > 2*length and the current capacity
// exceeds the 32-slot floor, per spec §3. Never shrinks below the floor.
func (a *Array) maybeShrink() {
	if a.avail() <= 2*a.length {
		return
	}
	if a.Cap() <= minCapacitySlots {
		return
	}
	newSlots := a.length
	if newSlots < minCapacitySlots {
		newSlots = minCapacitySlots
	}
	buf := make([]byte, newSlots*slotSize)
	copy(buf, a.buf[:a.length*slotSize])
	a.buf = buf
}

// Push decodes slug and appends its 16 raw bytes to the array, growing
// (doubling capacity) first if there is no available slot.
func (a *Array) Push(slug string) error {
	raw, err := slugid.Decode(slug)
	if err != nil {
		return err
	}
	if a.avail() == 0 {
		a.grow()
	}
	offset := a.length * slotSize
	copy(a.buf[offset:offset+slotSize], raw)
	a.length++
	return nil
}

// Pop decodes and returns the tail slug, shrinking the live region by
// one slot.
func (a *Array) Pop() (string, error) {
	if a.length == 0 {
		return "", fmt.Errorf("slugarray: pop from empty array")
	}
	offset := (a.length - 1) * slotSize
	raw := a.buf[offset : offset+slotSize]
	slug, err := slugid.Encode(raw)
	if err != nil {
		return "", err
	}
	a.length--
	a.maybeShrink()
	return slug, nil
}

// Shift decodes and returns the head slug, sliding the remaining
// (length-1)*16 bytes down to offset 0.
func (a *Array) Shift() (string, error) {
	if a.length == 0 {
		return "", fmt.Errorf("slugarray: shift from empty array")
	}
	raw := make([]byte, slotSize)
	copy(raw, a.buf[:slotSize])
	slug, err := slugid.Encode(raw)
	if err != nil {
		return "", err
	}
	// Move exactly (length-1)*16 bytes from offset 16 to offset 0; the
	// trailing stale bytes past the new live region are left untouched
	// since they sit in the avail region and are overwritten by future
	// pushes before ever being read.
	copy(a.buf[0:(a.length-1)*slotSize], a.buf[slotSize:a.length*slotSize])
	a.length--
	a.maybeShrink()
	return slug, nil
}

// IndexOf decodes slug and scans the live region for an aligned match,
// returning its slot index or -1. A substring hit at a misaligned
// offset is not a match; the search continues one byte later.
func (a *Array) IndexOf(slug string) (int, error) {
	raw, err := slugid.Decode(slug)
	if err != nil {
		return -1, err
	}
	live := a.buf[:a.length*slotSize]
	for offset := 0; offset+slotSize <= len(live); offset++ {
		if offset%slotSize != 0 {
			continue
		}
		if bytes.Equal(live[offset:offset+slotSize], raw) {
			return offset / slotSize, nil
		}
	}
	return -1, nil
}

// Includes reports whether slug is present in the array.
func (a *Array) Includes(slug string) (bool, error) {
	idx, err := a.IndexOf(slug)
	if err != nil {
		return false, err
	}
	return idx >= 0, nil
}

// Remove finds slug and, if present, removes its slot by sliding the
// tail over it, returning whether anything was removed.
func (a *Array) Remove(slug string) (bool, error) {
	idx, err := a.IndexOf(slug)
	if err != nil {
		return false, err
	}
	if idx < 0 {
		return false, nil
	}
	offset := idx * slotSize
	tailStart := offset + slotSize
	tailEnd := a.length * slotSize
	copy(a.buf[offset:tailEnd-slotSize], a.buf[tailStart:tailEnd])
	a.length--
	a.maybeShrink()
	return true, nil
}

// Slice returns the in-order subrange [begin, end) as a list of slugs,
// with Python-style negative-index normalization: begin < 0 means
// length+begin, end < 0 means length+end, end is clamped to length, and
// a falsy (zero) begin defaults to 0.
func (a *Array) Slice(begin, end int) ([]string, error) {
	if begin < 0 {
		begin = a.length + begin
	}
	if end < 0 {
		end = a.length + end
	}
	if begin < 0 {
		begin = 0
	}
	if end > a.length {
		end = a.length
	}
	if begin >= end {
		return []string{}, nil
	}

	out := make([]string, 0, end-begin)
	for i := begin; i < end; i++ {
		offset := i * slotSize
		slug, err := slugid.Encode(a.buf[offset : offset+slotSize])
		if err != nil {
			return nil, err
		}
		out = append(out, slug)
	}
	return out, nil
}

// ToArray returns every live slug in insertion order.
func (a *Array) ToArray() ([]string, error) {
	return a.Slice(0, a.length)
}

// Clone returns a deep copy of a; mutating the clone never affects a.
func (a *Array) Clone() *Array {
	buf := make([]byte, len(a.buf))
	copy(buf, a.buf)
	return &Array{buf: buf, length: a.length}
}

// Equals byte-compares the live regions of a and other.
func (a *Array) Equals(other *Array) bool {
	if a.length != other.length {
		return false
	}
	return bytes.Equal(a.Bytes(), other.Bytes())
}
