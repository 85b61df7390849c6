package postsolve

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// segKind distinguishes a scalar push from a push_seq, so Pop/PopSeq can
// detect a caller popping the wrong shape even when byte widths collide.
type segKind uint8

const (
	segScalar segKind = iota
	segSeq
)

// arenaSeg records the byte length and shape of one top-level Push/PushSeq
// call, in push order. It is the side-channel that lets the arena locate
// segment boundaries when popping from the tail, without requiring the
// stored bytes themselves to carry a reverse-readable length suffix.
type arenaSeg struct {
	length int
	kind   segKind
}

// ScratchArena is an append-only typed byte buffer with a read cursor.
// Values are stored in encoding/binary's fixed-size little-endian encoding
// (struct fields packed without padding), not as a raw copy of their
// in-memory layout; variable-length sequences are stored as
// [length][elements...]. Pushes grow the arena monotonically; pops read
// back in exact reverse push order (LIFO) starting from ResetCursor.
//
// Not safe for concurrent use.
type ScratchArena struct {
	data    []byte
	segs    []arenaSeg
	cursor  int // byte offset into data; decreases as Pop/PopSeq consume segments
	segPos  int // index into segs one past the next segment to pop
}

// NewScratchArena returns an empty arena ready for pushes.
func NewScratchArena() *ScratchArena {
	return &ScratchArena{}
}

// ResetCursor repositions the read cursor to the tail of the arena, so the
// next Pop/PopSeq call consumes the most recently pushed segment.
func (a *ScratchArena) ResetCursor() {
	a.cursor = len(a.data)
	a.segPos = len(a.segs)
}

// Clear discards all pushed content and resets the cursor.
func (a *ScratchArena) Clear() {
	a.data = a.data[:0]
	a.segs = a.segs[:0]
	a.cursor = 0
	a.segPos = 0
}

// Len reports the number of bytes currently held.
func (a *ScratchArena) Len() int {
	return len(a.data)
}

// Push appends a bit-copy of v. T must be a fixed-size type (the scalar
// numeric types, bool, or a struct composed only of such fields) — exactly
// the shape of every ReductionRecord variant.
func Push[T any](a *ScratchArena, v T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		panic(fmt.Sprintf("postsolve: arena push of non-fixed-size type: %v", err))
	}
	a.data = append(a.data, buf.Bytes()...)
	a.segs = append(a.segs, arenaSeg{length: buf.Len(), kind: segScalar})
}

// PushSeq appends a length-prefixed sequence of bit-copied elements.
func PushSeq[T any](a *ScratchArena, v []T) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, int32(len(v))); err != nil {
		panic(fmt.Sprintf("postsolve: arena push_seq length: %v", err))
	}
	if len(v) > 0 {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			panic(fmt.Sprintf("postsolve: arena push_seq of non-fixed-size element type: %v", err))
		}
	}
	a.data = append(a.data, buf.Bytes()...)
	a.segs = append(a.segs, arenaSeg{length: buf.Len(), kind: segSeq})
}

// popSegment locates and validates the next segment to pop, returning its
// byte range and advancing the cursor/segPos backward.
func (a *ScratchArena) popSegment(wantKind segKind) ([]byte, error) {
	if a.segPos == 0 {
		return nil, fmt.Errorf("postsolve: %w: no more segments to pop", ErrArenaUnderflow)
	}
	seg := a.segs[a.segPos-1]
	if seg.kind != wantKind {
		return nil, fmt.Errorf("postsolve: %w: popped shape mismatch (want kind %d, have kind %d)",
			ErrTypeMismatch, wantKind, seg.kind)
	}
	begin := a.cursor - seg.length
	if begin < 0 {
		return nil, fmt.Errorf("postsolve: %w: segment extends past start of arena", ErrArenaUnderflow)
	}
	out := a.data[begin:a.cursor]
	a.cursor = begin
	a.segPos--
	return out, nil
}

// Pop reads the most recently pushed (and not-yet-popped) scalar value into
// *out. T must match the type originally passed to Push.
func Pop[T any](a *ScratchArena, out *T) error {
	raw, err := a.popSegment(segScalar)
	if err != nil {
		return err
	}
	if want := binarySize[T](); want != len(raw) {
		return fmt.Errorf("postsolve: %w: expected %d bytes, segment has %d", ErrTypeMismatch, want, len(raw))
	}
	return binary.Read(bytes.NewReader(raw), binary.LittleEndian, out)
}

// PopSeq reads the most recently pushed (and not-yet-popped) sequence.
func PopSeq[T any](a *ScratchArena) ([]T, error) {
	raw, err := a.popSegment(segSeq)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(raw)
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("postsolve: %w: corrupt sequence length", ErrArenaUnderflow)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]T, n)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("postsolve: %w: corrupt sequence elements", ErrArenaUnderflow)
	}
	return out, nil
}

func binarySize[T any]() int {
	var zero T
	return binary.Size(zero)
}
