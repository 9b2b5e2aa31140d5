package record

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated reports a read that would cross the end of the stream, the
// end of the enclosing record, or the end of an open flag region.
var ErrTruncated = errors.New("record: truncated stream")

// Reader consumes a record stream produced by Writer. All reads are bounded
// by the innermost open record, so a corrupt length can never pull bytes
// from a sibling record.
//
// The first error latches: every later read is a no-op returning zero
// values, and Err reports the original failure.
type Reader struct {
	data    []byte
	pos     int
	ends    []int // payload end offsets of open records, innermost last
	flagEnd int   // end of the open flag region, -1 when none
	err     error
}

// NewReader returns a Reader over data. The slice is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, flagEnd: -1}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// bound is the offset past which the next read must not reach.
func (r *Reader) bound() int {
	if r.flagEnd >= 0 {
		return r.flagEnd
	}
	if n := len(r.ends); n > 0 {
		return r.ends[n-1]
	}
	return len(r.data)
}

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > r.bound() {
		r.fail(fmt.Errorf("%w: need %d bytes at offset %d, region ends at %d", ErrTruncated, n, r.pos, r.bound()))
		return false
	}
	return true
}

// More reports whether bytes remain in the enclosing record (or, outside any
// record, in the stream) and no error has occurred.
func (r *Reader) More() bool {
	return r.err == nil && r.pos < r.bound()
}

// Peek returns the tag of the next record without consuming it, or zero when
// no byte is available. Tags occupy the low byte of the header word, so one
// byte is enough.
func (r *Reader) Peek() byte {
	if r.err != nil || r.pos >= r.bound() {
		return 0
	}
	return r.data[r.pos]
}

// OpenRecord reads a record header and descends into its payload. The record
// must carry the expected tag and must fit inside the enclosing region;
// otherwise the reader latches an error and reports false.
func (r *Reader) OpenRecord(tag byte) bool {
	if !r.need(4) {
		return false
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	got := byte(v)
	if got != tag {
		r.fail(fmt.Errorf("record: expected tag %#x at offset %d, found %#x", tag, r.pos, got))
		return false
	}
	end := r.pos + 4 + int(v>>8)
	if end > r.bound() {
		r.fail(fmt.Errorf("%w: record %#x claims %d payload bytes, region ends at %d", ErrTruncated, tag, v>>8, r.bound()))
		return false
	}
	r.pos += 4
	r.ends = append(r.ends, end)
	return true
}

// SkipRecord reads a record header and jumps past the whole record without
// interpreting its payload. Unknown tags are skipped this way.
func (r *Reader) SkipRecord() {
	if !r.need(4) {
		return
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	end := r.pos + 4 + int(v>>8)
	if end > r.bound() {
		r.fail(fmt.Errorf("%w: record %#x claims %d payload bytes, region ends at %d", ErrTruncated, byte(v), v>>8, r.bound()))
		return
	}
	r.pos = end
}

// CloseRecord leaves the innermost open record, landing exactly on its end
// regardless of how much of the payload was consumed.
func (r *Reader) CloseRecord() {
	if r.err != nil {
		return
	}
	n := len(r.ends)
	if n == 0 {
		r.fail(fmt.Errorf("record: close without open record"))
		return
	}
	r.pos = r.ends[n-1]
	r.ends = r.ends[:n-1]
}

// OpenFlagRecord reads a flag record marker and returns the four flag bits.
// Reads until CloseFlagRecord are bounded by the declared fixed region.
func (r *Reader) OpenFlagRecord() byte {
	if r.flagEnd >= 0 {
		r.fail(fmt.Errorf("record: flag record already open"))
		return 0
	}
	if !r.need(1) {
		return 0
	}
	marker := r.data[r.pos]
	r.pos++
	end := r.pos + int(marker&maxFlagValue)
	if end > r.bound() {
		r.fail(fmt.Errorf("%w: flag region of %d bytes, record ends at %d", ErrTruncated, marker&maxFlagValue, r.bound()))
		return 0
	}
	r.flagEnd = end
	return marker >> 4
}

// CloseFlagRecord leaves the open flag region, skipping any fixed fields the
// caller did not read.
func (r *Reader) CloseFlagRecord() {
	if r.err != nil {
		return
	}
	if r.flagEnd < 0 {
		r.fail(fmt.Errorf("record: close without open flag record"))
		return
	}
	r.pos = r.flagEnd
	r.flagEnd = -1
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

// Uint16 reads a little-endian 16-bit value.
func (r *Reader) Uint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

// Uint32 reads a little-endian 32-bit value.
func (r *Reader) Uint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

// Int32 reads a little-endian signed 32-bit value.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}
