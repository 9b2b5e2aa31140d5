package record

import (
	"encoding/binary"
	"fmt"
)

// MaxPayload is the largest payload a single record can carry. The record
// header stores the payload size in 24 bits.
const MaxPayload = 1<<24 - 1

// maxFlagValue bounds both halves of a flag record marker byte.
const maxFlagValue = 0x0F

type openRec struct {
	off int // offset of the placeholder header
	tag byte
}

// Writer builds a record stream in memory. Records are opened with a tag,
// filled with primitives or nested records, and closed; the header of each
// record is backpatched with the payload size on close.
//
// The first error latches: all later calls are no-ops and Bytes returns the
// error. The zero value is not usable; call NewWriter.
type Writer struct {
	buf     []byte
	stack   []openRec
	flagEnd int // expected buffer length at CloseFlagRecord, -1 when none open
	err     error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{flagEnd: -1}
}

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// OpenRecord starts a record with the given tag. The tag must be non-zero;
// a zero header word is indistinguishable from corruption on the read side.
func (w *Writer) OpenRecord(tag byte) {
	if w.err != nil {
		return
	}
	if tag == 0 {
		w.fail(fmt.Errorf("record: open with zero tag"))
		return
	}
	w.stack = append(w.stack, openRec{off: len(w.buf), tag: tag})
	w.buf = append(w.buf, 0, 0, 0, 0)
}

// CloseRecord ends the innermost open record and backpatches its header.
func (w *Writer) CloseRecord() {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 {
		w.fail(fmt.Errorf("record: close without open record"))
		return
	}
	rec := w.stack[n-1]
	w.stack = w.stack[:n-1]
	size := len(w.buf) - rec.off - 4
	if size > MaxPayload {
		w.fail(fmt.Errorf("record: payload of %d bytes exceeds %d byte limit", size, MaxPayload))
		return
	}
	binary.LittleEndian.PutUint32(w.buf[rec.off:], uint32(size)<<8|uint32(rec.tag))
}

// OpenFlagRecord writes a flag record marker declaring fixedLen bytes of
// fixed fields to follow. Both flags and fixedLen must fit in four bits.
func (w *Writer) OpenFlagRecord(flags byte, fixedLen int) {
	if w.err != nil {
		return
	}
	if w.flagEnd >= 0 {
		w.fail(fmt.Errorf("record: flag record already open"))
		return
	}
	if flags > maxFlagValue {
		w.fail(fmt.Errorf("record: flags %#x exceed four bits", flags))
		return
	}
	if fixedLen < 0 || fixedLen > maxFlagValue {
		w.fail(fmt.Errorf("record: flag region length %d out of range", fixedLen))
		return
	}
	w.buf = append(w.buf, flags<<4|byte(fixedLen))
	w.flagEnd = len(w.buf) + fixedLen
}

// CloseFlagRecord ends the open flag record. The caller must have written
// exactly the declared number of fixed bytes since OpenFlagRecord.
func (w *Writer) CloseFlagRecord() {
	if w.err != nil {
		return
	}
	if w.flagEnd < 0 {
		w.fail(fmt.Errorf("record: close without open flag record"))
		return
	}
	if len(w.buf) != w.flagEnd {
		w.fail(fmt.Errorf("record: flag region wrote %d bytes past declared length", len(w.buf)-w.flagEnd))
		return
	}
	w.flagEnd = -1
}

// Uint8 appends a single byte.
func (w *Writer) Uint8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v)
}

// Uint16 appends a little-endian 16-bit value.
func (w *Writer) Uint16(v uint16) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// Uint32 appends a little-endian 32-bit value.
func (w *Writer) Uint32(v uint32) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Int32 appends a little-endian signed 32-bit value.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Bytes returns the finished stream. It fails if any record or flag record
// is still open, or if an earlier operation failed.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.stack) > 0 {
		return nil, fmt.Errorf("record: %d record(s) still open", len(w.stack))
	}
	if w.flagEnd >= 0 {
		return nil, fmt.Errorf("record: flag record still open")
	}
	return w.buf, nil
}
