package pagecache

import (
	"errors"
	"fmt"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/record"
)

// Record tags of the cache stream. The Pages record wraps everything after
// the version words; the others are its sub-records, one per break or
// cached object.
const (
	tagPages     byte = 'p'
	tagParagraph byte = 'P'
	tagTable     byte = 'T'
	tagObject    byte = 'O'
)

// flagParaSplit marks a paragraph break record that carries a rune offset.
const flagParaSplit byte = 0x1

// ErrUnusable reports a cache stream that cannot be trusted: malformed,
// failing validation, or written by a future format. Callers treat it as
// "no cache available", never as a hard failure.
var ErrUnusable = errors.New("pagecache: cache unusable")

// ErrFutureVersion reports a stream whose major version is newer than this
// package. It unwraps to ErrUnusable.
var ErrFutureVersion = fmt.Errorf("%w: written by a newer format version", ErrUnusable)

func unusable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnusable, err)
}

// Read deserializes a cache stream. The major version is checked before any
// record is interpreted; a newer major disqualifies the whole stream. Within
// a supported stream, records with unknown tags are skipped whole and
// unknown trailing flag-region fields are ignored, so streams written by
// newer minor versions still load.
func Read(data []byte) (*Store, error) {
	r := record.NewReader(data)
	major := r.Uint16()
	minor := r.Uint16()
	if err := r.Err(); err != nil {
		return nil, unusable(err)
	}
	if major > CurrentMajor {
		return nil, fmt.Errorf("%w: stream is %d.%d, this build reads up to %d.x",
			ErrFutureVersion, major, minor, CurrentMajor)
	}

	st := &Store{version: Version{Major: major, Minor: minor}}

	r.OpenRecord(tagPages)
	r.OpenFlagRecord()
	r.CloseFlagRecord()
	for r.More() {
		switch r.Peek() {
		case tagParagraph:
			r.OpenRecord(tagParagraph)
			flags := r.OpenFlagRecord()
			rec := BreakRecord{Kind: BreakParagraph, Offset: r.Uint32(), Split: SplitComplete}
			if flags&flagParaSplit != 0 {
				rec.Split = int32(r.Uint32())
			}
			r.CloseFlagRecord()
			r.CloseRecord()
			st.breaks = append(st.breaks, rec)

		case tagTable:
			r.OpenRecord(tagTable)
			r.OpenFlagRecord()
			rec := BreakRecord{Kind: BreakTable, Offset: r.Uint32(), Split: SplitComplete}
			// A continuation never consumed zero rows, so zero encodes
			// "carried over whole".
			if rows := r.Uint32(); rows > 0 {
				rec.Split = int32(rows)
			}
			r.CloseFlagRecord()
			r.CloseRecord()
			st.breaks = append(st.breaks, rec)

		case tagObject:
			r.OpenRecord(tagObject)
			r.OpenFlagRecord()
			r.CloseFlagRecord()
			page := r.Uint16()
			order := r.Uint32()
			x := model.Twips(r.Int32())
			y := model.Twips(r.Int32())
			wd := model.Twips(r.Int32())
			ht := model.Twips(r.Int32())
			r.CloseRecord()
			st.floats = append(st.floats, FloatRecord{
				Page: page, Order: order, X: x, Y: y, W: wd, H: ht,
			})

		default:
			r.SkipRecord()
		}
	}
	r.CloseRecord()

	if err := r.Err(); err != nil {
		return nil, unusable(err)
	}
	return st, nil
}

// MarshalBinary serializes the store. Output always carries the current
// format version, whatever version the store was read with: a rewrite means
// the records were rebuilt from a live layout.
func (s *Store) MarshalBinary() ([]byte, error) {
	w := record.NewWriter()
	w.Uint16(CurrentMajor)
	w.Uint16(CurrentMinor)
	w.OpenRecord(tagPages)
	w.OpenFlagRecord(0, 0)
	w.CloseFlagRecord()

	for _, br := range s.breaks {
		switch br.Kind {
		case BreakParagraph:
			w.OpenRecord(tagParagraph)
			if br.IsSplit() {
				w.OpenFlagRecord(flagParaSplit, 8)
				w.Uint32(br.Offset)
				w.Uint32(uint32(br.Split))
			} else {
				w.OpenFlagRecord(0, 4)
				w.Uint32(br.Offset)
			}
			w.CloseFlagRecord()
			w.CloseRecord()

		case BreakTable:
			var rows uint32
			if br.IsSplit() {
				rows = uint32(br.Split)
			}
			w.OpenRecord(tagTable)
			w.OpenFlagRecord(0, 8)
			w.Uint32(br.Offset)
			w.Uint32(rows)
			w.CloseFlagRecord()
			w.CloseRecord()

		default:
			return nil, fmt.Errorf("pagecache: cannot serialize break kind %v", br.Kind)
		}
	}

	for _, fr := range s.floats {
		w.OpenRecord(tagObject)
		w.OpenFlagRecord(0, 0)
		w.CloseFlagRecord()
		w.Uint16(fr.Page)
		w.Uint32(fr.Order)
		w.Int32(int32(fr.X))
		w.Int32(int32(fr.Y))
		w.Int32(int32(fr.W))
		w.Int32(int32(fr.H))
		w.CloseRecord()
	}

	w.CloseRecord()
	return w.Bytes()
}
