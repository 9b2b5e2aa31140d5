package pagecache

import (
	"fmt"

	"github.com/tsawler/pagina/model"
)

// Current stream format version. Minor 1 marks floating-object sizes as
// trustworthy; minor 0 writers measured them before styles were applied.
const (
	CurrentMajor uint16 = 1
	CurrentMinor uint16 = 1
)

// Version identifies the format a cache stream was written with.
type Version struct {
	Major uint16
	Minor uint16
}

// Current returns the version this package writes.
func Current() Version {
	return Version{Major: CurrentMajor, Minor: CurrentMinor}
}

// TrustsObjectSize reports whether cached floating-object width and height
// may be applied. Streams written before minor 1 carry defective sizes and
// only their positions are usable.
func (v Version) TrustsObjectSize() bool {
	return v.Minor >= 1
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// BreakKind says which kind of content element a break record points at.
type BreakKind uint8

const (
	BreakParagraph BreakKind = iota
	BreakTable
)

func (k BreakKind) String() string {
	switch k {
	case BreakParagraph:
		return "paragraph"
	case BreakTable:
		return "table"
	}
	return fmt.Sprintf("BreakKind(%d)", uint8(k))
}

// Matches reports whether the break kind describes the given content node
// kind.
func (k BreakKind) Matches(n model.NodeKind) bool {
	switch k {
	case BreakParagraph:
		return n == model.KindParagraph
	case BreakTable:
		return n == model.KindTable
	}
	return false
}

// SplitComplete is the Split value of a break record whose element carried
// over to the new page whole, without an internal split.
const SplitComplete int32 = -1

// BreakRecord marks one page boundary: the element at flow offset Offset
// starts (or continues on) a new page. For a split element, Split is the
// rune offset (paragraphs) or the cumulative consumed row count (tables) at
// which the element was cut. An element spanning more than two pages emits
// one record per crossed boundary, all with the same Offset.
type BreakRecord struct {
	Kind   BreakKind
	Offset uint32
	Split  int32
}

// IsSplit reports whether the record cuts inside its element rather than
// carrying it over whole.
func (r BreakRecord) IsSplit() bool {
	return r.Split != SplitComplete
}

// FloatRecord caches the page-relative rectangle of one flow-positioned
// floating object. Order is the object's position in the page's stacking
// order, the pairing key when the cache is matched against live objects.
type FloatRecord struct {
	Page  uint16
	Order uint32
	X     model.Twips
	Y     model.Twips
	W     model.Twips
	H     model.Twips
}

// Store holds the deserialized (or freshly built) layout cache of one
// document. Break records are kept in non-decreasing offset order; float
// records are grouped by page in page order. A Store is not safe for
// concurrent use.
type Store struct {
	version Version
	breaks  []BreakRecord
	floats  []FloatRecord
	locks   int
}

// New returns an empty store stamped with the current format version.
func New() *Store {
	return &Store{version: Current()}
}

// Version returns the format version the store was read with (or will be
// written with, for a freshly built store).
func (s *Store) Version() Version { return s.version }

// BreakCount returns the number of break records.
func (s *Store) BreakCount() int { return len(s.breaks) }

// FloatCount returns the number of cached floating-object rectangles.
func (s *Store) FloatCount() int { return len(s.floats) }

// Break returns the i-th break record in store order.
func (s *Store) Break(i int) BreakRecord { return s.breaks[i] }

// ExpectedPages returns the page count a faithful reconstruction will
// produce: one page per break record, plus the first.
func (s *Store) ExpectedPages() int {
	return len(s.breaks) + 1
}

// AddBreak appends a break record. It reports false, leaving the store
// unchanged, while the store is locked.
func (s *Store) AddBreak(r BreakRecord) bool {
	if s.locks > 0 {
		return false
	}
	s.breaks = append(s.breaks, r)
	return true
}

// AddFloat appends a floating-object record. It reports false while the
// store is locked.
func (s *Store) AddFloat(r FloatRecord) bool {
	if s.locks > 0 {
		return false
	}
	s.floats = append(s.floats, r)
	return true
}

// Locked reports whether any lock handle is live.
func (s *Store) Locked() bool { return s.locks > 0 }

// Lock marks the store in use and returns the handle that undoes it. Locks
// nest; the store is read-only until every handle is released.
func (s *Store) Lock() *Handle {
	s.locks++
	return &Handle{store: s}
}

// Clear empties the store, or reports false without touching it while any
// lock handle is live. This is the only way cached data is destroyed, which
// is what makes a locked store undestroyable.
func (s *Store) Clear() bool {
	if s.locks > 0 {
		return false
	}
	s.breaks = nil
	s.floats = nil
	return true
}

// Handle represents one held lock on a Store.
type Handle struct {
	store    *Store
	released bool
}

// Release gives the lock back. Releasing twice, or releasing a nil handle,
// does nothing.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.store.locks--
}
