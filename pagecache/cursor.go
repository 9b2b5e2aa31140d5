package pagecache

// Cursor consumes a store's break records in step with a layout walk over
// the document body. Consumption is strictly monotonic: once the walk has
// moved past a flow offset, records left behind at smaller offsets are
// dropped, never searched. A dropped record means the cache disagrees with
// the document; the walk simply stops being guided there.
//
// Creating a cursor locks the store; Close releases it. Nested layout
// regions take a nested cursor over the same store, which is why the
// store's lock count is reentrant.
type Cursor struct {
	store   *Store
	handle  *Handle
	next    int // first unconsumed break record
	fnext   int // first unconsumed float record
	dropped int
}

// NewCursor locks the store and returns a cursor positioned at its first
// record.
func NewCursor(s *Store) *Cursor {
	return &Cursor{store: s, handle: s.Lock()}
}

// Close releases the cursor's lock on the store. Closing twice is harmless.
func (c *Cursor) Close() {
	c.handle.Release()
}

// Version returns the format version of the underlying store.
func (c *Cursor) Version() Version {
	return c.store.version
}

// Consult returns the next break record for the element at the given flow
// offset, consuming it. It reports false when the cache has nothing (more)
// to say about this element. Records at offsets the walk has already passed
// are dropped on the way.
//
// An element that spans several pages has several records at its offset;
// each Consult call hands out one, in stored order.
func (c *Cursor) Consult(offset uint32) (BreakRecord, bool) {
	for c.next < len(c.store.breaks) {
		r := c.store.breaks[c.next]
		if r.Offset > offset {
			return BreakRecord{}, false
		}
		c.next++
		if r.Offset == offset {
			return r, true
		}
		c.dropped++
	}
	return BreakRecord{}, false
}

// Dropped returns how many records this cursor has passed without a match,
// including drops adopted from nested cursors.
func (c *Cursor) Dropped() int {
	return c.dropped
}

// Exhausted reports whether every break record has been consumed or
// dropped.
func (c *Cursor) Exhausted() bool {
	return c.next >= len(c.store.breaks)
}

// FloatsFor returns the cached floating-object records of one page. Pages
// are consumed in increasing order; asking for a page again, or out of
// order, yields nothing.
func (c *Cursor) FloatsFor(page uint16) []FloatRecord {
	floats := c.store.floats
	for c.fnext < len(floats) && floats[c.fnext].Page < page {
		c.fnext++
	}
	start := c.fnext
	for c.fnext < len(floats) && floats[c.fnext].Page == page {
		c.fnext++
	}
	return floats[start:c.fnext]
}

// Nested returns an inner cursor over the same store, starting where this
// cursor stands. The store gains a second lock until the inner cursor is
// closed. Pair with Adopt when the nested region is done.
func (c *Cursor) Nested() *Cursor {
	inner := NewCursor(c.store)
	inner.next = c.next
	inner.fnext = c.fnext
	return inner
}

// Adopt moves this cursor to wherever the inner cursor ended up, carrying
// its drop count along. The inner cursor must come from Nested on this
// cursor's store; anything else is ignored.
func (c *Cursor) Adopt(inner *Cursor) {
	if inner == nil || inner.store != c.store {
		return
	}
	c.next = inner.next
	c.fnext = inner.fnext
	c.dropped += inner.dropped
}
