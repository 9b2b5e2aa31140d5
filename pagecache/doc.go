// Package pagecache persists the result of a pagination pass so the next
// load of a document can rebuild the same page breaks without repeating the
// full flow computation.
//
// # Store
//
// A [Store] is an ordered list of [BreakRecord] values, one per page
// boundary after the first page, plus the cached page positions of floating
// objects as [FloatRecord] values. Stores are built wholesale, either by
// deserializing a cache blob with [Read] or by a layout walk appending
// records, and are discarded wholesale: a partially trusted cache is more
// dangerous than none.
//
// # Locking
//
// While the pagination engine consults a store, the store must not be
// cleared. [Store.Lock] returns a [Handle] whose Release pairs with it; the
// lock count is reentrant because nested layout regions open nested cursors
// over the same store. [Store.Clear] refuses while any handle is live.
//
// # Cursor
//
// A [Cursor] walks the break records monotonically, in step with the
// document's content elements. Records the walk has passed are dropped,
// never searched for again; this is what makes a stale cache degrade to a
// silent no-op instead of an error.
//
// # Versioning
//
// The stream carries a major.minor format version. A major version newer
// than this package understands disqualifies the whole stream. The minor
// version gates one quirk: streams older than minor 1 were written with
// defective floating-object sizes, so only their positions are trusted
// (see [Version.TrustsObjectSize]).
package pagecache
