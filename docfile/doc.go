// Package docfile reads and writes the Pagina document container.
//
// A document is a ZIP archive: a stored (uncompressed) "mimetype" entry
// first, so file sniffers can identify the container without inflating
// anything; "content.xml" holding the document model; optional "media/*"
// entries holding the bytes of embedded objects; and an optional
// "layout-cache" entry holding the binary layout-reconstruction cache.
//
// # Degradation
//
// The cache entry is advisory. A container without one opens normally,
// and a cache that turns out to be corrupt, truncated, written by a
// future format version, or inconsistent with the document body degrades
// to an uncached open: [File.Cache] is nil and one [Warning] reports
// what happened. Opening fails only when the document itself is
// unreadable.
package docfile
