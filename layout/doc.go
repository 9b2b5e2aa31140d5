// Package layout divides a document's content into pages and rebuilds
// previous page divisions from a layout cache.
//
// This package implements the pagination pass of the engine: it walks the
// document body, fits paragraph lines and table rows onto pages, honors
// break attributes and page-description changes, and places floating
// objects when each page closes.
//
// # Pagination
//
// The [Paginator] runs one pass per call:
//
//	p := layout.NewPaginator()
//	result, err := p.Paginate(doc)
//
// With a layout cache from a previously saved document, the pass consults
// the cache before deciding each boundary itself, reproducing the earlier
// division without repeating the flow computation:
//
//	result, err := p.PaginateWithCache(doc, store)
//
// Cached hints are advisory. A hint that no longer matches the content —
// a split beyond the live text, a record for a kind the element no longer
// has — is skipped silently and flow fitting takes over for that element.
//
// # Frames
//
// The result is a tree of frames: each [PageFrame] holds the
// [ContentFrame] values placed on it ([TextFrame], [TableFrame],
// [SectionFrame]) plus its [FloatFrame] objects. An element that crosses
// pages is presented by several frames over the same content node, linked
// through their Follow fields; frames never copy content.
//
// # Rebuilding the Cache
//
// After a pass, [BuildCache] walks the finished pages and records what a
// later load needs to reproduce them: one break record per page after the
// first and the resolved rectangle of every flow-placed floating object.
//
// # Configuration
//
// Page geometry and metrics come from [Config]:
//
//	config := layout.DefaultConfig()
//	config.PageSize = layout.Letter
//	p := layout.NewPaginatorWithConfig(config)
package layout
