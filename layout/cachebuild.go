package layout

import "github.com/tsawler/pagina/pagecache"

// BuildCache walks a finished page tree and records what a later pass
// needs to reproduce the same division: for every page after the first,
// one break record describing the content at the top of the page, and for
// every page one float record per positioned flow-placed object, in
// stacking order.
//
// Page one needs no record — layout always starts there. Blank parity
// pages are skipped: the page-description rules recreate them. An element
// that spans several pages shows up once per crossed boundary, which is
// how multi-page tables accumulate one record per continuation.
func BuildCache(pages []*PageFrame) *pagecache.Store {
	store := pagecache.New()
	for i, pg := range pages {
		if i > 0 && !pg.Blank {
			if rec, ok := breakFor(pg); ok {
				store.AddBreak(rec)
			}
		}
		if pg.Number > 0xFFFF {
			continue
		}
		for _, f := range pg.Floats {
			if !f.Positioned() || !f.Object.Auto || f.Object.HeaderFooter {
				continue
			}
			store.AddFloat(pagecache.FloatRecord{
				Page:  uint16(pg.Number),
				Order: uint32(f.Order),
				X:     f.Pos.X,
				Y:     f.Pos.Y,
				W:     f.Size.W,
				H:     f.Size.H,
			})
		}
	}
	return store
}

// breakFor derives the break record for the content at the top of a page,
// descending one level when the page begins with a section frame. A
// continuation frame records its split point; a frame that begins its
// element records a whole-element break.
func breakFor(pg *PageFrame) (pagecache.BreakRecord, bool) {
	if len(pg.Body) == 0 {
		return pagecache.BreakRecord{}, false
	}
	first := pg.Body[0]
	if sf, ok := first.(*SectionFrame); ok {
		if len(sf.Children) == 0 {
			return pagecache.BreakRecord{}, false
		}
		first = sf.Children[0]
	}
	switch f := first.(type) {
	case *TextFrame:
		rec := pagecache.BreakRecord{
			Kind:   pagecache.BreakParagraph,
			Offset: f.Offset(),
			Split:  pagecache.SplitComplete,
		}
		if f.IsContinuation() {
			rec.Split = int32(f.Start)
		}
		return rec, true
	case *TableFrame:
		rec := pagecache.BreakRecord{
			Kind:   pagecache.BreakTable,
			Offset: f.Offset(),
			Split:  pagecache.SplitComplete,
		}
		if f.IsContinuation() {
			rec.Split = int32(f.StartRow)
		}
		return rec, true
	}
	return pagecache.BreakRecord{}, false
}
