package layout

import (
	"fmt"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
	"github.com/tsawler/pagina/text"
)

// Stats counts the decisions one pagination pass made.
type Stats struct {
	// CacheBreaks is the number of page boundaries taken from cache records.
	CacheBreaks int
	// FlowBreaks is the number of page boundaries decided by content overflow.
	FlowBreaks int
	// RuleBreaks is the number of page boundaries forced by break attributes
	// and page-description changes.
	RuleBreaks int
	// SkippedHints counts cache records that no longer matched the content.
	SkippedHints int
	// SeededObjects counts floating objects positioned from the cache.
	SeededObjects int
}

// Result is the outcome of a pagination pass.
type Result struct {
	Pages []*PageFrame
	// Estimated is the page count the pass started from: the cache's
	// expected page count when one was supplied, the statistical estimate
	// otherwise. Progress-indicator quality only.
	Estimated int
	Stats     Stats
}

// Paginator divides a document body into pages.
type Paginator struct {
	config Config
}

// NewPaginator creates a paginator with the default configuration.
func NewPaginator() *Paginator {
	return NewPaginatorWithConfig(DefaultConfig())
}

// NewPaginatorWithConfig creates a paginator with a custom configuration.
// A nil measurer falls back to the built-in fixed-pitch metrics.
func NewPaginatorWithConfig(config Config) *Paginator {
	if config.Measurer == nil {
		config.Measurer = text.NewMetrics()
	}
	return &Paginator{config: config}
}

// Config returns the configuration the paginator runs with.
func (p *Paginator) Config() Config {
	return p.config
}

// Paginate lays out doc from scratch, deciding every page boundary from
// flow fitting and break attributes.
func (p *Paginator) Paginate(doc *model.Document) (*Result, error) {
	return p.run(doc, nil)
}

// PaginateWithCache lays out doc consulting store for the page boundaries
// and floating-object positions a previous pass recorded. A nil store
// behaves exactly like Paginate. Hints that no longer match the content
// are skipped silently; they never fail the pass.
func (p *Paginator) PaginateWithCache(doc *model.Document, store *pagecache.Store) (*Result, error) {
	return p.run(doc, store)
}

func (p *Paginator) run(doc *model.Document, store *pagecache.Store) (*Result, error) {
	if doc == nil || doc.Body == nil {
		return nil, fmt.Errorf("paginating: document has no body")
	}
	if p.config.BodyWidth() <= 0 || p.config.BodyHeight() <= 0 {
		return nil, fmt.Errorf("paginating: page %dx%d twips leaves no room inside the margins",
			p.config.PageSize.W, p.config.PageSize.H)
	}
	if p.config.Measurer.LineHeight() <= 0 {
		return nil, fmt.Errorf("paginating: measurer reports line height %d", p.config.Measurer.LineHeight())
	}

	ps := &pass{cfg: p.config, doc: doc, lastAnchor: -1}
	if store != nil {
		ps.cursor = pagecache.NewCursor(store)
		defer ps.cursor.Close()
		ps.version = ps.cursor.Version()
		ps.estimated = store.ExpectedPages()
	} else {
		ps.estimated = EstimatePageCount(doc)
	}

	offset := uint32(0)
	for _, node := range doc.Body.Nodes() {
		offset = ps.placeNode(node, offset, true)
	}
	ps.closePage()
	if len(ps.pages) == 0 {
		// an empty document still has one page
		ps.ensurePage()
		ps.closePage()
	}
	if ps.cursor != nil {
		ps.stats.SkippedHints += ps.cursor.Dropped()
	}
	return &Result{Pages: ps.pages, Estimated: ps.estimated, Stats: ps.stats}, nil
}

// pass holds the mutable state of one pagination run.
type pass struct {
	cfg     Config
	doc     *model.Document
	cursor  *pagecache.Cursor
	version pagecache.Version

	pages    []*PageFrame
	page     *PageFrame // page being filled, nil until content arrives
	used     model.Twips
	pageName string

	sec *sectionRun // open section, nil at top level

	keep  *TextFrame // trailing keep-with-next frame eligible to move
	keepH model.Twips

	breakAfter bool // a break-after attribute awaits the next element

	lastAnchor int64 // highest flow offset whose floats are attached
	estimated  int
	stats      Stats
}

// sectionRun tracks a section while its children are being placed.
type sectionRun struct {
	sec    *model.Section
	offset uint32        // flow offset of the section's first element
	cur    *SectionFrame // frame on the page being filled, nil until content lands
	last   *SectionFrame // most recent frame, for Follow links
}

// placeNode places one body node and returns the next flow offset. consult
// is false for nodes that consume no flow offset of their own: children of
// a section nested inside another section share the inner section's offset
// and get no cache guidance.
func (ps *pass) placeNode(node model.Node, offset uint32, consult bool) uint32 {
	switch el := node.(type) {
	case *model.Paragraph:
		ps.placeParagraph(el, offset, consult)
		return offset + 1
	case *model.Section:
		if ps.sec != nil {
			for _, n := range el.Nodes {
				ps.placeNode(n, offset, false)
			}
			return offset + 1
		}
		return ps.placeSection(el, offset)
	case *model.Table:
		ps.placeTable(el, offset, consult)
		return offset + 1
	}
	return offset
}

// placeSection lays out a section's children. With a cache attached the
// section recurses through a nested cursor over the same store, and the
// outer cursor adopts the inner position when the section is done.
func (ps *pass) placeSection(sec *model.Section, offset uint32) uint32 {
	ps.keep = nil
	outer := ps.cursor
	if outer != nil {
		ps.cursor = outer.Nested()
	}
	ps.sec = &sectionRun{sec: sec, offset: offset}
	for _, node := range sec.Nodes {
		offset = ps.placeNode(node, offset, true)
	}
	ps.sec = nil
	ps.keep = nil
	if outer != nil {
		outer.Adopt(ps.cursor)
		ps.cursor.Close()
		ps.cursor = outer
	}
	return offset
}

func (ps *pass) placeParagraph(para *model.Paragraph, offset uint32, consult bool) {
	ps.ruleBreaks(&para.Style)
	pageStart, splits := ps.consultBreaks(consult, model.KindParagraph, offset, para.RuneLen())
	if pageStart && ps.pageHasContent() {
		ps.keep = nil
		ps.closePage()
		ps.stats.CacheBreaks++
	}

	var prev *TextFrame
	segStart := 0
	for _, split := range splits {
		f := &TextFrame{Para: para, Start: segStart, End: split, offset: offset}
		if prev != nil {
			prev.Follow = f
		}
		ps.appendFrame(f, ps.textHeight(para.Text, segStart, split))
		ps.closePage()
		ps.stats.CacheBreaks++
		prev = f
		segStart = split
	}
	last := ps.flowText(para, offset, segStart, para.RuneLen(), prev)

	ps.keep = nil
	if para.Style.KeepWithNext && ps.sec == nil && last != nil &&
		last.Start == 0 && !ps.pageStartsWith(last) {
		ps.keep = last
		ps.keepH = ps.textHeight(para.Text, last.Start, last.End)
	}
	if para.Style.BreakAfter {
		ps.breakAfter = true
	}
}

func (ps *pass) placeTable(t *model.Table, offset uint32, consult bool) {
	ps.ruleBreaks(nil)
	pageStart, splits := ps.consultBreaks(consult, model.KindTable, offset, t.RowCount())
	if pageStart && ps.pageHasContent() {
		ps.keep = nil
		ps.closePage()
		ps.stats.CacheBreaks++
	}

	var prev *TableFrame
	segStart := 0
	for _, split := range splits {
		f := ps.newTableFrame(t, offset, segStart, split, prev)
		ps.appendFrame(f, ps.tableFrameHeight(f))
		ps.closePage()
		ps.stats.CacheBreaks++
		prev = f
		segStart = split
	}
	ps.flowTable(t, offset, segStart, prev)
	ps.keep = nil
}

// ruleBreaks applies the pending break-after and any break-before or
// page-description attributes of the element about to be placed. An
// explicit break dissolves a pending keep-with-next pairing.
func (ps *pass) ruleBreaks(st *model.ParaStyle) {
	if ps.breakAfter {
		ps.breakAfter = false
		if ps.pageHasContent() {
			ps.keep = nil
			ps.closePage()
			ps.stats.RuleBreaks++
		}
	}
	if st == nil {
		return
	}
	if st.PageName != "" && st.PageName != ps.pageName {
		if ps.pageHasContent() {
			ps.keep = nil
			ps.closePage()
			ps.stats.RuleBreaks++
		}
		ps.pageName = st.PageName
		if ps.page != nil {
			ps.page.Name = st.PageName
		}
		ps.applyParity(st.Parity)
		return
	}
	if st.BreakBefore && ps.pageHasContent() {
		ps.keep = nil
		ps.closePage()
		ps.stats.RuleBreaks++
	}
}

// applyParity forces the next page onto the requested side, inserting one
// blank filler page when the upcoming page number has the wrong parity.
func (ps *pass) applyParity(parity model.PageParity) {
	if parity == model.ParityAny {
		return
	}
	next := len(ps.pages) + 1
	if ps.page != nil {
		next = ps.page.Number
	}
	odd := next%2 == 1
	if (parity == model.ParityOdd) == odd {
		return
	}
	if ps.page != nil {
		// the open page is still empty; it becomes the filler
		ps.page.Blank = true
		ps.closePage()
		return
	}
	ps.pages = append(ps.pages, &PageFrame{Number: next, Name: ps.pageName, Blank: true})
}

// consultBreaks drains the cursor's records for the element at offset and
// sorts them into a leading page-start marker plus ascending interior
// splits. Records that cannot apply to the live element — wrong kind,
// split outside the live range, out of order — are counted as skipped.
func (ps *pass) consultBreaks(consult bool, kind model.NodeKind, offset uint32, length int) (bool, []int) {
	if !consult || ps.cursor == nil {
		return false, nil
	}
	pageStart := false
	var splits []int
	prev := 0
	first := true
	for {
		rec, ok := ps.cursor.Consult(offset)
		if !ok {
			break
		}
		switch {
		case !rec.Kind.Matches(kind):
			ps.stats.SkippedHints++
		case !rec.IsSplit():
			if first {
				pageStart = true
			} else {
				ps.stats.SkippedHints++
			}
		default:
			split := int(rec.Split)
			if split <= prev || split >= length {
				ps.stats.SkippedHints++
				break
			}
			splits = append(splits, split)
			prev = split
		}
		first = false
	}
	return pageStart, splits
}

// flowText places the rune range [from, to) of a paragraph by line
// fitting, splitting onto new pages as the content overflows. It returns
// the last frame placed.
func (ps *pass) flowText(para *model.Paragraph, offset uint32, from, to int, prev *TextFrame) *TextFrame {
	m := ps.cfg.Measurer
	lineH := m.LineHeight()
	spans := text.WrapRange(para.Text, from, to, ps.cfg.BodyWidth(), m)
	i := 0
	for {
		avail := ps.linesAvailable(lineH)
		if avail == 0 {
			if ps.pageHasContent() {
				ps.closePage()
				ps.stats.FlowBreaks++
				if i == 0 && prev == nil {
					ps.carryKeep()
				}
				continue
			}
			// a line taller than the page still gets placed
			avail = 1
		}
		n := len(spans) - i
		if n > avail {
			n = avail
		}
		start := spans[i].Start
		if i == 0 {
			start = from
		}
		end := to
		if i+n < len(spans) {
			end = spans[i+n].Start
		}
		f := &TextFrame{Para: para, Start: start, End: end, offset: offset}
		if prev != nil {
			prev.Follow = f
		}
		ps.appendFrame(f, model.Twips(n)*lineH)
		prev = f
		i += n
		if i >= len(spans) {
			return f
		}
		ps.closePage()
		ps.stats.FlowBreaks++
	}
}

// flowTable places content rows from index from onward by row fitting,
// repeating declared header rows on every continuation page.
func (ps *pass) flowTable(t *model.Table, offset uint32, from int, prev *TableFrame) {
	rows := t.RowCount()
	if rows == 0 || from >= rows {
		if prev == nil {
			// an empty table still contributes a frame to the flow
			ps.appendFrame(ps.newTableFrame(t, offset, 0, rows, nil), 0)
		}
		return
	}
	colW := ps.columnWidth(t)
	i := from
	for {
		headers := 0
		if i > 0 && t.HeaderRows > 0 {
			headers = t.HeaderRows
			if headers > i {
				headers = i
			}
		}
		h := model.Twips(0)
		for r := 0; r < headers; r++ {
			h += ps.rowHeight(t, r, colW)
		}
		avail := ps.cfg.BodyHeight() - ps.used
		placed := 0
		for j := i; j < rows; j++ {
			rh := ps.rowHeight(t, j, colW)
			if h+rh > avail {
				if placed == 0 && !ps.pageHasContent() {
					// an oversized row still gets a page to itself
					h += rh
					placed = 1
				}
				break
			}
			h += rh
			placed++
		}
		if placed == 0 {
			ps.closePage()
			ps.stats.FlowBreaks++
			if i == from && prev == nil {
				ps.carryKeep()
			}
			continue
		}
		f := ps.newTableFrame(t, offset, i, i+placed, prev)
		ps.appendFrame(f, h)
		prev = f
		i += placed
		if i >= rows {
			return
		}
		ps.closePage()
		ps.stats.FlowBreaks++
	}
}

func (ps *pass) newTableFrame(t *model.Table, offset uint32, start, end int, prev *TableFrame) *TableFrame {
	f := &TableFrame{
		Table:        t,
		StartRow:     start,
		EndRow:       end,
		RepeatHeader: start > 0 && t.HeaderRows > 0,
		offset:       offset,
	}
	if prev != nil {
		prev.Follow = f
	}
	return f
}

// carryKeep moves a keep-with-next frame off the page that just closed and
// onto the fresh one, so the paragraph stays with the element that follows
// it.
func (ps *pass) carryKeep() {
	f := ps.keep
	ps.keep = nil
	if f == nil || ps.sec != nil || len(ps.pages) == 0 {
		return
	}
	prevPage := ps.pages[len(ps.pages)-1]
	n := len(prevPage.Body)
	if n < 2 || prevPage.Body[n-1] != ContentFrame(f) {
		return
	}
	prevPage.Body = prevPage.Body[:n-1]
	pg := ps.ensurePage()
	f.page = pg
	pg.Body = append(pg.Body, f)
	ps.used += ps.keepH
}

// pageStartsWith reports whether f is the first content frame on the
// current page, looking through a leading section frame.
func (ps *pass) pageStartsWith(f ContentFrame) bool {
	if ps.page == nil || len(ps.page.Body) == 0 {
		return false
	}
	first := ps.page.Body[0]
	if sf, ok := first.(*SectionFrame); ok && len(sf.Children) > 0 {
		first = sf.Children[0]
	}
	return first == f
}

func (ps *pass) ensurePage() *PageFrame {
	if ps.page == nil {
		ps.page = &PageFrame{Number: len(ps.pages) + 1, Name: ps.pageName}
		ps.used = 0
	}
	return ps.page
}

// closePage finalizes the page being filled: floating objects are matched
// against the cache and positioned, and the page joins the result.
func (ps *pass) closePage() {
	if ps.page == nil {
		return
	}
	ps.finishFloats(ps.page)
	ps.pages = append(ps.pages, ps.page)
	ps.page = nil
	ps.used = 0
	if ps.sec != nil {
		ps.sec.cur = nil
	}
}

func (ps *pass) pageHasContent() bool {
	return ps.page != nil && (len(ps.page.Body) > 0 || len(ps.page.Floats) > 0)
}

func (ps *pass) linesAvailable(lineH model.Twips) int {
	rem := ps.cfg.BodyHeight() - ps.used
	if rem < lineH {
		return 0
	}
	return int(rem / lineH)
}

// appendFrame places a content frame on the current page and attaches any
// floating objects anchored at its offset.
func (ps *pass) appendFrame(f ContentFrame, h model.Twips) {
	ps.attach(f)
	ps.used += h
	ps.anchorFloats(f.Offset())
}

// attach adds the frame to the page body, routing it through the open
// section frame when one is active.
func (ps *pass) attach(f ContentFrame) {
	pg := ps.ensurePage()
	switch t := f.(type) {
	case *TextFrame:
		t.page = pg
	case *TableFrame:
		t.page = pg
	case *SectionFrame:
		t.page = pg
	}
	if ps.sec == nil {
		pg.Body = append(pg.Body, f)
		return
	}
	sf := ps.sec.cur
	if sf == nil {
		sf = &SectionFrame{Section: ps.sec.sec, offset: ps.sec.offset, page: pg}
		if ps.sec.last != nil {
			ps.sec.last.Follow = sf
		}
		ps.sec.cur = sf
		ps.sec.last = sf
		pg.Body = append(pg.Body, sf)
	}
	sf.Children = append(sf.Children, f)
}

// anchorFloats attaches the floating objects anchored at offset to the
// current page. Each offset anchors once, on the page where the element's
// first frame landed.
func (ps *pass) anchorFloats(offset uint32) {
	if int64(offset) <= ps.lastAnchor {
		return
	}
	ps.lastAnchor = int64(offset)
	objs := ps.doc.ObjectsAnchoredIn(offset, offset+1)
	if len(objs) == 0 {
		return
	}
	pg := ps.ensurePage()
	for _, obj := range objs {
		f := &FloatFrame{Object: obj, Pos: Unpositioned, Size: obj.Size, page: pg}
		if !obj.Auto {
			f.Pos = obj.Pos
		}
		pg.Floats = append(pg.Floats, f)
	}
}

// columnWidth divides the body width evenly among the table's columns.
func (ps *pass) columnWidth(t *model.Table) model.Twips {
	cols := t.ColCount()
	if cols < 1 {
		cols = 1
	}
	return ps.cfg.BodyWidth() / model.Twips(cols)
}

// rowHeight is the height of one table row: the tallest cell's wrapped
// line count times the line height.
func (ps *pass) rowHeight(t *model.Table, row int, colW model.Twips) model.Twips {
	m := ps.cfg.Measurer
	lines := 1
	for _, cell := range t.Rows[row].Cells {
		if n := len(text.Wrap(cell, colW, m)); n > lines {
			lines = n
		}
	}
	return model.Twips(lines) * m.LineHeight()
}

// textHeight is the height the rune range [from, to) of a paragraph
// occupies at full body width.
func (ps *pass) textHeight(s string, from, to int) model.Twips {
	spans := text.WrapRange(s, from, to, ps.cfg.BodyWidth(), ps.cfg.Measurer)
	return model.Twips(len(spans)) * ps.cfg.Measurer.LineHeight()
}

// tableFrameHeight is the height a cached table segment occupies,
// duplicated header rows included.
func (ps *pass) tableFrameHeight(f *TableFrame) model.Twips {
	colW := ps.columnWidth(f.Table)
	var h model.Twips
	for r := 0; r < f.HeaderRows(); r++ {
		h += ps.rowHeight(f.Table, r, colW)
	}
	for r := f.StartRow; r < f.EndRow; r++ {
		h += ps.rowHeight(f.Table, r, colW)
	}
	return h
}
