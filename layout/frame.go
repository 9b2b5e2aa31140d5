package layout

import "github.com/tsawler/pagina/model"

// ContentFrame is one laid-out piece of body content on a page.
type ContentFrame interface {
	// Offset returns the flow offset of the content the frame presents.
	Offset() uint32
	// Kind reports the kind of content the frame presents.
	Kind() model.NodeKind
}

// PageFrame represents one finished page.
type PageFrame struct {
	Number int    // 1-based page number
	Name   string // page description in effect, "" for the default
	Blank  bool   // parity filler page, carries no content
	Body   []ContentFrame
	Floats []*FloatFrame
}

// TextFrame presents a paragraph, or part of one, on a single page.
type TextFrame struct {
	Para   *model.Paragraph
	Start  int // first rune shown
	End    int // one past the last rune shown
	Follow *TextFrame

	offset uint32
	page   *PageFrame
}

// Offset returns the paragraph's flow offset.
func (f *TextFrame) Offset() uint32 { return f.offset }

// Kind returns KindParagraph.
func (f *TextFrame) Kind() model.NodeKind { return model.KindParagraph }

// Page returns the page the frame was placed on.
func (f *TextFrame) Page() *PageFrame { return f.page }

// IsContinuation reports whether the frame continues a paragraph begun on
// an earlier page.
func (f *TextFrame) IsContinuation() bool { return f.Start > 0 }

// Text returns the rune range of the paragraph this frame shows.
func (f *TextFrame) Text() string {
	runes := []rune(f.Para.Text)
	if f.Start < 0 || f.End > len(runes) || f.Start > f.End {
		return ""
	}
	return string(runes[f.Start:f.End])
}

// TableFrame presents a table, or a run of its rows, on a single page.
type TableFrame struct {
	Table        *model.Table
	StartRow     int  // first content row shown
	EndRow       int  // one past the last content row shown
	RepeatHeader bool // declared header rows are duplicated above StartRow
	Follow       *TableFrame

	offset uint32
	page   *PageFrame
}

// Offset returns the table's flow offset.
func (f *TableFrame) Offset() uint32 { return f.offset }

// Kind returns KindTable.
func (f *TableFrame) Kind() model.NodeKind { return model.KindTable }

// Page returns the page the frame was placed on.
func (f *TableFrame) Page() *PageFrame { return f.page }

// IsContinuation reports whether the frame continues a table begun on an
// earlier page. StartRow is then the number of content rows consumed by
// earlier frames.
func (f *TableFrame) IsContinuation() bool { return f.StartRow > 0 }

// HeaderRows returns how many duplicated header rows the frame shows above
// its content rows. Only continuation frames repeat headers, and never
// rows that earlier frames have not consumed yet.
func (f *TableFrame) HeaderRows() int {
	if !f.RepeatHeader || f.StartRow == 0 {
		return 0
	}
	h := f.Table.HeaderRows
	if h > f.StartRow {
		h = f.StartRow
	}
	return h
}

// Rows returns the rows the frame shows, duplicated header rows first.
// The rows alias the table's rows; frames never copy content.
func (f *TableFrame) Rows() []model.TableRow {
	body := f.Table.Rows[f.StartRow:f.EndRow]
	h := f.HeaderRows()
	if h == 0 {
		return body
	}
	rows := make([]model.TableRow, 0, h+len(body))
	rows = append(rows, f.Table.Rows[:h]...)
	return append(rows, body...)
}

// SectionFrame groups the frames a section contributed to one page. A
// section that crosses pages is presented by one SectionFrame per page,
// linked through Follow.
type SectionFrame struct {
	Section  *model.Section
	Children []ContentFrame
	Follow   *SectionFrame

	offset uint32
	page   *PageFrame
}

// Offset returns the flow offset of the section's first element. The
// section wrapper itself consumes no offset.
func (f *SectionFrame) Offset() uint32 { return f.offset }

// Kind returns KindSection.
func (f *SectionFrame) Kind() model.NodeKind { return model.KindSection }

// Page returns the page the frame was placed on.
func (f *SectionFrame) Page() *PageFrame { return f.page }

// Unpositioned is the sentinel position of a floating object the flow has
// not placed yet. Frames still at the sentinel when their page closes are
// positioned by the float matcher or, failing that, computed normally.
var Unpositioned = model.Point{X: -1 << 30, Y: -1 << 30}

// FloatFrame carries one floating object placed on a page. Positions are
// relative to the page's content-area origin.
type FloatFrame struct {
	Object *model.FloatObject
	Pos    model.Point
	Size   model.Size
	Order  int // stacking position on the page, 0 is the bottom

	seeded bool
	page   *PageFrame
}

// Positioned reports whether the frame has left the Unpositioned sentinel.
func (f *FloatFrame) Positioned() bool { return f.Pos != Unpositioned }

// Seeded reports whether the frame's position came from the layout cache
// rather than from flow computation.
func (f *FloatFrame) Seeded() bool { return f.seeded }

// Page returns the page the frame belongs to.
func (f *FloatFrame) Page() *PageFrame { return f.page }
