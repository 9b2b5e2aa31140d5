package model

import "unicode/utf8"

// NodeKind represents the type of a body content node
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindParagraph
	KindTable
	KindSection
)

func (k NodeKind) String() string {
	switch k {
	case KindParagraph:
		return "Paragraph"
	case KindTable:
		return "Table"
	case KindSection:
		return "Section"
	default:
		return "Unknown"
	}
}

// Node is the interface for all body content nodes
type Node interface {
	Kind() NodeKind
}

// PageParity constrains which page a page-description change may start on.
type PageParity int

const (
	ParityAny PageParity = iota
	ParityOdd
	ParityEven
)

// ParaStyle holds paragraph-level attributes that affect pagination.
type ParaStyle struct {
	// BreakBefore forces a page break before the paragraph.
	BreakBefore bool
	// BreakAfter forces a page break after the paragraph.
	BreakAfter bool
	// PageName requests a page-description change starting at this
	// paragraph; the empty string means no change.
	PageName string
	// Parity constrains the page a PageName change starts on; blank
	// filler pages are inserted to satisfy it.
	Parity PageParity
	// KeepWithNext keeps the paragraph on the same page as the next
	// body element when possible.
	KeepWithNext bool
	// OutlineLevel is the heading level (1-9) or 0 for body text.
	OutlineLevel int
}

// Paragraph represents a paragraph of text
type Paragraph struct {
	Text  string
	Style ParaStyle
}

func (p *Paragraph) Kind() NodeKind { return KindParagraph }

// RuneLen returns the paragraph length in runes. Split offsets in the
// layout cache are rune offsets into the paragraph text.
func (p *Paragraph) RuneLen() int {
	return utf8.RuneCountInString(p.Text)
}

// TableRow represents one table row
type TableRow struct {
	Cells []string
}

// Table represents a table with rows of cells
type Table struct {
	Rows []TableRow
	// HeaderRows is the number of leading rows repeated at the top of
	// every continuation frame when the table splits across pages.
	HeaderRows int
}

func (t *Table) Kind() NodeKind { return KindTable }

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the widest row
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}
	return cols
}

// Cell returns the cell text at the given row and column, or the empty
// string when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if col < 0 || col >= len(t.Rows[row].Cells) {
		return ""
	}
	return t.Rows[row].Cells[col]
}

// SetCell sets the cell text at the given row and column, growing the
// row as needed.
func (t *Table) SetCell(row, col int, text string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	for len(t.Rows[row].Cells) <= col {
		t.Rows[row].Cells = append(t.Rows[row].Cells, "")
	}
	t.Rows[row].Cells[col] = text
}

// Section represents a named document region. Sections nest exactly one
// level deep: their nodes are paragraphs and tables only.
type Section struct {
	Name  string
	Nodes []Node
}

func (s *Section) Kind() NodeKind { return KindSection }
