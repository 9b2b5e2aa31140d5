// Package mddoc imports Markdown documents into the pagina content model.
//
// Parsing uses goldmark with the GFM extensions, so pipe tables, task
// lists, and strikethrough are understood. Headings become paragraphs
// with outline levels, list items become marker paragraphs, tables keep
// their header row, images become floating objects anchored to the
// surrounding flow, and a thematic break forces a page break before the
// next paragraph.
package mddoc

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tsawler/pagina/model"
)

// The parser is initialized once and reused. The configuration never
// changes and the goldmark parser is safe to share; parsing state is
// created per Parse call.
var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func parser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return parserInstance
}

// Open reads a Markdown file into a document.
func Open(filename string) (*model.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return Parse(data), nil
}

// OpenReader parses Markdown from an io.Reader.
func OpenReader(r io.Reader) (*model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return Parse(data), nil
}

// Parse builds a document from Markdown source. Markdown parsing cannot
// fail; malformed constructs degrade to literal text.
func Parse(source []byte) *model.Document {
	root := parser().Parser().Parse(text.NewReader(source))

	b := &builder{source: source, doc: model.NewDocument()}
	ast.Walk(root, b.walk)
	b.finish()
	return b.doc
}

// builder accumulates model nodes while walking the markdown AST. offset
// tracks the flow offset the next appended element will get, which is
// what floating objects anchor to.
type builder struct {
	source []byte
	doc    *model.Document
	offset uint32

	inline  strings.Builder // inline text of the block being assembled
	marker  string          // list marker for the next paragraph
	pending model.ParaStyle // style carried onto the next paragraph (thematic break)

	lists []listState
}

// listState tracks one level of list nesting.
type listState struct {
	ordered bool
	counter int
}

func (b *builder) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {

	// Block nodes.
	case ast.KindHeading:
		if entering {
			b.inline.Reset()
		} else {
			b.heading(n.(*ast.Heading))
		}

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			b.inline.Reset()
		} else {
			b.paragraph()
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			b.codeBlock(n)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindList:
		if entering {
			b.enterList(n.(*ast.List))
		} else {
			b.leaveList()
		}

	case ast.KindListItem:
		if entering {
			b.enterListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			b.pending.BreakBefore = true
		}

	case ast.KindHTMLBlock:
		if entering {
			b.htmlBlock(n.(*ast.HTMLBlock))
			return ast.WalkSkipChildren, nil
		}

	// Inline nodes. Emphasis, links, and strikethrough are transparent:
	// their text children flow into the surrounding block.
	case ast.KindText:
		if entering {
			b.text(n.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			b.inline.Write(n.(*ast.String).Value)
		}

	case ast.KindCodeSpan:
		if entering {
			b.codeSpan(n)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			b.inline.Write(n.(*ast.AutoLink).URL(b.source))
		}

	case ast.KindImage:
		if entering {
			b.image(n.(*ast.Image))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			return ast.WalkSkipChildren, nil
		}

	// GFM extension nodes.
	case extast.KindTable:
		if entering {
			b.table(n)
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if n.(*extast.TaskCheckBox).IsChecked {
				b.inline.WriteString("[x] ")
			} else {
				b.inline.WriteString("[ ] ")
			}
		}
	}

	return ast.WalkContinue, nil
}

// append adds an element to the body and advances the flow offset. A
// pending break attaches to paragraphs only.
func (b *builder) append(node model.Node) {
	if p, ok := node.(*model.Paragraph); ok && b.pending.BreakBefore {
		p.Style.BreakBefore = true
	}
	b.pending = model.ParaStyle{}
	b.doc.Body.Append(node)
	b.offset++
}

func (b *builder) heading(h *ast.Heading) {
	content := b.flushInline()
	if content == "" {
		return
	}
	if h.Level == 1 && b.doc.Meta.Title == "" {
		b.doc.Meta.Title = content
	}
	b.append(&model.Paragraph{Text: content, Style: model.ParaStyle{
		OutlineLevel: h.Level,
		KeepWithNext: true,
	}})
}

func (b *builder) paragraph() {
	content := b.flushInline()
	if content == "" {
		return
	}
	b.append(&model.Paragraph{Text: b.marker + content})
	b.marker = ""
}

// codeBlock keeps the raw text of a fenced or indented code block,
// newlines included, as a single paragraph.
func (b *builder) codeBlock(n ast.Node) {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b.source))
	}
	content := strings.Trim(sb.String(), "\n")
	if strings.TrimSpace(content) == "" {
		return
	}
	b.append(&model.Paragraph{Text: content})
}

// htmlBlock keeps the text content of embedded HTML, tags stripped.
func (b *builder) htmlBlock(n *ast.HTMLBlock) {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(b.source))
	}
	content := strings.Join(strings.Fields(stripTags(sb.String())), " ")
	if content == "" {
		return
	}
	b.append(&model.Paragraph{Text: content})
}

func (b *builder) text(t *ast.Text) {
	b.inline.Write(t.Segment.Value(b.source))
	if t.SoftLineBreak() || t.HardLineBreak() {
		b.inline.WriteByte(' ')
	}
}

// codeSpan joins the literal segments of an inline code span.
func (b *builder) codeSpan(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.inline.Write(t.Segment.Value(b.source))
		case *ast.String:
			b.inline.Write(t.Value)
		}
	}
}

func (b *builder) enterList(l *ast.List) {
	start := 0
	if l.IsOrdered() {
		start = l.Start
	}
	b.lists = append(b.lists, listState{ordered: l.IsOrdered(), counter: start})
}

func (b *builder) leaveList() {
	if len(b.lists) > 0 {
		b.lists = b.lists[:len(b.lists)-1]
	}
}

func (b *builder) enterListItem() {
	if len(b.lists) == 0 {
		return
	}
	top := &b.lists[len(b.lists)-1]
	marker := "• "
	if top.ordered {
		marker = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	}
	b.marker = strings.Repeat("  ", len(b.lists)-1) + marker
}

// image anchors a floating object at the containing block's flow offset.
// Markdown carries no intrinsic dimensions, so the size is left zero for
// the layout engine to resolve from the image data.
func (b *builder) image(n *ast.Image) {
	name := strings.TrimSpace(inlineText(n, b.source))
	if name == "" {
		name = string(n.Destination)
	}
	b.doc.AddObject(&model.FloatObject{
		Name:   name,
		Kind:   model.ObjectImage,
		Anchor: b.offset,
		Auto:   true,
	})
}

// table converts a GFM pipe table; the header row repeats when the table
// splits across pages.
func (b *builder) table(n ast.Node) {
	var rows []model.TableRow
	headers := 0

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case extast.KindTableHeader:
			rows = append(rows, b.tableRow(c))
			headers = 1
		case extast.KindTableRow:
			rows = append(rows, b.tableRow(c))
		}
	}

	if len(rows) == 0 {
		return
	}
	b.append(&model.Table{Rows: rows, HeaderRows: headers})
}

func (b *builder) tableRow(row ast.Node) model.TableRow {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != extast.KindTableCell {
			continue
		}
		cells = append(cells, strings.Join(strings.Fields(inlineText(c, b.source)), " "))
	}
	return model.TableRow{Cells: cells}
}

// flushInline returns the accumulated inline text with whitespace runs
// collapsed, resetting the accumulator.
func (b *builder) flushInline() string {
	content := strings.Join(strings.Fields(b.inline.String()), " ")
	b.inline.Reset()
	return content
}

// finish clamps object anchors into the flow range; a trailing image
// with nothing after it anchors to the last element.
func (b *builder) finish() {
	if b.offset == 0 {
		return
	}
	last := b.offset - 1
	for _, obj := range b.doc.Objects {
		if obj.Anchor > last {
			obj.Anchor = last
		}
	}
}

// inlineText collects the plain text of an inline subtree.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		visit(c)
	}
	return sb.String()
}

// stripTags removes HTML tags, keeping only text content.
func stripTags(html string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
