// Package htmldoc imports HTML documents into the pagina content model.
//
// Headings become paragraphs with outline levels, lists become marker
// paragraphs, tables keep their header rows, images become floating
// objects anchored to the surrounding flow, and top-level <section> or
// <article> elements become model sections. Navigation chrome is left
// out (see boilerplate.go).
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/tsawler/pagina/model"
)

// Open reads an HTML file into a document. The encoding is sniffed from
// the content (BOM, meta tags, UTF-8 fallback).
func Open(filename string) (*model.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader, sniffing the encoding.
func OpenReader(r io.Reader) (*model.Document, error) {
	cr, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return parse(cr)
}

// OpenReaderCharset parses HTML from an io.Reader decoded with an
// explicit encoding label ("windows-1252", "iso-8859-5", ...), for
// sources whose declared charset is known to be wrong.
func OpenReaderCharset(r io.Reader, label string) (*model.Document, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	return parse(enc.NewDecoder().Reader(r))
}

func parse(r io.Reader) (*model.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	b := &builder{doc: model.NewDocument()}
	b.head(root)
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	b.walk(body)
	b.finish()
	return b.doc, nil
}

// builder accumulates model nodes while walking the DOM. offset tracks
// the flow offset the next appended element will get, which is what
// floating objects anchor to.
type builder struct {
	doc     *model.Document
	sec     *model.Section // open top-level section, nil otherwise
	offset  uint32
	pending model.ParaStyle // style carried onto the next paragraph (<hr>)
}

func (b *builder) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if skipElement(n.Data) || isBoilerplate(n) {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.heading(n)
			return
		case "p", "blockquote":
			b.paragraphFrom(n)
			return
		case "pre":
			b.preformatted(n)
			return
		case "ul", "ol":
			b.list(n, 0)
			return
		case "table":
			b.table(n)
			return
		case "img":
			b.image(n)
			return
		case "hr":
			b.pending.BreakBefore = true
			return
		case "div":
			if !isBlockContainer(n) {
				b.paragraphFrom(n)
				return
			}
		case "section", "article":
			if b.sec == nil {
				b.section(n)
				return
			}
			// nested sections flatten into the open one
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

// append adds an element to the open section or the body and advances
// the flow offset. A pending break attaches to paragraphs only.
func (b *builder) append(node model.Node) {
	if p, ok := node.(*model.Paragraph); ok && b.pending.BreakBefore {
		p.Style.BreakBefore = true
	}
	b.pending = model.ParaStyle{}
	if b.sec != nil {
		b.sec.Nodes = append(b.sec.Nodes, node)
	} else {
		b.doc.Body.Append(node)
	}
	b.offset++
}

func (b *builder) heading(n *html.Node) {
	b.collectImages(n)
	text := textContent(n)
	if text == "" {
		return
	}
	level := int(n.Data[1] - '0')
	b.append(&model.Paragraph{Text: text, Style: model.ParaStyle{
		OutlineLevel: level,
		KeepWithNext: true,
	}})
}

func (b *builder) paragraphFrom(n *html.Node) {
	b.collectImages(n)
	text := textContent(n)
	if text == "" {
		return
	}
	b.append(&model.Paragraph{Text: text})
}

// preformatted keeps the raw text of a <pre> block, newlines included.
func (b *builder) preformatted(n *html.Node) {
	text := strings.Trim(rawText(n), "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	b.append(&model.Paragraph{Text: text})
}

func (b *builder) list(n *html.Node, depth int) {
	ordered := n.Data == "ol"
	idx := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if text := directText(c); text != "" {
			marker := "• "
			if ordered {
				marker = fmt.Sprintf("%d. ", idx)
				idx++
			}
			b.append(&model.Paragraph{Text: strings.Repeat("  ", depth) + marker + text})
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				b.list(g, depth+1)
			}
		}
	}
}

func (b *builder) table(n *html.Node) {
	var rows []model.TableRow
	firstAllTH := false
	headers := 0

	var scan func(n *html.Node, inHead bool)
	scan = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				scan(c, true)
			case "tbody", "tfoot":
				scan(c, false)
			case "tr":
				row, allTH := tableRow(c)
				if len(row.Cells) == 0 {
					continue
				}
				if len(rows) == 0 {
					firstAllTH = allTH
				}
				// only contiguous leading thead rows repeat on page breaks
				if inHead && headers == len(rows) {
					headers++
				}
				rows = append(rows, row)
			}
		}
	}
	scan(n, false)

	if len(rows) == 0 {
		return
	}
	if headers == 0 && firstAllTH {
		headers = 1
	}
	b.append(&model.Table{Rows: rows, HeaderRows: headers})
}

func tableRow(tr *html.Node) (model.TableRow, bool) {
	var row model.TableRow
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data != "th" {
			allTH = false
		}
		row.Cells = append(row.Cells, textContent(c))
	}
	return row, allTH
}

func (b *builder) section(n *html.Node) {
	sec := &model.Section{Name: sectionName(n)}
	b.sec = sec
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
	b.sec = nil
	if len(sec.Nodes) > 0 {
		b.doc.Body.Append(sec)
	}
}

// sectionName names a section from its id attribute, falling back to the
// first heading inside it.
func sectionName(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		return id
	}
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if h := findElement(n, tag); h != nil {
			return textContent(h)
		}
	}
	return ""
}

func (b *builder) image(n *html.Node) {
	name := attr(n, "alt")
	if name == "" {
		name = attr(n, "src")
	}
	w := pixelAttr(n, "width")
	h := pixelAttr(n, "height")
	b.doc.AddObject(&model.FloatObject{
		Name:   name,
		Kind:   model.ObjectImage,
		Anchor: b.offset,
		Auto:   true,
		Size:   model.Size{W: model.FromPixels(w, 0), H: model.FromPixels(h, 0)},
	})
}

// collectImages picks up <img> descendants of a block before the block
// itself is appended, so they anchor to the block's own flow offset.
func (b *builder) collectImages(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c.Data == "img" {
				b.image(c)
				continue
			}
			if skipElement(c.Data) {
				continue
			}
		}
		b.collectImages(c)
	}
}

// head pulls document metadata out of <head>.
func (b *builder) head(root *html.Node) {
	head := findElement(root, "head")
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			b.doc.Meta.Title = textContent(c)
		case "meta":
			name, content := "", ""
			for _, a := range c.Attr {
				switch a.Key {
				case "name", "property":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if content == "" {
				continue
			}
			switch strings.ToLower(name) {
			case "author":
				b.doc.Meta.Author = content
			case "description":
				b.doc.Meta.Subject = content
			case "keywords":
				for _, kw := range strings.Split(content, ",") {
					if kw = strings.TrimSpace(kw); kw != "" {
						b.doc.Meta.Keywords = append(b.doc.Meta.Keywords, kw)
					}
				}
			}
		}
	}
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

// skipElement returns true for elements whose content never reaches the
// imported document.
func skipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

// isBlockContainer returns true if the element holds block-level children
// and should be traversed rather than flattened to text.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6",
				"blockquote", "pre", "article", "section":
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// textContent extracts the text of a node and its descendants with
// whitespace runs collapsed to single spaces.
func textContent(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	rawTextInto(n, &sb)
	return sb.String()
}

func rawTextInto(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if skipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			sb.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rawTextInto(c, sb)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			sb.WriteString(" ")
		}
	}
}

// directText gets a node's text excluding nested block elements, for
// list items that contain sublists.
func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		if c.Type == html.ElementNode {
			switch c.Data {
			case "ul", "ol", "div", "p", "table", "blockquote":
				// block children are handled separately
			default:
				sb.WriteString(rawText(c))
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func pixelAttr(n *html.Node, key string) int {
	v := attr(n, key)
	if v == "" {
		return 0
	}
	px, err := strconv.Atoi(strings.TrimSuffix(v, "px"))
	if err != nil || px < 0 {
		return 0
	}
	return px
}
