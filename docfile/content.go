package docfile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tsawler/pagina/model"
)

// XML structures for content.xml. The element vocabulary is small: <p>,
// <table>/<tr>/<td> and <section> under <body>, plus a flat <objects>
// list. Body children are decoded by hand because their order matters
// and encoding/xml collects repeated fields per tag.

type metaXML struct {
	XMLName   xml.Name `xml:"meta"`
	Title     string   `xml:"title,omitempty"`
	Author    string   `xml:"author,omitempty"`
	Subject   string   `xml:"subject,omitempty"`
	Keywords  string   `xml:"keywords,omitempty"`
	Generator string   `xml:"generator,omitempty"`
	Created   string   `xml:"created,omitempty"`
	Modified  string   `xml:"modified,omitempty"`
}

type paragraphXML struct {
	XMLName      xml.Name `xml:"p"`
	BreakBefore  bool     `xml:"break-before,attr,omitempty"`
	BreakAfter   bool     `xml:"break-after,attr,omitempty"`
	PageName     string   `xml:"page,attr,omitempty"`
	Parity       string   `xml:"parity,attr,omitempty"`
	KeepWithNext bool     `xml:"keep-next,attr,omitempty"`
	Outline      int      `xml:"outline,attr,omitempty"`
	Text         string   `xml:",chardata"`
}

type tableXML struct {
	XMLName    xml.Name      `xml:"table"`
	HeaderRows int           `xml:"header-rows,attr,omitempty"`
	Rows       []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []string `xml:"td"`
}

type objectsXML struct {
	XMLName xml.Name    `xml:"objects"`
	Objects []objectXML `xml:"object"`
}

type objectXML struct {
	XMLName    xml.Name    `xml:"object"`
	Name       string      `xml:"name,attr,omitempty"`
	Kind       string      `xml:"kind,attr,omitempty"`
	Anchor     uint32      `xml:"anchor,attr"`
	Auto       bool        `xml:"auto,attr,omitempty"`
	Z          int         `xml:"z,attr,omitempty"`
	Decoration bool        `xml:"decoration,attr,omitempty"`
	X          model.Twips `xml:"x,attr,omitempty"`
	Y          model.Twips `xml:"y,attr,omitempty"`
	W          model.Twips `xml:"w,attr,omitempty"`
	H          model.Twips `xml:"h,attr,omitempty"`
	Media      string      `xml:"media,attr,omitempty"`
}

// marshalContent serializes a document to content.xml. media holds the
// archive entry name carrying each object's data, aligned with
// doc.Objects; empty means the object carries none.
func marshalContent(doc *model.Document, media []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	e := xml.NewEncoder(&buf)
	e.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "document"}}
	if err := e.EncodeToken(root); err != nil {
		return nil, err
	}
	if m := metaFromModel(doc.Meta); m != (metaXML{}) {
		if err := e.Encode(m); err != nil {
			return nil, err
		}
	}
	body := xml.StartElement{Name: xml.Name{Local: "body"}}
	if err := e.EncodeToken(body); err != nil {
		return nil, err
	}
	if err := encodeNodes(e, doc.Body.Nodes()); err != nil {
		return nil, err
	}
	if err := e.EncodeToken(body.End()); err != nil {
		return nil, err
	}
	if len(doc.Objects) > 0 {
		objs := objectsXML{}
		for i, obj := range doc.Objects {
			ref := ""
			if i < len(media) {
				ref = media[i]
			}
			objs.Objects = append(objs.Objects, objectFromModel(obj, ref))
		}
		if err := e.Encode(objs); err != nil {
			return nil, err
		}
	}
	if err := e.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := e.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNodes(e *xml.Encoder, nodes []model.Node) error {
	for _, n := range nodes {
		switch t := n.(type) {
		case *model.Paragraph:
			if err := e.Encode(paragraphFromModel(t)); err != nil {
				return err
			}
		case *model.Table:
			if err := e.Encode(tableFromModel(t)); err != nil {
				return err
			}
		case *model.Section:
			start := xml.StartElement{Name: xml.Name{Local: "section"}}
			if t.Name != "" {
				start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: t.Name})
			}
			if err := e.EncodeToken(start); err != nil {
				return err
			}
			if err := encodeNodes(e, t.Nodes); err != nil {
				return err
			}
			if err := e.EncodeToken(start.End()); err != nil {
				return err
			}
		}
	}
	return nil
}

// unmarshalContent parses content.xml into a document. The second result
// holds each object's media entry name, aligned with the returned
// document's Objects.
func unmarshalContent(data []byte) (*model.Document, []string, error) {
	doc := model.NewDocument()
	var media []string
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing content: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "document":
			// descend into the root
		case "meta":
			var m metaXML
			if err := d.DecodeElement(&m, &start); err != nil {
				return nil, nil, fmt.Errorf("parsing meta: %w", err)
			}
			m.apply(&doc.Meta)
		case "body":
			nodes, err := decodeNodes(d)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing body: %w", err)
			}
			doc.Body.Append(nodes...)
		case "objects":
			var objs objectsXML
			if err := d.DecodeElement(&objs, &start); err != nil {
				return nil, nil, fmt.Errorf("parsing objects: %w", err)
			}
			for _, o := range objs.Objects {
				obj, ref := o.toModel()
				doc.AddObject(obj)
				media = append(media, ref)
			}
		default:
			if err := d.Skip(); err != nil {
				return nil, nil, fmt.Errorf("parsing content: %w", err)
			}
		}
	}
	return doc, media, nil
}

// decodeNodes reads the ordered children of a body or section element up
// to its closing tag. Unknown elements are skipped.
func decodeNodes(d *xml.Decoder) ([]model.Node, error) {
	var nodes []model.Node
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return nil, err
				}
				nodes = append(nodes, p.toModel())
			case "table":
				var tb tableXML
				if err := d.DecodeElement(&tb, &t); err != nil {
					return nil, err
				}
				nodes = append(nodes, tb.toModel())
			case "section":
				sec := &model.Section{}
				for _, a := range t.Attr {
					if a.Name.Local == "name" {
						sec.Name = a.Value
					}
				}
				children, err := decodeNodes(d)
				if err != nil {
					return nil, err
				}
				sec.Nodes = children
				nodes = append(nodes, sec)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return nodes, nil
		}
	}
}

func metaFromModel(m model.Metadata) metaXML {
	out := metaXML{
		Title:     m.Title,
		Author:    m.Author,
		Subject:   m.Subject,
		Keywords:  strings.Join(m.Keywords, ","),
		Generator: m.Generator,
	}
	if !m.CreationDate.IsZero() {
		out.Created = m.CreationDate.Format(time.RFC3339)
	}
	if !m.ModDate.IsZero() {
		out.Modified = m.ModDate.Format(time.RFC3339)
	}
	return out
}

func (m *metaXML) apply(meta *model.Metadata) {
	meta.Title = m.Title
	meta.Author = m.Author
	meta.Subject = m.Subject
	if m.Keywords != "" {
		meta.Keywords = strings.Split(m.Keywords, ",")
		for i, kw := range meta.Keywords {
			meta.Keywords[i] = strings.TrimSpace(kw)
		}
	}
	meta.Generator = m.Generator
	if t, err := time.Parse(time.RFC3339, m.Created); err == nil {
		meta.CreationDate = t
	}
	if t, err := time.Parse(time.RFC3339, m.Modified); err == nil {
		meta.ModDate = t
	}
}

func paragraphFromModel(p *model.Paragraph) paragraphXML {
	return paragraphXML{
		BreakBefore:  p.Style.BreakBefore,
		BreakAfter:   p.Style.BreakAfter,
		PageName:     p.Style.PageName,
		Parity:       parityString(p.Style.Parity),
		KeepWithNext: p.Style.KeepWithNext,
		Outline:      p.Style.OutlineLevel,
		Text:         p.Text,
	}
}

func (p *paragraphXML) toModel() *model.Paragraph {
	return &model.Paragraph{
		Text: p.Text,
		Style: model.ParaStyle{
			BreakBefore:  p.BreakBefore,
			BreakAfter:   p.BreakAfter,
			PageName:     p.PageName,
			Parity:       parseParity(p.Parity),
			KeepWithNext: p.KeepWithNext,
			OutlineLevel: p.Outline,
		},
	}
}

func tableFromModel(t *model.Table) tableXML {
	out := tableXML{HeaderRows: t.HeaderRows}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, tableRowXML{Cells: row.Cells})
	}
	return out
}

func (t *tableXML) toModel() *model.Table {
	out := &model.Table{HeaderRows: t.HeaderRows}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, model.TableRow{Cells: row.Cells})
	}
	return out
}

func objectFromModel(obj *model.FloatObject, media string) objectXML {
	return objectXML{
		Name:       obj.Name,
		Kind:       kindString(obj.Kind),
		Anchor:     obj.Anchor,
		Auto:       obj.Auto,
		Z:          obj.Z,
		Decoration: obj.HeaderFooter,
		X:          obj.Pos.X,
		Y:          obj.Pos.Y,
		W:          obj.Size.W,
		H:          obj.Size.H,
		Media:      media,
	}
}

func (o *objectXML) toModel() (*model.FloatObject, string) {
	return &model.FloatObject{
		Name:         o.Name,
		Kind:         parseKind(o.Kind),
		Anchor:       o.Anchor,
		Auto:         o.Auto,
		Z:            o.Z,
		HeaderFooter: o.Decoration,
		Pos:          model.Point{X: o.X, Y: o.Y},
		Size:         model.Size{W: o.W, H: o.H},
	}, o.Media
}

func parityString(p model.PageParity) string {
	switch p {
	case model.ParityOdd:
		return "odd"
	case model.ParityEven:
		return "even"
	}
	return ""
}

func parseParity(s string) model.PageParity {
	switch s {
	case "odd":
		return model.ParityOdd
	case "even":
		return model.ParityEven
	}
	return model.ParityAny
}

func kindString(k model.ObjectKind) string {
	switch k {
	case model.ObjectShape:
		return "shape"
	case model.ObjectEmbed:
		return "embed"
	}
	return "image"
}

func parseKind(s string) model.ObjectKind {
	switch s {
	case "shape":
		return model.ObjectShape
	case "embed":
		return model.ObjectEmbed
	}
	return model.ObjectImage
}
