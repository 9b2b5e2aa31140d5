package model

import "time"

// Document represents a complete word-processing document
type Document struct {
	Meta    Metadata
	Body    *Body
	Objects []*FloatObject
}

// Metadata contains document-level information
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     []string
	Generator    string
	CreationDate time.Time
	ModDate      time.Time
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Body:    NewBody(),
		Objects: make([]*FloatObject, 0),
	}
}

// AddObject anchors a floating object to the document
func (d *Document) AddObject(obj *FloatObject) {
	d.Objects = append(d.Objects, obj)
}

// ObjectsAnchoredIn returns the floating objects whose anchor falls in
// the flow-offset range [from, to), in stacking order of appearance.
func (d *Document) ObjectsAnchoredIn(from, to uint32) []*FloatObject {
	var objs []*FloatObject
	for _, obj := range d.Objects {
		if obj.Anchor >= from && obj.Anchor < to {
			objs = append(objs, obj)
		}
	}
	return objs
}

// ParagraphCount returns the number of flow paragraphs, counting through
// sections.
func (d *Document) ParagraphCount() int {
	return d.countFlow(KindParagraph)
}

// TableCount returns the number of flow tables, counting through sections.
func (d *Document) TableCount() int {
	return d.countFlow(KindTable)
}

func (d *Document) countFlow(kind NodeKind) int {
	n := 0
	for i := 0; i < d.Body.FlowLen(); i++ {
		if d.Body.FlowKind(i) == kind {
			n++
		}
	}
	return n
}
