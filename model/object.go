package model

// ObjectKind represents the type of a floating object
type ObjectKind int

const (
	ObjectImage ObjectKind = iota
	ObjectShape
	ObjectEmbed
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectImage:
		return "Image"
	case ObjectShape:
		return "Shape"
	case ObjectEmbed:
		return "Embed"
	default:
		return "Unknown"
	}
}

// FloatObject represents an anchored floating object: an image, shape,
// or embedded object that is drawn over or beside the text flow rather
// than inside it.
type FloatObject struct {
	Name string
	Kind ObjectKind

	// Anchor is the flow offset of the body element the object is
	// anchored to; the object is placed on whichever page that element
	// lands on.
	Anchor uint32

	// Size is the object's natural extent.
	Size Size

	// Auto marks flow-determined positioning: the layout engine computes
	// the position (and the layout cache may seed it). When false, Pos
	// holds a user-fixed page-relative position that layout must honor.
	Auto bool

	// Pos is the user-fixed position; ignored when Auto is set.
	Pos Point

	// Z is the stacking order among objects on the same page; the cache
	// records objects in this order.
	Z int

	// HeaderFooter marks objects anchored in page decoration rather than
	// the body flow; these are never recorded in the layout cache.
	HeaderFooter bool

	// Data optionally holds the object's source bytes (image data).
	Data []byte
}
