// Package model provides the content model for word-processing documents.
//
// This package defines the user-facing data structures that represent a
// document before layout: an ordered body of content nodes, anchored
// floating objects, and document metadata. The layout engine consumes
// these types and produces page frames; importers produce them from
// external formats.
//
// # Document Structure
//
// The [Document] type represents a complete document with metadata, a
// [Body] of content nodes, and anchored [FloatObject] values:
//
//	doc := model.NewDocument()
//	doc.Meta.Title = "My Document"
//	doc.Body.Append(&model.Paragraph{Text: "Hello"})
//
// # Nodes
//
// All body content implements the [Node] interface. The concrete types are:
//
//   - [Paragraph] - a run of text with paragraph-level attributes
//   - [Table] - rows of cells with optional repeated header rows
//   - [Section] - a named region containing one level of nested nodes
//
// # Flow Offsets
//
// Layout and the layout-reconstruction cache address content by flow
// offset: the position of a paragraph or table relative to the first
// body element, in document order, descending one level into sections.
// Section wrappers consume no offset of their own, so offsets stay
// stable when surrounding non-body content is reorganized.
//
// # Geometry
//
// All geometry is integral, in twips (1/20 point): [Twips], [Point],
// [Size], with conversion helpers from points, inches, and pixels.
package model
