package model

// Body is the ordered sequence of top-level content nodes in a document.
//
// Flow offsets number the paragraphs and tables in document order,
// descending one level into sections; the section wrapper itself
// consumes no offset. The layout-reconstruction cache addresses content
// exclusively through flow offsets.
type Body struct {
	nodes []Node
}

// NewBody creates an empty body
func NewBody() *Body {
	return &Body{nodes: make([]Node, 0)}
}

// Append adds nodes to the end of the body
func (b *Body) Append(nodes ...Node) {
	b.nodes = append(b.nodes, nodes...)
}

// Nodes returns the top-level nodes in document order. Callers must not
// modify the returned slice.
func (b *Body) Nodes() []Node {
	return b.nodes
}

// Len returns the number of top-level nodes
func (b *Body) Len() int {
	return len(b.nodes)
}

// FlowLen returns the number of flow elements (paragraphs and tables),
// counting through one level of section nesting.
func (b *Body) FlowLen() int {
	n := 0
	for _, node := range b.nodes {
		if sec, ok := node.(*Section); ok {
			n += len(sec.Nodes)
			continue
		}
		n++
	}
	return n
}

// FlowNode returns the flow element at the given flow offset, or nil
// when the offset is out of range.
func (b *Body) FlowNode(offset int) Node {
	if offset < 0 {
		return nil
	}
	i := 0
	for _, node := range b.nodes {
		if sec, ok := node.(*Section); ok {
			if offset < i+len(sec.Nodes) {
				return sec.Nodes[offset-i]
			}
			i += len(sec.Nodes)
			continue
		}
		if i == offset {
			return node
		}
		i++
	}
	return nil
}

// FlowKind returns the kind of the flow element at the given offset, or
// KindUnknown when the offset is out of range.
func (b *Body) FlowKind(offset int) NodeKind {
	node := b.FlowNode(offset)
	if node == nil {
		return KindUnknown
	}
	return node.Kind()
}
