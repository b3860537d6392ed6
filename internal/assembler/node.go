// Package assembler validates a raw element collection and builds the
// nested logical tree consumed by the markdown renderer.
package assembler

// Node is one node of the assembled logical tree. The set of
// implementations is closed; each node is owned exclusively by the single
// rendering pass that consumes it.
type Node interface {
	isNode()
}

// HeadingNode is a heading and the subtree of nodes it governs.
type HeadingNode struct {
	Level        int
	Content      string
	ElementIndex int
	Children     []Node
}

// ParagraphNode is a body-text paragraph.
type ParagraphNode struct {
	Content      string
	ElementIndex int
}

// ListItem is one item of a contiguous list block.
type ListItem struct {
	Content      string
	ElementIndex int
}

// ListNode is a contiguous run of list items. Ordered-versus-unordered is
// decided at render time, not by the element model.
type ListNode struct {
	Items []ListItem
}

// TableNode is a rectangular table leaf.
type TableNode struct {
	Headers      []string
	Rows         [][]string
	ElementIndex int
}

// ImageNode is an image reference leaf.
type ImageNode struct {
	ImageID      string
	Caption      string
	ElementIndex int
}

func (*HeadingNode) isNode()   {}
func (*ParagraphNode) isNode() {}
func (*ListNode) isNode()      {}
func (*TableNode) isNode()     {}
func (*ImageNode) isNode()     {}
