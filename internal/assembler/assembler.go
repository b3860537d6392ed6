package assembler

import (
	"sort"

	"intakedoc/internal/domain"
)

// Assemble orders an arbitrarily ordered element collection and builds the
// logical tree: heading contexts nest subsequent nodes, consecutive list
// items group into one block, tables and images are leaves at their
// position. It fails fast on the first structural defect (duplicate index,
// malformed table, unknown kind) naming the offending element index, and
// never produces a partial tree for a malformed document.
func Assemble(elements []domain.Element) ([]Node, error) {
	if len(elements) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	sorted := make([]domain.Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index() < sorted[j].Index()
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Index() == sorted[i-1].Index() {
			return nil, &domain.DuplicateIndexError{Index: sorted[i].Index()}
		}
	}

	b := &treeBuilder{}
	for _, el := range sorted {
		if err := b.add(el); err != nil {
			return nil, err
		}
	}
	return b.root, nil
}

// treeBuilder tracks the open heading contexts and the list block being
// grouped. Index gaps carry no structural meaning; only relative order
// matters.
type treeBuilder struct {
	root  []Node
	open  []*HeadingNode // stack of open heading contexts, outermost first
	list  *ListNode      // current contiguous list block, nil when closed
}

func (b *treeBuilder) add(el domain.Element) error {
	switch e := el.(type) {
	case domain.TextElement:
		if e.IsHeading() {
			b.closeList()
			b.openHeading(e)
			return nil
		}
		if e.IsListItem {
			b.appendListItem(e)
			return nil
		}
		b.closeList()
		b.appendNode(&ParagraphNode{Content: e.Content, ElementIndex: e.ElementIndex})
		return nil

	case domain.TableElement:
		if len(e.Headers) == 0 {
			return &domain.ValidationError{Index: e.ElementIndex, Field: "headers", Reason: "must not be empty"}
		}
		for i, row := range e.Rows {
			if len(row) != len(e.Headers) {
				return &domain.TableStructureError{Index: e.ElementIndex, Row: i, Got: len(row), Want: len(e.Headers)}
			}
		}
		b.closeList()
		b.appendNode(&TableNode{Headers: e.Headers, Rows: e.Rows, ElementIndex: e.ElementIndex})
		return nil

	case domain.ImageElement:
		b.closeList()
		b.appendNode(&ImageNode{ImageID: e.ImageID, Caption: e.Caption, ElementIndex: e.ElementIndex})
		return nil

	default:
		return &domain.UnknownKindError{Index: el.Index(), Kind: string(el.Kind())}
	}
}

// openHeading closes any contexts at the same or a deeper level, then opens
// a new context. Skipped levels are preserved as-authored; the assembler
// never renumbers.
func (b *treeBuilder) openHeading(e domain.TextElement) {
	for len(b.open) > 0 && b.open[len(b.open)-1].Level >= e.Level {
		b.open = b.open[:len(b.open)-1]
	}
	h := &HeadingNode{Level: e.Level, Content: e.Content, ElementIndex: e.ElementIndex}
	b.appendNode(h)
	b.open = append(b.open, h)
}

// appendListItem extends the current list block, or starts one. A block
// closed by an intervening element is never reopened; a later list item
// starts a fresh block.
func (b *treeBuilder) appendListItem(e domain.TextElement) {
	if b.list == nil {
		b.list = &ListNode{}
		b.appendNode(b.list)
	}
	b.list.Items = append(b.list.Items, ListItem{Content: e.Content, ElementIndex: e.ElementIndex})
}

func (b *treeBuilder) closeList() {
	b.list = nil
}

// appendNode attaches n to the innermost open heading context, or to the
// top level when none is open.
func (b *treeBuilder) appendNode(n Node) {
	if len(b.open) == 0 {
		b.root = append(b.root, n)
		return
	}
	top := b.open[len(b.open)-1]
	top.Children = append(top.Children, n)
}
