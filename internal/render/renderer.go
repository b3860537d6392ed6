// Package render turns the assembled logical tree into canonical markdown.
// Rendering is a pure function of its input: identical trees always yield
// byte-identical output, which the checksum-keyed document cache relies on.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"intakedoc/internal/assembler"
	"intakedoc/internal/domain"
)

// Options controls rendering decisions the element model does not carry.
type Options struct {
	// OrderedLists renders list blocks as "1. item" instead of "- item".
	OrderedLists bool
}

// Renderer emits canonical markdown from a logical node sequence.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render walks the node sequence and emits a single markdown document with
// exactly one blank line between block-level nodes and a trailing newline.
// An empty node sequence is an implementation defect upstream and yields a
// RenderError rather than an empty document.
func (r *Renderer) Render(nodes []assembler.Node) (string, error) {
	if len(nodes) == 0 {
		return "", &domain.RenderError{Reason: "empty logical tree"}
	}
	var blocks []string
	if err := r.renderNodes(nodes, &blocks); err != nil {
		return "", err
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

func (r *Renderer) renderNodes(nodes []assembler.Node, blocks *[]string) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case *assembler.HeadingNode:
			*blocks = append(*blocks, strings.Repeat("#", node.Level)+" "+node.Content)
			if err := r.renderNodes(node.Children, blocks); err != nil {
				return err
			}
		case *assembler.ParagraphNode:
			*blocks = append(*blocks, escapeBlockStart(node.Content))
		case *assembler.ListNode:
			*blocks = append(*blocks, r.renderList(node))
		case *assembler.TableNode:
			*blocks = append(*blocks, renderTable(node))
		case *assembler.ImageNode:
			*blocks = append(*blocks, renderImage(node))
		default:
			return &domain.RenderError{Reason: fmt.Sprintf("unknown logical node %T", n)}
		}
	}
	return nil
}

func (r *Renderer) renderList(node *assembler.ListNode) string {
	lines := make([]string, 0, len(node.Items))
	for i, item := range node.Items {
		if r.opts.OrderedLists {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, item.Content))
		} else {
			lines = append(lines, "- "+item.Content)
		}
	}
	return strings.Join(lines, "\n")
}

func renderTable(node *assembler.TableNode) string {
	var sb strings.Builder
	writeRow(&sb, node.Headers)
	sb.WriteString("\n")

	sep := make([]string, len(node.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&sb, sep)

	for _, row := range node.Rows {
		sb.WriteString("\n")
		writeRow(&sb, row)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, cell := range cells {
		// A literal pipe would break the table grid.
		sb.WriteString(" " + strings.ReplaceAll(cell, "|", `\|`) + " |")
	}
}

// altEscaper keeps a caption from terminating the alt-text bracket early.
var altEscaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

// renderImage emits a reference derived from the element index and image id
// so asset-download tooling can resolve the bytes without re-running the
// pipeline.
func renderImage(node *assembler.ImageNode) string {
	return fmt.Sprintf("![%s](images/%04d_%s.png)", altEscaper.Replace(node.Caption), node.ElementIndex, node.ImageID)
}

var orderedMarker = regexp.MustCompile(`^(\d+)([.)])(.*)$`)

// escapeBlockStart keeps a paragraph from being misread as a heading, list
// item or blockquote when its content begins with markdown syntax.
func escapeBlockStart(content string) string {
	if m := orderedMarker.FindStringSubmatch(content); m != nil {
		return m[1] + `\` + m[2] + m[3]
	}
	switch {
	case strings.HasPrefix(content, "#"),
		strings.HasPrefix(content, "-"),
		strings.HasPrefix(content, "*"),
		strings.HasPrefix(content, "+"),
		strings.HasPrefix(content, ">"):
		return `\` + content
	}
	return content
}
