// Package render prints thesaurus query results for a terminal
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"thesaurus/internal/domain"
)

// Printer writes styled output. A plain printer writes the same layout
// without any styling.
type Printer struct {
	w       io.Writer
	plain   bool
	ShowIDs bool
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, plain bool) *Printer {
	return &Printer{w: w, plain: plain, ShowIDs: true}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p *Printer) label(c *domain.Concept, s lipgloss.Style) string {
	text := p.style(s, c.Title)
	if p.ShowIDs {
		text += " " + p.style(MutedText, fmt.Sprintf("#%d", c.ID))
	}
	return text
}

// Title prints a heading line
func (p *Printer) Title(title string) {
	fmt.Fprintln(p.w, p.style(Title, title))
}

// Message prints a result message, styled by outcome
func (p *Printer) Message(msg string, isError bool) {
	if msg == "" {
		return
	}
	if isError {
		fmt.Fprintln(p.w, p.style(ErrorMsg, msg))
		return
	}
	fmt.Fprintln(p.w, p.style(Success, msg))
}

// LabelValue prints a "label: value" pair
func (p *Printer) LabelValue(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.style(Label, label+":"), value)
}

// Concepts prints one concept per line
func (p *Printer) Concepts(concepts []*domain.Concept) {
	if len(concepts) == 0 {
		fmt.Fprintln(p.w, p.style(MutedText, "No results."))
		return
	}
	for _, c := range concepts {
		fmt.Fprintln(p.w, p.label(c, NodeDeep))
	}
}

// Flat prints level-annotated entries indented by level
func (p *Printer) Flat(entries []domain.FlatEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.style(MutedText, "No results."))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", e.Level), p.label(e.Concept, NodeStyle(e.Level)))
	}
}

// List prints rendered list entries
func (p *Printer) List(entries []domain.ListEntry) {
	for _, e := range entries {
		fmt.Fprintln(p.w, e.Label)
	}
}

// Tree prints nested trees with branch glyphs. When scheme is set it is
// printed first as the common root.
func (p *Printer) Tree(scheme *domain.Concept, trees []*domain.TreeNode) {
	if scheme != nil {
		fmt.Fprintln(p.w, p.label(scheme, NodeScheme))
	}
	for i, t := range trees {
		p.node(t, "", i == len(trees)-1, 0)
	}
}

func (p *Printer) node(n *domain.TreeNode, prefix string, last bool, level int) {
	glyph, next := BranchMid, BranchPipe
	if last {
		glyph, next = BranchLast, BranchNone
	}
	fmt.Fprintf(p.w, "%s%s\n", p.style(TreeBranch, prefix+glyph), p.label(n.Concept, NodeStyle(level)))
	for i, child := range n.Children {
		p.node(child, prefix+next, i == len(n.Children)-1, level+1)
	}
}
