package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparator joins ancestor labels in ascendance paths
const DefaultSeparator = " :: "

// ListOptions controls how list entries are labelled
type ListOptions struct {
	Ascendance bool   // Prefix each label with its ancestors' labels
	Separator  string // Joins ascendance path segments
	Indent     string // Repeated once per level when Ascendance is off
	PrependID  bool   // "#12 Label"
	AppendID   bool   // "Label (#12)"
	MaxLength  int    // Truncate labels longer than this many runes (0 = no limit)
}

// ListEntry is one selectable option produced by list rendering
type ListEntry struct {
	ID    int64
	Label string
}

// FormatListLabel builds a display label. path holds the ancestor titles
// ordered from the root down to the direct parent.
func FormatListLabel(title string, path []string, level int, id int64, opts ListOptions) string {
	label := title
	if opts.Ascendance && len(path) > 0 {
		sep := opts.Separator
		if sep == "" {
			sep = DefaultSeparator
		}
		label = strings.Join(append(append([]string{}, path...), title), sep)
	}

	label = Truncate(label, opts.MaxLength)

	if !opts.Ascendance && opts.Indent != "" && level > 0 {
		label = strings.Repeat(opts.Indent, level) + label
	}
	if opts.PrependID {
		label = fmt.Sprintf("#%d %s", id, label)
	}
	if opts.AppendID {
		label = fmt.Sprintf("%s (#%d)", label, id)
	}
	return label
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

// JoinPath joins titles with sep, falling back to DefaultSeparator
func JoinPath(titles []string, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.Join(titles, sep)
}
