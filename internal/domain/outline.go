package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// OutlineFormat identifies how depth is encoded in an outline line
type OutlineFormat int

const (
	OutlineTab   OutlineFormat = iota // Depth = count of leading tabs
	OutlineCoded                      // Depth = count of dashes in "01-02-03 label"
)

func (f OutlineFormat) String() string {
	switch f {
	case OutlineTab:
		return "tab"
	case OutlineCoded:
		return "coded"
	default:
		return "unknown"
	}
}

// ParseOutlineFormat parses a format name as accepted on the command line
func ParseOutlineFormat(s string) (OutlineFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tab", "tabs":
		return OutlineTab, nil
	case "coded", "code", "structure":
		return OutlineCoded, nil
	default:
		return 0, fmt.Errorf("unknown outline format: %s", s)
	}
}

var codedLineRegex = regexp.MustCompile(`^([0-9]+(?:-[0-9]+)*)\s+(.+)$`)

// OutlineEntry is one labelled line of an outline
type OutlineEntry struct {
	Line  int    // 1-based source line number
	Label string // Concept label
	Level int    // 0 for top concepts
	Code  string // Structure code for the coded format
}

// OutlineError reports a malformed outline line
type OutlineError struct {
	Line    int
	Message string
}

func (e *OutlineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseOutline turns outline lines into ordered entries. Blank lines are
// skipped. The first entry must be at level 0 and no entry may be more than
// one level deeper than the entry before it.
func ParseOutline(lines []string, format OutlineFormat) ([]OutlineEntry, error) {
	var entries []OutlineEntry
	prevLevel := -1

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry OutlineEntry
		switch format {
		case OutlineTab:
			level := len(line) - len(strings.TrimLeft(line, "\t"))
			entry = OutlineEntry{
				Line:  lineNo,
				Label: strings.TrimSpace(line),
				Level: level,
			}
		case OutlineCoded:
			matches := codedLineRegex.FindStringSubmatch(strings.TrimSpace(line))
			if matches == nil {
				return nil, &OutlineError{Line: lineNo, Message: fmt.Sprintf("expected \"NN-NN label\", got %q", strings.TrimSpace(line))}
			}
			entry = OutlineEntry{
				Line:  lineNo,
				Label: strings.TrimSpace(matches[2]),
				Level: strings.Count(matches[1], "-"),
				Code:  matches[1],
			}
		default:
			return nil, fmt.Errorf("unknown outline format: %d", format)
		}

		if entry.Label == "" {
			return nil, &OutlineError{Line: lineNo, Message: "empty label"}
		}
		if entry.Level > prevLevel+1 {
			return nil, &OutlineError{
				Line:    lineNo,
				Message: fmt.Sprintf("level %d follows level %d", entry.Level, prevLevel),
			}
		}

		prevLevel = entry.Level
		entries = append(entries, entry)
	}

	return entries, nil
}

// SplitOutline splits raw outline text into lines
func SplitOutline(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// FormatOutline renders pre-ordered entries as outline lines that
// ParseOutline reads back to the same labels and levels. Coded lines number
// siblings from 01 within each parent.
func FormatOutline(entries []FlatEntry, format OutlineFormat) ([]string, error) {
	lines := make([]string, 0, len(entries))
	var counters []int

	for _, e := range entries {
		if e.Level > len(counters) {
			return nil, fmt.Errorf("concept %d: level %d follows level %d", e.Concept.ID, e.Level, len(counters)-1)
		}
		if e.Level == len(counters) {
			counters = append(counters, 0)
		}
		counters = counters[:e.Level+1]
		counters[e.Level]++

		switch format {
		case OutlineTab:
			lines = append(lines, strings.Repeat("\t", e.Level)+e.Concept.Title)
		case OutlineCoded:
			parts := make([]string, len(counters))
			for i, n := range counters {
				parts[i] = fmt.Sprintf("%02d", n)
			}
			lines = append(lines, strings.Join(parts, "-")+" "+e.Concept.Title)
		default:
			return nil, fmt.Errorf("unknown outline format: %d", format)
		}
	}
	return lines, nil
}
