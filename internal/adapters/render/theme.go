package render

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Error     = lipgloss.Color("#EF4444") // Red
	Blue      = lipgloss.Color("#60A5FA")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	// Tree node styles by depth
	NodeScheme = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	NodeTop = lipgloss.NewStyle().
		Bold(true)

	NodeSecond = lipgloss.NewStyle().
			Foreground(Secondary)

	NodeThird = lipgloss.NewStyle().
			Foreground(Blue)

	NodeDeep = lipgloss.NewStyle()

	TreeBranch = lipgloss.NewStyle().Foreground(Muted)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Tree glyphs
const (
	BranchMid  = "├── "
	BranchLast = "└── "
	BranchPipe = "│   "
	BranchNone = "    "
)

// NodeStyle returns the style for a concept at the given tree level
func NodeStyle(level int) lipgloss.Style {
	switch level {
	case 0:
		return NodeTop
	case 1:
		return NodeSecond
	case 2:
		return NodeThird
	default:
		return NodeDeep
	}
}
