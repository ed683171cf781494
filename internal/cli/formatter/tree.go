package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Status domain.EntryStatus
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree. Completed items get a green
// check, in-progress ones an amber arrow, and details are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type line struct {
		content string
		badge   string
	}
	lines := make([]line, len(items))
	width := 0

	for i, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch item.Status {
		case domain.StatusCompleted:
			title = StyleGreen.Render("✔ ") + Dim(title)
		case domain.StatusInProgress:
			title = StyleYellowBold.Render("▶ " + title)
		case domain.StatusSkipped:
			title = Dim("⊘ " + title)
		}

		lines[i].content = prefix + title
		if item.Detail != "" {
			lines[i].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		width = max(width, lipgloss.Width(lines[i].content))
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.content)
		if l.badge != "" {
			b.WriteString(strings.Repeat(" ", width-lipgloss.Width(l.content)) + "  " + l.badge)
		}
		b.WriteString("\n")
	}
	return b.String()
}
