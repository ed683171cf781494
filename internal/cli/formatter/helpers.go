package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDay describes day relative to today in whole days.
func RelativeDay(day, today time.Time) string {
	days := int(math.Round(domain.Day(day).Sub(domain.Day(today)).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// ExamCountdown colors the days left before the exam by urgency.
func ExamCountdown(days int) string {
	var text string
	switch {
	case days < 0:
		return StyleDim.Render("exam passed")
	case days == 0:
		text = "exam today"
	case days == 1:
		text = "1 day to exam"
	default:
		text = fmt.Sprintf("%d days to exam", days)
	}
	switch {
	case days <= 7:
		return StyleRed.Render(text)
	case days <= 21:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// ShortDate formats a day like "Mon Jan 8".
func ShortDate(t time.Time) string {
	return t.Format("Mon Jan 2")
}

// EntryStatusPill returns a colored status indicator for an entry or task.
func EntryStatusPill(status domain.EntryStatus) string {
	switch status {
	case domain.StatusPending:
		return StyleBlue.Render("○ Pending")
	case domain.StatusInProgress:
		return StyleYellow.Render("● In Progress")
	case domain.StatusCompleted:
		return StyleGreen.Render("✔ Done")
	case domain.StatusSkipped:
		return StyleDim.Render("⊘ Skipped")
	default:
		return StyleDim.Render(string(status))
	}
}

// Checkbox renders the compact status mark used in checklists.
func Checkbox(status domain.EntryStatus) string {
	switch status {
	case domain.StatusCompleted:
		return StyleGreen.Render("[x]")
	case domain.StatusInProgress:
		return StyleYellowBold.Render("[>]")
	case domain.StatusSkipped:
		return StyleDim.Render("[-]")
	default:
		return "[ ]"
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatBlocks renders a block count with its duration, e.g. "3 blocks (1h 15m)".
func FormatBlocks(blocks int) string {
	unit := "blocks"
	if blocks == 1 {
		unit = "block"
	}
	return fmt.Sprintf("%d %s (%s)", blocks, unit, FormatMinutes(blocks*domain.BlockMinutes))
}
