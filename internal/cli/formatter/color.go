package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// CompletionColor picks the style for a completion percentage in [0, 100].
func CompletionColor(pct float64) lipgloss.Style {
	switch {
	case pct >= 100:
		return StyleGreen
	case pct >= 50:
		return StyleYellow
	case pct > 0:
		return StyleFg
	default:
		return StyleDim
	}
}

// BehindIndicator returns "● BEHIND" or "● ON TRACK".
func BehindIndicator(behind bool) string {
	if behind {
		return StyleRed.Render("● BEHIND")
	}
	return StyleGreen.Render("● ON TRACK")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len([]rune(upper)))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// TaskTypeBadge returns a colored label for a task type.
func TaskTypeBadge(t domain.TaskType) string {
	switch t {
	case domain.TaskLearn:
		return StylePurple.Render("LEARN")
	case domain.TaskReview:
		return StyleBlue.Render("REVIEW")
	case domain.TaskPractice:
		return StyleYellow.Render("PRACTICE")
	default:
		return StyleDim.Render(string(t))
	}
}
