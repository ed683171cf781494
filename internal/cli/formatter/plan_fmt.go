package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

const weekProgressBarWidth = 12

// FormatWeeks renders the weekly plan. moduleTitles maps module ids to titles
// and may be nil. The week containing today is marked.
func FormatWeeks(resp *app.PlanResponse, moduleTitles map[string]string, today time.Time) string {
	var b strings.Builder

	days := int(domain.Day(resp.ExamDate).Sub(domain.Day(today)).Hours() / 24)
	fmt.Fprintf(&b, "%s → %s  %s\n",
		resp.Week1StartDate.Format(domain.DayLayout),
		resp.ExamDate.Format(domain.DayLayout),
		ExamCountdown(days))
	b.WriteString("Overall " + RenderProgress(resp.CompletionPct(), weekProgressBarWidth) + "\n")

	if len(resp.Weeks) == 0 {
		b.WriteString("\n" + Dim("No plan entries yet.") + "\n")
	}

	current := resp.CurrentWeek(today)
	for i := range resp.Weeks {
		w := &resp.Weeks[i]
		b.WriteString("\n")
		b.WriteString(weekHeading(w, current == w))
		b.WriteString("\n")
		if len(w.Tasks) == 0 {
			b.WriteString(Dim("  nothing planned") + "\n")
			continue
		}
		b.WriteString(RenderTable(
			[]string{"STATUS", "TYPE", "TASK", "MODULE", "TIME"},
			taskRows(w.Tasks, moduleTitles),
		))
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, warn := range resp.Warnings {
			b.WriteString(StyleYellow.Render("  WARNING: "+warn.Error()) + "\n")
		}
	}

	return RenderBox("Study plan", b.String())
}

func weekHeading(w *scheduler.WeekSummary, current bool) string {
	title := fmt.Sprintf("Week %d", w.WeekNumber)
	if w.IsExamWeek {
		title += " · exam"
	}
	line := fmt.Sprintf("%s  %s  %s  %d/%d tasks",
		StyleHeader.Render(strings.ToUpper(title)),
		Dim(ShortDate(w.StartDate)+" - "+ShortDate(w.EndDate)),
		RenderProgress(w.CompletionPct, weekProgressBarWidth),
		w.CompletedTasks, w.TotalTasks)
	if current {
		line += "  " + StyleYellowBold.Render("◀ this week")
	}
	return line
}

func taskRows(tasks []scheduler.TaskView, moduleTitles map[string]string) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		module := Dim("--")
		if t.ModuleID != "" {
			if title, ok := moduleTitles[t.ModuleID]; ok {
				module = title
			} else {
				module = TruncID(t.ModuleID)
			}
		}
		rows = append(rows, []string{
			EntryStatusPill(t.Status),
			TaskTypeBadge(t.TaskType),
			t.Description,
			module,
			FormatMinutes(t.EstimatedBlocks * domain.BlockMinutes),
		})
	}
	return rows
}

// SectionTitle names a session section for display.
func SectionTitle(bucket domain.SessionBucket) string {
	switch bucket {
	case domain.BucketSessionCourte:
		return "Short session"
	case domain.BucketSessionLongue:
		return "Long session"
	case domain.BucketSessionCourteSupp:
		return "Extra short session"
	case domain.BucketSessionLongueSupp:
		return "Extra long session"
	default:
		return string(bucket)
	}
}

// FormatToday renders the day's sections as a checklist.
func FormatToday(resp *app.TodaysPlanResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(resp.Date.Format("Monday, January 2")), Dim(FormatBlocks(resp.TotalBlocks)))
	if resp.Phase1Module != nil {
		b.WriteString("Phase 1: " + StylePurple.Render(resp.Phase1Module.Title) + "\n")
	}

	if resp.TotalBlocks == 0 {
		b.WriteString("\n" + Dim("Nothing planned today.") + "\n")
		return RenderBox("Today", b.String())
	}

	for _, bucket := range scheduler.SectionOrder {
		entries := resp.Section(bucket)
		if len(entries) == 0 {
			continue
		}
		b.WriteString("\n" + Header(SectionTitle(bucket)) + "\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "%s %s %s %s\n",
				Checkbox(e.Status),
				TaskTypeBadge(e.TaskType),
				e.Description,
				Dim(FormatMinutes(e.Minutes())+"  "+TruncID(e.ID)))
		}
	}

	return RenderBox("Today", b.String())
}

// FormatBehind renders the behind-schedule check.
func FormatBehind(resp *app.BehindScheduleResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", BehindIndicator(resp.IsBehind), ExamCountdown(resp.DaysUntilExam))
	if resp.Warning != nil {
		b.WriteString("\n" + StyleRed.Render(*resp.Warning) + "\n")
	}

	if len(resp.OverdueTasks) > 0 {
		b.WriteString("\n" + Header("Overdue modules") + "\n")
		for _, t := range resp.OverdueTasks {
			fmt.Fprintf(&b, "  %s %s  %s\n",
				EntryStatusPill(t.Status), t.Description,
				Dim(RelativeDay(t.FirstDate, resp.Today)))
		}
	}

	if len(resp.Suggestions) > 0 {
		b.WriteString("\n" + Header("Suggestions") + "\n")
		for _, s := range resp.Suggestions {
			b.WriteString("  • " + s + "\n")
		}
	}

	if !resp.IsBehind && resp.UnlearnedModules == 0 {
		b.WriteString("\n" + Dim("Every module of the past weeks is learned.") + "\n")
	}

	return RenderBox("Schedule", b.String())
}
