package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// FormatCourseList renders courses as a table.
func FormatCourseList(courses []*domain.Course) string {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{TruncID(c.ID), Bold(c.Name), Dim(c.CreatedAt.Format(domain.DayLayout))})
	}
	return RenderTable([]string{"ID", "NAME", "CREATED"}, rows)
}

// CourseOverview is the data shown by "course show".
type CourseOverview struct {
	Course   *domain.Course
	Settings *domain.CourseSettings
	Modules  []*domain.Module
	// LearnStatus holds the collapsed LEARN status per module id.
	LearnStatus map[string]domain.EntryStatus
}

// FormatCourse renders a course with its settings and module tree.
func FormatCourse(o CourseOverview) string {
	var b strings.Builder

	b.WriteString(Bold(o.Course.Name) + "  " + TruncID(o.Course.ID) + "\n")
	if o.Settings != nil {
		b.WriteString(FormatSettings(o.Settings))
	} else {
		b.WriteString(Dim("No settings yet.") + "\n")
	}

	b.WriteString("\n" + Header("Modules") + "\n")
	if len(o.Modules) == 0 {
		b.WriteString(Dim("No modules yet.") + "\n")
		return RenderBox("Course", b.String())
	}

	items := make([]TreeItem, 0, len(o.Modules)+1)
	items = append(items, TreeItem{Title: o.Course.Name})
	for i, m := range o.Modules {
		status := o.LearnStatus[m.ID]
		detail := "not planned"
		if status != "" {
			detail = strings.ToLower(strings.ReplaceAll(string(status), "_", " "))
		}
		items = append(items, TreeItem{
			Title:  fmt.Sprintf("%d. %s", i+1, m.Title),
			Level:  1,
			IsLast: i == len(o.Modules)-1,
			Status: status,
			Detail: detail,
		})
	}
	b.WriteString(RenderTree(items))

	return RenderBox("Course", b.String())
}

// FormatSettings renders course settings as aligned key/value lines.
func FormatSettings(s *domain.CourseSettings) string {
	orientation := "no"
	if s.OrientationCompleted {
		orientation = "yes"
	}
	rows := [][]string{
		{"Week 1 start", s.Week1StartDate.Format(domain.DayLayout)},
		{"Exam", s.ExamDate.Format(domain.DayLayout)},
		{"Weekly hours", fmt.Sprintf("%d-%dh", s.WeeklyHoursMin, s.WeeklyHoursMax)},
		{"Orientation done", orientation},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(Dim(fmt.Sprintf("%-18s", r[0]+":")) + " " + r[1] + "\n")
	}
	return b.String()
}

// FormatEntryList renders raw plan entries as a table.
func FormatEntryList(entries []*domain.PlanEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		bucket := Dim("--")
		if e.SessionBucket != domain.BucketNone {
			bucket = SectionTitle(e.SessionBucket)
		}
		rows = append(rows, []string{
			TruncID(e.ID),
			e.Date.Format(domain.DayLayout),
			TaskTypeBadge(e.TaskType),
			e.Description,
			fmt.Sprintf("%d", e.EstimatedBlocks),
			EntryStatusPill(e.Status),
			bucket,
		})
	}
	return RenderTable([]string{"ID", "DATE", "TYPE", "DESCRIPTION", "BLOCKS", "STATUS", "SESSION"}, rows)
}
