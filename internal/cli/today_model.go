package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/optimistic"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// todayRow is one line of the checklist: a section heading or an entry.
type todayRow struct {
	heading string
	entry   domain.PlanEntry
	key     string
}

func (r todayRow) isHeading() bool { return r.heading != "" }

// todayLoadedMsg carries a fresh copy of the day's plan.
type todayLoadedMsg struct {
	resp *app.TodaysPlanResponse
	err  error
}

// commitResultMsg reports how a background status write settled.
type commitResultMsg struct {
	key      string
	reverted bool
	err      error
}

type todayKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Start  key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k todayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Start, k.Reload, k.Quit}
}

func (k todayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

func defaultTodayKeys() todayKeyMap {
	return todayKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle done")),
		Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// todayModel is the interactive checklist for one day. A toggle shows up at
// once through the ledger; the write runs in the background and is reverted
// on the screen if the store refuses it.
type todayModel struct {
	ctx      context.Context
	plans    app.LoadTodaysPlanUseCase
	status   app.SetTaskStatusUseCase
	courseID string
	date     time.Time

	ledger    *optimistic.Ledger
	committer *optimistic.Committer

	resp    *app.TodaysPlanResponse
	rows    []todayRow
	cursor  int
	loading bool
	notice  string
	err     error

	keys todayKeyMap
	help help.Model
}

func newTodayModel(ctx context.Context, plans app.LoadTodaysPlanUseCase, status app.SetTaskStatusUseCase, courseID string, date time.Time) *todayModel {
	return &todayModel{
		ctx:       ctx,
		plans:     plans,
		status:    status,
		courseID:  courseID,
		date:      date,
		ledger:    optimistic.NewLedger(nil),
		committer: optimistic.NewCommitter(),
		loading:   true,
		keys:      defaultTodayKeys(),
		help:      help.New(),
	}
}

func (m *todayModel) Init() tea.Cmd {
	return m.load()
}

func (m *todayModel) load() tea.Cmd {
	ctx, plans, courseID, date := m.ctx, m.plans, m.courseID, m.date
	return func() tea.Msg {
		resp, err := plans.LoadTodaysPlan(ctx, courseID, date)
		return todayLoadedMsg{resp: resp, err: err}
	}
}

func (m *todayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case todayLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setPlan(msg.resp)
		return m, nil

	case commitResultMsg:
		// A superseded write was replaced by a newer write of the same entry,
		// whose own result is reported instead.
		if msg.err == nil || errors.Is(msg.err, optimistic.ErrSuperseded) {
			return m, nil
		}
		m.notice = "Not saved: " + msg.err.Error()
		if app.NeedsReload(msg.err) {
			m.loading = true
			return m, m.load()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			m.notice = ""
			return m, m.load()
		case key.Matches(msg, m.keys.Toggle):
			if row, ok := m.selected(); ok {
				next := domain.StatusCompleted
				if m.displayed(row) == domain.StatusCompleted {
					next = domain.StatusPending
				}
				return m, m.change(row, next)
			}
		case key.Matches(msg, m.keys.Start):
			if row, ok := m.selected(); ok {
				return m, m.change(row, domain.StatusInProgress)
			}
		}
	}
	return m, nil
}

func (m *todayModel) setPlan(resp *app.TodaysPlanResponse) {
	m.resp = resp
	m.rows = m.rows[:0]
	state := optimistic.State{}
	for _, bucket := range scheduler.SectionOrder {
		entries := resp.Section(bucket)
		if len(entries) == 0 {
			continue
		}
		m.rows = append(m.rows, todayRow{heading: formatter.SectionTitle(bucket)})
		for _, e := range entries {
			m.rows = append(m.rows, todayRow{entry: e, key: e.Identity().Key()})
			state[e.ID] = e.Status
		}
	}
	m.ledger.Reset(state)
	if _, ok := m.selected(); !ok {
		m.cursor = -1
		m.move(1)
	}
}

func (m *todayModel) move(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if !m.rows[i].isHeading() {
			m.cursor = i
			return
		}
	}
}

func (m *todayModel) selected() (todayRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || m.rows[m.cursor].isHeading() {
		return todayRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m *todayModel) displayed(row todayRow) domain.EntryStatus {
	if s, ok := m.ledger.Status(row.entry.ID); ok {
		return s
	}
	return row.entry.Status
}

// change applies status to the row's entry on screen and returns the command
// that persists it.
func (m *todayModel) change(row todayRow, status domain.EntryStatus) tea.Cmd {
	if m.displayed(row) == status {
		return nil
	}
	m.notice = ""
	p := m.ledger.Apply(optimistic.NewChange(row.key, []string{row.entry.ID}, status))

	ctx, ledger, committer, svc := m.ctx, m.ledger, m.committer, m.status
	courseID, entryID := m.courseID, row.entry.ID
	return func() tea.Msg {
		reverted, err := ledger.Commit(ctx, committer, p, func(ctx context.Context) error {
			return svc.SetTaskStatus(ctx, courseID, []string{entryID}, status)
		})
		return commitResultMsg{key: p.Change.Key, reverted: reverted, err: err}
	}
}

func (m *todayModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\n%s\n", m.err, m.help.View(m.keys))
	}
	if m.resp == nil {
		return "Loading...\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", formatter.Bold(m.resp.Date.Format("Monday, January 2")),
		formatter.Dim(formatter.FormatBlocks(m.resp.TotalBlocks)))
	if m.resp.Phase1Module != nil {
		b.WriteString("Phase 1: " + formatter.StylePurple.Render(m.resp.Phase1Module.Title) + "\n")
	}
	if len(m.rows) == 0 {
		b.WriteString("\n" + formatter.Dim("Nothing planned today.") + "\n")
	}

	for i, row := range m.rows {
		if row.isHeading() {
			b.WriteString("\n" + formatter.StyleHeader.Render(row.heading) + "\n")
			continue
		}
		cursor := "  "
		if i == m.cursor {
			cursor = formatter.StyleGreen.Render("> ")
		}
		saving := ""
		if m.ledger.InFlight(row.key) > 0 {
			saving = formatter.Dim(" saving...")
		}
		fmt.Fprintf(&b, "%s%s %s %s %s%s\n",
			cursor,
			formatter.Checkbox(m.displayed(row)),
			formatter.TaskTypeBadge(row.entry.TaskType),
			row.entry.Description,
			formatter.Dim(formatter.FormatMinutes(row.entry.Minutes())),
			saving)
	}

	if m.loading {
		b.WriteString("\n" + formatter.Dim("Reloading...") + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + formatter.StyleRed.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}
