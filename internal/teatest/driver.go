// Package teatest drives a bubbletea model in tests without a tea.Program.
//
// Messages go straight to Update and every returned Cmd runs inline, its
// message fed back to the model, until no Cmd is left. Background work such
// as a status commit therefore settles before Send returns.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many Cmds one Send may chain.
const MaxDrainDepth = 100

// DefaultCmdTimeout is how long a single Cmd may run before the test fails.
const DefaultCmdTimeout = 5 * time.Second

// Driver is a synchronous harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a Cmd returns tea.QuitMsg.
	Quitting bool
	// Seen lists every message produced by a Cmd, in delivery order.
	Seen []tea.Msg

	cmdTimeout time.Duration
}

// Option configures the Driver during construction.
type Option func(*Driver)

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// WithCmdTimeout overrides DefaultCmdTimeout.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// New creates a Driver. Call Start to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs Init and drains what follows.
func (d *Driver) Start() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

// PressKey sends a rune key such as 'x' or ' '.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	if r == ' ' {
		d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{r}})
		return
	}
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressKeys sends each rune of s in turn.
func (d *Driver) PressKeys(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) PressUp()   { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyUp}) }
func (d *Driver) PressDown() { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyDown}) }
func (d *Driver) PressEsc()  { d.T.Helper(); d.Send(tea.KeyMsg{Type: tea.KeyEsc}) }

func (d *Driver) View() string {
	return d.Model.View()
}

// Last returns the most recent message of type M produced by a Cmd.
func Last[M tea.Msg](d *Driver) (M, bool) {
	for i := len(d.Seen) - 1; i >= 0; i-- {
		if m, ok := d.Seen[i].(M); ok {
			return m, true
		}
	}
	var zero M
	return zero, false
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Fatalf("teatest: more than %d chained commands", MaxDrainDepth)
	}

	msg := d.run(cmd)
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			d.drain(sub, depth+1)
		}
		return
	}

	d.Seen = append(d.Seen, msg)
	if _, ok := msg.(tea.QuitMsg); ok {
		d.Quitting = true
		return
	}
	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drain(next, depth+1)
}

func (d *Driver) run(cmd tea.Cmd) tea.Msg {
	d.T.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		d.T.Fatalf("teatest: command did not return within %s", d.cmdTimeout)
		return nil
	}
}
