package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/session"
)

const defaultToastTTL = 3 * time.Second

type (
	// stateMsg carries the result of a machine operation run in a command.
	stateMsg struct {
		state session.State
		err   error
		ok    string // toast shown on success
	}

	toastExpiredMsg struct{ seq int }

	toast struct {
		text  string
		isErr bool
		seq   int
	}
)

// model is the terminal UI. It renders the machine's state and turns key presses into machine operations.
type model struct {
	ctx      context.Context
	machine  *session.Machine
	styles   styles
	keys     keyMap
	toastTTL time.Duration

	state    session.State
	busy     bool
	id       textinput.Model
	pin      textinput.Model
	marks    textinput.Model
	classes  []marks.ClassCount
	selected int
	toast    *toast
	toastSeq int
	width    int
}

func newModel(ctx context.Context, machine *session.Machine) model {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Cursor.SetMode(cursor.CursorStatic)
		return ti
	}
	m := model{
		ctx:      ctx,
		machine:  machine,
		styles:   defaultStyles(),
		keys:     defaultKeyMap(),
		toastTTL: defaultToastTTL,
		state:    machine.Current(),
		id:       newInput("Teacher ID"),
		pin:      newInput("PIN"),
		marks:    newInput("Marks"),
	}
	m.pin.EchoMode = textinput.EchoPassword
	m.pin.EchoCharacter = '•'
	m.marks.CharLimit = 8
	m.id.Focus()
	return m
}

func (m model) Init() tea.Cmd {
	return m.run(func() (session.State, error) { return m.machine.Restore(m.ctx) }, "")
}

// run executes op in a command and reports its outcome as a stateMsg.
func (m model) run(op func() (session.State, error), okToast string) tea.Cmd {
	return func() tea.Msg {
		st, err := op()
		return stateMsg{state: st, err: err, ok: okToast}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case toastExpiredMsg:
		if m.toast != nil && m.toast.seq == msg.seq {
			m.toast = nil
		}
		return m, nil

	case stateMsg:
		m.busy = false
		m.setState(msg.state)
		if msg.err != nil {
			return m, m.showToast(errorText(msg.err), true)
		}
		if msg.ok != "" {
			return m, m.showToast(msg.ok, false)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.state.Kind() {
		case session.KindLoggedOut:
			return m.updateLogin(msg)
		case session.KindDashboard:
			return m.updateDashboard(msg)
		case session.KindEntry:
			return m.updateEntry(msg)
		case session.KindComplete:
			if key.Matches(msg, m.keys.Enter, m.keys.Back) {
				m.busy = true
				return m, m.run(func() (session.State, error) { return m.machine.Back(m.ctx) }, "")
			}
		}
	}
	return m, nil
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		if m.id.Focused() {
			m.id.Blur()
			m.pin.Focus()
		} else {
			m.pin.Blur()
			m.id.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if m.id.Focused() {
			m.id.Blur()
			m.pin.Focus()
			return m, nil
		}
		id, pin := m.id.Value(), m.pin.Value()
		m.busy = true
		return m, m.run(func() (session.State, error) { return m.machine.Login(m.ctx, id, pin) }, "")
	}

	var cmd tea.Cmd
	if m.id.Focused() {
		m.id, cmd = m.id.Update(msg)
	} else {
		m.pin, cmd = m.pin.Update(msg)
	}
	return m, cmd
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.classes)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Enter):
		if len(m.classes) == 0 {
			return m, nil
		}
		st, err := m.machine.SelectClass(m.classes[m.selected].Class)
		m.setState(st)
		if err != nil {
			return m, m.showToast(errorText(err), true)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.run(func() (session.State, error) { return m.machine.Refresh(m.ctx) }, "")
	case key.Matches(msg, m.keys.Logout):
		err := m.machine.Logout()
		m.setState(m.machine.Current())
		if err != nil {
			return m, m.showToast(errorText(err), true)
		}
	}
	return m, nil
}

func (m model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.busy = true
		return m, m.run(func() (session.State, error) { return m.machine.Back(m.ctx) }, "")
	case key.Matches(msg, m.keys.Enter):
		input := m.marks.Value()
		m.busy = true
		return m, m.run(func() (session.State, error) { return m.machine.Submit(m.ctx, input) }, "Marks Saved")
	}

	var cmd tea.Cmd
	m.marks, cmd = m.marks.Update(msg)
	return m, cmd
}

// setState adopts st and resets the widgets that depend on it.
func (m *model) setState(st session.State) {
	if st == nil {
		return
	}
	prev := m.state
	m.state = st

	switch s := st.(type) {
	case session.LoggedOut:
		if prev.Kind() != session.KindLoggedOut {
			m.id.Reset()
			m.pin.Reset()
			m.pin.Blur()
			m.id.Focus()
		}
	case session.Dashboard:
		m.classes = marks.CountByClass(s.All)
		if m.selected >= len(m.classes) {
			m.selected = 0
		}
	case session.Entry:
		// a new record is under the cursor: clear the input
		if pe, ok := prev.(session.Entry); !ok || len(pe.Working) != len(s.Working) {
			m.marks.Reset()
		}
		m.marks.Focus()
	case session.Complete:
		m.marks.Reset()
		m.marks.Blur()
	}
}

func (m *model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toast = &toast{text: text, isErr: isErr, seq: seq}
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func errorText(err error) string {
	var apiErr *apiError
	switch {
	case errors.Is(err, errConnection):
		return errConnection.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	default:
		return err.Error()
	}
}

func (m model) View() string {
	var b strings.Builder

	title := "Markbook"
	if name := teacherName(m.state); name != "" {
		title += " · " + name
	}
	b.WriteString(m.styles.Header.Render(title))
	b.WriteString("\n\n")

	switch s := m.state.(type) {
	case session.LoggedOut:
		b.WriteString(m.styles.Title.Render("Teacher Login"))
		b.WriteString("\n")
		b.WriteString(m.id.View() + "\n")
		b.WriteString(m.pin.View() + "\n\n")
		b.WriteString(m.styles.Muted.Render("tab: next field • enter: login • ctrl+c: quit"))
	case session.Dashboard:
		b.WriteString(m.viewDashboard())
	case session.Entry:
		b.WriteString(m.viewEntry(s))
	case session.Complete:
		b.WriteString(m.styles.Title.Render("All Done!"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Every record of class %s has been graded.\n\n", s.Class))
		b.WriteString(m.styles.Muted.Render("enter: back to dashboard"))
	}

	if m.busy {
		b.WriteString("\n\n" + m.styles.Muted.Render("Saving..."))
	}
	if m.toast != nil {
		style := m.styles.Success
		if m.toast.isErr {
			style = m.styles.Error
		}
		b.WriteString("\n\n" + style.Render(m.toast.text))
	}
	return b.String() + "\n"
}

func (m model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Pending by class"))
	b.WriteString("\n")
	if len(m.classes) == 0 {
		b.WriteString(m.styles.Card.Render("All Done  0"))
	}
	for i, c := range m.classes {
		line := fmt.Sprintf("Class %-10s %3d", c.Class, c.Pending)
		if i == m.selected {
			b.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("↑/↓: choose • enter: start • r: refresh • L: logout"))
	return b.String()
}

func (m model) viewEntry(e session.Entry) string {
	rec := e.Current()
	card := strings.Join([]string{
		m.styles.Title.Render(rec.StudentName),
		fmt.Sprintf("Class: %s   Roll: %s", rec.Class, rec.RollNo),
		fmt.Sprintf("%s (%s)", rec.Subject, rec.PaperType),
		"",
		m.marks.View() + " / " + strconv.FormatFloat(rec.MaxMarks(marks.DefaultTotalMarks), 'f', -1, 64),
	}, "\n")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d of %d\n", e.Position(), len(e.Working)))
	b.WriteString(m.styles.Card.Render(card))
	b.WriteString("\n\n" + m.styles.Muted.Render("enter: submit & next • esc: dashboard"))
	return b.String()
}

func teacherName(st session.State) string {
	switch s := st.(type) {
	case session.Dashboard:
		return s.Teacher.TeacherName
	case session.Entry:
		return s.Teacher.TeacherName
	case session.Complete:
		return s.Teacher.TeacherName
	default:
		return ""
	}
}
