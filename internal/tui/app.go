// Package tui is the interactive menu: a picker over the module catalog and a
// screen that hosts one module run, feeding it terminal mouse and focus events.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tldr-it-stepankutaj/basicskit/internal/app"
	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/host"
	"github.com/tldr-it-stepankutaj/basicskit/internal/lifecycle"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

type screen int

const (
	screenPicker screen = iota
	screenModule
)

type moduleItem struct {
	desc modules.Descriptor
}

func (i moduleItem) Title() string       { return i.desc.Name }
func (i moduleItem) Description() string { return i.desc.Description }
func (i moduleItem) FilterValue() string { return i.desc.Name }

type model struct {
	theme Theme
	reg   *modules.Registry
	host  *host.Host
	log   *slog.Logger

	scr    screen
	picker list.Model
	run    *host.Run

	// pressed tracks the terminal mouse button so motion without a held
	// button is not reported as a drag.
	pressed bool
	status  string
	failed  bool
	height  int
}

// Run starts the TUI and blocks until the user quits.
func Run(appCtx app.Context, reg *modules.Registry, h *host.Host) error {
	m := newModel(reg, h, appCtx.Logger)
	p := tea.NewProgram(wrapSafe(m, appCtx.Logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	final, err := p.Run()
	if sm, ok := final.(safeModel); ok && sm.m.run != nil {
		_ = sm.m.run.Finish()
	}
	return err
}

func newModel(reg *modules.Registry, h *host.Host, log *slog.Logger) model {
	if log == nil {
		log = logger.Discard()
	}

	descs := reg.ListModules()
	items := make([]list.Item, 0, len(descs))
	for _, d := range descs {
		items = append(items, moduleItem{desc: d})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Modules"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return model{
		theme:  DefaultTheme(),
		reg:    reg,
		host:   h,
		log:    log,
		scr:    screenPicker,
		picker: l,
		status: "Ready.",
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.picker.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.FocusMsg:
		// Terminals may report focus without a prior blur.
		if m.run != nil && m.run.State() == lifecycle.StateInactive {
			m.notify("resume", m.run.Resume())
		}
		return m, nil

	case tea.BlurMsg:
		if m.run != nil && m.run.State() == lifecycle.StateActive {
			m.notify("pause", m.run.Pause())
		}
		return m, nil

	case tea.MouseMsg:
		if m.scr == screenModule {
			m.pointer(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.scr == screenModule {
			return m.updateModule(msg)
		}
		if m.picker.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "enter":
				it, ok := m.picker.SelectedItem().(moduleItem)
				if !ok {
					return m, nil
				}
				m.launch(it.desc.Name)
				return m, nil
			}
		}
	}

	if m.scr == screenPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateModule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.leave()
		return m, tea.Quit
	case "esc", "b":
		m.leave()
		return m, nil
	}
	return m, nil
}

// launch resolves name through the registry at selection time.
func (m *model) launch(name string) {
	req, err := m.reg.Resolve(name)
	if err != nil {
		m.setError(err)
		if errors.Is(err, modules.ErrNotFound) {
			m.log.Warn("module.not_found", "module", name)
		}
		return
	}
	run, err := m.host.Launch(req)
	if err != nil {
		m.setError(err)
		m.log.Error("module.launch_failed", "module", name, "error", err)
		return
	}
	m.run = run
	m.pressed = false
	m.scr = screenModule
	m.status = fmt.Sprintf("Running %s.", run.Name())
	m.failed = false
}

func (m *model) leave() {
	if m.run != nil {
		name := m.run.Name()
		m.notify("finish", m.run.Finish())
		if !m.failed {
			m.status = fmt.Sprintf("%s finished.", name)
		}
	}
	m.run = nil
	m.pressed = false
	m.scr = screenPicker
}

// pointer maps terminal mouse events onto single-pointer actions. Coordinates
// are terminal cells.
func (m *model) pointer(msg tea.MouseMsg) {
	var action diaglog.Action
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		action = diaglog.ActionDown
		m.pressed = true
	case tea.MouseActionMotion:
		if !m.pressed {
			return
		}
		action = diaglog.ActionMove
	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		action = diaglog.ActionUp
		m.pressed = false
	default:
		return
	}
	m.run.Pointer(diaglog.Pointer{Action: action, X: float32(msg.X), Y: float32(msg.Y)})
}

func (m *model) notify(what string, err error) {
	if err == nil {
		return
	}
	m.log.Warn("module.notification_rejected", "notification", what, "module", m.run.Name(), "error", err)
	m.setError(err)
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.failed = true
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("basicskit") + "\n" +
		m.theme.Subtitle.Render("Diagnostic module catalog") + "\n"

	style := m.theme.Status
	if m.failed {
		style = m.theme.Error
	}
	status := style.Render(m.status)

	switch m.scr {
	case screenPicker:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + m.theme.Card.Render(m.picker.View()) + "\n" + status + "\n" + help)

	case screenModule:
		body := tail(m.run.Snapshot(), m.height-12)
		card := m.theme.Card.Render(
			fmt.Sprintf("%s\n\n%s\n\n%s",
				m.theme.Title.Render(m.run.Name()),
				body,
				m.theme.Help.Render(fmt.Sprintf("state: %s • %d logged", m.run.State(), m.run.Recorded())),
			),
		)
		help := m.theme.Help.Render("drag with the mouse • esc/b back • q quit")
		return wrap.Render(header + "\n" + card + "\n" + status + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}

// tail keeps the last n lines of s. n <= 0 keeps everything.
func tail(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
