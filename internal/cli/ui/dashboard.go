package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mcpanel/internal/domain"
	"mcpanel/internal/lifecycle"
	"mcpanel/internal/ports"
	"mcpanel/pkg/sdk"
)

type dashboardMode int

const (
	ViewDashboard dashboardMode = iota
	ViewConflict
)

type serverListItem struct {
	id          string
	title       string
	description string
}

func (i serverListItem) FilterValue() string { return i.title + " " + i.description }
func (i serverListItem) Title() string       { return i.title }
func (i serverListItem) Description() string { return i.description }

type dashboardModel struct {
	list       list.Model
	controller *lifecycle.Controller
	resolver   *ports.Resolver
	mode       dashboardMode
	conflict   ports.ConflictState
	portInput  textinput.Model
	message    string
	navigateID string
	width      int
	height     int
}

type serversMsg []domain.ServerSummary
type actionDoneMsg struct {
	err      error
	conflict *ports.Conflict
}
type dashTickMsg time.Time

func fetchServers(ctrl *lifecycle.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Refresh(context.Background()); err != nil {
			return actionDoneMsg{err: err}
		}
		return serversMsg(ctrl.Servers())
	}
}

func dashTick() tea.Cmd {
	return tea.Tick(lifecycle.DefaultPollInterval, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(fetchServers(m.controller), dashTick())
}

func (m dashboardModel) selectedID() string {
	if item := m.list.SelectedItem(); item != nil {
		return item.(serverListItem).id
	}
	return ""
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == ViewConflict {
		return m.updateConflict(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if id := m.selectedID(); id != "" {
				m.navigateID = id
				return m, tea.Quit
			}
		case "s":
			if id := m.selectedID(); id != "" {
				ctrl := m.controller
				return m, func() tea.Msg {
					conflict, err := ctrl.Start(context.Background(), id)
					return actionDoneMsg{err: err, conflict: conflict}
				}
			}
		case "x":
			if id := m.selectedID(); id != "" {
				ctrl := m.controller
				return m, func() tea.Msg {
					return actionDoneMsg{err: ctrl.Stop(context.Background(), id)}
				}
			}
		case "r":
			if id := m.selectedID(); id != "" {
				ctrl := m.controller
				return m, func() tea.Msg {
					return actionDoneMsg{err: ctrl.Restart(context.Background(), id)}
				}
			}
		case "f":
			if id := m.selectedID(); id != "" {
				ctrl := m.controller
				return m, func() tea.Msg {
					return actionDoneMsg{err: ctrl.ForceStop(context.Background(), id)}
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)

	case serversMsg:
		items := make([]list.Item, len(msg))
		for i, s := range msg {
			icon, _ := statusDot(s.Status)
			items[i] = serverListItem{
				id:    s.ID,
				title: fmt.Sprintf("%s %s", icon, s.Name),
				description: fmt.Sprintf("%s • port %s • %d/%d players • %s",
					s.Status, s.Port, s.Players.Online, s.Players.Max, s.Version),
			}
		}
		m.list.SetItems(items)

	case actionDoneMsg:
		if msg.conflict != nil {
			m.conflict = ports.OpenConflict(*msg.conflict)
			m.mode = ViewConflict
			m.portInput.SetValue("")
			m.portInput.Focus()
			return m, textinput.Blink
		}
		if msg.err != nil {
			m.message = msg.err.Error()
		} else {
			m.message = ""
		}
		return m, fetchServers(m.controller)

	case dashTickMsg:
		return m, tea.Batch(fetchServers(m.controller), dashTick())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateConflict(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// Dismissed: the start stays blocked.
			m.conflict = ports.ConflictState{}
			m.mode = ViewDashboard
			return m, nil
		case "enter":
			proposed := m.portInput.Value()
			if !ports.CanChangePort(m.conflict.Current.Port, proposed) {
				return m, nil
			}
			conflict := ports.Conflict{Current: m.conflict.Current, Conflicting: m.conflict.Conflicting}
			resolver := m.resolver
			m.conflict = ports.ConflictState{}
			m.mode = ViewDashboard
			return m, func() tea.Msg {
				return actionDoneMsg{err: resolver.ChangePort(context.Background(), conflict, proposed)}
			}
		case "ctrl+s":
			conflict := ports.Conflict{Current: m.conflict.Current, Conflicting: m.conflict.Conflicting}
			resolver := m.resolver
			m.conflict = ports.ConflictState{}
			m.mode = ViewDashboard
			return m, func() tea.Msg {
				return actionDoneMsg{err: resolver.StopConflicting(context.Background(), conflict)}
			}
		}

	case actionDoneMsg, serversMsg, dashTickMsg:
		model, cmd := m.dashboardPassthrough(msg)
		return model, cmd
	}

	var cmd tea.Cmd
	m.portInput, cmd = m.portInput.Update(msg)
	return m, cmd
}

// dashboardPassthrough lets background refreshes keep flowing while the
// conflict dialog is open.
func (m dashboardModel) dashboardPassthrough(msg tea.Msg) (tea.Model, tea.Cmd) {
	saveMode, saveConflict := m.mode, m.conflict
	m.mode = ViewDashboard
	updated, cmd := m.Update(msg)
	dm := updated.(dashboardModel)
	if dm.mode == ViewDashboard {
		dm.mode, dm.conflict = saveMode, saveConflict
	}
	return dm, cmd
}

func (m dashboardModel) View() string {
	if m.mode == ViewConflict {
		return m.conflictView()
	}

	view := m.list.View()
	if m.message != "" {
		view += "\n" + errorStyle.Render(m.message)
	}
	help := descStyle.Render("enter: console • s: start • x: stop • r: restart • f: force-stop • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, view, help)
}

func (m dashboardModel) conflictView() string {
	c := m.conflict
	enterHint := "enter: change port"
	if !ports.CanChangePort(c.Current.Port, m.portInput.Value()) {
		enterHint = descStyle.Render("enter: change port (enter a different port)")
	}

	body := fmt.Sprintf(
		"Port conflict\n\n"+
			"%s is already running on port %s.\n"+
			"%s cannot start until the port is free.\n\n"+
			"New port for %s: %s\n\n"+
			"%s\n%s\n%s",
		c.Conflicting.Name, c.Conflicting.Port,
		c.Current.Name,
		c.Current.Name, m.portInput.View(),
		enterHint,
		"ctrl+s: stop "+c.Conflicting.Name+" and start "+c.Current.Name,
		"esc: cancel",
	)

	dialog := dialogStyle.Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// RunDashboard shows the server list. Returns the id of the server whose
// console should open next, or "" when the user quit.
func RunDashboard(client *sdk.Client) string {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Servers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	ctrl := lifecycle.NewController(client)

	pi := textinput.New()
	pi.Placeholder = "25566"
	pi.CharLimit = 5
	pi.Width = 8

	m := dashboardModel{
		list:       l,
		controller: ctrl,
		resolver:   ports.NewResolver(ctrl),
		portInput:  pi,
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	finalModel, err := program.Run()
	if err != nil {
		fmt.Printf("Error running dashboard: %v\n", err)
		os.Exit(1)
	}

	if dm, ok := finalModel.(dashboardModel); ok {
		return dm.navigateID
	}
	return ""
}
