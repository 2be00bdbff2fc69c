package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mcpanel/internal/console"
	"mcpanel/internal/domain"
	"mcpanel/pkg/sdk"
)

type consoleModel struct {
	events    <-chan console.Event
	cancel    context.CancelFunc
	viewport  viewport.Model
	textInput textinput.Model
	client    *sdk.Client
	serverID  string
	server    *sdk.Server
	lines     []string
	notice    string
	err       error
	ready     bool
	back      bool
	width     int
	height    int
}

type streamEventMsg console.Event
type statusMsg *sdk.Server
type commandSentMsg struct{ err error }
type consoleTickMsg time.Time

func initialConsoleModel(client *sdk.Client, serverID string, events <-chan console.Event, cancel context.CancelFunc) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "Type a command..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return consoleModel{
		events:    events,
		cancel:    cancel,
		textInput: ti,
		client:    client,
		serverID:  serverID,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForStreamEvent(m.events),
		fetchStatus(m.client, m.serverID),
		consoleTick(),
	)
}

func waitForStreamEvent(events <-chan console.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return streamEventMsg(ev)
	}
}

func fetchStatus(client *sdk.Client, id string) tea.Cmd {
	return func() tea.Msg {
		srv, err := client.GetStatus(context.Background(), id)
		if err != nil {
			return statusMsg(nil)
		}
		return statusMsg(srv)
	}
}

func sendCommand(client *sdk.Client, id, command string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.SendCommand(context.Background(), id, command)
		if err == nil && !result.Success && result.Error != "" {
			err = fmt.Errorf("%s", result.Error)
		}
		return commandSentMsg{err: err}
	}
}

func consoleTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return consoleTickMsg(t)
	})
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.cancel()
			return m, tea.Quit
		case tea.KeyEsc:
			m.cancel()
			m.back = true
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.textInput.Value(); cmd != "" {
				m.textInput.SetValue("")
				return m, tea.Batch(sendCommand(m.client, m.serverID, cmd), textinput.Blink)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 10
		contentWidth := msg.Width - 6

		if !m.ready {
			m.viewport = viewport.New(contentWidth, msg.Height-headerHeight)
			m.ready = true
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			m.viewport.GotoBottom()
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = msg.Height - headerHeight
		}

	case streamEventMsg:
		switch ev := console.Event(msg).(type) {
		case console.EntriesEvent:
			for _, e := range ev.Entries {
				m.lines = append(m.lines, renderEntry(e))
			}
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			m.viewport.GotoBottom()
			m.notice = ""
		case console.ErrorEvent:
			if ev.Reconnecting {
				m.notice = fmt.Sprintf("stream lost (%v), reconnecting...", ev.Err)
			} else {
				m.notice = fmt.Sprintf("fetch failed: %v", ev.Err)
			}
		}
		return m, waitForStreamEvent(m.events)

	case statusMsg:
		if msg != nil {
			m.server = msg
		}

	case commandSentMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("command failed: %v", msg.err)
		}

	case consoleTickMsg:
		return m, tea.Batch(fetchStatus(m.client, m.serverID), consoleTick())
	}

	m.textInput, tiCmd = m.textInput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func renderEntry(e domain.LogEntry) string {
	switch e.Type {
	case domain.LogError:
		return errorStyle.Render(e.Content)
	case domain.LogWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(e.Content)
	case domain.LogCommand:
		return keyStyle.Render("> " + e.Content)
	default:
		return e.Content
	}
}

func (m consoleModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	title := headerStyle.Width(m.width).Render("SERVER CONSOLE")

	info := "Loading server details..."
	if m.server != nil {
		icon, color := statusDot(m.server.Status)
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		info = fmt.Sprintf(
			"Server: %s %s  •  Port: %s  •  Players: %d/%d  •  Version: %s",
			icon,
			statusStyle.Render(m.server.Name),
			m.server.Port,
			m.server.Players.Online,
			m.server.Players.Max,
			m.server.Version,
		)
	}

	headerBox := baseStyle.
		Width(m.width-4).
		Align(lipgloss.Center).
		Render(info)

	consoleBox := baseStyle.
		Width(m.width - 4).
		Render(m.viewport.View())

	noticeLine := ""
	if m.notice != "" {
		noticeLine = errorStyle.Render(m.notice)
	}

	help := keyStyle.Render("esc") + descStyle.Render(": back") +
		descStyle.Render(" • ") +
		keyStyle.Render("ctrl+c") + descStyle.Render(": quit")

	footer := footerStyle.
		Width(m.width-4).
		Align(lipgloss.Left).
		Render(fmt.Sprintf("→ %s\n%s\n%s", m.textInput.View(), noticeLine, help))

	return lipgloss.JoinVertical(lipgloss.Center, title, headerBox, consoleBox, footer)
}

// RunConsole attaches a live console to the given server. Returns true when
// the user backed out to the dashboard rather than quitting.
func RunConsole(client *sdk.Client, serverID string) bool {
	ctx, cancel := context.WithCancel(context.Background())

	stream := console.NewStreamClient(client, serverID)
	go stream.Run(ctx)

	p := tea.NewProgram(
		initialConsoleModel(client, serverID, stream.Events(), cancel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	m, err := p.Run()
	cancel()
	if err != nil {
		fmt.Printf("Error running console UI: %v\n", err)
		return false
	}

	if cm, ok := m.(consoleModel); ok {
		return cm.back
	}
	return false
}
