package console

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for async operations
type connectedMsg struct{ client *Client }
type connectFailedMsg struct{ err error }
type peerEventMsg struct {
	event Event
	ok    bool
}
type sendFailedMsg struct{ err error }

// consoleKeyMap defines key bindings for the console screen
type consoleKeyMap struct {
	Send key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k consoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k consoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Quit},
	}
}

// inputAction tells Update what to do with a submitted line.
type inputAction int

const (
	actionNone inputAction = iota
	actionText
	actionBinary
	actionPing
	actionClose
	actionQuit
)

// parseInput interprets a submitted console line. A leading slash selects
// a frame type; anything else is sent verbatim as a text message.
func parseInput(s string) (inputAction, []byte, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return actionNone, nil, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return actionText, []byte(s), nil
	}

	verb, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "/bin":
		raw := strings.ReplaceAll(rest, " ", "")
		if raw == "" {
			return actionNone, nil, fmt.Errorf("usage: /bin <hex bytes>")
		}
		data, err := hex.DecodeString(raw)
		if err != nil {
			return actionNone, nil, fmt.Errorf("invalid hex: %v", err)
		}
		return actionBinary, data, nil

	case "/ping":
		return actionPing, []byte(rest), nil

	case "/close":
		return actionClose, nil, nil

	case "/quit":
		return actionQuit, nil, nil

	default:
		return actionNone, nil, fmt.Errorf("unknown command %s (try /bin, /ping, /close, /quit)", verb)
	}
}

// lineKind classifies a transcript line for rendering.
type lineKind int

const (
	lineSent lineKind = iota
	lineRecv
	lineControl
	lineNotice
	lineError
)

type transcriptLine struct {
	kind lineKind
	text string
	at   time.Time
}

// Model represents the console screen state
type Model struct {
	target string

	// Connection state
	client     *Client
	connecting bool
	closed     bool
	err        error

	// UI state
	transcript []transcriptLine
	input      textinput.Model
	spinner    spinner.Model
	help       help.Model
	keys       consoleKeyMap
	width      int
	height     int
}

// NewModel creates a console model that will connect to target.
func NewModel(target string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "message (/bin, /ping, /close, /quit)"
	input.Prompt = "> "
	input.PromptStyle = PromptStyle
	input.Focus()

	keys := consoleKeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}

	return Model{
		target:     target,
		connecting: true,
		input:      input,
		spinner:    s,
		help:       help.New(),
		keys:       keys,
	}
}

// Init starts the connection attempt
func (m Model) Init() tea.Cmd {
	return tea.Batch(connect(m.target), m.spinner.Tick, textinput.Blink)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Send):
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6

	case connectedMsg:
		m.connecting = false
		m.client = msg.client
		m.addLine(lineNotice, fmt.Sprintf("connected to %s", m.target))
		return m, waitForEvent(m.client)

	case connectFailedMsg:
		m.connecting = false
		m.err = msg.err
		m.addLine(lineError, msg.err.Error())
		return m, nil

	case peerEventMsg:
		return m.handleEvent(msg)

	case sendFailedMsg:
		m.addLine(lineError, fmt.Sprintf("send failed: %v", msg.err))
		return m, nil

	case spinner.TickMsg:
		if m.connecting {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// quit tears the connection down and exits the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.client != nil {
		m.client.Shutdown()
	}
	return m, tea.Quit
}

// submit handles an entered line.
func (m Model) submit() (tea.Model, tea.Cmd) {
	action, data, err := parseInput(m.input.Value())
	if err != nil {
		m.addLine(lineError, err.Error())
		m.input.SetValue("")
		return m, nil
	}

	switch action {
	case actionNone:
		return m, nil
	case actionQuit:
		return m.quit()
	}

	if m.client == nil || m.closed {
		m.addLine(lineNotice, "not connected")
		m.input.SetValue("")
		return m, nil
	}

	client := m.client
	var cmd tea.Cmd
	switch action {
	case actionText:
		m.addLine(lineSent, string(data))
		text := string(data)
		cmd = send(func() error { return client.SendText(text) })
	case actionBinary:
		m.addLine(lineSent, formatBinary(data))
		cmd = send(func() error { return client.SendBinary(data) })
	case actionPing:
		m.addLine(lineControl, fmt.Sprintf("ping %q", data))
		cmd = send(func() error { return client.Ping(data) })
	case actionClose:
		m.addLine(lineControl, "close requested")
		cmd = send(client.Close)
	}

	m.input.SetValue("")
	return m, cmd
}

// handleEvent folds a read pump event into the transcript.
func (m Model) handleEvent(msg peerEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Read pump exited; the close reason was already delivered
		if !m.closed {
			m.closed = true
			m.addLine(lineNotice, "connection closed")
		}
		return m, nil
	}

	ev := msg.event
	switch ev.Kind {
	case EventText:
		m.addLine(lineRecv, string(ev.Data))
	case EventBinary:
		m.addLine(lineRecv, formatBinary(ev.Data))
	case EventPing:
		m.addLine(lineControl, fmt.Sprintf("ping %q", ev.Data))
	case EventPong:
		m.addLine(lineControl, fmt.Sprintf("pong %q", ev.Data))
	case EventClosed:
		m.closed = true
		m.addLine(lineControl, "peer closed the connection")
	case EventError:
		m.closed = true
		m.err = ev.Err
		m.addLine(lineError, ev.Err.Error())
	}

	return m, waitForEvent(m.client)
}

func (m *Model) addLine(kind lineKind, text string) {
	m.transcript = append(m.transcript, transcriptLine{kind: kind, text: text, at: time.Now()})
}

// View renders the console screen
func (m Model) View() string {
	height := m.height
	if height == 0 {
		height = DefaultHeight
	}

	if m.connecting {
		return fmt.Sprintf("\n  %s Connecting to %s...\n",
			m.spinner.View(), HeaderTargetStyle.Render(m.target))
	}

	var b strings.Builder

	status := "connected"
	switch {
	case m.client == nil:
		status = "connect failed"
	case m.closed:
		status = "closed"
	}
	b.WriteString(HeaderStyle.Render("wsecho console"))
	b.WriteString(" ")
	b.WriteString(HeaderTargetStyle.Render(m.target))
	b.WriteString(NoticeStyle.Render(" · " + status))
	b.WriteString("\n\n")

	// Transcript, newest lines last, clipped to the window
	visible := height - 6
	if visible < 1 {
		visible = 1
	}
	lines := m.transcript
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	for _, l := range lines {
		b.WriteString(renderLine(l))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderLine renders one transcript line with its marker and timestamp.
func renderLine(l transcriptLine) string {
	ts := TimestampStyle.Render(l.at.Format("15:04:05"))
	switch l.kind {
	case lineSent:
		return fmt.Sprintf(" %s %s %s", ts, SentStyle.Render(SentMarker), l.text)
	case lineRecv:
		return fmt.Sprintf(" %s %s %s", ts, RecvStyle.Render(RecvMarker), l.text)
	case lineControl:
		return fmt.Sprintf(" %s %s %s", ts, ControlStyle.Render(ControlMarker), ControlStyle.Render(l.text))
	case lineError:
		return fmt.Sprintf(" %s %s %s", ts, ErrorStyle.Render(ErrorMarker), ErrorStyle.Render(l.text))
	default:
		return fmt.Sprintf(" %s %s", ts, NoticeStyle.Render(l.text))
	}
}

// formatBinary renders a binary payload for the transcript, truncated so
// a large message cannot flood the screen.
func formatBinary(p []byte) string {
	const maxShown = 32
	if len(p) <= maxShown {
		return fmt.Sprintf("0x%s (%d bytes)", hex.EncodeToString(p), len(p))
	}
	return fmt.Sprintf("0x%s… (%d bytes)", hex.EncodeToString(p[:maxShown]), len(p))
}

// connect dials the peer off the UI loop.
func connect(target string) tea.Cmd {
	return func() tea.Msg {
		client, err := Dial(target)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{client: client}
	}
}

// waitForEvent delivers the next read pump event to the UI loop.
func waitForEvent(c *Client) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.Events()
		return peerEventMsg{event: ev, ok: ok}
	}
}

// send runs a write off the UI loop so backpressure never blocks input.
func send(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return sendFailedMsg{err: err}
		}
		return nil
	}
}
