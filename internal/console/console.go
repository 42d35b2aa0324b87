package console

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run connects to the peer at target and drives the interactive console
// until the user quits. It refuses to start without a terminal on stdout.
func Run(target string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("console requires an interactive terminal")
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w < MinTerminalWidth {
		return fmt.Errorf("terminal too narrow: %d columns, need at least %d", w, MinTerminalWidth)
	}

	p := tea.NewProgram(NewModel(target), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("console failed: %w", err)
	}

	// A connection that never came up is a command failure; everything
	// after that point was already shown in the transcript.
	if m, ok := final.(Model); ok && m.client == nil && m.err != nil {
		return m.err
	}
	return nil
}
