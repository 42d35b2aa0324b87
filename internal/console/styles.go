package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the console UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, spinner
	SentColor    = lipgloss.Color("#43BF6D") // Green - outgoing messages
	RecvColor    = lipgloss.Color("#5FAFFF") // Blue - incoming messages
	ControlColor = lipgloss.Color("#FFA500") // Orange - pings, pongs, close
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors
	MutedColor   = lipgloss.Color("#626262") // Gray - timestamps, notices
	TextColor    = lipgloss.Color("#FFFFFF") // White - message bodies
)

// Layout constants
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	DefaultHeight    = 24 // Fallback before the first WindowSizeMsg
)

// Shared styles for the console UI
var (
	// HeaderStyle is for the connection status line at the top
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(1)

	// HeaderTargetStyle is for the peer address in the header
	HeaderTargetStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// TimestampStyle is for the time prefix on transcript lines
	TimestampStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// SentStyle is for the outgoing message marker
	SentStyle = lipgloss.NewStyle().
			Foreground(SentColor).
			Bold(true)

	// RecvStyle is for the incoming message marker
	RecvStyle = lipgloss.NewStyle().
			Foreground(RecvColor).
			Bold(true)

	// ControlStyle is for ping/pong/close notices
	ControlStyle = lipgloss.NewStyle().
			Foreground(ControlColor)

	// NoticeStyle is for local status notices
	NoticeStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// ErrorStyle is for error lines
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// SpinnerStyle is for the connect spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// PromptStyle is for the input prompt marker
	PromptStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// HelpStyle is for the key binding help footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)
)

// Transcript line markers
const (
	SentMarker    = "→"
	RecvMarker    = "←"
	ControlMarker = "•"
	ErrorMarker   = "✗"
)
