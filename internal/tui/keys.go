package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the TUI.
type keyMap struct {
	Quit       key.Binding
	Refresh    key.Binding
	About      key.Binding
	Help       key.Binding
	Config     key.Binding
	Nodes      key.Binding
	Partitions key.Binding
	Back       key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Search     key.Binding
	Escape     key.Binding
	Enter      key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	ToggleYAML key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	About: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "about"),
	),
	Help: key.NewBinding(
		key.WithKeys("h", "?"),
		key.WithHelp("h/?", "help"),
	),
	Config: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "slurm config"),
	),
	Nodes: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "nodes"),
	),
	Partitions: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "partitions"),
	),
	Back: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "back"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next table"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev table"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next page"),
	),
	ToggleYAML: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "json/yaml"),
	),
}

// footerHints is the short key summary shown in the footer.
const footerHints = "q: quit  r: refresh  b: back  n: nodes  p: partitions  c: config  h: help"
