package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// screenID identifies one pushed screen for the lifetime of the App. IDs are
// never reused, so messages addressed to a popped screen match nothing.
type screenID int

// fetchResultMsg delivers the outcome of one coordinator fetch.
type fetchResultMsg struct {
	screen  screenID
	gen     int
	payload any
	err     error
	at      time.Time
}

// refreshTickMsg triggers the next scheduled fetch of a screen.
type refreshTickMsg struct {
	screen screenID
	seq    int
}

// screenKind names the kinds of screen that can be pushed.
type screenKind int

const (
	kindHome screenKind = iota
	kindAbout
	kindHelp
	kindConfig
	kindNodes
	kindNodeDetail
	kindPartitions
	kindPartitionDetail
)

// navigateMsg asks the App to push a screen. name selects the node or
// partition for detail screens.
type navigateMsg struct {
	target screenKind
	name   string
}

func navigate(target screenKind, name string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{target: target, name: name} }
}
