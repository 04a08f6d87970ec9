package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/model"
)

// screen is one entry of the navigation stack. Screens mutate themselves in
// place and are only touched from App.Update.
type screen interface {
	id() screenID
	kind() screenKind
	title() string
	// init starts the screen's refresh loop, if it has one.
	init() tea.Cmd
	// update handles non-key messages addressed to this screen.
	update(msg tea.Msg) tea.Cmd
	// handleKey reports whether the screen consumed the key.
	handleKey(msg tea.KeyMsg) (tea.Cmd, bool)
	view() string
	setSize(width, height int)
	// refresh triggers an immediate fetch.
	refresh() tea.Cmd
	// coord returns the refresh coordinator, or nil for static screens.
	coord() *coordinator
	// capturing reports whether a text input owns the keyboard.
	capturing() bool
	close()
}

// env is the shared environment handed to every screen.
type env struct {
	ctx      context.Context
	client   client.SlurmClient
	interval time.Duration
	log      logrus.FieldLogger
	observer RefreshObserver
	history  *model.TrendHistory
}

// newCoordinator returns a coordinator for screen id bound to the app context.
func (e *env) newCoordinator(id screenID, view string, interval time.Duration, fetch fetchFunc) *coordinator {
	return newCoordinator(e.ctx, id, view, interval, fetch, e.log, e.observer)
}

// screenBase carries the state common to all screens.
type screenBase struct {
	sid    screenID
	sk     screenKind
	name   string
	co     *coordinator
	width  int
	height int
}

func (b *screenBase) id() screenID { return b.sid }
func (b *screenBase) kind() screenKind { return b.sk }
func (b *screenBase) title() string { return b.name }
func (b *screenBase) coord() *coordinator { return b.co }
func (b *screenBase) capturing() bool { return false }

func (b *screenBase) init() tea.Cmd {
	if b.co == nil {
		return nil
	}
	return b.co.start()
}

func (b *screenBase) close() {
	if b.co != nil {
		b.co.stop()
	}
}

func (b *screenBase) setSize(width, height int) {
	b.width = width
	b.height = height
}

// coordinate feeds fetch results and ticks to the coordinator. settled is
// true when a result was accepted and the screen should redraw from the
// coordinator's payload.
func (b *screenBase) coordinate(msg tea.Msg) (cmd tea.Cmd, settled bool) {
	if b.co == nil {
		return nil, false
	}
	switch msg := msg.(type) {
	case fetchResultMsg:
		if !b.co.accept(msg) {
			return nil, false
		}
		return b.co.settle(msg), true
	case refreshTickMsg:
		return b.co.tick(msg), false
	}
	return nil, false
}

func (b *screenBase) refresh() tea.Cmd {
	if b.co == nil {
		return nil
	}
	return b.co.refresh()
}
