package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dm/stop/internal/model"
)

// fetchFunc loads a screen's data. It runs inside a tea.Cmd goroutine and
// must honor ctx.
type fetchFunc func(ctx context.Context) (any, error)

// completer is implemented by payloads that can be partially successful,
// such as *model.Snapshot. An incomplete payload settles as degraded.
type completer interface {
	Complete() bool
}

// RefreshObserver receives one observation per settled refresh.
type RefreshObserver interface {
	ObserveRefresh(view, state string)
}

// coordinator owns the refresh loop of one screen: its timer, its in-flight
// guard and its cached payload. It is only touched from App.Update.
type coordinator struct {
	screen   screenID
	view     string
	interval time.Duration
	fetch    fetchFunc

	ctx    context.Context
	cancel context.CancelFunc

	gen      int  // incremented per fetch; results from older gens are stale
	tickSeq  int  // incremented per scheduled tick; older ticks are ignored
	fetching bool // true while a fetch goroutine is in flight

	state       model.ViewState
	payload     any // last successful payload
	lastUpdated time.Time
	lastErr     error

	log      logrus.FieldLogger
	observer RefreshObserver
}

// newCoordinator returns an idle coordinator whose context derives from
// parent. An interval <= 0 disables the timer; the screen refreshes only on
// demand.
func newCoordinator(parent context.Context, id screenID, view string, interval time.Duration, fetch fetchFunc, log logrus.FieldLogger, obs RefreshObserver) *coordinator {
	ctx, cancel := context.WithCancel(parent)
	return &coordinator{
		screen:   id,
		view:     view,
		interval: interval,
		fetch:    fetch,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.WithFields(logrus.Fields{"view": view, "screen": int(id)}),
		observer: obs,
	}
}

// start issues the first fetch.
func (c *coordinator) start() tea.Cmd {
	return c.refresh()
}

// refresh issues a fetch unless one is already in flight or the screen has
// been stopped.
func (c *coordinator) refresh() tea.Cmd {
	if c.fetching || c.ctx.Err() != nil {
		return nil
	}
	c.fetching = true
	c.gen++
	c.state = model.StateFetching
	c.log.WithField("gen", c.gen).Debug("refresh")
	return fetchCmd(c.ctx, c.screen, c.gen, c.fetch)
}

// accept reports whether msg belongs to the fetch currently in flight.
func (c *coordinator) accept(msg fetchResultMsg) bool {
	return msg.screen == c.screen && msg.gen == c.gen && c.fetching && c.ctx.Err() == nil
}

// settle records an accepted result and schedules the next tick. A failed
// fetch keeps the previous payload so the screen goes on showing it.
func (c *coordinator) settle(msg fetchResultMsg) tea.Cmd {
	c.fetching = false
	switch {
	case msg.err != nil:
		c.lastErr = msg.err
		c.state = model.StateDegraded
	default:
		c.payload = msg.payload
		c.lastUpdated = msg.at
		c.lastErr = nil
		c.state = model.StateReady
		if p, ok := msg.payload.(completer); ok && !p.Complete() {
			c.state = model.StateDegraded
		}
	}
	if c.observer != nil {
		c.observer.ObserveRefresh(c.view, c.state.String())
	}
	return c.schedule()
}

// tick handles a timer message. Ticks from a superseded schedule are dropped.
func (c *coordinator) tick(msg refreshTickMsg) tea.Cmd {
	if msg.screen != c.screen || msg.seq != c.tickSeq {
		return nil
	}
	return c.refresh()
}

// schedule arms the timer for the next refresh.
func (c *coordinator) schedule() tea.Cmd {
	c.tickSeq++
	if c.interval <= 0 || c.ctx.Err() != nil {
		return nil
	}
	return tickCmd(c.screen, c.tickSeq, c.interval)
}

// stop cancels any in-flight fetch. Results that arrive afterwards are
// rejected by accept.
func (c *coordinator) stop() {
	c.cancel()
	c.fetching = false
	c.tickSeq++
}

// fetchCmd runs fn off the Update loop and reports the result.
func fetchCmd(ctx context.Context, id screenID, gen int, fn fetchFunc) tea.Cmd {
	return func() tea.Msg {
		payload, err := fn(ctx)
		return fetchResultMsg{screen: id, gen: gen, payload: payload, err: err, at: time.Now()}
	}
}

// tickCmd schedules the next refresh of a screen after d.
func tickCmd(id screenID, seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return refreshTickMsg{screen: id, seq: seq}
	})
}
