package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/logging"
	"github.com/dm/stop/internal/model"
)

// DefaultInterval is the refresh interval used when Options leaves it unset.
const DefaultInterval = 30 * time.Second

// footerLines is the height reserved for the footer.
const footerLines = 2

// Options configures an App.
type Options struct {
	Client      client.SlurmClient
	Interval    time.Duration
	HistorySize int
	Logger      logrus.FieldLogger
	Observer    RefreshObserver
	Version     string
}

// App is the root Bubble Tea model for stop. It owns the screen stack and
// routes fetch results to the screen that asked for them.
type App struct {
	env     *env
	cancel  context.CancelFunc
	version string

	stack  []screen
	nextID screenID

	// Layout
	width, height int

	quitting bool
}

// NewApp creates an App showing the home screen. Every fetch it issues
// derives from ctx and is cancelled when the App quits.
func NewApp(ctx context.Context, opts Options) *App {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(ctx)
	app := &App{
		env: &env{
			ctx:      ctx,
			client:   opts.Client,
			interval: opts.Interval,
			log:      opts.Logger,
			observer: opts.Observer,
			history:  model.NewTrendHistory(opts.HistorySize),
		},
		cancel:  cancel,
		version: opts.Version,
	}
	app.stack = []screen{newHomeScreen(app.env, app.newID())}
	return app
}

// Init implements tea.Model. Starts the first home fetch immediately.
func (app *App) Init() tea.Cmd {
	return app.top().init()
}

// Update implements tea.Model and is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		for _, s := range app.stack {
			s.setSize(app.width, app.bodyHeight())
		}
		return app, nil

	case fetchResultMsg:
		if s := app.find(msg.screen); s != nil {
			return app, s.update(msg)
		}
		app.env.log.WithField("screen", int(msg.screen)).Debug("dropping result for closed screen")
		return app, nil

	case refreshTickMsg:
		if s := app.find(msg.screen); s != nil {
			return app, s.update(msg)
		}
		return app, nil

	case navigateMsg:
		return app, app.open(msg.target, msg.name)

	case tea.KeyMsg:
		return app, app.handleKey(msg)
	}

	// Anything else (cursor blink and the like) belongs to the top screen.
	return app, app.top().update(msg)
}

func (app *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return app.quit()
	}

	top := app.top()
	if top.capturing() {
		cmd, _ := top.handleKey(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return app.quit()
	case key.Matches(msg, keys.Refresh):
		return top.refresh()
	case key.Matches(msg, keys.About):
		return app.open(kindAbout, "")
	case key.Matches(msg, keys.Help):
		return app.open(kindHelp, "")
	case key.Matches(msg, keys.Config):
		return app.open(kindConfig, "")
	case key.Matches(msg, keys.Nodes):
		return app.open(kindNodes, "")
	case key.Matches(msg, keys.Partitions):
		return app.open(kindPartitions, "")
	case key.Matches(msg, keys.Back):
		app.pop()
		return nil
	}

	cmd, handled := top.handleKey(msg)
	if !handled && key.Matches(msg, keys.Escape) {
		app.pop()
	}
	return cmd
}

// open pushes a new screen of kind k and starts it. Reopening the list or
// text screen already on top is a no-op.
func (app *App) open(k screenKind, name string) tea.Cmd {
	if app.top().kind() == k && name == "" {
		return nil
	}

	id := app.newID()
	var s screen
	switch k {
	case kindAbout:
		s = newAboutScreen(app.env, id, app.version)
	case kindHelp:
		s = newHelpScreen(app.env, id)
	case kindConfig:
		s = newConfigScreen(app.env, id)
	case kindNodes:
		s = newNodeListScreen(app.env, id)
	case kindPartitions:
		s = newPartitionListScreen(app.env, id)
	case kindNodeDetail:
		s = newNodeDetailScreen(app.env, id, name)
	case kindPartitionDetail:
		s = newPartitionDetailScreen(app.env, id, name)
	default:
		return nil
	}

	s.setSize(app.width, app.bodyHeight())
	app.stack = append(app.stack, s)
	app.env.log.WithFields(logrus.Fields{"screen": int(id), "title": s.title()}).Debug("push screen")
	return s.init()
}

// pop closes the top screen. The home screen is never popped.
func (app *App) pop() {
	if len(app.stack) <= 1 {
		return
	}
	top := app.top()
	top.close()
	app.stack = app.stack[:len(app.stack)-1]
	app.env.log.WithField("screen", int(top.id())).Debug("pop screen")
}

// quit stops every refresh loop and cancels in-flight fetches.
func (app *App) quit() tea.Cmd {
	app.quitting = true
	for _, s := range app.stack {
		s.close()
	}
	app.cancel()
	return tea.Quit
}

func (app *App) top() screen {
	return app.stack[len(app.stack)-1]
}

func (app *App) find(id screenID) screen {
	for _, s := range app.stack {
		if s.id() == id {
			return s
		}
	}
	return nil
}

func (app *App) newID() screenID {
	app.nextID++
	return app.nextID
}

// bodyHeight is the height left for the top screen between header and footer.
func (app *App) bodyHeight() int {
	if app.height <= 0 {
		return 0
	}
	return max(app.height-1-footerLines, 1)
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	if app.quitting {
		return ""
	}
	body := app.top().view()
	if h := app.bodyHeight(); h > 0 {
		body = lipgloss.NewStyle().MaxHeight(h).Render(body)
	}
	return strings.Join([]string{renderHeader(app), body, renderFooter(app)}, "\n")
}
