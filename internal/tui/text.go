package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/engine"
)

const configFailure = "Failed to fetch Slurm configuration."

// textScreen shows scrollable text. The config screen loads its text once
// through a coordinator with no timer; about and help are static.
type textScreen struct {
	screenBase
	env *env
	vp  viewport.Model
}

func newStaticScreen(e *env, id screenID, k screenKind, name, text string) *textScreen {
	s := &textScreen{
		screenBase: screenBase{sid: id, sk: k, name: name},
		env:        e,
		vp:         viewport.New(80, 20),
	}
	s.vp.SetContent(text)
	return s
}

func newAboutScreen(e *env, id screenID, version string) *textScreen {
	return newStaticScreen(e, id, kindAbout, "About", aboutText(version, e))
}

func newHelpScreen(e *env, id screenID) *textScreen {
	return newStaticScreen(e, id, kindHelp, "Help", helpText())
}

// newConfigScreen shows `scontrol show config` verbatim. It refreshes only
// when asked to.
func newConfigScreen(e *env, id screenID) *textScreen {
	s := newStaticScreen(e, id, kindConfig, "Slurm Configuration", StyleDim.Render("Fetching configuration..."))
	s.co = e.newCoordinator(id, "config", 0, func(ctx context.Context) (any, error) {
		return engine.FetchConfig(ctx, e.client)
	})
	return s
}

func (s *textScreen) update(msg tea.Msg) tea.Cmd {
	cmd, settled := s.coordinate(msg)
	if !settled {
		return cmd
	}
	text, ok := s.co.payload.(string)
	switch {
	case s.co.lastErr != nil && !ok:
		s.vp.SetContent(StyleError.Render(configFailure))
	case ok:
		s.vp.SetContent(sanitizeBlock(text))
	}
	return cmd
}

func (s *textScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, keys.Escape) {
		return nil, false
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return cmd, true
}

func (s *textScreen) setSize(width, height int) {
	s.screenBase.setSize(width, height)
	s.vp.Width = max(width, 1)
	s.vp.Height = max(height-1, 1)
}

func (s *textScreen) view() string {
	title := StyleSectionTitle.Render(s.name) + "  " + StyleDim.Render("[↑↓: scroll]  [b: back]")
	return lipgloss.JoinVertical(lipgloss.Left, title, s.vp.View())
}

func aboutText(version string, e *env) string {
	if version == "" {
		version = "dev"
	}
	lines := []string{
		appName + " " + version,
		"",
		"A terminal dashboard for Slurm clusters.",
		"",
		"The home screen polls sinfo, squeue and scontrol concurrently and",
		"redraws every summary from the same snapshot. A source that fails is",
		"reported in the footer while the others keep updating.",
		"",
		fmt.Sprintf("Refresh interval: %s", formatDuration(e.interval)),
		fmt.Sprintf("Trend history:    %d samples", e.history.Cap()),
	}
	return strings.Join(lines, "\n")
}

// helpText lists every key binding.
func helpText() string {
	bindings := []key.Binding{
		keys.About, keys.Help, keys.Config, keys.Nodes, keys.Partitions,
		keys.Refresh, keys.Search, keys.Escape, keys.Enter, keys.Back, keys.Quit,
		keys.Tab, keys.ShiftTab, keys.PrevPage, keys.NextPage, keys.Up, keys.Down,
		keys.ToggleYAML,
	}
	lines := []string{"Key bindings", ""}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-10s %s", h.Key, h.Desc))
	}
	lines = append(lines,
		fmt.Sprintf("  %-10s %s", "1-9", "sort by column (again to reverse)"),
		"",
		"Search filters the name column as you type. esc clears the filter,",
		"enter keeps it. esc outside search goes back.",
	)
	return strings.Join(lines, "\n")
}
