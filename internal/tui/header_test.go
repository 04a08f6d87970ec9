package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/dm/stop/internal/model"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text passthrough", "hello world", "hello world"},
		{"CSI color reset stripped", "\x1b[0m", ""},
		{"CSI color sequence stripped, text preserved", "\x1b[31mred\x1b[0m", "red"},
		{"OSC terminated by BEL stripped", "\x1b]0;title\x07text", "text"},
		{"OSC terminated by ST stripped", "\x1b]0;title\x1b\\text", "text"},
		{"single char escape stripped", "\x1bA", ""},
		{"lone ESC at end stripped", "hello\x1b", "hello"},
		{"C1 control U+0084 stripped", "a\xc2\x84b", "ab"},
		{"DEL 0x7F stripped", "a\x7fb", "ab"},
		{"NUL control 0x01 stripped", "a\x01b", "ab"},
		{"newline stripped", "a\nb", "ab"},
		{"mixed safe and unsafe", "hello\x1b[31m world", "hello world"},
		{"unicode kept", "nœud-é", "nœud-é"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitize(tc.input))
		})
	}
}

func TestSanitizeBlock_KeepsLineBreaks(t *testing.T) {
	assert.Equal(t, "red\nplain", sanitizeBlock("\x1b[31mred\x1b[0m\nplain"))
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{"5 seconds", 5 * time.Second, "5s"},
		{"30 seconds", 30 * time.Second, "30s"},
		{"59 seconds", 59 * time.Second, "59s"},
		{"60 seconds exact", 60 * time.Second, "1m"},
		{"90 seconds", 90 * time.Second, "90s"},
		{"300 seconds", 300 * time.Second, "5m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatDuration(tc.input))
		})
	}
}

// headerLineCount returns the number of lines in a rendered header string.
func headerLineCount(rendered string) int {
	return strings.Count(stripANSI(rendered), "\n") + 1
}

func TestRenderHeader(t *testing.T) {
	app := newTestApp(t, newFakeSlurm())
	app.width = 100

	out := stripANSI(renderHeader(app))
	assert.Contains(t, out, "stop › Home")
	assert.Contains(t, out, "● IDLE")
	assert.Contains(t, out, "Last: --:--:--")
	assert.Contains(t, out, "Poll: 60m")
	assert.Equal(t, 100, lipgloss.Width(out))

	co := app.top().coord()
	co.state = model.StateReady
	co.lastUpdated = time.Date(2024, 1, 1, 14, 32, 5, 0, time.Local)
	out = stripANSI(renderHeader(app))
	assert.Contains(t, out, "● READY")
	assert.Contains(t, out, "Last: 14:32:05")
}

func TestRenderHeader_NarrowWidths(t *testing.T) {
	app := newTestApp(t, newFakeSlurm())
	for _, w := range []int{60, 30} {
		app.width = w
		out := renderHeader(app)
		assert.Equal(t, 1, headerLineCount(out), "header must be a single line at width=%d", w)
		assert.Equal(t, w, lipgloss.Width(out), "header must fill the width exactly at width=%d", w)
	}
}

func TestRenderHeader_SanitizesTitle(t *testing.T) {
	app := newTestApp(t, newFakeSlurm())
	app.Update(navigateMsg{target: kindNodeDetail, name: "evil\x1b]0;pwned\x07node"})
	out := renderHeader(app)
	assert.NotContains(t, out, "\x1b]0;")
	assert.Contains(t, stripANSI(out), "node evilnode")
}

func TestRenderFooter(t *testing.T) {
	app := newTestApp(t, newFakeSlurm())

	out := stripANSI(renderFooter(app))
	assert.Equal(t, 1, lipgloss.Height(out), "hints only before the first refresh")
	assert.Contains(t, out, "q: quit")

	co := app.top().coord()
	co.lastUpdated = time.Date(2024, 3, 5, 9, 4, 7, 0, time.Local)
	co.lastErr = errors.New("sinfo: exit status 1\x1b[2J")
	out = stripANSI(renderFooter(app))
	assert.Equal(t, footerLines, lipgloss.Height(out))
	assert.Contains(t, out, "Last updated: Tue Mar  5 09:04:07 2024")
	assert.Contains(t, out, "error: sinfo: exit status 1")
	assert.NotContains(t, out, "[2J")
}

func TestRenderFooter_NarrowStaysTwoLines(t *testing.T) {
	app := newTestApp(t, newFakeSlurm())
	app.width = 40
	app.top().coord().lastUpdated = time.Now()
	out := renderFooter(app)
	assert.Equal(t, footerLines, lipgloss.Height(out))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}
