package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const appName = "stop"

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   "stop › <screen title>"
//	center: colored "● STATE" for the top screen's refresh loop
//	right:  "Last: HH:MM:SS  Poll: Ns" ("Poll: manual" for on-demand screens)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	s := app.top()
	left := appName
	if s != nil {
		left += " › " + sanitize(s.title())
	}

	var center, right string
	if s != nil && s.coord() != nil {
		co := s.coord()
		center = StateStyle(co.state).Render("● " + co.state.String())

		lastStr := "--:--:--"
		if !co.lastUpdated.IsZero() {
			lastStr = co.lastUpdated.Format("15:04:05")
		}
		poll := "manual"
		if co.interval > 0 {
			poll = formatDuration(co.interval)
		}
		right = StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s", lastStr, poll))
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	leftVW := lipgloss.Width(left)
	centerVW := lipgloss.Width(center)
	rightVW := lipgloss.Width(right)

	spacing := innerWidth - leftVW - centerVW - rightVW
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).MaxHeight(1).Render(row)
}

// formatDuration formats a poll interval as a compact string, e.g. "10s" or "2m".
func formatDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// sanitize removes terminal escape sequences and control characters from
// text that came from external commands before it reaches the screen.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == 0x1b:
			i += escapeLen(s[i:])
			continue
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// escapeLen returns the byte length of the escape sequence at the start of s.
func escapeLen(s string) int {
	if len(s) < 2 {
		return len(s)
	}
	switch s[1] {
	case '[': // CSI: parameters then a final byte in 0x40–0x7e
		for j := 2; j < len(s); j++ {
			if s[j] >= 0x40 && s[j] <= 0x7e {
				return j + 1
			}
		}
		return len(s)
	case ']': // OSC: terminated by BEL or ST (ESC \)
		for j := 2; j < len(s); j++ {
			if s[j] == 0x07 {
				return j + 1
			}
			if s[j] == 0x1b && j+1 < len(s) && s[j+1] == '\\' {
				return j + 2
			}
		}
		return len(s)
	default:
		return 2
	}
}
