package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/model"
)

// renderFooter renders the status line and key hints at full terminal width.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	var status []string
	if s := app.top(); s != nil && s.coord() != nil {
		co := s.coord()
		if !co.lastUpdated.IsZero() {
			status = append(status, "Last updated: "+co.lastUpdated.Format(time.ANSIC))
		}
		if d, ok := s.(interface{ degraded() []model.Source }); ok {
			if srcs := d.degraded(); len(srcs) > 0 {
				names := make([]string, len(srcs))
				for i, src := range srcs {
					names[i] = string(src)
				}
				status = append(status, StyleYellow.Render("degraded: "+strings.Join(names, ", ")))
			}
		}
		if co.lastErr != nil {
			msg := sanitize(co.lastErr.Error())
			status = append(status, StyleError.Render("error: "+truncateName(msg, max(width/2, 10))))
		}
	}

	lines := []string{StyleDim.Width(width).MaxHeight(1).Render(footerHints)}
	if len(status) > 0 {
		lines = append([]string{lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(status, "  "))}, lines...)
	}
	return strings.Join(lines, "\n")
}
