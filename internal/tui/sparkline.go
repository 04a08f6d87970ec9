package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks are the eight block heights used by sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws the most recent values as a block sparkline exactly
// width cells wide, colored with color.
//
// Values are scaled against ceiling; a ceiling <= 0 scales against the
// largest visible value instead. Fewer values than width are right-aligned
// behind spaces, and an all-zero series sits on the floor level.
func RenderSparkline(values []float64, width int, ceiling float64, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	top := ceiling
	if top <= 0 {
		top = slices.Max(values)
	}
	last := len(sparkBlocks) - 1

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		idx := 0
		if top > 0 {
			idx = min(max(int(v/top*float64(last)), 0), last)
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
