package tui

import "github.com/charmbracelet/lipgloss"

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// utilizationSeverity returns Warning above 80% and Critical above 90%.
// It applies to both CPU and memory allocation.
func utilizationSeverity(pct float64) severity {
	switch {
	case pct > 90:
		return severityCritical
	case pct > 80:
		return severityWarning
	default:
		return severityNormal
	}
}

// brokenSeverity is Critical whenever any node is unusable.
func brokenSeverity(broken int) severity {
	if broken > 0 {
		return severityCritical
	}
	return severityNormal
}

// pendingSeverity returns Warning when pending jobs outnumber running ones.
func pendingSeverity(pending, running int) severity {
	if pending > 0 && pending > running {
		return severityWarning
	}
	return severityNormal
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// severityFg returns the card foreground for s, falling back to normal.
func severityFg(s severity, normal lipgloss.Color) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return normal
	}
}
