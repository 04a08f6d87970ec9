package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/format"
	"github.com/dm/stop/internal/model"
)

// trendCard describes one sparkline panel of the trends row.
type trendCard struct {
	title   string
	field   string
	ceiling float64 // 0 = scale to the visible maximum
	color   lipgloss.Color
	value   func(model.TrendPoint) string
}

var trendCards = []trendCard{
	{
		title: "Running Jobs", field: model.TrendRunning, color: colorGreen,
		value: func(p model.TrendPoint) string { return format.FormatNumber(int64(p.Running)) },
	},
	{
		title: "Pending Jobs", field: model.TrendPending, color: colorOrange,
		value: func(p model.TrendPoint) string { return format.FormatNumber(int64(p.Pending)) },
	},
	{
		title: "CPU Allocation", field: model.TrendCPU, ceiling: 100, color: colorCyan,
		value: func(p model.TrendPoint) string { return format.FormatPercent(p.CPUPercent) },
	},
	{
		title: "Broken Nodes", field: model.TrendBroken, color: colorRed,
		value: func(p model.TrendPoint) string { return format.FormatNumber(int64(p.Broken)) },
	},
}

// renderMetricCard renders a single card with title, value, and sparkline.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │
//	│ 1,204            │
//	│ ▁▂▃▅▇█▇▅▃▂       │
//	╰──────────────────╯
func renderMetricCard(title, value string, sparkValues []float64, ceiling float64, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	const minCardWidth = 8
	cardWidth = max(cardWidth, minCardWidth)

	// Border (2) and padding (2) come out of the card width.
	innerWidth := max(cardWidth-6, 1)

	valueLine := lipgloss.NewStyle().Bold(true).Foreground(color).Render(value)
	sparkLine := RenderSparkline(sparkValues, innerWidth, ceiling, color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		valueLine,
		sparkLine,
	))
}

// renderTrendsRow renders the four trend cards under a "Cluster Trends"
// label. Wide terminals get a 1x4 row, narrow ones a 2x2 grid. It returns
// an empty string until the history holds a sample.
func renderTrendsRow(history *model.TrendHistory, width int) string {
	latest, ok := history.Latest()
	if !ok {
		return ""
	}

	titleStyles := map[string]lipgloss.Style{
		model.TrendCPU:    severityTitleStyle(utilizationSeverity(latest.CPUPercent)),
		model.TrendBroken: severityTitleStyle(brokenSeverity(int(latest.Broken))),
	}
	render := func(c trendCard, cardWidth int) string {
		style, ok := titleStyles[c.field]
		if !ok {
			style = StyleDim
		}
		return renderMetricCard(c.title, c.value(latest), history.Values(c.field), c.ceiling, cardWidth, c.color, style)
	}

	if width > 0 && width < 80 {
		// Each card renders at cardWidth-2 cells, so two fill the width.
		cardWidth := (width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		label := StyleDim.MaxWidth(width).Render("Cluster Trends")
		top := lipgloss.JoinHorizontal(lipgloss.Top, render(trendCards[0], cardWidth), render(trendCards[1], cardWidth))
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, render(trendCards[2], cardWidth), render(trendCards[3], cardWidth))
		return lipgloss.JoinVertical(lipgloss.Left, label, top, bottom)
	}

	cardWidth := max((width+8)/4, 20)
	cards := make([]string, len(trendCards))
	for i, c := range trendCards {
		cards[i] = render(c, cardWidth)
	}
	return lipgloss.JoinVertical(lipgloss.Left, StyleDim.Render("Cluster Trends"), lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

// severityTitleStyle keeps the muted title at normal severity and applies
// the alert color otherwise.
func severityTitleStyle(s severity) lipgloss.Style {
	if s == severityNormal {
		return StyleDim
	}
	return severityToStyle(s).Bold(true)
}
