package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/format"
	"github.com/dm/stop/internal/model"
)

const overviewCards = 7

// renderOverview renders the cluster overview bar from the home view.
// Wide terminals (>= 80 cols): all cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2.
// Cards whose source is unavailable show N/A.
func renderOverview(o model.ClusterOverview, width int) string {
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = max((width-4)/2, 10)
	} else {
		cardWidth = max((width-2*overviewCards)/overviewCards, 8)
	}
	barWidth := max(cardWidth-4, 4)

	na := "N/A"
	card := func(fg lipgloss.Color, lines ...string) string {
		return StyleOverviewCard.
			Foreground(fg).
			Width(cardWidth).
			Render(strings.Join(lines, "\n"))
	}

	nodes, broken, cpu, mem := na, na, na, na
	cpuBar, memBar := strings.Repeat(" ", barWidth), strings.Repeat(" ", barWidth)
	memDetail := ""
	cpuSev, memSev, brokenSev := severityNormal, severityNormal, severityNormal
	if o.HasNodes {
		nodes = format.FormatNumber(int64(o.TotalNodes))
		broken = format.FormatNumber(int64(o.BrokenNodes))
		brokenSev = brokenSeverity(o.BrokenNodes)

		cpuPct := o.CPUPercent()
		cpuSev = utilizationSeverity(cpuPct)
		cpu = format.FormatPercent(cpuPct)
		cpuBar = renderMiniBar(cpuPct, barWidth)

		memPct := o.MemoryPercent()
		memSev = utilizationSeverity(memPct)
		mem = format.FormatPercent(memPct)
		memBar = renderMiniBar(memPct, barWidth)
		memDetail = format.FormatMegabytes(o.AllocMemoryMB) + "/" + format.FormatMegabytes(o.TotalMemoryMB)
	}
	if cpuSev == severityCritical {
		cpu += "!"
	}
	if memSev == severityCritical {
		mem += "!"
	}

	running, pending := na, na
	pendingSev := severityNormal
	if o.HasJobs {
		running = format.FormatNumber(int64(o.RunningJobs))
		pending = format.FormatNumber(int64(o.PendingJobs))
		pendingSev = pendingSeverity(o.PendingJobs, o.RunningJobs)
	}

	wait := format.FormatOptionalSeconds(o.MaxWait)

	cards := []string{
		card(colorBlue, nodes, "Nodes"),
		card(severityFg(brokenSev, colorGreen), broken, "Broken"),
		card(severityFg(cpuSev, colorCyan), cpu, cpuBar, "CPU Alloc"),
		card(severityFg(memSev, colorPurple), mem, memBar, memDetail, "Memory"),
		card(colorGreen, running, "Running"),
		card(severityFg(pendingSev, colorOrange), pending, "Pending"),
		card(colorWhite, wait, "Max Wait"),
	}

	if narrowMode {
		var rows []string
		for i := 0; i < len(cards); i += 2 {
			if i+1 < len(cards) {
				rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i], cards[i+1]))
			} else {
				rows = append(rows, cards[i])
			}
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = min(max(percent, 0), 100)
	filled := min(int(percent/100.0*float64(width)), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

