package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/engine"
	"github.com/dm/stop/internal/model"
)

// Home tables in focus order.
const (
	homePartitions = iota
	homeNodes
	homeJobs
	homeWaits
	homeAccounts
	homeUsers
	homeTableCount
)

// homeTable binds one home table to its projection of the HomeView.
type homeTable struct {
	title    string
	source   model.Source
	pageSize int
	project  func(model.HomeView) model.SummaryTable
}

var homeTables = [homeTableCount]homeTable{
	homePartitions: {"Partitions", model.SourcePartitions, 8, func(v model.HomeView) model.SummaryTable { return v.PartitionSummary }},
	homeNodes:      {"Nodes", model.SourceNodes, 8, func(v model.HomeView) model.SummaryTable { return v.NodeSummary }},
	homeJobs:       {"Jobs", model.SourceJobs, 8, func(v model.HomeView) model.SummaryTable { return v.JobTotals }},
	homeWaits:      {"Pending Wait", model.SourceJobs, 8, func(v model.HomeView) model.SummaryTable { return v.WaitStats }},
	homeAccounts:   {"Jobs by Account", model.SourceJobs, 5, func(v model.HomeView) model.SummaryTable { return v.AccountJobs }},
	homeUsers:      {"Jobs by User", model.SourceJobs, 5, func(v model.HomeView) model.SummaryTable { return v.UserJobs }},
}

// homeScreen is the cluster dashboard. One refresh fetches all three sources
// concurrently and every table is redrawn from the same snapshot.
type homeScreen struct {
	screenBase
	env *env

	current model.HomeView
	hasView bool
	tables  [homeTableCount]dataTable
	focus   int
}

func newHomeScreen(e *env, id screenID) *homeScreen {
	s := &homeScreen{
		screenBase: screenBase{sid: id, sk: kindHome, name: "Home"},
		env:        e,
	}
	s.co = e.newCoordinator(id, "home", e.interval, func(ctx context.Context) (any, error) {
		return engine.FetchHome(ctx, e.client), nil
	})
	for i, ht := range homeTables {
		s.tables[i] = newDataTable(ht.title, false)
		s.tables[i].pageSize = ht.pageSize
	}
	s.tables[s.focus].focused = true
	return s
}

func (s *homeScreen) update(msg tea.Msg) tea.Cmd {
	cmd, settled := s.coordinate(msg)
	if settled {
		if snap, ok := s.co.payload.(*model.Snapshot); ok && snap != nil {
			s.commit(snap)
		}
	}
	return cmd
}

// commit aggregates snap and replaces every table in one step.
func (s *homeScreen) commit(snap *model.Snapshot) {
	view := engine.Aggregate(snap)
	for i, ht := range homeTables {
		t := &s.tables[i]
		if view.Has(ht.source) {
			t.empty = "(no rows)"
		} else {
			t.empty = "(" + string(ht.source) + " unavailable)"
		}
		tbl := ht.project(view)
		if err := t.fill(tbl.Columns, tbl.Rows); err != nil {
			s.env.log.WithError(err).WithField("table", ht.title).Error("table update rejected")
		}
	}
	s.current = view
	s.hasView = true

	if view.Overview.HasNodes || view.Overview.HasJobs {
		s.env.history.Push(model.PointFromOverview(view.Overview, view.FetchedAt))
	}
	for src, err := range snap.Errors {
		s.env.log.WithField("source", src).WithError(err).Debug("home source degraded")
	}
}

func (s *homeScreen) degraded() []model.Source {
	if !s.hasView {
		return nil
	}
	return s.current.Degraded
}

func (s *homeScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Tab):
		s.setFocus((s.focus + 1) % homeTableCount)
		return nil, true
	case key.Matches(msg, keys.ShiftTab):
		s.setFocus((s.focus + homeTableCount - 1) % homeTableCount)
		return nil, true
	case key.Matches(msg, keys.Enter):
		if s.focus == homePartitions {
			if row, ok := s.tables[homePartitions].selected(); ok {
				return navigate(kindPartitionDetail, row[0]), true
			}
		}
		return nil, true
	case key.Matches(msg, keys.Escape):
		return nil, false
	}
	var cmd tea.Cmd
	s.tables[s.focus], cmd = s.tables[s.focus].Update(msg)
	return cmd, true
}

func (s *homeScreen) setFocus(i int) {
	s.tables[s.focus].focused = false
	s.focus = i
	s.tables[s.focus].focused = true
}

func (s *homeScreen) view() string {
	width := s.width
	if width <= 0 {
		width = 80
	}
	if !s.hasView {
		return StyleDim.Render("Fetching cluster state...")
	}

	parts := []string{renderOverview(s.current.Overview, width)}
	if trends := renderTrendsRow(s.env.history, width); trends != "" {
		parts = append(parts, trends)
	}
	parts = append(parts, s.tables[homePartitions].View(width))

	// The three two-column tables share one row on wide terminals.
	small := []string{
		s.tables[homeNodes].View(0),
		s.tables[homeJobs].View(0),
		s.tables[homeWaits].View(0),
	}
	if width >= 100 {
		colWidth := width / len(small)
		for i := range small {
			small[i] = lipgloss.NewStyle().Width(colWidth).Render(small[i])
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, small...))
	} else {
		parts = append(parts, small...)
	}

	parts = append(parts, s.tables[homeAccounts].View(width), s.tables[homeUsers].View(width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
