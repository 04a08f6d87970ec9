package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/engine"
	"github.com/dm/stop/internal/model"
)

// listChrome is the number of lines the table title, header, rule and
// selection line take around the rows.
const listChrome = 5

// listScreen is a searchable browser over one data source. The filter is
// re-applied to the cached payload on every keystroke; only the refresh loop
// fetches.
type listScreen struct {
	screenBase
	env     *env
	table   dataTable
	project func(payload any) (model.SummaryTable, bool)
	detail  screenKind
	failure string
}

// newNodeListScreen browses every node reported by scontrol.
func newNodeListScreen(e *env, id screenID) *listScreen {
	s := &listScreen{
		screenBase: screenBase{sid: id, sk: kindNodes, name: "Nodes"},
		env:        e,
		table:      newDataTable("Nodes", true),
		detail:     kindNodeDetail,
		failure:    "Failed to fetch node list.",
		project: func(payload any) (model.SummaryTable, bool) {
			nodes, _ := payload.(*client.NodesResponse)
			return engine.NodeList(nodes)
		},
	}
	s.co = e.newCoordinator(id, "nodes", e.interval, func(ctx context.Context) (any, error) {
		return engine.FetchNodes(ctx, e.client)
	})
	s.table.focused = true
	return s
}

// newPartitionListScreen browses every partition reported by sinfo.
func newPartitionListScreen(e *env, id screenID) *listScreen {
	s := &listScreen{
		screenBase: screenBase{sid: id, sk: kindPartitions, name: "Partitions"},
		env:        e,
		table:      newDataTable("Partitions", true),
		detail:     kindPartitionDetail,
		failure:    "Failed to fetch partition list.",
		project: func(payload any) (model.SummaryTable, bool) {
			sinfo, _ := payload.(*client.SinfoResponse)
			return engine.PartitionList(sinfo)
		},
	}
	s.co = e.newCoordinator(id, "partitions", e.interval, func(ctx context.Context) (any, error) {
		return engine.FetchPartitions(ctx, e.client)
	})
	s.table.focused = true
	return s
}

func (s *listScreen) update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(fetchResultMsg); !ok {
		if _, ok := msg.(refreshTickMsg); !ok {
			var cmd tea.Cmd
			s.table, cmd = s.table.Update(msg)
			return cmd
		}
	}
	cmd, settled := s.coordinate(msg)
	if settled && s.co.lastErr == nil {
		tbl, _ := s.project(s.co.payload)
		if err := s.table.fill(tbl.Columns, tbl.Rows); err != nil {
			s.env.log.WithError(err).WithField("table", s.name).Error("table update rejected")
		}
	}
	return cmd
}

func (s *listScreen) capturing() bool {
	return s.table.capturing()
}

func (s *listScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !s.table.capturing() {
		switch {
		case key.Matches(msg, keys.Enter):
			if row, ok := s.table.selected(); ok {
				return navigate(s.detail, row[0]), true
			}
			return nil, true
		case key.Matches(msg, keys.Escape) && !s.table.filtered():
			return nil, false
		}
	}
	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd, true
}

func (s *listScreen) setSize(width, height int) {
	s.screenBase.setSize(width, height)
	if height > listChrome {
		s.table.setPageSize(height - listChrome)
	}
}

func (s *listScreen) view() string {
	if !s.table.registered() && s.co.lastErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, StyleError.Render(s.failure), StyleDim.Render("Press r to retry"))
	}
	return s.table.View(s.width)
}
