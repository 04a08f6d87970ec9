package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/engine"
	"github.com/dm/stop/internal/model"
)

// detailScreen shows the raw scontrol document for one node or partition,
// refreshed on its own timer.
type detailScreen struct {
	screenBase
	env    *env
	entity string // "node" or "partition"
	target string
	asYAML bool
	doc    json.RawMessage
	vp     viewport.Model
}

func newNodeDetailScreen(e *env, id screenID, name string) *detailScreen {
	return newDetailScreen(e, id, kindNodeDetail, engine.DetailNode, name, engine.FetchNodeDetail)
}

func newPartitionDetailScreen(e *env, id screenID, name string) *detailScreen {
	return newDetailScreen(e, id, kindPartitionDetail, engine.DetailPartition, name, engine.FetchPartitionDetail)
}

type detailFetch func(ctx context.Context, c client.SlurmClient, name string) (*model.DetailSnapshot, error)

func newDetailScreen(e *env, id screenID, k screenKind, entity, name string, fetch detailFetch) *detailScreen {
	s := &detailScreen{
		screenBase: screenBase{sid: id, sk: k, name: sanitize(entity + " " + name)},
		env:        e,
		entity:     entity,
		target:     name,
		vp:         viewport.New(80, 20),
	}
	s.co = e.newCoordinator(id, entity, e.interval, func(ctx context.Context) (any, error) {
		return fetch(ctx, e.client, name)
	})
	s.vp.SetContent(StyleDim.Render("Fetching " + s.name + "..."))
	return s
}

func (s *detailScreen) update(msg tea.Msg) tea.Cmd {
	cmd, settled := s.coordinate(msg)
	if !settled {
		return cmd
	}
	if snap, ok := s.co.payload.(*model.DetailSnapshot); ok && snap != nil && s.co.lastErr == nil {
		s.doc = snap.Document
	}
	s.render()
	return cmd
}

// render re-encodes the cached document in the selected format.
func (s *detailScreen) render() {
	if s.doc == nil {
		if s.co.lastErr != nil {
			s.vp.SetContent(StyleError.Render("Failed to fetch " + s.name + "."))
		}
		return
	}
	text, err := renderDocument(s.doc, s.asYAML)
	if err != nil {
		s.env.log.WithError(err).WithField(s.entity, s.target).Warn("render document")
		text = string(s.doc)
	}
	s.vp.SetContent(sanitizeBlock(text))
}

func (s *detailScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.ToggleYAML):
		s.asYAML = !s.asYAML
		s.render()
		s.vp.GotoTop()
		return nil, true
	case key.Matches(msg, keys.Escape):
		return nil, false
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return cmd, true
}

func (s *detailScreen) setSize(width, height int) {
	s.screenBase.setSize(width, height)
	s.vp.Width = max(width, 1)
	s.vp.Height = max(height-1, 1)
}

func (s *detailScreen) view() string {
	format := "JSON"
	if s.asYAML {
		format = "YAML"
	}
	title := StyleSectionTitle.Render(s.name) + "  " + StyleDim.Render(fmt.Sprintf("[%s]  [y: json/yaml]  [↑↓: scroll]", format))
	return lipgloss.JoinVertical(lipgloss.Left, title, s.vp.View())
}

// renderDocument pretty-prints a JSON document, or converts it to block
// YAML keeping the original key order.
func renderDocument(doc []byte, asYAML bool) (string, error) {
	if !asYAML {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return "", fmt.Errorf("indent json: %w", err)
		}
		return buf.String(), nil
	}

	// JSON is a subset of YAML, so the node tree keeps key order.
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	clearStyle(&root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

// clearStyle drops the flow and quoting styles inherited from JSON so the
// encoder emits plain block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// sanitizeBlock applies sanitize line by line, keeping line breaks.
func sanitizeBlock(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = sanitize(l)
	}
	return strings.Join(lines, "\n")
}
