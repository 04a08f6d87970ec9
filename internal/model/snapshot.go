package model

import (
	"encoding/json"
	"time"

	"github.com/dm/stop/internal/client"
)

// Source identifies one of the three independent data sources of the home view.
type Source string

const (
	SourcePartitions Source = "sinfo"
	SourceJobs       Source = "squeue"
	SourceNodes      Source = "scontrol"
)

// Sources lists the home view sources in display order.
var Sources = []Source{SourcePartitions, SourceJobs, SourceNodes}

// Snapshot holds the raw results of a single poll cycle. Each payload is nil
// when its source failed; the failure is recorded in Errors. A Snapshot is
// replaced wholesale each cycle and never mutated after construction.
type Snapshot struct {
	Partitions *client.SinfoResponse
	Jobs       *client.SqueueResponse
	Nodes      *client.NodesResponse
	Errors     map[Source]error
	FetchedAt  time.Time
}

// Degraded returns the failed sources in display order.
func (s *Snapshot) Degraded() []Source {
	var out []Source
	for _, src := range Sources {
		if _, failed := s.Errors[src]; failed {
			out = append(out, src)
		}
	}
	return out
}

// Complete reports whether every source returned data.
func (s *Snapshot) Complete() bool {
	return len(s.Errors) == 0
}

// DetailSnapshot holds one raw JSON document for a drill-down view.
type DetailSnapshot struct {
	Kind      string
	Name      string
	Document  json.RawMessage
	FetchedAt time.Time
}

// ViewState is the refresh state of a screen.
type ViewState int

const (
	StateIdle ViewState = iota
	StateFetching
	StateReady
	StateDegraded
)

// String returns the display label for the state.
func (s ViewState) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateReady:
		return "READY"
	case StateDegraded:
		return "DEGRADED"
	default:
		return "IDLE"
	}
}
