package model

import (
	"strconv"
	"time"
)

// SummaryTable is a display-ready projection: a fixed column schema and
// string cells. len(row) == len(Columns) for every row.
type SummaryTable struct {
	Columns []string
	Rows    [][]string
}

// NewSummaryTable returns an empty table with the given schema.
func NewSummaryTable(columns ...string) SummaryTable {
	return SummaryTable{Columns: columns, Rows: [][]string{}}
}

// Len returns the number of rows.
func (t SummaryTable) Len() int {
	return len(t.Rows)
}

// PartitionRow holds summed counters for one partition.
type PartitionRow struct {
	Name           string
	TotalNodes     int
	IdleNodes      int
	AllocatedNodes int
	TotalCPUs      int
	IdleCPUs       int
	AllocatedCPUs  int
	Availability   []string
	State          []string
}

// NodeRow holds display data for a single node.
type NodeRow struct {
	Name        string
	State       []string
	CPUs        int
	AllocCPUs   int
	RealMemory  int64
	AllocMemory int64
	Partitions  []string
	CPULoad     int64
}

// FreeMemory returns unallocated memory in MB.
func (n NodeRow) FreeMemory() int64 {
	return n.RealMemory - n.AllocMemory
}

// JobCountRow holds per-state job counts for one account or user.
type JobCountRow struct {
	Key       string
	TotalJobs int
	States    map[string]int
}

// ClusterOverview holds cluster-wide totals for the overview cards.
type ClusterOverview struct {
	HasNodes      bool
	TotalNodes    int
	BrokenNodes   int
	MixedNodes    int
	ReservedNodes int
	TotalCPUs     int
	AllocCPUs     int
	TotalMemoryMB int64
	AllocMemoryMB int64

	HasJobs     bool
	RunningJobs int
	PendingJobs int
	MaxWait     *float64 // seconds; nil without job data
}

// CPUPercent returns allocated CPUs as a percentage of total CPUs.
func (o ClusterOverview) CPUPercent() float64 {
	if o.TotalCPUs == 0 {
		return 0
	}
	return float64(o.AllocCPUs) / float64(o.TotalCPUs) * 100
}

// MemoryPercent returns allocated memory as a percentage of total memory.
func (o ClusterOverview) MemoryPercent() float64 {
	if o.TotalMemoryMB == 0 {
		return 0
	}
	return float64(o.AllocMemoryMB) / float64(o.TotalMemoryMB) * 100
}

// HomeView is every home-screen projection computed from one Snapshot. It is
// the unit the display commits atomically. A table whose source failed is
// left empty and its source appears in Degraded.
type HomeView struct {
	PartitionSummary SummaryTable
	NodeSummary      SummaryTable
	JobTotals        SummaryTable
	AccountJobs      SummaryTable
	UserJobs         SummaryTable
	WaitStats        SummaryTable
	Overview         ClusterOverview
	Degraded         []Source
	FetchedAt        time.Time
}

// Has reports whether src delivered data for this view.
func (v HomeView) Has(src Source) bool {
	for _, d := range v.Degraded {
		if d == src {
			return false
		}
	}
	return true
}

// Itoa is the cell formatting used for integer counters.
func Itoa[T ~int | ~int64](n T) string {
	return strconv.FormatInt(int64(n), 10)
}
