package engine

import (
	"sort"
	"strings"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/format"
	"github.com/dm/stop/internal/model"
)

// Column schemas. Every aggregation returns a table with exactly these
// columns, including when its input is nil or empty.
var (
	PartitionSummaryColumns = []string{"Partition", "Total Nodes", "Idle Nodes", "Allocated Nodes", "Total CPUs", "Free CPUs", "Allocated CPUs"}
	PartitionListColumns    = []string{"Partition Name", "Total Nodes", "Idle Nodes", "Allocated Nodes", "Total CPUs", "Free CPUs", "Allocated CPUs", "Availability", "State"}
	NodeSummaryColumns      = []string{"Metric", "Value"}
	NodeListColumns         = []string{"Node Name", "State", "Total Cores", "Allocated Cores", "Total Memory (MB)", "Allocated Memory (MB)", "Free Memory (MB)", "Partitions", "CPU Load"}
	JobTotalsColumns        = []string{"Job Summary", "Value"}
	WaitStatsColumns        = []string{"Metric", "Value"}
)

// JobStates is the fixed state vocabulary of the job summary pivots. States
// outside it are summed into the OTHER column.
var JobStates = []string{"RUNNING", "PENDING", "COMPLETED", "CANCELLED", "FAILED", "TIMEOUT", "NODE_FAIL", "PREEMPTED", "SUSPENDED"}

const otherState = "OTHER"

// brokenStates marks a node as unusable when any of them is present.
var brokenStates = map[string]bool{
	"DRAINED":    true,
	"DRAINING":   true,
	"DRAIN":      true,
	"DOWN":       true,
	"FAIL":       true,
	"NO_RESPOND": true,
	"POWER_DOWN": true,
	"POWER_UP":   true,
	"RESUME":     true,
	"UNKNOWN":    true,
}

const (
	stateRunning     = "RUNNING"
	statePending     = "PENDING"
	stateReservation = "RESERVATION"
	noKey            = "(none)"
	listSeparator    = ", "
)

// JobSummaryColumns returns the pivot schema keyed by keyColumn.
func JobSummaryColumns(keyColumn string) []string {
	cols := make([]string, 0, len(JobStates)+3)
	cols = append(cols, keyColumn, "Total Jobs")
	cols = append(cols, JobStates...)
	return append(cols, otherState)
}

// PartitionRows groups sinfo records by partition name and sums their
// counters. Rows are returned in first-seen order. ok is false when the
// input carries no partition list.
func PartitionRows(sinfo *client.SinfoResponse) (rows []model.PartitionRow, ok bool) {
	if sinfo == nil || sinfo.Sinfo == nil {
		return nil, false
	}
	index := make(map[string]int)
	for _, rec := range sinfo.Sinfo {
		name := rec.Partition.Name
		i, seen := index[name]
		if !seen {
			i = len(rows)
			index[name] = i
			rows = append(rows, model.PartitionRow{Name: name})
		}
		r := &rows[i]
		r.TotalNodes += rec.Nodes.Total
		r.IdleNodes += rec.Nodes.Idle
		r.AllocatedNodes += rec.Nodes.Allocated
		r.TotalCPUs += rec.CPUs.Total
		r.IdleCPUs += rec.CPUs.Idle
		r.AllocatedCPUs += rec.CPUs.Allocated
		r.Availability = appendDistinct(r.Availability, rec.AvailabilityValues()...)
		r.State = appendDistinct(r.State, rec.StateValues()...)
	}
	return rows, true
}

// PartitionSummary is the home-screen partition rollup, sorted by Total
// Nodes descending.
func PartitionSummary(sinfo *client.SinfoResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(PartitionSummaryColumns...)
	rows, ok := PartitionRows(sinfo)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalNodes != rows[j].TotalNodes {
			return rows[i].TotalNodes > rows[j].TotalNodes
		}
		return rows[i].Name < rows[j].Name
	})
	for _, r := range rows {
		table.Rows = append(table.Rows, partitionCells(r))
	}
	return table, ok
}

// PartitionList is the partition browser table, sorted by name.
func PartitionList(sinfo *client.SinfoResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(PartitionListColumns...)
	rows, ok := PartitionRows(sinfo)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	for _, r := range rows {
		cells := partitionCells(r)
		cells = append(cells, strings.Join(r.Availability, listSeparator), strings.Join(r.State, listSeparator))
		table.Rows = append(table.Rows, cells)
	}
	return table, ok
}

func partitionCells(r model.PartitionRow) []string {
	return []string{
		r.Name,
		model.Itoa(r.TotalNodes),
		model.Itoa(r.IdleNodes),
		model.Itoa(r.AllocatedNodes),
		model.Itoa(r.TotalCPUs),
		model.Itoa(r.IdleCPUs),
		model.Itoa(r.AllocatedCPUs),
	}
}

// NodeOverview computes cluster-wide node totals. ok is false when the input
// carries no node list.
func NodeOverview(nodes *client.NodesResponse) (o model.ClusterOverview, ok bool) {
	if nodes == nil || nodes.Nodes == nil {
		return o, false
	}
	o.HasNodes = true
	for _, n := range nodes.Nodes {
		o.TotalNodes++
		o.TotalCPUs += int(n.CPUs.Value)
		o.AllocCPUs += int(n.AllocCPUs.Value)
		o.TotalMemoryMB += n.RealMemory.Value
		o.AllocMemoryMB += n.AllocMemory.Value
		if isBroken(n.State) {
			o.BrokenNodes++
		}
		if hasState(n.State, stateReservation) {
			o.ReservedNodes++
		}
		if n.AllocCPUs.Value > 0 && n.AllocCPUs.Value < n.CPUs.Value {
			o.MixedNodes++
		}
	}
	return o, true
}

// NodeSummary is the Metric/Value node rollup.
func NodeSummary(nodes *client.NodesResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(NodeSummaryColumns...)
	o, ok := NodeOverview(nodes)
	if !ok {
		return table, false
	}
	table.Rows = [][]string{
		{"Total Nodes", model.Itoa(o.TotalNodes)},
		{"Total CPUs", model.Itoa(o.TotalCPUs)},
		{"Total Memory (MB)", model.Itoa(o.TotalMemoryMB)},
		{"Allocated CPUs", model.Itoa(o.AllocCPUs)},
		{"Allocated Memory (MB)", model.Itoa(o.AllocMemoryMB)},
		{"Broken Nodes", model.Itoa(o.BrokenNodes)},
		{"Nodes in Reservation", model.Itoa(o.ReservedNodes)},
		{"Mixed Nodes", model.Itoa(o.MixedNodes)},
	}
	return table, true
}

// NodeRows converts scontrol records into rows sorted by node name.
func NodeRows(nodes *client.NodesResponse) ([]model.NodeRow, bool) {
	if nodes == nil || nodes.Nodes == nil {
		return nil, false
	}
	rows := make([]model.NodeRow, 0, len(nodes.Nodes))
	for _, n := range nodes.Nodes {
		rows = append(rows, model.NodeRow{
			Name:        n.Name,
			State:       n.State,
			CPUs:        int(n.CPUs.Value),
			AllocCPUs:   int(n.AllocCPUs.Value),
			RealMemory:  n.RealMemory.Value,
			AllocMemory: n.AllocMemory.Value,
			Partitions:  n.Partitions,
			CPULoad:     n.CPULoad.Value,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, true
}

// NodeList is the node browser table.
func NodeList(nodes *client.NodesResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(NodeListColumns...)
	rows, ok := NodeRows(nodes)
	for _, n := range rows {
		table.Rows = append(table.Rows, []string{
			n.Name,
			strings.Join(n.State, listSeparator),
			model.Itoa(n.CPUs),
			model.Itoa(n.AllocCPUs),
			model.Itoa(n.RealMemory),
			model.Itoa(n.AllocMemory),
			model.Itoa(n.FreeMemory()),
			strings.Join(n.Partitions, listSeparator),
			model.Itoa(n.CPULoad),
		})
	}
	return table, ok
}

// JobCounts groups jobs by key and counts each distinct state once per job.
// Rows are sorted by TotalJobs descending, ties by key ascending.
func JobCounts(jobs []client.JobRecord, key func(client.JobRecord) string) []model.JobCountRow {
	index := make(map[string]int)
	var rows []model.JobCountRow
	for _, job := range jobs {
		k := key(job)
		if k == "" {
			k = noKey
		}
		i, seen := index[k]
		if !seen {
			i = len(rows)
			index[k] = i
			rows = append(rows, model.JobCountRow{Key: k, States: map[string]int{}})
		}
		r := &rows[i]
		r.TotalJobs++
		for _, s := range appendDistinct(nil, job.JobState...) {
			r.States[s]++
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalJobs != rows[j].TotalJobs {
			return rows[i].TotalJobs > rows[j].TotalJobs
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// JobSummaries returns the per-account and per-user state pivots.
func JobSummaries(squeue *client.SqueueResponse) (byAccount, byUser model.SummaryTable, ok bool) {
	byAccount = model.NewSummaryTable(JobSummaryColumns("account")...)
	byUser = model.NewSummaryTable(JobSummaryColumns("user_name")...)
	if squeue == nil || squeue.Jobs == nil {
		return byAccount, byUser, false
	}
	for _, r := range JobCounts(squeue.Jobs, func(j client.JobRecord) string { return j.Account }) {
		byAccount.Rows = append(byAccount.Rows, pivotCells(r))
	}
	for _, r := range JobCounts(squeue.Jobs, func(j client.JobRecord) string { return j.UserName }) {
		byUser.Rows = append(byUser.Rows, pivotCells(r))
	}
	return byAccount, byUser, true
}

func pivotCells(r model.JobCountRow) []string {
	cells := make([]string, 0, len(JobStates)+3)
	cells = append(cells, r.Key, model.Itoa(r.TotalJobs))
	other := 0
	for s, n := range r.States {
		if !isKnownState(s) {
			other += n
		}
	}
	for _, s := range JobStates {
		cells = append(cells, model.Itoa(r.States[s]))
	}
	return append(cells, model.Itoa(other))
}

// JobOverview counts running and pending jobs.
func JobOverview(squeue *client.SqueueResponse) (o model.ClusterOverview, ok bool) {
	if squeue == nil || squeue.Jobs == nil {
		return o, false
	}
	o.HasJobs = true
	for _, job := range squeue.Jobs {
		if job.HasState(stateRunning) {
			o.RunningJobs++
		}
		if job.HasState(statePending) {
			o.PendingJobs++
		}
	}
	maxWait := maxOf(PendingWaitTimes(squeue.Jobs))
	o.MaxWait = &maxWait
	return o, true
}

// JobTotals is the Running Jobs / Pending Jobs table.
func JobTotals(squeue *client.SqueueResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(JobTotalsColumns...)
	o, ok := JobOverview(squeue)
	table.Rows = [][]string{
		{"Running Jobs", model.Itoa(o.RunningJobs)},
		{"Pending Jobs", model.Itoa(o.PendingJobs)},
	}
	return table, ok
}

// PendingWaitTimes returns start − eligible in seconds for every PENDING job
// whose eligible and start times are both non-zero. start_time of a pending
// job is the scheduler's projected start. A projected start before
// eligibility is skipped.
func PendingWaitTimes(jobs []client.JobRecord) []float64 {
	var waits []float64
	for _, job := range jobs {
		if !job.HasState(statePending) {
			continue
		}
		if job.EligibleTime.Value == 0 || job.StartTime.Value == 0 {
			continue
		}
		w := job.StartTime.Value - job.EligibleTime.Value
		if w < 0 {
			continue
		}
		waits = append(waits, float64(w))
	}
	return waits
}

// WaitStats holds max, median and mean of pending wait times in seconds.
type WaitStats struct {
	Max    float64
	Median float64
	Mean   float64
}

// ComputeWaitStats summarises waits. An empty input yields zeros.
func ComputeWaitStats(waits []float64) WaitStats {
	if len(waits) == 0 {
		return WaitStats{}
	}
	sorted := append([]float64(nil), waits...)
	sort.Float64s(sorted)

	var sum float64
	for _, w := range sorted {
		sum += w
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return WaitStats{
		Max:    sorted[n-1],
		Median: median,
		Mean:   sum / float64(n),
	}
}

// PendingWaitStats is the Max/Median/Mean waiting time table.
func PendingWaitStats(squeue *client.SqueueResponse) (model.SummaryTable, bool) {
	table := model.NewSummaryTable(WaitStatsColumns...)
	ok := squeue != nil && squeue.Jobs != nil
	var stats WaitStats
	if ok {
		stats = ComputeWaitStats(PendingWaitTimes(squeue.Jobs))
	}
	table.Rows = [][]string{
		{"Max Waiting Time", format.FormatSeconds(stats.Max)},
		{"Median Waiting Time", format.FormatSeconds(stats.Median)},
		{"Mean Waiting Time", format.FormatSeconds(stats.Mean)},
	}
	return table, ok
}

// Aggregate computes every home-screen projection from one snapshot.
func Aggregate(snap *model.Snapshot) model.HomeView {
	view := model.HomeView{FetchedAt: snap.FetchedAt}
	degraded := map[model.Source]bool{}
	for _, src := range snap.Degraded() {
		degraded[src] = true
	}

	var ok bool
	if view.PartitionSummary, ok = PartitionSummary(snap.Partitions); !ok {
		degraded[model.SourcePartitions] = true
	}

	view.NodeSummary, ok = NodeSummary(snap.Nodes)
	if !ok {
		degraded[model.SourceNodes] = true
	}
	nodeOverview, _ := NodeOverview(snap.Nodes)

	view.JobTotals, ok = JobTotals(snap.Jobs)
	if !ok {
		degraded[model.SourceJobs] = true
	}
	view.AccountJobs, view.UserJobs, _ = JobSummaries(snap.Jobs)
	view.WaitStats, _ = PendingWaitStats(snap.Jobs)
	jobOverview, _ := JobOverview(snap.Jobs)

	view.Overview = nodeOverview
	view.Overview.HasJobs = jobOverview.HasJobs
	view.Overview.RunningJobs = jobOverview.RunningJobs
	view.Overview.PendingJobs = jobOverview.PendingJobs
	view.Overview.MaxWait = jobOverview.MaxWait

	for _, src := range model.Sources {
		if degraded[src] {
			view.Degraded = append(view.Degraded, src)
		}
	}
	return view
}

func isBroken(states []string) bool {
	for _, s := range states {
		if brokenStates[s] {
			return true
		}
	}
	return false
}

func hasState(states []string, want string) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}

func isKnownState(s string) bool {
	return hasState(JobStates, s)
}

// appendDistinct appends non-empty values not already in dst, keeping
// first-seen order.
func appendDistinct(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || hasState(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

// maxOf returns the largest value, or 0 for no values.
func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
