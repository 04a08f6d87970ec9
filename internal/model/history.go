package model

import "time"

const defaultTrendCap = 60

// Trend field names accepted by TrendHistory.Values.
const (
	TrendRunning = "running"
	TrendPending = "pending"
	TrendCPU     = "cpu"
	TrendBroken  = "broken"
)

// TrendPoint is a single timestamped sample of cluster activity.
type TrendPoint struct {
	Timestamp  time.Time
	Running    float64
	Pending    float64
	CPUPercent float64
	Broken     float64
}

// TrendHistory is a fixed-size ring buffer of TrendPoints.
// When the buffer is full, new pushes overwrite the oldest entry.
type TrendHistory struct {
	buf  []TrendPoint
	head int // index of the next write position
	size int // number of valid entries
}

// NewTrendHistory creates a TrendHistory with the given capacity.
// If capacity <= 0, defaultTrendCap (60) is used.
func NewTrendHistory(capacity int) *TrendHistory {
	if capacity <= 0 {
		capacity = defaultTrendCap
	}
	return &TrendHistory{
		buf: make([]TrendPoint, capacity),
	}
}

// PointFromOverview samples o at time at.
func PointFromOverview(o ClusterOverview, at time.Time) TrendPoint {
	return TrendPoint{
		Timestamp:  at,
		Running:    float64(o.RunningJobs),
		Pending:    float64(o.PendingJobs),
		CPUPercent: o.CPUPercent(),
		Broken:     float64(o.BrokenNodes),
	}
}

// Push appends a new point to the history, overwriting the oldest if full.
func (h *TrendHistory) Push(p TrendPoint) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *TrendHistory) Len() int {
	return h.size
}

// Cap returns the buffer capacity.
func (h *TrendHistory) Cap() int {
	return len(h.buf)
}

// Latest returns the most recent point, or false when empty.
func (h *TrendHistory) Latest() (TrendPoint, bool) {
	if h.size == 0 {
		return TrendPoint{}, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}

// Values returns the named field in chronological order (oldest first).
// Unknown field names yield zeros.
func (h *TrendHistory) Values(field string) []float64 {
	out := make([]float64, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		p := h.buf[(start+i)%len(h.buf)]
		switch field {
		case TrendRunning:
			out[i] = p.Running
		case TrendPending:
			out[i] = p.Pending
		case TrendCPU:
			out[i] = p.CPUPercent
		case TrendBroken:
			out[i] = p.Broken
		}
	}
	return out
}
