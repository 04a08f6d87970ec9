package tui

import "testing"

func TestThreshold_Utilization(t *testing.T) {
	cases := []struct {
		pct  float64
		want severity
	}{
		{0, severityNormal},
		{79, severityNormal},
		{80, severityNormal}, // boundary: >80 triggers warning
		{80.1, severityWarning},
		{89, severityWarning},
		{90, severityWarning}, // boundary: >90 triggers critical
		{90.1, severityCritical},
		{100, severityCritical},
	}
	for _, tc := range cases {
		got := utilizationSeverity(tc.pct)
		if got != tc.want {
			t.Errorf("utilizationSeverity(%v) = %v, want %v", tc.pct, got, tc.want)
		}
	}
}

func TestThreshold_Broken(t *testing.T) {
	cases := []struct {
		broken int
		want   severity
	}{
		{0, severityNormal},
		{1, severityCritical},
		{40, severityCritical},
	}
	for _, tc := range cases {
		got := brokenSeverity(tc.broken)
		if got != tc.want {
			t.Errorf("brokenSeverity(%d) = %v, want %v", tc.broken, got, tc.want)
		}
	}
}

func TestThreshold_Pending(t *testing.T) {
	cases := []struct {
		pending, running int
		want             severity
	}{
		{0, 0, severityNormal},
		{5, 10, severityNormal},
		{10, 10, severityNormal}, // boundary: strictly more pending than running
		{11, 10, severityWarning},
		{3, 0, severityWarning},
	}
	for _, tc := range cases {
		got := pendingSeverity(tc.pending, tc.running)
		if got != tc.want {
			t.Errorf("pendingSeverity(%d, %d) = %v, want %v", tc.pending, tc.running, got, tc.want)
		}
	}
}

func TestSeverityFg(t *testing.T) {
	if got := severityFg(severityNormal, colorCyan); got != colorCyan {
		t.Errorf("normal severity should keep the card color, got %v", got)
	}
	if got := severityFg(severityWarning, colorCyan); got != colorYellow {
		t.Errorf("warning severity should be yellow, got %v", got)
	}
	if got := severityFg(severityCritical, colorCyan); got != colorRed {
		t.Errorf("critical severity should be red, got %v", got)
	}
}
