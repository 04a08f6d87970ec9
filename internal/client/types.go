package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SinfoResponse represents the output of `sinfo --json`.
// A nil Sinfo slice means the top-level key was absent.
type SinfoResponse struct {
	Sinfo []PartitionRecord `json:"sinfo"`
}

// PartitionRecord is one row of sinfo output. sinfo emits one record per
// (partition, node state) combination, so a partition may appear many times.
type PartitionRecord struct {
	Partition    PartitionInfo `json:"partition"`
	Nodes        NodeCounts    `json:"nodes"`
	CPUs         CPUCounts     `json:"cpus"`
	Node         NodeStateInfo `json:"node"`
	Availability StringList    `json:"availability"`
	State        StringList    `json:"state"`
}

// PartitionInfo holds the partition identity block of a sinfo record.
type PartitionInfo struct {
	Name      string `json:"name"`
	Partition struct {
		State StringList `json:"state"`
	} `json:"partition"`
}

// NodeStateInfo holds the node state block of a sinfo record.
type NodeStateInfo struct {
	State StringList `json:"state"`
}

// NodeCounts holds node counters for a sinfo record.
type NodeCounts struct {
	Total     int `json:"total"`
	Idle      int `json:"idle"`
	Allocated int `json:"allocated"`
}

// CPUCounts holds CPU counters for a sinfo record.
type CPUCounts struct {
	Total     int `json:"total"`
	Idle      int `json:"idle"`
	Allocated int `json:"allocated"`
}

// AvailabilityValues returns the partition availability, preferring the flat
// field of older Slurm releases over the nested partition state.
func (r PartitionRecord) AvailabilityValues() []string {
	if len(r.Availability) > 0 {
		return r.Availability
	}
	return r.Partition.Partition.State
}

// StateValues returns the node state of the record.
func (r PartitionRecord) StateValues() []string {
	if len(r.State) > 0 {
		return r.State
	}
	return r.Node.State
}

// SqueueResponse represents the output of `squeue --json`.
type SqueueResponse struct {
	Jobs []JobRecord `json:"jobs"`
}

// JobRecord is one job from squeue output.
type JobRecord struct {
	JobID        Number     `json:"job_id"`
	Name         string     `json:"name"`
	Account      string     `json:"account"`
	UserName     string     `json:"user_name"`
	Partition    string     `json:"partition"`
	JobState     StringList `json:"job_state"`
	EligibleTime Number     `json:"eligible_time"`
	StartTime    Number     `json:"start_time"`
	SubmitTime   Number     `json:"submit_time"`
}

// HasState reports whether state is one of the job's current states.
func (j JobRecord) HasState(state string) bool {
	for _, s := range j.JobState {
		if s == state {
			return true
		}
	}
	return false
}

// NodesResponse represents the output of `scontrol show nodes --json`.
type NodesResponse struct {
	Nodes []NodeRecord `json:"nodes"`
}

// NodeRecord is one node from scontrol output. Memory values are in MB.
type NodeRecord struct {
	Name        string     `json:"name"`
	State       StringList `json:"state"`
	CPUs        Number     `json:"cpus"`
	AllocCPUs   Number     `json:"alloc_cpus"`
	RealMemory  Number     `json:"real_memory"`
	AllocMemory Number     `json:"alloc_memory"`
	Partitions  StringList `json:"partitions"`
	CPULoad     Number     `json:"cpu_load"`
}

// Number is a Slurm numeric field. Slurm 23.02 and later wrap numbers in
// {"set": bool, "infinite": bool, "number": N}; older releases emit a bare
// integer. A bare integer decodes with Set true.
type Number struct {
	Value    int64
	Set      bool
	Infinite bool
}

// UnmarshalJSON accepts a bare number, a number object or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Set      *bool       `json:"set"`
			Infinite bool        `json:"infinite"`
			Number   json.Number `json:"number"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		v, err := parseNumber(obj.Number)
		if err != nil {
			return err
		}
		set := true
		if obj.Set != nil {
			set = *obj.Set
		}
		*n = Number{Value: v, Set: set, Infinite: obj.Infinite}
		return nil
	}
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	v, err := parseNumber(raw)
	if err != nil {
		return err
	}
	*n = Number{Value: v, Set: true}
	return nil
}

// MarshalJSON emits the number object form.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Set      bool  `json:"set"`
		Infinite bool  `json:"infinite"`
		Number   int64 `json:"number"`
	}{n.Set, n.Infinite, n.Value})
}

func parseNumber(raw json.Number) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	if v, err := raw.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", raw, err)
	}
	return int64(f), nil
}

// StringList decodes either a JSON array of strings or a single string.
// Older Slurm releases report a state as a single string.
type StringList []string

// UnmarshalJSON accepts a string, an array of strings or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = list
	return nil
}
