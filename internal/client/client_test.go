package client

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner returns canned output per command source.
type fakeRunner struct {
	mu    sync.Mutex
	calls []Command
	fn    func(ctx context.Context, cmd Command) ([]byte, []byte, error)
}

func (r *fakeRunner) Run(ctx context.Context, cmd Command) ([]byte, []byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()
	return r.fn(ctx, cmd)
}

func stdoutRunner(out string) *fakeRunner {
	return &fakeRunner{fn: func(context.Context, Command) ([]byte, []byte, error) {
		return []byte(out), nil, nil
	}}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (o *recordingObserver) ObserveFetch(source, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]string{}
	}
	o.outcomes[source] = outcome
}

func newTestClient(t *testing.T, r Runner, obs Observer) *DefaultClient {
	t.Helper()
	return NewDefaultClient(ClientConfig{
		Runner:         r,
		CommandTimeout: time.Second,
		Observer:       obs,
	})
}

func TestGetPartitions(t *testing.T) {
	r := stdoutRunner(`{"sinfo":[
		{"partition":{"name":"debug","partition":{"state":["UP"]}},
		 "nodes":{"total":4,"idle":1,"allocated":3},
		 "cpus":{"total":32,"idle":8,"allocated":24},
		 "node":{"state":["MIXED"]}},
		{"partition":{"name":"batch"},"availability":"up","state":"idle",
		 "nodes":{"total":2,"idle":2,"allocated":0},
		 "cpus":{"total":16,"idle":16,"allocated":0}}]}`)
	c := newTestClient(t, r, nil)

	resp, err := c.GetPartitions(context.Background())
	if err != nil {
		t.Fatalf("GetPartitions: %v", err)
	}
	if len(resp.Sinfo) != 2 {
		t.Fatalf("len(Sinfo) = %d, want 2", len(resp.Sinfo))
	}
	debug := resp.Sinfo[0]
	if debug.Partition.Name != "debug" || debug.Nodes.Total != 4 || debug.CPUs.Allocated != 24 {
		t.Errorf("debug record decoded wrong: %+v", debug)
	}
	if got := debug.AvailabilityValues(); len(got) != 1 || got[0] != "UP" {
		t.Errorf("AvailabilityValues = %v, want [UP]", got)
	}
	if got := debug.StateValues(); len(got) != 1 || got[0] != "MIXED" {
		t.Errorf("StateValues = %v, want [MIXED]", got)
	}
	batch := resp.Sinfo[1]
	if got := batch.AvailabilityValues(); len(got) != 1 || got[0] != "up" {
		t.Errorf("flat availability = %v, want [up]", got)
	}
	if got := batch.StateValues(); len(got) != 1 || got[0] != "idle" {
		t.Errorf("flat state = %v, want [idle]", got)
	}

	if len(r.calls) != 1 || r.calls[0].String() != "sinfo --json" {
		t.Errorf("calls = %v, want [sinfo --json]", r.calls)
	}
}

func TestGetJobs_NumberForms(t *testing.T) {
	r := stdoutRunner(`{"jobs":[
		{"job_id":1,"account":"physics","user_name":"alice","job_state":["PENDING"],
		 "eligible_time":{"set":true,"infinite":false,"number":1000},
		 "start_time":{"set":true,"infinite":false,"number":1600}},
		{"job_id":2,"account":"chem","user_name":"bob","job_state":"RUNNING",
		 "eligible_time":500,"start_time":700},
		{"job_id":3,"account":"chem","user_name":"bob","job_state":["PENDING"],
		 "eligible_time":{"set":false,"infinite":false,"number":0},
		 "start_time":null}]}`)
	c := newTestClient(t, r, nil)

	resp, err := c.GetJobs(context.Background())
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("len(Jobs) = %d, want 3", len(resp.Jobs))
	}
	if got := resp.Jobs[0].StartTime.Value - resp.Jobs[0].EligibleTime.Value; got != 600 {
		t.Errorf("object numbers: wait = %d, want 600", got)
	}
	if !resp.Jobs[1].HasState("RUNNING") {
		t.Errorf("bare string state not decoded: %v", resp.Jobs[1].JobState)
	}
	if resp.Jobs[1].EligibleTime.Value != 500 || !resp.Jobs[1].EligibleTime.Set {
		t.Errorf("bare number = %+v, want 500 set", resp.Jobs[1].EligibleTime)
	}
	if resp.Jobs[2].EligibleTime.Set || resp.Jobs[2].StartTime.Value != 0 {
		t.Errorf("unset numbers decoded wrong: %+v %+v", resp.Jobs[2].EligibleTime, resp.Jobs[2].StartTime)
	}
}

func TestGetNodes_NumberForms(t *testing.T) {
	c := newTestClient(t, stdoutRunner(`{"nodes":[
		{"name":"old","cpus":32,"alloc_cpus":8,"real_memory":1024,"alloc_memory":512},
		{"name":"new","cpus":{"number":64,"set":true},"alloc_cpus":{"number":16,"set":true},
		 "real_memory":{"number":2048,"set":true},"alloc_memory":{"number":0,"set":false}}
	]}`), nil)

	resp, err := c.GetNodes(context.Background())
	if err != nil {
		t.Fatalf("GetNodes: %v", err)
	}
	if len(resp.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(resp.Nodes))
	}
	old, cur := resp.Nodes[0], resp.Nodes[1]
	if old.CPUs.Value != 32 || old.AllocCPUs.Value != 8 || old.RealMemory.Value != 1024 || old.AllocMemory.Value != 512 {
		t.Errorf("bare numbers decoded wrong: %+v", old)
	}
	if cur.CPUs.Value != 64 || cur.AllocCPUs.Value != 16 || cur.RealMemory.Value != 2048 {
		t.Errorf("number objects decoded wrong: %+v", cur)
	}
	if cur.AllocMemory.Set || cur.AllocMemory.Value != 0 {
		t.Errorf("unset alloc_memory = %+v", cur.AllocMemory)
	}
}

func TestGetNodes_MissingTopLevelKey(t *testing.T) {
	c := newTestClient(t, stdoutRunner(`{"meta":{}}`), nil)

	resp, err := c.GetNodes(context.Background())
	if err != nil {
		t.Fatalf("GetNodes: %v", err)
	}
	if resp.Nodes != nil {
		t.Errorf("Nodes = %v, want nil for absent key", resp.Nodes)
	}
}

func TestGetNode_NameIsSingleArgument(t *testing.T) {
	r := stdoutRunner(`{"nodes":[{"name":"n1"}]}`)
	c := newTestClient(t, r, nil)

	name := "n1; rm -rf /"
	raw, err := c.GetNode(context.Background(), name)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if !strings.Contains(string(raw), `"n1"`) {
		t.Errorf("raw = %s", raw)
	}
	got := r.calls[0]
	want := []string{"show", "node", name, "--json"}
	if got.Name != "scontrol" || strings.Join(got.Args, "|") != strings.Join(want, "|") {
		t.Errorf("command = %q %q, want scontrol %q", got.Name, got.Args, want)
	}
}

func TestGetConfig_Text(t *testing.T) {
	c := newTestClient(t, stdoutRunner("ClusterName = test\n"), nil)

	text, err := c.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if text != "ClusterName = test\n" {
		t.Errorf("text = %q", text)
	}
}

func TestBinariesOverride(t *testing.T) {
	r := stdoutRunner(`{"jobs":[]}`)
	c := NewDefaultClient(ClientConfig{Runner: r, Binaries: Binaries{Squeue: "/opt/slurm/bin/squeue"}})

	if _, err := c.GetJobs(context.Background()); err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if r.calls[0].Name != "/opt/slurm/bin/squeue" {
		t.Errorf("Name = %q, want override", r.calls[0].Name)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		run      func(ctx context.Context, cmd Command) ([]byte, []byte, error)
		wantKind Kind
		wantMsg  string
	}{
		{
			name: "missing executable",
			run: func(context.Context, Command) ([]byte, []byte, error) {
				return nil, nil, &exec.Error{Name: "sinfo", Err: exec.ErrNotFound}
			},
			wantKind: KindMissingDependency,
			wantMsg:  "command 'sinfo' not found",
		},
		{
			name: "non-zero exit",
			run: func(context.Context, Command) ([]byte, []byte, error) {
				return nil, []byte("slurm_load_partitions: Unable to contact slurm controller\n"), &exec.ExitError{}
			},
			wantKind: KindCommandFailure,
			wantMsg:  "error running sinfo --json: slurm_load_partitions: Unable to contact slurm controller",
		},
		{
			name: "malformed json",
			run: func(context.Context, Command) ([]byte, []byte, error) {
				return []byte("{not json"), nil, nil
			},
			wantKind: KindDecodeFailure,
			wantMsg:  "could not decode JSON from sinfo --json output",
		},
		{
			name: "timeout",
			run: func(ctx context.Context, _ Command) ([]byte, []byte, error) {
				<-ctx.Done()
				return nil, nil, ctx.Err()
			},
			wantKind: KindCommandFailure,
			wantMsg:  "timed out after",
		},
		{
			name: "runner panic",
			run: func(context.Context, Command) ([]byte, []byte, error) {
				panic("boom")
			},
			wantKind: KindUnexpectedFailure,
			wantMsg:  "panic: boom",
		},
		{
			name: "unclassified error",
			run: func(context.Context, Command) ([]byte, []byte, error) {
				return nil, nil, errors.New("fork failed")
			},
			wantKind: KindUnexpectedFailure,
			wantMsg:  "fork failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obs := &recordingObserver{}
			c := NewDefaultClient(ClientConfig{
				Runner:         &fakeRunner{fn: tc.run},
				CommandTimeout: 20 * time.Millisecond,
				Observer:       obs,
			})

			resp, err := c.GetPartitions(context.Background())
			if resp != nil {
				t.Errorf("resp = %+v, want nil", resp)
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !IsKind(err, tc.wantKind) {
				t.Errorf("kind = %v, want %v (err: %v)", KindOf(err), tc.wantKind, err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("err = %q, want substring %q", err.Error(), tc.wantMsg)
			}
			if got := obs.outcomes[SourceSinfo]; got != tc.wantKind.String() {
				t.Errorf("observed outcome = %q, want %q", got, tc.wantKind.String())
			}
		})
	}
}

func TestFetch_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRunner{fn: func(ctx context.Context, _ Command) ([]byte, []byte, error) {
		return nil, nil, ctx.Err()
	}}
	c := newTestClient(t, r, nil)

	_, err := c.GetJobs(ctx)
	if !IsKind(err, KindCommandFailure) {
		t.Fatalf("kind = %v, want command failure", KindOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want to wrap context.Canceled", err)
	}
}

func TestFetch_SuccessObserved(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, stdoutRunner(`{"nodes":[]}`), obs)

	if _, err := c.GetNodes(context.Background()); err != nil {
		t.Fatalf("GetNodes: %v", err)
	}
	if got := obs.outcomes[SourceScontrolNodes]; got != "ok" {
		t.Errorf("outcome = %q, want ok", got)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("missing binary", func(t *testing.T) {
		c := NewDefaultClient(ClientConfig{Binaries: Binaries{Sinfo: "stop-test-no-such-binary"}})
		_, err := c.GetPartitions(context.Background())
		if !IsKind(err, KindMissingDependency) {
			t.Fatalf("kind = %v, want missing dependency (err: %v)", KindOf(err), err)
		}
	})

	t.Run("stderr captured on failure", func(t *testing.T) {
		f := NewFetcher(nil, time.Second, nil, nil)
		_, err := f.FetchText(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo down >&2; exit 3"}})
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("err = %v, want *FetchError", err)
		}
		if fe.Kind != KindCommandFailure || fe.Stderr != "down" {
			t.Errorf("FetchError = %+v, want command failure with stderr", fe)
		}
	})

	t.Run("stdout captured", func(t *testing.T) {
		f := NewFetcher(nil, time.Second, nil, nil)
		out, err := f.FetchText(context.Background(), Command{Name: "sh", Args: []string{"-c", "printf ok"}})
		if err != nil || out != "ok" {
			t.Errorf("FetchText = %q, %v", out, err)
		}
	})
}
