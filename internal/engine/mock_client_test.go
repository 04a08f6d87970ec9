package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dm/stop/internal/client"
)

// MockSlurmClient implements client.SlurmClient for testing.
type MockSlurmClient struct {
	PartitionsFn func(ctx context.Context) (*client.SinfoResponse, error)
	JobsFn       func(ctx context.Context) (*client.SqueueResponse, error)
	NodesFn      func(ctx context.Context) (*client.NodesResponse, error)
	NodeFn       func(ctx context.Context, name string) (json.RawMessage, error)
	PartitionFn  func(ctx context.Context, name string) (json.RawMessage, error)
	ConfigFn     func(ctx context.Context) (string, error)
}

func (m *MockSlurmClient) GetPartitions(ctx context.Context) (*client.SinfoResponse, error) {
	if m.PartitionsFn != nil {
		return m.PartitionsFn(ctx)
	}
	return &client.SinfoResponse{Sinfo: []client.PartitionRecord{{Partition: client.PartitionInfo{Name: "debug"}}}}, nil
}

func (m *MockSlurmClient) GetJobs(ctx context.Context) (*client.SqueueResponse, error) {
	if m.JobsFn != nil {
		return m.JobsFn(ctx)
	}
	return &client.SqueueResponse{Jobs: []client.JobRecord{}}, nil
}

func (m *MockSlurmClient) GetNodes(ctx context.Context) (*client.NodesResponse, error) {
	if m.NodesFn != nil {
		return m.NodesFn(ctx)
	}
	return &client.NodesResponse{Nodes: []client.NodeRecord{{Name: "n01", CPUs: client.Number{Value: 4, Set: true}}}}, nil
}

func (m *MockSlurmClient) GetNode(ctx context.Context, name string) (json.RawMessage, error) {
	if m.NodeFn != nil {
		return m.NodeFn(ctx, name)
	}
	return json.RawMessage(`{"nodes":[{"name":"` + name + `"}]}`), nil
}

func (m *MockSlurmClient) GetPartition(ctx context.Context, name string) (json.RawMessage, error) {
	if m.PartitionFn != nil {
		return m.PartitionFn(ctx, name)
	}
	return json.RawMessage(`{"partitions":[{"name":"` + name + `"}]}`), nil
}

func (m *MockSlurmClient) GetConfig(ctx context.Context) (string, error) {
	if m.ConfigFn != nil {
		return m.ConfigFn(ctx)
	}
	return "ClusterName = test", nil
}

// errMockFailure is a sentinel error used in failure-path tests.
var errMockFailure = errors.New("mock failure")
