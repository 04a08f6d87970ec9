package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/model"
)

// Detail kinds carried by model.DetailSnapshot.
const (
	DetailNode      = "node"
	DetailPartition = "partition"
)

// FetchHome calls sinfo, squeue and scontrol concurrently and waits for all
// three. A failing source is non-fatal: its payload stays nil and the error
// is recorded in Snapshot.Errors. The returned snapshot is never nil.
func FetchHome(ctx context.Context, c client.SlurmClient) *model.Snapshot {
	var (
		partitions *client.SinfoResponse
		jobs       *client.SqueueResponse
		nodes      *client.NodesResponse

		partErr, jobErr, nodeErr error
	)

	var g errgroup.Group

	g.Go(func() error {
		partitions, partErr = c.GetPartitions(ctx)
		return nil
	})

	g.Go(func() error {
		jobs, jobErr = c.GetJobs(ctx)
		return nil
	})

	g.Go(func() error {
		nodes, nodeErr = c.GetNodes(ctx)
		return nil
	})

	_ = g.Wait()

	snap := &model.Snapshot{FetchedAt: time.Now()}
	record := func(src model.Source, err error) bool {
		if err == nil {
			return true
		}
		if snap.Errors == nil {
			snap.Errors = make(map[model.Source]error)
		}
		snap.Errors[src] = err
		return false
	}
	if record(model.SourcePartitions, partErr) {
		snap.Partitions = partitions
	}
	if record(model.SourceJobs, jobErr) {
		snap.Jobs = jobs
	}
	if record(model.SourceNodes, nodeErr) {
		snap.Nodes = nodes
	}
	return snap
}

// FetchNodes fetches the node list for the node browser.
func FetchNodes(ctx context.Context, c client.SlurmClient) (*client.NodesResponse, error) {
	nodes, err := c.GetNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchNodes: %w", err)
	}
	return nodes, nil
}

// FetchPartitions fetches sinfo for the partition browser.
func FetchPartitions(ctx context.Context, c client.SlurmClient) (*client.SinfoResponse, error) {
	sinfo, err := c.GetPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchPartitions: %w", err)
	}
	return sinfo, nil
}

// FetchNodeDetail fetches the scontrol document for a single node.
func FetchNodeDetail(ctx context.Context, c client.SlurmClient, name string) (*model.DetailSnapshot, error) {
	doc, err := c.GetNode(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("FetchNodeDetail: %w", err)
	}
	return &model.DetailSnapshot{Kind: DetailNode, Name: name, Document: doc, FetchedAt: time.Now()}, nil
}

// FetchPartitionDetail fetches the scontrol document for a single partition.
func FetchPartitionDetail(ctx context.Context, c client.SlurmClient, name string) (*model.DetailSnapshot, error) {
	doc, err := c.GetPartition(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("FetchPartitionDetail: %w", err)
	}
	return &model.DetailSnapshot{Kind: DetailPartition, Name: name, Document: doc, FetchedAt: time.Now()}, nil
}

// FetchConfig fetches `scontrol show config` output.
func FetchConfig(ctx context.Context, c client.SlurmClient) (string, error) {
	text, err := c.GetConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("FetchConfig: %w", err)
	}
	return text, nil
}
