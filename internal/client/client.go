package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// SlurmClient defines the read-only queries the dashboard issues against Slurm.
type SlurmClient interface {
	GetPartitions(ctx context.Context) (*SinfoResponse, error)
	GetJobs(ctx context.Context) (*SqueueResponse, error)
	GetNodes(ctx context.Context) (*NodesResponse, error)
	GetNode(ctx context.Context, name string) (json.RawMessage, error)
	GetPartition(ctx context.Context, name string) (json.RawMessage, error)
	GetConfig(ctx context.Context) (string, error)
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	Binaries       Binaries
	CommandTimeout time.Duration
	Runner         Runner
	Logger         logrus.FieldLogger
	Observer       Observer
}

// DefaultClient implements SlurmClient by running the Slurm CLIs.
type DefaultClient struct {
	fetcher  *Fetcher
	binaries Binaries
}

// NewDefaultClient constructs a DefaultClient from the given config.
// A nil Runner executes local processes; a zero timeout uses DefaultTimeout.
func NewDefaultClient(cfg ClientConfig) *DefaultClient {
	return &DefaultClient{
		fetcher:  NewFetcher(cfg.Runner, cfg.CommandTimeout, cfg.Logger, cfg.Observer),
		binaries: cfg.Binaries.withDefaults(),
	}
}

// GetPartitions fetches partition records from sinfo.
func (c *DefaultClient) GetPartitions(ctx context.Context) (*SinfoResponse, error) {
	var result SinfoResponse
	if err := c.fetcher.FetchJSON(ctx, c.binaries.partitions(), &result); err != nil {
		return nil, fmt.Errorf("GetPartitions: %w", err)
	}
	return &result, nil
}

// GetJobs fetches the job queue from squeue.
func (c *DefaultClient) GetJobs(ctx context.Context) (*SqueueResponse, error) {
	var result SqueueResponse
	if err := c.fetcher.FetchJSON(ctx, c.binaries.jobs(), &result); err != nil {
		return nil, fmt.Errorf("GetJobs: %w", err)
	}
	return &result, nil
}

// GetNodes fetches every node from scontrol.
func (c *DefaultClient) GetNodes(ctx context.Context) (*NodesResponse, error) {
	var result NodesResponse
	if err := c.fetcher.FetchJSON(ctx, c.binaries.nodes(), &result); err != nil {
		return nil, fmt.Errorf("GetNodes: %w", err)
	}
	return &result, nil
}

// GetNode fetches the raw scontrol document for one node.
func (c *DefaultClient) GetNode(ctx context.Context, name string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.fetcher.FetchJSON(ctx, c.binaries.node(name), &result); err != nil {
		return nil, fmt.Errorf("GetNode %s: %w", name, err)
	}
	return result, nil
}

// GetPartition fetches the raw scontrol document for one partition.
func (c *DefaultClient) GetPartition(ctx context.Context, name string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.fetcher.FetchJSON(ctx, c.binaries.partition(name), &result); err != nil {
		return nil, fmt.Errorf("GetPartition %s: %w", name, err)
	}
	return result, nil
}

// GetConfig fetches the scheduler configuration as plain text.
func (c *DefaultClient) GetConfig(ctx context.Context) (string, error) {
	text, err := c.fetcher.FetchText(ctx, c.binaries.config())
	if err != nil {
		return "", fmt.Errorf("GetConfig: %w", err)
	}
	return text, nil
}
