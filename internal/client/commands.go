package client

// Source labels used in logs and metrics.
const (
	SourceSinfo             = "sinfo"
	SourceSqueue            = "squeue"
	SourceScontrolNodes     = "scontrol_nodes"
	SourceScontrolNode      = "scontrol_node"
	SourceScontrolPartition = "scontrol_partition"
	SourceScontrolConfig    = "scontrol_config"
)

// Binaries names the Slurm executables. Empty fields fall back to the
// defaults found on PATH.
type Binaries struct {
	Sinfo    string
	Squeue   string
	Scontrol string
}

func (b Binaries) withDefaults() Binaries {
	if b.Sinfo == "" {
		b.Sinfo = "sinfo"
	}
	if b.Squeue == "" {
		b.Squeue = "squeue"
	}
	if b.Scontrol == "" {
		b.Scontrol = "scontrol"
	}
	return b
}

func (b Binaries) partitions() Command {
	return Command{Source: SourceSinfo, Name: b.Sinfo, Args: []string{"--json"}}
}

func (b Binaries) jobs() Command {
	return Command{Source: SourceSqueue, Name: b.Squeue, Args: []string{"--json"}}
}

func (b Binaries) nodes() Command {
	return Command{Source: SourceScontrolNodes, Name: b.Scontrol, Args: []string{"show", "nodes", "--json"}}
}

func (b Binaries) node(name string) Command {
	return Command{Source: SourceScontrolNode, Name: b.Scontrol, Args: []string{"show", "node", name, "--json"}}
}

func (b Binaries) partition(name string) Command {
	return Command{Source: SourceScontrolPartition, Name: b.Scontrol, Args: []string{"show", "partition", name, "--json"}}
}

func (b Binaries) config() Command {
	return Command{Source: SourceScontrolConfig, Name: b.Scontrol, Args: []string{"show", "config"}}
}
