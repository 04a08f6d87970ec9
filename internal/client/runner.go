package client

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Command is a Slurm invocation in argv form. It is never passed through a
// shell, so node and partition names are not interpreted.
type Command struct {
	// Source labels the command in logs and metrics.
	Source string
	Name   string
	Args   []string
}

// String returns the command line as the user would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes a command and captures its output.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands as local processes.
type ExecRunner struct{}

// Run executes cmd and returns captured stdout and stderr. The process is
// killed when ctx is done.
func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.WaitDelay = time.Second

	err := c.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
