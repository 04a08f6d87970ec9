package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single command when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Observer receives one observation per fetch. outcome is "ok" or a Kind label.
type Observer interface {
	ObserveFetch(source, outcome string, elapsed time.Duration)
}

// Fetcher runs commands through a Runner and turns every failure into a
// *FetchError. It never panics past its boundary.
type Fetcher struct {
	runner   Runner
	timeout  time.Duration
	log      logrus.FieldLogger
	observer Observer
}

// NewFetcher constructs a Fetcher. A nil logger discards output and a nil
// observer disables metrics.
func NewFetcher(r Runner, timeout time.Duration, log logrus.FieldLogger, obs Observer) *Fetcher {
	if r == nil {
		r = ExecRunner{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Fetcher{runner: r, timeout: timeout, log: log, observer: obs}
}

// FetchJSON runs cmd and decodes its stdout into out.
func (f *Fetcher) FetchJSON(ctx context.Context, cmd Command, out any) (err error) {
	start := time.Now()
	defer func() { f.finish(cmd, start, err) }()

	stdout, err := f.run(ctx, cmd)
	if err != nil {
		return err
	}
	return decode(cmd, stdout, out)
}

// FetchText runs cmd and returns its stdout verbatim.
func (f *Fetcher) FetchText(ctx context.Context, cmd Command) (text string, err error) {
	start := time.Now()
	defer func() { f.finish(cmd, start, err) }()

	stdout, err := f.run(ctx, cmd)
	if err != nil {
		return "", err
	}
	return string(stdout), nil
}

func (f *Fetcher) run(ctx context.Context, cmd Command) (stdout []byte, err error) {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = &FetchError{Kind: KindUnexpectedFailure, Command: cmd.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	stdout, stderr, runErr := f.runner.Run(runCtx, cmd)
	if runErr == nil {
		return stdout, nil
	}
	return nil, f.classify(ctx, runCtx, cmd, stderr, runErr)
}

func (f *Fetcher) classify(parent, runCtx context.Context, cmd Command, stderr []byte, err error) *FetchError {
	fe := &FetchError{Command: cmd.String(), Stderr: strings.TrimSpace(string(stderr)), Err: err}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		fe.Kind = KindMissingDependency
	case parent.Err() != nil:
		fe.Kind = KindCommandFailure
		fe.Err = parent.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		fe.Kind = KindCommandFailure
		fe.Err = fmt.Errorf("timed out after %s: %w", f.timeout, context.DeadlineExceeded)
		fe.Stderr = ""
	case errors.As(err, &exitErr):
		fe.Kind = KindCommandFailure
	default:
		fe.Kind = KindUnexpectedFailure
	}
	return fe
}

func decode(cmd Command, stdout []byte, out any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FetchError{Kind: KindUnexpectedFailure, Command: cmd.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := json.Unmarshal(stdout, out); err != nil {
		return &FetchError{Kind: KindDecodeFailure, Command: cmd.String(), Err: err}
	}
	return nil
}

func (f *Fetcher) finish(cmd Command, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
		entry := f.log.WithFields(logrus.Fields{
			"command": cmd.String(),
			"kind":    outcome,
		})
		var fe *FetchError
		if errors.As(err, &fe) && fe.Stderr != "" {
			entry = entry.WithField("stderr", fe.Stderr)
		}
		if errors.Is(err, context.Canceled) {
			entry.Debug("fetch cancelled")
		} else {
			entry.WithError(err).Warn("fetch failed")
		}
	} else {
		f.log.WithFields(logrus.Fields{
			"command": cmd.String(),
			"elapsed": elapsed.Round(time.Millisecond),
		}).Debug("fetch ok")
	}
	if f.observer != nil {
		f.observer.ObserveFetch(cmd.Source, outcome, elapsed)
	}
}
