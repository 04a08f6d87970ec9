package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dm/stop/internal/client"
	"github.com/dm/stop/internal/config"
	"github.com/dm/stop/internal/logging"
	"github.com/dm/stop/internal/metrics"
	"github.com/dm/stop/internal/server"
	"github.com/dm/stop/internal/tui"
)

// version is set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/stop
var version = "dev"

// runFunc starts the dashboard with a resolved configuration.
type runFunc func(ctx context.Context, cfg *config.Config) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(version, run).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = []struct{ key, flag string }{
	{"delay", "delay"},
	{"timeout", "timeout"},
	{"log_file", "log-file"},
	{"log_level", "log-level"},
	{"server", "server"},
	{"addr", "addr"},
	{"metrics_addr", "metrics-addr"},
}

func newRootCmd(version string, runE runFunc) *cobra.Command {
	v := config.NewViper()
	d := config.DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Slurm top: a live terminal dashboard for Slurm clusters",
		Long: `stop polls sinfo, squeue and scontrol and shows partitions, nodes and
jobs in a live terminal dashboard, with drill-down screens for single nodes
and partitions. With --server it serves the same dashboard to browsers.`,
		Example: `  stop
  stop --delay 10 --timeout 5s
  stop --server --addr :8000`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}
			return runE(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (default ./stop.yaml, then ~/.config/stop/config.yaml)")
	f.Int("delay", d.Delay, "refresh interval in seconds")
	f.Duration("timeout", d.Timeout, "timeout for each Slurm command")
	f.String("log-file", "", `log file, or "-" for stderr (default "`+logging.DefaultFile()+`")`)
	f.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	f.Bool("server", false, "serve the dashboard to web browsers instead of this terminal")
	f.String("addr", d.Addr, "listen address in server mode")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address in terminal mode")

	if err := bindFlags(v, f); err != nil {
		panic(err)
	}
	return cmd
}

// bindFlags lets each flag override its config key when set.
func bindFlags(v *viper.Viper, f *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		flag := f.Lookup(fk.flag)
		if flag == nil {
			return fmt.Errorf("flag %q is not defined", fk.flag)
		}
		if err := v.BindPFlag(fk.key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", fk.flag, err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper, path string) (*config.Config, error) {
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// run wires the client, metrics and logging, then starts the terminal UI or
// the web server.
func run(ctx context.Context, cfg *config.Config) error {
	log, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer closer.Close()

	set := metrics.New()
	c := client.NewDefaultClient(client.ClientConfig{
		Binaries: client.Binaries{
			Sinfo:    cfg.Commands.Sinfo,
			Squeue:   cfg.Commands.Squeue,
			Scontrol: cfg.Commands.Scontrol,
		},
		CommandTimeout: cfg.Timeout,
		Logger:         log.WithField("component", "client"),
		Observer:       set,
	})
	opts := tui.Options{
		Client:      c,
		Interval:    cfg.Interval(),
		HistorySize: cfg.HistorySize,
		Logger:      log.WithField("component", "tui"),
		Observer:    set,
		Version:     version,
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"delay":   cfg.Delay,
		"timeout": cfg.Timeout,
		"server":  cfg.Server,
	}).Info("starting")

	if cfg.Server {
		srv := server.New(server.Config{
			Addr:    cfg.Addr,
			Metrics: set,
			Logger:  log,
			NewModel: func(ctx context.Context) tea.Model {
				return tui.NewApp(ctx, opts)
			},
		})
		return srv.Run(ctx)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := server.RunMetrics(ctx, cfg.MetricsAddr, set, log); err != nil {
				log.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	p := tea.NewProgram(tui.NewApp(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info("exiting")
	return nil
}
