// Package cli implements the flamewatch command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flamewatch/flamewatch/internal/config"
	"github.com/flamewatch/flamewatch/internal/constants"
	"github.com/flamewatch/flamewatch/internal/logging"
	"github.com/flamewatch/flamewatch/internal/proc"
	"github.com/flamewatch/flamewatch/internal/safe"
	"github.com/flamewatch/flamewatch/internal/session"
	"github.com/flamewatch/flamewatch/pkg/version"
)

var (
	flagPID          int
	flagPort         int
	flagWait         bool
	flagTimeout      int
	flagStart        bool
	flagDuration     int
	flagRecord       bool
	flagOutput       string
	flagDump         bool
	flagLocals       int
	flagRate         int
	flagList         bool
	flagFormat       string
	flagSubprocesses bool
	flagIdle         bool
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "flamewatch",
	Short: "Supervise a sampling profiler against a running Python web application",
	Long: `flamewatch discovers a target server process (by PID, by listening port,
or by command-line match), attaches the py-spy sampling profiler to it, and
guarantees that every subprocess it spawned is torn down on exit - including
under interruption.

Modes:
- default: live top-like monitoring of the target
- --record: sample into a flame-graph file at --output
- --dump:   print a one-shot stack snapshot and exit
- --start:  launch the target application itself, then monitor it
- --list:   print candidate target processes and exit

Examples:
  # Attach to a known PID
  flamewatch --pid 12345

  # Wait for the app to bind its port, then monitor
  flamewatch --wait --timeout 30

  # Launch the app and monitor it
  flamewatch --start --port 8000

  # Record a 60s flame graph
  flamewatch --record --duration 60 --output profile.svg`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&flagPID, "pid", "p", 0, "PID of the target process")
	flags.IntVarP(&flagPort, "port", "P", constants.DefaultPort, "port the target application listens on")
	flags.BoolVarP(&flagWait, "wait", "w", false, "poll until the target appears on the port")
	flags.IntVarP(&flagTimeout, "timeout", "t", constants.DefaultTimeoutSeconds, "seconds to wait for the target to appear")
	flags.BoolVarP(&flagStart, "start", "s", false, "launch the target application and monitor it")
	flags.IntVarP(&flagDuration, "duration", "d", 0, "profiling duration in seconds (0 = unbounded)")
	flags.BoolVarP(&flagRecord, "record", "r", false, "record samples to a flame-graph file")
	flags.StringVarP(&flagOutput, "output", "o", "", "output path for record mode")
	flags.BoolVarP(&flagDump, "dump", "D", false, "dump the target's current stacks and exit")
	flags.IntVar(&flagLocals, "locals", 0, "local-variable detail depth for dump mode")
	flags.IntVar(&flagRate, "rate", constants.DefaultRate, "sampling rate in Hz")
	flags.BoolVarP(&flagList, "list", "l", false, "list candidate target processes and exit")
	flags.StringVar(&flagFormat, "format", "text", "list output format: text, json")
	flags.BoolVar(&flagSubprocesses, "subprocesses", false, "record samples from subprocesses of the target too")
	flags.BoolVar(&flagIdle, "idle", false, "include idle threads in record samples")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newVersionCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:  flagLogLevel,
		Pretty: true,
		Output: os.Stderr,
	})

	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd.Flags(), cfg)

	inspector := proc.NewSystemInspector()
	finder := proc.NewFinder(inspector, logger)

	if flagList {
		return runList(finder, cfg.Monitor.TargetPattern, flagFormat, cmd.OutOrStdout())
	}

	pid, clamped := safe.IntToInt32(flagPID)
	if clamped || pid < 0 {
		return fmt.Errorf("--pid %d is out of range", flagPID)
	}

	sessCfg := buildSessionConfig(cfg, pid)

	registry := session.NewRegistry()
	tree := proc.NewTreeController(inspector, logger)
	runner := session.NewRunner(cfg.Monitor.PySpy, registry, logger)
	launcher := session.NewLauncher(sessCfg, registry, logger)
	orch := session.NewOrchestrator(sessCfg, finder, tree, runner, launcher, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	session.InstallBackstop(ctx, registry, logger)

	return orch.Run(ctx)
}

// applyFlags overlays explicitly-set flags on the loaded configuration.
// Unset flags leave the file/environment values alone.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("port") {
		cfg.Monitor.Port = flagPort
	}
	if flags.Changed("timeout") {
		cfg.Monitor.Timeout = flagTimeout
	}
	if flags.Changed("duration") {
		cfg.Monitor.Duration = flagDuration
	}
	if flags.Changed("output") {
		cfg.Monitor.Output = flagOutput
	}
	if flags.Changed("rate") {
		cfg.Monitor.Rate = flagRate
	}
	if flags.Changed("subprocesses") {
		cfg.Monitor.Subprocesses = flagSubprocesses
	}
	if flags.Changed("idle") {
		cfg.Monitor.Idle = flagIdle
	}
	if flags.Changed("locals") {
		cfg.Monitor.LocalsDepth = flagLocals
	}
}

// buildSessionConfig maps the resolved configuration onto an immutable
// session config. Dump beats record beats live monitoring when several mode
// flags are given.
func buildSessionConfig(cfg *config.Config, pid int32) session.Config {
	mode := session.ModeTop
	switch {
	case flagDump:
		mode = session.ModeDump
	case flagRecord:
		mode = session.ModeRecord
	}

	return session.Config{
		PID:     pid,
		Port:    cfg.Monitor.Port,
		Wait:    flagWait,
		Timeout: time.Duration(cfg.Monitor.Timeout) * time.Second,

		Mode:         mode,
		Duration:     time.Duration(cfg.Monitor.Duration) * time.Second,
		Output:       cfg.Monitor.Output,
		Rate:         cfg.Monitor.Rate,
		Subprocesses: cfg.Monitor.Subprocesses,
		Idle:         cfg.Monitor.Idle,
		LocalsDepth:  cfg.Monitor.LocalsDepth,

		Launch:    flagStart,
		AppModule: cfg.Monitor.AppModule,
		Workers:   cfg.Monitor.Workers,
		Python:    cfg.Monitor.Python,

		PySpy:         cfg.Monitor.PySpy,
		TargetPattern: cfg.Monitor.TargetPattern,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("flamewatch version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}
