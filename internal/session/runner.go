package session

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flamewatch/flamewatch/internal/errors"
)

// Mode selects the profiler sub-command.
type Mode int

const (
	// ModeTop shows the profiler's live top-like view.
	ModeTop Mode = iota
	// ModeRecord samples into a flame-graph artifact file.
	ModeRecord
	// ModeDump prints a one-shot stack snapshot.
	ModeDump
)

func (m Mode) String() string {
	switch m {
	case ModeTop:
		return "top"
	case ModeRecord:
		return "record"
	case ModeDump:
		return "dump"
	default:
		return "unknown"
	}
}

// Options carries the mode-specific profiler flags.
type Options struct {
	Output       string
	Duration     time.Duration
	Rate         int
	Subprocesses bool
	Idle         bool
	LocalsDepth  int
}

// Runner launches the external sampling profiler against a target PID and
// owns the resulting handle until it exits or is told to stop.
type Runner struct {
	bin      string
	registry *Registry
	logger   zerolog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// NewRunner creates a Runner for the given profiler binary. Every spawned
// handle is registered in registry.
func NewRunner(bin string, registry *Registry, logger zerolog.Logger) *Runner {
	return &Runner{
		bin:      bin,
		registry: registry,
		logger:   logger.With().Str("component", "profiler").Logger(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// buildArgs maps a mode and options onto the profiler command line.
func buildArgs(mode Mode, pid int32, opts Options) []string {
	pidStr := strconv.Itoa(int(pid))

	switch mode {
	case ModeRecord:
		args := []string{
			"record",
			"-o", opts.Output,
			"--rate", strconv.Itoa(opts.Rate),
			"--pid", pidStr,
		}
		if opts.Duration > 0 {
			args = append(args, "--duration", strconv.Itoa(int(opts.Duration/time.Second)))
		}
		if opts.Subprocesses {
			args = append(args, "--subprocesses")
		}
		if opts.Idle {
			args = append(args, "--idle")
		}
		return args

	case ModeDump:
		args := []string{"dump", "--pid", pidStr}
		// The profiler deepens locals output one level per repetition.
		for i := 0; i < opts.LocalsDepth; i++ {
			args = append(args, "--locals")
		}
		return args

	default:
		args := []string{"top", "--pid", pidStr}
		if opts.Duration > 0 {
			args = append(args, "--duration", strconv.Itoa(int(opts.Duration/time.Second)))
		}
		return args
	}
}

// Start spawns the profiler targeting pid and returns without waiting for
// completion. The subprocess's stdout/stderr connect straight through to
// this session's own streams so the profiler's native UI shows unmodified.
// A missing or unstartable binary is fatal for the whole session.
func (r *Runner) Start(mode Mode, pid int32, opts Options) (Handle, error) {
	path, err := exec.LookPath(r.bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %q not found: %v", errors.ErrProfilerStart, r.bin, err)
	}

	if mode == ModeRecord && opts.Output != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
			return nil, fmt.Errorf("%w: cannot create output directory: %v", errors.ErrProfilerStart, err)
		}
	}

	args := buildArgs(mode, pid, opts)
	r.logger.Info().
		Stringer("mode", mode).
		Int32("pid", pid).
		Str("cmd", path+" "+strings.Join(args, " ")).
		Msg("starting profiler")

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrProfilerStart, err)
	}

	h := newCmdHandle(cmd)
	r.registry.Add(h)
	return h, nil
}
