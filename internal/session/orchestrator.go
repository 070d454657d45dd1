package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flamewatch/flamewatch/internal/errors"
	"github.com/flamewatch/flamewatch/internal/proc"
)

// targetFinder resolves a target PID by port or command-line substring.
type targetFinder interface {
	FindByCmdline(substr string) []proc.Info
	FindByPort(port int) (int32, bool)
	WaitForPort(ctx context.Context, port int, timeout time.Duration) (int32, bool)
}

// treeTerminator tears down a process and its descendants.
type treeTerminator interface {
	TerminateTree(root int32)
}

// profilerStarter launches the external profiler against a PID.
type profilerStarter interface {
	Start(mode Mode, pid int32, opts Options) (Handle, error)
}

// targetLauncher spawns the target application for launch-and-monitor mode.
type targetLauncher interface {
	Launch() (Handle, error)
}

// Orchestrator is the top-level session state machine. It resolves a target
// PID, optionally launches the target application itself, runs one profiler
// session against it, and coordinates shutdown on completion, interruption,
// or failure. Errors from the components below it are either expected races
// absorbed at their point of occurrence or propagate here; the orchestrator
// alone decides fatal-versus-recoverable.
type Orchestrator struct {
	cfg      Config
	finder   targetFinder
	tree     treeTerminator
	runner   profilerStarter
	launcher targetLauncher
	registry *Registry
	logger   zerolog.Logger

	state    State
	termOnce sync.Once
}

// NewOrchestrator wires a session together. registry must be the same
// instance handed to every spawning component.
func NewOrchestrator(
	cfg Config,
	finder targetFinder,
	tree treeTerminator,
	runner profilerStarter,
	launcher targetLauncher,
	registry *Registry,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		finder:   finder,
		tree:     tree,
		runner:   runner,
		launcher: launcher,
		registry: registry,
		logger: logger.With().
			Str("component", "session").
			Str("session_id", uuid.NewString()[:8]).
			Logger(),
		state: StateIdle,
	}
}

// State returns the current session state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.logger.Debug().Stringer("from", o.state).Stringer("to", s).Msg("state transition")
	o.state = s
}

// Run drives the session to completion. It returns nil on a clean session
// (including one ended by interruption) and the fatal error otherwise,
// after best-effort cleanup of anything already spawned.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.cfg.Launch {
		return o.runLaunchAndMonitor(ctx)
	}

	pid, err := o.resolveTarget(ctx)
	if err != nil {
		return o.fail(err)
	}
	return o.profile(ctx, pid, nil)
}

// resolveTarget picks the target PID. An explicit PID skips discovery
// entirely; otherwise the port is tried, then command-line discovery, and
// exhaustion of all strategies is fatal.
func (o *Orchestrator) resolveTarget(ctx context.Context) (int32, error) {
	if o.cfg.PID > 0 {
		return o.cfg.PID, nil
	}

	o.setState(StateResolvingTarget)

	if o.cfg.Wait {
		if pid, ok := o.finder.WaitForPort(ctx, o.cfg.Port, o.cfg.Timeout); ok {
			o.logger.Info().Int32("pid", pid).Int("port", o.cfg.Port).Msg("target appeared on port")
			return pid, nil
		}
		return 0, fmt.Errorf("%w: nothing bound port %d within %s",
			errors.ErrTargetNotFound, o.cfg.Port, o.cfg.Timeout)
	}

	if o.cfg.Port > 0 {
		if pid, ok := o.finder.FindByPort(o.cfg.Port); ok {
			o.logger.Info().Int32("pid", pid).Int("port", o.cfg.Port).Msg("target found by port")
			return pid, nil
		}
	}

	if matches := o.finder.FindByCmdline(o.cfg.TargetPattern); len(matches) > 0 {
		o.logger.Info().
			Int32("pid", matches[0].PID).
			Str("cmdline", matches[0].Cmdline).
			Msg("target auto-selected by command line")
		return matches[0].PID, nil
	}

	return 0, fmt.Errorf("%w: supply --pid or --port, or run --list to see candidates",
		errors.ErrTargetNotFound)
}

// runLaunchAndMonitor starts the target application, waits for it to bind
// its port, and monitors it. A target that never becomes ready is torn down
// before the failure is reported.
func (o *Orchestrator) runLaunchAndMonitor(ctx context.Context) error {
	o.setState(StateLaunchingTarget)
	target, err := o.launcher.Launch()
	if err != nil {
		return o.fail(err)
	}

	o.setState(StateWaitingForTargetReady)
	pid, ok := o.finder.WaitForPort(ctx, o.cfg.Port, o.cfg.Timeout)
	if !ok {
		o.tree.TerminateTree(target.PID())
		return o.fail(fmt.Errorf("%w: port %d not bound within %s",
			errors.ErrLaunchTimeout, o.cfg.Port, o.cfg.Timeout))
	}
	o.logger.Info().Int32("pid", pid).Msg("target ready")

	return o.profile(ctx, pid, target)
}

// profile runs one profiler session against pid. target, when non-nil, is
// the launched application handle whose tree must be torn down once the
// session ends; it is never torn down while the profiler is still attached.
func (o *Orchestrator) profile(ctx context.Context, pid int32, target Handle) error {
	o.setState(StateRunning)

	h, err := o.runner.Start(o.cfg.Mode, pid, Options{
		Output:       o.cfg.Output,
		Duration:     o.cfg.Duration,
		Rate:         o.cfg.Rate,
		Subprocesses: o.cfg.Subprocesses,
		Idle:         o.cfg.Idle,
		LocalsDepth:  o.cfg.LocalsDepth,
	})
	if err != nil {
		if target != nil {
			o.tree.TerminateTree(target.PID())
		}
		return o.fail(err)
	}

	select {
	case <-h.Done():
		// Natural completion: a bounded --duration elapsed, a dump
		// finished, or the profiler quit on its own.
		o.logger.Debug().Msg("profiler exited")
	case <-ctx.Done():
		o.logger.Info().Msg("interrupted, shutting down")
		o.setState(StateShuttingDown)
		// Target tree goes first; only then is the profiler itself asked
		// to stop and reaped.
		o.tree.TerminateTree(pid)
		h.Stop()
		<-h.Done()
	}

	o.shutdown(target)
	return nil
}

// shutdown performs the terminal ShuttingDown -> Terminated transition.
// It runs exactly once even when overlapping triggers race.
func (o *Orchestrator) shutdown(target Handle) {
	o.termOnce.Do(func() {
		if o.state != StateShuttingDown {
			o.setState(StateShuttingDown)
		}
		if target != nil {
			o.tree.TerminateTree(target.PID())
		}
		o.setState(StateTerminated)
		o.logger.Info().Msg("session terminated")
	})
}

// fail drives the Failed state: best-effort cleanup of every registered
// subprocess, then the error propagates to the caller, which owns the
// process exit code.
func (o *Orchestrator) fail(err error) error {
	o.setState(StateFailed)
	o.logger.Error().Err(err).Msg("session failed")
	o.registry.StopAll(o.logger)
	return err
}
