package proc

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/flamewatch/flamewatch/internal/constants"
)

// exitPollInterval is how often grace-period waits re-check liveness.
const exitPollInterval = 50 * time.Millisecond

// TreeController owns termination semantics for a process and its
// descendants: graceful first, forced after a grace period, with a
// platform-native force-kill fallback when the root handle cannot be
// resolved at all.
type TreeController struct {
	inspector Inspector
	grace     time.Duration
	forceKill func(pid int32) error
	logger    zerolog.Logger
}

// TreeOption configures a TreeController.
type TreeOption func(*TreeController)

// WithGracePeriod overrides the wait between the graceful and forced phases.
func WithGracePeriod(d time.Duration) TreeOption {
	return func(tc *TreeController) {
		tc.grace = d
	}
}

// WithForceKill overrides the platform force-kill fallback.
func WithForceKill(fn func(pid int32) error) TreeOption {
	return func(tc *TreeController) {
		tc.forceKill = fn
	}
}

// NewTreeController creates a TreeController backed by the given inspector.
func NewTreeController(inspector Inspector, logger zerolog.Logger, opts ...TreeOption) *TreeController {
	tc := &TreeController{
		inspector: inspector,
		grace:     constants.TerminateGracePeriod,
		forceKill: ForceKillPID,
		logger:    logger.With().Str("component", "proctree").Logger(),
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// TerminateTree tears down root and every process that is its descendant at
// call time. Descendants are signaled before the root, and every graceful
// signal is sent before any forced signal for the same process. Signaling a
// process that has already exited is a no-op, so calling TerminateTree on an
// already-terminated tree is safe.
//
// Children spawned after enumeration begins are not covered.
func (tc *TreeController) TerminateTree(root int32) {
	p, err := tc.inspector.Process(root)
	if err != nil {
		// Root handle unresolvable (already gone, or inspection failed):
		// fall back to force-killing by PID alone.
		tc.logger.Debug().Err(err).Int32("pid", root).Msg("root handle unresolvable, forcing kill")
		if err := tc.forceKill(root); err != nil {
			tc.logger.Debug().Err(err).Int32("pid", root).Msg("force kill fallback failed")
		}
		return
	}

	descendants := tc.collectDescendants(p)
	tc.logger.Debug().Int32("pid", root).Int("descendants", len(descendants)).Msg("terminating process tree")

	for _, d := range descendants {
		// Already-exited descendants make Terminate fail; that is expected.
		if err := d.Terminate(); err != nil {
			tc.logger.Debug().Err(err).Int32("pid", d.PID()).Msg("terminate request failed")
		}
	}

	for _, d := range tc.waitExited(descendants) {
		if err := d.Kill(); err != nil {
			tc.logger.Debug().Err(err).Int32("pid", d.PID()).Msg("kill request failed")
		}
	}

	if err := p.Terminate(); err != nil {
		tc.logger.Debug().Err(err).Int32("pid", root).Msg("terminate request failed")
	}
	if alive := tc.waitExited([]Process{p}); len(alive) > 0 {
		if err := tc.forceKill(root); err != nil {
			tc.logger.Debug().Err(err).Int32("pid", root).Msg("force kill fallback failed")
		}
	}
}

// collectDescendants walks the child tree recursively. Enumeration order is
// irrelevant; processes vanishing mid-walk are skipped.
func (tc *TreeController) collectDescendants(p Process) []Process {
	var out []Process
	var walk func(Process)
	walk = func(cur Process) {
		children, err := cur.Children()
		if err != nil {
			return
		}
		for _, c := range children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(p)
	return out
}

// waitExited polls until every process has exited or the grace period
// elapses, and returns those still alive. A liveness check that errors
// counts as exited.
func (tc *TreeController) waitExited(procs []Process) []Process {
	deadline := time.Now().Add(tc.grace)
	pending := procs
	for {
		var alive []Process
		for _, p := range pending {
			if running, err := p.Running(); err == nil && running {
				alive = append(alive, p)
			}
		}
		if len(alive) == 0 || time.Now().After(deadline) {
			return alive
		}
		pending = alive
		time.Sleep(exitPollInterval)
	}
}
