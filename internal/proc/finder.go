package proc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flamewatch/flamewatch/internal/constants"
)

// Finder locates a target process by command-line substring or by listening
// port. It holds no state; every call produces a fresh snapshot.
type Finder struct {
	inspector Inspector
	interval  time.Duration
	logger    zerolog.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithPollInterval overrides the port-discovery polling interval.
func WithPollInterval(d time.Duration) FinderOption {
	return func(f *Finder) {
		f.interval = d
	}
}

// NewFinder creates a Finder backed by the given inspector.
func NewFinder(inspector Inspector, logger zerolog.Logger, opts ...FinderOption) *Finder {
	f := &Finder{
		inspector: inspector,
		interval:  constants.PortPollInterval,
		logger:    logger.With().Str("component", "finder").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindByCmdline returns all live processes whose command line contains
// substr. Matching is case-sensitive. Processes with an unreadable or empty
// command line are not considered.
func (f *Finder) FindByCmdline(substr string) []Info {
	infos, err := f.inspector.Processes()
	if err != nil {
		f.logger.Warn().Err(err).Msg("process enumeration failed")
		return nil
	}

	var matches []Info
	for _, info := range infos {
		if info.Cmdline == "" {
			continue
		}
		if strings.Contains(info.Cmdline, substr) {
			matches = append(matches, info)
		}
	}
	return matches
}

// FindByPort returns the PID owning the first listening TCP socket bound to
// port, or false if none is found.
func (f *Finder) FindByPort(port int) (int32, bool) {
	conns, err := f.inspector.Connections()
	if err != nil {
		f.logger.Debug().Err(err).Msg("connection enumeration failed")
		return 0, false
	}

	for _, c := range conns {
		if c.Listening && c.Port == port && c.PID > 0 {
			return c.PID, true
		}
	}
	return 0, false
}

// WaitForPort polls FindByPort until a match appears, the timeout elapses,
// or ctx is cancelled. The timeout is wall-clock, measured from call start;
// the call never blocks longer than timeout plus one polling interval.
func (f *Finder) WaitForPort(ctx context.Context, port int, timeout time.Duration) (int32, bool) {
	deadline := time.Now().Add(timeout)
	for {
		if pid, ok := f.FindByPort(port); ok {
			return pid, true
		}
		if time.Now().After(deadline) {
			return 0, false
		}
		select {
		case <-ctx.Done():
			return 0, false
		case <-time.After(f.interval):
		}
	}
}
