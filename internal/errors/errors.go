// Package errors defines the closed error taxonomy for flamewatch and
// utilities for error handling.
//
// Expected races during process inspection (a process vanishing between
// enumeration and inspection, permission denied reading another process's
// info) and teardown of already-exited processes are absorbed where they
// occur and never surface through this package. Everything that does reach
// the session orchestrator is one of the fatal kinds below, and only the
// orchestrator decides the process exit code.
package errors

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

var (
	// ErrTargetNotFound indicates no target process could be resolved by
	// any strategy (explicit PID, port, or command-line discovery).
	ErrTargetNotFound = errors.New("target process not found")

	// ErrLaunchTimeout indicates a launched target application did not bind
	// its port before the readiness timeout elapsed.
	ErrLaunchTimeout = errors.New("target application did not become ready in time")

	// ErrProfilerStart indicates the profiler binary is missing or failed
	// to spawn. This is fatal for the whole session and never retried.
	ErrProfilerStart = errors.New("profiler failed to start")
)

// IsFatal reports whether err belongs to the fatal kinds of the taxonomy.
// Fatal errors terminate the session with exit code 1 after best-effort
// cleanup of any already-registered subprocesses.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTargetNotFound) ||
		errors.Is(err, ErrLaunchTimeout) ||
		errors.Is(err, ErrProfilerStart)
}

// DeferClose properly closes an io.Closer with logging.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// Must panics if error is not nil.
// Use only for initialization code where failure should halt the program.
func Must(err error, msg string) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}
