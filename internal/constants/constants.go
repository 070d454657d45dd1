// Package constants defines shared configuration constants and defaults.
package constants

import "time"

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".flamewatch"

	// DefaultDataDir is the directory record artifacts land in when no
	// output path is given.
	DefaultDataDir = DefaultDir + "/" + "data"

	DefaultOutputFile = "profile.svg"
)

const (
	// DefaultPort is the port the target application is expected on.
	DefaultPort = 8000

	// DefaultTimeoutSeconds bounds port discovery and launch readiness.
	DefaultTimeoutSeconds = 30

	// DefaultRate is the profiler sampling rate in Hz.
	DefaultRate = 100

	// DefaultAppModule is the ASGI module launched in launch-and-monitor mode.
	DefaultAppModule = "main:app"

	// DefaultWorkers is the worker count for the launched application.
	DefaultWorkers = 1

	// DefaultPython is the interpreter used to launch the target application.
	DefaultPython = "python3"

	// DefaultPySpyBinary is the profiler binary resolved from PATH.
	DefaultPySpyBinary = "py-spy"

	// DefaultTargetPattern is the command-line substring discovery matches on.
	DefaultTargetPattern = "uvicorn"
)

const (
	// PortPollInterval is how often port discovery re-checks listening sockets.
	// A default, not a correctness invariant.
	PortPollInterval = 500 * time.Millisecond

	// TerminateGracePeriod is how long tree termination waits between the
	// graceful and forced phases.
	TerminateGracePeriod = 3 * time.Second
)
