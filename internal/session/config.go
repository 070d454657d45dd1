package session

import "time"

// Config is the immutable per-invocation session configuration, resolved
// once from flags, environment, and the config file before the orchestrator
// starts. Exactly one target-resolution strategy is active: an explicit PID
// beats the port, which beats command-line discovery.
type Config struct {
	// Target resolution.
	PID     int32
	Port    int
	Wait    bool
	Timeout time.Duration

	// Profiler invocation.
	Mode         Mode
	Duration     time.Duration
	Output       string
	Rate         int
	Subprocesses bool
	Idle         bool
	LocalsDepth  int

	// Launch-and-monitor.
	Launch    bool
	AppModule string
	Workers   int
	Python    string

	// Binaries and discovery.
	PySpy         string
	TargetPattern string
}
