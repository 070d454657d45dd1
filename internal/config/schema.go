// Package config provides configuration loading and management for flamewatch.
//
// Configuration is layered: built-in defaults, then the optional YAML config
// file, then FLAMEWATCH_* environment variables, then command-line flags.
// Later layers win.
package config

// Config is the top-level configuration structure.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

// MonitorConfig configures a profiling session.
type MonitorConfig struct {
	// Port is the port the target application listens on.
	Port int `yaml:"port" env:"FLAMEWATCH_PORT"`

	// Timeout bounds port discovery and launch readiness, in seconds.
	Timeout int `yaml:"timeout" env:"FLAMEWATCH_TIMEOUT"`

	// Duration bounds the profiling session, in seconds. Zero means
	// unbounded; the bound is enforced by the profiler binary itself.
	Duration int `yaml:"duration" env:"FLAMEWATCH_DURATION"`

	// Output is the path the record artifact is written to.
	Output string `yaml:"output" env:"FLAMEWATCH_OUTPUT"`

	// Rate is the sampling rate in Hz for record mode.
	Rate int `yaml:"rate" env:"FLAMEWATCH_RATE"`

	// Subprocesses makes record mode follow the target's subprocesses.
	Subprocesses bool `yaml:"subprocesses" env:"FLAMEWATCH_SUBPROCESSES"`

	// Idle includes idle threads in record samples.
	Idle bool `yaml:"idle" env:"FLAMEWATCH_IDLE"`

	// LocalsDepth controls how much local-variable detail a dump shows.
	// Zero omits locals entirely.
	LocalsDepth int `yaml:"locals_depth" env:"FLAMEWATCH_LOCALS_DEPTH"`

	// AppModule is the ASGI module path used in launch-and-monitor mode.
	AppModule string `yaml:"app_module" env:"FLAMEWATCH_APP_MODULE"`

	// Workers is the worker count passed to the launched application.
	Workers int `yaml:"workers" env:"FLAMEWATCH_WORKERS"`

	// Python is the interpreter used to launch the target application.
	Python string `yaml:"python" env:"FLAMEWATCH_PYTHON"`

	// PySpy is the profiler binary name or path.
	PySpy string `yaml:"py_spy" env:"FLAMEWATCH_PY_SPY"`

	// TargetPattern is the command-line substring used by discovery.
	TargetPattern string `yaml:"target_pattern" env:"FLAMEWATCH_TARGET_PATTERN"`
}
