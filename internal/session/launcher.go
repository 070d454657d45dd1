package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"
)

// Launcher spawns the target application for launch-and-monitor mode.
type Launcher struct {
	cfg      Config
	registry *Registry
	logger   zerolog.Logger
}

// NewLauncher creates a Launcher. The spawned handle is registered in
// registry.
func NewLauncher(cfg Config, registry *Registry, logger zerolog.Logger) *Launcher {
	return &Launcher{
		cfg:      cfg,
		registry: registry,
		logger:   logger.With().Str("component", "launcher").Logger(),
	}
}

// Launch starts the target application as a registered subprocess. Its
// stdout/stderr go to pipes, not the terminal, so the monitor output stays
// legible; piped lines surface at debug level instead.
func (l *Launcher) Launch() (Handle, error) {
	args := []string{
		"-m", "uvicorn",
		l.cfg.AppModule,
		"--host", "0.0.0.0",
		"--port", strconv.Itoa(l.cfg.Port),
		"--workers", strconv.Itoa(l.cfg.Workers),
	}

	l.logger.Info().
		Str("python", l.cfg.Python).
		Str("app_module", l.cfg.AppModule).
		Int("port", l.cfg.Port).
		Msg("launching target application")

	cmd := exec.Command(l.cfg.Python, args...)
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe target stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe target stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch target application: %w", err)
	}

	go l.drain("stdout", stdout)
	go l.drain("stderr", stderr)

	h := newCmdHandle(cmd)
	l.registry.Add(h)
	return h, nil
}

// drain keeps the pipe from filling up and surfaces target output at debug.
func (l *Launcher) drain(stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l.logger.Debug().Str("stream", stream).Msg(scanner.Text())
	}
}
