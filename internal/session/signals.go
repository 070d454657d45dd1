package session

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// InstallBackstop arms the process-wide interruption backstop. The first
// interruption signal cancels ctx and flows through the orchestrator's
// structured shutdown; a second one bypasses it, stops every handle in the
// registry, and exits immediately so no orphaned subprocess can survive the
// invocation. Install once per process.
func InstallBackstop(ctx context.Context, registry *Registry, logger zerolog.Logger) {
	go func() {
		<-ctx.Done()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		s := <-sig

		logger.Warn().
			Str("signal", s.String()).
			Int("registered", registry.Len()).
			Msg("forced shutdown, stopping all registered subprocesses")
		registry.StopAll(logger)
		os.Exit(1)
	}()
}
