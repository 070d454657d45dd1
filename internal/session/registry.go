package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry records every subprocess handle spawned during the run, in spawn
// order. Entries are appended when a subprocess starts and never removed;
// the registry is scanned by the interruption backstop and by failure
// cleanup, and retires with the process. A single explicit instance is
// passed by reference into every spawning component.
type Registry struct {
	mu      sync.Mutex
	handles []Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a spawned handle.
func (r *Registry) Add(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = append(r.handles, h)
}

// Handles returns a snapshot of the registered handles in spawn order.
func (r *Registry) Handles() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Handle(nil), r.handles...)
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// StopAll issues a stop request to every registered handle. Already-exited
// handles ignore the request, so StopAll is safe to call from overlapping
// shutdown paths. Cleanup never blocks on further errors.
func (r *Registry) StopAll(logger zerolog.Logger) {
	for _, h := range r.Handles() {
		logger.Debug().Int32("pid", h.PID()).Msg("stopping registered subprocess")
		h.Stop()
	}
}
