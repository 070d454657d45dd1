package session

// State is the lifecycle state of a profiling session. Exactly one
// Orchestrator exists per invocation and it is the only component that
// drives transitions; state is never persisted across runs.
type State int

const (
	StateIdle State = iota
	StateResolvingTarget
	StateLaunchingTarget
	StateWaitingForTargetReady
	StateRunning
	StateShuttingDown
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingTarget:
		return "resolving_target"
	case StateLaunchingTarget:
		return "launching_target"
	case StateWaitingForTargetReady:
		return "waiting_for_target_ready"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
