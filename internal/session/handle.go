package session

import (
	"os/exec"
)

// Handle is an opaque reference to a subprocess spawned by this run. The
// spawning component owns the underlying process object; handles obtained
// by discovery carry a bare PID and never pass through here.
type Handle interface {
	PID() int32

	// Stop issues the platform interruption-stop request. Stopping an
	// already-exited process is a safe no-op, so overlapping shutdown
	// paths need no coordination beyond this idempotence.
	Stop()

	// Done is closed once the subprocess has exited and its OS resources
	// have been released.
	Done() <-chan struct{}

	// Err reports the subprocess exit error. Valid only after Done.
	Err() error
}

// cmdHandle wraps an exec.Cmd that has been started. A single goroutine
// reaps it; Done observers never call Wait themselves.
type cmdHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func newCmdHandle(cmd *exec.Cmd) *cmdHandle {
	h := &cmdHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		h.err = cmd.Wait()
		close(h.done)
	}()
	return h
}

func (h *cmdHandle) PID() int32 {
	if h.cmd.Process == nil {
		return 0
	}
	return int32(h.cmd.Process.Pid)
}

func (h *cmdHandle) Stop() {
	if h.cmd.Process == nil {
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	// The process may exit between the check and the signal; stopProcess
	// swallows that.
	stopProcess(h.cmd.Process)
}

func (h *cmdHandle) Done() <-chan struct{} {
	return h.done
}

func (h *cmdHandle) Err() error {
	return h.err
}
