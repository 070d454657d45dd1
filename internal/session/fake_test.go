package session

import (
	"context"
	"sync"
	"time"

	"github.com/flamewatch/flamewatch/internal/proc"
)

// fakeHandle is a scriptable subprocess handle.
type fakeHandle struct {
	pid int32
	err error

	mu      sync.Mutex
	done    chan struct{}
	stopped int
}

func newFakeHandle(pid int32) *fakeHandle {
	return &fakeHandle{pid: pid, done: make(chan struct{})}
}

func (h *fakeHandle) PID() int32 {
	return h.pid
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped++
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *fakeHandle) Done() <-chan struct{} {
	return h.done
}

func (h *fakeHandle) Err() error {
	return h.err
}

// exitAfter simulates the subprocess exiting on its own.
func (h *fakeHandle) exitAfter(d time.Duration) {
	go func() {
		time.Sleep(d)
		h.mu.Lock()
		defer h.mu.Unlock()
		select {
		case <-h.done:
		default:
			close(h.done)
		}
	}()
}

func (h *fakeHandle) stopCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// fakeFinder scripts the three discovery strategies and records which were
// consulted.
type fakeFinder struct {
	portPID int32
	portOK  bool

	waitPID   int32
	waitOK    bool
	waitDelay time.Duration

	matches []proc.Info

	portCalls    int
	waitCalls    int
	cmdlineCalls int
}

func (f *fakeFinder) FindByCmdline(substr string) []proc.Info {
	f.cmdlineCalls++
	return f.matches
}

func (f *fakeFinder) FindByPort(port int) (int32, bool) {
	f.portCalls++
	return f.portPID, f.portOK
}

func (f *fakeFinder) WaitForPort(ctx context.Context, port int, timeout time.Duration) (int32, bool) {
	f.waitCalls++
	if f.waitDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, false
		case <-time.After(f.waitDelay):
		}
	}
	return f.waitPID, f.waitOK
}

// fakeTree records tree-termination requests in order.
type fakeTree struct {
	mu     sync.Mutex
	killed []int32
}

func (t *fakeTree) TerminateTree(root int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.killed = append(t.killed, root)
}

func (t *fakeTree) terminated() []int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int32(nil), t.killed...)
}

// fakeRunner hands out a pre-built handle and records the invocation.
type fakeRunner struct {
	handle   *fakeHandle
	startErr error

	started bool
	mode    Mode
	pid     int32
	opts    Options
}

func (r *fakeRunner) Start(mode Mode, pid int32, opts Options) (Handle, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.started = true
	r.mode = mode
	r.pid = pid
	r.opts = opts
	return r.handle, nil
}

// fakeLauncher hands out a pre-built target handle.
type fakeLauncher struct {
	handle    *fakeHandle
	launchErr error
	launched  bool
}

func (l *fakeLauncher) Launch() (Handle, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.launched = true
	return l.handle, nil
}
