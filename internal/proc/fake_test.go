package proc

import (
	"errors"
	"fmt"
	"sync"
)

// opLog records the order of signals sent to fake processes.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string, pid int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, fmt.Sprintf("%s %d", op, pid))
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// fakeProcess is a scriptable Process. A process with ignoreTerm set
// survives graceful termination and only dies on Kill.
type fakeProcess struct {
	pid        int32
	running    bool
	ignoreTerm bool
	children   []*fakeProcess
	log        *opLog
}

func (p *fakeProcess) PID() int32 {
	return p.pid
}

func (p *fakeProcess) Running() (bool, error) {
	return p.running, nil
}

func (p *fakeProcess) Terminate() error {
	p.log.add("term", p.pid)
	if !p.running {
		return errors.New("process already exited")
	}
	if !p.ignoreTerm {
		p.running = false
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.log.add("kill", p.pid)
	if !p.running {
		return errors.New("process already exited")
	}
	p.running = false
	return nil
}

func (p *fakeProcess) Children() ([]Process, error) {
	out := make([]Process, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, c)
	}
	return out, nil
}

// fakeInspector implements Inspector over scripted processes and
// connections.
type fakeInspector struct {
	infos    []Info
	infosErr error

	conns   []Connection
	connsFn func(call int) []Connection

	procs map[int32]*fakeProcess

	connCalls int
}

func (f *fakeInspector) Processes() ([]Info, error) {
	if f.infosErr != nil {
		return nil, f.infosErr
	}
	return f.infos, nil
}

func (f *fakeInspector) Process(pid int32) (Process, error) {
	p, ok := f.procs[pid]
	if !ok || !p.running {
		return nil, fmt.Errorf("no such process: %d", pid)
	}
	return p, nil
}

func (f *fakeInspector) Connections() ([]Connection, error) {
	f.connCalls++
	if f.connsFn != nil {
		return f.connsFn(f.connCalls), nil
	}
	return f.conns, nil
}

// register indexes a fake process tree by PID so Inspector.Process works.
func (f *fakeInspector) register(p *fakeProcess) {
	if f.procs == nil {
		f.procs = make(map[int32]*fakeProcess)
	}
	f.procs[p.pid] = p
	for _, c := range p.children {
		f.register(c)
	}
}
