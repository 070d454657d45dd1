package proc

import (
	"errors"
	"fmt"

	gpsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/flamewatch/flamewatch/internal/safe"
)

// SystemInspector implements Inspector against the live host via gopsutil.
type SystemInspector struct{}

// NewSystemInspector returns an Inspector backed by the host OS.
func NewSystemInspector() *SystemInspector {
	return &SystemInspector{}
}

// Processes enumerates live processes. Entries that vanish between
// enumeration and inspection, or that deny access to their command line,
// are skipped; these are expected races, not errors.
func (SystemInspector) Processes() ([]Info, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		name, err := p.Name()
		if err != nil {
			continue
		}
		infos = append(infos, Info{PID: p.Pid, Name: name, Cmdline: cmdline})
	}

	return infos, nil
}

// Process resolves a PID into a live handle.
func (SystemInspector) Process(pid int32) (Process, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pid %d: %w", pid, err)
	}
	return &sysProcess{p: p}, nil
}

// Connections snapshots host TCP connections.
func (SystemInspector) Connections() ([]Connection, error) {
	stats, err := gpsnet.Connections("tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate connections: %w", err)
	}

	conns := make([]Connection, 0, len(stats))
	for _, s := range stats {
		conns = append(conns, Connection{
			PID:       s.Pid,
			Port:      safe.Uint32ToInt(s.Laddr.Port),
			Listening: s.Status == "LISTEN",
		})
	}

	return conns, nil
}

// sysProcess adapts *process.Process to the Process interface.
type sysProcess struct {
	p *process.Process
}

func (s *sysProcess) PID() int32 {
	return s.p.Pid
}

func (s *sysProcess) Running() (bool, error) {
	return s.p.IsRunning()
}

func (s *sysProcess) Terminate() error {
	return s.p.Terminate()
}

func (s *sysProcess) Kill() error {
	return s.p.Kill()
}

func (s *sysProcess) Children() ([]Process, error) {
	children, err := s.p.Children()
	if err != nil {
		if errors.Is(err, process.ErrorNoChildren) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]Process, 0, len(children))
	for _, c := range children {
		out = append(out, &sysProcess{p: c})
	}
	return out, nil
}
