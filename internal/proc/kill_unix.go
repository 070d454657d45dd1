//go:build !windows

package proc

import (
	"golang.org/x/sys/unix"
)

// ForceKillPID sends SIGKILL directly to the PID, bypassing process-handle
// resolution. A process that is already gone counts as success.
func ForceKillPID(pid int32) error {
	err := unix.Kill(int(pid), unix.SIGKILL)
	if err == unix.ESRCH {
		return nil
	}
	return err
}
