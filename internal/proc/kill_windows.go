//go:build windows

package proc

import (
	"errors"
	"os/exec"
	"strconv"
)

// ForceKillPID terminates the process via taskkill, which covers PIDs the
// runtime cannot resolve into handles. A process that is already gone counts
// as success.
func ForceKillPID(pid int32) error {
	cmd := exec.Command("taskkill", "/F", "/PID", strconv.Itoa(int(pid)))
	if err := cmd.Run(); err != nil {
		// taskkill exits non-zero when the PID no longer exists.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return err
	}
	return nil
}
