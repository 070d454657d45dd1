//go:build !windows

package session

import (
	"os"

	"golang.org/x/sys/unix"
)

// stopProcess asks the process to exit cooperatively. The forced phase, if
// needed, belongs to the tree controller.
func stopProcess(p *os.Process) {
	_ = p.Signal(unix.SIGTERM)
}
