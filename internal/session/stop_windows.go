//go:build windows

package session

import (
	"os"
)

// stopProcess ends the process outright; Windows has no cooperative
// terminate signal to offer first.
func stopProcess(p *os.Process) {
	_ = p.Kill()
}
