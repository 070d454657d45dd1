// Package proc provides process discovery and process-tree termination on
// top of the host's process-inspection facility.
//
// The facility is consumed read-only: enumeration, command-line retrieval,
// child enumeration, and listening-socket-to-PID mapping. The only mutations
// ever requested are terminate/kill signals against a specific process.
package proc

// Info is a snapshot of one live process.
type Info struct {
	PID     int32
	Name    string
	Cmdline string
}

// Process is a handle to a live process. Implementations absorb the expected
// races of process inspection: a handle may refer to a process that exits at
// any moment, and every method tolerates that.
type Process interface {
	PID() int32
	Running() (bool, error)
	Terminate() error
	Kill() error
	Children() ([]Process, error)
}

// Connection is one network connection owned by a process. PID is zero when
// the owner cannot be determined.
type Connection struct {
	PID       int32
	Port      int
	Listening bool
}

// Inspector queries live OS processes and sockets. The gopsutil-backed
// implementation is SystemInspector; tests substitute fakes.
type Inspector interface {
	// Processes returns a snapshot of all live processes. Processes that
	// vanish during enumeration or whose info cannot be read are skipped.
	Processes() ([]Info, error)

	// Process resolves a PID into a handle. Returns an error if the
	// process does not exist.
	Process(pid int32) (Process, error)

	// Connections returns a snapshot of TCP connections on the host.
	Connections() ([]Connection, error)
}
