// Package probe inspects host state before and during a provisioning run.
package probe

// Snapshot captures host state at pipeline start. It is read-only after
// creation; risky steps ask the Prober for a fresh memory reading instead
// of mutating the snapshot.
type Snapshot struct {
	// ToolVersions maps tool name to its reported version string
	// (empty when the tool is present but reports no parseable version).
	ToolVersions map[string]string

	// AvailableMemoryMB is the available system memory at probe time.
	AvailableMemoryMB int64

	// DiskFreeMB is the free space on the filesystem holding the work root.
	DiskFreeMB int64

	// Flags records boolean host facts (e.g., "desktop-session",
	// "jetson-board").
	Flags map[string]bool
}

// HasTool returns true if the tool was found on PATH during the probe.
func (s *Snapshot) HasTool(name string) bool {
	_, ok := s.ToolVersions[name]
	return ok
}

// Version returns the probed version string for a tool.
func (s *Snapshot) Version(name string) string {
	return s.ToolVersions[name]
}

// Flag returns the value of a host fact flag.
func (s *Snapshot) Flag(name string) bool {
	return s.Flags[name]
}
