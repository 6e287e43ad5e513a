// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// CommandResult represents the result of executing an external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
	Dir     string
}

// CommandRunner executes external commands. Provisioning steps treat every
// external tool (apt-get, pip, make, gsettings) as a black box behind this
// interface.
type CommandRunner interface {
	// Run executes a command in the current working directory.
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)

	// RunIn executes a command with the given working directory.
	// Build steps use this to run configure/make inside an unpacked source tree.
	RunIn(ctx context.Context, dir string, command string, args ...string) (CommandResult, error)
}
