// Package validate checks the provisioned system against expected
// capability sets. A capability is something the system can or cannot
// do after provisioning, such as importing a Python module or finding
// a binary on PATH.
package validate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mvaldez/orinup/internal/ports"
)

// Capability is a single observable property of the target system.
type Capability interface {
	// Name identifies the capability in validation reports.
	Name() string
	// Present reports whether the capability currently exists on the
	// system. Probing must never mutate state.
	Present(ctx context.Context) (bool, error)
}

// ImportCapability probes whether a Python module can be imported
// by the system interpreter.
type ImportCapability struct {
	module string
	runner ports.CommandRunner
	python string
}

// NewImportCapability creates a probe for the given Python module name.
func NewImportCapability(module string, runner ports.CommandRunner) *ImportCapability {
	return &ImportCapability{
		module: module,
		runner: runner,
		python: "python3",
	}
}

// WithInterpreter returns a copy probing with a different interpreter binary.
func (c *ImportCapability) WithInterpreter(python string) *ImportCapability {
	clone := *c
	clone.python = python
	return &clone
}

// Name returns the capability name, e.g. "python:import:PyQt5".
func (c *ImportCapability) Name() string {
	return "python:import:" + c.module
}

// Present reports whether the module imports cleanly.
func (c *ImportCapability) Present(ctx context.Context) (bool, error) {
	script := fmt.Sprintf("import %s", c.module)
	result, err := c.runner.Run(ctx, c.python, "-c", script)
	if err != nil {
		return false, fmt.Errorf("probing import of %s: %w", c.module, err)
	}
	// A failed import exits non-zero; that is a negative probe result,
	// not a probe error.
	return result.Success(), nil
}

// BinaryCapability probes whether a binary resolves on PATH.
type BinaryCapability struct {
	binary string
	lookup func(string) (string, error)
}

// NewBinaryCapability creates a probe for a binary name.
func NewBinaryCapability(binary string) *BinaryCapability {
	return &BinaryCapability{binary: binary, lookup: exec.LookPath}
}

// Name returns the capability name, e.g. "path:binary:qmake".
func (c *BinaryCapability) Name() string {
	return "path:binary:" + c.binary
}

// Present reports whether the binary is on PATH.
func (c *BinaryCapability) Present(_ context.Context) (bool, error) {
	_, err := c.lookup(c.binary)
	if err != nil {
		if strings.Contains(err.Error(), "executable file not found") {
			return false, nil
		}
		// exec.ErrNotFound wraps differently across platforms; any
		// lookup failure means the binary is not usable.
		return false, nil
	}
	return true, nil
}

// PipPackageCapability probes whether pip reports a package as installed.
type PipPackageCapability struct {
	pkg    string
	runner ports.CommandRunner
}

// NewPipPackageCapability creates a probe for an installed pip package.
func NewPipPackageCapability(pkg string, runner ports.CommandRunner) *PipPackageCapability {
	return &PipPackageCapability{pkg: pkg, runner: runner}
}

// Name returns the capability name, e.g. "pip:package:PyQt5-sip".
func (c *PipPackageCapability) Name() string {
	return "pip:package:" + c.pkg
}

// Present reports whether pip3 show finds the package.
func (c *PipPackageCapability) Present(ctx context.Context) (bool, error) {
	result, err := c.runner.Run(ctx, "pip3", "show", c.pkg)
	if err != nil {
		return false, fmt.Errorf("probing pip package %s: %w", c.pkg, err)
	}
	return result.Success(), nil
}
