// Package qtbuild provides the from-source build pipeline for a minimal
// Qt-binding installation: fetch the sdist, configure with feature modules
// excluded, compile, install, and verify the exclusions took effect.
package qtbuild

import (
	"github.com/mvaldez/orinup/internal/domain/config"
)

// Defaults for the qtbuild section.
const (
	DefaultPackage    = "pyqt5"
	DefaultCoreModule = "PyQt5"

	// DefaultLowMemoryMB is the available-memory floor below which the
	// build falls back to a single make job. Linking QtWebEngine-class
	// translation units routinely needs multiple GB per job.
	DefaultLowMemoryMB = 3072
)

// Config is the parsed qtbuild provider section.
type Config struct {
	// Package is the sdist name on the package index.
	Package string
	// CoreModule is the import name that must work after installation.
	CoreModule string
	// ExcludedModules are feature modules disabled at configure time and
	// asserted absent after install.
	ExcludedModules []string
	// ConfigureFlags are extra flags appended to the configure invocation.
	ConfigureFlags []string
	// LowMemoryMB is the re-probe floor for parallel compilation.
	LowMemoryMB int
}

// ParseConfig parses the raw qtbuild section.
func ParseConfig(section map[string]interface{}) (Config, error) {
	pkg, err := config.StringFromSection(section, "package", DefaultPackage)
	if err != nil {
		return Config{}, err
	}

	core, err := config.StringFromSection(section, "core_module", DefaultCoreModule)
	if err != nil {
		return Config{}, err
	}

	excluded, err := config.StringsFromSection(section, "excluded_modules")
	if err != nil {
		return Config{}, err
	}

	flags, err := config.StringsFromSection(section, "configure_flags")
	if err != nil {
		return Config{}, err
	}

	lowMem, err := config.IntFromSection(section, "low_memory_mb", DefaultLowMemoryMB)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Package:         pkg,
		CoreModule:      core,
		ExcludedModules: excluded,
		ConfigureFlags:  flags,
		LowMemoryMB:     lowMem,
	}, nil
}
