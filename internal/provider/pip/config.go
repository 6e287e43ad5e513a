// Package pip provides the pip provider for Python package installs and
// removals around the source build.
package pip

import (
	"github.com/mvaldez/orinup/internal/domain/config"
)

// Config represents the pip section of the configuration.
type Config struct {
	// Packages are installed before the build (build-time Python deps,
	// e.g. sip).
	Packages []string
	// Remove are uninstalled before the build. A prebuilt wheel of the
	// package being built from source would shadow the local build, so
	// it has to go first.
	Remove []string
}

// ParseConfig parses the pip configuration from a raw map.
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{
		Packages: make([]string, 0),
		Remove:   make([]string, 0),
	}

	var err error
	if cfg.Packages, err = config.StringsFromSection(raw, "packages"); err != nil {
		return nil, err
	}
	if cfg.Remove, err = config.StringsFromSection(raw, "remove"); err != nil {
		return nil, err
	}

	return cfg, nil
}
