// Package apt provides the apt provider for installing build dependencies
// on Debian/Ubuntu hosts.
package apt

import (
	"fmt"

	"github.com/mvaldez/orinup/internal/domain/config"
)

// Config represents the apt section of the configuration.
type Config struct {
	Packages []Package
}

// Package represents an apt package to install.
type Package struct {
	Name    string
	Version string // Optional: specific version
}

// FullName returns the package name with optional version specifier.
func (p Package) FullName() string {
	if p.Version != "" {
		return fmt.Sprintf("%s=%s", p.Name, p.Version)
	}
	return p.Name
}

// ParseConfig parses the apt configuration from a raw map.
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{
		Packages: make([]Package, 0),
	}

	if packages, ok := raw["packages"]; ok {
		packageList, ok := packages.([]interface{})
		if !ok {
			return nil, &config.UserError{
				Code:    config.ErrCodeSectionInvalid,
				Message: "'packages' must be a list",
				Context: "apt.packages",
			}
		}
		for _, p := range packageList {
			pkg, err := parsePackage(p)
			if err != nil {
				return nil, err
			}
			cfg.Packages = append(cfg.Packages, pkg)
		}
	}

	return cfg, nil
}

// parsePackage parses a single package from either a string or a map.
func parsePackage(raw interface{}) (Package, error) {
	switch v := raw.(type) {
	case string:
		return Package{Name: v}, nil
	case map[string]interface{}:
		pkg := Package{}
		if name, ok := v["name"].(string); ok {
			pkg.Name = name
		} else {
			return Package{}, &config.UserError{
				Code:    config.ErrCodeSectionInvalid,
				Message: "package entry must have a name",
				Context: "apt.packages",
			}
		}
		if version, ok := v["version"].(string); ok {
			pkg.Version = version
		}
		return pkg, nil
	default:
		return Package{}, &config.UserError{
			Code:    config.ErrCodeSectionInvalid,
			Message: fmt.Sprintf("package entry must be a string or object, got %T", raw),
			Context: "apt.packages",
		}
	}
}
