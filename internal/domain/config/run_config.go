package config

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Defaults applied when neither the config file nor the command line
// sets a value. Jobs defaults to a single unit of work at a time;
// large compiles on 8GB boards go out of memory above that unless the
// operator opts in.
const (
	DefaultJobs         = 1
	DefaultManifestPath = "~/.local/share/orinup/manifest.yaml"
	DefaultLogDir       = "~/.local/share/orinup/logs"
	DefaultInstallRoot  = "/usr/local"
)

// RunConfig is the immutable configuration for a provisioning run.
// It is assembled once at startup from the config file and command-line
// flags, then passed by value; nothing reads the process environment
// mid-run.
type RunConfig struct {
	targetVersion string
	jobs          int
	skipDeps      bool
	keepTemp      bool
	dryRun        bool
	indexURL      string
	logDir        string
	manifestPath  string
	installRoot   string
	sections      map[string]map[string]interface{}
}

// NewRunConfig creates a RunConfig with defaults applied.
func NewRunConfig() RunConfig {
	return RunConfig{
		jobs:         DefaultJobs,
		logDir:       DefaultLogDir,
		manifestPath: DefaultManifestPath,
		installRoot:  DefaultInstallRoot,
		sections:     map[string]map[string]interface{}{},
	}
}

// TargetVersion returns the artifact version to build, e.g. "5.15.4".
func (c RunConfig) TargetVersion() string { return c.targetVersion }

// Jobs returns the build parallelism level.
func (c RunConfig) Jobs() int { return c.jobs }

// SkipDeps reports whether the dependency-install phase is skipped.
func (c RunConfig) SkipDeps() bool { return c.skipDeps }

// KeepTemp reports whether scratch build directories are retained.
func (c RunConfig) KeepTemp() bool { return c.keepTemp }

// DryRun reports whether actions are planned but not executed.
func (c RunConfig) DryRun() bool { return c.dryRun }

// IndexURL returns the package index endpoint override, or "" for the
// default endpoint.
func (c RunConfig) IndexURL() string { return c.indexURL }

// LogDir returns the run log directory.
func (c RunConfig) LogDir() string { return c.logDir }

// ManifestPath returns where the manifest is persisted.
func (c RunConfig) ManifestPath() string { return c.manifestPath }

// InstallRoot returns the root of the installed artifact tree.
func (c RunConfig) InstallRoot() string { return c.installRoot }

// Section returns the raw config section for a provider, or nil if the
// config file has no such section. The returned map must be treated as
// read-only.
func (c RunConfig) Section(name string) map[string]interface{} {
	return c.sections[name]
}

// HasSection reports whether the config file declares a provider section.
func (c RunConfig) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// WithTargetVersion returns a copy with the target version set.
func (c RunConfig) WithTargetVersion(version string) RunConfig {
	c.targetVersion = version
	return c
}

// WithJobs returns a copy with the parallelism level set.
func (c RunConfig) WithJobs(jobs int) RunConfig {
	if jobs < 1 {
		jobs = 1
	}
	c.jobs = jobs
	return c
}

// WithSkipDeps returns a copy with the skip-deps flag set.
func (c RunConfig) WithSkipDeps(skip bool) RunConfig {
	c.skipDeps = skip
	return c
}

// WithKeepTemp returns a copy with the keep-temp flag set.
func (c RunConfig) WithKeepTemp(keep bool) RunConfig {
	c.keepTemp = keep
	return c
}

// WithDryRun returns a copy with the dry-run flag set.
func (c RunConfig) WithDryRun(dryRun bool) RunConfig {
	c.dryRun = dryRun
	return c
}

// WithIndexURL returns a copy with the index endpoint override set.
func (c RunConfig) WithIndexURL(url string) RunConfig {
	c.indexURL = url
	return c
}

// WithLogDir returns a copy with the log directory set.
func (c RunConfig) WithLogDir(dir string) RunConfig {
	c.logDir = dir
	return c
}

// WithManifestPath returns a copy with the manifest path set.
func (c RunConfig) WithManifestPath(path string) RunConfig {
	c.manifestPath = path
	return c
}

// WithInstallRoot returns a copy with the install root set.
func (c RunConfig) WithInstallRoot(root string) RunConfig {
	c.installRoot = root
	return c
}

// withSections returns a copy carrying the raw provider sections.
func (c RunConfig) withSections(sections map[string]map[string]interface{}) RunConfig {
	c.sections = sections
	return c
}

// Validate checks the assembled configuration.
func (c RunConfig) Validate() error {
	if c.targetVersion != "" && !semver.IsValid("v"+c.targetVersion) {
		return NewValidationFailedError("target_version",
			fmt.Sprintf("%q is not a valid version", c.targetVersion))
	}
	if c.jobs < 1 {
		return NewValidationFailedError("jobs", "must be at least 1")
	}
	if c.manifestPath == "" {
		return NewValidationFailedError("manifest_path", "must not be empty")
	}
	if c.installRoot == "" {
		return NewValidationFailedError("install_root", "must not be empty")
	}
	return nil
}
