package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the serialization form of orinup.yaml. Provider
// sections stay raw maps; each provider parses its own section.
type fileConfig struct {
	TargetVersion string `yaml:"target_version"`
	Jobs          int    `yaml:"jobs"`
	SkipDeps      bool   `yaml:"skip_deps"`
	KeepTemp      bool   `yaml:"keep_temp"`
	IndexURL      string `yaml:"index_url"`
	LogDir        string `yaml:"log_dir"`
	ManifestPath  string `yaml:"manifest_path"`
	InstallRoot   string `yaml:"install_root"`

	Providers map[string]map[string]interface{} `yaml:"providers"`
}

// Loader loads run configuration from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads orinup.yaml from the given path and returns a RunConfig
// with defaults applied for unset fields. Returns a UserError with
// code CONFIG_NOT_FOUND or CONFIG_PARSE on failure.
func (l *Loader) Load(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, NewConfigNotFoundError(path)
		}
		return RunConfig{}, err
	}
	return l.parse(path, data)
}

// LoadOrDefault reads orinup.yaml if it exists, otherwise returns the
// default RunConfig. Used when no --config flag is given.
func (l *Loader) LoadOrDefault(path string) (RunConfig, error) {
	cfg, err := l.Load(path)
	if IsUserError(err, ErrCodeConfigNotFound) {
		return NewRunConfig(), nil
	}
	return cfg, err
}

// Parse builds a RunConfig from raw YAML bytes.
func (l *Loader) Parse(data []byte) (RunConfig, error) {
	return l.parse("<inline>", data)
}

func (l *Loader) parse(path string, data []byte) (RunConfig, error) {
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RunConfig{}, NewConfigParseError(path, err)
	}

	cfg := NewRunConfig()
	if file.TargetVersion != "" {
		cfg = cfg.WithTargetVersion(file.TargetVersion)
	}
	if file.Jobs > 0 {
		cfg = cfg.WithJobs(file.Jobs)
	}
	cfg = cfg.WithSkipDeps(file.SkipDeps).WithKeepTemp(file.KeepTemp)
	if file.IndexURL != "" {
		cfg = cfg.WithIndexURL(file.IndexURL)
	}
	if file.LogDir != "" {
		cfg = cfg.WithLogDir(file.LogDir)
	}
	if file.ManifestPath != "" {
		cfg = cfg.WithManifestPath(file.ManifestPath)
	}
	if file.InstallRoot != "" {
		cfg = cfg.WithInstallRoot(file.InstallRoot)
	}
	if file.Providers != nil {
		cfg = cfg.withSections(file.Providers)
	}

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}
