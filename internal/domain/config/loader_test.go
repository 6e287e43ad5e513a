package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orinup.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeConfig(t, `
target_version: "5.15.4"
jobs: 2
keep_temp: true
index_url: "https://mirror.internal/pypi"
install_root: /opt/qt5
providers:
  apt:
    packages:
      - build-essential
      - qtbase5-dev
  qtbuild:
    package: PyQt5
    excluded_modules:
      - QtWebEngineWidgets
`)

	loader := NewLoader()
	cfg, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetVersion() != "5.15.4" {
		t.Errorf("TargetVersion() = %q", cfg.TargetVersion())
	}
	if cfg.Jobs() != 2 {
		t.Errorf("Jobs() = %d", cfg.Jobs())
	}
	if !cfg.KeepTemp() {
		t.Error("KeepTemp() should be true")
	}
	if cfg.IndexURL() != "https://mirror.internal/pypi" {
		t.Errorf("IndexURL() = %q", cfg.IndexURL())
	}
	if cfg.InstallRoot() != "/opt/qt5" {
		t.Errorf("InstallRoot() = %q", cfg.InstallRoot())
	}
	if !cfg.HasSection("apt") || !cfg.HasSection("qtbuild") {
		t.Error("expected apt and qtbuild sections")
	}

	packages, err := StringsFromSection(cfg.Section("apt"), "packages")
	if err != nil {
		t.Fatalf("StringsFromSection() error = %v", err)
	}
	if len(packages) != 2 || packages[0] != "build-essential" {
		t.Errorf("packages = %v", packages)
	}
}

func TestLoader_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "target_version: \"5.15.4\"\n")

	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Jobs() != DefaultJobs {
		t.Errorf("Jobs() = %d, want default %d", cfg.Jobs(), DefaultJobs)
	}
	if cfg.ManifestPath() != DefaultManifestPath {
		t.Errorf("ManifestPath() = %q", cfg.ManifestPath())
	}
	if cfg.KeepTemp() {
		t.Error("KeepTemp() should default to false")
	}
}

func TestLoader_JobsDefaultIsSerial(t *testing.T) {
	path := writeConfig(t, "target_version: \"5.15.4\"\n")

	cfg, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// One unit of work at a time unless the operator raises it.
	if cfg.Jobs() != 1 {
		t.Errorf("Jobs() = %d, want 1", cfg.Jobs())
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !IsUserError(err, ErrCodeConfigNotFound) {
		t.Errorf("error = %v, want CONFIG_NOT_FOUND", err)
	}
}

func TestLoader_LoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := NewLoader().LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Jobs() != DefaultJobs {
		t.Errorf("Jobs() = %d, want default", cfg.Jobs())
	}
}

func TestLoader_BadYAML(t *testing.T) {
	path := writeConfig(t, "jobs: [not an int\n")

	_, err := NewLoader().Load(path)
	if !IsUserError(err, ErrCodeConfigParse) {
		t.Errorf("error = %v, want CONFIG_PARSE", err)
	}

	ue := GetUserError(err)
	if ue == nil || ue.Suggestion == "" {
		t.Error("parse errors should carry a suggestion")
	}
}

func TestLoader_InvalidTargetVersion(t *testing.T) {
	path := writeConfig(t, "target_version: \"not-a-version\"\n")

	_, err := NewLoader().Load(path)
	if !IsUserError(err, ErrCodeValidationFailed) {
		t.Errorf("error = %v, want VALIDATION_FAILED", err)
	}
}

func TestRunConfig_WithCopiesDoNotMutate(t *testing.T) {
	base := NewRunConfig()
	modified := base.WithJobs(8).WithKeepTemp(true)

	if base.Jobs() != DefaultJobs || base.KeepTemp() {
		t.Error("With* must not mutate the receiver")
	}
	if modified.Jobs() != 8 || !modified.KeepTemp() {
		t.Error("With* copy lost its values")
	}
}

func TestRunConfig_JobsClampedToOne(t *testing.T) {
	cfg := NewRunConfig().WithJobs(0)
	if cfg.Jobs() != 1 {
		t.Errorf("Jobs() = %d, want clamp to 1", cfg.Jobs())
	}
}

func TestStringsFromSection_RejectsNonList(t *testing.T) {
	section := map[string]interface{}{"packages": "oops"}
	_, err := StringsFromSection(section, "packages")
	if !IsUserError(err, ErrCodeSectionInvalid) {
		t.Errorf("error = %v, want SECTION_INVALID", err)
	}
}
