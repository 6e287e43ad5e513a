// Package validation provides input validation utilities to prevent security
// vulnerabilities such as command injection, path traversal, and other
// input-based attacks.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput          = errors.New("input cannot be empty")
	ErrInvalidPackageName  = errors.New("invalid package name")
	ErrInvalidPipPackage   = errors.New("invalid pip package name")
	ErrInvalidPath         = errors.New("invalid path")
	ErrPathTraversal       = errors.New("path traversal detected")
	ErrCommandInjection    = errors.New("potential command injection detected")
	ErrInvalidURL          = errors.New("invalid URL")
	ErrInvalidSchema       = errors.New("invalid gsettings schema")
	ErrInvalidSchemaKey    = errors.New("invalid gsettings key")
	ErrInvalidDesktopEntry = errors.New("invalid desktop entry name")
	ErrInvalidFontName     = errors.New("invalid font name")
)

// Compiled regex patterns for validation (compiled once for performance).
var (
	// packageNameRegex matches valid apt package names: alphanumeric,
	// hyphens, underscores, dots, plus. Examples: "git", "qtbase5-dev", "g++"
	packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// pipPackageRegex matches valid pip package names with optional version
	// specifier. Examples: "sip", "PyQt5==5.15.4", "numpy~=1.24.0"
	pipPackageRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*([=<>!~]=?[a-zA-Z0-9._*-]+)?$`)

	// urlRegex matches valid HTTP/HTTPS URLs for index endpoint overrides.
	urlRegex = regexp.MustCompile(`^https?://[a-zA-Z0-9][a-zA-Z0-9.:_/-]*$`)

	// schemaRegex matches gsettings schema IDs in reverse-DNS form.
	// Examples: "org.gnome.shell", "org.gnome.desktop.interface"
	schemaRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*(\.[a-zA-Z][a-zA-Z0-9-]*)+$`)

	// schemaKeyRegex matches gsettings key names.
	// Examples: "favorite-apps", "monospace-font-name"
	schemaKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	// desktopEntryRegex matches .desktop launcher file names.
	// Examples: "firefox.desktop", "org.qt.designer.desktop"
	desktopEntryRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*\.desktop$`)

	// fontNameRegex matches font family names with optional size suffix.
	// Examples: "DejaVu Sans Mono 11", "Ubuntu Mono"
	fontNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePackageName validates an apt package name.
// Returns an error if the name is empty or contains invalid characters.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidatePipPackage validates a pip package name with optional version
// specifier. Examples: "sip", "PyQt5==5.15.4", "numpy~=1.24.0"
func ValidatePipPackage(pkg string) error {
	if pkg == "" {
		return ErrEmptyInput
	}

	if len(pkg) > 256 {
		return fmt.Errorf("%w: package name too long", ErrInvalidPipPackage)
	}

	if !pipPackageRegex.MatchString(pkg) {
		return fmt.Errorf("%w: %q is not a valid pip package name", ErrInvalidPipPackage, pkg)
	}

	if containsShellMeta(pkg) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, pkg)
	}

	return nil
}

// ValidateURL validates an HTTP/HTTPS endpoint override.
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return ErrEmptyInput
	}

	if len(urlStr) > 2048 {
		return fmt.Errorf("%w: URL too long", ErrInvalidURL)
	}

	if !urlRegex.MatchString(urlStr) {
		return fmt.Errorf("%w: %q must be a valid HTTP/HTTPS URL", ErrInvalidURL, urlStr)
	}

	if containsShellMeta(urlStr) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, urlStr)
	}

	return nil
}

// ValidateSchema validates a gsettings schema ID (reverse-DNS form).
func ValidateSchema(schema string) error {
	if schema == "" {
		return ErrEmptyInput
	}

	if len(schema) > 256 {
		return fmt.Errorf("%w: schema ID too long", ErrInvalidSchema)
	}

	if !schemaRegex.MatchString(schema) {
		return fmt.Errorf("%w: %q must be a reverse-DNS schema ID", ErrInvalidSchema, schema)
	}

	return nil
}

// ValidateSchemaKey validates a gsettings key name.
func ValidateSchemaKey(key string) error {
	if key == "" {
		return ErrEmptyInput
	}

	if len(key) > 128 {
		return fmt.Errorf("%w: key too long", ErrInvalidSchemaKey)
	}

	if !schemaKeyRegex.MatchString(key) {
		return fmt.Errorf("%w: %q must be lowercase with hyphens", ErrInvalidSchemaKey, key)
	}

	return nil
}

// ValidateDesktopEntry validates a .desktop launcher file name.
func ValidateDesktopEntry(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: entry name too long", ErrInvalidDesktopEntry)
	}

	if !desktopEntryRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must end in .desktop", ErrInvalidDesktopEntry, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidateFontName validates a font family name with optional size suffix.
func ValidateFontName(font string) error {
	if font == "" {
		return ErrEmptyInput
	}

	if len(font) > 128 {
		return fmt.Errorf("%w: font name too long", ErrInvalidFontName)
	}

	if !fontNameRegex.MatchString(font) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidFontName, font)
	}

	return nil
}

// ValidatePath validates a file path and prevents path traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// ValidatePathWithBase validates a path is within the expected base directory.
func ValidatePathWithBase(path, basePath string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	cleanPath := filepath.Clean(path)
	cleanBase := filepath.Clean(basePath)

	if !strings.HasPrefix(cleanPath, cleanBase) {
		return fmt.Errorf("%w: path %q escapes base directory %q", ErrPathTraversal, path, basePath)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)

	segments := strings.Split(normalized, string(filepath.Separator))
	for _, seg := range segments {
		if seg == ".." {
			return true
		}
	}

	if strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E") {
		return true
	}

	return false
}
