// Package fetch resolves and downloads external source artifacts with a
// primary/fallback strategy.
package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Artifact is a downloaded file. It is owned by the step that requested it
// and lives under the run's scratch directory unless keep-temp is set.
type Artifact struct {
	SourceURL string
	LocalPath string
	SizeBytes int64
	Checksum  string // sha256, hex encoded
	Method    string // name of the method that produced it
}

// ChecksumFile computes the hex-encoded sha256 of a file.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
