package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldez/orinup/internal/ports"
)

// RunLog is a per-run log file. Entries written through its Logger are
// duplicated to the console and to a timestamped JSON log file, so a failed
// run always leaves a diagnostic artifact behind.
type RunLog struct {
	id     uuid.UUID
	path   string
	file   *os.File
	logger ports.Logger
}

// NewRunLog creates the log directory if needed and opens a log file named
// after the run ID and start time.
func NewRunLog(dir string, console io.Writer, level ports.Level) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	id := uuid.New()
	name := fmt.Sprintf("run-%s-%s.log", time.Now().Format("20060102-150405"), id.String()[:8])
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	fileLogger := NewConsoleLogger(
		WithOutput(file),
		WithJSONFormat(true),
		WithLevel(ports.LevelDebug),
	)
	consoleLogger := NewConsoleLogger(
		WithOutput(console),
		WithLevel(level),
	)

	return &RunLog{
		id:   id,
		path: path,
		file: file,
		logger: NewTeeLogger(
			consoleLogger.With(ports.F("run_id", id.String())),
			fileLogger.With(ports.F("run_id", id.String())),
		),
	}, nil
}

// ID returns the unique run identifier.
func (r *RunLog) ID() uuid.UUID {
	return r.id
}

// Path returns the location of the log file on disk.
func (r *RunLog) Path() string {
	return r.path
}

// Logger returns the combined console+file logger.
func (r *RunLog) Logger() ports.Logger {
	return r.logger
}

// Close flushes and closes the underlying log file.
func (r *RunLog) Close() error {
	return r.file.Close()
}
