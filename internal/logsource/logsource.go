package logsource

import (
	"errors"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// LogSource is the unified interface for log inputs (directory, stdin).
type LogSource = model.LineSource

const (
	// DefaultMaxLineSize is the default maximum size (in bytes) of a single line.
	DefaultMaxLineSize = 1024 * 1024 // 1MB

	readBufferSize = 64 * 1024
)

// ErrNoFiles is returned when a directory holds no readable log files.
var ErrNoFiles = errors.New("logsource: no log files found")
