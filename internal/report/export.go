package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/loggrowth/internal/ingest"
	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/patterns"
	"github.com/tinytelemetry/loggrowth/internal/reliability"
	"github.com/tinytelemetry/loggrowth/internal/series"
)

// Report is the exported summary of one run.
type Report struct {
	ID          string                   `json:"id" yaml:"id"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Command     string                   `json:"command" yaml:"command"`
	Granularity string                   `json:"granularity" yaml:"granularity"`
	Ingest      ingest.Stats             `json:"ingest" yaml:"ingest"`
	Total       model.TotalStats         `json:"total" yaml:"total"`
	Buckets     []model.BucketStats      `json:"buckets" yaml:"buckets"`
	Histogram   []model.StatusCount      `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
	Patterns    *patterns.Summary        `json:"request_patterns,omitempty" yaml:"request_patterns,omitempty"`
	Fit         *reliability.Fit         `json:"fit,omitempty" yaml:"fit,omitempty"`
	Comparisons []reliability.Comparison `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Series      *series.Result           `json:"series,omitempty" yaml:"series,omitempty"`
	Distance    *float64                 `json:"distance,omitempty" yaml:"distance,omitempty"`
}

// New creates a report with a fresh id.
func New(command string, g model.Granularity) *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Command:     command,
		Granularity: g.String(),
	}
}

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the export format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Marshal encodes r in format f.
func (r *Report) Marshal(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatYAML:
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Export writes r to path in the format given by its extension.
func Export(path string, r *Report) error {
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := r.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
