package logsource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// DirConfig holds tunable parameters for the directory source.
type DirConfig struct {
	Include     string // glob matched against file base names; empty matches all
	MaxLineSize int
}

// DirSource reads every regular file of a directory, one after the other,
// in directory listing order.
type DirSource struct {
	dir         string
	include     glob.Glob
	maxLineSize int
}

// NewDirSource creates a DirSource. The include pattern is compiled up front.
func NewDirSource(dir string, conf ...DirConfig) (*DirSource, error) {
	s := &DirSource{dir: dir, maxLineSize: DefaultMaxLineSize}
	if len(conf) > 0 {
		if conf[0].MaxLineSize > 0 {
			s.maxLineSize = conf[0].MaxLineSize
		}
		if conf[0].Include != "" {
			g, err := glob.Compile(conf[0].Include)
			if err != nil {
				return nil, fmt.Errorf("logsource: invalid include pattern %q: %w", conf[0].Include, err)
			}
			s.include = g
		}
	}
	return s, nil
}

func (s *DirSource) Name() string { return s.dir }

// Files lists the regular files that will be read.
func (s *DirSource) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if s.include != nil && !s.include.Match(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, s.dir)
	}
	return files, nil
}

// Each reads the files sequentially and calls fn for every non-empty line.
func (s *DirSource) Each(fn func(model.IngestEnvelope) error) error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := s.readFile(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *DirSource) readFile(path string, fn func(model.IngestEnvelope) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	return scanLines(filepath.Base(path), f, s.maxLineSize, fn)
}
