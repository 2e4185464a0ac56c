package logsource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// ReaderConfig holds tunable parameters for reader based sources.
type ReaderConfig struct {
	MaxLineSize int
}

// ReaderSource reads log lines from a single reader, such as stdin.
type ReaderSource struct {
	name        string
	r           io.Reader
	maxLineSize int
}

// NewStdinSource creates a ReaderSource over os.Stdin.
func NewStdinSource(conf ...ReaderConfig) *ReaderSource {
	return NewReaderSource("stdin", os.Stdin, conf...)
}

// NewReaderSource creates a ReaderSource named name over r.
func NewReaderSource(name string, r io.Reader, conf ...ReaderConfig) *ReaderSource {
	maxLineSize := DefaultMaxLineSize
	if len(conf) > 0 && conf[0].MaxLineSize > 0 {
		maxLineSize = conf[0].MaxLineSize
	}
	return &ReaderSource{name: name, r: r, maxLineSize: maxLineSize}
}

func (s *ReaderSource) Name() string { return s.name }

// Each calls fn for every non-empty line in order. Lines longer than the
// configured maximum are passed on truncated and flagged.
func (s *ReaderSource) Each(fn func(model.IngestEnvelope) error) error {
	return scanLines(s.name, s.r, s.maxLineSize, fn)
}

func scanLines(name string, r io.Reader, maxLineSize int, fn func(model.IngestEnvelope) error) error {
	br := bufio.NewReaderSize(r, readBufferSize)

	var buf []byte
	lineNo := 0
	for {
		line, truncated, err := readLine(br, maxLineSize, buf[:0])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("logsource: %s: %w", name, err)
		}
		buf = line
		lineNo++

		text := strings.TrimRight(string(line), "\r")
		if text == "" && !truncated {
			continue
		}
		env := model.IngestEnvelope{Source: name, LineNo: lineNo, Line: text, Truncated: truncated}
		if err := fn(env); err != nil {
			return err
		}
	}
}

// readLine appends the next line of br to buf, keeping at most limit bytes.
// The rest of an oversize line is consumed and dropped.
func readLine(br *bufio.Reader, limit int, buf []byte) ([]byte, bool, error) {
	truncated := false
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return buf, truncated, nil
			}
			return buf, truncated, err
		}
		if !truncated {
			if room := limit - len(buf); len(frag) > room {
				buf = append(buf, frag[:room]...)
				truncated = true
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return buf, truncated, nil
		}
	}
}
