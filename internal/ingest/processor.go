package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinytelemetry/loggrowth/internal/logparse"
	"github.com/tinytelemetry/loggrowth/internal/model"
)

// Stats counts what the processor has seen so far.
type Stats struct {
	Lines      int `json:"lines" yaml:"lines"`
	Records    int `json:"records" yaml:"records"`
	Malformed  int `json:"malformed" yaml:"malformed"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Warnings   int `json:"warnings" yaml:"warnings"`
}

// Processor parses access log lines, logs field substitutions and keeps the
// deduplicated corpus in arrival order.
type Processor struct {
	parser *logparse.Parser
	logger *slog.Logger
	dedup  *Deduper

	records []*model.Record
	stats   Stats
}

// NewProcessor creates a new log processor. A nil logger discards warnings.
func NewProcessor(parser *logparse.Parser, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		parser: parser,
		logger: logger,
		dedup:  NewDeduper(),
	}
}

// ProcessResult holds the result of processing a log line.
type ProcessResult struct {
	Record    *model.Record
	Duplicate bool
}

func (p *Processor) Name() string { return ProcessorNameCLF }

// ProcessLine processes a single log line. It returns nil for malformed
// lines, which are skipped silently.
func (p *Processor) ProcessLine(line string) *ProcessResult {
	return p.ProcessEnvelope(model.IngestEnvelope{Line: line})
}

// ProcessEnvelope processes a source-tagged line.
func (p *Processor) ProcessEnvelope(env model.IngestEnvelope) *ProcessResult {
	p.stats.Lines++

	if env.Truncated {
		p.stats.Malformed++
		p.logger.Warn("skipping oversize line", "source", env.Source, "line", env.LineNo)
		return nil
	}

	record, warnings, err := p.parser.ParseLine(env.Line)
	for _, w := range warnings {
		p.stats.Warnings++
		p.logger.Warn(w.Message,
			"field", w.Field,
			"value", w.Value,
			"source", env.Source,
			"line", env.LineNo,
		)
	}
	if err != nil {
		p.stats.Malformed++
		if errors.Is(err, logparse.ErrTimestamp) {
			p.logger.Debug("skipping line", "source", env.Source, "line", env.LineNo, "error", err)
		}
		return nil
	}

	if !p.dedup.Add(record) {
		p.stats.Duplicates++
		return &ProcessResult{Record: record, Duplicate: true}
	}

	p.stats.Records++
	p.records = append(p.records, record)
	return &ProcessResult{Record: record}
}

// Records returns the deduplicated corpus in arrival order.
func (p *Processor) Records() []*model.Record {
	return p.records
}

// Stats returns the processing counters.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Load feeds every line of src through p and returns the resulting corpus.
func Load(src model.LineSource, p *Processor) ([]*model.Record, error) {
	err := src.Each(func(env model.IngestEnvelope) error {
		p.ProcessEnvelope(env)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", src.Name(), err)
	}
	return p.Records(), nil
}
