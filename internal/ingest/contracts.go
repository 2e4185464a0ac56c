package ingest

import "github.com/tinytelemetry/loggrowth/internal/model"

const (
	// ProcessorNameCLF is the single processor implementation name.
	ProcessorNameCLF = "clf"
)

// EnvelopeProcessor consumes source-tagged ingest lines and emits canonical records.
type EnvelopeProcessor interface {
	Name() string
	ProcessEnvelope(model.IngestEnvelope) *ProcessResult
}

var _ EnvelopeProcessor = (*Processor)(nil)
