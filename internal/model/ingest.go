package model

// IngestEnvelope carries one raw log line with source metadata.
// It is the transport contract between log sources and the ingest processor.
type IngestEnvelope struct {
	Source string // file name, or "stdin"
	LineNo int
	Line   string
	// Truncated is set when the line exceeded the source's size limit.
	// Line then holds only its leading bytes.
	Truncated bool
}
