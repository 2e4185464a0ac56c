package model

// LineSource yields raw log lines in a deterministic order.
// Each stops at the first error returned by fn.
type LineSource interface {
	Name() string
	Each(fn func(IngestEnvelope) error) error
}

// StatusLookup resolves a numeric HTTP status to its description.
type StatusLookup interface {
	Lookup(code int) (string, bool)
}
