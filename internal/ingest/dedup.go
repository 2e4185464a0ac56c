package ingest

import "github.com/tinytelemetry/loggrowth/internal/model"

// Deduper remembers the identity keys it has seen. The zero value is not
// usable; call NewDeduper.
type Deduper struct {
	seen map[model.RecordKey]struct{}
}

// NewDeduper creates an empty deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[model.RecordKey]struct{})}
}

// Add reports whether r is the first record with its identity key.
func (d *Deduper) Add(r *model.Record) bool {
	key := r.Key()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys seen.
func (d *Deduper) Len() int { return len(d.seen) }

// Dedup returns the records with duplicates removed, keeping the first
// occurrence of each key and the input order.
func Dedup(records []*model.Record) []*model.Record {
	d := NewDeduper()
	out := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if d.Add(r) {
			out = append(out, r)
		}
	}
	return out
}
