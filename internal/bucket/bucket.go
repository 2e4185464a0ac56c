// Package bucket groups records into calendar buckets.
package bucket

import (
	"strconv"
	"strings"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// Bucket is an ordered run of records sharing a truncated date prefix.
type Bucket struct {
	Key     string
	Records []*model.Record
}

// Grouping holds buckets in order of their first record.
type Grouping struct {
	granularity model.Granularity
	buckets     []*Bucket
	index       map[string]int
}

// Key returns the pipe-joined decimal prefix of d for granularity g.
func Key(d model.DateTuple, g model.Granularity) string {
	fields := d.Fields()
	n := g.PrefixLen()

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatUint(uint64(fields[i]), 10))
	}
	return b.String()
}

// Group partitions records by granularity. Bucket order follows the first
// occurrence of each key and record order inside a bucket follows input order.
func Group(records []*model.Record, g model.Granularity) *Grouping {
	grp := &Grouping{
		granularity: g,
		index:       make(map[string]int),
	}
	for _, r := range records {
		grp.add(r)
	}
	return grp
}

func (g *Grouping) add(r *model.Record) {
	key := Key(r.Date, g.granularity)
	i, ok := g.index[key]
	if !ok {
		i = len(g.buckets)
		g.index[key] = i
		g.buckets = append(g.buckets, &Bucket{Key: key})
	}
	g.buckets[i].Records = append(g.buckets[i].Records, r)
}

// Len returns the number of buckets.
func (g *Grouping) Len() int { return len(g.buckets) }

// Buckets returns the buckets in order.
func (g *Grouping) Buckets() []*Bucket { return g.buckets }

// Get returns the bucket for key.
func (g *Grouping) Get(key string) (*Bucket, bool) {
	i, ok := g.index[key]
	if !ok {
		return nil, false
	}
	return g.buckets[i], true
}
