// Package patterns mines request line templates from the corpus with Drain.
package patterns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jaeyo/go-drain3/pkg/drain3"

	"github.com/tinytelemetry/loggrowth/internal/logparse"
	"github.com/tinytelemetry/loggrowth/internal/model"
)

const (
	treeDepth           = 5
	similarityThreshold = 0.4
	maxClusters         = 1000

	// DefaultTop is the number of templates shown and exported.
	DefaultTop = 5
)

// Pattern is one mined template and how many requests it matched.
type Pattern struct {
	Template   string  `json:"template" yaml:"template"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Summary is the exported view of a mining run.
type Summary struct {
	Unique   int       `json:"unique" yaml:"unique"`
	Analyzed int       `json:"analyzed" yaml:"analyzed"`
	Top      []Pattern `json:"top" yaml:"top"`
}

// Miner groups request lines into templates.
type Miner struct {
	drain *drain3.Drain
	total int
}

// NewMiner creates an empty miner.
func NewMiner() (*Miner, error) {
	d, err := drain3.NewDrain(
		drain3.WithDepth(treeDepth),
		drain3.WithSimTh(similarityThreshold),
		drain3.WithMaxCluster(maxClusters),
	)
	if err != nil {
		return nil, fmt.Errorf("patterns: %w", err)
	}
	return &Miner{drain: d}, nil
}

// Mine feeds the request line of every record to a new miner.
func Mine(records []*model.Record) (*Miner, error) {
	m, err := NewMiner()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := m.Add(r.Request); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add mines one request field. Blank requests are skipped.
func (m *Miner) Add(request string) error {
	content := Tokenize(request)
	if content == "" {
		return nil
	}
	if _, _, err := m.drain.AddLogMessage(content); err != nil {
		return fmt.Errorf("patterns: mining %q: %w", content, err)
	}
	m.total++
	return nil
}

// Tokenize turns a masked, quoted request field into space separated tokens.
// The path is split into one token per segment so that ids in a segment can
// become wildcards without swallowing the rest of the path.
func Tokenize(request string) string {
	request = strings.Trim(request, `"`)
	request = strings.ReplaceAll(request, string(logparse.MaskRune), " ")
	fields := strings.Fields(request)
	if len(fields) != 3 {
		return strings.Join(fields, " ")
	}

	tokens := []string{fields[0]}
	path := strings.TrimPrefix(fields[1], "/")
	if path == "" {
		tokens = append(tokens, "/")
	} else {
		for _, seg := range strings.Split(path, "/") {
			tokens = append(tokens, "/"+seg)
		}
	}
	tokens = append(tokens, fields[2])
	return strings.Join(tokens, " ")
}

// Stats returns the number of templates and of requests mined.
func (m *Miner) Stats() (patterns, total int) {
	return len(m.drain.GetClusters()), m.total
}

// Top returns up to n templates ordered by count, most frequent first.
func (m *Miner) Top(n int) []Pattern {
	clusters := m.drain.GetClusters()
	out := make([]Pattern, 0, len(clusters))
	for _, c := range clusters {
		p := Pattern{Template: c.GetTemplate(), Count: int(c.Size)}
		if m.total > 0 {
			p.Percentage = float64(p.Count) / float64(m.total) * 100
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Template < out[j].Template
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary returns the counts and the n most frequent templates.
func (m *Miner) Summary(n int) Summary {
	unique, total := m.Stats()
	return Summary{Unique: unique, Analyzed: total, Top: m.Top(n)}
}
