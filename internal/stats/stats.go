// Package stats derives per-bucket and corpus-wide statistics.
package stats

import (
	"errors"
	"sort"

	"github.com/tinytelemetry/loggrowth/internal/bucket"
	"github.com/tinytelemetry/loggrowth/internal/logparse"
	"github.com/tinytelemetry/loggrowth/internal/model"
)

// ErrEmptyCorpus is returned when there are no records to summarize.
var ErrEmptyCorpus = errors.New("stats: empty corpus")

// Engine computes statistics at a fixed granularity.
type Engine struct {
	granularity      model.Granularity
	sessionThreshold int64
}

// NewEngine creates an engine. A non-positive threshold selects
// model.DefaultSessionThreshold.
func NewEngine(g model.Granularity, sessionThreshold int64) *Engine {
	if sessionThreshold <= 0 {
		sessionThreshold = model.DefaultSessionThreshold
	}
	return &Engine{granularity: g, sessionThreshold: sessionThreshold}
}

// Result is the output of Compute.
type Result struct {
	Granularity model.Granularity
	Grouping    *bucket.Grouping
	Buckets     []model.BucketStats
	Total       model.TotalStats
}

// Errors returns the per-bucket error counts in bucket order.
func (r *Result) Errors() []float64 {
	out := make([]float64, len(r.Buckets))
	for i, b := range r.Buckets {
		out[i] = float64(b.Errors)
	}
	return out
}

// Compute groups records and summarizes every bucket and the whole corpus.
func (e *Engine) Compute(records []*model.Record) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}

	minEpoch, maxEpoch := records[0].Epoch, records[0].Epoch
	for _, r := range records[1:] {
		minEpoch = min(minEpoch, r.Epoch)
		maxEpoch = max(maxEpoch, r.Epoch)
	}
	unit := float64(e.granularity.Seconds())

	grp := bucket.Group(records, e.granularity)
	res := &Result{
		Granularity: e.granularity,
		Grouping:    grp,
		Buckets:     make([]model.BucketStats, 0, grp.Len()),
	}
	for _, b := range grp.Buckets() {
		s := e.summarize(b.Records)
		s.Key = b.Key
		s.TimeOffset = float64(b.Records[0].Epoch-minEpoch) / unit
		res.Buckets = append(res.Buckets, s)
	}

	total := e.summarize(records)
	total.Key = "total"
	total.TimeOffset = float64(maxEpoch-minEpoch) / unit
	res.Total = model.TotalStats{
		BucketStats: total,
		FirstEpoch:  minEpoch,
		LastEpoch:   maxEpoch,
	}
	return res, nil
}

func (e *Engine) summarize(records []*model.Record) model.BucketStats {
	var s model.BucketStats
	var errs []*model.Record

	for _, r := range records {
		s.TotalBytes += r.Size
		if r.Status.IsError() {
			errs = append(errs, r)
		}
	}
	s.LogCount = len(records)
	s.Errors = len(errs)
	if s.LogCount > 0 {
		s.AvgBytes = s.TotalBytes / float64(s.LogCount)
	}
	s.Users = len(Users(records))
	s.Sessions = Sessions(records, e.sessionThreshold)
	s.ATBL = MeanGap(records)
	s.ATBE = MeanGap(errs)
	return s
}

// Users returns the distinct client IPs in order of first appearance.
func Users(records []*model.Record) []string {
	seen := make(map[string]struct{})
	var users []string
	for _, r := range records {
		if _, ok := seen[r.IP]; ok {
			continue
		}
		seen[r.IP] = struct{}{}
		users = append(users, r.IP)
	}
	return users
}

// Sessions counts, per user, one session plus one for every consecutive gap
// longer than threshold seconds.
func Sessions(records []*model.Record, threshold int64) int {
	last := make(map[string]int64)
	sessions := 0
	for _, r := range records {
		prev, ok := last[r.IP]
		switch {
		case !ok:
			sessions++
		case absGap(r.Epoch, prev) > threshold:
			sessions++
		}
		last[r.IP] = r.Epoch
	}
	return sessions
}

// MeanGap is the sum of absolute consecutive gaps divided by the number of
// records, or 0 for an empty slice.
func MeanGap(records []*model.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum int64
	for i := 1; i < len(records); i++ {
		sum += absGap(records[i].Epoch, records[i-1].Epoch)
	}
	return float64(sum) / float64(len(records))
}

func absGap(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// StatusHistogram counts records per status code, sorted by code.
func StatusHistogram(records []*model.Record) []model.StatusCount {
	byCode := make(map[int]*model.StatusCount)
	for _, r := range records {
		c, ok := byCode[r.Status.Code]
		if !ok {
			c = &model.StatusCount{
				Code:        r.Status.Code,
				Description: r.Status.Description,
				Class:       logparse.StatusClass(r.Status.Code),
				Severity:    logparse.SeverityForStatus(r.Status.Code),
			}
			byCode[r.Status.Code] = c
		}
		c.Count++
	}

	out := make([]model.StatusCount, 0, len(byCode))
	for _, c := range byCode {
		c.Percent = float64(c.Count) * 100 / float64(len(records))
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
