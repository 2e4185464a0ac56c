package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/tinytelemetry/loggrowth/internal/bucket"
	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/timestamp"
)

// mkRecord builds a record at 2023-10-10 plus offset seconds.
func mkRecord(ip string, offset int64, code int, size float64) *model.Record {
	base := timestamp.Epoch(model.DateTuple{Year: 2023, Month: 10, Day: 10})
	epoch := base + offset
	return &model.Record{
		IP:     ip,
		Status: model.Status{Code: code},
		Size:   size,
		Date:   dateOf(epoch),
		Epoch:  epoch,
	}
}

func dateOf(epoch int64) model.DateTuple {
	h := epoch % 86400 / 3600
	m := epoch % 3600 / 60
	s := epoch % 60
	day := 10 + (epoch-timestamp.Epoch(model.DateTuple{Year: 2023, Month: 10, Day: 10}))/86400
	return model.DateTuple{Year: 2023, Month: 10, Day: uint32(day), Hour: uint32(h), Minute: uint32(m), Second: uint32(s)}
}

func TestSessionsScenario(t *testing.T) {
	t.Parallel()

	// Gaps 0, 3600, 10800: one breach of the 7200s threshold.
	records := []*model.Record{
		mkRecord("1.1.1.1", 0, 200, 1),
		mkRecord("1.1.1.1", 0, 404, 1),
		mkRecord("1.1.1.1", 3600, 200, 1),
		mkRecord("1.1.1.1", 14400, 200, 1),
	}
	if got := Sessions(records, model.DefaultSessionThreshold); got != 2 {
		t.Errorf("Sessions = %d, want 2", got)
	}
}

func TestSessionBound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []*model.Record
		equal   bool
	}{
		{
			name: "no breach",
			records: []*model.Record{
				mkRecord("a", 0, 200, 0), mkRecord("b", 100, 200, 0), mkRecord("a", 7200, 200, 0),
			},
			equal: true,
		},
		{
			name: "breach",
			records: []*model.Record{
				mkRecord("a", 0, 200, 0), mkRecord("b", 100, 200, 0), mkRecord("a", 7201, 200, 0),
			},
			equal: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := len(Users(tt.records))
			sessions := Sessions(tt.records, model.DefaultSessionThreshold)
			if sessions < users {
				t.Fatalf("sessions %d < users %d", sessions, users)
			}
			if (sessions == users) != tt.equal {
				t.Errorf("sessions = %d, users = %d, equal want %v", sessions, users, tt.equal)
			}
		})
	}
}

func TestMeanGap(t *testing.T) {
	t.Parallel()

	records := []*model.Record{mkRecord("a", 0, 200, 0), mkRecord("a", 10, 200, 0), mkRecord("a", 4, 200, 0)}
	// |10-0| + |4-10| = 16, divided by n = 3.
	if got := MeanGap(records); math.Abs(got-16.0/3) > 1e-12 {
		t.Errorf("MeanGap = %v, want %v", got, 16.0/3)
	}
	if got := MeanGap(nil); got != 0 {
		t.Errorf("MeanGap(nil) = %v, want 0", got)
	}
}

func TestComputeBuckets(t *testing.T) {
	t.Parallel()

	records := []*model.Record{
		mkRecord("1.1.1.1", 0, 200, 1.5),
		mkRecord("2.2.2.2", 60, 500, 0.5),
		mkRecord("1.1.1.1", 3600, 404, 2),
		mkRecord("1.1.1.1", 3610, 200, 2),
	}
	res, err := NewEngine(model.GranularityHour, 0).Compute(records)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(res.Buckets))
	}

	first := res.Buckets[0]
	if first.TimeOffset != 0 || first.Users != 2 || first.Sessions != 2 || first.LogCount != 2 || first.Errors != 1 {
		t.Errorf("first bucket = %+v", first)
	}
	if first.TotalBytes != 2 || first.AvgBytes != 1 {
		t.Errorf("first bucket bytes = %v / %v", first.TotalBytes, first.AvgBytes)
	}
	if first.ATBL != 30 || first.ATBE != 0 {
		t.Errorf("first bucket atbl/atbe = %v / %v, want 30 / 0", first.ATBL, first.ATBE)
	}

	second := res.Buckets[1]
	if second.TimeOffset != 1 || second.Errors != 1 || second.ATBL != 5 {
		t.Errorf("second bucket = %+v", second)
	}

	total := res.Total
	if total.LogCount != 4 || total.Errors != 2 || total.Users != 2 {
		t.Errorf("total = %+v", total)
	}
	if math.Abs(total.TimeOffset-3610.0/3600) > 1e-12 {
		t.Errorf("total time offset = %v", total.TimeOffset)
	}
	// Error gap 3600-60 over two error records.
	if total.ATBE != 1770 {
		t.Errorf("total atbe = %v, want 1770", total.ATBE)
	}
	if got := res.Errors(); len(got) != 2 || got[0] != 1 || got[1] != 1 {
		t.Errorf("Errors = %v", got)
	}
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()
	if _, err := NewEngine(model.GranularityDay, 0).Compute(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestMonotonicUnderCoarsening(t *testing.T) {
	t.Parallel()

	var records []*model.Record
	for i := int64(0); i < 40; i++ {
		code := 200
		if i%3 == 0 {
			code = 503
		}
		ip := []string{"a", "b", "c"}[i%3]
		records = append(records, mkRecord(ip, i*1700, code, float64(i)))
	}

	fine, err := NewEngine(model.GranularityHour, 0).Compute(records)
	if err != nil {
		t.Fatal(err)
	}
	coarse, err := NewEngine(model.GranularityDay, 0).Compute(records)
	if err != nil {
		t.Fatal(err)
	}

	byKey := make(map[string]model.BucketStats)
	for _, b := range coarse.Buckets {
		byKey[b.Key] = b
	}
	for i, b := range fine.Buckets {
		parent, ok := byKey[dayKey(fine.Grouping.Buckets()[i].Records[0].Date)]
		if !ok {
			t.Fatalf("no day bucket for %s", b.Key)
		}
		if parent.LogCount < b.LogCount || parent.TotalBytes < b.TotalBytes || parent.Errors < b.Errors || parent.Users < b.Users {
			t.Errorf("day %s smaller than hour %s", parent.Key, b.Key)
		}
	}
}

func dayKey(d model.DateTuple) string {
	return bucket.Key(d, model.GranularityDay)
}

func TestStatusHistogram(t *testing.T) {
	t.Parallel()

	records := []*model.Record{
		{Status: model.Status{Code: 404, Description: "Not Found"}},
		{Status: model.Status{Code: 200, Description: "OK"}},
		{Status: model.Status{Code: 404, Description: "Not Found"}},
		{Status: model.Status{Code: 200, Description: "OK"}},
	}
	got := StatusHistogram(records)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Code != 200 || got[0].Count != 2 || got[0].Percent != 50 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Code != 404 || got[1].Description != "Not Found" || got[1].Class != "4xx" || got[1].Severity != "WARN" {
		t.Errorf("got[1] = %+v", got[1])
	}
}
