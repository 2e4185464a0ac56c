package model

// Status is an HTTP status code and its description from the status table.
type Status struct {
	Code        int    `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// IsError reports whether the status counts as an error (4xx and 5xx).
func (s Status) IsError() bool {
	return s.Code >= 400
}

// DateTuple is the calendar breakdown of a record timestamp.
type DateTuple struct {
	Year   uint32
	Month  uint32
	Day    uint32
	Hour   uint32
	Minute uint32
	Second uint32
}

// Fields returns the tuple in canonical (year, month, day, hour, minute, second) order.
func (d DateTuple) Fields() [6]uint32 {
	return [6]uint32{d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second}
}

// Record represents a single parsed access log line.
// Records are immutable once deduplicated.
type Record struct {
	IP       string
	ClientID string
	UserID   string
	TimeRaw  string // bracketed timestamp with whitespace masked to '%'
	Request  string
	Status   Status
	Size     float64 // kilobytes
	Date     DateTuple
	Epoch    int64 // seconds since the Unix epoch, wall clock read as UTC
}

// RecordKey is the identity used for deduplication. The request line is
// deliberately not part of it.
type RecordKey struct {
	IP         string
	TimeRaw    string
	ClientID   string
	UserID     string
	StatusCode int
}

// Key returns the deduplication identity of the record.
func (r *Record) Key() RecordKey {
	return RecordKey{
		IP:         r.IP,
		TimeRaw:    r.TimeRaw,
		ClientID:   r.ClientID,
		UserID:     r.UserID,
		StatusCode: r.Status.Code,
	}
}

// BucketStats holds the derived statistics of one time bucket.
type BucketStats struct {
	Key        string  `json:"key" yaml:"key"`
	TimeOffset float64 `json:"time_offset" yaml:"time_offset"`
	Users      int     `json:"users" yaml:"users"`
	Sessions   int     `json:"sessions" yaml:"sessions"`
	TotalBytes float64 `json:"total_bytes" yaml:"total_bytes"`
	AvgBytes   float64 `json:"avg_bytes" yaml:"avg_bytes"`
	LogCount   int     `json:"log_count" yaml:"log_count"`
	Errors     int     `json:"errors" yaml:"errors"`
	ATBL       float64 `json:"atbl" yaml:"atbl"` // mean gap between logs, seconds
	ATBE       float64 `json:"atbe" yaml:"atbe"` // mean gap between error logs, seconds
}

// Value returns the statistic selected by metric. MetricTime maps to the
// time offset and unknown metrics fall back to the error count.
func (s BucketStats) Value(m Metric) float64 {
	switch m {
	case MetricTime:
		return s.TimeOffset
	case MetricUsers:
		return float64(s.Users)
	case MetricSessions:
		return float64(s.Sessions)
	case MetricTotalBytes:
		return s.TotalBytes
	case MetricAvgBytes:
		return s.AvgBytes
	case MetricHits:
		return float64(s.LogCount)
	case MetricATBL:
		return s.ATBL
	case MetricATBE:
		return s.ATBE
	default:
		return float64(s.Errors)
	}
}

// TotalStats is BucketStats computed over the whole corpus. TimeOffset holds
// the total span expressed in the granularity unit.
type TotalStats struct {
	BucketStats `yaml:",inline"`
	FirstEpoch  int64 `json:"first_epoch" yaml:"first_epoch"`
	LastEpoch   int64 `json:"last_epoch" yaml:"last_epoch"`
}

// StatusCount is one row of the status code histogram.
type StatusCount struct {
	Code        int     `json:"code" yaml:"code"`
	Description string  `json:"description" yaml:"description"`
	Class       string  `json:"class" yaml:"class"`       // 2xx, 4xx, ...
	Severity    string  `json:"severity" yaml:"severity"` // INFO, WARN or ERROR
	Count       int     `json:"count" yaml:"count"`
	Percent     float64 `json:"percent" yaml:"percent"`
}

// Point is one (x, y) sample of a plotted series.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Series is an ordered list of points.
type Series []Point

// Last returns the final point and false when the series is empty.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// MaxY returns the largest y value, or 0 for an empty series.
func (s Series) MaxY() float64 {
	maxY := 0.0
	for i, p := range s {
		if i == 0 || p.Y > maxY {
			maxY = p.Y
		}
	}
	return maxY
}

// MeanAbsDistance is the mean absolute difference of y values over the
// shorter of the two series. It is 0 when either series is empty.
func (s Series) MeanAbsDistance(o Series) float64 {
	n := min(len(s), len(o))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := s[i].Y - o[i].Y
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(n)
}
