package model

import (
	"fmt"
	"strings"
)

// Metric names a per-bucket statistic usable as a plot axis.
type Metric string

const (
	MetricTime       Metric = "time"
	MetricUsers      Metric = "users"
	MetricSessions   Metric = "sessions"
	MetricTotalBytes Metric = "total_bytes"
	MetricAvgBytes   Metric = "avg_bytes"
	MetricHits       Metric = "hits"
	MetricErrors     Metric = "errors"
	MetricATBL       Metric = "atbl"
	MetricATBE       Metric = "atbe"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricTime, MetricUsers, MetricSessions, MetricTotalBytes, MetricAvgBytes,
	MetricHits, MetricErrors, MetricATBL, MetricATBE,
}

// ParseMetric resolves a metric name. Spaces and dashes are accepted in place
// of underscores; unknown names fall back to MetricErrors.
func ParseMetric(s string) Metric {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, m := range Metrics {
		if string(m) == norm {
			return m
		}
	}
	return MetricErrors
}

// Granularity is the calendar unit used to bucket records.
type Granularity int

const (
	GranularityYear Granularity = iota + 1
	GranularityMonth
	GranularityDay
	GranularityHour
	GranularityMinute
	GranularitySecond
)

var granularityNames = map[Granularity]string{
	GranularityYear:   "year",
	GranularityMonth:  "month",
	GranularityDay:    "day",
	GranularityHour:   "hour",
	GranularityMinute: "min",
	GranularitySecond: "sec",
}

var granularityAliases = map[string]Granularity{
	"year":   GranularityYear,
	"month":  GranularityMonth,
	"day":    GranularityDay,
	"hour":   GranularityHour,
	"min":    GranularityMinute,
	"minute": GranularityMinute,
	"sec":    GranularitySecond,
	"second": GranularitySecond,
}

// Seconds per unit, used to rescale time offsets.
var granularitySeconds = map[Granularity]int64{
	GranularityYear:   31556952,
	GranularityMonth:  2629800,
	GranularityDay:    86400,
	GranularityHour:   3600,
	GranularityMinute: 60,
	GranularitySecond: 1,
}

// ParseGranularity resolves a granularity name such as "hour" or "min".
func ParseGranularity(s string) (Granularity, error) {
	g, ok := granularityAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown granularity %q (want year, month, day, hour, min or sec)", s)
	}
	return g, nil
}

// String returns the CLI name of the granularity.
func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// PrefixLen is the number of date tuple fields that form the bucket key.
func (g Granularity) PrefixLen() int {
	if g < GranularityYear || g > GranularitySecond {
		return 0
	}
	return int(g)
}

// Seconds returns the length of one unit in seconds.
func (g Granularity) Seconds() int64 {
	return granularitySeconds[g]
}
