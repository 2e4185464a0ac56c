// Package series turns bucket statistics into plottable empirical and model
// series.
package series

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/reliability"
)

// Mode selects how bucket statistics are projected onto the plot.
type Mode string

const (
	ModeBy              Mode = "by"
	ModeCumulative      Mode = "cumulative"
	ModeRatio           Mode = "ratio"
	ModeCumulativeRatio Mode = "cumulative_ratio"
)

// Modes lists every display mode.
var Modes = []Mode{ModeBy, ModeCumulative, ModeRatio, ModeCumulativeRatio}

// ParseMode resolves a mode name. Dashes are accepted in place of underscores.
func ParseMode(s string) (Mode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, m := range Modes {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Request describes one plot.
type Request struct {
	Mode Mode
	X    model.Metric // ignored by ModeCumulativeRatio, which always uses time
	Y    model.Metric
}

// Result is an assembled plot: the empirical series, an optional model
// series and axis labels.
type Result struct {
	Mode      Mode         `json:"mode" yaml:"mode"`
	XLabel    string       `json:"x_label" yaml:"x_label"`
	YLabel    string       `json:"y_label" yaml:"y_label"`
	Empirical model.Series `json:"empirical" yaml:"empirical"`
	Model     model.Series `json:"model,omitempty" yaml:"model,omitempty"`
}

// HasModel reports whether a model series is attached.
func (r *Result) HasModel() bool { return len(r.Model) > 0 }

// Distance is the mean absolute distance between the empirical and model
// series, or 0 without a model.
func (r *Result) Distance() float64 {
	return MeanAbsDistance(r.Empirical, r.Model)
}

// MeanAbsDistance is the mean absolute y difference over the shorter series.
func MeanAbsDistance(e, m model.Series) float64 {
	return e.MeanAbsDistance(m)
}

// Assembler builds series from bucket statistics and an optional fit.
type Assembler struct {
	buckets     []model.BucketStats
	granularity model.Granularity
	fit         *reliability.Fit
}

// NewAssembler creates an assembler. fit may be nil when no model applies.
func NewAssembler(buckets []model.BucketStats, g model.Granularity, fit *reliability.Fit) *Assembler {
	return &Assembler{buckets: buckets, granularity: g, fit: fit}
}

// Assemble dispatches on req.Mode.
func (a *Assembler) Assemble(req Request) (*Result, error) {
	switch req.Mode {
	case ModeBy:
		return a.By(req.X, req.Y), nil
	case ModeCumulative:
		return a.Cumulative(req.X, req.Y), nil
	case ModeRatio:
		return a.Ratio(req.X, req.Y), nil
	case ModeCumulativeRatio:
		return a.CumulativeRatio(req.Y), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}
}

func (a *Assembler) label(m model.Metric) string {
	if m == model.MetricTime {
		return a.granularity.String()
	}
	return string(m)
}

// By plots one metric against another per bucket. With x = time the x value
// is the bucket index and the model rate curve is attached for errors.
func (a *Assembler) By(x, y model.Metric) *Result {
	res := &Result{Mode: ModeBy, XLabel: a.label(x), YLabel: a.label(y)}
	res.Empirical = make(model.Series, len(a.buckets))
	for i, b := range a.buckets {
		p := model.Point{X: b.Value(x), Y: b.Value(y)}
		if x == model.MetricTime {
			p.X = float64(i)
		}
		res.Empirical[i] = p
	}

	if x != model.MetricTime {
		sort.SliceStable(res.Empirical, func(i, j int) bool {
			return res.Empirical[i].X < res.Empirical[j].X
		})
		return res
	}
	if y == model.MetricErrors && a.fit != nil {
		res.Model = a.fit.RateSeries()
	}
	return res
}

// Cumulative plots running totals. With x = time each point pairs the bucket
// time offset with the y total accumulated before the bucket; otherwise both
// axes are inclusive running totals.
func (a *Assembler) Cumulative(x, y model.Metric) *Result {
	res := &Result{Mode: ModeCumulative, XLabel: a.label(x), YLabel: a.label(y)}
	res.Empirical = make(model.Series, len(a.buckets))

	var sumX, sumY float64
	for i, b := range a.buckets {
		vy := b.Value(y)
		if x == model.MetricTime {
			res.Empirical[i] = model.Point{X: b.TimeOffset, Y: sumY}
			sumY += vy
			continue
		}
		sumX += b.Value(x)
		sumY += vy
		res.Empirical[i] = model.Point{X: sumX, Y: sumY}
	}

	if y == model.MetricErrors && a.fit != nil {
		res.Model = alignX(a.fit.CumulativeSeries(), res.Empirical)
	}
	return res
}

// Ratio plots the error count per unit of y for each bucket.
func (a *Assembler) Ratio(x, y model.Metric) *Result {
	res := &Result{Mode: ModeRatio, XLabel: a.label(x), YLabel: "errors/" + string(y)}
	res.Empirical = make(model.Series, len(a.buckets))
	for i, b := range a.buckets {
		res.Empirical[i] = model.Point{X: b.Value(x), Y: ratio(float64(b.Errors), b.Value(y))}
	}
	return res
}

// CumulativeRatio plots errors seen before each bucket divided by the
// bucket's y metric, against the time offset.
func (a *Assembler) CumulativeRatio(y model.Metric) *Result {
	res := &Result{
		Mode:   ModeCumulativeRatio,
		XLabel: a.label(model.MetricTime),
		YLabel: "errors/" + string(y),
	}
	res.Empirical = make(model.Series, len(a.buckets))
	denoms := make([]float64, len(a.buckets))

	sumErrors := 0.0
	for i, b := range a.buckets {
		denoms[i] = b.Value(y)
		res.Empirical[i] = model.Point{X: b.TimeOffset, Y: ratio(sumErrors, denoms[i])}
		sumErrors += float64(b.Errors)
	}

	if a.fit != nil {
		curve := a.fit.CumulativeSeries()
		n := min(len(curve), len(a.buckets))
		res.Model = make(model.Series, n)
		for i := 0; i < n; i++ {
			res.Model[i] = model.Point{X: a.buckets[i].TimeOffset, Y: ratio(curve[i].Y, denoms[i])}
		}
	}
	return res
}

// alignX copies the x coordinates of ref onto s.
func alignX(s, ref model.Series) model.Series {
	n := min(len(s), len(ref))
	out := make(model.Series, n)
	for i := 0; i < n; i++ {
		out[i] = model.Point{X: ref[i].X, Y: s[i].Y}
	}
	return out
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
