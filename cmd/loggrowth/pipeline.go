package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/loggrowth/internal/ingest"
	"github.com/tinytelemetry/loggrowth/internal/logparse"
	"github.com/tinytelemetry/loggrowth/internal/logsource"
	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/plot"
	"github.com/tinytelemetry/loggrowth/internal/reliability"
	"github.com/tinytelemetry/loggrowth/internal/report"
	"github.com/tinytelemetry/loggrowth/internal/series"
	"github.com/tinytelemetry/loggrowth/internal/stats"
	"github.com/tinytelemetry/loggrowth/internal/statuscode"
)

const stdinDir = "-"

// corpus is the deduplicated record set and its statistics at one granularity.
type corpus struct {
	records   []*model.Record
	ingest    ingest.Stats
	result    *stats.Result
	histogram []model.StatusCount
}

func (a *app) statusTable() (*statuscode.Table, error) {
	if a.cfg.Codes == "" {
		return statuscode.Default(), nil
	}
	return statuscode.Load(a.cfg.Codes)
}

func (a *app) source() (model.LineSource, error) {
	if a.cfg.LogDir == stdinDir {
		return logsource.NewStdinSource(), nil
	}
	return logsource.NewDirSource(a.cfg.LogDir, logsource.DirConfig{Include: a.cfg.Include})
}

// loadCorpus reads, parses, deduplicates and summarizes the configured logs.
func (a *app) loadCorpus(g model.Granularity) (*corpus, error) {
	codes, err := a.statusTable()
	if err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}

	proc := ingest.NewProcessor(logparse.NewParser(codes), a.logger)
	records, err := ingest.Load(src, proc)
	if err != nil {
		return nil, err
	}
	ist := proc.Stats()
	a.logger.Info("logs loaded",
		"source", src.Name(),
		"lines", ist.Lines,
		"records", ist.Records,
		"duplicates", ist.Duplicates,
		"malformed", ist.Malformed,
	)

	res, err := stats.NewEngine(g, a.cfg.SessionThreshold).Compute(records)
	if err != nil {
		return nil, err
	}
	return &corpus{
		records:   records,
		ingest:    ist,
		result:    res,
		histogram: stats.StatusHistogram(records),
	}, nil
}

func (c *corpus) newReport(command string, g model.Granularity) *report.Report {
	r := report.New(command, g)
	r.Ingest = c.ingest
	r.Total = c.result.Total
	r.Buckets = c.result.Buckets
	r.Histogram = c.histogram
	return r
}

// observedCumulative is the inclusive running error total per bucket index.
func (c *corpus) observedCumulative() model.Series {
	out := make(model.Series, len(c.result.Buckets))
	total := 0.0
	for i, b := range c.result.Buckets {
		total += float64(b.Errors)
		out[i] = model.Point{X: float64(i), Y: total}
	}
	return out
}

// fit runs the configured model. It returns a nil fit without error when
// the corpus has no errors.
func (a *app) fit(c *corpus) (*reliability.Fit, error) {
	variant, err := reliability.ParseVariant(a.cfg.Model)
	if err != nil {
		return nil, err
	}
	fit, err := reliability.FitBuckets(variant, c.result.Buckets)
	switch {
	case errors.Is(err, reliability.ErrNoErrors):
		a.logger.Info("no errors in corpus, skipping model")
		return nil, nil
	case err != nil:
		return nil, err
	}
	a.logger.Debug("model fitted", "model", variant, "a", fit.A, "b", fit.B, "attempts", fit.Attempts)
	return fit, nil
}

// wantsFit reports whether req can carry a model series.
func wantsFit(req series.Request) bool {
	switch req.Mode {
	case series.ModeBy:
		return req.X == model.MetricTime && req.Y == model.MetricErrors
	case series.ModeCumulative:
		return req.Y == model.MetricErrors
	case series.ModeCumulativeRatio:
		return true
	default:
		return false
	}
}

func (a *app) runPlot(cmd *cobra.Command, req series.Request, g model.Granularity) error {
	c, err := a.loadCorpus(g)
	if err != nil {
		return err
	}

	var fit *reliability.Fit
	if wantsFit(req) {
		if fit, err = a.fit(c); err != nil {
			return err
		}
	}

	res, err := series.NewAssembler(c.result.Buckets, g, fit).Assemble(req)
	if err != nil {
		return err
	}

	if err := plot.Save(a.cfg.Output, res, plot.Options{Width: a.cfg.Width, Height: a.cfg.Height}); err != nil {
		return err
	}
	a.printer.Success("plot written to %s", a.cfg.Output)

	if req.Mode == series.ModeCumulative {
		if res.HasModel() {
			a.printer.Println(fmt.Sprintf("Avg Distance of points: %v", res.Distance()))
		} else {
			a.printer.Warn("no model fitted for %s, distance not computed", res.YLabel)
		}
	}
	if a.cfg.Preview {
		a.printer.Println(report.Preview(res.YLabel, res.Empirical, res.Model, a.cfg.PreviewWidth, a.cfg.PreviewHeight))
	}

	r := c.newReport(cmd.Name(), g)
	r.Fit = fit
	r.Series = res
	if res.HasModel() {
		d := res.Distance()
		r.Distance = &d
	}
	return a.export(r)
}

func (a *app) export(r *report.Report) error {
	if a.cfg.Export == "" {
		return nil
	}
	if err := report.Export(a.cfg.Export, r); err != nil {
		return err
	}
	a.printer.Success("report %s written to %s", r.ID, a.cfg.Export)
	return nil
}
