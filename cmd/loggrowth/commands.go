package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/patterns"
	"github.com/tinytelemetry/loggrowth/internal/reliability"
	"github.com/tinytelemetry/loggrowth/internal/report"
	"github.com/tinytelemetry/loggrowth/internal/series"
)

type plotMode struct {
	mode  series.Mode
	use   string
	short string
	// withX is false for modes whose x axis is always time.
	withX bool
}

var (
	modeBy = plotMode{
		mode:  series.ModeBy,
		use:   "by <x_axis> <y_axis> <time>",
		short: "Plot one bucket metric against another",
		withX: true,
	}
	modeCumulative = plotMode{
		mode:  series.ModeCumulative,
		use:   "cumulative <x_axis> <y_axis> <time>",
		short: "Plot running totals against the fitted cumulative error curve",
		withX: true,
	}
	modeRatio = plotMode{
		mode:  series.ModeRatio,
		use:   "ratio <x_axis> <y_axis> <time>",
		short: "Plot errors per unit of a bucket metric",
		withX: true,
	}
	modeCumulativeRatio = plotMode{
		mode:  series.ModeCumulativeRatio,
		use:   "cumulative_ratio <y_axis> <time>",
		short: "Plot errors seen so far per unit of a bucket metric over time",
	}
)

func metricList() string {
	names := make([]string, len(model.Metrics))
	for i, m := range model.Metrics {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func newPlotCmd(a *app, pm plotMode) *cobra.Command {
	nargs := 2
	if pm.withX {
		nargs = 3
	}
	return &cobra.Command{
		Use:   pm.use,
		Short: pm.short,
		Long: pm.short + ".\n\nAxes: " + metricList() +
			" (unknown names fall back to errors).\nTime: year, month, day, hour, min, sec.",
		Args: cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := series.Request{Mode: pm.mode, X: model.MetricTime}
			if pm.withX {
				req.X = model.ParseMetric(args[0])
				args = args[1:]
			}
			req.Y = model.ParseMetric(args[0])

			g, err := model.ParseGranularity(args[1])
			if err != nil {
				return err
			}
			return a.runPlot(cmd, req, g)
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <time>",
		Short: "Print corpus totals, the status code histogram and per-bucket statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := model.ParseGranularity(args[0])
			if err != nil {
				return err
			}
			c, err := a.loadCorpus(g)
			if err != nil {
				return err
			}

			miner, err := patterns.Mine(c.records)
			if err != nil {
				return err
			}
			summary := miner.Summary(patterns.DefaultTop)

			a.printer.Info("%s records in %d %s buckets",
				humanize.Comma(int64(len(c.records))), len(c.result.Buckets), g)
			a.printer.Println(report.RenderSection("Totals", report.TotalItems(c.result.Total, g), report.DefaultWidth))
			a.printer.Println(report.RenderSection("Status Codes", report.HistogramItems(c.histogram), report.DefaultWidth))
			if items := report.PatternItems(summary); len(items) > 0 {
				a.printer.Println(report.RenderSection("Request Patterns", items, report.DefaultWidth))
			}
			a.printer.Println(report.BucketTable(c.result.Buckets))

			r := c.newReport("stats", g)
			r.Patterns = &summary
			return a.export(r)
		},
	}
}

func newFitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fit <time>",
		Short: "Fit the configured reliability model to the per-bucket error counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := model.ParseGranularity(args[0])
			if err != nil {
				return err
			}
			c, err := a.loadCorpus(g)
			if err != nil {
				return err
			}
			fit, err := a.fit(c)
			if err != nil {
				return err
			}
			if fit == nil {
				a.printer.Warn("no errors in corpus, nothing to fit")
				return nil
			}

			a.printer.Println(report.RenderSection("Model "+fit.Variant.String(), fitItems(fit), report.DefaultWidth))
			if a.cfg.Preview {
				a.printer.Println(report.Preview("cumulative errors", c.observedCumulative(), fit.CumulativeSeries(),
					a.cfg.PreviewWidth, a.cfg.PreviewHeight))
			}

			r := c.newReport("fit", g)
			r.Fit = fit
			return a.export(r)
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <time>",
		Short: "Fit every reliability model and compare them against the observed errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := model.ParseGranularity(args[0])
			if err != nil {
				return err
			}
			c, err := a.loadCorpus(g)
			if err != nil {
				return err
			}

			results, err := reliability.Compare(cmd.Context(), c.result.Errors())
			if err != nil {
				return err
			}
			for _, res := range results {
				if res.Err != nil {
					a.printer.Warn("%s: %v", res.Variant, res.Err)
					continue
				}
				items := append(fitItems(res.Fit), report.StatItem{
					Key:   "Avg Distance",
					Value: strconv.FormatFloat(res.Distance, 'f', 4, 64),
				})
				a.printer.Println(report.RenderSection("Model "+res.Variant.String(), items, report.DefaultWidth))
			}

			r := c.newReport("compare", g)
			r.Comparisons = results
			return a.export(r)
		},
	}
}

func fitItems(fit *reliability.Fit) []report.StatItem {
	return []report.StatItem{
		{Key: "a", Value: strconv.FormatFloat(fit.A, 'g', 8, 64)},
		{Key: "b", Value: strconv.FormatFloat(fit.B, 'g', 8, 64)},
		{Key: "Buckets (t)", Value: strconv.Itoa(fit.T)},
		{Key: "Errors (N)", Value: strconv.FormatFloat(fit.N, 'f', 0, 64)},
		{Key: "Rate statistic (r)", Value: strconv.FormatFloat(fit.R, 'g', 8, 64)},
		{Key: "Residual", Value: fmt.Sprintf("%.2e", fit.Residual())},
		{Key: "Attempts", Value: strconv.Itoa(fit.Attempts)},
	}
}
