// Package plot renders assembled series to a PNG image.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/series"
)

const (
	// Title is drawn above every plot.
	Title = "Log Data"

	empiricalLegend = "Errors Overtime"
	modelLegend     = "Model"

	dpi = 96
	// headroom scales the largest y value to the top of the axis.
	headroom = 1.25
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("plot: empirical series is empty")

var (
	empiricalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	modelColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Options controls the output image.
type Options struct {
	Width  int // pixels
	Height int // pixels
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = model.DefaultImageWidth
	}
	if o.Height <= 0 {
		o.Height = model.DefaultImageHeight
	}
	return o
}

// Render draws res as a PNG into w.
func Render(w io.Writer, res *series.Result, opts Options) error {
	if res == nil || len(res.Empirical) == 0 {
		return ErrNoData
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = res.XLabel
	p.Y.Label.Text = res.YLabel

	line, points, err := plotter.NewLinePoints(toXYs(res.Empirical))
	if err != nil {
		return fmt.Errorf("plot empirical series: %w", err)
	}
	line.LineStyle.Color = empiricalColor
	points.GlyphStyle.Color = empiricalColor
	p.Add(line, points)

	maxY := res.Empirical.MaxY()
	if res.HasModel() {
		mline, mpoints, err := plotter.NewLinePoints(toXYs(res.Model))
		if err != nil {
			return fmt.Errorf("plot model series: %w", err)
		}
		mline.LineStyle.Color = modelColor
		mpoints.GlyphStyle.Color = modelColor
		p.Add(mline, mpoints)

		p.Legend.Add(empiricalLegend, line, points)
		p.Legend.Add(modelLegend, mline, mpoints)
		p.Legend.Top = true
		maxY = max(maxY, res.Model.MaxY())
	}

	if maxY <= 0 {
		maxY = 1
	}
	p.Y.Min = 0
	p.Y.Max = maxY * headroom

	c := vgimg.NewWith(
		vgimg.UseWH(pixels(opts.Width), pixels(opts.Height)),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Save renders res to path, creating the parent directory.
func Save(path string, res *series.Result, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, res, opts); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}

func toXYs(s model.Series) plotter.XYs {
	xys := make(plotter.XYs, len(s))
	for i, p := range s {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}
	return xys
}
