package reliability

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// Comparison is the outcome of fitting one variant.
type Comparison struct {
	Variant Variant `json:"model" yaml:"model"`
	Fit     *Fit    `json:"fit,omitempty" yaml:"fit,omitempty"`
	// Distance is the mean absolute distance between the model and the
	// observed cumulative error counts.
	Distance float64 `json:"distance" yaml:"distance"`
	Err      error   `json:"-" yaml:"-"`
	Failure  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Compare fits every variant concurrently. Per-variant fit failures are
// reported in the comparison; the returned error is only set when ctx ends.
func Compare(ctx context.Context, errs []float64) ([]Comparison, error) {
	observed := make(model.Series, len(errs))
	total := 0.0
	for i, e := range errs {
		total += e
		observed[i] = model.Point{X: float64(i), Y: total}
	}

	out := make([]Comparison, len(Variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range Variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := Comparison{Variant: v}
			c.Fit, c.Err = FitErrors(v, errs)
			if c.Err != nil {
				c.Failure = c.Err.Error()
			} else {
				c.Distance = c.Fit.CumulativeSeries().MeanAbsDistance(observed)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
