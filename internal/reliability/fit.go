package reliability

import (
	"errors"
	"fmt"
	"math"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

var (
	// ErrNoErrors is returned when the trajectory holds no errors; callers
	// skip the model series.
	ErrNoErrors = errors.New("reliability: no errors to fit")
	// ErrNoConvergence is returned when every Newton attempt failed.
	ErrNoConvergence = errors.New("reliability: newton iteration did not converge")
)

// Fit holds fitted model parameters for an error trajectory of T buckets.
type Fit struct {
	Variant  Variant `json:"model" yaml:"model"`
	A        float64 `json:"a" yaml:"a"`
	B        float64 `json:"b" yaml:"b"`
	T        int     `json:"t" yaml:"t"`
	N        float64 `json:"n" yaml:"n"`
	R        float64 `json:"r" yaml:"r"`
	Attempts int     `json:"attempts" yaml:"attempts"`
	// Flat marks a single-bucket trajectory, whose curves are all zero.
	Flat bool `json:"flat" yaml:"flat"`
}

// FitBuckets fits v to the error counts of buckets.
func FitBuckets(v Variant, buckets []model.BucketStats) (*Fit, error) {
	errs := make([]float64, len(buckets))
	for i, b := range buckets {
		errs[i] = float64(b.Errors)
	}
	return FitErrors(v, errs)
}

// FitErrors fits v to the per-bucket error counts.
func FitErrors(v Variant, errs []float64) (*Fit, error) {
	n := 0.0
	for _, e := range errs {
		n += e
	}
	if n <= 0 {
		return nil, ErrNoErrors
	}

	fit := &Fit{Variant: v, T: len(errs), N: n}
	if fit.T == 1 {
		fit.Flat = true
		return fit, nil
	}

	eq, err := fit.equation(errs)
	if err != nil {
		return nil, err
	}
	fit.R = eq.r

	b, attempts, err := solve(eq)
	fit.Attempts = attempts
	if err != nil {
		return nil, fmt.Errorf("%s fit over %d buckets (r=%.4g t=%d, %s): %w",
			v, fit.T, fit.R, fit.T, fit.domain(), err)
	}
	fit.B = b
	fit.A = fit.scale()
	return fit, nil
}

func (f *Fit) equation(errs []float64) (equation, error) {
	t := float64(f.T)
	switch f.Variant {
	case SCWIND:
		r := 0.0
		for i, e := range errs {
			r += float64(i+1) * e
		}
		return equation{
			m:  func(b float64) float64 { return invExpm1(b) - t*invExpm1(b*t) },
			dm: func(b float64) float64 { return t*t*expRatio(b*t) - expRatio(b) },
			r:  r / f.N,
		}, nil
	case GO:
		n := f.N
		return equation{
			m:  func(b float64) float64 { return t * n * h(b*n) },
			dm: func(b float64) float64 { return t * n * n * dh(b*n) },
			r:  n,
		}, nil
	default:
		return equation{}, fmt.Errorf("reliability: unsupported model %s", f.Variant)
	}
}

// domain describes which trajectories the variant's equation can solve.
func (f *Fit) domain() string {
	switch f.Variant {
	case SCWIND:
		return fmt.Sprintf("reachable range (0, %d)", f.T-1)
	default:
		return "needs t > 2"
	}
}

func (f *Fit) scale() float64 {
	switch f.Variant {
	case SCWIND:
		return f.B * f.N / -math.Expm1(-f.B*float64(f.T))
	default:
		return f.N
	}
}

// Cumulative is the expected number of errors observed by the end of
// bucket i (0-based).
func (f *Fit) Cumulative(i int) float64 {
	if f.Flat {
		return 0
	}
	x := -math.Expm1(-f.B * float64(i+1))
	switch f.Variant {
	case SCWIND:
		return f.A / f.B * x
	default:
		return f.N * x
	}
}

// Rate is the expected error intensity at bucket i (0-based).
func (f *Fit) Rate(i int) float64 {
	if f.Flat {
		return 0
	}
	decay := math.Exp(-f.B * float64(i+1))
	switch f.Variant {
	case SCWIND:
		return f.A * decay
	default:
		return f.A * f.B * decay
	}
}

// CumulativeSeries evaluates Cumulative at x = 0..T-1.
func (f *Fit) CumulativeSeries() model.Series {
	return f.curve(f.Cumulative)
}

// RateSeries evaluates Rate at x = 0..T-1.
func (f *Fit) RateSeries() model.Series {
	return f.curve(f.Rate)
}

func (f *Fit) curve(fn func(int) float64) model.Series {
	s := make(model.Series, f.T)
	for i := range s {
		s[i] = model.Point{X: float64(i), Y: fn(i)}
	}
	return s
}

// Residual is M(b) - r at the fitted b.
func (f *Fit) Residual() float64 {
	if f.Flat {
		return 0
	}
	// equation only fails for unknown variants, which FitErrors rejects.
	eq, _ := f.equation(nil)
	return eq.m(f.B) - f.R
}
