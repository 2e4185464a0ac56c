package reliability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"scwind", SCWIND, false},
		{" SCWIND ", SCWIND, false},
		{"go", GO, false},
		{"goel-okumoto", GO, false},
		{"weibull", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVariant(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Variant {
	t.Helper()
	v, err := ParseVariant(s)
	require.NoError(t, err)
	return v
}

func TestFitSCWINDScenario(t *testing.T) {
	fit, err := FitErrors(SCWIND, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 5, fit.T)
	assert.InDelta(t, 15.0, fit.N, 1e-12)
	assert.InDelta(t, 55.0/15, fit.R, 1e-12)
	assert.InDelta(t, -1.374755, fit.B, 1e-4)
	assert.Less(t, math.Abs(fit.Residual()), 1e-4)
	assert.InDelta(t, fit.B*15/(1-math.Exp(-5*fit.B)), fit.A, 1e-9)

	curve := fit.CumulativeSeries()
	require.Len(t, curve, 5)
	for i := 1; i < len(curve); i++ {
		assert.Greater(t, curve[i].Y, curve[i-1].Y, "cumulative curve must increase at %d", i)
	}
	assert.InDelta(t, 15.0, fit.Cumulative(4), 1e-3)
}

func TestFitFixedPoint(t *testing.T) {
	trajectories := [][]float64{
		{1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1},
		{10, 3, 1, 0, 0},
		{1, 1, 1, 1},
		{3, 0, 0, 0, 0, 0, 0, 1},
	}
	for _, v := range Variants {
		for _, errs := range trajectories {
			fit, err := FitErrors(v, errs)
			require.NoError(t, err, "%s %v", v, errs)
			assert.Less(t, math.Abs(fit.Residual()), 1e-4, "%s %v", v, errs)
		}
	}
}

func TestFitShapeForPositiveB(t *testing.T) {
	for _, v := range Variants {
		fit, err := FitErrors(v, []float64{10, 3, 1, 0, 0})
		require.NoError(t, err)
		require.Greater(t, fit.B, 0.0, "%s", v)

		for i := 1; i < 20; i++ {
			assert.GreaterOrEqual(t, fit.Cumulative(i), fit.Cumulative(i-1), "%s cumulative at %d", v, i)
			assert.LessOrEqual(t, fit.Rate(i), fit.Rate(i-1), "%s rate at %d", v, i)
		}
	}
}

func TestFitGO(t *testing.T) {
	fit, err := FitErrors(GO, []float64{2, 3, 5})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, fit.A, 1e-12)
	assert.InDelta(t, 10.0, fit.R, 1e-12)
	assert.InDelta(t, 0.214913, fit.B, 1e-4)
	assert.InDelta(t, 10*(1-math.Exp(-fit.B)), fit.Cumulative(0), 1e-9)
	assert.InDelta(t, 10*fit.B*math.Exp(-2*fit.B), fit.Rate(1), 1e-9)
}

func TestFitNoErrors(t *testing.T) {
	_, err := FitErrors(SCWIND, []float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrNoErrors)

	_, err = FitErrors(GO, nil)
	assert.ErrorIs(t, err, ErrNoErrors)
}

func TestFitSingleBucket(t *testing.T) {
	for _, v := range Variants {
		fit, err := FitErrors(v, []float64{7})
		require.NoError(t, err)
		assert.True(t, fit.Flat)
		assert.Equal(t, model.Series{{X: 0, Y: 0}}, fit.CumulativeSeries())
		assert.Equal(t, model.Series{{X: 0, Y: 0}}, fit.RateSeries())
	}
}

func TestFitNoConvergence(t *testing.T) {
	// r = 3 lies outside the attainable range (0, t-1) for t = 3.
	_, err := FitErrors(SCWIND, []float64{0, 0, 5})
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.ErrorContains(t, err, "r=3 t=3")
	assert.ErrorContains(t, err, "reachable range (0, 2)")
}

func TestSolveBoundsAttempts(t *testing.T) {
	eq := equation{
		m:  func(float64) float64 { return math.NaN() },
		dm: func(float64) float64 { return 1 },
		r:  1,
	}
	_, attempts, err := solve(eq)
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.LessOrEqual(t, attempts, maxAttempts)
}

func TestOverflowGuards(t *testing.T) {
	assert.Equal(t, 0.0, invExpm1(800))
	assert.InDelta(t, 0.0, expRatio(800), 1e-300)
	assert.InDelta(t, 0.0, expRatio(-800), 1e-300)
	assert.InDelta(t, 0.5, h(0), 1e-12)
	assert.InDelta(t, h(1e-4+1e-9), h(1e-4-1e-9), 1e-8)
	assert.InDelta(t, dh(1e-4+1e-9), dh(1e-4-1e-9), 1e-6)
}
