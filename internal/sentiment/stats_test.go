package sentiment

import (
	"math"
	"testing"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{4, 2, 5, 1, 2, 1, 3, 2})
	require.NotNil(t, s)

	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.Median, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, []domain.Bucket{
		{Value: 1, Count: 2},
		{Value: 2, Count: 3},
		{Value: 3, Count: 1},
		{Value: 4, Count: 1},
		{Value: 5, Count: 1},
	}, s.Distribution)
}

func TestDescribe_OddMedianSkipsNonFinite(t *testing.T) {
	s := Describe([]float64{3, math.NaN(), 1, math.Inf(1), 2})
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2.0, s.Median)
}

func TestDescribe_Empty(t *testing.T) {
	assert.Nil(t, Describe(nil))
	assert.Nil(t, Describe([]float64{math.NaN()}))
}

func TestRescale(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1}, Rescale([]float64{1, 3, 5}))
	assert.Equal(t, []float64{0, 0}, Rescale([]float64{7, 7}))
	assert.Empty(t, Rescale(nil))

	out := Rescale([]float64{math.NaN(), 0, 10})
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, []float64{-1, 1}, out[1:])
}

func TestDescribe_ExtremeValuesStayFinite(t *testing.T) {
	s := Describe([]float64{math.MaxFloat64, -math.MaxFloat64, math.MaxFloat64})
	require.NotNil(t, s)
	assert.InEpsilon(t, math.MaxFloat64/3, s.Mean, 1e-12)
	assert.Equal(t, math.MaxFloat64, s.Median)

	s = Describe([]float64{math.MaxFloat64, math.MaxFloat64})
	require.NotNil(t, s)
	assert.Equal(t, math.MaxFloat64, s.Mean)
	assert.Equal(t, math.MaxFloat64, s.Median)
}

func TestRescale_ExtremeRange(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1}, Rescale([]float64{-math.MaxFloat64, 0, math.MaxFloat64}))
}
