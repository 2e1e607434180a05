package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 2.0, Mean([]float64{1, math.NaN(), 3}))
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()})))
}

func TestSampleStdDev(t *testing.T) {
	assert.InDelta(t, 0.5, SampleStdDev([]float64{0, 0.5, -0.5}), 1e-12)
	assert.InDelta(t, 1.0, SampleStdDev([]float64{1, math.NaN(), 3, 2}), 1e-12)
	assert.True(t, math.IsNaN(SampleStdDev([]float64{4})))
	assert.True(t, math.IsNaN(SampleStdDev([]float64{4, math.NaN()})))
	assert.Equal(t, 0.0, SampleStdDev([]float64{2, 2, 2}))
}
