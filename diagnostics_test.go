package spz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintIsStableAndSensitiveToContent(t *testing.T) {
	c1 := sampleCloud(4, 1)
	c2 := sampleCloud(4, 1)
	require.Equal(t, c1.Fingerprint(), c2.Fingerprint())

	c2.Positions[0] += 0.001
	require.NotEqual(t, c1.Fingerprint(), c2.Fingerprint())
}

func TestFingerprintEmptyCloud(t *testing.T) {
	c := &Cloud{}
	require.NotPanics(t, func() { c.Fingerprint() })
}

func TestScaleHistogramBucketsSumToPointCount(t *testing.T) {
	c := sampleCloud(50, 0)
	h := c.ScaleHistogram(10)
	var total float64
	for _, count := range h.Counts {
		total += count
	}
	require.Equal(t, float64(50), total)
}

func TestOpacityHistogramRangeWithinUnitInterval(t *testing.T) {
	c := sampleCloud(20, 0)
	h := c.OpacityHistogram(8)
	require.GreaterOrEqual(t, h.Min, 0.0)
	require.LessOrEqual(t, h.Max, 1.0)
}

func TestHistogramEmptyInputIsZeroValue(t *testing.T) {
	h := buildHistogram(nil, 10)
	require.Equal(t, Histogram{}, h)
	h = buildHistogram([]float64{1, 2, 3}, 0)
	require.Equal(t, Histogram{}, h)
}
