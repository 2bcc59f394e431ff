package spz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmoidRoundTrip(t *testing.T) {
	for _, x := range []float32{-6, -1, 0, 0.5, 3, 12} {
		got := invSigmoid(sigmoid(x))
		require.InDelta(t, x, got, 1e-3, "x=%v", x)
	}
}

func TestInvSigmoidEndpointsAreNotClamped(t *testing.T) {
	require.True(t, math.IsInf(float64(invSigmoid(0)), -1))
	require.True(t, math.IsInf(float64(invSigmoid(1)), 1))
}

func TestHalfToFloat(t *testing.T) {
	cases := []struct {
		name string
		bits uint16
		want float32
	}{
		{"positive zero", 0x0000, 0},
		{"negative zero", 0x8000, 0},
		{"one", 0x3c00, 1},
		{"negative one", 0xbc00, -1},
		{"largest subnormal", 0x03ff, 6.097555e-05},
		{"smallest subnormal", 0x0001, 5.9604645e-08},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, halfToFloat(tc.bits), 1e-9)
		})
	}

	require.True(t, math.IsInf(float64(halfToFloat(0x7c00)), 1))
	require.True(t, math.IsNaN(float64(halfToFloat(0x7e00))))
}

func TestToU8RoundsHalfAwayFromZero(t *testing.T) {
	require.EqualValues(t, 3, toU8(2.5))
	require.EqualValues(t, 0, toU8(-2.5)) // saturates at 0, but would have rounded to -3 unsaturated
	require.EqualValues(t, 255, toU8(400))
	require.EqualValues(t, 0, toU8(-10))
	require.EqualValues(t, 128, toU8(127.5))
}

func TestShDimAndDegreeForDimAreInverses(t *testing.T) {
	for degree := uint8(0); degree <= 3; degree++ {
		dim := shDim(degree)
		got, ok := degreeForDim(dim)
		require.True(t, ok)
		require.Equal(t, degree, got)
	}
	_, ok := degreeForDim(4)
	require.False(t, ok)
}

func TestShBucketBitsIsPerSlotNotPerDegree(t *testing.T) {
	for i := 0; i < 9; i++ {
		require.Equal(t, 5, shBucketBits(i), "slot %d", i)
	}
	for i := 9; i < 45; i++ {
		require.Equal(t, 4, shBucketBits(i), "slot %d", i)
	}
}

func TestQuantizeSHRoundTripBounded(t *testing.T) {
	for _, x := range []float32{-1, -0.5, -0.01, 0, 0.01, 0.5, 0.999} {
		bucket := bucketForBits(shBucketBits(0))
		u := quantizeSH(x, bucket)
		got := unquantizeSH(u)
		require.InDelta(t, x, got, 0.05, "x=%v", x)
	}
}
