package spz

import (
	"encoding/binary"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash over the cloud's decoded float arrays,
// cheap enough to use as an equality probe in tests and in the CLI's `info`
// command without a full reflect.DeepEqual. It is not part of the wire
// format and carries no compatibility guarantee across versions of this
// package.
func (c *Cloud) Fingerprint() uint64 {
	h := xxhash.New()
	writeFloats := func(fs []float32) {
		var buf [4]byte
		for _, f := range fs {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			_, _ = h.Write(buf[:])
		}
	}
	writeFloats(c.Positions)
	writeFloats(c.Scales)
	writeFloats(c.Rotations)
	writeFloats(c.Alphas)
	writeFloats(c.Colors)
	writeFloats(c.SH)
	return h.Sum64()
}

// Histogram is a minimal snapshot of an HdrHistogram distribution, shaped
// for easy ASCII rendering rather than full statistical introspection.
type Histogram struct {
	Min    float64
	Max    float64
	Mean   float64
	Counts []float64 // one bucket per requested slot, linearly spaced
}

// histogramScale is the fixed-point multiplier HdrHistogram (an
// integer-valued library) needs to track the small floating-point ranges
// scales and opacities live in.
const histogramScale = 1_000_000

// ScaleHistogram summarizes the distribution of per-splat log-scale volume
// (the same v_i the median_volume computation sorts) into buckets ASCII
// rendering can consume.
func (c *Cloud) ScaleHistogram(buckets int) Histogram {
	n := int(c.NumPoints)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		volumes[i] = float64(c.Scales[3*i] + c.Scales[3*i+1] + c.Scales[3*i+2])
	}
	return buildHistogram(volumes, buckets)
}

// OpacityHistogram summarizes the distribution of sigmoid-mapped opacity
// (actual alpha, not the pre-sigmoid stored value) into buckets.
func (c *Cloud) OpacityHistogram(buckets int) Histogram {
	n := int(c.NumPoints)
	opacities := make([]float64, n)
	for i := 0; i < n; i++ {
		opacities[i] = float64(sigmoid(c.Alphas[i]))
	}
	return buildHistogram(opacities, buckets)
}

func buildHistogram(values []float64, buckets int) Histogram {
	if len(values) == 0 || buckets <= 0 {
		return Histogram{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// HdrHistogram requires a non-negative lowest trackable value; scale
	// volumes are frequently negative (radius < 1 gives a negative log), so
	// values are shifted into [0, hi-lo] before recording and shifted back
	// on the way out.
	offset := lo
	h := hdrhistogram.New(0, int64((hi-lo)*histogramScale)+1, 3)
	for _, v := range values {
		_ = h.RecordValue(int64((v - offset) * histogramScale))
	}

	out := Histogram{
		Min:    float64(h.Min())/histogramScale + offset,
		Max:    float64(h.Max())/histogramScale + offset,
		Mean:   h.Mean()/histogramScale + offset,
		Counts: make([]float64, buckets),
	}
	width := (hi - lo) / float64(buckets)
	if width == 0 {
		width = 1
	}
	for _, v := range values {
		bucket := int((v - lo) / width)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		out.Counts[bucket]++
	}
	return out
}
