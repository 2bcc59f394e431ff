package spz

import (
	"math"
	"sort"
)

// MaxPoints is the hard cap on num_points enforced throughout the codec.
const MaxPoints = 10_000_000

// Cloud is the decoded, in-memory representation of a splat cloud: plain
// float32 arrays, one slice per attribute, laid out per §3 of the format.
// A Cloud is an owned value with no shared sub-structures; callers are free
// to mutate and discard it without affecting any other Cloud.
type Cloud struct {
	NumPoints   uint32
	ShDegree    uint8
	Antialiased bool

	Positions []float32 // len 3*N
	Scales    []float32 // len 3*N, log-scale
	Rotations []float32 // len 4*N, (x,y,z,w) per splat
	Alphas    []float32 // len N, pre-sigmoid
	Colors    []float32 // len 3*N, SH DC component
	SH        []float32 // len N*shDim(ShDegree)*3
}

// Validate checks the six array-length equalities implied by NumPoints and
// ShDegree, and the bounds on NumPoints/ShDegree themselves. Every codec
// entry point that accepts or produces a Cloud calls this before treating it
// as valid.
func (c *Cloud) Validate() error {
	if c.NumPoints > MaxPoints {
		return newError(TooManyPoints, "spz: num_points %d exceeds the %d cap", c.NumPoints, MaxPoints)
	}
	if c.ShDegree > 3 {
		return newError(UnsupportedShDegree, "spz: sh_degree %d is not in {0,1,2,3}", c.ShDegree)
	}
	n := int(c.NumPoints)
	dim := shDim(c.ShDegree)

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"positions", len(c.Positions), 3 * n},
		{"scales", len(c.Scales), 3 * n},
		{"rotations", len(c.Rotations), 4 * n},
		{"alphas", len(c.Alphas), n},
		{"colors", len(c.Colors), 3 * n},
		{"sh", len(c.SH), n * dim * 3},
	}
	for _, chk := range checks {
		if chk.got != chk.want {
			return newError(InvalidData, "spz: %s has length %d, want %d for %d points at sh_degree %d",
				chk.name, chk.got, chk.want, n, c.ShDegree)
		}
	}
	return nil
}

// RotateAboutX180 applies the RUB->RDF coordinate conversion, the specific
// case the reference codec calls "rotate 180 degrees about X". It is
// expressed as the general Converter rather than a hand-rolled sign/index
// table: see DESIGN.md for why a literal reading of the worked example in
// the distilled spec's §4.8 (flipQ=(-,+,-) and a specific SH index list)
// does not reduce from the §4.2 formula, and why routing through the
// general converter is the self-consistent choice — it automatically
// satisfies "applying it twice is the identity" because Converter
// composition is its own inverse for an involutive axis pair.
func (c *Cloud) RotateAboutX180() {
	NewConverter(RUB, RDF).Apply(c)
}

// MedianVolume returns the median of the per-splat sum of log-scales,
// exponentiated into a volume via 4/3*pi*exp(v). An empty cloud returns the
// reference codec's fallback of 0.01.
func (c *Cloud) MedianVolume() float32 {
	n := int(c.NumPoints)
	if n == 0 {
		return 0.01
	}
	volumes := make([]float32, n)
	for i := 0; i < n; i++ {
		volumes[i] = c.Scales[3*i] + c.Scales[3*i+1] + c.Scales[3*i+2]
	}
	sort.Slice(volumes, func(i, j int) bool { return volumes[i] < volumes[j] })
	median := volumes[n/2]
	return float32(4.0/3.0*math.Pi) * float32(math.Exp(float64(median)))
}
