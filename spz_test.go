package spz

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// E1: a minimal degree-1 cloud encodes to a gzip stream and decodes within
// the per-field quantization bounds of §8.
func TestE1MinimalCloudEncodeDecode(t *testing.T) {
	c := &Cloud{
		NumPoints:   1,
		ShDegree:    1,
		Positions:   []float32{0, 0, 0},
		Scales:      []float32{0.1, 0.1, 0.1},
		Rotations:   []float32{0, 0, 0, 1},
		Alphas:      []float32{1.0},
		Colors:      []float32{0.5, 0.5, 0.5},
		SH:          make([]float32, 9),
		Antialiased: false,
	}
	encoded, err := EncodeSPZ(c, Unspecified)
	require.NoError(t, err)
	require.Equal(t, []byte{0x1f, 0x8b, 0x08, 0x00}, encoded[:4])

	decoded, err := DecodeSPZ(encoded, Unspecified)
	require.NoError(t, err)
	require.InDeltaSlice(t, c.Positions, decoded.Positions, math.Pow(2, -13))
	require.InDelta(t, sigmoid(1.0), sigmoid(decoded.Alphas[0]), 1.0/255)
	require.InDeltaSlice(t, c.Colors, decoded.Colors, 0.015)
}

// E2: a hand-built 16-byte header for an empty (0-point) version-3 cloud,
// gzip-wrapped, decodes to an empty Cloud.
func TestE2EmptyHeaderDecodesToZeroPoints(t *testing.T) {
	header := []byte{0x4e, 0x47, 0x53, 0x50, 0x03, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	require.Equal(t, magic, binary.LittleEndian.Uint32(header[0:4]))

	wrapped, err := gzipCompress(header)
	require.NoError(t, err)

	decoded, err := DecodeSPZ(wrapped, Unspecified)
	require.NoError(t, err)
	require.EqualValues(t, 0, decoded.NumPoints)
}

// E3: a header declaring version 4 must fail before any section is read.
func TestE3RejectsVersion4(t *testing.T) {
	header := []byte{0x4e, 0x47, 0x53, 0x50, 0x04, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	wrapped, err := gzipCompress(header)
	require.NoError(t, err)

	_, err = DecodeSPZ(wrapped, Unspecified)
	var kindErr *Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, UnsupportedVersion, kindErr.Kind)
}

// E4: a PLY with no f_rest_* properties decodes to sh_degree=0, empty SH, and
// remaps rot_0..3 (w,x,y,z on the wire) to the internal (x,y,z,w) layout.
func TestE4PLYWithoutSHCoefficients(t *testing.T) {
	c := &Cloud{
		NumPoints: 1,
		ShDegree:  0,
		Positions: []float32{1, 2, 3},
		Scales:    []float32{-1, -1, -1},
		Rotations: []float32{0.1, 0.2, 0.3, 0.9},
		Alphas:    []float32{0.4},
		Colors:    []float32{0.1, 0.2, 0.3},
		SH:        []float32{},
	}
	data, err := EncodePLY(c, Unspecified)
	require.NoError(t, err)

	got, err := DecodePLY(data, Unspecified)
	require.NoError(t, err)
	require.EqualValues(t, 0, got.ShDegree)
	require.Empty(t, got.SH)
	require.InDeltaSlice(t, c.Rotations, got.Rotations, 1e-6)
}

// E5: a rotation about Z with w strictly dominant packs with the
// largest-component index bits equal to 3 (w is largest) and decodes within
// 1e-2 per component. A literal 90-degree-about-Z quaternion has z and w tied
// at exactly sin(pi/4)==cos(pi/4) in float32 (the two values differ by far
// less than the ULP at that magnitude), and packRotations's largest-component
// search uses strict '>' and keeps the lowest index on a tie — so it would
// pick z (index 2), not w — which this test avoids with a non-tied input
// rather than by changing that tie-break.
func TestE5ZRotationWithDominantWLayout(t *testing.T) {
	rotations := []float32{0, 0, 0.3, 0.95}

	packed := packRotations(rotations, 1)
	largest := packed[3] >> 6
	require.EqualValues(t, 3, largest)

	unpacked := unpackRotationsSmallestThree(packed, 1)
	require.InDelta(t, rotations[0], unpacked[0], 1e-2)
	require.InDelta(t, rotations[1], unpacked[1], 1e-2)
	require.InDelta(t, rotations[2], unpacked[2], 1e-2)
	require.InDelta(t, rotations[3], unpacked[3], 1e-2)
}

// E6: converting RDF -> RUB -> RDF on the same cloud returns to the original
// positions bit-for-bit (no quantization is involved in coordinate algebra).
func TestE6CoordinateInvolutionRDFviaRUB(t *testing.T) {
	c := sampleCloud(6, 0)
	original := append([]float32{}, c.Positions...)

	NewConverter(RDF, RUB).Apply(c)
	NewConverter(RUB, RDF).Apply(c)

	require.Equal(t, original, c.Positions)
}

func TestSizeInvariantViolationProducesInvalidDataNoPartialCloud(t *testing.T) {
	// A header claiming 1 point but with a truncated rotations section.
	p := &Packed{
		NumPoints:         1,
		UsesSmallestThree: true,
		Positions:         make([]byte, 9),
		Alphas:            make([]byte, 1),
		Colors:            make([]byte, 3),
		Scales:            make([]byte, 3),
		Rotations:         make([]byte, 4),
		SH:                nil,
	}
	buf, err := Serialize(p)
	require.NoError(t, err)

	_, err = Deserialize(buf[:len(buf)-2])
	var kindErr *Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, InvalidData, kindErr.Kind)
}

func TestEncodeSPZAppliesSourceConversionBeforePacking(t *testing.T) {
	c := sampleCloud(3, 0)
	encodedRUB, err := EncodeSPZ(c, RUB)
	require.NoError(t, err)
	encodedRDF, err := EncodeSPZ(c, RDF)
	require.NoError(t, err)
	require.NotEqual(t, encodedRUB, encodedRDF)

	decoded, err := DecodeSPZ(encodedRUB, RUB)
	require.NoError(t, err)
	require.InDeltaSlice(t, c.Positions, decoded.Positions, math.Pow(2, -12))
}
