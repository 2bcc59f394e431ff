package spz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackedValidateAcceptsWellFormed(t *testing.T) {
	p := &Packed{
		NumPoints:         2,
		ShDegree:          0,
		UsesFloat16:       false,
		UsesSmallestThree: true,
		Positions:         make([]byte, 2*3*3),
		Alphas:            make([]byte, 2),
		Colors:            make([]byte, 2*3),
		Scales:            make([]byte, 2*3),
		Rotations:         make([]byte, 2*4),
		SH:                nil,
	}
	require.NoError(t, p.Validate())
}

func TestPackedComponentSizesByEncoding(t *testing.T) {
	float16 := &Packed{UsesFloat16: true}
	require.Equal(t, 2, float16.positionComponentSize())

	fixed := &Packed{UsesFloat16: false}
	require.Equal(t, 3, fixed.positionComponentSize())

	smallestThree := &Packed{UsesSmallestThree: true}
	require.Equal(t, 4, smallestThree.rotationSize())

	legacy := &Packed{UsesSmallestThree: false}
	require.Equal(t, 3, legacy.rotationSize())
}

func TestSectionOffsetsAreContiguousAndOrdered(t *testing.T) {
	p := &Packed{
		NumPoints:         2,
		UsesSmallestThree: true,
		Positions:         make([]byte, 18),
		Alphas:            make([]byte, 2),
		Colors:            make([]byte, 6),
		Scales:            make([]byte, 6),
		Rotations:         make([]byte, 8),
		SH:                make([]byte, 5),
	}
	offs := p.SectionOffsets()
	require.Len(t, offs, 6)

	wantNames := []string{"positions", "alphas", "colors", "scales", "rotations", "sh"}
	running := 0
	for i, o := range offs {
		require.Equal(t, wantNames[i], o.Name)
		require.Equal(t, running, o.Offset)
		running += o.Length
	}
	require.Equal(t, 18+2+6+6+8+5, running)
}

func TestSectionOffsetStringFormatting(t *testing.T) {
	s := SectionOffset{Name: "rotations", Offset: 40, Length: 8}
	require.Equal(t, "rotations[40:48]", s.String())
}
