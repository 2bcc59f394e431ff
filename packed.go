package spz

import "github.com/cockroachdb/redact"

// Packed is the in-memory byte-level mirror of the on-disk SPZ layout: one
// []byte slice per section, in the fixed order positions/alphas/colors/
// scales/rotations/sh. Like Cloud, it is an owned value with no shared
// sub-structures.
type Packed struct {
	NumPoints       uint32
	ShDegree        uint8
	FractionalBits  uint8 // low 6 bits meaningful; writer always uses 12
	Antialiased     bool
	UsesFloat16     bool // version == 1
	UsesSmallestThree bool // version >= 3

	Positions []byte
	Alphas    []byte
	Colors    []byte
	Scales    []byte
	Rotations []byte
	SH        []byte
}

// positionComponentSize returns the per-component byte width of a packed
// position: 2 for float16 (version 1), 3 for fixed-point 24-bit (version 2/3).
func (p *Packed) positionComponentSize() int {
	if p.UsesFloat16 {
		return 2
	}
	return 3
}

// rotationSize returns the per-splat byte width of a packed rotation: 4 for
// the smallest-three encoding (version >= 3), 3 for the legacy xyz-only
// encoding (version 1/2).
func (p *Packed) rotationSize() int {
	if p.UsesSmallestThree {
		return 4
	}
	return 3
}

// Validate checks the six section-length equalities implied by NumPoints,
// ShDegree, and the two encoding flags.
func (p *Packed) Validate() error {
	if p.NumPoints > MaxPoints {
		return newError(TooManyPoints, "spz: num_points %d exceeds the %d cap", p.NumPoints, MaxPoints)
	}
	if p.ShDegree > 3 {
		return newError(UnsupportedShDegree, "spz: sh_degree %d is not in {0,1,2,3}", p.ShDegree)
	}
	n := int(p.NumPoints)
	dim := shDim(p.ShDegree)

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"positions", len(p.Positions), n * 3 * p.positionComponentSize()},
		{"alphas", len(p.Alphas), n},
		{"colors", len(p.Colors), n * 3},
		{"scales", len(p.Scales), n * 3},
		{"rotations", len(p.Rotations), n * p.rotationSize()},
		{"sh", len(p.SH), n * dim * 3},
	}
	for _, chk := range checks {
		if chk.got != chk.want {
			return newError(InvalidData, "spz: packed %s has length %d, want %d for %d points",
				chk.name, chk.got, chk.want, n)
		}
	}
	return nil
}

// SectionOffset names one of the six fixed-order sections of a serialized
// Packed payload, for SectionOffsets.
type SectionOffset struct {
	Name   string
	Offset int
	Length int
}

// String implements fmt.Stringer.
func (s SectionOffset) String() string {
	return redact.StringWithoutMarkers(s)
}

// SafeFormat implements redact.SafeFormatter. Section names and offsets are
// plain format metadata, not splat content, so they are safe to log in the
// clear even where the surrounding error message is redacted.
func (s SectionOffset) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s[%d:%d]", redact.SafeString(s.Name), s.Offset, s.Offset+s.Length)
}

// SectionOffsets returns the byte offset (relative to the start of the
// section data, i.e. right after the 16-byte header) and length of each of
// the six sections, in their fixed on-disk order. This lets a caller inspect
// where a section lives in a Serialize'd buffer without a full Deserialize.
func (p *Packed) SectionOffsets() []SectionOffset {
	sections := []struct {
		name string
		data []byte
	}{
		{"positions", p.Positions},
		{"alphas", p.Alphas},
		{"colors", p.Colors},
		{"scales", p.Scales},
		{"rotations", p.Rotations},
		{"sh", p.SH},
	}
	out := make([]SectionOffset, len(sections))
	offset := 0
	for i, s := range sections {
		out[i] = SectionOffset{Name: s.name, Offset: offset, Length: len(s.data)}
		offset += len(s.data)
	}
	return out
}
