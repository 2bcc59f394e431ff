package spz

import "encoding/binary"

// magic is the container's 4-byte identifier, "NGSP" read little-endian.
const magic uint32 = 0x5053474e

// headerLen is the fixed size of the container header.
const headerLen = 16

// currentVersion is the version the encoder always writes.
const currentVersion = 3

// defaultFractionalBits is the fixed-point scale the writer always uses for
// positions.
const defaultFractionalBits = 12

const antialiasedFlagBit = 1 << 0

// Serialize emits the fixed 16-byte header followed by the six sections in
// their fixed order: positions, alphas, colors, scales, rotations, sh. The
// header always encodes version 3, regardless of which flags Packed was
// built with — callers that want a different on-disk version should not use
// Serialize/Deserialize directly but are not a supported configuration per
// §4.5 ("On encode: always write version 3").
func Serialize(p *Packed) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var flags byte
	if p.Antialiased {
		flags |= antialiasedFlagBit
	}

	out := make([]byte, headerLen, headerLen+len(p.Positions)+len(p.Alphas)+len(p.Colors)+len(p.Scales)+len(p.Rotations)+len(p.SH))
	binary.LittleEndian.PutUint32(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], currentVersion)
	binary.LittleEndian.PutUint32(out[8:12], p.NumPoints)
	out[12] = p.ShDegree
	out[13] = defaultFractionalBits
	out[14] = flags
	out[15] = 0 // reserved

	out = append(out, p.Positions...)
	out = append(out, p.Alphas...)
	out = append(out, p.Colors...)
	out = append(out, p.Scales...)
	out = append(out, p.Rotations...)
	out = append(out, p.SH...)
	return out, nil
}

// Deserialize parses a header and slices the six sections out of buf,
// validating bounds and the invariants of §3/§4.5 along the way. Trailing
// bytes beyond the last section are ignored.
func Deserialize(buf []byte) (*Packed, error) {
	if len(buf) < headerLen {
		return nil, newError(InvalidHeader, "spz: buffer of %d bytes is shorter than the %d-byte header", len(buf), headerLen)
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != magic {
		return nil, newError(InvalidHeader, "spz: bad magic %#08x, want %#08x", got, magic)
	}
	version := binary.LittleEndian.Uint32(buf[4:8])
	if version < 1 || version > 3 {
		return nil, newError(UnsupportedVersion, "spz: unsupported version %d", version)
	}
	numPoints := binary.LittleEndian.Uint32(buf[8:12])
	if numPoints > MaxPoints {
		return nil, newError(TooManyPoints, "spz: num_points %d exceeds the %d cap", numPoints, MaxPoints)
	}
	shDegree := buf[12]
	if shDegree > 3 {
		return nil, newError(UnsupportedShDegree, "spz: sh_degree %d is not in {0,1,2,3}", shDegree)
	}
	fractionalBits := buf[13]
	flags := buf[14]

	p := &Packed{
		NumPoints:         numPoints,
		ShDegree:          shDegree,
		FractionalBits:    fractionalBits,
		Antialiased:       flags&antialiasedFlagBit != 0,
		UsesFloat16:       version == 1,
		UsesSmallestThree: version >= 3,
	}

	n := int(numPoints)
	dim := shDim(shDegree)
	positionsLen := n * 3 * p.positionComponentSize()
	alphasLen := n
	colorsLen := n * 3
	scalesLen := n * 3
	rotationsLen := n * p.rotationSize()
	shLen := n * dim * 3

	need := headerLen + positionsLen + alphasLen + colorsLen + scalesLen + rotationsLen + shLen
	if len(buf) < need {
		return nil, newError(InvalidData, "spz: buffer of %d bytes is shorter than the %d bytes the header implies", len(buf), need)
	}

	off := headerLen
	p.Positions, off = cloneSection(buf, off, positionsLen)
	p.Alphas, off = cloneSection(buf, off, alphasLen)
	p.Colors, off = cloneSection(buf, off, colorsLen)
	p.Scales, off = cloneSection(buf, off, scalesLen)
	p.Rotations, off = cloneSection(buf, off, rotationsLen)
	p.SH, _ = cloneSection(buf, off, shLen)

	return p, nil
}

// cloneSection copies length bytes starting at offset out of buf, so the
// returned Packed owns its section data independently of the caller's
// buffer (per §3's "no shared sub-structures" invariant).
func cloneSection(buf []byte, offset, length int) ([]byte, int) {
	out := make([]byte, length)
	copy(out, buf[offset:offset+length])
	return out, offset + length
}
