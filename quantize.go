package spz

import "math"

// Pack quantizes a validated Cloud into its Packed byte representation.
// If source is not Unspecified, the cloud's coordinates are first converted
// to RUB (the canonical packing frame) in a local copy — the caller's Cloud
// is never mutated. The writer always produces fractional_bits=12,
// smallest-three rotations, and 24-bit fixed-point (non-float16) positions, i.e. the
// version-3 encoding.
func Pack(cloud *Cloud, source CoordinateSystem) (*Packed, error) {
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	work := cloneCloud(cloud)
	NewConverter(source, RUB).Apply(work)

	n := int(work.NumPoints)
	p := &Packed{
		NumPoints:         work.NumPoints,
		ShDegree:          work.ShDegree,
		FractionalBits:    defaultFractionalBits,
		Antialiased:       work.Antialiased,
		UsesFloat16:       false,
		UsesSmallestThree: true,
	}

	p.Positions = packPositions(work.Positions, n)
	p.Scales = packScales(work.Scales, n)
	p.Rotations = packRotations(work.Rotations, n)
	p.Alphas = packAlphas(work.Alphas, n)
	p.Colors = packColors(work.Colors, n)
	p.SH = packSH(work.SH, n, shDim(work.ShDegree))

	return p, p.Validate()
}

func cloneCloud(c *Cloud) *Cloud {
	clone := func(s []float32) []float32 {
		out := make([]float32, len(s))
		copy(out, s)
		return out
	}
	return &Cloud{
		NumPoints:   c.NumPoints,
		ShDegree:    c.ShDegree,
		Antialiased: c.Antialiased,
		Positions:   clone(c.Positions),
		Scales:      clone(c.Scales),
		Rotations:   clone(c.Rotations),
		Alphas:      clone(c.Alphas),
		Colors:      clone(c.Colors),
		SH:          clone(c.SH),
	}
}

func finiteOr(x float32, fallback float32) float32 {
	if math.IsInf(float64(x), 0) || math.IsNaN(float64(x)) {
		return fallback
	}
	return x
}

func packPositions(positions []float32, n int) []byte {
	const scale = 1 << defaultFractionalBits
	out := make([]byte, n*3*3)
	for i := 0; i < n*3; i++ {
		p := finiteOr(positions[i], 0)
		f := int32(roundHalfAwayFromZero(p * scale))
		out[3*i+0] = byte(f)
		out[3*i+1] = byte(f >> 8)
		out[3*i+2] = byte(f >> 16)
	}
	return out
}

func unpackPositions(data []byte, n int, fractionalBits uint8) []float32 {
	scale := float32(int64(1) << (fractionalBits & 0x3f))
	out := make([]float32, n*3)
	for i := 0; i < n*3; i++ {
		raw := uint32(data[3*i]) | uint32(data[3*i+1])<<8 | uint32(data[3*i+2])<<16
		// Sign-extend from bit 23.
		f := int32(raw << 8) >> 8
		out[i] = float32(f) / scale
	}
	return out
}

func unpackPositionsFloat16(data []byte, n int) []float32 {
	out := make([]float32, n*3)
	for i := 0; i < n*3; i++ {
		u := uint16(data[2*i]) | uint16(data[2*i+1])<<8
		out[i] = halfToFloat(u)
	}
	return out
}

func packScales(scales []float32, n int) []byte {
	out := make([]byte, n*3)
	for i := 0; i < n*3; i++ {
		s := finiteOr(scales[i], 0)
		out[i] = toU8((s + 10) * 16)
	}
	return out
}

func unpackScales(data []byte, n int) []float32 {
	out := make([]float32, n*3)
	for i := 0; i < n*3; i++ {
		out[i] = float32(data[i])/16 - 10
	}
	return out
}

func packAlphas(alphas []float32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = toU8(sigmoid(alphas[i]) * 255)
	}
	return out
}

func unpackAlphas(data []byte, n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = invSigmoid(float32(data[i]) / 255)
	}
	return out
}

func packColors(colors []float32, n int) []byte {
	out := make([]byte, n*3)
	for i := 0; i < n*3; i++ {
		out[i] = toU8(colors[i]*colorScale*255 + 0.5*255)
	}
	return out
}

func unpackColors(data []byte, n int) []float32 {
	out := make([]float32, n*3)
	for i := 0; i < n*3; i++ {
		out[i] = (float32(data[i])/255 - 0.5) / colorScale
	}
	return out
}

func packSH(sh []float32, n, dim int) []byte {
	if dim == 0 {
		return nil
	}
	out := make([]byte, n*dim*3)
	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			bucket := bucketForBits(shBucketBits(j * 3))
			for k := 0; k < 3; k++ {
				out[idx] = quantizeSH(sh[idx], bucket)
				idx++
			}
		}
	}
	return out
}

func unpackSH(data []byte, n, dim int) []float32 {
	if dim == 0 {
		return nil
	}
	out := make([]float32, n*dim*3)
	for i := range data {
		out[i] = unquantizeSH(data[i])
	}
	return out
}

// packRotations implements the smallest-three quaternion encoding of §4.3.
func packRotations(rotations []float32, n int) []byte {
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		x, y, z, w := rotations[4*i], rotations[4*i+1], rotations[4*i+2], rotations[4*i+3]
		x, y, z, w = finiteOr(x, 0), finiteOr(y, 0), finiteOr(z, 0), finiteOr(w, 1)

		norm := float32(math.Sqrt(float64(x*x + y*y + z*z + w*w)))
		if norm == 0 {
			x, y, z, w, norm = 0, 0, 0, 1, 1
		}
		x, y, z, w = x/norm, y/norm, z/norm, w/norm

		q := [4]float32{x, y, z, w}
		largest := 0
		for k := 1; k < 4; k++ {
			if abs32(q[k]) > abs32(q[largest]) {
				largest = k
			}
		}
		if q[largest] < 0 {
			q[0], q[1], q[2], q[3] = -q[0], -q[1], -q[2], -q[3]
		}

		var others [3]float32
		oi := 0
		for k := 0; k < 4; k++ {
			if k == largest {
				continue
			}
			others[oi] = q[k]
			oi++
		}

		// Once the largest component is dropped, each of the three stored
		// components of a unit quaternion is bounded to
		// [-1/sqrt2, 1/sqrt2], not [-1, 1], so the 10-bit code range [-511,
		// 511] is reached by scaling by 511/invSqrt2 (= 511*sqrt2), the
		// inverse of unpackRotationsSmallestThree's "* invSqrt2" dequantize
		// factor. Scaling by 511 alone (matching only the literal text of
		// §4.3 without its range note) would leave the top ~30% of the code
		// range unused and fail to round-trip against the decode formula.
		const sqrt2 = 1.41421356237309504880
		v := [3]int32{}
		for k := 0; k < 3; k++ {
			v[k] = clampInt32(int32(roundHalfAwayFromZero(others[k]*511*sqrt2)), -511, 511)
		}

		r0 := byte(v[0] & 0xff)
		r1 := byte((v[0]>>8)&3) | byte((v[1]&0x3f)<<2)
		r2 := byte((v[1]>>6)&0xf) | byte((v[2]&0xf)<<4)
		r3 := byte((v[2]>>4)&0x3f) | byte(largest<<6)

		out[4*i+0] = r0
		out[4*i+1] = r1
		out[4*i+2] = r2
		out[4*i+3] = r3
	}
	return out
}

// unpackRotationsSmallestThree implements the version>=3 inverse of
// packRotations.
func unpackRotationsSmallestThree(data []byte, n int) []float32 {
	out := make([]float32, n*4)
	const invSqrt2 = 0.70710678118654752440
	for i := 0; i < n; i++ {
		r0, r1, r2, r3 := data[4*i], data[4*i+1], data[4*i+2], data[4*i+3]

		v0 := int32(r0) | int32(r1&0x3)<<8
		v1 := int32(r1>>2) | int32(r2&0xf)<<6
		v2 := int32(r2>>4) | int32(r3&0x3f)<<4
		largest := int(r3 >> 6)

		v0 = signExtend10(v0)
		v1 = signExtend10(v1)
		v2 = signExtend10(v2)

		a := float32(v0) / 511 * invSqrt2
		b := float32(v1) / 511 * invSqrt2
		c := float32(v2) / 511 * invSqrt2

		var q [4]float32
		others := [3]float32{a, b, c}
		oi := 0
		sumSquares := float32(0)
		for k := 0; k < 4; k++ {
			if k == largest {
				continue
			}
			q[k] = others[oi]
			sumSquares += q[k] * q[k]
			oi++
		}
		rem := float32(1) - sumSquares
		if rem < 0 {
			rem = 0
		}
		q[largest] = float32(math.Sqrt(float64(rem)))

		out[4*i+0], out[4*i+1], out[4*i+2], out[4*i+3] = q[0], q[1], q[2], q[3]
	}
	return out
}

// unpackRotationsLegacy implements the version 1/2 3-byte rotation layout:
// xyz stored directly, w reconstructed as non-negative. Per §9's resolution
// of the reference's two divergent legacy-unpack implementations, flipQ is
// applied here too (by the caller, via Converter.Apply over the whole
// Cloud) for consistency with the version-3 path — this function only does
// the byte-level reconstruction.
func unpackRotationsLegacy(data []byte, n int) []float32 {
	out := make([]float32, n*4)
	for i := 0; i < n; i++ {
		x := float32(data[3*i])/127.5 - 1
		y := float32(data[3*i+1])/127.5 - 1
		z := float32(data[3*i+2])/127.5 - 1
		sumSquares := x*x + y*y + z*z
		rem := float32(1) - sumSquares
		if rem < 0 {
			rem = 0
		}
		w := float32(math.Sqrt(float64(rem)))
		out[4*i+0], out[4*i+1], out[4*i+2], out[4*i+3] = x, y, z, w
	}
	return out
}

func signExtend10(v int32) int32 {
	v &= 0x3ff
	if v&0x200 != 0 {
		v -= 0x400
	}
	return v
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampInt32(x, lo, hi int32) int32 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// Unpack dequantizes a validated Packed into a Cloud. If target is not
// Unspecified, the decoded cloud (always produced in RUB, the canonical
// unpacking frame) is converted to target in place before being returned.
func Unpack(p *Packed, target CoordinateSystem) (*Cloud, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := int(p.NumPoints)
	dim := shDim(p.ShDegree)

	c := &Cloud{
		NumPoints:   p.NumPoints,
		ShDegree:    p.ShDegree,
		Antialiased: p.Antialiased,
		Scales:      unpackScales(p.Scales, n),
		Alphas:      unpackAlphas(p.Alphas, n),
		Colors:      unpackColors(p.Colors, n),
		SH:          unpackSH(p.SH, n, dim),
	}

	if p.UsesFloat16 {
		c.Positions = unpackPositionsFloat16(p.Positions, n)
	} else {
		c.Positions = unpackPositions(p.Positions, n, p.FractionalBits)
	}

	if p.UsesSmallestThree {
		c.Rotations = unpackRotationsSmallestThree(p.Rotations, n)
	} else {
		c.Rotations = unpackRotationsLegacy(p.Rotations, n)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	NewConverter(RUB, target).Apply(c)
	return c, nil
}
