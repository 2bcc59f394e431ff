// Package spz implements a compact, gzip-framed binary codec for 3D
// Gaussian-splat point clouds, byte-compatible with an existing reference
// codec, along with a bit-exact bridge to the ASCII-header binary PLY
// interchange format used by training pipelines.
//
// The package is strictly synchronous and holds no process-wide state:
// every exported function is a pure transform over owned buffers and owned
// Cloud/Packed values. Two goroutines may encode or decode disjoint buffers
// concurrently without any synchronization.
package spz

// EncodeSPZ packs cloud (optionally converting its coordinates from source
// first) and wraps the result in the gzip framing of §4.6. The writer
// always emits version 3.
func EncodeSPZ(cloud *Cloud, source CoordinateSystem) ([]byte, error) {
	packed, err := Pack(cloud, source)
	if err != nil {
		return nil, err
	}
	serialized, err := Serialize(packed)
	if err != nil {
		return nil, err
	}
	return gzipCompress(serialized)
}

// DecodeSPZ unwraps the gzip framing, parses the container header and
// sections, and dequantizes into a Cloud, converting to target if it is
// not Unspecified.
func DecodeSPZ(data []byte, target CoordinateSystem) (*Cloud, error) {
	inflated, err := gzipDecompress(data)
	if err != nil {
		return nil, err
	}
	packed, err := Deserialize(inflated)
	if err != nil {
		return nil, err
	}
	return Unpack(packed, target)
}
