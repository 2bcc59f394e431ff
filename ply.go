package spz

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxPlyVertices is the PLY-side vertex cap: 10*2^20.
const maxPlyVertices = 10 * (1 << 20)

// plyProperty names a single "property float <name>" header line in
// declaration order.
type plyProperty struct {
	name  string
	index int
}

// plyLayout records where each required/optional field lives among the
// declared properties, after parsing the header.
type plyLayout struct {
	vertexCount int
	fieldIndex  map[string]int // property name -> declaration index
	shDim       int
	shDegree    uint8
}

var requiredPlyFields = []string{
	"x", "y", "z",
	"scale_0", "scale_1", "scale_2",
	"rot_0", "rot_1", "rot_2", "rot_3",
	"opacity",
	"f_dc_0", "f_dc_1", "f_dc_2",
}

// DecodePLY parses a binary_little_endian 1.0 PLY buffer into a Cloud. The
// decoded cloud is produced in the RDF frame (the PLY convention); if
// target is not Unspecified it is converted from RDF to target before
// returning.
func DecodePLY(data []byte, target CoordinateSystem) (*Cloud, error) {
	headerEnd, layout, err := parsePlyHeader(data)
	if err != nil {
		return nil, err
	}

	cloud, err := decodePlyBody(data[headerEnd:], layout)
	if err != nil {
		return nil, err
	}
	if err := cloud.Validate(); err != nil {
		return nil, err
	}

	NewConverter(RDF, target).Apply(cloud)
	return cloud, nil
}

func parsePlyHeader(data []byte) (headerEnd int, layout plyLayout, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	layout.fieldIndex = make(map[string]int)
	sawFormat := false
	sawMagic := false
	propIndex := 0

	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "ply":
			sawMagic = true
		case "format":
			if len(fields) != 3 || fields[1] != "binary_little_endian" || fields[2] != "1.0" {
				return 0, layout, newError(InvalidFormat, "spz: unsupported ply format %q, want \"binary_little_endian 1.0\"", line)
			}
			sawFormat = true
		case "comment":
			// Ignored.
		case "element":
			if len(fields) != 3 || fields[1] != "vertex" {
				continue
			}
			n, convErr := strconv.Atoi(fields[2])
			if convErr != nil {
				return 0, layout, newError(InvalidFormat, "spz: invalid vertex count %q", fields[2])
			}
			if n <= 0 || n > maxPlyVertices {
				return 0, layout, newError(InvalidFormat, "spz: vertex count %d outside (0, %d]", n, maxPlyVertices)
			}
			layout.vertexCount = n
		case "property":
			if len(fields) != 3 || fields[1] != "float" {
				continue
			}
			name := fields[2]
			layout.fieldIndex[name] = propIndex
			propIndex++
		case "end_header":
			goto doneHeader
		}
	}
doneHeader:
	if err := scanner.Err(); err != nil {
		return 0, layout, wrapError(InvalidFormat, err, "spz: failed to scan ply header")
	}
	if !sawMagic {
		return 0, layout, newError(InvalidFormat, "spz: missing \"ply\" magic line")
	}
	if !sawFormat {
		return 0, layout, newError(InvalidFormat, "spz: missing \"format\" line")
	}
	if layout.vertexCount == 0 {
		return 0, layout, newError(InvalidFormat, "spz: missing \"element vertex\" line")
	}
	for _, name := range requiredPlyFields {
		if _, ok := layout.fieldIndex[name]; !ok {
			return 0, layout, newError(InvalidFormat, "spz: missing required property %q", name)
		}
	}

	dim, degree, err := plyShLayout(layout.fieldIndex)
	if err != nil {
		return 0, layout, err
	}
	layout.shDim = dim
	layout.shDegree = degree

	// Re-derive the exact header length by finding "end_header\n" in the
	// original buffer, since bufio.Scanner's line splitting can eat
	// different numbers of delimiter bytes than a naive sum would.
	idx := bytes.Index(data, []byte("end_header"))
	if idx < 0 {
		return 0, layout, newError(InvalidFormat, "spz: missing end_header line")
	}
	end := idx + len("end_header")
	// Consume exactly one newline (optionally preceded by \r) after
	// end_header, matching how the header text line is terminated.
	if end < len(data) && data[end] == '\r' {
		end++
	}
	if end < len(data) && data[end] == '\n' {
		end++
	}
	return end, layout, nil
}

// plyShLayout counts the consecutive f_rest_0..f_rest_{K-1} properties and
// maps K to a spherical-harmonics dimension and degree.
func plyShLayout(fieldIndex map[string]int) (dim int, degree uint8, err error) {
	k := 0
	for {
		if _, ok := fieldIndex[fmt.Sprintf("f_rest_%d", k)]; !ok {
			break
		}
		k++
	}
	if k%3 != 0 {
		return 0, 0, newError(InvalidFormat, "spz: f_rest_* count %d is not a multiple of 3", k)
	}
	dim = k / 3
	degree, ok := degreeForDim(dim)
	if !ok {
		return 0, 0, newError(InvalidFormat, "spz: f_rest_* count %d does not correspond to a defined sh_degree", k)
	}
	return dim, degree, nil
}

func decodePlyBody(data []byte, layout plyLayout) (*Cloud, error) {
	n := layout.vertexCount
	fieldCount := len(layout.fieldIndex)
	recordSize := fieldCount * 4
	need := n * recordSize
	if len(data) < need {
		return nil, newError(InvalidData, "spz: ply body has %d bytes, want at least %d for %d vertices with %d float properties",
			len(data), need, n, fieldCount)
	}

	cloud := &Cloud{
		NumPoints: uint32(n),
		ShDegree:  layout.shDegree,
		Positions: make([]float32, 3*n),
		Scales:    make([]float32, 3*n),
		Rotations: make([]float32, 4*n),
		Alphas:    make([]float32, n),
		Colors:    make([]float32, 3*n),
		SH:        make([]float32, n*layout.shDim*3),
	}

	readField := func(record []byte, name string) float32 {
		idx := layout.fieldIndex[name]
		bits := binary.LittleEndian.Uint32(record[idx*4 : idx*4+4])
		return math.Float32frombits(bits)
	}

	for i := 0; i < n; i++ {
		record := data[i*recordSize : (i+1)*recordSize]

		cloud.Positions[3*i+0] = readField(record, "x")
		cloud.Positions[3*i+1] = readField(record, "y")
		cloud.Positions[3*i+2] = readField(record, "z")

		cloud.Scales[3*i+0] = readField(record, "scale_0")
		cloud.Scales[3*i+1] = readField(record, "scale_1")
		cloud.Scales[3*i+2] = readField(record, "scale_2")

		// PLY stores rot_0=w, rot_1=x, rot_2=y, rot_3=z; internal layout is
		// (x, y, z, w).
		cloud.Rotations[4*i+0] = readField(record, "rot_1")
		cloud.Rotations[4*i+1] = readField(record, "rot_2")
		cloud.Rotations[4*i+2] = readField(record, "rot_3")
		cloud.Rotations[4*i+3] = readField(record, "rot_0")

		cloud.Alphas[i] = readField(record, "opacity")

		cloud.Colors[3*i+0] = readField(record, "f_dc_0")
		cloud.Colors[3*i+1] = readField(record, "f_dc_1")
		cloud.Colors[3*i+2] = readField(record, "f_dc_2")

		// f_rest_* is channel-major (R coefficients, then G, then B) in the
		// PLY file, but coefficient-major (channel inner) internally; this
		// loop performs that transpose.
		for j := 0; j < layout.shDim; j++ {
			for c := 0; c < 3; c++ {
				name := fmt.Sprintf("f_rest_%d", c*layout.shDim+j)
				cloud.SH[(i*layout.shDim+j)*3+c] = readField(record, name)
			}
		}
	}

	return cloud, nil
}

// EncodePLY emits a binary_little_endian 1.0 PLY buffer for cloud,
// converting its coordinates from source to RDF first if source is not
// Unspecified.
func EncodePLY(cloud *Cloud, source CoordinateSystem) ([]byte, error) {
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	work := cloneCloud(cloud)
	NewConverter(source, RDF).Apply(work)

	n := int(work.NumPoints)
	dim := shDim(work.ShDegree)

	var buf bytes.Buffer
	writePlyHeader(&buf, n, dim)

	record := make([]float32, 17+3*dim)
	for i := 0; i < n; i++ {
		record[0] = work.Positions[3*i+0]
		record[1] = work.Positions[3*i+1]
		record[2] = work.Positions[3*i+2]
		record[3] = 0 // nx
		record[4] = 0 // ny
		record[5] = 0 // nz
		record[6] = work.Colors[3*i+0]
		record[7] = work.Colors[3*i+1]
		record[8] = work.Colors[3*i+2]

		base := 9
		for j := 0; j < dim; j++ {
			for c := 0; c < 3; c++ {
				record[base+c*dim+j] = work.SH[(i*dim+j)*3+c]
			}
		}
		base += 3 * dim

		record[base+0] = work.Alphas[i]
		record[base+1] = work.Scales[3*i+0]
		record[base+2] = work.Scales[3*i+1]
		record[base+3] = work.Scales[3*i+2]
		record[base+4] = work.Rotations[4*i+3] // rot_0 = w
		record[base+5] = work.Rotations[4*i+0] // rot_1 = x
		record[base+6] = work.Rotations[4*i+1] // rot_2 = y
		record[base+7] = work.Rotations[4*i+2] // rot_3 = z

		for _, f := range record {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
			buf.Write(b[:])
		}
	}

	return buf.Bytes(), nil
}

func writePlyHeader(buf *bytes.Buffer, n, dim int) {
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	fmt.Fprintf(buf, "element vertex %d\n", n)
	for _, name := range []string{"x", "y", "z", "nx", "ny", "nz", "f_dc_0", "f_dc_1", "f_dc_2"} {
		fmt.Fprintf(buf, "property float %s\n", name)
	}
	for j := 0; j < 3*dim; j++ {
		fmt.Fprintf(buf, "property float f_rest_%d\n", j)
	}
	for _, name := range []string{"opacity", "scale_0", "scale_1", "scale_2", "rot_0", "rot_1", "rot_2", "rot_3"} {
		fmt.Fprintf(buf, "property float %s\n", name)
	}
	buf.WriteString("end_header\n")
}
