package gca

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

// Archive container format: a 6-byte header (magic + version) followed
// by one zstd frame holding the serialized node tree, little-endian.

const gcaMagic = "GCAF"

const (
	versionMajor = 1
	versionMinor = 0
)

// Format errors.
var (
	ErrInvalidMagic       = errors.New("invalid archive magic: expected 'GCAF'")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	ErrTruncatedData      = errors.New("truncated archive data")
	ErrCorruptData        = errors.New("corrupt archive data")
)

// Sanity caps applied while decoding, so a corrupt length field cannot
// drive allocations.
const (
	maxChildren = 1 << 16
	maxSamples  = 1 << 20
	maxElements = 1 << 26
)

// Open reads a geometry cache archive from disk.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	a.path = path
	return a, nil
}

// Save writes the archive to disk.
func (a *Archive) Save(path string) error {
	data, err := a.encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

func (a *Archive) encode() ([]byte, error) {
	var body bytes.Buffer
	w := &chunkWriter{buf: &body}
	w.node(a.root)
	if w.err != nil {
		return nil, w.err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	out := make([]byte, 0, body.Len()/2+6)
	out = append(out, gcaMagic...)
	out = append(out, versionMajor, versionMinor)
	out = enc.EncodeAll(body.Bytes(), out)
	return out, nil
}

func decode(data []byte) (*Archive, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedData
	}
	if string(data[:4]) != gcaMagic {
		return nil, ErrInvalidMagic
	}
	major, minor := data[4], data[5]
	if major != versionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, major, minor)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	body, err := dec.DecodeAll(data[6:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	r := &chunkReader{data: body}
	root := r.node(nil)
	if r.err != nil {
		return nil, r.err
	}
	return &Archive{root: root}, nil
}

// chunkWriter serializes the tree, carrying the first write error.
type chunkWriter struct {
	buf *bytes.Buffer
	err error
}

func (w *chunkWriter) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.buf, binary.LittleEndian, v)
}

func (w *chunkWriter) str(s string) {
	w.write(uint16(len(s)))
	if w.err == nil {
		w.buf.WriteString(s)
	}
}

func (w *chunkWriter) sampling(ts timesample.TimeSampling) {
	w.write(ts.Start)
	w.write(ts.Interval)
	w.write(uint32(ts.Count))
}

func (w *chunkWriter) node(n *Node) {
	w.write(uint8(n.kind))
	w.str(n.name)

	switch n.kind {
	case KindTransform:
		w.sampling(n.Xform.Sampling)
		w.write(uint32(len(n.Xform.Matrices)))
		for _, m := range n.Xform.Matrices {
			w.write(m)
		}
	case KindPolyMesh:
		w.mesh(n.Mesh)
	case KindCurves:
		w.sampling(n.Curves.Sampling)
		w.write(uint32(n.Curves.NumSamples()))
		for i := range n.Curves.Positions {
			w.vec3s(n.Curves.Positions[i])
			w.int32s(n.Curves.NumVertices[i])
		}
	}

	w.write(uint32(len(n.children)))
	for _, c := range n.children {
		w.node(c)
	}
}

func (w *chunkWriter) mesh(m *MeshData) {
	w.sampling(m.Sampling)
	w.write(uint32(m.NumSamples()))
	for i := range m.Positions {
		w.vec3s(m.Positions[i])
		w.int32s(m.FaceCounts[i])
		w.int32s(m.FaceIndices[i])
	}
	w.optParam(m.UVs)
	w.optParam(m.Normals)
	w.write(uint16(len(m.Params)))
	for _, p := range m.Params {
		w.param(p)
	}
}

func (w *chunkWriter) optParam(p *GeomParam) {
	if p == nil {
		w.write(uint8(0))
		return
	}
	w.write(uint8(1))
	w.param(p)
}

func (w *chunkWriter) param(p *GeomParam) {
	w.str(p.Name)
	w.write(uint8(p.Type))
	w.write(uint8(p.Scope))
	w.write(boolByte(p.UV))
	w.sampling(p.Sampling)
	w.write(uint32(p.NumSamples()))
	for i := range p.Values {
		w.write(uint32(len(p.Values[i])))
		w.write(p.Values[i])
		var idx []uint32
		if i < len(p.Indices) {
			idx = p.Indices[i]
		}
		w.write(uint32(len(idx)))
		w.write(idx)
	}
}

func (w *chunkWriter) vec3s(v []math.Vec3) {
	w.write(uint32(len(v)))
	w.write(v)
}

func (w *chunkWriter) int32s(v []int32) {
	w.write(uint32(len(v)))
	w.write(v)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// chunkReader deserializes the tree, carrying the first read error.
type chunkReader struct {
	data []byte
	off  int
	err  error
}

func (r *chunkReader) fail() {
	if r.err == nil {
		r.err = ErrTruncatedData
	}
}

func (r *chunkReader) read(v any) {
	if r.err != nil {
		return
	}
	n := binary.Size(v)
	if n < 0 || r.off+n > len(r.data) {
		r.fail()
		return
	}
	_, r.err = binary.Decode(r.data[r.off:r.off+n], binary.LittleEndian, v)
	r.off += n
}

func (r *chunkReader) u8() uint8 {
	var v uint8
	r.read(&v)
	return v
}

func (r *chunkReader) u32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

func (r *chunkReader) count(limit int) int {
	n := int(r.u32())
	if r.err == nil && n > limit {
		r.err = ErrCorruptData
	}
	if r.err != nil {
		return 0
	}
	return n
}

func (r *chunkReader) str() string {
	var n uint16
	r.read(&n)
	if r.err != nil {
		return ""
	}
	if r.off+int(n) > len(r.data) {
		r.fail()
		return ""
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s
}

func (r *chunkReader) sampling() timesample.TimeSampling {
	var ts timesample.TimeSampling
	r.read(&ts.Start)
	r.read(&ts.Interval)
	ts.Count = int(r.u32())
	return ts
}

func (r *chunkReader) node(parent *Node) *Node {
	kind := NodeKind(r.u8())
	name := r.str()
	if r.err != nil {
		return nil
	}

	n := &Node{name: name, kind: kind, parent: parent}

	switch kind {
	case KindTransform:
		x := &XformData{Sampling: r.sampling()}
		numMats := r.count(maxSamples)
		x.Matrices = make([]math.Mat4, numMats)
		for i := range x.Matrices {
			r.read(&x.Matrices[i])
		}
		n.Xform = x
	case KindPolyMesh:
		n.Mesh = r.mesh()
	case KindCurves:
		c := &CurvesData{Sampling: r.sampling()}
		numSamples := r.count(maxSamples)
		for i := 0; i < numSamples; i++ {
			c.Positions = append(c.Positions, r.vec3s())
			c.NumVertices = append(c.NumVertices, r.int32s())
		}
		n.Curves = c
	}

	numChildren := r.count(maxChildren)
	for i := 0; i < numChildren; i++ {
		child := r.node(n)
		if r.err != nil {
			return nil
		}
		n.children = append(n.children, child)
	}
	return n
}

func (r *chunkReader) mesh() *MeshData {
	m := &MeshData{Sampling: r.sampling()}
	numSamples := r.count(maxSamples)
	for i := 0; i < numSamples; i++ {
		m.Positions = append(m.Positions, r.vec3s())
		m.FaceCounts = append(m.FaceCounts, r.int32s())
		m.FaceIndices = append(m.FaceIndices, r.int32s())
	}
	m.UVs = r.optParam()
	m.Normals = r.optParam()
	var paramCount uint16
	r.read(&paramCount)
	for i := 0; i < int(paramCount); i++ {
		m.Params = append(m.Params, r.param())
	}
	return m
}

func (r *chunkReader) optParam() *GeomParam {
	if r.u8() == 0 {
		return nil
	}
	return r.param()
}

func (r *chunkReader) param() *GeomParam {
	p := &GeomParam{Name: r.str()}
	p.Type = ParamType(r.u8())
	p.Scope = Scope(r.u8())
	p.UV = r.u8() != 0
	p.Sampling = r.sampling()
	numSamples := r.count(maxSamples)
	for i := 0; i < numSamples; i++ {
		vals := make([]float32, r.count(maxElements))
		r.read(vals)
		idx := make([]uint32, r.count(maxElements))
		r.read(idx)
		p.Values = append(p.Values, vals)
		p.Indices = append(p.Indices, idx)
	}
	return p
}

func (r *chunkReader) vec3s() []math.Vec3 {
	v := make([]math.Vec3, r.count(maxElements))
	r.read(v)
	return v
}

func (r *chunkReader) int32s() []int32 {
	v := make([]int32, r.count(maxElements))
	r.read(v)
	return v
}
