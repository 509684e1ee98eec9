package importer

import (
	"sort"

	"github.com/Faultbox/abcproc/pkg/math"
)

// MatrixSampleMap is a time-ordered set of matrix samples for one
// transform.
type MatrixSampleMap struct {
	times    []float64
	matrices []math.Mat4
}

// Add inserts or overwrites the sample at time t, keeping the map
// sorted.
func (m *MatrixSampleMap) Add(t float64, mat math.Mat4) {
	i := sort.SearchFloat64s(m.times, t)
	if i < len(m.times) && m.times[i] == t {
		m.matrices[i] = mat
		return
	}
	m.times = append(m.times, 0)
	m.matrices = append(m.matrices, math.Mat4{})
	copy(m.times[i+1:], m.times[i:])
	copy(m.matrices[i+1:], m.matrices[i:])
	m.times[i] = t
	m.matrices[i] = mat
}

// Len returns the number of samples.
func (m *MatrixSampleMap) Len() int {
	return len(m.times)
}

// Time returns the time of the i-th sample.
func (m *MatrixSampleMap) Time(i int) float64 {
	return m.times[i]
}

// Matrix returns the matrix of the i-th sample.
func (m *MatrixSampleMap) Matrix(i int) math.Mat4 {
	return m.matrices[i]
}

// Lookup returns the matrix stored exactly at time t.
func (m *MatrixSampleMap) Lookup(t float64) (math.Mat4, bool) {
	i := sort.SearchFloat64s(m.times, t)
	if i < len(m.times) && m.times[i] == t {
		return m.matrices[i], true
	}
	return math.Mat4{}, false
}

// Clone returns an independent copy of the sample map.
func (m *MatrixSampleMap) Clone() *MatrixSampleMap {
	c := &MatrixSampleMap{
		times:    make([]float64, len(m.times)),
		matrices: make([]math.Mat4, len(m.matrices)),
	}
	copy(c.times, m.times)
	copy(c.matrices, m.matrices)
	return c
}

// InterpolateMatrix evaluates the sampled transform at time t. Outside
// the sampled range the nearest end sample is returned. Between
// samples the matrices are decomposed and blended component-wise, with
// spherical interpolation for the rotation.
func InterpolateMatrix(samples *MatrixSampleMap, t float64) math.Mat4 {
	if samples == nil || samples.Len() == 0 {
		return math.Identity()
	}
	if samples.Len() == 1 {
		return samples.Matrix(0)
	}
	if mat, ok := samples.Lookup(t); ok {
		return mat
	}
	if t <= samples.Time(0) {
		return samples.Matrix(0)
	}
	last := samples.Len() - 1
	if t >= samples.Time(last) {
		return samples.Matrix(last)
	}

	i := sort.SearchFloat64s(samples.times, t)
	t0, t1 := samples.Time(i-1), samples.Time(i)
	w := float32((t - t0) / (t1 - t0))

	s0, sh0, r0, tr0 := samples.Matrix(i - 1).Decompose()
	s1, sh1, r1, tr1 := samples.Matrix(i).Decompose()

	return math.Compose(
		s0.Lerp(s1, w),
		sh0.Lerp(sh1, w),
		r0.Slerp(r1, w),
		tr0.Lerp(tr1, w),
	)
}

// ConcatenateSamples combines a parent and a child transform over the
// union of their sample times, producing the child's accumulated
// transform. Each side is interpolated at times only the other side
// has.
func ConcatenateSamples(parent, local *MatrixSampleMap) *MatrixSampleMap {
	times := make([]float64, 0, parent.Len()+local.Len())
	times = append(times, parent.times...)
	for _, t := range local.times {
		if _, ok := parent.Lookup(t); !ok {
			times = append(times, t)
		}
	}
	sort.Float64s(times)

	out := &MatrixSampleMap{}
	for _, t := range times {
		p := InterpolateMatrix(parent, t)
		l := InterpolateMatrix(local, t)
		out.Add(t, p.Mul(l))
	}
	return out
}

// VecYUpToZUp converts a direction or point from Y-up to Z-up.
func VecYUpToZUp(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.X, Y: -v.Z, Z: v.Y}
}

// VecZUpToYUp converts a direction or point from Z-up back to Y-up.
func VecZUpToYUp(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}

// MatYUpToZUp converts a transform from Y-up to Z-up by remapping its
// decomposed components. Shear does not survive the conversion.
func MatYUpToZUp(m math.Mat4) math.Mat4 {
	scale, _, rot, trans := m.Decompose()

	rot = math.Quat{X: rot.X, Y: -rot.Z, Z: rot.Y, W: rot.W}
	scale = math.Vec3{X: scale.X, Y: scale.Z, Z: scale.Y}
	trans = VecYUpToZUp(trans)

	r := rot.ToMat4().Mul(math.Scale(scale.X, scale.Y, scale.Z))
	return math.Translate(trans.X, trans.Y, trans.Z).Mul(r)
}
