package render

import (
	"slices"

	"github.com/Faultbox/abcproc/pkg/math"
)

// Geometry is the interface shared by renderable geometry types.
type Geometry interface {
	GeomName() string
	IsModified() bool
	ClearModified()
	AttributeSet() *AttributeSet
}

// Mesh is a triangle mesh. Faces arriving as n-gons must be
// triangulated by the importer before calling SetTriangles.
type Mesh struct {
	Name string

	Verts     []math.Vec3
	Triangles []int32
	Shader    []int32
	Smooth    []bool

	Attributes AttributeSet

	vertsModified     bool
	trianglesModified bool
}

func (m *Mesh) GeomName() string            { return m.Name }
func (m *Mesh) AttributeSet() *AttributeSet { return &m.Attributes }

// SetVerts replaces the vertex positions. The mesh is flagged modified
// only when the values actually differ.
func (m *Mesh) SetVerts(verts []math.Vec3) {
	if slices.Equal(m.Verts, verts) {
		return
	}
	m.Verts = verts
	m.vertsModified = true
}

// SetTriangles replaces the flat triangle index list (3 indices per
// triangle). A changed list flags the topology modified.
func (m *Mesh) SetTriangles(tris []int32) {
	if slices.Equal(m.Triangles, tris) {
		return
	}
	m.Triangles = tris
	m.trianglesModified = true
}

// SetShader replaces the per-triangle shader indices.
func (m *Mesh) SetShader(shader []int32) {
	if slices.Equal(m.Shader, shader) {
		return
	}
	m.Shader = shader
	m.trianglesModified = true
}

// SetSmooth replaces the per-triangle smooth flags.
func (m *Mesh) SetSmooth(smooth []bool) {
	if slices.Equal(m.Smooth, smooth) {
		return
	}
	m.Smooth = smooth
	m.trianglesModified = true
}

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int {
	return len(m.Triangles) / 3
}

// VertsModified reports whether vertex positions changed since the
// last ClearModified.
func (m *Mesh) VertsModified() bool { return m.vertsModified }

// TrianglesModified reports whether the topology changed since the
// last ClearModified.
func (m *Mesh) TrianglesModified() bool { return m.trianglesModified }

// IsModified reports whether any mesh data changed since the last
// ClearModified.
func (m *Mesh) IsModified() bool {
	return m.vertsModified || m.trianglesModified || m.Attributes.Modified()
}

// ClearModified resets all modified flags after a host sync.
func (m *Mesh) ClearModified() {
	m.vertsModified = false
	m.trianglesModified = false
	m.Attributes.ClearModified()
}

// NeedAttribute reports whether any shader attached to the scene's
// objects using this geometry requests the given standard attribute.
func (m *Mesh) NeedAttribute(scene *Scene, std AttributeStandard) bool {
	return scene.geometryNeedsAttribute(m, std)
}

// TagUpdate records a geometry change on the scene. rebuild marks a
// topology change requiring acceleration structure rebuilds, not just
// a data refresh.
func (m *Mesh) TagUpdate(scene *Scene, rebuild bool) {
	scene.tagGeometryUpdate(rebuild)
}

// Hair is a set of curves, stored as a flat key array with per-curve
// first-key offsets.
type Hair struct {
	Name string

	CurveKeys     []math.Vec3
	CurveRadius   []float32
	CurveFirstKey []int32
	CurveShader   []int32

	Attributes AttributeSet

	keysModified   bool
	radiusModified bool
	curvesModified bool
}

func (h *Hair) GeomName() string            { return h.Name }
func (h *Hair) AttributeSet() *AttributeSet { return &h.Attributes }

// NumCurves returns the curve count.
func (h *Hair) NumCurves() int {
	return len(h.CurveFirstKey)
}

// SetCurveKeys replaces the key positions and radii, flagging only the
// parts whose values differ.
func (h *Hair) SetCurveKeys(keys []math.Vec3, radius []float32) {
	if !slices.Equal(h.CurveKeys, keys) {
		h.CurveKeys = keys
		h.keysModified = true
	}
	if !slices.Equal(h.CurveRadius, radius) {
		h.CurveRadius = radius
		h.radiusModified = true
	}
}

// SetCurves replaces the per-curve offsets and shader indices.
func (h *Hair) SetCurves(firstKey, shader []int32) {
	if slices.Equal(h.CurveFirstKey, firstKey) && slices.Equal(h.CurveShader, shader) {
		return
	}
	h.CurveFirstKey = firstKey
	h.CurveShader = shader
	h.curvesModified = true
}

// KeysModified reports whether key positions changed since the last
// ClearModified.
func (h *Hair) KeysModified() bool { return h.keysModified }

// RadiusModified reports whether radii changed since the last
// ClearModified.
func (h *Hair) RadiusModified() bool { return h.radiusModified }

// IsModified reports whether any hair data changed since the last
// ClearModified.
func (h *Hair) IsModified() bool {
	return h.keysModified || h.radiusModified || h.curvesModified || h.Attributes.Modified()
}

// ClearModified resets all modified flags after a host sync.
func (h *Hair) ClearModified() {
	h.keysModified = false
	h.radiusModified = false
	h.curvesModified = false
	h.Attributes.ClearModified()
}

// NeedAttribute reports whether any shader attached to the scene's
// objects using this geometry requests the given standard attribute.
func (h *Hair) NeedAttribute(scene *Scene, std AttributeStandard) bool {
	return scene.geometryNeedsAttribute(h, std)
}

// TagUpdate records a geometry change on the scene.
func (h *Hair) TagUpdate(scene *Scene, rebuild bool) {
	scene.tagGeometryUpdate(rebuild)
}
