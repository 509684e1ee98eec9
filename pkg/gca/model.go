// Package gca reads and writes geometry cache archives: hierarchical
// scene trees whose transform and geometry properties carry
// time-sampled data. An archive is loaded fully into memory on open;
// nodes expose typed per-sample accessors for the importer.
package gca

import (
	"fmt"
	"strings"

	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

// NodeKind identifies what a tree node carries.
type NodeKind uint8

const (
	KindTransform NodeKind = iota
	KindPolyMesh
	KindCurves
	KindFaceSet
	KindSubD
	KindPoints
	KindNuPatch
)

// String returns a human-readable node kind name.
func (k NodeKind) String() string {
	switch k {
	case KindTransform:
		return "Transform"
	case KindPolyMesh:
		return "PolyMesh"
	case KindCurves:
		return "Curves"
	case KindFaceSet:
		return "FaceSet"
	case KindSubD:
		return "SubD"
	case KindPoints:
		return "Points"
	case KindNuPatch:
		return "NuPatch"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Scope declares which geometry element a parameter's values map to.
type Scope uint8

const (
	ScopeConstant Scope = iota
	ScopeUniform
	ScopeVarying
	ScopeVertex
	ScopeFaceVarying
)

// String returns a human-readable scope name.
func (s Scope) String() string {
	switch s {
	case ScopeConstant:
		return "constant"
	case ScopeUniform:
		return "uniform"
	case ScopeVarying:
		return "varying"
	case ScopeVertex:
		return "vertex"
	case ScopeFaceVarying:
		return "facevarying"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParamType declares the value type of a geometry parameter.
type ParamType uint8

const (
	TypeFloat2 ParamType = iota
	TypeFloat3
	TypeColor3
	TypeColor4
)

// Components returns the number of float components per element.
func (t ParamType) Components() int {
	switch t {
	case TypeFloat2:
		return 2
	case TypeFloat3, TypeColor3:
		return 3
	case TypeColor4:
		return 4
	default:
		return 0
	}
}

// String returns a human-readable type name.
func (t ParamType) String() string {
	switch t {
	case TypeFloat2:
		return "float2"
	case TypeFloat3:
		return "float3"
	case TypeColor3:
		return "color3"
	case TypeColor4:
		return "color4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// GeomParam is a named, time-sampled geometry parameter. Values holds
// one flattened component array per sample; Indices, when present,
// maps per-corner slots onto shared value entries.
type GeomParam struct {
	Name     string
	Type     ParamType
	Scope    Scope
	UV       bool // float2 parameter flagged as texture coordinates
	Sampling timesample.TimeSampling
	Values   [][]float32
	Indices  [][]uint32
}

// NumSamples returns the number of recorded samples.
func (p *GeomParam) NumSamples() int {
	return len(p.Values)
}

// XformData holds a transform node's per-sample matrices. A node with
// no matrices declares no transform operations and passes its parent's
// accumulated transform through unchanged.
type XformData struct {
	Sampling timesample.TimeSampling
	Matrices []math.Mat4
}

// NumSamples returns the number of recorded samples.
func (x *XformData) NumSamples() int {
	return len(x.Matrices)
}

// MeshData holds a polygon mesh node's time-sampled properties.
type MeshData struct {
	Sampling    timesample.TimeSampling
	Positions   [][]math.Vec3
	FaceCounts  [][]int32
	FaceIndices [][]int32
	UVs         *GeomParam // default texture coordinates, optional
	Normals     *GeomParam // default normals, optional
	Params      []*GeomParam
}

// NumSamples returns the number of recorded geometry samples.
func (m *MeshData) NumSamples() int {
	return len(m.Positions)
}

// Param returns the side-channel parameter with the given name, or nil.
func (m *MeshData) Param(name string) *GeomParam {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// CurvesData holds a curves node's time-sampled properties. Positions
// is flat across all curves of a sample; NumVertices declares how many
// consecutive keys belong to each curve.
type CurvesData struct {
	Sampling    timesample.TimeSampling
	Positions   [][]math.Vec3
	NumVertices [][]int32
}

// NumSamples returns the number of recorded geometry samples.
func (c *CurvesData) NumSamples() int {
	return len(c.Positions)
}

// Node is one entry of the archive tree. Exactly one of Xform, Mesh or
// Curves is set, matching the node kind; placeholder kinds carry none.
type Node struct {
	name     string
	kind     NodeKind
	parent   *Node
	children []*Node

	Xform  *XformData
	Mesh   *MeshData
	Curves *CurvesData
}

// Name returns the node's own name.
func (n *Node) Name() string {
	return n.name
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Children returns the node's children in declaration order.
func (n *Node) Children() []*Node {
	return n.children
}

// FullPath returns the slash-separated path from the root, e.g.
// "/group/mesh". The root itself is "/".
func (n *Node) FullPath() string {
	if n.parent == nil {
		return "/"
	}
	var parts []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// AddChild appends a child node of the given kind, creating its typed
// payload, and returns it.
func (n *Node) AddChild(kind NodeKind, name string) *Node {
	child := &Node{name: name, kind: kind, parent: n}
	switch kind {
	case KindTransform:
		child.Xform = &XformData{}
	case KindPolyMesh:
		child.Mesh = &MeshData{}
	case KindCurves:
		child.Curves = &CurvesData{}
	}
	n.children = append(n.children, child)
	return child
}

// Archive is a loaded geometry cache archive.
type Archive struct {
	path string
	root *Node
}

// New returns an empty archive with a bare root node.
func New() *Archive {
	return &Archive{root: &Node{kind: KindTransform, Xform: &XformData{}}}
}

// Root returns the archive's root node. The root carries no data of
// its own; real content hangs off its children.
func (a *Archive) Root() *Node {
	return a.root
}

// Path returns the file path the archive was opened from, or "" for
// archives built in memory.
func (a *Archive) Path() string {
	return a.path
}

// FindNode returns the node at the given full path, or nil.
func (a *Archive) FindNode(path string) *Node {
	if path == "/" || path == "" {
		return a.root
	}
	cur := a.root
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		var next *Node
		for _, c := range cur.children {
			if c.name == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}
