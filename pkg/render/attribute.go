// Package render holds the scene-side geometry representation that
// cache importers populate: meshes, hair, objects, shaders and their
// attribute sets, with modified-state tracking so a host renderer can
// rebuild only what changed.
package render

import (
	"github.com/Faultbox/abcproc/pkg/math"
)

// AttributeStandard identifies well-known attributes that shaders can
// request by role rather than by name.
type AttributeStandard int

const (
	StdNone AttributeStandard = iota
	StdVertexNormal
	StdFaceNormal
	StdUV
	StdGenerated
)

func (s AttributeStandard) String() string {
	switch s {
	case StdVertexNormal:
		return "vertex_normal"
	case StdFaceNormal:
		return "face_normal"
	case StdUV:
		return "uv"
	case StdGenerated:
		return "generated"
	default:
		return "none"
	}
}

// Name returns the reserved attribute name for a standard attribute.
func (s AttributeStandard) Name() string {
	if s == StdNone {
		return ""
	}
	return "std::" + s.String()
}

// AttributeElement describes what an attribute's values are attached to.
type AttributeElement int

const (
	ElementConstant AttributeElement = iota
	ElementVertex
	ElementFace
	ElementCorner
	ElementCornerByte
	ElementCurve
	ElementCurveKey
)

// AttributeType is the per-element value type.
type AttributeType int

const (
	TypeFloat AttributeType = iota
	TypeFloat2
	TypeVector
	TypeRGBA
)

// Attribute is a named buffer of per-element values on a geometry.
// Exactly one of the typed slices is populated, selected by Type.
type Attribute struct {
	Name     string
	Standard AttributeStandard
	Type     AttributeType
	Element  AttributeElement

	Floats  []float32
	Float2s []math.Vec2
	Vecs    []math.Vec3
	Bytes   [][4]byte

	Modified bool
}

// Resize allocates the typed buffer for n elements, discarding any
// previous contents.
func (a *Attribute) Resize(n int) {
	switch a.Type {
	case TypeFloat:
		a.Floats = make([]float32, n)
	case TypeFloat2:
		a.Float2s = make([]math.Vec2, n)
	case TypeVector:
		a.Vecs = make([]math.Vec3, n)
	case TypeRGBA:
		a.Bytes = make([][4]byte, n)
	}
}

// Len returns the number of elements currently stored.
func (a *Attribute) Len() int {
	switch a.Type {
	case TypeFloat:
		return len(a.Floats)
	case TypeFloat2:
		return len(a.Float2s)
	case TypeVector:
		return len(a.Vecs)
	case TypeRGBA:
		return len(a.Bytes)
	}
	return 0
}

// AttributeSet owns the attributes of one geometry.
type AttributeSet struct {
	attributes []*Attribute
}

// Add returns the attribute for a standard role, creating it with the
// conventional type and element if it does not exist yet.
func (s *AttributeSet) Add(std AttributeStandard) *Attribute {
	if attr := s.FindStandard(std); attr != nil {
		return attr
	}

	attr := &Attribute{Name: std.Name(), Standard: std}
	switch std {
	case StdVertexNormal:
		attr.Type, attr.Element = TypeVector, ElementVertex
	case StdFaceNormal:
		attr.Type, attr.Element = TypeVector, ElementFace
	case StdUV:
		attr.Type, attr.Element = TypeFloat2, ElementCorner
	case StdGenerated:
		attr.Type, attr.Element = TypeVector, ElementVertex
	}
	s.attributes = append(s.attributes, attr)
	return attr
}

// AddNamed returns the named attribute, creating it if needed.
func (s *AttributeSet) AddNamed(name string, typ AttributeType, elem AttributeElement) *Attribute {
	if attr := s.Find(name); attr != nil {
		return attr
	}
	attr := &Attribute{Name: name, Type: typ, Element: elem}
	s.attributes = append(s.attributes, attr)
	return attr
}

// Find returns the attribute with the given name, or nil.
func (s *AttributeSet) Find(name string) *Attribute {
	for _, attr := range s.attributes {
		if attr.Name == name {
			return attr
		}
	}
	return nil
}

// FindStandard returns the attribute with the given standard role, or nil.
func (s *AttributeSet) FindStandard(std AttributeStandard) *Attribute {
	if std == StdNone {
		return nil
	}
	for _, attr := range s.attributes {
		if attr.Standard == std {
			return attr
		}
	}
	return nil
}

// Remove deletes the named attribute if present.
func (s *AttributeSet) Remove(name string) {
	for i, attr := range s.attributes {
		if attr.Name == name {
			s.attributes = append(s.attributes[:i], s.attributes[i+1:]...)
			return
		}
	}
}

// RemoveStandard deletes the attribute with the given role if present.
func (s *AttributeSet) RemoveStandard(std AttributeStandard) {
	for i, attr := range s.attributes {
		if attr.Standard == std && std != StdNone {
			s.attributes = append(s.attributes[:i], s.attributes[i+1:]...)
			return
		}
	}
}

// List returns the attributes in insertion order.
func (s *AttributeSet) List() []*Attribute {
	return s.attributes
}

// Modified reports whether any attribute in the set is flagged modified.
func (s *AttributeSet) Modified() bool {
	for _, attr := range s.attributes {
		if attr.Modified {
			return true
		}
	}
	return false
}

// ClearModified resets the modified flag on every attribute.
func (s *AttributeSet) ClearModified() {
	for _, attr := range s.attributes {
		attr.Modified = false
	}
}
