package render

import (
	"github.com/Faultbox/abcproc/pkg/math"
)

// Object places a geometry in the scene with a world transform.
type Object struct {
	Name     string
	Geometry Geometry
	Tfm      math.Mat4

	tfmModified bool
}

// SetTfm replaces the object transform, flagging it modified only when
// the matrix differs.
func (o *Object) SetTfm(tfm math.Mat4) {
	if o.Tfm == tfm {
		return
	}
	o.Tfm = tfm
	o.tfmModified = true
}

// TagUpdate records an object-level change, such as a moved transform.
func (o *Object) TagUpdate(scene *Scene) {
	scene.tagGeometryUpdate(false)
}

// TfmModified reports whether the transform changed since the last
// ClearModified.
func (o *Object) TfmModified() bool { return o.tfmModified }

// ClearModified resets the transform modified flag.
func (o *Object) ClearModified() { o.tfmModified = false }

// Shader names a surface shader and the standard attributes it needs
// from geometry it is attached to.
type Shader struct {
	Name string

	attributes []AttributeStandard
	names      []string
}

// RequestAttribute marks a standard attribute as needed by the shader.
func (s *Shader) RequestAttribute(std AttributeStandard) {
	for _, a := range s.attributes {
		if a == std {
			return
		}
	}
	s.attributes = append(s.attributes, std)
}

// RequestedAttributes returns the standard attributes the shader needs.
func (s *Shader) RequestedAttributes() []AttributeStandard {
	return s.attributes
}

// RequestAttributeName marks an archive attribute, identified by name,
// as needed by the shader.
func (s *Shader) RequestAttributeName(name string) {
	for _, n := range s.names {
		if n == name {
			return
		}
	}
	s.names = append(s.names, name)
}

// RequestedNames returns the named attributes the shader needs.
func (s *Shader) RequestedNames() []string {
	return s.names
}

// Needs reports whether the shader requested the given attribute.
func (s *Shader) Needs(std AttributeStandard) bool {
	for _, a := range s.attributes {
		if a == std {
			return true
		}
	}
	return false
}

// Scene collects geometries, objects and shaders, and counts update
// and rebuild tags so callers can tell whether a sync changed anything.
type Scene struct {
	Geometries []Geometry
	Objects    []*Object
	Shaders    []*Shader

	updateCount  int
	rebuildCount int
}

// NewScene returns an empty scene with a default shader at index 0.
func NewScene() *Scene {
	s := &Scene{}
	s.AddShader(&Shader{Name: "default"})
	return s
}

// CreateMesh adds a new empty mesh to the scene.
func (s *Scene) CreateMesh(name string) *Mesh {
	m := &Mesh{Name: name}
	s.Geometries = append(s.Geometries, m)
	return m
}

// CreateHair adds a new empty hair geometry to the scene.
func (s *Scene) CreateHair(name string) *Hair {
	h := &Hair{Name: name}
	s.Geometries = append(s.Geometries, h)
	return h
}

// CreateObject adds a new object referencing the given geometry.
func (s *Scene) CreateObject(name string, geom Geometry) *Object {
	o := &Object{Name: name, Geometry: geom, Tfm: math.Identity()}
	s.Objects = append(s.Objects, o)
	return o
}

// AddShader appends a shader and returns its index.
func (s *Scene) AddShader(sh *Shader) int {
	s.Shaders = append(s.Shaders, sh)
	return len(s.Shaders) - 1
}

// ShaderByName returns the named shader, or nil.
func (s *Scene) ShaderByName(name string) *Shader {
	for _, sh := range s.Shaders {
		if sh.Name == name {
			return sh
		}
	}
	return nil
}

// UpdateCount returns how many geometry updates were tagged.
func (s *Scene) UpdateCount() int { return s.updateCount }

// RebuildCount returns how many topology rebuilds were tagged.
func (s *Scene) RebuildCount() int { return s.rebuildCount }

func (s *Scene) tagGeometryUpdate(rebuild bool) {
	s.updateCount++
	if rebuild {
		s.rebuildCount++
	}
}

func (s *Scene) geometryNeedsAttribute(geom Geometry, std AttributeStandard) bool {
	used := false
	for _, obj := range s.Objects {
		if obj.Geometry == geom {
			used = true
			break
		}
	}
	if !used {
		return false
	}
	for _, sh := range s.Shaders {
		if sh.Needs(std) {
			return true
		}
	}
	return false
}
