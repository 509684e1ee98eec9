package importer

import (
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

// AttrSample holds one time sample of an attribute. The slice matching
// the owning attribute's type is populated.
type AttrSample struct {
	Floats  []float32
	Float2s []math.Vec2
	Vecs    []math.Vec3
	Bytes   [][4]byte
}

// CachedAttribute is the time-sampled form of one geometry attribute.
type CachedAttribute struct {
	Name     string
	Standard render.AttributeStandard
	Type     render.AttributeType
	Element  render.AttributeElement
	Data     timesample.Store[AttrSample]
}

// CachedData holds every time-sampled channel loaded from an archive
// node, ready to be pushed to render geometry frame by frame.
type CachedData struct {
	Transforms timesample.Store[math.Mat4]

	Vertices      timesample.Store[[]math.Vec3]
	Triangles     timesample.Store[[]int32]
	TriangleLoops timesample.Store[[][3]int32]
	ShaderIndices timesample.Store[[]int32]

	CurveFirstKey timesample.Store[[]int32]
	CurveKeys     timesample.Store[[]math.Vec3]
	CurveRadius   timesample.Store[[]float32]
	CurveShader   timesample.Store[[]int32]

	Attributes []*CachedAttribute
}

// Clear drops all cached samples and attributes.
func (c *CachedData) Clear() {
	c.Transforms.Clear()
	c.Vertices.Clear()
	c.Triangles.Clear()
	c.TriangleLoops.Clear()
	c.ShaderIndices.Clear()
	c.CurveFirstKey.Clear()
	c.CurveKeys.Clear()
	c.CurveRadius.Clear()
	c.CurveShader.Clear()
	c.Attributes = nil
}

// AddAttribute returns the cached attribute with the given name,
// creating an empty one if needed.
func (c *CachedData) AddAttribute(name string) *CachedAttribute {
	for _, attr := range c.Attributes {
		if attr.Name == name {
			return attr
		}
	}
	attr := &CachedAttribute{Name: name}
	c.Attributes = append(c.Attributes, attr)
	return attr
}

// FindAttribute returns the cached attribute with the given name, or nil.
func (c *CachedData) FindAttribute(name string) *CachedAttribute {
	for _, attr := range c.Attributes {
		if attr.Name == name {
			return attr
		}
	}
	return nil
}

// IsConstant reports whether no channel has more than one sample, in
// which case per-frame updates can be skipped entirely after the first
// push.
func (c *CachedData) IsConstant() bool {
	if c.Transforms.NumSamples() > 1 ||
		c.Vertices.NumSamples() > 1 ||
		c.Triangles.NumSamples() > 1 ||
		c.TriangleLoops.NumSamples() > 1 ||
		c.ShaderIndices.NumSamples() > 1 ||
		c.CurveFirstKey.NumSamples() > 1 ||
		c.CurveKeys.NumSamples() > 1 ||
		c.CurveRadius.NumSamples() > 1 ||
		c.CurveShader.NumSamples() > 1 {
		return false
	}
	for _, attr := range c.Attributes {
		if attr.Data.NumSamples() > 1 {
			return false
		}
	}
	return true
}
