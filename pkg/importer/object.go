package importer

import (
	"github.com/Faultbox/abcproc/pkg/gca"
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
)

// Object binds one archive node to the render scene: cached channel
// data, the node's accumulated transform samples, and the render
// object created for it.
type Object struct {
	Path string

	// Shaders assigned to the object; attribute requests are gathered
	// from these. An object with none uses the scene's default shader.
	Shaders []*render.Shader

	node         *gca.Node
	xformSamples *MatrixSampleMap
	cachedData   CachedData

	renderObject *render.Object
	dataLoaded   bool
}

// NewObject returns an importer object for the given archive path.
func NewObject(path string) *Object {
	return &Object{Path: path}
}

// Node returns the archive node bound by the hierarchy walk, or nil if
// the path matched nothing.
func (o *Object) Node() *gca.Node { return o.node }

// RenderObject returns the render object created during the first
// read, or nil before that.
func (o *Object) RenderObject() *render.Object { return o.renderObject }

// DataLoaded reports whether the cache holds the node's data.
func (o *Object) DataLoaded() bool { return o.dataLoaded }

// CachedData exposes the loaded channels, primarily for tests and
// tooling.
func (o *Object) CachedData() *CachedData { return &o.cachedData }

func (o *Object) bind(node *gca.Node, samples *MatrixSampleMap) {
	o.node = node
	o.xformSamples = samples
}

// AddShader assigns a shader to the object.
func (o *Object) AddShader(sh *render.Shader) {
	for _, s := range o.Shaders {
		if s == sh {
			return
		}
	}
	o.Shaders = append(o.Shaders, sh)
}

// requestedAttributeNames collects, without duplicates, every archive
// attribute name requested by the object's shaders.
func (o *Object) requestedAttributeNames(scene *render.Scene) []string {
	shaders := o.Shaders
	if len(shaders) == 0 {
		if def := scene.ShaderByName("default"); def != nil {
			shaders = []*render.Shader{def}
		}
	}

	var names []string
	seen := make(map[string]bool)
	for _, sh := range shaders {
		for _, name := range sh.RequestedNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// setupTransformCache converts the accumulated transform samples to
// Z-up and stores them in the transform channel. A transform whose
// samples are all equal collapses to a single sample at time zero; a
// leaf can carry multiple identical samples when a sibling animates.
func (o *Object) setupTransformCache() {
	o.cachedData.Transforms.Clear()

	if sampling := o.cachedData.Vertices.TimeSampling(); sampling.Count > 0 {
		o.cachedData.Transforms.SetTimeSampling(sampling)
	} else if sampling := o.cachedData.CurveKeys.TimeSampling(); sampling.Count > 0 {
		o.cachedData.Transforms.SetTimeSampling(sampling)
	}

	if o.xformSamples == nil || o.xformSamples.Len() == 0 {
		o.cachedData.Transforms.AddData(math.Identity(), 0)
		return
	}

	first := o.xformSamples.Matrix(0)
	animated := false
	for i := 1; i < o.xformSamples.Len(); i++ {
		if o.xformSamples.Matrix(i) != first {
			animated = true
			break
		}
	}

	if !animated {
		o.cachedData.Transforms.AddData(MatYUpToZUp(first), 0)
		return
	}
	for i := 0; i < o.xformSamples.Len(); i++ {
		o.cachedData.Transforms.AddData(MatYUpToZUp(o.xformSamples.Matrix(i)), o.xformSamples.Time(i))
	}
}
