package importer

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/abcproc/pkg/gca"
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
)

// Procedural loads a geometry cache archive and keeps a render scene
// in sync with it as the frame changes. Opening the archive, walking
// its hierarchy and filling the per-object caches happen lazily on the
// first Generate; later calls only push the samples that moved.
type Procedural struct {
	filePath  string
	frame     float64
	frameRate float64

	objects map[string]*Object
	archive *gca.Archive

	objectsLoaded bool
	modified      bool

	log *zap.Logger
}

// NewProcedural returns an empty procedural at 24 frames per second.
func NewProcedural() *Procedural {
	return &Procedural{
		frameRate: 24,
		objects:   make(map[string]*Object),
		modified:  true,
		log:       zap.NewNop(),
	}
}

// SetLogger replaces the procedural's logger.
func (p *Procedural) SetLogger(log *zap.Logger) {
	if log != nil {
		p.log = log
	}
}

// AddObject registers an archive path to import and returns its
// importer object. Adding the same path twice returns the existing
// object.
func (p *Procedural) AddObject(path string) *Object {
	if obj, ok := p.objects[path]; ok {
		return obj
	}
	obj := NewObject(path)
	p.objects[path] = obj
	p.objectsLoaded = false
	p.modified = true
	return obj
}

// Objects returns the registered importer objects sorted by path.
func (p *Procedural) Objects() []*Object {
	paths := make([]string, 0, len(p.objects))
	for path := range p.objects {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	objs := make([]*Object, len(paths))
	for i, path := range paths {
		objs[i] = p.objects[path]
	}
	return objs
}

// SetFilePath points the procedural at a new archive, discarding any
// loaded state.
func (p *Procedural) SetFilePath(path string) {
	if p.filePath == path {
		return
	}
	p.filePath = path
	p.archive = nil
	p.objectsLoaded = false
	p.modified = true
	for _, obj := range p.objects {
		obj.cachedData.Clear()
		obj.dataLoaded = false
		obj.node = nil
		obj.xformSamples = nil
	}
}

// FilePath returns the archive path.
func (p *Procedural) FilePath() string { return p.filePath }

// SetFrame sets the frame to evaluate on the next Generate.
func (p *Procedural) SetFrame(frame float64) {
	if p.frame != frame {
		p.frame = frame
		p.modified = true
	}
}

// Frame returns the current frame.
func (p *Procedural) Frame() float64 { return p.frame }

// SetFrameRate sets the archive frame rate used to map frames to
// sample times.
func (p *Procedural) SetFrameRate(rate float64) {
	if rate > 0 && p.frameRate != rate {
		p.frameRate = rate
		p.modified = true
	}
}

// FrameRate returns the archive frame rate.
func (p *Procedural) FrameRate() float64 { return p.frameRate }

// IsModified reports whether the next Generate has work to do.
func (p *Procedural) IsModified() bool { return p.modified }

// Generate brings the scene up to date with the current frame. The
// archive is opened and walked on first use; objects load their caches
// once, then every call pushes the frame's samples to the render
// geometry. Cancellation through progress stops loading between
// samples and leaves the procedural marked modified.
func (p *Procedural) Generate(scene *render.Scene, progress *Progress) error {
	if !p.modified {
		return nil
	}

	frameTime := p.frame / p.frameRate

	if p.archive == nil {
		if p.filePath == "" {
			return fmt.Errorf("procedural has no archive path")
		}
		archive, err := gca.Open(p.filePath)
		if err != nil {
			// Clear the path so a broken archive is not retried on
			// every sync.
			p.log.Warn("failed to open archive",
				zap.String("path", p.filePath),
				zap.Error(err))
			p.filePath = ""
			p.modified = false
			return err
		}
		p.archive = archive
		p.objectsLoaded = false

		p.log.Info("opened archive",
			zap.String("path", p.filePath),
			zap.Int("objects", len(p.objects)))

		p.walkHierarchy(archive.Root(), nil, progress)
		for path, obj := range p.objects {
			if obj.node == nil {
				p.log.Warn("object path not found in archive", zap.String("path", path))
			}
		}
	}

	if !p.objectsLoaded {
		p.loadObjects(scene, progress)
		if progress.Cancelled() {
			return nil
		}
		p.objectsLoaded = true
	}

	for _, obj := range p.Objects() {
		if progress.Cancelled() {
			return nil
		}
		if !obj.dataLoaded {
			continue
		}
		// Constant objects are pushed once and never revisited.
		if obj.renderObject != nil && obj.cachedData.IsConstant() {
			continue
		}
		switch obj.node.Kind() {
		case gca.KindPolyMesh:
			p.readMesh(scene, obj, frameTime)
		case gca.KindCurves:
			p.readCurves(scene, obj, frameTime)
		}
	}

	p.modified = false
	return nil
}

// SetArchive injects an in-memory archive, bypassing the file open.
// Tools that just built an archive use this to preview it without a
// round trip through disk.
func (p *Procedural) SetArchive(archive *gca.Archive) {
	p.archive = archive
	p.objectsLoaded = false
	p.modified = true
	p.walkHierarchy(archive.Root(), nil, nil)
}

func (p *Procedural) loadObjects(scene *render.Scene, progress *Progress) {
	for _, obj := range p.Objects() {
		if obj.node == nil || obj.dataLoaded {
			continue
		}
		if progress.Cancelled() {
			return
		}
		switch obj.node.Kind() {
		case gca.KindPolyMesh:
			obj.loadMeshData(scene, progress)
		case gca.KindCurves:
			obj.loadCurveData(scene, progress)
		}
		p.log.Debug("loaded object data",
			zap.String("path", obj.Path),
			zap.Bool("constant", obj.cachedData.IsConstant()))
	}
}

// readMesh pushes the frame's mesh samples. The render mesh and
// object are created on first use; afterwards only channels whose
// sample moved are touched, so constant objects cost nothing per
// frame.
func (p *Procedural) readMesh(scene *render.Scene, obj *Object, frameTime float64) {
	mesh := p.meshForObject(scene, obj)
	cached := &obj.cachedData

	if tfm, ok := cached.Transforms.DataIfChanged(frameTime); ok {
		obj.renderObject.SetTfm(tfm)
	}
	if obj.renderObject.TfmModified() {
		obj.renderObject.TagUpdate(scene)
	}

	if verts, ok := cached.Vertices.DataIfChanged(frameTime); ok {
		mesh.SetVerts(verts)
	}
	if tris, ok := cached.Triangles.DataIfChanged(frameTime); ok {
		mesh.SetTriangles(tris)
		smooth := make([]bool, len(tris)/3)
		for i := range smooth {
			smooth[i] = true
		}
		mesh.SetSmooth(smooth)
	}
	if shader, ok := cached.ShaderIndices.DataIfChanged(frameTime); ok {
		mesh.SetShader(shader)
	}

	p.updateAttributes(scene, mesh, cached, frameTime)

	if mesh.IsModified() {
		mesh.TagUpdate(scene, mesh.TrianglesModified())
		mesh.ClearModified()
	}
	obj.renderObject.ClearModified()
}

// readCurves pushes the frame's hair samples.
func (p *Procedural) readCurves(scene *render.Scene, obj *Object, frameTime float64) {
	hair := p.hairForObject(scene, obj)
	cached := &obj.cachedData

	if tfm, ok := cached.Transforms.DataIfChanged(frameTime); ok {
		obj.renderObject.SetTfm(tfm)
	}
	if obj.renderObject.TfmModified() {
		obj.renderObject.TagUpdate(scene)
	}

	keys, keysChanged := cached.CurveKeys.DataIfChanged(frameTime)
	radius, radiusChanged := cached.CurveRadius.DataIfChanged(frameTime)
	if keysChanged || radiusChanged {
		if !keysChanged {
			keys = hair.CurveKeys
		}
		if !radiusChanged {
			radius = hair.CurveRadius
		}
		hair.SetCurveKeys(keys, radius)
	}

	firstKey, firstChanged := cached.CurveFirstKey.DataIfChanged(frameTime)
	shader, shaderChanged := cached.CurveShader.DataIfChanged(frameTime)
	if firstChanged || shaderChanged {
		if !firstChanged {
			firstKey = hair.CurveFirstKey
		}
		if !shaderChanged {
			shader = hair.CurveShader
		}
		hair.SetCurves(firstKey, shader)
	}

	if hair.NeedAttribute(scene, render.StdGenerated) && hair.KeysModified() {
		attr := hair.Attributes.Add(render.StdGenerated)
		attr.Vecs = generatedFromFirstKeys(hair)
		attr.Modified = true
	}

	if hair.IsModified() {
		rebuild := hair.KeysModified() || hair.RadiusModified()
		hair.TagUpdate(scene, rebuild)
		hair.ClearModified()
	}
	obj.renderObject.ClearModified()
}

func (p *Procedural) meshForObject(scene *render.Scene, obj *Object) *render.Mesh {
	if obj.renderObject != nil {
		return obj.renderObject.Geometry.(*render.Mesh)
	}
	mesh := scene.CreateMesh(obj.node.Name())
	obj.renderObject = scene.CreateObject(obj.Path, mesh)
	return mesh
}

func (p *Procedural) hairForObject(scene *render.Scene, obj *Object) *render.Hair {
	if obj.renderObject != nil {
		return obj.renderObject.Geometry.(*render.Hair)
	}
	hair := scene.CreateHair(obj.node.Name())
	obj.renderObject = scene.CreateObject(obj.Path, hair)
	return hair
}

// updateAttributes pushes cached attribute samples whose data moved.
// Normals are computed during loading but not attached, pending proper
// support for time-varying shading normals.
func (p *Procedural) updateAttributes(scene *render.Scene, mesh *render.Mesh, cached *CachedData, frameTime float64) {
	for _, cachedAttr := range cached.Attributes {
		if cachedAttr.Standard == render.StdVertexNormal || cachedAttr.Standard == render.StdFaceNormal {
			continue
		}

		sample, ok := cachedAttr.Data.DataIfChanged(frameTime)
		if !ok {
			continue
		}

		var attr *render.Attribute
		if cachedAttr.Standard != render.StdNone {
			attr = mesh.Attributes.Add(cachedAttr.Standard)
		} else {
			attr = mesh.Attributes.AddNamed(cachedAttr.Name, cachedAttr.Type, cachedAttr.Element)
		}

		switch cachedAttr.Type {
		case render.TypeFloat:
			attr.Floats = sample.Floats
		case render.TypeFloat2:
			attr.Float2s = sample.Float2s
		case render.TypeVector:
			attr.Vecs = sample.Vecs
		case render.TypeRGBA:
			attr.Bytes = sample.Bytes
		}
		attr.Modified = true
	}

	mesh.Attributes.RemoveStandard(render.StdVertexNormal)
	mesh.Attributes.RemoveStandard(render.StdFaceNormal)

	if mesh.NeedAttribute(scene, render.StdGenerated) && mesh.VertsModified() {
		attr := mesh.Attributes.Add(render.StdGenerated)
		attr.Vecs = append([]math.Vec3(nil), mesh.Verts...)
		attr.Modified = true
	}
}

func generatedFromFirstKeys(hair *render.Hair) []math.Vec3 {
	gen := make([]math.Vec3, 0, hair.NumCurves())
	for _, first := range hair.CurveFirstKey {
		gen = append(gen, hair.CurveKeys[first])
	}
	return gen
}
