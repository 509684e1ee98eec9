package importer

import (
	"github.com/Faultbox/abcproc/pkg/gca"
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
)

// loadMeshData fills the cache from a polymesh node: per-sample
// positions and triangulated topology, then requested and default
// attributes, then the transform channel.
func (o *Object) loadMeshData(scene *render.Scene, progress *Progress) {
	o.cachedData.Clear()

	mesh := o.node.Mesh
	o.cachedData.Vertices.SetTimeSampling(mesh.Sampling)
	o.cachedData.Triangles.SetTimeSampling(mesh.Sampling)
	o.cachedData.TriangleLoops.SetTimeSampling(mesh.Sampling)
	o.cachedData.ShaderIndices.SetTimeSampling(mesh.Sampling)

	for i := 0; i < mesh.NumSamples(); i++ {
		if progress.Cancelled() {
			return
		}
		t := mesh.Sampling.SampleTime(i)
		o.addPositions(mesh.Positions[i], t)
		o.addTriangles(mesh.FaceCounts[i], mesh.FaceIndices[i], t)
	}

	for _, name := range o.requestedAttributeNames(scene) {
		if param := mesh.Param(name); param != nil {
			o.readAttribute(param, progress)
		}
	}

	if mesh.UVs != nil {
		o.readDefaultUVs(mesh.UVs, progress)
	}
	if mesh.Normals != nil {
		o.readDefaultNormals(mesh.Normals, progress)
	}

	o.setupTransformCache()
	o.dataLoaded = true
}

func (o *Object) addPositions(positions []math.Vec3, t float64) {
	verts := make([]math.Vec3, len(positions))
	for i, p := range positions {
		verts[i] = VecYUpToZUp(p)
	}
	o.cachedData.Vertices.AddData(verts, t)
}

// addTriangles fan-triangulates the face list. Alongside the flat
// triangle indices it records, per triangle, the positions in the
// original corner stream its three vertices came from, so
// face-varying attributes can be resolved later.
func (o *Object) addTriangles(faceCounts, faceIndices []int32, t float64) {
	numTriangles := 0
	for _, n := range faceCounts {
		if n >= 3 {
			numTriangles += int(n) - 2
		}
	}

	triangles := make([]int32, 0, numTriangles*3)
	loops := make([][3]int32, 0, numTriangles)
	shader := make([]int32, 0, numTriangles)

	offset := int32(0)
	for _, n := range faceCounts {
		for i := int32(1); i+1 < n; i++ {
			triangles = append(triangles,
				faceIndices[offset],
				faceIndices[offset+i],
				faceIndices[offset+i+1])
			loops = append(loops, [3]int32{offset, offset + i, offset + i + 1})
			shader = append(shader, 0)
		}
		offset += n
	}

	o.cachedData.Triangles.AddData(triangles, t)
	o.cachedData.TriangleLoops.AddData(loops, t)
	o.cachedData.ShaderIndices.AddData(shader, t)
}

// readAttribute ingests one archive geometry parameter into a cached
// attribute. Each type is read only for the scope it is defined over:
// UV sets per face corner, colors per vertex spread to corners,
// vectors per vertex. Other scope combinations leave the attribute
// empty.
func (o *Object) readAttribute(param *gca.GeomParam, progress *Progress) {
	attr := o.cachedData.AddAttribute(param.Name)
	attr.Data.SetTimeSampling(param.Sampling)

	for i := 0; i < param.NumSamples(); i++ {
		if progress.Cancelled() {
			return
		}
		t := param.Sampling.SampleTime(i)
		values := param.Values[i]
		var indices []uint32
		if i < len(param.Indices) {
			indices = param.Indices[i]
		}

		switch param.Type {
		case gca.TypeFloat2:
			if param.Scope != gca.ScopeFaceVarying {
				continue
			}
			attr.Type = render.TypeFloat2
			attr.Element = render.ElementCorner
			if param.UV {
				attr.Standard = render.StdUV
			}
			o.readCornerFloat2(attr, values, indices, t)
		case gca.TypeColor3:
			if param.Scope != gca.ScopeVarying {
				continue
			}
			attr.Type = render.TypeRGBA
			attr.Element = render.ElementCornerByte
			o.readVertexColor(attr, values, 3, t)
		case gca.TypeColor4:
			if param.Scope != gca.ScopeVarying {
				continue
			}
			attr.Type = render.TypeRGBA
			attr.Element = render.ElementCornerByte
			o.readVertexColor(attr, values, 4, t)
		case gca.TypeFloat3:
			if param.Scope != gca.ScopeVarying && param.Scope != gca.ScopeVertex {
				continue
			}
			attr.Type = render.TypeVector
			attr.Element = render.ElementVertex
			sample := AttrSample{Vecs: make([]math.Vec3, len(values)/3)}
			for j := range sample.Vecs {
				sample.Vecs[j] = math.Vec3{X: values[j*3], Y: values[j*3+1], Z: values[j*3+2]}
			}
			attr.Data.AddData(sample, t)
		}
	}
}

// cornerValue resolves the value index for a corner position, going
// through the indices array when the parameter is indexed.
func cornerValue(indices []uint32, corner int32) int {
	if len(indices) == 0 {
		return int(corner)
	}
	return int(indices[corner])
}

func (o *Object) readCornerFloat2(attr *CachedAttribute, values []float32, indices []uint32, t float64) {
	loops, ok := o.cachedData.TriangleLoops.DataForTime(t)
	if !ok {
		return
	}
	sample := AttrSample{Float2s: make([]math.Vec2, 0, len(loops)*3)}
	for _, loop := range loops {
		for _, corner := range loop {
			v := cornerValue(indices, corner)
			sample.Float2s = append(sample.Float2s, math.Vec2{X: values[v*2], Y: values[v*2+1]})
		}
	}
	attr.Data.AddData(sample, t)
}

// readVertexColor spreads per-vertex colors to the corner byte layout:
// one quantized RGBA per triangle corner, sourced from the corner's
// vertex.
func (o *Object) readVertexColor(attr *CachedAttribute, values []float32, components int, t float64) {
	triangles, ok := o.cachedData.Triangles.DataForTime(t)
	if !ok {
		return
	}
	sample := AttrSample{Bytes: make([][4]byte, 0, len(triangles))}
	for _, vert := range triangles {
		v := int(vert) * components
		c := [4]byte{
			colorToByte(values[v]),
			colorToByte(values[v+1]),
			colorToByte(values[v+2]),
			255,
		}
		if components == 4 {
			c[3] = colorToByte(values[v+3])
		}
		sample.Bytes = append(sample.Bytes, c)
	}
	attr.Data.AddData(sample, t)
}

func colorToByte(f float32) byte {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return byte(f*255 + 0.5)
	}
}

// readDefaultUVs ingests the mesh's primary UV set under its standard
// role, regardless of whether a shader requested it by name.
func (o *Object) readDefaultUVs(param *gca.GeomParam, progress *Progress) {
	attr := o.cachedData.AddAttribute(param.Name)
	attr.Standard = render.StdUV
	attr.Type = render.TypeFloat2
	attr.Element = render.ElementCorner
	attr.Data.SetTimeSampling(param.Sampling)

	for i := 0; i < param.NumSamples(); i++ {
		if progress.Cancelled() {
			return
		}
		if param.Scope != gca.ScopeFaceVarying {
			continue
		}
		t := param.Sampling.SampleTime(i)
		var indices []uint32
		if i < len(param.Indices) {
			indices = param.Indices[i]
		}
		o.readCornerFloat2(attr, param.Values[i], indices, t)
	}
}

// readDefaultNormals ingests the mesh's normals as vertex normals.
// Face-varying normals are scattered back to vertex slots through the
// triangle loops.
func (o *Object) readDefaultNormals(param *gca.GeomParam, progress *Progress) {
	attr := o.cachedData.AddAttribute(param.Name)
	attr.Standard = render.StdVertexNormal
	attr.Type = render.TypeVector
	attr.Element = render.ElementVertex
	attr.Data.SetTimeSampling(param.Sampling)

	for i := 0; i < param.NumSamples(); i++ {
		if progress.Cancelled() {
			return
		}
		t := param.Sampling.SampleTime(i)
		values := param.Values[i]

		switch param.Scope {
		case gca.ScopeFaceVarying:
			o.scatterCornerNormals(attr, values, t)
		case gca.ScopeVarying, gca.ScopeVertex:
			sample := AttrSample{Vecs: make([]math.Vec3, len(values)/3)}
			for j := range sample.Vecs {
				n := math.Vec3{X: values[j*3], Y: values[j*3+1], Z: values[j*3+2]}
				sample.Vecs[j] = VecYUpToZUp(n)
			}
			attr.Data.AddData(sample, t)
		}
	}
}

// scatterCornerNormals accumulates face-varying normals into vertex
// slots: every corner referencing a vertex adds its normal to that
// vertex. The sums are left unnormalized.
func (o *Object) scatterCornerNormals(attr *CachedAttribute, values []float32, t float64) {
	verts, ok := o.cachedData.Vertices.DataForTime(t)
	if !ok {
		return
	}
	triangles, ok := o.cachedData.Triangles.DataForTime(t)
	if !ok {
		return
	}

	sample := AttrSample{Vecs: make([]math.Vec3, len(verts))}
	for _, vert := range triangles {
		v := int(vert) * 3
		n := math.Vec3{X: values[v], Y: values[v+1], Z: values[v+2]}
		sample.Vecs[vert] = sample.Vecs[vert].Add(VecYUpToZUp(n))
	}
	attr.Data.AddData(sample, t)
}
