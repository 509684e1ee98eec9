package viewer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
)

// meshBuffers holds the GL objects for one geometry.
type meshBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	lines      bool
}

// Renderer draws a render scene, re-uploading geometry buffers when
// the importer flags them modified.
type Renderer struct {
	program uint32

	locModel    int32
	locViewProj int32
	locLightDir int32

	buffers map[render.Geometry]*meshBuffers
	synced  int

	// Orbit camera state.
	Distance float32
	Yaw      float32
	Pitch    float32
	Target   math.Vec3
}

// NewRenderer compiles the viewer shaders and prepares GL state. It
// requires a current OpenGL context.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	program, err := CompileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(0.12, 0.12, 0.14, 1.0)

	return &Renderer{
		program:     program,
		locModel:    GetUniform(program, "uModel"),
		locViewProj: GetUniform(program, "uViewProj"),
		locLightDir: GetUniform(program, "uLightDir"),
		buffers:     make(map[render.Geometry]*meshBuffers),
		Distance:    5,
		Pitch:       0.5,
	}, nil
}

// Sync re-uploads scene geometry when the importer tagged updates
// since the last call. The scene's update counter is the signal; the
// per-geometry modified flags are already consumed by the importer.
func (r *Renderer) Sync(scene *render.Scene) {
	if scene.UpdateCount() == r.synced && len(r.buffers) == len(scene.Geometries) {
		return
	}
	r.synced = scene.UpdateCount()

	for _, geom := range scene.Geometries {
		buf := r.buffers[geom]
		if buf == nil {
			buf = newMeshBuffers()
			r.buffers[geom] = buf
		}

		switch g := geom.(type) {
		case *render.Mesh:
			buf.uploadMesh(g)
		case *render.Hair:
			buf.uploadHair(g)
		}
	}
}

// Draw renders all scene objects with an orbit camera.
func (r *Renderer) Draw(scene *render.Scene, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(r.program)

	viewProj := r.viewProjection(width, height)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.locLightDir, -0.4, -0.6, -0.7)

	for _, obj := range scene.Objects {
		buf := r.buffers[obj.Geometry]
		if buf == nil || buf.indexCount == 0 {
			continue
		}

		model := obj.Tfm
		gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())

		gl.BindVertexArray(buf.vao)
		mode := uint32(gl.TRIANGLES)
		if buf.lines {
			mode = gl.LINES
		}
		gl.DrawElementsWithOffset(mode, buf.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

// Orbit rotates the camera by the given yaw and pitch deltas.
func (r *Renderer) Orbit(dYaw, dPitch float32) {
	r.Yaw += dYaw
	r.Pitch += dPitch
	limit := math32.Pi/2 - 0.01
	if r.Pitch > limit {
		r.Pitch = limit
	}
	if r.Pitch < -limit {
		r.Pitch = -limit
	}
}

// Zoom scales the camera distance.
func (r *Renderer) Zoom(factor float32) {
	r.Distance *= factor
	if r.Distance < 0.1 {
		r.Distance = 0.1
	}
}

func (r *Renderer) viewProjection(width, height int) math.Mat4 {
	eye := math.Vec3{
		X: r.Target.X + r.Distance*math32.Cos(r.Pitch)*math32.Sin(r.Yaw),
		Y: r.Target.Y - r.Distance*math32.Cos(r.Pitch)*math32.Cos(r.Yaw),
		Z: r.Target.Z + r.Distance*math32.Sin(r.Pitch),
	}
	up := math.Vec3{Z: 1}

	aspect := float32(width) / float32(height)
	proj := math.Perspective(math32.Pi/4, aspect, 0.05, 1000)
	view := math.LookAt(eye, r.Target, up)
	return proj.Mul(view)
}

// Close releases the GL objects.
func (r *Renderer) Close() {
	for _, buf := range r.buffers {
		gl.DeleteVertexArrays(1, &buf.vao)
		gl.DeleteBuffers(1, &buf.vbo)
		gl.DeleteBuffers(1, &buf.ebo)
	}
	gl.DeleteProgram(r.program)
}

func newMeshBuffers() *meshBuffers {
	buf := &meshBuffers{}
	gl.GenVertexArrays(1, &buf.vao)
	gl.GenBuffers(1, &buf.vbo)
	gl.GenBuffers(1, &buf.ebo)

	gl.BindVertexArray(buf.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)

	// Interleaved position (3) + color (3).
	stride := int32(6 * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)

	gl.BindVertexArray(0)
	return buf
}

func (b *meshBuffers) upload(vertices []float32, indices []uint32, lines bool) {
	b.lines = lines
	b.indexCount = int32(len(indices))
	if len(vertices) == 0 || len(indices) == 0 {
		return
	}

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	gl.BindVertexArray(0)
}

func (b *meshBuffers) uploadMesh(mesh *render.Mesh) {
	vertices := make([]float32, 0, len(mesh.Verts)*6)
	for _, v := range mesh.Verts {
		vertices = append(vertices, v.X, v.Y, v.Z, 0.75, 0.75, 0.78)
	}

	indices := make([]uint32, len(mesh.Triangles))
	for i, idx := range mesh.Triangles {
		indices[i] = uint32(idx)
	}
	b.upload(vertices, indices, false)
}

func (b *meshBuffers) uploadHair(hair *render.Hair) {
	vertices := make([]float32, 0, len(hair.CurveKeys)*6)
	for _, k := range hair.CurveKeys {
		vertices = append(vertices, k.X, k.Y, k.Z, 0.85, 0.62, 0.3)
	}

	// Each curve becomes a run of line segments between its keys.
	var indices []uint32
	for c := 0; c < hair.NumCurves(); c++ {
		first := int(hair.CurveFirstKey[c])
		last := len(hair.CurveKeys)
		if c+1 < hair.NumCurves() {
			last = int(hair.CurveFirstKey[c+1])
		}
		for k := first; k+1 < last; k++ {
			indices = append(indices, uint32(k), uint32(k+1))
		}
	}
	b.upload(vertices, indices, true)
}
