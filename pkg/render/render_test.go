package render

import (
	"testing"

	"github.com/Faultbox/abcproc/pkg/math"
)

func TestAttributeSetAdd(t *testing.T) {
	var set AttributeSet

	uv := set.Add(StdUV)
	if uv.Type != TypeFloat2 || uv.Element != ElementCorner {
		t.Errorf("uv attribute type = %v element = %v", uv.Type, uv.Element)
	}
	if uv.Name != "std::uv" {
		t.Errorf("uv attribute name = %q", uv.Name)
	}

	// Adding the same standard again returns the existing attribute.
	if set.Add(StdUV) != uv {
		t.Error("Add(StdUV) created a duplicate")
	}
	if len(set.List()) != 1 {
		t.Errorf("attribute count = %d, want 1", len(set.List()))
	}

	normal := set.Add(StdVertexNormal)
	if normal.Type != TypeVector || normal.Element != ElementVertex {
		t.Errorf("normal attribute type = %v element = %v", normal.Type, normal.Element)
	}
	if set.FindStandard(StdVertexNormal) != normal {
		t.Error("FindStandard did not return the normal attribute")
	}
}

func TestAttributeSetNamed(t *testing.T) {
	var set AttributeSet

	col := set.AddNamed("displayColor", TypeRGBA, ElementCornerByte)
	if set.Find("displayColor") != col {
		t.Error("Find did not return the named attribute")
	}
	if set.AddNamed("displayColor", TypeRGBA, ElementCornerByte) != col {
		t.Error("AddNamed created a duplicate")
	}

	set.Remove("displayColor")
	if set.Find("displayColor") != nil {
		t.Error("attribute still present after Remove")
	}
}

func TestAttributeResize(t *testing.T) {
	tests := []struct {
		typ  AttributeType
		name string
	}{
		{TypeFloat, "float"},
		{TypeFloat2, "float2"},
		{TypeVector, "vector"},
		{TypeRGBA, "rgba"},
	}
	for _, tt := range tests {
		attr := &Attribute{Name: tt.name, Type: tt.typ}
		attr.Resize(7)
		if got := attr.Len(); got != 7 {
			t.Errorf("%s: Len after Resize(7) = %d", tt.name, got)
		}
	}
}

func TestMeshModifiedFlags(t *testing.T) {
	scene := NewScene()
	mesh := scene.CreateMesh("mesh")

	if mesh.IsModified() {
		t.Error("fresh mesh reports modified")
	}

	mesh.SetVerts([]math.Vec3{{X: 0}, {X: 1}, {Y: 1}})
	if !mesh.VertsModified() || mesh.TrianglesModified() {
		t.Error("SetVerts flags wrong")
	}

	mesh.SetTriangles([]int32{0, 1, 2})
	if !mesh.TrianglesModified() {
		t.Error("SetTriangles did not flag topology")
	}
	if mesh.NumTriangles() != 1 {
		t.Errorf("NumTriangles = %d", mesh.NumTriangles())
	}

	mesh.ClearModified()
	if mesh.IsModified() {
		t.Error("mesh still modified after ClearModified")
	}
}

func TestAttributeModifiedTracking(t *testing.T) {
	scene := NewScene()
	mesh := scene.CreateMesh("mesh")

	attr := mesh.Attributes.Add(StdGenerated)
	attr.Resize(3)
	attr.Modified = true

	if !mesh.IsModified() {
		t.Error("modified attribute not reflected on mesh")
	}
	mesh.ClearModified()
	if attr.Modified {
		t.Error("attribute flag survived ClearModified")
	}
}

func TestSceneTagUpdate(t *testing.T) {
	scene := NewScene()
	mesh := scene.CreateMesh("mesh")

	mesh.TagUpdate(scene, false)
	mesh.TagUpdate(scene, true)

	if scene.UpdateCount() != 2 {
		t.Errorf("UpdateCount = %d, want 2", scene.UpdateCount())
	}
	if scene.RebuildCount() != 1 {
		t.Errorf("RebuildCount = %d, want 1", scene.RebuildCount())
	}
}

func TestNeedAttribute(t *testing.T) {
	scene := NewScene()
	mesh := scene.CreateMesh("mesh")
	orphan := scene.CreateMesh("orphan")
	scene.CreateObject("obj", mesh)

	if mesh.NeedAttribute(scene, StdUV) {
		t.Error("StdUV needed before any shader requests it")
	}

	sh := ShaderWithAttributes("textured", StdUV)
	scene.AddShader(sh)

	if !mesh.NeedAttribute(scene, StdUV) {
		t.Error("StdUV not needed after shader request")
	}
	if orphan.NeedAttribute(scene, StdUV) {
		t.Error("geometry with no object reports needed attribute")
	}
}

func TestShaderByName(t *testing.T) {
	scene := NewScene()
	if scene.ShaderByName("default") == nil {
		t.Error("default shader missing")
	}
	if scene.ShaderByName("nope") != nil {
		t.Error("found nonexistent shader")
	}
}

func TestHairCurves(t *testing.T) {
	scene := NewScene()
	hair := scene.CreateHair("hair")

	hair.SetCurveKeys([]math.Vec3{{}, {Z: 1}, {X: 1}, {X: 1, Z: 1}}, []float32{0.01, 0.01, 0.01, 0.01})
	hair.SetCurves([]int32{0, 2}, []int32{0, 0})

	if hair.NumCurves() != 2 {
		t.Errorf("NumCurves = %d, want 2", hair.NumCurves())
	}
	if !hair.KeysModified() || !hair.RadiusModified() {
		t.Error("key flags not set")
	}
	hair.ClearModified()
	if hair.IsModified() {
		t.Error("hair still modified after ClearModified")
	}
}

// ShaderWithAttributes builds a shader requesting the given standards.
func ShaderWithAttributes(name string, stds ...AttributeStandard) *Shader {
	sh := &Shader{Name: name}
	for _, std := range stds {
		sh.RequestAttribute(std)
	}
	return sh
}
