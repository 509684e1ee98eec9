package gca

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

func TestArchiveBuild(t *testing.T) {
	a := New()
	if a.Root() == nil {
		t.Fatal("new archive has no root")
	}
	if got := a.Root().FullPath(); got != "/" {
		t.Errorf("root path = %q, want \"/\"", got)
	}

	xform := a.Root().AddChild(KindTransform, "cube_xform")
	mesh := xform.AddChild(KindPolyMesh, "cube_mesh")

	if xform.Xform == nil {
		t.Error("transform node has no xform payload")
	}
	if mesh.Mesh == nil {
		t.Error("mesh node has no mesh payload")
	}
	if got := mesh.FullPath(); got != "/cube_xform/cube_mesh" {
		t.Errorf("mesh path = %q", got)
	}
	if len(a.Root().Children()) != 1 {
		t.Errorf("root children = %d, want 1", len(a.Root().Children()))
	}
}

func TestFindNode(t *testing.T) {
	a := New()
	xform := a.Root().AddChild(KindTransform, "group")
	xform.AddChild(KindPolyMesh, "mesh")

	tests := []struct {
		path  string
		found bool
	}{
		{"/", true},
		{"/group", true},
		{"/group/mesh", true},
		{"/group/missing", false},
		{"/other", false},
	}
	for _, tt := range tests {
		n := a.FindNode(tt.path)
		if (n != nil) != tt.found {
			t.Errorf("FindNode(%q) found = %v, want %v", tt.path, n != nil, tt.found)
		}
		if n != nil && tt.path != "/" && n.FullPath() != tt.path {
			t.Errorf("FindNode(%q) path = %q", tt.path, n.FullPath())
		}
	}
}

func TestNodeKindString(t *testing.T) {
	if KindPolyMesh.String() != "PolyMesh" {
		t.Errorf("KindPolyMesh.String() = %q", KindPolyMesh.String())
	}
	if KindCurves.String() != "Curves" {
		t.Errorf("KindCurves.String() = %q", KindCurves.String())
	}
}

func TestParamComponents(t *testing.T) {
	tests := []struct {
		typ  ParamType
		want int
	}{
		{TypeFloat2, 2},
		{TypeFloat3, 3},
		{TypeColor3, 3},
		{TypeColor4, 4},
	}
	for _, tt := range tests {
		if got := tt.typ.Components(); got != tt.want {
			t.Errorf("%v.Components() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func testArchive() *Archive {
	a := New()

	xform := a.Root().AddChild(KindTransform, "xform")
	xform.Xform.Sampling = timesample.TimeSampling{Start: 0, Interval: 1.0 / 24.0, Count: 2}
	xform.Xform.Matrices = []math.Mat4{
		math.Identity(),
		math.Translate(0, 1, 0),
	}

	mesh := xform.AddChild(KindPolyMesh, "mesh")
	mesh.Mesh.Sampling = timesample.TimeSampling{Start: 0, Interval: 1.0 / 24.0, Count: 1}
	mesh.Mesh.Positions = [][]math.Vec3{{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	}}
	mesh.Mesh.FaceCounts = [][]int32{{4}}
	mesh.Mesh.FaceIndices = [][]int32{{0, 1, 2, 3}}
	mesh.Mesh.UVs = &GeomParam{
		Name:     "uv",
		Type:     TypeFloat2,
		Scope:    ScopeFaceVarying,
		UV:       true,
		Sampling: timesample.TimeSampling{Count: 1},
		Values:   [][]float32{{0, 0, 1, 0, 1, 1, 0, 1}},
		Indices:  [][]uint32{{0, 1, 2, 3}},
	}

	curves := a.Root().AddChild(KindCurves, "hair")
	curves.Curves.Sampling = timesample.TimeSampling{Count: 1}
	curves.Curves.Positions = [][]math.Vec3{{
		{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1},
	}}
	curves.Curves.NumVertices = [][]int32{{2}}

	return a
}

func TestSaveOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.gca")

	if err := testArchive().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Path() != path {
		t.Errorf("Path() = %q, want %q", a.Path(), path)
	}

	xform := a.FindNode("/xform")
	if xform == nil {
		t.Fatal("missing /xform")
	}
	if xform.Kind() != KindTransform {
		t.Errorf("xform kind = %v", xform.Kind())
	}
	if len(xform.Xform.Matrices) != 2 {
		t.Fatalf("xform matrices = %d, want 2", len(xform.Xform.Matrices))
	}
	if got := xform.Xform.Matrices[1].Translation(); got != (math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("matrix translation = %v", got)
	}
	if xform.Xform.Sampling.Count != 2 {
		t.Errorf("sampling count = %d, want 2", xform.Xform.Sampling.Count)
	}

	mesh := a.FindNode("/xform/mesh")
	if mesh == nil {
		t.Fatal("missing /xform/mesh")
	}
	m := mesh.Mesh
	if len(m.Positions) != 1 || len(m.Positions[0]) != 4 {
		t.Fatalf("mesh positions shape wrong: %v", m.Positions)
	}
	if m.FaceCounts[0][0] != 4 {
		t.Errorf("face count = %d", m.FaceCounts[0][0])
	}
	if m.UVs == nil {
		t.Fatal("missing uv param")
	}
	if m.UVs.Scope != ScopeFaceVarying || !m.UVs.UV {
		t.Errorf("uv param scope = %v, uv = %v", m.UVs.Scope, m.UVs.UV)
	}
	if len(m.UVs.Values[0]) != 8 || len(m.UVs.Indices[0]) != 4 {
		t.Errorf("uv data shape wrong")
	}
	if m.Normals != nil {
		t.Error("unexpected normals param")
	}

	curves := a.FindNode("/hair")
	if curves == nil {
		t.Fatal("missing /hair")
	}
	if curves.Curves.NumVertices[0][0] != 2 {
		t.Errorf("curve vertex count = %d", curves.Curves.NumVertices[0][0])
	}
}

func TestOpenInvalidData(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedData},
		{"bad magic", []byte("NOPE\x01\x00"), ErrInvalidMagic},
		{"bad version", []byte("GCAF\x09\x00"), ErrUnsupportedVersion},
		{"garbage body", []byte("GCAF\x01\x00garbage"), ErrCorruptData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".gca")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Open = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenTruncatedBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.gca")
	if err := testArchive().Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Cut the zstd frame short so decompression fails.
	trunc := filepath.Join(t.TempDir(), "trunc.gca")
	if err := os.WriteFile(trunc, data[:len(data)/2], 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(trunc); err == nil {
		t.Error("Open of truncated archive succeeded")
	}
}
