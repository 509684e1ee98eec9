// abctool is a CLI utility for working with geometry cache archives.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/abcproc/pkg/gca"
	"github.com/Faultbox/abcproc/pkg/importer"
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
	"github.com/Faultbox/abcproc/pkg/timesample"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tree", "ls":
		cmdTree(args)
	case "frame":
		cmdFrame(args)
	case "bake":
		cmdBake(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`abctool - geometry cache archive utility

Usage:
  abctool <command> [options]

Commands:
  info <file.gca>                  Show archive information
  tree <file.gca>                  Print the node hierarchy
  frame <file.gca> <path> <frame>  Evaluate one object at a frame
  bake <output.gca>                Generate an animated test archive

Examples:
  abctool info scene.gca
  abctool tree scene.gca
  abctool frame scene.gca /root/mesh 12
  abctool bake testdata/cube.gca`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: abctool info <file.gca>")
		os.Exit(1)
	}

	archive := openArchive(args[0])

	counts := make(map[gca.NodeKind]int)
	maxSamples := 0
	var walk func(n *gca.Node)
	walk = func(n *gca.Node) {
		counts[n.Kind()]++
		if s := nodeSampleCount(n); s > maxSamples {
			maxSamples = s
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, c := range archive.Root().Children() {
		walk(c)
	}

	fmt.Printf("Archive: %s\n", args[0])
	for kind, count := range counts {
		fmt.Printf("  %-12s %d\n", kind.String(), count)
	}
	fmt.Printf("  max samples  %d\n", maxSamples)
}

func cmdTree(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: abctool tree <file.gca>")
		os.Exit(1)
	}

	archive := openArchive(args[0])

	var walk func(n *gca.Node, depth int)
	walk = func(n *gca.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		samples := nodeSampleCount(n)
		fmt.Printf("%s%s [%s, %d sample(s)]\n", indent, n.Name(), n.Kind(), samples)
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	for _, c := range archive.Root().Children() {
		walk(c, 0)
	}
}

func cmdFrame(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: abctool frame <file.gca> <path> <frame>")
		os.Exit(1)
	}

	frame, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid frame %q: %v\n", args[2], err)
		os.Exit(1)
	}

	proc := importer.NewProcedural()
	obj := proc.AddObject(args[1])
	proc.SetFilePath(args[0])
	proc.SetFrame(frame)

	scene := render.NewScene()
	if err := proc.Generate(scene, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if obj.RenderObject() == nil {
		fmt.Fprintf(os.Stderr, "Path %s not found in archive\n", args[1])
		os.Exit(1)
	}

	fmt.Printf("Object:    %s\n", args[1])
	fmt.Printf("Frame:     %g\n", frame)
	tr := obj.RenderObject().Tfm.Translation()
	fmt.Printf("Transform: translation (%.4f, %.4f, %.4f)\n", tr.X, tr.Y, tr.Z)

	switch geom := obj.RenderObject().Geometry.(type) {
	case *render.Mesh:
		fmt.Printf("Mesh:      %d vertices, %d triangles\n", len(geom.Verts), geom.NumTriangles())
		for _, attr := range geom.Attributes.List() {
			fmt.Printf("Attribute: %s (%d elements)\n", attr.Name, attr.Len())
		}
	case *render.Hair:
		fmt.Printf("Hair:      %d curves, %d keys\n", geom.NumCurves(), len(geom.CurveKeys))
	}
}

func cmdBake(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	frames := fs.Int("frames", 24, "Number of animation frames")
	rate := fs.Float64("rate", 24, "Frame rate")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: abctool bake [-frames N] [-rate R] <output.gca>")
		os.Exit(1)
	}

	archive := bakeTestArchive(*frames, *rate)
	if err := archive.Save(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d frames at %g fps)\n", fs.Arg(0), *frames, *rate)
}

// bakeTestArchive builds a small animated scene: a spinning cube under
// a rising transform, plus a patch of hair curves.
func bakeTestArchive(frames int, rate float64) *gca.Archive {
	a := gca.New()
	sampling := timesample.Uniform(0, 1/rate, frames)

	xform := a.Root().AddChild(gca.KindTransform, "cube_xform")
	xform.Xform.Sampling = sampling
	for i := 0; i < frames; i++ {
		f := float32(i) / float32(frames)
		mat := math.Translate(0, f*2, 0).Mul(math.RotateY(f * 2 * math32.Pi))
		xform.Xform.Matrices = append(xform.Xform.Matrices, mat)
	}

	cube := xform.AddChild(gca.KindPolyMesh, "cube")
	cube.Mesh.Sampling = timesample.Uniform(0, 1/rate, 1)
	cube.Mesh.Positions = [][]math.Vec3{cubeVertices(1)}
	cube.Mesh.FaceCounts = [][]int32{{4, 4, 4, 4, 4, 4}}
	cube.Mesh.FaceIndices = [][]int32{{
		0, 1, 2, 3,
		7, 6, 5, 4,
		0, 4, 5, 1,
		1, 5, 6, 2,
		2, 6, 7, 3,
		3, 7, 4, 0,
	}}

	hair := a.Root().AddChild(gca.KindCurves, "grass")
	hair.Curves.Sampling = sampling
	for i := 0; i < frames; i++ {
		sway := math32.Sin(float32(i)/float32(frames)*2*math32.Pi) * 0.2
		var keys []math.Vec3
		var numVerts []int32
		for b := 0; b < 5; b++ {
			root := math.Vec3{X: float32(b)*0.5 - 1}
			keys = append(keys,
				root,
				root.Add(math.Vec3{X: sway * 0.5, Y: 0.5}),
				root.Add(math.Vec3{X: sway, Y: 1}),
			)
			numVerts = append(numVerts, 3)
		}
		hair.Curves.Positions = append(hair.Curves.Positions, keys)
		hair.Curves.NumVertices = append(hair.Curves.NumVertices, numVerts)
	}

	return a
}

func cubeVertices(half float32) []math.Vec3 {
	return []math.Vec3{
		{X: -half, Y: -half, Z: -half},
		{X: half, Y: -half, Z: -half},
		{X: half, Y: half, Z: -half},
		{X: -half, Y: half, Z: -half},
		{X: -half, Y: -half, Z: half},
		{X: half, Y: -half, Z: half},
		{X: half, Y: half, Z: half},
		{X: -half, Y: half, Z: half},
	}
}

func nodeSampleCount(n *gca.Node) int {
	switch n.Kind() {
	case gca.KindTransform:
		if n.Xform != nil {
			return n.Xform.NumSamples()
		}
	case gca.KindPolyMesh:
		if n.Mesh != nil {
			return n.Mesh.NumSamples()
		}
	case gca.KindCurves:
		if n.Curves != nil {
			return n.Curves.NumSamples()
		}
	}
	return 0
}

func openArchive(path string) *gca.Archive {
	archive, err := gca.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return archive
}
