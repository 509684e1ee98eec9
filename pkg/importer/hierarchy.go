package importer

import (
	"github.com/Faultbox/abcproc/pkg/gca"
)

// walkHierarchy descends the archive tree, accumulating transform
// samples through transform nodes and binding geometry nodes to the
// importer objects whose paths match them.
func (p *Procedural) walkHierarchy(node *gca.Node, parentSamples *MatrixSampleMap, progress *Progress) {
	for _, child := range node.Children() {
		if progress.Cancelled() {
			return
		}
		switch child.Kind() {
		case gca.KindTransform:
			local := transformSamples(child)
			accumulated := local
			if parentSamples != nil && parentSamples.Len() > 0 {
				accumulated = ConcatenateSamples(parentSamples, local)
			}
			p.walkHierarchy(child, accumulated, progress)

		case gca.KindPolyMesh, gca.KindCurves:
			if obj := p.objects[child.FullPath()]; obj != nil {
				samples := &MatrixSampleMap{}
				if parentSamples != nil {
					samples = parentSamples.Clone()
				}
				obj.bind(child, samples)
			}
			p.walkHierarchy(child, parentSamples, progress)

		case gca.KindFaceSet:
			// Face sets only annotate their parent mesh.

		default:
			p.walkHierarchy(child, parentSamples, progress)
		}
	}
}

func transformSamples(node *gca.Node) *MatrixSampleMap {
	samples := &MatrixSampleMap{}
	for i, mat := range node.Xform.Matrices {
		samples.Add(node.Xform.Sampling.SampleTime(i), mat)
	}
	return samples
}
