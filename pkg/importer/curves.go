package importer

import (
	"github.com/Faultbox/abcproc/pkg/math"
	"github.com/Faultbox/abcproc/pkg/render"
)

// Archives rarely carry usable widths, so curves get a fixed radius.
const defaultCurveRadius = 0.01

// loadCurveData fills the cache from a curves node: per-sample key
// positions, per-curve first-key offsets and a constant radius.
func (o *Object) loadCurveData(scene *render.Scene, progress *Progress) {
	o.cachedData.Clear()

	curves := o.node.Curves
	o.cachedData.CurveKeys.SetTimeSampling(curves.Sampling)
	o.cachedData.CurveRadius.SetTimeSampling(curves.Sampling)
	o.cachedData.CurveFirstKey.SetTimeSampling(curves.Sampling)
	o.cachedData.CurveShader.SetTimeSampling(curves.Sampling)

	for i := 0; i < curves.NumSamples(); i++ {
		if progress.Cancelled() {
			return
		}
		t := curves.Sampling.SampleTime(i)

		positions := curves.Positions[i]
		keys := make([]math.Vec3, len(positions))
		for j, p := range positions {
			keys[j] = VecYUpToZUp(p)
		}

		numVerts := curves.NumVertices[i]
		firstKey := make([]int32, len(numVerts))
		shader := make([]int32, len(numVerts))
		offset := int32(0)
		for j, n := range numVerts {
			firstKey[j] = offset
			offset += n
		}

		radius := make([]float32, len(keys))
		for j := range radius {
			radius[j] = defaultCurveRadius
		}

		o.cachedData.CurveKeys.AddData(keys, t)
		o.cachedData.CurveRadius.AddData(radius, t)
		o.cachedData.CurveFirstKey.AddData(firstKey, t)
		o.cachedData.CurveShader.AddData(shader, t)
	}

	o.setupTransformCache()
	o.dataLoaded = true
}
