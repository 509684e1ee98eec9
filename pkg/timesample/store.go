// Package timesample provides time-keyed sample storage for cached
// archive properties. A Store holds materialized samples under strictly
// increasing time keys; the TimeSampling descriptor carries the cadence
// the archive declared for the property, which may differ from the keys
// actually materialized.
package timesample

import "sort"

// timeEps absorbs rounding when times are rebuilt from frame numbers.
const timeEps = 1e-6

// TimeSampling describes the declared cadence of an archive property:
// a first sample time, a fixed interval between samples, and the number
// of samples declared.
type TimeSampling struct {
	Start    float64
	Interval float64
	Count    int
}

// Uniform returns a TimeSampling starting at start with the given
// interval and sample count.
func Uniform(start, interval float64, count int) TimeSampling {
	return TimeSampling{Start: start, Interval: interval, Count: count}
}

// SampleTime returns the declared time of sample index i.
func (ts TimeSampling) SampleTime(i int) float64 {
	return ts.Start + float64(i)*ts.Interval
}

// IsZero reports whether the sampling carries no declared cadence.
func (ts TimeSampling) IsZero() bool {
	return ts == TimeSampling{}
}

// Store maps time values to samples of type T.
type Store[T any] struct {
	times    []float64
	data     []T
	sampling TimeSampling

	lastLoaded    float64
	hasLastLoaded bool
}

// AddData records v under time t. An existing sample at t is
// overwritten; otherwise the sample is inserted in time order.
func (s *Store[T]) AddData(v T, t float64) {
	i := sort.SearchFloat64s(s.times, t)
	if i < len(s.times) && sameTime(s.times[i], t) {
		s.data[i] = v
		return
	}
	if i > 0 && sameTime(s.times[i-1], t) {
		s.data[i-1] = v
		return
	}

	s.times = append(s.times, 0)
	s.data = append(s.data, v)
	copy(s.times[i+1:], s.times[i:])
	copy(s.data[i+1:], s.data[i:])
	s.times[i] = t
	s.data[i] = v
}

// DataForTime returns the sample covering time t: the exact sample if
// one exists, otherwise the nearest sample at or before t. A query
// before the first sample clamps to the first sample. The second return
// is false only when the store is empty.
func (s *Store[T]) DataForTime(t float64) (T, bool) {
	if len(s.times) == 0 {
		var zero T
		return zero, false
	}

	i := sort.SearchFloat64s(s.times, t+timeEps)
	if i == 0 {
		return s.data[0], true
	}
	return s.data[i-1], true
}

// DataIfChanged resolves the sample for time t like DataForTime, but
// returns it only when it is a different sample than the previous
// DataIfChanged call delivered. Consumers use it to push updates to a
// host only when the underlying sample actually moved.
func (s *Store[T]) DataIfChanged(t float64) (T, bool) {
	var zero T
	if len(s.times) == 0 {
		return zero, false
	}

	i := sort.SearchFloat64s(s.times, t+timeEps)
	if i > 0 {
		i--
	}
	if s.hasLastLoaded && sameTime(s.times[i], s.lastLoaded) {
		return zero, false
	}
	s.lastLoaded = s.times[i]
	s.hasLastLoaded = true
	return s.data[i], true
}

// InvalidateLastLoaded forgets which sample was last delivered, so the
// next DataIfChanged call pushes again.
func (s *Store[T]) InvalidateLastLoaded() {
	s.hasLastLoaded = false
}

// SetTimeSampling records the archive-declared cadence for this
// property. It is carried alongside the materialized keys, not derived
// from them.
func (s *Store[T]) SetTimeSampling(ts TimeSampling) {
	s.sampling = ts
}

// TimeSampling returns the declared cadence.
func (s *Store[T]) TimeSampling() TimeSampling {
	return s.sampling
}

// NumSamples returns the number of materialized samples.
func (s *Store[T]) NumSamples() int {
	return len(s.times)
}

// Clear removes all samples and the declared cadence.
func (s *Store[T]) Clear() {
	s.times = nil
	s.data = nil
	s.sampling = TimeSampling{}
	s.hasLastLoaded = false
}

func sameTime(a, b float64) bool {
	d := a - b
	return d < timeEps && d > -timeEps
}
