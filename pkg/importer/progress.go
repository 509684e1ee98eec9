// Package importer loads animated geometry caches into render scenes:
// it resolves transform hierarchies, caches time-sampled geometry
// channels, and pushes per-frame data to meshes and hair.
package importer

import "sync/atomic"

// Progress is a cancellation flag shared between a loading goroutine
// and a host that may abort it. A nil *Progress is never cancelled.
type Progress struct {
	cancelled atomic.Bool
}

// Cancel requests that in-flight loading stop at the next sample
// boundary.
func (p *Progress) Cancel() {
	if p != nil {
		p.cancelled.Store(true)
	}
}

// Cancelled reports whether loading should stop.
func (p *Progress) Cancelled() bool {
	return p != nil && p.cancelled.Load()
}

// Reset clears a previous cancellation so the progress can be reused.
func (p *Progress) Reset() {
	if p != nil {
		p.cancelled.Store(false)
	}
}
