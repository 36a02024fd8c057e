// Package registry holds the metric samples of the most recent collect pass
// and exposes them to the prometheus client library for rendering.
package registry

import (
	"sync"
)

// Sample is a single gauge value with its identifying label set.
type Sample struct {
	Name   string
	Help   string
	Labels map[string]string
	Value  float64
}

// Registry stores the sample set committed by a collect pass. A commit
// replaces the whole previous set at once, so readers observe either the
// previous or the new snapshot and never a mix of both.
type Registry interface {
	Commit(samples []Sample)
	Samples() []Sample
}

// NewRegistry returns an empty registry.Registry
func NewRegistry() Registry {
	return &registry{}
}

type registry struct {
	mu      sync.RWMutex
	samples []Sample
}

func (r *registry) Commit(samples []Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = samples
}

func (r *registry) Samples() []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.samples
}
