package metrics

import (
	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/loop"
)

// Metric reduces a run to one number. Every metric is a loop.Observer; the
// ones that need recycle events also implement beam.Observer.
type Metric interface {
	loop.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans frames and recycles out to several metrics.
type Set []Metric

func (s Set) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	for _, m := range s {
		m.OnFrame(frame, pool, in)
	}
}

func (s Set) OnRecycle(index int, b beam.Beam) {
	for _, m := range s {
		if o, ok := m.(beam.Observer); ok {
			o.OnRecycle(index, b)
		}
	}
}

// Values maps metric names to their current values.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}
