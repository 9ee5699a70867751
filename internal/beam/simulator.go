package beam

import "math/rand"

// Simulator advances a pool by one frame.
type Simulator struct {
	rng       *rand.Rand
	intensity Intensity
	observers []Observer
}

// Observer is told about every recycle, with the slot index and the beam as
// it re-enters.
type Observer interface {
	OnRecycle(index int, b Beam)
}

func NewSimulator(rng *rand.Rand, intensity Intensity) *Simulator {
	return &Simulator{
		rng:       rng,
		intensity: intensity,
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Intensity() Intensity { return s.intensity }

// Step moves every beam up by its speed, advances its pulse and recycles the
// ones whose tail passed RecycleMargin above the top edge. It returns the
// number of recycled beams.
func (s *Simulator) Step(pool []Beam, w, h float64) int {
	recycled := 0
	for i := range pool {
		b := &pool[i]
		b.Y -= b.Speed
		b.Pulse += b.PulseSpeed

		if b.Y+b.Length < -RecycleMargin {
			s.Recycle(b, i, w, h)
			recycled++
		}
	}
	return recycled
}

// Recycle re-enters b below the bottom edge inside the column owned by index.
// Length, angle, colour and pulse carry over.
func (s *Simulator) Recycle(b *Beam, index int, w, h float64) {
	spacing := w / Columns
	column := float64(Column(index))
	jitter := ColumnJitter * spacing

	b.X = column*spacing + spacing/2 + uniform(s.rng, -jitter, jitter)
	b.Y = h + RecycleMargin
	b.Width = uniform(s.rng, MinWidth, MaxWidth)
	b.Speed = uniform(s.rng, MinSpeed, MaxSpeed)
	b.Opacity = uniform(s.rng, MinOpacity, MaxOpacity)

	for _, o := range s.observers {
		o.OnRecycle(index, *b)
	}
}

// Opacity is EffectiveOpacity under the simulator's intensity.
func (s *Simulator) Opacity(b Beam) float64 {
	return EffectiveOpacity(b, s.intensity)
}
