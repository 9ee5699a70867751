package metrics

import (
	"github.com/san-kum/beams/internal/beam"
)

// PeakOpacity tracks the brightest beam of every frame.
type PeakOpacity struct {
	name   string
	peak   float64
	series []float64
}

func NewPeakOpacity() *PeakOpacity {
	return &PeakOpacity{name: "peak_opacity"}
}

func (p *PeakOpacity) Name() string { return p.name }

func (p *PeakOpacity) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	frameMax := 0.0
	for _, b := range pool {
		if op := beam.EffectiveOpacity(b, in); op > frameMax {
			frameMax = op
		}
	}
	p.series = append(p.series, frameMax)
	if frameMax > p.peak {
		p.peak = frameMax
	}
}

// Value is the highest rendered opacity seen in the run.
func (p *PeakOpacity) Value() float64 { return p.peak }

// Series is the per-frame peak, one entry per observed frame.
func (p *PeakOpacity) Series() []float64 { return p.series }

func (p *PeakOpacity) Reset() {
	p.peak = 0
	p.series = p.series[:0]
}

// MeanOpacity averages rendered opacity over every beam of every frame.
type MeanOpacity struct {
	name    string
	sum     float64
	samples int
}

func NewMeanOpacity() *MeanOpacity {
	return &MeanOpacity{name: "mean_opacity"}
}

func (m *MeanOpacity) Name() string { return m.name }

func (m *MeanOpacity) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	for _, b := range pool {
		m.sum += beam.EffectiveOpacity(b, in)
		m.samples++
	}
}

func (m *MeanOpacity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanOpacity) Reset() {
	m.sum = 0
	m.samples = 0
}

// Bounds is the fraction of frames in which every beam stayed under the
// intensity's opacity ceiling and every beam passed Validate.
type Bounds struct {
	name       string
	violations int
	samples    int
}

func NewBounds() *Bounds {
	return &Bounds{name: "bounds"}
}

func (b *Bounds) Name() string { return b.name }

func (b *Bounds) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	b.samples++
	ceiling := in.MaxRenderedOpacity()
	for _, bm := range pool {
		op := beam.EffectiveOpacity(bm, in)
		if op < 0 || op > ceiling+1e-12 || bm.Validate() != nil {
			b.violations++
			break
		}
	}
}

func (b *Bounds) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounds) Reset() {
	b.violations = 0
	b.samples = 0
}
