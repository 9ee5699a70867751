package beam

import (
	"math"
	"math/rand"

	"github.com/san-kum/beams/internal/theme"
)

// Factory is the only producer of Beam values.
type Factory struct {
	rng *rand.Rand
}

func NewFactory(rng *rand.Rand) *Factory {
	return &Factory{rng: rng}
}

// CreatePool returns count freshly seeded beams for a w×h canvas.
func (f *Factory) CreatePool(count int, w, h float64, base theme.HSL) []Beam {
	if count < 0 {
		count = 0
	}
	pool := make([]Beam, count)
	for i := range pool {
		pool[i] = f.Create(w, h, base)
	}
	return pool
}

// Create places a beam anywhere in the overscanned canvas so a new pool
// starts mid-flight instead of entering from one edge.
func (f *Factory) Create(w, h float64, base theme.HSL) Beam {
	return Beam{
		X:          f.uniform(-SpawnOverscan*w, (1+SpawnOverscan)*w),
		Y:          f.uniform(-SpawnOverscan*h, (1+SpawnOverscan)*h),
		Width:      f.uniform(MinWidth, MaxWidth),
		Length:     h * LengthFactor,
		Angle:      f.uniform(BaseAngle-AngleJitter, BaseAngle+AngleJitter),
		Speed:      f.uniform(MinSpeed, MaxSpeed),
		Opacity:    f.uniform(MinOpacity, MaxOpacity),
		Hue:        base.Hue + f.uniform(-HueJitter, HueJitter),
		Saturation: base.Saturation,
		Lightness:  base.Lightness,
		Pulse:      f.uniform(0, 2*math.Pi),
		PulseSpeed: f.uniform(MinPulseSpeed, MaxPulseSpeed),
	}
}

func (f *Factory) uniform(lo, hi float64) float64 {
	return uniform(f.rng, lo, hi)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
