package beam

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Geometry and kinetics ranges. Every Beam produced by a Factory or a
// Simulator recycle lies inside them.
const (
	MinWidth = 20.0
	MaxWidth = 60.0

	BaseAngle   = -35.0
	AngleJitter = 5.0

	MinSpeed = 0.3
	MaxSpeed = 0.9

	MinOpacity = 0.03
	MaxOpacity = 0.08

	HueJitter = 20.0

	MinPulseSpeed = 0.01
	MaxPulseSpeed = 0.03

	// LengthFactor scales canvas height to beam length.
	LengthFactor = 2.0

	// SpawnOverscan widens the initial placement range past each edge.
	SpawnOverscan = 0.25

	// RecycleMargin is how far past an edge a beam travels before reuse.
	RecycleMargin = 100.0

	Columns      = 3
	ColumnJitter = 0.25
)

var (
	// ErrOutOfRange indicates a beam field outside its documented range.
	ErrOutOfRange = errors.New("beam: field out of range")

	// ErrUnknownIntensity indicates an intensity name that is not a preset.
	ErrUnknownIntensity = errors.New("beam: unknown intensity")
)

// Beam is one light streak. Angle is in degrees, Pulse in radians.
type Beam struct {
	X, Y       float64
	Width      float64
	Length     float64
	Angle      float64
	Speed      float64
	Opacity    float64
	Hue        float64
	Saturation float64
	Lightness  float64
	Pulse      float64
	PulseSpeed float64
}

// Validate reports the first field outside its range.
func (b Beam) Validate() error {
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"width", b.Width, MinWidth, MaxWidth},
		{"angle", b.Angle, BaseAngle - AngleJitter, BaseAngle + AngleJitter},
		{"speed", b.Speed, MinSpeed, MaxSpeed},
		{"opacity", b.Opacity, MinOpacity, MaxOpacity},
		{"pulse_speed", b.PulseSpeed, MinPulseSpeed, MaxPulseSpeed},
		{"length", b.Length, math.SmallestNonzeroFloat64, math.MaxFloat64},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || c.v < c.min || c.v > c.max {
			return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, c.name, c.v, c.min, c.max)
		}
	}
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
		return fmt.Errorf("%w: position (%g, %g)", ErrOutOfRange, b.X, b.Y)
	}
	return nil
}

// Column is the recycle column owned by a pool slot.
func Column(index int) int {
	c := index % Columns
	if c < 0 {
		c += Columns
	}
	return c
}

// Intensity is a named preset controlling pool size and opacity ceiling.
type Intensity string

const (
	Subtle Intensity = "subtle"
	Medium Intensity = "medium"
	Strong Intensity = "strong"
)

// Intensities lists every preset from faintest to strongest.
var Intensities = []Intensity{Subtle, Medium, Strong}

// ParseIntensity accepts a preset name in any case.
func ParseIntensity(s string) (Intensity, error) {
	i := Intensity(strings.ToLower(strings.TrimSpace(s)))
	switch i {
	case Subtle, Medium, Strong:
		return i, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntensity, s)
}

// Count is the pool size for the preset. Unknown values behave as Strong,
// matching the product's fallback.
func (i Intensity) Count() int {
	switch i {
	case Subtle:
		return 10
	case Medium:
		return 15
	default:
		return 20
	}
}

// OpacityMultiplier scales every beam's pulsed opacity.
func (i Intensity) OpacityMultiplier() float64 {
	switch i {
	case Subtle:
		return 0.3
	case Medium:
		return 0.5
	default:
		return 0.7
	}
}

// MaxRenderedOpacity is the ceiling no beam can exceed under this preset.
func (i Intensity) MaxRenderedOpacity() float64 {
	return MaxOpacity * i.OpacityMultiplier()
}

// EffectiveOpacity is the opacity a beam is drawn with this frame.
func EffectiveOpacity(b Beam, i Intensity) float64 {
	op := b.Opacity * (0.8 + 0.2*math.Sin(b.Pulse)) * i.OpacityMultiplier()
	if op < 0 {
		return 0
	}
	return op
}
