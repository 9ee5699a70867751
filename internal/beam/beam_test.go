package beam

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/beams/internal/theme"
)

func TestIntensityPresets(t *testing.T) {
	tests := []struct {
		intensity Intensity
		count     int
		mult      float64
	}{
		{Subtle, 10, 0.3},
		{Medium, 15, 0.5},
		{Strong, 20, 0.7},
	}

	for _, tt := range tests {
		t.Run(string(tt.intensity), func(t *testing.T) {
			if got := tt.intensity.Count(); got != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, got)
			}
			if got := tt.intensity.OpacityMultiplier(); got != tt.mult {
				t.Errorf("expected multiplier %.1f, got %.1f", tt.mult, got)
			}
		})
	}
}

func TestParseIntensity(t *testing.T) {
	got, err := ParseIntensity(" Subtle ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got != Subtle {
		t.Errorf("expected subtle, got %s", got)
	}

	if _, err := ParseIntensity("blinding"); !errors.Is(err, ErrUnknownIntensity) {
		t.Errorf("expected ErrUnknownIntensity, got %v", err)
	}
}

func TestEffectiveOpacityBounds(t *testing.T) {
	for _, in := range Intensities {
		ceiling := in.MaxRenderedOpacity()
		for _, op := range []float64{MinOpacity, 0.055, MaxOpacity} {
			for pulse := 0.0; pulse < 4*math.Pi; pulse += 0.05 {
				got := EffectiveOpacity(Beam{Opacity: op, Pulse: pulse}, in)
				if got < 0 || got > ceiling+1e-12 {
					t.Fatalf("%s: opacity %.5f outside [0, %.5f] at pulse %.2f", in, got, ceiling, pulse)
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	f := NewFactory(rand.New(rand.NewSource(3)))
	b := f.Create(800, 600, theme.Brand)
	if err := b.Validate(); err != nil {
		t.Fatalf("factory beam invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Beam)
	}{
		{"narrow", func(b *Beam) { b.Width = 5 }},
		{"steep", func(b *Beam) { b.Angle = -60 }},
		{"still", func(b *Beam) { b.Speed = 0 }},
		{"bright", func(b *Beam) { b.Opacity = 0.5 }},
		{"fast pulse", func(b *Beam) { b.PulseSpeed = 1 }},
		{"no length", func(b *Beam) { b.Length = 0 }},
		{"nan x", func(b *Beam) { b.X = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := b
			tt.mutate(&bad)
			if err := bad.Validate(); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestColumn(t *testing.T) {
	for i, want := range []int{0, 1, 2, 0, 1, 2, 0} {
		if got := Column(i); got != want {
			t.Errorf("index %d: expected column %d, got %d", i, want, got)
		}
	}
}
