package render

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/theme"
)

// DefaultBlur is the glow radius in CSS pixels.
const DefaultBlur = 22.0

// Context is the subset of a 2D drawing context the beam renderer needs.
// Transforms compose like an HTML canvas: later calls apply first.
type Context interface {
	Clear()
	SetBlur(px float64)
	Save()
	Restore()
	ResetTransform()
	Scale(sx, sy float64)
	Translate(x, y float64)
	Rotate(rad float64)
	// FillGradientRect fills the rectangle with a gradient running from its
	// top edge (offset 0) to its bottom edge (offset 1) in local space.
	FillGradientRect(x, y, w, h float64, stops []Stop)
	// Flush ends the frame.
	Flush()
}

// Surface owns a Context and its backing store. Context returns nil while
// the surface is unavailable.
type Surface interface {
	Context() Context
	ClientSize() (w, h float64)
	PixelRatio() float64
	SetBackingSize(w, h int)
}

// Stop is one gradient colour stop. Alpha is kept as a float so faint beams
// are not quantised before compositing.
type Stop struct {
	Offset float64
	Color  colorful.Color
	Alpha  float64
}

// NRGBA returns the stop as a non-premultiplied 8-bit colour.
func (s Stop) NRGBA() color.NRGBA {
	r, g, b := s.Color.Clamped().RGB255()
	a := math.Round(clamp01(s.Alpha) * 255)
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}
}

var (
	stopOffsets = [5]float64{0, 0.1, 0.5, 0.9, 1}
	stopAlphas  = [5]float64{0, 0.3, 1, 0.3, 0}
)

// GradientStops shapes a beam's colour along its length: transparent ends,
// soft shoulders and a solid middle at opacity op.
func GradientStops(b beam.Beam, op float64) []Stop {
	c := theme.HSL{Hue: b.Hue, Saturation: b.Saturation, Lightness: b.Lightness}.Color()
	stops := make([]Stop, len(stopOffsets))
	for i := range stops {
		stops[i] = Stop{Offset: stopOffsets[i], Color: c, Alpha: stopAlphas[i] * op}
	}
	return stops
}

// Sample interpolates stops at t in [0, 1]. Stops must be sorted by offset.
func Sample(stops []Stop, t float64) (colorful.Color, float64) {
	if len(stops) == 0 {
		return colorful.Color{}, 0
	}
	if t <= stops[0].Offset {
		return stops[0].Color, stops[0].Alpha
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color, b.Alpha
			}
			f := (t - a.Offset) / span
			return a.Color.BlendRgb(b.Color, f), a.Alpha + (b.Alpha-a.Alpha)*f
		}
	}
	last := stops[len(stops)-1]
	return last.Color, last.Alpha
}

// Renderer draws a beam pool onto a Context.
type Renderer struct {
	intensity beam.Intensity
	blur      float64
}

func NewRenderer(intensity beam.Intensity, blur float64) *Renderer {
	if blur < 0 {
		blur = 0
	}
	return &Renderer{intensity: intensity, blur: blur}
}

// Draw clears the context and paints every beam. Each beam is bracketed by
// Save/Restore so transforms never leak between beams.
func (r *Renderer) Draw(ctx Context, pool []beam.Beam) {
	if ctx == nil {
		return
	}
	ctx.Clear()
	ctx.SetBlur(r.blur)

	for _, b := range pool {
		op := beam.EffectiveOpacity(b, r.intensity)
		ctx.Save()
		ctx.Translate(b.X, b.Y)
		ctx.Rotate(b.Angle * math.Pi / 180)
		// the beam hangs from its anchor, so a recycled beam enters from below
		ctx.FillGradientRect(-b.Width/2, 0, b.Width, b.Length, GradientStops(b, op))
		ctx.Restore()
	}
	ctx.Flush()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
