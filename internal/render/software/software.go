// Package software is a CPU implementation of render.Surface. It rasterises
// beams with golang.org/x/image/vector into a 16-bit RGBA image and
// approximates the glow by resampling the frame through a smaller buffer.
// Export, terminal preview and tests all draw through it.
package software

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/san-kum/beams/internal/render"
)

// Surface is an offscreen canvas. The zero value is not usable; call
// NewSurface.
type Surface struct {
	clientW, clientH float64
	ratio            float64
	ctx              *Context
	detached         bool
}

// NewSurface returns a surface with the given client size in CSS pixels and
// device pixel ratio. The backing store is empty until SetBackingSize.
func NewSurface(w, h, ratio float64) *Surface {
	if ratio <= 0 {
		ratio = 1
	}
	return &Surface{
		clientW: w,
		clientH: h,
		ratio:   ratio,
		ctx:     newContext(),
	}
}

func (s *Surface) Context() render.Context {
	if s.detached {
		return nil
	}
	return s.ctx
}

func (s *Surface) ClientSize() (float64, float64) { return s.clientW, s.clientH }

func (s *Surface) PixelRatio() float64 { return s.ratio }

func (s *Surface) SetBackingSize(w, h int) { s.ctx.resize(w, h) }

// SetClientSize changes the logical size, as a window resize would. The
// caller is expected to follow it with a controller Resize.
func (s *Surface) SetClientSize(w, h float64) { s.clientW, s.clientH = w, h }

func (s *Surface) SetPixelRatio(r float64) {
	if r > 0 {
		s.ratio = r
	}
}

// Detach makes the context unavailable.
func (s *Surface) Detach() { s.detached = true }

// Image is the live backing store. It is overwritten by the next frame.
func (s *Surface) Image() *image.RGBA64 { return s.ctx.img }

// Snapshot composites the current frame over bg into a new 8-bit image.
func (s *Surface) Snapshot(bg color.Color) *image.RGBA {
	b := s.ctx.img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, b, s.ctx.img, b.Min, draw.Over)
	return out
}

// Frames counts flushed frames.
func (s *Surface) Frames() int { return s.ctx.frames }

// Context implements render.Context on an RGBA64 image.
type Context struct {
	img    *image.RGBA64
	small  *image.RGBA64
	rast   *vector.Rasterizer
	stack  *render.Stack
	blur   float64
	frames int
}

func newContext() *Context {
	return &Context{
		img:   image.NewRGBA64(image.Rectangle{}),
		rast:  vector.NewRasterizer(0, 0),
		stack: render.NewStack(),
	}
}

func (c *Context) resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if c.img.Bounds().Dx() == w && c.img.Bounds().Dy() == h {
		return
	}
	c.img = image.NewRGBA64(image.Rect(0, 0, w, h))
	c.small = nil
	// a canvas resets its state when the backing store changes
	c.stack = render.NewStack()
}

func (c *Context) Clear() { clear(c.img.Pix) }

// SetBlur takes the radius in user space and stores it in device pixels.
func (c *Context) SetBlur(px float64) {
	if px < 0 || math.IsNaN(px) {
		px = 0
	}
	c.blur = px * c.stack.Current().ScaleFactor()
}

func (c *Context) Save()                  { c.stack.Save() }
func (c *Context) Restore()               { c.stack.Restore() }
func (c *Context) ResetTransform()        { c.stack.Reset() }
func (c *Context) Scale(sx, sy float64)   { c.stack.Scale(sx, sy) }
func (c *Context) Translate(x, y float64) { c.stack.Translate(x, y) }
func (c *Context) Rotate(rad float64)     { c.stack.Rotate(rad) }

func (c *Context) FillGradientRect(x, y, w, h float64, stops []render.Stop) {
	if w <= 0 || h <= 0 || len(stops) == 0 {
		return
	}
	m := c.stack.Current()
	inv, ok := m.Inverse()
	if !ok {
		return
	}

	var pts [4][2]float64
	pts[0][0], pts[0][1] = m.Apply(x, y)
	pts[1][0], pts[1][1] = m.Apply(x+w, y)
	pts[2][0], pts[2][1] = m.Apply(x+w, y+h)
	pts[3][0], pts[3][1] = m.Apply(x, y+h)

	box := bounds(pts).Intersect(c.img.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	c.rast.Reset(box.Dx(), box.Dy())
	c.rast.MoveTo(float32(pts[0][0]-ox), float32(pts[0][1]-oy))
	for _, p := range pts[1:] {
		c.rast.LineTo(float32(p[0]-ox), float32(p[1]-oy))
	}
	c.rast.ClosePath()

	src := &gradient{inv: inv, top: y, height: h, stops: stops}
	c.rast.Draw(c.img, box, src, box.Min)
}

// Flush applies the glow to the finished frame.
func (c *Context) Flush() {
	c.applyBlur()
	c.frames++
}

// applyBlur downsamples the frame by roughly a quarter of the radius and
// scales it back up. Bilinear filtering on both passes gives a soft falloff
// close enough to a gaussian for a background glow.
func (c *Context) applyBlur() {
	if c.blur < 2 {
		return
	}
	b := c.img.Bounds()
	if b.Empty() {
		return
	}
	f := math.Max(2, c.blur/4)
	sw := int(math.Max(1, math.Round(float64(b.Dx())/f)))
	sh := int(math.Max(1, math.Round(float64(b.Dy())/f)))
	if c.small == nil || c.small.Bounds().Dx() != sw || c.small.Bounds().Dy() != sh {
		c.small = image.NewRGBA64(image.Rect(0, 0, sw, sh))
	}
	draw.BiLinear.Scale(c.small, c.small.Bounds(), c.img, b, draw.Src, nil)
	draw.BiLinear.Scale(c.img, b, c.small, c.small.Bounds(), draw.Src, nil)
}

// Blur is the current blur radius in device pixels.
func (c *Context) Blur() float64 { return c.blur }

func bounds(pts [4][2]float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsInf(minX, 0) || math.IsInf(maxY, 0) {
		return image.Rectangle{}
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// gradient is an unbounded source image that maps each device pixel back to
// the rectangle's local space and samples the stops along its height.
type gradient struct {
	inv    render.Matrix
	top    float64
	height float64
	stops  []render.Stop
}

func (g *gradient) ColorModel() color.Model { return color.NRGBA64Model }

func (g *gradient) Bounds() image.Rectangle {
	return image.Rect(-1<<30, -1<<30, 1<<30, 1<<30)
}

func (g *gradient) At(x, y int) color.Color {
	_, ly := g.inv.Apply(float64(x)+0.5, float64(y)+0.5)
	col, a := render.Sample(g.stops, (ly-g.top)/g.height)
	col = col.Clamped()
	return color.NRGBA64{
		R: to16(col.R),
		G: to16(col.G),
		B: to16(col.B),
		A: to16(a),
	}
}

func to16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
