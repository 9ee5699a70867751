package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/beams/internal/render"
)

// minBlur is the device radius below which the glow pass is skipped.
const minBlur = 2.0

// Surface is the window's canvas. Frames are drawn into a persistent render
// texture at backing resolution and presented to the screen every frame,
// so a paused animation keeps its last image.
type Surface struct {
	bg     color.RGBA
	ctx    *Context
	canvas rl.RenderTexture2D
	w, h   int
}

func NewSurface(bg color.RGBA) *Surface {
	s := &Surface{bg: bg}
	s.ctx = &Context{s: s, stack: render.NewStack()}
	return s
}

// Context is nil until the window exists.
func (s *Surface) Context() render.Context {
	if !rl.IsWindowReady() {
		return nil
	}
	return s.ctx
}

// ClientSize is the window size in logical pixels.
func (s *Surface) ClientSize() (float64, float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

func (s *Surface) PixelRatio() float64 {
	r := float64(rl.GetWindowScaleDPI().X)
	if r <= 0 || math.IsNaN(r) {
		return 1
	}
	return r
}

func (s *Surface) SetBackingSize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if s.canvas.ID != 0 && s.w == w && s.h == h {
		return
	}
	if s.canvas.ID != 0 {
		rl.UnloadRenderTexture(s.canvas)
	}
	s.canvas = rl.LoadRenderTexture(int32(w), int32(h))
	rl.SetTextureFilter(s.canvas.Texture, rl.FilterBilinear)
	s.w, s.h = w, h
	s.ctx.stack = render.NewStack()

	rl.BeginTextureMode(s.canvas)
	rl.ClearBackground(s.bg)
	rl.EndTextureMode()
}

// Present draws the canvas over the whole window. Call between
// BeginDrawing and EndDrawing.
func (s *Surface) Present() {
	if s.canvas.ID == 0 {
		return
	}
	src := rl.Rectangle{Width: float32(s.w), Height: -float32(s.h)}
	dst := rl.Rectangle{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}
	rl.DrawTexturePro(s.canvas.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload releases GPU resources. The window must still be open.
func (s *Surface) Unload() {
	if s.canvas.ID != 0 {
		rl.UnloadRenderTexture(s.canvas)
		s.canvas = rl.RenderTexture2D{}
	}
	s.ctx.unload()
}

// Context draws with rlgl quads in device space. raylib resets its own
// matrices every frame, so the transform lives in a render.Stack and
// vertices are mapped on the CPU.
//
// The glow is drawn by rendering the frame into a texture a few times
// smaller than the canvas and scaling it back up with bilinear filtering.
type Context struct {
	s     *Surface
	stack *render.Stack
	blur  float64

	small          rl.RenderTexture2D
	smallW, smallH int
	factor         float64
	open           bool
}

// Clear starts a frame. The target is opened lazily so the blur set after
// it decides where beams are drawn.
func (c *Context) Clear() {
	if c.open {
		rl.EndTextureMode()
		c.open = false
	}
}

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
	c.begin()
	m := c.stack.Current()
	if c.factor > 1 {
		m = render.Identity.Scale(1/c.factor, 1/c.factor).Mul(m)
	}
	quads := render.Strips(m, x, y, w, h, stops)
	if len(quads) == 0 {
		return
	}

	rl.Begin(rl.Quads)
	for _, q := range quads {
		for _, v := range q {
			rl.Color4ub(v.Color.R, v.Color.G, v.Color.B, v.Color.A)
			rl.Vertex2f(float32(v.X), float32(v.Y))
		}
	}
	rl.End()
}

// Flush composites the frame into the canvas.
func (c *Context) Flush() {
	c.begin()
	rl.EndTextureMode()
	c.open = false

	if c.factor <= 1 {
		return
	}
	rl.BeginTextureMode(c.s.canvas)
	src := rl.Rectangle{Width: float32(c.smallW), Height: -float32(c.smallH)}
	dst := rl.Rectangle{Width: float32(c.s.w), Height: float32(c.s.h)}
	rl.DrawTexturePro(c.small.Texture, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndTextureMode()
}

// Blur is the current radius in device pixels.
func (c *Context) Blur() float64 { return c.blur }

func (c *Context) begin() {
	if c.open {
		return
	}
	c.open = true
	c.factor = 1
	target := c.s.canvas
	if c.blur >= minBlur {
		c.factor = math.Max(2, c.blur/4)
		c.ensureSmall()
		target = c.small
	}
	rl.BeginTextureMode(target)
	// the small target is opaque too, so upscaling it replaces the canvas
	rl.ClearBackground(c.s.bg)
}

func (c *Context) ensureSmall() {
	w := int(math.Max(1, math.Round(float64(c.s.w)/c.factor)))
	h := int(math.Max(1, math.Round(float64(c.s.h)/c.factor)))
	if c.small.ID != 0 && c.smallW == w && c.smallH == h {
		return
	}
	if c.small.ID != 0 {
		rl.UnloadRenderTexture(c.small)
	}
	c.small = rl.LoadRenderTexture(int32(w), int32(h))
	rl.SetTextureFilter(c.small.Texture, rl.FilterBilinear)
	c.smallW, c.smallH = w, h
}

func (c *Context) unload() {
	if c.small.ID != 0 {
		rl.UnloadRenderTexture(c.small)
		c.small = rl.RenderTexture2D{}
	}
}
