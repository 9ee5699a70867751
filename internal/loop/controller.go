package loop

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/render"
	"github.com/san-kum/beams/internal/theme"
)

// State is the controller lifecycle. Stopped is terminal.
type State int

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options are the caller-facing inputs of the animation.
type Options struct {
	Intensity beam.Intensity
	Scheme    theme.Scheme
	Key       string
	// Blur is the glow radius in CSS pixels. Negative means render.DefaultBlur.
	Blur float64
	// Seed fixes the random source. Zero seeds from the clock.
	Seed int64
}

// DefaultOptions is a medium, brand-coloured animation with the standard glow.
func DefaultOptions() Options {
	return Options{
		Intensity: beam.Medium,
		Scheme:    theme.SchemeDefault,
		Blur:      render.DefaultBlur,
	}
}

// Observer is called after every drawn frame with the pool as rendered.
// Observers that also implement beam.Observer receive recycle events.
type Observer interface {
	OnFrame(frame int, pool []beam.Beam, intensity beam.Intensity)
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

func WithResolver(r *theme.Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// Controller owns the beam pool and drives it from host frames. All methods
// are safe to call from any goroutine; frames and reloads serialise on one
// lock.
type Controller struct {
	mu sync.Mutex

	surface   render.Surface
	host      Host
	opts      Options
	resolver  *theme.Resolver
	log       *zap.Logger
	observers []Observer

	rng      *rand.Rand
	factory  *beam.Factory
	sim      *beam.Simulator
	renderer *render.Renderer
	pool     []beam.Beam
	width    float64
	height   float64

	state   State
	frame   FrameID
	pending bool
	detach  func()
	frames  int
}

func New(surface render.Surface, host Host, opts Options, options ...Option) *Controller {
	c := &Controller{
		surface:  surface,
		host:     host,
		resolver: theme.NewResolver(nil, nil),
		log:      zap.NewNop(),
	}
	for _, o := range options {
		o(c)
	}
	c.opts = normalize(opts)

	seed := c.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	c.rng = rand.New(rand.NewSource(seed))
	c.factory = beam.NewFactory(c.rng)
	return c
}

func normalize(o Options) Options {
	if o.Intensity == "" {
		o.Intensity = beam.Medium
	}
	if o.Scheme == "" {
		o.Scheme = theme.SchemeDefault
	}
	if o.Blur < 0 || math.IsNaN(o.Blur) {
		o.Blur = render.DefaultBlur
	}
	return o
}

// Start acquires the drawing context, seeds the pool and schedules the first
// frame. Without a context the controller stops for good and stays quiet.
// Start is a no-op unless the controller is Uninitialized.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Uninitialized {
		return
	}
	ctx := c.surface.Context()
	if ctx == nil {
		c.state = Stopped
		c.log.Debug("drawing context unavailable, animation disabled")
		return
	}

	c.state = Running
	c.fit(ctx)
	c.seed()
	c.detach = c.host.OnResize(c.Resize)
	c.schedule()

	c.log.Debug("animation started",
		zap.String("intensity", string(c.opts.Intensity)),
		zap.String("scheme", string(c.opts.Scheme)),
		zap.Int("beams", len(c.pool)),
	)
}

// Stop cancels the pending frame and the resize subscription. It is safe to
// call any number of times; once it returns no further frame runs.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return
	}
	if c.pending {
		c.host.CancelFrame(c.frame)
		c.pending = false
	}
	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
	c.state = Stopped
	c.log.Debug("animation stopped", zap.Int("frames", c.frames))
}

// Close stops the controller so it can be released with defer.
func (c *Controller) Close() error {
	c.Stop()
	return nil
}

// Resize refits the backing store to the surface and re-seeds the pool. A
// context that disappeared mid-resize skips the update.
func (c *Controller) Resize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return
	}
	ctx := c.surface.Context()
	if ctx == nil {
		c.log.Debug("resize skipped, drawing context unavailable")
		return
	}
	c.fit(ctx)
	c.seed()
	c.log.Debug("resized", zap.Float64("width", c.width), zap.Float64("height", c.height))
}

// Reconfigure swaps theme, intensity or glow. While running, the pool is
// re-seeded in one step, so the next frame already uses the new options.
func (c *Controller) Reconfigure(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seed := c.opts.Seed
	c.opts = normalize(opts)
	c.opts.Seed = seed

	if c.state != Running {
		return
	}
	c.seed()
	c.log.Debug("reconfigured",
		zap.String("intensity", string(c.opts.Intensity)),
		zap.String("scheme", string(c.opts.Scheme)),
		zap.String("key", c.opts.Key),
	)
}

// Beams returns a copy of the pool.
func (c *Controller) Beams() []beam.Beam {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]beam.Beam, len(c.pool))
	copy(out, c.pool)
	return out
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Frames counts frames drawn since Start.
func (c *Controller) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Size is the logical canvas size the pool was seeded for.
func (c *Controller) Size() (w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Controller) tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = false
	if c.state != Running {
		return
	}

	if ctx := c.surface.Context(); ctx != nil {
		c.sim.Step(c.pool, c.width, c.height)
		c.renderer.Draw(ctx, c.pool)
		c.frames++
		for _, o := range c.observers {
			o.OnFrame(c.frames, c.pool, c.opts.Intensity)
		}
	}
	c.schedule()
}

func (c *Controller) schedule() {
	c.frame = c.host.RequestFrame(c.tick)
	c.pending = true
}

// fit sizes the backing store to client size × pixel ratio and maps CSS
// pixels onto it.
func (c *Controller) fit(ctx render.Context) {
	w, h := c.surface.ClientSize()
	ratio := c.surface.PixelRatio()
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	c.surface.SetBackingSize(int(math.Round(w*ratio)), int(math.Round(h*ratio)))
	ctx.ResetTransform()
	ctx.Scale(ratio, ratio)
	c.width, c.height = w, h
}

// seed resolves the theme once and replaces the pool wholesale.
func (c *Controller) seed() {
	base := c.resolver.Resolve(c.opts.Scheme, c.opts.Key)
	c.sim = beam.NewSimulator(c.rng, c.opts.Intensity)
	for _, o := range c.observers {
		if ro, ok := o.(beam.Observer); ok {
			c.sim.AddObserver(ro)
		}
	}
	c.renderer = render.NewRenderer(c.opts.Intensity, c.opts.Blur)
	c.pool = c.factory.CreatePool(c.opts.Intensity.Count(), c.width, c.height, base)
}
