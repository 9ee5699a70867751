// Package gui hosts the animation in a raylib window. The window loop is
// the frame host: every iteration runs the frame the controller requested
// during the previous one.
package gui

import (
	"errors"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/config"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/metrics"
	"github.com/san-kum/beams/internal/theme"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColAccent  = rl.NewColor(255, 170, 0, 255)
)

// ErrNoContext is returned when the window came up without a drawing
// context and the controller refused to start.
var ErrNoContext = errors.New("gui: drawing context unavailable")

type App struct {
	cfg       *config.Config
	log       *zap.Logger
	queue     *loop.FrameQueue
	surface   *Surface
	ctrl      *loop.Controller
	peak      *metrics.PeakOpacity
	resolver  *theme.Resolver
	observers []loop.Observer
	reloads   <-chan *config.Config

	paused  bool
	showHUD bool
}

type Option func(*App)

func WithLogger(log *zap.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithReloads applies every config received on ch between frames.
func WithReloads(ch <-chan *config.Config) Option {
	return func(a *App) { a.reloads = ch }
}

// WithObserver registers o with the controller, e.g. a metrics.Collector.
func WithObserver(o loop.Observer) Option {
	return func(a *App) { a.observers = append(a.observers, o) }
}

func NewApp(cfg *config.Config, options ...Option) *App {
	a := &App{
		cfg:     cfg,
		log:     zap.NewNop(),
		queue:   loop.NewFrameQueue(),
		surface: NewSurface(ColBg),
		peak:    metrics.NewPeakOpacity(),
		showHUD: true,
	}
	a.resolver = cfg.Resolver()
	for _, o := range options {
		o(a)
	}

	ctrlOpts := []loop.Option{
		loop.WithLogger(a.log),
		loop.WithResolver(a.resolver),
		loop.WithObserver(a.peak),
	}
	for _, o := range a.observers {
		ctrlOpts = append(ctrlOpts, loop.WithObserver(o))
	}
	a.ctrl = loop.New(a.surface, a.queue, cfg.Options(), ctrlOpts...)
	return a
}

func initWindow(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), "beams")
	rl.SetTargetFPS(int32(cfg.FPS))
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	initWindow(a.cfg)
	defer rl.CloseWindow()
	defer a.surface.Unload()
	defer a.ctrl.Close()

	a.ctrl.Start()
	if a.ctrl.State() != loop.Running {
		return ErrNoContext
	}
	w, h := a.ctrl.Size()
	a.log.Info("window open",
		zap.Float64("width", w),
		zap.Float64("height", h),
		zap.Float64("pixel_ratio", a.surface.PixelRatio()),
	)

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
			break
		}
		if rl.IsWindowResized() {
			a.queue.TriggerResize()
		}
		a.applyReloads()
		a.handleInput()

		rl.BeginDrawing()
		if !a.paused {
			a.queue.Tick(time.Now())
		}
		rl.ClearBackground(ColBg)
		a.surface.Present()
		if a.showHUD {
			a.drawHUD()
		}
		rl.EndDrawing()
	}
	return nil
}

func (a *App) applyReloads() {
	if a.reloads == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-a.reloads:
			if !ok {
				a.reloads = nil
				return
			}
			a.ctrl.Reconfigure(cfg.Options())
			a.log.Info("window reconfigured",
				zap.String("intensity", cfg.Intensity),
				zap.String("color_scheme", cfg.ColorScheme),
			)
		default:
			return
		}
	}
}

func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.showHUD = !a.showHUD
	}

	opts := a.ctrl.Options()
	keys := a.resolver.Keys
	switch {
	case rl.IsKeyPressed(rl.KeyI):
		opts.Intensity = cycle(beam.Intensities, opts.Intensity)
	case rl.IsKeyPressed(rl.KeyS):
		opts.Scheme = cycle(theme.Schemes, opts.Scheme)
		opts.Key = ""
		if k := keys(opts.Scheme); len(k) > 0 {
			opts.Key = k[0]
		}
	case rl.IsKeyPressed(rl.KeyK):
		k := keys(opts.Scheme)
		if len(k) == 0 {
			return
		}
		opts.Key = cycle(k, opts.Key)
	default:
		return
	}
	a.ctrl.Reconfigure(opts)
}

func (a *App) drawHUD() {
	opts := a.ctrl.Options()
	scheme := string(opts.Scheme)
	if opts.Key != "" {
		scheme += "/" + opts.Key
	}
	rl.DrawFPS(10, 10)
	rl.DrawText(fmt.Sprintf("%s  %s  beams %d  frame %d  peak %.3f",
		opts.Intensity, scheme, len(a.ctrl.Beams()), a.ctrl.Frames(), a.peak.Value()),
		10, 36, 16, ColText)
	rl.DrawText("SPACE pause  I intensity  S scheme  K key  H hud  Q quit", 10, int32(rl.GetScreenHeight())-24, 14, ColTextDim)
	if a.paused {
		rl.DrawText("PAUSED", int32(rl.GetScreenWidth())-90, 10, 20, ColAccent)
	}
}

// Controller exposes the running controller.
func (a *App) Controller() *loop.Controller { return a.ctrl }

func cycle[T comparable](items []T, cur T) T {
	for i, it := range items {
		if it == cur {
			return items[(i+1)%len(items)]
		}
	}
	return items[0]
}
