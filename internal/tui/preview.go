// Package tui previews the animation in a terminal. Each cell shows two
// pixels with an upper half block, foreground on top and background below.
package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/config"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/metrics"
	"github.com/san-kum/beams/internal/render/software"
	"github.com/san-kum/beams/internal/theme"
)

const (
	// CellScale is how many CSS pixels one terminal column covers. Beam widths
	// are sized for a page, so the terminal acts as a zoomed-out view.
	CellScale = 8
	// DefaultGain brightens the faint beams enough to read on a terminal.
	DefaultGain = 6.0
	statusRows  = 2
)

var background = color.RGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}

type tickMsg time.Time

type reloadMsg struct{ cfg *config.Config }

// Model is a bubbletea host for a loop.Controller. It is its own frame
// queue: every tick of the program drives one controller frame.
type Model struct {
	queue    *loop.FrameQueue
	surface  *software.Surface
	ctrl     *loop.Controller
	peak     *metrics.PeakOpacity
	resolver *theme.Resolver
	log      *zap.Logger

	fps     int
	gain    float64
	cols    int
	rows    int
	paused  bool
	reloads <-chan *config.Config
}

// Option configures a Model.
type Option func(*Model)

func WithLogger(log *zap.Logger) Option {
	return func(m *Model) { m.log = log }
}

// WithReloads applies every config received on ch to the running controller.
func WithReloads(ch <-chan *config.Config) Option {
	return func(m *Model) { m.reloads = ch }
}

func WithGain(g float64) Option {
	return func(m *Model) {
		if g > 0 {
			m.gain = g
		}
	}
}

func NewModel(opts loop.Options, resolver *theme.Resolver, fps int, options ...Option) Model {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	if resolver == nil {
		resolver = theme.NewResolver(nil, nil)
	}
	m := Model{
		queue:    loop.NewFrameQueue(),
		peak:     metrics.NewPeakOpacity(),
		resolver: resolver,
		log:      zap.NewNop(),
		fps:      fps,
		gain:     DefaultGain,
		cols:     80,
		rows:     24,
	}
	for _, o := range options {
		o(&m)
	}
	m.surface = software.NewSurface(float64(m.cols*CellScale), float64(m.pixelRows()*CellScale), 1.0/CellScale)
	m.ctrl = loop.New(m.surface, m.queue, opts,
		loop.WithLogger(m.log),
		loop.WithResolver(resolver),
		loop.WithObserver(m.peak),
	)
	return m
}

func (m Model) pixelRows() int {
	r := m.rows - statusRows
	if r < 1 {
		r = 1
	}
	return r * 2
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitReload(ch <-chan *config.Config) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg{cfg: cfg}
	}
}

func (m Model) Init() tea.Cmd {
	m.ctrl.Start()
	return tea.Batch(m.tick(), waitReload(m.reloads))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.ctrl.Stop()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "i":
			opts := m.ctrl.Options()
			opts.Intensity = next(beam.Intensities, opts.Intensity)
			m.ctrl.Reconfigure(opts)
		case "s":
			opts := m.ctrl.Options()
			opts.Scheme = next(theme.Schemes, opts.Scheme)
			opts.Key = ""
			if keys := m.resolver.Keys(opts.Scheme); len(keys) > 0 {
				opts.Key = keys[0]
			}
			m.ctrl.Reconfigure(opts)
		case "k":
			opts := m.ctrl.Options()
			if keys := m.resolver.Keys(opts.Scheme); len(keys) > 0 {
				opts.Key = next(keys, opts.Key)
				m.ctrl.Reconfigure(opts)
			}
		case "+", "=":
			m.gain *= 1.25
		case "-", "_":
			m.gain /= 1.25
		}

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.surface.SetClientSize(float64(m.cols*CellScale), float64(m.pixelRows()*CellScale))
		m.queue.TriggerResize()

	case tickMsg:
		if !m.paused {
			m.queue.Tick(time.Time(msg))
		}
		if m.ctrl.State() == loop.Stopped {
			return m, nil
		}
		return m, m.tick()

	case reloadMsg:
		m.ctrl.Reconfigure(msg.cfg.Options())
		m.log.Info("preview reconfigured", zap.String("intensity", msg.cfg.Intensity))
		return m, waitReload(m.reloads)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	img := m.surface.Snapshot(background)
	bounds := img.Bounds()

	for y := bounds.Min.Y; y+1 < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := m.boost(img, x, y)
			bottom := m.boost(img, x, y+1)
			b.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.status())
	return b.String()
}

func (m Model) status() string {
	opts := m.ctrl.Options()
	scheme := string(opts.Scheme)
	if opts.Key != "" {
		scheme += "/" + opts.Key
	}
	parts := []string{
		titleStyle.Render("beams"),
		labelStyle.Render("intensity ") + valueStyle.Render(string(opts.Intensity)),
		labelStyle.Render("theme ") + valueStyle.Render(scheme),
		labelStyle.Render("beams ") + valueStyle.Render(fmt.Sprint(len(m.ctrl.Beams()))),
		labelStyle.Render("frame ") + valueStyle.Render(fmt.Sprint(m.ctrl.Frames())),
		labelStyle.Render("peak ") + valueStyle.Render(fmt.Sprintf("%.3f", m.peak.Value())),
	}
	if m.paused {
		parts = append(parts, pausedStyle.Render("PAUSED"))
	}
	return strings.Join(parts, "  ") + "\n" +
		keyHint.Render("SP:pause  i:intensity  s:scheme  k:key  +/-:gain  q:quit")
}

// boost stretches a pixel's distance from the background by the gain.
func (m Model) boost(img *image.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	ch := func(v, bg uint8) uint8 {
		f := float64(bg) + (float64(v)-float64(bg))*m.gain
		if f < 0 {
			return 0
		}
		if f > 255 {
			return 255
		}
		return uint8(f)
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
		ch(c.R, background.R), ch(c.G, background.G), ch(c.B, background.B)))
}

// Controller exposes the running controller, mainly for tests.
func (m Model) Controller() *loop.Controller { return m.ctrl }

// Run starts the preview on the alternate screen and blocks until quit.
func Run(m Model) error {
	defer m.ctrl.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func next[T comparable](items []T, cur T) T {
	for i, it := range items {
		if it == cur {
			return items[(i+1)%len(items)]
		}
	}
	return items[0]
}
