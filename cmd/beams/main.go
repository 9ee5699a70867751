package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/config"
	"github.com/san-kum/beams/internal/export"
	"github.com/san-kum/beams/internal/gui"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/metrics"
	"github.com/san-kum/beams/internal/render"
	"github.com/san-kum/beams/internal/render/software"
	"github.com/san-kum/beams/internal/theme"
	"github.com/san-kum/beams/internal/tui"
)

var (
	logLevel   string
	configFile string
	preset     string
	watch      bool

	intensity  string
	scheme     string
	contextKey string
	blur       float64
	seed       int64
	width      int
	height     int
	pixelRatio float64
	fps        int

	// window
	metricsAddr string
	// preview
	gain float64
	// render
	outPath      string
	renderFrames int
	scale        float64
	// stats, bench
	statsFrames int
	benchFrames int
)

var log = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beams",
		Short: "ambient light beam backgrounds",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		RunE: runWindow,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "page preset as page/name, see 'beams presets'")
	pf.StringVar(&intensity, "intensity", "medium", "subtle, medium or strong")
	pf.StringVar(&scheme, "scheme", "default", "color scheme: default, apt or emotion")
	pf.StringVar(&contextKey, "key", "", "lookup key within the color scheme")
	pf.Float64Var(&blur, "blur", render.DefaultBlur, "glow radius in css pixels")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	pf.IntVar(&width, "width", config.DefaultWidth, "canvas width in css pixels")
	pf.IntVar(&height, "height", config.DefaultHeight, "canvas height in css pixels")
	pf.Float64Var(&pixelRatio, "ratio", config.DefaultPixelRatio, "device pixel ratio for offscreen output")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	pf.BoolVar(&watch, "watch", false, "reload the config file when it changes (window, preview)")
	// the root command runs the window too
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "run the animation in a window",
		RunE:  runWindow,
	}
	windowCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "run the animation in the terminal",
		RunE:  runPreview,
	}
	previewCmd.Flags().Float64Var(&gain, "gain", tui.DefaultGain, "brightness gain for the terminal")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames to a gif or a png directory",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "beams.gif", "output .gif file or directory for png frames")
	renderCmd.Flags().IntVarP(&renderFrames, "frames", "n", 120, "number of frames")
	renderCmd.Flags().Float64Var(&scale, "scale", 1, "output scale applied after rendering")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "run headless and plot animation statistics",
		RunE:  runStats,
	}
	statsCmd.Flags().IntVarP(&statsFrames, "frames", "n", 1800, "number of frames")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the software renderer per intensity",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVarP(&benchFrames, "frames", "n", 60, "frames per intensity")

	themesCmd := &cobra.Command{
		Use:   "themes [scheme]",
		Short: "list resolved theme colors",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listThemes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [page]",
		Short: "list page presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(windowCmd, previewCmd, renderCmd, statsCmd, benchCmd, themesCmd, presetsCmd)
	return rootCmd
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	// the terminal preview owns stdout
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadConfig layers defaults, the config file, the preset and explicit
// flags, in that order. A preset only carries page-level fields, so it can
// restyle a file without touching its output settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	if preset != "" {
		page, name, ok := strings.Cut(preset, "/")
		p := config.GetPreset(page, name)
		if !ok || p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(allPresets(), ", "))
		}
		cfg.Merge(p)
	}

	flags := cmd.Flags()
	if flags.Changed("intensity") {
		cfg.Intensity = intensity
	}
	if flags.Changed("scheme") {
		cfg.ColorScheme = scheme
	}
	if flags.Changed("key") {
		cfg.ContextKey = contextKey
	}
	if flags.Changed("blur") {
		cfg.Blur = blur
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("ratio") {
		cfg.PixelRatio = pixelRatio
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func allPresets() []string {
	var names []string
	for _, page := range config.Pages() {
		for _, name := range config.ListPresets(page) {
			names = append(names, page+"/"+name)
		}
	}
	return names
}

// watchConfig starts a file watcher when --watch is set and returns the
// channel reloads arrive on. Reloads that arrive faster than the host
// drains them replace the pending one.
func watchConfig(ctx context.Context) <-chan *config.Config {
	if !watch || configFile == "" {
		return nil
	}
	ch := make(chan *config.Config, 1)
	go func() {
		err := config.Watch(ctx, configFile, log, func(cfg *config.Config) {
			select {
			case <-ch:
			default:
			}
			ch <- cfg
		})
		if err != nil {
			log.Warn("config watch stopped", zap.Error(err))
		}
	}()
	return ch
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []gui.Option{
		gui.WithLogger(log),
		gui.WithReloads(watchConfig(ctx)),
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, gui.WithObserver(collector))

		srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	return gui.NewApp(cfg, opts...).Run()
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.NewModel(cfg.Options(), cfg.Resolver(), cfg.FPS,
		tui.WithLogger(log),
		tui.WithReloads(watchConfig(ctx)),
		tui.WithGain(gain),
	)
	return tui.Run(m)
}

// headless starts a controller on a software surface sized from cfg.
func headless(cfg *config.Config, observers ...loop.Observer) (*software.Surface, *loop.FrameQueue, *loop.Controller, error) {
	surface := software.NewSurface(float64(cfg.Width), float64(cfg.Height), cfg.PixelRatio)
	queue := loop.NewFrameQueue()
	opts := []loop.Option{loop.WithLogger(log), loop.WithResolver(cfg.Resolver())}
	for _, o := range observers {
		opts = append(opts, loop.WithObserver(o))
	}
	ctrl := loop.New(surface, queue, cfg.Options(), opts...)
	ctrl.Start()
	if ctrl.State() != loop.Running {
		return nil, nil, nil, errors.New("controller did not start")
	}
	return surface, queue, ctrl, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if renderFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", renderFrames)
	}
	surface, queue, ctrl, err := headless(cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	outW := int(float64(cfg.Width) * cfg.PixelRatio * scale)
	outH := int(float64(cfg.Height) * cfg.PixelRatio * scale)
	resize := func(img *image.RGBA) *image.RGBA {
		if scale == 1 || outW < 1 || outH < 1 {
			return img
		}
		return export.Scale(img, outW, outH)
	}

	start := time.Now()
	if strings.HasSuffix(strings.ToLower(outPath), ".gif") {
		var captured []*image.RGBA
		err := export.Record(ctx, surface, queue, renderFrames, export.Background, func(i int, img *image.RGBA) error {
			captured = append(captured, resize(img))
			return nil
		})
		if err != nil {
			return err
		}
		opts := ctrl.Options()
		pal := export.Palette(export.Background, cfg.Resolver().Resolve(opts.Scheme, opts.Key))

		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := export.EncodeGIF(f, captured, pal, export.FrameDelay(cfg.FPS)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(outPath, 0755); err != nil {
			return err
		}
		seq := export.NewSequence(outPath, 0)
		err := export.Record(ctx, surface, queue, renderFrames, export.Background, func(i int, img *image.RGBA) error {
			seq.Write(i, resize(img))
			return nil
		})
		if closeErr := seq.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}

	log.Info("render done", zap.Int("frames", renderFrames), zap.Duration("elapsed", time.Since(start)))
	fmt.Printf("wrote %d frames to %s\n", renderFrames, outPath)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if statsFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", statsFrames)
	}

	peak := metrics.NewPeakOpacity()
	recycles := metrics.NewRecycles()
	set := metrics.Set{peak, metrics.NewMeanOpacity(), metrics.NewBounds(), recycles}

	// the recorder skips rasterisation, so long runs stay cheap
	surface := render.NewRecordingSurface(float64(cfg.Width), float64(cfg.Height), cfg.PixelRatio)
	queue := loop.NewFrameQueue()
	ctrl := loop.New(surface, queue, cfg.Options(),
		loop.WithLogger(log),
		loop.WithResolver(cfg.Resolver()),
		loop.WithObserver(set),
	)
	ctrl.Start()
	defer ctrl.Close()

	start := time.Now()
	ops := 0
	for i := 0; i < statsFrames; i++ {
		if queue.Tick(start.Add(time.Duration(i) * time.Second / time.Duration(cfg.FPS))) == 0 {
			return fmt.Errorf("controller stopped after %d frames", i)
		}
		ops = len(surface.Recorder.Ops)
		surface.Recorder.Reset()
	}

	opts := ctrl.Options()
	fmt.Printf("intensity: %s\n", opts.Intensity)
	fmt.Printf("theme: %s %s\n", opts.Scheme, opts.Key)
	fmt.Printf("beams: %d\n", len(ctrl.Beams()))
	fmt.Printf("frames: %d\n\n", statsFrames)

	fmt.Println(asciigraph.Plot(peak.Series(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("peak rendered opacity"),
	))
	fmt.Println()

	if series := recycles.Series(); len(series) > 0 {
		fmt.Println(asciigraph.Plot(cumulative(series),
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("recycled beams (cumulative)"),
		))
		fmt.Println()
	}

	cols := recycles.Columns()
	most := 0
	for _, n := range cols {
		most = max(most, n)
	}
	for i, n := range cols {
		bar := 0
		if most > 0 {
			bar = n * 40 / most
		}
		fmt.Printf("column %d  %-40s %d\n", i, strings.Repeat("#", bar), n)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	values := set.Values()
	for _, m := range set {
		fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), values[m.Name()])
	}
	fmt.Fprintf(w, "column_imbalance\t%.4f\n", recycles.Imbalance())
	fmt.Fprintf(w, "ops_per_frame\t%d\n", ops)
	return w.Flush()
}

func cumulative(xs []float64) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		out[i] = sum
	}
	return out
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if benchFrames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", benchFrames)
	}

	fmt.Printf("benchmarking %dx%d @%.1fx, blur %.0f\n\n", cfg.Width, cfg.Height, cfg.PixelRatio, cfg.Blur)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTENSITY\tBEAMS\tFRAMES\tTIME\tFRAMES/SEC")

	for _, in := range beam.Intensities {
		run := *cfg
		run.Intensity = string(in)
		_, queue, ctrl, err := headless(&run)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchFrames; i++ {
			queue.Tick(start)
		}
		elapsed := time.Since(start)
		ctrl.Close()

		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.1f\n",
			in, in.Count(), benchFrames, elapsed.Round(time.Millisecond), float64(benchFrames)/elapsed.Seconds())
	}
	return w.Flush()
}

func listThemes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resolver := cfg.Resolver()

	schemes := theme.Schemes
	if len(args) == 1 {
		s := theme.Scheme(args[0])
		found := false
		for _, known := range theme.Schemes {
			found = found || known == s
		}
		if !found {
			return fmt.Errorf("%w: %q", config.ErrUnknownScheme, args[0])
		}
		schemes = []theme.Scheme{s}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tKEY\tHUE\tSAT\tLIGHT\tHEX")
	for _, s := range schemes {
		keys := resolver.Keys(s)
		if len(keys) == 0 {
			keys = []string{""}
		}
		for _, k := range keys {
			hsl := resolver.Resolve(s, k)
			label := k
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f%%\t%.0f%%\t%s\n",
				s, label, hsl.Hue, hsl.Saturation, hsl.Lightness, hsl.Color().Hex())
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	pages := config.Pages()
	if len(args) == 1 {
		if len(config.ListPresets(args[0])) == 0 {
			fmt.Printf("no presets for page: %s\n", args[0])
			return nil
		}
		pages = []string{args[0]}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tINTENSITY\tSCHEME\tKEY\tBLUR")
	for _, page := range pages {
		for _, name := range config.ListPresets(page) {
			p := config.GetPreset(page, name)
			fmt.Fprintf(w, "%s/%s\t%s\t%s\t%s\t%.0f\n",
				page, name, p.Intensity, p.ColorScheme, p.ContextKey, p.Blur)
		}
	}
	return w.Flush()
}
