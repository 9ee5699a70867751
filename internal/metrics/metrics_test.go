package metrics

import (
	"math"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/theme"
)

// run drives a pool directly, the way the controller does.
func run(t *testing.T, in beam.Intensity, frames int, set Set) {
	t.Helper()
	const w, h = 600.0, 400.0
	rng := rand.New(rand.NewSource(3))
	pool := beam.NewFactory(rng).CreatePool(in.Count(), w, h, theme.Brand)
	sim := beam.NewSimulator(rng, in)
	sim.AddObserver(set)
	for f := 1; f <= frames; f++ {
		sim.Step(pool, w, h)
		set.OnFrame(f, pool, in)
	}
}

func TestPeakOpacity(t *testing.T) {
	m := NewPeakOpacity()
	run(t, beam.Medium, 500, Set{m})

	if m.Value() <= 0 {
		t.Error("expected positive peak")
	}
	if m.Value() > beam.Medium.MaxRenderedOpacity()+1e-12 {
		t.Errorf("peak %.4f above ceiling %.4f", m.Value(), beam.Medium.MaxRenderedOpacity())
	}
	if len(m.Series()) != 500 {
		t.Errorf("expected 500 samples, got %d", len(m.Series()))
	}

	m.Reset()
	if m.Value() != 0 || len(m.Series()) != 0 {
		t.Error("expected empty metric after reset")
	}
}

func TestMeanOpacity(t *testing.T) {
	m := NewMeanOpacity()
	if m.Value() != 0 {
		t.Error("expected zero before any frame")
	}

	pool := []beam.Beam{{Opacity: 0.04}, {Opacity: 0.08}}
	m.OnFrame(1, pool, beam.Strong)

	expected := (0.04 + 0.08) / 2 * 0.8 * 0.7
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected mean %.5f, got %.5f", expected, m.Value())
	}
}

func TestBounds(t *testing.T) {
	m := NewBounds()
	if m.Value() != 1.0 {
		t.Errorf("expected 1.0 with no samples, got %f", m.Value())
	}

	run(t, beam.Strong, 2000, Set{m})
	if m.Value() != 1.0 {
		t.Errorf("expected every frame in bounds, got %.4f", m.Value())
	}

	bad := []beam.Beam{{Opacity: 0.5, Width: 30, Length: 10, Angle: -35, Speed: 0.5, PulseSpeed: 0.02}}
	m.OnFrame(2001, bad, beam.Strong)
	if m.Value() >= 1.0 {
		t.Error("expected a violation to lower the score")
	}
}

func TestRecycles(t *testing.T) {
	m := NewRecycles()
	run(t, beam.Strong, 20000, Set{m})

	if m.Value() == 0 {
		t.Fatal("expected recycles over a long run")
	}
	cols := m.Columns()
	if cols[0]+cols[1]+cols[2] != int(m.Value()) {
		t.Errorf("histogram %v does not sum to %d", cols, int(m.Value()))
	}

	sum := 0.0
	for _, v := range m.Series() {
		sum += v
	}
	if sum != m.Value() {
		t.Errorf("per-frame series sums to %.0f, expected %.0f", sum, m.Value())
	}

	m.Reset()
	if m.Value() != 0 || m.Imbalance() != 0 {
		t.Error("expected empty metric after reset")
	}
}

func TestImbalance(t *testing.T) {
	m := NewRecycles()
	for i := 0; i < 30; i++ {
		m.OnRecycle(i, beam.Beam{})
	}
	if m.Imbalance() != 0 {
		t.Errorf("expected even split, got %.3f", m.Imbalance())
	}
	m.OnRecycle(0, beam.Beam{})
	m.OnRecycle(3, beam.Beam{})
	m.OnRecycle(6, beam.Beam{})
	// 13/10/10 over 33
	if got := m.Imbalance(); math.Abs(got-2.0/11) > 1e-12 {
		t.Errorf("expected %.4f, got %.4f", 2.0/11, got)
	}
}

func TestSetValues(t *testing.T) {
	set := Set{NewPeakOpacity(), NewMeanOpacity(), NewBounds(), NewRecycles()}
	run(t, beam.Subtle, 100, set)

	values := set.Values()
	for _, name := range []string{"peak_opacity", "mean_opacity", "bounds", "recycles"} {
		if _, ok := values[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}

	set.Reset()
	if set.Values()["peak_opacity"] != 0 {
		t.Error("expected reset to reach every metric")
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	pool := []beam.Beam{{Opacity: 0.08, Pulse: math.Pi / 2}, {Opacity: 0.03}}
	c.OnFrame(1, pool, beam.Medium)
	c.OnFrame(2, pool, beam.Medium)
	c.OnRecycle(4, beam.Beam{})

	if got := testutil.ToFloat64(c.frames); got != 2 {
		t.Errorf("expected 2 frames, got %.0f", got)
	}
	if got := testutil.ToFloat64(c.beams); got != 2 {
		t.Errorf("expected pool size 2, got %.0f", got)
	}
	if got := testutil.ToFloat64(c.peak); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("expected peak 0.04, got %.5f", got)
	}
	if got := testutil.ToFloat64(c.recycles.WithLabelValues("1")); got != 1 {
		t.Errorf("expected one recycle in column 1, got %.0f", got)
	}

	if _, err := NewCollector(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	c.OnFrame(1, nil, beam.Subtle)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "beams_frames_total 1") {
		t.Errorf("expected frame counter in output:\n%s", rec.Body.String())
	}
}
