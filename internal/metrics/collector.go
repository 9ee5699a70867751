package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/beams/internal/beam"
)

// Collector exports live animation counters to Prometheus. Attach it to a
// controller with loop.WithObserver.
type Collector struct {
	frames   prometheus.Counter
	recycles *prometheus.CounterVec
	peak     prometheus.Gauge
	beams    prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beams_frames_total",
			Help: "Frames simulated and drawn.",
		}),
		recycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beams_recycles_total",
			Help: "Beams recycled below the canvas, by column.",
		}, []string{"column"}),
		peak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beams_peak_opacity",
			Help: "Highest rendered beam opacity in the last frame.",
		}),
		beams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beams_pool_size",
			Help: "Beams in the active pool.",
		}),
	}
	for _, m := range []prometheus.Collector{c.frames, c.recycles, c.peak, c.beams} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	peak := 0.0
	for _, b := range pool {
		if op := beam.EffectiveOpacity(b, in); op > peak {
			peak = op
		}
	}
	c.frames.Inc()
	c.peak.Set(peak)
	c.beams.Set(float64(len(pool)))
}

func (c *Collector) OnRecycle(index int, b beam.Beam) {
	c.recycles.WithLabelValues(strconv.Itoa(beam.Column(index))).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
