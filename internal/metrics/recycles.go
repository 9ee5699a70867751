package metrics

import (
	"math"

	"github.com/san-kum/beams/internal/beam"
)

// Recycles counts recycle events and the column each landed in.
type Recycles struct {
	name     string
	total    int
	columns  [beam.Columns]int
	perFrame []float64
	pending  int
}

func NewRecycles() *Recycles {
	return &Recycles{name: "recycles"}
}

func (r *Recycles) Name() string { return r.name }

func (r *Recycles) OnRecycle(index int, b beam.Beam) {
	r.total++
	r.columns[beam.Column(index)]++
	r.pending++
}

func (r *Recycles) OnFrame(frame int, pool []beam.Beam, in beam.Intensity) {
	r.perFrame = append(r.perFrame, float64(r.pending))
	r.pending = 0
}

func (r *Recycles) Value() float64 { return float64(r.total) }

// Columns is the recycle histogram by column.
func (r *Recycles) Columns() [beam.Columns]int { return r.columns }

// Series is the number of recycles per observed frame.
func (r *Recycles) Series() []float64 { return r.perFrame }

// Imbalance is the largest relative deviation of a column from an even
// split. Zero when nothing recycled.
func (r *Recycles) Imbalance() float64 {
	if r.total == 0 {
		return 0
	}
	even := float64(r.total) / beam.Columns
	worst := 0.0
	for _, n := range r.columns {
		worst = math.Max(worst, math.Abs(float64(n)-even)/even)
	}
	return worst
}

func (r *Recycles) Reset() {
	r.total = 0
	r.columns = [beam.Columns]int{}
	r.perFrame = r.perFrame[:0]
	r.pending = 0
}
