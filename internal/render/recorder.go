package render

import "fmt"

// Op is one recorded Context call.
type Op struct {
	Name  string
	Args  []float64
	Stops []Stop
	// Transform is the device transform in effect when a fill was issued.
	Transform Matrix
	Depth     int
}

func (o Op) String() string {
	return fmt.Sprintf("%s%v", o.Name, o.Args)
}

// Recorder is a Context that keeps every call. It tracks the transform so
// tests can check where fills land without rasterising.
type Recorder struct {
	Ops   []Op
	stack *Stack
	blur  float64
}

func NewRecorder() *Recorder {
	return &Recorder{stack: NewStack()}
}

func (r *Recorder) record(name string, args ...float64) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args, Transform: r.stack.Current(), Depth: r.stack.Depth()})
}

func (r *Recorder) Clear()             { r.record("Clear") }
func (r *Recorder) SetBlur(px float64) { r.blur = px; r.record("SetBlur", px) }
func (r *Recorder) Save()              { r.record("Save"); r.stack.Save() }
func (r *Recorder) Restore()           { r.stack.Restore(); r.record("Restore") }
func (r *Recorder) Flush()             { r.record("Flush") }

func (r *Recorder) ResetTransform() {
	r.stack.Reset()
	r.record("ResetTransform")
}

func (r *Recorder) Scale(sx, sy float64) {
	r.stack.Scale(sx, sy)
	r.record("Scale", sx, sy)
}

func (r *Recorder) Translate(x, y float64) {
	r.stack.Translate(x, y)
	r.record("Translate", x, y)
}

func (r *Recorder) Rotate(rad float64) {
	r.stack.Rotate(rad)
	r.record("Rotate", rad)
}

func (r *Recorder) FillGradientRect(x, y, w, h float64, stops []Stop) {
	r.Ops = append(r.Ops, Op{
		Name:      "FillGradientRect",
		Args:      []float64{x, y, w, h},
		Stops:     append([]Stop(nil), stops...),
		Transform: r.stack.Current(),
		Depth:     r.stack.Depth(),
	})
}

// Blur is the last blur radius set.
func (r *Recorder) Blur() float64 { return r.blur }

// Fills returns only the FillGradientRect calls.
func (r *Recorder) Fills() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Name == "FillGradientRect" {
			out = append(out, op)
		}
	}
	return out
}

// Names lists call names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Name
	}
	return out
}

// Reset drops recorded calls but keeps the current transform.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// RecordingSurface is a Surface backed by a Recorder.
type RecordingSurface struct {
	Recorder *Recorder
	Width    float64
	Height   float64
	Ratio    float64
	BackingW int
	BackingH int
	detached bool
}

func NewRecordingSurface(w, h, ratio float64) *RecordingSurface {
	return &RecordingSurface{Recorder: NewRecorder(), Width: w, Height: h, Ratio: ratio}
}

func (s *RecordingSurface) Context() Context {
	if s.detached {
		return nil
	}
	return s.Recorder
}

func (s *RecordingSurface) ClientSize() (float64, float64) { return s.Width, s.Height }

func (s *RecordingSurface) PixelRatio() float64 { return s.Ratio }

func (s *RecordingSurface) SetBackingSize(w, h int) {
	s.BackingW, s.BackingH = w, h
}

// Detach makes Context report unavailable, as a canvas removed from its page.
func (s *RecordingSurface) Detach() { s.detached = true }

// Resize changes the client size as a window resize would.
func (s *RecordingSurface) Resize(w, h float64) { s.Width, s.Height = w, h }
