package render

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform in row-major order:
//
//	| a b c |
//	| d e f |
type Matrix f64.Aff3

// Identity is the transform that maps every point to itself.
var Identity = Matrix{1, 0, 0, 0, 1, 0}

// Mul returns m·n, so n is applied to a point before m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

func (m Matrix) Translate(x, y float64) Matrix {
	return m.Mul(Matrix{1, 0, x, 0, 1, y})
}

func (m Matrix) Scale(sx, sy float64) Matrix {
	return m.Mul(Matrix{sx, 0, 0, 0, sy, 0})
}

func (m Matrix) Rotate(rad float64) Matrix {
	s, c := math.Sincos(rad)
	return m.Mul(Matrix{c, -s, 0, s, c, 0})
}

// Apply maps a point from local to device space.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Inverse returns the inverse transform and false when m is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, false
	}
	inv := 1 / det
	a, b, d, e := m[4]*inv, -m[1]*inv, -m[3]*inv, m[0]*inv
	return Matrix{
		a, b, -(a*m[2] + b*m[5]),
		d, e, -(d*m[2] + e*m[5]),
	}, true
}

// ScaleFactor is the geometric mean of the axis scales, used to size
// device-space effects such as blur.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m[0]*m[4] - m[1]*m[3]))
}

// Stack is a transform with a Save/Restore history.
type Stack struct {
	cur   Matrix
	saved []Matrix
}

func NewStack() *Stack { return &Stack{cur: Identity} }

func (s *Stack) Current() Matrix { return s.cur }

func (s *Stack) Save() { s.saved = append(s.saved, s.cur) }

// Restore pops the last saved transform. An unbalanced Restore is ignored.
func (s *Stack) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *Stack) Depth() int { return len(s.saved) }

func (s *Stack) Reset()                 { s.cur = Identity }
func (s *Stack) Translate(x, y float64) { s.cur = s.cur.Translate(x, y) }
func (s *Stack) Scale(sx, sy float64)   { s.cur = s.cur.Scale(sx, sy) }
func (s *Stack) Rotate(rad float64)     { s.cur = s.cur.Rotate(rad) }
