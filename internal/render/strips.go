package render

import "image/color"

// Vertex is a device-space point with its colour.
type Vertex struct {
	X, Y  float64
	Color color.NRGBA
}

// Quad is ordered top-left, bottom-left, bottom-right, top-right in local
// space, the order raylib uses for its own rectangles.
type Quad [4]Vertex

// Strips splits a vertical gradient rectangle into one quad per pair of
// adjacent stops and maps the corners through m. Backends that interpolate
// vertex colours draw the gradient exactly from these.
func Strips(m Matrix, x, y, w, h float64, stops []Stop) []Quad {
	if len(stops) < 2 || w <= 0 || h <= 0 {
		return nil
	}
	quads := make([]Quad, 0, len(stops)-1)
	for i := 0; i+1 < len(stops); i++ {
		a, b := stops[i], stops[i+1]
		if b.Offset <= a.Offset {
			continue
		}
		y0 := y + clamp01(a.Offset)*h
		y1 := y + clamp01(b.Offset)*h
		ca, cb := a.NRGBA(), b.NRGBA()

		var q Quad
		q[0].X, q[0].Y = m.Apply(x, y0)
		q[1].X, q[1].Y = m.Apply(x, y1)
		q[2].X, q[2].Y = m.Apply(x+w, y1)
		q[3].X, q[3].Y = m.Apply(x+w, y0)
		q[0].Color, q[3].Color = ca, ca
		q[1].Color, q[2].Color = cb, cb
		quads = append(quads, q)
	}
	return quads
}
