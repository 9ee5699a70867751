// Package export renders the animation headlessly and writes it out as an
// animated GIF or a numbered PNG sequence.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/render/software"
	"github.com/san-kum/beams/internal/theme"
)

// ErrStopped is returned when the controller stops scheduling frames before
// the requested count was captured.
var ErrStopped = errors.New("export: animation stopped")

// Background is the dark page colour the beams are composited over.
var Background = color.RGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}

// Record ticks q n times and hands each frame, composited over bg, to fn. The
// controller behind q must already be started on s.
func Record(ctx context.Context, s *software.Surface, q *loop.FrameQueue, n int, bg color.Color, fn func(i int, img *image.RGBA) error) error {
	start := time.Now()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// frames are paced by count, not wall time
		if q.Tick(start.Add(time.Duration(i) * time.Second / 60)) == 0 {
			return fmt.Errorf("%w after %d of %d frames", ErrStopped, i, n)
		}
		if err := fn(i, s.Snapshot(bg)); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// Palette ramps from bg towards the base colour across the hue jitter a pool
// can show. Beams are faint, so the ramp only spans the first tenth of the
// way to full colour.
func Palette(bg color.Color, base theme.HSL) color.Palette {
	const hues, levels = 8, 32
	r, g, b, _ := bg.RGBA()
	bgc := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}

	pal := make(color.Palette, 0, hues*levels)
	pal = append(pal, bgc)
	for h := 0; h < hues; h++ {
		hue := base.Hue - beam.HueJitter + 2*beam.HueJitter*float64(h)/float64(hues-1)
		c := theme.HSL{Hue: hue, Saturation: base.Saturation, Lightness: base.Lightness}.Color()
		cr, cg, cb := c.RGB255()
		for l := 1; l < levels; l++ {
			a := 0.1 * float64(l) / float64(levels-1)
			pal = append(pal, color.RGBA{
				R: mix(bgc.R, cr, a),
				G: mix(bgc.G, cg, a),
				B: mix(bgc.B, cb, a),
				A: 0xff,
			})
		}
	}
	return pal
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// FrameDelay converts a frame rate to a GIF delay in hundredths of a
// second. Most viewers treat delays under 2 as 10, so 2 is the floor.
func FrameDelay(fps int) int {
	if fps <= 0 {
		return 2
	}
	return max(2, int(math.Round(100/float64(fps))))
}

// EncodeGIF writes frames as a looping GIF. Delay is in hundredths of a
// second per frame.
func EncodeGIF(w io.Writer, frames []*image.RGBA, pal color.Palette, delay int) error {
	if len(frames) == 0 {
		return errors.New("export: no frames")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		p := image.NewPaletted(frame.Bounds(), pal)
		draw.FloydSteinberg.Draw(p, p.Bounds(), frame, frame.Bounds().Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

// WritePNG writes img to dir/frame_NNNNN.png and returns the path.
func WritePNG(dir string, i int, img image.Image) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, f.Close()
}

// Scale resizes a frame with bilinear filtering, for previews and thumbnails.
func Scale(img image.Image, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}
