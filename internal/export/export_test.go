package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"os"
	"testing"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/loop"
	"github.com/san-kum/beams/internal/render/software"
	"github.com/san-kum/beams/internal/theme"
)

func started(t *testing.T, w, h float64) (*software.Surface, *loop.FrameQueue, *loop.Controller) {
	t.Helper()
	s := software.NewSurface(w, h, 1)
	q := loop.NewFrameQueue()
	opts := loop.DefaultOptions()
	opts.Intensity = beam.Strong
	opts.Seed = 1
	c := loop.New(s, q, opts)
	c.Start()
	t.Cleanup(func() { c.Close() })
	return s, q, c
}

func TestRecord(t *testing.T) {
	s, q, c := started(t, 64, 48)

	var frames []*image.RGBA
	err := Record(context.Background(), s, q, 5, Background, func(i int, img *image.RGBA) error {
		frames = append(frames, img)
		return nil
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(frames))
	}
	if c.Frames() != 5 {
		t.Errorf("expected controller to draw 5 frames, got %d", c.Frames())
	}
	if b := frames[0].Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("unexpected frame size %v", b)
	}
	if frames[0] == frames[1] {
		t.Error("frames should be independent snapshots")
	}
}

func TestRecordStopped(t *testing.T) {
	s, q, c := started(t, 32, 32)
	c.Stop()

	err := Record(context.Background(), s, q, 3, Background, func(int, *image.RGBA) error { return nil })
	if !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestRecordCallbackError(t *testing.T) {
	s, q, _ := started(t, 32, 32)
	boom := errors.New("disk full")

	err := Record(context.Background(), s, q, 3, Background, func(i int, _ *image.RGBA) error {
		if i == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped callback error, got %v", err)
	}
}

func TestRecordCancelled(t *testing.T) {
	s, q, _ := started(t, 32, 32)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Record(ctx, s, q, 3, Background, func(int, *image.RGBA) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPalette(t *testing.T) {
	pal := Palette(Background, theme.Brand)
	if len(pal) != 249 {
		t.Errorf("expected 249 colours, got %d", len(pal))
	}
	if pal[0] != Background {
		t.Errorf("expected background first, got %v", pal[0])
	}
	if len(pal) > 256 {
		t.Error("palette too large for GIF")
	}
}

func TestEncodeGIF(t *testing.T) {
	s, q, _ := started(t, 40, 30)
	var frames []*image.RGBA
	if err := Record(context.Background(), s, q, 4, Background, func(_ int, img *image.RGBA) error {
		frames = append(frames, img)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeGIF(&buf, frames, Palette(Background, theme.Brand), 2); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 4 {
		t.Errorf("expected 4 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 2 {
		t.Errorf("expected delay 2, got %d", anim.Delay[0])
	}

	if err := EncodeGIF(&buf, nil, nil, 2); err == nil {
		t.Error("expected error for empty frame list")
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	path, err := WritePNG(dir, 7, img)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("expected bounds %v, got %v", img.Bounds(), got.Bounds())
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if got := Scale(src, 20, 10).Bounds(); got.Dx() != 20 || got.Dy() != 10 {
		t.Errorf("expected 20x10, got %v", got)
	}
}

func TestSequence(t *testing.T) {
	s, q, _ := started(t, 40, 30)
	dir := t.TempDir()
	seq := NewSequence(dir, 3)

	err := Record(context.Background(), s, q, 10, Background, func(i int, img *image.RGBA) error {
		seq.Write(i, img)
		return nil
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := seq.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if seq.Written() != 10 {
		t.Errorf("expected 10 frames written, got %d", seq.Written())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 || entries[9].Name() != "frame_00009.png" {
		t.Errorf("unexpected files: %d", len(entries))
	}
}

func TestSequenceErrors(t *testing.T) {
	seq := NewSequence(t.TempDir()+"/missing", 2)
	seq.Write(0, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	seq.Write(1, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err := seq.Close(); err == nil {
		t.Error("expected error writing into a missing directory")
	}
	if seq.Written() != 0 {
		t.Errorf("expected nothing written, got %d", seq.Written())
	}
}

func TestFrameDelay(t *testing.T) {
	tests := []struct {
		fps  int
		want int
	}{
		{0, 2},
		{10, 10},
		{24, 4},
		{30, 3},
		{60, 2},
		{144, 2},
	}
	for _, tt := range tests {
		if got := FrameDelay(tt.fps); got != tt.want {
			t.Errorf("fps %d: expected delay %d, got %d", tt.fps, tt.want, got)
		}
	}
}
