package loop

import (
	"math"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beams/internal/beam"
	"github.com/san-kum/beams/internal/render"
	"github.com/san-kum/beams/internal/theme"
)

type frameLog struct {
	frames   []int
	recycles int
}

func (f *frameLog) OnFrame(frame int, pool []beam.Beam, _ beam.Intensity) {
	f.frames = append(f.frames, frame)
}

func (f *frameLog) OnRecycle(int, beam.Beam) { f.recycles++ }

var _ = Describe("Controller", func() {
	var (
		surface *render.RecordingSurface
		queue   *FrameQueue
		ctrl    *Controller
		opts    Options
	)

	BeforeEach(func() {
		surface = render.NewRecordingSurface(1024, 768, 1)
		queue = NewFrameQueue()
		opts = DefaultOptions()
		opts.Seed = 42
	})

	JustBeforeEach(func() {
		ctrl = New(surface, queue, opts)
	})

	Describe("Start", func() {
		It("seeds the pool and schedules one frame", func() {
			ctrl.Start()
			Expect(ctrl.State()).To(Equal(Running))
			Expect(ctrl.Beams()).To(HaveLen(15))
			Expect(queue.Pending()).To(Equal(1))
			Expect(queue.Listeners()).To(Equal(1))
		})

		It("sizes the backing store by the pixel ratio", func() {
			surface.Ratio = 2
			ctrl.Start()
			Expect(surface.BackingW).To(Equal(2048))
			Expect(surface.BackingH).To(Equal(1536))

			names := surface.Recorder.Names()
			Expect(names[:2]).To(Equal([]string{"ResetTransform", "Scale"}))
			Expect(surface.Recorder.Ops[1].Args).To(Equal([]float64{2, 2}))
		})

		It("is a no-op when already running", func() {
			ctrl.Start()
			before := ctrl.Beams()
			ctrl.Start()
			Expect(ctrl.Beams()).To(Equal(before))
			Expect(queue.Pending()).To(Equal(1))
		})

		Context("without a drawing context", func() {
			BeforeEach(func() {
				surface.Detach()
			})

			It("stops permanently without scheduling anything", func() {
				ctrl.Start()
				Expect(ctrl.State()).To(Equal(Stopped))
				Expect(queue.Pending()).To(BeZero())
				Expect(queue.Listeners()).To(BeZero())
				Expect(ctrl.Beams()).To(BeEmpty())

				ctrl.Start()
				Expect(ctrl.State()).To(Equal(Stopped))
			})
		})

		DescribeTable("pool size follows intensity",
			func(in beam.Intensity, n int) {
				opts.Intensity = in
				c := New(render.NewRecordingSurface(800, 600, 1), NewFrameQueue(), opts)
				c.Start()
				Expect(c.Beams()).To(HaveLen(n))
			},
			Entry("subtle", beam.Subtle, 10),
			Entry("medium", beam.Medium, 15),
			Entry("strong", beam.Strong, 20),
		)
	})

	Describe("frames", func() {
		It("steps the simulation before drawing", func() {
			ctrl.Start()
			before := ctrl.Beams()
			surface.Recorder.Reset()

			Expect(queue.Tick(time.Now())).To(Equal(1))

			var translates []render.Op
			for _, op := range surface.Recorder.Ops {
				if op.Name == "Translate" {
					translates = append(translates, op)
				}
			}
			Expect(translates).To(HaveLen(len(before)))
			for i, op := range translates {
				Expect(op.Args[1]).To(BeNumerically("~", before[i].Y-before[i].Speed, 1e-9))
			}
		})

		It("reschedules exactly one frame per tick", func() {
			ctrl.Start()
			for i := 0; i < 10; i++ {
				Expect(queue.Tick(time.Now())).To(Equal(1))
				Expect(queue.Pending()).To(Equal(1))
			}
			Expect(ctrl.Frames()).To(Equal(10))
		})

		It("skips drawing while the context is gone but keeps the loop alive", func() {
			ctrl.Start()
			queue.Tick(time.Now())
			surface.Detach()
			queue.Tick(time.Now())
			Expect(ctrl.Frames()).To(Equal(1))
			Expect(queue.Pending()).To(Equal(1))
			Expect(ctrl.State()).To(Equal(Running))
		})
	})

	Describe("Stop", func() {
		It("leaves nothing pending when called twice", func() {
			ctrl.Start()
			queue.Tick(time.Now())
			ctrl.Stop()
			ctrl.Stop()
			Expect(ctrl.State()).To(Equal(Stopped))
			Expect(queue.Pending()).To(BeZero())
			Expect(queue.Listeners()).To(BeZero())
			Expect(queue.Tick(time.Now())).To(BeZero())
		})

		It("runs no frame after returning", func() {
			ctrl.Start()
			frames := ctrl.Frames()
			ctrl.Stop()
			queue.Tick(time.Now())
			Expect(ctrl.Frames()).To(Equal(frames))
		})

		It("is safe before Start and makes Start a no-op", func() {
			ctrl.Stop()
			ctrl.Start()
			Expect(ctrl.State()).To(Equal(Stopped))
			Expect(queue.Pending()).To(BeZero())
		})

		It("is what Close does", func() {
			ctrl.Start()
			Expect(ctrl.Close()).To(Succeed())
			Expect(ctrl.State()).To(Equal(Stopped))
		})
	})

	Describe("Resize", func() {
		It("reseeds for the new size and keeps the pool length", func() {
			ctrl.Start()
			before := ctrl.Beams()

			surface.Resize(1920, 1080)
			queue.TriggerResize()

			after := ctrl.Beams()
			Expect(after).To(HaveLen(len(before)))
			Expect(surface.BackingW).To(Equal(1920))
			Expect(surface.BackingH).To(Equal(1080))

			for i := range after {
				Expect(after[i].Length).To(Equal(2 * 1080.0))
				Expect(after[i].X).NotTo(Equal(before[i].X), "beam %d kept its pre-resize x", i)
			}
			w, h := ctrl.Size()
			Expect([]float64{w, h}).To(Equal([]float64{1920, 1080}))
		})

		It("skips the update when the context disappears mid-resize", func() {
			ctrl.Start()
			before := ctrl.Beams()

			surface.Detach()
			surface.Resize(640, 480)
			queue.TriggerResize()

			Expect(ctrl.Beams()).To(Equal(before))
			Expect(ctrl.State()).To(Equal(Running))
		})

		It("does nothing once stopped", func() {
			ctrl.Start()
			ctrl.Stop()
			before := ctrl.Beams()
			surface.Resize(300, 200)
			ctrl.Resize()
			Expect(ctrl.Beams()).To(Equal(before))
		})
	})

	Describe("Reconfigure", func() {
		It("reseeds with the new theme and intensity", func() {
			opts.Intensity = beam.Subtle
			ctrl = New(surface, queue, opts)
			ctrl.Start()
			Expect(ctrl.Beams()).To(HaveLen(10))

			ctrl.Reconfigure(Options{Intensity: beam.Strong, Scheme: theme.SchemeEmotion, Key: "joy", Blur: 10})
			pool := ctrl.Beams()
			Expect(pool).To(HaveLen(20))

			joy := theme.Resolve(theme.SchemeEmotion, "joy")
			for _, b := range pool {
				Expect(math.Abs(b.Hue - joy.Hue)).To(BeNumerically("<=", beam.HueJitter))
				Expect(b.Saturation).To(Equal(joy.Saturation))
			}
			Expect(ctrl.Options().Seed).To(Equal(int64(42)))
		})

		It("falls back to the brand colour for unknown keys", func() {
			ctrl.Start()
			ctrl.Reconfigure(Options{Scheme: theme.SchemeAPT, Key: "UNKNOWN_TYPE"})
			for _, b := range ctrl.Beams() {
				Expect(math.Abs(b.Hue)).To(BeNumerically("<=", beam.HueJitter))
				Expect(b.Lightness).To(Equal(theme.Brand.Lightness))
			}
			Expect(ctrl.Options().Intensity).To(Equal(beam.Medium))
		})

		It("only stores options before Start", func() {
			ctrl.Reconfigure(Options{Intensity: beam.Strong})
			Expect(ctrl.Beams()).To(BeEmpty())
			ctrl.Start()
			Expect(ctrl.Beams()).To(HaveLen(20))
		})

		It("is safe against concurrent frames", func() {
			ctrl.Start()
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 50; i++ {
					in := beam.Intensities[i%len(beam.Intensities)]
					ctrl.Reconfigure(Options{Intensity: in})
				}
			}()
			for i := 0; i < 50; i++ {
				queue.Tick(time.Now())
			}
			wg.Wait()
			// the last reconfigure wins
			Expect(ctrl.Beams()).To(HaveLen(beam.Intensities[49%len(beam.Intensities)].Count()))
		})
	})

	Describe("observers", func() {
		It("see every drawn frame and every recycle", func() {
			log := &frameLog{}
			surface = render.NewRecordingSurface(300, 200, 1)
			ctrl = New(surface, queue, opts, WithObserver(log))
			ctrl.Start()
			// slowest beam clears the top margin within 2500 frames
			for i := 0; i < 3000; i++ {
				queue.Tick(time.Now())
			}
			Expect(log.frames).To(HaveLen(3000))
			Expect(log.frames[len(log.frames)-1]).To(Equal(3000))
			Expect(log.recycles).To(BeNumerically(">", 0))
		})
	})
})
