// Package loop runs the beam animation against a display host.
//
// A [Controller] ties the pieces together: it sizes a [render.Surface],
// resolves the theme once, seeds the pool and then, on every frame the
// [Host] delivers, steps the simulator over the whole pool before drawing
// it.
//
// # Example
//
//	q := loop.NewFrameQueue()
//	c := loop.New(surface, q, loop.DefaultOptions(), loop.WithLogger(log))
//	c.Start()
//	defer c.Close()
//	for q.Tick(time.Now()) > 0 {
//		// present surface
//	}
//
// # Failure policy
//
// The animation is decoration. A missing drawing context stops the
// controller silently, a context lost during resize skips that update and
// an unknown theme key falls back to the brand colour. None of these surface
// as errors.
//
// # Thread Safety
//
// Controller methods may be called from any goroutine. Observers run with the
// controller locked and must not call back into it.
package loop
