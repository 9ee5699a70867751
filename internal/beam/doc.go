// Package beam provides the beam model behind the background light effect.
//
// The package defines the value type and the two pieces of logic that touch it:
//
//   - [Beam]: one light streak (position, geometry, kinetics, colour, pulse)
//   - [Intensity]: named preset deciding pool size and opacity ceiling
//   - [Factory]: seeds a fixed-size pool with randomised, theme-jittered beams
//   - [Simulator]: advances a pool one frame and recycles beams that left the top
//
// # Example
//
//	rng := rand.New(rand.NewSource(1))
//	f := beam.NewFactory(rng)
//	pool := f.CreatePool(beam.Medium.Count(), 1024, 768, theme.Brand)
//	sim := beam.NewSimulator(rng, beam.Medium)
//	sim.Step(pool, 1024, 768)
//
// # Recycling
//
// Beams are never removed. A beam whose tail has scrolled more than
// [RecycleMargin] above the canvas is re-entered below the bottom edge in the
// column chosen by its slot index modulo [Columns], so the three vertical
// zones stay evenly populated.
//
// # Thread Safety
//
// Factory and Simulator share a *rand.Rand and are NOT thread-safe. The loop
// controller serialises every call.
package beam
