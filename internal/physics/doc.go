// Package physics advances bubbles through one frame of approximate
// kinematics.
//
// Each [Integrator.Step] applies, in order:
//
//   - buoyancy: a constant upward acceleration
//   - drag: velocity scaled by airResistance once per 1/60 s
//   - wind: a slow horizontal sinusoid shared by every bubble
//   - wander: Perlin noise sampled at the bubble's seed offset
//
// then clamps the speed to [minVelocity, maxVelocity], integrates the
// position, keeps the bubble inside the canvas and updates its breathing
// multiplier. Size is never touched.
//
//	integ := physics.New(dynamo.DefaultParams(), 1)
//	integ.Step(&bubble, 1.0/60, elapsed)
package physics
