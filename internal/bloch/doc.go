// Package bloch integrates the discretized Bloch equation for a set of
// independent isochromats.
//
// Each step rotates the magnetization about the instantaneous applied field
// (rotating frame) with Rodrigues' formula and then applies first-order T1/T2
// relaxation:
//
//   - [Integrate]: one-shot evolution with the default [Integrator]
//   - [Integrator.Run]: evolution with logging, cancellation and a spin worker pool
//   - [Integrator.RunComplex]: same, for complex field histories (imaginary
//     parts are dropped with a warning)
//   - [Rotate]: the single-vector rotation used by every step
//
// # Units
//
// Fields are in Tesla, times (dt, T1, T2) in milliseconds. A field sample b
// held for dt rotates the magnetization by [Gamma]*|b|*dt radians.
//
// # Example
//
//	traj, err := bloch.Integrate(mi, bx, by, bz, t1, t2, dt)
//	if err != nil {
//	    return err
//	}
//	m := traj.At(steps-1, 0)
//
// # Numerical notes
//
// Relaxation is the Euler form 1-dt/T2 and dt/T1, so dt must stay well below
// T1 and T2. The magnetization is never renormalized; drift in |M| over long
// runs is part of the model's output.
package bloch
