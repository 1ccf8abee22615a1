// Package fluid implements a hybrid particle/grid (FLIP/PIC) liquid solver.
//
// A [Simulator] owns a set of particles carrying the liquid's velocity and a
// staggered Marker-and-Cell [Grid] used each step to enforce approximate
// incompressibility and free-slip walls:
//
//	sys, _ := fluid.New(32)
//	for frame := 0; frame < 600; frame++ {
//	    if err := sys.Step(1.0/60, fluid.DefaultParams()); err != nil {
//	        return err
//	    }
//	}
//
// The domain is the unit cube centred on the origin. Every step runs the
// same fixed pipeline: integrate gravity, clamp to the walls, push overlapping
// particles apart, clamp again, scatter velocities to the grid, estimate
// density, relax the grid toward zero divergence and gather the corrected
// velocities back, blending PIC and FLIP by [Params.FlipRatio].
//
// # Thread Safety
//
// A Simulator is single-threaded and deterministic. It is mutated in place
// and must not be stepped from more than one goroutine.
package fluid
