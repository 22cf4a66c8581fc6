package physics

import (
	"fmt"
	"math"
)

// updateVelocity turns the accumulated acceleration into a damped, clamped
// velocity for the given interval. An exactly-zero component is replaced
// with a tiny fixed velocity so a node in a degenerate zero-force
// configuration cannot get permanently stuck.
func (fl *ForceLayout) updateVelocity(interval float64) {
	param := interval * fl.opts.Damping
	for i := range fl.nodes {
		vx := fl.accel[2*i] * param
		vy := fl.accel[2*i+1] * param
		if vx == 0 {
			vx = 0.01
		}
		if vy == 0 {
			vy = 0.01
		}

		speed := math.Sqrt(vx*vx + vy*vy)
		if speed > fl.opts.MaxSpeed {
			// Rescale both components so direction is preserved.
			scale := fl.opts.MaxSpeed / speed
			vx *= scale
			vy *= scale
		}
		fl.vel[2*i] = vx
		fl.vel[2*i+1] = vy
	}
}

// updatePosition advances node positions by velocity over the interval and
// returns the mean per-node displacement. Pinned coordinates always win:
// the node snaps to them and its velocity is ignored. A non-finite result
// aborts the run.
func (fl *ForceLayout) updatePosition(interval float64) (float64, error) {
	var total float64
	for i, node := range fl.nodes {
		if pinned(node) {
			node.X = *node.FX
			node.Y = *node.FY
			continue
		}

		distX := fl.vel[2*i] * interval
		distY := fl.vel[2*i+1] * interval
		node.X += distX
		node.Y += distY

		if !finite(node.X) || !finite(node.Y) {
			return 0, fmt.Errorf("%w: node %s at iteration %d", ErrNonFinite, node.ID, fl.iter)
		}
		total += math.Sqrt(distX*distX + distY*distY)
	}
	return total / float64(len(fl.nodes)), nil
}
