package physics

import (
	"math"
	"math/rand"
	"sync"
)

// applyRepulsion accumulates the Coulomb-like repulsion between every
// unordered node pair into the acceleration buffer. Base repulsion is
// mass-agnostic; only the stacked overlap-prevention term is divided by
// each node's own mass. The inner loop allocates nothing.
func (fl *ForceLayout) applyRepulsion() {
	n := len(fl.nodes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fl.repelPair(i, j, fl.accel, fl.rng)
		}
	}
}

// repelPair applies the repulsion between nodes i and j into accel.
func (fl *ForceLayout) repelPair(i, j int, accel []float64, rng *rand.Rand) {
	ni, nj := fl.nodes[i], fl.nodes[j]

	vx := ni.X - nj.X
	vy := ni.Y - nj.Y
	// Coincident points get a small random separating vector so the
	// normalization below never divides by zero.
	if vx == 0 && vy == 0 {
		vx = rng.Float64() * 0.01
		vy = rng.Float64() * 0.01
	}

	lenSq := vx*vx + vy*vy
	dist := math.Sqrt(lenSq)
	direX := vx / dist
	direY := vy / dist

	// The +0.1 floor keeps near-zero separations off the singularity.
	scaled := (dist + 0.1) * fl.opts.CoulombDisScale
	pairStrength := (fl.strength[i] + fl.strength[j]) / 2
	param := pairStrength * fl.opts.Factor / (scaled * scaled)

	accel[2*i] += direX * param
	accel[2*i+1] += direY * param
	accel[2*j] -= direX * param
	accel[2*j+1] -= direY * param

	if fl.opts.PreventOverlap && fl.radius[i]+fl.radius[j] > dist {
		// Visual overlap: stack an extra collision push on top of the
		// base term, weighted by each node's own mass.
		collide := fl.opts.CollideStrength * pairStrength / lenSq
		accel[2*i] += direX * collide / fl.mass[i]
		accel[2*i+1] += direY * collide / fl.mass[i]
		accel[2*j] -= direX * collide / fl.mass[j]
		accel[2*j+1] -= direY * collide / fl.mass[j]
	}
}

// applyRepulsionParallel splits the pair loop across workers, each
// accumulating into its own buffer. The buffers are summed afterwards;
// addition is commutative, so the reduction is order-independent. Node data
// is only read until every worker has finished.
func (fl *ForceLayout) applyRepulsionParallel() {
	n := len(fl.nodes)
	var wg sync.WaitGroup
	wg.Add(fl.workers)
	for w := 0; w < fl.workers; w++ {
		go func(w int) {
			defer wg.Done()
			buf := fl.workerBufs[w]
			zero(buf)
			rng := fl.workerRngs[w]
			// Stride rows across workers to balance the
			// triangular pair loop.
			for i := w; i < n; i += fl.workers {
				for j := i + 1; j < n; j++ {
					fl.repelPair(i, j, buf, rng)
				}
			}
		}(w)
	}
	wg.Wait()

	for _, buf := range fl.workerBufs {
		for k, v := range buf {
			fl.accel[k] += v
		}
	}
}

// applyAttraction accumulates the per-edge spring force pulling each pair
// toward its ideal separation. Both endpoint contributions are divided by
// that endpoint's own mass, so heavier nodes move less.
func (fl *ForceLayout) applyAttraction() {
	for ei, e := range fl.edges {
		si, ti := fl.sources[ei], fl.targets[ei]
		source, target := fl.nodes[si], fl.nodes[ti]

		vx := target.X - source.X
		vy := target.Y - source.Y
		if vx == 0 && vy == 0 {
			vx = fl.rng.Float64() * 0.01
			vy = fl.rng.Float64() * 0.01
		}
		dist := math.Sqrt(vx*vx + vy*vy)
		direX := vx / dist
		direY := vy / dist

		ideal := fl.fns.linkDistance(e, source, target)
		if ideal == 0 {
			// Default keeps large nodes from overlapping even when
			// no link distance is configured.
			ideal = 1 + fl.radius[si] + fl.radius[ti]
		}

		diff := ideal - dist
		param := diff * fl.fns.edgeStrength(e)

		massSource := fl.mass[si]
		massTarget := fl.mass[ti]

		fl.accel[2*si] -= direX * param / massSource
		fl.accel[2*si+1] -= direY * param / massSource
		fl.accel[2*ti] += direX * param / massTarget
		fl.accel[2*ti+1] += direY * param / massTarget
	}
}

// applyGravity pulls every node toward the global center, or toward a
// per-node custom center when the GetCenter callback yields a well-formed
// (x, y, strength) triple. Zero strength skips the node.
func (fl *ForceLayout) applyGravity() {
	for i, node := range fl.nodes {
		gravity := fl.opts.Gravity
		cx, cy := fl.centerX, fl.centerY

		if fl.opts.GetCenter != nil {
			x, y, strength := fl.opts.GetCenter(node, fl.index.Degrees[i].All)
			if finite(x) && finite(y) && finite(strength) {
				cx, cy, gravity = x, y, strength
			}
		}
		if gravity == 0 {
			continue
		}

		// Linear spring toward the center, not inverse-square.
		fl.accel[2*i] -= gravity * (node.X - cx)
		fl.accel[2*i+1] -= gravity * (node.Y - cy)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
