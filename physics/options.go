package physics

import (
	"fmt"
	"math"
	"time"

	"github.com/TFMV/forcegraph/models"
)

// NodeFunc computes a per-node scalar (strength, size, spacing).
type NodeFunc func(n *models.Node) float64

// EdgeFunc computes a per-edge scalar (strength).
type EdgeFunc func(e *models.Edge) float64

// LinkDistanceFunc computes the ideal length of an edge given both endpoints.
type LinkDistanceFunc func(e *models.Edge, source, target *models.Node) float64

// MassFunc computes a node's mass. Results must be positive and finite.
type MassFunc func(n *models.Node) float64

// CenterFunc supplies a per-node gravity center and strength. The override is
// honored only when all three returned values are finite; otherwise the node
// falls back to the global center and gravity.
type CenterFunc func(n *models.Node, degree float64) (x, y, strength float64)

// TickFunc observes the simulation after each step. It must not mutate
// simulation state.
type TickFunc func(iteration int)

// CompleteFunc receives the terminal state exactly once per run.
type CompleteFunc func(state State)

// Options is the configuration bundle for a layout run.
//
// Scalar parameters that can also be computed per item come in pairs: the
// plain field holds the constant, and the *Fn field, when non-nil, takes
// precedence. The pairs are collapsed into uniform callables exactly once,
// before the step loop starts.
type Options struct {
	// Center is the point global gravity pulls toward. Nil means the
	// canvas center; an explicit value, including the origin, is used
	// as given.
	Center *[2]float64

	// MaxIteration caps the number of simulation steps.
	MaxIteration int

	// EdgeStrength scales the per-edge spring force.
	EdgeStrength   float64
	EdgeStrengthFn EdgeFunc

	// NodeStrength scales the per-node repulsion.
	NodeStrength   float64
	NodeStrengthFn NodeFunc

	// CoulombDisScale converts geometric distance into the scaled distance
	// used by the inverse-square repulsion term.
	CoulombDisScale float64

	// Damping is the multiplicative velocity reduction applied each step.
	Damping float64

	// MaxSpeed clamps the per-step velocity magnitude.
	MaxSpeed float64

	// MinMovement is the mean-displacement threshold below which the run
	// is considered converged.
	MinMovement float64

	// Interval is the base integration step size. The effective interval
	// decays as max(0.02, Interval - iteration*0.002).
	Interval float64

	// Factor globally scales repulsion.
	Factor float64

	// GetMass overrides the degree-based default node mass.
	GetMass MassFunc

	// GetCenter supplies per-node gravity centers.
	GetCenter CenterFunc

	// LinkDistance is the ideal edge length. A zero result falls back to
	// 1 + half the sum of both endpoint sizes.
	LinkDistance   float64
	LinkDistanceFn LinkDistanceFunc

	// Gravity is the global centering strength.
	Gravity float64

	// PreventOverlap stacks a collision force on top of base repulsion
	// when node extents intersect.
	PreventOverlap bool

	// NodeSize overrides the node's own size fields when computing the
	// extent used for overlap prevention.
	NodeSize   float64
	NodeSizeFn NodeFunc

	// CollideStrength scales the overlap-prevention force.
	CollideStrength float64

	// NodeSpacing is extra padding added to each node's extent.
	NodeSpacing   float64
	NodeSpacingFn NodeFunc

	// OnTick, when set, is invoked after every step.
	OnTick TickFunc

	// OnComplete, when set, receives the terminal state exactly once.
	OnComplete CompleteFunc

	// Animate selects the cooperative one-step-per-tick execution mode;
	// when false the run executes all steps back to back.
	Animate bool

	// FrameTime is the tick period in animated mode.
	FrameTime time.Duration

	// WorkerEnabled splits the O(n²) repulsion phase across Workers
	// goroutines with per-worker accumulation buffers.
	WorkerEnabled bool

	// Workers is the number of repulsion workers; 0 means GOMAXPROCS.
	Workers int

	// Width and Height are the canvas bounds used to seed unset positions.
	// Zero values fall back to the graph's own dimensions, then to 300.
	Width  float64
	Height float64

	// Seed fixes the random source used for position seeding and
	// coincident-point tie-breaks; 0 derives a seed from the clock.
	Seed int64
}

// DefaultOptions returns the option set every run starts from.
func DefaultOptions() Options {
	return Options{
		MaxIteration:    500,
		EdgeStrength:    200,
		NodeStrength:    1000,
		CoulombDisScale: 0.005,
		Damping:         0.9,
		MaxSpeed:        1000,
		MinMovement:     0.5,
		Interval:        0.02,
		Factor:          1,
		LinkDistance:    1,
		Gravity:         10,
		PreventOverlap:  true,
		CollideStrength: 1,
		NodeSpacing:     0,
		Animate:         true,
		FrameTime:       16 * time.Millisecond,
		Width:           300,
		Height:          300,
	}
}

// forceFuncs is the result of normalizing Options: every configurable
// parameter collapsed into a pure callable, resolved exactly once per run.
type forceFuncs struct {
	nodeStrength NodeFunc
	edgeStrength EdgeFunc
	linkDistance LinkDistanceFunc
	nodeSize     NodeFunc
	nodeSpacing  NodeFunc
	mass         MassFunc
}

// constantNode wraps a fixed scalar as a NodeFunc.
func constantNode(v float64) NodeFunc {
	return func(*models.Node) float64 { return v }
}

// normalize collapses the scalar-or-callback option pairs into uniform
// callables. degrees backs the default mass when GetMass is absent, so the
// caller must pass the per-run degree records.
func (o *Options) normalize(degrees func(n *models.Node) float64) forceFuncs {
	f := forceFuncs{}

	if o.NodeStrengthFn != nil {
		f.nodeStrength = o.NodeStrengthFn
	} else {
		f.nodeStrength = constantNode(o.NodeStrength)
	}

	if o.EdgeStrengthFn != nil {
		f.edgeStrength = o.EdgeStrengthFn
	} else {
		strength := o.EdgeStrength
		f.edgeStrength = func(*models.Edge) float64 { return strength }
	}

	if o.LinkDistanceFn != nil {
		f.linkDistance = o.LinkDistanceFn
	} else {
		dist := o.LinkDistance
		f.linkDistance = func(*models.Edge, *models.Node, *models.Node) float64 { return dist }
	}

	if o.NodeSizeFn != nil {
		f.nodeSize = o.NodeSizeFn
	} else if o.NodeSize > 0 {
		f.nodeSize = constantNode(o.NodeSize)
	} else {
		// Derive from the node's own size fields.
		f.nodeSize = func(n *models.Node) float64 {
			if n.Size > 0 {
				return n.Size
			}
			if n.Width > 0 || n.Height > 0 {
				return math.Max(n.Width, n.Height)
			}
			return defaultNodeSize
		}
	}

	if o.NodeSpacingFn != nil {
		f.nodeSpacing = o.NodeSpacingFn
	} else {
		f.nodeSpacing = constantNode(o.NodeSpacing)
	}

	if o.GetMass != nil {
		f.mass = o.GetMass
	} else {
		// Explicit node mass wins; otherwise fall back to the node's
		// degree. Isolated nodes still need inertia.
		f.mass = func(n *models.Node) float64 {
			if n.Mass != 0 {
				return n.Mass
			}
			d := degrees(n)
			if d < 1 {
				return 1
			}
			return d
		}
	}

	return f
}

// validateMass checks every node's resolved mass once, at normalization time.
func validateMass(nodes []*models.Node, mass MassFunc) error {
	for _, n := range nodes {
		m := mass(n)
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: node %s has mass %v", ErrNonPositiveMass, n.ID, m)
		}
	}
	return nil
}

// defaultNodeSize matches the renderer's default node diameter.
const defaultNodeSize = 10
