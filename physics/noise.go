package physics

import (
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/forcegraph/models"
)

// NoiseLayout wraps another layout and perturbs the settled positions with
// smooth simplex noise, giving the drawing a hand-placed look. The base
// layout runs unchanged; the jitter is applied once, after the base layout
// reaches a terminal state.
type NoiseLayout struct {
	base      Layout
	noise     opensimplex.Noise
	scale     float64 // spatial frequency of the noise field
	amplitude float64 // maximum displacement in canvas units
	graph     *models.Graph
	applied   bool
}

// NewNoiseLayout wraps base with a simplex jitter pass.
func NewNoiseLayout(base Layout, amplitude float64) *NoiseLayout {
	if amplitude <= 0 {
		amplitude = 10
	}
	return &NoiseLayout{
		base:      base,
		noise:     opensimplex.New(time.Now().UnixNano()),
		scale:     0.03,
		amplitude: amplitude,
	}
}

// Name returns the name of the layout algorithm.
func (nl *NoiseLayout) Name() string {
	return nl.base.Name() + " + Noise"
}

// Initialize initializes the base layout.
func (nl *NoiseLayout) Initialize(g *models.Graph) error {
	nl.graph = g
	nl.applied = false
	return nl.base.Initialize(g)
}

// Step steps the base layout; once it finishes, the jitter pass runs.
func (nl *NoiseLayout) Step() (bool, error) {
	done, err := nl.base.Step()
	if err != nil {
		return done, err
	}
	if done && !nl.applied {
		nl.jitter()
		nl.applied = true
	}
	return done, nil
}

// jitter displaces each unpinned node by two independent noise samples.
// Sampling the field at the node's own position keeps nearby nodes moving
// coherently instead of scattering.
func (nl *NoiseLayout) jitter() {
	for i := range nl.graph.Nodes {
		node := &nl.graph.Nodes[i]
		if pinned(node) {
			continue
		}
		nx := nl.noise.Eval2(node.X*nl.scale, node.Y*nl.scale)
		ny := nl.noise.Eval2(node.X*nl.scale+100, node.Y*nl.scale+100)
		node.X += nx * nl.amplitude
		node.Y += ny * nl.amplitude
	}
}
