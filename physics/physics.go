// Package physics implements the force simulation behind forcegraph's
// layouts: Coulomb-like pairwise repulsion with optional overlap prevention,
// per-edge spring attraction, centering gravity, and a damped integrator
// driven until the layout settles or a step budget runs out.
//
// The engine mutates node positions in place. All per-step work is pure
// computation over dense buffers indexed by node position; nothing blocks
// on I/O.
package physics

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/TFMV/forcegraph/graph"
	"github.com/TFMV/forcegraph/models"
)

// State is the phase of a layout run.
type State int

const (
	// Initializing means Initialize has not completed yet.
	Initializing State = iota
	// Stepping means the simulation is running.
	Stepping
	// Converged means mean displacement dropped below MinMovement.
	Converged
	// Exhausted means the iteration cap was reached first.
	Exhausted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Stepping:
		return "stepping"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == Converged || s == Exhausted
}

// Layout is the interface implemented by layout algorithms.
type Layout interface {
	// Initialize validates the graph, seeds missing positions, and
	// prepares the per-run buffers.
	Initialize(g *models.Graph) error
	// Step runs one simulation step and reports whether the run reached
	// a terminal state.
	Step() (done bool, err error)
	// Name returns the name of the layout algorithm.
	Name() string
}

// ForceLayout is the force-directed layout engine.
//
// Not safe for concurrent use; drive it from one goroutine (or through the
// Handle returned by Start).
type ForceLayout struct {
	opts Options
	fns  forceFuncs

	graph *models.Graph
	nodes []*models.Node
	index *graph.Index

	// per-edge resolved terminals
	edges   []*models.Edge
	sources []int
	targets []int

	// per-node values resolved once per run
	mass     []float64
	radius   []float64 // half extent incl. spacing, for overlap prevention
	strength []float64

	// step-local buffers, zeroed at the start of every step
	accel []float64
	vel   []float64

	width, height    float64
	centerX, centerY float64

	rng        *rand.Rand
	workers    int
	workerBufs [][]float64
	workerRngs []*rand.Rand

	state     State
	iter      int
	completed bool
}

// NewForceLayout creates a force-directed layout with the given options.
func NewForceLayout(opts Options) *ForceLayout {
	return &ForceLayout{opts: opts, state: Initializing}
}

// Name returns the name of the layout algorithm.
func (fl *ForceLayout) Name() string {
	return "Force-Directed Layout"
}

// State returns the current run state.
func (fl *ForceLayout) State() State {
	return fl.state
}

// Iterations returns the number of steps executed so far.
func (fl *ForceLayout) Iterations() int {
	return fl.iter
}

// Initialize validates edges and masses, resolves the force functions, and
// seeds unset positions with uniform random points inside the canvas bounds.
// Zero- and single-node graphs complete immediately without simulation.
func (fl *ForceLayout) Initialize(g *models.Graph) error {
	fl.graph = g
	fl.iter = 0
	fl.completed = false

	fl.width = fl.opts.Width
	if fl.width <= 0 {
		fl.width = g.Width
	}
	if fl.width <= 0 {
		fl.width = 300
	}
	fl.height = fl.opts.Height
	if fl.height <= 0 {
		fl.height = g.Height
	}
	if fl.height <= 0 {
		fl.height = 300
	}
	if fl.opts.Center != nil {
		fl.centerX, fl.centerY = fl.opts.Center[0], fl.opts.Center[1]
	} else {
		fl.centerX = fl.width / 2
		fl.centerY = fl.height / 2
	}

	seed := fl.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fl.rng = rand.New(rand.NewSource(seed))

	n := len(g.Nodes)
	fl.nodes = make([]*models.Node, n)
	for i := range g.Nodes {
		fl.nodes[i] = &g.Nodes[i]
	}

	idx, err := graph.BuildIndex(g)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEdgeReference, err)
	}
	fl.index = idx

	fl.edges = make([]*models.Edge, len(g.Edges))
	fl.sources = make([]int, len(g.Edges))
	fl.targets = make([]int, len(g.Edges))
	for i := range g.Edges {
		e := &g.Edges[i]
		fl.edges[i] = e
		// BuildIndex already proved both terminals resolve.
		fl.sources[i] = idx.Of[graph.Terminal(e, graph.Source)]
		fl.targets[i] = idx.Of[graph.Terminal(e, graph.Target)]
	}

	fl.fns = fl.opts.normalize(func(node *models.Node) float64 {
		return idx.Degrees[idx.Of[node.ID]].All
	})
	if err := validateMass(fl.nodes, fl.fns.mass); err != nil {
		return err
	}

	fl.mass = make([]float64, n)
	fl.radius = make([]float64, n)
	fl.strength = make([]float64, n)
	for i, node := range fl.nodes {
		fl.mass[i] = fl.fns.mass(node)
		fl.radius[i] = fl.fns.nodeSize(node)/2 + fl.fns.nodeSpacing(node)
		fl.strength[i] = fl.fns.nodeStrength(node)
	}

	fl.seedPositions()

	fl.accel = make([]float64, 2*n)
	fl.vel = make([]float64, 2*n)

	fl.workers = 0
	if fl.opts.WorkerEnabled && n > 1 {
		fl.workers = fl.opts.Workers
		if fl.workers <= 0 {
			fl.workers = runtime.GOMAXPROCS(0)
		}
		if fl.workers > n {
			fl.workers = n
		}
		fl.workerBufs = make([][]float64, fl.workers)
		fl.workerRngs = make([]*rand.Rand, fl.workers)
		for w := 0; w < fl.workers; w++ {
			fl.workerBufs[w] = make([]float64, 2*n)
			fl.workerRngs[w] = rand.New(rand.NewSource(fl.rng.Int63()))
		}
	}

	// Terminal fast paths: nothing to simulate.
	switch n {
	case 0:
		fl.terminate(Converged)
		return nil
	case 1:
		fl.nodes[0].X = fl.centerX
		fl.nodes[0].Y = fl.centerY
		fl.terminate(Converged)
		return nil
	}

	fl.state = Stepping
	return nil
}

// seedPositions snaps pinned nodes to their pinned coordinates and places
// nodes without a position uniformly at random inside the canvas.
func (fl *ForceLayout) seedPositions() {
	for _, node := range fl.nodes {
		if pinned(node) {
			node.X = *node.FX
			node.Y = *node.FY
			continue
		}
		if node.X == 0 && node.Y == 0 {
			node.X = fl.rng.Float64() * fl.width
			node.Y = fl.rng.Float64() * fl.height
		}
	}
}

// Step runs one force-accumulate-and-integrate cycle. It returns true once
// the run has reached a terminal state; further calls are no-ops.
func (fl *ForceLayout) Step() (bool, error) {
	switch fl.state {
	case Initializing:
		return false, ErrNotInitialized
	case Converged, Exhausted:
		return true, nil
	}

	// Buffers are exclusively owned by this step; no carry-over.
	zero(fl.accel)
	zero(fl.vel)

	if fl.workers > 0 {
		fl.applyRepulsionParallel()
	} else {
		fl.applyRepulsion()
	}
	fl.applyAttraction()
	fl.applyGravity()

	interval := fl.stepInterval()
	fl.updateVelocity(interval)
	movement, err := fl.updatePosition(interval)
	if err != nil {
		return false, err
	}

	fl.iter++
	if fl.opts.OnTick != nil {
		fl.opts.OnTick(fl.iter)
	}

	if movement < fl.opts.MinMovement {
		fl.terminate(Converged)
		return true, nil
	}
	if fl.iter >= fl.opts.MaxIteration {
		fl.terminate(Exhausted)
		return true, nil
	}
	return false, nil
}

// Run executes steps back to back until the run reaches a terminal state,
// the context is canceled, or a step fails. Canceling leaves positions at
// their last-computed values.
func (fl *ForceLayout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		done, err := fl.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Execute runs the layout in the mode selected by Options.Animate:
// synchronously when false, one step per tick when true. Either way it
// blocks until the run reaches a terminal state, fails, or ctx is canceled.
func (fl *ForceLayout) Execute(ctx context.Context) error {
	if !fl.opts.Animate {
		return fl.Run(ctx)
	}
	if fl.state.Terminal() {
		return nil
	}
	h := fl.Start()
	select {
	case <-ctx.Done():
		h.Stop()
		return ctx.Err()
	case <-h.Done():
		return h.Err()
	}
}

// Handle owns a running animated layout. Stop prevents any further scheduled
// step from running; Done delivers the terminal state when the run ends on
// its own.
type Handle struct {
	stop     chan struct{}
	done     chan State
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// Stop cancels the run. Safe to call more than once; positions stay at
// their last-computed values.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Done returns a channel that delivers the terminal state when the run
// completes without being stopped.
func (h *Handle) Done() <-chan State {
	return h.done
}

// Err returns the step error that ended the run, if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Start runs the layout one step per tick on its own goroutine and returns
// the owning handle. The layout must already be initialized.
func (fl *ForceLayout) Start() *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan State, 1),
	}

	frame := fl.opts.FrameTime
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}

	go func() {
		ticker := time.NewTicker(frame)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				done, err := fl.Step()
				if err != nil {
					h.mu.Lock()
					h.err = err
					h.mu.Unlock()
					h.done <- fl.state
					return
				}
				if done {
					h.done <- fl.state
					return
				}
			}
		}
	}()

	return h
}

// terminate moves to a terminal state and fires the completion callback
// exactly once per run.
func (fl *ForceLayout) terminate(s State) {
	fl.state = s
	if fl.completed {
		return
	}
	fl.completed = true
	if fl.opts.OnComplete != nil {
		fl.opts.OnComplete(s)
	}
}

// stepInterval decays the base interval as the layout approaches
// equilibrium, floored at 0.02.
func (fl *ForceLayout) stepInterval() float64 {
	return math.Max(0.02, fl.opts.Interval-float64(fl.iter)*0.002)
}

func pinned(n *models.Node) bool {
	return n.FX != nil && n.FY != nil &&
		!math.IsNaN(*n.FX) && !math.IsInf(*n.FX, 0) &&
		!math.IsNaN(*n.FY) && !math.IsInf(*n.FY, 0)
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
