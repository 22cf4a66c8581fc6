package physics_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// buildGraph creates a graph with nodes at the given positions and the given
// edges between node indexes.
func buildGraph(positions [][2]float64, edges [][2]int) *models.Graph {
	g := models.NewGraph("test")
	ids := make([]string, len(positions))
	for i, p := range positions {
		node := models.NewNode("default", "", nil)
		node.X = p[0]
		node.Y = p[1]
		ids[i] = node.ID
		g.AddNode(node)
	}
	for _, e := range edges {
		edge := models.NewEdge(ids[e[0]], ids[e[1]], "default", 1, nil)
		if err := g.AddEdge(edge); err != nil {
			panic(err)
		}
	}
	return g
}

func distance(a, b *models.Node) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// TestEmptyGraph verifies the zero-node fast path: immediate completion
// with no mutation.
func TestEmptyGraph(t *testing.T) {
	completions := 0
	opts := physics.DefaultOptions()
	opts.OnComplete = func(s physics.State) {
		completions++
		assert.True(t, s.Terminal())
	}

	layout := physics.NewForceLayout(opts)
	g := models.NewGraph("empty")
	require.NoError(t, layout.Initialize(g))

	assert.True(t, layout.State().Terminal())
	assert.Equal(t, 1, completions)

	done, err := layout.Step()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, completions, "completion must fire exactly once per run")
}

// TestSingleNodePlacedAtCenter verifies the one-node fast path: the node
// lands exactly on the configured center without simulation.
func TestSingleNodePlacedAtCenter(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Center = &[2]float64{40, 60}

	g := buildGraph([][2]float64{{7, 7}}, nil)
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	assert.True(t, layout.State().Terminal())
	assert.Equal(t, 40.0, g.Nodes[0].X)
	assert.Equal(t, 60.0, g.Nodes[0].Y)
}

// TestSingleNodeOriginCenter verifies an explicit origin center is honored
// rather than being treated as unset.
func TestSingleNodeOriginCenter(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Center = &[2]float64{0, 0}

	g := buildGraph([][2]float64{{7, 7}}, nil)
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	assert.Equal(t, 0.0, g.Nodes[0].X)
	assert.Equal(t, 0.0, g.Nodes[0].Y)
}

// TestSingleNodeDefaultCenter verifies the default canvas center (300x300).
func TestSingleNodeDefaultCenter(t *testing.T) {
	g := buildGraph([][2]float64{{7, 7}}, nil)
	layout := physics.NewForceLayout(physics.DefaultOptions())
	require.NoError(t, layout.Initialize(g))

	assert.Equal(t, 150.0, g.Nodes[0].X)
	assert.Equal(t, 150.0, g.Nodes[0].Y)
}

// TestEdgeReferenceFailsFast verifies that an edge naming an unknown node id
// is rejected at Initialize instead of corrupting the buffers.
func TestEdgeReferenceFailsFast(t *testing.T) {
	g := models.NewGraph("bad")
	g.AddNode(models.NewNode("default", "a", nil))
	// Bypass AddEdge validation to simulate a caller-assembled graph.
	g.Edges = append(g.Edges, models.Edge{ID: "e1", Source: g.Nodes[0].ID, Target: "no-such-node"})

	layout := physics.NewForceLayout(physics.DefaultOptions())
	err := layout.Initialize(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrEdgeReference)
}

// TestNonPositiveMassRejected verifies mass validation at normalization time.
func TestNonPositiveMassRejected(t *testing.T) {
	t.Run("FromCallback", func(t *testing.T) {
		opts := physics.DefaultOptions()
		opts.GetMass = func(*models.Node) float64 { return 0 }

		g := buildGraph([][2]float64{{10, 10}, {20, 20}}, nil)
		err := physics.NewForceLayout(opts).Initialize(g)
		assert.ErrorIs(t, err, physics.ErrNonPositiveMass)
	})

	t.Run("FromNodeField", func(t *testing.T) {
		g := buildGraph([][2]float64{{10, 10}, {20, 20}}, nil)
		g.Nodes[1].Mass = -5
		err := physics.NewForceLayout(physics.DefaultOptions()).Initialize(g)
		assert.ErrorIs(t, err, physics.ErrNonPositiveMass)
	})
}

// TestStepBeforeInitialize verifies the driver refuses to step an
// uninitialized layout.
func TestStepBeforeInitialize(t *testing.T) {
	layout := physics.NewForceLayout(physics.DefaultOptions())
	_, err := layout.Step()
	assert.ErrorIs(t, err, physics.ErrNotInitialized)
}

// TestZeroNetForceNodeBarelyMoves places a node exactly between two equal
// repulsors: with gravity off its net force is zero, so one step moves it
// only by the tiny anti-stall velocity.
func TestZeroNetForceNodeBarelyMoves(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Gravity = 0
	opts.Seed = 1

	g := buildGraph([][2]float64{{100, 100}, {150, 100}, {200, 100}}, nil)
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	beforeX, beforeY := g.Nodes[1].X, g.Nodes[1].Y
	_, err := layout.Step()
	require.NoError(t, err)

	moved := math.Hypot(g.Nodes[1].X-beforeX, g.Nodes[1].Y-beforeY)
	assert.Less(t, moved, 1e-3)
}

// TestSpringConvergesToLinkDistance verifies that two connected nodes settle
// at the configured ideal length when repulsion and gravity are off.
func TestSpringConvergesToLinkDistance(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Gravity = 0
	opts.NodeStrength = 0 // isolate the spring
	opts.LinkDistance = 100
	opts.MinMovement = 0.01
	opts.Seed = 1

	g := buildGraph([][2]float64{{100, 150}, {150, 150}}, [][2]int{{0, 1}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))
	require.NoError(t, layout.Run(context.Background()))

	assert.Equal(t, physics.Converged, layout.State())
	assert.InDelta(t, 100.0, distance(&g.Nodes[0], &g.Nodes[1]), 1.0)
}

// TestPinnedNodeNeverMoves verifies the hard pin: fx/fy always win over
// accumulated force.
func TestPinnedNodeNeverMoves(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.MaxIteration = 50
	opts.MinMovement = 0 // never converge, exhaust the budget
	opts.Seed = 1

	g := buildGraph([][2]float64{{100, 100}, {105, 100}, {100, 105}}, [][2]int{{0, 1}, {1, 2}})
	g.Nodes[0].Pin(42, 24)

	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))
	require.NoError(t, layout.Run(context.Background()))

	assert.Equal(t, physics.Exhausted, layout.State())
	assert.Equal(t, 42.0, g.Nodes[0].X)
	assert.Equal(t, 24.0, g.Nodes[0].Y)
}

// TestOverlapPreventionAddsSeparation verifies that two overlapping nodes
// separate strictly faster when the collision force is enabled.
func TestOverlapPreventionAddsSeparation(t *testing.T) {
	run := func(preventOverlap bool) float64 {
		opts := physics.DefaultOptions()
		opts.Gravity = 0
		// Keep base repulsion below the speed clamp so the extra
		// collision push stays observable.
		opts.NodeStrength = 100
		opts.CollideStrength = 100
		opts.PreventOverlap = preventOverlap
		opts.Seed = 7

		g := buildGraph([][2]float64{{100, 100}, {112, 100}}, nil)
		g.Nodes[0].Size = 20
		g.Nodes[1].Size = 20 // combined half-sizes 20 > distance 12

		layout := physics.NewForceLayout(opts)
		require.NoError(t, layout.Initialize(g))
		_, err := layout.Step()
		require.NoError(t, err)
		return distance(&g.Nodes[0], &g.Nodes[1])
	}

	plain := run(false)
	collide := run(true)
	assert.Greater(t, collide, plain, "collision force must add a monotonic extra push")
}

// TestVelocityClamp injects a force large enough to exceed MaxSpeed and
// asserts per-step displacement never exceeds MaxSpeed * interval.
func TestVelocityClamp(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Gravity = 0
	opts.NodeStrength = 1e9
	opts.Seed = 1

	g := buildGraph([][2]float64{{100, 100}, {100.5, 100}}, nil)
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	before := [][2]float64{{g.Nodes[0].X, g.Nodes[0].Y}, {g.Nodes[1].X, g.Nodes[1].Y}}
	_, err := layout.Step()
	require.NoError(t, err)

	maxDisp := opts.MaxSpeed*0.02 + 1e-9
	for i := range g.Nodes {
		moved := math.Hypot(g.Nodes[i].X-before[i][0], g.Nodes[i].Y-before[i][1])
		assert.LessOrEqual(t, moved, maxDisp)
	}
}

// TestCycleConverges lays out a 5-node cycle with default settings and
// expects convergence well inside the iteration budget.
func TestCycleConverges(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Seed = 42

	g := buildGraph(
		make([][2]float64, 5), // unset positions, seeded by the engine
		[][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}},
	)
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))
	require.NoError(t, layout.Run(context.Background()))

	assert.Equal(t, physics.Converged, layout.State())
	assert.LessOrEqual(t, layout.Iterations(), 500)
	for i := range g.Nodes {
		assert.False(t, math.IsNaN(g.Nodes[i].X) || math.IsNaN(g.Nodes[i].Y))
	}
}

// TestTickObservesEveryStep verifies the per-step callback count matches the
// number of executed iterations.
func TestTickObservesEveryStep(t *testing.T) {
	ticks := 0
	opts := physics.DefaultOptions()
	opts.Seed = 3
	opts.MaxIteration = 25
	opts.MinMovement = 0
	opts.OnTick = func(iteration int) { ticks = iteration }

	g := buildGraph([][2]float64{{10, 10}, {20, 20}, {30, 10}}, [][2]int{{0, 1}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))
	require.NoError(t, layout.Run(context.Background()))

	assert.Equal(t, 25, ticks)
	assert.Equal(t, 25, layout.Iterations())
}

// TestRunHonorsContext verifies synchronous runs stop on cancellation with
// positions left at their last-computed values.
func TestRunHonorsContext(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Seed = 5
	opts.MinMovement = 0
	opts.MaxIteration = math.MaxInt32

	g := buildGraph([][2]float64{{10, 10}, {20, 20}, {30, 10}, {40, 40}}, [][2]int{{0, 1}, {1, 2}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := layout.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	for i := range g.Nodes {
		assert.False(t, math.IsNaN(g.Nodes[i].X))
	}
}

// TestAnimatedRunCompletes verifies the cooperative mode delivers the
// terminal state through the handle.
func TestAnimatedRunCompletes(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Seed = 9
	opts.MaxIteration = 10
	opts.MinMovement = 0 // force the Exhausted path
	opts.FrameTime = time.Millisecond

	g := buildGraph([][2]float64{{10, 10}, {290, 290}}, [][2]int{{0, 1}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	h := layout.Start()
	select {
	case state := <-h.Done():
		assert.Equal(t, physics.Exhausted, state)
		assert.NoError(t, h.Err())
	case <-time.After(5 * time.Second):
		t.Fatal("animated run did not complete")
	}
}

// TestStopPreventsFurtherSteps verifies that stopping the handle keeps any
// further scheduled step from running.
func TestStopPreventsFurtherSteps(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Seed = 11
	opts.MinMovement = 0
	opts.MaxIteration = math.MaxInt32
	opts.FrameTime = 50 * time.Millisecond

	g := buildGraph([][2]float64{{10, 10}, {20, 20}}, [][2]int{{0, 1}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))

	h := layout.Start()
	h.Stop() // before the first tick fires
	h.Stop() // idempotent

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, layout.Iterations())
	assert.Equal(t, physics.Stepping, layout.State())
}

// TestWorkerRepulsionMatchesSerial runs the same graph serially and with
// the parallel repulsion phase; the reduced accelerations must agree.
func TestWorkerRepulsionMatchesSerial(t *testing.T) {
	positions := [][2]float64{
		{10, 20}, {80, 45}, {160, 30}, {40, 120}, {200, 200}, {250, 90},
	}
	edges := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}}

	run := func(workers bool) *models.Graph {
		opts := physics.DefaultOptions()
		opts.Seed = 13
		opts.WorkerEnabled = workers
		opts.Workers = 3
		opts.MaxIteration = 3
		opts.MinMovement = 0

		g := buildGraph(positions, edges)
		layout := physics.NewForceLayout(opts)
		require.NoError(t, layout.Initialize(g))
		require.NoError(t, layout.Run(context.Background()))
		return g
	}

	serial := run(false)
	parallel := run(true)
	for i := range serial.Nodes {
		assert.InDelta(t, serial.Nodes[i].X, parallel.Nodes[i].X, 1e-6)
		assert.InDelta(t, serial.Nodes[i].Y, parallel.Nodes[i].Y, 1e-6)
	}
}

// TestCompletionFiresExactlyOnce runs to exhaustion and steps again.
func TestCompletionFiresExactlyOnce(t *testing.T) {
	completions := 0
	var final physics.State

	opts := physics.DefaultOptions()
	opts.Seed = 17
	opts.MaxIteration = 5
	opts.MinMovement = 0
	opts.OnComplete = func(s physics.State) {
		completions++
		final = s
	}

	g := buildGraph([][2]float64{{10, 10}, {50, 50}}, [][2]int{{0, 1}})
	layout := physics.NewForceLayout(opts)
	require.NoError(t, layout.Initialize(g))
	require.NoError(t, layout.Run(context.Background()))

	done, err := layout.Step()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, completions)
	assert.Equal(t, physics.Exhausted, final)
}

// BenchmarkStep exercises the O(n²) repulsion phase, the dominant cost.
func BenchmarkStep(b *testing.B) {
	opts := physics.DefaultOptions()
	opts.Seed = 1
	opts.MinMovement = 0
	opts.MaxIteration = math.MaxInt32

	positions := make([][2]float64, 200)
	var edges [][2]int
	for i := 1; i < len(positions); i++ {
		edges = append(edges, [2]int{i - 1, i})
	}
	g := buildGraph(positions, edges)

	layout := physics.NewForceLayout(opts)
	if err := layout.Initialize(g); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := layout.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
