package physics

import "errors"

var (
	// ErrEdgeReference indicates an edge whose source or target id is not
	// present in the node set. Detected at Initialize so undefined values
	// never reach the force buffers.
	ErrEdgeReference = errors.New("physics: edge references a node not present in the graph")

	// ErrNonPositiveMass indicates a node whose resolved mass is zero,
	// negative, or not finite. Rejected at normalization time because a
	// non-positive mass turns the mass-weighted force terms into NaN or
	// runaway accelerations.
	ErrNonPositiveMass = errors.New("physics: node mass must be a positive finite number")

	// ErrNonFinite indicates that a step produced a NaN or infinite
	// position. The run is aborted rather than settling into a corrupted
	// layout.
	ErrNonFinite = errors.New("physics: simulation produced a non-finite position")

	// ErrNotInitialized indicates Step or Run was called before Initialize.
	ErrNotInitialized = errors.New("physics: layout has not been initialized")
)
