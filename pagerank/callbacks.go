package pagerank

// Iteration describes the outcome of a completed iteration.
type Iteration struct {
	// Index is the zero-based index of the iteration.
	Index int

	// GlobalDiff is the sum of absolute score differences between this
	// iteration and the previous one.
	GlobalDiff float64

	// DanglingMass is the aggregate score of the vertices without
	// outgoing edges at the start of the iteration.
	DanglingMass float64

	// Scores holds the committed scores. The slice is only valid for the
	// duration of the callback and must not be modified.
	Scores []float64
}

// Callbacks encapsulates a series of callbacks that are invoked by the engine
// while ranking a graph. All callbacks are optional and will be ignored if not
// specified. Callbacks are always invoked from the goroutine that called the
// engine and never while workers are running.
type Callbacks struct {
	// PreIteration, if defined, is invoked before running the next
	// iteration.
	PreIteration func(index int)

	// PostIteration, if defined, is invoked once an iteration has been
	// committed.
	PostIteration func(it Iteration)
}

func patchEmptyCallbacks(cb *Callbacks) {
	if cb.PreIteration == nil {
		cb.PreIteration = func(int) {}
	}
	if cb.PostIteration == nil {
		cb.PostIteration = func(Iteration) {}
	}
}
