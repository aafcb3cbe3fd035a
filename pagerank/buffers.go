package pagerank

// scoreBuffers implements the double-buffered score state used by the engine.
// The scores of the last completed iteration always live in the committed
// buffer while the pending buffer is scratch space for the iteration in
// progress.
type scoreBuffers struct {
	solution []float64
	scratch  []float64

	cur  []float64
	next []float64
}

// newScoreBuffers wraps the caller-provided solution slice and allocates a
// scratch buffer of the same size. The solution slice starts out as the
// committed buffer.
func newScoreBuffers(solution []float64) *scoreBuffers {
	scratch := make([]float64, len(solution))
	return &scoreBuffers{
		solution: solution,
		scratch:  scratch,
		cur:      solution,
		next:     scratch,
	}
}

// initializeUniform assigns a score of 1/N to every vertex in the committed
// buffer.
func (b *scoreBuffers) initializeUniform() {
	equalProb := 1.0 / float64(len(b.cur))
	for i := range b.cur {
		b.cur[i] = equalProb
	}
}

func (b *scoreBuffers) committed() []float64 { return b.cur }
func (b *scoreBuffers) pending() []float64   { return b.next }

// swap commits the pending buffer. No scores are copied.
func (b *scoreBuffers) swap() {
	b.cur, b.next = b.next, b.cur
}

// finalize ensures that the caller's solution slice holds the committed
// scores, copying them over from the scratch buffer if an odd number of
// swaps left them there.
func (b *scoreBuffers) finalize() {
	if &b.cur[0] != &b.solution[0] {
		copy(b.solution, b.cur)
		b.cur, b.next = b.solution, b.scratch
	}
}
