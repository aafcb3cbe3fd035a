package pagerank

import (
	"math"

	"github.com/linksrus/parallelrank/graph"
	"github.com/linksrus/parallelrank/pagerank/aggregator"
	"github.com/linksrus/parallelrank/pagerank/partition"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrSolutionSize is returned when the caller-provided solution slice does not
// have one entry per graph vertex.
var ErrSolutionSize = xerrors.New("solution size does not match the vertex count")

// State describes how a ranking run terminated.
type State int

const (
	// IterationCapReached indicates that the engine stopped after
	// executing the maximum number of iterations.
	IterationCapReached State = iota

	// Converged indicates that the global score difference dropped below
	// the convergence threshold.
	Converged
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Converged {
		return "converged"
	}
	return "iteration cap reached"
}

// Result summarizes a completed ranking run.
type Result struct {
	// Iterations is the number of executed iterations.
	Iterations int

	// GlobalDiff is the sum of absolute score differences recorded by the
	// last iteration.
	GlobalDiff float64

	// Converged is true if GlobalDiff dropped below the convergence
	// threshold.
	Converged bool
}

// State returns the terminal state of the run.
func (r Result) State() State {
	if r.Converged {
		return Converged
	}
	return IterationCapReached
}

// Engine executes the iterative version of the PageRank algorithm on a graph
// until the desired level of convergence or the iteration cap is reached.
// An Engine holds no per-run state and can be used concurrently.
type Engine struct {
	cfg Config
}

// NewEngine returns a new Engine instance using the provided config options.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank engine config validation failed: %w", err)
	}

	return &Engine{cfg: cfg}, nil
}

// Rank calculates the PageRank scores for g and returns them as a slice
// indexed by vertex ID.
func (e *Engine) Rank(g graph.View) ([]float64, Result, error) {
	solution := make([]float64, g.VertexCount())
	res, err := e.RankInto(g, solution)
	if err != nil {
		return nil, res, err
	}
	return solution, res, nil
}

// RankInto calculates the PageRank scores for g and stores them in solution,
// which must contain exactly one entry per vertex. Reaching the iteration cap
// is not treated as an error.
func (e *Engine) RankInto(g graph.View, solution []float64) (Result, error) {
	if err := checkSolution(g, solution); err != nil {
		return Result{}, err
	}

	buf := newScoreBuffers(solution)
	buf.initializeUniform()

	runner, err := e.newRunner(g, buf)
	if err != nil {
		return Result{}, err
	}
	defer runner.close()

	var res Result
	for res.Iterations < e.cfg.MaxIterations {
		diff := runner.iterate(res.Iterations)
		res.Iterations++
		res.GlobalDiff = diff
		if diff < e.cfg.ConvergenceThreshold {
			res.Converged = true
			break
		}
	}
	buf.finalize()

	e.cfg.Logger.WithFields(logrus.Fields{
		"vertices":    len(solution),
		"iterations":  res.Iterations,
		"global_diff": res.GlobalDiff,
		"state":       res.State().String(),
	}).Debug("ranking completed")
	return res, nil
}

// Step runs a single iteration using the contents of scores as the committed
// state and overwrites them with the updated scores. It returns the global
// score difference for the iteration.
func (e *Engine) Step(g graph.View, scores []float64) (float64, error) {
	if err := checkSolution(g, scores); err != nil {
		return 0, err
	}

	buf := newScoreBuffers(scores)
	runner, err := e.newRunner(g, buf)
	if err != nil {
		return 0, err
	}
	defer runner.close()

	diff := runner.iterate(0)
	buf.finalize()
	return diff, nil
}

func checkSolution(g graph.View, solution []float64) error {
	numVertices := g.VertexCount()
	if numVertices == 0 {
		return graph.ErrEmptyGraph
	} else if len(solution) != numVertices {
		return xerrors.Errorf("expected %d entries; got %d: %w", numVertices, len(solution), ErrSolutionSize)
	}
	return nil
}

// runner holds the state for a single ranking run: the worker pool, the
// vertex partitions and the iteration-scoped reductions.
type runner struct {
	cfg    *Config
	g      graph.View
	buf    *scoreBuffers
	pool   *workerPool
	chunks *partition.Range

	invN      float64
	teleport  float64
	broadcast float64

	danglingMass aggregator.Float64Accumulator
	globalDiff   aggregator.Float64Accumulator
}

func (e *Engine) newRunner(g graph.View, buf *scoreBuffers) (*runner, error) {
	numVertices := g.VertexCount()
	chunks, err := partition.NewChunkedRange(numVertices, e.cfg.ChunkSize)
	if err != nil {
		return nil, xerrors.Errorf("partitioning vertices: %w", err)
	}

	invN := 1.0 / float64(numVertices)
	return &runner{
		cfg:      &e.cfg,
		g:        g,
		buf:      buf,
		pool:     newWorkerPool(e.cfg.Workers),
		chunks:   chunks,
		invN:     invN,
		teleport: (1.0 - e.cfg.DampingFactor) * invN,
	}, nil
}

func (r *runner) close() { r.pool.close() }

// iterate executes a full iteration, commits the new scores and returns the
// global score difference.
func (r *runner) iterate(index int) float64 {
	r.cfg.Callbacks.PreIteration(index)

	r.danglingMass.Set(0)
	r.globalDiff.Set(0)

	// The pool acts as a barrier: the dangling mass is complete once
	// run returns.
	r.pool.run(r.chunks, r.updateScores)
	danglingMass := r.danglingMass.Get()
	r.broadcast = r.cfg.DampingFactor * danglingMass * r.invN
	r.pool.run(r.chunks, r.applyBroadcast)

	diff := r.globalDiff.Get()
	r.buf.swap()

	r.cfg.Callbacks.PostIteration(Iteration{
		Index:        index,
		GlobalDiff:   diff,
		DanglingMass: danglingMass,
		Scores:       r.buf.committed(),
	})
	return diff
}

// updateScores computes the damped incoming score for each vertex in
// [from, to) and accumulates the committed score of the dangling vertices in
// the range.
func (r *runner) updateScores(from, to int) {
	var (
		prev     = r.buf.committed()
		next     = r.buf.pending()
		damping  = r.cfg.DampingFactor
		dangling float64
	)

	for v := from; v < to; v++ {
		id := graph.VertexID(v)

		var incoming float64
		for _, src := range r.g.Predecessors(id) {
			incoming += prev[src] / float64(r.g.OutDegree(src))
		}

		if r.g.OutDegree(id) == 0 {
			dangling += prev[v]
		}

		next[v] = damping*incoming + r.teleport
	}

	if dangling != 0 {
		r.danglingMass.Aggregate(dangling)
	}
}

// applyBroadcast redistributes the dangling mass to each vertex in
// [from, to) and accumulates the absolute score change for the range.
func (r *runner) applyBroadcast(from, to int) {
	var (
		prev = r.buf.committed()
		next = r.buf.pending()
		diff float64
	)

	for v := from; v < to; v++ {
		next[v] += r.broadcast
		diff += math.Abs(next[v] - prev[v])
	}

	r.globalDiff.Aggregate(diff)
}
