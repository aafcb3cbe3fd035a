// Package reference provides a straightforward single-goroutine PageRank
// implementation that is used to validate the results of the parallel engine.
package reference

import (
	"math"

	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
)

// Rank calculates the PageRank scores for g using the same update rule as the
// parallel engine and stores them in solution. It returns the number of
// executed iterations.
func Rank(g graph.View, solution []float64, damping, convergence float64, maxIterations int) (int, error) {
	numVertices := g.VertexCount()
	if numVertices == 0 {
		return 0, graph.ErrEmptyGraph
	} else if len(solution) != numVertices {
		return 0, xerrors.Errorf("reference: expected %d entries; got %d", numVertices, len(solution))
	}

	var (
		equalProb = 1.0 / float64(numVertices)
		scoreOld  = solution
		scoreNew  = make([]float64, numVertices)
		converged bool
		iter      int
	)
	for i := range scoreOld {
		scoreOld[i] = equalProb
	}

	for !converged && iter < maxIterations {
		iter++

		var broadcast, globalDiff float64
		for v := 0; v < numVertices; v++ {
			id := graph.VertexID(v)
			if g.OutDegree(id) == 0 {
				broadcast += scoreOld[v]
			}

			var incoming float64
			for _, src := range g.Predecessors(id) {
				incoming += scoreOld[src] / float64(g.OutDegree(src))
			}
			scoreNew[v] = damping*incoming + (1.0-damping)*equalProb
		}

		for v := 0; v < numVertices; v++ {
			scoreNew[v] += damping * broadcast * equalProb
			globalDiff += math.Abs(scoreNew[v] - scoreOld[v])
		}
		converged = globalDiff < convergence
		scoreOld, scoreNew = scoreNew, scoreOld
	}

	if &scoreOld[0] != &solution[0] {
		copy(solution, scoreOld)
	}
	return iter, nil
}
