package pagerank_test

import (
	"math"
	"math/rand"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/linksrus/parallelrank/compare"
	"github.com/linksrus/parallelrank/graph"
	"github.com/linksrus/parallelrank/graph/mocks"
	"github.com/linksrus/parallelrank/graph/store/csr"
	"github.com/linksrus/parallelrank/graph/store/memory"
	"github.com/linksrus/parallelrank/pagerank"
	"github.com/linksrus/parallelrank/pagerank/reference"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(EngineTestSuite))

type spec struct {
	descr     string
	numVerts  int
	edges     []graph.Edge
	expScores []float64
	tolerance float64
}

type EngineTestSuite struct {
}

func (s *EngineTestSuite) TestTwoCycle(c *gc.C) {
	s.assertPageRankScores(c, spec{
		descr: `
 (0) <-> (1)

Expect PageRank score to be distributed evenly across the two nodes.
`,
		numVerts:  2,
		edges:     []graph.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 0}},
		expScores: []float64{0.5, 0.5},
		tolerance: 1e-6,
	})
}

func (s *EngineTestSuite) TestThreeCycle(c *gc.C) {
	s.assertPageRankScores(c, spec{
		descr: `
 (0) -> (1) -> (2)
  ^             |
  |             |
  +-------------+

Expect PageRank score to be distributed evenly across the three nodes.
`,
		numVerts:  3,
		edges:     []graph.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}, {Src: 2, Dst: 0}},
		expScores: []float64{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0},
		tolerance: 1e-6,
	})
}

func (s *EngineTestSuite) TestBackLink(c *gc.C) {
	s.assertPageRankScores(c, spec{
		descr: `
  +--(0)<-+
  |       |
  V       |
 (1) <-> (2)

Expect 1 and 2 to get better score than 0 due to the back-link between them.
`,
		numVerts:  3,
		edges:     []graph.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}, {Src: 2, Dst: 0}, {Src: 2, Dst: 1}},
		expScores: []float64{0.2145, 0.3937, 0.3879},
		tolerance: 0.01,
	})
}

func (s *EngineTestSuite) TestBidirectionalChain(c *gc.C) {
	s.assertPageRankScores(c, spec{
		descr: `
 (0) <-> (1) <-> (2)

Expect 0 and 2 to get the same score and 1 to get the largest score since there
are two links pointing to it.
`,
		numVerts:  3,
		edges:     []graph.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 0}, {Src: 1, Dst: 2}, {Src: 2, Dst: 1}},
		expScores: []float64{0.2569, 0.4860, 0.2569},
		tolerance: 0.01,
	})
}

func (s *EngineTestSuite) TestDeadEnd(c *gc.C) {
	s.assertPageRankScores(c, spec{
		descr: `
 (0) -> (1) -> (2)

2 is a dead-end; its score is redistributed to every vertex in the graph so
that S(0) < S(1) < S(2).
`,
		numVerts:  3,
		edges:     []graph.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}},
		expScores: []float64{0.1842, 0.3411, 0.4745},
		tolerance: 0.01,
	})
}

func (s *EngineTestSuite) TestIsolatedVertex(c *gc.C) {
	const damping = 0.85
	g := s.buildCSR(c, 3, []graph.Edge{{Src: 0, Dst: 1}})

	scores, res, err := s.newEngine(c, damping, 1e-10, 100, 2).Rank(g)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Converged, gc.Equals, true)

	// Vertices 1 and 2 are dangling; at the fixed point the isolated
	// vertex only receives the teleport term and its share of the
	// dangling mass.
	fixedPoint := (1-damping)/3 + damping*(scores[1]+scores[2])/3
	c.Assert(math.Abs(scores[2]-fixedPoint) < 1e-6, gc.Equals, true, gc.Commentf("expected %f; got %f", fixedPoint, scores[2]))
	c.Assert(math.Abs(scores[2]-1/(3+damping)) < 1e-6, gc.Equals, true, gc.Commentf("expected %f; got %f", 1/(3+damping), scores[2]))
	c.Assert(math.Abs(scores[0]-scores[2]) < 1e-9, gc.Equals, true)
	c.Assert(math.Abs(scores[1]-(1+damping)/(3+damping)) < 1e-6, gc.Equals, true, gc.Commentf("expected %f; got %f", (1+damping)/(3+damping), scores[1]))

	// The dangling mass is redistributed rather than lost.
	c.Assert(math.Abs(floats.Sum(scores)-1) < 1e-6, gc.Equals, true, gc.Commentf("score sum %f", floats.Sum(scores)))
}

func (s *EngineTestSuite) TestConservationWithoutDamping(c *gc.C) {
	rng := rand.New(rand.NewSource(42))
	el := randomEdgeList(rng, 500, 5, false)
	g := s.buildCSR(c, el.NumVertices, el.Edges)

	var iterations int
	engine, err := pagerank.NewEngine(pagerank.Config{
		DampingFactor:        1.0,
		ConvergenceThreshold: 0,
		MaxIterations:        20,
		Workers:              4,
		Callbacks: pagerank.Callbacks{
			PostIteration: func(it pagerank.Iteration) {
				iterations++
				c.Assert(it.DanglingMass, gc.Equals, 0.0)
				sum := floats.Sum(it.Scores)
				c.Assert(math.Abs(sum-1) < 1e-6, gc.Equals, true, gc.Commentf("iteration %d: score sum %f", it.Index, sum))
			},
		},
	})
	c.Assert(err, gc.IsNil)

	_, res, err := engine.Rank(g)
	c.Assert(err, gc.IsNil)
	c.Assert(iterations, gc.Equals, 20)
	c.Assert(res.Iterations, gc.Equals, 20)
}

func (s *EngineTestSuite) TestDeterministicAcrossWorkerCounts(c *gc.C) {
	rng := rand.New(rand.NewSource(42))
	el := randomEdgeList(rng, 20000, 7, true)
	g := s.buildCSR(c, el.NumVertices, el.Edges)

	expScores := make([]float64, g.VertexCount())
	_, err := reference.Rank(g, expScores, 0.85, 1e-7, 20)
	c.Assert(err, gc.IsNil)

	for _, workers := range []int{1, 2, 8} {
		start := time.Now()
		scores, res, err := s.newEngine(c, 0.85, 1e-7, 20, workers).Rank(g)
		c.Assert(err, gc.IsNil)
		c.Logf("ranked %d vertices with %d workers in %d iterations (%v)", g.VertexCount(), workers, res.Iterations, time.Since(start).Truncate(time.Millisecond))

		c.Assert(compare.Approx(expScores, scores, compare.DefaultTolerance), gc.IsNil, gc.Commentf("workers: %d", workers))
		sum := floats.Sum(scores)
		c.Assert(math.Abs(sum-1) < 1e-6, gc.Equals, true, gc.Commentf("workers: %d; score sum %f", workers, sum))
	}
}

func (s *EngineTestSuite) TestBackingsAgree(c *gc.C) {
	rng := rand.New(rand.NewSource(7))
	el := randomEdgeList(rng, 1000, 4, true)

	csrGraph := s.buildCSR(c, el.NumVertices, el.Edges)
	memGraph, err := memory.FromEdgeList(el)
	c.Assert(err, gc.IsNil)

	engine := s.newEngine(c, 0.85, 1e-7, 20, 3)
	csrScores, _, err := engine.Rank(csrGraph)
	c.Assert(err, gc.IsNil)
	memScores, _, err := engine.Rank(memGraph)
	c.Assert(err, gc.IsNil)

	c.Assert(compare.Approx(csrScores, memScores, 1e-9), gc.IsNil)
}

func (s *EngineTestSuite) TestIterationCap(c *gc.C) {
	rng := rand.New(rand.NewSource(1))
	el := randomEdgeList(rng, 300, 5, true)
	g := s.buildCSR(c, el.NumVertices, el.Edges)

	for _, maxIterations := range []int{1, 4, 5} {
		var preCalls int
		engine, err := pagerank.NewEngine(pagerank.Config{
			DampingFactor:        0.85,
			ConvergenceThreshold: 0,
			MaxIterations:        maxIterations,
			Workers:              2,
			Callbacks: pagerank.Callbacks{
				PreIteration: func(index int) {
					c.Assert(index, gc.Equals, preCalls)
					preCalls++
				},
			},
		})
		c.Assert(err, gc.IsNil)

		scores, res, err := engine.Rank(g)
		c.Assert(err, gc.IsNil)
		c.Assert(res.Iterations, gc.Equals, maxIterations)
		c.Assert(res.Converged, gc.Equals, false)
		c.Assert(res.State(), gc.Equals, pagerank.IterationCapReached)
		c.Assert(preCalls, gc.Equals, maxIterations)

		// The caller-visible scores must reflect the last committed
		// iteration regardless of the iteration count parity.
		expScores := make([]float64, g.VertexCount())
		_, err = reference.Rank(g, expScores, 0.85, 0, maxIterations)
		c.Assert(err, gc.IsNil)
		c.Assert(compare.Approx(expScores, scores, 1e-9), gc.IsNil, gc.Commentf("max iterations: %d", maxIterations))
	}
}

func (s *EngineTestSuite) TestConvergedStateIsStable(c *gc.C) {
	const threshold = 1e-7
	rng := rand.New(rand.NewSource(3))
	el := randomEdgeList(rng, 2000, 6, true)
	g := s.buildCSR(c, el.NumVertices, el.Edges)

	engine := s.newEngine(c, 0.85, threshold, 200, 4)
	scores, res, err := engine.Rank(g)
	c.Assert(err, gc.IsNil)
	c.Assert(res.State(), gc.Equals, pagerank.Converged)
	c.Assert(res.GlobalDiff < threshold, gc.Equals, true)

	prev := append([]float64(nil), scores...)
	diff, err := engine.Step(g, scores)
	c.Assert(err, gc.IsNil)
	c.Assert(diff < threshold, gc.Equals, true, gc.Commentf("global diff after extra step: %g", diff))
	for v := range scores {
		c.Assert(math.Abs(scores[v]-prev[v]) <= threshold, gc.Equals, true, gc.Commentf("vertex %d changed by %g", v, math.Abs(scores[v]-prev[v])))
	}
}

func (s *EngineTestSuite) TestViewContract(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	view := mocks.NewMockView(ctrl)
	view.EXPECT().VertexCount().Return(1).AnyTimes()
	view.EXPECT().OutDegree(graph.VertexID(0)).Return(0).AnyTimes()
	view.EXPECT().Predecessors(graph.VertexID(0)).Return(nil).AnyTimes()

	scores, res, err := s.newEngine(c, 0.85, 1e-7, 20, 2).Rank(view)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Converged, gc.Equals, true)
	c.Assert(scores, gc.DeepEquals, []float64{1.0})
}

func (s *EngineTestSuite) TestInvalidInput(c *gc.C) {
	engine := s.newEngine(c, 0.85, 1e-7, 20, 2)

	_, _, err := engine.Rank(memory.NewInMemoryGraph(0))
	c.Assert(xerrors.Is(err, graph.ErrEmptyGraph), gc.Equals, true)

	_, err = engine.RankInto(memory.NewInMemoryGraph(3), make([]float64, 2))
	c.Assert(xerrors.Is(err, pagerank.ErrSolutionSize), gc.Equals, true)

	_, err = engine.Step(memory.NewInMemoryGraph(3), make([]float64, 4))
	c.Assert(xerrors.Is(err, pagerank.ErrSolutionSize), gc.Equals, true)

	_, err = pagerank.NewEngine(pagerank.Config{})
	c.Assert(err, gc.ErrorMatches, "(?ms)PageRank engine config validation failed.*")
}

func (s *EngineTestSuite) assertPageRankScores(c *gc.C, spec spec) {
	c.Log(spec.descr)

	g := s.buildCSR(c, spec.numVerts, spec.edges)
	for _, workers := range []int{1, 2} {
		scores, res, err := s.newEngine(c, 0.85, 1e-7, 100, workers).Rank(g)
		c.Assert(err, gc.IsNil)
		c.Logf("converged after %d iterations", res.Iterations)

		for v, score := range scores {
			absDelta := math.Abs(score - spec.expScores[v])
			c.Assert(absDelta <= spec.tolerance, gc.Equals, true, gc.Commentf("expected score for %v to be %f ± %g; got %f (abs. delta %f)", v, spec.expScores[v], spec.tolerance, score, absDelta))
		}

		prSum := floats.Sum(scores)
		c.Assert(math.Abs(1.0-prSum) <= 0.001, gc.Equals, true, gc.Commentf("expected all pagerank scores to add up to 1.0; got %f", prSum))
	}
}

func (s *EngineTestSuite) newEngine(c *gc.C, damping, threshold float64, maxIterations, workers int) *pagerank.Engine {
	engine, err := pagerank.NewEngine(pagerank.Config{
		DampingFactor:        damping,
		ConvergenceThreshold: threshold,
		MaxIterations:        maxIterations,
		Workers:              workers,
	})
	c.Assert(err, gc.IsNil)
	return engine
}

func (s *EngineTestSuite) buildCSR(c *gc.C, numVerts int, edges []graph.Edge) *csr.Graph {
	el := &graph.EdgeList{NumVertices: numVerts, Edges: edges}
	g, err := csr.Build(el.NumVertices, el.Iterator())
	c.Assert(err, gc.IsNil)
	return g
}

// randomEdgeList generates a graph with numVerts vertices, each having up to
// maxOutLinks outgoing edges. If allowDangling is false, every vertex links
// to its successor so that no vertex is left without outgoing edges.
func randomEdgeList(rng *rand.Rand, numVerts, maxOutLinks int, allowDangling bool) *graph.EdgeList {
	el := &graph.EdgeList{NumVertices: numVerts}
	for src := 0; src < numVerts; src++ {
		if !allowDangling {
			el.Edges = append(el.Edges, graph.Edge{Src: graph.VertexID(src), Dst: graph.VertexID((src + 1) % numVerts)})
		}

		outLinks := rng.Intn(maxOutLinks)
		for j := 0; j < outLinks; j++ {
			el.Edges = append(el.Edges, graph.Edge{Src: graph.VertexID(src), Dst: graph.VertexID(rng.Intn(numVerts))})
		}
	}
	return el
}
