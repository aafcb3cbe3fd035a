package pagerank

import (
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ScoreBuffersTestSuite))

type ScoreBuffersTestSuite struct{}

func (s *ScoreBuffersTestSuite) TestInitializeUniform(c *gc.C) {
	solution := make([]float64, 4)
	buf := newScoreBuffers(solution)
	buf.initializeUniform()

	c.Assert(solution, gc.DeepEquals, []float64{0.25, 0.25, 0.25, 0.25})
	c.Assert(buf.pending(), gc.HasLen, 4)
}

func (s *ScoreBuffersTestSuite) TestSwapDoesNotCopy(c *gc.C) {
	solution := make([]float64, 2)
	buf := newScoreBuffers(solution)
	committed, pending := buf.committed(), buf.pending()

	buf.swap()
	c.Assert(&buf.committed()[0], gc.Equals, &pending[0])
	c.Assert(&buf.pending()[0], gc.Equals, &committed[0])
}

func (s *ScoreBuffersTestSuite) TestFinalizeAfterOddSwaps(c *gc.C) {
	solution := []float64{0.5, 0.5}
	buf := newScoreBuffers(solution)

	copy(buf.pending(), []float64{0.1, 0.9})
	buf.swap()
	buf.finalize()

	c.Assert(solution, gc.DeepEquals, []float64{0.1, 0.9})
	c.Assert(&buf.committed()[0], gc.Equals, &solution[0])
}

func (s *ScoreBuffersTestSuite) TestFinalizeAfterEvenSwaps(c *gc.C) {
	solution := []float64{0.5, 0.5}
	buf := newScoreBuffers(solution)

	copy(buf.pending(), []float64{0.1, 0.9})
	buf.swap()
	copy(buf.pending(), []float64{0.3, 0.7})
	buf.swap()
	buf.finalize()

	c.Assert(solution, gc.DeepEquals, []float64{0.3, 0.7})
}
