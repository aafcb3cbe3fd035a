package harness

import (
	"io"
	"time"

	"github.com/google/uuid"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/linksrus/parallelrank/compare"
	"github.com/linksrus/parallelrank/pagerank"
	"github.com/linksrus/parallelrank/pagerank/reference"
	"github.com/linksrus/parallelrank/report"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the settings for a validation run.
type Config struct {
	// The graph to rank: a text edge list, a ".bin" snapshot or a
	// postgresql:// link graph URI.
	GraphSource string

	// The in-memory representation to load the graph into. Defaults to
	// BackingCSR.
	Backing Backing

	// Parameters forwarded to the PageRank engine.
	Workers              int
	DampingFactor        float64
	ConvergenceThreshold float64
	MaxIterations        int
	ChunkSize            int

	// The maximum per-vertex difference between the parallel and serial
	// scores. Defaults to compare.DefaultTolerance.
	Tolerance float64

	// Where to write the scores. If empty, no report is written.
	OutputPath string

	// SkipReference disables the serial reference run and the
	// correctness check.
	SkipReference bool

	// A clock instance for measuring elapsed time. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// Metrics, if specified, is populated with the run statistics.
	Metrics *Metrics

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.GraphSource == "" {
		err = multierror.Append(err, xerrors.Errorf("graph source has not been provided"))
	}
	if cfg.Workers <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for workers"))
	}
	if cfg.Backing == "" {
		cfg.Backing = BackingCSR
	} else if cfg.Backing != BackingCSR && cfg.Backing != BackingMap {
		err = multierror.Append(err, xerrors.Errorf("unsupported graph backing %q", cfg.Backing))
	}
	if cfg.Tolerance < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for tolerance"))
	} else if cfg.Tolerance == 0 {
		cfg.Tolerance = compare.DefaultTolerance
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	return err
}

// Summary describes the outcome of a validation run.
type Summary struct {
	RunID       uuid.UUID
	NumVertices int
	NumEdges    int

	LoadTime      time.Duration
	RankTime      time.Duration
	ReferenceTime time.Duration
	WriteTime     time.Duration

	Result pagerank.Result

	// Correct is set when the parallel scores matched the serial
	// reference. Mismatch describes the differences otherwise.
	Correct  bool
	Mismatch error

	// Scores holds the parallel engine's output.
	Scores []float64
}

// Runner loads a graph, ranks it with the parallel engine, validates the
// result against the serial reference and writes the scores.
type Runner struct {
	cfg       Config
	engineCfg pagerank.Config
	logger    *logrus.Entry

	iterationStart time.Time
}

// NewRunner creates a new Runner instance with the specified config.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("harness: config validation failed: %w", err)
	}

	r := &Runner{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	r.engineCfg = pagerank.Config{
		DampingFactor:        cfg.DampingFactor,
		ConvergenceThreshold: cfg.ConvergenceThreshold,
		MaxIterations:        cfg.MaxIterations,
		Workers:              cfg.Workers,
		ChunkSize:            cfg.ChunkSize,
		Callbacks: pagerank.Callbacks{
			PreIteration:  r.preIteration,
			PostIteration: r.postIteration,
		},
	}
	if _, err := r.newEngine(cfg.Logger); err != nil {
		return nil, err
	}

	return r, nil
}

// newEngine creates a PageRank engine that logs through logger.
func (r *Runner) newEngine(logger *logrus.Entry) (*pagerank.Engine, error) {
	engineCfg := r.engineCfg
	engineCfg.Logger = logger
	engine, err := pagerank.NewEngine(engineCfg)
	if err != nil {
		return nil, xerrors.Errorf("harness: %w", err)
	}
	return engine, nil
}

// Run executes a full validation run. Runs are not safe to execute
// concurrently on the same Runner.
func (r *Runner) Run() (*Summary, error) {
	sum := &Summary{RunID: uuid.New()}
	r.logger = r.cfg.Logger.WithField("run_id", sum.RunID.String())
	clk := r.cfg.Clock

	tick := clk.Now()
	g, err := OpenGraph(r.cfg.GraphSource, r.cfg.Backing, tick)
	if err != nil {
		return nil, xerrors.Errorf("harness: loading graph: %w", err)
	}
	sum.LoadTime = clk.Now().Sub(tick)
	sum.NumVertices, sum.NumEdges = g.VertexCount(), g.EdgeCount()
	r.logger.WithFields(logrus.Fields{
		"source":    r.cfg.GraphSource,
		"backing":   r.cfg.Backing,
		"vertices":  sum.NumVertices,
		"edges":     sum.NumEdges,
		"load_time": sum.LoadTime.String(),
	}).Info("loaded graph")

	engine, err := r.newEngine(r.logger)
	if err != nil {
		return nil, err
	}
	tick = clk.Now()
	if sum.Scores, sum.Result, err = engine.Rank(g); err != nil {
		return nil, xerrors.Errorf("harness: ranking graph: %w", err)
	}
	sum.RankTime = clk.Now().Sub(tick)
	r.logger.WithFields(logrus.Fields{
		"workers":     r.cfg.Workers,
		"iterations":  sum.Result.Iterations,
		"global_diff": sum.Result.GlobalDiff,
		"state":       sum.Result.State().String(),
		"rank_time":   sum.RankTime.String(),
	}).Info("ranked graph")

	if !r.cfg.SkipReference {
		refScores := make([]float64, sum.NumVertices)
		tick = clk.Now()
		if _, err = reference.Rank(g, refScores, r.cfg.DampingFactor, r.cfg.ConvergenceThreshold, r.cfg.MaxIterations); err != nil {
			return nil, xerrors.Errorf("harness: running serial reference: %w", err)
		}
		sum.ReferenceTime = clk.Now().Sub(tick)

		sum.Mismatch = compare.Approx(refScores, sum.Scores, r.cfg.Tolerance)
		sum.Correct = sum.Mismatch == nil
		entry := r.logger.WithFields(logrus.Fields{
			"reference_time": sum.ReferenceTime.String(),
			"correct":        sum.Correct,
		})
		if sum.Correct {
			entry.Info("parallel scores match the serial reference")
		} else {
			entry.WithField("err", sum.Mismatch).Warn("parallel scores do not match the serial reference")
		}
	}

	if r.cfg.OutputPath != "" {
		tick = clk.Now()
		if err = report.WriteFile(r.cfg.OutputPath, g.Label, sum.Scores); err != nil {
			return nil, xerrors.Errorf("harness: %w", err)
		}
		sum.WriteTime = clk.Now().Sub(tick)
		r.logger.WithFields(logrus.Fields{
			"path":       r.cfg.OutputPath,
			"write_time": sum.WriteTime.String(),
		}).Info("wrote scores")
	}

	r.recordMetrics(sum)
	return sum, nil
}

func (r *Runner) preIteration(int) {
	r.iterationStart = r.cfg.Clock.Now()
}

func (r *Runner) postIteration(it pagerank.Iteration) {
	elapsed := r.cfg.Clock.Now().Sub(r.iterationStart)
	r.logger.WithFields(logrus.Fields{
		"iteration":     it.Index,
		"global_diff":   it.GlobalDiff,
		"dangling_mass": it.DanglingMass,
		"elapsed":       elapsed.String(),
	}).Debug("iteration completed")

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.iterationTime.Observe(elapsed.Seconds())
	}
}

func (r *Runner) recordMetrics(sum *Summary) {
	m := r.cfg.Metrics
	if m == nil {
		return
	}

	m.vertices.Set(float64(sum.NumVertices))
	m.edges.Set(float64(sum.NumEdges))
	m.iterations.Set(float64(sum.Result.Iterations))
	m.globalDiff.Set(sum.Result.GlobalDiff)
	if sum.Correct {
		m.correct.Set(1)
	} else {
		m.correct.Set(0)
	}
	m.phaseTime.WithLabelValues("load").Set(sum.LoadTime.Seconds())
	m.phaseTime.WithLabelValues("rank").Set(sum.RankTime.Seconds())
	m.phaseTime.WithLabelValues("reference").Set(sum.ReferenceTime.Seconds())
	m.phaseTime.WithLabelValues("write").Set(sum.WriteTime.Seconds())
}
