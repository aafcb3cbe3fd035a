package pagerank

import (
	"io"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// DefaultChunkSize is the number of vertices handed to a worker at a time
// when Config.ChunkSize is not specified.
const DefaultChunkSize = 16

// Config encapsulates the required parameters for creating a new PageRank
// engine instance. Apart from ChunkSize, Callbacks and Logger, all fields
// must be explicitly set by the caller.
type Config struct {
	// DampingFactor is the probability that a random surfer will click on
	// one of the outgoing links on the page they are currently visiting
	// instead of visiting (teleporting to) a random page in the graph.
	// It must be in the (0, 1] range.
	DampingFactor float64

	// At each iteration the engine tracks the sum of absolute differences
	// of the PageRank scores for each vertex in the graph. The engine
	// stops once that sum drops below ConvergenceThreshold. A zero value
	// disables the convergence check so that exactly MaxIterations
	// iterations are executed.
	ConvergenceThreshold float64

	// MaxIterations caps the number of iterations for a single run.
	MaxIterations int

	// The number of workers to spin up for computing PageRank scores.
	Workers int

	// ChunkSize controls how many consecutive vertices are assigned to a
	// worker at a time. It only affects load balancing. If not specified,
	// DefaultChunkSize will be used instead.
	ChunkSize int

	// Callbacks that are invoked around each iteration.
	Callbacks Callbacks

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// validate checks whether the PageRank engine configuration is valid and
// sets the default values where required.
func (c *Config) validate() error {
	var err error
	if c.DampingFactor <= 0 || c.DampingFactor > 1.0 {
		err = multierror.Append(err, xerrors.New("DampingFactor must be in the range (0, 1]"))
	}
	if c.ConvergenceThreshold < 0 {
		err = multierror.Append(err, xerrors.New("ConvergenceThreshold must not be negative"))
	}
	if c.MaxIterations <= 0 {
		err = multierror.Append(err, xerrors.New("MaxIterations must be at least 1"))
	}
	if c.Workers <= 0 {
		err = multierror.Append(err, xerrors.New("Workers must be at least 1"))
	}
	if c.ChunkSize < 0 {
		err = multierror.Append(err, xerrors.New("ChunkSize must not be negative"))
	} else if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}
	patchEmptyCallbacks(&c.Callbacks)

	return err
}
