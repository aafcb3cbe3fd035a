// Package compare checks whether two PageRank score vectors agree within a
// tolerance.
package compare

import (
	"math"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// DefaultTolerance is the maximum absolute per-vertex difference that
	// is accepted when validating the parallel engine against the serial
	// reference.
	DefaultTolerance = 1e-4

	// maxReportedMismatches limits the number of per-vertex errors that
	// Approx includes in its result.
	maxReportedMismatches = 10
)

var (
	// ErrLengthMismatch is returned when the compared vectors differ in size.
	ErrLengthMismatch = xerrors.New("score vectors have different lengths")

	// ErrScoreMismatch is returned when at least one score differs by more
	// than the tolerance.
	ErrScoreMismatch = xerrors.New("score vectors differ")
)

// Approx returns nil if every element of got is within tolerance of the
// corresponding element in expected. Otherwise, it returns an error that
// wraps ErrScoreMismatch and lists the first few mismatching vertices.
func Approx(expected, got []float64, tolerance float64) error {
	if len(expected) != len(got) {
		return xerrors.Errorf("expected %d scores; got %d: %w", len(expected), len(got), ErrLengthMismatch)
	}

	var (
		err        error
		mismatches int
	)
	for v := range expected {
		if scalar.EqualWithinAbs(expected[v], got[v], tolerance) {
			continue
		}
		mismatches++
		if mismatches <= maxReportedMismatches {
			err = multierror.Append(err, xerrors.Errorf("vertex %d: expected %g; got %g", v, expected[v], got[v]))
		}
	}

	if mismatches == 0 {
		return nil
	}

	maxDiff := floats.Distance(expected, got, math.Inf(1))
	return xerrors.Errorf("%d of %d scores differ by more than %g (max abs diff %g): %v: %w",
		mismatches, len(expected), tolerance, maxDiff, err, ErrScoreMismatch)
}
