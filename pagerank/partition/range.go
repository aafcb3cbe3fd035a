package partition

import (
	"golang.org/x/xerrors"
)

// Range represents a contiguous vertex ID region which is split into a number
// of partitions.
type Range struct {
	start       int
	rangeSplits []int
}

// NewChunkedRange creates a new range [0, size) that is split into
// partitions holding at most chunkSize IDs each.
func NewChunkedRange(size, chunkSize int) (*Range, error) {
	if chunkSize <= 0 {
		return nil, xerrors.Errorf("chunk size must be at least equal to 1")
	}
	return NewRange(0, size, (size+chunkSize-1)/chunkSize)
}

// NewRange creates a new range [start, end) and splits it into the
// provided number of partitions. Partition sizes differ by at most one.
func NewRange(start, end, numPartitions int) (*Range, error) {
	if start >= end {
		return nil, xerrors.Errorf("range start must be less than the range end")
	} else if numPartitions <= 0 {
		return nil, xerrors.Errorf("number of partitions must be at least equal to 1")
	} else if numPartitions > end-start {
		return nil, xerrors.Errorf("number of partitions cannot exceed the range size")
	}

	var (
		size   = end - start
		ranges = make([]int, numPartitions)
	)
	for partition := 0; partition < numPartitions; partition++ {
		ranges[partition] = start + size*(partition+1)/numPartitions
	}

	return &Range{start: start, rangeSplits: ranges}, nil
}

// NumPartitions returns the number of partitions in the range.
func (r *Range) NumPartitions() int {
	return len(r.rangeSplits)
}

// PartitionExtents returns the [start, end) range for the requested partition.
func (r *Range) PartitionExtents(partition int) (int, int, error) {
	if partition < 0 || partition >= len(r.rangeSplits) {
		return 0, 0, xerrors.Errorf("invalid partition index")
	}

	if partition == 0 {
		return r.start, r.rangeSplits[0], nil
	}
	return r.rangeSplits[partition-1], r.rangeSplits[partition], nil
}
