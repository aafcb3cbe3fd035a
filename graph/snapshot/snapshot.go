// Package snapshot implements a compact binary serialization format for CSR
// graphs so that large edge lists only need to be parsed once.
//
// A snapshot is a snappy-framed stream with the following little-endian
// payload:
//
//	magic   [6]byte  "PRSNAP"
//	version uint8
//	N       uint32   vertex count
//	E       uint32   edge count
//	starts  [N+1]uint32
//	edges   [E]uint32
//	labels  uint8 flag; if set, N uvarint-length-prefixed strings
package snapshot

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/golang/snappy"
	"github.com/linksrus/parallelrank/graph"
	"github.com/linksrus/parallelrank/graph/store/csr"
	"golang.org/x/xerrors"
)

const (
	version uint8 = 1

	// readBlockSize is the number of array entries decoded per read.
	readBlockSize = 64 * 1024
)

var (
	magic = [6]byte{'P', 'R', 'S', 'N', 'A', 'P'}

	// ErrInvalidSnapshot is returned when a snapshot stream is corrupt or
	// was produced by an incompatible version.
	ErrInvalidSnapshot = xerrors.New("invalid graph snapshot")
)

// WriteFile stores a snapshot of g and its vertex labels to path.
func WriteFile(path string, g *csr.Graph, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("snapshot: %w", err)
	}

	if err = Write(f, g, labels); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write serializes g and its (optional) vertex labels to w.
func Write(w io.Writer, g *csr.Graph, labels []string) error {
	if len(labels) != 0 && len(labels) != g.VertexCount() {
		return xerrors.Errorf("snapshot: expected %d labels; got %d", g.VertexCount(), len(labels))
	}
	if g.EdgeCount() > math.MaxUint32 {
		return xerrors.Errorf("snapshot: edge count %d exceeds format limits", g.EdgeCount())
	}

	sw := snappy.NewBufferedWriter(w)
	starts, edges := g.Outgoing()
	header := struct {
		Magic    [6]byte
		Version  uint8
		Vertices uint32
		Edges    uint32
	}{magic, version, uint32(g.VertexCount()), uint32(len(edges))}

	var err error
	for _, data := range []interface{}{header, starts, edges, len(labels) != 0} {
		if err = binary.Write(sw, binary.LittleEndian, data); err != nil {
			return xerrors.Errorf("snapshot: %w", err)
		}
	}

	var lenBuf [binary.MaxVarintLen64]byte
	for _, label := range labels {
		n := binary.PutUvarint(lenBuf[:], uint64(len(label)))
		if _, err = sw.Write(lenBuf[:n]); err != nil {
			return xerrors.Errorf("snapshot: %w", err)
		}
		if _, err = io.WriteString(sw, label); err != nil {
			return xerrors.Errorf("snapshot: %w", err)
		}
	}

	if err = sw.Close(); err != nil {
		return xerrors.Errorf("snapshot: %w", err)
	}
	return nil
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (*csr.Graph, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read deserializes a graph and its vertex labels from r. The returned label
// slice is nil if the snapshot does not contain labels.
func Read(r io.Reader) (*csr.Graph, []string, error) {
	br := bufio.NewReader(snappy.NewReader(r))

	var header struct {
		Magic    [6]byte
		Version  uint8
		Vertices uint32
		Edges    uint32
	}
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, nil, wrapReadErr("header", err)
	}
	if header.Magic != magic {
		return nil, nil, xerrors.Errorf("snapshot: bad magic: %w", ErrInvalidSnapshot)
	} else if header.Version != version {
		return nil, nil, xerrors.Errorf("snapshot: unsupported version %d: %w", header.Version, ErrInvalidSnapshot)
	}

	starts, err := readUint32s(br, int(header.Vertices)+1)
	if err != nil {
		return nil, nil, wrapReadErr("offsets", err)
	}
	rawEdges, err := readUint32s(br, int(header.Edges))
	if err != nil {
		return nil, nil, wrapReadErr("edges", err)
	}
	edges := make([]graph.VertexID, len(rawEdges))
	for i, dst := range rawEdges {
		edges[i] = graph.VertexID(dst)
	}

	g, err := csr.FromOutgoing(int(header.Vertices), starts, edges)
	if err != nil {
		return nil, nil, xerrors.Errorf("snapshot: %v: %w", err, ErrInvalidSnapshot)
	}

	var hasLabels bool
	if err = binary.Read(br, binary.LittleEndian, &hasLabels); err != nil {
		return nil, nil, wrapReadErr("label flag", err)
	}
	if !hasLabels {
		return g, nil, nil
	}

	labels := make([]string, header.Vertices)
	for i := range labels {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, wrapReadErr("label length", err)
		}
		if n > math.MaxUint16 {
			return nil, nil, xerrors.Errorf("snapshot: label %d too long: %w", i, ErrInvalidSnapshot)
		}
		buf := make([]byte, n)
		if _, err = io.ReadFull(br, buf); err != nil {
			return nil, nil, wrapReadErr("label", err)
		}
		labels[i] = string(buf)
	}

	return g, labels, nil
}

// readUint32s reads n little-endian uint32 values from r in fixed-size
// blocks, so memory grows with the data actually present in r and not with n.
func readUint32s(r io.Reader, n int) ([]uint32, error) {
	var (
		out   = make([]uint32, 0, min(n, readBlockSize))
		block = make([]uint32, min(n, readBlockSize))
	)
	for len(out) < n {
		chunk := block[:min(n-len(out), readBlockSize)]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func wrapReadErr(section string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return xerrors.Errorf("snapshot: truncated %s: %w", section, ErrInvalidSnapshot)
	}
	return xerrors.Errorf("snapshot: reading %s: %w", section, err)
}
