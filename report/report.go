// Package report writes PageRank scores as tab-separated "<id>\t<score>"
// lines.
package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// OutputPath derives the report path for a graph file by prefixing its base
// name with "output_". A trailing ".bin" snapshot extension is dropped so
// that text and snapshot inputs produce the same report name.
func OutputPath(graphPath string) string {
	dir, base := filepath.Split(graphPath)
	base = strings.TrimSuffix(base, ".bin")
	return filepath.Join(dir, "output_"+base)
}

// LabelFunc returns the label that should be reported for a vertex.
type LabelFunc func(v int) string

// Write emits one line per vertex to w, in vertex ID order.
func Write(w io.Writer, label LabelFunc, scores []float64) error {
	bw := bufio.NewWriter(w)
	for v, score := range scores {
		_, _ = bw.WriteString(label(v))
		_ = bw.WriteByte('\t')
		_, _ = bw.WriteString(strconv.FormatFloat(score, 'g', -1, 64))
		if err := bw.WriteByte('\n'); err != nil {
			return xerrors.Errorf("report: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return xerrors.Errorf("report: %w", err)
	}
	return nil
}

// WriteFile creates (or truncates) the file at path and writes the report to it.
func WriteFile(path string, label LabelFunc, scores []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("report: %w", err)
	}

	if err = Write(f, label, scores); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
