package dataset

import (
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/collider/record"
)

// Samples holds a paired dataset in memory, one row per sample.
type Samples struct {
	Input []float32 // Rows * InputFloats
	Label []float32 // Rows * LabelFloats
}

// Rows returns the number of samples.
func (s *Samples) Rows() int {
	return len(s.Label) / LabelFloats
}

// LoadSamples reads a primary/secondary file pair. The row count is taken
// from the secondary file and the primary must hold exactly twice as many
// floats.
func LoadSamples(primaryPath, secondaryPath string) (*Samples, error) {
	xb, err := os.ReadFile(primaryPath)
	if err != nil {
		return nil, fmt.Errorf("reading primary file: %w", err)
	}
	yb, err := os.ReadFile(secondaryPath)
	if err != nil {
		return nil, fmt.Errorf("reading secondary file: %w", err)
	}

	rowBytes := LabelFloats * floatSize
	if len(yb)%rowBytes != 0 {
		return nil, fmt.Errorf("secondary file is %d bytes, not a multiple of %d", len(yb), rowBytes)
	}
	rows := len(yb) / rowBytes
	if want := rows * InputFloats * floatSize; len(xb) != want {
		return nil, fmt.Errorf("primary file is %d bytes, want %d for %d rows", len(xb), want, rows)
	}

	input, err := record.DecodeAll(xb)
	if err != nil {
		return nil, fmt.Errorf("decoding primary file: %w", err)
	}
	label, err := record.DecodeAll(yb)
	if err != nil {
		return nil, fmt.Errorf("decoding secondary file: %w", err)
	}
	return &Samples{Input: input, Label: label}, nil
}

// Shuffle permutes the rows of both files with the same permutation.
func (s *Samples) Shuffle(rng *rand.Rand) {
	rng.Shuffle(s.Rows(), func(i, j int) {
		swapRows(s.Input, InputFloats, i, j)
		swapRows(s.Label, LabelFloats, i, j)
	})
}

// ZeroNaNs replaces NaN values with zero and returns how many were replaced.
func (s *Samples) ZeroNaNs() int {
	return zeroNaN(s.Input) + zeroNaN(s.Label)
}

// Write replaces the file pair with the in-memory samples.
func (s *Samples) Write(primaryPath, secondaryPath string) error {
	if err := os.WriteFile(primaryPath, record.Append(nil, s.Input...), 0644); err != nil {
		return fmt.Errorf("writing primary file: %w", err)
	}
	if err := os.WriteFile(secondaryPath, record.Append(nil, s.Label...), 0644); err != nil {
		return fmt.Errorf("writing secondary file: %w", err)
	}
	return nil
}

// ColumnStat summarizes one column of a sample file.
type ColumnStat struct {
	Name string
	Mean float64
	Std  float64
}

var (
	inputColumns = []string{"pos_x", "pos_y", "pos_z", "dir_x", "dir_y", "dir_z"}
	labelColumns = []string{"next_x", "next_y", "next_z"}
)

// ColumnStats returns mean and standard deviation for every input and
// label column.
func (s *Samples) ColumnStats() []ColumnStat {
	out := make([]ColumnStat, 0, len(inputColumns)+len(labelColumns))
	out = appendColumnStats(out, s.Input, inputColumns)
	out = appendColumnStats(out, s.Label, labelColumns)
	return out
}

func appendColumnStats(dst []ColumnStat, data []float32, names []string) []ColumnStat {
	stride := len(names)
	rows := len(data) / stride
	col := make([]float64, rows)
	for c, name := range names {
		for r := 0; r < rows; r++ {
			col[r] = float64(data[r*stride+c])
		}
		cs := ColumnStat{Name: name}
		if rows > 0 {
			cs.Mean, cs.Std = stat.MeanStdDev(col, nil)
		}
		dst = append(dst, cs)
	}
	return dst
}

func swapRows(data []float32, stride, i, j int) {
	a := data[i*stride : (i+1)*stride]
	b := data[j*stride : (j+1)*stride]
	for k := range a {
		a[k], b[k] = b[k], a[k]
	}
}

func zeroNaN(data []float32) int {
	n := 0
	for i, v := range data {
		if v != v {
			data[i] = 0
			n++
		}
	}
	return n
}
