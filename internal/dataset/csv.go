// Package dataset reads and writes the delimited dataset file shared by the
// generator and the trainer.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Skufu/genepredict/internal/generator"
	"github.com/Skufu/genepredict/internal/schema"
)

// ErrHeader is returned when a file's header does not match the schema.
var ErrHeader = errors.New("dataset header does not match feature schema")

// Record is one parsed dataset row.
type Record struct {
	Features schema.Vector
	Label    schema.Disease
}

// Write emits the header and one line per row. Integer features and the
// label are written without a fractional part.
func Write(w io.Writer, rows []generator.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Columns()); err != nil {
		return err
	}
	rec := make([]string, schema.NumFeatures+1)
	for _, r := range rows {
		for _, f := range schema.Features() {
			rec[f] = formatValue(f, r.Features[f])
		}
		rec[schema.NumFeatures] = strconv.Itoa(int(r.Label))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, replacing any existing file. Failures are
// reported as *generator.GenerationError.
func WriteFile(path string, rows []generator.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &generator.GenerationError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &generator.GenerationError{Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, rows); err != nil {
		return &generator.GenerationError{Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &generator.GenerationError{Path: path, Err: err}
	}
	return nil
}

// Read parses a dataset. The header must list exactly the schema columns in
// schema order; any drift is rejected rather than silently re-ordered.
func Read(r io.Reader, labels *schema.LabelTable) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var out []Record
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		parsed, err := parseRecord(rec, labels)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, parsed)
	}
}

// ReadFile opens and parses the dataset at path.
func ReadFile(path string, labels *schema.LabelTable) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f), labels)
}

// Matrix splits records into a feature matrix and label slice.
func Matrix(records []Record) ([][]float64, []int) {
	X := make([][]float64, len(records))
	y := make([]int, len(records))
	for i, r := range records {
		X[i] = r.Features.Slice()
		y[i] = int(r.Label)
	}
	return X, y
}

func checkHeader(header []string) error {
	want := schema.Columns()
	if len(header) != len(want) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrHeader, len(header), len(want))
	}
	for i, col := range header {
		if strings.TrimSpace(col) != want[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeader, i, col, want[i])
		}
	}
	return nil
}

func parseRecord(rec []string, labels *schema.LabelTable) (Record, error) {
	var out Record
	if len(rec) != schema.NumFeatures+1 {
		return out, fmt.Errorf("got %d fields, want %d", len(rec), schema.NumFeatures+1)
	}
	for _, f := range schema.Features() {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[f]), 64)
		if err != nil {
			return out, fmt.Errorf("column %s: %w", f.Column(), err)
		}
		out.Features[f] = v
	}
	code, err := strconv.Atoi(strings.TrimSpace(rec[schema.NumFeatures]))
	if err != nil {
		return out, fmt.Errorf("column %s: %w", schema.LabelColumn, err)
	}
	out.Label = schema.Disease(code)
	if !labels.Valid(out.Label) {
		return out, fmt.Errorf("column %s: unknown disease code %d", schema.LabelColumn, code)
	}
	return out, nil
}

func formatValue(f schema.Feature, v float64) string {
	if f.Integer() {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
