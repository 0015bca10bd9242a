package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// LoadCSV reads a numeric CSV file into a dense (rows, cols) matrix of
// float32. If header is true the first line is skipped. Ragged rows and
// non-numeric fields are errors.
func LoadCSV(path string, header bool) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return ReadCSV(f, header)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, header bool) (*tensor.Dense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // all records must match the first

	var backing []float32
	var rows, cols int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read CSV")
		}
		if header {
			header = false
			continue
		}
		if cols == 0 {
			cols = len(record)
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", rows+1)
			}
			backing = append(backing, float32(v))
		}
		rows++
	}
	if rows == 0 {
		return nil, errors.New("no data rows")
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing)), nil
}
