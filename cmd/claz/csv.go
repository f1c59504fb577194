package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/cla"
)

// readCSV parses rows of numbers into a dense matrix. Empty cells are zero.
func readCSV(r io.Reader, header bool) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	var data []float64
	cols, line := -1, 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if header && line == 1 {
			continue
		}
		if cols < 0 {
			cols = len(rec)
		}
		for j, field := range rec {
			field = strings.TrimSpace(field)
			if field == "" {
				data = append(data, 0)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", line, j, err)
			}
			data = append(data, v)
		}
	}
	if cols <= 0 || len(data) == 0 {
		return nil, fmt.Errorf("%w: no data rows", cla.ErrInvalidArgument)
	}
	return mat.NewDense(len(data)/cols, cols, data), nil
}
