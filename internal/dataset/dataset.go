// Package dataset loads observed predator-prey population series.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrEmpty         = errors.New("dataset: no observations")
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrParse         = errors.New("dataset: invalid value")
)

const (
	DefaultPreyColumn     = "lapin"
	DefaultPredatorColumn = "renard"
)

type Columns struct {
	Prey     string
	Predator string
}

func DefaultColumns() Columns {
	return Columns{Prey: DefaultPreyColumn, Predator: DefaultPredatorColumn}
}

// Observations are population counts sampled once per time unit. Time holds
// the row index of each sample.
type Observations struct {
	Time     []float64
	Prey     []float64
	Predator []float64
}

func (o *Observations) Len() int { return len(o.Time) }

// New builds observations from two equal-length series.
func New(prey, predator []float64) (*Observations, error) {
	if len(prey) != len(predator) {
		return nil, fmt.Errorf("dataset: %d prey values vs %d predator values", len(prey), len(predator))
	}
	if len(prey) == 0 {
		return nil, ErrEmpty
	}
	obs := &Observations{
		Time:     make([]float64, len(prey)),
		Prey:     append([]float64(nil), prey...),
		Predator: append([]float64(nil), predator...),
	}
	for i := range obs.Time {
		obs.Time[i] = float64(i)
	}
	return obs, nil
}

func Load(path string, cols Columns) (*Observations, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	obs, err := Read(file, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// Read parses CSV with a header row. Columns other than the two selected
// ones are ignored.
func Read(r io.Reader, cols Columns) (*Observations, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	preyIdx, predIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case cols.Prey:
			preyIdx = i
		case cols.Predator:
			predIdx = i
		}
	}
	if preyIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Prey)
	}
	if predIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Predator)
	}

	var prey, predator []float64
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		p, err := parseCell(record, preyIdx, line)
		if err != nil {
			return nil, err
		}
		q, err := parseCell(record, predIdx, line)
		if err != nil {
			return nil, err
		}
		prey = append(prey, p)
		predator = append(predator, q)
	}

	return New(prey, predator)
}

func parseCell(record []string, idx, line int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("%w: line %d has %d fields", ErrParse, line, len(record))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %q", ErrParse, line, record[idx])
	}
	return v, nil
}
