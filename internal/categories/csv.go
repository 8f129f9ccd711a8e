package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spendwise-dev/spendwise/internal/model"
)

const (
	numFields   = 3
	colName     = 0
	colIsIncome = 1
	colGroup    = 2
)

// ReadSeeds reads a seed.csv file (name,is_income,group).
func ReadSeeds(r io.Reader) ([]Seed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading seeds CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var seeds []Seed
	for i, rec := range records[1:] {
		s, err := UnmarshalSeed(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

// WriteSeeds writes seeds as CSV with a header row.
func WriteSeeds(w io.Writer, seeds []Seed) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"name", "is_income", "group"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, s := range seeds {
		if err := cw.Write(MarshalSeed(s)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalSeed converts a Seed to a CSV row.
func MarshalSeed(s Seed) []string {
	row := make([]string, numFields)
	row[colName] = s.Name
	row[colIsIncome] = strconv.FormatBool(s.IsIncome)
	if !s.IsIncome {
		row[colGroup] = string(s.Group)
	}
	return row
}

// UnmarshalSeed converts a CSV row to a Seed.
func UnmarshalSeed(record []string) (Seed, error) {
	if len(record) != numFields {
		return Seed{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return Seed{}, fmt.Errorf("empty category name")
	}

	isIncome := false
	if v := strings.TrimSpace(record[colIsIncome]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Seed{}, fmt.Errorf("parsing is_income %q: %w", record[colIsIncome], err)
		}
		isIncome = b
	}

	var group model.Group
	if v := strings.TrimSpace(record[colGroup]); v != "" && !isIncome {
		g, ok := model.ParseGroup(v)
		if !ok {
			return Seed{}, fmt.Errorf("invalid group %q", record[colGroup])
		}
		group = g
	}

	return Seed{Name: name, IsIncome: isIncome, Group: group}, nil
}
