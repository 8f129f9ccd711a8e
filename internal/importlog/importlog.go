// Package importlog keeps an append-only CSV history of imports run from
// the command line.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one import in the log.
type Entry struct {
	Timestamp time.Time
	ImportID  string
	File      string
	Mode      string
	Month     string
	Inserted  int
	Skipped   int
	Errors    int
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,import_id,file,mode,month,inserted,skipped,errors"

// Path is the log location relative to the project directory.
const Path = "logs/import-log.csv"

const (
	numFields   = 8
	colTime     = 0
	colImportID = 1
	colFile     = 2
	colMode     = 3
	colMonth    = 4
	colInserted = 5
	colSkipped  = 6
	colErrors   = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colImportID] = e.ImportID
	row[colFile] = e.File
	row[colMode] = e.Mode
	row[colMonth] = e.Month
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colErrors] = strconv.Itoa(e.Errors)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colInserted, colSkipped, colErrors} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp: ts,
		ImportID:  record[colImportID],
		File:      record[colFile],
		Mode:      record[colMode],
		Month:     record[colMonth],
		Inserted:  counts[0],
		Skipped:   counts[1],
		Errors:    counts[2],
	}, nil
}

// Append writes entries to <dir>/logs/import-log.csv, creating the file and
// header if needed.
func Append(dir string, entries ...Entry) error {
	path := filepath.Join(dir, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/logs/import-log.csv, or nil when the
// log does not exist yet.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, Path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
