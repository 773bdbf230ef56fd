// Package ingest turns CSV exports into header-keyed records for the
// engine. It is a collaborator of the engine, not part of it: the engine
// only ever sees already-parsed records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/record"
)

// Read parses a CSV document into records keyed by the header row.
// Ragged rows are tolerated: short rows leave trailing columns empty,
// long rows drop the extras. Returns the header order, which callers
// pass to the engine for deterministic field resolution.
func Read(r io.Reader) ([]string, []record.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	var recs []record.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return headers, recs, fmt.Errorf("csv: row %d: %w", len(recs)+2, err)
		}
		rec := make(record.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		recs = append(recs, rec)
	}
	return headers, recs, nil
}

// ReadFile reads a CSV file from disk.
func ReadFile(path string) ([]string, []record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
