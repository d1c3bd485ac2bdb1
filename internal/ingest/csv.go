package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agenthands/parcelgraph/internal/config"
)

const utf8BOM = "\ufeff"

func ReadCSVFile(path string, sep rune, cols config.Columns) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file '%s': %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, sep, cols)
}

// ReadCSV reads a delimited export with a header row. The id, owner and
// geometry columns must be present; the others may be missing.
func ReadCSV(r io.Reader, sep rune, cols config.Columns) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	idx := newColumnIndex(header)
	if err := idx.require(cols.ID, cols.Owner, cols.Geometry); err != nil {
		return nil, err
	}

	b := &Batch{}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				b.Invalid = append(b.Invalid, RowError{Row: row, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)})
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(rec) < len(header) {
			b.Invalid = append(b.Invalid, RowError{
				Row: row,
				Err: fmt.Errorf("%w: %d fields, header has %d", ErrInvalidRecord, len(rec), len(header)),
			})
			continue
		}
		b.Parcels = append(b.Parcels, idx.parcel(rec, cols))
	}
	return b, nil
}
