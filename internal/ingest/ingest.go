// Package ingest reads parcel records from cadastral exports.
package ingest

import (
	"errors"
	"fmt"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core/model"
	"github.com/agenthands/parcelgraph/internal/logging"
)

var ErrInvalidRecord = errors.New("invalid record")

// RowError describes a source row that could not become a record. Row is
// 1-based and counts data rows only.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Batch is everything read from one source.
type Batch struct {
	Parcels []model.Parcel
	Invalid []RowError
}

// Load reads cfg.Path in the configured format. Unreadable rows are logged
// and kept out of the batch; they never stop the load.
func Load(cfg config.InputConfig, logger logging.Logger) (*Batch, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Path == "" {
		return nil, errors.New("ingest: no input path")
	}

	var (
		b   *Batch
		err error
	)
	switch cfg.Format {
	case "csv", "":
		b, err = ReadCSVFile(cfg.Path, separator(cfg.Separator), cfg.Columns)
	case "shapefile":
		b, err = ReadShapefile(cfg.Path, cfg.Columns)
	default:
		return nil, fmt.Errorf("ingest: unknown format %q", cfg.Format)
	}
	if err != nil {
		return nil, err
	}

	for _, re := range b.Invalid {
		logger.Warn("skipping input row", logging.Int("row", re.Row), logging.Err(re.Err))
	}
	logger.Info("input loaded",
		logging.String("path", cfg.Path),
		logging.Int("records", len(b.Parcels)),
		logging.Int("invalid_rows", len(b.Invalid)))
	return b, nil
}

func separator(s string) rune {
	for _, r := range s {
		return r
	}
	return ';'
}

// columnIndex maps configured column names to positions in a header.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (c columnIndex) require(names ...string) error {
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return fmt.Errorf("ingest: missing column %q", n)
		}
	}
	return nil
}

func (c columnIndex) parcel(row []string, cols config.Columns) model.Parcel {
	return model.Parcel{
		ID:       c.get(row, cols.ID),
		Owner:    c.get(row, cols.Owner),
		Geometry: c.get(row, cols.Geometry),
		Attributes: model.Attributes{
			ParID:       c.get(row, cols.ParID),
			ParNum:      c.get(row, cols.ParNum),
			ShapeLength: c.get(row, cols.ShapeLength),
			ShapeArea:   c.get(row, cols.ShapeArea),
			Freguesia:   c.get(row, cols.Freguesia),
			Municipio:   c.get(row, cols.Municipio),
			Ilha:        c.get(row, cols.Ilha),
		},
	}
}
