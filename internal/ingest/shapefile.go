package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core/model"
)

// dbfNameLimit is the longest field name a DBF header can hold.
const dbfNameLimit = 10

// ReadShapefile reads polygon shapes and their DBF attributes. Geometries
// are converted to WKT. When the id column is absent the shape index is
// used as id.
func ReadShapefile(path string, cols config.Columns) (*Batch, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile '%s': %w", path, err)
	}
	defer r.Close()

	fields := make(map[string]int)
	for i, f := range r.Fields() {
		fields[f.String()] = i
	}
	attr := func(row int, name string) string {
		i, ok := fields[name]
		if !ok && len(name) > dbfNameLimit {
			i, ok = fields[name[:dbfNameLimit]]
		}
		if !ok {
			return ""
		}
		return strings.TrimSpace(r.ReadAttribute(row, i))
	}
	_, hasID := fields[cols.ID]

	b := &Batch{}
	for r.Next() {
		n, shape := r.Shape()

		geometry, err := shapeWKT(shape)
		if err != nil {
			b.Invalid = append(b.Invalid, RowError{Row: n + 1, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)})
			continue
		}

		id := attr(n, cols.ID)
		if !hasID {
			id = strconv.Itoa(n)
		}
		b.Parcels = append(b.Parcels, model.Parcel{
			ID:       id,
			Owner:    attr(n, cols.Owner),
			Geometry: geometry,
			Attributes: model.Attributes{
				ParID:       attr(n, cols.ParID),
				ParNum:      attr(n, cols.ParNum),
				ShapeLength: attr(n, cols.ShapeLength),
				ShapeArea:   attr(n, cols.ShapeArea),
				Freguesia:   attr(n, cols.Freguesia),
				Municipio:   attr(n, cols.Municipio),
				Ilha:        attr(n, cols.Ilha),
			},
		})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shapefile '%s': %w", path, err)
	}
	return b, nil
}

// shapeWKT converts polygon shapes. Null shapes become an empty string so
// the parcel is kept without geometry; other shape types are rejected.
func shapeWKT(s shp.Shape) (string, error) {
	switch p := s.(type) {
	case *shp.Null:
		return "", nil
	case *shp.Polygon:
		return ringsWKT(p.Parts, p.Points)
	case *shp.PolygonZ:
		return ringsWKT(p.Parts, p.Points)
	case *shp.PolygonM:
		return ringsWKT(p.Parts, p.Points)
	default:
		return "", fmt.Errorf("unsupported shape %T", s)
	}
}

// ringsWKT groups shapefile rings into polygons. Outer rings are clockwise
// and each counter-clockwise ring is a hole of the outer ring before it.
func ringsWKT(parts []int32, points []shp.Point) (string, error) {
	var polys [][][]geom.Coord
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || end-start < 4 {
			return "", fmt.Errorf("ring %d has %d points", i, end-start)
		}

		ring := make([]geom.Coord, 0, end-start)
		flat := make([]float64, 0, 2*(end-start))
		for _, pt := range points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
			flat = append(flat, pt.X, pt.Y)
		}

		if len(polys) == 0 || !xy.IsRingCounterClockwise(geom.XY, flat) {
			polys = append(polys, [][]geom.Coord{ring})
			continue
		}
		last := len(polys) - 1
		polys[last] = append(polys[last], ring)
	}

	switch len(polys) {
	case 0:
		return "", nil
	case 1:
		p, err := geom.NewPolygon(geom.XY).SetCoords(polys[0])
		if err != nil {
			return "", err
		}
		return wkt.Marshal(p)
	default:
		mp, err := geom.NewMultiPolygon(geom.XY).SetCoords(polys)
		if err != nil {
			return "", err
		}
		return wkt.Marshal(mp)
	}
}
