// Package geometry turns raw parcel geometry encodings into GEOS geometries
// and answers the exact adjacency predicate.
package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geos"
)

var (
	ErrMalformed       = errors.New("malformed geometry")
	ErrUnsupportedKind = errors.New("unsupported geometry kind")
	ErrEmptyGeometry   = errors.New("empty geometry")
)

// Result is either a parsed geometry or the reason there is none.
type Result struct {
	Geom *geos.Geom
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil && r.Geom != nil
}

// Resolver parses geometries inside one GEOS context. A Resolver and every
// geometry it returns belong to a single run and must not be shared between
// goroutines.
type Resolver struct {
	ctx *geos.Context
}

func NewResolver() *Resolver {
	return &Resolver{ctx: geos.NewContext()}
}

// Context is the GEOS context owning the resolved geometries.
func (r *Resolver) Context() *geos.Context {
	return r.ctx
}

// Resolve parses WKT, or a GeoJSON geometry object when raw starts with '{'.
// Only polygonal geometries are accepted.
func (r *Resolver) Resolve(raw string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: fmt.Errorf("%w: %v", ErrMalformed, p)}
		}
	}()

	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{Err: ErrEmptyGeometry}
	}

	var (
		g   *geos.Geom
		err error
	)
	if strings.HasPrefix(text, "{") {
		g, err = r.ctx.NewGeomFromGeoJSON(text)
	} else {
		g, err = r.ctx.NewGeomFromWKT(text)
	}
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	switch g.TypeID() {
	case geos.TypeIDPolygon, geos.TypeIDMultiPolygon:
	default:
		return Result{Err: fmt.Errorf("%w: %s", ErrUnsupportedKind, g.Type())}
	}
	if g.IsEmpty() {
		return Result{Err: ErrEmptyGeometry}
	}
	return Result{Geom: g}
}

// Contiguity selects which contacts count as adjacency. The cadastral Java
// loader this data comes from used plain "touches OR intersects", which is
// Queen; Rook is the default here.
type Contiguity string

const (
	// Queen accepts any contact: touches OR intersects, corners included.
	Queen Contiguity = "queen"
	// Rook accepts touches OR intersects but drops contacts made of
	// isolated points only, so parcels meeting at a single corner are not
	// adjacent.
	Rook Contiguity = "rook"
)

func ParseContiguity(s string) (Contiguity, error) {
	switch Contiguity(strings.ToLower(s)) {
	case Queen:
		return Queen, nil
	case Rook, "":
		return Rook, nil
	default:
		return "", fmt.Errorf("unknown contiguity %q", s)
	}
}

// Adjacent reports whether a and b are adjacent under mode. GEOS topology
// exceptions on invalid input are returned as errors.
func Adjacent(a, b *geos.Geom, mode Contiguity) (adjacent bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("adjacency predicate failed: %v", p)
		}
	}()

	if !(a.Touches(b) || a.Intersects(b)) {
		return false, nil
	}
	if mode == Queen {
		return true, nil
	}

	// DE-9IM: [0] interior/interior, [4] boundary/boundary.
	m := a.Relate(b)
	if len(m) != 9 {
		return false, fmt.Errorf("unexpected DE-9IM matrix %q", m)
	}
	return m[0] != 'F' || m[4] == '1', nil
}
