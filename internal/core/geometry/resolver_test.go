package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

func TestResolve_WKTPolygon(t *testing.T) {
	r := NewResolver()
	res := r.Resolve("POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))")
	require.True(t, res.OK())
	assert.NoError(t, res.Err)
}

func TestResolve_MultiPolygon(t *testing.T) {
	r := NewResolver()
	res := r.Resolve("MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))")
	assert.True(t, res.OK())
}

func TestResolve_GeoJSON(t *testing.T) {
	r := NewResolver()
	res := r.Resolve(`{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}`)
	assert.True(t, res.OK())
}

func TestResolve_Failures(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"blank", "   ", ErrEmptyGeometry},
		{"garbage", "INVALID_WKT", ErrMalformed},
		{"truncated", "POLYGON((0 0, 1 0", ErrMalformed},
		{"point", "POINT(0 0)", ErrUnsupportedKind},
		{"line", "LINESTRING(0 0, 1 1)", ErrUnsupportedKind},
		{"empty polygon", "POLYGON EMPTY", ErrEmptyGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.raw)
			assert.False(t, res.OK())
			assert.Nil(t, res.Geom)
			assert.ErrorIs(t, res.Err, tt.want)
		})
	}
}

func TestAdjacent(t *testing.T) {
	r := NewResolver()
	geoms := map[string]*geos.Geom{
		"a":       r.Resolve("POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))").Geom,
		"b":       r.Resolve("POLYGON((2 0, 4 0, 4 2, 2 2, 2 0))").Geom,
		"c":       r.Resolve("POLYGON((0 2, 2 2, 2 4, 0 4, 0 2))").Geom,
		"overlap": r.Resolve("POLYGON((1 1, 3 1, 3 3, 1 3, 1 1))").Geom,
		"far":     r.Resolve("POLYGON((10 10, 11 10, 11 11, 10 11, 10 10))").Geom,
	}

	tests := []struct {
		name  string
		x, y  string
		queen bool
		rook  bool
	}{
		{"shared edge at x=2", "a", "b", true, true},
		{"shared edge at y=2", "a", "c", true, true},
		{"interiors overlap", "a", "overlap", true, true},
		{"single corner (2,2)", "b", "c", true, false},
		{"disjoint", "a", "far", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Adjacent(geoms[tt.x], geoms[tt.y], Queen)
			require.NoError(t, err)
			assert.Equal(t, tt.queen, ok, "queen")

			ok, err = Adjacent(geoms[tt.x], geoms[tt.y], Rook)
			require.NoError(t, err)
			assert.Equal(t, tt.rook, ok, "rook")

			ok, err = Adjacent(geoms[tt.y], geoms[tt.x], Rook)
			require.NoError(t, err)
			assert.Equal(t, tt.rook, ok, "rook reversed")
		})
	}
}

func TestParseContiguity(t *testing.T) {
	c, err := ParseContiguity("QUEEN")
	require.NoError(t, err)
	assert.Equal(t, Queen, c)

	c, err = ParseContiguity("")
	require.NoError(t, err)
	assert.Equal(t, Rook, c)

	_, err = ParseContiguity("bishop")
	assert.Error(t, err)
}
