package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

func mustGeom(t *testing.T, ctx *geos.Context, wkt string) *geos.Geom {
	t.Helper()
	g, err := ctx.NewGeomFromWKT(wkt)
	require.NoError(t, err)
	return g
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ParcelID
	}
	return out
}

func TestBuildAndQuery(t *testing.T) {
	ctx := geos.NewContext()
	entries := []Entry{
		{ParcelID: "A", Geom: mustGeom(t, ctx, "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))")},
		{ParcelID: "B", Geom: mustGeom(t, ctx, "POLYGON((2 0, 4 0, 4 2, 2 2, 2 0))")},
		{ParcelID: "FAR", Geom: mustGeom(t, ctx, "POLYGON((50 50, 51 50, 51 51, 50 51, 50 50))")},
		{ParcelID: "NOGEOM"},
	}

	idx, err := Build(ctx, 4, entries)
	require.NoError(t, err)
	defer idx.Destroy()

	assert.Equal(t, 3, idx.Len())

	got := idx.Query(entries[0].Geom)
	assert.Equal(t, []string{"A", "B"}, ids(got))

	got = idx.Query(entries[2].Geom)
	assert.Equal(t, []string{"FAR"}, ids(got))
}

func TestQuery_EnvelopeFalsePositive(t *testing.T) {
	ctx := geos.NewContext()
	// L-shape whose envelope covers the small square without touching it.
	l := mustGeom(t, ctx, "POLYGON((0 0, 10 0, 10 1, 1 1, 1 10, 0 10, 0 0))")
	sq := mustGeom(t, ctx, "POLYGON((5 5, 6 5, 6 6, 5 6, 5 5))")

	idx, err := Build(ctx, 0, []Entry{{ParcelID: "L", Geom: l}})
	require.NoError(t, err)
	defer idx.Destroy()

	assert.Equal(t, []string{"L"}, ids(idx.Query(sq)))
}

func TestBuild_Empty(t *testing.T) {
	ctx := geos.NewContext()
	idx, err := Build(ctx, DefaultNodeCapacity, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Query(mustGeom(t, ctx, "POLYGON((0 0, 1 0, 1 1, 0 0))")))
	idx.Destroy()
}
