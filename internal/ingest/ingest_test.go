package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/logging"
)

const cadastre = "OBJECTID;PAR_ID;PAR_NUM;Shape_Length;Shape_Area;geometry;OWNER;Freguesia;Municipio;Ilha\n" +
	"1;7343148.0;2,99624E+12;57.2469341921808;202.05981432070362;MULTIPOLYGON (((299218.5203999998 3623637.4791, 299218.5203999998 3623637.4791)));93;Arco da Calheta;Calheta;Ilha da Madeira\n" +
	"\n" +
	"2;7344660.0;2,99622E+12;55.63800662596267;151.76387471712783;POLYGON ((0 0, 1 0, 1 1, 0 0));68;Arco da Calheta;Calheta;Ilha da Madeira\n"

func TestReadCSV(t *testing.T) {
	b, err := ReadCSV(strings.NewReader(cadastre), ';', config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, b.Parcels, 2)
	assert.Empty(t, b.Invalid)

	p := b.Parcels[0]
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "93", p.Owner)
	assert.True(t, strings.HasPrefix(p.Geometry, "MULTIPOLYGON"))
	assert.Equal(t, "7343148.0", p.Attributes.ParID)
	assert.Equal(t, "2,99624E+12", p.Attributes.ParNum)
	assert.Equal(t, "202.05981432070362", p.Attributes.ShapeArea)
	assert.Equal(t, "Calheta", p.Attributes.Municipio)
	assert.Equal(t, "Ilha da Madeira", p.Attributes.Ilha)
}

func TestReadCSV_ShortRowIsInvalid(t *testing.T) {
	in := "OBJECTID;geometry;OWNER\n1;POLYGON EMPTY;O1\n2;POLYGON EMPTY\n"
	b, err := ReadCSV(strings.NewReader(in), ';', config.DefaultColumns())
	require.NoError(t, err)

	assert.Len(t, b.Parcels, 1)
	require.Len(t, b.Invalid, 1)
	assert.Equal(t, 2, b.Invalid[0].Row)
	assert.ErrorIs(t, b.Invalid[0], ErrInvalidRecord)
}

func TestReadCSV_BOMAndMissingColumns(t *testing.T) {
	b, err := ReadCSV(strings.NewReader("\ufeffOBJECTID,geometry,OWNER\n1,x,O\n"), ',', config.DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, "1", b.Parcels[0].ID)

	_, err = ReadCSV(strings.NewReader("ID;geometry;OWNER\n"), ';', config.DefaultColumns())
	assert.ErrorContains(t, err, `missing column "OBJECTID"`)

	_, err = ReadCSV(strings.NewReader(""), ';', config.DefaultColumns())
	assert.Error(t, err)
}

func TestLoad_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadastre.csv")
	require.NoError(t, os.WriteFile(path, []byte(cadastre), 0o644))

	core, logs := observer.New(zapcore.InfoLevel)
	b, err := Load(config.InputConfig{
		Path:      path,
		Format:    "csv",
		Separator: ";",
		Columns:   config.DefaultColumns(),
	}, logging.NewLoggerFromCore(core))
	require.NoError(t, err)

	assert.Len(t, b.Parcels, 2)
	assert.Equal(t, 1, logs.FilterMessage("input loaded").Len())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(config.InputConfig{}, nil)
	assert.Error(t, err)

	_, err = Load(config.InputConfig{Path: "x", Format: "xlsx"}, nil)
	assert.ErrorContains(t, err, "unknown format")

	_, err = Load(config.InputConfig{Path: filepath.Join(t.TempDir(), "none.csv"), Format: "csv"}, nil)
	assert.ErrorContains(t, err, "failed to open input file")
}

func polygon(rings ...[]shp.Point) *shp.Polygon {
	p := shp.Polygon(*shp.NewPolyLine(rings))
	return &p
}

func writeShapefile(t *testing.T, withID bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parcels.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	var fields []shp.Field
	if withID {
		fields = append(fields, shp.StringField("OBJECTID", 10))
	}
	fields = append(fields, shp.StringField("OWNER", 10), shp.StringField("Shape_Leng", 20))
	require.NoError(t, w.SetFields(fields))

	// Clockwise outer ring with a counter-clockwise hole.
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1}}
	second := []shp.Point{{X: 10, Y: 10}, {X: 10, Y: 11}, {X: 11, Y: 11}, {X: 11, Y: 10}, {X: 10, Y: 10}}

	shapes := []*shp.Polygon{polygon(outer, hole), polygon(outer, second)}
	for i, s := range shapes {
		row := int(w.Write(s))
		col := 0
		if withID {
			require.NoError(t, w.WriteAttribute(row, col, []string{"A", "B"}[i]))
			col++
		}
		require.NoError(t, w.WriteAttribute(row, col, "O1"))
		require.NoError(t, w.WriteAttribute(row, col+1, "12.5"))
	}
	w.Close()
	return path
}

func TestReadShapefile(t *testing.T) {
	b, err := ReadShapefile(writeShapefile(t, true), config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, b.Parcels, 2)

	a := b.Parcels[0]
	assert.Equal(t, "A", a.ID)
	assert.Equal(t, "O1", a.Owner)
	assert.Equal(t, "12.5", a.Attributes.ShapeLength)
	assert.True(t, strings.HasPrefix(a.Geometry, "POLYGON"), a.Geometry)
	assert.Contains(t, a.Geometry, "), (")

	assert.True(t, strings.HasPrefix(b.Parcels[1].Geometry, "MULTIPOLYGON"), b.Parcels[1].Geometry)
}

func TestReadShapefile_IndexAsID(t *testing.T) {
	b, err := ReadShapefile(writeShapefile(t, false), config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, b.Parcels, 2)
	assert.Equal(t, "0", b.Parcels[0].ID)
	assert.Equal(t, "1", b.Parcels[1].ID)
}

func TestRingsWKT_TooShort(t *testing.T) {
	_, err := ringsWKT([]int32{0}, []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)
}
