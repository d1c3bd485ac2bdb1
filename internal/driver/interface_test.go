package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/parcelgraph/internal/config"
)

type closeTracker struct {
	closed   int
	closeErr error
}

func (c *closeTracker) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return neo4j.EagerResult{}, nil
}

func (c *closeTracker) BuildIndices(ctx context.Context) error { return nil }

func (c *closeTracker) Close(ctx context.Context) error {
	c.closed++
	return c.closeErr
}

func opener(d GraphDriver, err error) Opener {
	return func(ctx context.Context) (GraphDriver, error) { return d, err }
}

func TestWithStore_ClosesOnSuccess(t *testing.T) {
	d := &closeTracker{}
	err := WithStore(context.Background(), opener(d, nil), func(g GraphDriver) error {
		assert.Same(t, d, g)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.closed)
}

func TestWithStore_ClosesOnFailure(t *testing.T) {
	d := &closeTracker{closeErr: errors.New("close failed")}
	boom := errors.New("boom")

	err := WithStore(context.Background(), opener(d, nil), func(GraphDriver) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, d.closed)
}

func TestWithStore_CloseErrorSurfaces(t *testing.T) {
	d := &closeTracker{closeErr: errors.New("close failed")}
	err := WithStore(context.Background(), opener(d, nil), func(GraphDriver) error { return nil })
	assert.EqualError(t, err, "close failed")
}

func TestWithStore_OpenError(t *testing.T) {
	called := false
	err := WithStore(context.Background(), opener(nil, errors.New("refused")), func(GraphDriver) error {
		called = true
		return nil
	})
	assert.EqualError(t, err, "refused")
	assert.False(t, called)

	assert.Error(t, WithStore(context.Background(), nil, func(GraphDriver) error { return nil }))
}

func TestSchemaQueries(t *testing.T) {
	assert.Len(t, SchemaQueries(FlavorNeo4j), 2)
	assert.Contains(t, SchemaQueries(FlavorMemgraph)[0], ":Parcel(id)")
}

func TestFromConfig(t *testing.T) {
	g := config.Default().Graph
	g.Flavor = "memgraph"
	c := FromConfig(g)
	assert.Equal(t, FlavorMemgraph, c.Flavor)
	assert.Equal(t, "bolt://localhost:7687", c.URI)
}
