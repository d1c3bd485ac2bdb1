package driver

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// Opener acquires a store handle for a single run.
type Opener func(ctx context.Context) (GraphDriver, error)

// WithStore opens a handle, passes it to fn and closes it on every exit
// path. A close error is returned only when fn succeeded.
func WithStore(ctx context.Context, open Opener, fn func(GraphDriver) error) (err error) {
	if open == nil {
		return errors.New("driver: nil opener")
	}
	d, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(d)
}
