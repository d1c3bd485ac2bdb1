package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/logging"
)

type Flavor string

const (
	FlavorNeo4j    Flavor = "neo4j"
	FlavorMemgraph Flavor = "memgraph"
)

type Config struct {
	URI      string
	User     string
	Password string
	// Database is ignored for Memgraph, which has a single database.
	Database string
	Flavor   Flavor
}

func FromConfig(g config.GraphConfig) Config {
	return Config{
		URI:      g.URI,
		User:     g.User,
		Password: g.Password,
		Database: g.Database,
		Flavor:   Flavor(g.Flavor),
	}
}

// BoltDriver talks to Neo4j or Memgraph over bolt. Every ExecuteQuery call
// is its own managed transaction, retried by the driver on transient errors.
type BoltDriver struct {
	Driver neo4j.DriverWithContext
	cfg    Config
	logger logging.Logger
}

func NewBoltDriver(ctx context.Context, cfg Config, logger logging.Logger) (*BoltDriver, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Flavor == "" {
		cfg.Flavor = FlavorNeo4j
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}

	logger.Debug("connected to graph store",
		logging.String("uri", cfg.URI),
		logging.String("flavor", string(cfg.Flavor)))
	return &BoltDriver{Driver: driver, cfg: cfg, logger: logger}, nil
}

// NewOpener returns an Opener dialing a fresh BoltDriver per run.
func NewOpener(cfg Config, logger logging.Logger) Opener {
	return func(ctx context.Context) (GraphDriver, error) {
		return NewBoltDriver(ctx, cfg, logger)
	}
}

func (d *BoltDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *BoltDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if d.cfg.Flavor == FlavorNeo4j && d.cfg.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.cfg.Database))
	}

	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the id constraints for the configured flavor. Errors
// are logged and skipped since the schema may already exist.
func (d *BoltDriver) BuildIndices(ctx context.Context) error {
	for _, q := range SchemaQueries(d.cfg.Flavor) {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			d.logger.Warn("failed to apply schema statement",
				logging.String("query", q),
				logging.Err(err))
		}
	}
	return nil
}
