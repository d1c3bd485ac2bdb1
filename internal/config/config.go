package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/parcelgraph/internal/logging"
)

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	// Flavor selects schema statements: "neo4j" or "memgraph".
	Flavor string `toml:"flavor"`
	// CredentialsFile is a dotenv file with NEO4J_URI, NEO4J_USER,
	// NEO4J_PASSWORD and NEO4J_DATABASE. Values found there win over the
	// TOML file.
	CredentialsFile string `toml:"credentials_file"`
}

type SyncConfig struct {
	BatchSize         int  `toml:"batch_size"`
	IndexNodeCapacity int  `toml:"index_node_capacity"`
	Analyze           bool `toml:"analyze"`
	BuildSchema       bool `toml:"build_schema"`
	// Contiguity is "rook" (shared boundary line or overlap) or "queen"
	// (any contact, single corners included, as the cadastral source loader
	// did).
	Contiguity string `toml:"contiguity"`
}

// Columns maps record fields to source column names.
type Columns struct {
	ID          string `toml:"id"`
	ParID       string `toml:"par_id"`
	ParNum      string `toml:"par_num"`
	ShapeLength string `toml:"shape_length"`
	ShapeArea   string `toml:"shape_area"`
	Geometry    string `toml:"geometry"`
	Owner       string `toml:"owner"`
	Freguesia   string `toml:"freguesia"`
	Municipio   string `toml:"municipio"`
	Ilha        string `toml:"ilha"`
}

type InputConfig struct {
	Path string `toml:"path"`
	// Format is "csv" or "shapefile".
	Format    string  `toml:"format"`
	Separator string  `toml:"separator"`
	Columns   Columns `toml:"columns"`
}

type ServerConfig struct {
	Port string `toml:"port"`
	// MaxUploadMB bounds multipart uploads on POST /sync.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

type Config struct {
	Graph  GraphConfig    `toml:"graph"`
	Sync   SyncConfig     `toml:"sync"`
	Input  InputConfig    `toml:"input"`
	Log    logging.Config `toml:"log"`
	Server ServerConfig   `toml:"server"`
}

// DefaultColumns are the headers of the cadastral CSV export.
func DefaultColumns() Columns {
	return Columns{
		ID:          "OBJECTID",
		ParID:       "PAR_ID",
		ParNum:      "PAR_NUM",
		ShapeLength: "Shape_Length",
		ShapeArea:   "Shape_Area",
		Geometry:    "geometry",
		Owner:       "OWNER",
		Freguesia:   "Freguesia",
		Municipio:   "Municipio",
		Ilha:        "Ilha",
	}
}

func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:             "bolt://localhost:7687",
			User:            "neo4j",
			Database:        "neo4j",
			Flavor:          "neo4j",
			CredentialsFile: "credentials.env",
		},
		Sync: SyncConfig{
			BatchSize:         500,
			IndexNodeCapacity: 10,
			Analyze:           true,
			BuildSchema:       false,
			Contiguity:        "rook",
		},
		Input: InputConfig{
			Format:    "csv",
			Separator: ";",
			Columns:   DefaultColumns(),
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port:        "8080",
			MaxUploadMB: 64,
		},
	}
}

// Load reads a TOML file on top of Default. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path is
// empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyCredentials overlays the credentials env file and the process
// environment onto the graph section. A missing env file is not an error.
func (c *Config) ApplyCredentials() error {
	if c.Graph.CredentialsFile != "" {
		if err := godotenv.Load(c.Graph.CredentialsFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load credentials file '%s': %w", c.Graph.CredentialsFile, err)
		}
	}

	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		c.Graph.Database = v
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Graph.Flavor {
	case "neo4j", "memgraph":
	default:
		return fmt.Errorf("config: graph.flavor must be neo4j or memgraph, got %q", c.Graph.Flavor)
	}
	switch c.Input.Format {
	case "csv", "shapefile":
	default:
		return fmt.Errorf("config: input.format must be csv or shapefile, got %q", c.Input.Format)
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("config: sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	}
	switch c.Sync.Contiguity {
	case "rook", "queen":
	default:
		return fmt.Errorf("config: sync.contiguity must be rook or queen, got %q", c.Sync.Contiguity)
	}
	if c.Input.Format == "csv" && len([]rune(c.Input.Separator)) != 1 {
		return fmt.Errorf("config: input.separator must be a single character, got %q", c.Input.Separator)
	}
	return nil
}
