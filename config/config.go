package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/documentfs/mongofs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultURI points at a local MongoDB instance.
	DefaultURI = "mongodb://localhost:27017"

	// DefaultDatabase is the database holding the record collection.
	DefaultDatabase = "mongofs"

	// DefaultCollection is the record collection name.
	DefaultCollection = "mongofs-drive"

	// DefaultOpTimeout bounds each individual store round-trip. The engine
	// carries no timeout of its own; cancellation lives at the adapter.
	DefaultOpTimeout = 10 * time.Second

	// DefaultAttrTimeout is the kernel attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the kernel directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Verbosity levels accepted on the command line, mapped onto log levels.
const (
	ErrorVerbose = 1 + iota
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Config contains runtime configuration values for the filesystem.
type Config struct {
	MountOptions

	URI        string        // Store connection URI; the scheme selects the driver (Default mongodb://localhost:27017)
	Database   string        // Database name (Default "mongofs")
	Collection string        // Record collection name (Default "mongofs-drive")
	OpTimeout  time.Duration // Per-store-operation timeout (Default 10s)

	LogLvl util.LogLevel // Log level (Default info)

	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions. LogLvl is the CLI verbosity (1 error .. 5 trace), not the
// internal level.
type ConfigOverride struct {
	URI          *string  `yaml:"uri,omitempty" json:"uri,omitempty"`
	Database     *string  `yaml:"database,omitempty" json:"database,omitempty"`
	Collection   *string  `yaml:"collection,omitempty" json:"collection,omitempty"`
	OpTimeoutMS  *int     `yaml:"op_timeout_ms,omitempty" json:"op_timeout_ms,omitempty"`
	LogLvl       *int     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	AttrTimeout  *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`

	FsName     *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name       *string `yaml:"name,omitempty" json:"name,omitempty"`
	AllowOther *bool   `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
}

// NewConfig creates a Config from defaults with any non-nil override fields
// applied on top. A nil override yields pure defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := &Config{
		MountOptions: MountOptions{
			FsName: "mongofs",
			Name:   "mongofs",
		},
		URI:          DefaultURI,
		Database:     DefaultDatabase,
		Collection:   DefaultCollection,
		OpTimeout:    DefaultOpTimeout,
		LogLvl:       util.InfoLevel,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
	}
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
func (c *Config) Merge(override *ConfigOverride) {
	if override.URI != nil {
		c.URI = *override.URI
	}
	if override.Database != nil {
		c.Database = *override.Database
	}
	if override.Collection != nil {
		c.Collection = *override.Collection
	}
	if override.OpTimeoutMS != nil {
		c.OpTimeout = time.Duration(*override.OpTimeoutMS) * time.Millisecond
	}
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLevel(*override.LogLvl)
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.AllowOther != nil {
		c.AllowOther = *override.AllowOther
	}
}

// VerbosityToLevel converts a CLI verbosity between 1 (error) and 5 (trace)
// to the internal log level, clamping out-of-range values.
func VerbosityToLevel(verbose int) util.LogLevel {
	if verbose < ErrorVerbose {
		verbose = ErrorVerbose
	}
	if verbose > TraceVerbose {
		verbose = TraceVerbose
	}
	levels := [...]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return levels[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without
// merging. Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with
// defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
