// Package settings implements the engine's validated configuration: a
// struct that is immutable once constructed but reloadable, with a
// change-notification channel for callers that want to react to an
// edited settings file.
//
// Loading follows a load/validate/migrate-on-read shape; dual YAML/TOML
// decoding and an fsnotify-backed Watch round it out (gopkg.in/yaml.v3,
// BurntSushi/toml, fsnotify/fsnotify).
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MaxParentKeysPerItem is a fixed engine limit; it is not a tunable field.
const MaxParentKeysPerItem = 5

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Settings is the engine's validated configuration.
type Settings struct {
	DefaultPartition         string  `yaml:"default_partition" toml:"default_partition"`
	StaticIntervalDays       int     `yaml:"static_interval_days" toml:"static_interval_days"`
	ChancesOfAutoCleanup     float64 `yaml:"chances_of_auto_cleanup" toml:"chances_of_auto_cleanup"`
	MinLengthForCompression  int     `yaml:"min_length_for_compression" toml:"min_length_for_compression"`
	MaxPartitionNameLength   int     `yaml:"max_partition_name_length" toml:"max_partition_name_length"`
	MaxKeyNameLength         int     `yaml:"max_key_name_length" toml:"max_key_name_length"`
	ConnectionString         string  `yaml:"connection_string" toml:"connection_string"`
	CacheSchemaName          string  `yaml:"cache_schema_name" toml:"cache_schema_name"`
	CacheEntriesTableName    string  `yaml:"cache_entries_table_name" toml:"cache_entries_table_name"`
}

// Default returns the engine's documented defaults with an empty
// connection string; callers must supply one before Validate will pass.
func Default() Settings {
	return Settings{
		DefaultPartition:        "KVLite.*",
		StaticIntervalDays:      30,
		ChancesOfAutoCleanup:    0.01,
		MinLengthForCompression: 4096,
		MaxPartitionNameLength:  255,
		MaxKeyNameLength:        255,
		CacheSchemaName:         "",
		CacheEntriesTableName:   "kvl_cache_entries",
	}
}

// Validate checks every field against its validation rule.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.DefaultPartition) == "" {
		return fmt.Errorf("settings: default_partition must be non-empty")
	}
	if s.StaticIntervalDays <= 0 {
		return fmt.Errorf("settings: static_interval_days must be > 0, got %d", s.StaticIntervalDays)
	}
	if s.ChancesOfAutoCleanup < 0 || s.ChancesOfAutoCleanup > 1 {
		return fmt.Errorf("settings: chances_of_auto_cleanup must be in [0,1], got %v", s.ChancesOfAutoCleanup)
	}
	if s.MinLengthForCompression <= 0 {
		return fmt.Errorf("settings: min_length_for_compression must be > 0, got %d", s.MinLengthForCompression)
	}
	if s.MaxPartitionNameLength <= 0 {
		return fmt.Errorf("settings: max_partition_name_length must be > 0, got %d", s.MaxPartitionNameLength)
	}
	if s.MaxKeyNameLength <= 0 {
		return fmt.Errorf("settings: max_key_name_length must be > 0, got %d", s.MaxKeyNameLength)
	}
	if strings.TrimSpace(s.ConnectionString) == "" {
		return fmt.Errorf("settings: connection_string must be non-blank")
	}
	if !identRe.MatchString(s.CacheSchemaName) {
		return fmt.Errorf("settings: cache_schema_name %q must match %s", s.CacheSchemaName, identRe.String())
	}
	if s.CacheEntriesTableName == "" || !identRe.MatchString(s.CacheEntriesTableName) {
		return fmt.Errorf("settings: cache_entries_table_name %q must match %s", s.CacheEntriesTableName, identRe.String())
	}
	return nil
}

// Load reads a YAML or TOML settings file, applies it over Default, and
// validates the result. The format is chosen from the file extension
// (.yaml/.yml or .toml); any other extension is an error.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by caller/operator
	if err != nil {
		return Settings{}, fmt.Errorf("settings: reading %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Settings{}, fmt.Errorf("settings: parsing yaml %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Settings{}, fmt.Errorf("settings: parsing toml %s: %w", path, err)
		}
	default:
		return Settings{}, fmt.Errorf("settings: unsupported extension %q (want .yaml, .yml, or .toml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Save writes s to path in the format implied by its extension, the
// round-trip counterpart to Load.
func Save(path string, s Settings) error {
	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	case ".toml":
		var buf strings.Builder
		err = toml.NewEncoder(&buf).Encode(s)
		data = []byte(buf.String())
	default:
		return fmt.Errorf("settings: unsupported extension %q (want .yaml, .yml, or .toml)", ext)
	}
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
