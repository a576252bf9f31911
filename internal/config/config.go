// Package config defines the canonical, JSON-serializable configuration model
// for the importer. It is intentionally small and explicit so that a config
// can be loaded from disk and passed through the program without extra glue.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive whenever possible.
//  2. Clarity: Go field names mirror the JSON structure of config files.
//  3. Minimalism: decoding is performed by the standard library, with a light
//     Options helper for typed access to backend-specific knobs.
//
// Example:
//
//	{
//	  "storage": { "kind": "sqlite", "dsn": "file:media.db?_fk=1" },
//	  "import":  { "delimiter": ",", "progress_every": 1000 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Storage selects and configures the destination store.
	Storage Storage `json:"storage"`

	// Import tunes the import run itself (delimiter, progress cadence,
	// error sampling, dry-run preview size).
	Import Import `json:"import"`
}

// Storage selects the store backend used to persist imported records.
type Storage struct {
	// Kind selects the backend implementation: "sqlite", "postgres", "mysql".
	Kind string `json:"kind"`

	// DSN is the backend connection string, passed through unchanged.
	DSN string `json:"dsn"`

	// Bootstrap creates the destination tables on open.
	Bootstrap bool `json:"bootstrap"`

	// Options is a free-form map interpreted by the backend implementation.
	Options Options `json:"options"`
}

// Import holds run-level tuning for the import pipeline.
type Import struct {
	// Delimiter is the field separator; the first rune is used. Default ",".
	Delimiter string `json:"delimiter"`

	// ProgressEvery throttles progress reporting to once per this many
	// processed records. Default 1000.
	ProgressEvery int `json:"progress_every"`

	// RecentErrorCap bounds the in-memory sample of recent failures.
	// Default 50. The failed counter remains the authoritative total.
	RecentErrorCap int `json:"recent_error_cap"`

	// PreviewRows is the number of records shown by dry-run. Default 10.
	PreviewRows int `json:"preview_rows"`
}

// Default returns a Config with all tunables at their documented defaults and
// a local sqlite store, suitable for tests and first runs.
func Default() Config {
	return Config{
		Storage: Storage{Kind: "sqlite", DSN: "file:mediaetl.db", Bootstrap: true, Options: Options{}},
		Import: Import{
			Delimiter:      ",",
			ProgressEvery:  1000,
			RecentErrorCap: 50,
			PreviewRows:    10,
		},
	}
}

// Load decodes a Config from the JSON file at path, applies defaults for
// absent fields, and applies environment overrides (12-factor style).
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the default Config with environment overrides applied.
// Used when no config file is given on the command line.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Storage.Kind == "" {
		c.Storage.Kind = d.Storage.Kind
	}
	if c.Storage.Options == nil {
		c.Storage.Options = Options{}
	}
	if c.Import.Delimiter == "" {
		c.Import.Delimiter = d.Import.Delimiter
	}
	c.Import.ProgressEvery = pickInt(c.Import.ProgressEvery, d.Import.ProgressEvery)
	c.Import.RecentErrorCap = pickInt(c.Import.RecentErrorCap, d.Import.RecentErrorCap)
	c.Import.PreviewRows = pickInt(c.Import.PreviewRows, d.Import.PreviewRows)
}

// applyEnv overlays MEDIAETL_* environment variables over the config.
func (c *Config) applyEnv() {
	if s := os.Getenv("MEDIAETL_STORAGE"); s != "" {
		c.Storage.Kind = s
	}
	if s := os.Getenv("MEDIAETL_DSN"); s != "" {
		c.Storage.DSN = s
	}
	c.Import.ProgressEvery = pickInt(getenvInt("MEDIAETL_PROGRESS_EVERY", 0), c.Import.ProgressEvery)
	c.Import.RecentErrorCap = pickInt(getenvInt("MEDIAETL_ERROR_CAP", 0), c.Import.RecentErrorCap)
	c.Import.PreviewRows = pickInt(getenvInt("MEDIAETL_PREVIEW_ROWS", 0), c.Import.PreviewRows)
}

// DelimiterRune returns the first rune of the configured delimiter, or ','.
func (i Import) DelimiterRune() rune {
	for _, r := range i.Delimiter {
		return r
	}
	return ','
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns the provided default when a key is absent
// or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map so call sites need no nil checks.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
