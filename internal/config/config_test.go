package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return p
}

func TestLoad_AppliesDefaults(t *testing.T) {
	p := writeTemp(t, `{"storage":{"kind":"postgres","dsn":"postgres://x"}}`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Kind != "postgres" {
		t.Errorf("kind = %q, want postgres", cfg.Storage.Kind)
	}
	if cfg.Import.Delimiter != "," {
		t.Errorf("delimiter = %q, want ,", cfg.Import.Delimiter)
	}
	if cfg.Import.ProgressEvery != 1000 {
		t.Errorf("progress_every = %d, want 1000", cfg.Import.ProgressEvery)
	}
	if cfg.Import.RecentErrorCap != 50 {
		t.Errorf("recent_error_cap = %d, want 50", cfg.Import.RecentErrorCap)
	}
	if cfg.Import.PreviewRows != 10 {
		t.Errorf("preview_rows = %d, want 10", cfg.Import.PreviewRows)
	}
	if cfg.Storage.Options == nil {
		t.Errorf("options should never be nil after Load")
	}
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	p := writeTemp(t, `{
		"storage": {"kind": "sqlite", "dsn": "file::memory:", "options": {"busy_timeout_ms": 250}},
		"import":  {"delimiter": ";", "progress_every": 10, "recent_error_cap": 5, "preview_rows": 3}
	}`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Import.DelimiterRune(); got != ';' {
		t.Errorf("DelimiterRune = %q, want ';'", got)
	}
	if cfg.Import.ProgressEvery != 10 || cfg.Import.RecentErrorCap != 5 || cfg.Import.PreviewRows != 3 {
		t.Errorf("import tuning not honored: %+v", cfg.Import)
	}
	if got := cfg.Storage.Options.Int("busy_timeout_ms", 0); got != 250 {
		t.Errorf("options int = %d, want 250", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEDIAETL_STORAGE", "mysql")
	t.Setenv("MEDIAETL_DSN", "user:pw@tcp(localhost:3306)/media")
	t.Setenv("MEDIAETL_PROGRESS_EVERY", "250")

	cfg := FromEnv()
	if cfg.Storage.Kind != "mysql" {
		t.Errorf("kind = %q, want mysql", cfg.Storage.Kind)
	}
	if cfg.Storage.DSN == "" {
		t.Errorf("dsn override not applied")
	}
	if cfg.Import.ProgressEvery != 250 {
		t.Errorf("progress_every = %d, want 250", cfg.Import.ProgressEvery)
	}
}

func TestOptions_TypedAccess(t *testing.T) {
	o := Options{"s": "x", "b": true, "n": float64(7)}

	if got := o.String("s", "d"); got != "x" {
		t.Errorf("String = %q", got)
	}
	if got := o.String("missing", "d"); got != "d" {
		t.Errorf("String default = %q", got)
	}
	if !o.Bool("b", false) {
		t.Errorf("Bool lookup failed")
	}
	if got := o.Int("n", 0); got != 7 {
		t.Errorf("Int = %d, want 7", got)
	}
	if got := o.Int("s", 9); got != 9 {
		t.Errorf("Int wrong-type default = %d, want 9", got)
	}
}
