package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"REPORTCARD_FONT_REGULAR", "REPORTCARD_FONT_BOLD", "REPORTCARD_DIRECTION", "REPORTCARD_COMPRESS"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.RTL() {
		t.Errorf("expected right-to-left by default")
	}
	if got := cfg.ContentBottom(); got != 282 {
		t.Errorf("expected ContentBottom=282, got %g", got)
	}
	if cfg.Layout.OverflowY != 270 {
		t.Errorf("expected OverflowY=270, got %g", cfg.Layout.OverflowY)
	}
	if len(cfg.Tables) != 2 || cfg.Tables[0].Key != "academic" || cfg.Tables[1].Key != "behavioral" {
		t.Errorf("unexpected default tables: %+v", cfg.Tables)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "reportcard.yaml")

	cfg := DefaultConfig()
	cfg.Direction = "ltr"
	cfg.Tables = append(cfg.Tables, TableConfig{Key: "arts", Title: "Arts", Columns: 2, TextFraction: 0.8, Pad: true})
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RTL() {
		t.Errorf("expected ltr after reload")
	}
	if len(loaded.Tables) != 3 || loaded.Tables[2].Title != "Arts" || !loaded.Tables[2].Pad {
		t.Errorf("tables not preserved in order: %+v", loaded.Tables)
	}
	if loaded.Labels.Acquired != cfg.Labels.Acquired {
		t.Errorf("labels not preserved: %q", loaded.Labels.Acquired)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Page.Width != 210 {
		t.Errorf("expected default width, got %g", cfg.Page.Width)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("layout:\n  overflow_y: 260\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Layout.OverflowY != 260 {
		t.Errorf("expected OverflowY=260, got %g", cfg.Layout.OverflowY)
	}
	if cfg.Layout.HeaderHeight != 9 {
		t.Errorf("unset fields should keep defaults, got HeaderHeight=%g", cfg.Layout.HeaderHeight)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("page: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REPORTCARD_FONT_REGULAR", "/fonts/Amiri-Regular.ttf")
	t.Setenv("REPORTCARD_FONT_BOLD", "/fonts/Amiri-Bold.ttf")
	t.Setenv("REPORTCARD_DIRECTION", "LTR")
	t.Setenv("REPORTCARD_COMPRESS", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Fonts.Regular != "/fonts/Amiri-Regular.ttf" || cfg.Fonts.Bold != "/fonts/Amiri-Bold.ttf" {
		t.Errorf("font paths not overridden: %+v", cfg.Fonts)
	}
	if cfg.Direction != "ltr" {
		t.Errorf("expected direction ltr, got %s", cfg.Direction)
	}
	if cfg.Output.Compress {
		t.Errorf("expected compression disabled")
	}

	t.Setenv("REPORTCARD_COMPRESS", "sometimes")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatalf("expected error for invalid REPORTCARD_COMPRESS")
	}
}

func TestTableLookup(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Table("behavioral"); got.Columns != 3 {
		t.Errorf("expected 3 behavioral columns, got %d", got.Columns)
	}
	got := cfg.Table("extra")
	if got.Key != "extra" || got.Title != "extra" || got.Columns != cfg.DefaultTable.Columns {
		t.Errorf("unexpected fallback table %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"direction", func(c *Config) { c.Direction = "up" }, "invalid direction"},
		{"margins", func(c *Config) { c.Page.Margins.Left = 200 }, "margins"},
		{"overflow", func(c *Config) { c.Layout.OverflowY = 10 }, "overflow_y"},
		{"signature", func(c *Config) { c.Signature.Top = 260 }, "signature"},
		{"columns", func(c *Config) { c.Tables[0].Columns = 0 }, "columns"},
		{"fraction", func(c *Config) { c.Tables[1].TextFraction = 1 }, "text_fraction"},
		{"duplicate", func(c *Config) { c.Tables[1].Key = "academic" }, "duplicate"},
		{"fonts", func(c *Config) { c.Fonts.ItemLineHeight = 0 }, "font"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}
