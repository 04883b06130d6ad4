// Package config holds the reportcard settings: page geometry, layout
// thresholds, fonts, table definitions and user-visible labels.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all reportcard configuration.
type Config struct {
	Page      PageConfig      `yaml:"page"`
	Layout    LayoutConfig    `yaml:"layout"`
	Signature SignatureConfig `yaml:"signature"`
	Fonts     FontsConfig     `yaml:"fonts"`

	// Direction is "rtl" or "ltr".
	Direction string `yaml:"direction"`

	// Tables are drawn in this order; sections without an entry use Default.
	Tables       []TableConfig `yaml:"tables"`
	DefaultTable TableConfig   `yaml:"default_table"`

	Labels LabelsConfig `yaml:"labels"`
	Output OutputConfig `yaml:"output"`
}

// PageConfig is the paper size and content margins, in mm.
type PageConfig struct {
	Width   float64       `yaml:"width"`
	Height  float64       `yaml:"height"`
	Margins MarginsConfig `yaml:"margins"`
}

type MarginsConfig struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// LayoutConfig tunes the grid engine. All distances are in mm.
type LayoutConfig struct {
	HeaderHeight float64 `yaml:"header_height"`
	// OverflowY is the y past which a column is truncated with a placeholder.
	OverflowY float64 `yaml:"overflow_y"`
	// ContentBottom is the page-break threshold for headers; zero derives it
	// from the page height and bottom margin.
	ContentBottom float64 `yaml:"content_bottom"`
	BatchGap      float64 `yaml:"batch_gap"`
	HeaderKeep    float64 `yaml:"header_keep"`
	SymbolSize    float64 `yaml:"symbol_size"`
	Padding       float64 `yaml:"padding"`
}

type SignatureConfig struct {
	Top             float64 `yaml:"top"`
	TooLate         float64 `yaml:"too_late"`
	LabelHeight     float64 `yaml:"label_height"`
	UnderlineOffset float64 `yaml:"underline_offset"`
}

// FontsConfig names the TrueType files; empty paths use the bundled Go fonts.
// Sizes are in points, line heights in mm.
type FontsConfig struct {
	Regular          string  `yaml:"regular"`
	Bold             string  `yaml:"bold"`
	ItemSize         float64 `yaml:"item_size"`
	ItemLineHeight   float64 `yaml:"item_line_height"`
	HeaderSize       float64 `yaml:"header_size"`
	HeaderLineHeight float64 `yaml:"header_line_height"`
	BodySize         float64 `yaml:"body_size"`
	BodyLineHeight   float64 `yaml:"body_line_height"`
}

// TableConfig describes how one evaluation section becomes a table.
type TableConfig struct {
	Key          string  `yaml:"key"`
	Title        string  `yaml:"title"`
	Columns      int     `yaml:"columns"`
	TextFraction float64 `yaml:"text_fraction"`
	Pad          bool    `yaml:"pad"`
}

// LabelsConfig holds every user-visible string. Page takes {n}; Summary takes
// {overall} and {weaknesses}.
type LabelsConfig struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Page        string `yaml:"page"`
	Name        string `yaml:"name"`
	Level       string `yaml:"level"`
	DateOfBirth string `yaml:"date_of_birth"`
	Gender      string `yaml:"gender"`
	Summary     string `yaml:"summary"`
	Acquired    string `yaml:"acquired"`
	InProgress  string `yaml:"in_progress"`
	NotAcquired string `yaml:"not_acquired"`
	Analysis    string `yaml:"analysis"`
	ActionPlan  string `yaml:"action_plan"`
	Guardian    string `yaml:"guardian"`
	Principal   string `yaml:"principal"`
	Educator    string `yaml:"educator"`
	Continues   string `yaml:"continues"`
}

type OutputConfig struct {
	Compress      bool   `yaml:"compress"`
	// Subset embeds only the glyphs a report draws.
	Subset        bool   `yaml:"subset"`
	Deterministic bool   `yaml:"deterministic"`
	Lang          string `yaml:"lang"`
}

// DefaultConfig returns an A4 right-to-left Arabic report setup.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Width:  210,
			Height: 297,
			Margins: MarginsConfig{
				Top:    30,
				Right:  10,
				Bottom: 15,
				Left:   10,
			},
		},
		Layout: LayoutConfig{
			HeaderHeight: 9,
			OverflowY:    270,
			BatchGap:     5,
			SymbolSize:   3.5,
			Padding:      1,
		},
		Signature: SignatureConfig{
			Top:             250,
			TooLate:         255,
			LabelHeight:     6,
			UnderlineOffset: 18,
		},
		Fonts: FontsConfig{
			ItemSize:         8,
			ItemLineHeight:   4,
			HeaderSize:       9,
			HeaderLineHeight: 4.5,
			BodySize:         9,
			BodyLineHeight:   5,
		},
		Direction: "rtl",
		Tables: []TableConfig{
			{Key: "academic", Title: "المواد الدراسية", Columns: 4, TextFraction: 0.84},
			{Key: "behavioral", Title: "المهارات السلوكية والوظائف الذهنية", Columns: 3, TextFraction: 0.86},
		},
		DefaultTable: TableConfig{Columns: 4, TextFraction: 0.84},
		Labels: LabelsConfig{
			Title:       "تقرير التقييم الشامل",
			Subtitle:    "نظام التقييم التربوي",
			Page:        "صفحة {n}",
			Name:        "اسم التلميذ:",
			Level:       "الفوج:",
			DateOfBirth: "تاريخ الميلاد:",
			Gender:      "الجنس:",
			Summary:     "النسبة العامة: {overall}% | نقاط الضعف: {weaknesses}",
			Acquired:    "مكتسب",
			InProgress:  "في طريق الاكتساب",
			NotAcquired: "غير مكتسب",
			Analysis:    "التحليل النوعي وخطة العمل",
			ActionPlan:  "خطة العمل المقترحة",
			Guardian:    "توقيع الولي",
			Principal:   "توقيع المدير",
			Educator:    "توقيع المربي",
			Continues:   "... يتبع",
		},
		Output: OutputConfig{
			Compress: true,
			Subset:   true,
			Lang:     "ar",
		},
	}
}

// Load reads a YAML config over the defaults. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv("REPORTCARD_FONT_REGULAR"); path != "" {
		c.Fonts.Regular = path
	}
	if path := os.Getenv("REPORTCARD_FONT_BOLD"); path != "" {
		c.Fonts.Bold = path
	}
	if dir := os.Getenv("REPORTCARD_DIRECTION"); dir != "" {
		c.Direction = strings.ToLower(dir)
	}
	if v := os.Getenv("REPORTCARD_COMPRESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REPORTCARD_COMPRESS: %w", err)
		}
		c.Output.Compress = b
	}
	return nil
}

// RTL reports whether the report reads right to left.
func (c *Config) RTL() bool { return c.Direction != "ltr" }

// ContentBottom is the configured header page-break threshold, or the page
// height less the bottom margin.
func (c *Config) ContentBottom() float64 {
	if c.Layout.ContentBottom > 0 {
		return c.Layout.ContentBottom
	}
	return c.Page.Height - c.Page.Margins.Bottom
}

// Table returns the table settings for a section key.
func (c *Config) Table(key string) TableConfig {
	for _, t := range c.Tables {
		if t.Key == key {
			return t
		}
	}
	t := c.DefaultTable
	t.Key = key
	if t.Title == "" {
		t.Title = key
	}
	return t
}

func (c *Config) Validate() error {
	p := c.Page
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid page size %gx%g", p.Width, p.Height)
	}
	m := p.Margins
	if m.Left+m.Right >= p.Width || m.Top+m.Bottom >= p.Height {
		return fmt.Errorf("margins leave no content area")
	}
	if c.Direction != "rtl" && c.Direction != "ltr" {
		return fmt.Errorf("invalid direction: %s (valid: rtl, ltr)", c.Direction)
	}
	l := c.Layout
	if l.HeaderHeight <= 0 || l.SymbolSize <= 0 || l.Padding < 0 || l.BatchGap < 0 || l.HeaderKeep < 0 {
		return fmt.Errorf("layout sizes must be positive")
	}
	if l.OverflowY <= m.Top || l.OverflowY > p.Height {
		return fmt.Errorf("overflow_y %g must lie inside the page body", l.OverflowY)
	}
	if cb := c.ContentBottom(); cb <= m.Top || cb > p.Height {
		return fmt.Errorf("content_bottom %g must lie inside the page", cb)
	}
	if s := c.Signature; s.Top > s.TooLate || s.TooLate > p.Height {
		return fmt.Errorf("signature top %g must not exceed too_late %g or the page", s.Top, s.TooLate)
	}
	f := c.Fonts
	if f.ItemSize <= 0 || f.HeaderSize <= 0 || f.BodySize <= 0 ||
		f.ItemLineHeight <= 0 || f.HeaderLineHeight <= 0 || f.BodyLineHeight <= 0 {
		return fmt.Errorf("font sizes and line heights must be positive")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, t := range append(slices.Clip(c.Tables), c.DefaultTable) {
		if t.Key != "" {
			if seen[t.Key] {
				return fmt.Errorf("duplicate table key: %s", t.Key)
			}
			seen[t.Key] = true
		}
		if t.Columns < 1 {
			return fmt.Errorf("table %q: columns must be at least 1", t.Key)
		}
		if t.TextFraction <= 0 || t.TextFraction >= 1 {
			return fmt.Errorf("table %q: text_fraction must be in (0,1)", t.Key)
		}
	}
	return nil
}
