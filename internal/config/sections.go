package config

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/layout"
	"github.com/dshills/richtext/internal/style"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// MarginsConfig holds column margins in layout units.
type MarginsConfig struct {
	Left, Right, Top, Bottom float64
}

// ColumnConfig describes one layout column.
type ColumnConfig struct {
	// Delimiter is the single character that ends the column's segment.
	Delimiter string

	// MinWidth and MaxWidth clamp the column width. Zero MaxWidth is unbounded.
	MinWidth, MaxWidth float64

	Margins MarginsConfig

	// Wrap enables line wrapping inside the column.
	Wrap bool

	// Style is overlaid on the document defaults for empty lines.
	Style StyleConfig
}

// LayoutConfig provides type-safe access to layout settings.
type LayoutConfig struct {
	// Width is the container width in layout units.
	Width float64

	// OutlineWidth is added to the height of lines with outlined text.
	OutlineWidth float64

	Columns []ColumnConfig
}

// StyleConfig is a style as written in settings. Empty fields inherit.
type StyleConfig struct {
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool

	// Colors are "#rgb" or "#rrggbb".
	TextColor       string
	BackgroundColor string
	OutlineColor    string

	Underline style.Toggle
}

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the logging verbosity level ("debug", "info", "warn", "error").
	Level string

	// Format is the log format ("text", "json").
	Format string

	// File is the log file path (empty for stderr).
	File string
}

// Layout returns type-safe access to layout settings.
func (c *Config) Layout() LayoutConfig {
	lc := LayoutConfig{
		Width:        c.getFloatOr("layout.width", 80),
		OutlineWidth: c.getFloatOr("layout.outlineWidth", 0),
	}

	v, ok := c.Get("layout.columns")
	if !ok {
		return lc
	}
	items, ok := v.([]any)
	if !ok {
		c.recordConfigError("layout.columns", &TypeError{Path: "layout.columns", Expected: "[]any", Actual: typeName(v)})
		return lc
	}
	for i, item := range items {
		path := fmt.Sprintf("layout.columns.%d", i)
		m, ok := item.(map[string]any)
		if !ok {
			c.recordConfigError(path, &TypeError{Path: path, Expected: "map", Actual: typeName(item)})
			continue
		}
		lc.Columns = append(lc.Columns, c.columnFrom(path, m))
	}
	return lc
}

// DefaultStyle returns the document default style settings.
func (c *Config) DefaultStyle() StyleConfig {
	v, ok := c.Get("style")
	if !ok {
		return StyleConfig{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		c.recordConfigError("style", &TypeError{Path: "style", Expected: "map", Actual: typeName(v)})
		return StyleConfig{}
	}
	return c.styleFrom("style", m)
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "text"),
		File:   c.getStringOr("logging.file", ""),
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	lc := c.Layout()
	st := c.DefaultStyle()
	lg := c.Logging()

	if err := c.firstConfigError(); err != nil {
		return err
	}
	if _, err := lc.LayoutColumns(); err != nil {
		return err
	}
	if lc.Width <= 0 {
		return &ValidationError{Path: "layout.width", Message: "must be positive", Value: lc.Width}
	}
	if lc.OutlineWidth < 0 {
		return &ValidationError{Path: "layout.outlineWidth", Message: "must not be negative", Value: lc.OutlineWidth}
	}
	if _, err := st.Style(); err != nil {
		return err
	}
	return lg.Validate()
}

// LayoutColumns converts the column settings. No columns yields the single
// wrapping default column.
func (l LayoutConfig) LayoutColumns() ([]layout.Column, error) {
	if len(l.Columns) == 0 {
		return []layout.Column{layout.DefaultColumn}, nil
	}
	cols := make([]layout.Column, 0, len(l.Columns))
	for i, cc := range l.Columns {
		col, err := cc.Column()
		if err != nil {
			return nil, withPathPrefix(err, fmt.Sprintf("layout.columns.%d.", i))
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// WidthUnits returns the container width as a layout value.
func (l LayoutConfig) WidthUnits() fixed.Int26_6 {
	return Units(l.Width)
}

// OutlineUnits returns the outline width as a layout value.
func (l LayoutConfig) OutlineUnits() fixed.Int26_6 {
	return Units(l.OutlineWidth)
}

// Column converts the settings of one column. Error paths are relative
// to the column.
func (cc ColumnConfig) Column() (layout.Column, error) {
	var col layout.Column

	switch utf8.RuneCountInString(cc.Delimiter) {
	case 0:
	case 1:
		col.Delimiter, _ = utf8.DecodeRuneInString(cc.Delimiter)
	default:
		return col, &ValidationError{Path: "delimiter", Message: "must be a single character", Value: cc.Delimiter}
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"minWidth", cc.MinWidth},
		{"maxWidth", cc.MaxWidth},
		{"margins.left", cc.Margins.Left},
		{"margins.right", cc.Margins.Right},
		{"margins.top", cc.Margins.Top},
		{"margins.bottom", cc.Margins.Bottom},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return col, &ValidationError{Path: f.name, Message: "must be a finite non-negative number", Value: f.v}
		}
	}
	if cc.MaxWidth > 0 && cc.MaxWidth < cc.MinWidth {
		return col, &ValidationError{Path: "maxWidth", Message: "must not be less than minWidth", Value: cc.MaxWidth}
	}

	st, err := cc.Style.Style()
	if err != nil {
		return col, withPathPrefix(err, "style.")
	}

	col.MinWidth = Units(cc.MinWidth)
	col.MaxWidth = Units(cc.MaxWidth)
	col.Margins = layout.Margins{
		Left:   Units(cc.Margins.Left),
		Right:  Units(cc.Margins.Right),
		Top:    Units(cc.Margins.Top),
		Bottom: Units(cc.Margins.Bottom),
	}
	col.Wrap = cc.Wrap
	col.Style = st
	return col, nil
}

// Style converts the settings to a style. Error paths are relative to the
// style.
func (s StyleConfig) Style() (style.Style, error) {
	if s.FontSize < 0 || math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) {
		return style.Style{}, &ValidationError{Path: "fontSize", Message: "must be a finite non-negative number", Value: s.FontSize}
	}

	st := style.Style{
		Font: style.FontRef{
			Family: s.FontFamily,
			Size:   s.FontSize,
			Bold:   s.Bold,
			Italic: s.Italic,
		},
		Underline: s.Underline,
	}
	for _, f := range []struct {
		name string
		in   string
		out  *style.Color
	}{
		{"textColor", s.TextColor, &st.Text},
		{"backgroundColor", s.BackgroundColor, &st.Background},
		{"outlineColor", s.OutlineColor, &st.Outline},
	} {
		c, err := style.ParseColor(f.in)
		if err != nil {
			return style.Style{}, &ValidationError{Path: f.name, Message: err.Error(), Value: f.in}
		}
		*f.out = c
	}
	return st, nil
}

// Validate checks the level and format names.
func (l LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: l.Level}
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Message: "must be text or json", Value: l.Format}
	}
	return nil
}

// Units converts a settings number to a layout value, rounding to the
// nearest 1/64.
func Units(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func (c *Config) columnFrom(path string, m map[string]any) ColumnConfig {
	cc := ColumnConfig{
		Delimiter: c.mapString(m, path, "delimiter"),
		MinWidth:  c.mapFloat(m, path, "minWidth"),
		MaxWidth:  c.mapFloat(m, path, "maxWidth"),
		Wrap:      c.mapBool(m, path, "wrap", true),
	}
	if v, ok := m["margins"]; ok {
		if mm, ok := v.(map[string]any); ok {
			mp := path + ".margins"
			cc.Margins = MarginsConfig{
				Left:   c.mapFloat(mm, mp, "left"),
				Right:  c.mapFloat(mm, mp, "right"),
				Top:    c.mapFloat(mm, mp, "top"),
				Bottom: c.mapFloat(mm, mp, "bottom"),
			}
		} else {
			c.recordConfigError(path+".margins", &TypeError{Path: path + ".margins", Expected: "map", Actual: typeName(v)})
		}
	}
	if v, ok := m["style"]; ok {
		if sm, ok := v.(map[string]any); ok {
			cc.Style = c.styleFrom(path+".style", sm)
		} else {
			c.recordConfigError(path+".style", &TypeError{Path: path + ".style", Expected: "map", Actual: typeName(v)})
		}
	}
	return cc
}

func (c *Config) styleFrom(path string, m map[string]any) StyleConfig {
	sc := StyleConfig{
		FontFamily:      c.mapString(m, path, "fontFamily"),
		FontSize:        c.mapFloat(m, path, "fontSize"),
		Bold:            c.mapBool(m, path, "bold", false),
		Italic:          c.mapBool(m, path, "italic", false),
		TextColor:       c.mapString(m, path, "textColor"),
		BackgroundColor: c.mapString(m, path, "backgroundColor"),
		OutlineColor:    c.mapString(m, path, "outlineColor"),
	}
	if _, ok := m["underline"]; ok {
		if c.mapBool(m, path, "underline", false) {
			sc.Underline = style.ToggleOn
		} else {
			sc.Underline = style.ToggleOff
		}
	}
	return sc
}

func (c *Config) mapString(m map[string]any, path, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, err := asString(path+"."+key, v)
	if err != nil {
		c.recordConfigError(path+"."+key, err)
	}
	return s
}

func (c *Config) mapFloat(m map[string]any, path, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	f, err := asFloat(path+"."+key, v)
	if err != nil {
		c.recordConfigError(path+"."+key, err)
	}
	return f
}

func (c *Config) mapBool(m map[string]any, path, key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	b, err := asBool(path+"."+key, v)
	if err != nil {
		c.recordConfigError(path+"."+key, err)
		return def
	}
	return b
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		if err != ErrSettingNotFound {
			c.recordConfigError(path, err)
		}
		return defaultValue
	}
	return v
}
