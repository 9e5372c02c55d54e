package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

const testEnvPrefix = "RTCFGTEST_"

func writeSettings(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	c := New()
	defer c.Close()

	if c.Path() != "" {
		t.Errorf("Path() = %q, want empty", c.Path())
	}
	if w, err := c.GetFloat("layout.width"); err != nil || w != 80 {
		t.Errorf("layout.width = %v, %v; want 80", w, err)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfig_Load(t *testing.T) {
	path := writeSettings(t, "settings.toml", `
[layout]
width = 60

[logging]
level = "debug"
`)
	t.Setenv(testEnvPrefix+"LOG_FORMAT", "json")
	t.Setenv(testEnvPrefix+"LOG_LEVEL", "warn")

	c := New(WithFile(path), WithEnvPrefix(testEnvPrefix))
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"layout.width", int64(60)},
		{"layout.outlineWidth", 0.0},
		{"logging.level", "warn"},
		{"logging.format", "json"},
		{"logging.file", ""},
	}
	for _, tt := range tests {
		if got, ok := c.Get(tt.path); !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	path := writeSettings(t, "settings.yaml", "layout:\n  width: 40.5\nstyle:\n  bold: true\n")

	c := New(WithFile(path), WithEnvPrefix(""))
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w, _ := c.GetFloat("layout.width"); w != 40.5 {
		t.Errorf("layout.width = %v, want 40.5", w)
	}
	if b, _ := c.GetBool("style.bold"); !b {
		t.Error("style.bold = false, want true")
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	c := New(WithFile(filepath.Join(t.TempDir(), "absent.toml")), WithEnvPrefix(""))
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w, _ := c.GetFloat("layout.width"); w != 80 {
		t.Errorf("layout.width = %v, want default 80", w)
	}
}

func TestConfig_LoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"negative width", "[layout]\nwidth = -1\n", ErrValidationFailed},
		{"bad color", "[style]\ntextColor = \"#12\"\n", ErrValidationFailed},
		{"bad level", "[logging]\nlevel = \"loud\"\n", ErrValidationFailed},
		{"wide delimiter", "[[layout.columns]]\ndelimiter = \"ab\"\n", ErrValidationFailed},
		{"wrong type", "[layout]\nwidth = \"wide\"\n", ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, "settings.toml", tt.content)
			c := New(WithFile(path), WithEnvPrefix(""))
			if err := c.Set("layout.outlineWidth", 2.0); err != nil {
				t.Fatal(err)
			}

			err := c.Load()
			if !errors.Is(err, tt.target) {
				t.Fatalf("Load() error = %v, want %v", err, tt.target)
			}
			if w, _ := c.GetFloat("layout.width"); w != 80 {
				t.Errorf("rejected load changed layout.width to %v", w)
			}
			if ow, _ := c.GetFloat("layout.outlineWidth"); ow != 2 {
				t.Errorf("rejected load dropped override: %v", ow)
			}
		})
	}
}

func TestConfig_LoadUnknownFormat(t *testing.T) {
	c := New(WithFile("settings.json"), WithEnvPrefix(""))
	if err := c.Load(); err == nil {
		t.Error("Load() of a .json file should fail")
	}
}

func TestConfig_Getters(t *testing.T) {
	c := New(WithEnvPrefix(""))
	_ = c.Set("test.str", "hello")
	_ = c.Set("test.int", int64(7))
	_ = c.Set("test.float", 1.5)
	_ = c.Set("test.bool", true)

	if s, err := c.GetString("test.str"); err != nil || s != "hello" {
		t.Errorf("GetString = %q, %v", s, err)
	}
	if i, err := c.GetInt("test.int"); err != nil || i != 7 {
		t.Errorf("GetInt = %d, %v", i, err)
	}
	if i, err := c.GetInt("test.float"); err != nil || i != 1 {
		t.Errorf("GetInt(float) = %d, %v", i, err)
	}
	if f, err := c.GetFloat("test.int"); err != nil || f != 7 {
		t.Errorf("GetFloat(int) = %v, %v", f, err)
	}
	if b, err := c.GetBool("test.bool"); err != nil || !b {
		t.Errorf("GetBool = %v, %v", b, err)
	}

	if _, err := c.GetString("test.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("missing setting error = %v", err)
	}
	_, err := c.GetBool("test.str")
	var terr *TypeError
	if !errors.As(err, &terr) || !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("GetBool(string) error = %v, want TypeError", err)
	}
	if terr.Expected != "bool" || terr.Actual != "string" {
		t.Errorf("TypeError = %+v", terr)
	}
	if _, err := c.GetInt("test.str"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(string) error = %v", err)
	}
	if _, err := c.GetFloat("test.bool"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetFloat(bool) error = %v", err)
	}
}

func TestConfig_SetSurvivesReload(t *testing.T) {
	path := writeSettings(t, "settings.toml", "[layout]\nwidth = 50\n")
	c := New(WithFile(path), WithEnvPrefix(""))

	if err := c.Set("layout.width", 33.0); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if w, _ := c.GetFloat("layout.width"); w != 33 {
		t.Errorf("layout.width = %v, want override 33", w)
	}

	if err := c.Set("", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidPath", err)
	}
	if err := c.Set("layout.width.deeper", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set through a leaf error = %v, want ErrInvalidPath", err)
	}
}

func TestConfig_Merged(t *testing.T) {
	c := New()
	m := c.Merged()
	m["layout"].(map[string]any)["width"] = 1.0

	if w, _ := c.GetFloat("layout.width"); w != 80 {
		t.Errorf("mutating Merged() changed config: width = %v", w)
	}
}

func TestConfig_Watch(t *testing.T) {
	path := writeSettings(t, "settings.toml", "[layout]\nwidth = 50\n")
	c := New(WithFile(path), WithEnvPrefix(""))
	defer c.Close()
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	var reloads, rejects atomic.Int32
	if err := c.Watch(func(_ *Config, err error) {
		if err != nil {
			rejects.Add(1)
			return
		}
		reloads.Add(1)
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("[layout]\nwidth = 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if reloads.Load() == 0 {
		t.Fatal("did not receive reload")
	}
	if w, _ := c.GetFloat("layout.width"); w != 64 {
		t.Errorf("layout.width = %v, want 64 after reload", w)
	}

	if err := os.WriteFile(path, []byte("[layout]\nwidth = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(2 * time.Second)
	for rejects.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if rejects.Load() == 0 {
		t.Fatal("invalid settings were not rejected")
	}
	if w, _ := c.GetFloat("layout.width"); w != 64 {
		t.Errorf("layout.width = %v, want 64 kept after rejected reload", w)
	}
}

func TestConfig_WatchWithoutFile(t *testing.T) {
	c := New()
	if err := c.Watch(nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("Watch() error = %v, want ErrNoFile", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestGetPath(t *testing.T) {
	m := map[string]any{
		"layout": map[string]any{
			"width":   80.0,
			"columns": []any{},
		},
		"flat": "value",
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"layout.width", 80.0, true},
		{"layout.columns", []any{}, true},
		{"flat", "value", true},
		{"flat.deeper", nil, false},
		{"layout.missing", nil, false},
		{"", nil, false},
		{".layout..width.", 80.0, true},
	}
	for _, tt := range tests {
		got, ok := getPath(m, tt.path)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("getPath(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{"a..b.", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitPath(tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, "nil"},
		{"s", "string"},
		{1, "int"},
		{int64(1), "int"},
		{1.0, "float64"},
		{true, "bool"},
		{[]any{}, "[]any"},
		{map[string]any{}, "map"},
		{struct{}{}, "unknown"},
	}
	for _, tt := range tests {
		if got := typeName(tt.v); got != tt.want {
			t.Errorf("typeName(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
