package config

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/richtext/internal/config/loader"
	"github.com/dshills/richtext/internal/config/watcher"
)

// ReloadFunc is called after the settings file changed and was reloaded.
// err is non-nil when the new file was rejected; the previous settings
// stay in effect.
type ReloadFunc func(c *Config, err error)

// Config holds merged settings.
type Config struct {
	mu        sync.RWMutex
	data      map[string]any // defaults < file < env < overrides
	overrides map[string]any
	errs      map[string]error

	path      string
	envPrefix string
	fs        loader.FileSystem
	logger    *slog.Logger

	watchMu sync.Mutex
	watcher *watcher.Watcher
}

// Option configures a Config.
type Option func(*Config)

// WithFile sets the settings file. Its extension selects TOML or YAML.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithEnvPrefix sets the prefix of environment overrides. An empty prefix
// disables them.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithFileSystem sets the file system the settings file is read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithLogger sets the logger for reload events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a configuration holding the built-in defaults. Call Load to
// read the settings file and environment.
func New(opts ...Option) *Config {
	c := &Config{
		data:      defaultConfig(),
		overrides: make(map[string]any),
		errs:      make(map[string]error),
		envPrefix: loader.DefaultEnvPrefix,
		fs:        loader.DefaultFS(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the settings file, or "" if there is none.
func (c *Config) Path() string {
	return c.path
}

// Load reads the settings file and environment and replaces the current
// settings. A missing settings file is not an error. Invalid settings are
// rejected and the current settings are kept.
func (c *Config) Load() error {
	var sources []loader.Source
	if c.path != "" {
		fl, err := loader.NewFileLoaderWithFS(c.fs, c.path)
		if err != nil {
			return err
		}
		sources = append(sources, fl)
	}
	if c.envPrefix != "" {
		sources = append(sources, loader.NewEnvLoader(c.envPrefix))
	}
	merged, err := loader.LoadAll(defaultConfig(), sources...)
	if err != nil {
		return err
	}

	c.mu.RLock()
	loader.DeepMerge(merged, loader.Clone(c.overrides))
	c.mu.RUnlock()

	candidate := &Config{data: merged, errs: make(map[string]error)}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	c.mu.Lock()
	c.data = merged
	c.errs = make(map[string]error)
	c.mu.Unlock()
	return nil
}

// Watch reloads the settings file whenever it changes and reports each
// reload to fn. fn runs on the watcher's goroutine.
func (c *Config) Watch(fn ReloadFunc) error {
	if c.path == "" {
		return ErrNoFile
	}

	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.watcher == nil {
		w, err := watcher.New(watcher.WithLogger(c.logger))
		if err != nil {
			return err
		}
		if err := w.Watch(c.path); err != nil {
			_ = w.Close()
			return err
		}
		c.watcher = w
	}

	c.watcher.OnChange(func(ev watcher.Event) {
		err := c.Load()
		if err != nil {
			c.logger.Warn("settings reload rejected", "path", ev.Path, "op", ev.Op.String(), "error", err)
		} else {
			c.logger.Info("settings reloaded", "path", ev.Path, "op", ev.Op.String())
		}
		if fn != nil {
			fn(c, err)
		}
	})
	return nil
}

// Close stops watching the settings file.
func (c *Config) Close() error {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()

	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// Get returns the value at a dot-separated path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.data, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	return asString(path, v)
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	return asBool(path, v)
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	return asFloat(path, v)
}

// Set overrides the value at path. Overrides outrank every source and
// survive reloads.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := setPath(c.overrides, path, value); err != nil {
		return err
	}
	if err := setPath(c.data, path, value); err != nil {
		return err
	}
	delete(c.errs, path)
	return nil
}

// Merged returns a copy of the merged settings tree.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

// ConfigErrors returns the conversion errors seen by section accessors
// since the last load, keyed by path.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]error, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// recordConfigError keeps the first error seen for each path.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.errs[path]; !ok {
		c.errs[path] = err
	}
}

// firstConfigError returns the recorded error with the smallest path.
func (c *Config) firstConfigError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.errs) == 0 {
		return nil
	}
	paths := make([]string, 0, len(c.errs))
	for p := range c.errs {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return c.errs[paths[0]]
}

func defaultConfig() map[string]any {
	return map[string]any{
		"layout": map[string]any{
			"width":        80.0,
			"outlineWidth": 0.0,
			"columns": []any{
				map[string]any{"wrap": true},
			},
		},
		"style": map[string]any{},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
			"file":   "",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return ErrInvalidPath
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path, dropping empty segments.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

func asString(path string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

func asBool(path string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

func asFloat(path string, v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64, float32:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
