// Package loader reads configuration sources into nested maps.
//
// Settings files are TOML or YAML, chosen by extension. Environment
// variables with a prefix overlay the file values.
package loader

import (
	"io"
	"io/fs"
	"os"
)

// Source produces one layer of settings. A source that does not exist
// returns nil, nil.
type Source interface {
	Load() (map[string]any, error)
}

var (
	_ Source = (*FileLoader)(nil)
	_ Source = (*EnvLoader)(nil)
)

// ReaderSource parses settings from a stream.
type ReaderSource interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem reads settings files. Tests substitute an in-memory one.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat implements FileSystem.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the operating system file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// LoadAll deep-merges the sources into base in order, later sources
// winning. Nil sources are skipped. base is modified and returned.
func LoadAll(base map[string]any, sources ...Source) (map[string]any, error) {
	if base == nil {
		base = make(map[string]any)
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		layer, err := src.Load()
		if err != nil {
			return nil, err
		}
		DeepMerge(base, layer)
	}
	return base, nil
}
