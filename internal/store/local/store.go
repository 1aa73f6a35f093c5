// Package local implements a local filesystem artifact cache.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config captures the parameters for the local filesystem cache.
type Config struct {
	// BaseDir is the directory where artifacts are stored.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// Store caches artifacts as flat files under a base directory. Artifact
// existence is the coordination mechanism between pipeline stages, so a
// cached artifact is treated as immutable once written.
type Store struct {
	baseDir string
}

// New creates a filesystem-backed cache rooted at cfg.BaseDir, creating
// the directory if it does not exist.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("base directory path is not a directory")
		}
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	default:
		return nil, fmt.Errorf("failed to stat base directory: %w", err)
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// Exists reports whether an artifact with the given name is cached.
func (s *Store) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Write persists an artifact verbatim, creating parent directories on
// demand.
func (s *Store) Write(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// Read returns the cached artifact's contents.
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Remove deletes a cached artifact.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}

// List returns the names of all cached artifacts in lexical order. The
// listing is re-derived on each call, so it is safe to re-enumerate
// after a partial run.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Path returns the absolute-ish path an artifact name maps to. Intended
// for log messages.
func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// resolve maps an artifact name to a path under baseDir, rejecting
// names that would escape it.
func (s *Store) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("artifact name is required")
	}
	fullPath := filepath.Join(s.baseDir, name)

	cleanBaseDir := filepath.Clean(s.baseDir)
	cleanFullPath := filepath.Clean(fullPath)
	if !strings.HasPrefix(cleanFullPath, cleanBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return fullPath, nil
}
