// Package storage is the file store for downloaded game data. All paths are
// confined to the games root; anything escaping it is rejected rather than
// written.
package storage

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes files under a single games root directory.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve games root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create games root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute games root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) contained(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return fmt.Errorf("path %q escapes games root %q", path, s.root)
	}
	return nil
}

// Exists reports whether a file or directory exists.
func (s *Store) Exists(path string) bool {
	if err := s.contained(path); err != nil {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Read returns the contents of a file.
func (s *Store) Read(path string) ([]byte, error) {
	if err := s.contained(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Write stores data at path, creating parent directories as needed.
func (s *Store) Write(path string, data []byte) error {
	if err := s.contained(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Dirs returns the names of the subdirectories of path, in directory order.
func (s *Store) Dirs(path string) ([]string, error) {
	if err := s.contained(path); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Delete removes a file or directory tree.
func (s *Store) Delete(path string) error {
	if err := s.contained(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

// ExtractZip unpacks an archive into destDir and returns the extracted file
// paths in archive order. Entries that would escape destDir are skipped.
func (s *Store) ExtractZip(zipPath, destDir string) ([]string, error) {
	if err := s.contained(destDir); err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(destDir, filepath.Base(f.Name))
		if err := s.contained(target); err != nil {
			slog.Warn("skipping archive entry", "entry", f.Name, "error", err)
			continue
		}

		if err := extractOne(f, target); err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}

	return extracted, nil
}

func extractOne(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}
