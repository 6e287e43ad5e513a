package mocks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mvaldez/orinup/internal/ports"
)

// FileSystem is an in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewFileSystem creates an empty in-memory filesystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile seeds a file, creating parent directories.
func (f *FileSystem) AddFile(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	f.addParents(path)
}

func (f *FileSystem) addParents(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		f.dirs[dir] = true
	}
}

// ReadFile returns a seeded file's content.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, ok := f.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteFile stores a file.
func (f *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	f.AddFile(path, data)
	return nil
}

// Exists reports whether a file or directory is present.
func (f *FileSystem) Exists(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.files[path]; ok {
		return true
	}
	return f.dirs[path]
}

// IsDir reports whether the path is a directory.
func (f *FileSystem) IsDir(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirs[path]
}

// Remove deletes a file.
func (f *FileSystem) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}
	delete(f.files, path)
	return nil
}

// RemoveAll deletes a path and everything under it.
func (f *FileSystem) RemoveAll(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(path, "/") + "/"
	for p := range f.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(f.files, p)
		}
	}
	for d := range f.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(f.dirs, d)
		}
	}
	return nil
}

// MkdirAll records a directory.
func (f *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[path] = true
	f.addParents(filepath.Join(path, "x"))
	return nil
}

// Rename moves a file.
func (f *FileSystem) Rename(oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[oldPath]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldPath, Err: os.ErrNotExist}
	}
	delete(f.files, oldPath)
	f.files[newPath] = data
	f.addParents(newPath)
	return nil
}

// FileHash returns the sha256 of a seeded file.
func (f *FileSystem) FileHash(path string) (string, error) {
	data, err := f.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// GetFileInfo returns metadata for a seeded file.
func (f *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if data, ok := f.files[path]; ok {
		return ports.FileInfo{Size: int64(len(data)), Mode: 0o644, ModTime: time.Unix(0, 0)}, nil
	}
	if f.dirs[path] {
		return ports.FileInfo{IsDir: true, Mode: os.ModeDir | 0o755, ModTime: time.Unix(0, 0)}, nil
	}
	return ports.FileInfo{}, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

// Walk visits seeded files under root in sorted order.
func (f *FileSystem) Walk(root string, fn filepath.WalkFunc) error {
	f.mu.RLock()
	paths := make([]string, 0, len(f.files))
	prefix := strings.TrimSuffix(root, "/") + "/"
	for p := range f.files {
		if p == root || strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	f.mu.RUnlock()

	if len(paths) == 0 && !f.IsDir(root) {
		return fmt.Errorf("walk %s: %w", root, os.ErrNotExist)
	}

	sort.Strings(paths)
	for _, p := range paths {
		data, _ := f.ReadFile(p)
		info := memFileInfo{name: filepath.Base(p), size: int64(len(data))}
		if err := fn(p, info, nil); err != nil {
			return err
		}
	}
	return nil
}

type memFileInfo struct {
	name string
	size int64
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() os.FileMode  { return 0o644 }
func (i memFileInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() interface{}   { return nil }

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
