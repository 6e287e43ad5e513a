package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRealFileSystem_ReadWrite(t *testing.T) {
	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "file.txt")

	if err := fs.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "content" {
		t.Errorf("ReadFile() = %q, want %q", data, "content")
	}
}

func TestRealFileSystem_Exists(t *testing.T) {
	fs := NewRealFileSystem()
	dir := t.TempDir()

	if !fs.Exists(dir) {
		t.Error("Exists() = false for existing directory")
	}
	if fs.Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists() = true for missing path")
	}
}

func TestRealFileSystem_FileHash(t *testing.T) {
	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "file.txt")

	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	hash, err := fs.FileHash(path)
	if err != nil {
		t.Fatalf("FileHash() error = %v", err)
	}
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if hash != want {
		t.Errorf("FileHash() = %q, want %q", hash, want)
	}
}

func TestRealFileSystem_Walk(t *testing.T) {
	fs := NewRealFileSystem()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen []string
	err := fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			seen = append(seen, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(seen) != 1 || seen[0] != "a.txt" {
		t.Errorf("Walk() saw %v, want [a.txt]", seen)
	}
}

func TestRealFileSystem_RemoveAll(t *testing.T) {
	fs := NewRealFileSystem()
	dir := filepath.Join(t.TempDir(), "scratch")
	if err := fs.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := fs.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if fs.Exists(dir) {
		t.Error("directory still exists after RemoveAll")
	}
}
