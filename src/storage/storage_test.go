package storage

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return store
}

func TestWriteReadExists(t *testing.T) {
	store := testStore(t)
	path := filepath.Join(store.Root(), "Game", "Game.json")

	if store.Exists(path) {
		t.Error("Exists() = true before write")
	}
	if err := store.Write(path, []byte(`{"name":"Game"}`)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !store.Exists(path) {
		t.Error("Exists() = false after write")
	}

	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if string(data) != `{"name":"Game"}` {
		t.Errorf("Read() = %s", data)
	}
}

func TestContainment(t *testing.T) {
	store := testStore(t)
	outside := filepath.Join(os.TempDir(), "escape.json")

	if err := store.Write(outside, []byte("x")); err == nil {
		t.Error("Write() outside root expected error")
		os.Remove(outside)
	}
	if _, err := store.Read("/etc/hostname"); err == nil {
		t.Error("Read() outside root expected error")
	}
	if store.Exists("/etc") {
		t.Error("Exists() outside root = true")
	}
	if err := store.Delete(filepath.Join(store.Root(), "..", "sibling")); err == nil {
		t.Error("Delete() escaping via .. expected error")
	}
}

func TestDirs(t *testing.T) {
	store := testStore(t)
	if err := store.Write(filepath.Join(store.Root(), "Alpha", "Alpha.json"), []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(filepath.Join(store.Root(), "Beta", "Beta.json"), []byte("{}")); err != nil {
		t.Fatal(err)
	}
	// Plain files are not directories.
	if err := store.Write(filepath.Join(store.Root(), "stray.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	dirs, err := store.Dirs(store.Root())
	if err != nil {
		t.Fatalf("Dirs() error: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != "Alpha" || dirs[1] != "Beta" {
		t.Errorf("Dirs() = %v, want [Alpha Beta]", dirs)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	dir := filepath.Join(store.Root(), "Game")
	if err := store.Write(filepath.Join(dir, "Game.json"), []byte("{}")); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(dir); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if store.Exists(dir) {
		t.Error("directory still exists after Delete()")
	}
	// Deleting something already gone is not an error.
	if err := store.Delete(dir); err != nil {
		t.Errorf("Delete() of absent path error: %v", err)
	}
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	store := testStore(t)
	zipPath := filepath.Join(store.Root(), "data.zip")
	if err := store.Write(zipPath, buildZip(t, map[string]string{
		"nested/dir/cards.json": `[{"id":"A1"}]`,
	})); err != nil {
		t.Fatal(err)
	}

	extracted, err := store.ExtractZip(zipPath, store.Root())
	if err != nil {
		t.Fatalf("ExtractZip() error: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("extracted %d entries, want 1", len(extracted))
	}

	// Entries are flattened to their base name.
	want := filepath.Join(store.Root(), "cards.json")
	if extracted[0] != want {
		t.Errorf("extracted path = %s, want %s", extracted[0], want)
	}
	data, err := store.Read(want)
	if err != nil {
		t.Fatalf("Read() of extracted file error: %v", err)
	}
	if string(data) != `[{"id":"A1"}]` {
		t.Errorf("extracted content = %s", data)
	}
}

func TestExtractZip_BadArchive(t *testing.T) {
	store := testStore(t)
	zipPath := filepath.Join(store.Root(), "data.zip")
	if err := store.Write(zipPath, []byte("not an archive")); err != nil {
		t.Fatal(err)
	}

	if _, err := store.ExtractZip(zipPath, store.Root()); err == nil {
		t.Error("ExtractZip() of junk expected error")
	}
}
