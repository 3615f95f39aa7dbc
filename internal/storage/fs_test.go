package storage

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"id":"a"}`)
	if err := s.Write("a/document.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/document.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("a/assets/img-1", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/assets/img-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("content = %v", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a/assets/old", []byte("bye"))
	if err := s.Delete("a/assets/old"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("a/assets/old"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestList(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a/document.json", []byte("{}"))
	_ = s.Write("b/document.yaml", []byte("id: b"))
	_ = s.Write("b/assets/document.json", []byte("asset named like a manifest"))
	_ = s.Write("readme.txt", []byte("not a manifest"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if items[0].ID != "a" || items[0].Path != "a/document.json" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != "b" || items[1].Path != "b/document.yaml" {
		t.Errorf("items[1] = %+v", items[1])
	}
	if len(items[0].Checksum) != 64 {
		t.Errorf("checksum = %q", items[0].Checksum)
	}
}

func TestFiles(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a/assets/one", []byte("1"))
	_ = s.Write("a/assets/two", []byte("2"))
	_ = s.Write("a/assets/nested/three", []byte("3"))

	names, err := s.Files("a/assets")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "one" || names[1] != "two" {
		t.Errorf("names = %v", names)
	}

	missing, err := s.Files("nope/assets")
	if err != nil || len(missing) != 0 {
		t.Errorf("Files(missing) = %v, %v", missing, err)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a/document.json", []byte("{}"))
	_ = s.Write("a/assets/one", []byte("1"))
	if err := s.RemoveAll("a"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.root, "a")); !os.IsNotExist(err) {
		t.Errorf("directory still present: %v", err)
	}
	if err := s.RemoveAll(""); err == nil {
		t.Error("expected error removing the store root")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.RemoveAll(p); err == nil {
			t.Errorf("expected error for remove of %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a/document.json", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("a/document.json", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("a/document.json")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, "a", tempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "postframe-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
