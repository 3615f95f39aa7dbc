package index

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "postframe-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const manifestA = `{
  "id": "a",
  "title": "Launch post",
  "document": {
    "canvas": {"width": 1080, "height": 1350, "ratio": "4:5"},
    "elements": [
      {"id": "t1", "type": "text", "visible": true, "zIndex": 1, "props": {"text": "uniqueword appears here"}}
    ],
    "layers": []
  },
  "files": [{"name": "img-1", "mimeType": "image/png"}]
}`

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM document_assets`).Scan(&count); err != nil {
		t.Fatalf("document_assets table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{ID: "hello", Path: "hello/document.json", Title: "Hello", Checksum: "abc123", UpdatedAt: time.Now()}
	if err := db.UpsertDocument(row, "hello world", []AssetRow{{Name: "img", MimeType: "image/png"}}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("hello")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{ID: "up", Path: "up/document.json", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", []AssetRow{{Name: "x"}})
	_ = db.UpsertDocument(DocumentRow{ID: "up", Path: "up/document.json", Title: "New", Checksum: "2", UpdatedAt: now}, "new body", []AssetRow{{Name: "y"}})

	cs, _ := db.GetChecksum("up")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	assets, err := db.Assets("up")
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "y" {
		t.Errorf("assets = %+v, want only y", assets)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{ID: "del", Path: "del/document.json", Checksum: "x"}, "body", []AssetRow{{Name: "img"}})

	if err := db.DeleteDocument("del"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("del")
	if cs != "" {
		t.Errorf("deleted document still has checksum %q", cs)
	}
	assets, _ := db.Assets("del")
	if len(assets) != 0 {
		t.Errorf("expected 0 assets after delete, got %d", len(assets))
	}
	if _, err := db.GetDocument("del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetDocument err = %v, want ErrNotFound", err)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListDocuments(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertDocument(DocumentRow{ID: "1", Path: "1/document.json", Title: "beta", UpdatedAt: base}, "", nil)
	_ = db.UpsertDocument(DocumentRow{ID: "2", Path: "2/document.json", Title: "Alpha", UpdatedAt: base.Add(time.Hour)}, "", nil)
	_ = db.UpsertDocument(DocumentRow{ID: "3", Path: "3/document.json", Title: "gamma", UpdatedAt: base.Add(2 * time.Hour)}, "", nil)

	page, total, err := db.ListDocuments(2, 0, "")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	if page[0].ID != "3" || page[1].ID != "2" {
		t.Errorf("updated order = %s,%s", page[0].ID, page[1].ID)
	}

	byTitle, _, _ := db.ListDocuments(10, 0, "title")
	if byTitle[0].Title != "Alpha" || byTitle[2].Title != "gamma" {
		t.Errorf("title order = %+v", byTitle)
	}

	rest, _, _ := db.ListDocuments(2, 2, "")
	if len(rest) != 1 || rest[0].ID != "1" {
		t.Errorf("offset page = %+v", rest)
	}
}

func TestIndexDocument(t *testing.T) {
	db := testDB(t)
	if err := IndexDocument(db, "a", "a/document.json", []byte(manifestA)); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	got, err := db.GetDocument("a")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "Launch post" || got.CanvasHeight != 1350 || got.Ratio != "4:5" || got.ElementCount != 1 {
		t.Errorf("summary = %+v", got)
	}
	assets, _ := db.Assets("a")
	if len(assets) != 1 || assets[0].MimeType != "image/png" {
		t.Errorf("assets = %+v", assets)
	}
	if err := IndexDocument(db, "bad", "bad/document.json", []byte("{")); err == nil {
		t.Error("expected error for malformed manifest")
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = IndexDocument(db, "a", "a/document.json", []byte(manifestA))

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("search results = %+v, want 1 hit for a", results)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("a/document.json", []byte(manifestA))
	_ = store.Write("b/document.yaml", []byte("title: Yaml doc\ndocument:\n  elements: []\n"))
	_ = store.Write("broken/document.json", []byte("{"))
	_ = db.UpsertDocument(DocumentRow{ID: "stale", Path: "stale/document.json", Checksum: "s"}, "", nil)

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if _, ok := all["a"]; !ok {
		t.Error("a not indexed")
	}
	if _, ok := all["b"]; !ok {
		t.Error("yaml manifest b not indexed")
	}
	if _, ok := all["broken"]; ok {
		t.Error("malformed manifest should not be indexed")
	}
	if _, ok := all["stale"]; ok {
		t.Error("stale entry not removed")
	}
	b, _ := db.GetDocument("b")
	if b == nil || b.Title != "Yaml doc" {
		t.Errorf("b = %+v", b)
	}
}
