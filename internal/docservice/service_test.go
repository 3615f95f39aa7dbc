package docservice

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/models"
	"github.com/starford/postframe/internal/storage"
	"github.com/starford/postframe/internal/testutil"
)

func newService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	_, store := testutil.TestStore(t)
	return NewService(store, testutil.TestDB(t)), store
}

func samplePayload(t *testing.T) editor.Payload {
	t.Helper()
	s := editor.New()
	if _, err := s.AddElement(models.Element{Type: models.ElementText, Props: models.Props{Text: "Autumn drop"}}); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	png := testutil.PNG(t, 4, 4, color.White)
	if _, err := s.AddImage(models.Element{}, png, "image/png"); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	return s.Export()
}

func TestSaveAndLoad(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := samplePayload(t)

	saved, err := svc.Save(ctx, "", "", p, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.Created || saved.ID == "" || saved.Checksum == "" {
		t.Errorf("saved = %+v", saved)
	}
	if saved.Title != "Autumn drop" {
		t.Errorf("title = %q", saved.Title)
	}

	loaded, err := svc.Load(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Checksum != saved.Checksum {
		t.Errorf("checksum mismatch: %s vs %s", loaded.Checksum, saved.Checksum)
	}
	if len(loaded.Payload.Document.Elements) != 2 {
		t.Errorf("elements = %d", len(loaded.Payload.Document.Elements))
	}
	if len(loaded.Payload.Files) != 1 || len(loaded.Payload.Files[0].Blob) == 0 {
		t.Fatalf("files = %+v", loaded.Payload.Files)
	}

	// The loaded payload is accepted by a fresh session.
	s := editor.New()
	if err := s.Load(loaded.Payload); err != nil {
		t.Fatalf("session Load: %v", err)
	}
	if s.CanUndo() {
		t.Error("loaded session should have empty history")
	}

	sum, err := svc.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sum.ElementCount != 2 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestSaveOptimisticConcurrency(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := samplePayload(t)

	first, err := svc.Save(ctx, "promo", "Promo", p, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := svc.Save(ctx, "promo", "Promo v2", p, first.Checksum)
	if err != nil {
		t.Fatalf("Save with matching If-Match: %v", err)
	}
	if second.Created {
		t.Error("second save should not be a create")
	}

	if _, err := svc.Save(ctx, "promo", "Stale", p, first.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale If-Match err = %v, want ErrConflict", err)
	}
	if _, err := svc.Save(ctx, "missing", "", p, "abc"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("If-Match on missing err = %v, want ErrNotFound", err)
	}
}

func TestSaveRemovesStaleAssets(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p := samplePayload(t)

	if _, err := svc.Save(ctx, "doc", "", p, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p.Files = nil
	if _, err := svc.Save(ctx, "doc", "", p, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	names, err := store.Files(filepath.Join("doc", storage.AssetsDir))
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("stale assets kept: %v", names)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := samplePayload(t)

	for _, id := range []string{"../escape", "a/b", "-lead", string(make([]byte, 70))} {
		if _, err := svc.Save(ctx, id, "", p, ""); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Save(%q) err = %v, want ErrValidation", id, err)
		}
	}

	bad := p
	bad.Document.Layers = nil
	if _, err := svc.Save(ctx, "ok", "", bad, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unmirrored document err = %v, want ErrValidation", err)
	}
}

func TestLoadYAMLTemplate(t *testing.T) {
	svc, store := newService(t)
	yaml := "title: Story\ndocument:\n  canvas: {width: 1080, height: 1920, ratio: \"9:16\"}\n  elements:\n    - {id: h, type: text, visible: true, props: {text: Hi}}\n"
	if err := store.Write("story/document.yaml", []byte(yaml)); err != nil {
		t.Fatal(err)
	}
	loaded, err := svc.Load(context.Background(), "story")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Title != "Story" || loaded.Payload.Document.Canvas.Height != 1920 {
		t.Errorf("loaded = %+v", loaded)
	}
	if err := loaded.Payload.Document.Validate(); err != nil {
		t.Errorf("template not repaired: %v", err)
	}

	// Saving converts the template to JSON.
	if _, err := svc.Save(context.Background(), "story", "Story", loaded.Payload, loaded.Checksum); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Read("story/document.yaml"); err == nil {
		t.Error("yaml manifest should be replaced by json")
	}
}

func TestListSearchDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := samplePayload(t)
	_, _ = svc.Save(ctx, "one", "First", p, "")
	_, _ = svc.Save(ctx, "two", "Second", p, "")

	items, total, err := svc.List(ctx, 10, 0, "title")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || items[0].ID != "one" {
		t.Errorf("list = %+v total=%d", items, total)
	}

	hits, err := svc.Search(ctx, "Autumn", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("hits = %+v", hits)
	}

	if err := svc.Delete(ctx, "one"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Load(ctx, "one"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Load after delete err = %v", err)
	}
	if err := svc.Delete(ctx, "one"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
	_, total, _ = svc.List(ctx, 10, 0, "")
	if total != 1 {
		t.Errorf("total after delete = %d", total)
	}
}
