// Package testutil provides shared test helpers for setting up document
// stores, catalogue databases and sample images.
package testutil

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/index"
	"github.com/starford/postframe/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "postframe-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary document store directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// PNG returns an opaque w×h PNG filled with c.
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := imagesrc.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// PNGDataURI returns PNG as a base64 data URI.
func PNGDataURI(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	return imagesrc.EncodeDataURI(PNG(t, w, h, c), "image/png")
}
