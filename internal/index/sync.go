package index

import (
	"log/slog"
	"path"

	"github.com/starford/postframe/internal/codec"
	"github.com/starford/postframe/internal/models"
	"github.com/starford/postframe/internal/storage"
)

// Sync walks the document store and brings the catalogue up to date:
//   - new/changed manifests are decoded and upserted
//   - documents removed from disk are deleted from the catalogue
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := manifests(metas)
	for id, m := range disk {
		if checksums[id] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, id, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", id))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if err := db.DeleteDocument(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// manifests keys metas by document id. When a directory holds both
// manifest forms the JSON one wins.
func manifests(metas []models.DocumentMetadata) map[string]models.DocumentMetadata {
	out := make(map[string]models.DocumentMetadata, len(metas))
	for _, m := range metas {
		if prev, ok := out[m.ID]; ok && path.Base(prev.Path) == storage.ManifestJSON {
			continue
		}
		out[m.ID] = m
	}
	return out
}

// IndexDocument decodes a manifest and upserts it into the catalogue.
func IndexDocument(db *DB, id, manifestPath string, data []byte) error {
	m, err := codec.Decode(data)
	if err != nil {
		return err
	}

	assets := make([]AssetRow, 0, len(m.Files))
	for _, f := range m.Files {
		assets = append(assets, AssetRow{Name: f.Name, MimeType: f.MimeType})
	}

	row := DocumentRow{
		ID:           id,
		Path:         manifestPath,
		Title:        codec.Title(m),
		Checksum:     codec.Checksum(data),
		CanvasWidth:  m.Document.Canvas.Width,
		CanvasHeight: m.Document.Canvas.Height,
		Ratio:        m.Document.Canvas.Ratio,
		ElementCount: len(m.Document.Elements),
	}
	return db.UpsertDocument(row, codec.Text(m.Document), assets)
}
