// Package docservice saves editor payloads to the document store and keeps
// the catalogue index in step with them.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/codec"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/index"
	"github.com/starford/postframe/internal/models"
	"github.com/starford/postframe/internal/storage"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Saved is the result of a save.
type Saved struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Created   bool      `json:"created"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Loaded is a saved document read back from the store.
type Loaded struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Checksum string         `json:"checksum"`
	Payload  editor.Payload `json:"payload"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new document service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// ValidateID checks that id is usable as a document directory name.
func ValidateID(id string) error {
	err := validation.Validate(id, validation.Required, validation.Match(idPattern))
	if err != nil {
		return fmt.Errorf("%w: document id: %v", apperr.ErrValidation, err)
	}
	return nil
}

// Save writes payload under id with optimistic concurrency: a non-empty
// ifMatch must equal the checksum of the stored manifest. An empty id
// creates a new document. Asset files no longer referenced are removed.
func (s *Service) Save(ctx context.Context, id, title string, p editor.Payload, ifMatch string) (*Saved, error) {
	created := false
	if id == "" {
		id = uuid.NewString()
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := p.Document.Validate(); err != nil {
		return nil, err
	}

	existingPath, existing, err := s.readManifest(id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		created = true
		if ifMatch != "" {
			return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
		}
	case err != nil:
		return nil, err
	case ifMatch != "" && ifMatch != codec.Checksum(existing):
		return nil, fmt.Errorf("%w: document %s changed since %s", apperr.ErrConflict, id, ifMatch)
	}

	m := codec.Manifest{ID: id, Title: title, Document: p.Document, Files: make([]codec.FileRef, 0, len(p.Files))}
	keep := make(map[string]struct{}, len(p.Files))
	assetsDir := path.Join(id, storage.AssetsDir)
	for _, f := range p.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.store.Write(path.Join(assetsDir, f.Name), f.Blob); err != nil {
			return nil, err
		}
		keep[f.Name] = struct{}{}
		m.Files = append(m.Files, codec.FileRef{Name: f.Name, MimeType: f.MimeType})
	}

	data, err := codec.Encode(m)
	if err != nil {
		return nil, err
	}
	manifestPath := path.Join(id, storage.ManifestJSON)
	if err := s.store.Write(manifestPath, data); err != nil {
		return nil, err
	}
	// A saved document always uses the JSON form.
	if existingPath != "" && existingPath != manifestPath {
		_ = s.store.Delete(existingPath)
	}

	names, err := s.store.Files(assetsDir)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := keep[name]; !ok {
			_ = s.store.Delete(path.Join(assetsDir, name))
		}
	}

	if err := index.IndexDocument(s.db, id, manifestPath, data); err != nil {
		return nil, err
	}
	return &Saved{
		ID:        id,
		Title:     codec.Title(m),
		Checksum:  codec.Checksum(data),
		Created:   created,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Load reads a saved document and its asset blobs.
func (s *Service) Load(ctx context.Context, id string) (*Loaded, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	_, data, err := s.readManifest(id)
	if err != nil {
		return nil, err
	}
	m, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("docservice: decode %s: %w", id, err)
	}

	files := make([]models.AssetFile, 0, len(m.Files))
	for _, ref := range m.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blob, err := s.store.Read(path.Join(id, storage.AssetsDir, ref.Name))
		if err != nil {
			return nil, fmt.Errorf("docservice: asset %s of %s: %w", ref.Name, id, err)
		}
		files = append(files, models.AssetFile{Name: ref.Name, Blob: blob, MimeType: ref.MimeType})
	}

	return &Loaded{
		ID:       id,
		Title:    codec.Title(m),
		Checksum: codec.Checksum(data),
		Payload:  editor.Payload{Document: m.Document, Files: files},
	}, nil
}

// Get returns the catalogue entry of one document.
func (s *Service) Get(_ context.Context, id string) (*models.DocumentSummary, error) {
	return s.db.GetDocument(id)
}

// Assets returns the asset files recorded for a document.
func (s *Service) Assets(_ context.Context, id string) ([]index.AssetRow, error) {
	return s.db.Assets(id)
}

// Asset returns one saved asset blob of a document and its media type.
func (s *Service) Asset(_ context.Context, id, name string) ([]byte, string, error) {
	if err := ValidateID(id); err != nil {
		return nil, "", err
	}
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return nil, "", fmt.Errorf("%w: asset name %q", apperr.ErrValidation, name)
	}
	data, err := s.store.Read(path.Join(id, storage.AssetsDir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: asset %s of %s", apperr.ErrNotFound, name, id)
	}
	if err != nil {
		return nil, "", err
	}
	mime := ""
	if rows, err := s.db.Assets(id); err == nil {
		for _, row := range rows {
			if row.Name == name {
				mime = row.MimeType
				break
			}
		}
	}
	if mime == "" {
		mime = imagesrc.DetectMIME(data)
	}
	return data, mime, nil
}

// List returns one page of the catalogue.
func (s *Service) List(_ context.Context, limit, offset int, sort string) ([]models.DocumentSummary, int, error) {
	return s.db.ListDocuments(limit, offset, sort)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]models.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Delete removes a document directory from storage and the index.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, _, err := s.readManifest(id); err != nil {
		return err
	}
	if err := s.store.RemoveAll(id); err != nil {
		return err
	}
	return s.db.DeleteDocument(id)
}

// readManifest returns the path and bytes of the manifest of id, preferring
// the JSON form.
func (s *Service) readManifest(id string) (string, []byte, error) {
	for _, name := range []string{storage.ManifestJSON, storage.ManifestYAML} {
		p := path.Join(id, name)
		data, err := s.store.Read(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return p, data, nil
	}
	return "", nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
}
