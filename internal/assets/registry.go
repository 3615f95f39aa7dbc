// Package assets keeps the named binary blobs of an editor session. A file
// is correlated by name to an image element id or to the background.
package assets

import (
	"log/slog"
	"slices"

	"github.com/starford/postframe/internal/models"
)

// Registry is an ordered, name-keyed list of asset files. Names are not
// unique: AddFile never checks for an existing entry.
type Registry struct {
	files  []models.AssetFile
	logger *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// AddFile appends f. The blob is copied; callers may reuse their buffer.
func (r *Registry) AddFile(f models.AssetFile) {
	f.Blob = slices.Clone(f.Blob)
	r.files = append(r.files, f)
}

// RemoveFileByName removes every file called name and returns how many
// were removed.
func (r *Registry) RemoveFileByName(name string) int {
	before := len(r.files)
	r.files = slices.DeleteFunc(r.files, func(f models.AssetFile) bool { return f.Name == name })
	return before - len(r.files)
}

// UpdateFile replaces the first file called name with f. It reports false
// and logs when there is none.
func (r *Registry) UpdateFile(name string, f models.AssetFile) bool {
	i := slices.IndexFunc(r.files, func(x models.AssetFile) bool { return x.Name == name })
	if i < 0 {
		r.logger.Warn("asset file not found for update", slog.String("name", name))
		return false
	}
	f.Blob = slices.Clone(f.Blob)
	r.files[i] = f
	return true
}

// Get returns the first file called name.
func (r *Registry) Get(name string) (models.AssetFile, bool) {
	i := slices.IndexFunc(r.files, func(x models.AssetFile) bool { return x.Name == name })
	if i < 0 {
		return models.AssetFile{}, false
	}
	return r.files[i], true
}

// Files returns a copy of the file list. Blobs are shared and must not be
// modified.
func (r *Registry) Files() []models.AssetFile {
	return slices.Clone(r.files)
}

// Len returns the number of files.
func (r *Registry) Len() int {
	return len(r.files)
}

// Replace swaps the whole list for files (used when restoring snapshots).
func (r *Registry) Replace(files []models.AssetFile) {
	r.files = slices.Clone(files)
}

// Reset removes every file.
func (r *Registry) Reset() {
	r.files = nil
}

// Exportable filters files down to those a save payload may carry: files
// named after an image element of doc, and the background file when the
// background is an image or a video.
func Exportable(doc models.Document, files []models.AssetFile) []models.AssetFile {
	images := make(map[string]struct{})
	for _, el := range doc.Elements {
		if el.Type == models.ElementImage {
			images[el.ID] = struct{}{}
		}
	}
	mediaBackground := doc.Background != nil && doc.Background.IsMedia()

	out := make([]models.AssetFile, 0, len(files))
	for _, f := range files {
		if _, ok := images[f.Name]; ok {
			out = append(out, f)
			continue
		}
		if f.Name == models.BackgroundAssetName && mediaBackground {
			out = append(out, f)
		}
	}
	return out
}
