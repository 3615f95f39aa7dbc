// Package storage defines the document store file-system abstraction.
//
// Every saved document lives in its own directory:
//
//	<id>/document.json    manifest (document.yaml for hand-authored templates)
//	<id>/assets/<name>    asset blobs referenced by the manifest
package storage

import "github.com/starford/postframe/internal/models"

// Manifest file names, in lookup order.
const (
	ManifestJSON = "document.json"
	ManifestYAML = "document.yaml"
)

// AssetsDir is the per-document asset directory name.
const AssetsDir = "assets"

// Provider is the interface for document store file operations. All paths
// are relative to the store root.
type Provider interface {
	// List returns metadata for every manifest under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Files returns the names of the regular files directly inside dir.
	Files(dir string) ([]string, error)
	// RemoveAll deletes dir and everything below it.
	RemoveAll(dir string) error
}
