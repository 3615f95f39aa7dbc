package index

import "github.com/starford/postframe/internal/models"

// Catalogue defines the saved-document index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalogue interface {
	UpsertDocument(d DocumentRow, body string, assets []AssetRow) error
	DeleteDocument(id string) error
	GetChecksum(id string) (string, error)
	GetDocument(id string) (*models.DocumentSummary, error)
	ListDocuments(limit, offset int, sort string) ([]models.DocumentSummary, int, error)
	Search(query string, limit int) ([]models.SearchResult, error)
	Assets(id string) ([]AssetRow, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalogue at compile time.
var _ Catalogue = (*DB)(nil)
