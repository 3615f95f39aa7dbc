package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	ID           string
	Path         string
	Title        string
	Checksum     string
	CanvasWidth  int
	CanvasHeight int
	Ratio        string
	ElementCount int
	UpdatedAt    time.Time
}

// AssetRow represents one asset file of a saved document.
type AssetRow struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// UpsertDocument inserts or replaces a document, its FTS entry and its asset
// list within a transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string, assets []AssetRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO documents (id, path, title, checksum, body, canvas_width, canvas_height, ratio, element_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path          = excluded.path,
			title         = excluded.title,
			checksum      = excluded.checksum,
			body          = excluded.body,
			canvas_width  = excluded.canvas_width,
			canvas_height = excluded.canvas_height,
			ratio         = excluded.ratio,
			element_count = excluded.element_count,
			updated_at    = excluded.updated_at
	`, d.ID, d.Path, d.Title, d.Checksum, body, d.CanvasWidth, d.CanvasHeight, d.Ratio, d.ElementCount, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.ID, d.Title, body); err != nil {
		return err
	}

	// Replace assets: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM document_assets WHERE document_id = ?`, d.ID)
	if len(assets) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO document_assets (document_id, name, mime_type) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare asset insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range assets {
			if _, err := stmt.Exec(d.ID, a.Name, a.MimeType); err != nil {
				return fmt.Errorf("index: insert asset: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry and its assets.
func (db *DB) DeleteDocument(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM document_assets WHERE document_id = ?`, id)
	if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// it is not indexed.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

const summaryColumns = `id, path, title, checksum, canvas_width, canvas_height, ratio, element_count, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (models.DocumentSummary, error) {
	var s models.DocumentSummary
	err := row.Scan(&s.ID, &s.Path, &s.Title, &s.Checksum, &s.CanvasWidth, &s.CanvasHeight, &s.Ratio, &s.ElementCount, &s.UpdatedAt)
	return s, err
}

// GetDocument returns the catalogue entry of one document.
func (db *DB) GetDocument(id string) (*models.DocumentSummary, error) {
	s, err := scanSummary(db.conn.QueryRow(`SELECT `+summaryColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &s, nil
}

// ListDocuments returns one page of the catalogue and the total count.
// sort is "title" or "updated" (newest first, the default).
func (db *DB) ListDocuments(limit, offset int, sort string) ([]models.DocumentSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "updated_at DESC, id"
	if sort == "title" {
		order = "title COLLATE NOCASE, id"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+summaryColumns+` FROM documents ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []models.DocumentSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Assets returns the asset files recorded for a document.
func (db *DB) Assets(id string) ([]AssetRow, error) {
	rows, err := db.conn.Query(`SELECT name, mime_type FROM document_assets WHERE document_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("index: assets: %w", err)
	}
	defer rows.Close()

	out := []AssetRow{}
	for rows.Next() {
		var a AssetRow
		if err := rows.Scan(&a.Name, &a.MimeType); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AllChecksums returns the checksum of every indexed document keyed by id.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
