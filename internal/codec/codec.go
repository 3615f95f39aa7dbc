// Package codec reads and writes saved document manifests. A manifest is
// JSON when written by the editor; hand-authored templates may use YAML.
package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/models"
)

// maxTitleRunes bounds a title derived from text content.
const maxTitleRunes = 80

// Untitled is the title of a manifest with neither a title nor text.
const Untitled = "Untitled"

// FileRef describes one asset file stored next to the manifest.
type FileRef struct {
	Name     string `json:"name" yaml:"name"`
	MimeType string `json:"mimeType" yaml:"mimeType"`
}

// Manifest is the on-disk form of a saved document. Asset blobs live in
// separate files named after FileRef.Name.
type Manifest struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Document models.Document `json:"document"`
	Files    []FileRef       `json:"files"`
}

// Encode serializes m as indented JSON.
func Encode(m Manifest) ([]byte, error) {
	if m.Files == nil {
		m.Files = []FileRef{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", m.ID, err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON or YAML manifest and repairs its document so it
// satisfies the editor's structural invariants.
func Decode(data []byte) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Manifest{}, fmt.Errorf("%w: empty manifest", apperr.ErrValidation)
	}

	raw := trimmed
	if trimmed[0] != '{' {
		// YAML maps decode into map[string]any, which round-trips through
		// encoding/json so both formats share the JSON field names.
		var tree any
		if err := yaml.Unmarshal(trimmed, &tree); err != nil {
			return Manifest{}, fmt.Errorf("%w: yaml: %v", apperr.ErrValidation, err)
		}
		var err error
		raw, err = json.Marshal(tree)
		if err != nil {
			return Manifest{}, fmt.Errorf("%w: yaml: %v", apperr.ErrValidation, err)
		}
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: json: %v", apperr.ErrValidation, err)
	}
	m.Document = Repair(m.Document)
	if m.Files == nil {
		m.Files = []FileRef{}
	}
	return m, nil
}

// Repair fills defaults and restores layer mirroring on a document that was
// not produced by the editor. Elements with an unknown type or a duplicate
// id are dropped.
func Repair(doc models.Document) models.Document {
	if doc.Canvas.Width <= 0 || doc.Canvas.Height <= 0 {
		def := models.DefaultCanvas()
		doc.Canvas.Width, doc.Canvas.Height = def.Width, def.Height
		if doc.Canvas.Ratio == "" {
			doc.Canvas.Ratio = def.Ratio
		}
	}
	if doc.Canvas.Style == nil {
		doc.Canvas.Style = models.DefaultCanvas().Style
	}

	layerIDs := make(map[string]string, len(doc.Layers))
	for _, l := range doc.Layers {
		if l.ID != "" {
			layerIDs[l.ElementID] = l.ID
		}
	}

	seen := make(map[string]struct{}, len(doc.Elements))
	elements := make([]models.Element, 0, len(doc.Elements))
	layers := make([]models.Layer, 0, len(doc.Elements))
	for _, el := range doc.Elements {
		if !el.Type.Valid() {
			continue
		}
		if el.ID == "" {
			el.ID = uuid.NewString()
		}
		if _, dup := seen[el.ID]; dup {
			continue
		}
		seen[el.ID] = struct{}{}

		if el.Effects.IsZero() {
			el.Effects = models.DefaultEffects()
		}
		el.Styles = effects.Compose(el.Effects).Apply(el.Styles)
		if el.Type == models.ElementImage && el.Props.OriginalSrc == "" {
			el.Props.OriginalSrc = el.Props.Src
		}
		elements = append(elements, el)

		layerID, ok := layerIDs[el.ID]
		if !ok {
			layerID = uuid.NewString()
		}
		layers = append(layers, models.Layer{
			ID:        layerID,
			ElementID: el.ID,
			Type:      el.Type,
			Visible:   el.Visible,
			Locked:    el.Locked,
		})
	}
	doc.Elements = elements
	doc.Layers = layers
	return doc
}

// Title returns the manifest title, falling back to the first line of text
// content and then to Untitled.
func Title(m Manifest) string {
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	for _, el := range m.Document.Elements {
		if el.Type != models.ElementText {
			continue
		}
		line, _, _ := strings.Cut(strings.TrimSpace(el.Props.Text), "\n")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxTitleRunes {
			line = string([]rune(line)[:maxTitleRunes])
		}
		return line
	}
	return Untitled
}

// Text concatenates the text content of a document for full-text search.
func Text(doc models.Document) string {
	var parts []string
	for _, el := range doc.Elements {
		if el.Type == models.ElementText && el.Props.Text != "" {
			parts = append(parts, el.Props.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
