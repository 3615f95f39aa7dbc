// Package document holds the canonical state of one editing session and
// enforces its structural invariants: positive canvas, mutually exclusive
// canvas background styles, wholesale background variants and exactly one
// mirrored layer per element.
//
// The Model is not safe for concurrent use. It is owned by a single editor
// session.
package document

import (
	"fmt"
	"slices"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/models"
)

// Canvas style keys. The image group and the color group never coexist.
const (
	KeyBackgroundImage    = "backgroundImage"
	KeyBackgroundSize     = "backgroundSize"
	KeyBackgroundRepeat   = "backgroundRepeat"
	KeyBackgroundPosition = "backgroundPosition"
	KeyBackgroundColor    = "backgroundColor"
)

var (
	imageGroup = []string{KeyBackgroundImage, KeyBackgroundSize, KeyBackgroundRepeat, KeyBackgroundPosition}
	colorGroup = []string{KeyBackgroundColor}

	imageDefaults = models.StyleMap{
		KeyBackgroundSize:     "cover",
		KeyBackgroundRepeat:   "no-repeat",
		KeyBackgroundPosition: "center",
	}
)

// Model is the live document of an editor session.
type Model struct {
	doc models.Document
}

// New returns a model holding an empty document on the default canvas.
func New() *Model {
	return &Model{doc: models.NewDocument()}
}

// Document returns a deep copy of the current state.
func (m *Model) Document() models.Document {
	return m.doc.Clone()
}

// Restore replaces the whole state with a copy of d.
func (m *Model) Restore(d models.Document) {
	m.doc = d.Clone()
	if m.doc.Elements == nil {
		m.doc.Elements = []models.Element{}
	}
	if m.doc.Layers == nil {
		m.doc.Layers = []models.Layer{}
	}
}

// Reset restores the default canvas and empties every collection.
func (m *Model) Reset() {
	m.doc = models.NewDocument()
}

// Canvas returns a copy of the canvas.
func (m *Model) Canvas() models.Canvas {
	return m.doc.Canvas.Clone()
}

// UpdateCanvasSize replaces the canvas dimensions. Both must be positive.
func (m *Model) UpdateCanvasSize(width, height int) error {
	next := m.doc.Canvas
	next.Width, next.Height = width, height
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: canvas size %dx%d: %v", apperr.ErrValidation, width, height, err)
	}
	m.doc.Canvas.Width, m.doc.Canvas.Height = width, height
	return nil
}

// SetRatio records the aspect ratio label of the canvas.
func (m *Model) SetRatio(ratio string) {
	m.doc.Canvas.Ratio = ratio
}

// UpdateCanvasStyles shallow-merges patch into the canvas style.
//
// Setting backgroundImage strips backgroundColor and fills in the cover /
// no-repeat / center defaults the patch does not provide. Setting
// backgroundColor strips the image group. A patch carrying both keeps the
// image. An empty value deletes its key; deleting backgroundImage deletes
// the whole image group.
func (m *Model) UpdateCanvasStyles(patch models.StyleMap) {
	style := m.doc.Canvas.Style.Clone()
	if style == nil {
		style = models.StyleMap{}
	}

	setsImage := patch[KeyBackgroundImage] != ""
	setsColor := patch[KeyBackgroundColor] != "" && !setsImage

	switch {
	case setsImage:
		deleteKeys(style, colorGroup)
	case setsColor:
		deleteKeys(style, imageGroup)
	}

	for k, v := range patch {
		switch {
		case setsImage && slices.Contains(colorGroup, k):
			continue
		case setsColor && slices.Contains(imageGroup, k):
			continue
		case v == "":
			if k == KeyBackgroundImage {
				deleteKeys(style, imageGroup)
			}
			delete(style, k)
		default:
			style[k] = v
		}
	}

	if setsImage {
		for k, v := range imageDefaults {
			if _, ok := patch[k]; !ok {
				style[k] = v
			}
		}
	}
	m.doc.Canvas.Style = style
}

func deleteKeys(style models.StyleMap, keys []string) {
	for _, k := range keys {
		delete(style, k)
	}
}

// Background returns a copy of the background, or nil.
func (m *Model) Background() *models.Background {
	if m.doc.Background == nil {
		return nil
	}
	bg := *m.doc.Background
	return &bg
}

// SetBackground replaces the background wholesale with the variant t
// carrying value.
func (m *Model) SetBackground(t models.BackgroundType, value string) error {
	bg, err := models.NewBackground(t, value)
	if err != nil {
		return err
	}
	m.doc.Background = &bg
	return nil
}

// ClearBackground removes the background.
func (m *Model) ClearBackground() {
	m.doc.Background = nil
}

// Len returns the number of elements.
func (m *Model) Len() int {
	return len(m.doc.Elements)
}

// Has reports whether an element with id exists.
func (m *Model) Has(id string) bool {
	return m.indexOf(id) >= 0
}

// Find returns a copy of the element with id.
func (m *Model) Find(id string) (models.Element, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return models.Element{}, false
	}
	return m.doc.Elements[i].Clone(), true
}

// Layer returns the layer mirroring element id.
func (m *Model) Layer(elementID string) (models.Layer, bool) {
	i := m.layerOf(elementID)
	if i < 0 {
		return models.Layer{}, false
	}
	return m.doc.Layers[i], true
}

// Insert appends el and its mirroring layer. The element id must be new.
func (m *Model) Insert(el models.Element, layerID string) error {
	if m.Has(el.ID) {
		return fmt.Errorf("%w: element %s", apperr.ErrAlreadyExists, el.ID)
	}
	m.doc.Elements = append(m.doc.Elements, el.Clone())
	m.doc.Layers = append(m.doc.Layers, models.Layer{
		ID:        layerID,
		ElementID: el.ID,
		Type:      el.Type,
		Visible:   el.Visible,
		Locked:    el.Locked,
	})
	return nil
}

// Replace overwrites the element with el.ID and mirrors its type, visible
// and locked flags onto the layer. It reports false if no such element
// exists.
func (m *Model) Replace(el models.Element) bool {
	i := m.indexOf(el.ID)
	if i < 0 {
		return false
	}
	m.doc.Elements[i] = el.Clone()
	m.syncLayer(el)
	return true
}

// Remove deletes the element with id and its layer.
func (m *Model) Remove(id string) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.doc.Elements = slices.Delete(m.doc.Elements, i, i+1)
	m.doc.Layers = slices.DeleteFunc(m.doc.Layers, func(l models.Layer) bool {
		return l.ElementID == id
	})
	return true
}

// SetVisible updates the element and its layer together.
func (m *Model) SetVisible(id string, visible bool) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.doc.Elements[i].Visible = visible
	m.syncLayer(m.doc.Elements[i])
	return true
}

// SetLocked updates the element and its layer together.
func (m *Model) SetLocked(id string, locked bool) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.doc.Elements[i].Locked = locked
	m.syncLayer(m.doc.Elements[i])
	return true
}

// PaintOrder returns copies of all elements sorted by zIndex. Ties keep
// insertion order.
func (m *Model) PaintOrder() []models.Element {
	out := make([]models.Element, len(m.doc.Elements))
	for i, el := range m.doc.Elements {
		out[i] = el.Clone()
	}
	slices.SortStableFunc(out, func(a, b models.Element) int {
		return a.ZIndex - b.ZIndex
	})
	return out
}

// ElementsOfType returns the ids of every element of type t in insertion
// order.
func (m *Model) ElementsOfType(t models.ElementType) []string {
	var ids []string
	for _, el := range m.doc.Elements {
		if el.Type == t {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

func (m *Model) syncLayer(el models.Element) {
	if j := m.layerOf(el.ID); j >= 0 {
		l := &m.doc.Layers[j]
		l.Type, l.Visible, l.Locked = el.Type, el.Visible, el.Locked
	}
}

func (m *Model) indexOf(id string) int {
	return slices.IndexFunc(m.doc.Elements, func(el models.Element) bool { return el.ID == id })
}

func (m *Model) layerOf(elementID string) int {
	return slices.IndexFunc(m.doc.Layers, func(l models.Layer) bool { return l.ElementID == elementID })
}
