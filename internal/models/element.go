package models

// ElementType enumerates the placeable element kinds.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementImage, ElementShape:
		return true
	}
	return false
}

// Position is the top-left corner of an element on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the box of an element. Text elements may omit it and size
// themselves from their content.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Props is the type-specific payload of an element. Only the fields that
// belong to the element's type are populated:
//   - text:  Text, Category
//   - image: Src, PreviewURL, OriginalSrc, Mask
//   - shape: SVGOutline, Shape
type Props struct {
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`

	Src         string `json:"src,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	OriginalSrc string `json:"originalSrc,omitempty"`
	Mask        string `json:"mask,omitempty"`

	SVGOutline string `json:"svgOutline,omitempty"`
	Shape      string `json:"shape,omitempty"`
}

// Element is one placeable visual object in a document.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	Position Position    `json:"position"`
	Size     *Size       `json:"size,omitempty"`
	ZIndex   int         `json:"zIndex"`
	Visible  bool        `json:"visible"`
	Locked   bool        `json:"locked"`
	// Styles is derived from Effects by the compositor plus any
	// caller-provided keys (fonts, colors).
	Styles  StyleMap  `json:"styles,omitempty"`
	Effects EffectSet `json:"effects"`
	Props   Props     `json:"props"`
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	if e.Size != nil {
		sz := *e.Size
		e.Size = &sz
	}
	e.Styles = e.Styles.Clone()
	return e
}

// Layer mirrors one element's ordering, visibility and lock state.
type Layer struct {
	ID        string      `json:"id"`
	ElementID string      `json:"elementId"`
	Type      ElementType `json:"type"`
	Visible   bool        `json:"visible"`
	Locked    bool        `json:"locked"`
}

// AssetFile is a named binary blob correlated to an element id or to the
// background.
type AssetFile struct {
	Name     string `json:"name"`
	Blob     []byte `json:"-"`
	MimeType string `json:"mimeType"`
}
