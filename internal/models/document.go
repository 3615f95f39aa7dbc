// Package models defines the document types shared by the editor engine.
package models

import (
	"fmt"
	"maps"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/postframe/internal/apperr"
)

// Default canvas geometry for a fresh editing session.
const (
	DefaultCanvasWidth  = 1080
	DefaultCanvasHeight = 1080
	DefaultCanvasRatio  = "1:1"
	DefaultCanvasColor  = "#ffffff"
)

// BackgroundAssetName is the asset file name reserved for media backgrounds.
const BackgroundAssetName = "background"

// StyleMap is a sparse key→value style description.
type StyleMap map[string]string

// Clone returns an independent copy of s (nil stays nil).
func (s StyleMap) Clone() StyleMap {
	return maps.Clone(s)
}

// Canvas is the drawing surface of a document.
type Canvas struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Ratio  string   `json:"ratio"`
	Style  StyleMap `json:"style"`
}

// DefaultCanvas returns the canvas every new document starts with.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  DefaultCanvasWidth,
		Height: DefaultCanvasHeight,
		Ratio:  DefaultCanvasRatio,
		Style:  StyleMap{"backgroundColor": DefaultCanvasColor},
	}
}

// Clone returns a deep copy of c.
func (c Canvas) Clone() Canvas {
	c.Style = c.Style.Clone()
	return c
}

// Validate checks that the canvas has positive dimensions.
func (c Canvas) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Width, validation.Required, validation.Min(1)),
		validation.Field(&c.Height, validation.Required, validation.Min(1)),
	)
}

// BackgroundType enumerates background variants.
type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundImage    BackgroundType = "image"
	BackgroundVideo    BackgroundType = "video"
	BackgroundGradient BackgroundType = "gradient"
)

// Background is a tagged union; exactly one payload field is set for a given Type.
type Background struct {
	Type     BackgroundType `json:"type"`
	Color    string         `json:"color,omitempty"`
	Src      string         `json:"src,omitempty"`
	Gradient string         `json:"gradient,omitempty"`
}

// NewBackground builds the variant for t carrying value. Every other payload
// field is left empty.
func NewBackground(t BackgroundType, value string) (Background, error) {
	if value == "" {
		return Background{}, fmt.Errorf("%w: background value is empty", apperr.ErrValidation)
	}
	switch t {
	case BackgroundColor:
		return Background{Type: t, Color: value}, nil
	case BackgroundImage, BackgroundVideo:
		return Background{Type: t, Src: value}, nil
	case BackgroundGradient:
		return Background{Type: t, Gradient: value}, nil
	default:
		return Background{}, fmt.Errorf("%w: unknown background type %q", apperr.ErrValidation, t)
	}
}

// IsMedia reports whether the background references a binary asset.
func (b Background) IsMedia() bool {
	return b.Type == BackgroundImage || b.Type == BackgroundVideo
}

// Value returns the payload of the active variant.
func (b Background) Value() string {
	switch b.Type {
	case BackgroundColor:
		return b.Color
	case BackgroundGradient:
		return b.Gradient
	default:
		return b.Src
	}
}

// Document is the complete editable state of one post's visual composition.
type Document struct {
	Canvas     Canvas      `json:"canvas"`
	Background *Background `json:"background"`
	Elements   []Element   `json:"elements"`
	Layers     []Layer     `json:"layers"`
}

// NewDocument returns an empty document on the default canvas.
func NewDocument() Document {
	return Document{
		Canvas:   DefaultCanvas(),
		Elements: []Element{},
		Layers:   []Layer{},
	}
}

// Clone returns a deep copy of d. Mutating the copy never affects d.
func (d Document) Clone() Document {
	out := Document{
		Canvas:   d.Canvas.Clone(),
		Elements: make([]Element, len(d.Elements)),
		Layers:   make([]Layer, len(d.Layers)),
	}
	if d.Background != nil {
		bg := *d.Background
		out.Background = &bg
	}
	for i, el := range d.Elements {
		out.Elements[i] = el.Clone()
	}
	copy(out.Layers, d.Layers)
	return out
}

// Validate checks the structural invariants of a document: positive canvas,
// known element types, unique element ids and one mirrored layer per element.
func (d Document) Validate() error {
	if err := d.Canvas.Validate(); err != nil {
		return fmt.Errorf("%w: canvas: %v", apperr.ErrValidation, err)
	}
	seen := make(map[string]struct{}, len(d.Elements))
	for _, el := range d.Elements {
		if el.ID == "" {
			return fmt.Errorf("%w: element without id", apperr.ErrValidation)
		}
		if !el.Type.Valid() {
			return fmt.Errorf("%w: element %s has unknown type %q", apperr.ErrValidation, el.ID, el.Type)
		}
		if _, dup := seen[el.ID]; dup {
			return fmt.Errorf("%w: duplicate element id %s", apperr.ErrValidation, el.ID)
		}
		seen[el.ID] = struct{}{}
	}
	if len(d.Layers) != len(d.Elements) {
		return fmt.Errorf("%w: %d layers for %d elements", apperr.ErrValidation, len(d.Layers), len(d.Elements))
	}
	byElement := make(map[string]Layer, len(d.Layers))
	for _, l := range d.Layers {
		if _, dup := byElement[l.ElementID]; dup {
			return fmt.Errorf("%w: element %s has more than one layer", apperr.ErrValidation, l.ElementID)
		}
		byElement[l.ElementID] = l
	}
	for _, el := range d.Elements {
		l, ok := byElement[el.ID]
		if !ok {
			return fmt.Errorf("%w: element %s has no layer", apperr.ErrValidation, el.ID)
		}
		if l.Visible != el.Visible || l.Locked != el.Locked {
			return fmt.Errorf("%w: layer %s out of sync with element %s", apperr.ErrValidation, l.ID, el.ID)
		}
	}
	return nil
}
