package editor

import (
	"fmt"
	"log/slog"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/models"
)

// AssetScheme prefixes image sources that live in the asset registry.
const AssetScheme = "asset://"

// duplicateOffset shifts a duplicated element so it does not hide the
// original.
const duplicateOffset = 20

// Patch is a partial element update. Nil fields are left unchanged.
// Styles, Effects and Props replace the whole nested value.
type Patch struct {
	Position *models.Position  `json:"position,omitempty"`
	Size     *models.Size      `json:"size,omitempty"`
	ZIndex   *int              `json:"zIndex,omitempty"`
	Visible  *bool             `json:"visible,omitempty"`
	Locked   *bool             `json:"locked,omitempty"`
	Styles   models.StyleMap   `json:"styles,omitempty"`
	Effects  *models.EffectSet `json:"effects,omitempty"`
	Props    *models.Props     `json:"props,omitempty"`
}

// AddElement validates partial, fills in id, zIndex and flags, appends the
// element and its layer, and pushes one history entry.
func (s *Session) AddElement(partial models.Element) (models.Element, error) {
	el, err := s.insert(partial)
	if err != nil {
		return models.Element{}, err
	}
	s.commit(OpAddElement, el.ID)
	return el, nil
}

func (s *Session) insert(partial models.Element) (models.Element, error) {
	if !partial.Type.Valid() {
		return models.Element{}, fmt.Errorf("%w: unknown element type %q", apperr.ErrValidation, partial.Type)
	}
	el := partial.Clone()
	if el.ID == "" {
		el.ID = s.newID()
	}
	if s.model.Has(el.ID) {
		return models.Element{}, fmt.Errorf("%w: element %s", apperr.ErrAlreadyExists, el.ID)
	}
	el.ZIndex = s.model.Len() + 1
	el.Visible = true
	el.Locked = false
	if el.Effects.IsZero() {
		el.Effects = models.DefaultEffects()
	}
	el.Styles = effects.Compose(el.Effects).Apply(el.Styles)

	switch el.Type {
	case models.ElementImage:
		if el.Props.OriginalSrc == "" {
			el.Props.OriginalSrc = el.Props.Src
		}
	case models.ElementShape:
		s.outlineShape(&el)
	}

	if err := s.model.Insert(el, s.newID()); err != nil {
		return models.Element{}, err
	}
	return el, nil
}

// outlineShape regenerates the SVG outline of a shape element from its mask
// id and size.
func (s *Session) outlineShape(el *models.Element) {
	if el.Props.Shape == "" || el.Size == nil {
		return
	}
	o, used := s.catalogue.Outline(el.Props.Shape, el.Size.Width, el.Size.Height)
	el.Props.Shape = used
	el.Props.SVGOutline = o.SVGPath()
}

// AddShape adds a shape element outlined by the catalogue entry maskID.
func (s *Session) AddShape(maskID string, pos models.Position, size models.Size, styles models.StyleMap) (models.Element, error) {
	return s.AddElement(models.Element{
		Type:     models.ElementShape,
		Position: pos,
		Size:     &size,
		Styles:   styles,
		Props:    models.Props{Shape: maskID},
	})
}

// AddImage registers blob as the element's asset file and adds the image
// element in one history step. An empty Src points at the registered file.
func (s *Session) AddImage(partial models.Element, blob []byte, mimeType string) (models.Element, error) {
	partial.Type = models.ElementImage
	if partial.ID == "" {
		partial.ID = s.newID()
	}
	if partial.Props.Src == "" {
		partial.Props.Src = AssetScheme + partial.ID
	}
	el, err := s.insert(partial)
	if err != nil {
		return models.Element{}, err
	}
	s.files.AddFile(models.AssetFile{Name: el.ID, Blob: blob, MimeType: mimeType})
	s.commit(OpAddElement, el.ID)
	return el, nil
}

// UpdateElement applies patch to the element with id and pushes one history
// entry. An unknown id is logged and reported as false.
func (s *Session) UpdateElement(id string, p Patch) bool {
	el, ok := s.model.Find(id)
	if !ok {
		s.notFound("update", id)
		return false
	}
	s.patch(&el, p)
	s.model.Replace(el)
	s.commit(OpUpdateElement, id)
	return true
}

func (s *Session) patch(el *models.Element, p Patch) {
	if p.Position != nil {
		el.Position = *p.Position
	}
	if p.Size != nil {
		sz := *p.Size
		el.Size = &sz
	}
	if p.ZIndex != nil {
		el.ZIndex = *p.ZIndex
	}
	if p.Visible != nil {
		el.Visible = *p.Visible
	}
	if p.Locked != nil {
		el.Locked = *p.Locked
	}
	if p.Styles != nil {
		el.Styles = p.Styles.Clone()
	}
	if p.Effects != nil {
		el.Effects = *p.Effects
	}
	if p.Props != nil {
		original := el.Props.OriginalSrc
		el.Props = *p.Props
		if original != "" {
			el.Props.OriginalSrc = original
		}
	}
	if p.Styles != nil || p.Effects != nil {
		el.Styles = effects.Compose(el.Effects).Apply(el.Styles)
	}
	if el.Type == models.ElementShape && (p.Size != nil || p.Props != nil) {
		s.outlineShape(el)
	}
}

// RemoveElement deletes the element with id and its layer, pushing one
// history entry. An unknown id is logged and reported as false.
func (s *Session) RemoveElement(id string) bool {
	if !s.model.Remove(id) {
		s.notFound("remove", id)
		return false
	}
	s.commit(OpRemoveElement, id)
	return true
}

// SetElementVisibility sets visible on the element and its layer in one
// history step.
func (s *Session) SetElementVisibility(id string, visible bool) bool {
	if !s.model.SetVisible(id, visible) {
		s.notFound("visibility", id)
		return false
	}
	s.commit(OpVisibility, id)
	return true
}

// SetElementLock sets locked on the element and its layer in one history
// step.
func (s *Session) SetElementLock(id string, locked bool) bool {
	if !s.model.SetLocked(id, locked) {
		s.notFound("lock", id)
		return false
	}
	s.commit(OpLock, id)
	return true
}

// DuplicateElement copies the element with id under a fresh id, slightly
// offset and on top. Image files are duplicated with it. The copy is
// visible and unlocked.
func (s *Session) DuplicateElement(id string) (models.Element, bool) {
	src, ok := s.model.Find(id)
	if !ok {
		s.notFound("duplicate", id)
		return models.Element{}, false
	}
	cp := src.Clone()
	cp.ID = s.newID()
	cp.Position.X += duplicateOffset
	cp.Position.Y += duplicateOffset
	f, hasFile := s.files.Get(id)
	if hasFile && cp.Type == models.ElementImage {
		cp.Props.Src = rebase(cp.Props.Src, id, cp.ID)
		cp.Props.OriginalSrc = rebase(cp.Props.OriginalSrc, id, cp.ID)
	}
	el, err := s.insert(cp)
	if err != nil {
		s.logger.Warn("duplicate element failed", slog.String("id", id), slog.String("error", err.Error()))
		return models.Element{}, false
	}
	if hasFile && el.Type == models.ElementImage {
		f.Name = el.ID
		s.files.AddFile(f)
	}
	s.commit(OpAddElement, el.ID)
	return el, true
}

// rebase repoints an asset source from one element id to another.
func rebase(src, from, to string) string {
	if src == AssetScheme+from {
		return AssetScheme + to
	}
	return src
}

func (s *Session) notFound(op, id string) {
	s.logger.Warn("element not found",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("error", apperr.ErrNotFound.Error()),
	)
}
