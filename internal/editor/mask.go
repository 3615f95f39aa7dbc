package editor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/imagesrc"
	"github.com/starford/postframe/internal/models"
)

// ApplyMask clips an image element with the catalogue outline maskID.
//
// The clip is always computed from props.originalSrc, captured from the
// current src on first use, so switching masks never compounds. Unknown
// mask ids fall back to the circle. A missing or non-image element is a
// logged no-op reported as false. Source I/O errors leave the element
// untouched.
func (s *Session) ApplyMask(ctx context.Context, id, maskID string) (bool, error) {
	el, ok := s.model.Find(id)
	if !ok {
		s.notFound("mask", id)
		return false, nil
	}
	if el.Type != models.ElementImage {
		s.logger.Warn("mask on non-image element", slog.String("id", id), slog.String("type", string(el.Type)))
		return false, nil
	}

	props := el.Props
	if props.OriginalSrc == "" {
		props.OriginalSrc = props.Src
	}
	src, err := s.loadImage(ctx, props.OriginalSrc)
	if err != nil {
		return false, fmt.Errorf("editor: mask %s: %w", id, err)
	}

	clipped, used := s.catalogue.Clip(src, maskID)
	if used != maskID {
		s.logger.Debug("unknown mask, using fallback", slog.String("mask", maskID), slog.String("fallback", used))
	}
	uri, err := imagesrc.PNGDataURI(clipped)
	if err != nil {
		return false, fmt.Errorf("editor: mask %s: %w", id, err)
	}

	props.Src = uri
	props.Mask = used
	return s.UpdateElement(id, Patch{Props: &props}), nil
}

// RemoveMask restores the unmasked source of an image element.
func (s *Session) RemoveMask(id string) bool {
	el, ok := s.model.Find(id)
	if !ok || el.Type != models.ElementImage {
		s.notFound("unmask", id)
		return false
	}
	if el.Props.Mask == "" {
		return false
	}
	props := el.Props
	props.Src = props.OriginalSrc
	props.Mask = ""
	return s.UpdateElement(id, Patch{Props: &props})
}

// loadImage resolves src through the asset registry or the loader.
func (s *Session) loadImage(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: image has no source", apperr.ErrValidation)
	}
	if name, ok := strings.CutPrefix(src, AssetScheme); ok {
		f, ok := s.files.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: asset %s", apperr.ErrNotFound, name)
		}
		return imagesrc.Decode(f.Blob)
	}
	return s.loader.Load(ctx, src)
}
