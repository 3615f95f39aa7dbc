package editor

import (
	"fmt"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/models"
)

// Preset is a named canvas format used by social platforms.
type Preset struct {
	Ratio  string `json:"ratio"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var presets = []Preset{
	{Ratio: "1:1", Width: 1080, Height: 1080},
	{Ratio: "4:5", Width: 1080, Height: 1350},
	{Ratio: "9:16", Width: 1080, Height: 1920},
	{Ratio: "16:9", Width: 1920, Height: 1080},
	{Ratio: "1.91:1", Width: 1200, Height: 628},
}

// Presets lists the supported canvas formats.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// UpdateCanvasSize sets the canvas dimensions. Non-positive values are
// rejected before any mutation.
func (s *Session) UpdateCanvasSize(width, height int) error {
	if err := s.model.UpdateCanvasSize(width, height); err != nil {
		return err
	}
	s.commit(OpCanvas, "")
	return nil
}

// ApplyCanvasPreset resizes the canvas to the preset for ratio and records
// the ratio, in one history step.
func (s *Session) ApplyCanvasPreset(ratio string) error {
	for _, p := range presets {
		if p.Ratio != ratio {
			continue
		}
		if err := s.model.UpdateCanvasSize(p.Width, p.Height); err != nil {
			return err
		}
		s.model.SetRatio(p.Ratio)
		s.commit(OpCanvas, "")
		return nil
	}
	return fmt.Errorf("%w: unknown canvas ratio %q", apperr.ErrValidation, ratio)
}

// UpdateCanvasStyles merges patch into the canvas style.
func (s *Session) UpdateCanvasStyles(patch models.StyleMap) {
	s.model.UpdateCanvasStyles(patch)
	s.commit(OpCanvas, "")
}

// SetBackground replaces the background with the variant t carrying value.
func (s *Session) SetBackground(t models.BackgroundType, value string) error {
	if err := s.model.SetBackground(t, value); err != nil {
		return err
	}
	s.commit(OpBackground, "")
	return nil
}

// SetBackgroundMedia stores blob as the background asset file and points an
// image or video background at it, in one history step.
func (s *Session) SetBackgroundMedia(t models.BackgroundType, blob []byte, mimeType string) error {
	if t != models.BackgroundImage && t != models.BackgroundVideo {
		return fmt.Errorf("%w: background type %q carries no media", apperr.ErrValidation, t)
	}
	if err := s.model.SetBackground(t, AssetScheme+models.BackgroundAssetName); err != nil {
		return err
	}
	s.files.RemoveFileByName(models.BackgroundAssetName)
	s.files.AddFile(models.AssetFile{Name: models.BackgroundAssetName, Blob: blob, MimeType: mimeType})
	s.commit(OpBackground, "")
	return nil
}

// ClearBackground removes the background.
func (s *Session) ClearBackground() {
	s.model.ClearBackground()
	s.commit(OpBackground, "")
}

// ClearEditor restores the default canvas and empties the background,
// elements, layers and files. It is recorded in history and can be undone.
func (s *Session) ClearEditor() {
	s.resetModel()
	s.files.Reset()
	s.commit(OpClear, "")
}
