package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/effects"
	"github.com/starford/postframe/internal/models"
)

// ToggleEffect enables or disables one effect of an element and recomputes
// its derived style from the full effect set.
func (s *Session) ToggleEffect(id string, name effects.Name, enabled bool) error {
	return s.editEffects(id, func(set models.EffectSet) (models.EffectSet, error) {
		return effects.Toggle(set, name, enabled)
	})
}

// SetEffectParam changes a numeric effect parameter. Out-of-range values are
// clamped and applied; the returned error then wraps apperr.ErrRangeWarning.
func (s *Session) SetEffectParam(id string, name effects.Name, param string, value float64) error {
	return s.editEffects(id, func(set models.EffectSet) (models.EffectSet, error) {
		return effects.SetParam(set, name, param, value)
	})
}

// SetEffectColor changes the color of the border or shadow effect.
func (s *Session) SetEffectColor(id string, name effects.Name, color string) error {
	return s.editEffects(id, func(set models.EffectSet) (models.EffectSet, error) {
		return effects.SetColor(set, name, color)
	})
}

func (s *Session) editEffects(id string, fn func(models.EffectSet) (models.EffectSet, error)) error {
	el, ok := s.model.Find(id)
	if !ok {
		s.notFound("effect", id)
		return fmt.Errorf("%w: element %s", apperr.ErrNotFound, id)
	}
	next, err := fn(el.Effects)
	var warning error
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrRangeWarning):
		s.logger.Warn("effect value clamped", slog.String("id", id), slog.String("error", err.Error()))
		warning = err
	default:
		return err
	}

	el.Effects = next
	el.Styles = effects.Compose(next).Apply(el.Styles)
	s.model.Replace(el)
	s.commit(OpEffect, id)
	return warning
}
