package effects

import (
	"fmt"
	"math"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/models"
)

// Name identifies one effect of an EffectSet.
type Name string

const (
	Blur         Name = "blur"
	Brightness   Name = "brightness"
	Sepia        Name = "sepia"
	Grayscale    Name = "grayscale"
	Border       Name = "border"
	CornerRadius Name = "cornerRadius"
	Shadow       Name = "shadow"
)

// Names lists every effect in display order.
func Names() []Name {
	return []Name{Blur, Brightness, Sepia, Grayscale, Border, CornerRadius, Shadow}
}

// Bounds is the documented inclusive range of a numeric effect parameter.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b Bounds) clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

func (b Bounds) rules() []validation.Rule {
	return []validation.Rule{validation.Min(b.Min), validation.Max(b.Max)}
}

var ranges = map[Name]map[string]Bounds{
	Blur:         {"value": {0, 100}},
	Brightness:   {"value": {0, 200}},
	Sepia:        {"value": {0, 100}},
	Grayscale:    {"value": {0, 100}},
	Border:       {"value": {0, 20}},
	CornerRadius: {"value": {0, 500}},
	Shadow: {
		"blur":    {0, 50},
		"offsetX": {-50, 50},
		"offsetY": {-50, 50},
		"opacity": {0, 100},
	},
}

// Range returns the bounds of param on effect name.
func Range(name Name, param string) (Bounds, bool) {
	b, ok := ranges[name][param]
	return b, ok
}

// Params lists the numeric parameters of an effect, sorted.
func Params(name Name) []string {
	out := make([]string, 0, len(ranges[name]))
	for p := range ranges[name] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func enabledField(set *models.EffectSet, name Name) *bool {
	switch name {
	case Blur:
		return &set.Blur.Enabled
	case Brightness:
		return &set.Brightness.Enabled
	case Sepia:
		return &set.Sepia.Enabled
	case Grayscale:
		return &set.Grayscale.Enabled
	case Border:
		return &set.Border.Enabled
	case CornerRadius:
		return &set.CornerRadius.Enabled
	case Shadow:
		return &set.Shadow.Enabled
	}
	return nil
}

func paramField(set *models.EffectSet, name Name, param string) *float64 {
	switch name {
	case Blur:
		return single(&set.Blur.Value, param)
	case Brightness:
		return single(&set.Brightness.Value, param)
	case Sepia:
		return single(&set.Sepia.Value, param)
	case Grayscale:
		return single(&set.Grayscale.Value, param)
	case Border:
		return single(&set.Border.Value, param)
	case CornerRadius:
		return single(&set.CornerRadius.Value, param)
	case Shadow:
		switch param {
		case "blur":
			return &set.Shadow.Blur
		case "offsetX":
			return &set.Shadow.OffsetX
		case "offsetY":
			return &set.Shadow.OffsetY
		case "opacity":
			return &set.Shadow.Opacity
		}
	}
	return nil
}

func single(v *float64, param string) *float64 {
	if param != "value" {
		return nil
	}
	return v
}

// Toggle returns set with the named effect switched on or off.
func Toggle(set models.EffectSet, name Name, enabled bool) (models.EffectSet, error) {
	f := enabledField(&set, name)
	if f == nil {
		return set, fmt.Errorf("%w: unknown effect %q", apperr.ErrValidation, name)
	}
	*f = enabled
	return set, nil
}

// SetParam returns set with one numeric parameter changed.
//
// Out-of-range values are clamped into the documented bounds. In that case
// the returned set is still usable and the error wraps apperr.ErrRangeWarning.
func SetParam(set models.EffectSet, name Name, param string, value float64) (models.EffectSet, error) {
	f := paramField(&set, name, param)
	if f == nil {
		return set, fmt.Errorf("%w: unknown parameter %s.%s", apperr.ErrValidation, name, param)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return set, fmt.Errorf("%w: %s.%s is not a finite number", apperr.ErrValidation, name, param)
	}
	b := ranges[name][param]
	if err := validation.Validate(value, b.rules()...); err != nil {
		*f = b.clamp(value)
		return set, fmt.Errorf("%w: %s.%s=%s clamped to %s: %v", apperr.ErrRangeWarning, name, param, num(value), num(*f), err)
	}
	*f = value
	return set, nil
}

// SetColor returns set with the color of a border or shadow changed. The
// color must be a hex triplet.
func SetColor(set models.EffectSet, name Name, color string) (models.EffectSet, error) {
	if _, err := colorful.Hex(color); err != nil {
		return set, fmt.Errorf("%w: invalid color %q", apperr.ErrValidation, color)
	}
	switch name {
	case Border:
		set.Border.Color = color
	case Shadow:
		set.Shadow.Color = color
	default:
		return set, fmt.Errorf("%w: effect %q has no color", apperr.ErrValidation, name)
	}
	return set, nil
}

// Validate reports every parameter of set that lies outside its bounds. A
// non-nil result wraps apperr.ErrRangeWarning; Compose accepts such sets
// unchanged.
func Validate(set models.EffectSet) error {
	errs := validation.Errors{}
	for name, params := range ranges {
		for param, b := range params {
			v := *paramField(&set, name, param)
			if err := validation.Validate(v, b.rules()...); err != nil {
				errs[string(name)+"."+param] = err
			}
		}
	}
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrRangeWarning, err)
	}
	return nil
}
