package models

// Effect is a single-valued effect descriptor.
type Effect struct {
	Enabled bool    `json:"enabled"`
	Value   float64 `json:"value"`
}

// BorderEffect draws a solid outline around the element.
type BorderEffect struct {
	Enabled bool    `json:"enabled"`
	Value   float64 `json:"value"`
	Color   string  `json:"color"`
}

// ShadowEffect casts a drop shadow.
type ShadowEffect struct {
	Enabled bool    `json:"enabled"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
}

// EffectSet is the declarative source of truth for an element's visual
// effects. Renderers never read it directly; they read the style derived
// from it.
type EffectSet struct {
	Blur         Effect       `json:"blur"`
	Brightness   Effect       `json:"brightness"`
	Sepia        Effect       `json:"sepia"`
	Grayscale    Effect       `json:"grayscale"`
	Border       BorderEffect `json:"border"`
	CornerRadius Effect       `json:"cornerRadius"`
	Shadow       ShadowEffect `json:"shadow"`
}

// DefaultEffects returns an effect set with every effect disabled and the
// parameters an editor shows when an effect is first switched on.
func DefaultEffects() EffectSet {
	return EffectSet{
		Blur:         Effect{Value: 0},
		Brightness:   Effect{Value: 100},
		Sepia:        Effect{Value: 0},
		Grayscale:    Effect{Value: 0},
		Border:       BorderEffect{Value: 2, Color: "#000000"},
		CornerRadius: Effect{Value: 0},
		Shadow:       ShadowEffect{Blur: 10, OffsetX: 4, OffsetY: 4, Opacity: 50, Color: "#000000"},
	}
}

// IsZero reports whether s is the zero EffectSet (no parameters at all).
func (s EffectSet) IsZero() bool {
	return s == EffectSet{}
}
