// Package effects derives the renderable style of an element from its
// declarative effect set.
//
// Compose is a pure function of the EffectSet: no hidden state, no clamping,
// no dependency on a previously derived style. Range enforcement lives in the
// setters (see params.go).
package effects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/starford/postframe/internal/models"
)

// Style keys written by the compositor. Any other key in an element's
// StyleMap belongs to the caller and is preserved by Apply.
const (
	KeyFilter       = "filter"
	KeyBorder       = "border"
	KeyBorderRadius = "borderRadius"
	KeyBoxShadow    = "boxShadow"
)

var ownedKeys = []string{KeyFilter, KeyBorder, KeyBorderRadius, KeyBoxShadow}

// DerivedStyle is the composed rendering description of an EffectSet.
// Empty fields mean the property is not set.
type DerivedStyle struct {
	Filter       string `json:"filter,omitempty"`
	Border       string `json:"border,omitempty"`
	BorderRadius string `json:"borderRadius,omitempty"`
	BoxShadow    string `json:"boxShadow,omitempty"`
}

// Compose derives the full style from every enabled effect in set.
// blur, brightness, sepia and grayscale share one filter chain in that order.
func Compose(set models.EffectSet) DerivedStyle {
	var d DerivedStyle

	var chain []string
	if set.Blur.Enabled {
		chain = append(chain, "blur("+px(set.Blur.Value)+")")
	}
	if set.Brightness.Enabled {
		chain = append(chain, "brightness("+pct(set.Brightness.Value)+")")
	}
	if set.Sepia.Enabled {
		chain = append(chain, "sepia("+pct(set.Sepia.Value)+")")
	}
	if set.Grayscale.Enabled {
		chain = append(chain, "grayscale("+pct(set.Grayscale.Value)+")")
	}
	d.Filter = strings.Join(chain, " ")

	if set.Border.Enabled {
		d.Border = px(set.Border.Value) + " solid " + set.Border.Color
	}
	if set.CornerRadius.Enabled {
		d.BorderRadius = px(set.CornerRadius.Value)
	}
	if s := set.Shadow; s.Enabled {
		d.BoxShadow = strings.Join([]string{
			px(s.OffsetX), px(s.OffsetY), px(s.Blur), rgba(s.Color, s.Opacity),
		}, " ")
	}
	return d
}

// StyleMap returns the non-empty properties of d as a StyleMap.
func (d DerivedStyle) StyleMap() models.StyleMap {
	out := models.StyleMap{}
	for k, v := range map[string]string{
		KeyFilter:       d.Filter,
		KeyBorder:       d.Border,
		KeyBorderRadius: d.BorderRadius,
		KeyBoxShadow:    d.BoxShadow,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Apply returns a copy of styles with every compositor-owned key replaced by
// the values in d. Keys the compositor does not own are kept.
func (d DerivedStyle) Apply(styles models.StyleMap) models.StyleMap {
	out := styles.Clone()
	if out == nil {
		out = models.StyleMap{}
	}
	for _, k := range ownedKeys {
		delete(out, k)
	}
	for k, v := range d.StyleMap() {
		out[k] = v
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

func pct(v float64) string {
	return num(v) + "%"
}

// rgba folds an opacity percentage into a hex color. Colors that are not
// hex triplets are passed through untouched.
func rgba(hex string, opacity float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(opacity/100, 'f', 2, 64))
}
