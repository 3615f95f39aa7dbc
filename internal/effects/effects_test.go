package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/models"
)

func TestComposeNothingEnabled(t *testing.T) {
	d := Compose(models.DefaultEffects())
	if d != (DerivedStyle{}) {
		t.Errorf("derived = %+v, want empty", d)
	}
	if len(d.StyleMap()) != 0 {
		t.Errorf("style map = %v, want empty", d.StyleMap())
	}
}

func TestComposeFilterChainOrder(t *testing.T) {
	set := models.DefaultEffects()
	set.Grayscale = models.Effect{Enabled: true, Value: 30}
	set.Blur = models.Effect{Enabled: true, Value: 4}
	set.Brightness = models.Effect{Enabled: true, Value: 120}
	set.Sepia = models.Effect{Enabled: true, Value: 12.5}

	d := Compose(set)
	want := "blur(4px) brightness(120%) sepia(12.5%) grayscale(30%)"
	if d.Filter != want {
		t.Errorf("filter = %q, want %q", d.Filter, want)
	}
}

func TestComposeIndependentProperties(t *testing.T) {
	set := models.DefaultEffects()
	set.Border = models.BorderEffect{Enabled: true, Value: 3, Color: "#ff0000"}
	set.CornerRadius = models.Effect{Enabled: true, Value: 24}
	set.Shadow = models.ShadowEffect{Enabled: true, Blur: 10, OffsetX: -4, OffsetY: 6, Opacity: 50, Color: "#000000"}

	d := Compose(set)
	if d.Filter != "" {
		t.Errorf("filter = %q, want empty", d.Filter)
	}
	if d.Border != "3px solid #ff0000" {
		t.Errorf("border = %q", d.Border)
	}
	if d.BorderRadius != "24px" {
		t.Errorf("borderRadius = %q", d.BorderRadius)
	}
	if d.BoxShadow != "-4px 6px 10px rgba(0, 0, 0, 0.50)" {
		t.Errorf("boxShadow = %q", d.BoxShadow)
	}
}

func TestComposeDoesNotClamp(t *testing.T) {
	set := models.DefaultEffects()
	set.Blur = models.Effect{Enabled: true, Value: 250}
	if got := Compose(set).Filter; got != "blur(250px)" {
		t.Errorf("filter = %q, want unclamped blur(250px)", got)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	set := models.DefaultEffects()
	set.Sepia = models.Effect{Enabled: true, Value: 40}
	set.Shadow.Enabled = true
	a := Compose(set)
	b := Compose(set)
	if a != b {
		t.Errorf("compose not deterministic: %+v vs %+v", a, b)
	}
}

func TestToggleRecomputesFromFullSet(t *testing.T) {
	set := models.DefaultEffects()
	set, _ = Toggle(set, Blur, true)
	set, _ = SetParam(set, Blur, "value", 5)
	set, _ = Toggle(set, Sepia, true)
	set, _ = SetParam(set, Sepia, "value", 60)

	if got := Compose(set).Filter; got != "blur(5px) sepia(60%)" {
		t.Fatalf("filter = %q", got)
	}

	set, err := Toggle(set, Blur, false)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := Compose(set).Filter; got != "sepia(60%)" {
		t.Errorf("filter after disabling blur = %q, want sepia(60%%)", got)
	}
}

func TestToggleUnknownEffect(t *testing.T) {
	_, err := Toggle(models.DefaultEffects(), Name("glow"), true)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSetParamClampsOutOfRange(t *testing.T) {
	set, err := SetParam(models.DefaultEffects(), Brightness, "value", 350)
	if !errors.Is(err, apperr.ErrRangeWarning) {
		t.Fatalf("err = %v, want ErrRangeWarning", err)
	}
	if set.Brightness.Value != 200 {
		t.Errorf("brightness = %v, want clamped 200", set.Brightness.Value)
	}

	set, err = SetParam(set, Shadow, "offsetX", -80)
	if !errors.Is(err, apperr.ErrRangeWarning) {
		t.Fatalf("err = %v, want ErrRangeWarning", err)
	}
	if set.Shadow.OffsetX != -50 {
		t.Errorf("offsetX = %v, want -50", set.Shadow.OffsetX)
	}
}

func TestSetParamInRange(t *testing.T) {
	set, err := SetParam(models.DefaultEffects(), Shadow, "opacity", 75)
	if err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if set.Shadow.Opacity != 75 {
		t.Errorf("opacity = %v", set.Shadow.Opacity)
	}
}

func TestSetParamUnknown(t *testing.T) {
	if _, err := SetParam(models.DefaultEffects(), Blur, "radius", 1); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSetParamRejectsNonFinite(t *testing.T) {
	set := models.DefaultEffects()
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := SetParam(set, Blur, "value", v)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("SetParam(%v) err = %v, want ErrValidation", v, err)
		}
		if got.Blur.Value != set.Blur.Value {
			t.Errorf("SetParam(%v) stored %v", v, got.Blur.Value)
		}
	}
}

func TestSetColor(t *testing.T) {
	set, err := SetColor(models.DefaultEffects(), Border, "#00ff00")
	if err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if set.Border.Color != "#00ff00" {
		t.Errorf("color = %q", set.Border.Color)
	}
	if _, err := SetColor(set, Blur, "#00ff00"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blur color err = %v", err)
	}
	if _, err := SetColor(set, Shadow, "not-a-color"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("invalid color err = %v", err)
	}
}

func TestValidateReportsOutOfRange(t *testing.T) {
	if err := Validate(models.DefaultEffects()); err != nil {
		t.Fatalf("defaults should be in range: %v", err)
	}
	set := models.DefaultEffects()
	set.CornerRadius.Value = 900
	if err := Validate(set); !errors.Is(err, apperr.ErrRangeWarning) {
		t.Errorf("err = %v, want ErrRangeWarning", err)
	}
}

func TestApplyKeepsForeignKeys(t *testing.T) {
	styles := models.StyleMap{"color": "#111111", KeyFilter: "blur(9px)"}
	set := models.DefaultEffects()
	set.CornerRadius = models.Effect{Enabled: true, Value: 8}

	out := Compose(set).Apply(styles)
	if out["color"] != "#111111" {
		t.Errorf("foreign key lost: %v", out)
	}
	if _, ok := out[KeyFilter]; ok {
		t.Errorf("stale filter kept: %v", out)
	}
	if out[KeyBorderRadius] != "8px" {
		t.Errorf("borderRadius = %q", out[KeyBorderRadius])
	}
	if styles[KeyFilter] != "blur(9px)" {
		t.Error("Apply mutated its input")
	}
}
