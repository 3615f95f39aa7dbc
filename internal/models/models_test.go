package models

import (
	"errors"
	"testing"

	"github.com/starford/postframe/internal/apperr"
)

func sampleDocument() Document {
	d := NewDocument()
	d.Background = &Background{Type: BackgroundColor, Color: "#000"}
	d.Elements = []Element{{
		ID:      "e1",
		Type:    ElementImage,
		Size:    &Size{Width: 10, Height: 20},
		Visible: true,
		Styles:  StyleMap{"filter": "blur(1px)"},
	}}
	d.Layers = []Layer{{ID: "l1", ElementID: "e1", Type: ElementImage, Visible: true}}
	return d
}

func TestDocumentCloneIsIndependent(t *testing.T) {
	d := sampleDocument()
	c := d.Clone()

	c.Canvas.Style["backgroundColor"] = "#abc"
	c.Background.Color = "#fff"
	c.Elements[0].Size.Width = 99
	c.Elements[0].Styles["filter"] = "none"
	c.Layers[0].Visible = false

	if d.Canvas.Style["backgroundColor"] != DefaultCanvasColor {
		t.Error("canvas style shared")
	}
	if d.Background.Color != "#000" {
		t.Error("background shared")
	}
	if d.Elements[0].Size.Width != 10 {
		t.Error("element size shared")
	}
	if d.Elements[0].Styles["filter"] != "blur(1px)" {
		t.Error("element styles shared")
	}
	if !d.Layers[0].Visible {
		t.Error("layers shared")
	}
}

func TestDocumentValidate(t *testing.T) {
	if err := sampleDocument().Validate(); err != nil {
		t.Fatalf("valid document: %v", err)
	}

	cases := map[string]func(*Document){
		"zero width":     func(d *Document) { d.Canvas.Width = 0 },
		"negative":       func(d *Document) { d.Canvas.Height = -3 },
		"missing id":     func(d *Document) { d.Elements[0].ID = "" },
		"bad type":       func(d *Document) { d.Elements[0].Type = "video" },
		"missing layer":  func(d *Document) { d.Layers = nil },
		"orphan layer":   func(d *Document) { d.Layers[0].ElementID = "other" },
		"layer mismatch": func(d *Document) { d.Layers[0].Locked = true },
		"duplicate id": func(d *Document) {
			d.Elements = append(d.Elements, d.Elements[0])
			d.Layers = append(d.Layers, Layer{ID: "l2", ElementID: "e1", Visible: true})
		},
	}
	for name, mutate := range cases {
		d := sampleDocument()
		mutate(&d)
		if err := d.Validate(); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: Validate = %v, want ErrValidation", name, err)
		}
	}
}

func TestNewBackground(t *testing.T) {
	bg, err := NewBackground(BackgroundImage, "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if bg.Src != "a.png" || bg.Color != "" || bg.Gradient != "" || !bg.IsMedia() {
		t.Errorf("image background = %+v", bg)
	}
	if bg.Value() != "a.png" {
		t.Errorf("Value = %q", bg.Value())
	}

	bg, _ = NewBackground(BackgroundGradient, "linear-gradient(red, blue)")
	if bg.IsMedia() || bg.Value() != "linear-gradient(red, blue)" || bg.Src != "" {
		t.Errorf("gradient background = %+v", bg)
	}

	if _, err := NewBackground("plaid", "x"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := NewBackground(BackgroundColor, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty value: %v", err)
	}
}

func TestDefaultEffectsAllDisabled(t *testing.T) {
	e := DefaultEffects()
	if e.Blur.Enabled || e.Brightness.Enabled || e.Sepia.Enabled || e.Grayscale.Enabled ||
		e.Border.Enabled || e.CornerRadius.Enabled || e.Shadow.Enabled {
		t.Error("default effect enabled")
	}
	if e.IsZero() || !(EffectSet{}).IsZero() {
		t.Error("IsZero mismatch")
	}
}
