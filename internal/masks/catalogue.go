// Package masks provides the catalogue of geometric outlines used to clip
// image elements and to draw shape elements.
//
// Every generator is deterministic: the same id and box always yield the same
// outline, and therefore the same clipped pixels.
package masks

import (
	"image"

	"github.com/fogleman/gg"
)

// Fallback is the mask applied when an unknown id is requested.
const Fallback = "circle"

// Catalogue maps mask ids to outline generators.
type Catalogue struct {
	gens map[string]Generator
	ids  []string
}

// NewCatalogue returns a catalogue with every built-in mask registered.
func NewCatalogue() *Catalogue {
	c := &Catalogue{gens: make(map[string]Generator)}
	c.Register("circle", circle)
	c.Register("square", square)
	c.Register("star", starOf(5, 0.382))
	c.Register("triangle", triangle)
	c.Register("triangle-bottom-left", triangleBottomLeft)
	c.Register("diamond", diamond)
	c.Register("diamond-tall", diamondTall)
	c.Register("pentagon", pentagon)
	c.Register("hexagon", hexagon)
	c.Register("speech-bubble", speechBubble)
	c.Register("cross", cross)
	c.Register("oval", oval)
	c.Register("cloud", cloud)
	c.Register("arrow-left", arrow("left"))
	c.Register("arrow-right", arrow("right"))
	c.Register("arrow-up", arrow("up"))
	c.Register("arrow-down", arrow("down"))
	c.Register("flower", flowerOf(5))
	c.Register("flower-eight", flowerOf(8))
	c.Register("asterisk", starOf(6, 0.3))
	c.Register("flag", flag)
	c.Register("half-circle", halfCircle)
	c.Register("cylinder", cylinder)
	c.Register("rounded-rectangle", roundedRectangle)
	c.Register("teardrop", teardrop)
	c.Register("droplet", droplet)
	c.Register("burst", starOf(16, 0.78))
	c.Register("wave", wave)
	return c
}

// Register adds or replaces a generator.
func (c *Catalogue) Register(id string, g Generator) {
	if _, ok := c.gens[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.gens[id] = g
}

// IDs returns the registered ids in registration order.
func (c *Catalogue) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Has reports whether id is registered.
func (c *Catalogue) Has(id string) bool {
	_, ok := c.gens[id]
	return ok
}

// Resolve returns id if registered, Fallback otherwise.
func (c *Catalogue) Resolve(id string) string {
	if c.Has(id) {
		return id
	}
	return Fallback
}

// Outline generates the outline for id in a w×h box. It returns the id that
// was actually used.
func (c *Catalogue) Outline(id string, w, h float64) (Outline, string) {
	id = c.Resolve(id)
	return c.gens[id](w, h), id
}

// Clip returns a copy of src where only the pixels inside the outline of id
// stay opaque. The outline is sized to src's bounds.
func (c *Catalogue) Clip(src image.Image, id string) (image.Image, string) {
	b := src.Bounds()
	o, used := c.Outline(id, float64(b.Dx()), float64(b.Dy()))

	dc := gg.NewContext(b.Dx(), b.Dy())
	o.Trace(dc)
	dc.Clip()
	dc.DrawImage(src, -b.Min.X, -b.Min.Y)
	return dc.Image(), used
}

// Preview renders the outline of id filled with black on a transparent
// size×size square, for mask pickers.
func (c *Catalogue) Preview(id string, size int) (image.Image, string) {
	o, used := c.Outline(id, float64(size), float64(size))
	dc := gg.NewContext(size, size)
	o.Trace(dc)
	dc.SetRGB(0, 0, 0)
	dc.Fill()
	return dc.Image(), used
}
