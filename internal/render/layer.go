package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rook-computer/backdrop/internal/noise"
)

// Layer configures one blob. Saturation and Lightness are fractions in [0,1].
type Layer struct {
	Size       float64
	Hue        float64
	Saturation float64
	Lightness  float64
	Alpha      float64
	Speed      float64
}

var defaultLayers = [3]Layer{
	{Size: 0.9, Hue: 200, Saturation: 0.70, Lightness: 0.55, Alpha: 0.16, Speed: 0.3},
	{Size: 0.6, Hue: 260, Saturation: 0.80, Lightness: 0.48, Alpha: 0.12, Speed: 0.5},
	{Size: 0.4, Hue: 180, Saturation: 0.72, Lightness: 0.60, Alpha: 0.10, Speed: 0.7},
}

// DefaultLayers returns the three fixed blob layers.
func DefaultLayers() [3]Layer { return defaultLayers }

// Color returns the layer's hue at the given alpha.
func (l Layer) Color(alpha float64) gg.RGBA {
	c := colorful.Hsl(l.Hue, l.Saturation, l.Lightness).Clamped()
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// Blob is a radial gradient placement in logical pixels.
type Blob struct {
	X, Y   float64
	Radius float64
	Color  gg.RGBA
}

// BlobFor places layer index at the given phase inside a width×height area.
// X and Y use separate noise rows so the axes do not move in lockstep.
func BlobFor(l Layer, index int, phase, width, height float64, sampler noise.Sampler) Blob {
	t := phase * l.Speed
	li := float64(index)

	x := width * (0.25 + 0.5*sampler.Noise(t, li*10))
	y := height * (0.25 + 0.5*sampler.Noise(t+10, li*10+5))
	radius := math.Min(width, height) * l.Size * (0.7 + 0.3*sampler.Noise(t+20, li))
	if !(radius >= MinBlobRadius) {
		radius = MinBlobRadius
	}

	return Blob{
		X:      x,
		Y:      y,
		Radius: radius,
		Color:  l.Color(l.Alpha),
	}
}

// Blobs places every layer, in paint order.
func Blobs(layers []Layer, phase, width, height float64, sampler noise.Sampler) []Blob {
	out := make([]Blob, len(layers))
	for i, l := range layers {
		out[i] = BlobFor(l, i, phase, width, height, sampler)
	}
	return out
}
