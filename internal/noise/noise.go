// Package noise implements a tiled 2D value noise over a fixed grid of
// seeded pseudo-random samples.
package noise

import "math"

const (
	// GridSize is the number of samples and the tile period on both axes.
	GridSize = 256

	// DefaultSeed seeds the grid used by the backdrop.
	DefaultSeed = 1337

	rowStride = 13
)

// Sampler maps a 2D coordinate to a value in [0,1).
type Sampler interface {
	Noise(x, y float64) float64
}

// Grid holds GridSize samples in [0,1). It is immutable after NewGrid.
type Grid struct {
	values [GridSize]float64
}

// NewGrid fills a grid from Mulberry32(seed) in generation order.
func NewGrid(seed uint32) *Grid {
	rng := NewMulberry32(seed)
	g := &Grid{}
	for i := range g.values {
		g.values[i] = rng.Float64()
	}
	return g
}

// Values returns a copy of the samples in generation order.
func (g *Grid) Values() []float64 {
	out := make([]float64, GridSize)
	copy(out, g.values[:])
	return out
}

// At returns the sample for integer grid coordinates, wrapping mod 256.
func (g *Grid) At(xi, yi int) float64 {
	return g.values[(xi+yi*rowStride)&(GridSize-1)]
}

// Noise interpolates the four surrounding samples with a smoothstep fade.
func (g *Grid) Noise(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	// Reduce before converting so huge coordinates keep the period.
	xi, yi := int(math.Mod(fx, GridSize)), int(math.Mod(fy, GridSize))
	xf, yf := x-fx, y-fy

	a := g.At(xi, yi)
	b := g.At(xi+1, yi)
	c := g.At(xi, yi+1)
	d := g.At(xi+1, yi+1)

	u, v := Fade(xf), Fade(yf)
	return Lerp(Lerp(a, b, u), Lerp(c, d, u), v)
}

// Fade is t²(3−2t): zero slope at both ends.
func Fade(t float64) float64 { return t * t * (3 - 2*t) }

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
