// Package layout places overlay elements on a framebuffer frame.
package layout

import "image"

// Inset shrinks r by px on every side. An inset larger than r collapses it
// to an empty rectangle at its center.
func Inset(r image.Rectangle, px int) image.Rectangle {
	r = r.Canon()
	if px <= 0 {
		return r
	}
	if 2*px >= r.Dx() || 2*px >= r.Dy() {
		c := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		return image.Rectangle{Min: c, Max: c}
	}
	return image.Rect(r.Min.X+px, r.Min.Y+px, r.Max.X-px, r.Max.Y-px)
}

// CutBottom splits a band of height h off the bottom of r. h is clamped to
// [0, r.Dy()].
func CutBottom(r image.Rectangle, h int) (rest, bottom image.Rectangle) {
	r = r.Canon()
	y := r.Max.Y - clamp(h, 0, r.Dy())
	return image.Rect(r.Min.X, r.Min.Y, r.Max.X, y), image.Rect(r.Min.X, y, r.Max.X, r.Max.Y)
}

// CutRight splits a column of width w off the right of r. w is clamped to
// [0, r.Dx()].
func CutRight(r image.Rectangle, w int) (rest, right image.Rectangle) {
	r = r.Canon()
	x := r.Max.X - clamp(w, 0, r.Dx())
	return image.Rect(r.Min.X, r.Min.Y, x, r.Max.Y), image.Rect(x, r.Min.Y, r.Max.X, r.Max.Y)
}

// Square returns the bottom-right square of r with the given side, shrunk
// to fit r.
func Square(r image.Rectangle, side int) image.Rectangle {
	r = r.Canon()
	side = clamp(side, 0, min(r.Dx(), r.Dy()))
	return image.Rect(r.Max.X-side, r.Max.Y-side, r.Max.X, r.Max.Y)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
