package render

import (
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

var (
	qrDark  = color.RGBA{R: 8, G: 10, B: 14, A: 255}
	qrLight = color.RGBA{R: 232, G: 236, B: 242, A: 255}
)

// ControlQR encodes url as a square QR image of sizePx without a quiet
// zone, dark modules in the backdrop color. An empty url yields nil.
func ControlQR(url string, sizePx int) (image.Image, error) {
	if url == "" {
		return nil, nil
	}
	q, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	q.ForegroundColor = qrDark
	q.BackgroundColor = qrLight
	return q.Image(max(sizePx, 21)), nil
}
