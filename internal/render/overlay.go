package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/backdrop/internal/assets"
	"github.com/rook-computer/backdrop/internal/render/layout"
)

const (
	overlayMarginPx  = 24
	overlayFontSize  = 14
	overlayQRSizePx  = 160
	overlayQRPadding = 8
)

// Overlay draws a status line and, optionally, a QR code pointing at the
// control API on top of presented framebuffer frames.
type Overlay struct {
	Logger Logger
	face   font.Face

	mu    sync.Mutex
	qr    image.Image
	qrURL string
}

// NewOverlay loads the overlay font. A font failure falls back to basicfont.
func NewOverlay(logger Logger) *Overlay {
	if logger == nil {
		logger = noopLogger{}
	}
	o := &Overlay{Logger: logger, face: basicfont.Face7x13}
	tt, err := truetype.Parse(assets.MonoTTF)
	if err != nil {
		logger.Errorf("overlay", "truetype parse failed, using basicfont: %v", err)
		return o
	}
	o.face = truetype.NewFace(tt, &truetype.Options{Size: overlayFontSize, DPI: 96, Hinting: font.HintingFull})
	return o
}

// SetControlURL renders a QR code for url. An empty url removes it.
func (o *Overlay) SetControlURL(url string) error {
	img, err := ControlQR(url, overlayQRSizePx)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.qrURL = url
	o.qr = img
	if err != nil {
		return fmt.Errorf("qr for %q: %w", url, err)
	}
	return nil
}

// ControlURL is the url currently encoded in the QR code.
func (o *Overlay) ControlURL() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.qrURL
}

// StatusLine formats the frame readout drawn by the overlay.
func StatusLine(f Frame) string {
	d := f.Dimensions
	line := fmt.Sprintf("frame %d  %dx%d@%gx  phase %.3f", f.Number, d.BufferWidth, d.BufferHeight, d.DPR, f.Phase)
	if f.Delta > 0 {
		line += fmt.Sprintf("  %.1f fps", 1/f.Delta.Seconds())
	}
	return line
}

// Draw paints the overlay into dst.
func (o *Overlay) Draw(dst *image.RGBA, f Frame) {
	o.mu.Lock()
	qr := o.qr
	o.mu.Unlock()

	area := layout.Inset(dst.Bounds(), overlayMarginPx)
	barHeight := o.face.Metrics().Height.Ceil()
	if qr != nil && overlayQRSizePx > barHeight {
		barHeight = overlayQRSizePx
	}
	_, bar := layout.CutBottom(area, barHeight)

	textRect := bar
	if qr != nil {
		var qrArea image.Rectangle
		textRect, qrArea = layout.CutRight(bar, overlayQRSizePx)
		drawQR(dst, qr, layout.Square(qrArea, overlayQRSizePx))
	}
	o.drawText(dst, StatusLine(f), textRect)
}

func drawQR(dst *image.RGBA, qr image.Image, rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	// Quiet zone in the light module color.
	draw.Draw(dst, rect, image.NewUniform(qrLight), image.Point{}, draw.Src)
	inner := layout.Inset(rect, overlayQRPadding)
	xdraw.NearestNeighbor.Scale(dst, inner, qr, qr.Bounds(), xdraw.Over, nil)
}

func (o *Overlay) drawText(dst *image.RGBA, text string, rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	descent := o.face.Metrics().Descent.Ceil()
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: Foreground.R, G: Foreground.G, B: Foreground.B, A: 0xFF}),
		Face: o.face,
		Dot:  fixed.P(rect.Min.X, rect.Max.Y-descent),
	}
	drawer.DrawString(text)
}
