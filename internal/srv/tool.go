package srv

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/bitmapfont/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Bitmap font glyphs are 6 pixels wide.
const glyphWidth = 6

var (
	whiteColor  = color.RGBA{255, 255, 255, 255}
	greyColor   = color.RGBA{200, 200, 200, 255}
	greenColor  = color.RGBA{0, 255, 0, 255}
	redColor    = color.RGBA{255, 0, 0, 255}
	blackColor  = color.RGBA{0, 0, 0, 255}
)

func AddLabel(img *image.RGBA, x, y int, col color.Color, label string) {

	point := fixed.Point26_6{X: fixed.Int26_6((x + 4) * 64), Y: fixed.Int26_6(y * 64)}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: bitmapfont.Face,
		Dot:  point,
	}
	d.DrawString(label)
}

func AddCenteredLabel(img *image.RGBA, y int, col color.Color, label string) {
	AddLabel(img, (panelSize-len(label)*glyphWidth)/2, y, col, label)
}

// AddGauge draws a one pixel border around r and fills it proportionally to
// ratio (0..1).
func AddGauge(img *image.RGBA, r image.Rectangle, ratio float64) {
	white := &image.Uniform{whiteColor}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), white, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), white, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), white, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), white, image.Point{}, draw.Src)

	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	innerWidth := int(float64(r.Dx()-4) * ratio)
	draw.Draw(img,
		image.Rect(r.Min.X+2, r.Min.Y+2, r.Min.X+2+innerWidth, r.Max.Y-2),
		white, image.Point{}, draw.Src)
}
