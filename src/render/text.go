package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawTextBottomLeft stamps a small hint string near the bottom-left with a
// translucent backing for readability, same treatment as the status hints.
func drawTextBottomLeft(rgba *image.RGBA, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b := rgba.Bounds()
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
}

// drawTextTopRight stamps the watermark in the top-right corner, no backing.
func drawTextTopRight(rgba *image.RGBA, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	b := rgba.Bounds()
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 120, G: 120, B: 120, A: 200})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Max.X - tw - 8
	y := b.Min.Y + face.Metrics().Ascent.Ceil() + 4
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
}

// drawCenteredText draws multi-line text centered horizontally on cx with
// the first baseline at cy. Cycle labels use it inside the shaded spans.
func drawCenteredText(rgba *image.RGBA, text string, cx, cy int) {
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255})
	lineH := face.Metrics().Height.Ceil()
	for i, line := range strings.Split(text, "\n") {
		dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
		tw := dr.MeasureString(line).Ceil()
		dr.Dot = fixed.Point26_6{X: fixed.I(cx - tw/2), Y: fixed.I(cy + i*lineH)}
		dr.DrawString(line)
	}
}
