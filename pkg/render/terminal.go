package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/image/draw"
)

// Draw scales the framebuffer into area and draws it as half-block cells:
// each terminal row shows two image rows, with ▀ taking the top color as
// foreground and the bottom color as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols, rows := area.Dx(), area.Dy()
	if cols <= 0 || rows <= 0 || fb.Width == 0 || fb.Height == 0 {
		return
	}

	// Keep the aspect ratio; a cell is two image pixels tall.
	scale := min(float64(cols)/float64(fb.Width), float64(rows*2)/float64(fb.Height))
	w := max(1, int(float64(fb.Width)*scale))
	h := max(2, int(float64(fb.Height)*scale))

	src := fb.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	offX := area.Min.X + (cols-w)/2
	offY := area.Min.Y + (rows-h/2)/2
	for row := 0; row*2 < h; row++ {
		for col := range w {
			top := dst.RGBAAt(col, row*2)
			bot := dst.RGBAAt(col, row*2+1)
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(top),
					Bg: rgbaToColor(bot),
				},
			}
			scr.SetCell(offX+col, offY+row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
