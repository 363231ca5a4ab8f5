// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Glyph is one user-defined character cell: eight rows of five pixels, top
// row first, each row in the low five bits of its byte. The leftmost pixel
// is the highest of the five bits.
type Glyph [8]byte

// GlyphFromImage samples an image into a Glyph. Images that are not
// exactly 5x8 are scaled first with nearest neighbor interpolation, so
// small pixel art keeps its hard edges. Pixels darker than mid gray become
// lit segments.
func GlyphFromImage(img image.Image) Glyph {
	bounds := img.Bounds()
	if bounds.Dx() != 5 || bounds.Dy() != 8 {
		cell := image.NewGray(image.Rect(0, 0, 5, 8))
		xdraw.NearestNeighbor.Scale(cell, cell.Bounds(), img, bounds, xdraw.Src, nil)
		img = cell
		bounds = cell.Bounds()
	}
	var g Glyph
	for y := 0; y < 8; y++ {
		var row byte
		for x := 0; x < 5; x++ {
			c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			if c.Y < 0x80 {
				row |= 1 << uint(4-x)
			}
		}
		g[y] = row
	}
	return g
}

// String renders the glyph as eight rows of five characters, '#' for lit
// segments and '.' for dark ones.
func (g Glyph) String() string {
	var b strings.Builder
	for y, row := range g {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 4; x >= 0; x-- {
			if row&(1<<uint(x)) != 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
