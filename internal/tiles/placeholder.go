/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tiles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder draws a checkered stand-in tile labelled with its index.
type Placeholder struct {
	Light, Dark color.RGBA
	Grid        color.RGBA
	NoLabel     bool
}

var (
	defaultLight = color.RGBA{R: 0xee, G: 0xee, B: 0xe8, A: 0xff}
	defaultDark  = color.RGBA{R: 0xdd, G: 0xdd, B: 0xd5, A: 0xff}
	defaultGrid  = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
)

// Render returns a w×h placeholder for tile level/col/row.
func (p Placeholder) Render(w, h, level, col, row int) *image.RGBA {
	light, dark, grid := p.Light, p.Dark, p.Grid
	if light.A == 0 {
		light = defaultLight
	}
	if dark.A == 0 {
		dark = defaultDark
	}
	if grid.A == 0 {
		grid = defaultGrid
	}
	bg := light
	if (col+row)%2 == 1 {
		bg = dark
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	for x := 0; x < w; x++ {
		img.SetRGBA(x, 0, grid)
	}
	for y := 0; y < h; y++ {
		img.SetRGBA(0, y, grid)
	}
	if !p.NoLabel && w > 40 && h > 20 {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(grid),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, 14),
		}
		d.DrawString(fmt.Sprintf("%d/%d/%d", level, col, row))
	}
	return img
}
