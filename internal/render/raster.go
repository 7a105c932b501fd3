/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"goslip/internal/geom"
	"goslip/internal/layer"
)

// circleSegments is the number of edges used to approximate a disc.
const circleSegments = 32

// Raster draws into an RGBA image.
type Raster struct {
	Img   *image.RGBA
	Fonts *FontMeasurer
}

// NewRaster returns a w×h raster filled with bg.
func NewRaster(w, h int, bg layer.Color, fonts *FontMeasurer) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: bg.ToRGBA()}, image.Point{}, xdraw.Src)
	if fonts == nil {
		fonts = NewFontMeasurer()
	}
	return &Raster{Img: img, Fonts: fonts}
}

func (r *Raster) Size() (int, int) {
	b := r.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Image(img image.Image, e geom.Extent) {
	dst := image.Rect(
		int(math.Round(e.Left)), int(math.Round(e.Top)),
		int(math.Round(e.Right)), int(math.Round(e.Bottom)),
	)
	if dst.Empty() {
		return
	}
	if dst.Size() == img.Bounds().Size() {
		xdraw.Draw(r.Img, dst, img, img.Bounds().Min, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(r.Img, dst, img, img.Bounds(), xdraw.Over, nil)
}

func (r *Raster) fill(col layer.Color, path func(z *vector.Rasterizer)) {
	w, h := r.Size()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = xdraw.Over
	path(z)
	z.Draw(r.Img, r.Img.Bounds(), image.NewUniform(col.ToRGBA()), image.Point{})
}

func (r *Raster) Circle(c geom.Point, rad float64, col layer.Color) {
	if rad <= 0 {
		return
	}
	r.fill(col, func(z *vector.Rasterizer) {
		for i := 0; i <= circleSegments; i++ {
			a := 2 * math.Pi * float64(i) / circleSegments
			x, y := float32(c.X+rad*math.Cos(a)), float32(c.Y+rad*math.Sin(a))
			if i == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	})
}

func (r *Raster) Polygon(pts []geom.Point, fill layer.Color) {
	if len(pts) < 3 {
		return
	}
	r.fill(fill, func(z *vector.Rasterizer) {
		z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		for _, p := range pts[1:] {
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
	})
}

// Polyline strokes each segment as a quad of the given width. Joins are
// left square.
func (r *Raster) Polyline(pts []geom.Point, width float64, col layer.Color, closed bool) {
	if len(pts) < 2 {
		return
	}
	half := math.Max(width, 1) / 2
	segs := len(pts) - 1
	if closed {
		segs = len(pts)
	}
	r.fill(col, func(z *vector.Rasterizer) {
		for i := 0; i < segs; i++ {
			a, b := pts[i], pts[(i+1)%len(pts)]
			dx, dy := b.X-a.X, b.Y-a.Y
			n := math.Hypot(dx, dy)
			if n == 0 {
				continue
			}
			nx, ny := -dy/n*half, dx/n*half
			z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
			z.LineTo(float32(b.X+nx), float32(b.Y+ny))
			z.LineTo(float32(b.X-nx), float32(b.Y-ny))
			z.LineTo(float32(a.X-nx), float32(a.Y-ny))
			z.ClosePath()
		}
	})
}

func (r *Raster) Rect(e geom.Extent, width float64, col layer.Color) {
	r.Polyline([]geom.Point{
		geom.Pt(e.Left, e.Top), geom.Pt(e.Right, e.Top),
		geom.Pt(e.Right, e.Bottom), geom.Pt(e.Left, e.Bottom),
	}, width, col, true)
}

func (r *Raster) Text(s string, p geom.Point, f layer.Font, col layer.Color) {
	d := font.Drawer{
		Dst:  r.Img,
		Src:  image.NewUniform(color.RGBA(col)),
		Face: r.Fonts.Face(f),
		Dot:  fixed.P(int(math.Round(p.X)), int(math.Round(p.Y+r.Fonts.ascent(f)))),
	}
	d.DrawString(s)
}

// WritePNG encodes the raster as PNG.
func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.Img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
