/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"goslip/internal/geom"
	"goslip/internal/layer"
)

// PDF draws onto a single PDF page one point per view pixel. Text uses the
// built-in Helvetica so nothing needs embedding.
type PDF struct {
	pdf    *gofpdf.Fpdf
	w, h   int
	images int
}

// NewPDF returns a w×h point page.
func NewPDF(w, h int, title string) *PDF {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(w), Ht: float64(h)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetCreator("goslip", true)
	pdf.AddPage()
	return &PDF{pdf: pdf, w: w, h: h}
}

func (p *PDF) Size() (int, int) { return p.w, p.h }

func (p *PDF) Image(img image.Image, e geom.Extent) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		p.pdf.SetError(fmt.Errorf("encode image: %w", err))
		return
	}
	p.images++
	name := fmt.Sprintf("img%d", p.images)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opt, &buf)
	p.pdf.ImageOptions(name, e.Left, e.Top, e.Width(), e.Height(), false, opt, 0, "")
}

func (p *PDF) Circle(c geom.Point, r float64, col layer.Color) {
	p.fillColor(col)
	p.pdf.Circle(c.X, c.Y, r, "F")
	p.pdf.SetAlpha(1, "Normal")
}

func (p *PDF) Polyline(pts []geom.Point, width float64, col layer.Color, closed bool) {
	if len(pts) < 2 {
		return
	}
	p.drawColor(col)
	p.pdf.SetLineWidth(width)
	if closed {
		p.pdf.Polygon(points(pts), "D")
	} else {
		for i := 1; i < len(pts); i++ {
			p.pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		}
	}
	p.pdf.SetAlpha(1, "Normal")
}

func (p *PDF) Polygon(pts []geom.Point, fill layer.Color) {
	if len(pts) < 3 {
		return
	}
	p.fillColor(fill)
	p.pdf.Polygon(points(pts), "F")
	p.pdf.SetAlpha(1, "Normal")
}

func (p *PDF) Text(s string, at geom.Point, f layer.Font, col layer.Color) {
	size := f.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	p.pdf.SetFont("Helvetica", "", size)
	p.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	// baseline sits roughly one ascent below the top of the line box
	p.pdf.Text(at.X, at.Y+size*0.8, s)
}

func (p *PDF) Rect(e geom.Extent, width float64, col layer.Color) {
	p.drawColor(col)
	p.pdf.SetLineWidth(width)
	p.pdf.Rect(e.Left, e.Top, e.Width(), e.Height(), "D")
	p.pdf.SetAlpha(1, "Normal")
}

func (p *PDF) fillColor(c layer.Color) {
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (p *PDF) drawColor(c layer.Color) {
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func points(pts []geom.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

// Write finishes the document and writes it to w.
func (p *PDF) Write(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
