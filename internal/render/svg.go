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
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"goslip/internal/geom"
	"goslip/internal/layer"
)

// SVG collects drawing calls as SVG elements. Bitmaps are embedded as PNG
// data URIs.
type SVG struct {
	w, h int
	buf  bytes.Buffer
	err  error
}

// NewSVG returns an empty w×h document.
func NewSVG(w, h int) *SVG { return &SVG{w: w, h: h} }

func (s *SVG) Size() (int, int) { return s.w, s.h }

func (s *SVG) wf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(&s.buf, format, args...)
}

func (s *SVG) Image(img image.Image, e geom.Extent) {
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		if s.err == nil {
			s.err = fmt.Errorf("encode image: %w", err)
		}
		return
	}
	s.wf("  <image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" href=\"data:image/png;base64,%s\"/>\n",
		e.Left, e.Top, e.Width(), e.Height(), base64.StdEncoding.EncodeToString(b.Bytes()))
}

func (s *SVG) Circle(c geom.Point, r float64, col layer.Color) {
	s.wf("  <circle cx=\"%g\" cy=\"%g\" r=\"%g\" %s/>\n", c.X, c.Y, r, paint("fill", col))
}

func (s *SVG) Polyline(pts []geom.Point, width float64, col layer.Color, closed bool) {
	el := "polyline"
	if closed {
		el = "polygon"
	}
	s.wf("  <%s points=\"%s\" fill=\"none\" %s stroke-width=\"%g\"/>\n", el, svgPoints(pts), paint("stroke", col), width)
}

func (s *SVG) Polygon(pts []geom.Point, fill layer.Color) {
	s.wf("  <polygon points=\"%s\" %s/>\n", svgPoints(pts), paint("fill", fill))
}

func (s *SVG) Text(str string, p geom.Point, f layer.Font, col layer.Color) {
	size := f.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	family := f.Name
	if family == "" {
		family = "sans-serif"
	}
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(str))
	s.wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" dominant-baseline=\"hanging\" %s>%s</text>\n",
		p.X, p.Y, family, size, paint("fill", col), esc.String())
}

func (s *SVG) Rect(e geom.Extent, width float64, col layer.Color) {
	s.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" %s stroke-width=\"%g\"/>\n",
		e.Left, e.Top, e.Width(), e.Height(), paint("stroke", col), width)
}

func paint(attr string, c layer.Color) string {
	out := fmt.Sprintf("%s=\"#%02x%02x%02x\"", attr, c.R, c.G, c.B)
	if c.A != 0xff {
		out += fmt.Sprintf(" %s-opacity=\"%.3g\"", attr, float64(c.A)/255)
	}
	return out
}

func svgPoints(pts []geom.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g,%g", p.X, p.Y)
	}
	return b.String()
}

// WriteTo writes the complete document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var doc bytes.Buffer
	fmt.Fprintf(&doc, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&doc, "<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", s.w, s.h, s.w, s.h)
	doc.Write(s.buf.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(w)
}
