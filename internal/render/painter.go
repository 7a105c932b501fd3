/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render draws a map's tiles and layers onto a Surface. The
// placement work is done by slipmap; a Surface only has to draw primitives
// in view pixels.
package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"goslip/internal/geom"
	"goslip/internal/layer"
	applog "goslip/internal/log"
	"goslip/internal/pex"
	"goslip/internal/slipmap"
)

// Surface is a drawing target in view pixels, origin top-left.
type Surface interface {
	Size() (w, h int)
	// Image scales img into e.
	Image(img image.Image, e geom.Extent)
	// Circle fills a disc.
	Circle(c geom.Point, r float64, col layer.Color)
	// Polyline strokes pts, joining the last point to the first when closed.
	Polyline(pts []geom.Point, width float64, col layer.Color, closed bool)
	// Polygon fills the ring pts.
	Polygon(pts []geom.Point, fill layer.Color)
	// Text draws s with its line box's top-left corner at p.
	Text(s string, p geom.Point, f layer.Font, col layer.Color)
	// Rect strokes the outline of e.
	Rect(e geom.Extent, width float64, col layer.Color)
}

// SelectionBoxColor is the outline colour of a box being dragged.
var SelectionBoxColor = layer.Color{R: 0x00, G: 0x80, B: 0xff, A: 0xff}

// Painter draws a map onto surfaces.
type Painter struct {
	Map *slipmap.Map
	log *slog.Logger
}

// NewPainter returns a painter for m.
func NewPainter(m *slipmap.Map) *Painter {
	return &Painter{Map: m, log: applog.WithComponent("render")}
}

// Paint draws the visible tiles and then every shown layer back to front.
// A tile that fails to load is skipped; the errors are joined and returned
// after everything else has been drawn.
func (p *Painter) Paint(s Surface) error {
	err := p.PaintTiles(s)
	for _, d := range p.Map.DrawList() {
		p.paintLayer(s, d.Layer, d.Placed)
	}
	return err
}

// PaintTiles draws only the tiles.
func (p *Painter) PaintTiles(s Surface) error {
	src := p.Map.Source()
	level := p.Map.Level()
	tl := p.Map.VisibleTiles()
	var errs []error
	for _, tp := range tl.Placements() {
		img, err := src.Tile(level, tp.Col, tp.Row)
		if err != nil {
			errs = append(errs, fmt.Errorf("tile %d/%d/%d: %w", level, tp.Col, tp.Row, err))
			continue
		}
		s.Image(img, geom.ExtentAt(tp.X, tp.Y, float64(tl.TileW), float64(tl.TileH)))
	}
	if len(errs) > 0 {
		p.log.Warn("tiles failed", slog.Int("count", len(errs)), slog.Int("level", level))
	}
	return errors.Join(errs...)
}

// PaintSelectionBox outlines the box a drag from a to b spans.
func (p *Painter) PaintSelectionBox(s Surface, a, b geom.Point) {
	s.Rect(geom.Canonicalize(a, b).Extent(), 1, SelectionBoxColor)
}

func (p *Painter) paintLayer(s Surface, l *layer.Layer, placed []pex.Placed) {
	for i, pl := range placed {
		if !pl.Visible() {
			continue
		}
		switch r := l.Records[i].(type) {
		case layer.PointRecord:
			if pl.Extent != nil {
				s.Circle(centre(*pl.Extent), r.Radius, r.Color)
			}
		case layer.ImageRecord:
			if pl.Extent != nil && r.Bitmap != nil {
				s.Image(r.Bitmap, *pl.Extent)
			}
			if pl.Marker != nil {
				s.Circle(*pl.Point, r.Radius, r.Color)
			}
		case layer.TextRecord:
			if pl.Extent != nil {
				s.Text(r.Text, geom.Pt(pl.Extent.Left, pl.Extent.Top), r.Font, r.TextColor)
			}
			if pl.Marker != nil {
				s.Circle(*pl.Point, r.Radius, r.Color)
			}
		case layer.PolygonRecord:
			if pl.Vertices == nil {
				continue
			}
			if r.Filled {
				s.Polygon(pl.Vertices, r.FillColor)
			}
			if r.Width > 0 {
				s.Polyline(pl.Vertices, r.Width, r.Color, r.Closed || r.Filled)
			}
		}
	}
}

func centre(e geom.Extent) geom.Point {
	return geom.Pt((e.Left+e.Right)/2, (e.Top+e.Bottom)/2)
}
