/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pex places annotation records in view coordinates: an anchor
// point, a bounding extent and a visibility verdict for the current viewport.
//
// Off-view geometry is normal while panning, so nothing here returns an
// error; invisible parts come back nil.
package pex

import (
	"slices"
	"unicode/utf8"

	"github.com/paulmach/orb"

	"goslip/internal/geom"
	"goslip/internal/layer"
	"goslip/internal/placement"
	"goslip/internal/view"
)

// TextMeasurer reports the pixel size of a string drawn in a font.
type TextMeasurer interface {
	MeasureText(text string, font layer.Font) (w, h float64)
}

// FixedMeasurer assumes every glyph has the same advance. It needs no font
// files, so tests and headless callers get stable sizes.
type FixedMeasurer struct {
	Advance float64 // glyph advance per point of font size, 0.6 when zero
	Line    float64 // line height per point of font size, 1.2 when zero
}

func (m FixedMeasurer) MeasureText(text string, font layer.Font) (float64, float64) {
	adv, line := m.Advance, m.Line
	if adv <= 0 {
		adv = 0.6
	}
	if line <= 0 {
		line = 1.2
	}
	return float64(utf8.RuneCountInString(text)) * font.Size * adv, font.Size * line
}

// Placed is a record positioned in the current view.
type Placed struct {
	// Point is the anchor of a point record or the hotspot of an image or
	// text record. Nil when it lies outside the view.
	Point *geom.Point
	// Extent is the drawable box: the radius box of a point, the image or
	// text box, the bounding box of a polygon. Nil when wholly off view.
	Extent *geom.Extent
	// Marker is the radius box around an image or text hotspot. Nil when the
	// marker radius is 0 or the hotspot is off view.
	Marker *geom.Extent
	// Vertices are a polygon's placed vertices, nil when none is on view.
	Vertices []geom.Point
}

// Visible reports whether anything of the record is on view.
func (p Placed) Visible() bool {
	return p.Point != nil || p.Extent != nil || p.Vertices != nil
}

// Engine places records against a transformer's current viewport.
type Engine struct {
	T    *view.Transformer
	Text TextMeasurer
}

// New returns an engine; a nil measurer falls back to FixedMeasurer.
func New(t *view.Transformer, m TextMeasurer) *Engine {
	if m == nil {
		m = FixedMeasurer{}
	}
	return &Engine{T: t, Text: m}
}

func (e *Engine) measurer() TextMeasurer {
	if e.Text == nil {
		return FixedMeasurer{}
	}
	return e.Text
}

// frame returns the record's view position and the placement frame for its layer.
func (e *Engine) frame(mapRel bool, pos orb.Point) (geom.Point, float64, float64) {
	if mapRel {
		return e.T.MapToView(pos), 0, 0
	}
	vp := e.T.Viewport()
	return geom.Point{X: pos.X(), Y: pos.Y()}, float64(vp.Width), float64(vp.Height)
}

func (e *Engine) viewSize() (float64, float64) {
	vp := e.T.Viewport()
	return float64(vp.Width), float64(vp.Height)
}

// Place dispatches on the record type.
func (e *Engine) Place(l *layer.Layer, r layer.Record) Placed {
	switch rec := r.(type) {
	case layer.PointRecord:
		return e.PlacePoint(l.MapRelative, rec)
	case layer.ImageRecord:
		return e.PlaceImage(l.MapRelative, rec)
	case layer.TextRecord:
		return e.PlaceText(l.MapRelative, rec)
	case layer.PolygonRecord:
		return e.PlacePolygon(l.MapRelative, rec)
	default:
		return Placed{}
	}
}

// PlaceLayer places every record of l in insertion order.
func (e *Engine) PlaceLayer(l *layer.Layer) []Placed {
	out := make([]Placed, len(l.Records))
	for i, r := range l.Records {
		out[i] = e.Place(l, r)
	}
	return out
}

// PlacePoint positions a point record. A radius of 0 yields no extent.
func (e *Engine) PlacePoint(mapRel bool, r layer.PointRecord) Placed {
	v, fw, fh := e.frame(mapRel, r.Pos)
	px, py := placement.ResolvePoint(r.Anchor, v.X, v.Y, r.OffsetX, r.OffsetY, fw, fh)
	p := geom.Point{X: px, Y: py}
	w, h := e.viewSize()

	var out Placed
	if geom.InView(p, w, h) {
		out.Point = &p
	}
	if r.Radius > 0 {
		if ext := geom.Around(p, r.Radius); ext.Intersects(w, h) {
			out.Extent = &ext
		}
	}
	return out
}

// PlaceImage positions an image record.
func (e *Engine) PlaceImage(mapRel bool, r layer.ImageRecord) Placed {
	return e.placeBox(mapRel, r.Pos, r.Anchor, r.OffsetX, r.OffsetY, r.Width, r.Height, r.Radius)
}

// PlaceText positions a text record, sizing it with the engine's measurer.
func (e *Engine) PlaceText(mapRel bool, r layer.TextRecord) Placed {
	tw, th := e.measurer().MeasureText(r.Text, r.Font)
	return e.placeBox(mapRel, r.Pos, r.Anchor, r.OffsetX, r.OffsetY, tw, th, r.Radius)
}

func (e *Engine) placeBox(mapRel bool, pos orb.Point, a placement.Anchor, ox, oy, bw, bh, radius float64) Placed {
	v, fw, fh := e.frame(mapRel, pos)
	w, h := e.viewSize()

	hx, hy := placement.ResolvePoint(a, v.X, v.Y, 0, 0, fw, fh)
	hot := geom.Point{X: hx, Y: hy}
	lx, ty := placement.ResolveExtent(a, v.X, v.Y, ox, oy, bw, bh, fw, fh)
	ext := geom.ExtentAt(lx, ty, bw, bh)

	var out Placed
	if geom.InView(hot, w, h) {
		out.Point = &hot
		if radius > 0 {
			m := geom.Around(hot, radius)
			out.Marker = &m
		}
	}
	if ext.Intersects(w, h) {
		out.Extent = &ext
	}
	return out
}

// PolygonVertices transforms and anchors every vertex of r, whether on
// view or not. The anchor moves all vertices by the same amount.
func (e *Engine) PolygonVertices(mapRel bool, r layer.PolygonRecord) []geom.Point {
	pts := make([]geom.Point, len(r.Vertices))
	for i, vtx := range r.Vertices {
		v, fw, fh := e.frame(mapRel, vtx)
		x, y := placement.ResolvePoint(r.Anchor, v.X, v.Y, r.OffsetX, r.OffsetY, fw, fh)
		pts[i] = geom.Point{X: x, Y: y}
	}
	return pts
}

// PlacePolygon places r for drawing. Vertices and Extent are both nil
// unless at least one vertex is on view.
func (e *Engine) PlacePolygon(mapRel bool, r layer.PolygonRecord) Placed {
	w, h := e.viewSize()
	pts := e.PolygonVertices(mapRel, r)
	if !slices.ContainsFunc(pts, func(p geom.Point) bool { return geom.InView(p, w, h) }) {
		return Placed{}
	}
	ext, _ := geom.BoundsOf(pts)
	return Placed{Vertices: pts, Extent: &ext}
}
