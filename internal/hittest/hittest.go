/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package hittest answers which records of a layer a click or a drag box
// selects. Everything is computed in view pixels from the placements pex
// produces, so map-relative and view-relative layers share one code path.
package hittest

import (
	"goslip/internal/geom"
	"goslip/internal/layer"
	"goslip/internal/pex"
)

// Item is one selected record.
type Item struct {
	Index  int // position in the layer's records
	Record layer.Record
	Data   any
	View   geom.Point // anchor, hotspot or first vertex in view pixels
}

// Selection is the outcome of a query against one layer.
type Selection struct {
	LayerID int
	Items   []Item
}

// Data returns the user data of every selected record, in selection order.
func (s *Selection) Data() []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Data
	}
	return out
}

// Tester runs selection queries against an engine's current viewport.
type Tester struct {
	Engine *pex.Engine
	// BoxImagesByExtent makes box selection require the whole image box
	// inside the drag box instead of just its hotspot.
	BoxImagesByExtent bool
	// ImageClickNearest lets a click that misses every image box pick the
	// nearest hotspot within the layer's selection radius.
	ImageClickNearest bool
}

// New returns a tester over e.
func New(e *pex.Engine) *Tester { return &Tester{Engine: e} }

// Nearest returns the record of l a click at v selects, or nil.
//
// Points and text pick the record whose anchor is nearest to v, accepted
// when the squared distance is within l.SelectionRadius; the first record
// wins a tie. Images pick the first record whose box contains v.
// Polygons pick the first containing polygon, including polygons with no
// vertex on view.
func (t *Tester) Nearest(l *layer.Layer, v geom.Point) *Selection {
	if l.Kind == layer.KindPolygon {
		return t.polygonAt(l, v)
	}
	placed := t.Engine.PlaceLayer(l)
	idx := -1
	switch l.Kind {
	case layer.KindImage:
		idx = firstContaining(placed, v, func(p pex.Placed) bool {
			return p.Extent != nil && p.Extent.Contains(v)
		})
		if idx < 0 && t.ImageClickNearest {
			idx = nearest(l, placed, v)
		}
	case layer.KindPoint:
		idx = nearest(l, placed, v)
	case layer.KindText:
		idx = nearest(l, placed, v)
	}
	if idx < 0 {
		return nil
	}
	return &Selection{LayerID: l.ID, Items: []Item{item(l, placed, idx)}}
}

func (t *Tester) polygonAt(l *layer.Layer, v geom.Point) *Selection {
	for i, rec := range l.Records {
		r, ok := rec.(layer.PolygonRecord)
		if !ok {
			continue
		}
		pts := t.Engine.PolygonVertices(l.MapRelative, r)
		if len(pts) == 0 || !geom.PointInPolygon(v, pts) {
			continue
		}
		return &Selection{LayerID: l.ID, Items: []Item{{Index: i, Record: rec, Data: rec.UserData(), View: pts[0]}}}
	}
	return nil
}

func firstContaining(placed []pex.Placed, v geom.Point, hit func(pex.Placed) bool) int {
	for i, p := range placed {
		if hit(p) {
			return i
		}
	}
	return -1
}

func nearest(l *layer.Layer, placed []pex.Placed, v geom.Point) int {
	best, bestDist := -1, 0.0
	for i, p := range placed {
		if !selectablePoint(l, p) {
			continue
		}
		d := p.Point.DistSq(v)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > l.SelectionRadius {
		return -1
	}
	return best
}

// selectablePoint reports whether a placed record offers an anchor to click.
// Points drawn with radius 0 have no marker and cannot be picked.
func selectablePoint(l *layer.Layer, p pex.Placed) bool {
	if p.Point == nil {
		return false
	}
	if l.Kind == layer.KindPoint && p.Extent == nil {
		return false
	}
	return true
}

// BoxSelect returns every record of l selected by the box spanned by a and b,
// or nil. The corners may come in any order. Points, images and text match
// on their anchor. Polygons match only when their whole bounding box is
// inside.
func (t *Tester) BoxSelect(l *layer.Layer, a, b geom.Point) *Selection {
	box := geom.Canonicalize(a, b)
	placed := t.Engine.PlaceLayer(l)
	var sel Selection
	for i, p := range placed {
		var hit bool
		switch l.Kind {
		case layer.KindPolygon:
			hit = p.Vertices != nil && box.ContainsExtent(*p.Extent)
		case layer.KindImage:
			if t.BoxImagesByExtent {
				hit = p.Extent != nil && box.ContainsExtent(*p.Extent)
			} else {
				hit = p.Point != nil && box.Contains(*p.Point)
			}
		default:
			hit = selectablePoint(l, p) && box.Contains(*p.Point)
		}
		if hit {
			sel.Items = append(sel.Items, item(l, placed, i))
		}
	}
	if len(sel.Items) == 0 {
		return nil
	}
	sel.LayerID = l.ID
	return &sel
}

func item(l *layer.Layer, placed []pex.Placed, i int) Item {
	it := Item{Index: i, Record: l.Records[i], Data: l.Records[i].UserData()}
	p := placed[i]
	switch {
	case p.Point != nil:
		it.View = *p.Point
	case len(p.Vertices) > 0:
		it.View = p.Vertices[0]
	case p.Extent != nil:
		it.View = geom.Pt(p.Extent.Left, p.Extent.Top)
	}
	return it
}
