/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import (
	"github.com/paulmach/orb"

	"goslip/internal/geom"
	"goslip/internal/tiles"
)

// Transformer maps between map coordinates and view pixels for one viewport.
// Every viewport change goes through a setter so the cached visible map
// extent always matches the viewport.
type Transformer struct {
	src     tiles.Source
	vp      Viewport
	visible orb.Bound
}

// NewTransformer returns a transformer over src with the given viewport. The
// viewport is used as given; callers clamp it when they want the map pinned.
func NewTransformer(src tiles.Source, vp Viewport) *Transformer {
	t := &Transformer{src: src}
	t.SetViewport(vp)
	return t
}

// Source returns the tile source.
func (t *Transformer) Source() tiles.Source { return t.src }

// Viewport returns the current viewport.
func (t *Transformer) Viewport() Viewport { return t.vp }

// SetViewport replaces the viewport and recomputes the visible map extent.
func (t *Transformer) SetViewport(vp Viewport) {
	t.vp = vp
	t.recalc()
}

// SetOffset moves the viewport.
func (t *Transformer) SetOffset(x, y float64) {
	t.vp.OffsetX, t.vp.OffsetY = x, y
	t.recalc()
}

// SetSize resizes the viewport without moving its offset.
func (t *Transformer) SetSize(w, h int) {
	t.vp.Width, t.vp.Height = w, h
	t.recalc()
}

// SetLevel changes the zoom level without moving the offset.
func (t *Transformer) SetLevel(level int) {
	t.vp.Level = level
	t.recalc()
}

// VisibleMapExtent returns the map area currently inside the view.
func (t *Transformer) VisibleMapExtent() orb.Bound { return t.visible }

// Grid returns the tile grid at the current level.
func (t *Transformer) Grid() Grid {
	tw, th := t.src.TileSize()
	cols, rows := t.src.GridSize(t.vp.Level)
	return Grid{TileW: tw, TileH: th, Cols: cols, Rows: rows}
}

// MapSize returns the map size in pixels at the current level.
func (t *Transformer) MapSize() (int, int) { return tiles.MapPixelSize(t.src, t.vp.Level) }

// TileLayout returns the tiles covering the current viewport.
func (t *Transformer) TileLayout() TileLayout { return ComputeTileLayout(t.vp, t.Grid()) }

func (t *Transformer) recalc() {
	tw, th := t.src.TileSize()
	tl := t.src.TileToMap(t.vp.Level, t.vp.OffsetX/float64(tw), t.vp.OffsetY/float64(th))
	br := t.src.TileToMap(t.vp.Level,
		(t.vp.OffsetX+float64(t.vp.Width))/float64(tw),
		(t.vp.OffsetY+float64(t.vp.Height))/float64(th))
	t.visible = orb.Bound{
		Min: orb.Point{min(tl.X(), br.X()), min(tl.Y(), br.Y())},
		Max: orb.Point{max(tl.X(), br.X()), max(tl.Y(), br.Y())},
	}
}

// MapToView projects a map point into view pixels. Off-view points are
// returned as is.
func (t *Transformer) MapToView(p orb.Point) geom.Point {
	tw, th := t.src.TileSize()
	tx, ty := t.src.MapToTile(t.vp.Level, p)
	return geom.Point{X: tx*float64(tw) - t.vp.OffsetX, Y: ty*float64(th) - t.vp.OffsetY}
}

// ViewToMap is the inverse of MapToView.
func (t *Transformer) ViewToMap(v geom.Point) orb.Point {
	tw, th := t.src.TileSize()
	return t.src.TileToMap(t.vp.Level, (v.X+t.vp.OffsetX)/float64(tw), (v.Y+t.vp.OffsetY)/float64(th))
}

// MapToViewMasked is MapToView for points inside the visible map extent;
// ok is false otherwise.
func (t *Transformer) MapToViewMasked(p orb.Point) (geom.Point, bool) {
	if !t.visible.Contains(p) {
		return geom.Point{}, false
	}
	return t.MapToView(p), true
}

// PositionIsOnMap reports whether a view point shows map rather than the
// background around a map smaller than the view.
func (t *Transformer) PositionIsOnMap(v geom.Point) bool {
	mw, mh := t.MapSize()
	x := v.X + t.vp.OffsetX
	y := v.Y + t.vp.OffsetY
	return x >= 0 && x <= float64(mw) && y >= 0 && y <= float64(mh)
}
