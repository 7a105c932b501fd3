/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package view

import "math"

// Range is a half-open interval of tile indices.
type Range struct{ Start, Stop int }

// Len returns the number of indices in r.
func (r Range) Len() int { return max(r.Stop-r.Start, 0) }

// Grid is the tile grid at one zoom level.
type Grid struct {
	TileW, TileH int
	Cols, Rows   int
}

// TileLayout says which tiles cover the view and where the first one goes.
// FirstX/FirstY is the view pixel of the top-left corner of tile
// (Cols.Start, Rows.Start); it is usually off view.
type TileLayout struct {
	Cols, Rows     Range
	FirstX, FirstY float64
	TileW, TileH   int
}

// TilePlacement is one tile to draw.
type TilePlacement struct {
	Col, Row int
	X, Y     float64
}

// ComputeTileLayout finds the smallest set of tiles covering the viewport.
func ComputeTileLayout(vp Viewport, g Grid) TileLayout {
	cols, fx := axisLayout(vp.OffsetX, vp.Width, g.TileW, g.Cols)
	rows, fy := axisLayout(vp.OffsetY, vp.Height, g.TileH, g.Rows)
	return TileLayout{Cols: cols, Rows: rows, FirstX: fx, FirstY: fy, TileW: g.TileW, TileH: g.TileH}
}

func axisLayout(offset float64, viewSize, tileSize, count int) (Range, float64) {
	if tileSize <= 0 || count <= 0 {
		return Range{}, 0
	}
	if count*tileSize <= viewSize {
		return Range{Start: 0, Stop: count}, -offset
	}
	ts := float64(tileSize)
	start := int(math.Floor(offset / ts))
	stop := int(math.Ceil((offset + float64(viewSize)) / ts))
	start = min(max(start, 0), count)
	stop = min(max(stop, start), count)
	return Range{Start: start, Stop: stop}, float64(start)*ts - offset
}

// Count returns the number of tiles in the layout.
func (l TileLayout) Count() int { return l.Cols.Len() * l.Rows.Len() }

// Placements lists every tile with its view position, column by column.
func (l TileLayout) Placements() []TilePlacement {
	out := make([]TilePlacement, 0, l.Count())
	x := l.FirstX
	for c := l.Cols.Start; c < l.Cols.Stop; c++ {
		y := l.FirstY
		for r := l.Rows.Start; r < l.Rows.Stop; r++ {
			out = append(out, TilePlacement{Col: c, Row: r, X: x, Y: y})
			y += float64(l.TileH)
		}
		x += float64(l.TileW)
	}
	return out
}
