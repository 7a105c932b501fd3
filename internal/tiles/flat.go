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

	"github.com/paulmach/orb"
)

// Flat is a cartesian tile set: a fixed map rectangle cut into a grid whose
// column and row counts double with each level. Map y grows north.
type Flat struct {
	Extent     orb.Bound
	TileW      int
	TileH      int
	BaseCols   int // grid at level Min
	BaseRows   int
	Min, Max   int
	Loader     Loader // nil renders placeholders
	Background Placeholder
}

// NewFlat returns a Flat covering extent with 256px tiles and a 1x1 grid at level 0.
func NewFlat(extent orb.Bound, minLevel, maxLevel int) *Flat {
	return &Flat{Extent: extent, TileW: 256, TileH: 256, BaseCols: 1, BaseRows: 1, Min: minLevel, Max: maxLevel}
}

func (f *Flat) TileSize() (int, int) { return f.TileW, f.TileH }
func (f *Flat) MinLevel() int        { return f.Min }
func (f *Flat) MaxLevel() int        { return f.Max }

func (f *Flat) GridSize(level int) (int, int) {
	n := 1
	if level > f.Min {
		n = 1 << uint(level-f.Min)
	}
	return max(f.BaseCols, 1) * n, max(f.BaseRows, 1) * n
}

func (f *Flat) MapExtent(int) orb.Bound { return f.Extent }

func (f *Flat) MapToTile(level int, p orb.Point) (float64, float64) {
	cols, rows := f.GridSize(level)
	tx := (p.X() - f.Extent.Left()) / (f.Extent.Right() - f.Extent.Left()) * float64(cols)
	ty := (f.Extent.Top() - p.Y()) / (f.Extent.Top() - f.Extent.Bottom()) * float64(rows)
	return tx, ty
}

func (f *Flat) TileToMap(level int, tx, ty float64) orb.Point {
	cols, rows := f.GridSize(level)
	x := f.Extent.Left() + tx/float64(cols)*(f.Extent.Right()-f.Extent.Left())
	y := f.Extent.Top() - ty/float64(rows)*(f.Extent.Top()-f.Extent.Bottom())
	return orb.Point{x, y}
}

func (f *Flat) Tile(level, col, row int) (image.Image, error) {
	if err := CheckTile(f, level, col, row); err != nil {
		return nil, err
	}
	if f.Loader != nil {
		img, err := f.Loader.Load(level, col, row)
		if err != nil {
			return nil, fmt.Errorf("flat tile %d/%d/%d: %w", level, col, row, err)
		}
		return img, nil
	}
	return f.Background.Render(f.TileW, f.TileH, level, col, row), nil
}
