/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tiles supplies tile bitmaps and the projection between map
// coordinates and fractional tile coordinates for each zoom level.
package tiles

import (
	"errors"
	"fmt"
	"image"

	"github.com/paulmach/orb"
)

var (
	// ErrLevelOutOfRange is returned for a zoom level outside [MinLevel, MaxLevel].
	ErrLevelOutOfRange = errors.New("zoom level out of range")
	// ErrTileOutOfRange is returned for a column/row outside the level's grid.
	ErrTileOutOfRange = errors.New("tile index out of range")
)

// Source is what the view and renderer need from a tile set.
//
// MapToTile and TileToMap are mutual inverses up to rounding. Tile row 0 is
// the top of the map.
type Source interface {
	TileSize() (w, h int)
	GridSize(level int) (cols, rows int)
	MapExtent(level int) orb.Bound
	MapToTile(level int, p orb.Point) (tx, ty float64)
	TileToMap(level int, tx, ty float64) orb.Point
	Tile(level, col, row int) (image.Image, error)
	MinLevel() int
	MaxLevel() int
}

// Loader produces the bitmap for one tile.
type Loader interface {
	Load(level, col, row int) (image.Image, error)
}

// CheckTile validates level, col and row against src.
func CheckTile(src Source, level, col, row int) error {
	if level < src.MinLevel() || level > src.MaxLevel() {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrLevelOutOfRange, level, src.MinLevel(), src.MaxLevel())
	}
	cols, rows := src.GridSize(level)
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return fmt.Errorf("%w: %d/%d/%d (grid %dx%d)", ErrTileOutOfRange, level, col, row, cols, rows)
	}
	return nil
}

// MapPixelSize returns the size of the whole map at level in pixels.
func MapPixelSize(src Source, level int) (w, h int) {
	tw, th := src.TileSize()
	cols, rows := src.GridSize(level)
	return cols * tw, rows * th
}
