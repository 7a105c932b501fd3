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
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxLatitude is the northern edge of the square Web Mercator world.
const MaxLatitude = 85.05112877980659

// Mercator is the XYZ/OSM tiling of the Web Mercator projection. Map
// coordinates are (lon, lat) in degrees.
type Mercator struct {
	Size       int // tile edge in pixels, 256 when zero
	Min, Max   int
	Loader     Loader
	Background Placeholder
}

// NewMercator returns an OSM-style source for levels [minLevel, maxLevel].
func NewMercator(minLevel, maxLevel int) *Mercator {
	return &Mercator{Size: 256, Min: minLevel, Max: maxLevel}
}

func (m *Mercator) TileSize() (int, int) {
	if m.Size <= 0 {
		return 256, 256
	}
	return m.Size, m.Size
}

func (m *Mercator) MinLevel() int { return m.Min }
func (m *Mercator) MaxLevel() int { return m.Max }

func (m *Mercator) GridSize(level int) (int, int) {
	n := 1 << uint(max(level, 0))
	return n, n
}

func (m *Mercator) MapExtent(int) orb.Bound {
	return orb.Bound{Min: orb.Point{-180, -MaxLatitude}, Max: orb.Point{180, MaxLatitude}}
}

func (m *Mercator) MapToTile(level int, p orb.Point) (float64, float64) {
	f := maptile.Fraction(p, maptile.Zoom(uint32(max(level, 0))))
	return f.X(), f.Y()
}

// TileToMap inverts MapToTile. orb keeps its planar-to-geo helper internal,
// so the inverse Web Mercator formula lives here.
func (m *Mercator) TileToMap(level int, tx, ty float64) orb.Point {
	n := math.Exp2(float64(max(level, 0)))
	lon := tx/n*360.0 - 180.0
	lat := math.Atan(math.Sinh(math.Pi*(1-2*ty/n))) * 180.0 / math.Pi
	return orb.Point{lon, lat}
}

func (m *Mercator) Tile(level, col, row int) (image.Image, error) {
	if err := CheckTile(m, level, col, row); err != nil {
		return nil, err
	}
	if m.Loader != nil {
		img, err := m.Loader.Load(level, col, row)
		if err != nil {
			return nil, fmt.Errorf("mercator tile %d/%d/%d: %w", level, col, row, err)
		}
		return img, nil
	}
	w, h := m.TileSize()
	return m.Background.Render(w, h, level, col, row), nil
}
