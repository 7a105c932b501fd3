/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package view converts between map and view coordinates for the current
// viewport and decides which tiles cover it.
package view

import "math"

// Viewport is the visible window onto the map at one zoom level. Offsets are
// the map pixel shown at the view's top-left corner.
type Viewport struct {
	OffsetX, OffsetY float64
	Width, Height    int
	Level            int
}

// ClampOffset keeps an offset valid for one axis. A map larger than the view
// is clamped to [0, mapSize-viewSize]; a smaller map is centred, which makes
// the offset negative.
func ClampOffset(offset float64, mapSize, viewSize int) float64 {
	if mapSize <= viewSize {
		return float64(mapSize-viewSize) / 2
	}
	return math.Min(math.Max(offset, 0), float64(mapSize-viewSize))
}

// Clamped returns vp with both offsets clamped for a mapW×mapH map.
func (vp Viewport) Clamped(mapW, mapH int) Viewport {
	vp.OffsetX = ClampOffset(vp.OffsetX, mapW, vp.Width)
	vp.OffsetY = ClampOffset(vp.OffsetY, mapH, vp.Height)
	return vp
}
