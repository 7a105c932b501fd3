/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the view-space primitives shared by placement, PEX and
// hit testing. View coordinates are pixels from the viewport's top-left
// corner, y grows downwards.
package geom

import "math"

// Point is a position in view pixels.
type Point struct{ X, Y float64 }

// Pt is a shorthand constructor.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// DistSq returns the squared euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Extent is a view-pixel bounding rectangle.
type Extent struct {
	Left, Right, Top, Bottom float64
}

// ExtentAt builds the extent of a w×h box with its top-left corner at (x, y).
func ExtentAt(x, y, w, h float64) Extent {
	return Extent{Left: x, Right: x + w, Top: y, Bottom: y + h}
}

// Around builds the square extent of radius r centred on p.
func Around(p Point, r float64) Extent {
	return Extent{Left: p.X - r, Right: p.X + r, Top: p.Y - r, Bottom: p.Y + r}
}

func (e Extent) Width() float64  { return e.Right - e.Left }
func (e Extent) Height() float64 { return e.Bottom - e.Top }

// Contains reports whether p lies inside e, edges included.
func (e Extent) Contains(p Point) bool {
	return p.X >= e.Left && p.X <= e.Right && p.Y >= e.Top && p.Y <= e.Bottom
}

// Intersects reports whether e overlaps the view rectangle [0,w]×[0,h].
func (e Extent) Intersects(w, h float64) bool {
	return e.Right >= 0 && e.Left <= w && e.Bottom >= 0 && e.Top <= h
}

// BoundsOf returns the componentwise min/max of pts. ok is false for an empty slice.
func BoundsOf(pts []Point) (e Extent, ok bool) {
	if len(pts) == 0 {
		return Extent{}, false
	}
	e = Extent{Left: pts[0].X, Right: pts[0].X, Top: pts[0].Y, Bottom: pts[0].Y}
	for _, p := range pts[1:] {
		e.Left = min(e.Left, p.X)
		e.Right = max(e.Right, p.X)
		e.Top = min(e.Top, p.Y)
		e.Bottom = max(e.Bottom, p.Y)
	}
	return e, true
}

// InView reports whether p lies inside the view rectangle [0,w]×[0,h].
func InView(p Point, w, h float64) bool {
	return p.X >= 0 && p.X <= w && p.Y >= 0 && p.Y <= h
}
