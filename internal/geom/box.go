/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Box is a selection rectangle with Left <= Right and Top <= Bottom.
type Box struct {
	Left, Bottom, Right, Top float64
}

// Canonicalize turns the two corners of a drag into a Box, whichever way the
// drag went.
func Canonicalize(a, b Point) Box {
	bx := Box{Left: a.X, Right: b.X, Top: a.Y, Bottom: b.Y}
	if b.X < a.X {
		bx.Left, bx.Right = b.X, a.X
	}
	if b.Y < a.Y {
		bx.Top, bx.Bottom = b.Y, a.Y
	}
	return bx
}

// Contains reports whether p is inside the closed box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

// ContainsExtent reports whether all of e lies inside the closed box.
func (b Box) ContainsExtent(e Extent) bool {
	return e.Left >= b.Left && e.Right <= b.Right && e.Top >= b.Top && e.Bottom <= b.Bottom
}

// Extent returns the box as an Extent.
func (b Box) Extent() Extent {
	return Extent{Left: b.Left, Right: b.Right, Top: b.Top, Bottom: b.Bottom}
}
