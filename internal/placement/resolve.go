/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package placement

// ResolvePoint moves (x, y) according to the anchor. Map-relative callers
// pass a zero frame, view-relative callers pass the viewport size so that
// e.g. SouthEast measures the offset back from the bottom-right corner.
// None returns the point unchanged.
func ResolvePoint(a Anchor, x, y, offX, offY, frameW, frameH float64) (float64, float64) {
	if a == None || !a.Valid() {
		return x, y
	}
	c := cells[a]
	return x + colShift(c.col, offX, frameW), y + rowShift(c.row, offY, frameH)
}

// ResolveExtent returns the top-left corner of a w×h box whose anchor
// position, resolved like ResolvePoint, is (x, y). None puts the top-left
// corner at (x, y).
func ResolveExtent(a Anchor, x, y, offX, offY, w, h, frameW, frameH float64) (float64, float64) {
	if a == None || !a.Valid() {
		return x, y
	}
	c := cells[a]
	rx := x + colShift(c.col, offX, frameW) - colSize(c.col, w)
	ry := y + rowShift(c.row, offY, frameH) - rowSize(c.row, h)
	return rx, ry
}

func colShift(c column, off, frame float64) float64 {
	switch c {
	case colWest:
		return off
	case colEast:
		return frame - off
	default:
		return frame / 2
	}
}

func rowShift(r row, off, frame float64) float64 {
	switch r {
	case rowNorth:
		return off
	case rowSouth:
		return frame - off
	default:
		return frame / 2
	}
}

func colSize(c column, w float64) float64 {
	switch c {
	case colCenter:
		return w / 2
	case colEast:
		return w
	default:
		return 0
	}
}

func rowSize(r row, h float64) float64 {
	switch r {
	case rowMiddle:
		return h / 2
	case rowSouth:
		return h
	default:
		return 0
	}
}
