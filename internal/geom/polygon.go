/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// PointInPolygon decides whether p lies inside poly by ray casting. The ring
// is closed implicitly by revisiting the first vertex.
//
// A point exactly on an edge may land on either side. The outcome is fixed
// for a given input: (0,5) on the left edge of the square (0,0)-(10,10) is
// outside, a point on its right edge is inside.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) == 0 {
		return false
	}
	inside := false
	p1 := poly[0]
	for i := 0; i <= len(poly); i++ {
		p2 := poly[i%len(poly)]
		if p.Y > min(p1.Y, p2.Y) && p.Y <= max(p1.Y, p2.Y) && p.X <= max(p1.X, p2.X) {
			var xinters float64
			if p1.Y != p2.Y {
				xinters = (p.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
			}
			if p1.X == p2.X || p.X <= xinters {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside
}
