/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestCanonicalizeAllDragDirections(t *testing.T) {
	start := Pt(100, 100)
	cases := []struct {
		name   string
		dx, dy float64
		want   Box
	}{
		{"down-right", 50, 50, Box{Left: 100, Bottom: 150, Right: 150, Top: 100}},
		{"down-left", -50, 50, Box{Left: 50, Bottom: 150, Right: 100, Top: 100}},
		{"up-right", 50, -50, Box{Left: 100, Bottom: 100, Right: 150, Top: 50}},
		{"up-left", -50, -50, Box{Left: 50, Bottom: 100, Right: 100, Top: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(start, start.Add(tc.dx, tc.dy))
			if got != tc.want {
				t.Fatalf("Canonicalize = %+v, want %+v", got, tc.want)
			}
			if got.Left > got.Right || got.Top > got.Bottom {
				t.Fatalf("box not canonical: %+v", got)
			}
			// swapping the corners must not matter
			if rev := Canonicalize(start.Add(tc.dx, tc.dy), start); rev != got {
				t.Fatalf("reversed corners gave %+v, want %+v", rev, got)
			}
		})
	}
}

func TestBoxContains(t *testing.T) {
	b := Canonicalize(Pt(10, 10), Pt(20, 20))
	if !b.Contains(Pt(10, 20)) {
		t.Fatalf("closed box should contain its corner")
	}
	if b.Contains(Pt(9.9, 15)) {
		t.Fatalf("point left of box reported inside")
	}
	if !b.ContainsExtent(Extent{Left: 10, Right: 20, Top: 12, Bottom: 18}) {
		t.Fatalf("extent touching edges should be contained")
	}
	if b.ContainsExtent(Extent{Left: 15, Right: 25, Top: 12, Bottom: 18}) {
		t.Fatalf("overlapping extent should not be contained")
	}
}

func TestPointInPolygonSquare(t *testing.T) {
	square := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	cases := []struct {
		p    Point
		want bool
	}{
		{Pt(5, 5), true},
		{Pt(15, 5), false},
		{Pt(-1, 5), false},
		{Pt(5, 11), false},
		// on-edge results are pinned so a change in the algorithm shows up here
		{Pt(0, 5), false},
		{Pt(10, 5), true},
	}
	for _, tc := range cases {
		if got := PointInPolygon(tc.p, square); got != tc.want {
			t.Fatalf("PointInPolygon(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape opening to the top
	u := []Point{Pt(0, 0), Pt(30, 0), Pt(30, 30), Pt(20, 30), Pt(20, 10), Pt(10, 10), Pt(10, 30), Pt(0, 30)}
	if !PointInPolygon(Pt(5, 20), u) {
		t.Fatalf("left arm should be inside")
	}
	if PointInPolygon(Pt(15, 20), u) {
		t.Fatalf("notch should be outside")
	}
	if PointInPolygon(Pt(15, 20), nil) {
		t.Fatalf("empty polygon contains nothing")
	}
}

func TestBoundsOf(t *testing.T) {
	e, ok := BoundsOf([]Point{Pt(3, 4), Pt(-1, 8), Pt(5, 0)})
	if !ok {
		t.Fatalf("BoundsOf returned !ok")
	}
	want := Extent{Left: -1, Right: 5, Top: 0, Bottom: 8}
	if e != want {
		t.Fatalf("BoundsOf = %+v, want %+v", e, want)
	}
	if _, ok := BoundsOf(nil); ok {
		t.Fatalf("BoundsOf(nil) should not be ok")
	}
}

func TestExtentHelpers(t *testing.T) {
	e := Around(Pt(10, 10), 3)
	if e.Width() != 6 || e.Height() != 6 {
		t.Fatalf("Around size = %vx%v", e.Width(), e.Height())
	}
	if !e.Intersects(100, 100) {
		t.Fatalf("extent inside view should intersect")
	}
	if Around(Pt(-10, 50), 3).Intersects(100, 100) {
		t.Fatalf("extent left of view should not intersect")
	}
	if !Around(Pt(-2, 50), 3).Intersects(100, 100) {
		t.Fatalf("partially visible extent should intersect")
	}
	if Pt(math.NaN(), 0).Finite() || !Pt(1, 2).Finite() {
		t.Fatalf("Finite misreported")
	}
	if Pt(0, 0).DistSq(Pt(3, 4)) != 25 {
		t.Fatalf("DistSq wrong")
	}
}
