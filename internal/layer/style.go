/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layer

import "goslip/internal/placement"

// PointStyle is the set of point attributes a record may leave unset.
type PointStyle struct {
	Anchor           placement.Anchor
	Radius           float64
	Color            Color
	OffsetX, OffsetY float64
}

// ImageStyle is the set of image attributes a record may leave unset.
type ImageStyle struct {
	Anchor           placement.Anchor
	Radius           float64
	Color            Color
	OffsetX, OffsetY float64
}

// TextStyle is the set of text attributes a record may leave unset.
type TextStyle struct {
	Anchor           placement.Anchor
	Radius           float64
	Color            Color
	TextColor        Color
	Font             Font
	OffsetX, OffsetY float64
}

// PolygonStyle is the set of polygon attributes a record may leave unset.
type PolygonStyle struct {
	Anchor           placement.Anchor
	Width            float64
	Color            Color
	Closed           bool
	Filled           bool
	FillColor        Color
	OffsetX, OffsetY float64
}

var (
	red   = Color{R: 0xff, A: 0xff}
	black = Color{A: 0xff}
	blue  = Color{B: 0xff, A: 0xff}
)

// DefaultPointStyle returns the built-in point defaults, the same for both frames.
func DefaultPointStyle() PointStyle {
	return PointStyle{Anchor: placement.Center, Radius: 3, Color: red}
}

// DefaultImageStyle returns the built-in image defaults, the same for both frames.
func DefaultImageStyle() ImageStyle {
	return ImageStyle{Anchor: placement.NorthWest, Color: black}
}

// DefaultTextStyle returns the built-in text defaults. Map-relative text
// gets a small marker and is nudged off it.
func DefaultTextStyle(mapRelative bool) TextStyle {
	s := TextStyle{
		Anchor:    placement.NorthWest,
		Color:     black,
		TextColor: black,
		Font:      Font{Name: "Go", Size: 10},
	}
	if mapRelative {
		s.Radius = 2
		s.OffsetX, s.OffsetY = 5, 1
	}
	return s
}

// DefaultPolygonStyle returns the built-in polygon defaults.
func DefaultPolygonStyle(mapRelative bool) PolygonStyle {
	s := PolygonStyle{Anchor: placement.NorthWest, Width: 1, Color: red, FillColor: blue}
	if mapRelative {
		s.Anchor = placement.Center
	}
	return s
}
