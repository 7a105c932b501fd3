/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package placement positions an annotation relative to its declared point.
//
// Each of the nine anchors names a column (west, centre, east) and a row
// (north, middle, south). The column picks how the x offset and frame width
// apply, the row does the same for y. For extents the anchor names the
// visual corner, edge or centre of the w×h box, so a further half or full
// width/height is subtracted.
package placement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAnchor is returned by ParseAnchor for unrecognised keywords.
var ErrUnknownAnchor = errors.New("unknown anchor")

// Anchor is one of the nine placement positions, or None.
type Anchor uint8

const (
	None Anchor = iota
	Center
	NorthWest
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
)

type column uint8

const (
	colWest column = iota
	colCenter
	colEast
)

type row uint8

const (
	rowNorth row = iota
	rowMiddle
	rowSouth
)

type cell struct {
	col  column
	row  row
	code string
	name string
}

var cells = [...]cell{
	None:      {},
	Center:    {colCenter, rowMiddle, "cc", "center"},
	NorthWest: {colWest, rowNorth, "nw", "northwest"},
	North:     {colCenter, rowNorth, "cn", "north"},
	NorthEast: {colEast, rowNorth, "ne", "northeast"},
	East:      {colEast, rowMiddle, "ce", "east"},
	SouthEast: {colEast, rowSouth, "se", "southeast"},
	South:     {colCenter, rowSouth, "cs", "south"},
	SouthWest: {colWest, rowSouth, "sw", "southwest"},
	West:      {colWest, rowMiddle, "cw", "west"},
}

// All lists the nine real anchors in a stable order.
var All = []Anchor{Center, NorthWest, North, NorthEast, East, SouthEast, South, SouthWest, West}

// ParseAnchor accepts the two-letter codes (cc, nw, cn, ne, ce, se, cs, sw, cw),
// the long names, and "" or "none" for None. Matching is case-insensitive.
func ParseAnchor(s string) (Anchor, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "" || k == "none" {
		return None, nil
	}
	for a := Center; a <= West; a++ {
		if cells[a].code == k || cells[a].name == k {
			return a, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownAnchor, s)
}

// MustParse is ParseAnchor for constant input; it panics on error.
func MustParse(s string) Anchor {
	a, err := ParseAnchor(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Valid reports whether a is None or one of the nine anchors.
func (a Anchor) Valid() bool { return int(a) < len(cells) }

// String returns the two-letter code, "none" for None.
func (a Anchor) String() string {
	if a == None {
		return "none"
	}
	if !a.Valid() {
		return fmt.Sprintf("Anchor(%d)", uint8(a))
	}
	return cells[a].code
}

// Name returns the long name, e.g. "northwest".
func (a Anchor) Name() string {
	if a == None || !a.Valid() {
		return a.String()
	}
	return cells[a].name
}

func (a Anchor) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAnchor, uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
