/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package placement

import (
	"errors"
	"testing"
)

func TestResolvePointAllAnchors(t *testing.T) {
	const (
		x, y       = 100.0, 200.0
		offX, offY = 5.0, 7.0
		fw, fh     = 800.0, 600.0
	)
	cases := []struct {
		a      Anchor
		wx, wy float64
	}{
		{Center, x + fw/2, y + fh/2},
		{NorthWest, x + offX, y + offY},
		{North, x + fw/2, y + offY},
		{NorthEast, x + fw - offX, y + offY},
		{East, x + fw - offX, y + fh/2},
		{SouthEast, x + fw - offX, y + fh - offY},
		{South, x + fw/2, y + fh - offY},
		{SouthWest, x + offX, y + fh - offY},
		{West, x + offX, y + fh/2},
		{None, x, y},
	}
	for _, tc := range cases {
		gx, gy := ResolvePoint(tc.a, x, y, offX, offY, fw, fh)
		if gx != tc.wx || gy != tc.wy {
			t.Fatalf("ResolvePoint(%s) = (%v,%v), want (%v,%v)", tc.a, gx, gy, tc.wx, tc.wy)
		}
	}
}

func TestResolvePointZeroFrame(t *testing.T) {
	// map-relative: no frame, center is the identity and east/south subtract the offset
	cases := []struct {
		a      Anchor
		wx, wy float64
	}{
		{Center, 10, 10},
		{NorthWest, 13, 14},
		{SouthEast, 7, 6},
		{North, 10, 14},
		{West, 13, 10},
	}
	for _, tc := range cases {
		gx, gy := ResolvePoint(tc.a, 10, 10, 3, 4, 0, 0)
		if gx != tc.wx || gy != tc.wy {
			t.Fatalf("ResolvePoint(%s) = (%v,%v), want (%v,%v)", tc.a, gx, gy, tc.wx, tc.wy)
		}
	}
}

func TestResolveExtentAllAnchors(t *testing.T) {
	const (
		x, y       = 100.0, 200.0
		offX, offY = 5.0, 7.0
		w, h       = 40.0, 20.0
		fw, fh     = 800.0, 600.0
	)
	cases := []struct {
		a      Anchor
		wx, wy float64
	}{
		{Center, x + fw/2 - w/2, y + fh/2 - h/2},
		{NorthWest, x + offX, y + offY},
		{North, x + fw/2 - w/2, y + offY},
		{NorthEast, x + fw - w - offX, y + offY},
		{East, x + fw - w - offX, y + fh/2 - h/2},
		{SouthEast, x + fw - w - offX, y + fh - h - offY},
		{South, x + fw/2 - w/2, y + fh - h - offY},
		{SouthWest, x + offX, y + fh - h - offY},
		{West, x + offX, y + fh/2 - h/2},
		{None, x, y},
	}
	for _, tc := range cases {
		gx, gy := ResolveExtent(tc.a, x, y, offX, offY, w, h, fw, fh)
		if gx != tc.wx || gy != tc.wy {
			t.Fatalf("ResolveExtent(%s) = (%v,%v), want (%v,%v)", tc.a, gx, gy, tc.wx, tc.wy)
		}
	}
}

func TestResolveExtentCenterIgnoresOffsets(t *testing.T) {
	gx, gy := ResolveExtent(Center, 50, 50, 99, 99, 10, 20, 0, 0)
	if gx != 45 || gy != 40 {
		t.Fatalf("center extent = (%v,%v), want (45,40)", gx, gy)
	}
}

func TestParseAnchor(t *testing.T) {
	for _, a := range All {
		got, err := ParseAnchor(a.String())
		if err != nil || got != a {
			t.Fatalf("ParseAnchor(%q) = %v, %v", a.String(), got, err)
		}
		got, err = ParseAnchor(a.Name())
		if err != nil || got != a {
			t.Fatalf("ParseAnchor(%q) = %v, %v", a.Name(), got, err)
		}
	}
	if got, err := ParseAnchor(" NE "); err != nil || got != NorthEast {
		t.Fatalf("case/space insensitive parse failed: %v, %v", got, err)
	}
	for _, s := range []string{"", "none"} {
		if got, err := ParseAnchor(s); err != nil || got != None {
			t.Fatalf("ParseAnchor(%q) = %v, %v, want None", s, got, err)
		}
	}
	if _, err := ParseAnchor("xx"); !errors.Is(err, ErrUnknownAnchor) {
		t.Fatalf("expected ErrUnknownAnchor, got %v", err)
	}
}

func TestAnchorTextRoundTrip(t *testing.T) {
	var a Anchor
	if err := a.UnmarshalText([]byte("southwest")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, err := a.MarshalText()
	if err != nil || string(b) != "sw" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	if err := a.UnmarshalText([]byte("upward")); err == nil {
		t.Fatalf("expected error for unknown anchor")
	}
	if _, err := Anchor(42).MarshalText(); !errors.Is(err, ErrUnknownAnchor) {
		t.Fatalf("out of range anchor should not marshal: %v", err)
	}
}
