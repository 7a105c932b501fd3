/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layer holds annotation records and the Z-ordered store of layers.
//
// Record positions are map coordinates for map-relative layers and view
// pixels for view-relative layers; a layer never mixes the two.
package layer

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/paulmach/orb"

	"goslip/internal/placement"
)

var (
	// ErrInvalidRecord marks a record that cannot be placed.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnknownLayer is returned for an id not in the store.
	ErrUnknownLayer = errors.New("unknown layer")
)

// Kind is the record type a layer holds.
type Kind uint8

const (
	KindPoint Kind = iota + 1
	KindImage
	KindText
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindPoint, KindImage, KindText, KindPolygon} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layer kind %q", s)
}

// Record is one annotation. The concrete types are PointRecord, ImageRecord,
// TextRecord and PolygonRecord.
type Record interface {
	Kind() Kind
	UserData() any
	Validate() error
	isRecord()
}

// PointRecord is a dot of Radius pixels.
type PointRecord struct {
	Pos              orb.Point
	Anchor           placement.Anchor
	Radius           float64
	Color            Color
	OffsetX, OffsetY float64
	Data             any
}

// ImageRecord is a bitmap of Width×Height pixels with an optional marker at
// its hotspot.
type ImageRecord struct {
	Pos              orb.Point
	Bitmap           image.Image
	Width, Height    float64
	Anchor           placement.Anchor
	OffsetX, OffsetY float64
	Radius           float64 // marker radius, 0 for none
	Color            Color   // marker colour
	Data             any
}

// TextRecord is a string with an optional marker at its hotspot.
type TextRecord struct {
	Pos              orb.Point
	Text             string
	Anchor           placement.Anchor
	Radius           float64 // marker radius, 0 for none
	Color            Color   // marker colour
	TextColor        Color
	Font             Font
	OffsetX, OffsetY float64
	Data             any
}

// PolygonRecord is a polyline, closed or filled on request. Filled implies closed.
type PolygonRecord struct {
	Vertices         []orb.Point
	Anchor           placement.Anchor
	Width            float64
	Color            Color
	Closed           bool
	Filled           bool
	FillColor        Color
	OffsetX, OffsetY float64
	Data             any
}

func (PointRecord) Kind() Kind   { return KindPoint }
func (ImageRecord) Kind() Kind   { return KindImage }
func (TextRecord) Kind() Kind    { return KindText }
func (PolygonRecord) Kind() Kind { return KindPolygon }

func (r PointRecord) UserData() any   { return r.Data }
func (r ImageRecord) UserData() any   { return r.Data }
func (r TextRecord) UserData() any    { return r.Data }
func (r PolygonRecord) UserData() any { return r.Data }

func (PointRecord) isRecord()   {}
func (ImageRecord) isRecord()   {}
func (TextRecord) isRecord()    {}
func (PolygonRecord) isRecord() {}

func (r PointRecord) Validate() error {
	if err := checkPos("position", r.Pos); err != nil {
		return err
	}
	if err := checkCommon(r.Anchor, r.OffsetX, r.OffsetY); err != nil {
		return err
	}
	return checkNonNeg("radius", r.Radius)
}

func (r ImageRecord) Validate() error {
	if err := checkPos("position", r.Pos); err != nil {
		return err
	}
	if err := checkCommon(r.Anchor, r.OffsetX, r.OffsetY); err != nil {
		return err
	}
	if !(r.Width > 0) || !(r.Height > 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0) {
		return fmt.Errorf("%w: image size %vx%v", ErrInvalidRecord, r.Width, r.Height)
	}
	return checkNonNeg("radius", r.Radius)
}

func (r TextRecord) Validate() error {
	if err := checkPos("position", r.Pos); err != nil {
		return err
	}
	if err := checkCommon(r.Anchor, r.OffsetX, r.OffsetY); err != nil {
		return err
	}
	if err := checkNonNeg("font size", r.Font.Size); err != nil {
		return err
	}
	return checkNonNeg("radius", r.Radius)
}

func (r PolygonRecord) Validate() error {
	if len(r.Vertices) < 2 {
		return fmt.Errorf("%w: polygon needs at least 2 vertices, got %d", ErrInvalidRecord, len(r.Vertices))
	}
	for i, v := range r.Vertices {
		if err := checkPos(fmt.Sprintf("vertex %d", i), v); err != nil {
			return err
		}
	}
	if err := checkCommon(r.Anchor, r.OffsetX, r.OffsetY); err != nil {
		return err
	}
	return checkNonNeg("width", r.Width)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func checkPos(field string, p orb.Point) error {
	if !finite(p.X()) || !finite(p.Y()) {
		return fmt.Errorf("%w: %s %v is not finite", ErrInvalidRecord, field, p)
	}
	return nil
}

func checkCommon(a placement.Anchor, ox, oy float64) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, placement.ErrUnknownAnchor)
	}
	if !finite(ox) || !finite(oy) {
		return fmt.Errorf("%w: offset (%v,%v) is not finite", ErrInvalidRecord, ox, oy)
	}
	return nil
}

func checkNonNeg(field string, v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: %s %v must be a finite non-negative number", ErrInvalidRecord, field, v)
	}
	return nil
}
