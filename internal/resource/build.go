/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package resource

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"

	"github.com/paulmach/orb"

	"goslip/internal/layer"
	"goslip/internal/slipmap"
)

// Defaults are the global per-kind attributes, applied under layer defaults.
type Defaults struct {
	Point   Attrs `yaml:"point"`
	Image   Attrs `yaml:"image"`
	Text    Attrs `yaml:"text"`
	Polygon Attrs `yaml:"polygon"`
}

func (d Defaults) forKind(k layer.Kind) Attrs {
	switch k {
	case layer.KindImage:
		return d.Image
	case layer.KindText:
		return d.Text
	case layer.KindPolygon:
		return d.Polygon
	default:
		return d.Point
	}
}

// over returns a with its nil fields taken from b.
func (a Attrs) over(b Attrs) Attrs {
	pick(&a.Anchor, b.Anchor)
	pick(&a.Radius, b.Radius)
	pick(&a.Color, b.Color)
	pick(&a.TextColor, b.TextColor)
	pick(&a.Font, b.Font)
	pick(&a.OffsetX, b.OffsetX)
	pick(&a.OffsetY, b.OffsetY)
	pick(&a.Width, b.Width)
	pick(&a.Closed, b.Closed)
	pick(&a.Filled, b.Filled)
	pick(&a.FillColor, b.FillColor)
	return a
}

func pick[T any](dst **T, src *T) {
	if *dst == nil {
		*dst = src
	}
}

func or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Bitmaps decodes image files once per path.
type Bitmaps struct {
	cache map[string]image.Image
}

// NewBitmaps returns an empty bitmap cache.
func NewBitmaps() *Bitmaps { return &Bitmaps{cache: make(map[string]image.Image)} }

// Load returns the decoded image at path.
func (b *Bitmaps) Load(path string) (image.Image, error) {
	if img, ok := b.cache[path]; ok {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	b.cache[path] = img
	return img, nil
}

// Build turns the named layer into a layer ready for a store. Record
// attributes win over the layer defaults, which win over d, which win over
// the built-in styles.
func (r *Resource) Build(name string, d Defaults, bitmaps *Bitmaps) (layer.Layer, error) {
	rl, ok := r.Layers[name]
	if !ok {
		return layer.Layer{}, fmt.Errorf("%w: no layer %q", ErrInvalid, name)
	}
	kind, err := layer.ParseKind(rl.Kind)
	if err != nil {
		return layer.Layer{}, fmt.Errorf("layer %q: %w: %v", name, ErrInvalid, err)
	}
	if bitmaps == nil {
		bitmaps = NewBitmaps()
	}
	l := layer.Layer{
		Name:            name,
		Kind:            kind,
		MapRelative:     rl.MapRelative,
		Visible:         or(rl.Visible, true),
		Selectable:      rl.Selectable,
		SelectionRadius: rl.SelectionRadius,
	}
	if rl.ShowLevels != nil {
		l.ShowLevels = layer.Levels(rl.ShowLevels...)
	}
	base := rl.Defaults.over(d.forKind(kind))
	l.Records = make([]layer.Record, 0, len(rl.Records))
	for i, rec := range rl.Records {
		out, err := r.buildRecord(kind, rl.MapRelative, rec, rec.Attrs.over(base), bitmaps)
		if err != nil {
			return layer.Layer{}, fmt.Errorf("layer %q record %d: %w", name, i, err)
		}
		l.Records = append(l.Records, out)
	}
	if err := l.Validate(); err != nil {
		return layer.Layer{}, fmt.Errorf("layer %q: %w", name, err)
	}
	return l, nil
}

func (r *Resource) buildRecord(kind layer.Kind, mapRel bool, rec Record, a Attrs, bitmaps *Bitmaps) (layer.Record, error) {
	pos := orb.Point{rec.X, rec.Y}
	switch kind {
	case layer.KindPoint:
		s := layer.DefaultPointStyle()
		return layer.PointRecord{
			Pos:     pos,
			Anchor:  or(a.Anchor, s.Anchor),
			Radius:  or(a.Radius, s.Radius),
			Color:   or(a.Color, s.Color),
			OffsetX: or(a.OffsetX, s.OffsetX),
			OffsetY: or(a.OffsetY, s.OffsetY),
			Data:    rec.Data,
		}, nil
	case layer.KindImage:
		s := layer.DefaultImageStyle()
		path := rec.Image
		if path != "" && !filepath.IsAbs(path) && r.Path != "" {
			path = filepath.Join(filepath.Dir(r.Path), path)
		}
		out := layer.ImageRecord{
			Pos:     pos,
			Width:   rec.ImageWidth,
			Height:  rec.ImageHeight,
			Anchor:  or(a.Anchor, s.Anchor),
			OffsetX: or(a.OffsetX, s.OffsetX),
			OffsetY: or(a.OffsetY, s.OffsetY),
			Radius:  or(a.Radius, s.Radius),
			Color:   or(a.Color, s.Color),
			Data:    rec.Data,
		}
		if path != "" {
			img, err := bitmaps.Load(path)
			if err != nil {
				return nil, err
			}
			out.Bitmap = img
			if out.Width == 0 || out.Height == 0 {
				sz := img.Bounds().Size()
				out.Width, out.Height = float64(sz.X), float64(sz.Y)
			}
		}
		return out, nil
	case layer.KindText:
		s := layer.DefaultTextStyle(mapRel)
		return layer.TextRecord{
			Pos:       pos,
			Text:      rec.Text,
			Anchor:    or(a.Anchor, s.Anchor),
			Radius:    or(a.Radius, s.Radius),
			Color:     or(a.Color, s.Color),
			TextColor: or(a.TextColor, s.TextColor),
			Font:      or(a.Font, s.Font),
			OffsetX:   or(a.OffsetX, s.OffsetX),
			OffsetY:   or(a.OffsetY, s.OffsetY),
			Data:      rec.Data,
		}, nil
	case layer.KindPolygon:
		s := layer.DefaultPolygonStyle(mapRel)
		verts := make([]orb.Point, len(rec.Vertices))
		for i, v := range rec.Vertices {
			verts[i] = orb.Point{v[0], v[1]}
		}
		return layer.PolygonRecord{
			Vertices:  verts,
			Anchor:    or(a.Anchor, s.Anchor),
			Width:     or(a.Width, s.Width),
			Color:     or(a.Color, s.Color),
			Closed:    or(a.Closed, s.Closed),
			Filled:    or(a.Filled, s.Filled),
			FillColor: or(a.FillColor, s.FillColor),
			OffsetX:   or(a.OffsetX, s.OffsetX),
			OffsetY:   or(a.OffsetY, s.OffsetY),
			Data:      rec.Data,
		}, nil
	}
	return nil, fmt.Errorf("%w: layer kind %v", ErrInvalid, kind)
}

// Install builds every layer in name order and adds it to m. It returns
// the new layer ids by name. Nothing is added when any layer fails to build.
func (r *Resource) Install(m *slipmap.Map, d Defaults) (map[string]int, error) {
	bitmaps := NewBitmaps()
	built := make([]layer.Layer, 0, r.Len())
	for _, name := range r.Names() {
		l, err := r.Build(name, d, bitmaps)
		if err != nil {
			return nil, err
		}
		built = append(built, l)
	}
	ids := make(map[string]int, len(built))
	for _, l := range built {
		id, err := m.AddLayer(l)
		if err != nil {
			return ids, fmt.Errorf("install %q: %w", l.Name, err)
		}
		ids[l.Name] = id
	}
	return ids, nil
}

// FromLayer captures a store layer as a resource layer. Image bitmaps are
// not carried over; the caller sets Record.Image paths.
func FromLayer(l *layer.Layer) *Layer {
	out := &Layer{
		Kind:            l.Kind.String(),
		MapRelative:     l.MapRelative,
		Selectable:      l.Selectable,
		SelectionRadius: l.SelectionRadius,
		Records:         make([]Record, 0, len(l.Records)),
	}
	if !l.Visible {
		out.Visible = ptr(false)
	}
	for lvl := range l.ShowLevels {
		out.ShowLevels = append(out.ShowLevels, lvl)
	}
	slices.Sort(out.ShowLevels)
	for _, rec := range l.Records {
		out.Records = append(out.Records, fromRecord(rec))
	}
	return out
}

func fromRecord(rec layer.Record) Record {
	switch r := rec.(type) {
	case layer.PointRecord:
		return Record{X: r.Pos.X(), Y: r.Pos.Y(), Data: r.Data, Attrs: Attrs{
			Anchor: ptr(r.Anchor), Radius: ptr(r.Radius), Color: ptr(r.Color),
			OffsetX: ptr(r.OffsetX), OffsetY: ptr(r.OffsetY),
		}}
	case layer.ImageRecord:
		return Record{X: r.Pos.X(), Y: r.Pos.Y(), ImageWidth: r.Width, ImageHeight: r.Height, Data: r.Data, Attrs: Attrs{
			Anchor: ptr(r.Anchor), Radius: ptr(r.Radius), Color: ptr(r.Color),
			OffsetX: ptr(r.OffsetX), OffsetY: ptr(r.OffsetY),
		}}
	case layer.TextRecord:
		return Record{X: r.Pos.X(), Y: r.Pos.Y(), Text: r.Text, Data: r.Data, Attrs: Attrs{
			Anchor: ptr(r.Anchor), Radius: ptr(r.Radius), Color: ptr(r.Color), TextColor: ptr(r.TextColor),
			Font: ptr(r.Font), OffsetX: ptr(r.OffsetX), OffsetY: ptr(r.OffsetY),
		}}
	case layer.PolygonRecord:
		verts := make([][2]float64, len(r.Vertices))
		for i, v := range r.Vertices {
			verts[i] = [2]float64{v.X(), v.Y()}
		}
		return Record{Vertices: verts, Data: r.Data, Attrs: Attrs{
			Anchor: ptr(r.Anchor), Width: ptr(r.Width), Color: ptr(r.Color),
			Closed: ptr(r.Closed), Filled: ptr(r.Filled), FillColor: ptr(r.FillColor),
			OffsetX: ptr(r.OffsetX), OffsetY: ptr(r.OffsetY),
		}}
	}
	return Record{}
}

func ptr[T any](v T) *T { return &v }
