/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package resource

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"goslip/internal/layer"
	"goslip/internal/placement"
	"goslip/internal/slipmap"
	"goslip/internal/tiles"
)

func f64(v float64) *float64 { return &v }

func cities() *Layer {
	return &Layer{
		Kind:        "point",
		MapRelative: true,
		Selectable:  true,
		ShowLevels:  []int{1, 2},
		Defaults:    Attrs{Color: ptr(layer.Color{G: 0x80, A: 0xff})},
		Records: []Record{
			{X: 10, Y: 20, Data: "alpha"},
			{X: 30, Y: 40, Attrs: Attrs{Anchor: ptr(placement.NorthEast), Radius: f64(5)}, Data: "beta"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "layers.json")
	r := New()
	r.AddLayer("cities", cities())
	r.AddLayer("legend", &Layer{Kind: "text", Records: []Record{{X: 5, Y: 5, Text: "Legend"}}})
	if err := r.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Path != path || got.Version != FormatVersion {
		t.Fatalf("path/version = %q/%d", got.Path, got.Version)
	}
	if !reflect.DeepEqual(got.Names(), []string{"cities", "legend"}) || got.Len() != 2 {
		t.Fatalf("Names = %v", got.Names())
	}
	c, ok := got.Layer("cities")
	if !ok || c.Kind != "point" || !c.MapRelative || len(c.Records) != 2 {
		t.Fatalf("cities = %+v", c)
	}
	if c.Records[1].Anchor == nil || *c.Records[1].Anchor != placement.NorthEast || c.Records[1].Data != "beta" {
		t.Fatalf("record attrs lost: %+v", c.Records[1])
	}
	got.DeleteLayer("legend")
	got.DeleteLayer("missing")
	if got.Len() != 1 {
		t.Fatalf("Len after delete = %d", got.Len())
	}
	if err := got.Write(""); err != nil {
		t.Fatalf("Write to own path: %v", err)
	}
}

func TestWriteWithoutPath(t *testing.T) {
	if err := New().Write(""); !errors.Is(err, ErrNoPath) {
		t.Fatalf("Write err = %v", err)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"version":`,
		"missing version": `{"layers":{}}`,
		"bad kind":        `{"version":1,"layers":{"x":{"kind":"blob","records":[]}}}`,
		"short polygon":   `{"version":1,"layers":{"x":{"kind":"polygon","records":[{"vertices":[[1,2]]}]}}}`,
		"negative radius": `{"version":1,"layers":{"x":{"kind":"point","records":[{"x":1,"y":2,"radius":-1}]}}}`,
		"bad anchor":      `{"version":1,"layers":{"x":{"kind":"point","records":[{"x":1,"y":2,"anchor":"up"}]}}}`,
		"bad colour":      `{"version":1,"layers":{"x":{"kind":"point","records":[{"x":1,"y":2,"color":"#12"}]}}}`,
	}
	for name, doc := range cases {
		if _, err := Decode([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: err = %v, want ErrInvalid", name, err)
		}
	}
}

func TestBuildMergesDefaults(t *testing.T) {
	r := New()
	r.AddLayer("cities", cities())
	d := Defaults{Point: Attrs{Radius: f64(7), Color: ptr(layer.Color{R: 1, A: 0xff})}}
	l, err := r.Build("cities", d, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l.Kind != layer.KindPoint || !l.Visible || !l.Selectable || l.VisibleAt(0) || !l.VisibleAt(2) {
		t.Fatalf("layer flags = %+v", l)
	}
	first := l.Records[0].(layer.PointRecord)
	// radius from global defaults, colour from layer defaults, anchor built in
	if first.Radius != 7 || first.Color != (layer.Color{G: 0x80, A: 0xff}) || first.Anchor != placement.Center {
		t.Fatalf("first record = %+v", first)
	}
	second := l.Records[1].(layer.PointRecord)
	if second.Radius != 5 || second.Anchor != placement.NorthEast || second.Data != "beta" {
		t.Fatalf("second record = %+v", second)
	}
	if _, err := r.Build("nope", d, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("unknown layer err = %v", err)
	}
}

func TestBuildTextDefaultsDependOnFrame(t *testing.T) {
	r := New()
	r.AddLayer("map", &Layer{Kind: "text", MapRelative: true, Records: []Record{{Text: "a"}}})
	r.AddLayer("view", &Layer{Kind: "text", Records: []Record{{Text: "a"}}})
	m, _ := r.Build("map", Defaults{}, nil)
	v, _ := r.Build("view", Defaults{}, nil)
	mt, vt := m.Records[0].(layer.TextRecord), v.Records[0].(layer.TextRecord)
	if mt.OffsetX != 5 || mt.OffsetY != 1 || mt.Radius != 2 {
		t.Fatalf("map-relative text = %+v", mt)
	}
	if vt.OffsetX != 0 || vt.Radius != 0 || vt.Font.Size != 10 {
		t.Fatalf("view-relative text = %+v", vt)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestBuildImagesResolveRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "marker.png"), 8, 4)
	doc := `{"version":1,"layers":{"pins":{"kind":"image","map_relative":true,"records":[
		{"x":1,"y":2,"image":"marker.png"},
		{"x":3,"y":4,"image":"marker.png","image_width":16,"image_height":8}
	]}}}`
	path := filepath.Join(dir, "pins.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	bm := NewBitmaps()
	l, err := r.Build("pins", Defaults{}, bm)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, b := l.Records[0].(layer.ImageRecord), l.Records[1].(layer.ImageRecord)
	if a.Width != 8 || a.Height != 4 || b.Width != 16 || b.Height != 8 {
		t.Fatalf("sizes %vx%v, %vx%v", a.Width, a.Height, b.Width, b.Height)
	}
	if a.Bitmap == nil || a.Bitmap != b.Bitmap {
		t.Fatalf("bitmap not shared between records")
	}
	if len(bm.cache) != 1 {
		t.Fatalf("cache size = %d", len(bm.cache))
	}

	r.Layers["pins"].Records[0].Image = "missing.png"
	if _, err := r.Build("pins", Defaults{}, nil); err == nil || !strings.Contains(err.Error(), "record 0") {
		t.Fatalf("missing image err = %v", err)
	}
}

func newMap() *slipmap.Map {
	f := tiles.NewFlat(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1024, 1024}}, 0, 2)
	return slipmap.New(f, 800, 600, slipmap.Options{})
}

func TestInstall(t *testing.T) {
	r := New()
	r.AddLayer("cities", cities())
	hidden := false
	r.AddLayer("area", &Layer{Kind: "polygon", Visible: &hidden, Records: []Record{{Vertices: [][2]float64{{0, 0}, {10, 0}, {10, 10}}}}})
	m := newMap()
	ids, err := r.Install(m, Defaults{})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if ids["area"] != 1 || ids["cities"] != 2 {
		t.Fatalf("ids = %v", ids)
	}
	area, err := m.Layer(ids["area"])
	if err != nil || area.Visible || area.Name != "area" {
		t.Fatalf("area = %+v, %v", area, err)
	}
	if pr := area.Records[0].(layer.PolygonRecord); pr.Anchor != placement.NorthWest || pr.Width != 1 {
		t.Fatalf("polygon defaults = %+v", pr)
	}
}

func TestInstallIsAllOrNothing(t *testing.T) {
	r := New()
	r.AddLayer("a", cities())
	r.AddLayer("b", &Layer{Kind: "polygon", Records: []Record{{Vertices: [][2]float64{{0, 0}}}}})
	m := newMap()
	if _, err := r.Install(m, Defaults{}); err == nil {
		t.Fatalf("Install accepted a one-vertex polygon")
	}
	if len(m.Layers()) != 0 {
		t.Fatalf("layers added before the failure: %d", len(m.Layers()))
	}
}

func TestFromLayerRoundTrip(t *testing.T) {
	r := New()
	r.AddLayer("cities", cities())
	r.AddLayer("shape", &Layer{Kind: "polygon", MapRelative: true, Records: []Record{
		{Vertices: [][2]float64{{0, 0}, {5, 0}, {5, 5}}, Attrs: Attrs{Filled: ptr(true)}, Data: "tri"},
	}})
	for _, name := range r.Names() {
		orig, err := r.Build(name, Defaults{}, nil)
		if err != nil {
			t.Fatalf("Build(%s): %v", name, err)
		}
		back := New()
		back.AddLayer(name, FromLayer(&orig))
		data, err := back.Encode()
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		dec, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v\n%s", name, err, data)
		}
		again, err := dec.Build(name, Defaults{}, nil)
		if err != nil {
			t.Fatalf("rebuild %s: %v", name, err)
		}
		if !reflect.DeepEqual(orig.Records, again.Records) || !reflect.DeepEqual(orig.ShowLevels, again.ShowLevels) {
			t.Fatalf("%s changed:\n%+v\n%+v", name, orig.Records, again.Records)
		}
	}
}
