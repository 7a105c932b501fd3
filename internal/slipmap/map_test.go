/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package slipmap

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"goslip/internal/geom"
	"goslip/internal/layer"
	"goslip/internal/placement"
	"goslip/internal/tiles"
	"goslip/internal/view"
)

// newMap returns an 800×600 view over a 1024 unit square map with levels
// 0..2; at level 0 one map unit is one pixel.
func newMap(t *testing.T) *Map {
	t.Helper()
	f := tiles.NewFlat(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1024, 1024}}, 0, 2)
	f.BaseCols, f.BaseRows = 4, 4
	return New(f, 800, 600, Options{})
}

func TestNewCentresMap(t *testing.T) {
	m := newMap(t)
	vp := m.Viewport()
	if vp.OffsetX != 112 || vp.OffsetY != 212 || vp.Level != 0 {
		t.Fatalf("viewport = %+v", vp)
	}
	tl := m.VisibleTiles()
	if tl.Cols != (view.Range{Start: 0, Stop: 4}) || tl.Rows != (view.Range{Start: 0, Stop: 4}) {
		t.Fatalf("tiles = %+v", tl)
	}
	if tl.FirstX != -112 || tl.FirstY != -212 {
		t.Fatalf("first tile at (%v,%v)", tl.FirstX, tl.FirstY)
	}
}

func TestSetLevel(t *testing.T) {
	m := newMap(t)
	if err := m.SetLevel(3); !errors.Is(err, tiles.ErrLevelOutOfRange) {
		t.Fatalf("SetLevel(3) err = %v", err)
	}
	if m.Level() != 0 {
		t.Fatalf("level changed on error: %d", m.Level())
	}
	if err := m.SetLevel(1); err != nil {
		t.Fatalf("SetLevel(1): %v", err)
	}
	vp := m.Viewport()
	if vp.Level != 1 || vp.OffsetX != 624 || vp.OffsetY != 724 {
		t.Fatalf("viewport after zoom = %+v", vp)
	}
	c := m.ViewToMap(geom.Pt(400, 300))
	if c.X() != 512 || c.Y() != 512 {
		t.Fatalf("centre moved to %v", c)
	}
}

func TestPanAndResizeClamp(t *testing.T) {
	m := newMap(t)
	m.Pan(-1000, 0)
	if vp := m.Viewport(); vp.OffsetX != 0 || vp.OffsetY != 212 {
		t.Fatalf("pan left = %+v", vp)
	}
	m.Pan(1000, 1000)
	if vp := m.Viewport(); vp.OffsetX != 224 || vp.OffsetY != 424 {
		t.Fatalf("pan right/down = %+v", vp)
	}
	m.Resize(2000, 1500)
	if vp := m.Viewport(); vp.OffsetX != -488 || vp.OffsetY != -238 {
		t.Fatalf("resize past map = %+v", vp)
	}
	if m.PositionIsOnMap(geom.Pt(10, 10)) {
		t.Fatalf("background pixel reported on map")
	}
	if !m.PositionIsOnMap(geom.Pt(1000, 750)) {
		t.Fatalf("centre pixel reported off map")
	}
}

func TestZoomToArea(t *testing.T) {
	cases := []struct {
		name string
		w, h float64
		want int
	}{
		{"wide area", 500, 10, 0},
		{"medium area", 300, 200, 1},
		{"tiny area", 1, 1, 2},
	}
	for _, tc := range cases {
		m := newMap(t)
		if err := m.ZoomToArea(orb.Point{512, 512}, tc.w, tc.h); err != nil {
			t.Fatalf("%s: ZoomToArea: %v", tc.name, err)
		}
		if m.Level() != tc.want {
			t.Fatalf("%s: level = %d, want %d", tc.name, m.Level(), tc.want)
		}
	}
}

func TestZoomInOut(t *testing.T) {
	m := newMap(t)
	// map point (412,612) is under view pixel (300,200) at level 0
	if err := m.ZoomIn(geom.Pt(300, 200)); err != nil {
		t.Fatalf("ZoomIn: %v", err)
	}
	c := m.ViewToMap(geom.Pt(400, 300))
	if c.X() != 412 || c.Y() != 612 {
		t.Fatalf("centre after ZoomIn = %v", c)
	}
	if err := m.ZoomIn(geom.Pt(400, 300)); err != nil {
		t.Fatalf("ZoomIn to 2: %v", err)
	}
	if err := m.ZoomIn(geom.Pt(400, 300)); !errors.Is(err, tiles.ErrLevelOutOfRange) {
		t.Fatalf("ZoomIn past max err = %v", err)
	}
	if err := m.ZoomOut(geom.Pt(400, 300)); err != nil || m.Level() != 1 {
		t.Fatalf("ZoomOut: level %d err %v", m.Level(), err)
	}
}

func TestSelectViewRelativePoint(t *testing.T) {
	m := newMap(t)
	id, err := m.AddPointLayer([]layer.PointRecord{
		{Pos: orb.Point{50, 50}, Anchor: placement.NorthWest, OffsetX: 5, OffsetY: 5, Radius: 3, Data: "here"},
	}, LayerOptions{Name: "legend", Selectable: true, SelectionRadius: 100})
	if err != nil {
		t.Fatalf("AddPointLayer: %v", err)
	}
	sel := m.Select(geom.Pt(56, 56))
	if len(sel) != 1 || sel[0].LayerID != id || !reflect.DeepEqual(sel[0].Data(), []any{"here"}) {
		t.Fatalf("Select(56,56) = %+v", sel)
	}
	if sel := m.Select(geom.Pt(500, 500)); len(sel) != 0 {
		t.Fatalf("Select(500,500) = %+v", sel)
	}
	// panning does not move view-relative records
	m.Pan(100, 100)
	if sel := m.Select(geom.Pt(56, 56)); len(sel) != 1 {
		t.Fatalf("Select after pan = %+v", sel)
	}
}

func TestSelectMapRelativeFollowsPan(t *testing.T) {
	m := newMap(t)
	id, err := m.AddPointLayer([]layer.PointRecord{{Pos: orb.Point{512, 512}, Radius: 3, Data: 1}},
		LayerOptions{MapRelative: true, Selectable: true})
	if err != nil {
		t.Fatalf("AddPointLayer: %v", err)
	}
	if l, _ := m.Layer(id); l.SelectionRadius != layer.DefaultSelectionRadius {
		t.Fatalf("default selection radius = %v", l.SelectionRadius)
	}
	if sel := m.Select(geom.Pt(400, 300)); len(sel) != 1 {
		t.Fatalf("centre click = %+v", sel)
	}
	m.Pan(50, 0)
	if sel := m.Select(geom.Pt(400, 300)); len(sel) != 0 {
		t.Fatalf("record should have moved: %+v", sel)
	}
	if sel, err := m.SelectInLayer(id, geom.Pt(350, 300)); err != nil || sel == nil {
		t.Fatalf("SelectInLayer = %+v, %v", sel, err)
	}
}

func TestSelectRespectsLayerFlags(t *testing.T) {
	m := newMap(t)
	recs := []layer.PointRecord{{Pos: orb.Point{10, 10}, Radius: 3}}
	id, err := m.AddPointLayer(recs, LayerOptions{Selectable: true})
	if err != nil {
		t.Fatalf("AddPointLayer: %v", err)
	}
	click := geom.Pt(10, 10)
	if len(m.Select(click)) != 1 {
		t.Fatalf("baseline select failed")
	}
	if err := m.HideLayer(id); err != nil {
		t.Fatalf("HideLayer: %v", err)
	}
	if len(m.Select(click)) != 0 {
		t.Fatalf("hidden layer selected")
	}
	_ = m.ShowLayer(id)
	_ = m.SetLayerShowLevels(id, 1, 2)
	if len(m.Select(click)) != 0 {
		t.Fatalf("layer selected at a level it does not show at")
	}
	_ = m.SetLayerShowLevels(id)
	_ = m.SetLayerSelectable(id, false)
	if len(m.Select(click)) != 0 || len(m.BoxSelect(geom.Pt(0, 0), geom.Pt(20, 20))) != 0 {
		t.Fatalf("unselectable layer selected")
	}
	if sel, err := m.SelectInLayer(id, click); sel != nil || err != nil {
		t.Fatalf("SelectInLayer on unselectable layer = %+v, %v", sel, err)
	}
	if _, err := m.SelectInLayer(99, click); !errors.Is(err, layer.ErrUnknownLayer) {
		t.Fatalf("unknown layer err = %v", err)
	}
	if _, err := m.BoxSelectInLayer(99, click, click); !errors.Is(err, layer.ErrUnknownLayer) {
		t.Fatalf("unknown layer box err = %v", err)
	}
}

func TestBoxSelectAcrossLayers(t *testing.T) {
	m := newMap(t)
	a, _ := m.AddPointLayer([]layer.PointRecord{{Pos: orb.Point{10, 10}, Radius: 3, Data: "a"}}, LayerOptions{Selectable: true})
	b, _ := m.AddTextLayer([]layer.TextRecord{{Pos: orb.Point{20, 20}, Text: "b", Font: layer.Font{Size: 10}, Data: "b"}}, LayerOptions{Selectable: true})
	_, _ = m.AddPolygonLayer([]layer.PolygonRecord{{Vertices: []orb.Point{{0, 0}, {500, 500}}, Data: "big"}}, LayerOptions{Selectable: true})
	sel := m.BoxSelect(geom.Pt(30, 30), geom.Pt(0, 0))
	if len(sel) != 2 || sel[0].LayerID != a || sel[1].LayerID != b {
		t.Fatalf("BoxSelect = %+v", sel)
	}
	if s, err := m.BoxSelectInLayer(b, geom.Pt(0, 0), geom.Pt(30, 30)); err != nil || s == nil {
		t.Fatalf("BoxSelectInLayer = %+v, %v", s, err)
	}
}

func TestDrawListOrder(t *testing.T) {
	m := newMap(t)
	one, _ := m.AddPointLayer([]layer.PointRecord{{Pos: orb.Point{1, 1}, Radius: 1}}, LayerOptions{Name: "one"})
	two, _ := m.AddImageLayer([]layer.ImageRecord{{Pos: orb.Point{1, 1}, Width: 4, Height: 4}}, LayerOptions{Name: "two"})
	three, _ := m.AddPointLayer([]layer.PointRecord{{Pos: orb.Point{1, 1}, Radius: 1}}, LayerOptions{Name: "three", Hidden: true})

	names := func() []string {
		var out []string
		for _, d := range m.DrawList() {
			out = append(out, d.Layer.Name)
			if len(d.Placed) != len(d.Layer.Records) {
				t.Fatalf("layer %s placed %d of %d records", d.Layer.Name, len(d.Placed), len(d.Layer.Records))
			}
		}
		return out
	}
	if got := names(); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("DrawList = %v", got)
	}
	_ = m.ShowLayer(three)
	_ = m.PushLayerToBack(three)
	_ = m.PopLayerToFront(one)
	if got := names(); !reflect.DeepEqual(got, []string{"three", "two", "one"}) {
		t.Fatalf("DrawList after reorder = %v", got)
	}
	_ = m.PlaceLayerBelow(one, two)
	if got := names(); !reflect.DeepEqual(got, []string{"three", "one", "two"}) {
		t.Fatalf("DrawList after PlaceLayerBelow = %v", got)
	}
	if err := m.DeleteLayer(two); err != nil {
		t.Fatalf("DeleteLayer: %v", err)
	}
	if _, err := m.PlacedRecords(two); !errors.Is(err, layer.ErrUnknownLayer) {
		t.Fatalf("PlacedRecords on deleted layer err = %v", err)
	}
	if p, err := m.PlacedRecords(one); err != nil || len(p) != 1 {
		t.Fatalf("PlacedRecords = %v, %v", p, err)
	}
}

func TestAddLayerRejectsBadRecords(t *testing.T) {
	m := newMap(t)
	_, err := m.AddImageLayer([]layer.ImageRecord{{Pos: orb.Point{1, 1}}}, LayerOptions{})
	if !errors.Is(err, layer.ErrInvalidRecord) {
		t.Fatalf("zero-size image err = %v", err)
	}
	if len(m.Layers()) != 0 {
		t.Fatalf("rejected layer was stored")
	}
}

func TestBackForward(t *testing.T) {
	m := newMap(t)
	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }
	step := func() { clock = clock.Add(time.Second) }

	start := m.Viewport()
	m.Pan(50, 0)
	step()
	if err := m.SetLevel(1); err != nil {
		t.Fatal(err)
	}
	zoomed := m.Viewport()

	if !m.Back() {
		t.Fatalf("Back() = false")
	}
	if vp := m.Viewport(); vp.Level != 0 || vp.OffsetX != 162 || vp.OffsetY != 212 {
		t.Fatalf("after first Back = %+v", vp)
	}
	if !m.Back() || m.Viewport() != start {
		t.Fatalf("after second Back = %+v, want %+v", m.Viewport(), start)
	}
	if m.Back() {
		t.Fatalf("Back past the start succeeded")
	}
	m.Forward()
	if !m.Forward() || m.Viewport() != zoomed {
		t.Fatalf("after Forward = %+v, want %+v", m.Viewport(), zoomed)
	}
}

func TestDragCoalescesInHistory(t *testing.T) {
	m := newMap(t)
	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }
	start := m.Viewport()
	for i := 0; i < 10; i++ {
		m.Pan(5, 5)
		clock = clock.Add(20 * time.Millisecond)
	}
	if !m.Back() || m.Viewport() != start {
		t.Fatalf("Back after drag = %+v, want %+v", m.Viewport(), start)
	}
	if m.Back() {
		t.Fatalf("drag recorded more than one step")
	}
}

func TestSelectPolygonCoveringView(t *testing.T) {
	m := newMap(t)
	if err := m.SetLevel(2); err != nil {
		t.Fatal(err)
	}
	id, err := m.AddPolygonLayer([]layer.PolygonRecord{{
		Vertices: []orb.Point{{0, 0}, {1024, 0}, {1024, 1024}, {0, 1024}}, Data: "land",
	}}, LayerOptions{MapRelative: true, Selectable: true})
	if err != nil {
		t.Fatal(err)
	}
	if d := m.DrawList(); len(d) != 1 || d[0].Placed[0].Visible() {
		t.Fatalf("polygon corners should all be off view: %+v", d)
	}
	sel := m.Select(geom.Pt(400, 300))
	if len(sel) != 1 || sel[0].LayerID != id || sel[0].Items[0].Data != "land" {
		t.Fatalf("Select = %+v", sel)
	}
}

func TestImageClickNearestOption(t *testing.T) {
	img := []layer.ImageRecord{{Pos: orb.Point{100, 100}, Width: 50, Height: 50, Anchor: placement.NorthWest, Data: "pic"}}
	for _, on := range []bool{false, true} {
		f := tiles.NewFlat(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1024, 1024}}, 0, 2)
		f.BaseCols, f.BaseRows = 4, 4
		m := New(f, 800, 600, Options{ImageClickNearest: on})
		if _, err := m.AddImageLayer(img, LayerOptions{Selectable: true}); err != nil {
			t.Fatal(err)
		}
		sel := m.Select(geom.Pt(96, 97))
		if got := len(sel) == 1; got != on {
			t.Fatalf("ImageClickNearest=%v: Select = %+v", on, sel)
		}
	}
}
