/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package slipmap is the map state facade: one tile source, one viewport,
// a layer store and the placement and hit-testing engines bound to them.
// Every viewport change goes through Map, so placements and selections
// always see the current view.
package slipmap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"goslip/internal/geom"
	"goslip/internal/history"
	"goslip/internal/hittest"
	"goslip/internal/layer"
	applog "goslip/internal/log"
	"goslip/internal/pex"
	"goslip/internal/tiles"
	"goslip/internal/view"
)

// Options configures a new Map.
type Options struct {
	Level int // start level, the source's minimum when outside its range
	// SelectionRadius is used for layers added without one.
	SelectionRadius float64
	Measurer        pex.TextMeasurer // nil uses pex.FixedMeasurer
	// BoxImagesByExtent makes box selection of images require the whole
	// image inside the box.
	BoxImagesByExtent bool
	// ImageClickNearest lets image clicks fall back to the nearest hotspot.
	ImageClickNearest bool
	// History bounds the back/forward viewport stacks.
	History history.Config
}

// LayerOptions holds the per-layer flags for the Add*Layer calls.
type LayerOptions struct {
	Name            string
	MapRelative     bool
	Hidden          bool
	Selectable      bool
	ShowLevels      []int // nil shows the layer at every level
	SelectionRadius float64
}

// Map ties a tile source, a viewport and a set of layers together.
type Map struct {
	src    tiles.Source
	t      *view.Transformer
	store  *layer.Store
	engine *pex.Engine
	hits   *hittest.Tester
	radius float64
	hist   *history.Stack
	now    func() time.Time
	log    *slog.Logger
}

// New returns a map over src showing a w×h view centred on the map.
func New(src tiles.Source, w, h int, opts Options) *Map {
	level := opts.Level
	if level < src.MinLevel() || level > src.MaxLevel() {
		level = src.MinLevel()
	}
	radius := opts.SelectionRadius
	if radius <= 0 {
		radius = layer.DefaultSelectionRadius
	}
	t := view.NewTransformer(src, view.Viewport{Width: w, Height: h, Level: level})
	e := pex.New(t, opts.Measurer)
	m := &Map{
		src:    src,
		t:      t,
		store:  layer.NewStore(),
		engine: e,
		hits: &hittest.Tester{
			Engine:            e,
			BoxImagesByExtent: opts.BoxImagesByExtent,
			ImageClickNearest: opts.ImageClickNearest,
		},
		radius: radius,
		hist:   history.New(opts.History),
		now:    time.Now,
		log:    applog.WithComponent("slipmap"),
	}
	mw, mh := t.MapSize()
	m.setOffset(float64(mw-w)/2, float64(mh-h)/2)
	return m
}

// Source returns the tile source.
func (m *Map) Source() tiles.Source { return m.src }

// Viewport returns the current viewport.
func (m *Map) Viewport() view.Viewport { return m.t.Viewport() }

// Level returns the current zoom level.
func (m *Map) Level() int { return m.t.Viewport().Level }

// Engine returns the placement engine bound to the current view.
func (m *Map) Engine() *pex.Engine { return m.engine }

// ---- layers ----

func (m *Map) addLayer(kind layer.Kind, recs []layer.Record, o LayerOptions) (int, error) {
	l := layer.Layer{
		Name:            o.Name,
		Kind:            kind,
		Records:         recs,
		MapRelative:     o.MapRelative,
		Visible:         !o.Hidden,
		Selectable:      o.Selectable,
		SelectionRadius: o.SelectionRadius,
	}
	if l.SelectionRadius <= 0 {
		l.SelectionRadius = m.radius
	}
	if o.ShowLevels != nil {
		l.ShowLevels = layer.Levels(o.ShowLevels...)
	}
	stored, err := m.store.Add(l)
	if err != nil {
		return 0, err
	}
	applog.WithLayer(m.log, stored.ID, stored.Name).Debug("layer added",
		slog.String("kind", kind.String()), slog.Int("records", len(recs)), slog.Bool("map_relative", o.MapRelative))
	return stored.ID, nil
}

// AddPointLayer adds a layer of points and returns its id.
func (m *Map) AddPointLayer(recs []layer.PointRecord, o LayerOptions) (int, error) {
	return m.addLayer(layer.KindPoint, toRecords(recs), o)
}

// AddImageLayer adds a layer of images and returns its id.
func (m *Map) AddImageLayer(recs []layer.ImageRecord, o LayerOptions) (int, error) {
	return m.addLayer(layer.KindImage, toRecords(recs), o)
}

// AddTextLayer adds a layer of text labels and returns its id.
func (m *Map) AddTextLayer(recs []layer.TextRecord, o LayerOptions) (int, error) {
	return m.addLayer(layer.KindText, toRecords(recs), o)
}

// AddPolygonLayer adds a layer of polygons and returns its id.
func (m *Map) AddPolygonLayer(recs []layer.PolygonRecord, o LayerOptions) (int, error) {
	return m.addLayer(layer.KindPolygon, toRecords(recs), o)
}

// AddLayer adds an already built layer, as read from a resource file. The
// layer's id is replaced by a fresh one.
func (m *Map) AddLayer(l layer.Layer) (int, error) {
	if l.SelectionRadius <= 0 {
		l.SelectionRadius = m.radius
	}
	stored, err := m.store.Add(l)
	if err != nil {
		return 0, err
	}
	applog.WithLayer(m.log, stored.ID, stored.Name).Debug("layer added", slog.String("kind", l.Kind.String()), slog.Int("records", len(l.Records)))
	return stored.ID, nil
}

func toRecords[R layer.Record](recs []R) []layer.Record {
	out := make([]layer.Record, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

// Layer returns the layer with id.
func (m *Map) Layer(id int) (*layer.Layer, error) { return m.store.Get(id) }

// Layers returns every layer back to front.
func (m *Map) Layers() []*layer.Layer { return m.store.Layers() }

// DeleteLayer removes a layer.
func (m *Map) DeleteLayer(id int) error {
	if err := m.store.Delete(id); err != nil {
		return err
	}
	m.log.Debug("layer deleted", slog.Int("layer", id))
	return nil
}

func (m *Map) ShowLayer(id int) error { return m.store.Show(id) }
func (m *Map) HideLayer(id int) error { return m.store.Hide(id) }

func (m *Map) SetLayerSelectable(id int, on bool) error { return m.store.SetSelectable(id, on) }

// SetLayerShowLevels limits the levels a layer shows at; no levels means all.
func (m *Map) SetLayerShowLevels(id int, levels ...int) error {
	return m.store.SetShowLevels(id, levels...)
}

func (m *Map) SetLayerSelectionRadius(id int, r float64) error {
	return m.store.SetSelectionRadius(id, r)
}

func (m *Map) PushLayerToBack(id int) error        { return m.store.PushToBack(id) }
func (m *Map) PopLayerToFront(id int) error        { return m.store.PopToFront(id) }
func (m *Map) PlaceLayerBelow(id, below int) error { return m.store.PlaceBelow(id, below) }

// ---- viewport ----

func (m *Map) setOffset(x, y float64) {
	mw, mh := m.t.MapSize()
	vp := m.t.Viewport()
	vp.OffsetX, vp.OffsetY = x, y
	m.t.SetViewport(vp.Clamped(mw, mh))
}

func (m *Map) checkLevel(level int) error {
	if level < m.src.MinLevel() || level > m.src.MaxLevel() {
		return fmt.Errorf("%w: %d not in [%d,%d]", tiles.ErrLevelOutOfRange, level, m.src.MinLevel(), m.src.MaxLevel())
	}
	return nil
}

// Resize changes the view size, keeping the offset where the map allows it.
func (m *Map) Resize(w, h int) {
	m.t.SetSize(w, h)
	vp := m.t.Viewport()
	m.setOffset(vp.OffsetX, vp.OffsetY)
}

// record remembers the current viewport for Back.
func (m *Map) record() {
	m.hist.Push(history.Entry{View: m.t.Viewport(), TS: m.now()})
}

// Pan moves the view by (dx, dy) view pixels.
func (m *Map) Pan(dx, dy float64) {
	m.record()
	vp := m.t.Viewport()
	m.setOffset(vp.OffsetX+dx, vp.OffsetY+dy)
}

// GotoPosition centres the view on map point p at the current level.
func (m *Map) GotoPosition(p orb.Point) {
	m.record()
	m.centreOn(p)
}

func (m *Map) centreOn(p orb.Point) {
	tw, th := m.src.TileSize()
	tx, ty := m.src.MapToTile(m.Level(), p)
	vp := m.t.Viewport()
	m.setOffset(tx*float64(tw)-float64(vp.Width)/2, ty*float64(th)-float64(vp.Height)/2)
}

// GotoLevelAndPosition switches to level and centres on p. Nothing changes
// when the level is out of range.
func (m *Map) GotoLevelAndPosition(level int, p orb.Point) error {
	if err := m.checkLevel(level); err != nil {
		return err
	}
	m.record()
	m.moveTo(level, p)
	return nil
}

func (m *Map) moveTo(level int, p orb.Point) {
	from := m.Level()
	m.t.SetLevel(level)
	m.centreOn(p)
	if from != level {
		m.log.Debug("level changed", slog.Int("from", from), slog.Int("to", level))
	}
}

// Back returns to the viewport before the last pan or zoom. The view size
// is kept. It reports false when there is nothing to go back to.
func (m *Map) Back() bool {
	vp, ok := m.hist.Back(m.t.Viewport())
	if ok {
		m.restore(vp)
	}
	return ok
}

// Forward re-applies a viewport left by Back.
func (m *Map) Forward() bool {
	vp, ok := m.hist.Forward(m.t.Viewport())
	if ok {
		m.restore(vp)
	}
	return ok
}

func (m *Map) restore(vp view.Viewport) {
	if m.checkLevel(vp.Level) != nil {
		return
	}
	m.t.SetLevel(vp.Level)
	m.setOffset(vp.OffsetX, vp.OffsetY)
}

// SetLevel changes the zoom level keeping the map point at the view centre.
func (m *Map) SetLevel(level int) error {
	return m.GotoLevelAndPosition(level, m.centre())
}

func (m *Map) centre() orb.Point {
	vp := m.t.Viewport()
	return m.t.ViewToMap(geom.Pt(float64(vp.Width)/2, float64(vp.Height)/2))
}

// ZoomIn goes one level up, centring on the map point under v.
func (m *Map) ZoomIn(v geom.Point) error {
	return m.GotoLevelAndPosition(m.Level()+1, m.t.ViewToMap(v))
}

// ZoomOut goes one level down, centring on the map point under v.
func (m *Map) ZoomOut(v geom.Point) error {
	return m.GotoLevelAndPosition(m.Level()-1, m.t.ViewToMap(v))
}

// ZoomToArea centres on p at the lowest level where a w×h map area covers
// at least half the view width or height. The highest level is used when
// no level gets there.
func (m *Map) ZoomToArea(p orb.Point, w, h float64) error {
	vp := m.t.Viewport()
	level := m.src.MinLevel()
	for ; level <= m.src.MaxLevel(); level++ {
		ext := m.src.MapExtent(level)
		pw, ph := tiles.MapPixelSize(m.src, level)
		viewW := float64(vp.Width) * (ext.Right() - ext.Left()) / float64(pw)
		viewH := float64(vp.Height) * (ext.Top() - ext.Bottom()) / float64(ph)
		if w >= viewW/2 || h >= viewH/2 {
			break
		}
	}
	return m.GotoLevelAndPosition(min(level, m.src.MaxLevel()), p)
}

// ViewToMap converts a view pixel to map coordinates.
func (m *Map) ViewToMap(v geom.Point) orb.Point { return m.t.ViewToMap(v) }

// MapToView converts a map point to view pixels.
func (m *Map) MapToView(p orb.Point) geom.Point { return m.t.MapToView(p) }

// VisibleMapExtent returns the map area inside the view.
func (m *Map) VisibleMapExtent() orb.Bound { return m.t.VisibleMapExtent() }

// PositionIsOnMap reports whether view pixel v shows the map.
func (m *Map) PositionIsOnMap(v geom.Point) bool { return m.t.PositionIsOnMap(v) }

// ---- per frame ----

// VisibleTiles returns the tiles covering the view.
func (m *Map) VisibleTiles() view.TileLayout { return m.t.TileLayout() }

// PlacedRecords places every record of a layer in the current view.
func (m *Map) PlacedRecords(id int) ([]pex.Placed, error) {
	l, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	return m.engine.PlaceLayer(l), nil
}

// DrawLayer is one layer of a draw list.
type DrawLayer struct {
	Layer  *layer.Layer
	Placed []pex.Placed
}

// DrawList returns the layers shown at the current level, back to front,
// with their records placed.
func (m *Map) DrawList() []DrawLayer {
	var out []DrawLayer
	for _, l := range m.store.Layers() {
		if !l.VisibleAt(m.Level()) {
			continue
		}
		out = append(out, DrawLayer{Layer: l, Placed: m.engine.PlaceLayer(l)})
	}
	return out
}

// ---- selection ----

func (m *Map) selectable(l *layer.Layer) bool {
	return l.Selectable && l.VisibleAt(m.Level())
}

// Select runs a click query against every selectable layer shown at the
// current level, in Z order, and returns the layers with a hit.
func (m *Map) Select(v geom.Point) []*hittest.Selection {
	var out []*hittest.Selection
	for _, l := range m.store.Layers() {
		if !m.selectable(l) {
			continue
		}
		if sel := m.hits.Nearest(l, v); sel != nil {
			out = append(out, sel)
		}
	}
	return out
}

// BoxSelect runs a box query against every selectable layer like Select.
func (m *Map) BoxSelect(a, b geom.Point) []*hittest.Selection {
	var out []*hittest.Selection
	for _, l := range m.store.Layers() {
		if !m.selectable(l) {
			continue
		}
		if sel := m.hits.BoxSelect(l, a, b); sel != nil {
			out = append(out, sel)
		}
	}
	return out
}

// SelectInLayer runs a click query against one layer. The result is nil
// when the layer is not selectable or not shown.
func (m *Map) SelectInLayer(id int, v geom.Point) (*hittest.Selection, error) {
	l, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !m.selectable(l) {
		return nil, nil
	}
	return m.hits.Nearest(l, v), nil
}

// BoxSelectInLayer runs a box query against one layer.
func (m *Map) BoxSelectInLayer(id int, a, b geom.Point) (*hittest.Selection, error) {
	l, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !m.selectable(l) {
		return nil, nil
	}
	return m.hits.BoxSelect(l, a, b), nil
}
