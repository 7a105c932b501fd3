/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layer

import (
	"fmt"
	"slices"
)

// DefaultSelectionRadius is the squared pixel distance within which a click
// selects the nearest point.
const DefaultSelectionRadius = 50

// Layer is a homogeneous list of records plus its display metadata.
// Records must not be modified after the layer is added; replace the layer
// to change its data.
type Layer struct {
	ID          int
	Name        string
	Kind        Kind
	Records     []Record
	MapRelative bool
	Visible     bool
	Selectable  bool
	// ShowLevels restricts the zoom levels the layer is drawn and selected
	// at. Nil means every level.
	ShowLevels map[int]struct{}
	// SelectionRadius is compared with the squared pixel distance between a
	// click and a record's anchor.
	SelectionRadius float64
}

// VisibleAt reports whether the layer is shown at level.
func (l *Layer) VisibleAt(level int) bool {
	if !l.Visible {
		return false
	}
	if l.ShowLevels == nil {
		return true
	}
	_, ok := l.ShowLevels[level]
	return ok
}

// Validate checks every record and that all records match the layer kind.
func (l *Layer) Validate() error {
	switch l.Kind {
	case KindPoint, KindImage, KindText, KindPolygon:
	default:
		return fmt.Errorf("%w: layer kind %v", ErrInvalidRecord, l.Kind)
	}
	for i, r := range l.Records {
		if r == nil {
			return fmt.Errorf("record %d: %w: nil", i, ErrInvalidRecord)
		}
		if r.Kind() != l.Kind {
			return fmt.Errorf("record %d: %w: %v record in %v layer", i, ErrInvalidRecord, r.Kind(), l.Kind)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	if !finite(l.SelectionRadius) || l.SelectionRadius < 0 {
		return fmt.Errorf("%w: selection radius %v", ErrInvalidRecord, l.SelectionRadius)
	}
	return nil
}

// Levels builds a ShowLevels set.
func Levels(levels ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(levels))
	for _, l := range levels {
		m[l] = struct{}{}
	}
	return m
}

// Store owns the layers of one map. Z order runs back to front: the last id
// is drawn last and wins selection ties between layers.
type Store struct {
	byID   map[int]*Layer
	z      []int
	nextID int
}

// NewStore returns an empty store. Ids start at 1.
func NewStore() *Store {
	return &Store{byID: make(map[int]*Layer), nextID: 1}
}

// Add validates l, gives it a fresh id and puts it on top of the Z order.
func (s *Store) Add(l Layer) (*Layer, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("add layer %q: %w", l.Name, err)
	}
	l.Records = slices.Clone(l.Records)
	l.ID = s.nextID
	s.nextID++
	stored := &l
	s.byID[l.ID] = stored
	s.z = append(s.z, l.ID)
	s.assertConsistent()
	return stored, nil
}

// Get returns the layer with id.
func (s *Store) Get(id int) (*Layer, error) {
	l, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayer, id)
	}
	return l, nil
}

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.byID) }

// Delete removes a layer.
func (s *Store) Delete(id int) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	delete(s.byID, id)
	s.z = slices.DeleteFunc(s.z, func(v int) bool { return v == id })
	s.assertConsistent()
	return nil
}

// Show makes a layer visible.
func (s *Store) Show(id int) error { return s.update(id, func(l *Layer) { l.Visible = true }) }

// Hide makes a layer invisible.
func (s *Store) Hide(id int) error { return s.update(id, func(l *Layer) { l.Visible = false }) }

// SetSelectable turns selection on or off.
func (s *Store) SetSelectable(id int, on bool) error {
	return s.update(id, func(l *Layer) { l.Selectable = on })
}

// SetShowLevels restricts the layer to levels; no levels means every level.
func (s *Store) SetShowLevels(id int, levels ...int) error {
	return s.update(id, func(l *Layer) {
		if len(levels) == 0 {
			l.ShowLevels = nil
			return
		}
		l.ShowLevels = Levels(levels...)
	})
}

// SetSelectionRadius changes the squared-distance selection threshold.
func (s *Store) SetSelectionRadius(id int, r float64) error {
	if !finite(r) || r < 0 {
		return fmt.Errorf("%w: selection radius %v", ErrInvalidRecord, r)
	}
	return s.update(id, func(l *Layer) { l.SelectionRadius = r })
}

func (s *Store) update(id int, fn func(*Layer)) error {
	l, err := s.Get(id)
	if err != nil {
		return err
	}
	fn(l)
	return nil
}

// PushToBack moves a layer to the bottom of the Z order.
func (s *Store) PushToBack(id int) error {
	i, err := s.zIndex(id)
	if err != nil {
		return err
	}
	s.z = slices.Insert(slices.Delete(s.z, i, i+1), 0, id)
	s.assertConsistent()
	return nil
}

// PopToFront moves a layer to the top of the Z order.
func (s *Store) PopToFront(id int) error {
	i, err := s.zIndex(id)
	if err != nil {
		return err
	}
	s.z = append(slices.Delete(s.z, i, i+1), id)
	s.assertConsistent()
	return nil
}

// PlaceBelow moves layer id directly under layer below.
func (s *Store) PlaceBelow(id, below int) error {
	i, err := s.zIndex(id)
	if err != nil {
		return err
	}
	if _, err := s.zIndex(below); err != nil {
		return err
	}
	if id == below {
		return nil
	}
	s.z = slices.Delete(s.z, i, i+1)
	j := slices.Index(s.z, below)
	s.z = slices.Insert(s.z, j, id)
	s.assertConsistent()
	return nil
}

func (s *Store) zIndex(id int) (int, error) {
	if _, err := s.Get(id); err != nil {
		return -1, err
	}
	i := slices.Index(s.z, id)
	if i < 0 {
		panic(fmt.Sprintf("layer store: id %d mapped but missing from z order %v", id, s.z))
	}
	return i, nil
}

// ZOrder returns a copy of the ids, back to front.
func (s *Store) ZOrder() []int { return slices.Clone(s.z) }

// Layers returns the layers back to front.
func (s *Store) Layers() []*Layer {
	out := make([]*Layer, 0, len(s.z))
	for _, id := range s.z {
		out = append(out, s.byID[id])
	}
	return out
}

// assertConsistent panics when the Z order and the id map disagree.
func (s *Store) assertConsistent() {
	if len(s.z) != len(s.byID) {
		panic(fmt.Sprintf("layer store: %d ids in z order, %d layers", len(s.z), len(s.byID)))
	}
	seen := make(map[int]struct{}, len(s.z))
	for _, id := range s.z {
		if _, ok := s.byID[id]; !ok {
			panic(fmt.Sprintf("layer store: z order id %d has no layer", id))
		}
		if _, dup := seen[id]; dup {
			panic(fmt.Sprintf("layer store: z order id %d repeated", id))
		}
		seen[id] = struct{}{}
	}
}
