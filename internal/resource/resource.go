/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package resource reads and writes named sets of layers as JSON files.
// A resource maps layer names to a kind, the layer flags, per-layer default
// attributes and the records. Files are checked against an embedded JSON
// schema before they are decoded.
package resource

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"goslip/internal/layer"
	"goslip/internal/placement"
)

// FormatVersion is written into every resource file.
const FormatVersion = 1

var (
	// ErrInvalid is returned for a file that fails schema validation or decoding.
	ErrInvalid = errors.New("invalid resource")
	// ErrNoPath is returned by Write when neither the call nor the resource names a file.
	ErrNoPath = errors.New("resource has no file name")
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Attrs are the optional record attributes. Nil fields fall back to the
// layer defaults, then to the global defaults.
type Attrs struct {
	Anchor    *placement.Anchor `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Radius    *float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
	Color     *layer.Color      `json:"color,omitempty" yaml:"color,omitempty"`
	TextColor *layer.Color      `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	Font      *layer.Font       `json:"font,omitempty" yaml:"font,omitempty"`
	OffsetX   *float64          `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetY   *float64          `json:"offset_y,omitempty" yaml:"offset_y,omitempty"`
	Width     *float64          `json:"width,omitempty" yaml:"width,omitempty"`
	Closed    *bool             `json:"closed,omitempty" yaml:"closed,omitempty"`
	Filled    *bool             `json:"filled,omitempty" yaml:"filled,omitempty"`
	FillColor *layer.Color      `json:"fill_color,omitempty" yaml:"fill_color,omitempty"`
}

// Record is one record as stored. Which position fields apply depends on
// the layer kind: X/Y for points, images and text, Vertices for polygons.
type Record struct {
	X        float64      `json:"x,omitempty"`
	Y        float64      `json:"y,omitempty"`
	Vertices [][2]float64 `json:"vertices,omitempty"`
	Text     string       `json:"text,omitempty"`
	// Image is a file path, relative paths resolve against the resource file.
	Image       string  `json:"image,omitempty"`
	ImageWidth  float64 `json:"image_width,omitempty"`
	ImageHeight float64 `json:"image_height,omitempty"`
	Attrs
	Data any `json:"data,omitempty"`
}

// Layer is one named layer of a resource.
type Layer struct {
	Kind            string   `json:"kind"`
	MapRelative     bool     `json:"map_relative,omitempty"`
	Visible         *bool    `json:"visible,omitempty"` // nil means visible
	Selectable      bool     `json:"selectable,omitempty"`
	ShowLevels      []int    `json:"show_levels,omitempty"`
	SelectionRadius float64  `json:"selection_radius,omitempty"`
	Defaults        Attrs    `json:"defaults,omitzero"`
	Records         []Record `json:"records"`
}

// Resource is a named set of layers.
type Resource struct {
	// Path is the file last read or written.
	Path    string            `json:"-"`
	Version int               `json:"version"`
	Layers  map[string]*Layer `json:"layers"`
}

// New returns an empty resource.
func New() *Resource {
	return &Resource{Version: FormatVersion, Layers: make(map[string]*Layer)}
}

// Read loads and validates a resource file.
func Read(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource %s: %w", path, err)
	}
	r, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

// Decode validates data against the resource schema and decodes it.
func Decode(data []byte) (*Resource, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	r := New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if r.Layers == nil {
		r.Layers = make(map[string]*Layer)
	}
	return r, nil
}

// Write stores the resource at path, or at r.Path when path is empty. The
// file is written to a temporary sibling and renamed over the target.
func (r *Resource) Write(path string) error {
	if path == "" {
		path = r.Path
	}
	if path == "" {
		return ErrNoPath
	}
	data, err := r.Encode()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure resource dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp resource: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace resource: %w", err)
	}
	r.Path = path
	return nil
}

// Encode returns the indented JSON form of the resource.
func (r *Resource) Encode() ([]byte, error) {
	if r.Version == 0 {
		r.Version = FormatVersion
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return append(data, '\n'), nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// AddLayer stores l under name, replacing any layer of that name.
func (r *Resource) AddLayer(name string, l *Layer) {
	if r.Layers == nil {
		r.Layers = make(map[string]*Layer)
	}
	r.Layers[name] = l
}

// Layer returns the named layer.
func (r *Resource) Layer(name string) (*Layer, bool) {
	l, ok := r.Layers[name]
	return l, ok
}

// DeleteLayer removes the named layer; unknown names are ignored.
func (r *Resource) DeleteLayer(name string) { delete(r.Layers, name) }

// Names returns the layer names in sorted order.
func (r *Resource) Names() []string {
	names := make([]string, 0, len(r.Layers))
	for n := range r.Layers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of layers.
func (r *Resource) Len() int { return len(r.Layers) }
