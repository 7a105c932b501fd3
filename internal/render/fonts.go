/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"goslip/internal/layer"
)

// DefaultFontSize is used for fonts without a size.
const DefaultFontSize = 10

// FontMeasurer resolves layer fonts to faces and measures text with them.
// The Go Regular font is always available as "go" and is the fallback for
// unknown names. Lookups are locked, the returned faces are not.
type FontMeasurer struct {
	DPI float64 // 72 when zero

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	name string
	size float64
}

// NewFontMeasurer returns a measurer with the Go Regular font loaded.
func NewFontMeasurer() *FontMeasurer {
	m := &FontMeasurer{fonts: make(map[string]*opentype.Font), faces: make(map[faceKey]font.Face)}
	if f, err := opentype.Parse(goregular.TTF); err == nil {
		m.fonts["go"] = f
	}
	return m
}

// LoadTTF adds a TrueType or OpenType font file under name.
func (m *FontMeasurer) LoadTTF(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fonts[strings.ToLower(name)] = f
	return nil
}

// Face returns the face for f, falling back to Go Regular and then to the
// fixed 7×13 bitmap face.
func (m *FontMeasurer) Face(f layer.Font) font.Face {
	size := f.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	name := strings.ToLower(f.Name)

	m.mu.Lock()
	defer m.mu.Unlock()
	otf, ok := m.fonts[name]
	if !ok {
		name = "go"
		otf = m.fonts[name]
	}
	key := faceKey{name: name, size: size}
	if face, ok := m.faces[key]; ok {
		return face
	}
	if otf == nil {
		return basicfont.Face7x13
	}
	dpi := m.DPI
	if dpi <= 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	m.faces[key] = face
	return face
}

// MeasureText returns the advance width and line height of text in pixels.
func (m *FontMeasurer) MeasureText(text string, f layer.Font) (float64, float64) {
	face := m.Face(f)
	adv := font.MeasureString(face, text)
	met := face.Metrics()
	return float64(adv.Ceil()), float64((met.Ascent + met.Descent).Ceil())
}

// ascent returns the distance from the top of the line box to the baseline.
func (m *FontMeasurer) ascent(f layer.Font) float64 {
	return float64(m.Face(f).Metrics().Ascent.Ceil())
}
