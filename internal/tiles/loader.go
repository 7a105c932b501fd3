/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tiles

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dgraph-io/ristretto/v2"

	applog "goslip/internal/log"
)

// DirLoader reads tiles laid out as <Root>/<level>/<col>/<row>.<ext> and keeps
// decoded bitmaps in a cost-bounded cache. Missing files become placeholders.
type DirLoader struct {
	Root    string
	Ext     string // "png" when empty
	TileW   int
	TileH   int
	Missing Placeholder

	cache *ristretto.Cache[string, image.Image]
}

// NewDirLoader opens a tile directory. maxCost bounds the cache in bytes of
// decoded RGBA data; zero picks 64 MiB.
func NewDirLoader(root string, tileW, tileH int, maxCost int64) (*DirLoader, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("tile dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("tile dir %s: not a directory", root)
	}
	if maxCost <= 0 {
		maxCost = 64 << 20
	}
	cache, err := ristretto.NewCache[string, image.Image](&ristretto.Config[string, image.Image]{
		NumCounters: 10000,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}
	return &DirLoader{Root: root, Ext: "png", TileW: tileW, TileH: tileH, cache: cache}, nil
}

// Path returns the file a tile is read from.
func (d *DirLoader) Path(level, col, row int) string {
	ext := d.Ext
	if ext == "" {
		ext = "png"
	}
	return filepath.Join(d.Root, strconv.Itoa(level), strconv.Itoa(col), strconv.Itoa(row)+"."+ext)
}

// Load implements Loader.
func (d *DirLoader) Load(level, col, row int) (image.Image, error) {
	key := fmt.Sprintf("%d/%d/%d", level, col, row)
	if d.cache != nil {
		if img, ok := d.cache.Get(key); ok {
			return img, nil
		}
	}
	img, err := d.read(level, col, row)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		b := img.Bounds()
		d.cache.Set(key, img, int64(b.Dx()*b.Dy()*4))
		d.cache.Wait()
	}
	return img, nil
}

func (d *DirLoader) read(level, col, row int) (image.Image, error) {
	path := d.Path(level, col, row)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		applog.WithComponent("tiles").Debug("tile missing, using placeholder", slog.String("path", path))
		return d.Missing.Render(d.TileW, d.TileH, level, col, row), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open tile: %w", err)
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", path, err)
	}
	return img, nil
}

// Close releases the cache.
func (d *DirLoader) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
}
