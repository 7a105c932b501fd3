/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"goslip/internal/layer"
	"goslip/internal/resource"
	"goslip/internal/tiles"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type MapConfig struct {
	Source   string     `yaml:"source"` // "flat" | "mercator"
	TileDir  string     `yaml:"tile_dir"`
	TileSize int        `yaml:"tile_size"`
	CacheMB  int        `yaml:"cache_mb"`
	MinLevel int        `yaml:"min_level"`
	MaxLevel int        `yaml:"max_level"`
	Level    int        `yaml:"level"`
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	Extent   [4]float64 `yaml:"extent"` // left, bottom, right, top; flat sources only
}

type SelectionConfig struct {
	Radius            float64 `yaml:"radius"` // squared view pixels
	BoxImagesByExtent bool    `yaml:"box_images_by_extent"`
	ImageClickNearest bool    `yaml:"image_click_nearest"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Map           MapConfig         `yaml:"map"`
	Selection     SelectionConfig   `yaml:"selection"`
	Defaults      resource.Defaults `yaml:"defaults"`
	Logging       LoggingConfig     `yaml:"logging"`
	Catalog       CatalogConfig     `yaml:"catalog"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Map: MapConfig{
			Source: "flat", TileSize: 256, CacheMB: 64,
			MinLevel: 0, MaxLevel: 4, Width: 800, Height: 600,
			Extent: [4]float64{0, 0, 1024, 1024},
		},
		Selection: SelectionConfig{Radius: layer.DefaultSelectionRadius},
		Logging:   LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvMapSource       = "GOSLIP_MAP_SOURCE"
	EnvTileDir         = "GOSLIP_TILE_DIR"
	EnvSelectionRadius = "GOSLIP_SELECTION_RADIUS"
	EnvCatalogPath     = "GOSLIP_CATALOG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GOSLIP_LOG_LEVEL"
	EnvLogFormat = "GOSLIP_LOG_FORMAT"
	EnvLogSource = "GOSLIP_LOG_SOURCE"
	EnvLogFile   = "GOSLIP_LOG_FILE"
)

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "goslip")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "goslip")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "goslip")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CatalogPath returns the configured catalog file, or catalog.sqlite in the config dir.
func (c AppConfig) CatalogPath() (string, error) {
	if p := strings.TrimSpace(c.Catalog.Path); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catalog.sqlite"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A file that does not parse is reported, the defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// map
	if s := strings.ToLower(strings.TrimSpace(src.Map.Source)); s != "" {
		dst.Map.Source = s
	}
	if strings.TrimSpace(src.Map.TileDir) != "" {
		dst.Map.TileDir = strings.TrimSpace(src.Map.TileDir)
	}
	if src.Map.TileSize > 0 {
		dst.Map.TileSize = src.Map.TileSize
	}
	if src.Map.CacheMB > 0 {
		dst.Map.CacheMB = src.Map.CacheMB
	}
	// a file that names any level sets the whole range
	if src.Map.MinLevel != 0 || src.Map.MaxLevel != 0 {
		dst.Map.MinLevel = src.Map.MinLevel
		dst.Map.MaxLevel = src.Map.MaxLevel
	}
	dst.Map.Level = src.Map.Level
	if src.Map.Width > 0 {
		dst.Map.Width = src.Map.Width
	}
	if src.Map.Height > 0 {
		dst.Map.Height = src.Map.Height
	}
	if src.Map.Extent != [4]float64{} {
		dst.Map.Extent = src.Map.Extent
	}
	// selection
	if src.Selection.Radius > 0 {
		dst.Selection.Radius = src.Selection.Radius
	}
	dst.Selection.BoxImagesByExtent = src.Selection.BoxImagesByExtent
	dst.Selection.ImageClickNearest = src.Selection.ImageClickNearest
	// attribute defaults are all pointers, unset fields stay nil
	dst.Defaults = src.Defaults
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// catalog
	if strings.TrimSpace(src.Catalog.Path) != "" {
		dst.Catalog.Path = strings.TrimSpace(src.Catalog.Path)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvMapSource)); v != "" {
		cfg.Map.Source = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTileDir)); v != "" {
		cfg.Map.TileDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSelectionRadius)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Selection.Radius = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalogPath)); v != "" {
		cfg.Catalog.Path = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "map.source":
		env = EnvMapSource
	case "map.tile_dir":
		env = EnvTileDir
	case "selection.radius":
		env = EnvSelectionRadius
	case "catalog.path":
		env = EnvCatalogPath
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// NewSource builds the tile source the map section describes. Tiles are
// read from TileDir when set, otherwise drawn as placeholders.
func (m MapConfig) NewSource() (tiles.Source, error) {
	if m.MinLevel < 0 || m.MaxLevel < m.MinLevel {
		return nil, fmt.Errorf("map levels [%d,%d] invalid", m.MinLevel, m.MaxLevel)
	}
	size := m.TileSize
	if size <= 0 {
		size = 256
	}
	var loader tiles.Loader
	if strings.TrimSpace(m.TileDir) != "" {
		dl, err := tiles.NewDirLoader(m.TileDir, size, size, int64(m.CacheMB)<<20)
		if err != nil {
			return nil, err
		}
		loader = dl
	}
	switch m.Source {
	case "", "flat":
		e := m.Extent
		if e[2] <= e[0] || e[3] <= e[1] {
			return nil, fmt.Errorf("map extent %v is empty", e)
		}
		f := tiles.NewFlat(orb.Bound{Min: orb.Point{e[0], e[1]}, Max: orb.Point{e[2], e[3]}}, m.MinLevel, m.MaxLevel)
		f.TileW, f.TileH = size, size
		f.Loader = loader
		return f, nil
	case "mercator", "osm":
		s := tiles.NewMercator(m.MinLevel, m.MaxLevel)
		s.Size = size
		s.Loader = loader
		return s, nil
	default:
		return nil, fmt.Errorf("unknown map source %q", m.Source)
	}
}
