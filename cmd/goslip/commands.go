/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"goslip/internal/config"
	"goslip/internal/crash"
	"goslip/internal/geom"
	"goslip/internal/hittest"
	"goslip/internal/layer"
	applog "goslip/internal/log"
	"goslip/internal/render"
	"goslip/internal/resource"
	"goslip/internal/slipmap"
	"goslip/internal/storage"
)

var errUsage = errors.New("invalid arguments")

const catalogPrefix = "catalog:"

type app struct {
	cfg   config.AppConfig
	out   io.Writer
	log   *slog.Logger
	crash *crash.Context
}

// viewFlags are shared by every command that builds a map.
type viewFlags struct {
	level int
	at    string
	size  string
}

func (v *viewFlags) register(fs *flag.FlagSet, cfg config.MapConfig) {
	fs.IntVar(&v.level, "level", cfg.Level, "zoom level")
	fs.StringVar(&v.at, "at", "", "map position to centre on, x,y")
	fs.StringVar(&v.size, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "view size in pixels, WxH")
}

func parsePair(s, sep string) (float64, float64, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), sep)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not a pair", errUsage, s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", errUsage, s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", errUsage, s, err)
	}
	return x, y, nil
}

func parsePoint(s string) (geom.Point, error) {
	x, y, err := parsePair(s, ",")
	return geom.Pt(x, y), err
}

func parseSize(s string) (int, int, error) {
	w, h, err := parsePair(strings.ToLower(s), "x")
	if err != nil {
		return 0, 0, err
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: size %q", errUsage, s)
	}
	return int(w), int(h), nil
}

// newMap builds the configured map with the view flags applied.
func (a *app) newMap(v viewFlags) (*slipmap.Map, error) {
	src, err := a.cfg.Map.NewSource()
	if err != nil {
		return nil, err
	}
	w, h, err := parseSize(v.size)
	if err != nil {
		return nil, err
	}
	m := slipmap.New(src, w, h, slipmap.Options{
		Level:             v.level,
		SelectionRadius:   a.cfg.Selection.Radius,
		Measurer:          render.NewFontMeasurer(),
		BoxImagesByExtent: a.cfg.Selection.BoxImagesByExtent,
		ImageClickNearest: a.cfg.Selection.ImageClickNearest,
	})
	if v.at != "" {
		p, err := parsePoint(v.at)
		if err != nil {
			return nil, err
		}
		if err := m.GotoLevelAndPosition(v.level, orb.Point{p.X, p.Y}); err != nil {
			return nil, err
		}
	} else if v.level != m.Level() {
		if err := m.SetLevel(v.level); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// loadResource reads a resource file or a catalog:<name> entry.
func (a *app) loadResource(ctx context.Context, ref string) (*resource.Resource, error) {
	a.crash.Resource = ref
	name, ok := strings.CutPrefix(ref, catalogPrefix)
	if !ok {
		return resource.Read(ref)
	}
	cat, err := a.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	return cat.Get(applog.ContextWithResource(ctx, name), name)
}

func (a *app) openCatalog(ctx context.Context) (*storage.Catalog, error) {
	path, err := a.cfg.CatalogPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, path)
}

// install builds a map and installs the resource, returning layer names by id.
func (a *app) install(ctx context.Context, v viewFlags, ref string) (*slipmap.Map, map[int]string, error) {
	r, err := a.loadResource(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	m, err := a.newMap(v)
	if err != nil {
		return nil, nil, err
	}
	ids, err := r.Install(m, a.cfg.Defaults)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int]string, len(ids))
	for n, id := range ids {
		names[id] = n
	}
	a.log.Debug("resource installed", slog.String("resource", ref), slog.Int("layers", len(ids)))
	return m, names, nil
}

func (a *app) render(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var v viewFlags
	v.register(fs, a.cfg.Map)
	box := fs.String("box", "", "draw a selection box, x1,y1,x2,y2 in view pixels")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: render needs <resource> <out>", errUsage)
	}
	m, _, err := a.install(ctx, v, fs.Arg(0))
	if err != nil {
		return err
	}
	out := fs.Arg(1)
	var boxA, boxB geom.Point
	if *box != "" {
		parts := strings.Split(*box, ",")
		if len(parts) != 4 {
			return fmt.Errorf("%w: -box wants x1,y1,x2,y2", errUsage)
		}
		if boxA, err = parsePoint(parts[0] + "," + parts[1]); err != nil {
			return err
		}
		if boxB, err = parsePoint(parts[2] + "," + parts[3]); err != nil {
			return err
		}
	}
	vp := m.Viewport()
	p := render.NewPainter(m)
	paint := func(s render.Surface) error {
		err := p.Paint(s)
		if *box != "" {
			p.PaintSelectionBox(s, boxA, boxB)
		}
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	var paintErr error
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		r := render.NewRaster(vp.Width, vp.Height, layer.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, render.NewFontMeasurer())
		paintErr = paint(r)
		err = r.WritePNG(w)
	case ".pdf":
		pdf := render.NewPDF(vp.Width, vp.Height, filepath.Base(fs.Arg(0)))
		paintErr = paint(pdf)
		err = pdf.Write(w)
	case ".svg":
		s := render.NewSVG(vp.Width, vp.Height)
		paintErr = paint(s)
		_, err = s.WriteTo(w)
	default:
		_ = f.Close()
		_ = os.Remove(out)
		return fmt.Errorf("%w: unknown output format %q", errUsage, filepath.Ext(out))
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	if paintErr != nil {
		a.log.Warn("some tiles were not drawn", slog.Any("err", paintErr))
	}
	fmt.Fprintf(a.out, "Rendered %s at level %d (%dx%d)\n", out, vp.Level, vp.Width, vp.Height)
	return nil
}

func (a *app) sel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	var v viewFlags
	v.register(fs, a.cfg.Map)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 && fs.NArg() != 3 {
		return fmt.Errorf("%w: select needs <resource> <x,y> [<x2,y2>]", errUsage)
	}
	m, names, err := a.install(ctx, v, fs.Arg(0))
	if err != nil {
		return err
	}
	p1, err := parsePoint(fs.Arg(1))
	if err != nil {
		return err
	}
	var sels []*hittest.Selection
	if fs.NArg() == 3 {
		p2, err := parsePoint(fs.Arg(2))
		if err != nil {
			return err
		}
		sels = m.BoxSelect(p1, p2)
	} else {
		sels = m.Select(p1)
	}
	printSelections(a.out, sels, names)
	return nil
}

func printSelections(w io.Writer, sels []*hittest.Selection, names map[int]string) {
	if len(sels) == 0 {
		fmt.Fprintln(w, "Nothing selected")
		return
	}
	for _, s := range sels {
		fmt.Fprintf(w, "%s: %d selected\n", names[s.LayerID], len(s.Items))
		for _, it := range s.Items {
			fmt.Fprintf(w, "  #%d at %g,%g", it.Index, it.View.X, it.View.Y)
			if it.Data != nil {
				fmt.Fprintf(w, " data=%v", it.Data)
			}
			fmt.Fprintln(w)
		}
	}
}

func (a *app) tiles(args []string) error {
	fs := flag.NewFlagSet("tiles", flag.ContinueOnError)
	var v viewFlags
	v.register(fs, a.cfg.Map)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	m, err := a.newMap(v)
	if err != nil {
		return err
	}
	tl := m.VisibleTiles()
	ext := m.VisibleMapExtent()
	fmt.Fprintf(a.out, "Level %d, cols [%d,%d) rows [%d,%d), visible %v..%v\n",
		m.Level(), tl.Cols.Start, tl.Cols.Stop, tl.Rows.Start, tl.Rows.Stop, ext.Min, ext.Max)
	for _, p := range tl.Placements() {
		fmt.Fprintf(a.out, "  %d/%d/%d at %g,%g\n", m.Level(), p.Col, p.Row, p.X, p.Y)
	}
	return nil
}

func (a *app) catalog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: catalog needs a subcommand", errUsage)
	}
	need := map[string]int{"put": 3, "get": 3, "list": 1, "rm": 2}
	n, ok := need[args[0]]
	if !ok || len(args) != n {
		return fmt.Errorf("%w: catalog %s", errUsage, strings.Join(args, " "))
	}
	cat, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	switch args[0] {
	case "put":
		a.crash.Resource = args[2]
		r, err := resource.Read(args[2])
		if err != nil {
			return err
		}
		if err := cat.Put(ctx, args[1], r); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Stored %s (%d layers)\n", args[1], r.Len())
	case "get":
		r, err := cat.Get(ctx, args[1])
		if err != nil {
			return err
		}
		if err := r.Write(args[2]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s to %s\n", args[1], args[2])
	case "list":
		list, err := cat.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range list {
			fmt.Fprintf(a.out, "%-24s %3d layers  %s\n", e.Name, e.Layers, e.UpdatedAt.Format("2006-01-02 15:04"))
		}
	case "rm":
		if err := cat.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %s\n", args[1])
	}
	return nil
}
