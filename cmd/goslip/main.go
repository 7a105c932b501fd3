/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"goslip/internal/config"
	"goslip/internal/crash"
	applog "goslip/internal/log"
	"goslip/internal/version"
)

func usage() {
	fmt.Println("goslip - slippy map placement and hit testing")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goslip version|-v|--version                    Show version")
	fmt.Println("  goslip render [view flags] <resource> <out>    Render to .png, .pdf or .svg")
	fmt.Println("  goslip select [view flags] <resource> <x,y>    Click-select at a view position")
	fmt.Println("  goslip select [view flags] <resource> <x1,y1> <x2,y2>  Box-select")
	fmt.Println("  goslip tiles [view flags]                      List the tiles covering the view")
	fmt.Println("  goslip catalog put <name> <file>               Store a resource file in the catalog")
	fmt.Println("  goslip catalog get <name> <file>               Write a catalog resource to a file")
	fmt.Println("  goslip catalog list|rm <name>                  List or remove catalog resources")
	fmt.Println()
	fmt.Println("View flags: -level N  -at x,y (map position)  -size WxH")
	fmt.Println("<resource> is a JSON file or catalog:<name>.")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer applog.Close()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	cc := crash.Context{}
	defer func() { crash.Recover(&cc) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	cc.Command = args[1]
	ctx := context.Background()
	a := &app{cfg: cfg, out: os.Stdout, log: l, crash: &cc}

	var err error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("goslip")
		fmt.Println(version.String())
		return
	case "render":
		err = a.render(ctx, args[2:])
	case "select":
		err = a.sel(ctx, args[2:])
	case "tiles":
		err = a.tiles(args[2:])
	case "catalog":
		err = a.catalog(ctx, args[2:])
	default:
		usage()
		exit(2)
	}
	if errors.Is(err, errUsage) {
		fmt.Println("Error:", err)
		usage()
		exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		exit(1)
	}
}

// exit closes the log file, which deferred calls would miss.
func exit(code int) {
	_ = applog.Close()
	os.Exit(code)
}
