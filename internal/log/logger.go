/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package log sets up the process-wide slog logger for goslip: a text or
// JSON console handler, optionally fanned out to a rotated JSON file.
// Configuration comes from the config package; this package reads no
// environment of its own.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"goslip/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. The zero value logs info and
// above as text to stderr.
type Options struct {
	Level     string // debug|info|warn|error
	Format    string // "console" or "json"
	AddSource bool
	File      string    // rotated JSON log, off when empty
	Console   io.Writer // os.Stderr when nil
}

var (
	mu      sync.Mutex
	current *slog.Logger
	file    *lj.Logger
)

// L returns the application logger, initializing it with zero Options on
// first use.
func L() *slog.Logger {
	mu.Lock()
	l := current
	mu.Unlock()
	if l != nil {
		return l
	}
	return Init(Options{})
}

// Init builds the logger, installs it as slog's default and returns it.
// A log file opened by an earlier Init is closed.
func Init(opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level), AddSource: opts.AddSource}
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:       hopts.Level,
			AddSource:   hopts.AddSource,
			ReplaceAttr: shortConsoleAttr,
		})
	}

	var w *lj.Logger
	if path := strings.TrimSpace(opts.File); path != "" {
		w = &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		h = fanout{h, slog.NewJSONHandler(w, hopts)}
	}

	logger := slog.New(resourceHandler{h}).With(
		slog.String("app", "goslip"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	prev := file
	current, file = logger, w
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(logger)
	return logger
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	f := file
	file = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithLayer annotates the logger with a layer id and name.
func WithLayer(l *slog.Logger, id int, name string) *slog.Logger {
	return l.With(slog.Int("layer", id), slog.String("layer_name", name))
}

type resourceKey struct{}

// ContextWithResource tags ctx so records logged with it carry the resource name.
func ContextWithResource(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, resourceKey{}, name)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// shortConsoleAttr trims the console line: clock time only and three
// letter levels.
func shortConsoleAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format("15:04:05.000"))
		}
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}
	return a
}

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

// resourceHandler copies the resource name from the context onto records.
type resourceHandler struct{ next slog.Handler }

func (h resourceHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h resourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if name, ok := ctx.Value(resourceKey{}).(string); ok && name != "" {
			r.AddAttrs(slog.String("resource", name))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h resourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return resourceHandler{h.next.WithAttrs(attrs)}
}

func (h resourceHandler) WithGroup(name string) slog.Handler {
	return resourceHandler{h.next.WithGroup(name)}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
